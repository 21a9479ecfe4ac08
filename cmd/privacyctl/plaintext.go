package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/plaintext"
	"github.com/kysee/privacy/utxo/types"
	"github.com/spf13/cobra"
)

// parseRecipient reads "address:value".
func parseRecipient(s string) (common.Address, string, error) {
	addr, value, ok := strings.Cut(s, ":")
	if !ok {
		return common.Address{}, "", types.InvalidArgument("recipient %q is not address:value", s)
	}
	owner, err := parseAddress(addr)
	if err != nil {
		return common.Address{}, "", err
	}
	return owner, value, nil
}

func (a *app) plaintextCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plaintext",
		Short: "Builds and inspects plaintext proofs",
	}

	var (
		keyHex string
		prior  string
		to     []string
	)
	mint := &cobra.Command{
		Use:   "mint",
		Short: "Builds a mint proof",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.HexToKey(keyHex)
			if err != nil {
				return err
			}
			var priorHash common.Hash
			if prior != "" {
				bz, err := decodeHex(prior)
				if err != nil {
					return err
				}
				if len(bz) != common.HashLength {
					return types.InvalidArgument("prior hash length %d", len(bz))
				}
				priorHash = common.BytesToHash(bz)
			}

			outputs := make([]*types.OutputNote, 0, len(to))
			for _, r := range to {
				owner, value, err := parseRecipient(r)
				if err != nil {
					return err
				}
				v, err := parseValue(value)
				if err != nil {
					return err
				}
				outputs = append(outputs, types.NewOutputNote(owner, v, nil))
			}

			builder := plaintext.NewBuilder(
				plaintext.WithFamily(a.cfg.Plaintext),
				plaintext.WithLogger(utils.ComponentLogger("plaintext")),
			)
			proof, err := builder.Mint(priorHash, outputs, key)
			if err != nil {
				return err
			}
			next, err := proof.PayloadHash()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, o := range outputs {
				fmt.Fprintf(out, "Output %d: owner %s value %s random %x hash %s\n", i, o.Owner.Hex(), o.Value.Dec(), o.Random, o.Hash().Hex())
			}
			fmt.Fprintf(out, "Next prior hash: %s\n", next.Hex())
			fmt.Fprintf(out, "Proof: %x\n", proof.Bytes())
			return nil
		},
	}
	mint.Flags().StringVar(&keyHex, "key", "", "submitter private key")
	mint.Flags().StringVar(&prior, "prior", "", "hash of the last accepted mint")
	mint.Flags().StringArrayVar(&to, "to", nil, "recipient as address:value, repeatable")
	_ = mint.MarkFlagRequired("key")
	_ = mint.MarkFlagRequired("to")
	cmd.AddCommand(mint)

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <proof-hex>",
		Short: "Decodes a plaintext proof and checks its signatures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			proof, err := plaintext.DecodeProof(bz)
			if err != nil {
				return err
			}
			d, err := proof.Open()
			if err != nil {
				return err
			}
			submitter, err := proof.Submitter()
			if err != nil {
				return err
			}
			payload, err := d.DecodePayload()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:   %s (supported: %t)\n", d.Version, a.cfg.Plaintext.Supports(d.Version))
			fmt.Fprintf(out, "Submitter: %s\n", submitter.Hex())
			printPayload(out, payload)
			if err := proof.VerifyInputs(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Signatures: ok")
			return nil
		},
	})
	return cmd
}

func printPayload(out io.Writer, payload interface{}) {
	printOutputs := func(outputs []*types.OutputNote) {
		for i, o := range outputs {
			fmt.Fprintf(out, "Output %d:  %s owner %s value %s\n", i, o.Hash().Hex(), o.Owner.Hex(), o.Value.Dec())
		}
	}
	printInputs := func(inputs []*types.InputNote) {
		for i, in := range inputs {
			fmt.Fprintf(out, "Input %d:   %s owner %s value %s\n", i, in.Hash().Hex(), in.Owner.Hex(), in.Value.Dec())
		}
	}

	switch p := payload.(type) {
	case *types.Transfer:
		printInputs(p.Inputs)
		printOutputs(p.Outputs)
		fmt.Fprintf(out, "Public:    %s to %s\n", p.PublicValue, p.PublicOwner.Hex())
		fmt.Fprintf(out, "Balance:   %s\n", types.ValueBalance(p.Inputs, p.Outputs, p.PublicValue))
	case *types.Mint:
		fmt.Fprintf(out, "Prior:     %s\n", p.PriorMintHash.Hex())
		printOutputs(p.Outputs)
	case *types.Burn:
		fmt.Fprintf(out, "Prior:     %s\n", p.PriorBurnHash.Hex())
		printInputs(p.Inputs)
	case *types.Approve:
		fmt.Fprintf(out, "Approve:   %s owner %s value %s\n", p.Hash().Hex(), p.Owner.Hex(), p.Value.Dec())
	}
}
