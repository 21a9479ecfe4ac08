package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/confidential"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/spf13/cobra"
)

func (a *app) confidentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "confidential",
		Short: "Works with confidential keys and proofs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "keygen",
		Short: "Creates view and spend keypairs with the configured engine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine, err := a.engine()
			if err != nil {
				return err
			}
			km, err := confidential.NewKeyMaterial(engine)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "View sk:  %x\nView pk:  %x\n", km.ViewSk(), km.ViewPk())
			fmt.Fprintf(out, "Spend sk: %x\nSpend pk: %x\n", km.SpendSk(), km.SpendPk())
			fmt.Fprintf(out, "Address:  %s\n", km.Recipient().Address())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "address <address>",
		Short: "Prints the public keys behind a confidential address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := confidential.ParseAddress(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "View pk:  %x\nSpend pk: %x\n", r.ViewPk, r.SpendPk)
			return nil
		},
	})

	var (
		keyHex string
		prior  string
		to     []string
	)
	mint := &cobra.Command{
		Use:   "mint",
		Short: "Builds a confidential mint proof",
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

			outputs := make([]confidential.Output, 0, len(to))
			for _, s := range to {
				addr, quantity, ok := strings.Cut(s, "=")
				if !ok {
					return types.InvalidArgument("recipient %q is not address=quantity", s)
				}
				r, err := confidential.ParseAddress(addr)
				if err != nil {
					return err
				}
				q, err := strconv.ParseUint(quantity, 10, 64)
				if err != nil {
					return types.InvalidArgument("quantity %q: %v", quantity, err)
				}
				outputs = append(outputs, r.Output(q))
			}

			engine, err := a.engine()
			if err != nil {
				return err
			}
			env := confidential.NewEnvelope(engine,
				confidential.WithFamily(a.cfg.Confidential),
				confidential.WithLogger(utils.ComponentLogger("confidential")),
			)
			proof, err := env.Mint(priorHash, outputs, nil, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Next prior hash: %s\n", proof.ChainHash().Hex())
			fmt.Fprintf(cmd.OutOrStdout(), "Proof: %x\n", proof.Bytes())
			return nil
		},
	}
	mint.Flags().StringVar(&keyHex, "key", "", "submitter private key")
	mint.Flags().StringVar(&prior, "prior", "", "chain hash of the last accepted mint")
	mint.Flags().StringArrayVar(&to, "to", nil, "recipient as cx-address=quantity, repeatable")
	_ = mint.MarkFlagRequired("key")
	_ = mint.MarkFlagRequired("to")
	cmd.AddCommand(mint)

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <proof-hex>",
		Short: "Decodes a confidential proof and runs the checks made outside the engine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			proof, err := confidential.DecodeProof(bz)
			if err != nil {
				return err
			}
			d, err := proof.Open()
			if err != nil {
				return err
			}
			tx, err := d.Tx()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Version:      %s (supported: %t)\n", d.Version, a.cfg.Confidential.Supports(d.Version))
			fmt.Fprintf(out, "Authorized:   %s\n", tx.AuthorizedAddress.Hex())
			fmt.Fprintf(out, "Public value: %d\n", tx.PublicValue)
			for i := range tx.Inputs {
				fmt.Fprintf(out, "Input %d:      %s\n", i, tx.Inputs[i].Hash().Hex())
			}
			for i := range tx.Outputs {
				fmt.Fprintf(out, "Output %d:     %s\n", i, tx.Outputs[i].Hash().Hex())
			}
			if err := proof.Verify(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Checks: ok")
			return nil
		},
	})
	return cmd
}
