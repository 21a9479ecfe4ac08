package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/kysee/privacy/utxo/ledger"
	"github.com/kysee/privacy/utxo/result"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func (a *app) resultCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "result",
		Short: "Decodes validator results",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <transfer|mint|burn|approve> <result-hex>",
		Short: "Prints a validator result record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bz, err := decodeHex(args[1])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printConsumed := func(notes []result.ConsumedNote) {
				for i, n := range notes {
					fmt.Fprintf(out, "Input %d:  %s owner %x\n", i, n.NoteHash.Hex(), n.Owner)
				}
			}
			printCreated := func(notes []result.CreatedNote) {
				for i, n := range notes {
					fmt.Fprintf(out, "Output %d: %s owner %x meta %x\n", i, n.NoteHash.Hex(), n.Owner, n.MetaData)
				}
			}

			switch args[0] {
			case "transfer":
				r, err := result.DecodeTransfer(bz)
				if err != nil {
					return err
				}
				printConsumed(r.Inputs)
				printCreated(r.Outputs)
				fmt.Fprintf(out, "Public:   %s to %s\n", r.PublicValue, r.PublicOwner.Hex())
				fmt.Fprintf(out, "Sender:   %x\n", r.Sender)
			case "mint":
				r, err := result.DecodeMint(bz)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Mint hash: %s -> %s\n", r.OldMintHash.Hex(), r.NewMintHash.Hex())
				fmt.Fprintf(out, "Total:     %s\n", r.TotalMint.Dec())
				printCreated(r.Outputs)
				fmt.Fprintf(out, "Sender:    %x\n", r.Sender)
			case "burn":
				r, err := result.DecodeBurn(bz)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Burn hash: %s -> %s\n", r.OldBurnHash.Hex(), r.NewBurnHash.Hex())
				fmt.Fprintf(out, "Total:     %s\n", r.TotalBurn.Dec())
				printConsumed(r.Inputs)
				fmt.Fprintf(out, "Sender:    %x\n", r.Sender)
			case "approve":
				r, err := result.DecodeApprove(bz)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Note:        %s\n", r.NoteHash.Hex())
				fmt.Fprintf(out, "Shared sign: %x\n", r.SharedSign)
				fmt.Fprintf(out, "Sender:      %x\n", r.Sender)
			default:
				return types.InvalidArgument("unknown result kind %q", args[0])
			}
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "replay <file>",
		Short: "Applies a file of \"<kind> <result-hex>\" lines to an empty ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			l := ledger.New()
			scanner := bufio.NewScanner(f)
			scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
			line := 0
			for scanner.Scan() {
				line++
				text := strings.TrimSpace(scanner.Text())
				if text == "" || strings.HasPrefix(text, "#") {
					continue
				}
				kind, hexResult, ok := strings.Cut(text, " ")
				if !ok {
					return types.InvalidArgument("line %d: expected <kind> <result-hex>", line)
				}
				if err := applyResult(l, kind, strings.TrimSpace(hexResult)); err != nil {
					return errors.Wrapf(err, "line %d", line)
				}
			}
			if err := scanner.Err(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Mint hash:  %s total %s\n", l.MintHash().Hex(), l.TotalMint().Dec())
			fmt.Fprintf(out, "Burn hash:  %s total %s\n", l.BurnHash().Hex(), l.TotalBurn().Dec())
			fmt.Fprintf(out, "Note root:  %x\n", l.Root())
			return nil
		},
	})
	return cmd
}

func applyResult(l *ledger.Ledger, kind, hexResult string) error {
	bz, err := decodeHex(hexResult)
	if err != nil {
		return err
	}
	switch kind {
	case "transfer":
		r, err := result.DecodeTransfer(bz)
		if err != nil {
			return err
		}
		return l.ApplyTransfer(r)
	case "mint":
		r, err := result.DecodeMint(bz)
		if err != nil {
			return err
		}
		return l.ApplyMint(r)
	case "burn":
		r, err := result.DecodeBurn(bz)
		if err != nil {
			return err
		}
		return l.ApplyBurn(r)
	case "approve":
		r, err := result.DecodeApprove(bz)
		if err != nil {
			return err
		}
		return l.ApplyApprove(r)
	default:
		return types.InvalidArgument("unknown result kind %q", kind)
	}
}
