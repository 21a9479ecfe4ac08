package main

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func parseValue(s string) (*uint256.Int, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "value %q: %v", s, err)
	}
	return v, nil
}

func (a *app) noteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "note",
		Short: "Works with plaintext notes",
	}

	var owner, value, random string
	hash := &cobra.Command{
		Use:   "hash",
		Short: "Prints the note hash, drawing a random salt unless one is given",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseAddress(owner)
			if err != nil {
				return err
			}
			v, err := parseValue(value)
			if err != nil {
				return err
			}
			note := types.NewNote(addr, v)
			if random != "" {
				if note.Random, err = decodeHex(random); err != nil {
					return err
				}
			}
			if err := note.Validate(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Random: %x\n", note.Random)
			fmt.Fprintf(cmd.OutOrStdout(), "Hash:   %s\n", note.Hash().Hex())
			return nil
		},
	}
	hash.Flags().StringVar(&owner, "owner", "", "owner address")
	hash.Flags().StringVar(&value, "value", "", "decimal value")
	hash.Flags().StringVar(&random, "random", "", "32 byte salt in hex")
	_ = hash.MarkFlagRequired("owner")
	_ = hash.MarkFlagRequired("value")
	cmd.AddCommand(hash)
	return cmd
}
