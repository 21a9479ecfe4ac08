package main

import (
	"fmt"
	"strconv"

	"github.com/kysee/privacy/utxo/types"
	"github.com/kysee/privacy/utxo/version"
	"github.com/spf13/cobra"
)

func (a *app) versionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Encodes and decodes proof version tags",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "tag <plaintext|confidential|category.major.minor> <opcode>",
		Short: "Prints the tag of an operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var family version.Family
			switch args[0] {
			case "plaintext":
				family = a.cfg.Plaintext
			case "confidential":
				family = a.cfg.Confidential
			default:
				f, err := version.ParseFamily(args[0])
				if err != nil {
					return err
				}
				family = f
			}
			op, err := version.ParseOpcode(args[1])
			if err != nil {
				return err
			}
			tag := family.Tag(op)
			fmt.Fprintf(cmd.OutOrStdout(), "0x%08x %s\n", uint32(tag), tag)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <tag>",
		Short: "Splits a tag and checks it against the configured families",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.ParseUint(args[0], 0, 32)
			if err != nil {
				return types.InvalidArgument("tag %q: %v", args[0], err)
			}
			tag := version.Tag(n)
			c, ma, mi, op := tag.Unpack()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Category: %d\nMajor:    %d\nMinor:    %d\nOpcode:   %s\n", c, ma, mi, op)
			fmt.Fprintf(out, "Plaintext compatible:    %t\n", a.cfg.Plaintext.Supports(tag))
			fmt.Fprintf(out, "Confidential compatible: %t\n", a.cfg.Confidential.Supports(tag))
			return nil
		},
	})
	return cmd
}
