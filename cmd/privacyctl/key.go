package main

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func decodeHex(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	bz, err := hexutil.Decode(s)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "hex %q: %v", s, err)
	}
	return bz, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, types.InvalidArgument("address %q", s)
	}
	return common.HexToAddress(s), nil
}

func (a *app) keyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manages account keys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "new",
		Short: "Generates a secp256k1 account key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Private key: %x\n", gethcrypto.FromECDSA(key))
			fmt.Fprintf(cmd.OutOrStdout(), "Public key:  %x\n", crypto.PubkeyBytes(&key.PublicKey))
			fmt.Fprintf(cmd.OutOrStdout(), "Address:     %s\n", crypto.Address(key).Hex())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "address <private-key>",
		Short: "Prints the address of a private key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.HexToKey(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), crypto.Address(key).Hex())
			return nil
		},
	})

	var keyHex string
	sign := &cobra.Command{
		Use:   "sign <message-hex>",
		Short: "Signs keccak256(message) as r||s||v",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := crypto.HexToKey(keyHex)
			if err != nil {
				return err
			}
			msg, err := decodeHex(args[0])
			if err != nil {
				return err
			}
			sig, err := crypto.Sign(msg, key)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%x\n", sig)
			return nil
		},
	}
	sign.Flags().StringVar(&keyHex, "key", "", "signing private key")
	_ = sign.MarkFlagRequired("key")
	cmd.AddCommand(sign)

	cmd.AddCommand(&cobra.Command{
		Use:   "verify <address> <message-hex> <signature-hex>",
		Short: "Checks that address signed message",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := parseAddress(args[0])
			if err != nil {
				return err
			}
			msg, err := decodeHex(args[1])
			if err != nil {
				return err
			}
			sig, err := decodeHex(args[2])
			if err != nil {
				return err
			}
			if !crypto.Verify(owner, msg, sig) {
				return errors.New("signature does not match")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	})
	return cmd
}
