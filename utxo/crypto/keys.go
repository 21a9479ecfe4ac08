package crypto

import (
	"crypto/ecdsa"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
)

func GenerateKey() (*ecdsa.PrivateKey, error) {
	return gethcrypto.GenerateKey()
}

// HexToKey parses a hex private key, with or without 0x prefix.
func HexToKey(hexkey string) (*ecdsa.PrivateKey, error) {
	key, err := gethcrypto.HexToECDSA(strings.TrimPrefix(hexkey, "0x"))
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "private key: %v", err)
	}
	return key, nil
}

// ParsePubkey accepts a 33 byte compressed or 65 byte uncompressed secp256k1 public key.
func ParsePubkey(bz []byte) (*ecdsa.PublicKey, error) {
	var (
		pub *ecdsa.PublicKey
		err error
	)
	switch len(bz) {
	case 33:
		pub, err = gethcrypto.DecompressPubkey(bz)
	case 65:
		pub, err = gethcrypto.UnmarshalPubkey(bz)
	default:
		return nil, types.InvalidArgument("public key length %d", len(bz))
	}
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "public key: %v", err)
	}
	return pub, nil
}

func Address(key *ecdsa.PrivateKey) common.Address {
	return gethcrypto.PubkeyToAddress(key.PublicKey)
}

func PubkeyBytes(pub *ecdsa.PublicKey) []byte {
	return gethcrypto.FromECDSAPub(pub)
}

func PubkeyAddress(pub *ecdsa.PublicKey) common.Address {
	return gethcrypto.PubkeyToAddress(*pub)
}
