package crypto

import (
	"crypto/ecdsa"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	decredecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kysee/privacy/utxo/types"
)

// recoveryIDOffset is added to the recovery id by compact signing.
// It is removed exactly once so that v is 0 or 1 on the wire.
const recoveryIDOffset = 27

// Sign signs keccak256(message) and returns r||s||v.
func Sign(message []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	return SignHash(gethcrypto.Keccak256(message), key)
}

func SignHash(hash []byte, key *ecdsa.PrivateKey) ([]byte, error) {
	if len(hash) != 32 {
		return nil, types.InvalidArgument("hash length %d, want 32", len(hash))
	}
	if key == nil {
		return nil, types.InvalidArgument("nil private key")
	}
	priv := secp256k1.PrivKeyFromBytes(gethcrypto.FromECDSA(key))
	defer priv.Zero()

	compact := decredecdsa.SignCompact(priv, hash, false)

	sig := make([]byte, types.SignatureSize)
	copy(sig, compact[1:])
	sig[64] = compact[0] - recoveryIDOffset
	return sig, nil
}

// Recover returns the address that signed keccak256(message).
func Recover(message, sig []byte) (common.Address, error) {
	pub, err := RecoverPubkey(gethcrypto.Keccak256(message), sig)
	if err != nil {
		return common.Address{}, err
	}
	return gethcrypto.PubkeyToAddress(*pub), nil
}

func RecoverPubkey(hash, sig []byte) (*ecdsa.PublicKey, error) {
	if len(hash) != 32 {
		return nil, types.InvalidArgument("hash length %d, want 32", len(hash))
	}
	if len(sig) != types.SignatureSize || sig[64] > 1 {
		return nil, types.InvalidArgument("malformed signature")
	}
	pub, err := gethcrypto.SigToPub(hash, sig)
	if err != nil {
		return nil, types.InvalidArgument("recover signer: %v", err)
	}
	return pub, nil
}

// Verify reports whether sig is owner's signature over keccak256(message).
func Verify(owner common.Address, message, sig []byte) bool {
	return VerifyHash(owner, gethcrypto.Keccak256(message), sig)
}

func VerifyHash(owner common.Address, hash, sig []byte) bool {
	pub, err := RecoverPubkey(hash, sig)
	if err != nil {
		return false
	}
	return gethcrypto.PubkeyToAddress(*pub) == owner
}

func VerifyPubkey(pub *ecdsa.PublicKey, message, sig []byte) bool {
	if pub == nil {
		return false
	}
	return Verify(gethcrypto.PubkeyToAddress(*pub), message, sig)
}
