package crypto

import (
	"fmt"
	"testing"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	owner := Address(key)

	for _, msg := range [][]byte{nil, []byte("x"), utils.RandBytes(1000)} {
		sig, err := Sign(msg, key)
		require.NoError(t, err)
		require.Len(t, sig, types.SignatureSize)
		require.LessOrEqual(t, sig[64], byte(1))

		require.True(t, Verify(owner, msg, sig))
		require.True(t, VerifyPubkey(&key.PublicKey, msg, sig))

		recovered, err := Recover(msg, sig)
		require.NoError(t, err)
		require.Equal(t, owner, recovered)
	}
}

func TestSignMatchesGethEncoding(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	msg := []byte("spender bound note")

	hash := gethcrypto.Keccak256(msg)
	sig, err := Sign(msg, key)
	require.NoError(t, err)

	pub, err := gethcrypto.Ecrecover(hash, sig)
	require.NoError(t, err)
	require.Equal(t, gethcrypto.FromECDSAPub(&key.PublicKey), pub)
	require.True(t, gethcrypto.VerifySignature(pub, hash, sig[:64]))

	fmt.Printf("signature: %x\n", sig)
}

func TestVerifyRejectsTampering(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)
	other, err := GenerateKey()
	require.NoError(t, err)
	owner := Address(key)
	msg := []byte("message")

	sig, err := Sign(msg, key)
	require.NoError(t, err)

	require.False(t, Verify(Address(other), msg, sig))
	require.False(t, Verify(owner, []byte("messagf"), sig))

	flipped := append([]byte(nil), sig...)
	flipped[10] ^= 0x01
	require.False(t, Verify(owner, msg, flipped))

	badV := append([]byte(nil), sig...)
	badV[64] += recoveryIDOffset
	require.False(t, Verify(owner, msg, badV))

	require.False(t, Verify(owner, msg, nil))
	require.False(t, Verify(owner, msg, sig[:64]))
	require.False(t, Verify(owner, msg, make([]byte, types.SignatureSize)))
	require.False(t, VerifyPubkey(nil, msg, sig))
}

func TestSignRejectsBadInput(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	_, err = SignHash([]byte{1, 2, 3}, key)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
	_, err = Sign([]byte("m"), nil)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
	_, err = Recover([]byte("m"), []byte{1})
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestKeyHelpers(t *testing.T) {
	key, err := GenerateKey()
	require.NoError(t, err)

	back, err := HexToKey(fmt.Sprintf("%x", gethcrypto.FromECDSA(key)))
	require.NoError(t, err)
	require.Equal(t, Address(key), Address(back))

	_, err = HexToKey("zz")
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	pub, err := ParsePubkey(PubkeyBytes(&key.PublicKey))
	require.NoError(t, err)
	require.Equal(t, Address(key), gethcrypto.PubkeyToAddress(*pub))

	pub, err = ParsePubkey(gethcrypto.CompressPubkey(&key.PublicKey))
	require.NoError(t, err)
	require.Equal(t, Address(key), gethcrypto.PubkeyToAddress(*pub))

	_, err = ParsePubkey([]byte{4, 1})
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}
