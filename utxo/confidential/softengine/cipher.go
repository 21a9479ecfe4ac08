package softengine

import (
	"crypto/cipher"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/chacha20poly1305"
)

var kdfPersonalization = []byte("Zcash_ExpandSeed")

// sharedSecret is blake2s of the shared point's X coordinate.
func sharedSecret(p *twistededwards.PointAffine) []byte {
	ax := p.X.Bytes()
	sum := blake2s.Sum256(ax[:])
	return sum[:]
}

// expandKey derives outputLen bytes from a 32 byte secret with a counter mode
// blake2s expansion, in the shape of Sapling's PRF^expand.
func expandKey(secret []byte, outputLen int) ([]byte, error) {
	if len(secret) != 32 {
		return nil, errors.New("secret must be 32 bytes")
	}

	var stream []byte
	var counter byte = 1
	for len(stream) < outputLen {
		h, err := blake2s.New256(kdfPersonalization)
		if err != nil {
			return nil, errors.Wrap(err, "new blake2s")
		}
		h.Write(secret)
		h.Write([]byte{counter})
		stream = append(stream, h.Sum(nil)...)

		counter++
		if counter == 0 {
			return nil, errors.New("KDF counter overflow")
		}
	}
	return stream[:outputLen], nil
}

func noteAEAD(shared *twistededwards.PointAffine) (cipher.AEAD, []byte, error) {
	stream, err := expandKey(sharedSecret(shared), chacha20poly1305.KeySize+chacha20poly1305.NonceSize)
	if err != nil {
		return nil, nil, err
	}
	a, err := chacha20poly1305.New(stream[:chacha20poly1305.KeySize])
	if err != nil {
		return nil, nil, errors.Wrap(err, "new ChaCha20-Poly1305")
	}
	return a, stream[chacha20poly1305.KeySize:], nil
}

// sealNote encrypts plaintext for the holder of the view key; ephemeralPk is authenticated.
func sealNote(shared *twistededwards.PointAffine, ephemeralPk, plaintext []byte) ([]byte, error) {
	aead, nonce, err := noteAEAD(shared)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, ephemeralPk), nil
}

func openNote(shared *twistededwards.PointAffine, ephemeralPk, ciphertext []byte) ([]byte, error) {
	aead, nonce, err := noteAEAD(shared)
	if err != nil {
		return nil, err
	}
	plain, err := aead.Open(nil, nonce, ciphertext, ephemeralPk)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decrypt note")
	}
	return plain, nil
}
