package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	ivSize  = aes.BlockSize
	tagSize = sha256.Size
)

var kdfInfo = []byte("privacy/shared-secret/aes-cbc-hmac")

// SharedKey is keccak256 of the ECDH shared X coordinate.
type SharedKey [32]byte

// DeriveSharedKey computes the key shared by the owner of priv and the owner of pub.
// Both parties derive the same key from their own private key and the other's public key.
func DeriveSharedKey(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey) (SharedKey, error) {
	if priv == nil || pub == nil {
		return SharedKey{}, types.InvalidArgument("nil key")
	}
	dpub, err := secp256k1.ParsePubKey(gethcrypto.FromECDSAPub(pub))
	if err != nil {
		return SharedKey{}, errors.Wrapf(types.ErrInvalidArgument, "public key not on curve: %v", err)
	}
	dpriv := secp256k1.PrivKeyFromBytes(gethcrypto.FromECDSA(priv))
	defer dpriv.Zero()

	x := secp256k1.GenerateSharedSecret(dpriv, dpub)
	return SharedKey(gethcrypto.Keccak256Hash(x)), nil
}

func (k SharedKey) subkeys() (encKey, macKey []byte) {
	r := hkdf.New(sha256.New, k[:], nil, kdfInfo)
	buf := make([]byte, 64)
	if _, err := io.ReadFull(r, buf); err != nil {
		panic(err)
	}
	return buf[:32], buf[32:]
}

// Encrypt returns iv || AES-256-CBC(PKCS#7(plaintext)) || HMAC-SHA256(iv || ciphertext).
func Encrypt(key SharedKey, plaintext []byte) ([]byte, error) {
	encKey, macKey := key.subkeys()

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, errors.Wrap(err, "new cipher")
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, ivSize+len(padded), ivSize+len(padded)+tagSize)
	copy(out, utils.RandBytes(ivSize))
	cipher.NewCBCEncrypter(block, out[:ivSize]).CryptBlocks(out[ivSize:], padded)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(out)
	return mac.Sum(out), nil
}

// Decrypt reverses Encrypt. Every failure is reported as types.ErrDecrypt.
func Decrypt(key SharedKey, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < ivSize+aes.BlockSize+tagSize ||
		(len(ciphertext)-ivSize-tagSize)%aes.BlockSize != 0 {
		return nil, errors.Wrap(types.ErrDecrypt, "ciphertext length")
	}
	encKey, macKey := key.subkeys()

	body, tag := ciphertext[:len(ciphertext)-tagSize], ciphertext[len(ciphertext)-tagSize:]
	mac := hmac.New(sha256.New, macKey)
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, errors.Wrap(types.ErrDecrypt, "authentication")
	}

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, errors.Wrap(types.ErrDecrypt, err.Error())
	}
	plain := make([]byte, len(body)-ivSize)
	cipher.NewCBCDecrypter(block, body[:ivSize]).CryptBlocks(plain, body[ivSize:])

	plain, err = pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return nil, errors.Wrap(types.ErrDecrypt, err.Error())
	}
	return plain, nil
}

// EncryptFor derives the shared key of (priv, pub) and encrypts plaintext under it.
func EncryptFor(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey, plaintext []byte) ([]byte, error) {
	key, err := DeriveSharedKey(priv, pub)
	if err != nil {
		return nil, err
	}
	return Encrypt(key, plaintext)
}

func DecryptFrom(priv *ecdsa.PrivateKey, pub *ecdsa.PublicKey, ciphertext []byte) ([]byte, error) {
	key, err := DeriveSharedKey(priv, pub)
	if err != nil {
		return nil, err
	}
	return Decrypt(key, ciphertext)
}

func pkcs7Pad(in []byte, blockSize int) []byte {
	n := blockSize - len(in)%blockSize
	return append(bytes.Clone(in), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(in []byte, blockSize int) ([]byte, error) {
	if len(in) == 0 || len(in)%blockSize != 0 {
		return nil, errors.New("bad padded length")
	}
	n := int(in[len(in)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("bad padding")
	}
	for _, b := range in[len(in)-n:] {
		if int(b) != n {
			return nil, errors.New("bad padding")
		}
	}
	return in[:len(in)-n], nil
}
