package confidential

import (
	"bytes"
	"strings"

	"github.com/btcsuite/btcutil/base58"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
)

const (
	addressPrefix  = "cx"
	addressVersion = 0x01
)

// KeyMaterial holds a view and a spend keypair.
// It is a value: accessors return copies and nothing mutates it after creation.
type KeyMaterial struct {
	viewSk, viewPk   []byte
	spendSk, spendPk []byte
}

// NewKeyMaterial asks the engine for a fresh view and spend keypair.
func NewKeyMaterial(engine Engine) (KeyMaterial, error) {
	view, err := createKeypair(engine)
	if err != nil {
		return KeyMaterial{}, err
	}
	spend, err := createKeypair(engine)
	if err != nil {
		return KeyMaterial{}, err
	}
	return KeyMaterialFromBytes(view.PrivateKey, view.PublicKey, spend.PrivateKey, spend.PublicKey)
}

func KeyMaterialFromBytes(viewSk, viewPk, spendSk, spendPk []byte) (KeyMaterial, error) {
	if len(viewSk) == 0 || len(viewPk) == 0 || len(spendSk) == 0 || len(spendPk) == 0 {
		return KeyMaterial{}, types.InvalidArgument("empty key")
	}
	return KeyMaterial{
		viewSk:  bytes.Clone(viewSk),
		viewPk:  bytes.Clone(viewPk),
		spendSk: bytes.Clone(spendSk),
		spendPk: bytes.Clone(spendPk),
	}, nil
}

func (km KeyMaterial) ViewSk() []byte  { return bytes.Clone(km.viewSk) }
func (km KeyMaterial) ViewPk() []byte  { return bytes.Clone(km.viewPk) }
func (km KeyMaterial) SpendSk() []byte { return bytes.Clone(km.spendSk) }
func (km KeyMaterial) SpendPk() []byte { return bytes.Clone(km.spendPk) }

func (km KeyMaterial) IsZero() bool {
	return len(km.viewSk) == 0
}

// Recipient is the public half, what senders need to pay this key material.
func (km KeyMaterial) Recipient() Recipient {
	return Recipient{ViewPk: km.ViewPk(), SpendPk: km.SpendPk()}
}

// Input builds the descriptor that spends an owned note.
func (km KeyMaterial) Input(note *OwnedNote) Input {
	return Input{
		EphemeralPk: bytes.Clone(note.EphemeralPk),
		SignPk:      bytes.Clone(note.SignPk),
		Quantity:    note.Quantity,
		Blinding:    bytes.Clone(note.Blinding),
		ViewSk:      km.ViewSk(),
		SpendSk:     km.SpendSk(),
	}
}

type Recipient struct {
	ViewPk  []byte
	SpendPk []byte
}

func (r Recipient) Output(quantity uint64) Output {
	return Output{Quantity: quantity, ViewPk: bytes.Clone(r.ViewPk), SpendPk: bytes.Clone(r.SpendPk)}
}

// Address encodes the recipient as "cx" + base58check(rlp([viewPk, spendPk])).
func (r Recipient) Address() string {
	bz, err := rlp.EncodeToBytes(&r)
	if err != nil {
		panic(err)
	}
	return addressPrefix + base58.CheckEncode(bz, addressVersion)
}

func ParseAddress(addr string) (Recipient, error) {
	if !strings.HasPrefix(addr, addressPrefix) {
		return Recipient{}, types.InvalidArgument("address prefix")
	}
	bz, ver, err := base58.CheckDecode(addr[len(addressPrefix):])
	if err != nil {
		return Recipient{}, errors.Wrapf(types.ErrInvalidArgument, "address: %v", err)
	}
	if ver != addressVersion {
		return Recipient{}, types.InvalidArgument("address version: expected(%d), got(%d)", addressVersion, ver)
	}
	var r Recipient
	if err := rlp.DecodeBytes(bz, &r); err != nil {
		return Recipient{}, errors.Wrapf(types.ErrInvalidArgument, "address payload: %v", err)
	}
	if len(r.ViewPk) == 0 || len(r.SpendPk) == 0 {
		return Recipient{}, types.InvalidArgument("address has empty key")
	}
	return r, nil
}
