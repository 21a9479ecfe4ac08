package confidential

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

type Keypair struct {
	PrivateKey []byte
	PublicKey  []byte
}

// PlainValue is the content of a note cipher.
type PlainValue struct {
	Quantity uint64
	Blinding []byte
}

// Input spends a note the caller owns. The engine needs the owner's keys to prove it.
type Input struct {
	EphemeralPk []byte
	SignPk      []byte
	Quantity    uint64
	Blinding    []byte
	ViewSk      []byte
	SpendSk     []byte
}

// Output creates a note for the holder of (ViewPk, SpendPk).
type Output struct {
	Quantity uint64
	ViewPk   []byte
	SpendPk  []byte
}

// TransferTx describes a transfer, deposit or withdraw. TxType holds the opcode.
type TransferTx struct {
	TxType            uint8
	Inputs            []Input
	Outputs           []Output
	AuthorizedAddress common.Address
}

type MintTx struct {
	TxType            uint8
	Outputs           []Output
	AuthorizedAddress common.Address
}

type BurnTx struct {
	TxType            uint8
	Inputs            []Input
	AuthorizedAddress common.Address
}

// InputNote is a consumed note as reported by the engine.
type InputNote struct {
	NoteID      []byte
	EphemeralPk []byte
	SignPk      []byte
	Token       []byte
}

// Hash is the identifier the validator reports for the note.
func (n *InputNote) Hash() common.Hash {
	return crypto.Keccak256Hash(n.NoteID)
}

// Owner is the encrypted owner the validator reports for the note.
func (n *InputNote) Owner() []byte {
	return encryptedOwner(n.EphemeralPk, n.SignPk)
}

// OutputNote is a created note as reported by the engine.
type OutputNote struct {
	NoteID      []byte
	EphemeralPk []byte
	SignPk      []byte
	Token       []byte
	CipherValue []byte
}

func (n *OutputNote) Hash() common.Hash {
	return crypto.Keccak256Hash(n.NoteID)
}

func (n *OutputNote) Owner() []byte {
	return encryptedOwner(n.EphemeralPk, n.SignPk)
}

// Tx is the engine's confidential transaction.
// PublicValue is the amount crossing the public boundary: minted, burned,
// deposited or withdrawn, depending on TxType.
type Tx struct {
	TxType            uint8
	Inputs            []InputNote
	Outputs           []OutputNote
	PublicValue       uint64
	AuthorizedAddress common.Address
}

func DecodeTx(blob []byte) (*Tx, error) {
	tx := new(Tx)
	if err := rlp.DecodeBytes(blob, tx); err != nil {
		return nil, errors.Wrap(err, "decode confidential tx")
	}
	return tx, nil
}

// TransferExtra travels next to the blob of a transfer, deposit or withdraw.
// DepositSignature is PublicOwner's signature over keccak256(confidentialTx).
type TransferExtra struct {
	PublicOwner      common.Address
	DepositSignature []byte
	MetaData         [][]byte
}

type MintExtra struct {
	PriorMintHash common.Hash
	MetaData      [][]byte
}

type BurnExtra struct {
	PriorBurnHash common.Hash
}

func encryptedOwner(ephemeralPk, signPk []byte) []byte {
	bz, err := rlp.EncodeToBytes([][]byte{ephemeralPk, signPk})
	if err != nil {
		panic(err)
	}
	return bz
}
