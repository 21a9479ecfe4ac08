// Package result decodes the records a validator contract returns for an
// accepted proof. Decoding is strict: a record with missing or extra fields,
// trailing bytes or an out of range number is ErrMalformedResult. Nothing here
// re-validates what the chain accepted.
package result

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/kysee/privacy/utxo/types"
)

// ConsumedNote is a note the proof spent. For confidential proofs Owner is the
// encoded (ephemeralPk, signPk) pair, otherwise an address.
type ConsumedNote struct {
	Owner    []byte
	NoteHash common.Hash
}

type CreatedNote struct {
	Owner    []byte
	NoteHash common.Hash
	MetaData []byte
}

type TransferResult struct {
	Inputs      []ConsumedNote
	Outputs     []CreatedNote
	PublicOwner common.Address
	PublicValue types.PublicValue
	Sender      []byte
}

type ApproveResult struct {
	NoteHash   common.Hash
	SharedSign []byte
	Sender     []byte
}

type MintResult struct {
	OldMintHash common.Hash
	NewMintHash common.Hash
	TotalMint   *uint256.Int
	Outputs     []CreatedNote
	Sender      []byte
}

type BurnResult struct {
	OldBurnHash common.Hash
	NewBurnHash common.Hash
	TotalBurn   *uint256.Int
	Inputs      []ConsumedNote
	Sender      []byte
}

func DecodeTransfer(bz []byte) (*TransferResult, error) {
	r := new(TransferResult)
	if err := decode(bz, r, "transfer result"); err != nil {
		return nil, err
	}
	return r, nil
}

func DecodeApprove(bz []byte) (*ApproveResult, error) {
	r := new(ApproveResult)
	if err := decode(bz, r, "approve result"); err != nil {
		return nil, err
	}
	return r, nil
}

func DecodeMint(bz []byte) (*MintResult, error) {
	r := new(MintResult)
	if err := decode(bz, r, "mint result"); err != nil {
		return nil, err
	}
	if err := checkU128(r.TotalMint, "mint result total"); err != nil {
		return nil, err
	}
	return r, nil
}

func DecodeBurn(bz []byte) (*BurnResult, error) {
	r := new(BurnResult)
	if err := decode(bz, r, "burn result"); err != nil {
		return nil, err
	}
	if err := checkU128(r.TotalBurn, "burn result total"); err != nil {
		return nil, err
	}
	return r, nil
}

func decode(bz []byte, v interface{}, what string) error {
	if len(bz) == 0 {
		return types.MalformedResult(nil, what+": empty")
	}
	if err := rlp.DecodeBytes(bz, v); err != nil {
		return types.MalformedResult(err, what)
	}
	return nil
}

func checkU128(v *uint256.Int, what string) error {
	if v == nil || v.BitLen() > types.ValueBits {
		return types.MalformedResult(nil, what+" exceeds 128 bits")
	}
	return nil
}

// senderAddress interprets a result sender as an account address.
func senderAddress(sender []byte, what string) (common.Address, error) {
	if len(sender) != common.AddressLength {
		return common.Address{}, types.MalformedResult(nil, what+" sender is not an address")
	}
	return common.BytesToAddress(sender), nil
}

func (r *TransferResult) SenderAddress() (common.Address, error) {
	return senderAddress(r.Sender, "transfer result")
}

func (r *ApproveResult) SenderAddress() (common.Address, error) {
	return senderAddress(r.Sender, "approve result")
}

func (r *MintResult) SenderAddress() (common.Address, error) {
	return senderAddress(r.Sender, "mint result")
}

func (r *BurnResult) SenderAddress() (common.Address, error) {
	return senderAddress(r.Sender, "burn result")
}

func consumedHashes(notes []ConsumedNote) []common.Hash {
	hashes := make([]common.Hash, len(notes))
	for i := range notes {
		hashes[i] = notes[i].NoteHash
	}
	return hashes
}

func createdHashes(notes []CreatedNote) []common.Hash {
	hashes := make([]common.Hash, len(notes))
	for i := range notes {
		hashes[i] = notes[i].NoteHash
	}
	return hashes
}

func (r *TransferResult) InputHashes() []common.Hash  { return consumedHashes(r.Inputs) }
func (r *TransferResult) OutputHashes() []common.Hash { return createdHashes(r.Outputs) }
func (r *MintResult) OutputHashes() []common.Hash     { return createdHashes(r.Outputs) }
func (r *BurnResult) InputHashes() []common.Hash      { return consumedHashes(r.Inputs) }
