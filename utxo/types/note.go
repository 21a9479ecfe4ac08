package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/kysee/privacy/utils"
	"go.uber.org/multierr"
)

const (
	// RandomSize is the length of the uniqueness salt of a note.
	RandomSize = 32
	// ValueBits is the protocol width of a note value.
	ValueBits = 128
	// SignatureSize is the length of an r||s||v signature.
	SignatureSize = 65
)

// Note is a commitment to an owner and a value.
// Its hash over (Owner, Value, Random) identifies it on chain.
type Note struct {
	Owner  common.Address
	Value  *uint256.Int
	Random []byte
}

// NewNote returns a note with a fresh random salt.
func NewNote(owner common.Address, value *uint256.Int) *Note {
	return &Note{
		Owner:  owner,
		Value:  value,
		Random: utils.RandBytes(RandomSize),
	}
}

func (n *Note) Bytes() []byte {
	bz, err := rlp.EncodeToBytes(n)
	if err != nil {
		panic(fmt.Sprintf("failed to RLP encode Note: %v", err))
	}
	return bz
}

func (n *Note) Hash() common.Hash {
	return crypto.Keccak256Hash(n.Bytes())
}

func (n *Note) Validate() error {
	return validateNoteFields(n.Value, n.Random)
}

// SpenderNote binds a note to the only address allowed to consume it.
// The owner's signature over its encoding authorizes the spend.
type SpenderNote struct {
	Owner   common.Address
	Value   *uint256.Int
	Random  []byte
	Spender common.Address
}

func NewSpenderNote(note *Note, spender common.Address) *SpenderNote {
	return &SpenderNote{
		Owner:   note.Owner,
		Value:   note.Value,
		Random:  note.Random,
		Spender: spender,
	}
}

// SigningBytes returns the bytes the owner signs.
func (sn *SpenderNote) SigningBytes() []byte {
	bz, err := rlp.EncodeToBytes(sn)
	if err != nil {
		panic(fmt.Sprintf("failed to RLP encode SpenderNote: %v", err))
	}
	return bz
}

func (sn *SpenderNote) Note() *Note {
	return &Note{Owner: sn.Owner, Value: sn.Value, Random: sn.Random}
}

// InputNote is a note being consumed, with the owner's SpenderNote signature.
type InputNote struct {
	Owner     common.Address
	Value     *uint256.Int
	Random    []byte
	Signature []byte
}

func (in *InputNote) Note() *Note {
	return &Note{Owner: in.Owner, Value: in.Value, Random: in.Random}
}

func (in *InputNote) Hash() common.Hash {
	return in.Note().Hash()
}

// SpenderNote rebuilds the signed binding for the given spender.
func (in *InputNote) SpenderNote(spender common.Address) *SpenderNote {
	return NewSpenderNote(in.Note(), spender)
}

func (in *InputNote) Validate() error {
	err := validateNoteFields(in.Value, in.Random)
	if len(in.Signature) != SignatureSize {
		err = multierr.Append(err, InvalidArgument("signature length %d, want %d", len(in.Signature), SignatureSize))
	}
	return err
}

// OutputNote is a note being created. MetaData travels with it but is not hashed.
type OutputNote struct {
	Owner    common.Address
	Value    *uint256.Int
	Random   []byte
	MetaData []byte
}

func NewOutputNote(owner common.Address, value *uint256.Int, metaData []byte) *OutputNote {
	n := NewNote(owner, value)
	return &OutputNote{Owner: n.Owner, Value: n.Value, Random: n.Random, MetaData: metaData}
}

func (on *OutputNote) Note() *Note {
	return &Note{Owner: on.Owner, Value: on.Value, Random: on.Random}
}

func (on *OutputNote) Hash() common.Hash {
	return on.Note().Hash()
}

func (on *OutputNote) Validate() error {
	return validateNoteFields(on.Value, on.Random)
}

// ApproveNote carries an owner's SpenderNote signature encrypted under a shared key.
type ApproveNote struct {
	Owner           common.Address
	Value           *uint256.Int
	Random          []byte
	SharedSignature []byte
}

func (an *ApproveNote) Note() *Note {
	return &Note{Owner: an.Owner, Value: an.Value, Random: an.Random}
}

func (an *ApproveNote) Hash() common.Hash {
	return an.Note().Hash()
}

func (an *ApproveNote) Validate() error {
	err := validateNoteFields(an.Value, an.Random)
	if len(an.SharedSignature) == 0 {
		err = multierr.Append(err, InvalidArgument("empty shared signature"))
	}
	return err
}

func validateNoteFields(value *uint256.Int, random []byte) error {
	var err error
	if value == nil {
		err = multierr.Append(err, InvalidArgument("nil value"))
	} else if value.BitLen() > ValueBits {
		err = multierr.Append(err, InvalidArgument("value exceeds %d bits", ValueBits))
	}
	if len(random) != RandomSize {
		err = multierr.Append(err, InvalidArgument("random length %d, want %d", len(random), RandomSize))
	}
	return err
}
