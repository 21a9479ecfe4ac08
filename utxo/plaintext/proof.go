package plaintext

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/kysee/privacy/utxo/version"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Data is the signed body of a proof: the version tag and the encoded operation payload.
type Data struct {
	Version version.Tag
	Payload []byte
}

// Proof is the envelope submitted to the validator contract.
// Signature is the submitter's signature over keccak256(Data).
type Proof struct {
	Data      []byte
	Signature []byte
}

func (p *Proof) Bytes() []byte {
	bz, err := rlp.EncodeToBytes(p)
	if err != nil {
		panic(err)
	}
	return bz
}

func DecodeProof(bz []byte) (*Proof, error) {
	p := new(Proof)
	if err := rlp.DecodeBytes(bz, p); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "decode proof: %v", err)
	}
	return p, nil
}

// Open decodes the signed body.
func (p *Proof) Open() (*Data, error) {
	d := new(Data)
	if err := rlp.DecodeBytes(p.Data, d); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "decode proof data: %v", err)
	}
	return d, nil
}

// Submitter recovers the address that signed the proof.
func (p *Proof) Submitter() (common.Address, error) {
	return crypto.Recover(p.Data, p.Signature)
}

func (p *Proof) SubmitterPubkey() (*ecdsa.PublicKey, error) {
	return crypto.RecoverPubkey(gethcrypto.Keccak256(p.Data), p.Signature)
}

// PayloadHash is keccak256 of the encoded payload.
// For an accepted mint or burn it becomes the prior hash of the next one.
func (p *Proof) PayloadHash() (common.Hash, error) {
	d, err := p.Open()
	if err != nil {
		return common.Hash{}, err
	}
	return gethcrypto.Keccak256Hash(d.Payload), nil
}

// DecodePayload decodes the payload by the tag's opcode. The result is one of
// *types.Transfer, *types.Mint, *types.Burn or *types.Approve.
func (d *Data) DecodePayload() (interface{}, error) {
	switch op := d.Version.Opcode(); op {
	case version.Transfer:
		return d.Transfer()
	case version.Mint:
		return d.Mint()
	case version.Burn:
		return d.Burn()
	case version.Approve:
		return d.Approve()
	default:
		return nil, types.InvalidArgument("plaintext proof has no %s payload", op)
	}
}

func (d *Data) Transfer() (*types.Transfer, error) {
	tx := new(types.Transfer)
	if err := d.decode(version.Transfer, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

func (d *Data) Mint() (*types.Mint, error) {
	m := new(types.Mint)
	if err := d.decode(version.Mint, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (d *Data) Burn() (*types.Burn, error) {
	b := new(types.Burn)
	if err := d.decode(version.Burn, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (d *Data) Approve() (*types.Approve, error) {
	a := new(types.Approve)
	if err := d.decode(version.Approve, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (d *Data) decode(op version.Opcode, v interface{ Validate() error }) error {
	if d.Version.Opcode() != op {
		return types.InvalidArgument("proof is %s, not %s", d.Version.Opcode(), op)
	}
	if err := rlp.DecodeBytes(d.Payload, v); err != nil {
		return errors.Wrapf(types.ErrInvalidArgument, "decode %s payload: %v", op, err)
	}
	return v.Validate()
}

// VerifyInputs checks the proof signature and every input signature against
// the submitter as spender, the same way the validator does before accepting.
func (p *Proof) VerifyInputs() error {
	submitter, err := p.Submitter()
	if err != nil {
		return err
	}
	d, err := p.Open()
	if err != nil {
		return err
	}

	var inputs []*types.InputNote
	switch d.Version.Opcode() {
	case version.Transfer:
		tx, err := d.Transfer()
		if err != nil {
			return err
		}
		inputs = tx.Inputs
	case version.Burn:
		b, err := d.Burn()
		if err != nil {
			return err
		}
		inputs = b.Inputs
	case version.Approve:
		a, err := d.Approve()
		if err != nil {
			return err
		}
		if a.Owner != submitter {
			return types.InvalidArgument("approve signed by %s, note owned by %s", submitter, a.Owner)
		}
	}

	for i, in := range inputs {
		if !crypto.Verify(in.Owner, in.SpenderNote(submitter).SigningBytes(), in.Signature) {
			err = multierr.Append(err, types.InvalidArgument("input %d not signed by %s for %s", i, in.Owner, submitter))
		}
	}
	return err
}
