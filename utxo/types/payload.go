package types

import (
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/multierr"
)

// Transfer consumes Inputs and creates Outputs, optionally moving
// PublicValue between the note pool and PublicOwner's public balance.
type Transfer struct {
	Inputs      []*InputNote
	Outputs     []*OutputNote
	PublicOwner common.Address
	PublicValue PublicValue
	MetaData    []byte
}

func (tx *Transfer) Validate() error {
	var err error
	for i, in := range tx.Inputs {
		if in == nil {
			err = multierr.Append(err, InvalidArgument("input %d is nil", i))
			continue
		}
		err = multierr.Append(err, in.Validate())
	}
	for i, out := range tx.Outputs {
		if out == nil {
			err = multierr.Append(err, InvalidArgument("output %d is nil", i))
			continue
		}
		err = multierr.Append(err, out.Validate())
	}
	if tx.PublicValue.Sign() != 0 && tx.PublicOwner == (common.Address{}) {
		err = multierr.Append(err, InvalidArgument("public value without public owner"))
	}
	return err
}

// Mint creates supply. PriorMintHash must be the hash of the last accepted mint.
type Mint struct {
	PriorMintHash common.Hash
	Outputs       []*OutputNote
}

func (m *Mint) Validate() error {
	var err error
	if len(m.Outputs) == 0 {
		err = multierr.Append(err, InvalidArgument("mint without outputs"))
	}
	for i, out := range m.Outputs {
		if out == nil {
			err = multierr.Append(err, InvalidArgument("output %d is nil", i))
			continue
		}
		err = multierr.Append(err, out.Validate())
	}
	return err
}

// Burn destroys supply. PriorBurnHash must be the hash of the last accepted burn.
type Burn struct {
	PriorBurnHash common.Hash
	Inputs        []*InputNote
}

func (b *Burn) Validate() error {
	var err error
	if len(b.Inputs) == 0 {
		err = multierr.Append(err, InvalidArgument("burn without inputs"))
	}
	for i, in := range b.Inputs {
		if in == nil {
			err = multierr.Append(err, InvalidArgument("input %d is nil", i))
			continue
		}
		err = multierr.Append(err, in.Validate())
	}
	return err
}

// Approve delegates the spend of one note.
type Approve = ApproveNote
