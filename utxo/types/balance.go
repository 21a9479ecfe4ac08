package types

import (
	"math/big"

	"github.com/pkg/errors"
)

// ValueBalance returns sum(outputs) - sum(inputs) + publicValue.
// A conserving transfer has a zero balance.
func ValueBalance(inputs []*InputNote, outputs []*OutputNote, publicValue PublicValue) *big.Int {
	bal := publicValue.Big()
	for _, out := range outputs {
		if out != nil && out.Value != nil {
			bal.Add(bal, out.Value.ToBig())
		}
	}
	for _, in := range inputs {
		if in != nil && in.Value != nil {
			bal.Sub(bal, in.Value.ToBig())
		}
	}
	return bal
}

// CheckConservation applies the balance rule the validator enforces on a transfer:
// the balance is zero, and a deposit (negative public value) consumes no inputs.
func CheckConservation(tx *Transfer) error {
	if tx.PublicValue.Sign() < 0 && len(tx.Inputs) != 0 {
		return errors.New("deposit must not consume input notes")
	}
	if bal := ValueBalance(tx.Inputs, tx.Outputs, tx.PublicValue); bal.Sign() != 0 {
		return errors.Errorf("value not conserved: balance %s", bal)
	}
	return nil
}
