package types

import (
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

var (
	maxInt128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128 = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
)

// PublicValue is the signed 128-bit amount moved between the public balance and the note pool.
// Negative values deposit into the pool, positive values withdraw from it.
// On the wire it is a zigzag-encoded unsigned integer.
type PublicValue struct {
	v *big.Int
}

func NewPublicValue(v int64) PublicValue {
	return PublicValue{v: big.NewInt(v)}
}

func PublicValueFromBig(v *big.Int) (PublicValue, error) {
	if v == nil {
		return PublicValue{}, nil
	}
	if v.Cmp(minInt128) < 0 || v.Cmp(maxInt128) > 0 {
		return PublicValue{}, InvalidArgument("public value %s out of int128 range", v)
	}
	return PublicValue{v: new(big.Int).Set(v)}, nil
}

func (pv PublicValue) Big() *big.Int {
	if pv.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(pv.v)
}

func (pv PublicValue) Sign() int {
	if pv.v == nil {
		return 0
	}
	return pv.v.Sign()
}

func (pv PublicValue) String() string {
	return pv.Big().String()
}

func (pv PublicValue) Cmp(other PublicValue) int {
	return pv.Big().Cmp(other.Big())
}

func (pv PublicValue) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, zigzag(pv.Big()))
}

func (pv *PublicValue) DecodeRLP(s *rlp.Stream) error {
	u, err := s.BigInt()
	if err != nil {
		return err
	}
	if u.BitLen() > 128 {
		return errors.New("public value overflows int128")
	}
	pv.v = unzigzag(u)
	return nil
}

func zigzag(v *big.Int) *big.Int {
	if v.Sign() >= 0 {
		return new(big.Int).Lsh(v, 1)
	}
	u := new(big.Int).Lsh(new(big.Int).Neg(v), 1)
	return u.Sub(u, big.NewInt(1))
}

func unzigzag(u *big.Int) *big.Int {
	if u.Bit(0) == 0 {
		return new(big.Int).Rsh(u, 1)
	}
	v := new(big.Int).Add(u, big.NewInt(1))
	v.Rsh(v, 1)
	return v.Neg(v)
}
