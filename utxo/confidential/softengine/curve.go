package softengine

import (
	crand "crypto/rand"
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/kysee/privacy/utils"
	"github.com/pkg/errors"
)

const (
	scalarSize = 32
	pointSize  = 32
)

var curve = tedwards.GetEdwardsCurve()

func newScalar() (*big.Int, error) {
	for {
		k, err := crand.Int(crand.Reader, &curve.Order)
		if err != nil {
			return nil, err
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}

func scalarBytes(k *big.Int) []byte {
	return k.FillBytes(make([]byte, scalarSize))
}

func parseScalar(bz []byte) (*big.Int, error) {
	if len(bz) != scalarSize {
		return nil, errors.Errorf("scalar length %d", len(bz))
	}
	k := new(big.Int).SetBytes(bz)
	if k.Sign() == 0 || k.Cmp(&curve.Order) >= 0 {
		return nil, errors.New("scalar out of range")
	}
	return k, nil
}

func basePoint(k *big.Int) *tedwards.PointAffine {
	var p tedwards.PointAffine
	p.ScalarMultiplication(&curve.Base, k)
	return &p
}

func pointBytes(p *tedwards.PointAffine) []byte {
	bz := p.Bytes()
	return bz[:]
}

func parsePoint(bz []byte) (*tedwards.PointAffine, error) {
	if len(bz) != pointSize {
		return nil, errors.Errorf("point length %d", len(bz))
	}
	var p tedwards.PointAffine
	if _, err := p.SetBytes(bz); err != nil {
		return nil, err
	}
	if !p.IsOnCurve() {
		return nil, errors.New("point is not on curve")
	}
	return &p, nil
}

// ecdh returns k * P, the shared point of a Diffie-Hellman exchange.
func ecdh(k *big.Int, p *tedwards.PointAffine) (*tedwards.PointAffine, error) {
	var shared tedwards.PointAffine
	shared.ScalarMultiplication(p, k)
	if !shared.IsOnCurve() {
		return nil, errors.New("computed shared secret is not on curve")
	}
	return &shared, nil
}

// hashToScalar maps a shared point to the scalar offsetting a one-time key.
func hashToScalar(p *tedwards.PointAffine) *big.Int {
	h := new(big.Int).SetBytes(utils.MiMCHash(p.Marshal()))
	return h.Mod(h, &curve.Order)
}

// oneTimeKey returns Hs(shared)*G + spendPk, the key a note is sent to.
func oneTimeKey(shared, spendPk *tedwards.PointAffine) *tedwards.PointAffine {
	var p tedwards.PointAffine
	p.Add(basePoint(hashToScalar(shared)), spendPk)
	return &p
}
