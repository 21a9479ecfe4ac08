package types

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/kysee/privacy/utils"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNoteHashDeterminism(t *testing.T) {
	owner := common.BytesToAddress(utils.RandBytes(20))
	random := utils.RandBytes(RandomSize)

	n1 := &Note{Owner: owner, Value: uint256.NewInt(100), Random: random}
	n2 := &Note{Owner: owner, Value: uint256.NewInt(100), Random: bytes.Clone(random)}
	require.Equal(t, n1.Hash(), n2.Hash())

	otherOwner := &Note{Owner: common.BytesToAddress(utils.RandBytes(20)), Value: n1.Value, Random: random}
	otherValue := &Note{Owner: owner, Value: uint256.NewInt(101), Random: random}
	otherRandom := &Note{Owner: owner, Value: n1.Value, Random: utils.RandBytes(RandomSize)}
	require.NotEqual(t, n1.Hash(), otherOwner.Hash())
	require.NotEqual(t, n1.Hash(), otherValue.Hash())
	require.NotEqual(t, n1.Hash(), otherRandom.Hash())
}

func TestNoteHashEncoding(t *testing.T) {
	n := NewNote(common.HexToAddress("0x1000000000000000000000000000000000000001"), uint256.NewInt(15))
	expected, err := rlp.EncodeToBytes([]interface{}{n.Owner.Bytes(), uint64(15), n.Random})
	require.NoError(t, err)
	require.Equal(t, expected, n.Bytes())
	require.Equal(t, crypto.Keccak256Hash(expected), n.Hash())
}

func TestOutputNoteHashIgnoresMetaData(t *testing.T) {
	owner := common.BytesToAddress(utils.RandBytes(20))
	out := NewOutputNote(owner, uint256.NewInt(7), []byte("memo"))
	same := &OutputNote{Owner: out.Owner, Value: out.Value, Random: out.Random, MetaData: []byte("other memo")}

	require.Equal(t, out.Hash(), same.Hash())
	require.Equal(t, out.Note().Hash(), out.Hash())
}

func TestInputNoteHashMatchesNote(t *testing.T) {
	n := NewNote(common.BytesToAddress(utils.RandBytes(20)), uint256.NewInt(9))
	in := &InputNote{Owner: n.Owner, Value: n.Value, Random: n.Random, Signature: make([]byte, SignatureSize)}
	require.Equal(t, n.Hash(), in.Hash())

	spender := common.BytesToAddress(utils.RandBytes(20))
	sn := in.SpenderNote(spender)
	require.Equal(t, spender, sn.Spender)
	require.NotEqual(t, n.Bytes(), sn.SigningBytes())
	require.Equal(t, n.Hash(), sn.Note().Hash())
}

func TestNoteValidate(t *testing.T) {
	owner := common.BytesToAddress(utils.RandBytes(20))

	ok := NewNote(owner, new(uint256.Int).Lsh(uint256.NewInt(1), 127))
	require.NoError(t, ok.Validate())

	tooBig := NewNote(owner, new(uint256.Int).Lsh(uint256.NewInt(1), 128))
	require.True(t, errors.Is(tooBig.Validate(), ErrInvalidArgument))

	shortRandom := &Note{Owner: owner, Value: uint256.NewInt(1), Random: []byte{1, 2, 3}}
	require.True(t, errors.Is(shortRandom.Validate(), ErrInvalidArgument))

	in := &InputNote{Owner: owner, Value: nil, Random: nil, Signature: []byte{1}}
	err := in.Validate()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidArgument))
	require.Contains(t, err.Error(), "nil value")
	require.Contains(t, err.Error(), "signature length")
}

func TestPublicValueZigzag(t *testing.T) {
	cases := []int64{0, 1, -1, 22, -22, 1 << 40, -(1 << 40)}
	for _, c := range cases {
		bz, err := rlp.EncodeToBytes(NewPublicValue(c))
		require.NoError(t, err)

		var pv PublicValue
		require.NoError(t, rlp.DecodeBytes(bz, &pv))
		require.Equal(t, big.NewInt(c), pv.Big())
	}

	bz, err := rlp.EncodeToBytes(NewPublicValue(-22))
	require.NoError(t, err)
	expected, err := rlp.EncodeToBytes(uint64(43))
	require.NoError(t, err)
	require.Equal(t, expected, bz)

	var zero PublicValue
	require.Equal(t, 0, zero.Sign())
	require.Equal(t, "0", zero.String())
}

func TestPublicValueRange(t *testing.T) {
	_, err := PublicValueFromBig(maxInt128)
	require.NoError(t, err)
	_, err = PublicValueFromBig(minInt128)
	require.NoError(t, err)

	_, err = PublicValueFromBig(new(big.Int).Add(maxInt128, big.NewInt(1)))
	require.True(t, errors.Is(err, ErrInvalidArgument))
	_, err = PublicValueFromBig(new(big.Int).Sub(minInt128, big.NewInt(1)))
	require.True(t, errors.Is(err, ErrInvalidArgument))

	pv, err := PublicValueFromBig(minInt128)
	require.NoError(t, err)
	bz, err := rlp.EncodeToBytes(pv)
	require.NoError(t, err)
	var back PublicValue
	require.NoError(t, rlp.DecodeBytes(bz, &back))
	require.Zero(t, back.Cmp(pv))
}

func TestTransferRLP(t *testing.T) {
	owner := common.BytesToAddress(utils.RandBytes(20))
	tx := &Transfer{
		Inputs: []*InputNote{{
			Owner: owner, Value: uint256.NewInt(22), Random: utils.RandBytes(RandomSize), Signature: utils.RandBytes(SignatureSize),
		}},
		Outputs:     []*OutputNote{NewOutputNote(owner, uint256.NewInt(20), []byte("m"))},
		PublicOwner: owner,
		PublicValue: NewPublicValue(2),
		MetaData:    []byte("remark"),
	}
	require.NoError(t, tx.Validate())

	bz, err := rlp.EncodeToBytes(tx)
	require.NoError(t, err)

	var back Transfer
	require.NoError(t, rlp.DecodeBytes(bz, &back))
	require.Equal(t, tx.Inputs[0].Hash(), back.Inputs[0].Hash())
	require.Equal(t, tx.Outputs[0].MetaData, back.Outputs[0].MetaData)
	require.Zero(t, tx.PublicValue.Cmp(back.PublicValue))
	require.Equal(t, tx.MetaData, back.MetaData)
}

func TestPayloadValidate(t *testing.T) {
	owner := common.BytesToAddress(utils.RandBytes(20))

	require.True(t, errors.Is((&Mint{}).Validate(), ErrInvalidArgument))
	require.True(t, errors.Is((&Burn{}).Validate(), ErrInvalidArgument))
	require.True(t, errors.Is((&Transfer{PublicValue: NewPublicValue(-1)}).Validate(), ErrInvalidArgument))
	require.True(t, errors.Is((&Transfer{Outputs: []*OutputNote{nil}}).Validate(), ErrInvalidArgument))

	m := &Mint{Outputs: []*OutputNote{NewOutputNote(owner, uint256.NewInt(1), nil)}}
	require.NoError(t, m.Validate())

	a := &Approve{Owner: owner, Value: uint256.NewInt(1), Random: utils.RandBytes(RandomSize)}
	require.True(t, errors.Is(a.Validate(), ErrInvalidArgument))
}
