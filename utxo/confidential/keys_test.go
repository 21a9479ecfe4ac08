package confidential

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

// mockEngine hands out canned answers and records what it was asked.
type mockEngine struct {
	keypairs   [][]byte
	txBlob     []byte
	plain      []byte
	owner      bool
	err        error
	ownerErr   error
	descriptor []byte
}

func (m *mockEngine) CreateKeypair() ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	kp := m.keypairs[0]
	m.keypairs = m.keypairs[1:]
	return kp, nil
}

func (m *mockEngine) CreateTx(descriptor []byte) ([]byte, error) {
	m.descriptor = descriptor
	if m.err != nil {
		return nil, m.err
	}
	return m.txBlob, nil
}

func (m *mockEngine) DecryptNote(cipherValue, viewSk []byte) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.plain, nil
}

func (m *mockEngine) IsNoteOwner(ephemeralPk, signPk, spendPk, viewSk []byte) (bool, error) {
	if m.ownerErr != nil {
		return false, m.ownerErr
	}
	return m.owner, nil
}

func encode(t *testing.T, v interface{}) []byte {
	bz, err := rlp.EncodeToBytes(v)
	require.NoError(t, err)
	return bz
}

func testKeyMaterial(t *testing.T) KeyMaterial {
	km, err := KeyMaterialFromBytes([]byte{1}, []byte{2}, []byte{3}, []byte{4})
	require.NoError(t, err)
	return km
}

func TestKeyMaterialIsImmutable(t *testing.T) {
	viewSk := []byte{1, 1}
	km, err := KeyMaterialFromBytes(viewSk, []byte{2}, []byte{3}, []byte{4})
	require.NoError(t, err)

	viewSk[0] = 9
	require.Equal(t, []byte{1, 1}, km.ViewSk())

	got := km.ViewSk()
	got[0] = 9
	require.Equal(t, []byte{1, 1}, km.ViewSk())

	r := km.Recipient()
	r.SpendPk[0] = 9
	require.Equal(t, []byte{4}, km.SpendPk())

	_, err = KeyMaterialFromBytes(nil, []byte{2}, []byte{3}, []byte{4})
	require.ErrorIs(t, err, types.ErrInvalidArgument)
	require.True(t, KeyMaterial{}.IsZero())
}

func TestNewKeyMaterial(t *testing.T) {
	m := &mockEngine{keypairs: [][]byte{
		encode(t, &Keypair{PrivateKey: []byte{1}, PublicKey: []byte{2}}),
		encode(t, &Keypair{PrivateKey: []byte{3}, PublicKey: []byte{4}}),
	}}
	km, err := NewKeyMaterial(m)
	require.NoError(t, err)
	require.Equal(t, []byte{1}, km.ViewSk())
	require.Equal(t, []byte{2}, km.ViewPk())
	require.Equal(t, []byte{3}, km.SpendSk())
	require.Equal(t, []byte{4}, km.SpendPk())

	m = &mockEngine{keypairs: [][]byte{{0x01}}}
	_, err = NewKeyMaterial(m)
	var ee *types.EngineError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, CodeUnknown, ee.Code)
}

func TestAddressRoundTrip(t *testing.T) {
	r := Recipient{ViewPk: bytes.Repeat([]byte{0xaa}, 32), SpendPk: bytes.Repeat([]byte{0xbb}, 32)}
	addr := r.Address()
	require.True(t, len(addr) > 2 && addr[:2] == "cx")

	parsed, err := ParseAddress(addr)
	require.NoError(t, err)
	require.Equal(t, r, parsed)

	for _, bad := range []string{"", "zz" + addr[2:], addr[:len(addr)-1], "cx"} {
		_, err := ParseAddress(bad)
		require.ErrorIs(t, err, types.ErrInvalidArgument, bad)
	}
}

func TestEngineErrorPropagation(t *testing.T) {
	submitter, err := crypto.GenerateKey()
	require.NoError(t, err)
	km := testKeyMaterial(t)

	native := &mockEngine{err: &types.EngineError{Code: 42, Message: "no proof"}}
	_, err = NewEnvelope(native).Mint(common.Hash{}, []Output{km.Recipient().Output(1)}, nil, submitter)
	var ee *types.EngineError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, int32(42), ee.Code)
	require.Equal(t, "no proof", ee.Message)

	plain := &mockEngine{err: errors.New("segfault")}
	_, err = NewEnvelope(plain).Mint(common.Hash{}, []Output{km.Recipient().Output(1)}, nil, submitter)
	require.True(t, errors.As(err, &ee))
	require.Equal(t, CodeUnknown, ee.Code)
	require.Contains(t, ee.Message, "segfault")

	garbage := &mockEngine{txBlob: []byte{0x01}}
	_, err = NewEnvelope(garbage).Mint(common.Hash{}, []Output{km.Recipient().Output(1)}, nil, submitter)
	require.True(t, errors.As(err, &ee))
}

func TestEnvelopeDescriptor(t *testing.T) {
	submitter, err := crypto.GenerateKey()
	require.NoError(t, err)
	km := testKeyMaterial(t)

	tx := &Tx{TxType: 5, AuthorizedAddress: crypto.Address(submitter)}
	m := &mockEngine{txBlob: encode(t, tx)}
	_, err = NewEnvelope(m).Withdraw([]Input{km.Input(&OwnedNote{EphemeralPk: []byte{5}, SignPk: []byte{6}, Quantity: 7})}, nil, nil, common.HexToAddress("0x01"), submitter)
	require.NoError(t, err)

	var d TransferTx
	require.NoError(t, rlp.DecodeBytes(m.descriptor, &d))
	require.Equal(t, uint8(5), d.TxType)
	require.Equal(t, crypto.Address(submitter), d.AuthorizedAddress)
	require.Len(t, d.Inputs, 1)
	require.Equal(t, uint64(7), d.Inputs[0].Quantity)
	require.Equal(t, km.ViewSk(), d.Inputs[0].ViewSk)
	require.Equal(t, km.SpendSk(), d.Inputs[0].SpendSk)
}

func TestDiscoverAll(t *testing.T) {
	km := testKeyMaterial(t)
	notes := []OutputNote{{NoteID: []byte{1}}, {NoteID: []byte{2}}}

	m := &mockEngine{owner: true, plain: encode(t, &PlainValue{Quantity: 9, Blinding: []byte{7}})}
	owned, err := DiscoverAll(m, km, notes)
	require.NoError(t, err)
	require.Len(t, owned, 2)
	require.Equal(t, uint64(9), owned[1].Quantity)
	require.Equal(t, notes[1].Hash(), owned[1].Hash())

	m = &mockEngine{owner: false}
	owned, err = DiscoverAll(m, km, notes)
	require.NoError(t, err)
	require.Empty(t, owned)

	m = &mockEngine{ownerErr: &types.EngineError{Code: 2, Message: "bad key"}}
	owned, err = DiscoverAll(m, km, notes)
	require.Empty(t, owned)
	require.Len(t, multierr.Errors(err), 2)
	var ee *types.EngineError
	require.True(t, errors.As(err, &ee))
	require.Equal(t, int32(2), ee.Code)
}

func TestNoteHashAndOwner(t *testing.T) {
	in := &InputNote{NoteID: []byte{1, 2}, EphemeralPk: []byte{3}, SignPk: []byte{4}}
	out := &OutputNote{NoteID: []byte{1, 2}, EphemeralPk: []byte{3}, SignPk: []byte{4}, CipherValue: []byte{5}}
	require.Equal(t, in.Hash(), out.Hash())
	require.Equal(t, in.Owner(), out.Owner())

	var owner [][]byte
	require.NoError(t, rlp.DecodeBytes(in.Owner(), &owner))
	require.Equal(t, [][]byte{{3}, {4}}, owner)
}
