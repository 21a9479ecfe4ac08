package plaintext

import (
	"bytes"
	"crypto/ecdsa"
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/kysee/privacy/utxo/version"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *ecdsa.PrivateKey {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return key
}

func TestMintScenario(t *testing.T) {
	admin := newKey(t)
	owner := crypto.Address(admin)
	outputs := []*types.OutputNote{
		types.NewOutputNote(owner, uint256.NewInt(100), nil),
		types.NewOutputNote(owner, uint256.NewInt(101), []byte("memo")),
	}

	proof, err := NewBuilder().Mint(common.Hash{}, outputs, admin)
	require.NoError(t, err)
	require.Len(t, proof.Signature, types.SignatureSize)

	decoded, err := DecodeProof(proof.Bytes())
	require.NoError(t, err)
	require.Equal(t, proof, decoded)

	data, err := decoded.Open()
	require.NoError(t, err)
	require.Equal(t, version.Mint, data.Version.Opcode())
	require.True(t, version.Plaintext.Supports(data.Version))

	mint, err := data.Mint()
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, mint.PriorMintHash)
	require.Len(t, mint.Outputs, 2)
	for i := range outputs {
		require.Equal(t, outputs[i].Hash(), mint.Outputs[i].Hash())
		require.Equal(t, outputs[i].Value.Uint64(), mint.Outputs[i].Value.Uint64())
	}
	require.Equal(t, []byte("memo"), mint.Outputs[1].MetaData)

	submitter, err := decoded.Submitter()
	require.NoError(t, err)
	require.Equal(t, owner, submitter)

	payload, err := data.DecodePayload()
	require.NoError(t, err)
	require.IsType(t, &types.Mint{}, payload)

	_, err = data.Burn()
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	// the next mint chains on this one
	next, err := proof.PayloadHash()
	require.NoError(t, err)
	require.Equal(t, gethcrypto.Keccak256Hash(data.Payload), next)
	fmt.Printf("mint proof: %x\n", proof.Bytes())
}

func TestApproveDelegationScenario(t *testing.T) {
	owner := newKey(t)
	delegate := newKey(t)
	note := types.NewNote(crypto.Address(owner), uint256.NewInt(15))

	approve, err := NewApproveNote(note, owner, &delegate.PublicKey)
	require.NoError(t, err)
	require.Equal(t, note.Hash(), approve.Hash())

	b := NewBuilder()
	proof, err := b.Approve(approve, owner)
	require.NoError(t, err)
	require.NoError(t, proof.VerifyInputs())

	_, err = b.Approve(approve, delegate)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	// the delegate reads the approval back from the proof
	data, err := proof.Open()
	require.NoError(t, err)
	onchain, err := data.Approve()
	require.NoError(t, err)

	in, err := AcceptApproval(onchain, delegate, &owner.PublicKey)
	require.NoError(t, err)
	require.Equal(t, note.Hash(), in.Hash())
	spender := types.NewSpenderNote(note, crypto.Address(delegate))
	require.True(t, crypto.Verify(crypto.Address(owner), spender.SigningBytes(), in.Signature))

	// and spends it as submitter
	recipient := newKey(t)
	outputs := []*types.OutputNote{
		types.NewOutputNote(crypto.Address(recipient), uint256.NewInt(2), nil),
		types.NewOutputNote(crypto.Address(owner), uint256.NewInt(13), nil),
	}
	spend := Spend{Note: in.Note(), Signature: in.Signature}
	transfer, err := b.Transfer([]Spend{spend}, outputs, common.Address{}, types.PublicValue{}, nil, delegate)
	require.NoError(t, err)
	require.NoError(t, transfer.VerifyInputs())

	tx, err := mustOpen(t, transfer).Transfer()
	require.NoError(t, err)
	require.NoError(t, types.CheckConservation(tx))

	// nobody else can open the approval
	stranger := newKey(t)
	_, err = AcceptApproval(onchain, stranger, &owner.PublicKey)
	require.True(t, errors.Is(err, types.ErrDecrypt))
	_, err = AcceptApproval(onchain, delegate, &stranger.PublicKey)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	// an approval signature cannot be used by another submitter
	_, err = b.Transfer([]Spend{spend}, outputs, common.Address{}, types.PublicValue{}, nil, stranger)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestBurnHashChainScenario(t *testing.T) {
	admin := newKey(t)
	b := NewBuilder()
	note := types.NewNote(crypto.Address(admin), uint256.NewInt(7))

	lastAccepted := common.BytesToHash(gethcrypto.Keccak256([]byte("last burn")))
	stale := common.BytesToHash(gethcrypto.Keccak256([]byte("older burn")))

	current, err := b.Burn(lastAccepted, []Spend{{Note: note}}, admin)
	require.NoError(t, err)
	outdated, err := b.Burn(stale, []Spend{{Note: note}}, admin)
	require.NoError(t, err)

	require.False(t, bytes.Equal(current.Data, outdated.Data))

	h1, err := current.PayloadHash()
	require.NoError(t, err)
	h2, err := outdated.PayloadHash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)

	b1, err := mustOpen(t, current).Burn()
	require.NoError(t, err)
	b2, err := mustOpen(t, outdated).Burn()
	require.NoError(t, err)
	require.Equal(t, lastAccepted, b1.PriorBurnHash)
	require.Equal(t, stale, b2.PriorBurnHash)
	require.Equal(t, b1.Inputs[0].Hash(), b2.Inputs[0].Hash())

	require.NoError(t, current.VerifyInputs())
}

func TestTransferConservation(t *testing.T) {
	admin := newKey(t)
	owner := crypto.Address(admin)
	b := NewBuilder()

	// inputs of 22 with a -22 delta: built as asked, rejected by the balance rule
	spends := []Spend{
		{Note: types.NewNote(owner, uint256.NewInt(10)), Owner: admin},
		{Note: types.NewNote(owner, uint256.NewInt(12)), Owner: admin},
	}
	proof, err := b.Transfer(spends, nil, owner, types.NewPublicValue(-22), nil, admin)
	require.NoError(t, err)
	tx, err := mustOpen(t, proof).Transfer()
	require.NoError(t, err)
	require.Error(t, types.CheckConservation(tx))

	// the same inputs withdrawn to the public balance
	proof, err = b.Transfer(spends, nil, owner, types.NewPublicValue(22), nil, admin)
	require.NoError(t, err)
	tx, err = mustOpen(t, proof).Transfer()
	require.NoError(t, err)
	require.NoError(t, types.CheckConservation(tx))
	require.NoError(t, proof.VerifyInputs())

	// outputs of 22 paid from the public balance
	outputs := []*types.OutputNote{
		types.NewOutputNote(owner, uint256.NewInt(10), nil),
		types.NewOutputNote(owner, uint256.NewInt(12), nil),
	}
	proof, err = b.Transfer(nil, outputs, owner, types.NewPublicValue(-22), []byte("deposit"), admin)
	require.NoError(t, err)
	tx, err = mustOpen(t, proof).Transfer()
	require.NoError(t, err)
	require.Zero(t, types.ValueBalance(tx.Inputs, tx.Outputs, tx.PublicValue).Sign())
	require.Equal(t, int64(-22), tx.PublicValue.Big().Int64())
	require.Equal(t, []byte("deposit"), tx.MetaData)
}

func TestTransferInputSigning(t *testing.T) {
	alice := newKey(t)
	bob := newKey(t)
	submitter := newKey(t)
	b := NewBuilder()

	note := types.NewNote(crypto.Address(alice), uint256.NewInt(5))
	out := []*types.OutputNote{types.NewOutputNote(crypto.Address(bob), uint256.NewInt(5), nil)}

	// signed by the input owner, bound to the submitter
	proof, err := b.Transfer([]Spend{{Note: note, Owner: alice}}, out, common.Address{}, types.PublicValue{}, nil, submitter)
	require.NoError(t, err)
	require.NoError(t, proof.VerifyInputs())

	tx, err := mustOpen(t, proof).Transfer()
	require.NoError(t, err)
	bound := tx.Inputs[0].SpenderNote(crypto.Address(submitter))
	require.True(t, crypto.Verify(crypto.Address(alice), bound.SigningBytes(), tx.Inputs[0].Signature))

	// the submitter cannot sign somebody else's note
	_, err = b.Transfer([]Spend{{Note: note}}, out, common.Address{}, types.PublicValue{}, nil, submitter)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
	_, err = b.Transfer([]Spend{{Note: note, Owner: bob}}, out, common.Address{}, types.PublicValue{}, nil, submitter)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	// bound to another spender: builds, but the validator check fails
	other := newKey(t)
	proof, err = b.Transfer([]Spend{{Note: note, Owner: alice, Spender: crypto.Address(other)}}, out, common.Address{}, types.PublicValue{}, nil, submitter)
	require.NoError(t, err)
	require.True(t, errors.Is(proof.VerifyInputs(), types.ErrInvalidArgument))
}

func TestBuilderRejectsMalformedInput(t *testing.T) {
	admin := newKey(t)
	owner := crypto.Address(admin)
	b := NewBuilder()

	_, err := b.Mint(common.Hash{}, nil, admin)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	short := &types.OutputNote{Owner: owner, Value: uint256.NewInt(1), Random: []byte{1}}
	_, err = b.Mint(common.Hash{}, []*types.OutputNote{short}, admin)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	huge := types.NewOutputNote(owner, new(uint256.Int).Lsh(uint256.NewInt(1), 200), nil)
	_, err = b.Mint(common.Hash{}, []*types.OutputNote{huge}, admin)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	_, err = b.Burn(common.Hash{}, []Spend{{}}, admin)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	_, err = b.Mint(common.Hash{}, []*types.OutputNote{types.NewOutputNote(owner, uint256.NewInt(1), nil)}, nil)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	_, err = b.Transfer(nil, nil, common.Address{}, types.NewPublicValue(5), nil, admin)
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
}

func TestBuilderFamily(t *testing.T) {
	admin := newKey(t)
	f := version.Family{Category: 1, Major: 1, Minor: 0}
	b := NewBuilder(WithFamily(f))
	require.Equal(t, f, b.Family())

	out := []*types.OutputNote{types.NewOutputNote(crypto.Address(admin), uint256.NewInt(1), nil)}
	proof, err := b.Mint(common.Hash{}, out, admin)
	require.NoError(t, err)

	data := mustOpen(t, proof)
	require.Equal(t, f.Tag(version.Mint), data.Version)
	require.True(t, version.Plaintext.Supports(data.Version))
	require.False(t, f.Supports(version.Plaintext.Tag(version.Mint)))
}

func TestDecodeProofErrors(t *testing.T) {
	_, err := DecodeProof([]byte{0x01, 0x02})
	require.True(t, errors.Is(err, types.ErrInvalidArgument))

	p := &Proof{Data: []byte{0xc0}, Signature: make([]byte, types.SignatureSize)}
	_, err = p.Open()
	require.True(t, errors.Is(err, types.ErrInvalidArgument))
	_, err = p.Submitter()
	require.Error(t, err)
}

func mustOpen(t *testing.T, p *Proof) *Data {
	d, err := p.Open()
	require.NoError(t, err)
	return d
}
