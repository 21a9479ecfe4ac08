package plaintext

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
)

// Spend describes a note to consume.
//
// The note owner authorizes the spend by signing a SpenderNote that names the
// address allowed to consume it. Either Owner is set and the signature is made
// here, or Signature carries one made earlier, e.g. recovered by AcceptApproval.
// A zero Spender means the proof submitter.
type Spend struct {
	Note      *types.Note
	Spender   common.Address
	Owner     *ecdsa.PrivateKey
	Signature []byte
}

// SignInput signs note for spender with the owner's key.
func SignInput(note *types.Note, spender common.Address, owner *ecdsa.PrivateKey) (*types.InputNote, error) {
	if owner == nil {
		return nil, types.InvalidArgument("nil owner key")
	}
	if crypto.Address(owner) != note.Owner {
		return nil, types.InvalidArgument("key of %s cannot sign note owned by %s", crypto.Address(owner), note.Owner)
	}
	sig, err := crypto.Sign(types.NewSpenderNote(note, spender).SigningBytes(), owner)
	if err != nil {
		return nil, err
	}
	return &types.InputNote{
		Owner:     note.Owner,
		Value:     note.Value,
		Random:    note.Random,
		Signature: sig,
	}, nil
}

// input resolves the spend into a signed input note.
// With neither a key nor a signature the submitter signs, which only works for its own notes.
func (s *Spend) input(submitter *ecdsa.PrivateKey) (*types.InputNote, error) {
	if s.Note == nil {
		return nil, types.InvalidArgument("nil note")
	}
	if err := s.Note.Validate(); err != nil {
		return nil, err
	}

	spender := s.Spender
	if spender == (common.Address{}) {
		spender = crypto.Address(submitter)
	}

	if len(s.Signature) != 0 {
		if !crypto.Verify(s.Note.Owner, types.NewSpenderNote(s.Note, spender).SigningBytes(), s.Signature) {
			return nil, types.InvalidArgument("signature of note %s does not bind spender %s", s.Note.Hash(), spender)
		}
		return &types.InputNote{
			Owner:     s.Note.Owner,
			Value:     s.Note.Value,
			Random:    s.Note.Random,
			Signature: s.Signature,
		}, nil
	}

	owner := s.Owner
	if owner == nil {
		owner = submitter
	}
	return SignInput(s.Note, spender, owner)
}

func inputsOf(spends []Spend, submitter *ecdsa.PrivateKey) ([]*types.InputNote, error) {
	inputs := make([]*types.InputNote, 0, len(spends))
	for i := range spends {
		in, err := spends[i].input(submitter)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}
