package plaintext

import (
	"crypto/ecdsa"

	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
)

// NewApproveNote lets the owner of note delegate its spend to the holder of delegatePub.
// The owner signs the note bound to the delegate's address and encrypts that
// signature under the key both of them can derive.
func NewApproveNote(note *types.Note, owner *ecdsa.PrivateKey, delegatePub *ecdsa.PublicKey) (*types.ApproveNote, error) {
	if delegatePub == nil {
		return nil, types.InvalidArgument("nil delegate key")
	}
	in, err := SignInput(note, crypto.PubkeyAddress(delegatePub), owner)
	if err != nil {
		return nil, err
	}
	shared, err := crypto.EncryptFor(owner, delegatePub, in.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "encrypt approval")
	}
	return &types.ApproveNote{
		Owner:           note.Owner,
		Value:           note.Value,
		Random:          note.Random,
		SharedSignature: shared,
	}, nil
}

// AcceptApproval is run by the delegate. It decrypts the shared signature and
// returns an input note the delegate can spend as submitter.
func AcceptApproval(approve *types.ApproveNote, delegate *ecdsa.PrivateKey, ownerPub *ecdsa.PublicKey) (*types.InputNote, error) {
	if approve == nil || delegate == nil || ownerPub == nil {
		return nil, types.InvalidArgument("nil approve or key")
	}
	if crypto.PubkeyAddress(ownerPub) != approve.Owner {
		return nil, types.InvalidArgument("owner key does not match note owner %s", approve.Owner)
	}
	sig, err := crypto.DecryptFrom(delegate, ownerPub, approve.SharedSignature)
	if err != nil {
		return nil, err
	}
	in := &types.InputNote{
		Owner:     approve.Owner,
		Value:     approve.Value,
		Random:    approve.Random,
		Signature: sig,
	}
	if !crypto.Verify(in.Owner, in.SpenderNote(crypto.Address(delegate)).SigningBytes(), sig) {
		return nil, types.InvalidArgument("approval is not bound to %s", crypto.Address(delegate))
	}
	return in, nil
}
