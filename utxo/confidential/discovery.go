package confidential

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// OwnedNote is a created note the key material owns, with its decrypted value.
type OwnedNote struct {
	NoteID      []byte
	EphemeralPk []byte
	SignPk      []byte
	Token       []byte
	Quantity    uint64
	Blinding    []byte
}

func (n *OwnedNote) Hash() common.Hash {
	return (&InputNote{NoteID: n.NoteID}).Hash()
}

// Discover tests whether km owns note and, if so, decrypts its value.
// A note owned by somebody else yields (nil, nil).
func Discover(engine Engine, km KeyMaterial, note *OutputNote) (*OwnedNote, error) {
	mine, err := engine.IsNoteOwner(note.EphemeralPk, note.SignPk, km.spendPk, km.viewSk)
	if err != nil {
		return nil, engineError(err, "is note owner")
	}
	if !mine {
		return nil, nil
	}
	pv, err := decryptNote(engine, note.CipherValue, km.viewSk)
	if err != nil {
		return nil, err
	}
	return &OwnedNote{
		NoteID:      note.NoteID,
		EphemeralPk: note.EphemeralPk,
		SignPk:      note.SignPk,
		Token:       note.Token,
		Quantity:    pv.Quantity,
		Blinding:    pv.Blinding,
	}, nil
}

// DiscoverAll scans notes and returns the ones km owns.
// A failing note does not stop the scan; all failures are returned together.
func DiscoverAll(engine Engine, km KeyMaterial, notes []OutputNote) ([]*OwnedNote, error) {
	var (
		owned []*OwnedNote
		errs  error
	)
	for i := range notes {
		n, err := Discover(engine, km, &notes[i])
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "note %x", notes[i].Hash()))
			continue
		}
		if n != nil {
			owned = append(owned, n)
		}
	}
	return owned, errs
}
