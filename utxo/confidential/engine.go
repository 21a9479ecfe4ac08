package confidential

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/privacy/utxo/types"
	"github.com/pkg/errors"
)

// Engine is the native confidential transaction engine.
// It blinds values, encrypts notes and tests ownership; this package only
// encodes its inputs, orders the calls and propagates its errors.
//
// Implementations report failures as *types.EngineError.
type Engine interface {
	// CreateKeypair returns an encoded Keypair.
	CreateKeypair() ([]byte, error)
	// CreateTx turns an encoded descriptor (TransferTx, MintTx or BurnTx) into an encoded Tx.
	CreateTx(descriptor []byte) ([]byte, error)
	// DecryptNote returns the encoded PlainValue of a note cipher.
	DecryptNote(cipherValue, viewSk []byte) ([]byte, error)
	IsNoteOwner(ephemeralPk, signPk, spendPk, viewSk []byte) (bool, error)
}

// CodeUnknown is used for engine failures that carry no native code.
const CodeUnknown int32 = -1

// engineError makes sure a failure coming out of an engine call is an EngineError.
func engineError(err error, call string) error {
	var ee *types.EngineError
	if errors.As(err, &ee) {
		return errors.Wrap(err, call)
	}
	return errors.Wrap(&types.EngineError{Code: CodeUnknown, Message: err.Error()}, call)
}

func createKeypair(engine Engine) (*Keypair, error) {
	bz, err := engine.CreateKeypair()
	if err != nil {
		return nil, engineError(err, "create keypair")
	}
	kp := new(Keypair)
	if err := rlp.DecodeBytes(bz, kp); err != nil {
		return nil, engineError(errors.Wrap(err, "decode keypair"), "create keypair")
	}
	return kp, nil
}

func decryptNote(engine Engine, cipherValue, viewSk []byte) (*PlainValue, error) {
	bz, err := engine.DecryptNote(cipherValue, viewSk)
	if err != nil {
		return nil, engineError(err, "decrypt note")
	}
	pv := new(PlainValue)
	if err := rlp.DecodeBytes(bz, pv); err != nil {
		return nil, engineError(errors.Wrap(err, "decode plain value"), "decrypt note")
	}
	return pv, nil
}

func createTx(engine Engine, descriptor interface{}) ([]byte, *Tx, error) {
	bz, err := rlp.EncodeToBytes(descriptor)
	if err != nil {
		return nil, nil, errors.Wrap(err, "encode descriptor")
	}
	blob, err := engine.CreateTx(bz)
	if err != nil {
		return nil, nil, engineError(err, "create confidential tx")
	}
	tx, err := DecodeTx(blob)
	if err != nil {
		return nil, nil, engineError(err, "create confidential tx")
	}
	return blob, tx, nil
}
