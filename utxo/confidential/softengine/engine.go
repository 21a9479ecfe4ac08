// Package softengine is a pure Go confidential engine for tests and tooling.
//
// Notes are sent to one-time keys: the sender picks r, publishes R = r*G and
// addresses the note to Hs(r*V)*G + S for the recipient's view key V and spend
// key S. Only the holder of v can recompute Hs(v*R) and recognise the note.
// Values are committed with MiMC and encrypted to the view key with
// ChaCha20-Poly1305. It does not produce zero knowledge proofs; a validator
// cannot verify its transactions.
package softengine

import (
	"encoding/binary"
	"fmt"
	"math/big"

	tedwards "github.com/consensys/gnark-crypto/ecc/bn254/twistededwards"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/confidential"
	"github.com/kysee/privacy/utxo/types"
	"github.com/kysee/privacy/utxo/version"
	"github.com/rs/zerolog"
)

const (
	CodeDecode       int32 = 1
	CodeInvalidKey   int32 = 2
	CodeNotOwner     int32 = 3
	CodeUnbalanced   int32 = 4
	CodeTxType       int32 = 5
	CodeDecrypt      int32 = 6
	CodeOverflow     int32 = 7
	CodeUnauthorized int32 = 8
	CodeInternal     int32 = 9
)

const blindingSize = 32

type Engine struct {
	logger zerolog.Logger
}

var _ confidential.Engine = (*Engine)(nil)

func New() *Engine {
	return &Engine{logger: utils.ComponentLogger("softengine")}
}

func (e *Engine) WithLogger(l zerolog.Logger) *Engine {
	return &Engine{logger: l}
}

func fail(code int32, format string, args ...interface{}) error {
	return &types.EngineError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Engine) CreateKeypair() ([]byte, error) {
	sk, err := newScalar()
	if err != nil {
		return nil, fail(CodeInternal, "random scalar: %v", err)
	}
	bz, err := rlp.EncodeToBytes(&confidential.Keypair{
		PrivateKey: scalarBytes(sk),
		PublicKey:  pointBytes(basePoint(sk)),
	})
	if err != nil {
		return nil, fail(CodeInternal, "encode keypair: %v", err)
	}
	return bz, nil
}

func (e *Engine) IsNoteOwner(ephemeralPk, signPk, spendPk, viewSk []byte) (bool, error) {
	r, err := parsePoint(ephemeralPk)
	if err != nil {
		return false, fail(CodeInvalidKey, "ephemeral pk: %v", err)
	}
	sign, err := parsePoint(signPk)
	if err != nil {
		return false, fail(CodeInvalidKey, "sign pk: %v", err)
	}
	spend, err := parsePoint(spendPk)
	if err != nil {
		return false, fail(CodeInvalidKey, "spend pk: %v", err)
	}
	v, err := parseScalar(viewSk)
	if err != nil {
		return false, fail(CodeInvalidKey, "view sk: %v", err)
	}
	return isOwner(r, sign, spend, v)
}

func isOwner(r, sign, spend *tedwards.PointAffine, v *big.Int) (bool, error) {
	shared, err := ecdh(v, r)
	if err != nil {
		return false, fail(CodeInvalidKey, "%v", err)
	}
	return oneTimeKey(shared, spend).Equal(sign), nil
}

func (e *Engine) DecryptNote(cipherValue, viewSk []byte) ([]byte, error) {
	if len(cipherValue) <= pointSize {
		return nil, fail(CodeDecrypt, "cipher value too short")
	}
	v, err := parseScalar(viewSk)
	if err != nil {
		return nil, fail(CodeInvalidKey, "view sk: %v", err)
	}
	r, err := parsePoint(cipherValue[:pointSize])
	if err != nil {
		return nil, fail(CodeDecrypt, "ephemeral pk: %v", err)
	}
	shared, err := ecdh(v, r)
	if err != nil {
		return nil, fail(CodeDecrypt, "%v", err)
	}
	plain, err := openNote(shared, cipherValue[:pointSize], cipherValue[pointSize:])
	if err != nil {
		return nil, fail(CodeDecrypt, "%v", err)
	}
	return plain, nil
}

func (e *Engine) CreateTx(descriptor []byte) ([]byte, error) {
	content, _, err := rlp.SplitList(descriptor)
	if err != nil {
		return nil, fail(CodeDecode, "descriptor: %v", err)
	}
	txType, _, err := rlp.SplitUint64(content)
	if err != nil {
		return nil, fail(CodeDecode, "tx type: %v", err)
	}
	if txType > 0xff {
		return nil, fail(CodeTxType, "unsupported tx type %d", txType)
	}

	var (
		inputs     []confidential.Input
		outputs    []confidential.Output
		authorized common.Address
	)
	switch op := version.Opcode(txType); op {
	case version.Transfer, version.Deposit, version.Withdraw:
		var d confidential.TransferTx
		if err := rlp.DecodeBytes(descriptor, &d); err != nil {
			return nil, fail(CodeDecode, "%s descriptor: %v", op, err)
		}
		inputs, outputs, authorized = d.Inputs, d.Outputs, d.AuthorizedAddress
	case version.Mint:
		var d confidential.MintTx
		if err := rlp.DecodeBytes(descriptor, &d); err != nil {
			return nil, fail(CodeDecode, "mint descriptor: %v", err)
		}
		outputs, authorized = d.Outputs, d.AuthorizedAddress
	case version.Burn:
		var d confidential.BurnTx
		if err := rlp.DecodeBytes(descriptor, &d); err != nil {
			return nil, fail(CodeDecode, "burn descriptor: %v", err)
		}
		inputs, authorized = d.Inputs, d.AuthorizedAddress
	default:
		return nil, fail(CodeTxType, "unsupported tx type %d", txType)
	}
	if authorized == (common.Address{}) {
		return nil, fail(CodeUnauthorized, "empty authorized address")
	}

	tx := &confidential.Tx{TxType: uint8(txType), AuthorizedAddress: authorized}
	var inTotal, outTotal uint64
	for i := range inputs {
		note, err := spendNote(&inputs[i])
		if err != nil {
			return nil, err
		}
		if inTotal, err = add(inTotal, inputs[i].Quantity); err != nil {
			return nil, err
		}
		tx.Inputs = append(tx.Inputs, *note)
	}
	for i := range outputs {
		note, err := createNote(&outputs[i])
		if err != nil {
			return nil, err
		}
		if outTotal, err = add(outTotal, outputs[i].Quantity); err != nil {
			return nil, err
		}
		tx.Outputs = append(tx.Outputs, *note)
	}

	switch version.Opcode(txType) {
	case version.Transfer:
		if inTotal != outTotal {
			return nil, fail(CodeUnbalanced, "inputs %d, outputs %d", inTotal, outTotal)
		}
	case version.Deposit:
		if outTotal < inTotal {
			return nil, fail(CodeUnbalanced, "deposit of inputs %d into outputs %d", inTotal, outTotal)
		}
		tx.PublicValue = outTotal - inTotal
	case version.Withdraw:
		if inTotal < outTotal {
			return nil, fail(CodeUnbalanced, "withdraw of inputs %d into outputs %d", inTotal, outTotal)
		}
		tx.PublicValue = inTotal - outTotal
	case version.Mint:
		tx.PublicValue = outTotal
	case version.Burn:
		tx.PublicValue = inTotal
	}

	blob, err := rlp.EncodeToBytes(tx)
	if err != nil {
		return nil, fail(CodeInternal, "encode tx: %v", err)
	}
	e.logger.Debug().
		Uint8("txType", tx.TxType).
		Int("inputs", len(tx.Inputs)).
		Int("outputs", len(tx.Outputs)).
		Uint64("publicValue", tx.PublicValue).
		Msg("confidential tx created")
	return blob, nil
}

func spendNote(in *confidential.Input) (*confidential.InputNote, error) {
	r, err := parsePoint(in.EphemeralPk)
	if err != nil {
		return nil, fail(CodeInvalidKey, "ephemeral pk: %v", err)
	}
	sign, err := parsePoint(in.SignPk)
	if err != nil {
		return nil, fail(CodeInvalidKey, "sign pk: %v", err)
	}
	v, err := parseScalar(in.ViewSk)
	if err != nil {
		return nil, fail(CodeInvalidKey, "view sk: %v", err)
	}
	s, err := parseScalar(in.SpendSk)
	if err != nil {
		return nil, fail(CodeInvalidKey, "spend sk: %v", err)
	}
	if len(in.Blinding) != blindingSize {
		return nil, fail(CodeDecode, "blinding length %d", len(in.Blinding))
	}
	mine, err := isOwner(r, sign, basePoint(s), v)
	if err != nil {
		return nil, err
	}
	if !mine {
		return nil, fail(CodeNotOwner, "input is not owned by the given keys")
	}

	token := commitment(in.Quantity, in.Blinding)
	return &confidential.InputNote{
		NoteID:      noteID(in.EphemeralPk, in.SignPk, token),
		EphemeralPk: in.EphemeralPk,
		SignPk:      in.SignPk,
		Token:       token,
	}, nil
}

func createNote(out *confidential.Output) (*confidential.OutputNote, error) {
	view, err := parsePoint(out.ViewPk)
	if err != nil {
		return nil, fail(CodeInvalidKey, "view pk: %v", err)
	}
	spend, err := parsePoint(out.SpendPk)
	if err != nil {
		return nil, fail(CodeInvalidKey, "spend pk: %v", err)
	}
	r, err := newScalar()
	if err != nil {
		return nil, fail(CodeInternal, "random scalar: %v", err)
	}
	shared, err := ecdh(r, view)
	if err != nil {
		return nil, fail(CodeInvalidKey, "%v", err)
	}

	ephemeralPk := pointBytes(basePoint(r))
	signPk := pointBytes(oneTimeKey(shared, spend))
	blinding := utils.RandBytes(blindingSize)

	plain, err := rlp.EncodeToBytes(&confidential.PlainValue{Quantity: out.Quantity, Blinding: blinding})
	if err != nil {
		return nil, fail(CodeInternal, "encode plain value: %v", err)
	}
	sealed, err := sealNote(shared, ephemeralPk, plain)
	if err != nil {
		return nil, fail(CodeInternal, "%v", err)
	}

	token := commitment(out.Quantity, blinding)
	return &confidential.OutputNote{
		NoteID:      noteID(ephemeralPk, signPk, token),
		EphemeralPk: ephemeralPk,
		SignPk:      signPk,
		Token:       token,
		CipherValue: append(append([]byte{}, ephemeralPk...), sealed...),
	}, nil
}

// commitment binds a quantity to its blinding factor.
func commitment(quantity uint64, blinding []byte) []byte {
	var q [8]byte
	binary.BigEndian.PutUint64(q[:], quantity)
	return utils.MiMCHash(q[:], blinding)
}

func noteID(ephemeralPk, signPk, token []byte) []byte {
	return utils.MiMCHash(ephemeralPk, signPk, token)
}

func add(a, b uint64) (uint64, error) {
	s := a + b
	if s < a {
		return 0, fail(CodeOverflow, "quantity overflow")
	}
	return s, nil
}
