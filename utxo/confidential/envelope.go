package confidential

import (
	"crypto/ecdsa"

	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/kysee/privacy/utxo/version"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Envelope builds confidential proofs. The engine produces the encrypted
// transaction; the envelope attaches the public side channel and signs.
type Envelope struct {
	engine Engine
	family version.Family
	logger zerolog.Logger
}

type Option func(*Envelope)

func WithFamily(f version.Family) Option {
	return func(e *Envelope) { e.family = f }
}

func WithLogger(l zerolog.Logger) Option {
	return func(e *Envelope) { e.logger = l }
}

func NewEnvelope(engine Engine, opts ...Option) *Envelope {
	e := &Envelope{
		engine: engine,
		family: version.Confidential,
		logger: utils.ComponentLogger("confidential"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Envelope) Engine() Engine {
	return e.engine
}

func (e *Envelope) Family() version.Family {
	return e.family
}

// Transfer moves value between notes. metaData is matched to outputs by position.
func (e *Envelope) Transfer(inputs []Input, outputs []Output, metaData [][]byte, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	blob, _, err := e.transferTx(version.Transfer, inputs, outputs, submitter)
	if err != nil {
		return nil, err
	}
	return e.wrapExtra(version.Transfer, blob, &TransferExtra{MetaData: metaData}, submitter)
}

// Deposit moves value from publicOwner's public balance into new notes.
// publicOwner signs the engine transaction to authorize the debit.
func (e *Envelope) Deposit(inputs []Input, outputs []Output, metaData [][]byte, publicOwner, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil || publicOwner == nil {
		return nil, types.InvalidArgument("nil public owner or submitter key")
	}
	blob, _, err := e.transferTx(version.Deposit, inputs, outputs, submitter)
	if err != nil {
		return nil, err
	}
	depositSig, err := crypto.Sign(blob, publicOwner)
	if err != nil {
		return nil, errors.Wrap(err, "sign deposit")
	}
	extra := &TransferExtra{
		PublicOwner:      crypto.Address(publicOwner),
		DepositSignature: depositSig,
		MetaData:         metaData,
	}
	return e.wrapExtra(version.Deposit, blob, extra, submitter)
}

// Withdraw moves value out of notes into publicOwner's public balance.
func (e *Envelope) Withdraw(inputs []Input, outputs []Output, metaData [][]byte, publicOwner common.Address, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	if publicOwner == (common.Address{}) {
		return nil, types.InvalidArgument("withdraw to the zero address")
	}
	blob, _, err := e.transferTx(version.Withdraw, inputs, outputs, submitter)
	if err != nil {
		return nil, err
	}
	return e.wrapExtra(version.Withdraw, blob, &TransferExtra{PublicOwner: publicOwner, MetaData: metaData}, submitter)
}

// Mint creates supply. priorMintHash is the chain hash of the last accepted mint.
func (e *Envelope) Mint(priorMintHash common.Hash, outputs []Output, metaData [][]byte, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	if len(outputs) == 0 {
		return nil, types.InvalidArgument("mint without outputs")
	}
	if err := checkOutputs(outputs); err != nil {
		return nil, err
	}
	blob, _, err := createTx(e.engine, &MintTx{
		TxType:            uint8(version.Mint),
		Outputs:           outputs,
		AuthorizedAddress: crypto.Address(submitter),
	})
	if err != nil {
		return nil, err
	}
	return e.wrapExtra(version.Mint, blob, &MintExtra{PriorMintHash: priorMintHash, MetaData: metaData}, submitter)
}

// Burn destroys supply. priorBurnHash is the chain hash of the last accepted burn.
func (e *Envelope) Burn(priorBurnHash common.Hash, inputs []Input, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	if len(inputs) == 0 {
		return nil, types.InvalidArgument("burn without inputs")
	}
	if err := checkInputs(inputs); err != nil {
		return nil, err
	}
	blob, _, err := createTx(e.engine, &BurnTx{
		TxType:            uint8(version.Burn),
		Inputs:            inputs,
		AuthorizedAddress: crypto.Address(submitter),
	})
	if err != nil {
		return nil, err
	}
	return e.wrapExtra(version.Burn, blob, &BurnExtra{PriorBurnHash: priorBurnHash}, submitter)
}

// WrapAndSign encodes (tag, confidentialTx, extraData) and signs it with the submitter key.
func (e *Envelope) WrapAndSign(tag version.Tag, confidentialTx, extraData []byte, submitter *ecdsa.PrivateKey) (*Proof, error) {
	return WrapAndSign(tag, confidentialTx, extraData, submitter)
}

func WrapAndSign(tag version.Tag, confidentialTx, extraData []byte, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	data, err := rlp.EncodeToBytes(&Data{Version: tag, ConfidentialTx: confidentialTx, ExtraData: extraData})
	if err != nil {
		return nil, errors.Wrap(err, "encode confidential data")
	}
	sig, err := crypto.Sign(data, submitter)
	if err != nil {
		return nil, errors.Wrap(err, "sign confidential data")
	}
	return &Proof{Data: data, Signature: sig}, nil
}

func (e *Envelope) transferTx(op version.Opcode, inputs []Input, outputs []Output, submitter *ecdsa.PrivateKey) ([]byte, *Tx, error) {
	if err := checkInputs(inputs); err != nil {
		return nil, nil, err
	}
	if err := checkOutputs(outputs); err != nil {
		return nil, nil, err
	}
	return createTx(e.engine, &TransferTx{
		TxType:            uint8(op),
		Inputs:            inputs,
		Outputs:           outputs,
		AuthorizedAddress: crypto.Address(submitter),
	})
}

func (e *Envelope) wrapExtra(op version.Opcode, blob []byte, extra interface{}, submitter *ecdsa.PrivateKey) (*Proof, error) {
	extraData, err := rlp.EncodeToBytes(extra)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s extra data", op)
	}
	tag := e.family.Tag(op)
	proof, err := WrapAndSign(tag, blob, extraData, submitter)
	if err != nil {
		return nil, err
	}

	e.logger.Debug().
		Str("version", tag.String()).
		Hex("txHash", gethcrypto.Keccak256(blob)).
		Int("txSize", len(blob)).
		Str("submitter", crypto.Address(submitter).Hex()).
		Msg("confidential proof built")

	return proof, nil
}

func checkInputs(inputs []Input) error {
	for i := range inputs {
		in := &inputs[i]
		if len(in.EphemeralPk) == 0 || len(in.SignPk) == 0 {
			return types.InvalidArgument("input %d without note keys", i)
		}
		if len(in.ViewSk) == 0 || len(in.SpendSk) == 0 {
			return types.InvalidArgument("input %d without owner keys", i)
		}
	}
	return nil
}

func checkOutputs(outputs []Output) error {
	for i := range outputs {
		if len(outputs[i].ViewPk) == 0 || len(outputs[i].SpendPk) == 0 {
			return types.InvalidArgument("output %d without recipient keys", i)
		}
	}
	return nil
}
