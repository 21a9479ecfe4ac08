package plaintext

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

// Builder assembles plaintext proofs. It holds no key material and is safe for concurrent use.
type Builder struct {
	family version.Family
	logger zerolog.Logger
}

type Option func(*Builder)

func WithFamily(f version.Family) Option {
	return func(b *Builder) { b.family = f }
}

func WithLogger(l zerolog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		family: version.Plaintext,
		logger: utils.ComponentLogger("plaintext"),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) Family() version.Family {
	return b.family
}

// Transfer builds a transfer proof.
// Each spend is signed by its own owner for the spender; the submitter signs the envelope.
// Value conservation is left to the validator, see types.CheckConservation.
func (b *Builder) Transfer(
	spends []Spend,
	outputs []*types.OutputNote,
	publicOwner common.Address,
	publicValue types.PublicValue,
	metaData []byte,
	submitter *ecdsa.PrivateKey,
) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	inputs, err := inputsOf(spends, submitter)
	if err != nil {
		return nil, errors.Wrap(err, "transfer inputs")
	}
	tx := &types.Transfer{
		Inputs:      inputs,
		Outputs:     outputs,
		PublicOwner: publicOwner,
		PublicValue: publicValue,
		MetaData:    metaData,
	}
	if err := tx.Validate(); err != nil {
		return nil, err
	}
	return b.wrap(version.Transfer, tx, submitter)
}

// Mint builds a mint proof. priorMintHash is the payload hash of the last accepted mint,
// zero for the first one.
func (b *Builder) Mint(priorMintHash common.Hash, outputs []*types.OutputNote, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	m := &types.Mint{PriorMintHash: priorMintHash, Outputs: outputs}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return b.wrap(version.Mint, m, submitter)
}

// Burn builds a burn proof. Spends without a key or signature are signed by the submitter.
func (b *Builder) Burn(priorBurnHash common.Hash, spends []Spend, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil {
		return nil, types.InvalidArgument("nil submitter key")
	}
	inputs, err := inputsOf(spends, submitter)
	if err != nil {
		return nil, errors.Wrap(err, "burn inputs")
	}
	burn := &types.Burn{PriorBurnHash: priorBurnHash, Inputs: inputs}
	if err := burn.Validate(); err != nil {
		return nil, err
	}
	return b.wrap(version.Burn, burn, submitter)
}

// Approve builds an approve proof. Only the note owner may submit it.
func (b *Builder) Approve(approve *types.ApproveNote, submitter *ecdsa.PrivateKey) (*Proof, error) {
	if submitter == nil || approve == nil {
		return nil, types.InvalidArgument("nil approve or submitter key")
	}
	if crypto.Address(submitter) != approve.Owner {
		return nil, types.InvalidArgument("approve of %s submitted by %s", approve.Owner, crypto.Address(submitter))
	}
	if err := approve.Validate(); err != nil {
		return nil, err
	}
	return b.wrap(version.Approve, approve, submitter)
}

func (b *Builder) wrap(op version.Opcode, payload interface{}, submitter *ecdsa.PrivateKey) (*Proof, error) {
	payloadBytes, err := rlp.EncodeToBytes(payload)
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s payload", op)
	}
	tag := b.family.Tag(op)
	data, err := rlp.EncodeToBytes(&Data{Version: tag, Payload: payloadBytes})
	if err != nil {
		return nil, errors.Wrap(err, "encode proof data")
	}
	sig, err := crypto.Sign(data, submitter)
	if err != nil {
		return nil, errors.Wrap(err, "sign proof")
	}

	b.logger.Debug().
		Str("version", tag.String()).
		Hex("payloadHash", gethcrypto.Keccak256(payloadBytes)).
		Str("submitter", crypto.Address(submitter).Hex()).
		Msg("plaintext proof built")

	return &Proof{Data: data, Signature: sig}, nil
}
