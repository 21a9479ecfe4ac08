package confidential

import (
	"github.com/ethereum/go-ethereum/common"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/kysee/privacy/utxo/crypto"
	"github.com/kysee/privacy/utxo/types"
	"github.com/kysee/privacy/utxo/version"
	"github.com/pkg/errors"
)

// Data is the signed body of a confidential proof.
type Data struct {
	Version        version.Tag
	ConfidentialTx []byte
	ExtraData      []byte
}

// Proof is the envelope submitted to the confidential validator.
type Proof struct {
	Data      []byte
	Signature []byte
}

func (p *Proof) Bytes() []byte {
	bz, err := rlp.EncodeToBytes(p)
	if err != nil {
		panic(err)
	}
	return bz
}

func DecodeProof(bz []byte) (*Proof, error) {
	p := new(Proof)
	if err := rlp.DecodeBytes(bz, p); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "decode confidential proof: %v", err)
	}
	return p, nil
}

func (p *Proof) Open() (*Data, error) {
	d := new(Data)
	if err := rlp.DecodeBytes(p.Data, d); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "decode confidential data: %v", err)
	}
	return d, nil
}

func (p *Proof) Submitter() (common.Address, error) {
	return crypto.Recover(p.Data, p.Signature)
}

// ChainHash is keccak256 of the signed body.
// For an accepted mint or burn it becomes the prior hash of the next one.
func (p *Proof) ChainHash() common.Hash {
	return gethcrypto.Keccak256Hash(p.Data)
}

func (d *Data) Tx() (*Tx, error) {
	tx, err := DecodeTx(d.ConfidentialTx)
	if err != nil {
		return nil, errors.Wrap(types.ErrInvalidArgument, err.Error())
	}
	return tx, nil
}

func (d *Data) TransferExtra() (*TransferExtra, error) {
	switch d.Version.Opcode() {
	case version.Transfer, version.Deposit, version.Withdraw:
	default:
		return nil, types.InvalidArgument("%s has no transfer extra data", d.Version.Opcode())
	}
	extra := new(TransferExtra)
	if err := rlp.DecodeBytes(d.ExtraData, extra); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "decode transfer extra: %v", err)
	}
	return extra, nil
}

func (d *Data) MintExtra() (*MintExtra, error) {
	if d.Version.Opcode() != version.Mint {
		return nil, types.InvalidArgument("%s has no mint extra data", d.Version.Opcode())
	}
	extra := new(MintExtra)
	if err := rlp.DecodeBytes(d.ExtraData, extra); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "decode mint extra: %v", err)
	}
	return extra, nil
}

func (d *Data) BurnExtra() (*BurnExtra, error) {
	if d.Version.Opcode() != version.Burn {
		return nil, types.InvalidArgument("%s has no burn extra data", d.Version.Opcode())
	}
	extra := new(BurnExtra)
	if err := rlp.DecodeBytes(d.ExtraData, extra); err != nil {
		return nil, errors.Wrapf(types.ErrInvalidArgument, "decode burn extra: %v", err)
	}
	return extra, nil
}

// Verify runs the checks the validator makes outside the engine:
// the signer is the authorized address, the tag matches the transaction type,
// a withdraw names a public owner and a deposit is signed by it.
func (p *Proof) Verify() error {
	submitter, err := p.Submitter()
	if err != nil {
		return err
	}
	d, err := p.Open()
	if err != nil {
		return err
	}
	tx, err := d.Tx()
	if err != nil {
		return err
	}
	if tx.AuthorizedAddress != submitter {
		return types.InvalidArgument("proof signed by %s, authorized %s", submitter, tx.AuthorizedAddress)
	}
	op := d.Version.Opcode()
	if uint8(op) != tx.TxType {
		return types.InvalidArgument("tag %s carries tx type %d", d.Version, tx.TxType)
	}

	switch op {
	case version.Withdraw:
		extra, err := d.TransferExtra()
		if err != nil {
			return err
		}
		if extra.PublicOwner == (common.Address{}) {
			return types.InvalidArgument("withdraw to the zero address")
		}
	case version.Deposit:
		extra, err := d.TransferExtra()
		if err != nil {
			return err
		}
		if !crypto.Verify(extra.PublicOwner, d.ConfidentialTx, extra.DepositSignature) {
			return types.InvalidArgument("deposit not signed by %s", extra.PublicOwner)
		}
	case version.Transfer:
		if _, err := d.TransferExtra(); err != nil {
			return err
		}
	case version.Mint:
		if _, err := d.MintExtra(); err != nil {
			return err
		}
	case version.Burn:
		if _, err := d.BurnExtra(); err != nil {
			return err
		}
	default:
		return types.InvalidArgument("confidential proofs do not support %s", op)
	}
	return nil
}
