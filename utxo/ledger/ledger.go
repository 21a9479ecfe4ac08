// Package ledger keeps a local view of what the chain accepted, built from
// decoded validator results. It mirrors the storage contract: created notes,
// spent notes, approvals and the mint and burn hash chains. Note hashes are
// also accumulated in a MiMC merkle tree so a note's inclusion can be proven
// against a root.
//
// A result that contradicts the current view (spending an unknown or spent
// note, recreating a note, breaking a hash chain) is rejected as a whole with
// ErrConflict and leaves the ledger unchanged.
package ledger

import (
	"bytes"
	"sort"
	"sync"

	"github.com/consensys/gnark-crypto/accumulator/merkletree"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/kysee/privacy/utils"
	"github.com/kysee/privacy/utxo/result"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrConflict = errors.New("result conflicts with ledger")
	ErrNotFound = errors.New("note not found")
)

// Entry is a note the chain created.
type Entry struct {
	Hash     common.Hash
	Owner    []byte
	MetaData []byte
	Index    uint64
	Spent    bool
}

// Inclusion proves that the leaf at Index is part of the tree with root Root.
type Inclusion struct {
	Root      []byte
	ProofSet  [][]byte
	Index     uint64
	NumLeaves uint64
}

type Ledger struct {
	mtx sync.RWMutex

	notes     map[common.Hash]*Entry
	leaves    [][]byte
	tree      *merkletree.Tree
	approvals map[common.Hash][]byte

	mintHash  common.Hash
	burnHash  common.Hash
	totalMint *uint256.Int
	totalBurn *uint256.Int

	logger zerolog.Logger
}

func New() *Ledger {
	return &Ledger{
		notes:     make(map[common.Hash]*Entry),
		tree:      merkletree.New(utils.MiMCHasher()),
		approvals: make(map[common.Hash][]byte),
		totalMint: new(uint256.Int),
		totalBurn: new(uint256.Int),
		logger:    utils.ComponentLogger("ledger"),
	}
}

// leaf maps a keccak note hash into the scalar field of the tree hasher.
func leaf(h common.Hash) []byte {
	return utils.MiMCHash(h[:])
}

func conflict(format string, args ...interface{}) error {
	return errors.Wrapf(ErrConflict, format, args...)
}

func (l *Ledger) checkSpendable(inputs []result.ConsumedNote) error {
	seen := make(map[common.Hash]struct{}, len(inputs))
	for _, in := range inputs {
		e, ok := l.notes[in.NoteHash]
		if !ok {
			return conflict("input %s is unknown", in.NoteHash)
		}
		if e.Spent {
			return conflict("input %s is already spent", in.NoteHash)
		}
		if _, dup := seen[in.NoteHash]; dup {
			return conflict("input %s is spent twice", in.NoteHash)
		}
		seen[in.NoteHash] = struct{}{}
	}
	return nil
}

func (l *Ledger) checkCreatable(outputs []result.CreatedNote) error {
	seen := make(map[common.Hash]struct{}, len(outputs))
	for _, out := range outputs {
		if _, ok := l.notes[out.NoteHash]; ok {
			return conflict("output %s already exists", out.NoteHash)
		}
		if _, dup := seen[out.NoteHash]; dup {
			return conflict("output %s is created twice", out.NoteHash)
		}
		seen[out.NoteHash] = struct{}{}
	}
	return nil
}

func (l *Ledger) spend(inputs []result.ConsumedNote) {
	for _, in := range inputs {
		l.notes[in.NoteHash].Spent = true
	}
}

func (l *Ledger) create(outputs []result.CreatedNote) {
	for _, out := range outputs {
		l.notes[out.NoteHash] = &Entry{
			Hash:     out.NoteHash,
			Owner:    bytes.Clone(out.Owner),
			MetaData: bytes.Clone(out.MetaData),
			Index:    uint64(len(l.leaves)),
		}
		lf := leaf(out.NoteHash)
		l.leaves = append(l.leaves, lf)
		l.tree.Push(lf)
	}
}

func (l *Ledger) ApplyTransfer(r *result.TransferResult) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if err := l.checkSpendable(r.Inputs); err != nil {
		return err
	}
	if err := l.checkCreatable(r.Outputs); err != nil {
		return err
	}
	l.spend(r.Inputs)
	l.create(r.Outputs)

	l.logger.Debug().
		Int("inputs", len(r.Inputs)).
		Int("outputs", len(r.Outputs)).
		Str("publicValue", r.PublicValue.String()).
		Msg("transfer applied")
	return nil
}

// ApplyMint adds the result's amount to the minted supply. TotalMint of a
// result is what that one mint created, not a running total.
func (l *Ledger) ApplyMint(r *result.MintResult) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if r.OldMintHash != l.mintHash {
		return conflict("mint chained to %s, ledger is at %s", r.OldMintHash, l.mintHash)
	}
	supply, overflow := new(uint256.Int).AddOverflow(l.totalMint, r.TotalMint)
	if overflow {
		return conflict("minted supply overflows")
	}
	if err := l.checkCreatable(r.Outputs); err != nil {
		return err
	}
	l.create(r.Outputs)
	l.mintHash = r.NewMintHash
	l.totalMint = supply

	l.logger.Debug().Str("mintHash", r.NewMintHash.Hex()).Str("amount", r.TotalMint.Dec()).Str("total", supply.Dec()).Msg("mint applied")
	return nil
}

func (l *Ledger) ApplyBurn(r *result.BurnResult) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	if r.OldBurnHash != l.burnHash {
		return conflict("burn chained to %s, ledger is at %s", r.OldBurnHash, l.burnHash)
	}
	burned, overflow := new(uint256.Int).AddOverflow(l.totalBurn, r.TotalBurn)
	if overflow {
		return conflict("burned supply overflows")
	}
	if err := l.checkSpendable(r.Inputs); err != nil {
		return err
	}
	l.spend(r.Inputs)
	l.burnHash = r.NewBurnHash
	l.totalBurn = burned

	l.logger.Debug().Str("burnHash", r.NewBurnHash.Hex()).Str("amount", r.TotalBurn.Dec()).Str("total", burned.Dec()).Msg("burn applied")
	return nil
}

// ApplyApprove records the shared signature of an unspent note.
// A later approval of the same note replaces the earlier one.
func (l *Ledger) ApplyApprove(r *result.ApproveResult) error {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	e, ok := l.notes[r.NoteHash]
	if !ok {
		return conflict("approved note %s is unknown", r.NoteHash)
	}
	if e.Spent {
		return conflict("approved note %s is spent", r.NoteHash)
	}
	l.approvals[r.NoteHash] = bytes.Clone(r.SharedSign)
	return nil
}

func (l *Ledger) Note(h common.Hash) (Entry, bool) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()

	e, ok := l.notes[h]
	if !ok {
		return Entry{}, false
	}
	ret := *e
	ret.Owner = bytes.Clone(e.Owner)
	ret.MetaData = bytes.Clone(e.MetaData)
	return ret, true
}

func (l *Ledger) Approval(h common.Hash) ([]byte, bool) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()

	sig, ok := l.approvals[h]
	return bytes.Clone(sig), ok
}

// Unspent returns the hashes of unspent notes whose owner equals owner, in creation order.
func (l *Ledger) Unspent(owner []byte) []common.Hash {
	l.mtx.RLock()
	defer l.mtx.RUnlock()

	var ret []common.Hash
	for _, e := range l.notes {
		if !e.Spent && bytes.Equal(e.Owner, owner) {
			ret = append(ret, e.Hash)
		}
	}
	sort.Slice(ret, func(i, j int) bool {
		return l.notes[ret[i]].Index < l.notes[ret[j]].Index
	})
	return ret
}

func (l *Ledger) MintHash() common.Hash {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.mintHash
}

func (l *Ledger) BurnHash() common.Hash {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.burnHash
}

// TotalMint is the sum of every applied mint.
func (l *Ledger) TotalMint() *uint256.Int {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.totalMint.Clone()
}

func (l *Ledger) TotalBurn() *uint256.Int {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	return l.totalBurn.Clone()
}

// Root is the merkle root over every created note, nil while the ledger is empty.
func (l *Ledger) Root() []byte {
	l.mtx.RLock()
	defer l.mtx.RUnlock()
	if len(l.leaves) == 0 {
		return nil
	}
	return bytes.Clone(l.tree.Root())
}

// Prove builds the inclusion proof of a created note, spent or not.
func (l *Ledger) Prove(h common.Hash) (*Inclusion, error) {
	l.mtx.RLock()
	defer l.mtx.RUnlock()

	e, ok := l.notes[h]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "%s", h)
	}
	var buf bytes.Buffer
	for _, lf := range l.leaves {
		buf.Write(lf)
	}
	hasher := utils.MiMCHasher()
	root, proofSet, numLeaves, err := merkletree.BuildReaderProof(&buf, hasher, hasher.Size(), e.Index)
	if err != nil {
		return nil, errors.Wrap(err, "build inclusion proof")
	}
	return &Inclusion{Root: root, ProofSet: proofSet, Index: e.Index, NumLeaves: numLeaves}, nil
}

// Verify checks that the proof binds note h to the proof's root.
func (inc *Inclusion) Verify(h common.Hash) bool {
	if len(inc.ProofSet) == 0 || !bytes.Equal(inc.ProofSet[0], leaf(h)) {
		return false
	}
	return merkletree.VerifyProof(utils.MiMCHasher(), inc.Root, inc.ProofSet, inc.Index, inc.NumLeaves)
}
