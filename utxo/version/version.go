// Package version packs the protocol identity of a proof into a 32-bit tag:
//
//	category<<24 | major<<16 | minor<<8 | opcode
//
// Validator and storage contracts are selected by comparing this value exactly,
// so the layout must not change.
package version

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Opcode uint8

const (
	Transfer Opcode = 1
	Mint     Opcode = 2
	Burn     Opcode = 3
	Deposit  Opcode = 4
	Withdraw Opcode = 5
	Approve  Opcode = 6
)

func (op Opcode) Valid() bool {
	return op >= Transfer && op <= Approve
}

func (op Opcode) String() string {
	switch op {
	case Transfer:
		return "transfer"
	case Mint:
		return "mint"
	case Burn:
		return "burn"
	case Deposit:
		return "deposit"
	case Withdraw:
		return "withdraw"
	case Approve:
		return "approve"
	default:
		return fmt.Sprintf("opcode(%d)", uint8(op))
	}
}

func ParseOpcode(s string) (Opcode, error) {
	for op := Transfer; op <= Approve; op++ {
		if op.String() == s {
			return op, nil
		}
	}
	return 0, errors.Errorf("unknown opcode %q", s)
}

const (
	CategoryPlaintext    uint8 = 1
	CategoryConfidential uint8 = 2
)

type Tag uint32

func Pack(category, major, minor uint8, op Opcode) Tag {
	return Tag(uint32(category)<<24 | uint32(major)<<16 | uint32(minor)<<8 | uint32(op))
}

func (t Tag) Unpack() (category, major, minor uint8, op Opcode) {
	return t.Category(), t.Major(), t.Minor(), t.Opcode()
}

func (t Tag) Category() uint8 { return uint8(t >> 24) }
func (t Tag) Major() uint8    { return uint8(t >> 16) }
func (t Tag) Minor() uint8    { return uint8(t >> 8) }
func (t Tag) Opcode() Opcode  { return Opcode(t) }

// Family drops the opcode.
func (t Tag) Family() Family {
	return Family{Category: t.Category(), Major: t.Major(), Minor: t.Minor()}
}

func (t Tag) String() string {
	return fmt.Sprintf("%d.%d.%d/%s", t.Category(), t.Major(), t.Minor(), t.Opcode())
}

// IsCompatible reports whether a validator of (category, major, supportedMinor) accepts t:
// category and major match exactly and t's minor is not newer than supportedMinor.
func IsCompatible(t Tag, category, major, supportedMinor uint8) bool {
	return t.Category() == category && t.Major() == major && t.Minor() <= supportedMinor
}

// Family is a category and contract generation.
type Family struct {
	Category uint8 `yaml:"category"`
	Major    uint8 `yaml:"major"`
	Minor    uint8 `yaml:"minor"`
}

var (
	Plaintext    = Family{Category: CategoryPlaintext, Major: 1, Minor: 1}
	Confidential = Family{Category: CategoryConfidential, Major: 1, Minor: 1}
)

func (f Family) Tag(op Opcode) Tag {
	return Pack(f.Category, f.Major, f.Minor, op)
}

// Supports reports whether a validator of this family accepts t.
func (f Family) Supports(t Tag) bool {
	return IsCompatible(t, f.Category, f.Major, f.Minor)
}

func (f Family) String() string {
	return fmt.Sprintf("%d.%d.%d", f.Category, f.Major, f.Minor)
}

func ParseFamily(s string) (Family, error) {
	var c, ma, mi uint8
	n, err := fmt.Sscanf(s, "%d.%d.%d", &c, &ma, &mi)
	if err != nil || n != 3 {
		return Family{}, errors.Errorf("parse family %q: expected category.major.minor", s)
	}
	if c == 0 {
		return Family{}, errors.Errorf("parse family %q: category 0", s)
	}
	return Family{Category: c, Major: ma, Minor: mi}, nil
}

// MarshalYAML writes the family as "category.major.minor".
func (f Family) MarshalYAML() (interface{}, error) {
	return f.String(), nil
}

// UnmarshalYAML accepts "category.major.minor" or a mapping of the three fields.
func (f *Family) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		parsed, err := ParseFamily(node.Value)
		if err != nil {
			return err
		}
		*f = parsed
		return nil
	case yaml.MappingNode:
		type family Family
		var tmp family
		if err := node.Decode(&tmp); err != nil {
			return errors.Wrap(err, "unmarshal family")
		}
		*f = Family(tmp)
		return nil
	default:
		return errors.New("family must be a scalar or mapping")
	}
}
