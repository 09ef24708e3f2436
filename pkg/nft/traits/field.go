package traits

import (
	"fmt"
	"strings"
)

// Field identifies a single trait.
type Field byte

// Known trait fields in tuple order.
const (
	Class Field = iota
	Rarity
	Power

	fieldCount = 3
)

// Fields lists all trait fields in tuple order.
var Fields = []Field{Class, Rarity, Power}

// String implements the fmt.Stringer interface.
func (f Field) String() string {
	switch f {
	case Class:
		return "class"
	case Rarity:
		return "rarity"
	case Power:
		return "power"
	default:
		return fmt.Sprintf("field(%d)", byte(f))
	}
}

// ParseField parses trait name (case-insensitive).
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "class":
		return Class, nil
	case "rarity":
		return Rarity, nil
	case "power":
		return Power, nil
	default:
		return 0, fmt.Errorf("unknown trait %q", s)
	}
}

// ParseFields parses a list of trait names.
func ParseFields(ss []string) ([]Field, error) {
	res := make([]Field, 0, len(ss))
	for _, s := range ss {
		f, err := ParseField(s)
		if err != nil {
			return nil, err
		}
		res = append(res, f)
	}
	return res, nil
}
