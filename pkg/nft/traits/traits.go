/*
Package traits implements the card trait triple (class, rarity, power) and its
fixed-offset byte encoding used in NFT attribute blobs.

Every trait value is a single byte. An encoded blob places each trait at the
offset defined by a Layout; bytes beyond the layout are the vendor's business
and are ignored on decoding.
*/
package traits

import (
	"fmt"
	"math"
)

// Traits is a (class, rarity, power) triple describing an NFT card.
type Traits struct {
	Class  uint8 `json:"class"`
	Rarity uint8 `json:"rarity"`
	Power  uint8 `json:"power"`
}

// Layout defines byte offsets of every trait inside an attribute blob.
type Layout struct {
	Class  int `yaml:"Class"`
	Rarity int `yaml:"Rarity"`
	Power  int `yaml:"Power"`
}

// DefaultLayout is the canonical layout, traits occupy the first three bytes
// of the blob in tuple order.
var DefaultLayout = Layout{Class: 0, Rarity: 1, Power: 2}

// New creates Traits from arbitrary integers checking that each of them fits
// into a byte.
func New(class, rarity, power int) (Traits, error) {
	var t Traits
	for _, f := range []struct {
		field Field
		val   int
		dst   *uint8
	}{
		{Class, class, &t.Class},
		{Rarity, rarity, &t.Rarity},
		{Power, power, &t.Power},
	} {
		if f.val < 0 || f.val > math.MaxUint8 {
			return Traits{}, &EncodingError{Field: f.field, Value: int64(f.val)}
		}
		*f.dst = uint8(f.val)
	}
	return t, nil
}

// Get returns the value of the given trait.
func (t Traits) Get(f Field) uint8 {
	switch f {
	case Class:
		return t.Class
	case Rarity:
		return t.Rarity
	default:
		return t.Power
	}
}

// String implements the fmt.Stringer interface.
func (t Traits) String() string {
	return fmt.Sprintf("class=%d rarity=%d power=%d", t.Class, t.Rarity, t.Power)
}

// Encode encodes t using DefaultLayout.
func Encode(t Traits) []byte {
	return DefaultLayout.Encode(t)
}

// EncodeInts validates raw integer trait values and encodes them using
// DefaultLayout. It returns *EncodingError for out-of-range values.
func EncodeInts(class, rarity, power int) ([]byte, error) {
	t, err := New(class, rarity, power)
	if err != nil {
		return nil, err
	}
	return Encode(t), nil
}

// Decode decodes traits from data using DefaultLayout.
func Decode(data []byte) (Traits, error) {
	return DefaultLayout.Decode(data)
}

// Validate checks that offsets are non-negative and distinct.
func (l Layout) Validate() error {
	offs := l.offsets()
	for i := range offs {
		if offs[i] < 0 {
			return fmt.Errorf("negative %s offset %d", Field(i), offs[i])
		}
		for j := i + 1; j < len(offs); j++ {
			if offs[i] == offs[j] {
				return fmt.Errorf("%s and %s share offset %d", Field(i), Field(j), offs[i])
			}
		}
	}
	return nil
}

// Len returns the minimum blob length the layout can be decoded from, it's
// also the length of every encoded blob.
func (l Layout) Len() int {
	var max int
	for _, o := range l.offsets() {
		if o > max {
			max = o
		}
	}
	return max + 1
}

// Encode places every trait at its offset in a zero-filled blob of l.Len()
// bytes. Layout must be valid.
func (l Layout) Encode(t Traits) []byte {
	b := make([]byte, l.Len())
	b[l.Class] = t.Class
	b[l.Rarity] = t.Rarity
	b[l.Power] = t.Power
	return b
}

// Decode reads traits from data, it fails with *DecodingError if data is
// too short for the layout. Layout must be valid.
func (l Layout) Decode(data []byte) (Traits, error) {
	if len(data) < l.Len() {
		return Traits{}, &DecodingError{Need: l.Len(), Have: len(data)}
	}
	return Traits{
		Class:  data[l.Class],
		Rarity: data[l.Rarity],
		Power:  data[l.Power],
	}, nil
}

func (l Layout) offsets() [fieldCount]int {
	return [fieldCount]int{l.Class, l.Rarity, l.Power}
}
