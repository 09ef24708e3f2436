package traits

import "fmt"

// EncodingError is returned when a trait value can't be represented by a
// single byte.
type EncodingError struct {
	Field Field
	Value int64
}

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("%s value %d is out of [0, 255] range", e.Field, e.Value)
}

// DecodingError is returned when an attribute blob is too short to contain
// all traits.
type DecodingError struct {
	Need int
	Have int
}

// Error implements the error interface.
func (e *DecodingError) Error() string {
	return fmt.Sprintf("attributes are too short: need %d bytes, got %d", e.Need, e.Have)
}
