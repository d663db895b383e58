// Package pluginid converts between four-character plugin codes and their packed
// 32-bit form.
package pluginid

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// CodeLength is the exact number of characters in a plugin code.
const CodeLength = 4

// ErrInvalidIdentifier is returned for codes that are not exactly four printable
// ASCII characters.
var ErrInvalidIdentifier = errors.New("invalid plugin identifier")

// ID holds both forms of a plugin identifier. They always agree.
type ID struct {
	Code  string
	Value uint32
}

// Parse validates code and returns the identifier holding both forms.
func Parse(code string) (ID, error) {
	value, err := Encode(code)
	if err != nil {
		return ID{}, err
	}

	return ID{Code: code, Value: value}, nil
}

// FromValue builds an identifier from its packed form.
func FromValue(value uint32) ID {
	return ID{Code: Decode(value), Value: value}
}

// String renders the code when it is printable and the hex value otherwise.
func (id ID) String() string {
	if IsPrintable(id.Value) {
		return id.Code
	}

	return fmt.Sprintf("0x%08X", id.Value)
}

// Encode packs a four-character code into a big-endian uint32.
func Encode(code string) (uint32, error) {
	if len(code) != CodeLength {
		return 0, errors.Wrapf(ErrInvalidIdentifier, "%q must be %d characters", code, CodeLength)
	}

	var value uint32

	for i := range CodeLength {
		c := code[i]
		if !isPrintableByte(c) {
			return 0, errors.Wrapf(ErrInvalidIdentifier, "%q has a non-printable character at %d", code, i)
		}

		value = value<<8 | uint32(c)
	}

	return value, nil
}

// Decode unpacks a big-endian uint32 into its four characters.
func Decode(value uint32) string {
	return string([]byte{
		byte(value >> 24),
		byte(value >> 16),
		byte(value >> 8),
		byte(value),
	})
}

// IsPrintable reports whether every byte of value is printable ASCII, which means
// Decode yields a code Encode accepts.
func IsPrintable(value uint32) bool {
	for shift := 24; shift >= 0; shift -= 8 {
		if !isPrintableByte(byte(value >> shift)) {
			return false
		}
	}

	return true
}

func isPrintableByte(c byte) bool {
	return c >= 0x20 && c <= 0x7e
}
