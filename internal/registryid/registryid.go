// Package registryid normalizes, masks and validates CNPJ registry identifiers.
package registryid

import "strings"

// Length is the number of digits in a canonical registry ID.
const Length = 14

// ID is a digit-only registry identifier of at most Length digits.
type ID string

// separators maps a digit offset to the literal written before that digit.
var separators = map[int]byte{2: '.', 5: '.', 8: '/', 12: '-'}

// Normalize strips every non-digit from raw and truncates to Length digits.
func Normalize(raw string) ID {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < len(raw) && b.Len() < Length; i++ {
		if c := raw[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return ID(b.String())
}

// Mask renders id as NN.NNN.NNN/NNNN-NN. Separators are only written when a
// digit follows them, so partial IDs never end in punctuation.
func Mask(id ID) string {
	digits := string(Normalize(string(id)))
	var b strings.Builder
	b.Grow(len(digits) + len(separators))
	for i := 0; i < len(digits); i++ {
		if sep, ok := separators[i]; ok {
			b.WriteByte(sep)
		}
		b.WriteByte(digits[i])
	}
	return b.String()
}

// Format is what an input field shows after a keystroke.
func Format(raw string) string {
	return Mask(Normalize(raw))
}

// IsSubmittable reports whether id has exactly Length ASCII digits. No check
// digits are verified.
func IsSubmittable(id ID) bool {
	if len(id) != Length {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < '0' || id[i] > '9' {
			return false
		}
	}
	return true
}
