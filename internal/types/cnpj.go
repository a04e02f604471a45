package types

import (
	"fmt"
	"strconv"
	"strings"
)

// CNPJ is a Brazilian company tax id, kept as its numeric value.
type CNPJ uint64

var (
	cnpjLengths    = [...]int{2, 3, 3, 4, 2}
	cnpjSeparators = [...]byte{'.', '.', '/', '-'}
)

const cnpjDigitCount = 14

// ParseCNPJ accepts either the zero-filled form with separators
// ("00.000.000/0001-91") or plain digits ("191", "00000000000191").
func ParseCNPJ(s string) (CNPJ, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "./-") {
		return parseFormattedCNPJ(s)
	}
	return parseCNPJDigits(s)
}

func parseFormattedCNPJ(s string) (CNPJ, error) {
	var digits strings.Builder
	index := 0

	for i, length := range cnpjLengths {
		for j := index; j < index+length; j++ {
			if j >= len(s) {
				return 0, fmt.Errorf("%w: cnpj '%s': expected digit at index %d, which is out of range", ErrInvalidValue, s, j)
			}
			if s[j] < '0' || s[j] > '9' {
				return 0, fmt.Errorf("%w: cnpj '%s': expected digit at index %d (got '%c')", ErrInvalidValue, s, j, s[j])
			}
			digits.WriteByte(s[j])
		}
		index += length

		if i < len(cnpjSeparators) {
			if index >= len(s) || s[index] != cnpjSeparators[i] {
				return 0, fmt.Errorf("%w: cnpj '%s': expected '%c' at index %d", ErrInvalidValue, s, cnpjSeparators[i], index)
			}
			index++
		}
	}

	if index != len(s) {
		return 0, fmt.Errorf("%w: cnpj '%s': trailing characters", ErrInvalidValue, s)
	}

	return parseCNPJDigits(digits.String())
}

func parseCNPJDigits(s string) (CNPJ, error) {
	if s == "" {
		return 0, fmt.Errorf("%w: cnpj must not be empty", ErrInvalidValue)
	}
	if len(strings.TrimLeft(s, "0")) > cnpjDigitCount {
		return 0, fmt.Errorf("%w: cnpj '%s' is too large", ErrInvalidValue, s)
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: cnpj '%s' must contain only digits", ErrInvalidValue, s)
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: cnpj digits must not be zero", ErrInvalidValue)
	}
	return CNPJ(n), nil
}

// Digits returns the zero-filled 14-digit form without separators.
func (c CNPJ) Digits() string {
	return fmt.Sprintf("%014d", uint64(c))
}

// String returns the zero-filled form with separators.
func (c CNPJ) String() string {
	digits := c.Digits()

	var b strings.Builder
	start := 0
	for i, length := range cnpjLengths {
		b.WriteString(digits[start : start+length])
		if i < len(cnpjSeparators) {
			b.WriteByte(cnpjSeparators[i])
		}
		start += length
	}
	return b.String()
}
