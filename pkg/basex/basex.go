// Package basex converts exact non-negative integers between decimal text,
// big-endian byte strings and positional numeral systems of radix 2 to 256.
package basex

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

const (
	MinRadix = 2
	MaxRadix = 256

	// textDigits is the default alphabet for radix up to 64.
	textDigits = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ-_"
)

var (
	ErrInvalidRadix   = errors.New("invalid radix")
	ErrInvalidDigit   = errors.New("invalid digit")
	ErrInvalidDecimal = errors.New("invalid decimal value")
)

var byteDigits = func() string {
	var sb strings.Builder
	for i := 0; i < 256; i++ {
		sb.WriteByte(byte(i))
	}
	return sb.String()
}()

// Digits returns the default alphabet for radix: alphanumerics plus "-_"
// up to 64, raw byte values 0..255 above that.
func Digits(radix int) (string, error) {
	if radix < MinRadix || radix > MaxRadix {
		return "", fmt.Errorf("%w: %d", ErrInvalidRadix, radix)
	}
	if radix > len(textDigits) {
		return byteDigits[:radix], nil
	}
	return textDigits[:radix], nil
}

// ToBase renders the decimal integer dec in the given radix. An empty
// alphabet selects Digits(radix). Zero renders as the alphabet's first digit.
func ToBase(dec string, radix int, alphabet string) (string, error) {
	n, ok := new(big.Int).SetString(dec, 10)
	if !ok || n.Sign() < 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidDecimal, dec)
	}
	return EncodeInt(n, radix, alphabet)
}

// FromBase parses value written in the given radix and returns its decimal
// text. With the default alphabet and radix below 37 the input is matched
// case-insensitively.
func FromBase(value string, radix int, alphabet string) (string, error) {
	n, err := DecodeInt(value, radix, alphabet)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// EncodeInt renders n in the given radix.
func EncodeInt(n *big.Int, radix int, alphabet string) (string, error) {
	digits, err := resolve(radix, alphabet)
	if err != nil {
		return "", err
	}
	if n.Sign() < 0 {
		return "", fmt.Errorf("%w: negative value", ErrInvalidDecimal)
	}
	if n.Sign() == 0 {
		return digits[:1], nil
	}

	var (
		base = big.NewInt(int64(radix))
		q    = new(big.Int).Set(n)
		r    = new(big.Int)
		out  []byte
	)
	for q.Sign() > 0 {
		q.QuoRem(q, base, r)
		out = append(out, digits[r.Int64()])
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return string(out), nil
}

// DecodeInt parses value written in the given radix. An empty value is zero.
func DecodeInt(value string, radix int, alphabet string) (*big.Int, error) {
	if alphabet == "" && radix < 37 {
		value = strings.ToLower(value)
	}
	digits, err := resolve(radix, alphabet)
	if err != nil {
		return nil, err
	}

	var index [256]int
	for i := range index {
		index[i] = -1
	}
	for i := 0; i < len(digits); i++ {
		index[digits[i]] = i
	}

	base := big.NewInt(int64(radix))
	n := new(big.Int)
	d := new(big.Int)
	for i := 0; i < len(value); i++ {
		pos := index[value[i]]
		if pos < 0 {
			return nil, fmt.Errorf("%w: %q at position %d", ErrInvalidDigit, value[i], i)
		}
		n.Mul(n, base)
		n.Add(n, d.SetInt64(int64(pos)))
	}
	return n, nil
}

// BytesToDecimal interprets b as a big-endian unsigned integer.
func BytesToDecimal(b []byte) string {
	return new(big.Int).SetBytes(b).String()
}

// DecimalToBytes returns the minimal big-endian encoding of dec. Zero encodes
// as a single 0x00 byte.
func DecimalToBytes(dec string) ([]byte, error) {
	s, err := ToBase(dec, MaxRadix, "")
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func resolve(radix int, alphabet string) (string, error) {
	if radix < MinRadix || radix > MaxRadix {
		return "", fmt.Errorf("%w: %d", ErrInvalidRadix, radix)
	}
	if alphabet == "" {
		return Digits(radix)
	}
	if len(alphabet) < radix {
		return "", fmt.Errorf("%w: alphabet has %d digits, radix %d", ErrInvalidRadix, len(alphabet), radix)
	}
	return alphabet[:radix], nil
}
