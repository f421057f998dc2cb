// Package base58 implements Base58Check: a payload followed by the first four
// bytes of its double SHA-256, written in the Bitcoin Base58 alphabet.
package base58

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"github.com/tronkit/tronkit/pkg/basex"
)

const (
	Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	Radix    = 58

	// ChecksumLength is the number of double SHA-256 bytes appended to a payload.
	ChecksumLength = 4
)

var (
	ErrInvalidCharacter = errors.New("invalid base58 character")
	ErrInvalidHex       = errors.New("invalid hex payload")
	ErrTooShort         = errors.New("decoded value shorter than bytes to strip")
	ErrChecksumMismatch = errors.New("base58 checksum mismatch")
)

// Checksum returns the first four bytes of sha256(sha256(payload)).
func Checksum(payload []byte) [ChecksumLength]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])

	var sum [ChecksumLength]byte
	copy(sum[:], second[:ChecksumLength])
	return sum
}

// Encode appends the checksum to payload and renders the result in Base58.
func Encode(payload []byte) string {
	sum := Checksum(payload)
	raw := make([]byte, 0, len(payload)+ChecksumLength)
	raw = append(raw, payload...)
	raw = append(raw, sum[:]...)
	return EncodeRaw(raw)
}

// EncodeHex is Encode for a hex payload.
func EncodeHex(payloadHex string) (string, error) {
	payload, err := hex.DecodeString(payloadHex)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return Encode(payload), nil
}

// EncodeRaw renders raw in Base58 without adding a checksum. Every leading
// zero byte becomes a leading '1'.
func EncodeRaw(raw []byte) string {
	zeros := 0
	for zeros < len(raw) && raw[zeros] == 0 {
		zeros++
	}

	// Alphabet and radix are constants, EncodeInt cannot fail here.
	body, _ := basex.EncodeInt(new(big.Int).SetBytes(raw[zeros:]), Radix, Alphabet)
	if zeros == len(raw) {
		body = ""
	}
	return string(bytes.Repeat([]byte{Alphabet[0]}, zeros)) + body
}

// DecodeRaw is the inverse of EncodeRaw.
func DecodeRaw(text string) ([]byte, error) {
	zeros := 0
	for zeros < len(text) && text[zeros] == Alphabet[0] {
		zeros++
	}

	n, err := basex.DecodeInt(text[zeros:], Radix, Alphabet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCharacter, err)
	}

	raw := make([]byte, zeros, zeros+len(text))
	return append(raw, n.Bytes()...), nil
}

// Decode converts text back to bytes and drops the last trailingBytesToStrip
// bytes. Use ChecksumLength to drop the checksum, or 0 for the raw form.
// The checksum is not verified; see DecodeCheck.
func Decode(text string, trailingBytesToStrip int) ([]byte, error) {
	raw, err := DecodeRaw(text)
	if err != nil {
		return nil, err
	}
	if trailingBytesToStrip < 0 || trailingBytesToStrip > len(raw) {
		return nil, fmt.Errorf("%w: have %d, strip %d", ErrTooShort, len(raw), trailingBytesToStrip)
	}
	return raw[:len(raw)-trailingBytesToStrip], nil
}

// DecodeHex is Decode with a lowercase hex result.
func DecodeHex(text string, trailingBytesToStrip int) (string, error) {
	b, err := Decode(text, trailingBytesToStrip)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// DecodeCheck decodes text, verifies its checksum and returns the payload.
func DecodeCheck(text string) ([]byte, error) {
	raw, err := Decode(text, 0)
	if err != nil {
		return nil, err
	}
	if !Verify(raw) {
		return nil, ErrChecksumMismatch
	}
	return raw[:len(raw)-ChecksumLength], nil
}

// Verify reports whether the last four bytes of raw are the checksum of the rest.
func Verify(raw []byte) bool {
	if len(raw) < ChecksumLength {
		return false
	}
	payload := raw[:len(raw)-ChecksumLength]
	sum := Checksum(payload)
	return bytes.Equal(sum[:], raw[len(payload):])
}
