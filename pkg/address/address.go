// Package address derives and parses TRON account addresses.
//
// An address is 21 bytes: the 0x41 version byte followed by the last 20
// bytes of the Keccak-256 hash of the uncompressed public key body. Its
// textual form is the Base58Check encoding of those bytes (34 characters,
// always starting with 'T'); its hex form is 42 characters starting with "41".
package address

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/tronkit/tronkit/pkg/base58"
)

const (
	Prefix     byte = 0x41
	PrefixHex       = "41"
	Length          = 21
	TextLength      = 34
	HexLength       = 2 * Length

	// NullAddressHex is the all-zero account, used as the owner of read-only calls.
	NullAddressHex = "410000000000000000000000000000000000000000"
)

var (
	ErrAddressDerivation = errors.New("address derivation failed")
	ErrInvalidHexInput   = errors.New("invalid hex input")
	ErrInvalidAddress    = errors.New("invalid address")
)

// Address is an immutable TRON address. The zero value is not a valid address.
// Addresses built from a key pair also carry the keys; the rest are view-only.
type Address struct {
	raw           [Length]byte
	text          string
	publicKeyHex  string
	privateKeyHex string
}

// FromKeys derives the address of publicKeyHex and keeps both keys.
func FromKeys(publicKeyHex, privateKeyHex string) (Address, error) {
	addrHex, err := PublicKeyToHex(publicKeyHex)
	if err != nil {
		return Address{}, err
	}
	a, err := FromHex(addrHex)
	if err != nil {
		return Address{}, err
	}
	a.publicKeyHex = strings.ToLower(strings.TrimPrefix(publicKeyHex, "0x"))
	a.privateKeyHex = strings.ToLower(strings.TrimPrefix(privateKeyHex, "0x"))
	return a, nil
}

// FromBase58 parses and validates a textual address.
func FromBase58(text string) (Address, error) {
	if !IsValid(text) {
		return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, text)
	}
	payload, err := base58.Decode(text, base58.ChecksumLength)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return FromBytes(payload)
}

// FromHex parses a 42-character hex address with the 41 prefix.
func FromHex(addrHex string) (Address, error) {
	b, err := hex.DecodeString(strings.TrimPrefix(addrHex, "0x"))
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", ErrInvalidHexInput, err)
	}
	return FromBytes(b)
}

// FromBytes builds an address from its 21 raw bytes.
func FromBytes(b []byte) (Address, error) {
	if len(b) != Length || b[0] != Prefix {
		return Address{}, fmt.Errorf("%w: want %d bytes with prefix 0x41, got %x", ErrInvalidAddress, Length, b)
	}
	var a Address
	copy(a.raw[:], b)
	a.text = base58.Encode(a.raw[:])
	return a, nil
}

// FromEVM prefixes a 20-byte account hash with the version byte.
func FromEVM(evm common.Address) Address {
	a, _ := FromBytes(append([]byte{Prefix}, evm.Bytes()...))
	return a
}

// Parse accepts any representation seen on the wire: Base58 text, 41-prefixed
// hex, or a bare 20-byte hex hash with or without 0x.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	switch {
	case len(s) == TextLength:
		return FromBase58(s)
	case len(s) == HexLength && strings.HasPrefix(s, PrefixHex):
		return FromHex(s)
	case len(s) == 42 && (strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")):
		return FromHex(PrefixHex + s[2:])
	case len(s) == 40:
		return FromHex(PrefixHex + s)
	}
	return Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Base58 returns the 34-character Base58Check form, e.g. "TR7NHq...".
func (a Address) Base58() string { return a.text }

// String implements fmt.Stringer with the Base58Check form.
func (a Address) String() string { return a.text }

// Hex returns the lowercase 42-character hex form.
func (a Address) Hex() string { return hex.EncodeToString(a.raw[:]) }

// Bytes returns a copy of the 21 raw bytes, 0x41 first.
func (a Address) Bytes() []byte { return bytes.Clone(a.raw[:]) }

// EVM returns the 20-byte account hash used inside ABI-encoded data.
func (a Address) EVM() common.Address { return common.BytesToAddress(a.raw[1:]) }

// PublicKeyHex returns the public key the address was derived from, if any.
func (a Address) PublicKeyHex() string { return a.publicKeyHex }

// PrivateKeyHex returns the attached private key, or "" for view-only addresses.
func (a Address) PrivateKeyHex() string { return a.privateKeyHex }

// HasKeys reports whether the address was derived from a key pair.
func (a Address) HasKeys() bool { return a.privateKeyHex != "" }

// IsZero reports whether a is the zero value rather than a parsed address.
func (a Address) IsZero() bool { return a.raw[0] == 0 }

// Equal compares the raw bytes only; attached keys are ignored.
func (a Address) Equal(other Address) bool { return a.raw == other.raw }

// ViewOnly returns a copy without key material.
func (a Address) ViewOnly() Address {
	return Address{raw: a.raw, text: a.text}
}

// MarshalJSON encodes the address as its Base58Check string.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.text)
}

// UnmarshalJSON accepts any form Parse does.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// PublicKeyToHex derives the 42-character hex address of a public key. It
// accepts a 65-byte uncompressed key, its 64-byte body, or a 33-byte
// compressed key.
func PublicKeyToHex(publicKeyHex string) (string, error) {
	pub, err := hex.DecodeString(strings.TrimPrefix(publicKeyHex, "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrAddressDerivation, err)
	}

	switch len(pub) {
	case 64:
	case 65:
		pub = pub[1:]
	case 33:
		key, err := secp256k1.ParsePubKey(pub)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrAddressDerivation, err)
		}
		pub = key.SerializeUncompressed()[1:]
	default:
		return "", fmt.Errorf("%w: unexpected public key length %d", ErrAddressDerivation, len(pub))
	}

	hash := ethcrypto.Keccak256(pub)
	return PrefixHex + hex.EncodeToString(hash[12:]), nil
}

// HexToBase58 renders a hex payload as Base58Check text.
func HexToBase58(h string) (string, error) {
	h = strings.TrimPrefix(h, "0x")
	if len(h) < 2 || len(h)%2 != 0 {
		return "", fmt.Errorf("%w: length %d", ErrInvalidHexInput, len(h))
	}
	text, err := base58.EncodeHex(h)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHexInput, err)
	}
	return text, nil
}

// Base58ToHex decodes text and drops trailingBytesToStrip bytes (the
// checksum by default). Input that already is a 42-character hex address
// is returned unchanged.
func Base58ToHex(text string, trailingBytesToStrip int) (string, error) {
	if isPrefixedHex(text) {
		return text, nil
	}
	return base58.DecodeHex(text, trailingBytesToStrip)
}

// IsValid reports whether text is a well-formed address: 34 characters,
// 25 decoded bytes, the 0x41 prefix and a matching checksum.
func IsValid(text string) bool {
	if len(text) != TextLength {
		return false
	}
	raw, err := base58.Decode(text, 0)
	if err != nil {
		return false
	}
	if len(raw) != Length+base58.ChecksumLength || raw[0] != Prefix {
		return false
	}
	return base58.Verify(raw)
}

func isPrefixedHex(s string) bool {
	if len(s) != HexLength || !strings.HasPrefix(s, PrefixHex) {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
