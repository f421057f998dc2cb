package sign

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tronkit/tronkit/pkg/address"
)

const (
	// DigestLength is the size of the hashes this package signs (a txID).
	DigestLength = 32
	// SignatureLength is r (32) || s (32) || recovery id (1).
	SignatureLength = 65
)

var (
	ErrInvalidPrivateKey = errors.New("invalid private key")
	ErrInvalidDigest     = errors.New("invalid digest")
	ErrInvalidSignature  = errors.New("invalid signature")
)

// Signer signs 32-byte digests on behalf of a single account.
type Signer interface {
	PublicKey() PublicKey                  // Public key associated with this signer.
	Sign(digest []byte) (Signature, error) // Sign signs a precomputed digest.
}

// PublicKey is the public half of a signing key.
type PublicKey interface {
	Address() address.Address
	Bytes() []byte
}

// Signature is a recoverable secp256k1 signature in r || s || v order, the
// layout TRON nodes expect in a transaction's signature list.
type Signature []byte

// R returns the first 32 bytes.
func (s Signature) R() []byte { return s.part(0, 32) }

// S returns bytes 32..64.
func (s Signature) S() []byte { return s.part(32, 64) }

// V returns the recovery id, 0..3.
func (s Signature) V() byte {
	if len(s) != SignatureLength {
		return 0
	}
	return s[64]
}

func (s Signature) part(from, to int) []byte {
	if len(s) != SignatureLength {
		return nil
	}
	return s[from:to]
}

// Validate checks the length and recovery id.
func (s Signature) Validate() error {
	if len(s) != SignatureLength {
		return fmt.Errorf("%w: length %d", ErrInvalidSignature, len(s))
	}
	if s[64] > 3 {
		return fmt.Errorf("%w: recovery id %d", ErrInvalidSignature, s[64])
	}
	return nil
}

// String returns the signature as lowercase hex without a 0x prefix.
func (s Signature) String() string {
	return hex.EncodeToString(s)
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts hex with or without a 0x prefix.
func (s *Signature) UnmarshalJSON(data []byte) error {
	var hexStr string
	if err := json.Unmarshal(data, &hexStr); err != nil {
		return err
	}
	decoded, err := hex.DecodeString(trim0x(hexStr))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	*s = decoded
	return nil
}

// ParseSignature decodes a hex signature and validates it.
func ParseSignature(sigHex string) (Signature, error) {
	b, err := hex.DecodeString(trim0x(sigHex))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	sig := Signature(b)
	if err := sig.Validate(); err != nil {
		return nil, err
	}
	return sig, nil
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
