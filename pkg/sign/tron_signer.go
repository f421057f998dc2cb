package sign

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/tronkit/tronkit/pkg/address"
)

var (
	_ Signer    = (*TronSigner)(nil)
	_ PublicKey = (*TronPublicKey)(nil)
)

// TronPublicKey is an uncompressed secp256k1 public key.
type TronPublicKey struct {
	key  *secp256k1.PublicKey
	addr address.Address
}

// NewTronPublicKey parses a compressed or uncompressed public key.
func NewTronPublicKey(pub []byte) (TronPublicKey, error) {
	key, err := secp256k1.ParsePubKey(pub)
	if err != nil {
		return TronPublicKey{}, fmt.Errorf("failed to parse public key: %w", err)
	}
	return newTronPublicKey(key)
}

func newTronPublicKey(key *secp256k1.PublicKey) (TronPublicKey, error) {
	addr, err := address.FromKeys(hex.EncodeToString(key.SerializeUncompressed()), "")
	if err != nil {
		return TronPublicKey{}, err
	}
	return TronPublicKey{key: key, addr: addr.ViewOnly()}, nil
}

func (p TronPublicKey) Address() address.Address { return p.addr }

// Bytes returns the 65-byte uncompressed encoding.
func (p TronPublicKey) Bytes() []byte { return p.key.SerializeUncompressed() }

// Option configures a TronSigner.
type Option func(*TronSigner)

// WithCanonical makes the signer emit low-S signatures. By default s is left
// exactly as computed from the RFC 6979 nonce.
func WithCanonical() Option {
	return func(s *TronSigner) { s.canonical = true }
}

// TronSigner signs with secp256k1 and RFC 6979 deterministic nonces.
type TronSigner struct {
	privateKey *secp256k1.PrivateKey
	publicKey  TronPublicKey
	canonical  bool
}

// NewTronSigner creates a signer from a hex private key, with or without 0x.
func NewTronSigner(privateKeyHex string, opts ...Option) (*TronSigner, error) {
	key, err := parsePrivateKey(privateKeyHex)
	if err != nil {
		return nil, err
	}
	pub, err := newTronPublicKey(key.PubKey())
	if err != nil {
		return nil, err
	}

	s := &TronSigner{privateKey: key, publicKey: pub}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *TronSigner) PublicKey() PublicKey { return s.publicKey }

// Address is the account this signer signs for.
func (s *TronSigner) Address() address.Address { return s.publicKey.addr }

// Sign signs a 32-byte digest.
func (s *TronSigner) Sign(digest []byte) (Signature, error) {
	return signDigest(s.privateKey, digest, s.canonical)
}

// Sign signs digest with the hex private key and returns r || s || v.
// Nothing derived from the key outlives the call.
func Sign(digest []byte, privateKeyHex string, opts ...Option) (Signature, error) {
	signer, err := NewTronSigner(privateKeyHex, opts...)
	if err != nil {
		return nil, err
	}
	defer signer.privateKey.Zero()
	return signer.Sign(digest)
}

// SignHex is Sign for a hex digest, returning hex.
func SignHex(digestHex, privateKeyHex string, opts ...Option) (string, error) {
	digest, err := hex.DecodeString(trim0x(digestHex))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	sig, err := Sign(digest, privateKeyHex, opts...)
	if err != nil {
		return "", err
	}
	return sig.String(), nil
}

// signDigest is ECDSA with an RFC 6979 nonce. Unlike the decred and
// go-ethereum signers it does not force s into the lower half of the order
// unless canonical is set, so the output matches signers that leave s as is.
func signDigest(key *secp256k1.PrivateKey, digest []byte, canonical bool) (Signature, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidDigest, DigestLength, len(digest))
	}

	var e secp256k1.ModNScalar
	e.SetByteSlice(digest)

	privBytes := key.Key.Bytes()
	defer clear(privBytes[:])

	for iteration := uint32(0); ; iteration++ {
		k := secp256k1.NonceRFC6979(privBytes[:], digest, nil, nil, iteration)

		var R secp256k1.JacobianPoint
		secp256k1.ScalarBaseMultNonConst(k, &R)
		R.ToAffine()

		var r secp256k1.ModNScalar
		overflow := r.SetBytes(R.X.Bytes())
		if r.IsZero() {
			k.Zero()
			continue
		}

		recoveryID := byte(0)
		if R.Y.IsOdd() {
			recoveryID = 1
		}
		if overflow != 0 {
			recoveryID |= 2
		}

		kInv := new(secp256k1.ModNScalar).InverseValNonConst(k)
		k.Zero()
		s := new(secp256k1.ModNScalar).Mul2(&key.Key, &r).Add(&e).Mul(kInv)
		if s.IsZero() {
			continue
		}

		if canonical && s.IsOverHalfOrder() {
			s.Negate()
			recoveryID ^= 1
		}

		sig := make(Signature, SignatureLength)
		r.PutBytesUnchecked(sig[0:32])
		s.PutBytesUnchecked(sig[32:64])
		sig[64] = recoveryID
		return sig, nil
	}
}

// RecoverPublicKey returns the 65-byte public key that produced sig over digest.
func RecoverPublicKey(digest []byte, sig Signature) ([]byte, error) {
	if len(digest) != DigestLength {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidDigest, DigestLength, len(digest))
	}
	if len(sig) != SignatureLength {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidSignature, len(sig))
	}

	local := make(Signature, SignatureLength)
	copy(local, sig)
	// Some wallets emit Ethereum style 27/28.
	if local[64] >= 27 {
		local[64] -= 27
	}
	if err := local.Validate(); err != nil {
		return nil, err
	}

	pub, err := ethcrypto.Ecrecover(digest, local)
	if err != nil {
		return nil, fmt.Errorf("%w: recovery failed: %v", ErrInvalidSignature, err)
	}
	return pub, nil
}

// RecoverAddress returns the address whose key produced sig over digest.
func RecoverAddress(digest []byte, sig Signature) (address.Address, error) {
	pub, err := RecoverPublicKey(digest, sig)
	if err != nil {
		return address.Address{}, err
	}
	addr, err := address.FromKeys(hex.EncodeToString(pub), "")
	if err != nil {
		return address.Address{}, err
	}
	return addr.ViewOnly(), nil
}

// VerifyAddress reports whether sig over digest was produced by the key of addr.
func VerifyAddress(digest []byte, sig Signature, addr address.Address) bool {
	recovered, err := RecoverAddress(digest, sig)
	return err == nil && recovered.Equal(addr)
}

func parsePrivateKey(privateKeyHex string) (*secp256k1.PrivateKey, error) {
	b, err := hex.DecodeString(trim0x(privateKeyHex))
	if err != nil {
		return nil, fmt.Errorf("%w: not hex", ErrInvalidPrivateKey)
	}
	defer clear(b)
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: want 32 bytes, got %d", ErrInvalidPrivateKey, len(b))
	}

	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(b); overflow || scalar.IsZero() {
		return nil, fmt.Errorf("%w: scalar out of range", ErrInvalidPrivateKey)
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}
