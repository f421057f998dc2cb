package sign

import (
	"crypto/sha256"

	"github.com/tronkit/tronkit/pkg/address"
)

var _ Signer = (*MockSigner)(nil)

// MockSigner produces deterministic, well-formed but unrecoverable signatures
// for tests that only care about plumbing.
type MockSigner struct {
	publicKey MockPublicKey
	err       error
}

// NewMockSigner returns a MockSigner whose address is addr.
func NewMockSigner(addr address.Address) *MockSigner {
	return &MockSigner{publicKey: MockPublicKey{addr: addr}}
}

// FailWith makes every following Sign call return err.
func (m *MockSigner) FailWith(err error) *MockSigner {
	m.err = err
	return m
}

// Sign returns sha256(digest || address) twice over, followed by a zero recovery id.
func (m *MockSigner) Sign(digest []byte) (Signature, error) {
	if m.err != nil {
		return nil, m.err
	}
	h := sha256.Sum256(append(append([]byte{}, digest...), m.publicKey.addr.Bytes()...))
	sig := make(Signature, 0, SignatureLength)
	sig = append(sig, h[:]...)
	sig = append(sig, h[:]...)
	return append(sig, 0), nil
}

func (m *MockSigner) PublicKey() PublicKey { return m.publicKey }

var _ PublicKey = MockPublicKey{}

type MockPublicKey struct {
	addr address.Address
}

func (m MockPublicKey) Address() address.Address { return m.addr }
func (m MockPublicKey) Bytes() []byte            { return m.addr.Bytes() }
