package sign

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyPairFromPrivateKey(t *testing.T) {
	t.Parallel()

	kp, err := KeyPairFromPrivateKey(fixturePrivateKey)
	require.NoError(t, err)
	assert.Equal(t, "047fe68d5cb89b25c37c9240c22c6e732bbccfc7fe3e5ddfe378ae4373e3c5826330a4cda815e94fd777e74594865e119e2d397a88bb4dd10bd24ca2b2864bceec", kp.PublicKeyHex())

	addr, err := kp.Address()
	require.NoError(t, err)
	assert.Equal(t, fixtureAddress, addr.Base58())
	assert.Equal(t, fixturePrivateKey, addr.PrivateKeyHex())
}

func TestGenerateKeyPair(t *testing.T) {
	t.Parallel()

	a, err := GenerateKeyPair()
	require.NoError(t, err)
	b, err := GenerateKeyPair()
	require.NoError(t, err)

	assert.Len(t, a.PrivateKey, 32)
	assert.Len(t, a.PublicKey, 65)
	assert.Equal(t, byte(0x04), a.PublicKey[0])
	assert.NotEqual(t, a.PrivateKey, b.PrivateKey)

	addr, err := NewAddress()
	require.NoError(t, err)
	assert.True(t, addr.HasKeys())
	assert.True(t, strings.HasPrefix(addr.Base58(), "T"))
}

func TestKeyPairFromMnemonic(t *testing.T) {
	t.Parallel()

	const mnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

	kp, err := KeyPairFromMnemonic(mnemonic, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "b5a4cea271ff424d7c31dc12a3e43e401df7a40d7412a15750f3f0b6b5449a28", kp.PrivateKeyHex())

	addr, err := kp.Address()
	require.NoError(t, err)
	assert.Equal(t, "TUEZSdKsoDHQMeZwihtdoBiN46zxhGWYdH", addr.Base58())

	next, err := KeyPairFromMnemonic(mnemonic, "", 1)
	require.NoError(t, err)
	assert.NotEqual(t, kp.PrivateKey, next.PrivateKey)

	_, err = KeyPairFromMnemonic("abandon abandon", "", 0)
	assert.ErrorIs(t, err, ErrInvalidPrivateKey)
}

func TestNewMnemonic(t *testing.T) {
	t.Parallel()

	m, err := NewMnemonic(128)
	require.NoError(t, err)
	assert.Len(t, strings.Fields(m), 12)

	_, err = KeyPairFromMnemonic(m, "passphrase", 0)
	require.NoError(t, err)

	_, err = NewMnemonic(100)
	assert.Error(t, err)
}

func TestKeyPair_NeverPrintsPrivateKey(t *testing.T) {
	t.Parallel()

	kp, err := KeyPairFromPrivateKey(fixturePrivateKey)
	require.NoError(t, err)

	for _, s := range []string{kp.String(), fmt.Sprintf("%v", kp), fmt.Sprintf("%#v", kp)} {
		assert.NotContains(t, s, fixturePrivateKey)
		assert.Contains(t, s, "REDACTED")
	}

	kp.Zero()
	assert.Equal(t, make([]byte, 32), kp.PrivateKey)
}
