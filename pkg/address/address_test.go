package address_test

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/base58"
)

const (
	fixturePublicKey = "047fe68d5cb89b25c37c9240c22c6e732bbccfc7fe3e5ddfe378ae4373e3c5826330a4cda815e94fd777e74594865e119e2d397a88bb4dd10bd24ca2b2864bceec"
	fixtureHex       = "41928c9af0651632157ef27a2cf17ca72c575a4d21"
	fixtureBase58    = "TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY"
)

func TestPublicKeyToHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		publicKey string
		expected  string
	}{
		{"uncompressed", fixturePublicKey, fixtureHex},
		{"body only", fixturePublicKey[2:], fixtureHex},
		{"compressed", "02" + fixturePublicKey[2:66], fixtureHex},
		{"generator point", "0479be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798483ada7726a3c4655da4fbfc0e1108a8fd17b448a68554199c47d08ffb10d4b8", "417e5f4552091a69125d5dfcb7b8c2659029395bdf"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := address.PublicKeyToHex(test.publicKey)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}

	t.Run("bad input", func(t *testing.T) {
		for _, in := range []string{"zz", "04", fixturePublicKey + "00"} {
			_, err := address.PublicKeyToHex(in)
			assert.ErrorIs(t, err, address.ErrAddressDerivation, in)
		}
	})
}

func TestFromKeys(t *testing.T) {
	t.Parallel()

	a, err := address.FromKeys(fixturePublicKey, "da146374a75310b9666e834ee4ad0866d6f4035967bfc76217c5a495fff9f0d0")
	require.NoError(t, err)

	assert.Equal(t, fixtureBase58, a.Base58())
	assert.Equal(t, fixtureHex, a.Hex())
	assert.True(t, a.HasKeys())
	assert.Equal(t, fixturePublicKey, a.PublicKeyHex())
	assert.Equal(t, common.HexToAddress("0x928c9af0651632157ef27a2cf17ca72c575a4d21"), a.EVM())

	view := a.ViewOnly()
	assert.False(t, view.HasKeys())
	assert.True(t, view.Equal(a))
}

func TestHexToBase58(t *testing.T) {
	t.Parallel()

	text, err := address.HexToBase58(fixtureHex)
	require.NoError(t, err)
	assert.Equal(t, fixtureBase58, text)

	for _, in := range []string{"", "4", "41f", "41zz"} {
		_, err := address.HexToBase58(in)
		assert.ErrorIs(t, err, address.ErrInvalidHexInput, in)
	}
}

func TestBase58ToHex(t *testing.T) {
	t.Parallel()

	got, err := address.Base58ToHex(fixtureBase58, base58.ChecksumLength)
	require.NoError(t, err)
	assert.Equal(t, fixtureHex, got)

	t.Run("hex input is returned unchanged", func(t *testing.T) {
		got, err := address.Base58ToHex(fixtureHex, base58.ChecksumLength)
		require.NoError(t, err)
		assert.Equal(t, fixtureHex, got)
	})
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	for i := 0; i < 100; i++ {
		payload := make([]byte, address.Length)
		_, err := rand.Read(payload)
		require.NoError(t, err)
		payload[0] = address.Prefix
		p := hex.EncodeToString(payload)

		text, err := address.HexToBase58(p)
		require.NoError(t, err)
		assert.True(t, address.IsValid(text), text)

		raw, err := address.Base58ToHex(text, 0)
		require.NoError(t, err)
		sum := base58.Checksum(payload)
		assert.Equal(t, p+hex.EncodeToString(sum[:]), raw)
	}
}

func TestIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		expected bool
	}{
		{"fixture", fixtureBase58, true},
		{"usdt", "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", true},
		{"null address", "T9yD14Nj9j7xAB4dbGeiX9h8unkKHxuWwb", true},
		{"empty", "", false},
		{"too short", fixtureBase58[:33], false},
		{"hex form", fixtureHex, false},
		{"invalid character", "0PL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY", false},
		{"bitcoin address", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", false},
		{"checksum mismatch", fixtureBase58[:33] + "Z", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, address.IsValid(test.text))
		})
	}
}

func TestIsValid_RejectsSingleCharacterChanges(t *testing.T) {
	t.Parallel()

	var total, rejected int
	for i := 0; i < len(fixtureBase58); i++ {
		for j := 0; j < len(base58.Alphabet); j++ {
			c := base58.Alphabet[j]
			if c == fixtureBase58[i] {
				continue
			}
			mutated := fixtureBase58[:i] + string(c) + fixtureBase58[i+1:]
			total++
			if !address.IsValid(mutated) {
				rejected++
			}
		}
	}

	assert.GreaterOrEqual(t, float64(rejected)/float64(total), 0.999)
}

func TestParse(t *testing.T) {
	t.Parallel()

	for _, in := range []string{
		fixtureBase58,
		fixtureHex,
		"0x928c9af0651632157ef27a2cf17ca72c575a4d21",
		"928c9af0651632157ef27a2cf17ca72c575a4d21",
		" " + fixtureBase58 + "\n",
	} {
		a, err := address.Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, fixtureBase58, a.String())
		assert.False(t, a.HasKeys())
	}

	for _, in := range []string{"", "T", fixtureBase58[:33] + "Z", "42928c9af0651632157ef27a2cf17ca72c575a4d21"} {
		_, err := address.Parse(in)
		assert.ErrorIs(t, err, address.ErrInvalidAddress, in)
	}
}

func TestJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Owner address.Address `json:"owner"`
	}

	data, err := json.Marshal(payload{Owner: address.MustParse(fixtureHex)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"owner":"`+fixtureBase58+`"}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, fixtureHex, decoded.Owner.Hex())

	assert.Error(t, json.Unmarshal([]byte(`{"owner":"nope"}`), &decoded))
}

func TestFromEVM(t *testing.T) {
	t.Parallel()

	a := address.FromEVM(common.HexToAddress("0xa614f803b6fd780986a42c78ec9c7f77e6ded13c"))
	assert.Equal(t, "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t", a.Base58())
	assert.Equal(t, address.NullAddressHex, address.FromEVM(common.Address{}).Hex())
}
