package abi

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronkit/tronkit/pkg/address"
)

const usdt = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

func word(h string) string {
	return strings.Repeat("0", 64-len(h)) + h
}

func TestEncodeCall_Transfer(t *testing.T) {
	t.Parallel()

	fn, err := DefaultTRC20().Function("transfer")
	require.NoError(t, err)

	call, err := EncodeCall(fn, []any{usdt, big.NewInt(1_000_000)})
	require.NoError(t, err)

	assert.Equal(t, "transfer(address,uint256)", call.Selector)
	assert.Equal(t, word("a614f803b6fd780986a42c78ec9c7f77e6ded13c")+word("f4240"), call.Parameter)
	assert.Equal(t, [4]byte{0xa9, 0x05, 0x9c, 0xbb}, fn.Selector())

	data, err := call.Data()
	require.NoError(t, err)
	assert.Equal(t, "a9059cbb", hex.EncodeToString(data[:4]))
	assert.Len(t, data, 4+64)
}

func TestEncodeParameters_AddressForms(t *testing.T) {
	t.Parallel()

	fn, err := DefaultTRC20().Function("balanceOf")
	require.NoError(t, err)

	expected := word("a614f803b6fd780986a42c78ec9c7f77e6ded13c")
	for _, in := range []any{
		usdt,
		"41a614f803b6fd780986a42c78ec9c7f77e6ded13c",
		"0xa614f803b6fd780986a42c78ec9c7f77e6ded13c",
		address.MustParse(usdt),
	} {
		data, err := EncodeParameters(fn, []any{in})
		require.NoError(t, err)
		assert.Equal(t, expected, hex.EncodeToString(data))
	}
}

func TestEncodeParameters_Layout(t *testing.T) {
	t.Parallel()

	fn := Function{
		Name: "mixed",
		Inputs: []Param{
			{Name: "flag", Type: "bool"},
			{Name: "note", Type: "string"},
			{Name: "amount", Type: "uint"},
		},
	}

	data, err := EncodeParameters(fn, []any{true, "hi", 7})
	require.NoError(t, err)

	expected := word("1") + // bool
		word("60") + // offset of the string tail
		word("7") + // uint256
		word("2") + // string length
		"6869" + strings.Repeat("0", 60)
	assert.Equal(t, expected, hex.EncodeToString(data))
	assert.Equal(t, "mixed(bool,string,uint256)", fn.Signature())
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	huge, ok := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)
	require.True(t, ok)

	tests := []struct {
		name     string
		typ      string
		in       any
		expected any
	}{
		{"uint8", "uint8", 255, big.NewInt(255)},
		{"uint32", "uint32", uint32(4_000_000_000), big.NewInt(4_000_000_000)},
		{"uint64", "uint64", "18446744073709551615", new(big.Int).SetUint64(18446744073709551615)},
		{"uint256 max", "uint256", huge, huge},
		{"uint96 hex", "uint96", "0xff", big.NewInt(255)},
		{"int8 negative", "int8", -128, big.NewInt(-128)},
		{"int256 negative", "int", big.NewInt(-1), big.NewInt(-1)},
		{"decimal amount", "uint256", decimal.RequireFromString("1500000"), big.NewInt(1_500_000)},
		{"address", "address", usdt, address.MustParse(usdt)},
		{"bool", "bool", false, false},
		{"string", "string", "Tether USD", "Tether USD"},
		{"empty string", "string", "", ""},
		{"bytes", "bytes", []byte{1, 2, 3}, []byte{1, 2, 3}},
		{"dynamicBytes alias", "dynamicBytes", "0xdeadbeef", []byte{0xde, 0xad, 0xbe, 0xef}},
		{"bytes32", "bytes32", "0102", append([]byte{1, 2}, make([]byte, 30)...)},
		{"address array", "address[]", []string{usdt, address.NullAddressHex}, []any{address.MustParse(usdt), address.MustParse(address.NullAddressHex)}},
		{"fixed uint array", "uint256[2]", []int{1, 2}, []any{big.NewInt(1), big.NewInt(2)}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			fn := Function{
				Name:    "echo",
				Inputs:  []Param{{Type: test.typ}},
				Outputs: []Param{{Type: test.typ}},
			}

			data, err := EncodeParameters(fn, []any{test.in})
			require.NoError(t, err)
			assert.Zero(t, len(data)%32)

			got, err := DecodeParameters(fn, data)
			require.NoError(t, err)
			assert.Equal(t, test.expected, got)
		})
	}
}

func TestDecodeParameters_MultipleOutputs(t *testing.T) {
	t.Parallel()

	fn := Function{
		Name:    "info",
		Outputs: []Param{{Type: "string"}, {Type: "uint8"}, {Type: "address"}},
	}
	data, err := EncodeParameters(Function{Name: "info", Inputs: fn.Outputs}, []any{"USDT", 6, usdt})
	require.NoError(t, err)

	got, err := DecodeParameters(fn, data)
	require.NoError(t, err)
	assert.Equal(t, []any{"USDT", big.NewInt(6), address.MustParse(usdt)}, got)

	none, err := DecodeParameters(Function{Name: "noop"}, nil)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestDecodeHex_ConstantResult(t *testing.T) {
	t.Parallel()

	fn, err := DefaultTRC20().Function("symbol")
	require.NoError(t, err)

	result := word("20") + word("4") + "55534454" + strings.Repeat("0", 56)
	got, err := DecodeHex(fn, result)
	require.NoError(t, err)
	assert.Equal(t, "USDT", got)

	_, err = DecodeHex(fn, "zz")
	assert.ErrorIs(t, err, ErrAbiDecoding)

	_, err = DecodeHex(fn, "")
	assert.ErrorIs(t, err, ErrAbiDecoding)
}

func TestEncodeParameters_Errors(t *testing.T) {
	t.Parallel()

	transfer, err := DefaultTRC20().Function("transfer")
	require.NoError(t, err)

	tests := []struct {
		name string
		fn   Function
		args []any
	}{
		{"arity", transfer, []any{usdt}},
		{"bad address", transfer, []any{"TNotAnAddress", 1}},
		{"negative uint", transfer, []any{usdt, -1}},
		{"fractional amount", transfer, []any{usdt, decimal.RequireFromString("1.5")}},
		{"float fraction", transfer, []any{usdt, 0.5}},
		{"uint8 overflow", Function{Name: "f", Inputs: []Param{{Type: "uint8"}}}, []any{256}},
		{"int8 overflow", Function{Name: "f", Inputs: []Param{{Type: "int8"}}}, []any{128}},
		{"bytes2 too long", Function{Name: "f", Inputs: []Param{{Type: "bytes2"}}}, []any{[]byte{1, 2, 3}}},
		{"fixed array length", Function{Name: "f", Inputs: []Param{{Type: "uint256[2]"}}}, []any{[]int{1}}},
		{"tuple", Function{Name: "f", Inputs: []Param{{Type: "tuple"}}}, []any{1}},
		{"unknown type", Function{Name: "f", Inputs: []Param{{Type: "money"}}}, []any{1}},
		{"wrong kind", Function{Name: "f", Inputs: []Param{{Type: "bool"}}}, []any{struct{}{}}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := EncodeParameters(test.fn, test.args)
			assert.ErrorIs(t, err, ErrAbiEncoding)
		})
	}
}
