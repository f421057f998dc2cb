package abi

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	ethabi "github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/tronkit/tronkit/pkg/address"
)

var (
	ErrAbiEncoding = errors.New("abi encoding failed")
	ErrAbiDecoding = errors.New("abi decoding failed")
)

// EncodedCall is what a trigger request carries: the textual function
// selector and the hex encoded argument words.
type EncodedCall struct {
	Selector  string
	Parameter string
}

// EncodeCall validates and encodes args for fn.
func EncodeCall(fn Function, args []any) (EncodedCall, error) {
	data, err := EncodeParameters(fn, args)
	if err != nil {
		return EncodedCall{}, err
	}
	return EncodedCall{
		Selector:  fn.Signature(),
		Parameter: hex.EncodeToString(data),
	}, nil
}

// Data returns the selector bytes followed by the encoded parameters, the
// form used as raw call data.
func (c EncodedCall) Data() ([]byte, error) {
	params, err := hex.DecodeString(c.Parameter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAbiEncoding, err)
	}
	return append(selectorOf(c.Selector), params...), nil
}

// EncodeParameters packs args against fn.Inputs in head/tail layout.
func EncodeParameters(fn Function, args []any) ([]byte, error) {
	if len(args) != len(fn.Inputs) {
		return nil, fmt.Errorf("%w: %s expects %d arguments, got %d", ErrAbiEncoding, fn.Name, len(fn.Inputs), len(args))
	}

	arguments, err := toArguments(fn.Inputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAbiEncoding, err)
	}

	values := make([]any, len(args))
	for i, arg := range args {
		v, err := coerce(arguments[i].Type, arg)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %d (%s %s): %v", ErrAbiEncoding, i, fn.Inputs[i].Type, fn.Inputs[i].Name, err)
		}
		values[i] = v
	}

	data, err := arguments.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAbiEncoding, err)
	}
	return data, nil
}

// DecodeParameters unpacks data against fn.Outputs. A single output is
// returned bare, several as []any in declaration order, none as nil.
// Integers decode to *big.Int, addresses to address.Address and fixed
// size byte arrays to []byte.
func DecodeParameters(fn Function, data []byte) (any, error) {
	if len(fn.Outputs) == 0 {
		return nil, nil
	}

	arguments, err := toArguments(fn.Outputs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAbiDecoding, err)
	}

	raw, err := arguments.UnpackValues(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrAbiDecoding, fn.Name, err)
	}

	values := make([]any, len(raw))
	for i, v := range raw {
		values[i] = normalizeDecoded(arguments[i].Type, reflect.ValueOf(v))
	}
	if len(values) == 1 {
		return values[0], nil
	}
	return values, nil
}

// DecodeHex is DecodeParameters for a hex string such as constant_result[0].
func DecodeHex(fn Function, dataHex string) (any, error) {
	data, err := hex.DecodeString(strings.TrimPrefix(dataHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAbiDecoding, err)
	}
	return DecodeParameters(fn, data)
}

func toArguments(params []Param) (ethabi.Arguments, error) {
	args := make(ethabi.Arguments, len(params))
	for i, p := range params {
		typ := NormalizeType(p.Type)
		if strings.HasPrefix(typ, "tuple") || strings.HasPrefix(typ, "function") {
			return nil, fmt.Errorf("unsupported type %q", p.Type)
		}
		t, err := ethabi.NewType(typ, "", nil)
		if err != nil {
			return nil, fmt.Errorf("type %q: %w", p.Type, err)
		}
		args[i] = ethabi.Argument{Name: p.Name, Type: t}
	}
	return args, nil
}

// coerce converts a caller supplied value to the Go type go-ethereum packs
// for t.
func coerce(t ethabi.Type, v any) (any, error) {
	switch t.T {
	case ethabi.AddressTy:
		return toEVMAddress(v)
	case ethabi.BoolTy:
		return toBool(v)
	case ethabi.StringTy:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		case fmt.Stringer:
			return s.String(), nil
		}
		return nil, fmt.Errorf("cannot use %T as string", v)
	case ethabi.BytesTy:
		return toBytes(v)
	case ethabi.FixedBytesTy:
		b, err := toBytes(v)
		if err != nil {
			return nil, err
		}
		if len(b) > t.Size {
			return nil, fmt.Errorf("%d bytes do not fit bytes%d", len(b), t.Size)
		}
		out := reflect.New(t.GetType()).Elem()
		for i, c := range b {
			out.Index(i).SetUint(uint64(c))
		}
		return out.Interface(), nil
	case ethabi.UintTy, ethabi.IntTy:
		n, err := toBigInt(v)
		if err != nil {
			return nil, err
		}
		return fitInt(t, n)
	case ethabi.SliceTy, ethabi.ArrayTy:
		return coerceList(t, v)
	}
	return nil, fmt.Errorf("unsupported type %s", t.String())
}

func coerceList(t ethabi.Type, v any) (any, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("cannot use %T as %s", v, t.String())
	}
	if t.T == ethabi.ArrayTy && rv.Len() != t.Size {
		return nil, fmt.Errorf("%s needs %d elements, got %d", t.String(), t.Size, rv.Len())
	}

	var out reflect.Value
	if t.T == ethabi.SliceTy {
		out = reflect.MakeSlice(t.GetType(), rv.Len(), rv.Len())
	} else {
		out = reflect.New(t.GetType()).Elem()
	}
	for i := 0; i < rv.Len(); i++ {
		elem, err := coerce(*t.Elem, rv.Index(i).Interface())
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(reflect.ValueOf(elem))
	}
	return out.Interface(), nil
}

func toEVMAddress(v any) (common.Address, error) {
	switch a := v.(type) {
	case address.Address:
		if a.IsZero() {
			return common.Address{}, errors.New("empty address")
		}
		return a.EVM(), nil
	case *address.Address:
		if a == nil {
			return common.Address{}, errors.New("nil address")
		}
		return toEVMAddress(*a)
	case common.Address:
		return a, nil
	case string:
		parsed, err := address.Parse(a)
		if err != nil {
			return common.Address{}, err
		}
		return parsed.EVM(), nil
	}
	return common.Address{}, fmt.Errorf("cannot use %T as address", v)
}

func toBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		return strconv.ParseBool(b)
	}
	return false, fmt.Errorf("cannot use %T as bool", v)
}

func toBytes(v any) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return hex.DecodeString(strings.TrimPrefix(b, "0x"))
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Array && rv.Type().Elem().Kind() == reflect.Uint8 {
		return arrayBytes(rv), nil
	}
	return nil, fmt.Errorf("cannot use %T as bytes", v)
}

func toBigInt(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		if n == nil {
			return nil, errors.New("nil integer")
		}
		return new(big.Int).Set(n), nil
	case big.Int:
		return new(big.Int).Set(&n), nil
	case int:
		return big.NewInt(int64(n)), nil
	case int8:
		return big.NewInt(int64(n)), nil
	case int16:
		return big.NewInt(int64(n)), nil
	case int32:
		return big.NewInt(int64(n)), nil
	case int64:
		return big.NewInt(n), nil
	case uint:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(n)), nil
	case uint64:
		return new(big.Int).SetUint64(n), nil
	case float64:
		d := decimal.NewFromFloat(n)
		if !d.IsInteger() {
			return nil, fmt.Errorf("%v is not an integer", n)
		}
		return d.BigInt(), nil
	case decimal.Decimal:
		if !n.IsInteger() {
			return nil, fmt.Errorf("%s is not an integer", n.String())
		}
		return n.BigInt(), nil
	case json.Number:
		return toBigInt(string(n))
	case string:
		s := strings.TrimSpace(n)
		base := 10
		if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
			s, base = s[2:], 16
		}
		out, ok := new(big.Int).SetString(s, base)
		if !ok {
			return nil, fmt.Errorf("%q is not an integer", n)
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot use %T as integer", v)
}

// fitInt range checks n and converts it to the native integer go-ethereum
// expects for 8, 16, 32 and 64 bit types, or keeps *big.Int otherwise.
func fitInt(t ethabi.Type, n *big.Int) (any, error) {
	if t.T == ethabi.UintTy {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative value %s for %s", n, t.String())
		}
		if n.BitLen() > t.Size {
			return nil, fmt.Errorf("value %s overflows %s", n, t.String())
		}
		switch t.Size {
		case 8:
			return uint8(n.Uint64()), nil
		case 16:
			return uint16(n.Uint64()), nil
		case 32:
			return uint32(n.Uint64()), nil
		case 64:
			return n.Uint64(), nil
		}
		return n, nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
	minimum := new(big.Int).Neg(limit)
	if n.Cmp(minimum) < 0 || n.Cmp(limit) >= 0 {
		return nil, fmt.Errorf("value %s overflows %s", n, t.String())
	}
	switch t.Size {
	case 8:
		return int8(n.Int64()), nil
	case 16:
		return int16(n.Int64()), nil
	case 32:
		return int32(n.Int64()), nil
	case 64:
		return n.Int64(), nil
	}
	return n, nil
}

// normalizeDecoded maps go-ethereum's unpacked values onto the types this
// package returns.
func normalizeDecoded(t ethabi.Type, v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	switch t.T {
	case ethabi.AddressTy:
		if a, ok := v.Interface().(common.Address); ok {
			return address.FromEVM(a)
		}
	case ethabi.UintTy, ethabi.IntTy:
		switch v.Kind() {
		case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			return big.NewInt(v.Int())
		case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			return new(big.Int).SetUint64(v.Uint())
		}
	case ethabi.FixedBytesTy:
		return arrayBytes(v)
	case ethabi.SliceTy, ethabi.ArrayTy:
		out := make([]any, v.Len())
		for i := range out {
			out[i] = normalizeDecoded(*t.Elem, v.Index(i))
		}
		return out
	}
	return v.Interface()
}

func arrayBytes(v reflect.Value) []byte {
	out := make([]byte, v.Len())
	for i := range out {
		out[i] = byte(v.Index(i).Uint())
	}
	return out
}
