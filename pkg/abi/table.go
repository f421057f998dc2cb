// Package abi encodes contract call arguments and decodes return values in
// the Ethereum ABI layout that TRON's virtual machine shares, on top of
// go-ethereum's accounts/abi.
package abi

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrFunctionNotFound = errors.New("function not found in ABI")
	ErrInvalidABI       = errors.New("invalid ABI descriptor")
)

//go:embed trc20.json
var trc20JSON []byte

// Param is one input or output of a function descriptor.
type Param struct {
	Name    string `json:"name"`
	Type    string `json:"type"`
	Indexed bool   `json:"indexed,omitempty"`
}

// Function is a single ABI entry.
type Function struct {
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	Constant        bool    `json:"constant"`
	Payable         bool    `json:"payable"`
	StateMutability string  `json:"stateMutability"`
	Inputs          []Param `json:"inputs"`
	Outputs         []Param `json:"outputs"`
}

// IsConstant reports whether calling fn only reads state. Older descriptors
// set constant, newer ones only carry stateMutability.
func (fn Function) IsConstant() bool {
	if fn.Constant {
		return true
	}
	switch strings.ToLower(fn.StateMutability) {
	case "view", "pure":
		return true
	}
	return false
}

// Signature returns "name(type1,type2,...)" with canonical type names.
func (fn Function) Signature() string {
	types := make([]string, len(fn.Inputs))
	for i, in := range fn.Inputs {
		types[i] = NormalizeType(in.Type)
	}
	return fmt.Sprintf("%s(%s)", fn.Name, strings.Join(types, ","))
}

// Selector is the first four bytes of the Keccak-256 hash of Signature.
func (fn Function) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], selectorOf(fn.Signature()))
	return sel
}

func selectorOf(signature string) []byte {
	return ethcrypto.Keccak256([]byte(signature))[:4]
}

// Table is an immutable, ordered list of ABI entries.
type Table struct {
	entries []Function
}

// ParseTable reads a JSON ABI. Both a bare list and the node's
// {"entrys": [...]} wrapper are accepted.
func ParseTable(data []byte) (Table, error) {
	var entries []Function
	if err := json.Unmarshal(data, &entries); err != nil {
		var wrapped struct {
			Entrys []Function `json:"entrys"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil || wrapped.Entrys == nil {
			return Table{}, fmt.Errorf("%w: %v", ErrInvalidABI, err)
		}
		entries = wrapped.Entrys
	}

	for i := range entries {
		entries[i].Type = strings.ToLower(entries[i].Type)
		if entries[i].Type == "" {
			entries[i].Type = "function"
		}
	}
	return Table{entries: entries}, nil
}

// MustParseTable is ParseTable for embedded descriptors.
func MustParseTable(data []byte) Table {
	t, err := ParseTable(data)
	if err != nil {
		panic(err)
	}
	return t
}

// DefaultTRC20 returns the built-in TRC20 token interface.
func DefaultTRC20() Table {
	return MustParseTable(trc20JSON)
}

// Function looks up a function entry by name. Events never match.
func (t Table) Function(name string) (Function, error) {
	for _, fn := range t.entries {
		if fn.Type == "function" && fn.Name == name {
			return fn, nil
		}
	}
	return Function{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, name)
}

// Functions returns a copy of all function entries in declaration order.
func (t Table) Functions() []Function {
	out := make([]Function, 0, len(t.entries))
	for _, fn := range t.entries {
		if fn.Type == "function" {
			out = append(out, fn)
		}
	}
	return out
}

// NormalizeType maps the short and TRON specific type names to canonical
// ABI names: uint -> uint256, int -> int256, dynamicBytes -> bytes,
// trcToken -> uint256. Array suffixes are kept.
func NormalizeType(t string) string {
	base, suffix := t, ""
	if i := strings.IndexByte(t, '['); i >= 0 {
		base, suffix = t[:i], t[i:]
	}
	switch base {
	case "uint":
		base = "uint256"
	case "int":
		base = "int256"
	case "dynamicBytes":
		base = "bytes"
	case "trcToken":
		base = "uint256"
	}
	return base + suffix
}
