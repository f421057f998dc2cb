package transaction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/node"
	"github.com/tronkit/tronkit/pkg/unit"
)

const (
	// ConfirmationThreshold is the number of confirmations after which the
	// explorer's confirmed flag is no longer needed.
	ConfirmationThreshold = 60

	TypeTransfer = "transfer"
	TypeTRC20    = "trc20"

	StatusSuccess = "SUCCESS"

	ActionWithdraw = "withdraw"
	ActionDeposit  = "deposit"
)

var (
	ErrLookup        = errors.New("transaction lookup failed")
	ErrMalformedInfo = errors.New("malformed explorer reply")
)

// InfoSource looks transactions up on a block explorer. *node.HTTPNode
// implements it.
type InfoSource interface {
	GetTransactionInfoByHash(ctx context.Context, hash string) (node.Response, error)
}

// TransferInfo is one value movement inside a transaction.
type TransferInfo struct {
	Name      string          `json:"name"`
	Type      string          `json:"type"`
	Symbol    string          `json:"symbol"`
	Decimals  int32           `json:"decimals"`
	From      string          `json:"fromAddr"`
	To        string          `json:"toAddr"`
	Amount    decimal.Decimal `json:"amount"`
	AmountRaw *big.Int        `json:"amountRaw"`
	Contract  string          `json:"contractAddr,omitempty"`
}

// Info is an explorer transaction reduced to what a wallet needs. Transfers
// is empty unless Status is SUCCESS.
type Info struct {
	Hash          string         `json:"hash"`
	Type          string         `json:"type"`
	Block         int64          `json:"block"`
	Status        string         `json:"status"`
	Timestamp     time.Time      `json:"timestamp"`
	Confirmations int64          `json:"confirmations"`
	Confirmed     bool           `json:"confirmed"`
	Transfers     []TransferInfo `json:"transfers,omitempty"`
}

// AddressTransfer is the transfer of an Info that involves a given address.
type AddressTransfer struct {
	Info     Info         `json:"info"`
	Transfer TransferInfo `json:"transfer"`
	Action   string       `json:"action"`
}

// Lookup fetches and parses the explorer record of hash.
func Lookup(ctx context.Context, src InfoSource, hash string) (Info, error) {
	hash = strings.TrimSpace(hash)
	if !IsValidTransactionHash(hash) {
		return Info{}, fmt.Errorf("%w: %q", ErrInvalidTxHash, hash)
	}
	resp, err := src.GetTransactionInfoByHash(ctx, hash)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %w", ErrLookup, err)
	}
	if !resp.Success {
		return Info{}, fmt.Errorf("%w: %w", ErrLookup, resp.Error)
	}
	return ParseExplorerInfo(resp.Data)
}

// LookupForAddress is Lookup followed by ForAddress. It reports false when
// addr takes no part in the transaction.
func LookupForAddress(ctx context.Context, src InfoSource, addr address.Address, hash string) (AddressTransfer, bool, error) {
	info, err := Lookup(ctx, src, hash)
	if err != nil {
		return AddressTransfer{}, false, err
	}
	at, ok := info.ForAddress(addr)
	return at, ok, nil
}

// ParseExplorerInfo converts a transaction-info record. TRX amounts use 6
// decimals, TRC20 amounts use the decimals the explorer reports for the token.
func ParseExplorerInfo(data map[string]any) (Info, error) {
	hash, _ := data["hash"].(string)
	if hash == "" {
		return Info{}, fmt.Errorf("%w: missing hash", ErrMalformedInfo)
	}

	info := Info{
		Hash:          hash,
		Type:          TypeTransfer,
		Status:        stringField(data, "contractRet"),
		Block:         int64Field(data, "block"),
		Confirmations: int64Field(data, "confirmations"),
		Timestamp:     time.UnixMilli(int64Field(data, "timestamp")).UTC(),
	}
	if t, ok := data["contract_type"].(string); ok && t != "" {
		info.Type = t
	}
	confirmed, _ := data["confirmed"].(bool)
	info.Confirmed = confirmed || info.Confirmations > ConfirmationThreshold

	if info.Status != StatusSuccess {
		return info, nil
	}

	if info.Type == TypeTRC20 {
		list, _ := data["transfersAllList"].([]any)
		for i, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return Info{}, fmt.Errorf("%w: transfer %d is %T", ErrMalformedInfo, i, item)
			}
			tr, err := parseTokenTransfer(m)
			if err != nil {
				return Info{}, fmt.Errorf("%w: transfer %d: %w", ErrMalformedInfo, i, err)
			}
			info.Transfers = append(info.Transfers, tr)
		}
		return info, nil
	}

	contractData, _ := data["contractData"].(map[string]any)
	sun, err := bigField(contractData, "amount")
	if err != nil {
		return Info{}, fmt.Errorf("%w: amount: %w", ErrMalformedInfo, err)
	}
	info.Type = TypeTransfer
	info.Transfers = []TransferInfo{{
		Name:      "Tron",
		Type:      "TRX",
		Symbol:    "TRX",
		Decimals:  unit.TRXDecimals,
		From:      stringField(data, "ownerAddress"),
		To:        stringField(data, "toAddress"),
		Amount:    unit.FromSun(sun),
		AmountRaw: sun,
	}}
	return info, nil
}

func parseTokenTransfer(m map[string]any) (TransferInfo, error) {
	raw, err := bigField(m, "amount_str")
	if err != nil {
		return TransferInfo{}, err
	}
	decimals := int32(int64Field(m, "decimals"))
	return TransferInfo{
		Name:      stringField(m, "name"),
		Type:      strings.ToUpper(stringField(m, "tokenType")),
		Symbol:    stringField(m, "symbol"),
		Decimals:  decimals,
		From:      stringField(m, "from_address"),
		To:        stringField(m, "to_address"),
		Amount:    unit.FromSmallestUnit(raw, decimals),
		AmountRaw: raw,
		Contract:  stringField(m, "contract_address"),
	}, nil
}

// ForAddress picks the transfer that addr sends or receives. When several
// transfers match, the last one wins.
func (i Info) ForAddress(addr address.Address) (AddressTransfer, bool) {
	var (
		found AddressTransfer
		ok    bool
	)
	for _, tr := range i.Transfers {
		var action string
		switch addr.Base58() {
		case tr.From:
			action = ActionWithdraw
		case tr.To:
			action = ActionDeposit
		default:
			continue
		}
		info := i
		info.Transfers = nil
		found = AddressTransfer{Info: info, Transfer: tr, Action: action}
		ok = true
	}
	return found, ok
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func int64Field(m map[string]any, key string) int64 {
	n, err := bigField(m, key)
	if err != nil || !n.IsInt64() {
		return 0
	}
	return n.Int64()
}

// bigField reads an integer that may arrive as a JSON number or a string.
func bigField(m map[string]any, key string) (*big.Int, error) {
	switch v := m[key].(type) {
	case nil:
		return new(big.Int), nil
	case json.Number:
		return parseBig(v.String())
	case string:
		return parseBig(v)
	case float64:
		return parseBig(strconv.FormatFloat(v, 'f', -1, 64))
	case int:
		return big.NewInt(int64(v)), nil
	case int64:
		return big.NewInt(v), nil
	default:
		return nil, fmt.Errorf("%s has type %T", key, v)
	}
}

func parseBig(s string) (*big.Int, error) {
	n, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}
