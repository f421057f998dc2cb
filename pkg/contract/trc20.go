package contract

import (
	"context"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/unit"
)

// TRC20 is a fungible token contract.
//
// Name, symbol, decimals and total supply are fetched once and kept for the
// life of the instance. A cached zero value counts as missing, so a token
// with zero decimals is queried again on every call.
type TRC20 struct {
	*Contract

	mu          sync.Mutex
	name        string
	symbol      string
	decimals    int32
	totalSupply *big.Int
}

// TokenInfo is the metadata of a TRC20 token.
type TokenInfo struct {
	Name        string          `json:"name"`
	Symbol      string          `json:"symbol"`
	Decimals    int32           `json:"decimals"`
	TotalSupply decimal.Decimal `json:"totalSupply"`
}

// NewTRC20 creates a token client for the contract at addr.
func NewTRC20(addr string, opts ...Option) (*TRC20, error) {
	c, err := New(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &TRC20{Contract: c}, nil
}

// Name returns the sanitized token name.
func (t *TRC20) Name(ctx context.Context) (string, error) {
	t.mu.Lock()
	cached := t.name
	t.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	v, err := t.Call(ctx, "name")
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: token name is %T", ErrUnexpectedResult, v)
	}

	name := Sanitize(s, false)
	t.mu.Lock()
	t.name = name
	t.mu.Unlock()
	return name, nil
}

// Symbol returns the token symbol with all whitespace removed.
func (t *TRC20) Symbol(ctx context.Context) (string, error) {
	t.mu.Lock()
	cached := t.symbol
	t.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	v, err := t.Call(ctx, "symbol")
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: token symbol is %T", ErrUnexpectedResult, v)
	}

	symbol := Sanitize(s, true)
	t.mu.Lock()
	t.symbol = symbol
	t.mu.Unlock()
	return symbol, nil
}

// Decimals returns the number of decimal places of the token.
func (t *TRC20) Decimals(ctx context.Context) (int32, error) {
	t.mu.Lock()
	cached := t.decimals
	t.mu.Unlock()
	if cached != 0 {
		return cached, nil
	}

	v, err := t.Call(ctx, "decimals")
	if err != nil {
		return 0, err
	}
	n, ok := v.(*big.Int)
	if !ok || n.Sign() < 0 || !n.IsInt64() || n.Int64() > 255 {
		return 0, fmt.Errorf("%w: token decimals %v", ErrUnexpectedResult, v)
	}

	decimals := int32(n.Int64())
	t.mu.Lock()
	t.decimals = decimals
	t.mu.Unlock()
	return decimals, nil
}

// RawTotalSupply returns the total supply in base units.
func (t *TRC20) RawTotalSupply(ctx context.Context) (*big.Int, error) {
	t.mu.Lock()
	cached := t.totalSupply
	t.mu.Unlock()
	if cached != nil && cached.Sign() != 0 {
		return new(big.Int).Set(cached), nil
	}

	v, err := t.Call(ctx, "totalSupply")
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: token total supply %v", ErrUnexpectedResult, v)
	}

	t.mu.Lock()
	t.totalSupply = new(big.Int).Set(n)
	t.mu.Unlock()
	return n, nil
}

// TotalSupply returns the total supply in whole tokens.
func (t *TRC20) TotalSupply(ctx context.Context) (decimal.Decimal, error) {
	raw, err := t.RawTotalSupply(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return t.scale(ctx, raw)
}

// RawBalanceOf returns the balance of owner in base units. It is never cached.
func (t *TRC20) RawBalanceOf(ctx context.Context, owner address.Address) (*big.Int, error) {
	v, err := t.Call(ctx, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	n, ok := v.(*big.Int)
	if !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("%w: balance of %s: %v", ErrUnexpectedResult, owner, v)
	}
	return n, nil
}

// BalanceOf returns the balance of owner in whole tokens.
func (t *TRC20) BalanceOf(ctx context.Context, owner address.Address) (decimal.Decimal, error) {
	raw, err := t.RawBalanceOf(ctx, owner)
	if err != nil {
		return decimal.Zero, err
	}
	return t.scale(ctx, raw)
}

// Info fetches all token metadata.
func (t *TRC20) Info(ctx context.Context) (TokenInfo, error) {
	name, err := t.Name(ctx)
	if err != nil {
		return TokenInfo{}, err
	}
	symbol, err := t.Symbol(ctx)
	if err != nil {
		return TokenInfo{}, err
	}
	decimals, err := t.Decimals(ctx)
	if err != nil {
		return TokenInfo{}, err
	}
	supply, err := t.TotalSupply(ctx)
	if err != nil {
		return TokenInfo{}, err
	}
	return TokenInfo{
		Name:        name,
		Symbol:      symbol,
		Decimals:    decimals,
		TotalSupply: supply,
	}, nil
}

// Transfer builds an unsigned transfer of amount whole tokens from from to to.
// The returned Result carries the transaction to sign.
func (t *TRC20) Transfer(ctx context.Context, to address.Address, amount decimal.Decimal, from address.Address) (*Result, error) {
	if _, err := t.feeLimitSun(); err != nil {
		return nil, err
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: transfer amount must be positive, got %s", unit.ErrInvalidAmount, amount)
	}

	decimals, err := t.Decimals(ctx)
	if err != nil {
		return nil, err
	}
	value := unit.ToSmallestUnit(amount, decimals)
	if value.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s is below the token's smallest unit", unit.ErrInvalidAmount, amount)
	}

	return t.Trigger(ctx, "transfer", []any{to, value}, Owner(from))
}

func (t *TRC20) scale(ctx context.Context, raw *big.Int) (decimal.Decimal, error) {
	decimals, err := t.Decimals(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.FromSmallestUnit(raw, decimals), nil
}

var (
	unsafeChars        = regexp.MustCompile(`[^\w\s.-]`)
	unsafeOrSpaceChars = regexp.MustCompile(`[^\w.-]`)
)

// Sanitize trims s and drops everything but ASCII letters, digits, '_', '.',
// '-' and, unless removeAllSpace is set, whitespace.
func Sanitize(s string, removeAllSpace bool) string {
	re := unsafeChars
	if removeAllSpace {
		re = unsafeOrSpaceChars
	}
	return re.ReplaceAllString(strings.TrimSpace(s), "")
}
