package transaction

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/unit"
)

// Balance is the TRX balance of an account.
type Balance struct {
	Address    string          `json:"address"`
	Balance    decimal.Decimal `json:"balance"`
	BalanceSun *big.Int        `json:"balanceSun"`
	// AccountResource is passed through from the node untouched.
	AccountResource map[string]any `json:"account_resource,omitempty"`
}

// Balance reads the TRX balance of addr. Accounts the node knows but that
// hold no TRX report a zero balance.
func (b *Builder) Balance(ctx context.Context, addr address.Address) (Balance, error) {
	resp, err := b.node.GetAccount(ctx, addr.Base58())
	if err != nil {
		return Balance{}, err
	}
	if !resp.Success {
		return Balance{}, resp.Error
	}
	return ParseBalance(resp.Data)
}

// ParseBalance converts a getaccount reply.
func ParseBalance(data map[string]any) (Balance, error) {
	addr, _ := data["address"].(string)
	if addr == "" {
		return Balance{}, fmt.Errorf("%w: account reply has no address", ErrMalformedInfo)
	}
	sun, err := bigField(data, "balance")
	if err != nil {
		return Balance{}, fmt.Errorf("%w: %w", ErrMalformedInfo, err)
	}
	resources, _ := data["account_resource"].(map[string]any)
	return Balance{
		Address:         addr,
		Balance:         unit.FromSun(sun),
		BalanceSun:      sun,
		AccountResource: resources,
	}, nil
}
