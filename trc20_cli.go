package main

import (
	"context"
	"fmt"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/journal"
	"github.com/tronkit/tronkit/pkg/log"
	"github.com/tronkit/tronkit/pkg/transaction"
	"github.com/tronkit/tronkit/pkg/unit"
)

type tokenBalanceOutput struct {
	Holder   string `json:"holder"`
	Contract string `json:"contract"`
	Symbol   string `json:"symbol"`
	Balance  string `json:"balance"`
	Raw      string `json:"raw"`
}

// optionalArg returns args[i], or "" when it was not given.
func optionalArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

// Example: tronkit trc20-info TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t
func runTRC20InfoCli(ctx context.Context, logger log.Logger, args []string) error {
	if len(args) > 1 {
		return fmt.Errorf("expected [contract], got %d arguments", len(args))
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.close()

	token, err := a.token(optionalArg(args, 0))
	if err != nil {
		return err
	}
	info, err := token.Info(ctx)
	if err != nil {
		return err
	}
	return printJSON(info)
}

// Example: tronkit trc20-balance TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY
func runTRC20BalanceCli(ctx context.Context, logger log.Logger, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("expected <holder> [contract], got %d arguments", len(args))
	}
	holder, err := address.Parse(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.close()

	token, err := a.token(optionalArg(args, 1))
	if err != nil {
		return err
	}
	raw, err := token.RawBalanceOf(ctx, holder)
	if err != nil {
		return err
	}
	decimals, err := token.Decimals(ctx)
	if err != nil {
		return err
	}
	symbol, err := token.Symbol(ctx)
	if err != nil {
		return err
	}

	return printJSON(tokenBalanceOutput{
		Holder:   holder.Base58(),
		Contract: token.Address().Base58(),
		Symbol:   symbol,
		Balance:  unit.FromSmallestUnit(raw, decimals).String(),
		Raw:      raw.String(),
	})
}

// runTRC20TransferCli triggers transfer(address,uint256) from the
// TRONKIT_PRIVATE_KEY account, then signs, journals and broadcasts it.
// Example: tronkit trc20-transfer TNPeeaaFB7K9cmo4uQpcU32zGK8G1NYqeL 25
func runTRC20TransferCli(ctx context.Context, logger log.Logger, args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return fmt.Errorf("expected <to> <amount> [contract], got %d arguments", len(args))
	}
	to, err := address.Parse(args[0])
	if err != nil {
		return err
	}
	amount, err := unit.ParseAmount(args[1])
	if err != nil {
		return err
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.close()

	signer, err := a.signer()
	if err != nil {
		return err
	}
	j, err := a.journal()
	if err != nil {
		return err
	}
	token, err := a.token(optionalArg(args, 2))
	if err != nil {
		return err
	}

	from := signer.Address()
	res, err := token.Transfer(ctx, to, amount, from)
	if err != nil {
		return err
	}
	tx, err := transaction.FromRaw(res.Transaction)
	if err != nil {
		return err
	}
	if err := tx.Sign(signer); err != nil {
		return err
	}

	rec := journal.FromTokenTransfer(a.cfg.network.Name, token.Address(), from, to, amount, tx)
	if err := broadcastJournaled(ctx, logger, a.builder(), j, &rec, tx); err != nil {
		return err
	}
	return printJSON(sendOutput{
		TxID:    rec.TxID,
		Network: rec.Network,
		From:    rec.From,
		To:      rec.To,
		Amount:  rec.Amount,
		Status:  string(rec.Status),
	})
}
