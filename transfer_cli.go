package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/journal"
	"github.com/tronkit/tronkit/pkg/log"
	"github.com/tronkit/tronkit/pkg/node"
	"github.com/tronkit/tronkit/pkg/transaction"
	"github.com/tronkit/tronkit/pkg/unit"
)

type sendOutput struct {
	TxID    string `json:"txID"`
	Network string `json:"network"`
	From    string `json:"from"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
	Status  string `json:"status"`
}

// Example: tronkit trx-balance TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY
func runTRXBalanceCli(ctx context.Context, logger log.Logger, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one address, got %d arguments", len(args))
	}
	addr, err := address.Parse(args[0])
	if err != nil {
		return err
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.close()

	balance, err := a.builder().Balance(ctx, addr)
	if err != nil {
		return err
	}
	return printJSON(balance)
}

// runTRXSendCli builds, signs, journals and broadcasts a TRX transfer from
// the TRONKIT_PRIVATE_KEY account.
// Example: tronkit trx-send TNPeeaaFB7K9cmo4uQpcU32zGK8G1NYqeL 1.5
func runTRXSendCli(ctx context.Context, logger log.Logger, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("expected <to> <amount>, got %d arguments", len(args))
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

	b := a.builder(transaction.WithSigner(signer))
	tx, err := b.CreateAndSign(ctx, transaction.Transfer{To: args[0], Amount: amount})
	if err != nil {
		return err
	}

	rec := journal.FromTransfer(a.cfg.network.Name, tx)
	if err := broadcastJournaled(ctx, logger, b, j, &rec, tx); err != nil {
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

// broadcastJournaled records tx before it leaves the process and updates the
// record with the node's verdict.
func broadcastJournaled(ctx context.Context, logger log.Logger, b *transaction.Builder, j *journal.Journal, rec *journal.Record, tx *transaction.Transaction) error {
	if err := j.Record(ctx, rec); err != nil {
		return err
	}

	_, broadcastErr := b.Broadcast(ctx, tx)
	status, reason := journal.StatusBroadcast, ""
	if broadcastErr != nil {
		var nodeErr *node.Error
		if !errors.As(broadcastErr, &nodeErr) {
			// The node may or may not have seen it; leave the record as signed.
			return broadcastErr
		}
		status, reason = journal.StatusRejected, nodeErr.Error()
	}

	if err := j.SetStatus(ctx, rec.TxID, status, reason); err != nil {
		logger.Error("failed to update journal", "txID", rec.TxID, "error", err)
	}
	rec.Status, rec.Reason = status, reason
	return broadcastErr
}

// Example: tronkit tx-lookup <hash> [address]
func runTxLookupCli(ctx context.Context, logger log.Logger, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("expected <hash> [address], got %d arguments", len(args))
	}

	var addr address.Address
	if len(args) == 2 {
		var err error
		if addr, err = address.Parse(args[1]); err != nil {
			return err
		}
	}

	a, err := newApp(logger)
	if err != nil {
		return err
	}
	defer a.close()

	if len(args) == 1 {
		info, err := transaction.Lookup(ctx, a.node, args[0])
		if err != nil {
			return err
		}
		return printJSON(info)
	}

	at, ok, err := transaction.LookupForAddress(ctx, a.node, addr, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("address %s takes no part in transaction %s", addr, args[0])
	}
	return printJSON(at)
}
