package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/journal"
	"github.com/tronkit/tronkit/pkg/log"
)

// runJournalListCli prints the newest journal records, optionally only those
// of one address. It needs no node.
// Example: tronkit journal-list TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY 20
func runJournalListCli(ctx context.Context, logger log.Logger, args []string) error {
	if len(args) > 2 {
		return fmt.Errorf("expected [address] [limit], got %d arguments", len(args))
	}

	var filter string
	if addrArg := optionalArg(args, 0); addrArg != "" {
		addr, err := address.Parse(addrArg)
		if err != nil {
			return err
		}
		filter = addr.Base58()
	}

	options := &journal.ListOptions{}
	if limitArg := optionalArg(args, 1); limitArg != "" {
		limit, err := strconv.ParseUint(limitArg, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid limit %q", limitArg)
		}
		options.Limit = uint32(limit)
	}

	cfg, err := LoadConfig(logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := journal.Connect(cfg.dbConf, logger)
	if err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}

	records, err := journal.New(db).List(ctx, filter, options)
	if err != nil {
		return err
	}
	return printJSON(records)
}
