package main

import (
	"context"
	"maps"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/tronkit/tronkit/pkg/log"
)

func main() {
	foundDotEnv := loadDotEnv()

	logConf, logConfErr := LoadLogConfig()
	logger := log.NewZapLogger(logConf).WithName("tronkit")
	if logConfErr != nil {
		logger.Warn("invalid log configuration, using defaults", "error", logConfErr)
	}
	if !foundDotEnv {
		logger.Debug(".env file not found", "configDir", configDirPath())
	}

	if len(os.Args) < 2 {
		logger.Fatal("Usage: tronkit <command> [args...]", "commands", commandNames())
	}
	runCli(logger, os.Args[1], os.Args[2:])
}

// cliCommand runs one command. Commands write their result as JSON to stdout
// and report failures through the returned error.
type cliCommand struct {
	usage string
	run   func(ctx context.Context, logger log.Logger, args []string) error
}

var cliCommands = map[string]cliCommand{
	"address-new":      {usage: "address-new [mnemonic]", run: runAddressNewCli},
	"address-validate": {usage: "address-validate <address>", run: runAddressValidateCli},
	"address-convert":  {usage: "address-convert <address>", run: runAddressConvertCli},
	"trx-balance":      {usage: "trx-balance <address>", run: runTRXBalanceCli},
	"trx-send":         {usage: "trx-send <to> <amount>", run: runTRXSendCli},
	"tx-lookup":        {usage: "tx-lookup <hash> [address]", run: runTxLookupCli},
	"trc20-info":       {usage: "trc20-info [contract]", run: runTRC20InfoCli},
	"trc20-balance":    {usage: "trc20-balance <holder> [contract]", run: runTRC20BalanceCli},
	"trc20-transfer":   {usage: "trc20-transfer <to> <amount> [contract]", run: runTRC20TransferCli},
	"journal-list":     {usage: "journal-list [address] [limit]", run: runJournalListCli},
}

func commandNames() []string {
	return slices.Sorted(maps.Keys(cliCommands))
}

func runCli(logger log.Logger, name string, args []string) {
	cmd, ok := cliCommands[name]
	if !ok {
		logger.Fatal("Unknown CLI command", "name", name, "commands", commandNames())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.run(ctx, logger.WithName(name), args)
	stop()

	if err != nil {
		logger.Fatal("command failed", "command", name, "usage", "tronkit "+cmd.usage, "error", err)
	}
}
