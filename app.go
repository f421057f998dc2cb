package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tronkit/tronkit/pkg/contract"
	"github.com/tronkit/tronkit/pkg/journal"
	"github.com/tronkit/tronkit/pkg/log"
	"github.com/tronkit/tronkit/pkg/node"
	"github.com/tronkit/tronkit/pkg/sign"
	"github.com/tronkit/tronkit/pkg/transaction"
)

// stdout receives command results.
var stdout io.Writer = os.Stdout

var errPrivateKeyRequired = errors.New("TRONKIT_PRIVATE_KEY environment variable is required")

// app wires the configured network into the library packages.
type app struct {
	cfg      *Config
	logger   log.Logger
	node     *node.HTTPNode
	registry *prometheus.Registry
}

func newApp(logger log.Logger) (*app, error) {
	cfg, err := LoadConfig(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	registry := prometheus.NewRegistry()
	n, err := node.NewHTTPNode(cfg.nodeConfig(),
		node.WithLogger(logger),
		node.WithMetrics(node.NewMetricsWithRegistry(registry)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise node: %w", err)
	}

	return &app{cfg: cfg, logger: logger, node: n, registry: registry}, nil
}

// close flushes the node metrics to TRONKIT_METRICS_TEXTFILE, in the format
// of the node exporter textfile collector.
func (a *app) close() {
	if a.cfg.metricsFile == "" {
		return
	}
	if err := prometheus.WriteToTextfile(a.cfg.metricsFile, a.registry); err != nil {
		a.logger.Warn("failed to write metrics", "path", a.cfg.metricsFile, "error", err)
	}
}

func (a *app) signer() (*sign.TronSigner, error) {
	if a.cfg.privateKeyHex == "" {
		return nil, errPrivateKeyRequired
	}
	signer, err := sign.NewTronSigner(a.cfg.privateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise signer: %w", err)
	}
	a.logger.Info("signer initialized", "address", signer.Address().Base58())
	return signer, nil
}

func (a *app) builder(opts ...transaction.Option) *transaction.Builder {
	return transaction.NewBuilder(a.node, append([]transaction.Option{transaction.WithLogger(a.logger)}, opts...)...)
}

// token opens the TRC20 contract at addr, or the network's USDT contract
// when addr is empty.
func (a *app) token(addr string) (*contract.TRC20, error) {
	if addr == "" {
		addr = a.cfg.network.USDTContract
	}
	if addr == "" {
		return nil, fmt.Errorf("no contract given and network '%s' has no USDT contract", a.cfg.network.Name)
	}
	return contract.NewTRC20(addr,
		contract.WithNode(a.node),
		contract.WithFeeLimit(a.cfg.network.FeeLimit),
		contract.WithLogger(a.logger),
	)
}

func (a *app) journal() (*journal.Journal, error) {
	db, err := journal.Connect(a.cfg.dbConf, a.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	return journal.New(db), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
