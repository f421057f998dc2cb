package transaction

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/log"
	"github.com/tronkit/tronkit/pkg/node"
	"github.com/tronkit/tronkit/pkg/sign"
	"github.com/tronkit/tronkit/pkg/unit"
)

// Transfer describes a TRX transfer. From defaults to the builder's signer.
type Transfer struct {
	To     string
	From   string
	Amount decimal.Decimal
}

// Builder creates, signs and broadcasts TRX transfers through a node.
type Builder struct {
	node   node.Node
	signer sign.Signer
	lg     log.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithSigner sets the default key used by Sign and CreateAndSign. The builder
// holds on to s for its whole lifetime; callers that rotate keys or serve
// several accounts should leave it unset and use SignWith or
// CreateAndSignWith instead.
func WithSigner(s sign.Signer) Option {
	return func(b *Builder) {
		b.signer = s
	}
}

func WithLogger(lg log.Logger) Option {
	return func(b *Builder) {
		if lg != nil {
			b.lg = lg
		}
	}
}

// NewBuilder creates a Builder that talks to n.
func NewBuilder(n node.Node, opts ...Option) *Builder {
	b := &Builder{
		node: n,
		lg:   log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.lg = b.lg.WithName("transaction")
	return b
}

// Create validates t and asks the node to build the unsigned transaction.
func (b *Builder) Create(ctx context.Context, t Transfer) (*Transaction, error) {
	return b.create(ctx, t, b.signer)
}

func (b *Builder) create(ctx context.Context, t Transfer, signer sign.Signer) (*Transaction, error) {
	if t.To == "" {
		return nil, fmt.Errorf("%w: to address is required", ErrBuild)
	}
	if !t.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount is required", ErrBuild)
	}

	to, err := address.Parse(t.To)
	if err != nil {
		return nil, fmt.Errorf("%w: to: %w", ErrBuild, err)
	}

	var from address.Address
	switch {
	case t.From != "":
		if from, err = address.Parse(t.From); err != nil {
			return nil, fmt.Errorf("%w: from: %w", ErrBuild, err)
		}
	case signer != nil:
		from = signer.PublicKey().Address()
	default:
		return nil, fmt.Errorf("%w: from address is required", ErrBuild)
	}
	if from.Equal(to) {
		return nil, fmt.Errorf("%w: from and to address cannot be the same", ErrBuild)
	}

	amountSun, err := unit.SunInt64(t.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	if amountSun <= 0 {
		return nil, fmt.Errorf("%w: %s TRX is less than 1 sun", ErrBuild, t.Amount)
	}

	ctx, lg, span := log.StartSpan(ctx, b.lg, "transaction.Create", "from", from.Base58(), "to", to.Base58())
	defer span.End()

	resp, err := b.node.CreateTransaction(ctx, map[string]any{
		"to_address":    to.Hex(),
		"owner_address": from.Hex(),
		"amount":        amountSun,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	if !resp.Success {
		lg.Warn("node rejected transfer", "reason", resp.Error.Message)
		return nil, fmt.Errorf("%w: %w", ErrBuild, resp.Error)
	}

	tx, err := FromRaw(resp.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuild, err)
	}
	tx.To = to
	tx.From = from
	tx.AmountSun = unit.ToSun(t.Amount)

	lg.Debug("transfer created", "txID", tx.ID(), "amountSun", amountSun)
	return tx, nil
}

// Sign signs tx with the builder's signer.
func (b *Builder) Sign(tx *Transaction) error {
	return b.SignWith(tx, b.signer)
}

// SignWith signs tx with s, ignoring the builder's signer.
func (b *Builder) SignWith(tx *Transaction, s sign.Signer) error {
	if s == nil {
		return ErrSignerRequired
	}
	return tx.Sign(s)
}

// CreateAndSign is Create followed by Sign.
func (b *Builder) CreateAndSign(ctx context.Context, t Transfer) (*Transaction, error) {
	return b.CreateAndSignWith(ctx, t, b.signer)
}

// CreateAndSignWith creates the transfer and signs it with s. An empty
// t.From defaults to the address of s.
func (b *Builder) CreateAndSignWith(ctx context.Context, t Transfer, s sign.Signer) (*Transaction, error) {
	if s == nil {
		return nil, ErrSignerRequired
	}
	tx, err := b.create(ctx, t, s)
	if err != nil {
		return nil, err
	}
	if err := b.SignWith(tx, s); err != nil {
		return nil, err
	}
	return tx, nil
}

// BroadcastResult is the node's answer to an accepted broadcast.
type BroadcastResult struct {
	TxID string
	Data map[string]any
}

// Broadcast submits a signed transaction. A rejection is returned as an
// error matching ErrBroadcast and carrying the *node.Error.
func (b *Builder) Broadcast(ctx context.Context, tx *Transaction) (BroadcastResult, error) {
	if !tx.IsSigned() {
		return BroadcastResult{}, ErrNotSigned
	}

	ctx, lg, span := log.StartSpan(ctx, b.lg, "transaction.Broadcast", "txID", tx.ID())
	defer span.End()

	resp, err := b.node.BroadcastTransaction(ctx, tx.Payload())
	if err != nil {
		return BroadcastResult{}, fmt.Errorf("%w: %w", ErrBroadcast, err)
	}
	if !resp.Success {
		lg.Warn("broadcast rejected", "kind", resp.Error.Kind, "reason", resp.Error.Message)
		return BroadcastResult{}, fmt.Errorf("%w: %w", ErrBroadcast, resp.Error)
	}

	txID := resp.String("txid")
	if txID == "" {
		txID = tx.ID()
	}
	lg.Info("transaction broadcast", "txID", txID)
	return BroadcastResult{TxID: txID, Data: resp.Data}, nil
}
