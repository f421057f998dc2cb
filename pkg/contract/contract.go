package contract

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/tronkit/tronkit/pkg/abi"
	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/log"
	"github.com/tronkit/tronkit/pkg/node"
	"github.com/tronkit/tronkit/pkg/unit"
)

const (
	// DefaultFeeLimit is the fee limit of a new contract, in TRX.
	DefaultFeeLimit int64 = 20
	// MaxFeeLimit is the highest fee limit accepted for a mutating call, in TRX.
	MaxFeeLimit int64 = 500
)

var (
	ErrNodeRequired            = errors.New("node is required")
	ErrFunctionNotFound        = abi.ErrFunctionNotFound
	ErrArityMismatch           = errors.New("argument count does not match ABI inputs")
	ErrFeeLimitRequired        = errors.New("fee limit is required")
	ErrFeeLimitExceeded        = fmt.Errorf("fee limit must not be greater than %d TRX", MaxFeeLimit)
	ErrContractExecutionFailed = errors.New("contract execution failed")
	ErrUnexpectedResult        = errors.New("unexpected contract result")
)

// ExecutionError is returned when the node rejects a trigger. It matches
// ErrContractExecutionFailed and carries the normalized node error.
type ExecutionError struct {
	Function string
	Reason   *node.Error
}

func (e *ExecutionError) Error() string {
	detail := e.Reason.RawMessage
	if detail == "" {
		detail = e.Reason.Message
	} else if e.Reason.Message != "" {
		detail += ": " + e.Reason.Message
	}
	return fmt.Sprintf("%s: execution failed: %s", e.Function, detail)
}

func (e *ExecutionError) Unwrap() []error {
	return []error{ErrContractExecutionFailed, e.Reason}
}

// Contract invokes functions of a deployed smart contract.
type Contract struct {
	address  address.Address
	table    abi.Table
	feeLimit int64
	node     node.Node
	lg       log.Logger
}

// Option configures a Contract.
type Option func(*Contract)

// WithABI replaces the built-in TRC20 descriptor.
func WithABI(table abi.Table) Option {
	return func(c *Contract) {
		c.table = table
	}
}

// WithFeeLimit sets the fee limit of mutating calls, in TRX.
func WithFeeLimit(trx int64) Option {
	return func(c *Contract) {
		c.feeLimit = trx
	}
}

func WithLogger(lg log.Logger) Option {
	return func(c *Contract) {
		if lg != nil {
			c.lg = lg
		}
	}
}

func WithNode(n node.Node) Option {
	return func(c *Contract) {
		c.node = n
	}
}

// New creates a contract client for the contract at addr (base58 or hex).
func New(addr string, opts ...Option) (*Contract, error) {
	a, err := address.Parse(addr)
	if err != nil {
		return nil, fmt.Errorf("contract address: %w", err)
	}

	c := &Contract{
		address:  a,
		table:    abi.DefaultTRC20(),
		feeLimit: DefaultFeeLimit,
		lg:       log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lg = c.lg.WithName("contract").WithKV("contract", a.Base58())
	return c, nil
}

func (c *Contract) Address() address.Address { return c.address }
func (c *Contract) ABI() abi.Table           { return c.table }
func (c *Contract) FeeLimit() int64          { return c.feeLimit }

// CallOption tunes a single Trigger.
type CallOption func(*callOptions)

type callOptions struct {
	owner                      string
	callValue                  int64
	consumeUserResourcePercent int64
}

// Owner sets the caller address. Read-only calls default to the null address.
func Owner(addr address.Address) CallOption {
	return func(o *callOptions) {
		o.owner = addr.Hex()
	}
}

// CallValue attaches sun to a mutating call.
func CallValue(sun int64) CallOption {
	return func(o *callOptions) {
		o.callValue = sun
	}
}

// ConsumeUserResourcePercent sets the share of energy paid by the caller.
func ConsumeUserResourcePercent(pct int64) CallOption {
	return func(o *callOptions) {
		o.consumeUserResourcePercent = pct
	}
}

// Result is the outcome of a Trigger.
//
// A read-only call sets Value to the decoded return value: bare for a single
// output, []any for several. A mutating call sets Success and Transaction,
// the unsigned transaction to sign and broadcast.
type Result struct {
	Constant    bool
	Value       any
	EnergyUsed  int64
	Success     bool
	Transaction map[string]any
}

// Trigger calls function with params.
//
// Functions marked constant (or view/pure) are run with
// triggerconstantcontract and need no fee. Others go through
// triggersmartcontract and require a fee limit in (0, MaxFeeLimit] TRX.
// A rejected call returns an *ExecutionError.
func (c *Contract) Trigger(ctx context.Context, function string, params []any, opts ...CallOption) (*Result, error) {
	if c.node == nil {
		return nil, ErrNodeRequired
	}

	fn, err := c.table.Function(function)
	if err != nil {
		return nil, err
	}
	if len(params) != len(fn.Inputs) {
		return nil, fmt.Errorf("%w: %s expects %d, got %d", ErrArityMismatch, fn.Name, len(fn.Inputs), len(params))
	}

	call, err := abi.EncodeCall(fn, params)
	if err != nil {
		return nil, err
	}

	o := callOptions{owner: address.NullAddressHex}
	for _, opt := range opts {
		opt(&o)
	}

	constant := fn.IsConstant()
	payload := map[string]any{
		"contract_address":  c.address.Hex(),
		"function_selector": call.Selector,
		"parameter":         call.Parameter,
		"owner_address":     o.owner,
	}
	if !constant {
		feeLimitSun, err := c.feeLimitSun()
		if err != nil {
			return nil, err
		}
		payload["fee_limit"] = feeLimitSun
		payload["call_value"] = o.callValue
		payload["consume_user_resource_percent"] = o.consumeUserResourcePercent
	}

	ctx, lg, span := log.StartSpan(ctx, c.lg, "contract.Trigger",
		"contract", c.address.Base58(), "function", call.Selector, "constant", constant)
	defer span.End()

	lg.Debug("triggering contract", "function", call.Selector, "parameter", call.Parameter, "constant", constant)

	var resp node.Response
	if constant {
		resp, err = c.node.TriggerConstantContract(ctx, payload)
	} else {
		resp, err = c.node.TriggerSmartContract(ctx, payload)
	}
	if err != nil {
		lg.Error("contract trigger failed", "function", call.Selector, "error", err)
		return nil, fmt.Errorf("%s: %w", fn.Name, err)
	}
	if !resp.Success {
		lg.Warn("contract execution rejected", "function", call.Selector, "reason", resp.Error.RawMessage, "message", resp.Error.Message)
		return nil, &ExecutionError{Function: fn.Name, Reason: resp.Error}
	}

	if constant {
		return decodeConstant(fn, resp)
	}
	return mutatingResult(fn, resp)
}

// Call is Trigger for read-only functions that returns the decoded value.
func (c *Contract) Call(ctx context.Context, function string, params ...any) (any, error) {
	res, err := c.Trigger(ctx, function, params)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

func (c *Contract) feeLimitSun() (int64, error) {
	return checkedFeeLimit(c.feeLimit)
}

// checkedFeeLimit validates a fee limit in TRX and converts it to sun.
func checkedFeeLimit(trx int64) (int64, error) {
	switch {
	case trx <= 0:
		return 0, ErrFeeLimitRequired
	case trx > MaxFeeLimit:
		return 0, fmt.Errorf("%w: %d", ErrFeeLimitExceeded, trx)
	}
	return unit.SunInt64(decimal.NewFromInt(trx))
}

func decodeConstant(fn abi.Function, resp node.Response) (*Result, error) {
	results, _ := resp.Data["constant_result"].([]any)
	if len(results) == 0 {
		return nil, fmt.Errorf("%w: %s: missing constant_result", ErrUnexpectedResult, fn.Name)
	}
	data, ok := results[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s: constant_result is %T", ErrUnexpectedResult, fn.Name, results[0])
	}

	value, err := abi.DecodeHex(fn, data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Constant:   true,
		Value:      value,
		EnergyUsed: int64Of(resp.Data["energy_used"]),
		Success:    true,
	}, nil
}

func mutatingResult(fn abi.Function, resp node.Response) (*Result, error) {
	tx, ok := resp.Map("transaction")
	if !ok {
		return nil, fmt.Errorf("%w: %s: missing transaction", ErrUnexpectedResult, fn.Name)
	}

	success := false
	switch r := resp.Data["result"].(type) {
	case map[string]any:
		success, _ = r["result"].(bool)
	case bool:
		success = r
	}

	return &Result{
		Success:     success,
		Transaction: tx,
	}, nil
}

func int64Of(v any) int64 {
	switch n := v.(type) {
	case interface{ Int64() (int64, error) }:
		i, _ := n.Int64()
		return i
	case float64:
		return int64(n)
	}
	return 0
}
