package node

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/tronkit/tronkit/pkg/log"
)

// APIKeyHeader carries the TronGrid API key.
const APIKeyHeader = "TRON-PRO-API-KEY"

// maxReplySize bounds how much of a reply body is read.
const maxReplySize = 16 << 20

// Config contains the endpoints and transport settings of an HTTPNode.
type Config struct {
	// FullNode is the base URL of the full node, e.g. https://api.trongrid.io.
	FullNode string
	// SolidityNode is the base URL of the solidity node. Optional.
	SolidityNode string
	// Explorer is the base URL of the block explorer API. Optional.
	Explorer string
	// APIKey is sent as TRON-PRO-API-KEY when set.
	APIKey string

	// RetryMax is the number of retries after the first attempt.
	RetryMax int
	// RetryWaitMin and RetryWaitMax bound the exponential backoff between attempts.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration
}

// DefaultConfig provides transport defaults; endpoints must still be set.
var DefaultConfig = Config{
	RetryMax:     3,
	RetryWaitMin: 500 * time.Millisecond,
	RetryWaitMax: 5 * time.Second,
	Timeout:      30 * time.Second,
}

// HTTPNode talks to a TRON node over its HTTP wallet API.
// Calls go to the full node unless the node was rebound with Use.
// Transient failures (connection errors, 429 and 5xx) are retried with backoff.
type HTTPNode struct {
	cfg     Config
	kind    Kind
	client  *retryablehttp.Client
	lg      log.Logger
	metrics *Metrics
}

// Ensure HTTPNode implements the Node interface
var _ Node = (*HTTPNode)(nil)

// HTTPNodeOption configures an HTTPNode.
type HTTPNodeOption func(*HTTPNode)

// WithLogger sets the logger used for request logs.
func WithLogger(lg log.Logger) HTTPNodeOption {
	return func(n *HTTPNode) {
		if lg != nil {
			n.lg = lg
		}
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) HTTPNodeOption {
	return func(n *HTTPNode) {
		n.metrics = m
	}
}

// WithHTTPClient replaces the underlying *http.Client, e.g. to use a custom transport.
func WithHTTPClient(c *http.Client) HTTPNodeOption {
	return func(n *HTTPNode) {
		if c != nil {
			n.client.HTTPClient = c
		}
	}
}

// NewHTTPNode creates a node client for cfg. FullNode is required.
func NewHTTPNode(cfg Config, opts ...HTTPNodeOption) (*HTTPNode, error) {
	for name, host := range map[string]string{
		"full node":     cfg.FullNode,
		"solidity node": cfg.SolidityNode,
		"explorer":      cfg.Explorer,
	} {
		if host == "" {
			continue
		}
		u, err := url.Parse(host)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("invalid %s url %q", name, host)
		}
	}
	if cfg.FullNode == "" {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotConfigured, KindFullNode)
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	if cfg.Timeout > 0 {
		client.HTTPClient.Timeout = cfg.Timeout
	}

	n := &HTTPNode{
		cfg:    cfg,
		kind:   KindFullNode,
		client: client,
		lg:     log.NewNoopLogger(),
	}
	for _, opt := range opts {
		opt(n)
	}

	n.lg = n.lg.WithName("node")
	client.Logger = n.lg.WithName("http")
	client.RequestLogHook = func(_ retryablehttp.Logger, req *http.Request, attempt int) {
		if attempt == 0 {
			return
		}
		n.metrics.retried()
		n.lg.Warn("retrying node request", "path", req.URL.Path, "attempt", attempt)
	}

	return n, nil
}

// Use returns a copy of n that sends its calls to the host of kind.
func (n *HTTPNode) Use(kind Kind) (*HTTPNode, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return nil, err
	}
	if n.host(kind) == "" {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotConfigured, kind)
	}
	cp := *n
	cp.kind = kind
	return &cp, nil
}

// Kind returns the node kind calls are sent to.
func (n *HTTPNode) Kind() Kind { return n.kind }

func (n *HTTPNode) host(kind Kind) string {
	switch kind {
	case KindFullNode:
		return n.cfg.FullNode
	case KindSolidityNode:
		return n.cfg.SolidityNode
	case KindExplorer:
		return n.cfg.Explorer
	default:
		return ""
	}
}

func (n *HTTPNode) CreateTransaction(ctx context.Context, payload map[string]any) (Response, error) {
	return n.post(ctx, PathCreateTransaction, payload, "")
}

func (n *HTTPNode) BroadcastTransaction(ctx context.Context, signed map[string]any) (Response, error) {
	return n.post(ctx, PathBroadcastTransaction, signed, "")
}

func (n *HTTPNode) TriggerConstantContract(ctx context.Context, payload map[string]any) (Response, error) {
	return n.post(ctx, PathTriggerConstantContract, payload, "")
}

func (n *HTTPNode) TriggerSmartContract(ctx context.Context, payload map[string]any) (Response, error) {
	return n.post(ctx, PathTriggerSmartContract, payload, "")
}

func (n *HTTPNode) GetAccount(ctx context.Context, addr string) (Response, error) {
	return n.post(ctx, PathGetAccount, map[string]any{
		"address": addr,
		"visible": true,
	}, notFoundAccount)
}

func (n *HTTPNode) GetTransactionByID(ctx context.Context, txID string) (Response, error) {
	return n.post(ctx, PathGetTransactionByID, map[string]any{
		"value":   txID,
		"visible": true,
	}, notFoundTransaction)
}

func (n *HTTPNode) GetNowBlock(ctx context.Context) (Response, error) {
	return n.do(ctx, n.kind, http.MethodGet, PathGetNowBlock, nil, "")
}

// AccountPermissionUpdate builds an unsigned transaction that hands the owner
// and active permissions of owner to authorized. Both addresses are base58.
func (n *HTTPNode) AccountPermissionUpdate(ctx context.Context, owner, authorized, operations string) (Response, error) {
	return n.post(ctx, PathAccountPermissionUpdate, PermissionUpdatePayload(owner, authorized, operations), "")
}

// GetTransactionInfoByHash looks a transaction up on the explorer.
func (n *HTTPNode) GetTransactionInfoByHash(ctx context.Context, hash string) (Response, error) {
	path := PathTransactionInfo + "?hash=" + url.QueryEscape(hash)
	return n.do(ctx, KindExplorer, http.MethodGet, path, nil, notFoundTransaction)
}

func (n *HTTPNode) post(ctx context.Context, path string, payload map[string]any, notFound string) (Response, error) {
	return n.do(ctx, n.kind, http.MethodPost, path, payload, notFound)
}

// do performs one logical call. When notFound is set an empty reply object
// is turned into an error reply carrying that message.
func (n *HTTPNode) do(ctx context.Context, kind Kind, method, path string, payload map[string]any, notFound string) (Response, error) {
	host := n.host(kind)
	if host == "" {
		return Response{}, fmt.Errorf("%w: %s", ErrEndpointNotConfigured, kind)
	}

	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return Response{}, fmt.Errorf("encoding %s payload: %w", path, err)
		}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, strings.TrimRight(host, "/")+path, body)
	if err != nil {
		return Response{}, fmt.Errorf("building %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if n.cfg.APIKey != "" {
		req.Header.Set(APIKeyHeader, n.cfg.APIKey)
	}

	metricPath, _, _ := strings.Cut(path, "?")
	lg := n.lg.WithKV("requestID", uuid.NewString()).WithKV("path", metricPath).WithKV("node", string(kind))
	lg.Debug("sending node request", "method", method)

	start := time.Now()
	raw, err := n.send(req)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		n.metrics.observe(metricPath, outcomeUnavailable, elapsed)
		lg.Error("node request failed", "error", err)
		return Response{}, fmt.Errorf("%w: %s: %v", ErrNodeUnavailable, metricPath, err)
	}

	if len(raw) == 0 && notFound != "" {
		raw["Error"] = notFound
	}

	resp := Normalize(raw)
	if resp.Success {
		n.metrics.observe(metricPath, outcomeSuccess, elapsed)
		lg.Debug("node request succeeded")
	} else {
		n.metrics.observe(metricPath, outcomeNodeError, elapsed)
		lg.Warn("node returned an error", "kind", resp.Error.Kind, "message", resp.Error.Message)
	}
	return resp, nil
}

func (n *HTTPNode) send(req *retryablehttp.Request) (map[string]any, error) {
	res, err := n.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxReplySize))
	if err != nil {
		return nil, fmt.Errorf("reading reply: %w", err)
	}
	if res.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("unexpected status %d", res.StatusCode)
	}

	return decodeReply(data)
}
