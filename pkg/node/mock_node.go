package node

import (
	"context"
	"fmt"
	"sync"
)

// MockCall is a request recorded by MockNode.
type MockCall struct {
	Path    string
	Payload map[string]any
}

// MockNode is an in-memory Node that answers with scripted raw replies.
// Replies queued for a path are served in order; the last one repeats.
type MockNode struct {
	mu       sync.Mutex
	replies  map[string][]map[string]any
	handlers map[string]func(payload map[string]any) map[string]any
	calls    []MockCall
	err      error
}

// Ensure MockNode implements the Node interface
var _ Node = (*MockNode)(nil)

// NewMockNode creates a MockNode with no scripted replies.
func NewMockNode() *MockNode {
	return &MockNode{
		replies:  make(map[string][]map[string]any),
		handlers: make(map[string]func(map[string]any) map[string]any),
	}
}

// Reply queues a raw reply for path.
func (m *MockNode) Reply(path string, raw map[string]any) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies[path] = append(m.replies[path], raw)
	return m
}

// ReplyFunc answers every request for path with the raw reply built by fn.
// It takes precedence over queued replies.
func (m *MockNode) ReplyFunc(path string, fn func(payload map[string]any) map[string]any) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = fn
	return m
}

// FailWith makes every following call fail with err wrapped in ErrNodeUnavailable.
func (m *MockNode) FailWith(err error) *MockNode {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns the requests received so far.
func (m *MockNode) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallsTo returns the requests received for path.
func (m *MockNode) CallsTo(path string) []MockCall {
	var out []MockCall
	for _, c := range m.Calls() {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockNode) call(ctx context.Context, path string, payload map[string]any, notFound string) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, fmt.Errorf("%w: %s: %v", ErrNodeUnavailable, path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{Path: path, Payload: payload})
	if m.err != nil {
		return Response{}, fmt.Errorf("%w: %s: %v", ErrNodeUnavailable, path, m.err)
	}

	var raw map[string]any
	if fn, ok := m.handlers[path]; ok {
		raw = fn(payload)
	} else {
		queue := m.replies[path]
		if len(queue) == 0 {
			return Response{}, fmt.Errorf("%w: %s: no reply scripted", ErrNodeUnavailable, path)
		}
		raw = queue[0]
		if len(queue) > 1 {
			m.replies[path] = queue[1:]
		}
	}

	if len(raw) == 0 && notFound != "" {
		raw = map[string]any{"Error": notFound}
	}
	return Normalize(raw), nil
}

func (m *MockNode) CreateTransaction(ctx context.Context, payload map[string]any) (Response, error) {
	return m.call(ctx, PathCreateTransaction, payload, "")
}

func (m *MockNode) BroadcastTransaction(ctx context.Context, signed map[string]any) (Response, error) {
	return m.call(ctx, PathBroadcastTransaction, signed, "")
}

func (m *MockNode) TriggerConstantContract(ctx context.Context, payload map[string]any) (Response, error) {
	return m.call(ctx, PathTriggerConstantContract, payload, "")
}

func (m *MockNode) TriggerSmartContract(ctx context.Context, payload map[string]any) (Response, error) {
	return m.call(ctx, PathTriggerSmartContract, payload, "")
}

func (m *MockNode) GetAccount(ctx context.Context, addr string) (Response, error) {
	return m.call(ctx, PathGetAccount, map[string]any{"address": addr, "visible": true}, notFoundAccount)
}

func (m *MockNode) GetTransactionByID(ctx context.Context, txID string) (Response, error) {
	return m.call(ctx, PathGetTransactionByID, map[string]any{"value": txID, "visible": true}, notFoundTransaction)
}

func (m *MockNode) GetNowBlock(ctx context.Context) (Response, error) {
	return m.call(ctx, PathGetNowBlock, nil, "")
}
