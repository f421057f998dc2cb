package node_test

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronkit/tronkit/pkg/node"
)

func fastConfig(fullNode string) node.Config {
	cfg := node.DefaultConfig
	cfg.FullNode = fullNode
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.Timeout = 5 * time.Second
	return cfg
}

func jsonHandler(t *testing.T, check func(r *http.Request, body map[string]any), reply any) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		body := map[string]any{}
		if r.Method == http.MethodPost {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		}
		if check != nil {
			check(r, body)
		}
		w.Header().Set("Content-Type", "application/json")
		assert.NoError(t, json.NewEncoder(w).Encode(reply))
	}
}

func TestHTTPNode_TriggerConstantContract(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"contract_address":  "41a614f803b6fd780986a42c78ec9c7f77e6ded13c",
		"function_selector": "decimals()",
		"parameter":         "",
		"owner_address":     "410000000000000000000000000000000000000000",
	}

	server := httptest.NewServer(jsonHandler(t, func(r *http.Request, body map[string]any) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, node.PathTriggerConstantContract, r.URL.Path)
		assert.Equal(t, "secret-key", r.Header.Get(node.APIKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, payload, body)
	}, map[string]any{
		"result":          map[string]any{"result": true},
		"constant_result": []string{"0000000000000000000000000000000000000000000000000000000000000006"},
	}))
	defer server.Close()

	metrics := node.NewMetricsWithRegistry(prometheus.NewRegistry())
	cfg := fastConfig(server.URL)
	cfg.APIKey = "secret-key"
	n, err := node.NewHTTPNode(cfg, node.WithMetrics(metrics))
	require.NoError(t, err)

	resp, err := n.TriggerConstantContract(context.Background(), payload)
	require.NoError(t, err)
	require.True(t, resp.Success)
	assert.Contains(t, resp.Data, "constant_result")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(node.PathTriggerConstantContract, "success")))
}

func TestHTTPNode_NoAPIKeyHeader(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, func(r *http.Request, _ map[string]any) {
		_, present := r.Header[http.CanonicalHeaderKey(node.APIKeyHeader)]
		assert.False(t, present)
	}, map[string]any{"blockID": "00"}))
	defer server.Close()

	n, err := node.NewHTTPNode(fastConfig(server.URL))
	require.NoError(t, err)

	resp, err := n.GetNowBlock(context.Background())
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "00", resp.String("blockID"))
}

func TestHTTPNode_NormalizesErrorReply(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, nil, map[string]any{
		"code":    "SIGERROR",
		"message": hex.EncodeToString([]byte("CONTRACT_VALIDATE_ERROR: insufficient balance")),
	}))
	defer server.Close()

	metrics := node.NewMetricsWithRegistry(prometheus.NewRegistry())
	n, err := node.NewHTTPNode(fastConfig(server.URL), node.WithMetrics(metrics))
	require.NoError(t, err)

	resp, err := n.BroadcastTransaction(context.Background(), map[string]any{"txID": "ab"})
	require.NoError(t, err)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "insufficient balance", resp.Error.Message)
	assert.Equal(t, "CONTRACT_VALIDATE_ERROR", resp.Error.RawMessage)

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(node.PathBroadcastTransaction, "node_error")))
}

func TestHTTPNode_EmptyLookups(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, func(r *http.Request, body map[string]any) {
		assert.Equal(t, true, body["visible"])
	}, map[string]any{}))
	defer server.Close()

	n, err := node.NewHTTPNode(fastConfig(server.URL))
	require.NoError(t, err)

	resp, err := n.GetTransactionByID(context.Background(), "deadbeef")
	require.NoError(t, err)
	require.False(t, resp.Success)
	assert.Equal(t, node.KindNodeError, resp.Error.Kind)
	assert.Equal(t, "Transaction not found or Invalid transaction hash.", resp.Error.Message)
	assert.Equal(t, "Invalid.Hash", resp.Error.RawMessage)

	resp, err = n.GetAccount(context.Background(), "TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY")
	require.NoError(t, err)
	require.False(t, resp.Success)
	assert.Equal(t, "Invalid.Address", resp.Error.RawMessage)
}

func TestHTTPNode_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"result": true, "txid": "ab"}`))
	}))
	defer server.Close()

	metrics := node.NewMetricsWithRegistry(prometheus.NewRegistry())
	n, err := node.NewHTTPNode(fastConfig(server.URL), node.WithMetrics(metrics))
	require.NoError(t, err)

	resp, err := n.BroadcastTransaction(context.Background(), map[string]any{"txID": "ab"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, int32(3), attempts.Load())
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.Retries))
}

func TestHTTPNode_Unavailable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	metrics := node.NewMetricsWithRegistry(prometheus.NewRegistry())
	cfg := fastConfig(server.URL)
	cfg.RetryMax = 1
	n, err := node.NewHTTPNode(cfg, node.WithMetrics(metrics))
	require.NoError(t, err)

	_, err = n.CreateTransaction(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, node.ErrNodeUnavailable)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues(node.PathCreateTransaction, "unavailable")))

	notJSON := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	defer notJSON.Close()

	n, err = node.NewHTTPNode(fastConfig(notJSON.URL))
	require.NoError(t, err)
	_, err = n.GetNowBlock(context.Background())
	assert.ErrorIs(t, err, node.ErrNodeUnavailable)
}

func TestHTTPNode_ContextCancelled(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(jsonHandler(t, nil, map[string]any{}))
	defer server.Close()

	n, err := node.NewHTTPNode(fastConfig(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = n.GetNowBlock(ctx)
	assert.ErrorIs(t, err, node.ErrNodeUnavailable)
}

func TestHTTPNode_ExplorerAndUse(t *testing.T) {
	t.Parallel()

	explorer := httptest.NewServer(jsonHandler(t, func(r *http.Request, _ map[string]any) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, node.PathTransactionInfo, r.URL.Path)
		assert.Equal(t, "abc123", r.URL.Query().Get("hash"))
	}, map[string]any{"contractRet": "SUCCESS"}))
	defer explorer.Close()

	var solidityHits atomic.Int32
	solidity := httptest.NewServer(jsonHandler(t, func(r *http.Request, _ map[string]any) {
		solidityHits.Add(1)
	}, map[string]any{"blockID": "01"}))
	defer solidity.Close()

	full := httptest.NewServer(jsonHandler(t, nil, map[string]any{"blockID": "00"}))
	defer full.Close()

	n, err := node.NewHTTPNode(fastConfig(full.URL))
	require.NoError(t, err)

	_, err = n.GetTransactionInfoByHash(context.Background(), "abc123")
	assert.ErrorIs(t, err, node.ErrEndpointNotConfigured)
	_, err = n.Use(node.KindSolidityNode)
	assert.ErrorIs(t, err, node.ErrEndpointNotConfigured)
	_, err = n.Use(node.Kind("archive"))
	assert.ErrorIs(t, err, node.ErrInvalidNodeKind)

	cfg := fastConfig(full.URL)
	cfg.Explorer = explorer.URL
	cfg.SolidityNode = solidity.URL + "/"
	n, err = node.NewHTTPNode(cfg)
	require.NoError(t, err)

	resp, err := n.GetTransactionInfoByHash(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, "SUCCESS", resp.String("contractRet"))

	sn, err := n.Use(node.KindSolidityNode)
	require.NoError(t, err)
	assert.Equal(t, node.KindSolidityNode, sn.Kind())
	assert.Equal(t, node.KindFullNode, n.Kind())

	resp, err = sn.GetNowBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "01", resp.String("blockID"))
	assert.Equal(t, int32(1), solidityHits.Load())
}

func TestHTTPNode_AccountPermissionUpdate(t *testing.T) {
	t.Parallel()

	owner := "TPL66VK2gCXNCD7EJg9pgJRfqcRazjhUZY"
	authorized := "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"

	server := httptest.NewServer(jsonHandler(t, func(r *http.Request, body map[string]any) {
		assert.Equal(t, node.PathAccountPermissionUpdate, r.URL.Path)
		assert.Equal(t, owner, body["owner_address"])
		assert.Equal(t, true, body["visible"])

		ownerPerm, _ := body["owner"].(map[string]any)
		assert.Equal(t, "owner", ownerPerm["permission_name"])
		keys, _ := ownerPerm["keys"].([]any)
		if assert.Len(t, keys, 1) {
			assert.Equal(t, authorized, keys[0].(map[string]any)["address"])
		}

		actives, _ := body["actives"].([]any)
		if assert.Len(t, actives, 1) {
			active := actives[0].(map[string]any)
			assert.Equal(t, "active", active["permission_name"])
			assert.Equal(t, 2.0, active["type"])
			assert.Equal(t, "7fff1fc0033e0000000000000000000000000000000000000000000000000000", active["operations"])
		}
	}, map[string]any{"txID": "ff", "raw_data": map[string]any{}}))
	defer server.Close()

	n, err := node.NewHTTPNode(fastConfig(server.URL))
	require.NoError(t, err)

	resp, err := n.AccountPermissionUpdate(context.Background(), owner, authorized,
		"7fff1fc0033e0000000000000000000000000000000000000000000000000000")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "ff", resp.String("txID"))
}

func TestNewHTTPNode_Validation(t *testing.T) {
	t.Parallel()

	_, err := node.NewHTTPNode(node.DefaultConfig)
	assert.ErrorIs(t, err, node.ErrEndpointNotConfigured)

	cfg := fastConfig("api.trongrid.io")
	_, err = node.NewHTTPNode(cfg)
	assert.Error(t, err)

	cfg = fastConfig("https://api.trongrid.io")
	cfg.Explorer = "::not a url"
	_, err = node.NewHTTPNode(cfg)
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	t.Parallel()

	k, err := node.ParseKind("explorer")
	require.NoError(t, err)
	assert.Equal(t, node.KindExplorer, k)

	_, err = node.ParseKind("lightNode")
	assert.ErrorIs(t, err, node.ErrInvalidNodeKind)
}
