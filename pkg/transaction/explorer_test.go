package transaction_test

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/node"
	"github.com/tronkit/tronkit/pkg/transaction"
)

const (
	txHash   = "7c2d4206c03a883dd9066d620335dc1be272a8dc733cfa3f6d10308faa37facc"
	thirdB58 = "TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"
)

type infoSource struct {
	resp  node.Response
	err   error
	calls []string
}

func (s *infoSource) GetTransactionInfoByHash(_ context.Context, hash string) (node.Response, error) {
	s.calls = append(s.calls, hash)
	return s.resp, s.err
}

func nativeRecord() map[string]any {
	return map[string]any{
		"hash":          txHash,
		"block":         json.Number("61234567"),
		"timestamp":     json.Number("1714000000123"),
		"confirmed":     false,
		"confirmations": json.Number("19"),
		"contractRet":   "SUCCESS",
		"contractType":  json.Number("1"),
		"ownerAddress":  holderB58,
		"toAddress":     receiverB58,
		"contractData": map[string]any{
			"amount":        json.Number("1500000"),
			"owner_address": holderB58,
			"to_address":    receiverB58,
		},
	}
}

func tokenRecord() map[string]any {
	return map[string]any{
		"hash":          txHash,
		"block":         float64(61234568),
		"timestamp":     float64(1714000003000),
		"confirmed":     true,
		"confirmations": float64(3),
		"contractRet":   "SUCCESS",
		"contract_type": "trc20",
		"transfersAllList": []any{
			map[string]any{
				"name":             "Tether USD",
				"tokenType":        "trc20",
				"symbol":           "USDT",
				"decimals":         float64(6),
				"from_address":     holderB58,
				"to_address":       receiverB58,
				"amount_str":       "2500000",
				"contract_address": thirdB58,
			},
			map[string]any{
				"name":             "Test Token",
				"tokenType":        "trc20",
				"symbol":           "TTK",
				"decimals":         float64(18),
				"from_address":     receiverB58,
				"to_address":       holderB58,
				"amount_str":       "1230000000000000000",
				"contract_address": thirdB58,
			},
		},
	}
}

func TestParseExplorerInfo_Native(t *testing.T) {
	t.Parallel()

	info, err := transaction.ParseExplorerInfo(nativeRecord())
	require.NoError(t, err)
	assert.Equal(t, txHash, info.Hash)
	assert.Equal(t, transaction.TypeTransfer, info.Type)
	assert.Equal(t, int64(61234567), info.Block)
	assert.Equal(t, "SUCCESS", info.Status)
	assert.Equal(t, time.UnixMilli(1714000000123).UTC(), info.Timestamp)
	assert.Equal(t, int64(19), info.Confirmations)
	assert.False(t, info.Confirmed)

	require.Len(t, info.Transfers, 1)
	tr := info.Transfers[0]
	assert.Equal(t, "Tron", tr.Name)
	assert.Equal(t, "TRX", tr.Symbol)
	assert.Equal(t, int32(6), tr.Decimals)
	assert.Equal(t, holderB58, tr.From)
	assert.Equal(t, receiverB58, tr.To)
	assert.Equal(t, "1.5", tr.Amount.String())
	assert.Equal(t, big.NewInt(1_500_000), tr.AmountRaw)
}

func TestParseExplorerInfo_Token(t *testing.T) {
	t.Parallel()

	info, err := transaction.ParseExplorerInfo(tokenRecord())
	require.NoError(t, err)
	assert.Equal(t, transaction.TypeTRC20, info.Type)
	assert.True(t, info.Confirmed)

	require.Len(t, info.Transfers, 2)
	assert.Equal(t, "TRC20", info.Transfers[0].Type)
	assert.Equal(t, "2.5", info.Transfers[0].Amount.String())
	assert.Equal(t, thirdB58, info.Transfers[0].Contract)
	assert.Equal(t, "1.23", info.Transfers[1].Amount.String(), "token decimals are honored")
}

func TestParseExplorerInfo_Confirmations(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		confirmations int
		confirmed     bool
		want          bool
	}{
		{confirmations: 0, want: false},
		{confirmations: 60, want: false},
		{confirmations: 61, want: true},
		{confirmations: 0, confirmed: true, want: true},
	} {
		rec := nativeRecord()
		rec["confirmations"] = tc.confirmations
		rec["confirmed"] = tc.confirmed
		info, err := transaction.ParseExplorerInfo(rec)
		require.NoError(t, err)
		assert.Equal(t, tc.want, info.Confirmed, "%+v", tc)
	}
}

func TestParseExplorerInfo_NotSuccessful(t *testing.T) {
	t.Parallel()

	rec := nativeRecord()
	rec["contractRet"] = "OUT_OF_ENERGY"
	delete(rec, "contractData")
	info, err := transaction.ParseExplorerInfo(rec)
	require.NoError(t, err)
	assert.Equal(t, "OUT_OF_ENERGY", info.Status)
	assert.Empty(t, info.Transfers)

	_, ok := info.ForAddress(address.MustParse(holderB58))
	assert.False(t, ok)
}

func TestParseExplorerInfo_Malformed(t *testing.T) {
	t.Parallel()

	_, err := transaction.ParseExplorerInfo(map[string]any{})
	assert.ErrorIs(t, err, transaction.ErrMalformedInfo)

	rec := tokenRecord()
	rec["transfersAllList"] = []any{"nope"}
	_, err = transaction.ParseExplorerInfo(rec)
	assert.ErrorIs(t, err, transaction.ErrMalformedInfo)

	rec = tokenRecord()
	rec["transfersAllList"].([]any)[0].(map[string]any)["amount_str"] = "12.5"
	_, err = transaction.ParseExplorerInfo(rec)
	assert.ErrorIs(t, err, transaction.ErrMalformedInfo)

	rec = nativeRecord()
	rec["contractData"] = map[string]any{"amount": true}
	_, err = transaction.ParseExplorerInfo(rec)
	assert.ErrorIs(t, err, transaction.ErrMalformedInfo)
}

func TestInfo_ForAddress(t *testing.T) {
	t.Parallel()

	native, err := transaction.ParseExplorerInfo(nativeRecord())
	require.NoError(t, err)

	at, ok := native.ForAddress(address.MustParse(holderB58))
	require.True(t, ok)
	assert.Equal(t, transaction.ActionWithdraw, at.Action)
	assert.Equal(t, "1.5", at.Transfer.Amount.String())
	assert.Empty(t, at.Info.Transfers)

	at, ok = native.ForAddress(address.MustParse(receiverHex))
	require.True(t, ok)
	assert.Equal(t, transaction.ActionDeposit, at.Action)

	_, ok = native.ForAddress(address.MustParse(thirdB58))
	assert.False(t, ok)

	token, err := transaction.ParseExplorerInfo(tokenRecord())
	require.NoError(t, err)
	at, ok = token.ForAddress(address.MustParse(holderB58))
	require.True(t, ok)
	assert.Equal(t, "TTK", at.Transfer.Symbol, "the last matching transfer wins")
	assert.Equal(t, transaction.ActionDeposit, at.Action)
	assert.Len(t, token.Transfers, 2, "ForAddress does not modify the receiver")
}

func TestLookup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	src := &infoSource{resp: node.Normalize(nativeRecord())}

	info, err := transaction.Lookup(ctx, src, " "+txHash+" ")
	require.NoError(t, err)
	assert.Equal(t, txHash, info.Hash)
	assert.Equal(t, []string{txHash}, src.calls)

	at, ok, err := transaction.LookupForAddress(ctx, src, address.MustParse(receiverB58), txHash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, transaction.ActionDeposit, at.Action)

	_, err = transaction.Lookup(ctx, src, "abc")
	assert.ErrorIs(t, err, transaction.ErrInvalidTxHash)
	assert.Len(t, src.calls, 2)

	src = &infoSource{resp: node.Normalize(map[string]any{"Error": "Invalid.Hash: not found"})}
	_, err = transaction.Lookup(ctx, src, txHash)
	assert.ErrorIs(t, err, transaction.ErrLookup)
	var nodeErr *node.Error
	require.True(t, errors.As(err, &nodeErr))
	assert.Equal(t, "not found", nodeErr.Message)

	src = &infoSource{err: node.ErrNodeUnavailable}
	_, err = transaction.Lookup(ctx, src, txHash)
	assert.ErrorIs(t, err, transaction.ErrLookup)
	assert.ErrorIs(t, err, node.ErrNodeUnavailable)
}

func TestLookup_HTTPNodeImplementsInfoSource(t *testing.T) {
	t.Parallel()

	var _ transaction.InfoSource = (*node.HTTPNode)(nil)
}
