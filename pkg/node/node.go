package node

import (
	"context"
	"fmt"
)

// Node is a TRON node reachable over its wallet API.
// Every method performs a single request and returns the normalized reply.
// A reply that normalizes to an error is not a Go error: callers inspect
// Response.Success. The returned error is reserved for transport failures.
type Node interface {
	// CreateTransaction asks the node to build an unsigned TRX transfer.
	CreateTransaction(ctx context.Context, payload map[string]any) (Response, error)
	// BroadcastTransaction submits a signed transaction.
	BroadcastTransaction(ctx context.Context, signed map[string]any) (Response, error)
	// TriggerConstantContract runs a read-only contract call.
	TriggerConstantContract(ctx context.Context, payload map[string]any) (Response, error)
	// TriggerSmartContract builds an unsigned state mutating contract call.
	TriggerSmartContract(ctx context.Context, payload map[string]any) (Response, error)

	// GetAccount fetches account details for a base58 address.
	GetAccount(ctx context.Context, addr string) (Response, error)
	// GetTransactionByID fetches a transaction by its id.
	GetTransactionByID(ctx context.Context, txID string) (Response, error)
	// GetNowBlock fetches the latest block.
	GetNowBlock(ctx context.Context) (Response, error)
}

// Kind selects which configured host serves a request.
type Kind string

const (
	KindFullNode     Kind = "fullNode"
	KindSolidityNode Kind = "solidityNode"
	KindExplorer     Kind = "explorer"
)

// ParseKind validates a node kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case KindFullNode, KindSolidityNode, KindExplorer:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidNodeKind, s)
	}
}

// Wallet API paths.
const (
	PathGetNowBlock             = "/wallet/getnowblock"
	PathBroadcastTransaction    = "/wallet/broadcasttransaction"
	PathCreateTransaction       = "/wallet/createtransaction"
	PathTriggerConstantContract = "/wallet/triggerconstantcontract"
	PathTriggerSmartContract    = "/wallet/triggersmartcontract"
	PathAccountPermissionUpdate = "/wallet/accountpermissionupdate"
	PathGetTransactionByID      = "/wallet/gettransactionbyid"
	PathGetAccount              = "/wallet/getaccount"
	PathTransactionInfo         = "/api/transaction-info"
)

// Messages injected for empty lookups, in the node's own "context: message" format.
const (
	notFoundTransaction = "Invalid.Hash: Transaction not found or Invalid transaction hash."
	notFoundAccount     = "Invalid.Address: Transaction not found or Invalid transaction hash."
)

// PermissionUpdatePayload builds the accountpermissionupdate body that hands
// both the owner and a single active permission to authorized.
// operations is the 32-byte operation mask as hex.
func PermissionUpdatePayload(owner, authorized, operations string) map[string]any {
	keys := []map[string]any{{"address": authorized, "weight": 1}}
	return map[string]any{
		"owner_address": owner,
		"actives": []map[string]any{{
			"type":            2,
			"permission_name": "active",
			"threshold":       1,
			"operations":      operations,
			"keys":            keys,
		}},
		"owner": map[string]any{
			"type":            0,
			"permission_name": "owner",
			"threshold":       1,
			"keys":            keys,
		},
		"visible": true,
	}
}
