package transaction

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"math/big"
	"strings"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/sign"
)

var (
	ErrBuild          = errors.New("transaction build failed")
	ErrMissingTxID    = errors.New("transaction has no txID")
	ErrTxIDMismatch   = errors.New("txID does not match raw_data_hex")
	ErrSign           = errors.New("transaction signing failed")
	ErrNotSigned      = errors.New("transaction is not signed")
	ErrBroadcast      = errors.New("transaction broadcast failed")
	ErrInvalidTxHash  = errors.New("invalid transaction hash")
	ErrSignerRequired = errors.New("signer is required")
)

// Transaction is a transaction built by a node, plus the signatures
// collected for it. It is owned by one goroutine at a time.
type Transaction struct {
	To        address.Address
	From      address.Address
	AmountSun *big.Int
	// Raw is the node's transaction object: txID, raw_data, raw_data_hex.
	Raw       map[string]any
	Signature []string
}

// FromRaw wraps a transaction object returned by a node, such as the
// transaction of a mutating contract call. Existing signatures are kept.
func FromRaw(raw map[string]any) (*Transaction, error) {
	if raw == nil {
		return nil, ErrMissingTxID
	}
	tx := &Transaction{Raw: maps.Clone(raw)}
	if _, err := tx.digest(); err != nil {
		return nil, err
	}

	switch sigs := raw["signature"].(type) {
	case []string:
		tx.Signature = append(tx.Signature, sigs...)
	case []any:
		for _, s := range sigs {
			if str, ok := s.(string); ok {
				tx.Signature = append(tx.Signature, str)
			}
		}
	}
	delete(tx.Raw, "signature")
	return tx, nil
}

// ID returns the transaction id, the hex SHA-256 of raw_data.
func (tx *Transaction) ID() string {
	id, _ := tx.Raw["txID"].(string)
	return id
}

// IsSigned reports whether at least one signature is attached.
func (tx *Transaction) IsSigned() bool { return len(tx.Signature) > 0 }

// Sign signs the transaction id with signer and appends the signature.
// On error the transaction is left unchanged.
func (tx *Transaction) Sign(signer sign.Signer) error {
	if signer == nil {
		return ErrSignerRequired
	}
	digest, err := tx.digest()
	if err != nil {
		return err
	}
	sig, err := signer.Sign(digest)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSign, err)
	}
	if err := sig.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrSign, err)
	}
	tx.Signature = append(tx.Signature, sig.String())
	return nil
}

// Payload returns the transaction object to broadcast, signatures included.
func (tx *Transaction) Payload() map[string]any {
	out := maps.Clone(tx.Raw)
	if out == nil {
		out = map[string]any{}
	}
	out["signature"] = append([]string(nil), tx.Signature...)
	return out
}

// digest decodes the txID and, when raw_data_hex is present, checks that the
// id really is its hash.
func (tx *Transaction) digest() ([]byte, error) {
	id := tx.ID()
	if id == "" {
		return nil, ErrMissingTxID
	}
	digest, err := hex.DecodeString(id)
	if err != nil || len(digest) != sign.DigestLength {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTxHash, id)
	}

	if rawHex, ok := tx.Raw["raw_data_hex"].(string); ok && rawHex != "" {
		rawData, err := hex.DecodeString(rawHex)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrTxIDMismatch, err)
		}
		sum := sha256.Sum256(rawData)
		if !bytes.Equal(sum[:], digest) {
			return nil, ErrTxIDMismatch
		}
	}
	return digest, nil
}

// IsValidTransactionHash reports whether hash looks like a transaction id:
// 64 hex characters, surrounding whitespace ignored.
func IsValidTransactionHash(hash string) bool {
	hash = strings.TrimSpace(hash)
	if len(hash) != 64 {
		return false
	}
	_, err := hex.DecodeString(hash)
	return err == nil
}
