package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tronkit/tronkit/pkg/address"
	"github.com/tronkit/tronkit/pkg/transaction"
	"github.com/tronkit/tronkit/pkg/unit"
)

type Kind string

const (
	KindTRX   Kind = "trx"
	KindTRC20 Kind = "trc20"
)

type Status string

const (
	StatusSigned    Status = "signed"
	StatusBroadcast Status = "broadcast"
	StatusRejected  Status = "rejected"
)

var (
	ErrRecordNotFound  = errors.New("journal record not found")
	ErrDuplicateRecord = errors.New("journal record already exists")
)

// Record is one transaction that was signed locally and handed to a node.
type Record struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	TxID       string         `gorm:"column:tx_id;type:char(64);uniqueIndex;not null" json:"txID"`
	Network    string         `gorm:"column:network;type:varchar(32);not null" json:"network"`
	Kind       Kind           `gorm:"column:kind;type:varchar(16);not null" json:"kind"`
	From       string         `gorm:"column:from_address;type:varchar(34);index;not null" json:"from"`
	To         string         `gorm:"column:to_address;type:varchar(34);index;not null" json:"to"`
	Contract   string         `gorm:"column:contract_address;type:varchar(34);not null;default:''" json:"contract,omitempty"`
	Amount     string         `gorm:"column:amount;type:text;not null" json:"amount"`
	Status     Status         `gorm:"column:status;type:varchar(16);not null" json:"status"`
	Reason     string         `gorm:"column:reason;type:text;not null;default:''" json:"reason,omitempty"`
	Signatures pq.StringArray `gorm:"column:signatures;type:text[]" json:"signatures"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
}

func (Record) TableName() string {
	return "broadcast_journal"
}

// FromTransfer builds the record of a signed TRX transfer.
func FromTransfer(network string, tx *transaction.Transaction) Record {
	return Record{
		TxID:       tx.ID(),
		Network:    network,
		Kind:       KindTRX,
		From:       tx.From.Base58(),
		To:         tx.To.Base58(),
		Amount:     unit.FromSun(tx.AmountSun).String(),
		Status:     StatusSigned,
		Signatures: append(pq.StringArray(nil), tx.Signature...),
	}
}

// FromTokenTransfer builds the record of a signed TRC20 transfer. The
// transaction came out of a contract trigger, so the parties are passed in.
func FromTokenTransfer(network string, token, from, to address.Address, amount decimal.Decimal, tx *transaction.Transaction) Record {
	return Record{
		TxID:       tx.ID(),
		Network:    network,
		Kind:       KindTRC20,
		From:       from.Base58(),
		To:         to.Base58(),
		Contract:   token.Base58(),
		Amount:     amount.String(),
		Status:     StatusSigned,
		Signatures: append(pq.StringArray(nil), tx.Signature...),
	}
}

// Journal stores broadcast records.
type Journal struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Journal {
	return &Journal{db: db}
}

// Record inserts rec. A second record for the same txID is rejected.
func (j *Journal) Record(ctx context.Context, rec *Record) error {
	if rec.TxID == "" {
		return fmt.Errorf("journal record needs a txID")
	}
	if rec.Status == "" {
		rec.Status = StatusSigned
	}

	err := j.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Record{}).Where("tx_id = ?", rec.TxID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: %s", ErrDuplicateRecord, rec.TxID)
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", rec.TxID, err)
	}
	return nil
}

// SetStatus moves the record of txID to status, keeping reason for rejections.
func (j *Journal) SetStatus(ctx context.Context, txID string, status Status, reason string) error {
	res := j.db.WithContext(ctx).Model(&Record{}).
		Where("tx_id = ?", txID).
		Updates(map[string]any{"status": status, "reason": reason, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return fmt.Errorf("failed to update %s: %w", txID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, txID)
	}
	return nil
}

// Get returns the record of txID.
func (j *Journal) Get(ctx context.Context, txID string) (Record, error) {
	var rec Record
	err := j.db.WithContext(ctx).Where("tx_id = ?", txID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, txID)
	}
	return rec, err
}

// List returns the records an address sent or received, newest first unless
// options say otherwise. An empty address lists everything.
func (j *Journal) List(ctx context.Context, addr string, options *ListOptions) ([]Record, error) {
	query := applyListOptions(j.db.WithContext(ctx), "id", SortTypeDescending, options)
	if addr != "" {
		query = query.Where("from_address = ? OR to_address = ?", addr, addr)
	}

	var records []Record
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
