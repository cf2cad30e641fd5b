package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrInsufficientBalance = errors.New("insufficient wallet balance")

type Wallet struct {
	ID      uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID `gorm:"type:uuid;not null;unique" json:"user_id"`
	Balance float64   `gorm:"type:numeric(10,2);not null;default:0" json:"balance"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Credit applies a credit to the in-memory balance and builds the matching
// audit row. Persistence is the caller's job.
func (w *Wallet) Credit(amount float64, description string) WalletTransaction {
	w.Balance += amount
	return WalletTransaction{
		WalletID:        w.ID,
		Amount:          amount,
		TransactionType: "credit",
		Description:     description,
		BalanceAfter:    w.Balance,
	}
}

// Debit applies a debit, failing closed when funds are short: the balance is
// untouched and no audit row is produced.
func (w *Wallet) Debit(amount float64, description string, paymentID *uuid.UUID) (WalletTransaction, error) {
	if w.Balance < amount {
		return WalletTransaction{}, ErrInsufficientBalance
	}
	w.Balance -= amount
	return WalletTransaction{
		WalletID:        w.ID,
		Amount:          amount,
		TransactionType: "debit",
		Description:     description,
		BalanceAfter:    w.Balance,
		PaymentID:       paymentID,
	}, nil
}

// AddBalance credits the wallet and appends the audit row. Must run inside
// the caller's transaction so the balance and its history move together.
func (w *Wallet) AddBalance(tx *gorm.DB, amount float64, description string) error {
	txn := w.Credit(amount, description)
	if err := tx.Save(w).Error; err != nil {
		return err
	}
	return tx.Create(&txn).Error
}

// DeductBalance debits the wallet inside the caller's transaction. On
// ErrInsufficientBalance the wallet row is untouched and no audit row exists.
func (w *Wallet) DeductBalance(tx *gorm.DB, amount float64, description string, paymentID *uuid.UUID) error {
	txn, err := w.Debit(amount, description, paymentID)
	if err != nil {
		return err
	}
	if err := tx.Save(w).Error; err != nil {
		return err
	}
	return tx.Create(&txn).Error
}

// WalletTransaction is an append-only audit row. Never updated after insert.
type WalletTransaction struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	WalletID uuid.UUID `gorm:"type:uuid;not null" json:"wallet_id"`

	Amount          float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	TransactionType string  `gorm:"size:10;not null" json:"transaction_type"` // credit, debit
	Description     string  `gorm:"size:255" json:"description"`
	BalanceAfter    float64 `gorm:"type:numeric(10,2);not null" json:"balance_after"`

	PaymentID *uuid.UUID `gorm:"type:uuid" json:"payment_id"`

	Wallet Wallet `gorm:"foreignkey:WalletID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

// WalletRecharge tracks a top-up from gateway order to settlement. The
// credited amount always comes from this row, captured when the order was
// opened, never from a client callback.
type WalletRecharge struct {
	ID     uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null" json:"user_id"`

	Amount          float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	Status          string  `gorm:"size:20;not null;default:'pending'" json:"status"` // pending, completed
	ProviderOrderID string  `gorm:"size:100;not null;unique" json:"provider_order_id"`
	TransactionID   *string `gorm:"size:100" json:"transaction_id"`

	User User `gorm:"foreignkey:UserID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
