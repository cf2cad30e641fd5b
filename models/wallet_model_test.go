package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWalletDebit(t *testing.T) {
	t.Run("reduces balance by exactly the amount", func(t *testing.T) {
		wallet := Wallet{ID: uuid.New(), Balance: 5000}
		paymentID := uuid.New()

		txn, err := wallet.Debit(1700, "Payment for Maths class", &paymentID)

		assert.NoError(t, err)
		assert.Equal(t, 3300.0, wallet.Balance)
		assert.Equal(t, wallet.ID, txn.WalletID)
		assert.Equal(t, 1700.0, txn.Amount)
		assert.Equal(t, "debit", txn.TransactionType)
		assert.Equal(t, 3300.0, txn.BalanceAfter)
		assert.Equal(t, &paymentID, txn.PaymentID)
	})

	t.Run("exact balance can be spent to zero", func(t *testing.T) {
		wallet := Wallet{ID: uuid.New(), Balance: 500}

		txn, err := wallet.Debit(500, "test debit", nil)

		assert.NoError(t, err)
		assert.Equal(t, 0.0, wallet.Balance)
		assert.Equal(t, 0.0, txn.BalanceAfter)
	})

	t.Run("insufficient balance fails closed", func(t *testing.T) {
		wallet := Wallet{ID: uuid.New(), Balance: 500}

		txn, err := wallet.Debit(501, "test debit", nil)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, 500.0, wallet.Balance)
		assert.Equal(t, WalletTransaction{}, txn)
	})
}

func TestWalletCredit(t *testing.T) {
	wallet := Wallet{ID: uuid.New(), Balance: 1200}

	txn := wallet.Credit(3000, "Wallet recharge pay_abc")

	assert.Equal(t, 4200.0, wallet.Balance)
	assert.Equal(t, wallet.ID, txn.WalletID)
	assert.Equal(t, 3000.0, txn.Amount)
	assert.Equal(t, "credit", txn.TransactionType)
	assert.Equal(t, 4200.0, txn.BalanceAfter)
	assert.Nil(t, txn.PaymentID)
}

func TestWalletDeductBalanceFailsClosedBeforeTouchingStorage(t *testing.T) {
	// A nil transaction would panic on any write, so reaching the assertion
	// proves the short-funds path never touches the database.
	wallet := Wallet{Balance: 500}

	err := wallet.DeductBalance(nil, 501, "test debit", nil)

	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 500.0, wallet.Balance)
}
