package models

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentOnHold     PaymentStatus = "on_hold"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

type Payment struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	BookingID uuid.UUID `gorm:"type:uuid;not null" json:"booking_id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null" json:"student_id"`
	TutorID   uuid.UUID `gorm:"type:uuid;not null" json:"tutor_id"`

	Amount           float64 `gorm:"type:numeric(10,2);not null" json:"amount"`
	CommissionAmount float64 `gorm:"type:numeric(10,2);not null" json:"commission_amount"`
	TutorPayout      float64 `gorm:"type:numeric(10,2);not null" json:"tutor_payout"`

	Status        PaymentStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaymentMethod string        `gorm:"size:20;default:'razorpay'" json:"payment_method"` // razorpay, wallet, cash, other

	TransactionID   *string `gorm:"size:100" json:"transaction_id"`
	ProviderOrderID *string `gorm:"size:255;unique" json:"provider_order_id"`

	// Wallet-funded payments are held for a cooling-off window before the
	// tutor payout is released.
	IsWalletPayment bool       `gorm:"default:false" json:"is_wallet_payment"`
	HoldUntil       *time.Time `json:"hold_until"`
	ReleasedAt      *time.Time `json:"released_at"`

	PaidAt *time.Time `json:"paid_at"`

	RefundReason *string `gorm:"type:text" json:"refund_reason"`

	Booking Booking `gorm:"foreignkey:BookingID" json:"booking"`
	Student User    `gorm:"foreignkey:StudentID" json:"-"`
	Tutor   User    `gorm:"foreignkey:TutorID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanBeReleased reports whether the cooling period is over. Both the manual
// release action and the sweep job go through this check.
func (p *Payment) CanBeReleased(now time.Time) bool {
	if p.Status != PaymentOnHold {
		return false
	}
	if p.HoldUntil == nil {
		return false
	}
	return !now.Before(*p.HoldUntil)
}

type Invoice struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	PaymentID     uuid.UUID `gorm:"type:uuid;not null;unique" json:"payment_id"`
	InvoiceNumber string    `gorm:"size:50;not null;unique" json:"invoice_number"`
	FileURL       *string   `gorm:"size:255" json:"file_url"`

	Payment Payment `gorm:"foreignkey:PaymentID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
