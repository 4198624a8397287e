package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Payment is the database row for a recorded payment. PayerEmail and
// PayerName are populated by list queries joining users, not stored columns.
type Payment struct {
	PaymentID         string          `json:"paymentID" db:"payment_id"`
	PayerUserID       string          `json:"payerUserID" db:"payer_user_id"`
	BeneficiaryUserID sql.NullString  `json:"beneficiaryUserID" db:"beneficiary_user_id"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Currency          string          `json:"currency" db:"currency"`
	Description       string          `json:"description" db:"description"`
	Purpose           string          `json:"purpose" db:"purpose"`
	Status            string          `json:"status" db:"status"`
	CheckoutSessionID sql.NullString  `json:"-" db:"checkout_session_id"`
	CreatedAt         time.Time       `json:"createdAt" db:"created_at"`
	CompletedAt       sql.NullTime    `json:"completedAt" db:"completed_at"`

	PayerEmail string `json:"payerEmail" db:"payer_email"`
	PayerName  string `json:"payerName" db:"payer_name"`
}
