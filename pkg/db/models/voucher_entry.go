package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VoucherEntry is one debit-or-credit line against a ledger account.
// Exactly one of Debit/Credit is non-zero on a finalized entry.
type VoucherEntry struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	VoucherID uuid.UUID       `gorm:"column:voucher_id;type:uuid;not null;index"`
	AccountID *uuid.UUID      `gorm:"column:account_id;type:uuid"`
	MemberID  *uuid.UUID      `gorm:"column:member_id;type:uuid"`
	LoanID    *uuid.UUID      `gorm:"column:loan_id;type:uuid"`
	Debit     decimal.Decimal `gorm:"column:debit;type:numeric(14,2);not null"`
	Credit    decimal.Decimal `gorm:"column:credit;type:numeric(14,2);not null"`
	Position  int             `gorm:"column:position;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// SetDebit assigns the debit amount and zeroes the credit side.
func (e *VoucherEntry) SetDebit(amount decimal.Decimal) {
	e.Debit = amount
	e.Credit = decimal.Zero
}

// SetCredit assigns the credit amount and zeroes the debit side.
func (e *VoucherEntry) SetCredit(amount decimal.Decimal) {
	e.Credit = amount
	e.Debit = decimal.Zero
}

// Amount returns the non-zero side of the entry.
func (e *VoucherEntry) Amount() decimal.Decimal {
	if e.Debit.IsPositive() {
		return e.Debit
	}
	return e.Credit
}
