package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
)

// JournalVoucher is the double-entry voucher aggregate root. Totals are
// derived from the entry list; the entry sums are the source of truth.
type JournalVoucher struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BranchID          uuid.UUID           `gorm:"column:branch_id;type:uuid;not null"`
	Name              string              `gorm:"column:name;not null"`
	CurrencyCode      string              `gorm:"column:currency_code;not null"`
	VoucherDate       time.Time           `gorm:"column:voucher_date;not null"`
	Reference         string              `gorm:"column:reference"`
	Description       string              `gorm:"column:description"`
	CashVoucherNumber *string             `gorm:"column:cash_voucher_number"`
	Status            enums.VoucherStatus `gorm:"column:status;type:voucher_status_enum;not null;default:draft"`
	PrintedDate       *time.Time          `gorm:"column:printed_date"`
	TotalDebit        decimal.Decimal     `gorm:"column:total_debit;type:numeric(14,2);not null"`
	TotalCredit       decimal.Decimal     `gorm:"column:total_credit;type:numeric(14,2);not null"`
	LockVersion       int                 `gorm:"column:lock_version;not null;default:0"`
	Entries           []VoucherEntry      `gorm:"foreignKey:VoucherID"`
	Tags              []Tag               `gorm:"many2many:journal_voucher_tags;joinForeignKey:VoucherID;joinReferences:TagID"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// IsDraft reports whether the voucher is still freely editable.
func (v *JournalVoucher) IsDraft() bool {
	return v != nil && v.Status == enums.VoucherStatusDraft
}

// RecomputeTotals refreshes the derived debit/credit totals from the entries.
func (v *JournalVoucher) RecomputeTotals() {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, entry := range v.Entries {
		debit = debit.Add(entry.Debit)
		credit = credit.Add(entry.Credit)
	}
	v.TotalDebit = debit
	v.TotalCredit = credit
}
