package models

import (
	"time"

	"github.com/google/uuid"
)

// BranchORSetting holds the per-branch official receipt numbering rules for
// journal vouchers. The row doubles as the sequence counter and is locked
// while a voucher print is in flight.
type BranchORSetting struct {
	BranchID                     uuid.UUID `gorm:"column:branch_id;type:uuid;primaryKey"`
	JournalVoucherAllowUserInput bool      `gorm:"column:journal_voucher_allow_user_input;not null;default:false"`
	JournalVoucherORCurrent      int64     `gorm:"column:journal_voucher_or_current;not null;default:0"`
	JournalVoucherPrefix         string    `gorm:"column:journal_voucher_prefix;not null;default:''"`
	JournalVoucherPadding        int       `gorm:"column:journal_voucher_padding;not null;default:6"`
	UpdatedAt                    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
