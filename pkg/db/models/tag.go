package models

import (
	"time"

	"github.com/google/uuid"
)

// Tag is a descriptive label attachable to journal vouchers.
type Tag struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;uniqueIndex"`
	Color     string    `gorm:"column:color"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// JournalVoucherTag is the voucher/tag join row.
type JournalVoucherTag struct {
	VoucherID uuid.UUID `gorm:"column:voucher_id;type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"column:tag_id;type:uuid;primaryKey"`
}

// TableName keeps the join table aligned with the many2many mapping.
func (JournalVoucherTag) TableName() string {
	return "journal_voucher_tags"
}
