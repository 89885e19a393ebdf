package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
)

// Account is a chart-of-accounts entry referenced by voucher lines. This
// service only reads accounts; the master data is owned elsewhere.
type Account struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string            `gorm:"column:code;not null;uniqueIndex"`
	Name         string            `gorm:"column:name;not null"`
	Type         enums.AccountType `gorm:"column:type;type:account_type_enum;not null"`
	CurrencyCode string            `gorm:"column:currency_code;not null"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
