package models

import (
	"time"

	"github.com/google/uuid"
)

// Member is a cooperative member referenced by voucher entries. Read-only here.
type Member struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberNumber string    `gorm:"column:member_number;not null;uniqueIndex"`
	FullName     string    `gorm:"column:full_name;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// Loan is a member loan referenced by entries against loan-bearing accounts.
type Loan struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	MemberID   uuid.UUID `gorm:"column:member_id;type:uuid;not null;index"`
	LoanNumber string    `gorm:"column:loan_number;not null;uniqueIndex"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
