package vouchers

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
	"github.com/horizoncoop/coopadmin-backend/pkg/pagination"
)

// Actor identifies the staff member performing an operation.
type Actor struct {
	UserID   uuid.UUID
	BranchID uuid.UUID
	Role     enums.StaffRole
}

// EntryInput is one requested voucher line. Exactly one of Debit/Credit
// should be positive; the validator rejects anything else.
type EntryInput struct {
	AccountID *uuid.UUID
	MemberID  *uuid.UUID
	LoanID    *uuid.UUID
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// CreateInput carries everything needed to open a draft voucher.
type CreateInput struct {
	Actor        Actor
	Name         string
	CurrencyCode string
	VoucherDate  time.Time
	Reference    string
	Description  string
	Entries      []EntryInput
	TagIDs       []uuid.UUID
}

// UpdateEntriesInput is the add/remove command for a draft's entry list.
// LockVersion is the version the caller last read; a mismatch means someone
// else changed the voucher first.
type UpdateEntriesInput struct {
	Actor       Actor
	VoucherID   uuid.UUID
	LockVersion int
	Adds        []EntryInput
	RemoveIDs   []uuid.UUID
}

// UpdateHeaderInput mutates the descriptive fields of a draft.
type UpdateHeaderInput struct {
	Actor       Actor
	VoucherID   uuid.UUID
	LockVersion int
	Name        *string
	VoucherDate *time.Time
	Reference   *string
	Description *string
	TagIDs      *[]uuid.UUID
}

// PrintInput finalizes a draft. ManualNumber is honored only when the
// branch's settings allow user input.
type PrintInput struct {
	Actor        Actor
	VoucherID    uuid.UUID
	LockVersion  int
	ManualNumber *string
}

// TransitionInput advances a printed voucher (approve, release).
type TransitionInput struct {
	Actor       Actor
	VoucherID   uuid.UUID
	LockVersion int
	Transition  Transition
}

// ListFilter narrows the voucher listing for one branch.
type ListFilter struct {
	BranchID uuid.UUID
	Status   *enums.VoucherStatus
	TagID    *uuid.UUID
	Page     pagination.Params
}
