package vouchers

import (
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
)

// Machine-readable reasons carried in error details so clients can branch on
// the failure without parsing messages.
const (
	ReasonEmptyVoucher       = "EMPTY_VOUCHER"
	ReasonMissingAccount     = "MISSING_ACCOUNT"
	ReasonInvalidEntryAmount = "INVALID_ENTRY_AMOUNT"
	ReasonUnbalancedVoucher  = "UNBALANCED_VOUCHER"
	ReasonInvalidLoanRef     = "INVALID_LOAN_REFERENCE"
	ReasonVoucherLocked      = "VOUCHER_LOCKED"
	ReasonInvalidTransition  = "INVALID_TRANSITION"
	ReasonAllocationFailure  = "ALLOCATION_FAILURE"
)

func errEmptyVoucher() error {
	return pkgerrors.New(pkgerrors.CodeValidation, "voucher has no entries").
		WithDetails(map[string]any{"reason": ReasonEmptyVoucher})
}

func errMissingAccount(indices []int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "entries missing an account").
		WithDetails(map[string]any{"reason": ReasonMissingAccount, "entry_indices": indices})
}

func errInvalidEntryAmount(indices []int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "entries must carry exactly one positive side").
		WithDetails(map[string]any{"reason": ReasonInvalidEntryAmount, "entry_indices": indices})
}

func errUnbalanced(totalDebit, totalCredit string) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "voucher debits and credits do not balance").
		WithDetails(map[string]any{
			"reason":       ReasonUnbalancedVoucher,
			"total_debit":  totalDebit,
			"total_credit": totalCredit,
		})
}

func errInvalidLoanRef(indices []int) error {
	return pkgerrors.New(pkgerrors.CodeValidation, "loan reference not allowed for account type").
		WithDetails(map[string]any{"reason": ReasonInvalidLoanRef, "entry_indices": indices})
}

func errVoucherLocked(status string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "voucher is no longer editable").
		WithDetails(map[string]any{"reason": ReasonVoucherLocked, "status": status})
}

func errInvalidTransition(from, transition string) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, "transition not allowed from current status").
		WithDetails(map[string]any{
			"reason":     ReasonInvalidTransition,
			"status":     from,
			"transition": transition,
		})
}

func errAllocationFailure(err error) error {
	return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "official receipt allocation failed").
		WithDetails(map[string]any{"reason": ReasonAllocationFailure})
}
