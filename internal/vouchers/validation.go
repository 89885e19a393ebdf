package vouchers

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"

	"github.com/horizoncoop/coopadmin-backend/pkg/db/models"
)

// maxAmountScale matches the numeric(14,2) storage of entry amounts.
const maxAmountScale = 2

// ValidateEntries checks the full entry list against the double-entry rules.
// All problems are reported in one pass: each category carries the offending
// entry indices so a client can highlight every bad line at once.
//
// accountsByID must contain every account the entries reference; a missing
// key is reported as a missing account, not an infrastructure error.
func ValidateEntries(entries []models.VoucherEntry, accountsByID map[uuid.UUID]models.Account) error {
	if len(entries) == 0 {
		return errEmptyVoucher()
	}

	var missingAccount []int
	var invalidAmount []int
	var invalidLoanRef []int

	totalDebit := decimal.Zero
	totalCredit := decimal.Zero

	for i, entry := range entries {
		account, accountKnown := lookupAccount(entry.AccountID, accountsByID)
		if !accountKnown {
			missingAccount = append(missingAccount, i)
		}

		if !entryAmountValid(entry) {
			invalidAmount = append(invalidAmount, i)
		} else {
			totalDebit = totalDebit.Add(entry.Debit)
			totalCredit = totalCredit.Add(entry.Credit)
		}

		if entry.LoanID != nil && accountKnown && !account.Type.SupportsLoanReference() {
			invalidLoanRef = append(invalidLoanRef, i)
		}
	}

	var errs []error
	if len(missingAccount) > 0 {
		errs = append(errs, errMissingAccount(missingAccount))
	}
	if len(invalidAmount) > 0 {
		errs = append(errs, errInvalidEntryAmount(invalidAmount))
	}
	if len(invalidLoanRef) > 0 {
		errs = append(errs, errInvalidLoanRef(invalidLoanRef))
	}
	if len(invalidAmount) == 0 && !totalDebit.Equal(totalCredit) {
		errs = append(errs, errUnbalanced(totalDebit.StringFixed(2), totalCredit.StringFixed(2)))
	}

	return multierr.Combine(errs...)
}

func lookupAccount(id *uuid.UUID, accountsByID map[uuid.UUID]models.Account) (models.Account, bool) {
	if id == nil || *id == uuid.Nil {
		return models.Account{}, false
	}
	account, ok := accountsByID[*id]
	return account, ok
}

// entryAmountValid enforces exactly one positive side with at most two
// decimal places. Negative amounts are never allowed; side flips are
// expressed by moving the amount to the other column.
func entryAmountValid(entry models.VoucherEntry) bool {
	debitSet := entry.Debit.IsPositive()
	creditSet := entry.Credit.IsPositive()
	if debitSet == creditSet {
		return false
	}
	if entry.Debit.IsNegative() || entry.Credit.IsNegative() {
		return false
	}
	return scaleOK(entry.Debit) && scaleOK(entry.Credit)
}

func scaleOK(amount decimal.Decimal) bool {
	return amount.Equal(amount.Truncate(maxAmountScale))
}
