package enums

import "fmt"

// AccountType maps to the account_type_enum enum in Postgres.
type AccountType string

const (
	AccountTypeDeposit   AccountType = "deposit"
	AccountTypeShare     AccountType = "share_capital"
	AccountTypeLoan      AccountType = "loan"
	AccountTypeSVFLedger AccountType = "svf_ledger"
	AccountTypeFines     AccountType = "fines"
	AccountTypeInterest  AccountType = "interest"
	AccountTypeExpense   AccountType = "expense"
	AccountTypeIncome    AccountType = "income"
)

var validAccountTypes = []AccountType{
	AccountTypeDeposit,
	AccountTypeShare,
	AccountTypeLoan,
	AccountTypeSVFLedger,
	AccountTypeFines,
	AccountTypeInterest,
	AccountTypeExpense,
	AccountTypeIncome,
}

// IsValid reports whether the value matches the canonical account type enum.
func (t AccountType) IsValid() bool {
	for _, candidate := range validAccountTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseAccountType converts raw input into AccountType.
func ParseAccountType(value string) (AccountType, error) {
	for _, candidate := range validAccountTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid account type %q", value)
}

// SupportsLoanReference reports whether entries against accounts of this type
// may carry a loan cross-reference.
func (t AccountType) SupportsLoanReference() bool {
	switch t {
	case AccountTypeLoan, AccountTypeSVFLedger, AccountTypeFines, AccountTypeInterest:
		return true
	}
	return false
}
