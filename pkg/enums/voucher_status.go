package enums

import "fmt"

// VoucherStatus maps to the voucher_status_enum enum in Postgres.
type VoucherStatus string

const (
	VoucherStatusDraft    VoucherStatus = "draft"
	VoucherStatusPrinted  VoucherStatus = "printed"
	VoucherStatusApproved VoucherStatus = "approved"
	VoucherStatusReleased VoucherStatus = "released"
)

var validVoucherStatuses = []VoucherStatus{
	VoucherStatusDraft,
	VoucherStatusPrinted,
	VoucherStatusApproved,
	VoucherStatusReleased,
}

// IsValid reports whether the value matches the canonical voucher status enum.
func (s VoucherStatus) IsValid() bool {
	for _, candidate := range validVoucherStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseVoucherStatus converts raw input into VoucherStatus.
func ParseVoucherStatus(value string) (VoucherStatus, error) {
	for _, candidate := range validVoucherStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid voucher status %q", value)
}
