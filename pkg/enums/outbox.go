package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateJournalVoucher OutboxAggregateType = "journal_voucher"
	AggregateBranch         OutboxAggregateType = "branch"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateJournalVoucher,
	AggregateBranch,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventVoucherPrinted    OutboxEventType = "voucher_printed"
	EventVoucherApproved   OutboxEventType = "voucher_approved"
	EventVoucherReleased   OutboxEventType = "voucher_released"
	EventORSettingsChanged OutboxEventType = "or_settings_changed"
)

var validOutboxEventTypes = []OutboxEventType{
	EventVoucherPrinted,
	EventVoucherApproved,
	EventVoucherReleased,
	EventORSettingsChanged,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
