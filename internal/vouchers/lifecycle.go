package vouchers

import (
	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
)

// Transition names an operator action against the voucher lifecycle.
type Transition string

const (
	TransitionPrint   Transition = "print"
	TransitionApprove Transition = "approve"
	TransitionRelease Transition = "release"
)

var validTransitions = []Transition{
	TransitionPrint,
	TransitionApprove,
	TransitionRelease,
}

// IsValid reports whether the value names a known transition.
func (t Transition) IsValid() bool {
	for _, candidate := range validTransitions {
		if candidate == t {
			return true
		}
	}
	return false
}

// transitionTable is the full lifecycle: draft -> printed -> approved ->
// released, one step at a time, no skips and no reversals.
var transitionTable = map[enums.VoucherStatus]map[Transition]enums.VoucherStatus{
	enums.VoucherStatusDraft: {
		TransitionPrint: enums.VoucherStatusPrinted,
	},
	enums.VoucherStatusPrinted: {
		TransitionApprove: enums.VoucherStatusApproved,
	},
	enums.VoucherStatusApproved: {
		TransitionRelease: enums.VoucherStatusReleased,
	},
	enums.VoucherStatusReleased: {},
}

// NextStatus resolves the target status for applying transition at the
// current status. Every (status, transition) pair resolves to either a target
// or an InvalidTransition error; there is no third outcome.
func NextStatus(current enums.VoucherStatus, transition Transition) (enums.VoucherStatus, error) {
	if !transition.IsValid() {
		return "", errInvalidTransition(string(current), string(transition))
	}
	allowed, ok := transitionTable[current]
	if !ok {
		return "", errInvalidTransition(string(current), string(transition))
	}
	next, ok := allowed[transition]
	if !ok {
		return "", errInvalidTransition(string(current), string(transition))
	}
	return next, nil
}

// eventForTransition maps a completed transition to its outbox event type.
func eventForTransition(transition Transition) enums.OutboxEventType {
	switch transition {
	case TransitionPrint:
		return enums.EventVoucherPrinted
	case TransitionApprove:
		return enums.EventVoucherApproved
	case TransitionRelease:
		return enums.EventVoucherReleased
	}
	return ""
}
