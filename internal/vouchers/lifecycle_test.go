package vouchers

import (
	"testing"

	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
	pkgerrors "github.com/horizoncoop/coopadmin-backend/pkg/errors"
)

func TestNextStatus_AllowedPath(t *testing.T) {
	steps := []struct {
		from       enums.VoucherStatus
		transition Transition
		want       enums.VoucherStatus
	}{
		{enums.VoucherStatusDraft, TransitionPrint, enums.VoucherStatusPrinted},
		{enums.VoucherStatusPrinted, TransitionApprove, enums.VoucherStatusApproved},
		{enums.VoucherStatusApproved, TransitionRelease, enums.VoucherStatusReleased},
	}

	for _, step := range steps {
		got, err := NextStatus(step.from, step.transition)
		if err != nil {
			t.Fatalf("%s(%s): unexpected error %v", step.transition, step.from, err)
		}
		if got != step.want {
			t.Fatalf("%s(%s): expected %s, got %s", step.transition, step.from, step.want, got)
		}
	}
}

// Every (status, transition) pair must resolve to exactly one outcome: the
// single allowed step or a state-conflict error. No pair may panic or fall
// through.
func TestNextStatus_Totality(t *testing.T) {
	allowed := map[enums.VoucherStatus]Transition{
		enums.VoucherStatusDraft:    TransitionPrint,
		enums.VoucherStatusPrinted:  TransitionApprove,
		enums.VoucherStatusApproved: TransitionRelease,
	}

	statuses := []enums.VoucherStatus{
		enums.VoucherStatusDraft,
		enums.VoucherStatusPrinted,
		enums.VoucherStatusApproved,
		enums.VoucherStatusReleased,
	}
	transitions := []Transition{TransitionPrint, TransitionApprove, TransitionRelease}

	for _, status := range statuses {
		for _, transition := range transitions {
			next, err := NextStatus(status, transition)
			if allowed[status] == transition {
				if err != nil {
					t.Fatalf("%s(%s): expected success, got %v", transition, status, err)
				}
				continue
			}
			if err == nil {
				t.Fatalf("%s(%s): expected rejection, got %s", transition, status, next)
			}
			if !pkgerrors.HasCode(err, pkgerrors.CodeStateConflict) {
				t.Fatalf("%s(%s): expected state conflict code, got %v", transition, status, err)
			}
		}
	}
}

func TestNextStatus_UnknownInputs(t *testing.T) {
	if _, err := NextStatus(enums.VoucherStatus("archived"), TransitionPrint); err == nil {
		t.Fatal("expected unknown status to be rejected")
	}
	if _, err := NextStatus(enums.VoucherStatusDraft, Transition("shred")); err == nil {
		t.Fatal("expected unknown transition to be rejected")
	}
}

func TestNextStatus_ReasonDetail(t *testing.T) {
	_, err := NextStatus(enums.VoucherStatusReleased, TransitionApprove)
	if err == nil {
		t.Fatal("expected rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %v", typed.Details())
	}
	if details["reason"] != ReasonInvalidTransition {
		t.Fatalf("expected reason %s, got %v", ReasonInvalidTransition, details["reason"])
	}
	if details["status"] != string(enums.VoucherStatusReleased) {
		t.Fatalf("expected status detail, got %v", details["status"])
	}
}

func TestEventForTransition(t *testing.T) {
	cases := map[Transition]enums.OutboxEventType{
		TransitionPrint:   enums.EventVoucherPrinted,
		TransitionApprove: enums.EventVoucherApproved,
		TransitionRelease: enums.EventVoucherReleased,
	}
	for transition, want := range cases {
		if got := eventForTransition(transition); got != want {
			t.Fatalf("%s: expected %s, got %s", transition, want, got)
		}
	}
}
