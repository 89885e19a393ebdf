package authz

import (
	"testing"

	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
)

func TestIsAllowed(t *testing.T) {
	cases := []struct {
		role   enums.StaffRole
		action Action
		want   bool
	}{
		{enums.StaffRoleTeller, ActionVoucherWrite, true},
		{enums.StaffRoleTeller, ActionVoucherPrint, true},
		{enums.StaffRoleTeller, ActionVoucherApprove, false},
		{enums.StaffRoleTeller, ActionVoucherRelease, false},
		{enums.StaffRoleBookkeeper, ActionVoucherApprove, true},
		{enums.StaffRoleBookkeeper, ActionVoucherRelease, false},
		{enums.StaffRoleManager, ActionVoucherRelease, true},
		{enums.StaffRoleManager, ActionSettingsManage, false},
		{enums.StaffRoleAdmin, ActionSettingsManage, true},
		{enums.StaffRole("intern"), ActionVoucherRead, false},
	}

	for _, tc := range cases {
		if got := IsAllowed(tc.role, tc.action); got != tc.want {
			t.Fatalf("IsAllowed(%s, %s): expected %v, got %v", tc.role, tc.action, tc.want, got)
		}
	}
}

func TestIsAllowed_UnknownAction(t *testing.T) {
	if IsAllowed(enums.StaffRoleAdmin, Action("voucher:shred")) {
		t.Fatal("unknown actions must be denied")
	}
}
