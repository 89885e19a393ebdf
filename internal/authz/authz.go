package authz

import (
	"github.com/horizoncoop/coopadmin-backend/pkg/enums"
)

// Action names a guarded voucher operation.
type Action string

const (
	ActionVoucherRead    Action = "voucher:read"
	ActionVoucherWrite   Action = "voucher:write"
	ActionVoucherPrint   Action = "voucher:print"
	ActionVoucherApprove Action = "voucher:approve"
	ActionVoucherRelease Action = "voucher:release"
	ActionSettingsManage Action = "settings:manage"
	ActionTagManage      Action = "tag:manage"
)

// allowedRoles maps each action to the roles that may perform it. The
// lifecycle engine stays policy-free; controllers consult this table before
// calling into it.
var allowedRoles = map[Action][]enums.StaffRole{
	ActionVoucherRead:    {enums.StaffRoleTeller, enums.StaffRoleBookkeeper, enums.StaffRoleManager, enums.StaffRoleAdmin},
	ActionVoucherWrite:   {enums.StaffRoleTeller, enums.StaffRoleBookkeeper, enums.StaffRoleManager, enums.StaffRoleAdmin},
	ActionVoucherPrint:   {enums.StaffRoleTeller, enums.StaffRoleBookkeeper, enums.StaffRoleManager, enums.StaffRoleAdmin},
	ActionVoucherApprove: {enums.StaffRoleBookkeeper, enums.StaffRoleManager, enums.StaffRoleAdmin},
	ActionVoucherRelease: {enums.StaffRoleManager, enums.StaffRoleAdmin},
	ActionSettingsManage: {enums.StaffRoleAdmin},
	ActionTagManage:      {enums.StaffRoleBookkeeper, enums.StaffRoleManager, enums.StaffRoleAdmin},
}

// IsAllowed reports whether the role may perform the action.
func IsAllowed(role enums.StaffRole, action Action) bool {
	for _, allowed := range allowedRoles[action] {
		if allowed == role {
			return true
		}
	}
	return false
}
