package model

import "time"

// ActivityLog is one append-only audit entry.
type ActivityLog struct {
	ID          int64     `json:"id"`
	UserID      *int64    `json:"user_id,omitempty"`
	Username    string    `json:"username,omitempty"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// Activity actions.
const (
	ActionLogin                    = "login"
	ActionLoginFailed              = "login_failed"
	ActionLogout                   = "logout"
	ActionMarkUnavailablePhone     = "mark_unavailable_phone"
	ActionMarkUnavailableAccessory = "mark_unavailable_accessory"
	ActionActivateEmployee         = "activate_employee"
	ActionDeactivateEmployee       = "deactivate_employee"
	ActionResetAdminPassword       = "reset_admin_password"
	ActionExportInventory          = "export_inventory"
)
