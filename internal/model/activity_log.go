package model

import "time"

type ActivityAction string

const (
	ActionCreate                ActivityAction = "CREATE"
	ActionUpdate                ActivityAction = "UPDATE"
	ActionDelete                ActivityAction = "DELETE"
	ActionLogin                 ActivityAction = "LOGIN"
	ActionLogout                ActivityAction = "LOGOUT"
	ActionRegister              ActivityAction = "REGISTER"
	ActionForgotPasswordRequest ActivityAction = "FORGOT_PASSWORD_REQUEST"
	ActionPasswordReset         ActivityAction = "PASSWORD_RESET"
)

// ProofRedacted replaces proof payloads in audit snapshots. The raw blob is
// never written to the activity log.
const ProofRedacted = "(file)"

// ActivityLogEntry is one append-only audit row. Details is a flat snapshot
// for CREATE/DELETE and {old, new} for UPDATE.
type ActivityLogEntry struct {
	ID         int64          `json:"id"`
	UserID     *int64         `json:"user_id"`
	Action     ActivityAction `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *int64         `json:"entity_id"`
	Details    map[string]any `json:"details"`
	IPAddress  string         `json:"ip_address"`
	CreatedAt  time.Time      `json:"created_at"`

	// Joined display field.
	UserName string `json:"user_name,omitempty"`
}

// ActivityLogFilter controls audit trail listing.
type ActivityLogFilter struct {
	UserID     *int64
	Action     *ActivityAction
	EntityType *string
	Page       int
	Limit      int // default 20
}

// UpdateDetails builds the {old, new} payload an UPDATE entry carries.
func UpdateDetails(old, new map[string]any) map[string]any {
	return map[string]any{"old": old, "new": new}
}
