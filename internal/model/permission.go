package model

import "strings"

// PermissionState is the resolved meaning of a policy permission value.
type PermissionState int

const (
	// PermissionUnknown means no value was present.
	PermissionUnknown PermissionState = iota
	// PermissionAllowed means the action is permitted.
	PermissionAllowed
	// PermissionDisallowed means the action is forbidden.
	PermissionDisallowed
	// PermissionRequired means the action demands a precondition (e.g. auth).
	PermissionRequired
	// PermissionOther preserves an unrecognized string value verbatim.
	PermissionOther
)

// Permission is a policy value resolved once at ingestion. Policy files
// in the wild carry booleans, "allowed"/"required" strings, or free
// text; resolving here keeps the scoring code free of raw-value checks.
type Permission struct {
	State PermissionState `json:"state"`
	Raw   string          `json:"raw,omitempty"`
}

// ResolvePermission converts a raw JSON policy value into a Permission.
func ResolvePermission(v any) Permission {
	switch val := v.(type) {
	case bool:
		if val {
			return Permission{State: PermissionAllowed}
		}
		return Permission{State: PermissionDisallowed}
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "":
			return Permission{State: PermissionUnknown}
		case "allowed", "allow", "true", "yes":
			return Permission{State: PermissionAllowed, Raw: val}
		case "disallowed", "disallow", "denied", "deny", "false", "no":
			return Permission{State: PermissionDisallowed, Raw: val}
		case "required", "require":
			return Permission{State: PermissionRequired, Raw: val}
		default:
			return Permission{State: PermissionOther, Raw: val}
		}
	default:
		return Permission{State: PermissionUnknown}
	}
}

// String returns the canonical name of the permission state.
func (p Permission) String() string {
	switch p.State {
	case PermissionAllowed:
		return "allowed"
	case PermissionDisallowed:
		return "disallowed"
	case PermissionRequired:
		return "required"
	case PermissionOther:
		return p.Raw
	default:
		return "unknown"
	}
}
