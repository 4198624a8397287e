package domain

// Caller is the authenticated identity for one request. The auth middleware
// resolves it once from the access token and stores it in the request
// context; handlers and services treat it as read-only.
type Caller struct {
	UserID        string
	Role          UserRole
	BusinessID    *string
	BusinessAdmin bool
}

// IsAdmin reports whether the caller holds the platform admin role.
func (c Caller) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// CanManageStaff reports whether the caller may provision or deactivate staff
// for their business. Business owners always can; staff only when flagged as
// business admins.
func (c Caller) CanManageStaff() bool {
	switch c.Role {
	case RoleBusiness:
		return true
	case RoleStaff:
		return c.BusinessAdmin
	default:
		return false
	}
}
