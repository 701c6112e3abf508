package model

// Role is the closed set of account roles.
type Role string

const (
	RolePIN     Role = "pin"
	RoleCSR     Role = "csr"
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
)

func ValidRole(r Role) bool {
	switch r {
	case RolePIN, RoleCSR, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// Capability is a coarse permission derived from a role. Capabilities are
// resolved once per authenticated request instead of checking role strings
// inline at every call site.
type Capability string

const (
	CapManageUsers   Capability = "manage_users"
	CapViewStats     Capability = "view_stats"
	CapViewLogs      Capability = "view_logs"
	CapManageReports Capability = "manage_reports"
)

var roleCapabilities = map[Role][]Capability{
	RoleAdmin:   {CapManageUsers, CapViewStats, CapViewLogs, CapManageReports},
	RoleManager: {CapViewStats, CapViewLogs, CapManageReports},
}

// Can reports whether the role grants the capability.
func (r Role) Can(c Capability) bool {
	for _, have := range roleCapabilities[r] {
		if have == c {
			return true
		}
	}
	return false
}
