package domain

// Role represents an organizational role
type Role string

const (
	RoleAdmin           Role = "admin"
	RoleGM              Role = "gm"
	RoleLineManager     Role = "line_manager"
	RoleAreaManager     Role = "area_manager"
	RoleDistrictManager Role = "district_manager"
	RoleKeyAccount      Role = "key_account"
	RoleMedicalRep      Role = "medical_rep"
	RoleWarehouseKeeper Role = "warehouse_keeper"
	RoleAccounting      Role = "accounting"
)

// legacyRoleSalesRep is a deprecated alias still present in old records
const legacyRoleSalesRep Role = "sales_rep"

// IsValid checks if the Role is a valid enum value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleGM, RoleLineManager, RoleAreaManager, RoleDistrictManager,
		RoleKeyAccount, RoleMedicalRep, RoleWarehouseKeeper, RoleAccounting:
		return true
	}
	return false
}

// IsManagerial reports whether the role sits in the management chain.
// warehouse_keeper and accounting carry rank but have no direct reports.
func (r Role) IsManagerial() bool {
	switch r {
	case RoleAdmin, RoleGM, RoleLineManager, RoleAreaManager, RoleDistrictManager:
		return true
	}
	return false
}

// NormalizeLegacyRole maps deprecated role aliases to their current name.
// It is applied once, at the point a stored role string is first read.
func NormalizeLegacyRole(r Role) Role {
	if r == legacyRoleSalesRep {
		return RoleMedicalRep
	}
	return r
}

// RoleHierarchy holds the role -> rank table used for seniority comparisons.
// The table is an immutable process-wide value; consumers take it as a
// dependency so the resolvers stay testable in isolation.
type RoleHierarchy struct {
	ranks map[Role]int
}

// NewRoleHierarchy returns the hierarchy with the standard rank table.
// warehouse_keeper and accounting share rank 3 with district managers but
// are functional roles, not hierarchical managers; their rank only feeds
// generic seniority comparisons.
func NewRoleHierarchy() *RoleHierarchy {
	return &RoleHierarchy{ranks: map[Role]int{
		RoleAdmin:           7,
		RoleGM:              6,
		RoleLineManager:     5,
		RoleAreaManager:     4,
		RoleDistrictManager: 3,
		RoleWarehouseKeeper: 3,
		RoleAccounting:      3,
		RoleKeyAccount:      2,
		RoleMedicalRep:      1,
	}}
}

// Rank returns the numeric seniority of a role. Unknown roles rank 0,
// failing open to "no authority".
func (h *RoleHierarchy) Rank(r Role) int {
	return h.ranks[r]
}

// CanManage reports whether managerRole outranks targetRole. Strictly
// greater: equal rank never implies management, so the rank-3 functional
// roles can never manage each other through this predicate.
func (h *RoleHierarchy) CanManage(managerRole, targetRole Role) bool {
	return h.Rank(managerRole) > h.Rank(targetRole)
}
