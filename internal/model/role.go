package model

// Role is one of the fixed assessor-office roles. Roles are closed: anything
// read from storage or a token is normalized through ParseRole before use.
type Role string

const (
	RoleUser       Role = "user"       // unprivileged default
	RoleEncoder    Role = "encoder"    // municipal encoder, prepares and submits records
	RoleLAOO       Role = "laoo"       // local assessment operations officer, municipality-scoped reviewer
	RoleProvincial Role = "provincial" // provincial assessor, reviews across municipalities
	RoleAdmin      Role = "admin"      // reserved super-role, every feature always enabled
)

// ParseRole normalizes a stored role string. Unknown values fall back to the
// unprivileged role rather than failing the request.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleUser, RoleEncoder, RoleLAOO, RoleProvincial, RoleAdmin:
		return Role(s), true
	}
	return RoleUser, false
}

// Capability allow-lists. Submit and review eligibility are deliberately
// disjoint concerns: an encoder may submit but never claim, a laoo may claim
// but never submit.
var (
	SubmitEligibleRoles = map[Role]bool{
		RoleEncoder: true,
		RoleAdmin:   true,
	}
	ReviewEligibleRoles = map[Role]bool{
		RoleLAOO:       true,
		RoleProvincial: true,
		RoleAdmin:      true,
	}
	AdminEligibleRoles = map[Role]bool{
		RoleAdmin: true,
	}
)

// Feature flags controlled by the permission map.
const (
	FeatureRecordsCreate     = "records.create"
	FeatureRecordsEdit       = "records.edit"
	FeatureRecordsDelete     = "records.delete"
	FeatureRecordsView       = "records.view"
	FeatureReviewQueue       = "review.queue"
	FeatureReviewAct         = "review.act"
	FeatureCommentsWrite     = "comments.write"
	FeatureHistoryView       = "history.view"
	FeatureUsersManage       = "users.manage"
	FeaturePermissionsManage = "permissions.manage"
)

// AllFeatures lists every known feature flag, in display order.
var AllFeatures = []string{
	FeatureRecordsCreate,
	FeatureRecordsEdit,
	FeatureRecordsDelete,
	FeatureRecordsView,
	FeatureReviewQueue,
	FeatureReviewAct,
	FeatureCommentsWrite,
	FeatureHistoryView,
	FeatureUsersManage,
	FeaturePermissionsManage,
}

// defaultPermissions is the single hardcoded default map. The persisted
// override store is layered strictly on top of this table; nothing else in
// the codebase duplicates it. RoleAdmin is intentionally absent: the resolver
// short-circuits it to all-true before overlays apply.
var defaultPermissions = map[Role]map[string]bool{
	RoleUser: {
		FeatureRecordsView: true,
	},
	RoleEncoder: {
		FeatureRecordsCreate: true,
		FeatureRecordsEdit:   true,
		FeatureRecordsDelete: true,
		FeatureRecordsView:   true,
		FeatureCommentsWrite: true,
	},
	RoleLAOO: {
		FeatureRecordsView:   true,
		FeatureReviewQueue:   true,
		FeatureReviewAct:     true,
		FeatureCommentsWrite: true,
		FeatureHistoryView:   true,
	},
	RoleProvincial: {
		FeatureRecordsView:   true,
		FeatureReviewQueue:   true,
		FeatureReviewAct:     true,
		FeatureCommentsWrite: true,
		FeatureHistoryView:   true,
	},
}

// DefaultPermissions returns a copy of the hardcoded feature map for a role,
// with every known feature present (false unless defaulted true). RoleAdmin
// gets every feature true.
func DefaultPermissions(role Role) map[string]bool {
	perms := make(map[string]bool, len(AllFeatures))
	if role == RoleAdmin {
		for _, f := range AllFeatures {
			perms[f] = true
		}
		return perms
	}
	defaults := defaultPermissions[role]
	for _, f := range AllFeatures {
		perms[f] = defaults[f]
	}
	return perms
}

// RolePermissionOverride is one persisted per-role per-feature flag that
// replaces the hardcoded default for that feature.
type RolePermissionOverride struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Role    string `gorm:"type:varchar(30);not null;uniqueIndex:idx_role_feature" json:"role"`
	Feature string `gorm:"type:varchar(50);not null;uniqueIndex:idx_role_feature" json:"feature"`
	Enabled bool   `gorm:"not null" json:"enabled"`
}

func (RolePermissionOverride) TableName() string {
	return "role_permission_overrides"
}
