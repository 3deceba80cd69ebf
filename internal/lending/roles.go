package lending

import "library/internal/models"

type Permission string

const (
	PermBorrow          Permission = "borrow"
	PermPurchase        Permission = "purchase"
	PermReview          Permission = "review"
	PermViewCatalog     Permission = "view_catalog"
	PermManageCatalog   Permission = "manage_catalog"
	PermForceReturn     Permission = "force_return"
	PermTopUp           Permission = "top_up"
	PermViewAccounts    Permission = "view_accounts"
	PermViewReports     Permission = "view_reports"
	PermManageAccounts  Permission = "manage_accounts"
	PermModerateReviews Permission = "moderate_reviews"
)

// Roles are disjoint capability sets. An admin cannot borrow and a user
// cannot top up.
var rolePermissions = map[models.Role]map[Permission]struct{}{
	models.RoleUser: set(
		PermBorrow,
		PermPurchase,
		PermReview,
		PermViewCatalog,
	),
	models.RoleLibrarian: set(
		PermViewCatalog,
		PermManageCatalog,
		PermForceReturn,
		PermTopUp,
		PermViewAccounts,
		PermViewReports,
	),
	models.RoleAdmin: set(
		PermViewCatalog,
		PermTopUp,
		PermViewAccounts,
		PermViewReports,
		PermManageAccounts,
		PermModerateReviews,
	),
}

// Can reports whether role holds perm. Unknown roles hold nothing.
func Can(role models.Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	_, ok = perms[perm]
	return ok
}

func ValidRole(role models.Role) bool {
	_, ok := rolePermissions[role]
	return ok
}

func set(perms ...Permission) map[Permission]struct{} {
	out := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		out[p] = struct{}{}
	}
	return out
}
