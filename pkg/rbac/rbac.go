// Package rbac maps API roles to the client actions they may perform.
// The server enforces its own rules; these checks exist so vendor-only
// commands fail fast with a clear message instead of a remote 403.
package rbac

// Permission names a client action gated by role.
type Permission string

const (
	ManageRestaurant Permission = "manage-restaurant"
	ViewReservations Permission = "view-reservations"
)

var grants = map[string][]Permission{
	"vendor": {ManageRestaurant, ViewReservations},
	"admin":  {ManageRestaurant, ViewReservations},
}

// Can reports whether a role holds the given permission.
func Can(role string, p Permission) bool {
	for _, granted := range grants[role] {
		if granted == p {
			return true
		}
	}
	return false
}
