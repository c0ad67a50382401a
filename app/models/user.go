package models

// User is the authenticated profile returned by GET /me/.
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"` // "customer" | "vendor" | "admin"
}

// IsVendor reports whether the user may manage a restaurant.
func (u User) IsVendor() bool { return u.Role == "vendor" || u.Role == "admin" }

// TokenPair is the credential pair issued by POST /login/ and rotated by
// POST /token/refresh/. The access token is short-lived; the refresh token
// is exchanged for a new pair when the access token expires.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Empty reports whether no credentials are held at all.
func (t TokenPair) Empty() bool { return t.Access == "" && t.Refresh == "" }
