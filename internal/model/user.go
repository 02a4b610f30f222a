package model

// Role is the platform role of the signed-in user.
type Role string

const (
	RoleMigrant Role = "migrante"
	RoleAdvisor Role = "asesor"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleMigrant, RoleAdvisor, RoleAdmin:
		return true
	}
	return false
}

// Label returns the human-readable role name.
func (r Role) Label() string {
	switch r {
	case RoleMigrant:
		return "Client"
	case RoleAdvisor:
		return "Advisor"
	case RoleAdmin:
		return "Administrator"
	default:
		return "Unknown"
	}
}

// User is the current-user record returned by the API at login.
type User struct {
	ID    ID     `json:"id"`
	Email string `json:"email"`
	Name  string `json:"nombre"`
	Role  Role   `json:"rol"`
}

// Tokens is the bearer token pair issued by the API.
type Tokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Empty reports whether no refresh token is held.
func (t Tokens) Empty() bool {
	return t.Refresh == ""
}
