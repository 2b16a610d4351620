package core

// UserRole gates which operations a user may perform
type UserRole string

const (
	RoleInvestigator      UserRole = "investigator"
	RoleIncidentResponder UserRole = "incident-responder"
	RoleLegalAuditor      UserRole = "legal-auditor"
	RoleExecutive         UserRole = "executive"
)

// IsValid checks if the role is valid
func (r UserRole) IsValid() bool {
	switch r {
	case RoleInvestigator, RoleIncidentResponder, RoleLegalAuditor, RoleExecutive:
		return true
	}
	return false
}

// User is an account that can sign in to the service
type User struct {
	ID           string   `json:"id" yaml:"id"`
	Email        string   `json:"email" yaml:"email"`
	Name         string   `json:"name" yaml:"name"`
	Role         UserRole `json:"role" yaml:"role"`
	PasswordHash string   `json:"-" yaml:"passwordHash"`
}

// PublicUser is a user without its credential
type PublicUser struct {
	ID    string   `json:"id"`
	Email string   `json:"email"`
	Name  string   `json:"name"`
	Role  UserRole `json:"role"`
}

// Public strips the credential
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}
