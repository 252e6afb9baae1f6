// Package domain contains core concepts of the chat system.
// No runtime, network, or UI logic should be added here.
package domain

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// User is the identity slice the pipeline consumes. The authentication
// collaborator owns the full account record.
type User struct {
	ID          string
	DisplayName string
	Role        Role
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
