package domain

import "time"

type Role string

const (
	RoleDonor   Role = "donor"
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleDonor, RolePatient, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthContext identifies the caller of a service operation. It is built by
// the HTTP middleware from a verified token and passed explicitly down.
type AuthContext struct {
	UserID int64
	Role   Role
}

// Require returns a Forbidden error unless the caller holds one of roles.
func (a AuthContext) Require(roles ...Role) error {
	if a.UserID <= 0 {
		return NewError(KindForbidden, "authentication required", nil)
	}
	for _, r := range roles {
		if a.Role == r {
			return nil
		}
	}
	return NewError(KindForbidden, "access denied for role "+string(a.Role), nil)
}
