package models

import "time"

type UserRole string

const (
	UserRoleFarmer UserRole = "farmer"
	UserRoleAdmin  UserRole = "admin"
)

type User struct {
	ID           string
	Phone        string
	PasswordHash []byte
	Name         string
	Role         UserRole
	CreatedAt    time.Time
}

// Session is one link in a refresh lineage. Rotation revokes the row and
// inserts a successor with a fresh jti; at most one row per jti is ever
// active.
type Session struct {
	ID         string
	UserID     string
	RefreshJTI string
	UserAgent  string
	IP         string
	CreatedAt  time.Time
	RevokedAt  *time.Time
}

func (s Session) Revoked() bool {
	return s.RevokedAt != nil
}
