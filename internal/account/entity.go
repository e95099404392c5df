// AngelaMos | 2026
// entity.go

package account

import (
	"time"
)

// Account is a portal login. Client accounts are linked to their Client
// record by email, not by foreign key.
type Account struct {
	ID           string     `db:"id"`
	Email        string     `db:"email"`
	PasswordHash string     `db:"password_hash"`
	Name         string     `db:"name"`
	Role         string     `db:"role"`
	TokenVersion int        `db:"token_version"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	DeletedAt    *time.Time `db:"deleted_at"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

const (
	RoleClient = "client"
	RoleAdmin  = "admin"
)

func ValidRole(role string) bool {
	return role == RoleClient || role == RoleAdmin
}
