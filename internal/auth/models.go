// Package auth implements signup, login and logout for the herd
// registration service. Passwords are stored as bcrypt hashes; sessions
// are stateless JWTs whose jti lands on a revocation list at logout.
package auth

import (
	"time"

	id "github.com/geekskaran/cattel/pkg/domain"
)

// User is a registered caller of the service: a farmer, a regional
// admin, or a super admin.
type User struct {
	ID           id.UserID
	Name         string
	Mobile       string
	Email        string
	PasswordHash string
	Role         id.Role
	// Region is set for farmers (where their herd lives) and regional
	// admins (the region they review). Empty for super admins.
	Region    id.Region
	CreatedAt time.Time
}

// SignupRequest carries the fields a new farmer submits.
type SignupRequest struct {
	Name     string
	Mobile   string
	Email    string
	Password string
	Region   string
}

// LoginRequest authenticates by mobile number and password.
type LoginRequest struct {
	Mobile   string
	Password string
}

// LoginResult is the issued session.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	UserID    id.UserID
	Role      id.Role
}
