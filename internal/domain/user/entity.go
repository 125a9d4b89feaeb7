package user

import "time"

// Role values
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account and its wallet.
type User struct {
	ID            int64     // ID is the unique identifier for the user
	Name          string    // Name is the full name of the user
	Email         string    // Email is the unique, lower-cased email address of the user
	PasswordHash  string    // PasswordHash is the bcrypt hash of the password
	Phone         string    // Phone is the optional 10-digit contact number
	Role          string    // Role is either RoleUser or RoleAdmin
	WalletBalance int64     // WalletBalance is the wallet balance in paise
	CreatedAt     time.Time // CreatedAt is when the account was registered
	UpdatedAt     time.Time
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Filter narrows user listings.
type Filter struct {
	Query string
	Email string
	Role  string
	Page  int64
	Limit int64
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID int64
	Role   string
}

// IsAdmin reports whether the caller has the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanAccess reports whether the caller may see data owned by ownerID.
func (a Actor) CanAccess(ownerID int64) bool {
	return a.IsAdmin() || a.UserID == ownerID
}
