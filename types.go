package hireauth

import (
	"context"
	"time"
)

// Role is the account role used for authorization. Exactly three roles exist
// and the check is plain equality; there is no hierarchy between them.
type Role string

const (
	// RoleDeveloper is a developer account looking for offers.
	RoleDeveloper Role = "developer"
	// RoleOrganization is an organization account posting offers.
	RoleOrganization Role = "organization"
	// RoleAdmin is a moderation account.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the three known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleDeveloper, RoleOrganization, RoleAdmin:
		return true
	}
	return false
}

// Account is a stored marketplace account. Email is unique case-insensitively
// and always persisted in lower case. PasswordHash never leaves the server
// side; Engine methods that return accounts to callers scrub it.
type Account struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Principal is the identity resolved from a verified access token.
type Principal struct {
	AccountID string
	Role      Role
}

// TokenPair carries an access token and, when present, a refresh token.
// Refresh is empty on the non-rotating refresh path, where the presented
// refresh token remains valid.
type TokenPair struct {
	Access  string
	Refresh string
}

// RegisterInput is the input for [Engine.Register].
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// AccountStore is the credential store the engine is integrated with. The
// marketplace owns account records; hireauth only reads them for login and
// creates them on registration.
//
// CreateAccount must return [ErrDuplicateEmail] when the email is taken
// (case-insensitively). Lookup methods must return [ErrAccountNotFound] for
// missing accounts.
type AccountStore interface {
	CreateAccount(ctx context.Context, account Account) (Account, error)
	GetAccountByEmail(ctx context.Context, email string) (Account, error)
	GetAccountByID(ctx context.Context, id string) (Account, error)
}
