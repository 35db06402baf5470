package domain

import (
	"errors"
	"time"
)

// User represents a system user. The ledger consumes users only through the
// identity lookup contract; profile management lives in the service layer.
type User struct {
	ID             string
	Email          string
	FirstName      string
	LastName       string
	HashedPassword string
	Role           Role
	Status         AccountStatus
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Role represents a user's access level.
type Role string

const (
	// RoleAdmin can reverse transactions and list all transactions
	RoleAdmin Role = "admin"

	// RoleUser can operate only on their own wallet
	RoleUser Role = "user"
)

// IsValid checks if the role is a valid role.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleUser
}

// CanReverse checks if the role may reverse transfers.
func (r Role) CanReverse() bool {
	return r == RoleAdmin
}

// CanViewAll checks if the role may list transactions across all wallets.
func (r Role) CanViewAll() bool {
	return r == RoleAdmin
}

// AccountStatus is the lifecycle state of a user account.
type AccountStatus string

const (
	AccountActive   AccountStatus = "active"
	AccountDisabled AccountStatus = "disabled"
)

// Authentication errors
var (
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInsufficientRole = errors.New("insufficient role for this operation")
)
