package model

import "time"

// Role names accepted by the registration and authorization layers.
// Roles are fixed at registration time; no endpoint mutates them.
const (
	RoleAdmin     = "admin"
	RoleUser      = "user"
	RoleValidator = "validator"
)

// Lifecycle status values stored in accounts.status. Only an admin
// decision moves an account out of StatusPending.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Account represents a row in the `accounts` table. Each field
// corresponds to a column. Handlers expose a separate PublicView
// with JSON tags; this struct stays internal to the repository and
// service layers.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – optional display name.
//  Email         – unique, lower-cased email address; primary lookup key.
//  PasswordHash  – bcrypt hash of the password.
//  Role          – admin / user / validator.
//  Organisation  – optional organisation name.
//  IndustryType  – set only when Role is user (e.g. Industry/STP/WTP).
//  ValidatorType – set only when Role is validator (e.g. Govt/Private).
//  Status        – pending / approved / rejected.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type Account struct {
	ID            uint64    // accounts.id
	Name          string    // accounts.name
	Email         string    // accounts.email
	PasswordHash  string    // accounts.password_hash
	Role          string    // accounts.role
	Organisation  string    // accounts.organisation
	IndustryType  string    // accounts.industry_type (user only)
	ValidatorType string    // accounts.validator_type (validator only)
	Status        string    // accounts.status
	CreatedAt     time.Time // accounts.created_at
	UpdatedAt     time.Time // accounts.updated_at
}

// Profile carries the role-specific optional metadata supplied at
// registration. AttachProfile keeps only the fields that match the
// account's role, so a user never stores a validator_type and vice
// versa, even when the client sends both.
type Profile struct {
	Organisation  string
	IndustryType  string
	ValidatorType string
}

// AttachProfile copies the role-matching profile fields onto the account.
func (a *Account) AttachProfile(p Profile) {
	a.Organisation = p.Organisation
	switch a.Role {
	case RoleUser:
		a.IndustryType = p.IndustryType
	case RoleValidator:
		a.ValidatorType = p.ValidatorType
	}
}

// PublicView is the account shape returned to clients. The password
// hash is never serialized.
type PublicView struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name,omitempty"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Organisation  string `json:"organisation,omitempty"`
	IndustryType  string `json:"industry_type,omitempty"`
	ValidatorType string `json:"validator_type,omitempty"`
	Status        string `json:"status"`
}

// Public converts an Account into its client-facing view.
func (a Account) Public() PublicView {
	return PublicView{
		ID:            a.ID,
		Name:          a.Name,
		Email:         a.Email,
		Role:          a.Role,
		Organisation:  a.Organisation,
		IndustryType:  a.IndustryType,
		ValidatorType: a.ValidatorType,
		Status:        a.Status,
	}
}
