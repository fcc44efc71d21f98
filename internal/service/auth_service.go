package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/wqam/backend/internal/auth"
	"github.com/wqam/backend/internal/model"
	"github.com/wqam/backend/internal/repository"
)

// AuthService verifies credentials against lifecycle state, issues access
// tokens and resolves presented tokens back into live accounts.
type AuthService struct {
	store  AccountStore
	codec  *auth.TokenCodec
	tokTTL time.Duration
}

func NewAuthService(store AccountStore, codec *auth.TokenCodec, tokTTL time.Duration) *AuthService {
	return &AuthService{store: store, codec: codec, tokTTL: tokTTL}
}

// Login checks, in order: account existence, expected role, password,
// approval status. The ordering is part of the contract so callers get
// consistent error semantics. expectedRole may be empty to accept any role.
func (s *AuthService) Login(ctx context.Context, email, password, expectedRole string) (string, model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", model.Account{}, ErrNotFound
		}
		return "", model.Account{}, err
	}
	if expectedRole != "" && expectedRole != a.Role {
		return "", model.Account{}, ErrRoleMismatch
	}
	if !auth.VerifyPassword(a.PasswordHash, password) {
		return "", model.Account{}, ErrInvalidCredentials
	}
	if a.Status != model.StatusApproved {
		return "", model.Account{}, ErrApprovalPending
	}
	token, err := s.codec.Issue(a.Email, a.Role, a.ID, s.tokTTL)
	if err != nil {
		return "", model.Account{}, err
	}
	return token, a, nil
}

// AdminLogin is Login restricted to admin accounts. An existing non-admin
// account yields the same ErrNotFound as an unknown email so this endpoint
// does not leak which emails are registered.
func (s *AuthService) AdminLogin(ctx context.Context, email, password string) (string, model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	a, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", model.Account{}, ErrNotFound
		}
		return "", model.Account{}, err
	}
	if a.Role != model.RoleAdmin {
		return "", model.Account{}, ErrNotFound
	}
	if !auth.VerifyPassword(a.PasswordHash, password) {
		return "", model.Account{}, ErrInvalidCredentials
	}
	if a.Status != model.StatusApproved {
		return "", model.Account{}, ErrApprovalPending
	}
	token, err := s.codec.Issue(a.Email, a.Role, a.ID, s.tokTTL)
	if err != nil {
		return "", model.Account{}, err
	}
	return token, a, nil
}

// Resolve decodes a presented token and loads the live account it names.
// The account's current role and status are returned, not the claims
// snapshot, so downstream authorization always sees the present state.
func (s *AuthService) Resolve(ctx context.Context, token string) (model.Account, error) {
	claims, err := s.codec.Verify(token)
	if err != nil {
		return model.Account{}, ErrUnauthorized
	}
	a, err := s.store.FindByEmail(ctx, claims.Subject)
	if err != nil {
		// The subject no longer maps to an account; the token is as good
		// as invalid.
		return model.Account{}, ErrUnauthorized
	}
	return a, nil
}

// RequireAdmin gates admin-only operations on the resolved account.
func (s *AuthService) RequireAdmin(a model.Account) error {
	if a.Role != model.RoleAdmin {
		return ErrForbidden
	}
	return nil
}
