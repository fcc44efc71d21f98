package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/wqam/backend/internal/auth"
	"github.com/wqam/backend/internal/model"
)

func seedAccount(t *testing.T, store *memStore, email, password, role, status string) model.Account {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	a := model.Account{Email: email, PasswordHash: hash, Role: role, Status: status}
	_, err = store.Create(context.Background(), &a)
	require.NoError(t, err)
	return a
}

func newAuthService(store AccountStore, ttl time.Duration) *AuthService {
	return NewAuthService(store, auth.NewTokenCodec("test-secret"), ttl)
}

func TestLogin_Success(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "a@b.com", "secret1", model.RoleUser, model.StatusApproved)
	svc := newAuthService(store, time.Hour)

	token, a, err := svc.Login(context.Background(), "a@b.com", "secret1", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleUser, a.Role)

	claims, err := auth.NewTokenCodec("test-secret").Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", claims.Subject)
	assert.Equal(t, model.RoleUser, claims.Role)
	assert.Equal(t, a.ID, claims.AccountID)
}

func TestLogin_NormalizesEmail(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "a@b.com", "secret1", model.RoleUser, model.StatusApproved)
	svc := newAuthService(store, time.Hour)

	_, _, err := svc.Login(context.Background(), "  A@B.COM ", "secret1", "")
	assert.NoError(t, err)
}

// The check order is part of the contract: existence, then role, then
// credentials, then approval status. Each case below would fail several
// later checks too; the returned error must come from the earliest one.
func TestLogin_CheckPrecedence(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "pending@b.com", "secret1", model.RoleUser, model.StatusPending)
	svc := newAuthService(store, time.Hour)

	cases := []struct {
		name         string
		email        string
		password     string
		expectedRole string
		want         error
	}{
		{"existence first", "ghost@b.com", "wrong", "validator", ErrNotFound},
		{"role before credentials", "pending@b.com", "wrong", "validator", ErrRoleMismatch},
		{"credentials before status", "pending@b.com", "wrong", "user", ErrInvalidCredentials},
		{"status last", "pending@b.com", "secret1", "user", ErrApprovalPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.Login(context.Background(), tc.email, tc.password, tc.expectedRole)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestLogin_RejectedAccountCannotLogIn(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "r@b.com", "secret1", model.RoleValidator, model.StatusRejected)
	svc := newAuthService(store, time.Hour)

	_, _, err := svc.Login(context.Background(), "r@b.com", "secret1", "")
	assert.ErrorIs(t, err, ErrApprovalPending)
}

func TestAdminLogin_NoExistenceLeak(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "user@b.com", "secret1", model.RoleUser, model.StatusApproved)
	svc := newAuthService(store, time.Hour)

	// A real non-admin account and a nonexistent one must be
	// indistinguishable through this endpoint.
	_, _, errExisting := svc.AdminLogin(context.Background(), "user@b.com", "secret1")
	_, _, errGhost := svc.AdminLogin(context.Background(), "ghost@b.com", "secret1")
	assert.ErrorIs(t, errExisting, ErrNotFound)
	assert.ErrorIs(t, errGhost, ErrNotFound)
	assert.Equal(t, errExisting, errGhost)
}

func TestAdminLogin_Success(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "admin@b.com", "admin123", model.RoleAdmin, model.StatusApproved)
	svc := newAuthService(store, time.Hour)

	token, a, err := svc.AdminLogin(context.Background(), "admin@b.com", "admin123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAdmin, a.Role)
	assert.NotEmpty(t, token)

	_, _, err = svc.AdminLogin(context.Background(), "admin@b.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestResolve_ReturnsLiveState(t *testing.T) {
	store := newMemStore()
	a := seedAccount(t, store, "a@b.com", "secret1", model.RoleUser, model.StatusApproved)
	svc := newAuthService(store, time.Hour)

	token, _, err := svc.Login(context.Background(), "a@b.com", "secret1", "")
	require.NoError(t, err)

	// An external mutation after issuance must be visible on resolve;
	// the claims snapshot inside the token is stale on purpose.
	store.mutate(a.ID, func(x *model.Account) {
		x.Status = model.StatusRejected
	})

	got, err := svc.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, model.StatusRejected, got.Status)
}

func TestResolve_DeletedSubject(t *testing.T) {
	store := newMemStore()
	a := seedAccount(t, store, "a@b.com", "secret1", model.RoleUser, model.StatusApproved)
	svc := newAuthService(store, time.Hour)

	token, _, err := svc.Login(context.Background(), "a@b.com", "secret1", "")
	require.NoError(t, err)

	store.delete(a.ID)

	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestResolve_InvalidToken(t *testing.T) {
	svc := newAuthService(newMemStore(), time.Hour)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		_, err := svc.Resolve(context.Background(), tok)
		assert.ErrorIs(t, err, ErrUnauthorized)
	}
}

func TestResolve_ExpiredToken(t *testing.T) {
	store := newMemStore()
	seedAccount(t, store, "a@b.com", "secret1", model.RoleUser, model.StatusApproved)
	svc := newAuthService(store, 0) // tokens expire at issuance

	token, _, err := svc.Login(context.Background(), "a@b.com", "secret1", "")
	require.NoError(t, err)

	time.Sleep(1100 * time.Millisecond) // exp has second precision

	_, err = svc.Resolve(context.Background(), token)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRequireAdmin(t *testing.T) {
	svc := newAuthService(newMemStore(), time.Hour)

	assert.NoError(t, svc.RequireAdmin(model.Account{Role: model.RoleAdmin}))
	assert.ErrorIs(t, svc.RequireAdmin(model.Account{Role: model.RoleUser}), ErrForbidden)
	assert.ErrorIs(t, svc.RequireAdmin(model.Account{Role: model.RoleValidator}), ErrForbidden)
}
