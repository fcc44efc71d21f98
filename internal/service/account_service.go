package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wqam/backend/internal/auth"
	"github.com/wqam/backend/internal/model"
	"github.com/wqam/backend/internal/repository"
)

const minPasswordLen = 6

// RegisterInput carries an already-parsed registration request.
type RegisterInput struct {
	Role     string
	Name     string
	Email    string
	Password string
	Profile  model.Profile
}

// AccountService owns the account lifecycle: registration, admin decisions
// and the bootstrap admin. All state transitions go through here.
type AccountService struct {
	store      AccountStore
	notifier   Notifier
	cache      CacheInvalidator
	bcryptCost int
	logger     *zap.Logger
}

func NewAccountService(store AccountStore, notifier Notifier, cache CacheInvalidator, bcryptCost int, logger *zap.Logger) *AccountService {
	return &AccountService{
		store:      store,
		notifier:   notifier,
		cache:      cache,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register validates the input, persists a pending account and kicks off a
// best-effort notification. Only user and validator roles may self-register.
// Profile fields for the non-matching role are discarded.
func (s *AccountService) Register(ctx context.Context, in RegisterInput) (model.Account, error) {
	role := strings.ToLower(strings.TrimSpace(in.Role))
	if role != model.RoleUser && role != model.RoleValidator {
		return model.Account{}, validationErr("role must be 'user' or 'validator'")
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if !validEmail(email) {
		return model.Account{}, validationErr("invalid email address")
	}
	if len(in.Password) < minPasswordLen {
		return model.Account{}, validationErr(fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return model.Account{}, fmt.Errorf("hash password: %w", err)
	}

	a := model.Account{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       model.StatusPending,
	}
	a.AttachProfile(in.Profile)

	if _, err := s.store.Create(ctx, &a); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.Account{}, ErrDuplicateEmail
		}
		return model.Account{}, err
	}

	s.logger.Info("account registered",
		zap.Uint64("id", a.ID), zap.String("role", a.Role))
	s.notify(a.Email, "Registration received",
		fmt.Sprintf("Hi %s, your registration is pending admin approval.", a.Name))
	s.invalidatePending(ctx)
	return a, nil
}

// Approve transitions an account to approved. Only admins may decide;
// re-approving an approved account is a no-op that still succeeds.
func (s *AccountService) Approve(ctx context.Context, actorRole string, id uint64) (model.Account, error) {
	return s.decide(ctx, actorRole, id, model.StatusApproved,
		"Account approved", "Hi %s, your account has been approved.")
}

// Reject transitions an account to rejected. Rejected accounts can later be
// re-approved; no transition is blocked beyond authorization and existence.
func (s *AccountService) Reject(ctx context.Context, actorRole string, id uint64) (model.Account, error) {
	return s.decide(ctx, actorRole, id, model.StatusRejected,
		"Account rejected", "Hi %s, your account was rejected by admin.")
}

func (s *AccountService) decide(ctx context.Context, actorRole string, id uint64, status, subject, bodyFmt string) (model.Account, error) {
	if actorRole != model.RoleAdmin {
		return model.Account{}, ErrForbidden
	}
	a, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Account{}, ErrNotFound
		}
		return model.Account{}, err
	}
	s.logger.Info("account status changed",
		zap.Uint64("id", a.ID), zap.String("status", status))
	s.notify(a.Email, subject, fmt.Sprintf(bodyFmt, a.Name))
	s.invalidatePending(ctx)
	return a, nil
}

// ListPending returns all accounts awaiting an admin decision.
func (s *AccountService) ListPending(ctx context.Context) ([]model.Account, error) {
	return s.store.ListByStatus(ctx, model.StatusPending)
}

// EnsureBootstrapAdmin creates a pre-approved admin account with the given
// credentials if no admin exists yet. It is idempotent and must run before
// the server starts accepting requests.
func (s *AccountService) EnsureBootstrapAdmin(ctx context.Context, email, password string) error {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	a := model.Account{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Status:       model.StatusApproved,
	}
	created, err := s.store.EnsureAdmin(ctx, &a)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("created default admin", zap.String("email", a.Email))
	} else {
		s.logger.Info("admin exists, skipping creation")
	}
	return nil
}

// notify delivers fire-and-forget: it runs in its own goroutine with a fresh
// context so a slow or failing notifier never delays or fails the caller.
func (s *AccountService) notify(address, subject, body string) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.notifier.Notify(ctx, address, subject, body); err != nil {
			s.logger.Warn("notification failed",
				zap.String("to", address), zap.String("subject", subject), zap.Error(err))
		}
	}()
}

func (s *AccountService) invalidatePending(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("pending cache invalidation failed", zap.Error(err))
	}
}

// validEmail applies the basic syntactic check: one '@' with non-empty
// local and domain parts.
func validEmail(s string) bool {
	local, domain, ok := strings.Cut(s, "@")
	return ok && local != "" && domain != "" && !strings.Contains(domain, "@")
}
