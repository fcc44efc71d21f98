package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/wqam/backend/internal/database"
	"github.com/wqam/backend/internal/model"
)

const accountColumns = "id,name,email,password_hash,role,organisation,industry_type,validator_type,status,created_at,updated_at"

// AccountRepo provides durable storage for accounts on top of MySQL.
type AccountRepo struct{ DB *sql.DB }

func NewAccountRepo(db *sql.DB) *AccountRepo { return &AccountRepo{DB: db} }

// Create inserts the account and returns its store-assigned ID. Emails are
// lower-cased before insert so the unique index is effectively
// case-insensitive. A duplicate-key error maps to ErrEmailExists.
func (r *AccountRepo) Create(ctx context.Context, a *model.Account) (uint64, error) {
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO accounts (name, email, password_hash, role, organisation, industry_type, validator_type, status) VALUES (?,?,?,?,?,?,?,?)",
		a.Name, a.Email, a.PasswordHash, a.Role, a.Organisation, a.IndustryType, a.ValidatorType, a.Status)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, ErrEmailExists
		}
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = uint64(id)
	return a.ID, nil
}

// FindByEmail fetches an account by normalized email.
func (r *AccountRepo) FindByEmail(ctx context.Context, email string) (model.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE email=? LIMIT 1", email))
}

// FindByID fetches an account by id.
func (r *AccountRepo) FindByID(ctx context.Context, id uint64) (model.Account, error) {
	return scanAccount(r.DB.QueryRowContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1", id))
}

// UpdateStatus transitions an account to the given status inside a single
// transaction (read-check-write) and returns the updated record. The row is
// locked first so a concurrent decision cannot interleave.
func (r *AccountRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Account, error) {
	var out model.Account
	err := database.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx database.DBTX) error {
		a, err := scanAccount(tx.QueryRowContext(ctx,
			"SELECT "+accountColumns+" FROM accounts WHERE id=? LIMIT 1 FOR UPDATE", id))
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE accounts SET status=? WHERE id=?", status, id); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		a.Status = status
		out = a
		return nil
	})
	return out, err
}

// ListByStatus returns all accounts with the given lifecycle status.
func (r *AccountRepo) ListByStatus(ctx context.Context, status string) ([]model.Account, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+accountColumns+" FROM accounts WHERE status=? ORDER BY id", status)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role,
			&a.Organisation, &a.IndustryType, &a.ValidatorType, &a.Status,
			&a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// EnsureAdmin creates the given admin account if no account with role=admin
// exists yet. The existence check and the insert run in one transaction so
// concurrent startups cannot both create an admin. It reports whether a new
// account was created.
func (r *AccountRepo) EnsureAdmin(ctx context.Context, a *model.Account) (bool, error) {
	created := false
	err := database.WithTx(ctx, r.DB, nil, func(ctx context.Context, tx database.DBTX) error {
		var id uint64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM accounts WHERE role=? LIMIT 1 FOR UPDATE", model.RoleAdmin).Scan(&id)
		if err == nil {
			return nil // admin already present
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check admin: %w", err)
		}
		a.Email = strings.ToLower(strings.TrimSpace(a.Email))
		res, err := tx.ExecContext(ctx,
			"INSERT INTO accounts (name, email, password_hash, role, status) VALUES (?,?,?,?,?)",
			a.Name, a.Email, a.PasswordHash, a.Role, a.Status)
		if err != nil {
			if isDuplicateKey(err) {
				return ErrEmailExists
			}
			return fmt.Errorf("insert admin: %w", err)
		}
		id64, err := res.LastInsertId()
		if err != nil {
			return err
		}
		a.ID = uint64(id64)
		created = true
		return nil
	})
	return created, err
}

// scanAccount reads one account row, translating sql.ErrNoRows to ErrNotFound.
func scanAccount(row *sql.Row) (model.Account, error) {
	var a model.Account
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Role,
		&a.Organisation, &a.IndustryType, &a.ValidatorType, &a.Status,
		&a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry for a unique key).
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
