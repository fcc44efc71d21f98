package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wqam/backend/internal/model"
)

var accountCols = []string{
	"id", "name", "email", "password_hash", "role",
	"organisation", "industry_type", "validator_type", "status",
	"created_at", "updated_at",
}

func newMockRepo(t *testing.T) (*AccountRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAccountRepo(db), mock
}

func accountRow(id uint64, email, role, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(accountCols).
		AddRow(id, "Alice", email, "$2a$10$hash", role, "", "", "", status, now, now)
}

func TestCreate_NormalizesEmailAndAssignsID(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("Alice", "alice@example.com", "$2a$10$hash", "user", "", "", "", "pending").
		WillReturnResult(sqlmock.NewResult(7, 1))

	a := model.Account{
		Name: "Alice", Email: "  Alice@Example.COM ", PasswordHash: "$2a$10$hash",
		Role: "user", Status: "pending",
	}
	id, err := repo.Create(context.Background(), &a)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.Equal(t, "alice@example.com", a.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateKeyMapsToErrEmailExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'a@b.com' for key 'uq_accounts_email'"))

	a := model.Account{Email: "a@b.com", Role: "user", Status: "pending"}
	_, err := repo.Create(context.Background(), &a)
	assert.ErrorIs(t, err, ErrEmailExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("ghost@b.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "Ghost@B.com")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByEmail_Success(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM accounts WHERE email=?")).
		WithArgs("a@b.com").
		WillReturnRows(accountRow(3, "a@b.com", "validator", "pending"))

	a, err := repo.FindByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, uint64(3), a.ID)
	assert.Equal(t, "validator", a.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_TransitionsInsideTx(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(uint64(3)).
		WillReturnRows(accountRow(3, "a@b.com", "user", "pending"))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE accounts SET status=?")).
		WithArgs("approved", uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	a, err := repo.UpdateStatus(context.Background(), 3, "approved")
	require.NoError(t, err)
	assert.Equal(t, "approved", a.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatus_UnknownAccountRollsBack(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FOR UPDATE")).
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := repo.UpdateStatus(context.Background(), 99, "approved")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin_SkipsWhenAdminExists(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE role=?")).
		WithArgs("admin").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	a := model.Account{Email: "admin@example.com", Role: "admin", Status: "approved"}
	created, err := repo.EnsureAdmin(context.Background(), &a)
	require.NoError(t, err)
	assert.False(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureAdmin_CreatesWhenMissing(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE role=?")).
		WithArgs("admin").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO accounts")).
		WithArgs("Administrator", "admin@example.com", "$2a$10$hash", "admin", "approved").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectCommit()

	a := model.Account{
		Name: "Administrator", Email: "Admin@Example.com",
		PasswordHash: "$2a$10$hash", Role: "admin", Status: "approved",
	}
	created, err := repo.EnsureAdmin(context.Background(), &a)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, uint64(5), a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByStatus(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	rows := sqlmock.NewRows(accountCols).
		AddRow(1, "A", "a@b.com", "h", "user", "", "", "", "pending", now, now).
		AddRow(2, "B", "v@b.com", "h", "validator", "", "", "Govt", "pending", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status=?")).
		WithArgs("pending").
		WillReturnRows(rows)

	out, err := repo.ListByStatus(context.Background(), "pending")
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "v@b.com", out[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}
