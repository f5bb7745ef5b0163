package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func userRows(u *models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "first_name", "last_name",
		"is_active", "is_verified", "created_at", "updated_at", "last_login_at",
	}).AddRow(u.ID, u.Email, u.PasswordHash, u.FirstName, u.LastName,
		u.IsActive, u.IsVerified, u.CreatedAt, u.UpdatedAt, u.LastLoginAt)
}

func TestFindByEmail_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	want := &models.User{ID: 1, Email: "a@x.com", PasswordHash: "h", IsActive: true, CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(userRows(want))

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	if err != nil {
		t.Fatalf("FindByEmail error: %v", err)
	}
	if got.ID != 1 || got.Email != "a@x.com" || !got.IsActive {
		t.Fatalf("unexpected user: %+v", got)
	}
}

func TestFindByEmail_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("ghost@x.com").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "ghost@x.com")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestFindByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs(int64(5)).
		WillReturnError(errors.New("db down"))

	_, err := repo.FindByID(context.Background(), 5)
	if err == nil || errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestInsert_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO users .+ RETURNING id, created_at, updated_at`).
		WithArgs("a@x.com", "hash", "Alice", "Smith", true, false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(int64(7), now, now))

	u := &models.User{Email: "a@x.com", PasswordHash: "hash", FirstName: "Alice", LastName: "Smith", IsActive: true}
	got, err := repo.Insert(context.Background(), u)
	if err != nil {
		t.Fatalf("Insert error: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("unexpected id: %d", got.ID)
	}
}

func TestInsert_DuplicateEmail(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO users .+`).
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err := repo.Insert(context.Background(), &models.User{Email: "a@x.com", PasswordHash: "h", IsActive: true})
	if !errors.Is(err, common.ErrAlreadyExists) {
		t.Fatalf("want common.ErrAlreadyExists, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`UPDATE users SET .+ RETURNING updated_at`).
		WillReturnRows(sqlmock.NewRows([]string{"updated_at"}).AddRow(now))

	u := &models.User{ID: 3, Email: "a@x.com", PasswordHash: "h", IsActive: true}
	if _, err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE users SET .+ RETURNING updated_at`).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), &models.User{ID: 404, Email: "a@x.com"})
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}
