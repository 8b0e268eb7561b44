package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"quizhub/internal/domain"
	"quizhub/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userColumns = []string{"id", "name", "email", "password_hash", "image", "oauth_provider", "oauth_subject", "created_at", "updated_at"}

func TestToDomainUser(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	m := &models.User{
		ID:           "user1",
		Name:         "Test User",
		Email:        "test@example.com",
		PasswordHash: sql.NullString{String: "hash", Valid: true},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	u := toDomainUser(m)
	require.NotNil(t, u)
	assert.Equal(t, "hash", u.PasswordHash)
	assert.Equal(t, "", u.Image)
	assert.Equal(t, "", u.OAuthProvider)
	assert.True(t, now.Equal(u.CreatedAt))
	assert.Nil(t, toDomainUser(nil))
}

func TestFromDomainUser(t *testing.T) {
	m := fromDomainUser(&domain.User{ID: "user1", Email: " Mixed@Example.COM ", OAuthProvider: "github", OAuthSubject: "42"})
	require.NotNil(t, m)
	assert.Equal(t, "mixed@example.com", m.Email)
	assert.False(t, m.PasswordHash.Valid)
	assert.Equal(t, "github", m.OAuthProvider.String)
	assert.True(t, m.OAuthSubject.Valid)
	assert.Nil(t, fromDomainUser(nil))
}

func TestSQLXUserRepository_GetUserByID(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(q(`FROM users WHERE id = $1`)).
		WithArgs("user1").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user1", "Test", "test@example.com", nil, "http://img", nil, nil, now, now))
	mock.ExpectQuery(q(`FROM users WHERE id = $1`)).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetUserByID(context.Background(), "user1")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "http://img", user.Image)
	assert.False(t, user.HasPassword())

	user, err = repo.GetUserByID(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_GetUserByEmail_Normalizes(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	mock.ExpectQuery(q(`FROM users WHERE email = $1`)).
		WithArgs("test@example.com").
		WillReturnError(sql.ErrNoRows)

	user, err := repo.GetUserByEmail(context.Background(), "  Test@Example.com")
	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_GetUserByOAuth(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(q(`FROM users WHERE oauth_provider = $1 AND oauth_subject = $2`)).
		WithArgs("github", "42").
		WillReturnRows(sqlmock.NewRows(userColumns).
			AddRow("user1", "Octo", "octo@example.com", nil, nil, "github", "42", now, now))

	user, err := repo.GetUserByOAuth(context.Background(), "github", "42")
	require.NoError(t, err)
	assert.Equal(t, "42", user.OAuthSubject)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_CreateUser(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	mock.ExpectExec(q(`INSERT INTO users (id, name, email, password_hash, image, oauth_provider, oauth_subject, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)).
		WithArgs("user1", "New", "new@example.com", "hash", nil, nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &domain.User{ID: "user1", Name: "New", Email: "New@Example.com", PasswordHash: "hash"}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	assert.Equal(t, "new@example.com", user.Email)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_CreateUser_Duplicate(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	mock.ExpectExec(q(`INSERT INTO users`)).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.CreateUser(context.Background(), &domain.User{ID: "user1", Name: "N", Email: "dup@example.com"})
	assert.True(t, errors.Is(err, ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXUserRepository_UpdateUser(t *testing.T) {
	db, mock := setupTestDB(t)
	defer db.Close()
	repo := NewSQLXUserRepository(db)

	mock.ExpectExec(q(`UPDATE users SET name = $1, email = $2`)).
		WithArgs("Renamed", "a@example.com", nil, nil, nil, nil, sqlmock.AnyArg(), "user1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q(`UPDATE users SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.UpdateUser(context.Background(), &domain.User{ID: "user1", Name: "Renamed", Email: "a@example.com"}))

	err := repo.UpdateUser(context.Background(), &domain.User{ID: "ghost", Name: "X", Email: "x@example.com"})
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}
