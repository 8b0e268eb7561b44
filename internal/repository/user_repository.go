package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quizhub/internal/domain"
	"quizhub/internal/repository/models"
	"quizhub/internal/util"

	"github.com/jmoiron/sqlx"
)

// sqlxUserRepository implements domain.UserRepository using sqlx.
type sqlxUserRepository struct {
	db *sqlx.DB
}

func NewSQLXUserRepository(db *sqlx.DB) domain.UserRepository {
	return &sqlxUserRepository{db: db}
}

func toDomainUser(m *models.User) *domain.User {
	if m == nil {
		return nil
	}
	return &domain.User{
		ID:            m.ID,
		Name:          m.Name,
		Email:         m.Email,
		PasswordHash:  m.PasswordHash.String,
		Image:         m.Image.String,
		OAuthProvider: m.OAuthProvider.String,
		OAuthSubject:  m.OAuthSubject.String,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func fromDomainUser(u *domain.User) *models.User {
	if u == nil {
		return nil
	}
	return &models.User{
		ID:            u.ID,
		Name:          u.Name,
		Email:         domain.NormalizeEmail(u.Email),
		PasswordHash:  util.StringToNullString(u.PasswordHash),
		Image:         util.StringToNullString(u.Image),
		OAuthProvider: util.StringToNullString(u.OAuthProvider),
		OAuthSubject:  util.StringToNullString(u.OAuthSubject),
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

// CreateUser inserts a new user. A taken email or OAuth identity yields ErrDuplicate.
func (r *sqlxUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	exec := GetExecutor(ctx, r.db)
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	m := fromDomainUser(user)

	query := exec.Rebind(`INSERT INTO users (` + models.UserColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := exec.ExecContext(ctx, query,
		m.ID, m.Name, m.Email, m.PasswordHash, m.Image, m.OAuthProvider, m.OAuthSubject, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to create user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.Email = m.Email
	return nil
}

func (r *sqlxUserRepository) getUserBy(ctx context.Context, where string, args ...interface{}) (*domain.User, error) {
	exec := GetExecutor(ctx, r.db)
	query := exec.Rebind(`SELECT ` + models.UserColumns + ` FROM users WHERE ` + where)

	var m models.User
	if err := exec.QueryRowxContext(ctx, query, args...).Scan(m.ScanTargets()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return toDomainUser(&m), nil
}

func (r *sqlxUserRepository) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := r.getUserBy(ctx, "id = ?", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *sqlxUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.getUserBy(ctx, "email = ?", domain.NormalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *sqlxUserRepository) GetUserByOAuth(ctx context.Context, provider, subject string) (*domain.User, error) {
	user, err := r.getUserBy(ctx, "oauth_provider = ? AND oauth_subject = ?", provider, subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by oauth identity: %w", err)
	}
	return user, nil
}

// UpdateUser rewrites the mutable profile columns. It returns sql.ErrNoRows
// when the user does not exist.
func (r *sqlxUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	exec := GetExecutor(ctx, r.db)
	user.UpdatedAt = time.Now().UTC()
	m := fromDomainUser(user)

	query := exec.Rebind(`UPDATE users SET name = ?, email = ?, password_hash = ?, image = ?,
	          oauth_provider = ?, oauth_subject = ?, updated_at = ?
	          WHERE id = ?`)
	result, err := exec.ExecContext(ctx, query,
		m.Name, m.Email, m.PasswordHash, m.Image, m.OAuthProvider, m.OAuthSubject, m.UpdatedAt, m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to update user: %w", ErrDuplicate)
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	found, err := rowsAffected(result)
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if !found {
		return sql.ErrNoRows
	}
	user.Email = m.Email
	return nil
}
