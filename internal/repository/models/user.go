package models

import (
	"database/sql"
	"time"
)

// User mirrors a row of the users table.
type User struct {
	ID            string
	Name          string
	Email         string
	PasswordHash  sql.NullString
	Image         sql.NullString
	OAuthProvider sql.NullString
	OAuthSubject  sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ScanTargets lists the fields in UserColumns order.
func (u *User) ScanTargets() []interface{} {
	return []interface{}{
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Image,
		&u.OAuthProvider, &u.OAuthSubject, &u.CreatedAt, &u.UpdatedAt,
	}
}

const UserColumns = "id, name, email, password_hash, image, oauth_provider, oauth_subject, created_at, updated_at"
