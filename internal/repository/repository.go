package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"quizhub/internal/config"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// DBTX is an interface abstracting *sqlx.DB and *sqlx.Tx for repository use.
type DBTX interface {
	DriverName() string
	Rebind(query string) string
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
}

// ErrDuplicate is returned when an insert or update violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

const (
	pgUniqueViolation     = "23505"
	oracleUniqueViolation = "ORA-00001"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pgUniqueViolation
	}
	return strings.Contains(err.Error(), oracleUniqueViolation)
}

// insertReturningID executes an INSERT written with ? placeholders and returns
// the generated id column.
func insertReturningID(ctx context.Context, exec DBTX, query string, args ...interface{}) (int64, error) {
	var id int64
	if exec.DriverName() == config.DriverOracle {
		args = append(args, sql.Out{Dest: &id})
		if _, err := exec.ExecContext(ctx, exec.Rebind(query+" RETURNING id INTO ?"), args...); err != nil {
			return 0, err
		}
		return id, nil
	}
	if err := exec.QueryRowxContext(ctx, exec.Rebind(query+" RETURNING id"), args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// rowsAffected reports whether the statement touched at least one row.
func rowsAffected(result sql.Result) (bool, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
