package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"quizhub/internal/config"
	"quizhub/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationFiles embed.FS

type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// RunMigrations applies (or reverts) the embedded schema for the given driver.
func RunMigrations(ctx context.Context, db *sql.DB, driver string, direction Direction) error {
	switch driver {
	case config.DriverPostgres:
		return runPostgresMigrations(db, direction)
	case config.DriverOracle:
		return runOracleMigrations(ctx, db, direction)
	default:
		return fmt.Errorf("unsupported driver for migrations: %s", driver)
	}
}

func runPostgresMigrations(db *sql.DB, direction Direction) error {
	source, err := iofs.New(migrationFiles, "migrations/postgres")
	if err != nil {
		return fmt.Errorf("could not open migration source: %w", err)
	}
	target, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("could not create postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, config.DriverPostgres, target)
	if err != nil {
		return fmt.Errorf("could not create migrator: %w", err)
	}

	if direction == Down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration %s failed: %w", direction, err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return fmt.Errorf("could not read migration version: %w", verr)
	}
	logger.Get().Info("Migrations completed",
		zap.String("driver", config.DriverPostgres),
		zap.String("direction", string(direction)),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty))
	return nil
}

// migrationFile is one NNNNNN_name.{up,down}.sql file.
type migrationFile struct {
	version uint64
	name    string
}

func listMigrations(dir string, direction Direction) ([]migrationFile, error) {
	entries, err := fs.ReadDir(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}
	suffix := "." + string(direction) + ".sql"
	var files []migrationFile
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), suffix) {
			continue
		}
		prefix, _, ok := strings.Cut(entry.Name(), "_")
		if !ok {
			return nil, fmt.Errorf("migration file without version prefix: %s", entry.Name())
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid migration version in %s: %w", entry.Name(), err)
		}
		files = append(files, migrationFile{version: version, name: entry.Name()})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].version < files[j].version })
	return files, nil
}

// splitStatements splits a script into single statements, since the Oracle
// driver executes one statement per call.
func splitStatements(script string) []string {
	var statements []string
	for _, part := range strings.Split(script, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}

const oracleVersionTable = "schema_migrations"

func ensureOracleVersionTable(ctx context.Context, db *sql.DB) error {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM user_tables WHERE table_name = UPPER('"+oracleVersionTable+"')").Scan(&count)
	if err != nil {
		return fmt.Errorf("could not inspect schema: %w", err)
	}
	if count > 0 {
		return nil
	}
	_, err = db.ExecContext(ctx, "CREATE TABLE "+oracleVersionTable+" (version NUMBER(19) PRIMARY KEY)")
	if err != nil {
		return fmt.Errorf("could not create %s: %w", oracleVersionTable, err)
	}
	return nil
}

func appliedOracleVersions(ctx context.Context, db *sql.DB) (map[uint64]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM "+oracleVersionTable)
	if err != nil {
		return nil, fmt.Errorf("could not read applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[uint64]bool)
	for rows.Next() {
		var v int64
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[uint64(v)] = true
	}
	return applied, rows.Err()
}

func runOracleMigrations(ctx context.Context, db *sql.DB, direction Direction) error {
	log := logger.Get()
	dir := "migrations/oracle"

	if err := ensureOracleVersionTable(ctx, db); err != nil {
		return err
	}
	applied, err := appliedOracleVersions(ctx, db)
	if err != nil {
		return err
	}
	files, err := listMigrations(dir, direction)
	if err != nil {
		return err
	}
	if direction == Down {
		sort.Slice(files, func(i, j int) bool { return files[i].version > files[j].version })
	}

	for _, file := range files {
		if (direction == Up) == applied[file.version] {
			continue
		}
		content, err := fs.ReadFile(migrationFiles, path.Join(dir, file.name))
		if err != nil {
			return fmt.Errorf("could not read migration file %s: %w", file.name, err)
		}
		for _, stmt := range splitStatements(string(content)) {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", file.name, err)
			}
		}

		if direction == Up {
			_, err = db.ExecContext(ctx, "INSERT INTO "+oracleVersionTable+" (version) VALUES (:1)", int64(file.version))
		} else {
			_, err = db.ExecContext(ctx, "DELETE FROM "+oracleVersionTable+" WHERE version = :1", int64(file.version))
		}
		if err != nil {
			return fmt.Errorf("could not record migration %s: %w", file.name, err)
		}
		log.Info("Executed migration", zap.String("file", file.name))
	}

	log.Info("Migrations completed", zap.String("driver", config.DriverOracle), zap.String("direction", string(direction)))
	return nil
}
