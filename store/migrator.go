package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Schema layout:
//   migration/{driver}/LATEST.sql  full schema applied to an empty database
//   seed/{driver}/NN__name.sql     demo data, applied in lexical order in demo mode

//go:embed migration
var migrationFS embed.FS

//go:embed seed
var seedFS embed.FS

const (
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"

	modeDemo = "demo"
)

// Migrate creates the schema on a fresh database and seeds demo data in demo mode.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.preMigrate(ctx); err != nil {
		return errors.Wrap(err, "failed to pre-migrate")
	}

	if s.profile.Mode == modeDemo {
		if err := s.seed(ctx); err != nil {
			return errors.Wrap(err, "failed to seed")
		}
	}
	return nil
}

// preMigrate checks if the database is initialized and applies the latest schema if not.
func (s *Store) preMigrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	filePath := s.getMigrationBasePath() + LatestSchemaFileName
	bytes, err := migrationFS.ReadFile(filePath)
	if err != nil {
		return errors.Errorf("failed to read latest schema file: %s", err)
	}
	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	slog.Info("initializing new database with latest schema", slog.String("file", filePath))
	if err := s.execute(ctx, tx, string(bytes)); err != nil {
		return errors.Errorf("failed to execute SQL file %s, err %s", filePath, err)
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	slog.Info("database initialized successfully", slog.String("driver", s.profile.Driver))
	return nil
}

func (s *Store) getMigrationBasePath() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

func (s *Store) getSeedBasePath() string {
	return fmt.Sprintf("seed/%s/", s.profile.Driver)
}

// seed loads a small food reference set so the demo can answer without an ingestion run.
// Only SQLite has seed files.
func (s *Store) seed(ctx context.Context) error {
	if s.profile.Driver != "sqlite" {
		slog.Warn("seed is only supported for SQLite, skipping for other databases")
		return nil
	}

	filenames, err := fs.Glob(seedFS, fmt.Sprintf("%s*.sql", s.getSeedBasePath()))
	if err != nil {
		return errors.Wrap(err, "failed to read seed files")
	}
	sort.Strings(filenames)

	tx, err := s.driver.GetDB().Begin()
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()
	for _, filename := range filenames {
		bytes, err := seedFS.ReadFile(filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read seed file, filename=%s", filename)
		}
		if err := s.execute(ctx, tx, string(bytes)); err != nil {
			return errors.Wrapf(err, "seed error: %s", filename)
		}
	}
	return tx.Commit()
}

// execute runs a SQL script inside tx. PostgreSQL needs one statement per ExecContext call.
func (s *Store) execute(ctx context.Context, tx *sql.Tx, script string) error {
	if s.profile.Driver != "postgres" {
		if _, err := tx.ExecContext(ctx, script); err != nil {
			return errors.Wrap(err, "failed to execute statement")
		}
		return nil
	}
	for i, stmt := range splitStatements(script) {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "failed to execute statement %d: %s", i+1, stmt)
		}
	}
	return nil
}

// splitStatements splits a script on semicolons that are outside single-quoted
// literals, dropping "--" line comments.
func splitStatements(script string) []string {
	var (
		statements []string
		current    strings.Builder
		inQuote    bool
	)
	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		for i := 0; i < len(line); i++ {
			ch := line[i]
			if !inQuote && ch == '-' && i+1 < len(line) && line[i+1] == '-' {
				break
			}
			switch {
			case ch == '\'':
				inQuote = !inQuote
				current.WriteByte(ch)
			case ch == ';' && !inQuote:
				flush()
			default:
				current.WriteByte(ch)
			}
		}
		current.WriteByte('\n')
	}
	flush()
	return statements
}
