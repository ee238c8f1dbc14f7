package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/datadrivenharshal/intelligent-recommendation-system/internal/core/domain"
)

// AssessmentRepository is the catalog store. Records are written by the
// loader and read once at process start; serving never writes.
type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *AssessmentRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across api/worker/loader startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026030401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS assessments (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL,
	url TEXT NOT NULL,
	description TEXT NOT NULL,
	adaptive_support TEXT NOT NULL DEFAULT 'No',
	remote_support TEXT NOT NULL DEFAULT 'No',
	duration INTEGER NOT NULL,
	test_type JSONB NOT NULL DEFAULT '[]'::jsonb,
	skills JSONB,
	deviation INTEGER NOT NULL DEFAULT 0
);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// LoadAll returns every parseable assessment ordered by id. A row that fails
// to scan or carries malformed JSON is skipped with a warning; the remaining
// rows still load.
func (r *AssessmentRepository) LoadAll(ctx context.Context) ([]domain.Assessment, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, url, description, adaptive_support, remote_support, duration, test_type, skills, deviation
FROM assessments
ORDER BY id
`)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []domain.Assessment
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			slog.Warn("skip_catalog_row", "error", err)
			continue
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assessments: %w", err)
	}
	return out, nil
}

// ReplaceAll swaps the whole catalog in one transaction.
func (r *AssessmentRepository) ReplaceAll(ctx context.Context, assessments []domain.Assessment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM assessments`); err != nil {
		return fmt.Errorf("clear assessments: %w", err)
	}

	for _, a := range assessments {
		testTypeJSON, err := json.Marshal(a.TestType)
		if err != nil {
			return fmt.Errorf("marshal test_type for id %d: %w", a.ID, err)
		}
		var skillsJSON any
		if a.Skills != nil {
			raw, err := json.Marshal(a.Skills)
			if err != nil {
				return fmt.Errorf("marshal skills for id %d: %w", a.ID, err)
			}
			skillsJSON = raw
		}

		_, err = tx.ExecContext(ctx, `
INSERT INTO assessments (id, name, url, description, adaptive_support, remote_support, duration, test_type, skills, deviation)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
`,
			a.ID, a.Name, a.URL, a.Description, a.AdaptiveSupport, a.RemoteSupport,
			a.Duration, testTypeJSON, skillsJSON, a.Deviation,
		)
		if err != nil {
			return fmt.Errorf("insert assessment %d: %w", a.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace tx: %w", err)
	}
	return nil
}

func scanAssessment(rows *sql.Rows) (domain.Assessment, error) {
	var a domain.Assessment
	var testTypeRaw []byte
	var skillsRaw []byte

	err := rows.Scan(
		&a.ID, &a.Name, &a.URL, &a.Description, &a.AdaptiveSupport, &a.RemoteSupport,
		&a.Duration, &testTypeRaw, &skillsRaw, &a.Deviation,
	)
	if err != nil {
		return domain.Assessment{}, fmt.Errorf("scan row: %w", err)
	}

	if err := json.Unmarshal(testTypeRaw, &a.TestType); err != nil {
		return domain.Assessment{}, fmt.Errorf("parse test_type for id %d: %w", a.ID, err)
	}
	if len(a.TestType) == 0 {
		return domain.Assessment{}, fmt.Errorf("empty test_type for id %d", a.ID)
	}
	if skillsRaw != nil {
		if err := json.Unmarshal(skillsRaw, &a.Skills); err != nil {
			return domain.Assessment{}, fmt.Errorf("parse skills for id %d: %w", a.ID, err)
		}
	}
	return a, nil
}
