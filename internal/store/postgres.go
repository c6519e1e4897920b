package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/abhisek/revise/internal/mastery"
)

// PostgresRepository reads and writes mastery records in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres creates a connection pool for dsn and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string, maxConns int32, maxConnLifetime time.Duration) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = maxConns
	}
	if maxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = maxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// Migrate creates the mastery table if it does not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS outcome_mastery (
			student_id        TEXT             NOT NULL,
			course_id         TEXT             NOT NULL,
			outcome_id        TEXT             NOT NULL,
			mastery_score     DOUBLE PRECISION NOT NULL CHECK (mastery_score BETWEEN 0 AND 1),
			last_practiced_at TIMESTAMPTZ,
			review_count      INTEGER          NOT NULL DEFAULT 0 CHECK (review_count >= 0),
			PRIMARY KEY (student_id, course_id, outcome_id)
		)
	`
	if _, err := r.db.Exec(ctx, query); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Records implements mastery.Repository.
func (r *PostgresRepository) Records(ctx context.Context, studentID, courseID string) ([]mastery.OutcomeRecord, error) {
	query := `
		SELECT outcome_id, mastery_score, last_practiced_at, review_count
		FROM outcome_mastery
		WHERE student_id = $1 AND course_id = $2
		ORDER BY outcome_id
	`

	rows, err := r.db.Query(ctx, query, studentID, courseID)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (mastery.OutcomeRecord, error) {
		var (
			rec       mastery.OutcomeRecord
			practiced *time.Time
		)
		if err := row.Scan(&rec.OutcomeID, &rec.MasteryScore, &practiced, &rec.ReviewCount); err != nil {
			return rec, err
		}
		if practiced != nil {
			rec.LastPracticedAt = practiced.UTC()
		}
		return rec, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan: %w", err)
	}
	if records == nil {
		records = []mastery.OutcomeRecord{}
	}
	return records, nil
}

// Upsert implements mastery.Writer in a single transaction.
func (r *PostgresRepository) Upsert(ctx context.Context, studentID, courseID string, records []mastery.OutcomeRecord) error {
	if studentID == "" || courseID == "" {
		return fmt.Errorf("upsert: student and course ids are required")
	}
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
	}

	query := `
		INSERT INTO outcome_mastery (student_id, course_id, outcome_id, mastery_score, last_practiced_at, review_count)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (student_id, course_id, outcome_id)
		DO UPDATE SET
			mastery_score = excluded.mastery_score,
			last_practiced_at = excluded.last_practiced_at,
			review_count = excluded.review_count
	`

	batch := &pgx.Batch{}
	for _, rec := range records {
		var practiced *time.Time
		if rec.Practiced() {
			t := rec.LastPracticedAt.UTC()
			practiced = &t
		}
		batch.Queue(query, studentID, courseID, rec.OutcomeID, rec.MasteryScore, practiced, rec.ReviewCount)
	}

	return pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
		return nil
	})
}

// DeleteCourse removes every record of a student in a course.
func (r *PostgresRepository) DeleteCourse(ctx context.Context, studentID, courseID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM outcome_mastery WHERE student_id = $1 AND course_id = $2`,
		studentID, courseID,
	)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}
