package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/revise/internal/mastery"
)

// upsertBatchSize keeps a single INSERT well below SQLite's bound-variable limit.
const upsertBatchSize = 500

var masteryColumns = []string{
	"student_id",
	"course_id",
	"outcome_id",
	"mastery_score",
	"last_practiced_at",
	"review_count",
}

// Records implements mastery.Repository. Records come back ordered by outcome ID.
func (s *Store) Records(ctx context.Context, studentID, courseID string) ([]mastery.OutcomeRecord, error) {
	b := entsql.Dialect(dialect.SQLite)
	query, args := b.Select("outcome_id", "mastery_score", "last_practiced_at", "review_count").
		From(entsql.Table(masteryTable)).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		OrderBy("outcome_id").
		Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("query mastery records: %w", err)
	}
	defer rows.Close()

	records := make([]mastery.OutcomeRecord, 0)
	for rows.Next() {
		var (
			r         mastery.OutcomeRecord
			practiced sql.NullString
		)
		if err := rows.Scan(&r.OutcomeID, &r.MasteryScore, &practiced, &r.ReviewCount); err != nil {
			return nil, fmt.Errorf("scan mastery record: %w", err)
		}
		if practiced.Valid && practiced.String != "" {
			t, err := time.Parse(time.RFC3339Nano, practiced.String)
			if err != nil {
				return nil, fmt.Errorf("outcome %q: parse last_practiced_at: %w", r.OutcomeID, err)
			}
			r.LastPracticedAt = t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mastery records: %w", err)
	}
	return records, nil
}

// Upsert implements mastery.Writer. Existing rows with the same outcome ID
// are overwritten. The write is atomic across all batches.
func (s *Store) Upsert(ctx context.Context, studentID, courseID string, records []mastery.OutcomeRecord) error {
	if studentID == "" || courseID == "" {
		return fmt.Errorf("upsert: student and course ids are required")
	}
	for _, r := range records {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("upsert: %w", err)
		}
	}
	if len(records) == 0 {
		return nil
	}

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for start := 0; start < len(records); start += upsertBatchSize {
		end := min(start+upsertBatchSize, len(records))
		query, args := upsertQuery(studentID, courseID, records[start:end])
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			tx.Rollback()
			return fmt.Errorf("upsert mastery records: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DeleteCourse removes every record of a student in a course.
func (s *Store) DeleteCourse(ctx context.Context, studentID, courseID string) error {
	query, args := entsql.Dialect(dialect.SQLite).Delete(masteryTable).
		Where(entsql.And(
			entsql.EQ("student_id", studentID),
			entsql.EQ("course_id", courseID),
		)).
		Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("delete mastery records: %w", err)
	}
	return nil
}

func upsertQuery(studentID, courseID string, records []mastery.OutcomeRecord) (string, []any) {
	ins := entsql.Dialect(dialect.SQLite).Insert(masteryTable).Columns(masteryColumns...)
	for _, r := range records {
		ins.Values(studentID, courseID, r.OutcomeID, r.MasteryScore, formatPracticedAt(r.LastPracticedAt), r.ReviewCount)
	}
	ins.OnConflict(
		entsql.ConflictColumns("student_id", "course_id", "outcome_id"),
		entsql.ResolveWithNewValues(),
	)
	return ins.Query()
}

// formatPracticedAt returns nil for never-practiced outcomes so the column
// stays NULL.
func formatPracticedAt(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}
