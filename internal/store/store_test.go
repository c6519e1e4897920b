package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/revise/internal/mastery"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.DB() == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestWALMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revise.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	var mode string
	if err := s.DB().QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want %q", mode, "wal")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "revise.db")
	for i := 0; i < 2; i++ {
		s, err := Open(path)
		if err != nil {
			t.Fatalf("open #%d: %v", i+1, err)
		}
		s.Close()
	}
}

func TestCreateTableQuery(t *testing.T) {
	query, _ := createTableQuery()
	for _, want := range []string{
		"CREATE TABLE IF NOT EXISTS",
		masteryTable,
		"mastery_score",
		"last_practiced_at",
		"review_count",
		"PRIMARY KEY",
	} {
		if !strings.Contains(query, want) {
			t.Errorf("create table query missing %q:\n%s", want, query)
		}
	}
}

func TestRecordsEmpty(t *testing.T) {
	s := openTestStore(t)
	got, err := s.Records(context.Background(), "nobody", "nothing")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if got == nil {
		t.Fatal("expected empty non-nil slice")
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestUpsertRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	practiced := time.Date(2025, 1, 8, 9, 30, 0, 0, time.UTC)

	in := []mastery.OutcomeRecord{
		{OutcomeID: "o2", MasteryScore: 0.8, LastPracticedAt: practiced, ReviewCount: 3},
		{OutcomeID: "o1", MasteryScore: 0, ReviewCount: 0},
	}
	if err := s.Upsert(ctx, "s1", "c1", in); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := s.Records(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].OutcomeID != "o1" || got[1].OutcomeID != "o2" {
		t.Errorf("order = [%s %s], want [o1 o2]", got[0].OutcomeID, got[1].OutcomeID)
	}
	if got[0].Practiced() {
		t.Errorf("o1 should not be practiced, got %v", got[0].LastPracticedAt)
	}
	if !got[1].LastPracticedAt.Equal(practiced) {
		t.Errorf("o2 last practiced = %v, want %v", got[1].LastPracticedAt, practiced)
	}
	if got[1].MasteryScore != 0.8 || got[1].ReviewCount != 3 {
		t.Errorf("o2 = %+v", got[1])
	}

	// Other students and courses are isolated.
	other, err := s.Records(ctx, "s1", "c2")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("other course len = %d, want 0", len(other))
	}
}

func TestUpsertReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	practiced := time.Date(2025, 1, 8, 0, 0, 0, 0, time.UTC)

	if err := s.Upsert(ctx, "s1", "c1", []mastery.OutcomeRecord{
		{OutcomeID: "o1", MasteryScore: 0.4, LastPracticedAt: practiced, ReviewCount: 1},
	}); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if err := s.Upsert(ctx, "s1", "c1", []mastery.OutcomeRecord{
		{OutcomeID: "o1", MasteryScore: 0.9, LastPracticedAt: practiced.Add(24 * time.Hour), ReviewCount: 2},
	}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	got, err := s.Records(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].MasteryScore != 0.9 || got[0].ReviewCount != 2 {
		t.Errorf("got %+v, want score 0.9 and 2 reviews", got[0])
	}
}

func TestUpsertLargeBatch(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	n := upsertBatchSize*2 + 7
	in := make([]mastery.OutcomeRecord, n)
	for i := range in {
		in[i] = mastery.OutcomeRecord{OutcomeID: fmt.Sprintf("o%04d", i), MasteryScore: 0.5}
	}
	if err := s.Upsert(ctx, "s1", "c1", in); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.Records(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(got) != n {
		t.Errorf("len = %d, want %d", len(got), n)
	}
}

func TestUpsertRejectsInvalid(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		student string
		records []mastery.OutcomeRecord
	}{
		{"empty student", "", []mastery.OutcomeRecord{{OutcomeID: "o1", MasteryScore: 0.5}}},
		{"empty outcome", "s1", []mastery.OutcomeRecord{{MasteryScore: 0.5}}},
		{"score above one", "s1", []mastery.OutcomeRecord{{OutcomeID: "o1", MasteryScore: 1.5}}},
		{"negative reviews", "s1", []mastery.OutcomeRecord{{OutcomeID: "o1", MasteryScore: 0.5, ReviewCount: -1}}},
	}
	for _, tt := range tests {
		if err := s.Upsert(ctx, tt.student, "c1", tt.records); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}

	got, err := s.Records(ctx, "s1", "c1")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("rejected upserts wrote %d records", len(got))
	}
}

func TestDeleteCourse(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := []mastery.OutcomeRecord{{OutcomeID: "o1", MasteryScore: 0.5}}
	if err := s.Upsert(ctx, "s1", "c1", rec); err != nil {
		t.Fatalf("upsert c1: %v", err)
	}
	if err := s.Upsert(ctx, "s1", "c2", rec); err != nil {
		t.Fatalf("upsert c2: %v", err)
	}
	if err := s.DeleteCourse(ctx, "s1", "c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if got, _ := s.Records(ctx, "s1", "c1"); len(got) != 0 {
		t.Errorf("c1 len = %d after delete, want 0", len(got))
	}
	if got, _ := s.Records(ctx, "s1", "c2"); len(got) != 1 {
		t.Errorf("c2 len = %d, want 1", len(got))
	}
}

func TestRecordsHonorsCanceledContext(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Records(ctx, "s1", "c1"); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestDefaultDBPath(t *testing.T) {
	dir := t.TempDir()

	t.Run("env override", func(t *testing.T) {
		want := filepath.Join(dir, "custom", "my.db")
		t.Setenv("REVISE_DB", want)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("xdg data home", func(t *testing.T) {
		t.Setenv("REVISE_DB", "")
		t.Setenv("XDG_DATA_HOME", dir)
		got, err := DefaultDBPath()
		if err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "revise", "revise.db")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}
