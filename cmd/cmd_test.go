package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/revise/internal/spacedrep"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

// setupWorkspace isolates a test in its own directory with its own database.
func setupWorkspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("REVISE_LOG_LEVEL", "error")
	return filepath.Join(dir, "revise.db")
}

func writeImportFile(t *testing.T, dir string) string {
	t.Helper()
	now := time.Now().UTC()
	content := fmt.Sprintf(`[
  {
    "student_id": "s1",
    "course_id": "c1",
    "records": [
      {"outcome_id": "weak", "mastery_score": 0.9, "last_practiced_at": %q, "review_count": 0},
      {"outcome_id": "fresh", "mastery_score": 1.0, "last_practiced_at": %q, "review_count": 5},
      {"outcome_id": "new", "mastery_score": 0}
    ]
  }
]`, now.Add(-10*24*time.Hour).Format(time.RFC3339), now.Add(-time.Hour).Format(time.RFC3339))

	path := filepath.Join(dir, "records.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestImportThenReview(t *testing.T) {
	db := setupWorkspace(t)
	file := writeImportFile(t, filepath.Dir(db))

	out, err := execute(t, "import", file, "--db", db)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Imported 3 records in 1 sets.")

	out, err = execute(t, "recommend", "s1", "c1", "--db", db, "--json", "--limit", "5")
	require.NoError(t, err, out)
	var items []spacedrep.RecommendationItem
	require.NoError(t, json.Unmarshal([]byte(out), &items), out)
	require.Len(t, items, 1)
	assert.Equal(t, "weak", items[0].OutcomeID)
	assert.Equal(t, spacedrep.StatusOverdue, items[0].Reason)

	out, err = execute(t, "stats", "s1", "c1", "--db", db, "--json")
	require.NoError(t, err, out)
	var stats spacedrep.ReviewStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats), out)
	assert.Equal(t, 3, stats.TotalOutcomes)
	assert.Equal(t, 1, stats.OverdueCount)
	assert.Equal(t, 1, stats.MasteredCount)
	assert.Equal(t, 1, stats.NotPracticedCount)

	out, err = execute(t, "schedule", "s1", "c1", "--db", db, "--json", "--horizon", "36600")
	require.NoError(t, err, out)
	var sched spacedrep.Schedule
	require.NoError(t, json.Unmarshal([]byte(out), &sched), out)
	assert.Len(t, sched.Recommendations, 1)
	var ids []string
	for _, e := range sched.Upcoming {
		ids = append(ids, e.OutcomeIDs...)
	}
	assert.ElementsMatch(t, []string{"weak", "fresh"}, ids)
}

func TestTableOutput(t *testing.T) {
	db := setupWorkspace(t)
	file := writeImportFile(t, filepath.Dir(db))
	_, err := execute(t, "import", file, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "stats", "s1", "c1", "--db", db, "--json=false")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Overall mastery:")

	out, err = execute(t, "upcoming", "s1", "c1", "--db", db, "--json=false", "--horizon", "1")
	require.NoError(t, err, out)
	assert.Contains(t, out, "weak")
	assert.NotContains(t, out, "fresh")
}

func TestResetRemovesRecords(t *testing.T) {
	db := setupWorkspace(t)
	file := writeImportFile(t, filepath.Dir(db))
	_, err := execute(t, "import", file, "--db", db)
	require.NoError(t, err)

	out, err := execute(t, "reset", "s1", "c1", "--db", db)
	require.NoError(t, err, out)

	out, err = execute(t, "stats", "s1", "c1", "--db", db, "--json")
	require.NoError(t, err, out)
	var stats spacedrep.ReviewStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats), out)
	assert.Zero(t, stats.TotalOutcomes)
}

func TestInvalidLimit(t *testing.T) {
	db := setupWorkspace(t)
	_, err := execute(t, "recommend", "s1", "c1", "--db", db, "--limit", "-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, spacedrep.ErrValidation)
}

func TestReadRecordSets(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":0.5}]}]`, ""},
		{"practiced at", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":0.5,"last_practiced_at":"2025-01-08T09:30:00Z","review_count":2}]}]`, ""},
		{"null practiced at", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":0.5,"last_practiced_at":null}]}]`, ""},
		{"missing student", `[{"course_id":"c","records":[]}]`, "schema validation failed"},
		{"empty course", `[{"student_id":"s","course_id":"","records":[]}]`, "schema validation failed"},
		{"bad score", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":3}]}]`, "schema validation failed"},
		{"negative reviews", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":0.5,"review_count":-1}]}]`, "schema validation failed"},
		{"fractional reviews", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":0.5,"review_count":1.5}]}]`, "schema validation failed"},
		{"bad timestamp", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":0.5,"last_practiced_at":"yesterday"}]}]`, "schema validation failed"},
		{"not an array", `{"student_id":"s","course_id":"c","records":[]}`, "schema validation failed"},
		{"duplicate", `[{"student_id":"s","course_id":"c","records":[{"outcome_id":"o","mastery_score":0.1},{"outcome_id":"o","mastery_score":0.2}]}]`, "duplicate outcome"},
		{"not json", `{`, "decode records"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sets, err := readRecordSets(strings.NewReader(tt.input), "-")
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Len(t, sets, 1)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestImportRejectsSchemaInvalidFile(t *testing.T) {
	db := setupWorkspace(t)
	path := filepath.Join(filepath.Dir(db), "bad.json")
	content := `[{"student_id":"s1","course_id":"c1","records":[
  {"outcome_id":"ok","mastery_score":0.5},
  {"outcome_id":"bad","mastery_score":1.5}
]}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := execute(t, "import", path, "--db", db, "--replace=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")

	out, err := execute(t, "stats", "s1", "c1", "--db", db, "--json")
	require.NoError(t, err, out)
	var stats spacedrep.ReviewStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats), out)
	assert.Zero(t, stats.TotalOutcomes)
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"abcdefghij", 8, "abcde..."},
		{"ñññññññññ", 6, "ñññ..."},
		{"数学数学数学", 5, "数学..."},
	}
	for _, tt := range tests {
		got := truncate(tt.in, tt.n)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
		if !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.n)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "revise (devel)\n", out)
}
