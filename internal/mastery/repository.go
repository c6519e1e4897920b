package mastery

import (
	"context"
	"errors"
	"sort"
	"sync"
)

// ErrNotFound is returned by repositories that can tell an unknown student or
// course apart from one without any records.
var ErrNotFound = errors.New("mastery: student or course not found")

// Repository reads the mastery records of a student in a course.
// A student who never engaged with a course yields an empty slice, not an error.
type Repository interface {
	Records(ctx context.Context, studentID, courseID string) ([]OutcomeRecord, error)
}

// Writer is implemented by repositories that can store records.
// The scheduler never writes; the import command does.
type Writer interface {
	Upsert(ctx context.Context, studentID, courseID string, records []OutcomeRecord) error
}

// MemoryRepository is an in-process Repository and Writer for tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	records  map[Key]map[string]OutcomeRecord
	students map[string]bool
	strict   bool
	err      error
}

// NewMemoryRepository creates an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		records:  make(map[Key]map[string]OutcomeRecord),
		students: make(map[string]bool),
	}
}

// Strict makes Records return ErrNotFound for students that were never added.
func (m *MemoryRepository) Strict() *MemoryRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.strict = true
	return m
}

// AddStudent registers a student without any records.
func (m *MemoryRepository) AddStudent(studentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[studentID] = true
}

// FailWith makes every subsequent read return err. Pass nil to clear.
func (m *MemoryRepository) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Upsert stores records, replacing existing ones with the same outcome ID.
func (m *MemoryRepository) Upsert(_ context.Context, studentID, courseID string, records []OutcomeRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key{StudentID: studentID, CourseID: courseID}
	set := m.records[key]
	if set == nil {
		set = make(map[string]OutcomeRecord, len(records))
		m.records[key] = set
	}
	for _, r := range records {
		set[r.OutcomeID] = r
	}
	m.students[studentID] = true
	return nil
}

// Records returns a copy of the stored records ordered by outcome ID.
func (m *MemoryRepository) Records(ctx context.Context, studentID, courseID string) ([]OutcomeRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	if m.strict && !m.students[studentID] {
		return nil, ErrNotFound
	}

	set := m.records[Key{StudentID: studentID, CourseID: courseID}]
	out := make([]OutcomeRecord, 0, len(set))
	for _, r := range set {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].OutcomeID < out[j].OutcomeID
	})
	return out, nil
}
