package mastery

import (
	"fmt"
	"math"
	"time"
)

// OutcomeRecord holds the stored mastery data for one curriculum outcome of a
// student in a course. Records are read-only snapshots; nothing in the
// scheduler mutates them.
type OutcomeRecord struct {
	OutcomeID       string    `json:"outcome_id"`
	MasteryScore    float64   `json:"mastery_score"`
	LastPracticedAt time.Time `json:"last_practiced_at"`
	ReviewCount     int       `json:"review_count"`
}

// Practiced reports whether the outcome has ever been practiced.
func (r OutcomeRecord) Practiced() bool {
	return !r.LastPracticedAt.IsZero()
}

// Key identifies the record set of one student in one course.
type Key struct {
	StudentID string
	CourseID  string
}

func (k Key) String() string {
	return k.StudentID + "/" + k.CourseID
}

// Validate checks the stored-value invariants of a record.
func (r OutcomeRecord) Validate() error {
	switch {
	case r.OutcomeID == "":
		return fmt.Errorf("outcome id is empty")
	case math.IsNaN(r.MasteryScore) || r.MasteryScore < 0 || r.MasteryScore > 1:
		return fmt.Errorf("outcome %q: mastery score %v not in [0, 1]", r.OutcomeID, r.MasteryScore)
	case r.ReviewCount < 0:
		return fmt.Errorf("outcome %q: negative review count %d", r.OutcomeID, r.ReviewCount)
	}
	return nil
}
