package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// OutcomeMastery stores the latest mastery measurement of one outcome for a
// student in a course.
type OutcomeMastery struct {
	ent.Schema
}

func (OutcomeMastery) Fields() []ent.Field {
	return []ent.Field{
		field.String("student_id").NotEmpty(),
		field.String("course_id").NotEmpty(),
		field.String("outcome_id").NotEmpty(),
		field.Float("mastery_score").
			Min(0).
			Max(1),
		field.String("last_practiced_at").
			Optional().
			Comment("RFC3339 UTC timestamp; empty when never practiced"),
		field.Int("review_count").
			NonNegative().
			Default(0),
	}
}

func (OutcomeMastery) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("student_id", "course_id", "outcome_id").Unique(),
	}
}
