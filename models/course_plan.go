package models

import (
	"time"

	"github.com/uptrace/bun"
)

// DateLayout is the wire and storage format of a planning date.
const DateLayout = "2006-01-02"

// CoursePlan is one dated slot of a course. A slot without content is a
// placeholder that keeps its date alive; placeholders never carry a sequence.
type CoursePlan struct {
	bun.BaseModel `bun:"table:course_plans,alias:cp"`

	PlanID       int64     `bun:"plan_id,pk,autoincrement" json:"planId"`
	CourseID     int64     `bun:"course_id,notnull" json:"courseId"`
	PlanningDate time.Time `bun:"planning_date,type:date,notnull" json:"planningDate"`
	ContentID    *int64    `bun:"content_id" json:"contentId,omitempty"`
	Sequence     *int      `bun:"sequence" json:"sequence,omitempty"`
}

// IsPlaceholder reports whether the slot holds no content.
func (p *CoursePlan) IsPlaceholder() bool {
	return p.ContentID == nil
}

// Day returns the planning date truncated to a UTC calendar day.
func (p *CoursePlan) Day() time.Time {
	return Day(p.PlanningDate)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
