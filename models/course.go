package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Course is a user-owned, named multi-day itinerary.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`

	CourseID   int64     `bun:"course_id,pk,autoincrement" json:"courseId"`
	UserID     int64     `bun:"user_id,notnull" json:"userId"`
	CourseName string    `bun:"course_name,notnull" json:"courseName"`
	CreatedAt  time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"createdAt"`
}
