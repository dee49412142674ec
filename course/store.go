package course

import (
	"context"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/models"
)

// Reader is the read side of a course store.
type Reader interface {
	catalog.Index

	// FindCourse returns ErrCourseNotFound unless the course exists and is owned by userID.
	FindCourse(ctx context.Context, courseID, userID int64) (*models.Course, error)
	ListCourses(ctx context.Context, userID int64) ([]models.Course, error)
	// ListPlans returns every slot of a course ordered by planning date, then
	// sequence with placeholders first.
	ListPlans(ctx context.Context, courseID int64) ([]models.CoursePlan, error)
	// FindContent returns catalog.ErrContentNotFound when the table has no such row.
	FindContent(ctx context.Context, table catalog.Table, contentID int64) (*models.Content, error)
}

// Writer is a Reader bound to an open transaction.
type Writer interface {
	Reader
	catalog.CounterStore

	CountCourses(ctx context.Context, userID int64) (int, error)
	InsertCourse(ctx context.Context, c *models.Course) error
	RenameCourse(ctx context.Context, courseID int64, name string) error
	InsertPlans(ctx context.Context, plans []models.CoursePlan) error
	FillPlan(ctx context.Context, planID, contentID int64, sequence int) error
	DeletePlans(ctx context.Context, courseID int64) error
	DeletePlansByID(ctx context.Context, planIDs []int64) error
}

// Store persists courses. RunInTx commits only when fn returns nil and rolls
// back on every other exit path.
type Store interface {
	Reader
	RunInTx(ctx context.Context, fn func(ctx context.Context, w Writer) error) error
}
