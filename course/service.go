// Package course implements itinerary writes and reads: appending content to
// dated slots, redistributing a course over new dates, reconciling a full plan
// update, and keeping catalog plan counters in step, each write in a single
// transaction.
package course

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/models"
)

// DefaultNamePrefix is used for auto-numbered course names.
const DefaultNamePrefix = "내 코스"

// Service runs course operations against a Store.
type Service struct {
	store      Store
	resolver   *catalog.Resolver
	counter    *catalog.Counter
	logger     *zap.Logger
	now        func() time.Time
	namePrefix string
	maxPerDay  int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithResolver sets the content resolver, e.g. one backed by a cache.
func WithResolver(r *catalog.Resolver) Option {
	return func(s *Service) { s.resolver = r }
}

// WithClock overrides the source of "today" for courses without dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithNamePrefix sets the prefix of default course names.
func WithNamePrefix(prefix string) Option {
	return func(s *Service) {
		if prefix != "" {
			s.namePrefix = prefix
		}
	}
}

// WithMaxSlotsPerDay caps how many content slots an append may grow an
// existing date to before moving on. Zero means no cap, so every item drains
// into the first date; a cap of 1 spills each item onto a new date.
func WithMaxSlotsPerDay(n int) Option {
	return func(s *Service) { s.maxPerDay = n }
}

// NewService creates a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:      store,
		logger:     zap.NewNop(),
		now:        time.Now,
		namePrefix: DefaultNamePrefix,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = catalog.NewResolver(nil, s.logger)
	}
	s.counter = catalog.NewCounter(s.resolver)
	return s
}

// Created is returned by Create.
type Created struct {
	CourseID   int64  `json:"courseId"`
	CourseName string `json:"courseName"`
}

// Summary is one entry of a user's course list.
type Summary struct {
	CourseID     int64  `json:"courseId"`
	CourseName   string `json:"courseName"`
	ContentCount int    `json:"contentCount"`
	FirstImage   string `json:"firstimage"`
}

// Create stores a new course for userID laid out as plan and counts every
// distinct content id once.
func (s *Service) Create(ctx context.Context, userID int64, plan []DayPlan) (*Created, error) {
	days, err := parsePlan(plan)
	if err != nil {
		return nil, err
	}

	var out *Created
	err = s.store.RunInTx(ctx, func(ctx context.Context, w Writer) error {
		n, err := w.CountCourses(ctx, userID)
		if err != nil {
			return err
		}
		c := &models.Course{
			UserID:     userID,
			CourseName: fmt.Sprintf("%s-%d", s.namePrefix, n+1),
		}
		if err := w.InsertCourse(ctx, c); err != nil {
			return err
		}
		if rows := layoutPlan(c.CourseID, days); len(rows) > 0 {
			if err := w.InsertPlans(ctx, rows); err != nil {
				return err
			}
		}
		if err := s.counter.Adjust(ctx, w, planContent(days), catalog.Increment); err != nil {
			return err
		}
		out = &Created{CourseID: c.CourseID, CourseName: c.CourseName}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("course created",
		zap.Int64("user_id", userID),
		zap.Int64("course_id", out.CourseID),
		zap.Int("days", len(days)))
	return out, nil
}

// Append adds contentIDs to a course and returns the course name. Nothing is
// changed when any id is already in the course or requested twice.
func (s *Service) Append(ctx context.Context, userID, courseID int64, contentIDs []int64) (string, error) {
	var name string
	err := s.store.RunInTx(ctx, func(ctx context.Context, w Writer) error {
		c, err := w.FindCourse(ctx, courseID, userID)
		if err != nil {
			return err
		}
		slots, err := w.ListPlans(ctx, courseID)
		if err != nil {
			return err
		}
		if dup := duplicates(slots, contentIDs); len(dup) > 0 {
			return fmt.Errorf("%w: %v", ErrDuplicateContent, dup)
		}

		a := planAppend(courseID, slots, contentIDs, s.now(), s.maxPerDay)
		for _, f := range a.Fills {
			if err := w.FillPlan(ctx, f.PlanID, f.ContentID, f.Sequence); err != nil {
				return err
			}
		}
		if len(a.Drops) > 0 {
			if err := w.DeletePlansByID(ctx, a.Drops); err != nil {
				return err
			}
		}
		if len(a.Inserts) > 0 {
			if err := w.InsertPlans(ctx, a.Inserts); err != nil {
				return err
			}
		}
		if err := s.counter.Adjust(ctx, w, contentIDs, catalog.Increment); err != nil {
			return err
		}
		name = c.CourseName
		return nil
	})
	if err != nil {
		return "", err
	}

	s.logger.Info("content appended",
		zap.Int64("course_id", courseID),
		zap.Int("items", len(contentIDs)))
	return name, nil
}

// Replace renames a course and deals its content round robin over dates.
// Plan counters are untouched since membership does not change.
func (s *Service) Replace(ctx context.Context, userID, courseID int64, courseName string, dates []string) error {
	parsed, err := parseDates(dates)
	if err != nil {
		return err
	}
	courseName = strings.TrimSpace(courseName)

	err = s.store.RunInTx(ctx, func(ctx context.Context, w Writer) error {
		if _, err := w.FindCourse(ctx, courseID, userID); err != nil {
			return err
		}
		slots, err := w.ListPlans(ctx, courseID)
		if err != nil {
			return err
		}
		content := orderedContent(slots)
		if len(content) > 0 && len(parsed) == 0 {
			return fmt.Errorf("%w: at least one planning date is required", ErrInvalidDate)
		}

		if err := w.DeletePlans(ctx, courseID); err != nil {
			return err
		}
		if rows := redistribute(courseID, content, parsed); len(rows) > 0 {
			if err := w.InsertPlans(ctx, rows); err != nil {
				return err
			}
		}
		if courseName != "" {
			return w.RenameCourse(ctx, courseID, courseName)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("course replaced",
		zap.Int64("course_id", courseID),
		zap.Int("dates", len(parsed)))
	return nil
}

// DiffUpdate rewrites a course as plan. Counters move only for content that
// enters or leaves the course.
func (s *Service) DiffUpdate(ctx context.Context, userID, courseID int64, plan []DayPlan) error {
	days, err := parsePlan(plan)
	if err != nil {
		return err
	}

	var added, removed int
	err = s.store.RunInTx(ctx, func(ctx context.Context, w Writer) error {
		if _, err := w.FindCourse(ctx, courseID, userID); err != nil {
			return err
		}
		slots, err := w.ListPlans(ctx, courseID)
		if err != nil {
			return err
		}

		toAdd, toRemove := diffMembership(contentSet(slots), planContent(days))
		if err := s.counter.Adjust(ctx, w, toRemove, catalog.Decrement); err != nil {
			return err
		}
		if err := s.counter.Adjust(ctx, w, toAdd, catalog.Increment); err != nil {
			return err
		}

		if err := w.DeletePlans(ctx, courseID); err != nil {
			return err
		}
		if rows := layoutPlan(courseID, days); len(rows) > 0 {
			if err := w.InsertPlans(ctx, rows); err != nil {
				return err
			}
		}
		added, removed = len(toAdd), len(toRemove)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("course plan updated",
		zap.Int64("course_id", courseID),
		zap.Int("added", added),
		zap.Int("removed", removed))
	return nil
}

// Get assembles the itinerary of a course owned by userID.
func (s *Service) Get(ctx context.Context, userID, courseID int64) (*Itinerary, error) {
	c, err := s.store.FindCourse(ctx, courseID, userID)
	if err != nil {
		return nil, err
	}
	slots, err := s.store.ListPlans(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, c, slots, s.lookup)
}

// List summarises the courses of userID.
func (s *Service) List(ctx context.Context, userID int64) ([]Summary, error) {
	courses, err := s.store.ListCourses(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(courses))
	for _, c := range courses {
		slots, err := s.store.ListPlans(ctx, c.CourseID)
		if err != nil {
			return nil, err
		}
		sum := Summary{CourseID: c.CourseID, CourseName: c.CourseName}
		for _, slot := range slots {
			if slot.IsPlaceholder() {
				continue
			}
			sum.ContentCount++
			if sum.ContentCount > 1 {
				continue
			}
			_, row, err := s.lookup(ctx, *slot.ContentID)
			switch {
			case err == nil:
				sum.FirstImage = row.FirstImage
			case !skippable(err):
				return nil, err
			}
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *Service) lookup(ctx context.Context, contentID int64) (catalog.Table, *models.Content, error) {
	table, err := s.resolver.Resolve(ctx, s.store, contentID)
	if err != nil {
		return "", nil, err
	}
	row, err := s.store.FindContent(ctx, table, contentID)
	if err != nil {
		return "", nil, err
	}
	return table, row, nil
}
