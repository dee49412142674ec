// Package memory is an in-process course store used for development and tests.
package memory

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/course"
	"github.com/tripjeju/courseapi/models"
)

// ErrUserNotFound is returned by FindUser for unknown names.
var ErrUserNotFound = errors.New("user not found")

type state struct {
	courses    map[int64]models.Course
	plans      map[int64]models.CoursePlan
	index      map[int64]string
	users      map[string]models.User
	contents   map[catalog.Table]map[int64]models.Content
	nextCourse int64
	nextPlan   int64
}

func (s *state) clone() *state {
	c := &state{
		courses:    make(map[int64]models.Course, len(s.courses)),
		plans:      make(map[int64]models.CoursePlan, len(s.plans)),
		index:      make(map[int64]string, len(s.index)),
		users:      make(map[string]models.User, len(s.users)),
		contents:   make(map[catalog.Table]map[int64]models.Content, len(s.contents)),
		nextCourse: s.nextCourse,
		nextPlan:   s.nextPlan,
	}
	for k, v := range s.courses {
		c.courses[k] = v
	}
	for k, v := range s.plans {
		c.plans[k] = clonePlan(v)
	}
	for k, v := range s.index {
		c.index[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for t, rows := range s.contents {
		m := make(map[int64]models.Content, len(rows))
		for k, v := range rows {
			m[k] = v
		}
		c.contents[t] = m
	}
	return c
}

// Store keeps courses in memory. Transactions are serialised and work on a
// copy that replaces the live state only on success.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex
	st   *state
}

// New creates an empty store.
func New() *Store {
	return &Store{st: &state{
		courses:  make(map[int64]models.Course),
		plans:    make(map[int64]models.CoursePlan),
		index:    make(map[int64]string),
		users:    make(map[string]models.User),
		contents: make(map[catalog.Table]map[int64]models.Content),
	}}
}

// AddContent registers a content row in table and indexes it.
func (s *Store) AddContent(table catalog.Table, c models.Content) {
	s.update(func(st *state) {
		st.index[c.ContentID] = string(table)
		if st.contents[table] == nil {
			st.contents[table] = make(map[int64]models.Content)
		}
		st.contents[table][c.ContentID] = c
	})
}

// IndexContent maps a content id to a raw table name without adding a row.
func (s *Store) IndexContent(contentID int64, table string) {
	s.update(func(st *state) { st.index[contentID] = table })
}

// AddUser stores u, assigning the next id.
func (s *Store) AddUser(u models.User) models.User {
	s.update(func(st *state) {
		if old, ok := st.users[u.Username]; ok {
			u.ID = old.ID
		} else {
			u.ID = int64(len(st.users) + 1)
		}
		st.users[u.Username] = u
	})
	return u
}

// FindUser looks up a user by name.
func (s *Store) FindUser(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.st.users[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

func (s *Store) update(fn func(st *state)) {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.st.clone()
	fn(st)
	s.st = st
}

// PlanCount returns the plan_count of a content row, or -1 if it is unknown.
func (s *Store) PlanCount(contentID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rows := range s.st.contents {
		if c, ok := rows[contentID]; ok {
			return c.PlanCount
		}
	}
	return -1
}

// RunInTx implements course.Store.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, w course.Writer) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.st.clone()
	s.mu.RUnlock()

	if err := fn(ctx, &view{st: work}); err != nil {
		return err
	}

	s.mu.Lock()
	s.st = work
	s.mu.Unlock()
	return nil
}

func (s *Store) read() *view {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &view{st: s.st}
}

// Reads outside a transaction see the last committed state, which is never
// mutated once published.

func (s *Store) TargetTable(ctx context.Context, contentID int64) (string, error) {
	return s.read().TargetTable(ctx, contentID)
}

func (s *Store) FindCourse(ctx context.Context, courseID, userID int64) (*models.Course, error) {
	return s.read().FindCourse(ctx, courseID, userID)
}

func (s *Store) ListCourses(ctx context.Context, userID int64) ([]models.Course, error) {
	return s.read().ListCourses(ctx, userID)
}

func (s *Store) ListPlans(ctx context.Context, courseID int64) ([]models.CoursePlan, error) {
	return s.read().ListPlans(ctx, courseID)
}

func (s *Store) FindContent(ctx context.Context, table catalog.Table, contentID int64) (*models.Content, error) {
	return s.read().FindContent(ctx, table, contentID)
}

// view implements course.Writer over one state.
type view struct {
	st *state
}

func (v *view) TargetTable(_ context.Context, contentID int64) (string, error) {
	name, ok := v.st.index[contentID]
	if !ok {
		return "", catalog.ErrContentNotFound
	}
	return name, nil
}

func (v *view) FindCourse(_ context.Context, courseID, userID int64) (*models.Course, error) {
	c, ok := v.st.courses[courseID]
	if !ok || c.UserID != userID {
		return nil, course.ErrCourseNotFound
	}
	return &c, nil
}

func (v *view) ListCourses(_ context.Context, userID int64) ([]models.Course, error) {
	var out []models.Course
	for _, c := range v.st.courses {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b models.Course) int { return cmp.Compare(a.CourseID, b.CourseID) })
	return out, nil
}

func (v *view) ListPlans(_ context.Context, courseID int64) ([]models.CoursePlan, error) {
	var out []models.CoursePlan
	for _, p := range v.st.plans {
		if p.CourseID == courseID {
			out = append(out, clonePlan(p))
		}
	}
	slices.SortFunc(out, func(a, b models.CoursePlan) int {
		return cmp.Or(
			a.Day().Compare(b.Day()),
			cmp.Compare(sequence(a), sequence(b)),
			cmp.Compare(a.PlanID, b.PlanID),
		)
	})
	return out, nil
}

func (v *view) FindContent(_ context.Context, table catalog.Table, contentID int64) (*models.Content, error) {
	c, ok := v.st.contents[table][contentID]
	if !ok {
		return nil, catalog.ErrContentNotFound
	}
	return &c, nil
}

func (v *view) AdjustPlanCount(_ context.Context, table catalog.Table, contentID int64, dir catalog.Direction) error {
	rows := v.st.contents[table]
	c, ok := rows[contentID]
	if !ok {
		// matches an UPDATE that touches no row
		return nil
	}
	switch dir {
	case catalog.Increment:
		c.PlanCount++
	case catalog.Decrement:
		c.PlanCount = max(c.PlanCount-1, 0)
	}
	rows[contentID] = c
	return nil
}

func (v *view) CountCourses(_ context.Context, userID int64) (int, error) {
	n := 0
	for _, c := range v.st.courses {
		if c.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (v *view) InsertCourse(_ context.Context, c *models.Course) error {
	v.st.nextCourse++
	c.CourseID = v.st.nextCourse
	v.st.courses[c.CourseID] = *c
	return nil
}

func (v *view) RenameCourse(_ context.Context, courseID int64, name string) error {
	c, ok := v.st.courses[courseID]
	if !ok {
		return course.ErrCourseNotFound
	}
	c.CourseName = name
	v.st.courses[courseID] = c
	return nil
}

func (v *view) InsertPlans(_ context.Context, plans []models.CoursePlan) error {
	for i := range plans {
		v.st.nextPlan++
		plans[i].PlanID = v.st.nextPlan
		v.st.plans[plans[i].PlanID] = clonePlan(plans[i])
	}
	return nil
}

func (v *view) FillPlan(_ context.Context, planID, contentID int64, seq int) error {
	p, ok := v.st.plans[planID]
	if !ok {
		return nil
	}
	p.ContentID = &contentID
	p.Sequence = &seq
	v.st.plans[planID] = p
	return nil
}

func (v *view) DeletePlans(_ context.Context, courseID int64) error {
	for id, p := range v.st.plans {
		if p.CourseID == courseID {
			delete(v.st.plans, id)
		}
	}
	return nil
}

func (v *view) DeletePlansByID(_ context.Context, planIDs []int64) error {
	for _, id := range planIDs {
		delete(v.st.plans, id)
	}
	return nil
}

func clonePlan(p models.CoursePlan) models.CoursePlan {
	if p.ContentID != nil {
		id := *p.ContentID
		p.ContentID = &id
	}
	if p.Sequence != nil {
		seq := *p.Sequence
		p.Sequence = &seq
	}
	return p
}

func sequence(p models.CoursePlan) int {
	if p.Sequence == nil {
		return 0
	}
	return *p.Sequence
}

var (
	_ course.Store  = (*Store)(nil)
	_ course.Writer = (*view)(nil)
)
