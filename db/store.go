package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/course"
	"github.com/tripjeju/courseapi/models"
)

// Store is the PostgreSQL course store.
type Store struct {
	queries
	db *bun.DB
}

// NewStore wraps an open bun database.
func NewStore(db *bun.DB) *Store {
	return &Store{queries: queries{db}, db: db}
}

// RunInTx runs fn inside one transaction, rolling back unless fn and the
// commit both succeed.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context, w course.Writer) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err = fn(ctx, queries{tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true

	return nil
}

// queries runs against either the database or an open transaction.
type queries struct {
	idb bun.IDB
}

func (q queries) TargetTable(ctx context.Context, contentID int64) (string, error) {
	var name string
	err := q.idb.NewSelect().
		Model((*models.ContentIndex)(nil)).
		Column("target_table").
		Where("content_id = ?", contentID).
		Scan(ctx, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", catalog.ErrContentNotFound
	}
	return name, err
}

func (q queries) FindCourse(ctx context.Context, courseID, userID int64) (*models.Course, error) {
	c := new(models.Course)
	err := q.idb.NewSelect().Model(c).
		Where("c.course_id = ?", courseID).
		Where("c.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, course.ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (q queries) ListCourses(ctx context.Context, userID int64) ([]models.Course, error) {
	var courses []models.Course
	err := q.idb.NewSelect().Model(&courses).
		Where("c.user_id = ?", userID).
		OrderExpr("c.course_id ASC").
		Scan(ctx)
	return courses, err
}

func (q queries) ListPlans(ctx context.Context, courseID int64) ([]models.CoursePlan, error) {
	var plans []models.CoursePlan
	err := q.idb.NewSelect().Model(&plans).
		Where("cp.course_id = ?", courseID).
		OrderExpr("cp.planning_date ASC, COALESCE(cp.sequence, 0) ASC, cp.plan_id ASC").
		Scan(ctx)
	return plans, err
}

func (q queries) FindContent(ctx context.Context, table catalog.Table, contentID int64) (*models.Content, error) {
	if _, err := catalog.ParseTable(string(table)); err != nil {
		return nil, err
	}

	row := new(models.Content)
	err := q.idb.NewSelect().
		TableExpr("? AS t", bun.Ident(table)).
		ColumnExpr("t.contentid").
		ColumnExpr("COALESCE(t.title, '') AS title").
		ColumnExpr("COALESCE(t.firstimage, '') AS firstimage").
		ColumnExpr("COALESCE(t.cat3, '') AS cat3").
		ColumnExpr("COALESCE(t.address, '') AS address").
		ColumnExpr("t.mapx, t.mapy").
		ColumnExpr("COALESCE(t.plan_count, 0) AS plan_count").
		Where("t.contentid = ?", contentID).
		Limit(1).
		Scan(ctx, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s row %d: %w", table, contentID, catalog.ErrContentNotFound)
		}
		return nil, err
	}
	return row, nil
}

func (q queries) AdjustPlanCount(ctx context.Context, table catalog.Table, contentID int64, dir catalog.Direction) error {
	if _, err := catalog.ParseTable(string(table)); err != nil {
		return err
	}

	upd := q.idb.NewUpdate().
		TableExpr("?", bun.Ident(table)).
		Where("contentid = ?", contentID)
	switch dir {
	case catalog.Increment:
		upd = upd.Set("plan_count = COALESCE(plan_count, 0) + 1")
	case catalog.Decrement:
		upd = upd.Set("plan_count = GREATEST(COALESCE(plan_count, 0) - 1, 0)")
	default:
		return fmt.Errorf("unknown counter direction %d", dir)
	}

	_, err := upd.Exec(ctx)
	return err
}

// FindUser looks up a user by name.
func (s *Store) FindUser(ctx context.Context, username string) (*models.User, error) {
	u := new(models.User)
	if err := s.db.NewSelect().Model(u).Where("username = ?", username).Scan(ctx); err != nil {
		return nil, err
	}
	return u, nil
}

// SaveUser creates u or replaces the password of an existing user of that name.
func (s *Store) SaveUser(ctx context.Context, u *models.User) error {
	_, err := s.db.NewInsert().Model(u).
		On("CONFLICT (username) DO UPDATE SET password = EXCLUDED.password").
		Returning("id").
		Exec(ctx)
	return err
}

func (q queries) CountCourses(ctx context.Context, userID int64) (int, error) {
	return q.idb.NewSelect().
		Model((*models.Course)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}

func (q queries) InsertCourse(ctx context.Context, c *models.Course) error {
	_, err := q.idb.NewInsert().Model(c).Exec(ctx)
	return err
}

func (q queries) RenameCourse(ctx context.Context, courseID int64, name string) error {
	_, err := q.idb.NewUpdate().
		Model((*models.Course)(nil)).
		Set("course_name = ?", name).
		Where("course_id = ?", courseID).
		Exec(ctx)
	return err
}

func (q queries) InsertPlans(ctx context.Context, plans []models.CoursePlan) error {
	_, err := q.idb.NewInsert().Model(&plans).Exec(ctx)
	return err
}

func (q queries) FillPlan(ctx context.Context, planID, contentID int64, sequence int) error {
	_, err := q.idb.NewUpdate().
		Model((*models.CoursePlan)(nil)).
		Set("content_id = ?", contentID).
		Set("sequence = ?", sequence).
		Where("plan_id = ?", planID).
		Exec(ctx)
	return err
}

func (q queries) DeletePlans(ctx context.Context, courseID int64) error {
	_, err := q.idb.NewDelete().
		Model((*models.CoursePlan)(nil)).
		Where("course_id = ?", courseID).
		Exec(ctx)
	return err
}

func (q queries) DeletePlansByID(ctx context.Context, planIDs []int64) error {
	_, err := q.idb.NewDelete().
		Model((*models.CoursePlan)(nil)).
		Where("plan_id IN (?)", bun.In(planIDs)).
		Exec(ctx)
	return err
}

var (
	_ course.Store  = (*Store)(nil)
	_ course.Writer = queries{}
)
