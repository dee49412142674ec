package db

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/config"
	"github.com/tripjeju/courseapi/models"
)

// Setup opens a PostgreSQL connection using the provided config.
// Query logging is enabled in debug mode, or through BUNDEBUG=1|2.
func Setup(cfg *config.Config) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(
		pgdriver.WithDSN(cfg.PostgresDSN()),
		pgdriver.WithApplicationName("courseapi"),
	))
	sqldb.SetMaxOpenConns(16)
	sqldb.SetConnMaxIdleTime(5 * time.Minute)

	db := bun.NewDB(sqldb, pgdialect.New())
	db.AddQueryHook(bundebug.NewQueryHook(
		bundebug.WithEnabled(cfg.Debug),
		bundebug.WithVerbose(cfg.Debug),
		bundebug.FromEnv("BUNDEBUG"),
	))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	return db
}

// categoryDDL is shared by every category table; ? is the table identifier.
const categoryDDL = `CREATE TABLE IF NOT EXISTS ? (
	contentid  BIGINT PRIMARY KEY,
	title      TEXT NOT NULL DEFAULT '',
	firstimage TEXT NOT NULL DEFAULT '',
	cat3       TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	mapx       DOUBLE PRECISION,
	mapy       DOUBLE PRECISION,
	plan_count INTEGER DEFAULT 0
)`

// CreateTables creates all tables in dependency order.
func CreateTables(ctx context.Context, db *bun.DB) error {
	tables := []interface{}{
		(*models.User)(nil),
		(*models.Course)(nil),
		(*models.CoursePlan)(nil),
		(*models.ContentIndex)(nil),
	}

	for _, model := range tables {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("creating table for %T: %w", model, err)
		}
	}

	for _, t := range catalog.Tables {
		if _, err := db.ExecContext(ctx, categoryDDL, bun.Ident(t)); err != nil {
			return fmt.Errorf("creating category table %s: %w", t, err)
		}
	}

	constraints := []string{
		`DO $$ BEGIN IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'course_plans_course_fk') THEN ALTER TABLE course_plans ADD CONSTRAINT course_plans_course_fk FOREIGN KEY (course_id) REFERENCES courses (course_id) ON DELETE CASCADE; END IF; END $$`,
		`CREATE INDEX IF NOT EXISTS courses_user_idx ON courses (user_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS course_plans_sequence_uq ON course_plans (course_id, planning_date, sequence) WHERE content_id IS NOT NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS course_plans_placeholder_uq ON course_plans (course_id, planning_date) WHERE content_id IS NULL`,
	}
	for _, stmt := range constraints {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Printf("constraint: %v", err)
		}
	}

	return nil
}
