// cmd/migrate/main.go
// Migrates courses and the content catalog from the legacy MySQL database into
// the local PostgreSQL database.
//
// Usage:
//
//	MYSQL_DSN="user:pass@tcp(host:3306)/jeju?parseTime=true" \
//	DB_PASS="pgpass" \
//	go run ./cmd/migrate
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	"github.com/uptrace/bun"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/config"
	bundb "github.com/tripjeju/courseapi/db"
	"github.com/tripjeju/courseapi/models"
)

const batchSize = 500

// lockedPassword never matches a bcrypt comparison; legacy users signed in
// through an external provider and must be given a password with adduser.
const lockedPassword = "!"

func main() {
	ctx := context.Background()

	cfg := config.Load()
	if cfg.InMemory() {
		log.Fatal("migrate needs a PostgreSQL database, DATABASE_URL is set to memory")
	}

	// --- MySQL ---
	if cfg.MySQLDSN == "" {
		log.Fatal("MYSQL_DSN required, e.g.: user:pass@tcp(host:3306)/jeju?parseTime=true")
	}
	myDB, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("open mysql: %v", err)
	}
	defer myDB.Close()
	myDB.SetMaxOpenConns(4)
	if err := myDB.PingContext(ctx); err != nil {
		log.Fatalf("ping mysql: %v", err)
	}
	log.Println("connected to MySQL")

	// --- PostgreSQL ---
	pgDB := bundb.Setup(cfg)
	defer pgDB.Close()
	log.Println("connected to PostgreSQL")

	// Create tables (idempotent)
	if err := bundb.CreateTables(ctx, pgDB); err != nil {
		log.Fatalf("create tables: %v", err)
	}

	// Disable FK enforcement so we can load in bulk without strict ordering
	if _, err := pgDB.ExecContext(ctx, "SET session_replication_role = 'replica'"); err != nil {
		log.Fatalf("disable FK: %v", err)
	}
	defer func() {
		if _, err := pgDB.ExecContext(ctx, "SET session_replication_role = 'origin'"); err != nil {
			log.Printf("re-enable FK: %v", err)
		}
	}()

	steps := []struct {
		name string
		fn   func() (int, error)
	}{
		{"users", func() (int, error) { return migrateUsers(ctx, myDB, pgDB) }},
		{"courses", func() (int, error) { return migrateCourses(ctx, myDB, pgDB) }},
		{"course_plans", func() (int, error) { return migratePlans(ctx, myDB, pgDB) }},
		{"content_index", func() (int, error) { return migrateIndex(ctx, myDB, pgDB) }},
	}
	for _, t := range catalog.Tables {
		steps = append(steps, struct {
			name string
			fn   func() (int, error)
		}{string(t), func() (int, error) { return migrateCategory(ctx, myDB, pgDB, t) }})
	}

	for _, s := range steps {
		n, err := s.fn()
		if err != nil {
			log.Fatalf("migrate %s: %v", s.name, err)
		}
		log.Printf("%-15s  %d rows migrated", s.name, n)
	}

	resetSequences(ctx, pgDB)
	log.Println("migration complete")
}

// --- helpers ---

func nullInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	return &n.Int64
}

func nullInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullFloat(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	return &n.Float64
}

// bulkInsert inserts a batch, skipping rows that already exist (idempotent re-runs).
func bulkInsert[T any](ctx context.Context, pgDB *bun.DB, rows []T) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := pgDB.NewInsert().Model(&rows).On("CONFLICT DO NOTHING").Exec(ctx)
	return err
}

// copyRows streams query results through scan into batched inserts.
func copyRows[T any](ctx context.Context, myDB *sql.DB, query string, scan func(*sql.Rows) (T, error), insert func([]T) error) (int, error) {
	rows, err := myDB.QueryContext(ctx, query)
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var batch []T
	total := 0
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return total, err
		}
		batch = append(batch, r)
		if len(batch) >= batchSize {
			if err := insert(batch); err != nil {
				return total, err
			}
			total += len(batch)
			batch = batch[:0]
		}
	}
	if err := rows.Err(); err != nil {
		return total, err
	}
	if len(batch) > 0 {
		if err := insert(batch); err != nil {
			return total, err
		}
	}
	return total + len(batch), nil
}

// --- per-table migrations ---

func migrateUsers(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, "SELECT id FROM user_info",
		func(rows *sql.Rows) (models.User, error) {
			var r models.User
			err := rows.Scan(&r.ID)
			r.Username = "legacy-" + strconv.FormatInt(r.ID, 10)
			r.Password = lockedPassword
			return r, err
		},
		func(b []models.User) error { return bulkInsert(ctx, pgDB, b) })
}

func migrateCourses(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, "SELECT courseId, userId, courseName FROM courses",
		func(rows *sql.Rows) (models.Course, error) {
			var r models.Course
			var name sql.NullString
			err := rows.Scan(&r.CourseID, &r.UserID, &name)
			r.CourseName = name.String
			return r, err
		},
		func(b []models.Course) error { return bulkInsert(ctx, pgDB, b) })
}

func migratePlans(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	rows, err := myDB.QueryContext(ctx,
		"SELECT planId, courseId, planning_date, contentId, sequence FROM course_plans")
	if err != nil {
		return 0, err
	}
	defer rows.Close()

	var legacy []models.CoursePlan
	for rows.Next() {
		var r models.CoursePlan
		var content, seq sql.NullInt64
		if err := rows.Scan(&r.PlanID, &r.CourseID, &r.PlanningDate, &content, &seq); err != nil {
			return 0, err
		}
		r.ContentID = nullInt64(content)
		r.Sequence = nullInt(seq)
		legacy = append(legacy, r)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	plans, dropped := normalizePlans(legacy)
	if dropped > 0 {
		log.Printf("course_plans: dropped %d surplus placeholder rows", dropped)
	}
	for start := 0; start < len(plans); start += batchSize {
		if err := bulkInsert(ctx, pgDB, plans[start:min(start+batchSize, len(plans))]); err != nil {
			return start, err
		}
	}
	return len(plans), nil
}

func migrateIndex(ctx context.Context, myDB *sql.DB, pgDB *bun.DB) (int, error) {
	return copyRows(ctx, myDB, "SELECT contentsid, target_table, title FROM main_total_v2",
		func(rows *sql.Rows) (models.ContentIndex, error) {
			var r models.ContentIndex
			var title sql.NullString
			err := rows.Scan(&r.ContentID, &r.TargetTable, &title)
			r.Title = title.String
			return r, err
		},
		func(b []models.ContentIndex) error { return bulkInsert(ctx, pgDB, b) })
}

func migrateCategory(ctx context.Context, myDB *sql.DB, pgDB *bun.DB, t catalog.Table) (int, error) {
	// t comes from the allow-list, so it is safe to format into the query.
	query := fmt.Sprintf(
		"SELECT contentid, title, firstimage, cat3, address, mapx, mapy, plan_count FROM %s", t)
	return copyRows(ctx, myDB, query,
		func(rows *sql.Rows) (models.Content, error) {
			var r models.Content
			var title, image, cat3, addr sql.NullString
			var mapx, mapy sql.NullFloat64
			var count sql.NullInt64
			err := rows.Scan(&r.ContentID, &title, &image, &cat3, &addr, &mapx, &mapy, &count)
			r.Title, r.FirstImage, r.Cat3, r.Address = title.String, image.String, cat3.String, addr.String
			r.MapX, r.MapY = nullFloat(mapx), nullFloat(mapy)
			r.PlanCount = int(count.Int64)
			return r, err
		},
		func(b []models.Content) error {
			_, err := pgDB.NewInsert().Model(&b).
				ModelTableExpr("?", bun.Ident(t)).
				On("CONFLICT DO NOTHING").
				Exec(ctx)
			return err
		})
}

// resetSequences advances each PG sequence to MAX(id) so new inserts don't conflict.
func resetSequences(ctx context.Context, pgDB *bun.DB) {
	seqs := []struct{ seq, table, col string }{
		{"users_id_seq", "users", "id"},
		{"courses_course_id_seq", "courses", "course_id"},
		{"course_plans_plan_id_seq", "course_plans", "plan_id"},
	}
	for _, s := range seqs {
		q := fmt.Sprintf(
			"SELECT setval('%s', COALESCE((SELECT MAX(%s) FROM %s), 1))",
			s.seq, s.col, s.table,
		)
		if _, err := pgDB.ExecContext(ctx, q); err != nil {
			log.Printf("reset seq %s: %v", s.seq, err)
		}
	}
	log.Println("sequences reset")
}
