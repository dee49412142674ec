package course

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/models"
)

type lookupResult struct {
	table catalog.Table
	row   *models.Content
	err   error
}

func fakeLookup(results map[int64]lookupResult) contentLookup {
	return func(_ context.Context, id int64) (catalog.Table, *models.Content, error) {
		r, ok := results[id]
		if !ok {
			return "", nil, catalog.ErrContentNotFound
		}
		return r.table, r.row, r.err
	}
}

func TestAssemble(t *testing.T) {
	x, y := 126.53, 33.49
	c := &models.Course{CourseID: 4, CourseName: "weekend"}
	slots := []models.CoursePlan{
		slot(1, "2025-01-01", 10, 1),
		slot(2, "2025-01-01", 11, 2),
		slot(3, "2025-01-01", 12, 3),
		placeholder(4, "2025-01-02"),
		slot(5, "2025-01-03", 13, 1),
	}
	lookup := fakeLookup(map[int64]lookupResult{
		10: {table: catalog.Food, row: &models.Content{ContentID: 10, Title: "noodles", MapX: &x, MapY: &y}},
		11: {err: catalog.ErrInvalidTargetTable},
		13: {table: catalog.Lodging, row: &models.Content{ContentID: 13, Title: "hotel", FirstImage: "h.jpg"}},
	})

	it, err := assemble(context.Background(), c, slots, lookup)
	require.NoError(t, err)

	assert.Equal(t, int64(4), it.CourseID)
	assert.Equal(t, "weekend", it.CourseName)
	assert.Equal(t, 3, it.TotalDays)
	assert.Equal(t, 4, it.TotalItems)
	require.Len(t, it.Plans, 3)

	assert.Equal(t, "2025-01-01", it.Plans[0].Date)
	require.Len(t, it.Plans[0].Contents, 1)
	first := it.Plans[0].Contents[0]
	assert.Equal(t, int64(10), first.ContentID)
	assert.Equal(t, "food_main", first.Category)
	assert.Equal(t, 1, first.Sequence)
	assert.Equal(t, &x, first.MapX)

	assert.Equal(t, "2025-01-02", it.Plans[1].Date)
	assert.Empty(t, it.Plans[1].Contents)
	assert.NotNil(t, it.Plans[1].Contents)

	assert.Equal(t, "hotel", it.Plans[2].Contents[0].Title)
	assert.Equal(t, "h.jpg", it.Plans[2].Contents[0].FirstImage)
}

func TestAssemble_StorageErrorAborts(t *testing.T) {
	boom := errors.New("connection reset")
	lookup := fakeLookup(map[int64]lookupResult{10: {err: boom}})

	_, err := assemble(context.Background(), &models.Course{}, []models.CoursePlan{slot(1, "2025-01-01", 10, 1)}, lookup)
	assert.ErrorIs(t, err, boom)
}

func TestAssemble_Empty(t *testing.T) {
	it, err := assemble(context.Background(), &models.Course{CourseID: 1}, nil, fakeLookup(nil))
	require.NoError(t, err)
	assert.Zero(t, it.TotalDays)
	assert.Zero(t, it.TotalItems)
	assert.NotNil(t, it.Plans)
}
