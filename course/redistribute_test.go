package course

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tripjeju/courseapi/models"
)

type row struct {
	date    string
	content int64
	seq     int
}

func rows(plans []models.CoursePlan) []row {
	out := make([]row, 0, len(plans))
	for _, p := range plans {
		r := row{date: p.PlanningDate.Format(models.DateLayout)}
		if !p.IsPlaceholder() {
			r.content, r.seq = *p.ContentID, *p.Sequence
		}
		out = append(out, r)
	}
	return out
}

func TestOrderedContent(t *testing.T) {
	slots := []models.CoursePlan{
		slot(1, "2025-01-02", 30, 2),
		slot(2, "2025-01-01", 10, 2),
		placeholder(3, "2025-01-03"),
		slot(4, "2025-01-02", 20, 1),
		slot(5, "2025-01-01", 5, 1),
	}

	assert.Equal(t, []int64{5, 10, 20, 30}, orderedContent(slots))
}

func TestRedistribute_RoundRobin(t *testing.T) {
	dates := []time.Time{day("2025-02-01"), day("2025-02-02")}

	got := redistribute(1, []int64{1, 2, 3, 4, 5}, dates)

	assert.Equal(t, []row{
		{"2025-02-01", 1, 1},
		{"2025-02-01", 3, 2},
		{"2025-02-01", 5, 3},
		{"2025-02-02", 2, 1},
		{"2025-02-02", 4, 2},
	}, rows(got))
}

func TestRedistribute_MoreDatesThanContent(t *testing.T) {
	dates := []time.Time{day("2025-02-01"), day("2025-02-02"), day("2025-02-03")}

	got := redistribute(1, []int64{7}, dates)

	assert.Equal(t, []row{
		{"2025-02-01", 7, 1},
		{date: "2025-02-02"},
		{date: "2025-02-03"},
	}, rows(got))
}

func TestRedistribute_NoContent(t *testing.T) {
	dates := []time.Time{day("2025-02-01"), day("2025-02-02")}

	got := redistribute(1, nil, dates)

	assert.Equal(t, []row{{date: "2025-02-01"}, {date: "2025-02-02"}}, rows(got))
	assert.Nil(t, redistribute(1, []int64{1}, nil))
}

func TestLayoutPlan(t *testing.T) {
	days := []parsedDay{
		{date: day("2025-01-01"), contentIDs: []int64{3, 1}},
		{date: day("2025-01-02")},
	}

	assert.Equal(t, []row{
		{"2025-01-01", 3, 1},
		{"2025-01-01", 1, 2},
		{date: "2025-01-02"},
	}, rows(layoutPlan(9, days)))
}

func TestDiffMembership(t *testing.T) {
	existing := map[int64]bool{1: true, 2: true, 3: true}

	toAdd, toRemove := diffMembership(existing, []int64{4, 2, 3, 4})
	assert.Equal(t, []int64{4}, toAdd)
	assert.Equal(t, []int64{1}, toRemove)

	toAdd, toRemove = diffMembership(existing, []int64{3, 2, 1})
	assert.Empty(t, toAdd)
	assert.Empty(t, toRemove)

	toAdd, toRemove = diffMembership(nil, []int64{2, 1})
	assert.Equal(t, []int64{1, 2}, toAdd)
	assert.Empty(t, toRemove)
}
