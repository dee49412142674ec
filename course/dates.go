package course

import (
	"fmt"
	"slices"
	"time"

	"github.com/tripjeju/courseapi/models"
)

// DayPlan is the content list requested for one date.
type DayPlan struct {
	Date       string  `json:"date"`
	ContentIDs []int64 `json:"contentIds"`
}

type parsedDay struct {
	date       time.Time
	contentIDs []int64
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// parseDates parses, sorts and de-duplicates planning dates.
func parseDates(in []string) ([]time.Time, error) {
	out := make([]time.Time, 0, len(in))
	for _, s := range in {
		t, err := parseDate(s)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return slices.CompactFunc(out, func(a, b time.Time) bool { return a.Equal(b) }), nil
}

// parsePlan validates every date of a plan. Entries repeating a date are
// merged into the first one, keeping content order.
func parsePlan(plan []DayPlan) ([]parsedDay, error) {
	out := make([]parsedDay, 0, len(plan))
	pos := make(map[time.Time]int, len(plan))
	for _, p := range plan {
		t, err := parseDate(p.Date)
		if err != nil {
			return nil, err
		}
		if i, ok := pos[t]; ok {
			out[i].contentIDs = append(out[i].contentIDs, p.ContentIDs...)
			continue
		}
		pos[t] = len(out)
		out = append(out, parsedDay{date: t, contentIDs: slices.Clone(p.ContentIDs)})
	}
	return out, nil
}

// planContent returns every content id of a parsed plan in order.
func planContent(days []parsedDay) []int64 {
	var ids []int64
	for _, d := range days {
		ids = append(ids, d.contentIDs...)
	}
	return ids
}
