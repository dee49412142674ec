package course

import (
	"slices"
	"time"

	"github.com/tripjeju/courseapi/models"
)

// orderedContent lists the content of slots by planning date, then sequence.
func orderedContent(slots []models.CoursePlan) []int64 {
	content := make([]models.CoursePlan, 0, len(slots))
	for _, s := range slots {
		if !s.IsPlaceholder() {
			content = append(content, s)
		}
	}
	slices.SortStableFunc(content, func(a, b models.CoursePlan) int {
		if c := a.Day().Compare(b.Day()); c != 0 {
			return c
		}
		return sequenceOf(a) - sequenceOf(b)
	})

	ids := make([]int64, len(content))
	for i, s := range content {
		ids[i] = *s.ContentID
	}
	return ids
}

// redistribute deals contentIDs over sorted dates round robin: item k lands on
// dates[k % len(dates)]. Dates left without content get a placeholder.
func redistribute(courseID int64, contentIDs []int64, dates []time.Time) []models.CoursePlan {
	if len(dates) == 0 {
		return nil
	}
	perDate := make([][]int64, len(dates))
	for k, id := range contentIDs {
		i := k % len(dates)
		perDate[i] = append(perDate[i], id)
	}

	days := make([]parsedDay, len(dates))
	for i, date := range dates {
		days[i] = parsedDay{date: date, contentIDs: perDate[i]}
	}
	return layoutPlan(courseID, days)
}

// layoutPlan turns a parsed plan into rows, numbering sequences from 1 per date.
func layoutPlan(courseID int64, days []parsedDay) []models.CoursePlan {
	var rows []models.CoursePlan
	for _, d := range days {
		if len(d.contentIDs) == 0 {
			rows = append(rows, placeholderSlot(courseID, d.date))
			continue
		}
		for i, id := range d.contentIDs {
			rows = append(rows, contentSlot(courseID, d.date, id, i+1))
		}
	}
	return rows
}

// diffMembership compares course membership before and after an update. Only
// presence counts; an id listed several times is one member.
func diffMembership(existing map[int64]bool, next []int64) (toAdd, toRemove []int64) {
	nextSet := make(map[int64]bool, len(next))
	for _, id := range next {
		if !nextSet[id] && !existing[id] {
			toAdd = append(toAdd, id)
		}
		nextSet[id] = true
	}
	for id := range existing {
		if !nextSet[id] {
			toRemove = append(toRemove, id)
		}
	}
	slices.Sort(toAdd)
	slices.Sort(toRemove)
	return toAdd, toRemove
}

func sequenceOf(s models.CoursePlan) int {
	if s.Sequence == nil {
		return 0
	}
	return *s.Sequence
}
