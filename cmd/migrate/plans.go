package main

import (
	"cmp"
	"slices"
	"time"

	"github.com/tripjeju/courseapi/models"
)

type planKey struct {
	courseID int64
	date     time.Time
}

// normalizePlans repairs legacy slots so each (course, date) either holds
// content numbered 1..N or a single placeholder. Legacy placeholder fills left
// sequence NULL and repeated dates produced clashing sequences, so content is
// ordered by its old sequence (NULL first), then plan id, and renumbered.
// Placeholders beside content, and all but the first placeholder of a date,
// are dropped; the number of dropped rows is returned.
func normalizePlans(rows []models.CoursePlan) ([]models.CoursePlan, int) {
	groups := make(map[planKey][]models.CoursePlan)
	var keys []planKey
	for _, r := range rows {
		r.PlanningDate = models.Day(r.PlanningDate)
		k := planKey{r.CourseID, r.PlanningDate}
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	slices.SortFunc(keys, func(a, b planKey) int {
		return cmp.Or(cmp.Compare(a.courseID, b.courseID), a.date.Compare(b.date))
	})

	out := make([]models.CoursePlan, 0, len(rows))
	for _, k := range keys {
		var content, holders []models.CoursePlan
		for _, r := range groups[k] {
			if r.IsPlaceholder() {
				r.Sequence = nil
				holders = append(holders, r)
			} else {
				content = append(content, r)
			}
		}

		if len(content) == 0 {
			slices.SortFunc(holders, func(a, b models.CoursePlan) int { return cmp.Compare(a.PlanID, b.PlanID) })
			out = append(out, holders[0])
			continue
		}

		slices.SortFunc(content, func(a, b models.CoursePlan) int {
			return cmp.Or(cmp.Compare(legacySequence(a), legacySequence(b)), cmp.Compare(a.PlanID, b.PlanID))
		})
		for i := range content {
			seq := i + 1
			content[i].Sequence = &seq
		}
		out = append(out, content...)
	}
	return out, len(rows) - len(out)
}

func legacySequence(p models.CoursePlan) int {
	if p.Sequence == nil {
		return 0
	}
	return *p.Sequence
}
