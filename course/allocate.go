package course

import (
	"slices"
	"time"

	"github.com/tripjeju/courseapi/models"
)

// daySlots summarises the existing slots of one planning date.
type daySlots struct {
	date         time.Time
	placeholders []int64
	maxSequence  int
	occupied     int
}

// slotFill turns an existing placeholder into a content slot.
type slotFill struct {
	PlanID    int64
	ContentID int64
	Sequence  int
}

// allocation is the outcome of placing appended content into a course.
type allocation struct {
	Fills   []slotFill
	Inserts []models.CoursePlan
	// Drops are placeholders left on a date that received content.
	Drops []int64
}

// groupDays buckets slots by planning date, ascending.
func groupDays(slots []models.CoursePlan) []*daySlots {
	byDate := make(map[time.Time]*daySlots)
	var days []*daySlots
	for i := range slots {
		s := &slots[i]
		date := s.Day()
		d, ok := byDate[date]
		if !ok {
			d = &daySlots{date: date}
			byDate[date] = d
			days = append(days, d)
		}
		if s.IsPlaceholder() {
			d.placeholders = append(d.placeholders, s.PlanID)
			continue
		}
		d.occupied++
		if s.Sequence != nil && *s.Sequence > d.maxSequence {
			d.maxSequence = *s.Sequence
		}
	}
	slices.SortFunc(days, func(a, b *daySlots) int { return a.date.Compare(b.date) })
	return days
}

// planAppend places contentIDs into a course holding slots.
//
// The pending input is consumed through a single cursor. Placeholders are
// filled first, date by date. The second pass then drains the cursor into each
// date that held no placeholder, stopping at maxPerDay occupied slots when
// maxPerDay > 0; with no cap the first such date takes everything that is
// left. Whatever remains goes to new consecutive dates after the last one
// (starting at today for a course without dates), one item per date.
func planAppend(courseID int64, slots []models.CoursePlan, contentIDs []int64, today time.Time, maxPerDay int) allocation {
	var a allocation
	days := groupDays(slots)
	next := 0

	for _, d := range days {
		for _, planID := range d.placeholders {
			if next == len(contentIDs) {
				break
			}
			d.maxSequence++
			d.occupied++
			a.Fills = append(a.Fills, slotFill{PlanID: planID, ContentID: contentIDs[next], Sequence: d.maxSequence})
			next++
		}
	}

	for _, d := range days {
		if len(d.placeholders) > 0 {
			continue
		}
		for next < len(contentIDs) && (maxPerDay <= 0 || d.occupied < maxPerDay) {
			d.maxSequence++
			d.occupied++
			a.Inserts = append(a.Inserts, contentSlot(courseID, d.date, contentIDs[next], d.maxSequence))
			next++
		}
	}

	date := models.Day(today)
	if len(days) > 0 {
		date = days[len(days)-1].date.AddDate(0, 0, 1)
	}
	for ; next < len(contentIDs); next++ {
		a.Inserts = append(a.Inserts, contentSlot(courseID, date, contentIDs[next], 1))
		date = date.AddDate(0, 0, 1)
	}

	filled := make(map[int64]bool, len(a.Fills))
	for _, f := range a.Fills {
		filled[f.PlanID] = true
	}
	for _, d := range days {
		if d.occupied == 0 {
			continue
		}
		for _, planID := range d.placeholders {
			if !filled[planID] {
				a.Drops = append(a.Drops, planID)
			}
		}
	}
	return a
}

// duplicates returns the requested ids already present in slots, plus ids
// requested more than once.
func duplicates(slots []models.CoursePlan, requested []int64) []int64 {
	seen := contentSet(slots)
	var dup []int64
	for _, id := range requested {
		if seen[id] {
			dup = append(dup, id)
			continue
		}
		seen[id] = true
	}
	slices.Sort(dup)
	return slices.Compact(dup)
}

// contentSet collects the non-placeholder content ids of slots.
func contentSet(slots []models.CoursePlan) map[int64]bool {
	set := make(map[int64]bool, len(slots))
	for _, s := range slots {
		if s.ContentID != nil {
			set[*s.ContentID] = true
		}
	}
	return set
}

func contentSlot(courseID int64, date time.Time, contentID int64, sequence int) models.CoursePlan {
	return models.CoursePlan{
		CourseID:     courseID,
		PlanningDate: date,
		ContentID:    &contentID,
		Sequence:     &sequence,
	}
}

func placeholderSlot(courseID int64, date time.Time) models.CoursePlan {
	return models.CoursePlan{CourseID: courseID, PlanningDate: date}
}
