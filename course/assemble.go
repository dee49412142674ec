package course

import (
	"context"
	"errors"

	"github.com/tripjeju/courseapi/catalog"
	"github.com/tripjeju/courseapi/models"
)

// Itinerary is the read view of a course.
type Itinerary struct {
	CourseID   int64      `json:"courseId"`
	CourseName string     `json:"courseName"`
	TotalDays  int        `json:"totalDays"`
	TotalItems int        `json:"totalItems"`
	Plans      []DatePlan `json:"plans"`
}

// DatePlan holds the content of one planning date in sequence order.
type DatePlan struct {
	Date     string `json:"date"`
	Contents []Item `json:"contents"`
}

// Item is the display form of a content slot.
type Item struct {
	ContentID  int64    `json:"contentId"`
	Sequence   int      `json:"sequence"`
	Category   string   `json:"category"`
	FirstImage string   `json:"firstimage"`
	Title      string   `json:"title"`
	Cat3       string   `json:"cat3"`
	Address    string   `json:"address"`
	MapX       *float64 `json:"mapx"`
	MapY       *float64 `json:"mapy"`
}

// contentLookup fetches the category row of a content id.
type contentLookup func(ctx context.Context, contentID int64) (catalog.Table, *models.Content, error)

// skippable reports whether a lookup failure only drops the slot from a read.
func skippable(err error) bool {
	return errors.Is(err, catalog.ErrContentNotFound) || errors.Is(err, catalog.ErrInvalidTargetTable)
}

// assemble groups slots by date and joins them to their content rows. Slots
// whose content cannot be resolved are left out; other lookup errors abort.
func assemble(ctx context.Context, c *models.Course, slots []models.CoursePlan, lookup contentLookup) (*Itinerary, error) {
	it := &Itinerary{
		CourseID:   c.CourseID,
		CourseName: c.CourseName,
		Plans:      []DatePlan{},
	}
	it.TotalItems = len(contentSet(slots))

	for _, d := range groupByDate(slots) {
		dp := DatePlan{Date: d[0].Day().Format(models.DateLayout), Contents: []Item{}}
		for _, s := range d {
			if s.IsPlaceholder() {
				continue
			}
			table, row, err := lookup(ctx, *s.ContentID)
			if err != nil {
				if skippable(err) {
					continue
				}
				return nil, err
			}
			dp.Contents = append(dp.Contents, Item{
				ContentID:  row.ContentID,
				Sequence:   sequenceOf(s),
				Category:   table.String(),
				FirstImage: row.FirstImage,
				Title:      row.Title,
				Cat3:       row.Cat3,
				Address:    row.Address,
				MapX:       row.MapX,
				MapY:       row.MapY,
			})
		}
		it.Plans = append(it.Plans, dp)
	}
	it.TotalDays = len(it.Plans)
	return it, nil
}

// groupByDate splits slots, already ordered by date, into runs of one date.
func groupByDate(slots []models.CoursePlan) [][]models.CoursePlan {
	var out [][]models.CoursePlan
	for _, s := range slots {
		n := len(out)
		if n > 0 && out[n-1][0].Day().Equal(s.Day()) {
			out[n-1] = append(out[n-1], s)
			continue
		}
		out = append(out, []models.CoursePlan{s})
	}
	return out
}
