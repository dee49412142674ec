// Package export renders assembled itineraries as iCalendar and XLSX files.
package export

import (
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/tripjeju/courseapi/course"
	"github.com/tripjeju/courseapi/models"
)

const productID = "-//tripjeju//courseapi//KO"

// ICS renders one all-day event per content item of it.
func ICS(it *course.Itinerary, stamp time.Time) (string, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(it.CourseName)

	for _, dp := range it.Plans {
		day, err := time.Parse(models.DateLayout, dp.Date)
		if err != nil {
			return "", fmt.Errorf("export ics: %w", err)
		}
		for _, item := range dp.Contents {
			ev := cal.AddEvent(fmt.Sprintf("course-%d-%s-%d@courseapi", it.CourseID, dp.Date, item.ContentID))
			ev.SetDtStampTime(stamp.UTC())
			ev.SetAllDayStartAt(day)
			ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
			ev.SetSummary(item.Title)
			if item.Address != "" {
				ev.SetLocation(item.Address)
			}
			ev.SetDescription(fmt.Sprintf("%s #%d", item.Category, item.Sequence))
			// GEO is latitude;longitude, stored as mapy/mapx.
			if item.MapX != nil && item.MapY != nil {
				ev.SetProperty(ics.ComponentPropertyGeo, fmt.Sprintf("%f;%f", *item.MapY, *item.MapX))
			}
		}
	}
	return cal.Serialize(), nil
}
