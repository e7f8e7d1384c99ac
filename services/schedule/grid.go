package schedule

import (
	"fmt"
	"time"

	"clinicore/models"
	"clinicore/utils"
)

// BuildEmptyWeek produces the canonical empty weekly grid for the week
// containing anchor: 7 consecutive days starting on utils.WeekStartDay, each
// with one unspecified slot per hour in [GridStartHour, GridEndHour).
// Pure and deterministic; every reconciliation pass starts from a fresh grid.
func BuildEmptyWeek(anchor time.Time, loc *time.Location) *models.WeekGrid {
	start := WeekStart(anchor, loc)
	grid := &models.WeekGrid{WeekStart: start.Format(utils.DateLayout)}

	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		date := day.Format(utils.DateLayout)
		ds := &models.DaySchedule{
			Date:  date,
			Slots: make(map[string]*models.Slot, utils.GridEndHour-utils.GridStartHour),
		}
		for h := utils.GridStartHour; h < utils.GridEndHour; h++ {
			hour := fmt.Sprintf("%02d:00", h)
			ds.Slots[hour] = &models.Slot{
				Date:   date,
				Hour:   hour,
				Status: models.SlotUnspecified,
			}
		}
		grid.Days = append(grid.Days, ds)
	}
	return grid
}

// WeekStart returns midnight of the first day of the week containing t,
// in the operating timezone.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	offset := (int(t.Weekday()) - int(utils.WeekStartDay) + 7) % 7
	d := t.AddDate(0, 0, -offset)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
}

// BucketKey maps an instant to its grid bucket (date, hour) in the operating
// timezone. The minute component is dropped; it only matters for the
// partial-hour markers the projector computes.
func BucketKey(t time.Time, loc *time.Location) (date, hour string) {
	t = t.In(loc)
	return t.Format(utils.DateLayout), fmt.Sprintf("%02d:00", t.Hour())
}
