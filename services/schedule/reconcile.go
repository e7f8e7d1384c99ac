package schedule

import (
	"time"

	"clinicore/models"
	"clinicore/utils"
)

type bucketKey struct {
	date string
	hour string
}

// Reconcile folds external calendar events and internal records into a single
// weekly grid and surfaces conflict candidates.
//
// External events are projected first; internal sessions are then checked
// against the external layer before any precedence is applied, so a
// same-bucket disagreement between the two systems is always surfaced rather
// than silently overwritten. A session whose start bucket is held by an
// external event it carries no cross-link to becomes a ConflictCandidate and
// keeps the external projection in place. Linked sessions merge into the
// external projection. Availability fills only buckets nothing else claimed.
func Reconcile(anchor time.Time, events []models.ExternalEvent, sessions []models.FutureSession, availability []models.AvailabilityEntry, loc *time.Location) (*models.WeekGrid, []models.ConflictCandidate) {
	grid := BuildEmptyWeek(anchor, loc)

	// External layer plus an overlap index of every bucket each event touches.
	extIndex := make(map[bucketKey]models.ExternalEvent)
	for _, ev := range events {
		ProjectEvent(grid, ev, loc)
		indexEventBuckets(grid, extIndex, ev, loc)
	}

	var conflicts []models.ConflictCandidate
	for _, s := range sessions {
		date, hour := BucketKey(s.ScheduledAt, loc)
		ev, occupied := extIndex[bucketKey{date, hour}]

		switch {
		case occupied && s.CalendarEventID != ev.ID:
			// Both systems claim the bucket with different identities. Keep
			// the external projection, flag the bucket, emit a candidate.
			conflicts = append(conflicts, models.NewConflictCandidate(date, hour, ev, s))
			if slot := grid.SlotAt(date, hour); slot != nil {
				slot.SyncStatus = models.SyncConflict
				appendRef(slot, models.SlotRef{Source: models.RefSession, ID: s.ID})
			}
		case occupied:
			// Cross-linked pair: merge the session reference into the
			// external projection without stealing its visual fields.
			ProjectSession(grid, s, loc, true)
		default:
			ProjectSession(grid, s, loc, false)
		}
	}

	for _, a := range availability {
		ProjectAvailability(grid, a)
	}

	return grid, conflicts
}

// indexEventBuckets records the event under every grid bucket it occupies,
// using the same span rules as projection (canonical meeting duration,
// whole-hour end exclusion).
func indexEventBuckets(grid *models.WeekGrid, index map[bucketKey]models.ExternalEvent, ev models.ExternalEvent, loc *time.Location) {
	start := ev.Start.In(loc)
	end := ev.End.In(loc)
	if IsMeeting(ev.Summary) {
		end = start.Add(utils.MeetingDuration)
	}
	projectSpan(grid, start, end, loc, func(slot *models.Slot, first, last bool) {
		index[bucketKey{slot.Date, slot.Hour}] = ev
	})
}
