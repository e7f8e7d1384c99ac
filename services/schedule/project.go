package schedule

import (
	"regexp"
	"strings"
	"time"

	"clinicore/models"
	"clinicore/utils"
)

// Patterns that identify an event as a patient meeting from its free text.
// Matching is a heuristic carried over from how the practice titles its
// calendar events ("פגישה עם דנה").
var meetingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`פגישה עם\s+(\S.*)`),
	regexp.MustCompile(`(?i)meeting with\s+(\S.*)`),
}

// IsMeeting reports whether the text identifies a patient meeting.
func IsMeeting(text string) bool {
	return MeetingName(text) != ""
}

// MeetingName extracts the person's name from a meeting title, or "" when the
// text does not match a recognized meeting pattern.
func MeetingName(text string) string {
	for _, p := range meetingPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// ProjectEvent maps one external calendar event onto the grid. Meetings are
// placed with the canonical duration regardless of the end time the provider
// declares; the event record itself is never rewritten here.
func ProjectEvent(grid *models.WeekGrid, ev models.ExternalEvent, loc *time.Location) {
	start := ev.Start.In(loc)
	end := ev.End.In(loc)
	if IsMeeting(ev.Summary) {
		end = start.Add(utils.MeetingDuration)
	}

	notes := ev.Summary
	if ev.Description != "" {
		notes += " / " + ev.Description
	}
	ref := models.SlotRef{Source: models.RefCalendar, ID: ev.ID}
	projectSpan(grid, start, end, loc, func(slot *models.Slot, first, last bool) {
		writeVisual(slot, models.SlotBooked, notes, models.SyncSynced, start, end, first, last)
		appendRef(slot, ref)
	})
}

// ProjectSession maps an internal future session onto the grid. Sessions are
// always patient meetings, so they span the canonical duration from their
// scheduled instant. With refsOnly set, only back-references are written and
// the visual fields of the already-projected external layer are left intact
// (the linked/merged case).
func ProjectSession(grid *models.WeekGrid, s models.FutureSession, loc *time.Location, refsOnly bool) {
	start := s.ScheduledAt.In(loc)
	end := start.Add(utils.MeetingDuration)

	status := models.SlotBooked
	switch s.Status {
	case models.SessionCompleted:
		status = models.SlotCompleted
	case models.SessionCanceled:
		status = models.SlotCanceled
	}

	syncStatus := models.SyncNone
	if s.CalendarEventID != "" {
		syncStatus = models.SyncSynced
	}

	notes := s.PatientName
	if s.MeetingType != "" {
		notes += " (" + s.MeetingType + ")"
	}
	ref := models.SlotRef{Source: models.RefSession, ID: s.ID}
	projectSpan(grid, start, end, loc, func(slot *models.Slot, first, last bool) {
		if !refsOnly {
			writeVisual(slot, status, notes, syncStatus, start, end, first, last)
		}
		appendRef(slot, ref)
	})
}

// ProjectAvailability fills a single bucket, but only when nothing else has
// claimed it: availability never overrides a booking or an external event.
func ProjectAvailability(grid *models.WeekGrid, e models.AvailabilityEntry) {
	slot := grid.SlotAt(e.Date, e.Hour)
	if slot == nil || slot.Status != models.SlotUnspecified {
		return
	}
	if e.Kind == models.AvailabilityPrivate {
		slot.Status = models.SlotPrivate
	} else {
		slot.Status = models.SlotAvailable
	}
	slot.Notes = e.Note
	appendRef(slot, models.SlotRef{Source: models.RefAvailability, ID: e.ID})
}

// projectSpan enumerates every hour bucket the [start, end) span touches and
// invokes apply for the ones inside the grid. An end landing exactly on a
// whole hour does not occupy that hour. Buckets outside the visible week or
// outside the daily window are skipped silently.
func projectSpan(grid *models.WeekGrid, start, end time.Time, loc *time.Location, apply func(slot *models.Slot, first, last bool)) {
	if !end.After(start) {
		return
	}

	first := time.Date(start.Year(), start.Month(), start.Day(), start.Hour(), 0, 0, 0, loc)
	last := time.Date(end.Year(), end.Month(), end.Day(), end.Hour(), 0, 0, 0, loc)
	if end.Minute() == 0 && end.Second() == 0 {
		last = last.Add(-time.Hour)
	}

	for t := first; !t.After(last); t = t.Add(time.Hour) {
		date, hour := BucketKey(t, loc)
		slot := grid.SlotAt(date, hour)
		if slot == nil {
			continue
		}
		apply(slot, t.Equal(first), t.Equal(last))
	}
}

// writeVisual overwrites a bucket's visual fields. The later projection in
// the merge order wins these; back-references accumulate separately.
func writeVisual(slot *models.Slot, status models.SlotStatus, notes, syncStatus string, start, end time.Time, first, last bool) {
	slot.Status = status
	slot.Notes = notes
	slot.SyncStatus = syncStatus

	slot.IsFirstHour = false
	slot.StartMinute = 0
	slot.IsLastHour = false
	slot.EndMinute = 0
	if first && start.Minute() != 0 {
		slot.IsFirstHour = true
		slot.StartMinute = start.Minute()
	}
	if last && end.Minute() != 0 {
		slot.IsLastHour = true
		slot.EndMinute = end.Minute()
	}
}

func appendRef(slot *models.Slot, ref models.SlotRef) {
	if slot.HasRef(ref.Source, ref.ID) {
		return
	}
	slot.Refs = append(slot.Refs, ref)
}
