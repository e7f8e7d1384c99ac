package schedule

import (
	"testing"
	"time"

	"clinicore/models"
)

func TestMeetingName(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"פגישה עם דנה", "דנה"},
		{"פגישה עם רונית לוי", "רונית לוי"},
		{"Meeting with Dana", "Dana"},
		{"סידורים", ""},
		{"פגישה עם", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MeetingName(tt.text); got != tt.want {
			t.Errorf("MeetingName(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestProjectEvent_WholeHourEndExcluded(t *testing.T) {
	grid := BuildEmptyWeek(time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), testLoc)
	ev := models.ExternalEvent{
		ID:      "ev-1",
		Summary: "סידורים",
		Start:   time.Date(2025, 3, 10, 10, 30, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 12, 0, 0, 0, testLoc),
	}
	ProjectEvent(grid, ev, testLoc)

	first := grid.SlotAt("2025-03-10", "10:00")
	if first.Status != models.SlotBooked {
		t.Fatalf("10:00 status = %s, want booked", first.Status)
	}
	if !first.IsFirstHour || first.StartMinute != 30 {
		t.Errorf("10:00 partial start = (%v, %d), want (true, 30)", first.IsFirstHour, first.StartMinute)
	}

	second := grid.SlotAt("2025-03-10", "11:00")
	if second.Status != models.SlotBooked {
		t.Fatalf("11:00 status = %s, want booked", second.Status)
	}
	if second.IsLastHour || second.EndMinute != 0 {
		t.Errorf("11:00 should span the full hour, got (%v, %d)", second.IsLastHour, second.EndMinute)
	}

	// An event ending exactly at 12:00 does not occupy the 12:00 bucket.
	if excluded := grid.SlotAt("2025-03-10", "12:00"); excluded.Status != models.SlotUnspecified {
		t.Errorf("12:00 status = %s, want unspecified", excluded.Status)
	}
}

func TestProjectEvent_CanonicalMeetingDuration(t *testing.T) {
	grid := BuildEmptyWeek(time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), testLoc)
	// Provider claims 30 minutes; the meeting rule stretches it to 90.
	ev := models.ExternalEvent{
		ID:      "ev-2",
		Summary: "פגישה עם דנה",
		Start:   time.Date(2025, 3, 10, 9, 0, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 9, 30, 0, 0, testLoc),
	}
	ProjectEvent(grid, ev, testLoc)

	if slot := grid.SlotAt("2025-03-10", "09:00"); slot.Status != models.SlotBooked {
		t.Errorf("09:00 status = %s, want booked", slot.Status)
	}
	last := grid.SlotAt("2025-03-10", "10:00")
	if last.Status != models.SlotBooked {
		t.Fatalf("10:00 status = %s, want booked", last.Status)
	}
	if !last.IsLastHour || last.EndMinute != 30 {
		t.Errorf("10:00 partial end = (%v, %d), want (true, 30)", last.IsLastHour, last.EndMinute)
	}
	if slot := grid.SlotAt("2025-03-10", "11:00"); slot.Status != models.SlotUnspecified {
		t.Errorf("11:00 status = %s, want unspecified", slot.Status)
	}
}

func TestProjectEvent_OutOfWindowDroppedSilently(t *testing.T) {
	grid := BuildEmptyWeek(time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), testLoc)

	// A different week entirely.
	ProjectEvent(grid, models.ExternalEvent{
		ID:      "ev-3",
		Summary: "פגישה עם יעל",
		Start:   time.Date(2025, 4, 2, 10, 0, 0, 0, testLoc),
		End:     time.Date(2025, 4, 2, 11, 0, 0, 0, testLoc),
	}, testLoc)

	// Before the daily window.
	ProjectEvent(grid, models.ExternalEvent{
		ID:      "ev-4",
		Summary: "ריצת בוקר",
		Start:   time.Date(2025, 3, 10, 6, 0, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 7, 0, 0, 0, testLoc),
	}, testLoc)

	for _, day := range grid.Days {
		for hour, slot := range day.Slots {
			if slot.Status != models.SlotUnspecified {
				t.Errorf("slot %s %s unexpectedly projected: %s", day.Date, hour, slot.Status)
			}
		}
	}
}

func TestProjectEvent_TimezoneConversion(t *testing.T) {
	grid := BuildEmptyWeek(time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), testLoc)
	// 08:00 UTC is 10:00 wall clock in the operating zone.
	ev := models.ExternalEvent{
		ID:      "ev-5",
		Summary: "סידורים",
		Start:   time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC),
		End:     time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	ProjectEvent(grid, ev, testLoc)

	if slot := grid.SlotAt("2025-03-10", "10:00"); slot.Status != models.SlotBooked {
		t.Errorf("10:00 status = %s, want booked", slot.Status)
	}
	if slot := grid.SlotAt("2025-03-10", "08:00"); slot.Status != models.SlotUnspecified {
		t.Errorf("08:00 status = %s, want unspecified", slot.Status)
	}
}

func TestProjectSession_SpansCanonicalDuration(t *testing.T) {
	grid := BuildEmptyWeek(time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), testLoc)
	s := models.FutureSession{
		ID:          "s-1",
		PatientName: "דנה כהן",
		ScheduledAt: time.Date(2025, 3, 10, 16, 0, 0, 0, testLoc),
		MeetingType: models.MeetingClinic,
		Status:      models.SessionScheduled,
	}
	ProjectSession(grid, s, testLoc, false)

	for _, hour := range []string{"16:00", "17:00"} {
		slot := grid.SlotAt("2025-03-10", hour)
		if slot.Status != models.SlotBooked {
			t.Errorf("%s status = %s, want booked", hour, slot.Status)
		}
		if !slot.HasRef(models.RefSession, "s-1") {
			t.Errorf("%s missing session ref", hour)
		}
	}
	if slot := grid.SlotAt("2025-03-10", "18:00"); slot.Status != models.SlotUnspecified {
		t.Errorf("18:00 status = %s, want unspecified", slot.Status)
	}
}

func TestProjectSession_RefsOnlyKeepsVisualFields(t *testing.T) {
	grid := BuildEmptyWeek(time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), testLoc)
	ev := models.ExternalEvent{
		ID:      "ev-6",
		Summary: "פגישה עם דנה",
		Start:   time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 12, 30, 0, 0, testLoc),
	}
	ProjectEvent(grid, ev, testLoc)

	s := models.FutureSession{
		ID:              "s-2",
		PatientName:     "דנה כהן",
		ScheduledAt:     time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		Status:          models.SessionScheduled,
		CalendarEventID: "ev-6",
	}
	ProjectSession(grid, s, testLoc, true)

	slot := grid.SlotAt("2025-03-10", "11:00")
	if slot.Notes != "פגישה עם דנה" {
		t.Errorf("notes = %q, want the event's text preserved", slot.Notes)
	}
	if !slot.HasRef(models.RefCalendar, "ev-6") || !slot.HasRef(models.RefSession, "s-2") {
		t.Errorf("slot refs = %v, want both sides", slot.Refs)
	}
}

func TestProjectAvailability_NeverOverrides(t *testing.T) {
	grid := BuildEmptyWeek(time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc), testLoc)
	ProjectEvent(grid, models.ExternalEvent{
		ID:      "ev-7",
		Summary: "סידורים",
		Start:   time.Date(2025, 3, 10, 9, 0, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 10, 0, 0, 0, testLoc),
	}, testLoc)

	ProjectAvailability(grid, models.AvailabilityEntry{
		ID: "a-1", Date: "2025-03-10", Hour: "09:00", Kind: models.AvailabilityOpen,
	})
	ProjectAvailability(grid, models.AvailabilityEntry{
		ID: "a-2", Date: "2025-03-10", Hour: "14:00", Kind: models.AvailabilityPrivate,
	})

	if slot := grid.SlotAt("2025-03-10", "09:00"); slot.Status != models.SlotBooked {
		t.Errorf("09:00 status = %s, availability must not override a booking", slot.Status)
	}
	if slot := grid.SlotAt("2025-03-10", "14:00"); slot.Status != models.SlotPrivate {
		t.Errorf("14:00 status = %s, want private", slot.Status)
	}
}
