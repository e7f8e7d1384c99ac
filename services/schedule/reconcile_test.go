package schedule

import (
	"testing"
	"time"

	"clinicore/models"
)

func TestReconcile_DetectsUnlinkedOverlap(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc)
	ev := models.ExternalEvent{
		ID:      "ev-10",
		Summary: "פגישה עם רונית",
		Start:   time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 12, 30, 0, 0, testLoc),
	}
	session := models.FutureSession{
		ID:          "s-10",
		PatientName: "משה לוי",
		ScheduledAt: time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		Status:      models.SessionScheduled,
	}

	grid, conflicts := Reconcile(anchor, []models.ExternalEvent{ev}, []models.FutureSession{session}, nil, testLoc)

	if len(conflicts) != 1 {
		t.Fatalf("got %d conflicts, want 1", len(conflicts))
	}
	c := conflicts[0]
	if c.Date != "2025-03-10" || c.Hour != "11:00" {
		t.Errorf("conflict at (%s, %s), want (2025-03-10, 11:00)", c.Date, c.Hour)
	}
	if c.Event.ID != "ev-10" || c.Session.ID != "s-10" {
		t.Errorf("conflict pairs (%s, %s), want (ev-10, s-10)", c.Event.ID, c.Session.ID)
	}

	// The bucket keeps the external projection; the session is suppressed,
	// not merged.
	slot := grid.SlotAt("2025-03-10", "11:00")
	if slot.Notes != "פגישה עם רונית" {
		t.Errorf("bucket notes = %q, want the external event's", slot.Notes)
	}
	if slot.SyncStatus != models.SyncConflict {
		t.Errorf("bucket syncStatus = %q, want conflict", slot.SyncStatus)
	}
	if !slot.HasRef(models.RefCalendar, "ev-10") || !slot.HasRef(models.RefSession, "s-10") {
		t.Errorf("bucket refs = %v, want both sides retained", slot.Refs)
	}
}

func TestReconcile_NoConflictWhenLinked(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc)
	ev := models.ExternalEvent{
		ID:      "ev-11",
		Summary: "פגישה עם רונית",
		Start:   time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 12, 30, 0, 0, testLoc),
	}
	session := models.FutureSession{
		ID:              "s-11",
		PatientName:     "רונית כהן",
		ScheduledAt:     time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		Status:          models.SessionScheduled,
		CalendarEventID: "ev-11",
	}

	grid, conflicts := Reconcile(anchor, []models.ExternalEvent{ev}, []models.FutureSession{session}, nil, testLoc)

	if len(conflicts) != 0 {
		t.Fatalf("got %d conflicts, want 0", len(conflicts))
	}
	slot := grid.SlotAt("2025-03-10", "11:00")
	if slot.SyncStatus != models.SyncSynced {
		t.Errorf("bucket syncStatus = %q, want synced", slot.SyncStatus)
	}
	if !slot.HasRef(models.RefCalendar, "ev-11") || !slot.HasRef(models.RefSession, "s-11") {
		t.Errorf("bucket refs = %v, want the merged linked state", slot.Refs)
	}
}

func TestReconcile_SessionProjectsWhenNoExternalEvent(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc)
	session := models.FutureSession{
		ID:          "s-12",
		PatientName: "דנה כהן",
		ScheduledAt: time.Date(2025, 3, 11, 9, 0, 0, 0, testLoc),
		Status:      models.SessionScheduled,
	}

	grid, conflicts := Reconcile(anchor, nil, []models.FutureSession{session}, nil, testLoc)

	if len(conflicts) != 0 {
		t.Fatalf("got %d conflicts, want 0", len(conflicts))
	}
	if slot := grid.SlotAt("2025-03-11", "09:00"); slot.Status != models.SlotBooked {
		t.Errorf("09:00 status = %s, want booked", slot.Status)
	}
}

func TestReconcile_AvailabilityFillsOnlyUnspecified(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc)
	session := models.FutureSession{
		ID:          "s-13",
		PatientName: "דנה כהן",
		ScheduledAt: time.Date(2025, 3, 10, 10, 0, 0, 0, testLoc),
		Status:      models.SessionScheduled,
	}
	availability := []models.AvailabilityEntry{
		{ID: "a-10", Date: "2025-03-10", Hour: "10:00", Kind: models.AvailabilityOpen},
		{ID: "a-11", Date: "2025-03-10", Hour: "15:00", Kind: models.AvailabilityOpen},
	}

	grid, _ := Reconcile(anchor, nil, []models.FutureSession{session}, availability, testLoc)

	if slot := grid.SlotAt("2025-03-10", "10:00"); slot.Status != models.SlotBooked {
		t.Errorf("10:00 status = %s, availability must not override the booking", slot.Status)
	}
	if slot := grid.SlotAt("2025-03-10", "15:00"); slot.Status != models.SlotAvailable {
		t.Errorf("15:00 status = %s, want available", slot.Status)
	}
}

func TestReconcile_ConflictReemergesEachPass(t *testing.T) {
	anchor := time.Date(2025, 3, 10, 0, 0, 0, 0, testLoc)
	ev := models.ExternalEvent{
		ID:      "ev-12",
		Summary: "פגישה עם רונית",
		Start:   time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		End:     time.Date(2025, 3, 10, 12, 30, 0, 0, testLoc),
	}
	session := models.FutureSession{
		ID:          "s-14",
		PatientName: "משה לוי",
		ScheduledAt: time.Date(2025, 3, 10, 11, 0, 0, 0, testLoc),
		Status:      models.SessionScheduled,
	}

	_, first := Reconcile(anchor, []models.ExternalEvent{ev}, []models.FutureSession{session}, nil, testLoc)
	_, second := Reconcile(anchor, []models.ExternalEvent{ev}, []models.FutureSession{session}, nil, testLoc)

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("conflict counts = (%d, %d), want (1, 1)", len(first), len(second))
	}
	if first[0].ID != second[0].ID {
		t.Errorf("candidate IDs differ across passes: %s vs %s", first[0].ID, second[0].ID)
	}
}
