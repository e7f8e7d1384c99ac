package conflict

import (
	"context"
	"fmt"
	"time"

	patientRepo "clinicore/database/repository/patient"
	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/models"
	"clinicore/services/calsync"
	"clinicore/services/schedule"
	"clinicore/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultResolver implements Resolver over the internal store and the
// external provider session.
type DefaultResolver struct {
	Repo     scheduleRepo.ScheduleRepository
	Patients patientRepo.PatientRepository
	Sync     calsync.Manager
	Loc      *time.Location

	// ScheduleReminder, when set, re-enqueues the session reminder after an
	// internal retime so the push fires relative to the new instant.
	ScheduleReminder func(models.FutureSession) error
}

// Resolve dispatches one resolution operation. Each operation mutates exactly
// one system, except Promote, which writes the foreign record first and rolls
// it back if recording the cross-link fails, so it never partially applies.
func (r *DefaultResolver) Resolve(ctx context.Context, res Resolution) error {
	switch res.Action {
	case ActionDismiss:
		// No mutation; the candidate re-surfaces on the next pass if the
		// overlap persists.
		return nil
	case ActionRetime:
		return r.retime(ctx, res)
	case ActionDelete:
		return r.delete(ctx, res)
	case ActionPromote:
		return r.promote(ctx, res)
	default:
		return fmt.Errorf("unknown resolution action %q", res.Action)
	}
}

// retime moves one side's record to a new hour on the same day. The other
// side is not touched.
func (r *DefaultResolver) retime(ctx context.Context, res Resolution) error {
	start, err := r.parseBucket(res.Candidate.Date, res.NewHour)
	if err != nil {
		return err
	}

	switch res.Side {
	case SideExternal:
		ev := res.Candidate.Event
		end := start.Add(ev.End.Sub(ev.Start))
		if schedule.IsMeeting(ev.Summary) {
			end = start.Add(utils.MeetingDuration)
		}
		return r.Sync.UpdateEvent(ctx, ev.ID, start, end)
	case SideInternal:
		if err := r.Repo.UpdateSessionTime(res.Candidate.Session.ID, start); err != nil {
			return StoreWriteError{Op: "retime session", Err: err}
		}
		if r.ScheduleReminder != nil {
			moved := res.Candidate.Session
			moved.ScheduledAt = start
			if err := r.ScheduleReminder(moved); err != nil {
				utils.GetLogger().Warn("failed to reschedule session reminder",
					zap.String("sessionId", moved.ID),
					zap.Error(err))
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown resolution side %q", res.Side)
	}
}

// delete removes one side's record. The other side is not touched.
func (r *DefaultResolver) delete(ctx context.Context, res Resolution) error {
	switch res.Side {
	case SideExternal:
		return r.Sync.DeleteEvent(ctx, res.Candidate.Event.ID)
	case SideInternal:
		if err := r.Repo.DeleteSession(res.Candidate.Session.ID); err != nil {
			return StoreWriteError{Op: "delete session", Err: err}
		}
		return nil
	default:
		return fmt.Errorf("unknown resolution side %q", res.Side)
	}
}

// promote copies the given side's record into the other system and records
// the cross-link, so the pair stops surfacing as a conflict.
func (r *DefaultResolver) promote(ctx context.Context, res Resolution) error {
	switch res.Side {
	case SideExternal:
		return r.promoteEvent(ctx, res.Candidate.Event)
	case SideInternal:
		return r.promoteSession(ctx, res.Candidate.Session)
	default:
		return fmt.Errorf("unknown resolution side %q", res.Side)
	}
}

// promoteEvent creates an internal session mirroring the external event,
// looking up or creating the patient by the name in the event's title. If the
// session write fails a patient created for it is removed again, leaving both
// sides unchanged.
func (r *DefaultResolver) promoteEvent(ctx context.Context, ev models.ExternalEvent) error {
	name := schedule.MeetingName(ev.Summary)
	if name == "" {
		return AmbiguousPromotionError{}
	}

	matches, err := r.Patients.FindByName(name)
	if err != nil {
		return StoreWriteError{Op: "patient lookup", Err: err}
	}

	var patient models.Patient
	var patientCreated bool
	switch len(matches) {
	case 1:
		patient = matches[0]
	case 0:
		patient = models.Patient{ID: uuid.New().String(), FullName: name}
		if err := r.Patients.Create(&patient); err != nil {
			return StoreWriteError{Op: "create patient", Err: err}
		}
		patientCreated = true
	default:
		return AmbiguousPromotionError{Name: name, Matches: len(matches)}
	}

	session := models.FutureSession{
		ID:              uuid.New().String(),
		PatientID:       patient.ID,
		PatientName:     patient.FullName,
		ScheduledAt:     ev.Start,
		MeetingType:     models.MeetingClinic,
		Status:          models.SessionScheduled,
		CalendarEventID: ev.ID,
	}
	if err := r.Repo.CreateSession(&session); err != nil {
		if patientCreated {
			if delErr := r.Patients.Delete(patient.ID); delErr != nil {
				utils.GetLogger().Error("failed to roll back promoted patient",
					zap.String("patientId", patient.ID),
					zap.Error(delErr))
			}
		}
		return StoreWriteError{Op: "create session", Err: err}
	}
	return nil
}

// promoteSession creates an external event mirroring the internal session
// with the canonical meeting span, then records the cross-link. If the link
// cannot be stored the created event is removed again, leaving both sides
// unchanged.
func (r *DefaultResolver) promoteSession(ctx context.Context, s models.FutureSession) error {
	summary := "פגישה עם " + s.PatientName
	start := s.ScheduledAt
	end := start.Add(utils.MeetingDuration)

	eventID, err := r.Sync.CreateEvent(ctx, summary, "", start, end)
	if err != nil {
		return err
	}

	if err := r.Repo.SetSessionCalendarEvent(s.ID, eventID); err != nil {
		if delErr := r.Sync.DeleteEvent(ctx, eventID); delErr != nil {
			utils.GetLogger().Error("failed to roll back promoted event",
				zap.String("eventId", eventID),
				zap.Error(delErr))
		}
		return StoreWriteError{Op: "link session to event", Err: err}
	}
	return nil
}

// parseBucket resolves (date, hour) strings to an instant in the operating timezone.
func (r *DefaultResolver) parseBucket(date, hour string) (time.Time, error) {
	t, err := time.ParseInLocation(utils.DateLayout+" "+utils.HourLayout, date+" "+hour, r.Loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid bucket %s %s: %w", date, hour, err)
	}
	return t, nil
}
