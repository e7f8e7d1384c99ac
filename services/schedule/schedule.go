package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	scheduleRepo "clinicore/database/repository/schedule"
	"clinicore/models"
	"clinicore/services/calsync"
	"clinicore/services/notification"
	"clinicore/utils"

	"go.uber.org/zap"
)

// DefaultScheduleService implements Service: it pulls external events through
// the sync manager, reads internal records for the week and reconciles them.
type DefaultScheduleService struct {
	Repo     scheduleRepo.ScheduleRepository
	Sync     calsync.Manager
	Notifier notification.NotificationService
	Loc      *time.Location
}

// GetWeek builds the reconciled view for the week containing anchor.
//
// When the external session is not authenticated the view degrades to the
// internal layer only, flagged with SyncRequired, rather than failing the
// whole page.
func (s *DefaultScheduleService) GetWeek(ctx context.Context, anchor time.Time, force bool) (*WeekView, error) {
	start := WeekStart(anchor, s.Loc)
	end := start.AddDate(0, 0, 7)

	view := &WeekView{}
	var events []models.ExternalEvent
	for _, period := range weekPeriods(start, end, s.Loc) {
		res, err := s.Sync.FetchEvents(ctx, period, force)
		if errors.Is(err, calsync.ErrNotAuthenticated) {
			view.SyncRequired = true
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetch events for %s: %w", period, err)
		}
		events = append(events, res.Events...)
		if res.FromCache {
			view.FromCache = true
		}
		if secs := int(res.RetryAfter.Round(time.Second).Seconds()); secs > view.RetryAfterSeconds {
			view.RetryAfterSeconds = secs
		}
	}

	sessions, err := s.Repo.GetSessionsInRange(start, end)
	if err != nil {
		return nil, fmt.Errorf("read sessions: %w", err)
	}
	availability, err := s.Repo.GetAvailabilityInRange(
		start.Format(utils.DateLayout),
		end.AddDate(0, 0, -1).Format(utils.DateLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("read availability: %w", err)
	}

	view.Grid, view.Conflicts = Reconcile(anchor, events, sessions, availability, s.Loc)

	if len(view.Conflicts) > 0 && s.Notifier != nil {
		go func(weekStart string, count int) {
			nctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.Notifier.NotifyConflicts(nctx, weekStart, count); err != nil {
				utils.GetLogger().Warn("conflict notification failed", zap.Error(err))
			}
		}(view.Grid.WeekStart, len(view.Conflicts))
	}

	return view, nil
}

// weekPeriods lists the distinct month keys the [start, end) week overlaps.
func weekPeriods(start, end time.Time, loc *time.Location) []string {
	first := start.In(loc).Format(utils.MonthKeyLayout)
	last := end.AddDate(0, 0, -1).In(loc).Format(utils.MonthKeyLayout)
	if first == last {
		return []string{first}
	}
	return []string{first, last}
}
