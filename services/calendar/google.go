package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"clinicore/config"
	"clinicore/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleProvider implements Provider against the Google Calendar API using a
// long-lived OAuth refresh token from configuration.
type GoogleProvider struct {
	calendarID string
	conf       *oauth2.Config
	source     oauth2.TokenSource
	svc        *gcal.Service
}

// NewGoogleProvider builds the Calendar API client from AppConfig credentials.
func NewGoogleProvider(ctx context.Context) (*GoogleProvider, error) {
	conf := &oauth2.Config{
		ClientID:     config.AppConfig.GoogleClientID,
		ClientSecret: config.AppConfig.GoogleClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gcal.CalendarScope},
	}
	source := conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: config.AppConfig.GoogleRefreshToken,
	})

	svc, err := gcal.NewService(ctx, option.WithTokenSource(source))
	if err != nil {
		return nil, fmt.Errorf("failed to build calendar service: %w", err)
	}
	return &GoogleProvider{
		calendarID: config.AppConfig.GoogleCalendarID,
		conf:       conf,
		source:     source,
		svc:        svc,
	}, nil
}

// ListEvents fetches single (expanded) events in [timeMin, timeMax). All-day
// entries carry no time component and are skipped; the grid has no place for
// them.
func (p *GoogleProvider) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]models.ExternalEvent, error) {
	call := p.svc.Events.List(p.calendarID).
		TimeMin(timeMin.Format(time.RFC3339)).
		TimeMax(timeMax.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)

	var events []models.ExternalEvent
	pageToken := ""
	for {
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, classify("list events", err)
		}
		for _, item := range res.Items {
			if item.Start == nil || item.Start.DateTime == "" || item.End == nil || item.End.DateTime == "" {
				continue
			}
			start, err := time.Parse(time.RFC3339, item.Start.DateTime)
			if err != nil {
				continue
			}
			end, err := time.Parse(time.RFC3339, item.End.DateTime)
			if err != nil {
				continue
			}
			events = append(events, models.ExternalEvent{
				ID:          item.Id,
				Start:       start,
				End:         end,
				Summary:     item.Summary,
				Description: item.Description,
			})
		}
		pageToken = res.NextPageToken
		if pageToken == "" {
			return events, nil
		}
	}
}

// CreateEvent inserts a new event and returns its ID.
func (p *GoogleProvider) CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error) {
	ev := &gcal.Event{
		Summary:     summary,
		Description: description,
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	created, err := p.svc.Events.Insert(p.calendarID, ev).Context(ctx).Do()
	if err != nil {
		return "", classify("create event", err)
	}
	return created.Id, nil
}

// UpdateEvent moves an existing event to a new span.
func (p *GoogleProvider) UpdateEvent(ctx context.Context, eventID string, start, end time.Time) error {
	patch := &gcal.Event{
		Start: &gcal.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:   &gcal.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	if _, err := p.svc.Events.Patch(p.calendarID, eventID, patch).Context(ctx).Do(); err != nil {
		return classify("update event", err)
	}
	return nil
}

// DeleteEvent removes an event.
func (p *GoogleProvider) DeleteEvent(ctx context.Context, eventID string) error {
	if err := p.svc.Events.Delete(p.calendarID, eventID).Context(ctx).Do(); err != nil {
		return classify("delete event", err)
	}
	return nil
}

// RefreshToken forces a token exchange against the OAuth endpoint.
func (p *GoogleProvider) RefreshToken(ctx context.Context) (time.Time, error) {
	source := p.conf.TokenSource(ctx, &oauth2.Token{
		RefreshToken: config.AppConfig.GoogleRefreshToken,
	})
	tok, err := source.Token()
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrAuthExpired, err)
	}
	p.source = source
	return tok.Expiry, nil
}

// classify maps provider transport errors onto the error taxonomy.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden:
			return fmt.Errorf("%s: %w: %v", op, ErrAuthExpired, err)
		case apiErr.Code >= 500:
			return fmt.Errorf("%s: %w: %v", op, ErrProviderUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w: %v", op, ErrProviderUnavailable, err)
}
