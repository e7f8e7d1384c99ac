package calsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"clinicore/models"
	"clinicore/services/calendar"
	"clinicore/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// eventCachePrefix keys the Redis write-through copy of fetched months.
const eventCachePrefix = "gcal:events:"

// eventCacheTTL bounds how long a cached month outlives the process.
const eventCacheTTL = 24 * time.Hour

// keepWarmInterval is how often the background refresh keeps the token alive.
const keepWarmInterval = 10 * time.Minute

type fetchCall struct {
	done   chan struct{}
	events []models.ExternalEvent
	err    error
}

// DefaultManager implements Manager. All session state is guarded by a single
// mutex; provider calls happen outside it and re-check the session epoch on
// completion so results arriving after sign-out are discarded.
type DefaultManager struct {
	Provider calendar.Provider
	Cache    *redis.Client // optional write-through event cache
	Loc      *time.Location

	now func() time.Time

	mu            sync.Mutex
	authenticated bool
	tokenExpiry   time.Time
	lastFetch     time.Time
	epoch         uint64
	loaded        map[string][]models.ExternalEvent
	lastResult    []models.ExternalEvent
	inflight      map[string]*fetchCall
	refreshCancel context.CancelFunc
}

// NewManager builds a manager over the given provider. cache may be nil.
func NewManager(provider calendar.Provider, cache *redis.Client, loc *time.Location) *DefaultManager {
	return &DefaultManager{
		Provider: provider,
		Cache:    cache,
		Loc:      loc,
		now:      time.Now,
		loaded:   make(map[string][]models.ExternalEvent),
		inflight: make(map[string]*fetchCall),
	}
}

// IsValid reports whether the session holds a usable token.
func (m *DefaultManager) IsValid() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.authenticated && (m.tokenExpiry.IsZero() || m.tokenExpiry.After(m.now()))
}

// Refresh exchanges the token. Without force it is a no-op while the current
// token is still valid.
func (m *DefaultManager) Refresh(ctx context.Context, force bool) error {
	m.mu.Lock()
	if !force && m.authenticated && m.tokenExpiry.After(m.now()) {
		m.mu.Unlock()
		return nil
	}
	epoch := m.epoch
	m.mu.Unlock()

	expiry, err := m.Provider.RefreshToken(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return ErrSessionClosed
	}
	if err != nil {
		m.authenticated = false
		return fmt.Errorf("token refresh failed: %w", err)
	}
	m.authenticated = true
	m.tokenExpiry = expiry
	return nil
}

// SignIn establishes the session and starts the background keep-warm refresh.
func (m *DefaultManager) SignIn(ctx context.Context) error {
	if err := m.Refresh(ctx, true); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refreshCancel != nil {
		m.refreshCancel()
	}
	warmCtx, cancel := context.WithCancel(context.Background())
	m.refreshCancel = cancel
	go m.keepWarm(warmCtx)
	return nil
}

// keepWarm periodically force-refreshes the token while the session lives.
func (m *DefaultManager) keepWarm(ctx context.Context) {
	ticker := time.NewTicker(keepWarmInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Refresh(ctx, true); err != nil {
				utils.GetLogger().Warn("background token refresh failed", zap.Error(err))
			}
		}
	}
}

// SignOut tears the session down unconditionally: cancels the keep-warm
// timer, bumps the epoch so in-flight operations abandon their results, and
// clears loaded periods and cached events.
func (m *DefaultManager) SignOut() {
	m.mu.Lock()
	if m.refreshCancel != nil {
		m.refreshCancel()
		m.refreshCancel = nil
	}
	m.epoch++
	m.authenticated = false
	m.tokenExpiry = time.Time{}
	m.lastFetch = time.Time{}
	m.loaded = make(map[string][]models.ExternalEvent)
	m.lastResult = nil
	m.mu.Unlock()

	m.clearEventCache()
}

// Status returns a snapshot of the session state.
func (m *DefaultManager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	periods := make([]string, 0, len(m.loaded))
	for p := range m.loaded {
		periods = append(periods, p)
	}
	return Status{
		Authenticated: m.authenticated,
		TokenExpiry:   m.tokenExpiry,
		LastFetch:     m.lastFetch,
		LoadedPeriods: periods,
	}
}

// FetchEvents returns the events of one month period.
//
// Already-loaded periods come straight from the cache unless force is set.
// The global cooldown blocks any provider call, force included, until it
// elapses; callers get the best cached data plus an advisory wait. Concurrent
// callers for the same period share one in-flight provider call.
func (m *DefaultManager) FetchEvents(ctx context.Context, period string, force bool) (*FetchResult, error) {
	m.mu.Lock()

	checkedCache := force || m.Cache == nil
	for {
		if !m.authenticated {
			m.mu.Unlock()
			return nil, ErrNotAuthenticated
		}

		if events, ok := m.loaded[period]; ok && !force {
			m.mu.Unlock()
			return &FetchResult{Events: events, FromCache: true}, nil
		}

		// Join an outstanding fetch for the same period instead of issuing
		// a duplicate call.
		if call, ok := m.inflight[period]; ok {
			m.mu.Unlock()
			select {
			case <-call.done:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			if call.err != nil {
				return nil, call.err
			}
			return &FetchResult{Events: call.events, FromCache: true}, nil
		}

		if checkedCache {
			break
		}

		// Redis carries months fetched by a previous process life. The read
		// happens with the lock released so a slow cache call cannot stall
		// the session; loaded and inflight are re-checked afterwards.
		m.mu.Unlock()
		events, ok := m.readEventCache(ctx, period)
		m.mu.Lock()
		checkedCache = true
		if ok && m.authenticated {
			m.loaded[period] = events
			m.mu.Unlock()
			return &FetchResult{Events: events, FromCache: true}, nil
		}
	}

	if wait := m.cooldownRemainingLocked(); wait > 0 {
		events, ok := m.loaded[period]
		if !ok {
			events = m.lastResult
		}
		m.mu.Unlock()
		return &FetchResult{Events: events, FromCache: true, RetryAfter: wait}, nil
	}

	call := &fetchCall{done: make(chan struct{})}
	m.inflight[period] = call
	m.lastFetch = m.now()
	epoch := m.epoch
	m.mu.Unlock()

	timeMin, timeMax, err := monthBounds(period, m.Loc)
	var events []models.ExternalEvent
	if err == nil {
		events, err = m.Provider.ListEvents(ctx, timeMin, timeMax)
	}
	if errors.Is(err, calendar.ErrAuthExpired) {
		m.recoverAuth(ctx, epoch)
	}

	m.mu.Lock()
	delete(m.inflight, period)
	if m.epoch != epoch {
		call.err = ErrSessionClosed
		close(call.done)
		m.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if err == nil {
		m.loaded[period] = events
		m.lastResult = events
	}
	call.events, call.err = events, err
	close(call.done)
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	m.writeEventCache(ctx, period, events)
	return &FetchResult{Events: events}, nil
}

// CreateEvent inserts an event at the provider and invalidates the months it touches.
func (m *DefaultManager) CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error) {
	var id string
	err := m.guarded(ctx, func() error {
		var err error
		id, err = m.Provider.CreateEvent(ctx, summary, description, start, end)
		return err
	}, start, end)
	return id, err
}

// UpdateEvent moves an event at the provider and invalidates the months it touches.
func (m *DefaultManager) UpdateEvent(ctx context.Context, eventID string, start, end time.Time) error {
	return m.guarded(ctx, func() error {
		return m.Provider.UpdateEvent(ctx, eventID, start, end)
	}, start, end)
}

// DeleteEvent removes an event at the provider. The whole load cache is
// dropped since the event's span is unknown here.
func (m *DefaultManager) DeleteEvent(ctx context.Context, eventID string) error {
	return m.guarded(ctx, func() error {
		return m.Provider.DeleteEvent(ctx, eventID)
	})
}

// guarded runs one provider mutation: verifies the session, performs the
// call, applies the single silent refresh on auth errors (the caller retries,
// not us), discards results that complete after sign-out, and invalidates
// cached periods the mutation touched.
func (m *DefaultManager) guarded(ctx context.Context, op func() error, instants ...time.Time) error {
	m.mu.Lock()
	if !m.authenticated {
		m.mu.Unlock()
		return ErrNotAuthenticated
	}
	epoch := m.epoch
	m.mu.Unlock()

	err := op()
	if errors.Is(err, calendar.ErrAuthExpired) {
		m.recoverAuth(ctx, epoch)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return ErrSessionClosed
	}
	if err == nil {
		if len(instants) == 0 {
			m.loaded = make(map[string][]models.ExternalEvent)
			m.lastResult = nil
		} else {
			for _, t := range instants {
				delete(m.loaded, t.In(m.Loc).Format(utils.MonthKeyLayout))
			}
		}
	}
	m.mu.Unlock()

	if err == nil && len(instants) == 0 {
		m.clearEventCache()
	} else if err == nil {
		for _, t := range instants {
			m.dropEventCache(ctx, t.In(m.Loc).Format(utils.MonthKeyLayout))
		}
	}
	return err
}

// recoverAuth performs the single silent refresh after an auth-class failure.
// On success the session flips back to authenticated; on failure it flips to
// unauthenticated and the caller must prompt re-authentication.
func (m *DefaultManager) recoverAuth(ctx context.Context, epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	if err := m.Refresh(ctx, true); err != nil {
		utils.GetLogger().Warn("silent token refresh failed", zap.Error(err))
	}
}

func (m *DefaultManager) cooldownRemainingLocked() time.Duration {
	if m.lastFetch.IsZero() {
		return 0
	}
	elapsed := m.now().Sub(m.lastFetch)
	if elapsed >= utils.FetchCooldown {
		return 0
	}
	return utils.FetchCooldown - elapsed
}

// monthBounds resolves a "2006-01" period to its [first, next-first) instants.
func monthBounds(period string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(utils.MonthKeyLayout, period, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period %q: %w", period, err)
	}
	return start, start.AddDate(0, 1, 0), nil
}

func (m *DefaultManager) readEventCache(ctx context.Context, period string) ([]models.ExternalEvent, bool) {
	if m.Cache == nil {
		return nil, false
	}
	data, err := m.Cache.Get(ctx, eventCachePrefix+period).Result()
	if err != nil {
		return nil, false
	}
	var events []models.ExternalEvent
	if err := json.Unmarshal([]byte(data), &events); err != nil {
		return nil, false
	}
	return events, true
}

func (m *DefaultManager) writeEventCache(ctx context.Context, period string, events []models.ExternalEvent) {
	if m.Cache == nil {
		return
	}
	data, err := json.Marshal(events)
	if err != nil {
		return
	}
	if err := m.Cache.Set(ctx, eventCachePrefix+period, data, eventCacheTTL).Err(); err != nil {
		utils.GetLogger().Warn("failed to cache events", zap.String("period", period), zap.Error(err))
	}
}

func (m *DefaultManager) dropEventCache(ctx context.Context, period string) {
	if m.Cache == nil {
		return
	}
	if err := m.Cache.Del(ctx, eventCachePrefix+period).Err(); err != nil {
		utils.GetLogger().Warn("failed to drop cached events", zap.String("period", period), zap.Error(err))
	}
}

func (m *DefaultManager) clearEventCache() {
	if m.Cache == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	iter := m.Cache.Scan(ctx, 0, eventCachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := m.Cache.Del(ctx, iter.Val()).Err(); err != nil {
			utils.GetLogger().Warn("failed to clear cached events", zap.Error(err))
		}
	}
}
