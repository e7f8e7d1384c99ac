package calsync

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clinicore/models"
	"clinicore/services/calendar"
	"clinicore/utils"

	"github.com/go-redis/redis/v8"
)

var testLoc = time.FixedZone("IST", 2*60*60)

// fakeProvider counts provider calls and serves canned results per month.
type fakeProvider struct {
	mu         sync.Mutex
	listCalls  int
	refreshes  int
	listErr    error
	listErrs   []error // consumed one per call before falling back to listErr
	events     map[string][]models.ExternalEvent
	listBlock  chan struct{} // when set, ListEvents waits on it
	created    []string
	updated    []string
	deleted    []string
	refreshErr error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{events: map[string][]models.ExternalEvent{}}
}

func (p *fakeProvider) ListEvents(ctx context.Context, timeMin, timeMax time.Time) ([]models.ExternalEvent, error) {
	p.mu.Lock()
	p.listCalls++
	block := p.listBlock
	var err error
	if len(p.listErrs) > 0 {
		err = p.listErrs[0]
		p.listErrs = p.listErrs[1:]
	} else {
		err = p.listErr
	}
	events := p.events[timeMin.Format(utils.MonthKeyLayout)]
	p.mu.Unlock()

	if block != nil {
		<-block
	}
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (p *fakeProvider) CreateEvent(ctx context.Context, summary, description string, start, end time.Time) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.created = append(p.created, summary)
	return "ev-created", nil
}

func (p *fakeProvider) UpdateEvent(ctx context.Context, eventID string, start, end time.Time) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.updated = append(p.updated, eventID)
	return nil
}

func (p *fakeProvider) DeleteEvent(ctx context.Context, eventID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, eventID)
	return nil
}

func (p *fakeProvider) RefreshToken(ctx context.Context) (time.Time, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshes++
	if p.refreshErr != nil {
		return time.Time{}, p.refreshErr
	}
	return time.Now().Add(time.Hour), nil
}

func (p *fakeProvider) calls() (list, refresh int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listCalls, p.refreshes
}

// newTestManager returns an authenticated manager with a controllable clock.
func newTestManager(t *testing.T, p *fakeProvider) (*DefaultManager, *time.Time) {
	t.Helper()
	m := NewManager(p, nil, testLoc)
	clock := time.Date(2025, 3, 10, 12, 0, 0, 0, testLoc)
	m.now = func() time.Time { return clock }
	if err := m.Refresh(context.Background(), true); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return m, &clock
}

func TestFetchEvents_RequiresAuthentication(t *testing.T) {
	m := NewManager(newFakeProvider(), nil, testLoc)
	if _, err := m.FetchEvents(context.Background(), "2025-03", false); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("got %v, want ErrNotAuthenticated", err)
	}
}

func TestFetchEvents_CooldownServesCacheWithAdvisory(t *testing.T) {
	p := newFakeProvider()
	p.events["2025-03"] = []models.ExternalEvent{{ID: "ev-a"}}
	p.events["2025-04"] = []models.ExternalEvent{{ID: "ev-b"}}
	m, clock := newTestManager(t, p)
	ctx := context.Background()

	res, err := m.FetchEvents(ctx, "2025-03", false)
	if err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	if res.FromCache || res.RetryAfter != 0 {
		t.Errorf("first fetch should be a real provider call, got %+v", res)
	}

	// A different period inside the cooldown window must not hit the
	// provider; the advisory tells the caller when to retry.
	*clock = clock.Add(10 * time.Second)
	res, err = m.FetchEvents(ctx, "2025-04", false)
	if err != nil {
		t.Fatalf("cooldown fetch: %v", err)
	}
	if !res.FromCache || res.RetryAfter != utils.FetchCooldown-10*time.Second {
		t.Errorf("cooldown result = %+v, want cached with 20s advisory", res)
	}
	if len(res.Events) != 1 || res.Events[0].ID != "ev-a" {
		t.Errorf("cooldown events = %v, want the last real result", res.Events)
	}

	// The already-loaded period keeps serving from memory with no advisory.
	res, err = m.FetchEvents(ctx, "2025-03", false)
	if err != nil {
		t.Fatalf("loaded fetch: %v", err)
	}
	if !res.FromCache || res.RetryAfter != 0 {
		t.Errorf("loaded result = %+v, want plain cache hit", res)
	}

	// Past the cooldown the pending period fetches for real.
	*clock = clock.Add(utils.FetchCooldown)
	res, err = m.FetchEvents(ctx, "2025-04", false)
	if err != nil {
		t.Fatalf("post-cooldown fetch: %v", err)
	}
	if res.FromCache || len(res.Events) != 1 || res.Events[0].ID != "ev-b" {
		t.Errorf("post-cooldown result = %+v, want fresh ev-b", res)
	}

	if list, _ := p.calls(); list != 2 {
		t.Errorf("provider saw %d list calls, want 2", list)
	}
}

func TestFetchEvents_ForceBypassesLoadCacheNotCooldown(t *testing.T) {
	p := newFakeProvider()
	m, clock := newTestManager(t, p)
	ctx := context.Background()

	if _, err := m.FetchEvents(ctx, "2025-03", false); err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	// force inside the cooldown still may not touch the provider.
	*clock = clock.Add(5 * time.Second)
	res, err := m.FetchEvents(ctx, "2025-03", true)
	if err != nil {
		t.Fatalf("forced fetch: %v", err)
	}
	if !res.FromCache || res.RetryAfter == 0 {
		t.Errorf("forced fetch inside cooldown = %+v, want cached with advisory", res)
	}

	// force after the cooldown bypasses the loaded period.
	*clock = clock.Add(utils.FetchCooldown)
	res, err = m.FetchEvents(ctx, "2025-03", true)
	if err != nil {
		t.Fatalf("forced fetch: %v", err)
	}
	if res.FromCache {
		t.Error("force past the cooldown must refetch")
	}
	if list, _ := p.calls(); list != 2 {
		t.Errorf("provider saw %d list calls, want 2", list)
	}
}

func TestFetchEvents_SingleFlightSharesOneCall(t *testing.T) {
	p := newFakeProvider()
	p.events["2025-03"] = []models.ExternalEvent{{ID: "ev-a"}}
	p.listBlock = make(chan struct{})
	m, _ := newTestManager(t, p)
	ctx := context.Background()

	var joined atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.FetchEvents(ctx, "2025-03", false)
			if err != nil {
				t.Errorf("concurrent fetch: %v", err)
				return
			}
			if len(res.Events) != 1 || res.Events[0].ID != "ev-a" {
				t.Errorf("concurrent result = %v", res.Events)
			}
			joined.Add(1)
		}()
	}

	// Let the goroutines pile up on the in-flight call, then release it.
	time.Sleep(50 * time.Millisecond)
	close(p.listBlock)
	wg.Wait()

	if joined.Load() != 3 {
		t.Fatalf("%d callers completed, want 3", joined.Load())
	}
	if list, _ := p.calls(); list != 1 {
		t.Errorf("provider saw %d list calls, want 1 shared call", list)
	}
}

func TestFetchEvents_UnreachableCacheFallsThroughToProvider(t *testing.T) {
	p := newFakeProvider()
	p.events["2025-03"] = []models.ExternalEvent{{ID: "ev-a"}}
	cache := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		ReadTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	m := NewManager(p, cache, testLoc)
	clock := time.Date(2025, 3, 10, 12, 0, 0, 0, testLoc)
	m.now = func() time.Time { return clock }
	if err := m.Refresh(context.Background(), true); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}

	res, err := m.FetchEvents(context.Background(), "2025-03", false)
	if err != nil {
		t.Fatalf("fetch with dead cache: %v", err)
	}
	if res.FromCache || len(res.Events) != 1 || res.Events[0].ID != "ev-a" {
		t.Errorf("result = %+v, want a fresh provider fetch", res)
	}
	if list, _ := p.calls(); list != 1 {
		t.Errorf("provider saw %d list calls, want 1", list)
	}
}

func TestFetchEvents_AuthExpiredTriggersSingleSilentRefresh(t *testing.T) {
	p := newFakeProvider()
	p.listErrs = []error{calendar.ErrAuthExpired}
	m, _ := newTestManager(t, p)

	_, err := m.FetchEvents(context.Background(), "2025-03", false)
	if !errors.Is(err, calendar.ErrAuthExpired) {
		t.Fatalf("got %v, want the auth error propagated for the caller to retry", err)
	}

	// One refresh came from newTestManager; the failure added exactly one more.
	if _, refresh := p.calls(); refresh != 2 {
		t.Errorf("provider saw %d refreshes, want 2", refresh)
	}
	if !m.IsValid() {
		t.Error("session should be authenticated again after the silent refresh")
	}
}

func TestFetchEvents_FailedSilentRefreshDropsSession(t *testing.T) {
	p := newFakeProvider()
	p.listErrs = []error{calendar.ErrAuthExpired}
	m, _ := newTestManager(t, p)
	p.refreshErr = errors.New("refresh token revoked")

	if _, err := m.FetchEvents(context.Background(), "2025-03", false); !errors.Is(err, calendar.ErrAuthExpired) {
		t.Fatalf("got %v, want the auth error", err)
	}
	if m.IsValid() {
		t.Error("session must drop to unauthenticated when the silent refresh fails")
	}
	if _, err := m.FetchEvents(context.Background(), "2025-03", false); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("follow-up fetch got %v, want ErrNotAuthenticated", err)
	}
}

func TestSignOut_ClearsStateAndAbandonsInflight(t *testing.T) {
	p := newFakeProvider()
	p.events["2025-03"] = []models.ExternalEvent{{ID: "ev-a"}}
	p.listBlock = make(chan struct{})
	m, _ := newTestManager(t, p)
	ctx := context.Background()

	errCh := make(chan error, 1)
	go func() {
		_, err := m.FetchEvents(ctx, "2025-03", false)
		errCh <- err
	}()
	time.Sleep(50 * time.Millisecond)

	m.SignOut()
	close(p.listBlock)

	if err := <-errCh; !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("in-flight fetch got %v, want ErrSessionClosed", err)
	}

	st := m.Status()
	if st.Authenticated || len(st.LoadedPeriods) != 0 || !st.LastFetch.IsZero() {
		t.Errorf("post-signout status = %+v, want everything cleared", st)
	}

	// Re-authenticating starts a fresh session that fetches for real.
	if err := m.Refresh(ctx, true); err != nil {
		t.Fatalf("re-auth: %v", err)
	}
	res, err := m.FetchEvents(ctx, "2025-03", false)
	if err != nil {
		t.Fatalf("post-signin fetch: %v", err)
	}
	if res.FromCache {
		t.Error("first fetch of the new session must hit the provider")
	}
}

func TestGuardedMutation_InvalidatesTouchedMonths(t *testing.T) {
	p := newFakeProvider()
	p.events["2025-03"] = []models.ExternalEvent{{ID: "ev-a"}}
	p.events["2025-04"] = []models.ExternalEvent{{ID: "ev-b"}}
	m, clock := newTestManager(t, p)
	ctx := context.Background()

	if _, err := m.FetchEvents(ctx, "2025-03", false); err != nil {
		t.Fatalf("fetch 03: %v", err)
	}
	*clock = clock.Add(utils.FetchCooldown)
	if _, err := m.FetchEvents(ctx, "2025-04", false); err != nil {
		t.Fatalf("fetch 04: %v", err)
	}

	start := time.Date(2025, 3, 20, 10, 0, 0, 0, testLoc)
	if err := m.UpdateEvent(ctx, "ev-a", start, start.Add(time.Hour)); err != nil {
		t.Fatalf("update: %v", err)
	}

	st := m.Status()
	if len(st.LoadedPeriods) != 1 || st.LoadedPeriods[0] != "2025-04" {
		t.Errorf("loaded periods = %v, want only 2025-04 surviving", st.LoadedPeriods)
	}
}

func TestMutation_RequiresAuthentication(t *testing.T) {
	m := NewManager(newFakeProvider(), nil, testLoc)
	start := time.Date(2025, 3, 20, 10, 0, 0, 0, testLoc)
	if _, err := m.CreateEvent(context.Background(), "x", "", start, start.Add(time.Hour)); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("got %v, want ErrNotAuthenticated", err)
	}
}

func TestMonthBounds(t *testing.T) {
	from, to, err := monthBounds("2025-03", testLoc)
	if err != nil {
		t.Fatalf("monthBounds: %v", err)
	}
	if !from.Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, testLoc)) {
		t.Errorf("from = %v", from)
	}
	if !to.Equal(time.Date(2025, 4, 1, 0, 0, 0, 0, testLoc)) {
		t.Errorf("to = %v", to)
	}
	if _, _, err := monthBounds("march-2025", testLoc); err == nil {
		t.Error("expected error for malformed period")
	}
}
