package metar

import (
	"context"
	"sync"
	"time"

	"github.com/jamesrupertball/tempest-weather-airport/pkg/logger"
)

// Fetcher is the data source boundary: all requested stations in one call,
// or the whole call fails
type Fetcher interface {
	FetchStations(ctx context.Context, ids []string) ([]RawStationReport, error)
}

// Presenter receives decoded view-models and scheduling signals. The
// rendering layer behind it is out of this package's hands.
type Presenter interface {
	PresentStations(views []DecodedView, fetchedAt time.Time)
	PresentCountdown(remaining time.Duration)
	PresentFetchError(message string)
}

// Service owns the METAR refresh state machine: it decides at startup and
// periodically thereafter whether to trust the cache or fetch fresh data,
// drives the drift-tolerant countdown, and is the only component that
// mutates the cache and the schedule.
type Service struct {
	config    Config
	fetcher   Fetcher
	cache     *Cache
	presenter Presenter
	logger    *logger.Logger
	location  *time.Location
	now       func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	started     bool
	schedCancel context.CancelFunc
	nextFetch   time.Time
	catchUp     bool // true while the one-shot catch-up timer is armed
	generation  uint64
	lastViews   []DecodedView
	lastFetched time.Time
	haveData    bool
}

// Status is a snapshot of the scheduler state for the API layer
type Status struct {
	Started     bool          `json:"started"`
	HaveData    bool          `json:"have_data"`
	LastFetched time.Time     `json:"last_fetched"`
	NextFetch   time.Time     `json:"next_fetch"`
	Countdown   time.Duration `json:"-"`
	CatchUp     bool          `json:"catch_up"`
}

// NewService creates the METAR service. The location is used for local-time
// display and may be nil.
func NewService(config Config, fetcher Fetcher, cache *Cache, presenter Presenter, location *time.Location, log *logger.Logger) *Service {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		config:    config,
		fetcher:   fetcher,
		cache:     cache,
		presenter: presenter,
		logger:    log.Named("metar-service"),
		location:  location,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start performs the cold-start decision: present cached data and arm the
// one-shot catch-up timer on a cache hit, or fetch immediately on a miss.
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.started = true

	s.logger.Info("Starting METAR service",
		logger.Any("stations", s.config.StationIDs),
		logger.Duration("refresh_interval", s.config.RefreshInterval))

	if entry, ok := s.cache.Load(); ok {
		views := s.decodeAll(entry.Stations)
		s.lastViews = views
		s.lastFetched = entry.FetchedAt
		s.haveData = true
		s.presenter.PresentStations(views, entry.FetchedAt)

		due := entry.FetchedAt.Add(s.config.RefreshInterval).Sub(s.now())
		if due < 0 {
			due = 0
		}
		s.logger.Info("Cache hit on cold start",
			logger.Time("fetched_at", entry.FetchedAt),
			logger.Duration("time_until_due", due))
		s.startScheduleLocked(due)
	} else {
		s.logger.Info("Cache miss on cold start, fetching immediately")
		s.startScheduleLocked(0)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.countdownLoop()
	}()

	return nil
}

// ManualRefresh cancels any pending timer and re-enters the cache-miss path:
// immediate fetch, fresh recurring schedule anchored at the new fetch time.
// An in-flight fetch is not aborted; bumping the generation fences its late
// result out instead.
func (s *Service) ManualRefresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info("Manual refresh triggered")
	if s.schedCancel != nil {
		s.schedCancel()
	}
	s.generation++
	s.startScheduleLocked(0)
}

// Stop tears the scheduler down and waits for its goroutines
func (s *Service) Stop() error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	s.mu.Unlock()

	s.logger.Info("Stopping METAR service")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("METAR service stopped")
	return nil
}

// Views returns the last presented views and their fetch time
func (s *Service) Views() ([]DecodedView, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	views := make([]DecodedView, len(s.lastViews))
	copy(views, s.lastViews)
	return views, s.lastFetched
}

// GetStatus returns a snapshot of the scheduler state
func (s *Service) GetStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	countdown := s.nextFetch.Sub(s.now())
	if countdown < 0 {
		countdown = 0
	}
	return Status{
		Started:     s.started,
		HaveData:    s.haveData,
		LastFetched: s.lastFetched,
		NextFetch:   s.nextFetch,
		Countdown:   countdown,
		CatchUp:     s.catchUp,
	}
}

// startScheduleLocked arms a schedule whose first fetch happens after
// initialDelay and which then recurs at the refresh interval from that fetch
// forward. Caller must hold s.mu.
func (s *Service) startScheduleLocked(initialDelay time.Duration) {
	schedCtx, cancel := context.WithCancel(s.ctx)
	s.schedCancel = cancel
	s.nextFetch = s.now().Add(initialDelay)
	s.catchUp = initialDelay > 0

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSchedule(schedCtx, initialDelay)
	}()
}

// runSchedule is the scheduling state machine: an optional one-shot delay,
// one fetch, then steady-state cadence anchored at that fetch
func (s *Service) runSchedule(ctx context.Context, initialDelay time.Duration) {
	if initialDelay > 0 {
		timer := time.NewTimer(initialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	s.fetchOnce()

	s.mu.Lock()
	s.catchUp = false
	s.mu.Unlock()

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetchOnce()
		}
	}
}

// fetchOnce performs one generation-tagged fetch. The fetch context derives
// from the service lifetime, not the schedule, so a manual refresh does not
// abort an in-flight request; the generation check discards its late result.
func (s *Service) fetchOnce() {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.nextFetch = s.now().Add(s.config.RefreshInterval)
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(s.ctx, s.config.RequestTimeout)
	reports, err := s.fetcher.FetchStations(ctx, s.config.StationIDs)
	cancel()

	s.applyResult(gen, reports, err)
}

// applyResult applies a fetch outcome unless a newer fetch has been issued
// since this one started
func (s *Service) applyResult(gen uint64, reports []RawStationReport, err error) {
	s.mu.Lock()

	if gen != s.generation {
		s.mu.Unlock()
		s.logger.Debug("Dropping superseded fetch result",
			logger.Int64("generation", int64(gen)))
		return
	}

	if err != nil {
		hadData := s.haveData
		s.mu.Unlock()

		s.logger.Error("METAR fetch failed", logger.Error(err))
		s.presenter.PresentFetchError(err.Error())
		if !hadData {
			// Nothing on screen yet: show explicit per-station placeholders
			placeholders := make([]DecodedView, 0, len(s.config.StationIDs))
			for _, id := range s.config.StationIDs {
				placeholders = append(placeholders, ErrorView(id, "Weather data unavailable"))
			}
			s.presenter.PresentStations(placeholders, time.Time{})
		}
		return
	}

	s.cache.Save(reports)
	views := s.decodeAll(reports)
	fetchedAt := s.now()
	s.lastViews = views
	s.lastFetched = fetchedAt
	s.haveData = true
	s.mu.Unlock()

	s.logger.Info("METAR data updated",
		logger.Int("stations", len(views)),
		logger.Time("fetched_at", fetchedAt))
	s.presenter.PresentStations(views, fetchedAt)
}

// decodeAll derives one view per configured station, in configured order. A
// station absent from the response gets an error placeholder instead of
// failing the whole update.
func (s *Service) decodeAll(reports []RawStationReport) []DecodedView {
	byID := make(map[string]RawStationReport, len(reports))
	for _, raw := range reports {
		id := firstNonEmpty(raw.ICAOID, raw.StationID)
		if id != "" {
			byID[id] = raw
		}
	}

	views := make([]DecodedView, 0, len(s.config.StationIDs))
	for _, id := range s.config.StationIDs {
		raw, ok := byID[id]
		if !ok {
			s.logger.Warn("Station missing from response", logger.String("station", id))
			views = append(views, ErrorView(id, "No report received for this station"))
			continue
		}
		views = append(views, BuildView(raw, s.location))
	}
	return views
}

// countdownLoop recomputes time-remaining from the wall clock every second
// rather than decrementing a counter, so it self-corrects for timer drift
// and never goes negative
func (s *Service) countdownLoop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			next := s.nextFetch
			s.mu.Unlock()

			remaining := next.Sub(s.now())
			if remaining < 0 {
				remaining = 0
			}
			s.presenter.PresentCountdown(remaining.Truncate(time.Second))
		}
	}
}
