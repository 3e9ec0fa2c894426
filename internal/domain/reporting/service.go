package reporting

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/clinic/clinic/internal/platform/cache"
	"github.com/clinic/clinic/pkg/calendar"
)

// trailingDays is how far back the daily breakdown reaches; the window
// includes today, so it spans trailingDays+1 days.
const trailingDays = 7

const (
	summaryKey        = "clinic:stats:summary"
	detailedKeyPrefix = "clinic:stats:detailed:"
)

// CacheRecorder observes stats cache lookups.
type CacheRecorder interface {
	CacheLookup(hit bool)
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCache serves results from store for ttl. A zero ttl disables caching.
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.cache, s.ttl = store, ttl
		}
	}
}

func WithCacheRecorder(r CacheRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

type Service struct {
	source   Source
	now      func() time.Time
	cache    cache.Store
	ttl      time.Duration
	recorder CacheRecorder
	logger   zerolog.Logger
}

func NewService(source Source, opts ...Option) *Service {
	s := &Service{source: source, now: time.Now, logger: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var out Summary
	err := s.cached(ctx, summaryKey, &out, func() error {
		g, gctx := errgroup.WithContext(ctx)
		s.summaryInto(gctx, g, &out)
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Detailed computes the full dashboard aggregation. Each part is an
// independent read; no snapshot isolation is attempted.
func (s *Service) Detailed(ctx context.Context) (*Detailed, error) {
	today := calendar.Of(s.now())
	var out Detailed
	err := s.cached(ctx, detailedKeyPrefix+today.String(), &out, func() error {
		g, gctx := errgroup.WithContext(ctx)
		s.summaryInto(gctx, g, &out.Summary)
		g.Go(func() error {
			n, err := s.source.CountAppointmentsBetween(gctx, today, today.Next())
			out.TodayAppointments = n
			return err
		})
		g.Go(func() error {
			m, err := s.source.CountByStatus(gctx)
			out.AppointmentsByStatus = m
			return err
		})
		g.Go(func() error {
			days, err := s.source.CountByDay(gctx, today.AddDays(-trailingDays), today.Next())
			out.Last7DaysAppointments = days
			return err
		})
		return g.Wait()
	})
	if err != nil {
		return nil, err
	}
	if out.AppointmentsByStatus == nil {
		out.AppointmentsByStatus = map[string]int64{}
	}
	if out.Last7DaysAppointments == nil {
		out.Last7DaysAppointments = []DayCount{}
	}
	return &out, nil
}

func (s *Service) summaryInto(ctx context.Context, g *errgroup.Group, out *Summary) {
	g.Go(func() error {
		n, err := s.source.CountPatients(ctx)
		out.TotalPatients = n
		return err
	})
	g.Go(func() error {
		n, err := s.source.CountDoctors(ctx)
		out.TotalDoctors = n
		return err
	})
	g.Go(func() error {
		n, err := s.source.CountAppointments(ctx)
		out.TotalAppointments = n
		return err
	})
}

// Invalidate drops the cached results for today. Entries for earlier days
// age out on their own.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	today := calendar.Of(s.now())
	return s.cache.Delete(ctx, summaryKey, detailedKeyPrefix+today.String())
}

// cached fills dst from the cache, or runs compute and stores dst. Cache
// failures are logged and never fail the request.
func (s *Service) cached(ctx context.Context, key string, dst interface{}, compute func() error) error {
	if s.cache == nil {
		return compute()
	}
	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("stats cache read failed")
	}
	if ok {
		if err := json.Unmarshal(raw, dst); err == nil {
			s.lookup(true)
			return nil
		}
		s.logger.Warn().Str("key", key).Msg("discarding undecodable stats cache entry")
	}
	s.lookup(false)

	if err := compute(); err != nil {
		return err
	}
	raw, err = json.Marshal(dst)
	if err != nil {
		return nil
	}
	if err := s.cache.Set(ctx, key, raw, s.ttl); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("stats cache write failed")
	}
	return nil
}

func (s *Service) lookup(hit bool) {
	if s.recorder != nil {
		s.recorder.CacheLookup(hit)
	}
}
