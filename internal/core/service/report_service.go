package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigwork/contracts-api/internal/core/domain"
	"github.com/gigwork/contracts-api/internal/core/ports"
)

const (
	defaultClientsLimit = 2
	reportCacheTTL      = 60 * time.Second
)

// ReportCache abstracts the cache-aside store (Redis) for report results.
// A nil cache disables caching entirely.
type ReportCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
}

type reportService struct {
	repo  ports.ReportRepository
	cache ReportCache
	log   zerolog.Logger
}

// NewReportService returns a ReportService implementation. cache may be nil.
func NewReportService(repo ports.ReportRepository, cache ReportCache, log zerolog.Logger) ports.ReportService {
	return &reportService{repo: repo, cache: cache, log: log}
}

// BestProfession returns the profession that earned the most from paid jobs
// inside the window, or domain.ErrNoEarnings when the window is empty.
func (s *reportService) BestProfession(ctx context.Context, input ports.BestProfessionInput) (*ports.ProfessionEarnings, error) {
	from, to, err := normalizeWindow(input.Start, input.End)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("report:best-profession:%s:%s", from.Format("2006-01-02"), to.Format("2006-01-02"))
	var cached ports.ProfessionEarnings
	if s.cacheGet(ctx, key, &cached) {
		return &cached, nil
	}

	groups, err := s.repo.ProfessionEarnings(ctx, from, to)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, domain.ErrNoEarnings
	}

	top := groups[0]
	s.cacheSet(ctx, key, top)
	return &top, nil
}

// BestClients returns the clients who paid the most inside the window,
// ordered by total descending. An empty result is a valid answer.
func (s *reportService) BestClients(ctx context.Context, input ports.BestClientsInput) ([]ports.ClientPayments, error) {
	from, to, err := normalizeWindow(input.Start, input.End)
	if err != nil {
		return nil, err
	}
	limit := input.Limit
	if limit == 0 {
		limit = defaultClientsLimit
	}
	if limit < 0 {
		return nil, domain.ErrInvalidInput
	}

	key := fmt.Sprintf("report:best-clients:%s:%s:%d", from.Format("2006-01-02"), to.Format("2006-01-02"), limit)
	var cached []ports.ClientPayments
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	clients, err := s.repo.TopClients(ctx, from, to, limit)
	if err != nil {
		return nil, err
	}
	if clients == nil {
		clients = []ports.ClientPayments{}
	}

	s.cacheSet(ctx, key, clients)
	return clients, nil
}

// normalizeWindow validates the date pair and extends the end date through its
// final instant, so the window is inclusive on both sides.
func normalizeWindow(start, end time.Time) (time.Time, time.Time, error) {
	if start.IsZero() || end.IsZero() || start.After(end) {
		return time.Time{}, time.Time{}, domain.ErrInvalidInput
	}
	from := start.UTC()
	to := endOfDay(end.UTC())
	return from, to, nil
}

func endOfDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

func (s *reportService) cacheGet(ctx context.Context, key string, dest any) bool {
	if s.cache == nil {
		return false
	}
	found, err := s.cache.Get(ctx, key, dest)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("report cache read failed")
		return false
	}
	return found
}

func (s *reportService) cacheSet(ctx context.Context, key string, value any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, reportCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("report cache write failed")
	}
}
