package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"compliflow/internal/common/cache"
	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/repository"
	"compliflow/pkg/errors"
)

const (
	metricsGenKey   = "metrics:gen"
	metricsCacheTTL = 2 * time.Minute
)

// bumpMetricsGeneration invalidates all cached metric computations by
// advancing the generation counter embedded in their cache keys.
func bumpMetricsGeneration(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	_, _ = c.Incr(ctx, metricsGenKey)
}

// MetricsServiceConfig holds dependencies for MetricsService.
type MetricsServiceConfig struct {
	Repo    repository.SubmissionRepository
	Cache   cache.Cache
	Timeout time.Duration
	Now     func() time.Time
}

// MetricsService computes period-bucketed compliance metrics over the
// submission store.
type MetricsService struct {
	repo    repository.SubmissionRepository
	cache   cache.Cache
	timeout time.Duration
	now     func() time.Time
}

// NewMetricsService creates a metrics service. Cache is optional.
func NewMetricsService(cfg MetricsServiceConfig) (*MetricsService, error) {
	if cfg.Repo == nil {
		return nil, fmt.Errorf("repo is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultServiceTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &MetricsService{
		repo:    cfg.Repo,
		cache:   cfg.Cache,
		timeout: cfg.Timeout,
		now:     cfg.Now,
	}, nil
}

// PeriodMetrics is one row of the metrics table. Volume figures (pieces,
// pages, videos and the grouped piece counts) are divided by the period's
// Months so multi-month windows report monthly averages. Rates and the
// review-time average are never divided.
type PeriodMetrics struct {
	Period string `json:"period"`

	Pieces               float64            `json:"pieces"`
	PiecesBySource       map[string]float64 `json:"pieces_by_source"`
	PiecesByMaterialType map[string]float64 `json:"pieces_by_material_type"`
	TotalPages           float64            `json:"total_pages"`
	VideoCount           float64            `json:"video_count"`

	AvgReviewTimeHours       float64 `json:"avg_review_time_hours"`
	PagesPerHour             float64 `json:"pages_per_hour"`
	ComplianceRatePct        float64 `json:"compliance_rate_pct"`
	FirstPassApprovalRatePct float64 `json:"first_pass_approval_rate_pct"`
	MultiRoundRatePct        float64 `json:"multi_round_rate_pct"`
}

// Compute builds the metrics table for the given periods. Results are cached
// until the next submission write.
func (s *MetricsService) Compute(ctx context.Context, periods []Period) ([]*PeriodMetrics, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if len(periods) == 0 {
		periods = DefaultPeriods(s.now())
	}
	for _, p := range periods {
		if !p.End.After(p.Start) {
			return nil, errors.Newf(errors.InvalidPeriod, "period %q has an empty window", p.Name)
		}
		if p.Months < 1 {
			return nil, errors.Newf(errors.InvalidPeriod, "period %q has an invalid month divisor", p.Name)
		}
	}

	compute := func(ctx context.Context) ([]*PeriodMetrics, error) {
		subs, err := s.repo.List(ctx, nil)
		if err != nil {
			return nil, errors.Wrap(err, errors.MetricsComputeFailed)
		}
		table := make([]*PeriodMetrics, 0, len(periods))
		for _, p := range periods {
			table = append(table, computePeriod(p, subs))
		}
		return table, nil
	}

	if s.cache == nil {
		return compute(ctx)
	}

	key, err := s.cacheKey(ctx, periods)
	if err != nil {
		return compute(ctx)
	}
	return cache.GetWithCached(ctx, s.cache, key,
		cache.JitterTTL(metricsCacheTTL), 10*time.Second,
		func(t []*PeriodMetrics) bool { return t == nil },
		func(t []*PeriodMetrics) string {
			data, _ := json.Marshal(t)
			return string(data)
		},
		func(data string) ([]*PeriodMetrics, error) {
			var t []*PeriodMetrics
			if err := json.Unmarshal([]byte(data), &t); err != nil {
				return nil, err
			}
			return t, nil
		},
		compute,
	)
}

// generation reads the current invalidation counter. Cache keys embed it so
// a bump orphans every previously cached table.
func (s *MetricsService) generation(ctx context.Context) (string, error) {
	gen, err := s.cache.Get(ctx, metricsGenKey)
	if err != nil {
		return "", err
	}
	if gen == "" {
		gen = "0"
	}
	return gen, nil
}

func (s *MetricsService) cacheKey(ctx context.Context, periods []Period) (string, error) {
	gen, err := s.generation(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(periods)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("metrics:g%s:%s", gen, hex.EncodeToString(sum[:8])), nil
}

func computePeriod(p Period, subs []*model.Submission) *PeriodMetrics {
	m := &PeriodMetrics{
		Period:               p.Name,
		PiecesBySource:       make(map[string]float64),
		PiecesByMaterialType: make(map[string]float64),
	}

	var (
		total         int
		pages         int
		videos        int
		reviewHours   float64
		reviewed      int
		reviewedPages int
		compliant     int
		approved      int
		multiRound    int
	)
	for _, sub := range subs {
		if !p.Contains(sub.SubmissionDate) {
			continue
		}
		total++
		pages += sub.PageCount
		if sub.MaterialType == model.MaterialVideo {
			videos++
		}
		m.PiecesBySource[string(sub.Source)]++
		m.PiecesByMaterialType[string(sub.MaterialType)]++

		if sub.ReviewTimeHours != nil {
			reviewHours += *sub.ReviewTimeHours
			reviewedPages += sub.PageCount
			reviewed++
		}
		if sub.Compliant() {
			compliant++
		}
		if sub.Status == model.StatusApproved {
			approved++
		}
		if sub.Flags > 2 {
			multiRound++
		}
	}

	divisor := float64(p.Months)
	m.Pieces = float64(total) / divisor
	m.TotalPages = float64(pages) / divisor
	m.VideoCount = float64(videos) / divisor
	for k := range m.PiecesBySource {
		m.PiecesBySource[k] /= divisor
	}
	for k := range m.PiecesByMaterialType {
		m.PiecesByMaterialType[k] /= divisor
	}

	if reviewed > 0 {
		m.AvgReviewTimeHours = reviewHours / float64(reviewed)
	}
	if reviewHours > 0 {
		m.PagesPerHour = float64(reviewedPages) / reviewHours
	}
	if total > 0 {
		m.ComplianceRatePct = float64(compliant) / float64(total) * 100
		m.FirstPassApprovalRatePct = float64(approved) / float64(total) * 100
		m.MultiRoundRatePct = float64(multiRound) / float64(total) * 100
	}
	return m
}

// StatusCount pairs a lifecycle status with its submission count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// MonthVolume is one point of the monthly submission trend.
type MonthVolume struct {
	Month  string `json:"month"`
	Pieces int    `json:"pieces"`
}

// MaterialCount pairs a material type with its submission count.
type MaterialCount struct {
	MaterialType string `json:"material_type"`
	Count        int    `json:"count"`
}

// DashboardSummary is the headline view of the whole store. PendingReviews
// counts submissions still in flight (Pending or In Review).
type DashboardSummary struct {
	TotalSubmissions   int             `json:"total_submissions"`
	PendingReviews     int             `json:"pending_reviews"`
	StatusCounts       []StatusCount   `json:"status_counts"`
	MaterialTypeCounts []MaterialCount `json:"material_type_counts"`
	ComplianceRatePct  float64         `json:"compliance_rate_pct"`
	AvgReviewTimeHours float64         `json:"avg_review_time_hours"`
	MonthlyTrend       []MonthVolume   `json:"monthly_trend"`
}

// Summary computes the dashboard summary over the full store, with a
// six month volume trend. Results are cached under the same generation
// scheme as Compute.
func (s *MetricsService) Summary(ctx context.Context) (*DashboardSummary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.cache == nil {
		return s.computeSummary(ctx)
	}
	gen, err := s.generation(ctx)
	if err != nil {
		return s.computeSummary(ctx)
	}
	key := fmt.Sprintf("metrics:g%s:summary", gen)
	return cache.GetWithCached(ctx, s.cache, key,
		cache.JitterTTL(metricsCacheTTL), 10*time.Second,
		func(d *DashboardSummary) bool { return d == nil },
		func(d *DashboardSummary) string {
			data, _ := json.Marshal(d)
			return string(data)
		},
		func(data string) (*DashboardSummary, error) {
			var d DashboardSummary
			if err := json.Unmarshal([]byte(data), &d); err != nil {
				return nil, err
			}
			return &d, nil
		},
		s.computeSummary,
	)
}

func (s *MetricsService) computeSummary(ctx context.Context) (*DashboardSummary, error) {
	subs, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.MetricsComputeFailed)
	}

	summary := &DashboardSummary{
		TotalSubmissions: len(subs),
	}

	counts := make(map[model.Status]int)
	materials := make(map[model.MaterialType]int)
	var compliant, reviewed int
	var reviewHours float64
	for _, sub := range subs {
		counts[sub.Status]++
		materials[sub.MaterialType]++
		if sub.Status == model.StatusPending || sub.Status == model.StatusInReview {
			summary.PendingReviews++
		}
		if sub.Compliant() {
			compliant++
		}
		if sub.ReviewTimeHours != nil {
			reviewHours += *sub.ReviewTimeHours
			reviewed++
		}
	}
	for _, status := range model.Statuses {
		summary.StatusCounts = append(summary.StatusCounts, StatusCount{
			Status: string(status),
			Count:  counts[status],
		})
	}
	for _, mt := range model.MaterialTypes {
		if materials[mt] == 0 {
			continue
		}
		summary.MaterialTypeCounts = append(summary.MaterialTypeCounts, MaterialCount{
			MaterialType: string(mt),
			Count:        materials[mt],
		})
	}
	if len(subs) > 0 {
		summary.ComplianceRatePct = float64(compliant) / float64(len(subs)) * 100
	}
	if reviewed > 0 {
		summary.AvgReviewTimeHours = reviewHours / float64(reviewed)
	}

	for _, p := range TrailingMonths(s.now(), 6) {
		pieces := 0
		for _, sub := range subs {
			if p.Contains(sub.SubmissionDate) {
				pieces++
			}
		}
		summary.MonthlyTrend = append(summary.MonthlyTrend, MonthVolume{
			Month:  p.Name,
			Pieces: pieces,
		})
	}
	return summary, nil
}
