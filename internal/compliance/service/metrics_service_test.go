package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"compliflow/internal/compliance/model"
	"compliflow/internal/compliance/repository"
	pkgerrors "compliflow/pkg/errors"
)

func newMetricsWithRepo(t *testing.T, repo repository.SubmissionRepository, c *fakeCache) *MetricsService {
	t.Helper()
	cfg := MetricsServiceConfig{Repo: repo, Now: fixedNow}
	if c != nil {
		cfg.Cache = c
	}
	svc, err := NewMetricsService(cfg)
	if err != nil {
		t.Fatalf("new metrics service failed: %v", err)
	}
	return svc
}

func addRow(t *testing.T, repo repository.SubmissionRepository, sub *model.Submission) {
	t.Helper()
	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func floatPtr(v float64) *float64 { return &v }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestMetricsEmptyStore(t *testing.T) {
	repo := repository.NewMemoryRepository()
	svc := newMetricsWithRepo(t, repo, nil)

	period := CalendarMonth(2026, time.August, time.UTC)
	table, err := svc.Compute(context.Background(), []Period{period})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if len(table) != 1 {
		t.Fatalf("expected 1 row, got %d", len(table))
	}

	row := table[0]
	if row.Pieces != 0 || row.TotalPages != 0 || row.VideoCount != 0 {
		t.Fatalf("volume figures should be zero: %+v", row)
	}
	if row.ComplianceRatePct != 0 || row.FirstPassApprovalRatePct != 0 || row.MultiRoundRatePct != 0 {
		t.Fatalf("rates over an empty store must be zero: %+v", row)
	}
	if row.AvgReviewTimeHours != 0 || row.PagesPerHour != 0 {
		t.Fatalf("review figures over an empty store must be zero: %+v", row)
	}
}

func TestMetricsPagesPerHour(t *testing.T) {
	repo := repository.NewMemoryRepository()
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	addRow(t, repo, &model.Submission{
		ID: "SUB-2026-0001", Title: "A", SubmissionDate: date,
		MaterialType: model.MaterialEmail, Source: model.SourceThirdParty,
		Status: model.StatusApproved, PageCount: 10,
		ReviewTimeHours: floatPtr(2.0), CreatedAt: date,
	})
	addRow(t, repo, &model.Submission{
		ID: "SUB-2026-0002", Title: "B", SubmissionDate: date,
		MaterialType: model.MaterialEmail, Source: model.SourceThirdParty,
		Status: model.StatusPending, PageCount: 5,
		CreatedAt: date,
	})

	svc := newMetricsWithRepo(t, repo, nil)
	table, err := svc.Compute(context.Background(), []Period{CalendarMonth(2026, time.August, time.UTC)})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	row := table[0]
	// The unreviewed row is excluded from both sums: 10 pages / 2.0 hours.
	if !almostEqual(row.PagesPerHour, 5.0) {
		t.Fatalf("expected pages per hour 5.0, got %v", row.PagesPerHour)
	}
	if !almostEqual(row.AvgReviewTimeHours, 2.0) {
		t.Fatalf("expected avg review time 2.0, got %v", row.AvgReviewTimeHours)
	}
	if !almostEqual(row.TotalPages, 15) {
		t.Fatalf("expected total pages 15, got %v", row.TotalPages)
	}
}

func TestMetricsRates(t *testing.T) {
	repo := repository.NewMemoryRepository()
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	rows := []*model.Submission{
		{ID: "SUB-2026-0001", Status: model.StatusApproved, ComplianceScore: floatPtr(90), Flags: 4},
		{ID: "SUB-2026-0002", Status: model.StatusRejected, ComplianceScore: floatPtr(60), Flags: 1},
		{ID: "SUB-2026-0003", Status: model.StatusApproved, ComplianceScore: floatPtr(85), Flags: 0},
		{ID: "SUB-2026-0004", Status: model.StatusPending, Flags: 3},
	}
	for _, row := range rows {
		row.Title = "Material " + row.ID
		row.SubmissionDate = date
		row.MaterialType = model.MaterialVideo
		row.Source = model.SourceCorporateMarketing
		row.PageCount = 4
		row.CreatedAt = date
		addRow(t, repo, row)
	}

	svc := newMetricsWithRepo(t, repo, nil)
	table, err := svc.Compute(context.Background(), []Period{CalendarMonth(2026, time.August, time.UTC)})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	row := table[0]
	// 2 of 4 rows score >= 80.
	if !almostEqual(row.ComplianceRatePct, 50) {
		t.Fatalf("expected compliance rate 50, got %v", row.ComplianceRatePct)
	}
	// 2 of 4 rows are Approved.
	if !almostEqual(row.FirstPassApprovalRatePct, 50) {
		t.Fatalf("expected first-pass rate 50, got %v", row.FirstPassApprovalRatePct)
	}
	// 2 of 4 rows have flags > 2.
	if !almostEqual(row.MultiRoundRatePct, 50) {
		t.Fatalf("expected multi-round rate 50, got %v", row.MultiRoundRatePct)
	}
	if !almostEqual(row.VideoCount, 4) {
		t.Fatalf("expected 4 videos, got %v", row.VideoCount)
	}
}

func TestMetricsMonthlyAverageDivisor(t *testing.T) {
	repo := repository.NewMemoryRepository()
	now := fixedNow()
	date := now.AddDate(0, 0, -10)

	for i := 1; i <= 6; i++ {
		addRow(t, repo, &model.Submission{
			ID: model.SubmissionID(2026, i), Title: "Material", SubmissionDate: date,
			MaterialType: model.MaterialBlogPost, Source: model.SourceRFPResponse,
			Status: model.StatusApproved, PageCount: 10,
			ComplianceScore: floatPtr(90), CreatedAt: date,
		})
	}

	svc := newMetricsWithRepo(t, repo, nil)
	table, err := svc.Compute(context.Background(), []Period{TrailingQuarter(now)})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	row := table[0]
	// 6 pieces over a 3-month window report a monthly average of 2.
	if !almostEqual(row.Pieces, 2) {
		t.Fatalf("expected 2 pieces per month, got %v", row.Pieces)
	}
	if !almostEqual(row.TotalPages, 20) {
		t.Fatalf("expected 20 pages per month, got %v", row.TotalPages)
	}
	if !almostEqual(row.PiecesBySource[string(model.SourceRFPResponse)], 2) {
		t.Fatalf("expected grouped pieces divided too, got %v", row.PiecesBySource)
	}
	// Rates are never divided by the window length.
	if !almostEqual(row.ComplianceRatePct, 100) {
		t.Fatalf("expected compliance rate 100, got %v", row.ComplianceRatePct)
	}
}

func TestMetricsInvalidPeriod(t *testing.T) {
	svc := newMetricsWithRepo(t, repository.NewMemoryRepository(), nil)
	now := fixedNow()

	_, err := svc.Compute(context.Background(), []Period{{Name: "empty", Start: now, End: now, Months: 1}})
	if err == nil || !pkgerrors.Is(err, pkgerrors.InvalidPeriod) {
		t.Fatalf("expected InvalidPeriod, got %v", err)
	}

	_, err = svc.Compute(context.Background(), []Period{{Name: "bad divisor", Start: now.AddDate(0, -1, 0), End: now, Months: 0}})
	if err == nil || !pkgerrors.Is(err, pkgerrors.InvalidPeriod) {
		t.Fatalf("expected InvalidPeriod, got %v", err)
	}
}

func TestMetricsCaching(t *testing.T) {
	repo := repository.NewMemoryRepository()
	c := newFakeCache()
	svc := newMetricsWithRepo(t, repo, c)
	ctx := context.Background()
	period := CalendarMonth(2026, time.August, time.UTC)
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	table, err := svc.Compute(ctx, []Period{period})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if table[0].Pieces != 0 {
		t.Fatalf("expected empty table, got %v", table[0].Pieces)
	}

	addRow(t, repo, &model.Submission{
		ID: "SUB-2026-0001", Title: "Material", SubmissionDate: date,
		MaterialType: model.MaterialEmail, Source: model.SourceThirdParty,
		Status: model.StatusPending, PageCount: 3, CreatedAt: date,
	})

	// Still served from cache until the generation counter moves.
	table, err = svc.Compute(ctx, []Period{period})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if table[0].Pieces != 0 {
		t.Fatalf("expected cached result, got %v", table[0].Pieces)
	}

	bumpMetricsGeneration(ctx, c)
	table, err = svc.Compute(ctx, []Period{period})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if !almostEqual(table[0].Pieces, 1) {
		t.Fatalf("expected recomputed result after invalidation, got %v", table[0].Pieces)
	}
}

func TestMetricsDefaultPeriodsShareCacheKey(t *testing.T) {
	repo := repository.NewMemoryRepository()
	c := newFakeCache()
	base := fixedNow()
	calls := 0
	svc, err := NewMetricsService(MetricsServiceConfig{
		Repo:  repo,
		Cache: c,
		Now: func() time.Time {
			calls++
			return base.Add(time.Duration(calls) * time.Minute)
		},
	})
	if err != nil {
		t.Fatalf("new metrics service failed: %v", err)
	}
	ctx := context.Background()

	if _, err := svc.Compute(ctx, nil); err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if _, err := svc.Compute(ctx, nil); err != nil {
		t.Fatalf("compute failed: %v", err)
	}

	// Requests at different wall-clock times within a day must land on
	// one cached table, not mint a fresh key per request.
	keys := 0
	for k := range c.values {
		if k != metricsGenKey && strings.HasPrefix(k, "metrics:g") {
			keys++
		}
	}
	if keys != 1 {
		t.Fatalf("expected one cached table for default periods, got %d keys", keys)
	}
}

func TestSummaryCaching(t *testing.T) {
	repo := repository.NewMemoryRepository()
	c := newFakeCache()
	svc := newMetricsWithRepo(t, repo, c)
	ctx := context.Background()
	date := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	summary, err := svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalSubmissions != 0 {
		t.Fatalf("expected empty summary, got %d", summary.TotalSubmissions)
	}

	addRow(t, repo, &model.Submission{
		ID: "SUB-2026-0001", Title: "Material", SubmissionDate: date,
		MaterialType: model.MaterialEmail, Source: model.SourceThirdParty,
		Status: model.StatusPending, PageCount: 3, CreatedAt: date,
	})

	// Still served from cache until the generation counter moves.
	summary, err = svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalSubmissions != 0 {
		t.Fatalf("expected cached summary, got %d", summary.TotalSubmissions)
	}

	bumpMetricsGeneration(ctx, c)
	summary, err = svc.Summary(ctx)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalSubmissions != 1 {
		t.Fatalf("expected recomputed summary after invalidation, got %d", summary.TotalSubmissions)
	}
}

func TestMetricsSummary(t *testing.T) {
	repo := repository.NewMemoryRepository()
	now := fixedNow()

	rows := []*model.Submission{
		{ID: "SUB-2026-0001", Status: model.StatusApproved, ComplianceScore: floatPtr(95), ReviewTimeHours: floatPtr(3.0)},
		{ID: "SUB-2026-0002", Status: model.StatusPending},
		{ID: "SUB-2026-0003", Status: model.StatusApproved, ComplianceScore: floatPtr(60), ReviewTimeHours: floatPtr(1.0)},
	}
	for _, row := range rows {
		row.Title = "Material " + row.ID
		row.SubmissionDate = now.AddDate(0, 0, -5)
		row.MaterialType = model.MaterialWebpage
		row.Source = model.SourceCorporateMarketing
		row.PageCount = 2
		row.CreatedAt = row.SubmissionDate
		addRow(t, repo, row)
	}

	svc := newMetricsWithRepo(t, repo, nil)
	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if summary.TotalSubmissions != 3 {
		t.Fatalf("expected 3 submissions, got %d", summary.TotalSubmissions)
	}
	if summary.PendingReviews != 1 {
		t.Fatalf("expected 1 pending review, got %d", summary.PendingReviews)
	}
	if len(summary.MaterialTypeCounts) != 1 || summary.MaterialTypeCounts[0].Count != 3 {
		t.Fatalf("unexpected material counts: %+v", summary.MaterialTypeCounts)
	}
	if !almostEqual(summary.ComplianceRatePct, 100.0/3.0) {
		t.Fatalf("unexpected compliance rate: %v", summary.ComplianceRatePct)
	}
	if !almostEqual(summary.AvgReviewTimeHours, 2.0) {
		t.Fatalf("unexpected avg review time: %v", summary.AvgReviewTimeHours)
	}
	if len(summary.MonthlyTrend) != 6 {
		t.Fatalf("expected 6 trend points, got %d", len(summary.MonthlyTrend))
	}
	last := summary.MonthlyTrend[len(summary.MonthlyTrend)-1]
	if last.Pieces != 3 {
		t.Fatalf("expected 3 pieces in the current month, got %d", last.Pieces)
	}
	for _, sc := range summary.StatusCounts {
		if sc.Status == string(model.StatusApproved) && sc.Count != 2 {
			t.Fatalf("expected 2 approved, got %d", sc.Count)
		}
	}
}
