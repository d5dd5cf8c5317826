package service

import (
	"testing"

	"compliflow/internal/compliance/model"
	pkgerrors "compliflow/pkg/errors"
)

func TestRequirementsForSource(t *testing.T) {
	set, err := RequirementsForSource(model.SourceThirdParty)
	if err != nil {
		t.Fatalf("requirements failed: %v", err)
	}
	if len(set.General) != 7 {
		t.Fatalf("expected 7 general rules, got %d", len(set.General))
	}
	if len(set.SourceSpecific) != 5 {
		t.Fatalf("expected 5 source rules, got %d", len(set.SourceSpecific))
	}
	if set.SourceSpecific[0] != "Clear attribution of source" {
		t.Fatalf("unexpected first rule: %s", set.SourceSpecific[0])
	}

	_, err = RequirementsForSource(model.Source("Internal"))
	if err == nil || !pkgerrors.Is(err, pkgerrors.RequirementsNotFound) {
		t.Fatalf("expected RequirementsNotFound, got %v", err)
	}
}

func TestRequirementsCatalog(t *testing.T) {
	catalog := Requirements()
	if len(catalog.Categories) != 4 {
		t.Fatalf("expected 4 categories, got %d", len(catalog.Categories))
	}
	if catalog.Categories[0].Name != "General" {
		t.Fatalf("expected General first, got %s", catalog.Categories[0].Name)
	}
	for _, category := range catalog.Categories[1:] {
		if len(category.Rules) != 5 {
			t.Fatalf("category %s has %d rules, expected 5", category.Name, len(category.Rules))
		}
	}
}

func TestPeriodHelpers(t *testing.T) {
	now := fixedNow()

	quarter := TrailingQuarter(now)
	if quarter.Months != 3 {
		t.Fatalf("trailing quarter should have a 3-month divisor, got %d", quarter.Months)
	}
	if !quarter.Contains(now.AddDate(0, 0, -1)) || quarter.Contains(now) {
		t.Fatalf("trailing quarter window is inclusive-exclusive")
	}

	month := CurrentMonth(now)
	if month.Months != 1 {
		t.Fatalf("calendar month should have divisor 1, got %d", month.Months)
	}
	if !month.Contains(now) {
		t.Fatalf("current month should contain now")
	}

	trend := TrailingMonths(now, 6)
	if len(trend) != 6 {
		t.Fatalf("expected 6 months, got %d", len(trend))
	}
	if trend[5].Name != "Aug 2026" || trend[0].Name != "Mar 2026" {
		t.Fatalf("unexpected trend range: %s .. %s", trend[0].Name, trend[5].Name)
	}
	for i := 1; i < len(trend); i++ {
		if !trend[i].Start.Equal(trend[i-1].End) {
			t.Fatalf("months must be contiguous at index %d", i)
		}
	}
}
