package progress

import (
	"testing"
	"time"

	"okrhub/api/internal/store"
)

func statOKR(id string, department store.Department, status store.OKRStatus, percent float64, created time.Time) store.OKR {
	return store.OKR{
		ID:         id,
		Department: department,
		Status:     status,
		CreatedAt:  created,
		KeyResults: []store.KeyResult{
			{ID: id + "-kr", Current: percent, Target: 100},
		},
	}
}

func TestAggregateStatusPartition(t *testing.T) {
	created := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	okrs := []store.OKR{
		statOKR("a", "Operations", store.StatusOnTrack, 80, created),
		statOKR("b", "Operations", store.StatusAtRisk, 40, created),
		statOKR("c", "HR", store.StatusOffTrack, 10, created),
		statOKR("d", "Finance", store.StatusOnTrack, 90, created),
	}

	stats := Aggregate(okrs, StatsFilter{})
	if stats.Total != 4 {
		t.Fatalf("Total = %d, want 4", stats.Total)
	}
	if stats.OnTrack+stats.AtRisk+stats.OffTrack != stats.Total {
		t.Fatalf("status counts %d+%d+%d do not partition total %d",
			stats.OnTrack, stats.AtRisk, stats.OffTrack, stats.Total)
	}
	if stats.UniqueDepartments != 3 {
		t.Fatalf("UniqueDepartments = %d, want 3", stats.UniqueDepartments)
	}
}

// Departments count equally in the headline number regardless of how many
// OKRs each holds.
func TestAggregateDepartmentEqualWeighting(t *testing.T) {
	created := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	okrs := []store.OKR{
		statOKR("a", "Operations", store.StatusOnTrack, 60, created),
		statOKR("b", "Operations", store.StatusOnTrack, 60, created),
		statOKR("c", "Operations", store.StatusOnTrack, 60, created),
		statOKR("d", "HR", store.StatusOnTrack, 60, created),
	}

	stats := Aggregate(okrs, StatsFilter{})
	if stats.OverallProgress != 60 {
		t.Fatalf("OverallProgress = %d, want 60 (shared progress value)", stats.OverallProgress)
	}
	if stats.DepartmentProgress["Operations"] != 60 || stats.DepartmentProgress["HR"] != 60 {
		t.Fatalf("DepartmentProgress = %v, want 60 for both", stats.DepartmentProgress)
	}
}

func TestAggregateDepartmentMaps(t *testing.T) {
	created := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	okrs := []store.OKR{
		statOKR("a", "Operations", store.StatusOnTrack, 50, created),
	}

	stats := Aggregate(okrs, StatsFilter{})
	if len(stats.DepartmentCounts) != len(store.Departments) {
		t.Fatalf("DepartmentCounts has %d entries, want all %d departments",
			len(stats.DepartmentCounts), len(store.Departments))
	}
	if stats.DepartmentCounts["HR"] != 0 {
		t.Fatalf("DepartmentCounts[HR] = %d, want 0", stats.DepartmentCounts["HR"])
	}
	if _, ok := stats.DepartmentProgress["HR"]; ok {
		t.Fatal("DepartmentProgress includes a department with no OKRs")
	}
	if stats.DepartmentProgress["Operations"] != 50 {
		t.Fatalf("DepartmentProgress[Operations] = %d, want 50", stats.DepartmentProgress["Operations"])
	}
}

func TestAggregateMonthFilter(t *testing.T) {
	january := time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC)
	february := time.Date(2025, time.February, 2, 0, 0, 0, 0, time.UTC)
	okrs := []store.OKR{
		statOKR("a", "Operations", store.StatusOnTrack, 50, january),
		statOKR("b", "Operations", store.StatusOnTrack, 70, february),
	}

	stats := Aggregate(okrs, StatsFilter{Month: &MonthFilter{Year: 2025, Month: time.January}})
	if stats.Total != 1 {
		t.Fatalf("Total = %d, want 1 after January filter", stats.Total)
	}
	if stats.DepartmentProgress["Operations"] != 50 {
		t.Fatalf("DepartmentProgress[Operations] = %d, want 50", stats.DepartmentProgress["Operations"])
	}
}

func TestAggregateDepartmentFilter(t *testing.T) {
	created := time.Date(2025, time.February, 3, 0, 0, 0, 0, time.UTC)
	okrs := []store.OKR{
		statOKR("a", "Operations", store.StatusOnTrack, 50, created),
		statOKR("b", "HR", store.StatusAtRisk, 30, created),
	}

	stats := Aggregate(okrs, StatsFilter{Department: "HR"})
	if stats.Total != 1 || stats.AtRisk != 1 {
		t.Fatalf("filtered stats = %+v, want single HR at-risk OKR", stats)
	}

	all := Aggregate(okrs, StatsFilter{Department: "all"})
	if all.Total != 2 {
		t.Fatalf(`Department "all" Total = %d, want 2`, all.Total)
	}
}

func TestAggregateEmpty(t *testing.T) {
	stats := Aggregate(nil, StatsFilter{})
	if stats.Total != 0 || stats.OverallProgress != 0 || stats.UniqueDepartments != 0 {
		t.Fatalf("empty aggregate = %+v, want zeroes", stats)
	}
}
