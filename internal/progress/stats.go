package progress

import (
	"math"
	"time"

	"okrhub/api/internal/store"
)

// StatsFilter narrows the OKR set fed to Aggregate. A nil Month means all
// time; an empty or "all" Department means every department.
type StatsFilter struct {
	Month      *MonthFilter
	Department string
}

type MonthFilter struct {
	Year  int
	Month time.Month
}

// Stats is the dashboard headline block.
type Stats struct {
	Total              int
	OnTrack            int
	AtRisk             int
	OffTrack           int
	OverallProgress    int
	DepartmentProgress map[store.Department]int
	DepartmentCounts   map[store.Department]int
	UniqueDepartments  int
}

// Aggregate computes organization statistics over status-decorated OKRs.
// Departments are weighted equally in OverallProgress: it is the unweighted
// mean of per-department averages, so a department with forty OKRs counts
// the same as one with two. DepartmentProgress only carries departments with
// at least one matching OKR; DepartmentCounts carries all of them.
func Aggregate(okrs []store.OKR, filter StatsFilter) Stats {
	filtered := make([]store.OKR, 0, len(okrs))
	for _, okr := range okrs {
		if filter.Month != nil {
			created := okr.CreatedAt
			if created.Year() != filter.Month.Year || created.Month() != filter.Month.Month {
				continue
			}
		}
		if filter.Department != "" && filter.Department != "all" && string(okr.Department) != filter.Department {
			continue
		}
		filtered = append(filtered, okr)
	}

	stats := Stats{
		Total:              len(filtered),
		DepartmentProgress: make(map[store.Department]int),
		DepartmentCounts:   make(map[store.Department]int),
	}
	for _, okr := range filtered {
		switch okr.Status {
		case store.StatusOnTrack:
			stats.OnTrack++
		case store.StatusAtRisk:
			stats.AtRisk++
		case store.StatusOffTrack:
			stats.OffTrack++
		}
	}

	seen := make(map[store.Department]bool)
	for _, department := range store.Departments {
		count := 0
		sum := 0.0
		for _, okr := range filtered {
			if okr.Department != department {
				continue
			}
			count++
			sum += Overall(okr.KeyResults)
		}
		stats.DepartmentCounts[department] = count
		if count > 0 {
			stats.DepartmentProgress[department] = int(math.Round(sum / float64(count)))
		}
	}
	for _, okr := range filtered {
		seen[okr.Department] = true
	}
	stats.UniqueDepartments = len(seen)

	if len(stats.DepartmentProgress) > 0 {
		total := 0
		for _, value := range stats.DepartmentProgress {
			total += value
		}
		stats.OverallProgress = int(math.Round(float64(total) / float64(len(stats.DepartmentProgress))))
	}
	return stats
}
