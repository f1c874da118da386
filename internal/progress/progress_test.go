package progress

import (
	"testing"

	"okrhub/api/internal/store"
)

func TestPercent(t *testing.T) {
	cases := []struct {
		name    string
		current float64
		target  float64
		want    int
	}{
		{name: "half", current: 50, target: 100, want: 50},
		{name: "complete", current: 200, target: 200, want: 100},
		{name: "overachieved uncapped", current: 150, target: 100, want: 150},
		{name: "rounds up", current: 1, target: 3, want: 33},
		{name: "rounds half up", current: 1, target: 8, want: 13},
		{name: "zero target", current: 50, target: 0, want: 0},
		{name: "negative target", current: 50, target: -10, want: 0},
		{name: "zero current", current: 0, target: 100, want: 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Percent(tc.current, tc.target); got != tc.want {
				t.Fatalf("Percent(%v, %v) = %d, want %d", tc.current, tc.target, got, tc.want)
			}
		})
	}
}

func TestCappedPercentCapsAtHundred(t *testing.T) {
	if got := CappedPercent(150, 100); got != 100 {
		t.Fatalf("CappedPercent(150, 100) = %d, want 100", got)
	}
	if got := CappedPercent(25, 100); got != 25 {
		t.Fatalf("CappedPercent(25, 100) = %d, want 25", got)
	}
}

func TestMilestoneCurrent(t *testing.T) {
	cases := []struct {
		name   string
		stages []store.MilestoneStage
		want   int
	}{
		{
			name: "four of five stages complete",
			stages: []store.MilestoneStage{
				{Weight: 20, Progress: 100},
				{Weight: 20, Progress: 100},
				{Weight: 20, Progress: 100},
				{Weight: 20, Progress: 100},
				{Weight: 20, Progress: 0},
			},
			want: 80,
		},
		{
			name: "uneven weights",
			stages: []store.MilestoneStage{
				{Weight: 50, Progress: 50},
				{Weight: 30, Progress: 100},
				{Weight: 20, Progress: 0},
			},
			want: 55,
		},
		{
			name:   "no stages",
			stages: nil,
			want:   0,
		},
		{
			name: "weights not summing to 100 still roll up",
			stages: []store.MilestoneStage{
				{Weight: 30, Progress: 100},
				{Weight: 30, Progress: 100},
			},
			want: 60,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MilestoneCurrent(tc.stages); got != tc.want {
				t.Fatalf("MilestoneCurrent() = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestMilestoneCurrentAfterSequentialEdits(t *testing.T) {
	stages := []store.MilestoneStage{
		{ID: "a", Weight: 20, Progress: 0},
		{ID: "b", Weight: 20, Progress: 0},
		{ID: "c", Weight: 20, Progress: 0},
		{ID: "d", Weight: 20, Progress: 0},
		{ID: "e", Weight: 20, Progress: 0},
	}
	for i := range stages[:4] {
		stages[i].Progress = 100
		want := (i + 1) * 20
		if got := MilestoneCurrent(stages); got != want {
			t.Fatalf("after %d edits MilestoneCurrent() = %d, want %d", i+1, got, want)
		}
	}
}

func TestOverall(t *testing.T) {
	keyResults := []store.KeyResult{
		{Current: 50, Target: 100},  // 50
		{Current: 300, Target: 200}, // capped to 100
	}
	if got := Overall(keyResults); got != 75 {
		t.Fatalf("Overall() = %v, want 75", got)
	}
	if got := Overall(nil); got != 0 {
		t.Fatalf("Overall(nil) = %v, want 0", got)
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(-5); got != 0 {
		t.Fatalf("Clamp(-5) = %d, want 0", got)
	}
	if got := Clamp(250); got != 100 {
		t.Fatalf("Clamp(250) = %d, want 100", got)
	}
	if got := Clamp(42); got != 42 {
		t.Fatalf("Clamp(42) = %d, want 42", got)
	}
}
