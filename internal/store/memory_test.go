package store

import (
	"context"
	"testing"
	"time"
)

// Reads must hand back snapshots; mutating what a caller received can never
// leak into the canonical records.
func TestMemoryStoreNotificationSnapshots(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	deadline := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)
	if err := s.InsertNotification(ctx, Notification{
		ID:        "ntf_1",
		UserID:    DemoUser.ID,
		Type:      NotificationDeadlineReminder,
		Title:     "Upcoming Deadline",
		OKRID:     "okr_1",
		Deadline:  &deadline,
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}

	// The caller's pointer is not the stored one.
	deadline = deadline.AddDate(1, 0, 0)

	first, err := s.ListNotifications(ctx, DemoUser.ID)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(first) != 1 || first[0].Deadline == nil {
		t.Fatalf("listed = %+v", first)
	}
	if first[0].Deadline.Year() != 2026 {
		t.Fatalf("insert aliased the caller's deadline: %v", first[0].Deadline)
	}

	// Nor is a listed pointer the stored one.
	*first[0].Deadline = first[0].Deadline.AddDate(2, 0, 0)

	second, err := s.ListNotifications(ctx, DemoUser.ID)
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if second[0].Deadline.Year() != 2026 {
		t.Fatalf("list aliased the stored deadline: %v", second[0].Deadline)
	}
}

func TestMemoryStoreOKRSnapshots(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	now := time.Now()
	if err := s.InsertOKR(ctx, OKR{
		ID:         "okr_1",
		Department: "Operations",
		Goal:       "Snapshot safety",
		KeyResults: []KeyResult{{ID: "kr_1", Title: "kr", Target: 10}},
		CreatedAt:  now,
		UpdatedAt:  now,
	}); err != nil {
		t.Fatalf("InsertOKR failed: %v", err)
	}

	okr, found, err := s.GetOKR(ctx, "okr_1")
	if err != nil || !found {
		t.Fatalf("GetOKR = found=%v err=%v", found, err)
	}
	okr.KeyResults[0].Title = "tampered"

	fresh, _, _ := s.GetOKR(ctx, "okr_1")
	if fresh.KeyResults[0].Title != "kr" {
		t.Fatalf("read aliased the stored key result: %q", fresh.KeyResults[0].Title)
	}
}
