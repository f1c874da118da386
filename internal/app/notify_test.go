package app

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"okrhub/api/internal/store"
	"okrhub/api/internal/util"
)

// insertOKR bypasses the create scan so tests control exactly when
// reminders appear.
func insertOKR(t *testing.T, repo *store.MemoryStore, department, goal string, endDates ...time.Time) store.OKR {
	t.Helper()
	now := time.Now()
	okr := store.OKR{
		ID:         util.NewID("okr"),
		Department: store.Department(department),
		Goal:       goal,
		Status:     store.StatusOnTrack,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for i, endDate := range endDates {
		okr.KeyResults = append(okr.KeyResults, store.KeyResult{
			ID:        util.NewID("kr"),
			Title:     fmt.Sprintf("kr %d", i+1),
			StartDate: now,
			EndDate:   endDate,
			Target:    10,
		})
	}
	if err := repo.InsertOKR(context.Background(), okr); err != nil {
		t.Fatalf("InsertOKR failed: %v", err)
	}
	return okr
}

func TestScanDeadlinesRaisesForWindow(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	okr := insertOKR(t, repo, "Operations", "Ship the thing", time.Now().Add(3*24*time.Hour))
	if err := service.ScanDeadlines(ctx, userID, okr); err != nil {
		t.Fatalf("ScanDeadlines failed: %v", err)
	}

	notifications, err := service.Notifications(ctx, userID)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	notification := notifications[0]
	if notification.Type != store.NotificationDeadlineReminder {
		t.Errorf("type = %q", notification.Type)
	}
	if notification.Title != "Upcoming Deadline" {
		t.Errorf("title = %q", notification.Title)
	}
	if notification.Message != `"Ship the thing" is due in 3 days` {
		t.Errorf("message = %q", notification.Message)
	}
	if notification.Department != "Operations" {
		t.Errorf("department = %q", notification.Department)
	}
	if notification.Deadline == nil {
		t.Error("deadline not carried")
	}
	if !strings.HasPrefix(notification.ID, "ntf_") {
		t.Errorf("id = %q", notification.ID)
	}
}

func TestScanDeadlinesIgnoresOutsideWindow(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	// One deadline long past, one far out; neither qualifies.
	okr := insertOKR(t, repo, "HR", "Old and distant",
		time.Now().Add(-30*24*time.Hour),
		time.Now().Add(60*24*time.Hour),
	)
	if err := service.ScanDeadlines(ctx, userID, okr); err != nil {
		t.Fatalf("ScanDeadlines failed: %v", err)
	}
	notifications, _ := service.Notifications(ctx, userID)
	if len(notifications) != 0 {
		t.Fatalf("got %d notifications, want 0", len(notifications))
	}
}

func TestScanDeadlinesPicksNearest(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	// Ceil-of-days counting: a deadline earlier today is day 0, a deadline
	// two hours from now already counts as tomorrow.
	okr := insertOKR(t, repo, "Finance", "Close the books",
		time.Now().Add(6*24*time.Hour),
		time.Now().Add(-2*time.Hour),
	)
	if err := service.ScanDeadlines(ctx, userID, okr); err != nil {
		t.Fatalf("ScanDeadlines failed: %v", err)
	}
	notifications, _ := service.Notifications(ctx, userID)
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications", len(notifications))
	}
	if notifications[0].Message != `"Close the books" is due today` {
		t.Errorf("message = %q", notifications[0].Message)
	}
	if notifications[0].KeyResultID != okr.KeyResults[1].ID {
		t.Errorf("reminder points at %q, want the nearest key result", notifications[0].KeyResultID)
	}
}

func TestScanDeadlinesIdempotent(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	insertOKR(t, repo, "Operations", "A", time.Now().Add(24*time.Hour))
	insertOKR(t, repo, "HR", "B", time.Now().Add(5*24*time.Hour))

	for i := 0; i < 3; i++ {
		if err := service.ScanAllDeadlines(ctx, userID); err != nil {
			t.Fatalf("ScanAllDeadlines failed: %v", err)
		}
	}
	notifications, _ := service.Notifications(ctx, userID)
	if len(notifications) != 2 {
		t.Fatalf("got %d notifications after repeated scans, want 2", len(notifications))
	}
}

func TestScanDeadlinesRequiresUser(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()

	okr := insertOKR(t, repo, "Admin", "No one is watching", time.Now().Add(24*time.Hour))
	if err := service.ScanDeadlines(ctx, "", okr); err != nil {
		t.Fatalf("ScanDeadlines failed: %v", err)
	}
	notifications, _ := service.Notifications(ctx, store.DemoUser.ID)
	if len(notifications) != 0 {
		t.Fatalf("anonymous scan produced %d notifications", len(notifications))
	}
}

func TestDeadlineMessageForms(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{0, `"Launch" is due today`},
		{1, `"Launch" is due tomorrow`},
		{5, `"Launch" is due in 5 days`},
	}
	for _, tc := range cases {
		if got := deadlineMessage("Launch", tc.days); got != tc.want {
			t.Errorf("deadlineMessage(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestNotificationsDropStaleAndDuplicateReminders(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	okr := insertOKR(t, repo, "HSSE", "Audit readiness", time.Now().Add(2*24*time.Hour))

	// Two reminders for the same OKR plus one for an OKR that no longer
	// exists; only the newest live reminder should survive the read.
	base := time.Now()
	for i, okrID := range []string{okr.ID, okr.ID, "okr_deleted"} {
		if err := repo.InsertNotification(ctx, store.Notification{
			ID:        util.NewID("ntf"),
			UserID:    userID,
			Type:      store.NotificationDeadlineReminder,
			Title:     "Upcoming Deadline",
			Message:   "dup",
			OKRID:     okrID,
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}); err != nil {
			t.Fatalf("InsertNotification failed: %v", err)
		}
	}

	notifications, err := service.Notifications(ctx, userID)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want 1", len(notifications))
	}
	if notifications[0].OKRID != okr.ID {
		t.Errorf("surviving notification references %q", notifications[0].OKRID)
	}
}

func TestNotificationsDropDeletedOKRReferences(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	// One update pointing at a deleted OKR, one with no OKR reference.
	if err := repo.InsertNotification(ctx, store.Notification{
		ID:        util.NewID("ntf"),
		UserID:    userID,
		Type:      store.NotificationOKRUpdate,
		Title:     "OKR updated",
		Message:   "the OKR is gone now",
		OKRID:     "okr_gone",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}
	if err := repo.InsertNotification(ctx, store.Notification{
		ID:        util.NewID("ntf"),
		UserID:    userID,
		Type:      store.NotificationCheckInReminder,
		Title:     "Time to check in",
		Message:   "no updates this week",
		CreatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("InsertNotification failed: %v", err)
	}

	notifications, err := service.Notifications(ctx, userID)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(notifications) != 1 {
		t.Fatalf("got %d notifications, want only the unreferenced one", len(notifications))
	}
	if notifications[0].Type != store.NotificationCheckInReminder {
		t.Errorf("surviving type = %q", notifications[0].Type)
	}
	if notifications[0].Department != store.DepartmentOther {
		t.Errorf("department = %q, want %q", notifications[0].Department, store.DepartmentOther)
	}
}

func TestNotificationsNewestFirst(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	base := time.Now()
	for i := 0; i < 3; i++ {
		if err := repo.InsertNotification(ctx, store.Notification{
			ID:        fmt.Sprintf("ntf_%d", i),
			UserID:    userID,
			Type:      store.NotificationCheckInReminder,
			Message:   fmt.Sprintf("reminder %d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("InsertNotification failed: %v", err)
		}
	}

	notifications, err := service.Notifications(ctx, userID)
	if err != nil {
		t.Fatalf("Notifications failed: %v", err)
	}
	if len(notifications) != 3 {
		t.Fatalf("got %d notifications", len(notifications))
	}
	for i := 0; i < len(notifications)-1; i++ {
		if notifications[i].CreatedAt.Before(notifications[i+1].CreatedAt) {
			t.Fatalf("notifications out of order at %d", i)
		}
	}
}

func TestMarkReadAndClear(t *testing.T) {
	service, repo := newTestService()
	ctx := context.Background()
	userID := store.DemoUser.ID

	okr := insertOKR(t, repo, "Review", "Quarterly review", time.Now().Add(24*time.Hour))
	if err := service.ScanDeadlines(ctx, userID, okr); err != nil {
		t.Fatalf("ScanDeadlines failed: %v", err)
	}
	notifications, _ := service.Notifications(ctx, userID)
	if len(notifications) != 1 || notifications[0].Read {
		t.Fatalf("setup notifications = %+v", notifications)
	}

	found, err := service.MarkNotificationRead(ctx, notifications[0].ID)
	if err != nil || !found {
		t.Fatalf("MarkNotificationRead = found=%v err=%v", found, err)
	}
	notifications, _ = service.Notifications(ctx, userID)
	if !notifications[0].Read {
		t.Error("notification still unread")
	}

	if found, err := service.MarkNotificationRead(ctx, "ntf_missing"); err != nil || found {
		t.Fatalf("MarkNotificationRead missing = found=%v err=%v", found, err)
	}

	if err := service.ClearNotifications(ctx, userID); err != nil {
		t.Fatalf("ClearNotifications failed: %v", err)
	}
	notifications, _ = service.Notifications(ctx, userID)
	if len(notifications) != 0 {
		t.Fatalf("notifications after clear = %d", len(notifications))
	}
}

func TestAddNotificationValidatesType(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	notification, err := service.AddNotification(ctx, store.DemoUser.ID, AddNotificationInput{
		Type:    "checkin_reminder",
		Title:   "Time to check in",
		Message: "no updates this week",
	})
	if err != nil {
		t.Fatalf("AddNotification failed: %v", err)
	}
	if !strings.HasPrefix(notification.ID, "ntf_") {
		t.Errorf("id = %q", notification.ID)
	}

	if _, err := service.AddNotification(ctx, store.DemoUser.ID, AddNotificationInput{Type: "loud_noise"}); err == nil {
		t.Fatal("expected invalid type to be rejected")
	}
}
