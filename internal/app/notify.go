package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"okrhub/api/internal/progress"
	"okrhub/api/internal/store"
	"okrhub/api/internal/util"
)

type AddNotificationInput struct {
	Type        string     `json:"type"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	OKRID       string     `json:"okrId"`
	KeyResultID string     `json:"keyResultId"`
	Deadline    *time.Time `json:"deadline"`
}

// deadlineWindowDays is how far ahead a key-result deadline triggers a
// reminder.
const deadlineWindowDays = 7

// ScanDeadlines checks one OKR's key results for deadlines inside the
// reminder window and raises at most one deadline_reminder for the nearest
// of them. A reminder that already exists for this user and OKR suppresses
// the scan, so repeated scans stay idempotent.
func (s *Service) ScanDeadlines(ctx context.Context, userID string, okr store.OKR) error {
	if userID == "" {
		return nil
	}
	exists, err := s.store.HasDeadlineReminder(ctx, userID, okr.ID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	now := time.Now()
	nearestDays := -1
	var nearest store.KeyResult
	for _, keyResult := range okr.KeyResults {
		days := progress.DaysUntil(keyResult.EndDate, now)
		if days < 0 || days > deadlineWindowDays {
			continue
		}
		if nearestDays == -1 || days < nearestDays {
			nearestDays = days
			nearest = keyResult
		}
	}
	if nearestDays == -1 {
		return nil
	}

	deadline := nearest.EndDate
	return s.store.InsertNotification(ctx, store.Notification{
		ID:          util.NewID("ntf"),
		UserID:      userID,
		Type:        store.NotificationDeadlineReminder,
		Title:       "Upcoming Deadline",
		Message:     deadlineMessage(okr.Goal, nearestDays),
		OKRID:       okr.ID,
		KeyResultID: nearest.ID,
		Deadline:    &deadline,
		CreatedAt:   now,
	})
}

func deadlineMessage(goal string, days int) string {
	switch days {
	case 0:
		return fmt.Sprintf("%q is due today", goal)
	case 1:
		return fmt.Sprintf("%q is due tomorrow", goal)
	default:
		return fmt.Sprintf("%q is due in %d days", goal, days)
	}
}

// ScanAllDeadlines runs the deadline scan across every OKR.
func (s *Service) ScanAllDeadlines(ctx context.Context, userID string) error {
	okrs, err := s.store.ListOKRs(ctx)
	if err != nil {
		return err
	}
	for _, okr := range okrs {
		if err := s.ScanDeadlines(ctx, userID, okr); err != nil {
			return err
		}
	}
	return nil
}

// Notifications returns the user's notifications newest first. Any
// notification whose OKR has since been deleted is dropped, and duplicate
// deadline reminders for the same OKR collapse to the newest one. Surviving
// notifications carry the department of their OKR, or "Other" when they
// reference no OKR at all.
func (s *Service) Notifications(ctx context.Context, userID string) ([]store.Notification, error) {
	notifications, err := s.store.ListNotifications(ctx, userID)
	if err != nil {
		return nil, err
	}
	okrs, err := s.store.ListOKRs(ctx)
	if err != nil {
		return nil, err
	}
	departments := make(map[string]store.Department, len(okrs))
	for _, okr := range okrs {
		departments[okr.ID] = okr.Department
	}

	type dedupKey struct {
		okrID string
		kind  store.NotificationType
	}
	seen := make(map[dedupKey]bool)

	result := make([]store.Notification, 0, len(notifications))
	for _, notification := range notifications {
		department, okrExists := departments[notification.OKRID]
		if notification.OKRID != "" && !okrExists {
			continue
		}
		if notification.Type == store.NotificationDeadlineReminder {
			key := dedupKey{okrID: notification.OKRID, kind: notification.Type}
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		if okrExists {
			notification.Department = department
		} else {
			notification.Department = store.DepartmentOther
		}
		result = append(result, notification)
	}
	return result, nil
}

// AddNotification inserts a notification directly, for the types not raised
// by the deadline scanner.
func (s *Service) AddNotification(ctx context.Context, userID string, input AddNotificationInput) (store.Notification, error) {
	kind := store.NotificationType(input.Type)
	switch kind {
	case store.NotificationDeadlineReminder, store.NotificationOKRUpdate, store.NotificationCheckInReminder:
	default:
		return store.Notification{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid notification type", nil)
	}
	notification := store.Notification{
		ID:          util.NewID("ntf"),
		UserID:      userID,
		Type:        kind,
		Title:       input.Title,
		Message:     input.Message,
		OKRID:       input.OKRID,
		KeyResultID: input.KeyResultID,
		Deadline:    input.Deadline,
		CreatedAt:   time.Now(),
	}
	if err := s.store.InsertNotification(ctx, notification); err != nil {
		return store.Notification{}, err
	}
	return notification, nil
}

func (s *Service) MarkNotificationRead(ctx context.Context, id string) (bool, error) {
	return s.store.MarkNotificationRead(ctx, id)
}

func (s *Service) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	return s.store.MarkAllNotificationsRead(ctx, userID)
}

// ClearNotifications hard-deletes the user's notifications.
func (s *Service) ClearNotifications(ctx context.Context, userID string) error {
	return s.store.DeleteNotifications(ctx, userID)
}
