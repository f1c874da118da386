package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DemoUser is the fixed credential available in demo mode.
var DemoUser = User{
	ID:       "demo-user-1",
	Email:    "demo@okrhub.dev",
	Name:     "Demo User",
	Password: "demo123",
}

// MemoryStore keeps all collections in process memory and is the system of
// record when no database is reachable. Every read hands back deep copies so
// callers can never alias the canonical slices; every operation is
// serialized behind one mutex.
type MemoryStore struct {
	mu            sync.Mutex
	okrs          []OKR
	checkIns      []CheckIn
	notifications []Notification
	users         []User
	sessions      map[string]memorySession
	company       CompanyInfo
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    []User{DemoUser},
		sessions: make(map[string]memorySession),
		company:  DefaultCompanyInfo(),
	}
}

func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) ListOKRs(ctx context.Context) ([]OKR, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]OKR, 0, len(s.okrs))
	for _, okr := range s.okrs {
		items = append(items, cloneOKR(okr))
	}
	return items, nil
}

func (s *MemoryStore) GetOKR(ctx context.Context, id string) (OKR, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, okr := range s.okrs {
		if okr.ID == id {
			return cloneOKR(okr), true, nil
		}
	}
	return OKR{}, false, nil
}

func (s *MemoryStore) InsertOKR(ctx context.Context, okr OKR) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// Newest first, matching the connected mode's created_at DESC ordering.
	s.okrs = append([]OKR{cloneOKR(okr)}, s.okrs...)
	return nil
}

func (s *MemoryStore) UpdateOKR(ctx context.Context, id string, up OKRUpdate) (OKR, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.okrs {
		if s.okrs[i].ID != id {
			continue
		}
		if up.Department != nil {
			s.okrs[i].Department = *up.Department
		}
		if up.Goal != nil {
			s.okrs[i].Goal = *up.Goal
		}
		if up.Status != nil {
			s.okrs[i].Status = *up.Status
		}
		if up.KeyResults != nil {
			s.okrs[i].KeyResults = cloneKeyResults(up.KeyResults)
		}
		if up.Initiatives != nil {
			s.okrs[i].Initiatives = cloneInitiatives(up.Initiatives)
		}
		s.okrs[i].UpdatedAt = time.Now()
		return cloneOKR(s.okrs[i]), true, nil
	}
	return OKR{}, false, nil
}

func (s *MemoryStore) DeleteOKR(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := -1
	for i := range s.okrs {
		if s.okrs[i].ID == id {
			index = i
			break
		}
	}
	if index == -1 {
		return false, nil
	}
	s.okrs = append(s.okrs[:index], s.okrs[index+1:]...)

	kept := s.checkIns[:0]
	for _, checkIn := range s.checkIns {
		if checkIn.OKRID != id {
			kept = append(kept, checkIn)
		}
	}
	s.checkIns = kept

	keptNotifications := s.notifications[:0]
	for _, notification := range s.notifications {
		if notification.OKRID != id {
			keptNotifications = append(keptNotifications, notification)
		}
	}
	s.notifications = keptNotifications
	return true, nil
}

func (s *MemoryStore) UpdateStageProgress(ctx context.Context, okrID, keyResultID, stageID string, stageProgress int, current float64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.okrs {
		if s.okrs[i].ID != okrID {
			continue
		}
		for j := range s.okrs[i].KeyResults {
			keyResult := &s.okrs[i].KeyResults[j]
			if keyResult.ID != keyResultID {
				continue
			}
			for k := range keyResult.MilestoneStages {
				if keyResult.MilestoneStages[k].ID != stageID {
					continue
				}
				keyResult.MilestoneStages[k].Progress = stageProgress
				keyResult.Current = current
				return true, nil
			}
			return false, nil
		}
		return false, nil
	}
	return false, nil
}

func (s *MemoryStore) AppendComment(ctx context.Context, okrID, initiativeID string, comment Comment) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.okrs {
		if s.okrs[i].ID != okrID {
			continue
		}
		for j := range s.okrs[i].Initiatives {
			if s.okrs[i].Initiatives[j].ID != initiativeID {
				continue
			}
			s.okrs[i].Initiatives[j].Comments = append(s.okrs[i].Initiatives[j].Comments, cloneComment(comment))
			return true, nil
		}
		return false, nil
	}
	return false, nil
}

func (s *MemoryStore) ListCheckIns(ctx context.Context) ([]CheckIn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]CheckIn, 0, len(s.checkIns))
	for _, checkIn := range s.checkIns {
		items = append(items, cloneCheckIn(checkIn))
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *MemoryStore) InsertCheckIn(ctx context.Context, checkIn CheckIn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkIns = append([]CheckIn{cloneCheckIn(checkIn)}, s.checkIns...)
	return nil
}

func (s *MemoryStore) ApplyKeyResultValue(ctx context.Context, okrID, keyResultID string, value float64, date time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.okrs {
		if s.okrs[i].ID != okrID {
			continue
		}
		for j := range s.okrs[i].KeyResults {
			keyResult := &s.okrs[i].KeyResults[j]
			if keyResult.ID != keyResultID {
				continue
			}
			keyResult.Current = value
			keyResult.ProgressHistory = append(keyResult.ProgressHistory, ProgressEntry{Date: date, Value: value})
			return true, nil
		}
		return false, nil
	}
	return false, nil
}

func (s *MemoryStore) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]Notification, 0, len(s.notifications))
	for _, notification := range s.notifications {
		if notification.UserID == userID {
			items = append(items, cloneNotification(notification))
		}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *MemoryStore) InsertNotification(ctx context.Context, notification Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]Notification{cloneNotification(notification)}, s.notifications...)
	return nil
}

func (s *MemoryStore) HasDeadlineReminder(ctx context.Context, userID, okrID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, notification := range s.notifications {
		if notification.UserID == userID && notification.OKRID == okrID && notification.Type == NotificationDeadlineReminder {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) MarkNotificationRead(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].Read = true
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].UserID == userID {
			s.notifications[i].Read = true
		}
	}
	return nil
}

func (s *MemoryStore) DeleteNotifications(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notifications[:0]
	for _, notification := range s.notifications {
		if notification.UserID != userID {
			kept = append(kept, notification)
		}
	}
	s.notifications = kept
	return nil
}

func (s *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (s *MemoryStore) SaveSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenHash] = memorySession{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) LookupSession(ctx context.Context, tokenHash string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[tokenHash]
	if !ok || time.Now().After(session.expiresAt) {
		return "", false, nil
	}
	return session.userID, true, nil
}

func (s *MemoryStore) RevokeSession(ctx context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}

func (s *MemoryStore) CompanyInfo(ctx context.Context) (CompanyInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info := s.company
	info.StrategicPlan = append([]string(nil), s.company.StrategicPlan...)
	info.Values = append([]string(nil), s.company.Values...)
	return info, nil
}

func cloneOKR(okr OKR) OKR {
	copied := okr
	copied.KeyResults = cloneKeyResults(okr.KeyResults)
	copied.Initiatives = cloneInitiatives(okr.Initiatives)
	return copied
}

func cloneKeyResults(keyResults []KeyResult) []KeyResult {
	if keyResults == nil {
		return nil
	}
	copied := make([]KeyResult, len(keyResults))
	for i, keyResult := range keyResults {
		copied[i] = keyResult
		copied[i].MilestoneStages = append([]MilestoneStage(nil), keyResult.MilestoneStages...)
		copied[i].ProgressHistory = append([]ProgressEntry(nil), keyResult.ProgressHistory...)
	}
	return copied
}

func cloneInitiatives(initiatives []Initiative) []Initiative {
	if initiatives == nil {
		return nil
	}
	copied := make([]Initiative, len(initiatives))
	for i, initiative := range initiatives {
		copied[i] = initiative
		if initiative.Comments != nil {
			comments := make([]Comment, len(initiative.Comments))
			for j, comment := range initiative.Comments {
				comments[j] = cloneComment(comment)
			}
			copied[i].Comments = comments
		}
	}
	return copied
}

func cloneComment(comment Comment) Comment {
	copied := comment
	copied.Attachments = append([]CommentAttachment(nil), comment.Attachments...)
	return copied
}

func cloneNotification(notification Notification) Notification {
	copied := notification
	if notification.Deadline != nil {
		deadline := *notification.Deadline
		copied.Deadline = &deadline
	}
	return copied
}

func cloneCheckIn(checkIn CheckIn) CheckIn {
	copied := checkIn
	copied.KeyResultUpdates = append([]CheckInKeyResultUpdate(nil), checkIn.KeyResultUpdates...)
	return copied
}
