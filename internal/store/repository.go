package store

import (
	"context"
	"time"
)

// OKRUpdate carries a partial update for an OKR. Nil scalar fields are left
// untouched; a non-nil KeyResults or Initiatives slice replaces the nested
// collection wholesale.
type OKRUpdate struct {
	Department  *Department
	Goal        *string
	Status      *OKRStatus
	KeyResults  []KeyResult
	Initiatives []Initiative
}

// Repository is the persistence boundary of the dashboard. Two
// implementations exist: PostgresStore for connected mode and MemoryStore
// for demo mode. The mode is picked once at startup and never changes for
// the lifetime of the process.
//
// Not-found conditions are reported through the boolean return, never as an
// error; errors mean the backend itself failed.
type Repository interface {
	Ping(ctx context.Context) error
	Close() error

	ListOKRs(ctx context.Context) ([]OKR, error)
	GetOKR(ctx context.Context, id string) (OKR, bool, error)
	InsertOKR(ctx context.Context, okr OKR) error
	UpdateOKR(ctx context.Context, id string, up OKRUpdate) (OKR, bool, error)
	DeleteOKR(ctx context.Context, id string) (bool, error)
	UpdateStageProgress(ctx context.Context, okrID, keyResultID, stageID string, stageProgress int, current float64) (bool, error)
	AppendComment(ctx context.Context, okrID, initiativeID string, comment Comment) (bool, error)

	ListCheckIns(ctx context.Context) ([]CheckIn, error)
	InsertCheckIn(ctx context.Context, checkIn CheckIn) error
	ApplyKeyResultValue(ctx context.Context, okrID, keyResultID string, value float64, date time.Time) (bool, error)

	ListNotifications(ctx context.Context, userID string) ([]Notification, error)
	InsertNotification(ctx context.Context, notification Notification) error
	HasDeadlineReminder(ctx context.Context, userID, okrID string) (bool, error)
	MarkNotificationRead(ctx context.Context, id string) (bool, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) error
	DeleteNotifications(ctx context.Context, userID string) error

	GetUserByEmail(ctx context.Context, email string) (User, bool, error)
	GetUserByID(ctx context.Context, id string) (User, bool, error)

	SaveSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupSession(ctx context.Context, tokenHash string) (string, bool, error)
	RevokeSession(ctx context.Context, tokenHash string) error

	CompanyInfo(ctx context.Context) (CompanyInfo, error)
}
