package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// PostgresStore is the connected-mode Repository. It holds no in-process
// state: every read queries the database, so status and statistics are
// always derived from the freshest stored data.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) ListOKRs(ctx context.Context) ([]OKR, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, department, goal, status, created_at, updated_at
		FROM okrs
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list okrs: %w", err)
	}
	defer rows.Close()

	items := make([]OKR, 0)
	for rows.Next() {
		var item OKR
		if err := rows.Scan(&item.ID, &item.Department, &item.Goal, &item.Status, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan okr: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate okrs: %w", err)
	}

	for i := range items {
		if err := s.loadOKRChildren(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *PostgresStore) GetOKR(ctx context.Context, id string) (OKR, bool, error) {
	var item OKR
	err := s.db.QueryRowContext(ctx, `
		SELECT id, department, goal, status, created_at, updated_at
		FROM okrs
		WHERE id=$1
	`, id).Scan(&item.ID, &item.Department, &item.Goal, &item.Status, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return OKR{}, false, nil
	}
	if err != nil {
		return OKR{}, false, fmt.Errorf("get okr: %w", err)
	}
	if err := s.loadOKRChildren(ctx, &item); err != nil {
		return OKR{}, false, err
	}
	return item, true, nil
}

func (s *PostgresStore) loadOKRChildren(ctx context.Context, okr *OKR) error {
	keyResults, err := s.listKeyResults(ctx, okr.ID)
	if err != nil {
		return err
	}
	okr.KeyResults = keyResults

	initiatives, err := s.listInitiatives(ctx, okr.ID)
	if err != nil {
		return err
	}
	okr.Initiatives = initiatives
	return nil
}

func (s *PostgresStore) listKeyResults(ctx context.Context, okrID string) ([]KeyResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, start_date, end_date, target, current, unit, target_type
		FROM key_results
		WHERE okr_id=$1
		ORDER BY order_index, id
	`, okrID)
	if err != nil {
		return nil, fmt.Errorf("list key results: %w", err)
	}
	defer rows.Close()

	items := make([]KeyResult, 0)
	for rows.Next() {
		var item KeyResult
		if err := rows.Scan(&item.ID, &item.Title, &item.StartDate, &item.EndDate, &item.Target, &item.Current, &item.Unit, &item.TargetType); err != nil {
			return nil, fmt.Errorf("scan key result: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate key results: %w", err)
	}

	for i := range items {
		stages, err := s.listMilestoneStages(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].MilestoneStages = stages

		history, err := s.listProgressHistory(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].ProgressHistory = history
	}
	return items, nil
}

func (s *PostgresStore) listMilestoneStages(ctx context.Context, keyResultID string) ([]MilestoneStage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, weight, progress
		FROM milestone_stages
		WHERE key_result_id=$1
		ORDER BY order_index, id
	`, keyResultID)
	if err != nil {
		return nil, fmt.Errorf("list milestone stages: %w", err)
	}
	defer rows.Close()

	items := make([]MilestoneStage, 0)
	for rows.Next() {
		var item MilestoneStage
		if err := rows.Scan(&item.ID, &item.Name, &item.Weight, &item.Progress); err != nil {
			return nil, fmt.Errorf("scan milestone stage: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate milestone stages: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) listProgressHistory(ctx context.Context, keyResultID string) ([]ProgressEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, value
		FROM progress_history
		WHERE key_result_id=$1
		ORDER BY date, id
	`, keyResultID)
	if err != nil {
		return nil, fmt.Errorf("list progress history: %w", err)
	}
	defer rows.Close()

	items := make([]ProgressEntry, 0)
	for rows.Next() {
		var item ProgressEntry
		if err := rows.Scan(&item.Date, &item.Value); err != nil {
			return nil, fmt.Errorf("scan progress entry: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate progress history: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) listInitiatives(ctx context.Context, okrID string) ([]Initiative, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, completed, assignee
		FROM initiatives
		WHERE okr_id=$1
		ORDER BY order_index, id
	`, okrID)
	if err != nil {
		return nil, fmt.Errorf("list initiatives: %w", err)
	}
	defer rows.Close()

	items := make([]Initiative, 0)
	for rows.Next() {
		var item Initiative
		if err := rows.Scan(&item.ID, &item.Title, &item.Completed, &item.Assignee); err != nil {
			return nil, fmt.Errorf("scan initiative: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate initiatives: %w", err)
	}

	for i := range items {
		comments, err := s.listComments(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Comments = comments
	}
	return items, nil
}

func (s *PostgresStore) listComments(ctx context.Context, initiativeID string) ([]Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author, content, created_at
		FROM comments
		WHERE initiative_id=$1
		ORDER BY created_at, id
	`, initiativeID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	items := make([]Comment, 0)
	for rows.Next() {
		var item Comment
		if err := rows.Scan(&item.ID, &item.Author, &item.Content, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	for i := range items {
		attachments, err := s.listAttachments(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Attachments = attachments
	}
	return items, nil
}

func (s *PostgresStore) listAttachments(ctx context.Context, commentID string) ([]CommentAttachment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, file_name, file_type, file_url, file_size
		FROM comment_attachments
		WHERE comment_id=$1
		ORDER BY id
	`, commentID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	defer rows.Close()

	var items []CommentAttachment
	for rows.Next() {
		var item CommentAttachment
		if err := rows.Scan(&item.ID, &item.FileName, &item.FileType, &item.FileURL, &item.FileSize); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attachments: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertOKR(ctx context.Context, okr OKR) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert okr: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO okrs (id, department, goal, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, okr.ID, okr.Department, okr.Goal, okr.Status, okr.CreatedAt, okr.UpdatedAt); err != nil {
		return fmt.Errorf("insert okr: %w", err)
	}

	if err := insertKeyResultsTx(ctx, tx, okr.ID, okr.KeyResults); err != nil {
		return err
	}
	if err := insertInitiativesTx(ctx, tx, okr.ID, okr.Initiatives); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert okr: %w", err)
	}
	return nil
}

func insertKeyResultsTx(ctx context.Context, tx *sql.Tx, okrID string, keyResults []KeyResult) error {
	for i, keyResult := range keyResults {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO key_results (id, okr_id, title, start_date, end_date, target, current, unit, target_type, order_index)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, keyResult.ID, okrID, keyResult.Title, keyResult.StartDate, keyResult.EndDate, keyResult.Target, keyResult.Current, keyResult.Unit, keyResult.TargetType, i); err != nil {
			return fmt.Errorf("insert key result: %w", err)
		}
		for j, stage := range keyResult.MilestoneStages {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO milestone_stages (id, key_result_id, name, weight, progress, order_index)
				VALUES ($1, $2, $3, $4, $5, $6)
			`, stage.ID, keyResult.ID, stage.Name, stage.Weight, stage.Progress, j); err != nil {
				return fmt.Errorf("insert milestone stage: %w", err)
			}
		}
		for _, entry := range keyResult.ProgressHistory {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO progress_history (key_result_id, date, value)
				VALUES ($1, $2, $3)
			`, keyResult.ID, entry.Date, entry.Value); err != nil {
				return fmt.Errorf("insert progress entry: %w", err)
			}
		}
	}
	return nil
}

func insertInitiativesTx(ctx context.Context, tx *sql.Tx, okrID string, initiatives []Initiative) error {
	for i, initiative := range initiatives {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO initiatives (id, okr_id, title, completed, assignee, order_index)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, initiative.ID, okrID, initiative.Title, initiative.Completed, initiative.Assignee, i); err != nil {
			return fmt.Errorf("insert initiative: %w", err)
		}
		for _, comment := range initiative.Comments {
			if err := insertCommentTx(ctx, tx, initiative.ID, comment); err != nil {
				return err
			}
		}
	}
	return nil
}

func insertCommentTx(ctx context.Context, tx *sql.Tx, initiativeID string, comment Comment) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO comments (id, initiative_id, author, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, comment.ID, initiativeID, comment.Author, comment.Content, comment.CreatedAt); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	for _, attachment := range comment.Attachments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO comment_attachments (id, comment_id, file_name, file_type, file_url, file_size)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, attachment.ID, comment.ID, attachment.FileName, attachment.FileType, attachment.FileURL, attachment.FileSize); err != nil {
			return fmt.Errorf("insert attachment: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) UpdateOKR(ctx context.Context, id string, up OKRUpdate) (OKR, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return OKR{}, false, fmt.Errorf("begin update okr: %w", err)
	}
	defer tx.Rollback()

	setClauses := []string{"updated_at=NOW()"}
	args := []any{id}
	if up.Department != nil {
		args = append(args, *up.Department)
		setClauses = append(setClauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if up.Goal != nil {
		args = append(args, *up.Goal)
		setClauses = append(setClauses, fmt.Sprintf("goal=$%d", len(args)))
	}
	if up.Status != nil {
		args = append(args, *up.Status)
		setClauses = append(setClauses, fmt.Sprintf("status=$%d", len(args)))
	}

	result, err := tx.ExecContext(ctx, `UPDATE okrs SET `+strings.Join(setClauses, ", ")+` WHERE id=$1`, args...)
	if err != nil {
		return OKR{}, false, fmt.Errorf("update okr: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return OKR{}, false, fmt.Errorf("update okr rows: %w", err)
	}
	if affected == 0 {
		return OKR{}, false, nil
	}

	// Replaced nested collections are delete-then-reinsert, never merged.
	if up.KeyResults != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM key_results WHERE okr_id=$1`, id); err != nil {
			return OKR{}, false, fmt.Errorf("delete key results: %w", err)
		}
		if err := insertKeyResultsTx(ctx, tx, id, up.KeyResults); err != nil {
			return OKR{}, false, err
		}
	}
	if up.Initiatives != nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM initiatives WHERE okr_id=$1`, id); err != nil {
			return OKR{}, false, fmt.Errorf("delete initiatives: %w", err)
		}
		if err := insertInitiativesTx(ctx, tx, id, up.Initiatives); err != nil {
			return OKR{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return OKR{}, false, fmt.Errorf("commit update okr: %w", err)
	}
	return s.GetOKR(ctx, id)
}

func (s *PostgresStore) DeleteOKR(ctx context.Context, id string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin delete okr: %w", err)
	}
	defer tx.Rollback()

	// Check-ins reference the OKR without a cascading constraint, so their
	// update rows go first, then the check-ins, then notifications. The OKR
	// row itself cascades to key results, stages, history, initiatives and
	// comments.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM check_in_key_result_updates
		WHERE check_in_id IN (SELECT id FROM check_ins WHERE okr_id=$1)
	`, id); err != nil {
		return false, fmt.Errorf("delete check-in updates: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM check_ins WHERE okr_id=$1`, id); err != nil {
		return false, fmt.Errorf("delete check-ins: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications WHERE okr_id=$1`, id); err != nil {
		return false, fmt.Errorf("delete notifications: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM okrs WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete okr: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete okr rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit delete okr: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) UpdateStageProgress(ctx context.Context, okrID, keyResultID, stageID string, stageProgress int, current float64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin update stage: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE milestone_stages SET progress=$3
		WHERE id=$2 AND key_result_id=$1
	`, keyResultID, stageID, stageProgress)
	if err != nil {
		return false, fmt.Errorf("update stage progress: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update stage rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE key_results SET current=$3
		WHERE id=$2 AND okr_id=$1
	`, okrID, keyResultID, current); err != nil {
		return false, fmt.Errorf("update key result current: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit update stage: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) AppendComment(ctx context.Context, okrID, initiativeID string, comment Comment) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM initiatives WHERE id=$2 AND okr_id=$1)
	`, okrID, initiativeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check initiative: %w", err)
	}
	if !exists {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin append comment: %w", err)
	}
	defer tx.Rollback()

	if err := insertCommentTx(ctx, tx, initiativeID, comment); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit append comment: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) ListCheckIns(ctx context.Context) ([]CheckIn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, okr_id, okr_goal, user_id, user_name, department, message, created_at
		FROM check_ins
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list check-ins: %w", err)
	}
	defer rows.Close()

	items := make([]CheckIn, 0)
	for rows.Next() {
		var item CheckIn
		if err := rows.Scan(&item.ID, &item.OKRID, &item.OKRGoal, &item.UserID, &item.UserName, &item.Department, &item.Message, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan check-in: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check-ins: %w", err)
	}

	for i := range items {
		updates, err := s.listCheckInUpdates(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].KeyResultUpdates = updates
	}
	return items, nil
}

func (s *PostgresStore) listCheckInUpdates(ctx context.Context, checkInID string) ([]CheckInKeyResultUpdate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key_result_id, key_result_title, previous_value, new_value
		FROM check_in_key_result_updates
		WHERE check_in_id=$1
		ORDER BY id
	`, checkInID)
	if err != nil {
		return nil, fmt.Errorf("list check-in updates: %w", err)
	}
	defer rows.Close()

	var items []CheckInKeyResultUpdate
	for rows.Next() {
		var item CheckInKeyResultUpdate
		if err := rows.Scan(&item.KeyResultID, &item.KeyResultTitle, &item.PreviousValue, &item.NewValue); err != nil {
			return nil, fmt.Errorf("scan check-in update: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate check-in updates: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertCheckIn(ctx context.Context, checkIn CheckIn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert check-in: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO check_ins (id, okr_id, okr_goal, user_id, user_name, department, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, checkIn.ID, checkIn.OKRID, checkIn.OKRGoal, checkIn.UserID, checkIn.UserName, checkIn.Department, checkIn.Message, checkIn.CreatedAt); err != nil {
		return fmt.Errorf("insert check-in: %w", err)
	}

	for _, update := range checkIn.KeyResultUpdates {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO check_in_key_result_updates (check_in_id, key_result_id, key_result_title, previous_value, new_value)
			VALUES ($1, $2, $3, $4, $5)
		`, checkIn.ID, update.KeyResultID, update.KeyResultTitle, update.PreviousValue, update.NewValue); err != nil {
			return fmt.Errorf("insert check-in update: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert check-in: %w", err)
	}
	return nil
}

func (s *PostgresStore) ApplyKeyResultValue(ctx context.Context, okrID, keyResultID string, value float64, date time.Time) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin apply value: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE key_results SET current=$3
		WHERE id=$2 AND okr_id=$1
	`, okrID, keyResultID, value)
	if err != nil {
		return false, fmt.Errorf("apply key result value: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply value rows: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO progress_history (key_result_id, date, value)
		VALUES ($1, $2, $3)
	`, keyResultID, date, value); err != nil {
		return false, fmt.Errorf("insert progress entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit apply value: %w", err)
	}
	return true, nil
}

func (s *PostgresStore) ListNotifications(ctx context.Context, userID string) ([]Notification, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, type, title, message, COALESCE(okr_id, ''), COALESCE(key_result_id, ''), read, deadline, created_at
		FROM notifications
		WHERE user_id=$1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := make([]Notification, 0)
	for rows.Next() {
		var item Notification
		var deadline sql.NullTime
		if err := rows.Scan(&item.ID, &item.UserID, &item.Type, &item.Title, &item.Message, &item.OKRID, &item.KeyResultID, &item.Read, &deadline, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		if deadline.Valid {
			item.Deadline = &deadline.Time
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

func (s *PostgresStore) InsertNotification(ctx context.Context, notification Notification) error {
	var okrID, keyResultID any
	if notification.OKRID != "" {
		okrID = notification.OKRID
	}
	if notification.KeyResultID != "" {
		keyResultID = notification.KeyResultID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, type, title, message, okr_id, key_result_id, read, deadline, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, notification.ID, notification.UserID, notification.Type, notification.Title, notification.Message, okrID, keyResultID, notification.Read, notification.Deadline, notification.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasDeadlineReminder(ctx context.Context, userID, okrID string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM notifications
			WHERE user_id=$1 AND okr_id=$2 AND type=$3
		)
	`, userID, okrID, NotificationDeadlineReminder).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check deadline reminder: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) MarkNotificationRead(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark notification rows: %w", err)
	}
	return affected > 0, nil
}

func (s *PostgresStore) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `UPDATE notifications SET read=TRUE WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteNotifications(ctx context.Context, userID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM notifications WHERE user_id=$1`, userID); err != nil {
		return fmt.Errorf("delete notifications: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, bool, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password, profile_picture
		FROM users
		WHERE email=$1
	`, email).Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.ProfilePicture)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("get user by email: %w", err)
	}
	return user, true, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, bool, error) {
	var user User
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password, profile_picture
		FROM users
		WHERE id=$1
	`, id).Scan(&user.ID, &user.Email, &user.Name, &user.Password, &user.ProfilePicture)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, fmt.Errorf("get user by id: %w", err)
	}
	return user, true, nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupSession(ctx context.Context, tokenHash string) (string, bool, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM sessions
		WHERE token_hash=$1 AND expires_at > NOW()
	`, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup session: %w", err)
	}
	return userID, true, nil
}

func (s *PostgresStore) RevokeSession(ctx context.Context, tokenHash string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token_hash=$1`, tokenHash); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *PostgresStore) CompanyInfo(ctx context.Context) (CompanyInfo, error) {
	var info CompanyInfo
	var plan, values string
	err := s.db.QueryRowContext(ctx, `
		SELECT mission, vision, strategic_plan, core_values
		FROM company_info
		WHERE id=1
	`).Scan(&info.Mission, &info.Vision, &plan, &values)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultCompanyInfo(), nil
	}
	if err != nil {
		return CompanyInfo{}, fmt.Errorf("get company info: %w", err)
	}
	info.StrategicPlan = splitLines(plan)
	info.Values = splitLines(values)
	return info, nil
}

func splitLines(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	lines := strings.Split(value, "\n")
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
