package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"okrhub/api/internal/auth"
	"okrhub/api/internal/authpw"
	"okrhub/api/internal/config"
	"okrhub/api/internal/progress"
	"okrhub/api/internal/store"
	"okrhub/api/internal/util"
)

type Session struct {
	Token     string
	UserID    string
	UserName  string
	Email     string
	ExpiresAt time.Time
}

type MilestoneStageInput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Weight   int    `json:"weight"`
	Progress int    `json:"progress"`
}

type KeyResultInput struct {
	ID              string                `json:"id"`
	Title           string                `json:"title"`
	StartDate       time.Time             `json:"startDate"`
	EndDate         time.Time             `json:"endDate"`
	Target          float64               `json:"target"`
	Current         float64               `json:"current"`
	Unit            string                `json:"unit"`
	TargetType      string                `json:"targetType"`
	MilestoneStages []MilestoneStageInput `json:"milestoneStages"`
}

type InitiativeInput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
	Assignee  string `json:"assignee"`
}

type CreateOKRInput struct {
	Department  string            `json:"department"`
	Goal        string            `json:"goal"`
	KeyResults  []KeyResultInput  `json:"keyResults"`
	Initiatives []InitiativeInput `json:"initiatives"`
}

// UpdateOKRInput carries a partial update. Nil scalar pointers leave the
// stored value alone; a non-nil KeyResults or Initiatives slice replaces the
// nested collection wholesale, matching the repository contract. Recorded
// progress history carries over for key results whose ids survive the
// replacement.
type UpdateOKRInput struct {
	Department  *string           `json:"department"`
	Goal        *string           `json:"goal"`
	Status      *string           `json:"status"`
	KeyResults  []KeyResultInput  `json:"keyResults"`
	Initiatives []InitiativeInput `json:"initiatives"`
}

type CheckInUpdateInput struct {
	KeyResultID string  `json:"keyResultId"`
	NewValue    float64 `json:"newValue"`
}

type CreateCheckInInput struct {
	OKRID   string               `json:"okrId"`
	Message string               `json:"message"`
	Updates []CheckInUpdateInput `json:"updates"`
}

type AttachmentInput struct {
	FileName string `json:"fileName"`
	FileType string `json:"fileType"`
	FileURL  string `json:"fileUrl"`
	FileSize int64  `json:"fileSize"`
}

type CommentInput struct {
	Author      string            `json:"author"`
	Content     string            `json:"content"`
	Attachments []AttachmentInput `json:"attachments"`
}

// sessionStore is the token storage slice of the service. The repository
// satisfies it; a Redis-backed store substitutes when configured.
type sessionStore interface {
	SaveSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error
	LookupSession(ctx context.Context, tokenHash string) (string, bool, error)
	RevokeSession(ctx context.Context, tokenHash string) error
}

type Service struct {
	cfg      config.Config
	store    store.Repository
	sessions sessionStore
	creds    *authpw.Service
	demoMode bool
}

func New(cfg config.Config, repo store.Repository, sessions sessionStore, demoMode bool) *Service {
	if sessions == nil {
		sessions = repo
	}
	return &Service{
		cfg:      cfg,
		store:    repo,
		sessions: sessions,
		creds:    authpw.NewService(repo),
		demoMode: demoMode,
	}
}

func (s *Service) DemoMode() bool {
	return s.demoMode
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	user, ok, err := s.creds.Verify(ctx, email, password)
	if err != nil {
		return Session{}, err
	}
	if !ok {
		return Session{}, domainError(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}

	now := time.Now()
	expiresAt := now.Add(s.cfg.SessionTTL)
	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Name:  user.Name,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}
	if err := s.sessions.SaveSession(ctx, auth.HashToken(token), user.ID, expiresAt); err != nil {
		return Session{}, err
	}

	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.Name,
		Email:     user.Email,
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.RevokeSession(ctx, auth.HashToken(token))
}

// SessionFromToken validates a bearer token: the signature and expiry must
// hold and the server-side session must still exist, so logout takes effect
// immediately regardless of the token's own lifetime.
func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}
	userID, ok, err := s.sessions.LookupSession(ctx, auth.HashToken(token))
	if err != nil {
		return Session{}, err
	}
	if !ok || userID != claims.Sub {
		return Session{}, auth.ErrInvalidToken
	}
	user, found, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, err
	}
	if !found {
		return Session{}, auth.ErrInvalidToken
	}
	return Session{
		Token:     token,
		UserID:    user.ID,
		UserName:  user.Name,
		Email:     user.Email,
		ExpiresAt: time.Unix(claims.Exp, 0),
	}, nil
}

func (s *Service) CreateOKR(ctx context.Context, userID string, input CreateOKRInput) (store.OKR, error) {
	department := store.Department(strings.TrimSpace(input.Department))
	if !store.ValidDepartment(department) {
		return store.OKR{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown department", nil)
	}
	goal := strings.TrimSpace(input.Goal)
	if goal == "" {
		return store.OKR{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "goal is required", nil)
	}

	now := time.Now()
	okr := store.OKR{
		ID:          util.NewID("okr"),
		Department:  department,
		Goal:        goal,
		Status:      store.StatusOnTrack,
		KeyResults:  buildKeyResults(input.KeyResults),
		Initiatives: buildInitiatives(input.Initiatives),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.InsertOKR(ctx, okr); err != nil {
		return store.OKR{}, err
	}

	// Newly created deadlines may already be inside the reminder window.
	if err := s.ScanDeadlines(ctx, userID, okr); err != nil {
		return store.OKR{}, err
	}

	return s.decorate(ctx, okr)
}

func (s *Service) UpdateOKR(ctx context.Context, id string, input UpdateOKRInput) (store.OKR, bool, error) {
	up := store.OKRUpdate{}
	if input.Department != nil {
		department := store.Department(strings.TrimSpace(*input.Department))
		if !store.ValidDepartment(department) {
			return store.OKR{}, false, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown department", nil)
		}
		up.Department = &department
	}
	if input.Goal != nil {
		goal := strings.TrimSpace(*input.Goal)
		if goal == "" {
			return store.OKR{}, false, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "goal cannot be empty", nil)
		}
		up.Goal = &goal
	}
	if input.Status != nil {
		status := store.OKRStatus(*input.Status)
		if status != store.StatusOnTrack && status != store.StatusAtRisk && status != store.StatusOffTrack {
			return store.OKR{}, false, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid status", nil)
		}
		up.Status = &status
	}
	if input.KeyResults != nil {
		existing, found, err := s.store.GetOKR(ctx, id)
		if err != nil || !found {
			return store.OKR{}, found, err
		}
		up.KeyResults = buildKeyResults(input.KeyResults)
		carryProgressHistory(up.KeyResults, existing.KeyResults)
	}
	if input.Initiatives != nil {
		up.Initiatives = buildInitiatives(input.Initiatives)
	}

	okr, found, err := s.store.UpdateOKR(ctx, id, up)
	if err != nil || !found {
		return store.OKR{}, found, err
	}
	decorated, err := s.decorate(ctx, okr)
	return decorated, true, err
}

func (s *Service) DeleteOKR(ctx context.Context, id string) (bool, error) {
	return s.store.DeleteOKR(ctx, id)
}

// UpdateMilestoneStage clamps the stage progress to [0, 100] and rolls the
// weighted stages back up into the key result's current value.
func (s *Service) UpdateMilestoneStage(ctx context.Context, okrID, keyResultID, stageID string, stageProgress int) (store.OKR, bool, error) {
	okr, found, err := s.store.GetOKR(ctx, okrID)
	if err != nil || !found {
		return store.OKR{}, found, err
	}

	var keyResult *store.KeyResult
	for i := range okr.KeyResults {
		if okr.KeyResults[i].ID == keyResultID {
			keyResult = &okr.KeyResults[i]
			break
		}
	}
	if keyResult == nil || !keyResult.TargetType.IsMilestone() {
		return store.OKR{}, false, nil
	}

	clamped := progress.Clamp(stageProgress)
	updated := false
	for i := range keyResult.MilestoneStages {
		if keyResult.MilestoneStages[i].ID == stageID {
			keyResult.MilestoneStages[i].Progress = clamped
			updated = true
			break
		}
	}
	if !updated {
		return store.OKR{}, false, nil
	}

	current := progress.MilestoneCurrent(keyResult.MilestoneStages)
	found, err = s.store.UpdateStageProgress(ctx, okrID, keyResultID, stageID, clamped, float64(current))
	if err != nil || !found {
		return store.OKR{}, found, err
	}

	fresh, found, err := s.store.GetOKR(ctx, okrID)
	if err != nil || !found {
		return store.OKR{}, found, err
	}
	decorated, err := s.decorate(ctx, fresh)
	return decorated, true, err
}

// CreateCheckIn records a progress update against an OKR and applies each
// key-result value transition. This is the only path that appends to a key
// result's progress history.
func (s *Service) CreateCheckIn(ctx context.Context, userID string, input CreateCheckInInput) (store.CheckIn, bool, error) {
	okr, found, err := s.store.GetOKR(ctx, input.OKRID)
	if err != nil || !found {
		return store.CheckIn{}, found, err
	}
	user, found, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return store.CheckIn{}, false, err
	}
	if !found {
		return store.CheckIn{}, false, auth.ErrInvalidToken
	}

	keyResultsByID := make(map[string]store.KeyResult, len(okr.KeyResults))
	for _, keyResult := range okr.KeyResults {
		keyResultsByID[keyResult.ID] = keyResult
	}

	now := time.Now()
	checkIn := store.CheckIn{
		ID:         util.NewID("ci"),
		OKRID:      okr.ID,
		OKRGoal:    okr.Goal,
		UserID:     user.ID,
		UserName:   user.Name,
		Department: okr.Department,
		Message:    strings.TrimSpace(input.Message),
		CreatedAt:  now,
	}
	for _, update := range input.Updates {
		keyResult, ok := keyResultsByID[update.KeyResultID]
		if !ok {
			return store.CheckIn{}, false, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "unknown key result: "+update.KeyResultID, nil)
		}
		checkIn.KeyResultUpdates = append(checkIn.KeyResultUpdates, store.CheckInKeyResultUpdate{
			KeyResultID:    keyResult.ID,
			KeyResultTitle: keyResult.Title,
			PreviousValue:  keyResult.Current,
			NewValue:       update.NewValue,
		})
	}

	if err := s.store.InsertCheckIn(ctx, checkIn); err != nil {
		return store.CheckIn{}, false, err
	}

	today := now.UTC().Truncate(24 * time.Hour)
	for _, update := range checkIn.KeyResultUpdates {
		if _, err := s.store.ApplyKeyResultValue(ctx, okr.ID, update.KeyResultID, update.NewValue, today); err != nil {
			return store.CheckIn{}, false, err
		}
	}
	return checkIn, true, nil
}

func (s *Service) AddComment(ctx context.Context, okrID, initiativeID string, input CommentInput) (store.Comment, bool, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return store.Comment{}, false, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "content is required", nil)
	}
	comment := store.Comment{
		ID:        util.NewID("cmt"),
		Author:    strings.TrimSpace(input.Author),
		Content:   content,
		CreatedAt: time.Now(),
	}
	for _, attachment := range input.Attachments {
		comment.Attachments = append(comment.Attachments, store.CommentAttachment{
			ID:       util.NewID("att"),
			FileName: attachment.FileName,
			FileType: attachment.FileType,
			FileURL:  attachment.FileURL,
			FileSize: attachment.FileSize,
		})
	}
	found, err := s.store.AppendComment(ctx, okrID, initiativeID, comment)
	if err != nil || !found {
		return store.Comment{}, found, err
	}
	return comment, true, nil
}

func (s *Service) GetOKRs(ctx context.Context) ([]store.OKR, error) {
	okrs, err := s.store.ListOKRs(ctx)
	if err != nil {
		return nil, err
	}
	return s.decorateAll(ctx, okrs)
}

func (s *Service) GetOKR(ctx context.Context, id string) (store.OKR, bool, error) {
	okr, found, err := s.store.GetOKR(ctx, id)
	if err != nil || !found {
		return store.OKR{}, found, err
	}
	decorated, err := s.decorate(ctx, okr)
	return decorated, true, err
}

func (s *Service) GetOKRsByDepartment(ctx context.Context, department store.Department) ([]store.OKR, error) {
	okrs, err := s.GetOKRs(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]store.OKR, 0, len(okrs))
	for _, okr := range okrs {
		if okr.Department == department {
			matched = append(matched, okr)
		}
	}
	return matched, nil
}

func (s *Service) CheckIns(ctx context.Context) ([]store.CheckIn, error) {
	return s.store.ListCheckIns(ctx)
}

func (s *Service) CheckInsByOKR(ctx context.Context, okrID string) ([]store.CheckIn, error) {
	checkIns, err := s.store.ListCheckIns(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]store.CheckIn, 0, len(checkIns))
	for _, checkIn := range checkIns {
		if checkIn.OKRID == okrID {
			matched = append(matched, checkIn)
		}
	}
	return matched, nil
}

func (s *Service) CheckInsByMonth(ctx context.Context, year int, month time.Month) ([]store.CheckIn, error) {
	checkIns, err := s.store.ListCheckIns(ctx)
	if err != nil {
		return nil, err
	}
	matched := make([]store.CheckIn, 0, len(checkIns))
	for _, checkIn := range checkIns {
		if checkIn.CreatedAt.Year() == year && checkIn.CreatedAt.Month() == month {
			matched = append(matched, checkIn)
		}
	}
	return matched, nil
}

func (s *Service) GetStats(ctx context.Context, filter progress.StatsFilter) (progress.Stats, error) {
	okrs, err := s.GetOKRs(ctx)
	if err != nil {
		return progress.Stats{}, err
	}
	return progress.Aggregate(okrs, filter), nil
}

func (s *Service) Company(ctx context.Context) (store.CompanyInfo, error) {
	return s.store.CompanyInfo(ctx)
}

// decorate replaces the stored status hint with the freshly evaluated one.
func (s *Service) decorate(ctx context.Context, okr store.OKR) (store.OKR, error) {
	checkIns, err := s.store.ListCheckIns(ctx)
	if err != nil {
		return store.OKR{}, err
	}
	okr.Status = progress.Evaluate(okr, progress.LastActivity(okr, checkIns), time.Now())
	return okr, nil
}

func (s *Service) decorateAll(ctx context.Context, okrs []store.OKR) ([]store.OKR, error) {
	checkIns, err := s.store.ListCheckIns(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range okrs {
		okrs[i].Status = progress.Evaluate(okrs[i], progress.LastActivity(okrs[i], checkIns), now)
	}
	return okrs, nil
}

func buildKeyResults(inputs []KeyResultInput) []store.KeyResult {
	keyResults := make([]store.KeyResult, 0, len(inputs))
	for _, input := range inputs {
		targetType := store.TargetType(input.TargetType)
		if targetType == "" {
			targetType = store.TargetQuantitative
		}
		keyResult := store.KeyResult{
			ID:         input.ID,
			Title:      strings.TrimSpace(input.Title),
			StartDate:  input.StartDate,
			EndDate:    input.EndDate,
			Target:     input.Target,
			Current:    input.Current,
			Unit:       input.Unit,
			TargetType: targetType,
		}
		if keyResult.ID == "" {
			keyResult.ID = util.NewID("kr")
		}
		if targetType.IsMilestone() {
			keyResult.Target = 100
			keyResult.Unit = "%"
			stages := buildMilestoneStages(input.MilestoneStages, targetType)
			keyResult.MilestoneStages = stages
			keyResult.Current = float64(progress.MilestoneCurrent(stages))
		}
		keyResults = append(keyResults, keyResult)
	}
	return keyResults
}

// carryProgressHistory grafts recorded history onto replacement key results
// whose ids survive; check-ins remain the only path that appends to it.
func carryProgressHistory(replacement, existing []store.KeyResult) {
	historyByID := make(map[string][]store.ProgressEntry, len(existing))
	for _, keyResult := range existing {
		historyByID[keyResult.ID] = keyResult.ProgressHistory
	}
	for i := range replacement {
		replacement[i].ProgressHistory = historyByID[replacement[i].ID]
	}
}

func buildMilestoneStages(inputs []MilestoneStageInput, targetType store.TargetType) []store.MilestoneStage {
	var stages []store.MilestoneStage
	if len(inputs) == 0 && targetType == store.TargetMilestone {
		stages = store.DefaultMilestoneStages()
	} else {
		stages = make([]store.MilestoneStage, 0, len(inputs))
		for _, input := range inputs {
			stages = append(stages, store.MilestoneStage{
				ID:       input.ID,
				Name:     strings.TrimSpace(input.Name),
				Weight:   progress.Clamp(input.Weight),
				Progress: progress.Clamp(input.Progress),
			})
		}
	}
	for i := range stages {
		if stages[i].ID == "" {
			stages[i].ID = util.NewID("ms")
		}
	}
	return stages
}

func buildInitiatives(inputs []InitiativeInput) []store.Initiative {
	initiatives := make([]store.Initiative, 0, len(inputs))
	for _, input := range inputs {
		initiative := store.Initiative{
			ID:        input.ID,
			Title:     strings.TrimSpace(input.Title),
			Completed: input.Completed,
			Assignee:  strings.TrimSpace(input.Assignee),
		}
		if initiative.ID == "" {
			initiative.ID = util.NewID("init")
		}
		initiatives = append(initiatives, initiative)
	}
	return initiatives
}
