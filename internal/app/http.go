package app

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"okrhub/api/internal/auth"
	"okrhub/api/internal/progress"
	"okrhub/api/internal/store"
)

type HTTPServer struct {
	service    *Service
	corsOrigin string
}

func NewHTTPServer(service *Service, corsOrigin string) *HTTPServer {
	return &HTTPServer{service: service, corsOrigin: corsOrigin}
}

func (s *HTTPServer) Handler() http.Handler {
	return s.withMiddleware(http.HandlerFunc(s.handle))
}

func (s *HTTPServer) handle(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		writeJSON(w, http.StatusNoContent, map[string]any{})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/health" {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "demoMode": s.service.DemoMode()})
		return
	}

	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && r.URL.Path == "/api/ready" {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := "ready"
		statusCode := http.StatusOK
		checks := map[string]any{
			"store": map[string]any{"status": "ok"},
		}
		if err := s.service.Ping(ctx); err != nil {
			status = "not_ready"
			statusCode = http.StatusServiceUnavailable
			checks["store"] = map[string]any{
				"status": "error",
				"error":  err.Error(),
			}
		}
		writeJSON(w, statusCode, map[string]any{
			"ok":     status == "ready",
			"status": status,
			"checks": checks,
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/login" {
		var body struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		session, err := s.service.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":     session.Token,
			"userId":    session.UserID,
			"userName":  session.UserName,
			"email":     session.Email,
			"expiresAt": session.ExpiresAt.Unix(),
		})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout" {
		_ = s.service.Logout(r.Context(), bearerToken(r))
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/auth/session" {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		session, err := s.service.SessionFromToken(r.Context(), token)
		if err != nil {
			writeJSON(w, http.StatusOK, map[string]any{"authenticated": false, "userName": nil})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"authenticated": true,
			"userId":        session.UserID,
			"userName":      session.UserName,
			"email":         session.Email,
		})
		return
	}

	session, ok := s.requireSession(w, r)
	if !ok {
		return
	}

	if r.URL.Path == "/api/okrs" {
		switch r.Method {
		case http.MethodGet:
			department := strings.TrimSpace(r.URL.Query().Get("department"))
			var okrs []store.OKR
			var err error
			if department != "" && department != "all" {
				okrs, err = s.service.GetOKRsByDepartment(r.Context(), store.Department(department))
			} else {
				okrs, err = s.service.GetOKRs(r.Context())
			}
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			items := make([]map[string]any, 0, len(okrs))
			for _, okr := range okrs {
				items = append(items, okrJSON(okr))
			}
			writeJSON(w, http.StatusOK, map[string]any{"okrs": items})
			return
		case http.MethodPost:
			var body CreateOKRInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			okr, err := s.service.CreateOKR(r.Context(), session.UserID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"okr": okrJSON(okr)})
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if r.URL.Path == "/api/checkins" {
		switch r.Method {
		case http.MethodGet:
			s.handleListCheckIns(w, r)
			return
		case http.MethodPost:
			var body CreateCheckInInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			checkIn, found, err := s.service.CreateCheckIn(r.Context(), session.UserID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			if !found {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "OKR not found", nil)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"checkIn": checkInJSON(checkIn)})
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/stats" {
		filter := progress.StatsFilter{
			Department: strings.TrimSpace(r.URL.Query().Get("department")),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
			month, err := parseMonth(raw)
			if err != nil {
				writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "month must be YYYY-MM", nil)
				return
			}
			filter.Month = month
		}
		stats, err := s.service.GetStats(r.Context(), filter)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, statsJSON(stats))
		return
	}

	if r.Method == http.MethodGet && r.URL.Path == "/api/company" {
		info, err := s.service.Company(r.Context())
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"mission":       info.Mission,
			"vision":        info.Vision,
			"strategicPlan": info.StrategicPlan,
			"values":        info.Values,
		})
		return
	}

	if r.URL.Path == "/api/notifications" {
		switch r.Method {
		case http.MethodGet:
			notifications, err := s.service.Notifications(r.Context(), session.UserID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			items := make([]map[string]any, 0, len(notifications))
			for _, notification := range notifications {
				items = append(items, notificationJSON(notification))
			}
			writeJSON(w, http.StatusOK, map[string]any{"notifications": items})
			return
		case http.MethodPost:
			var body AddNotificationInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			notification, err := s.service.AddNotification(r.Context(), session.UserID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]any{"notification": notificationJSON(notification)})
			return
		case http.MethodDelete:
			if err := s.service.ClearNotifications(r.Context(), session.UserID); err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/notifications/scan" {
		if err := s.service.ScanAllDeadlines(r.Context(), session.UserID); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if r.Method == http.MethodPost && r.URL.Path == "/api/notifications/read-all" {
		if err := s.service.MarkAllNotificationsRead(r.Context(), session.UserID); err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	parts := splitPath(r.URL.Path)

	if len(parts) == 4 && parts[0] == "api" && parts[1] == "notifications" && parts[3] == "read" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		found, err := s.service.MarkNotificationRead(r.Context(), parts[2])
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Notification not found", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}

	if len(parts) >= 3 && parts[0] == "api" && parts[1] == "okrs" {
		s.handleOKR(w, r, session, parts)
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) handleListCheckIns(w http.ResponseWriter, r *http.Request) {
	var checkIns []store.CheckIn
	var err error
	if okrID := strings.TrimSpace(r.URL.Query().Get("okrId")); okrID != "" {
		checkIns, err = s.service.CheckInsByOKR(r.Context(), okrID)
	} else if raw := strings.TrimSpace(r.URL.Query().Get("month")); raw != "" {
		month, parseErr := parseMonth(raw)
		if parseErr != nil {
			writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "month must be YYYY-MM", nil)
			return
		}
		checkIns, err = s.service.CheckInsByMonth(r.Context(), month.Year, month.Month)
	} else {
		checkIns, err = s.service.CheckIns(r.Context())
	}
	if err != nil {
		status, code, message, details := mapError(err)
		writeError(w, status, code, message, details)
		return
	}
	items := make([]map[string]any, 0, len(checkIns))
	for _, checkIn := range checkIns {
		items = append(items, checkInJSON(checkIn))
	}
	writeJSON(w, http.StatusOK, map[string]any{"checkIns": items})
}

func (s *HTTPServer) handleOKR(w http.ResponseWriter, r *http.Request, session Session, parts []string) {
	okrID := parts[2]

	if len(parts) == 3 {
		switch r.Method {
		case http.MethodGet:
			okr, found, err := s.service.GetOKR(r.Context(), okrID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			if !found {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "OKR not found", nil)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"okr": okrJSON(okr)})
			return
		case http.MethodPatch:
			var body UpdateOKRInput
			if err := decodeBody(r, &body); err != nil {
				writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
				return
			}
			okr, found, err := s.service.UpdateOKR(r.Context(), okrID, body)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			if !found {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "OKR not found", nil)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"okr": okrJSON(okr)})
			return
		case http.MethodDelete:
			found, err := s.service.DeleteOKR(r.Context(), okrID)
			if err != nil {
				status, code, message, details := mapError(err)
				writeError(w, status, code, message, details)
				return
			}
			if !found {
				writeError(w, http.StatusNotFound, "NOT_FOUND", "OKR not found", nil)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"ok": true})
			return
		}
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
		return
	}

	if len(parts) == 7 && parts[3] == "key-results" && parts[5] == "stages" {
		if r.Method != http.MethodPatch {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		var body struct {
			Progress int `json:"progress"`
		}
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		okr, found, err := s.service.UpdateMilestoneStage(r.Context(), okrID, parts[4], parts[6], body.Progress)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Milestone stage not found", nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"okr": okrJSON(okr)})
		return
	}

	if len(parts) == 6 && parts[3] == "initiatives" && parts[5] == "comments" {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
			return
		}
		var body CommentInput
		if err := decodeBody(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error(), nil)
			return
		}
		if strings.TrimSpace(body.Author) == "" {
			body.Author = session.UserName
		}
		comment, found, err := s.service.AddComment(r.Context(), okrID, parts[4], body)
		if err != nil {
			status, code, message, details := mapError(err)
			writeError(w, status, code, message, details)
			return
		}
		if !found {
			writeError(w, http.StatusNotFound, "NOT_FOUND", "Initiative not found", nil)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{"comment": commentJSON(comment)})
		return
	}

	writeError(w, http.StatusNotFound, "NOT_FOUND", "Not found", nil)
}

func (s *HTTPServer) requireSession(w http.ResponseWriter, r *http.Request) (Session, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
		return Session{}, false
	}
	session, err := s.service.SessionFromToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredToken) || errors.Is(err, auth.ErrInvalidToken) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
			return Session{}, false
		}
		writeError(w, http.StatusInternalServerError, "SERVER_ERROR", "Session lookup failed", nil)
		return Session{}, false
	}
	return session, true
}

func (s *HTTPServer) withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = randomRequestID()
		}
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		started := time.Now()
		writer := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		setCORSHeaders(writer.Header(), s.corsOrigin)
		writer.Header().Set("X-Request-ID", requestID)

		next.ServeHTTP(writer, r)

		log.Printf(`{"request_id":"%s","method":"%s","path":"%s","status":%d,"duration_ms":%d}`,
			requestID,
			r.Method,
			r.URL.Path,
			writer.status,
			time.Since(started).Milliseconds(),
		)
	})
}

type requestIDKey struct{}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func randomRequestID() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func setCORSHeaders(header http.Header, corsOrigin string) {
	header.Set("Access-Control-Allow-Origin", corsOrigin)
	header.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
	header.Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
	header.Set("Cache-Control", "no-store")
	header.Set("Content-Type", "application/json")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	response := map[string]any{
		"code":  code,
		"error": message,
	}
	if details != nil {
		response["details"] = details
	}
	writeJSON(w, status, response)
}

func decodeBody(r *http.Request, target any) error {
	if r.Body == nil {
		return nil
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, http.ErrBodyReadAfterClose) {
			return nil
		}
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func parseMonth(raw string) (*progress.MonthFilter, error) {
	fields := strings.SplitN(raw, "-", 2)
	if len(fields) != 2 {
		return nil, fmt.Errorf("bad month %q", raw)
	}
	year, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, err
	}
	month, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("bad month %q", raw)
	}
	return &progress.MonthFilter{Year: year, Month: time.Month(month)}, nil
}

func mapError(err error) (status int, code, message string, details any) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Status, domainErr.Code, domainErr.Message, domainErr.Details
	}
	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, "NOT_FOUND", "Not found", nil
	}
	if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrExpiredToken) {
		return http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil
	}
	return http.StatusInternalServerError, "SERVER_ERROR", "Server error", nil
}

func okrJSON(okr store.OKR) map[string]any {
	keyResults := make([]map[string]any, 0, len(okr.KeyResults))
	for _, keyResult := range okr.KeyResults {
		keyResults = append(keyResults, keyResultJSON(keyResult))
	}
	initiatives := make([]map[string]any, 0, len(okr.Initiatives))
	for _, initiative := range okr.Initiatives {
		initiatives = append(initiatives, initiativeJSON(initiative))
	}
	return map[string]any{
		"id":          okr.ID,
		"department":  string(okr.Department),
		"goal":        okr.Goal,
		"status":      string(okr.Status),
		"progress":    int(math.Round(progress.Overall(okr.KeyResults))),
		"keyResults":  keyResults,
		"initiatives": initiatives,
		"createdAt":   okr.CreatedAt.Format(time.RFC3339),
		"updatedAt":   okr.UpdatedAt.Format(time.RFC3339),
	}
}

func keyResultJSON(keyResult store.KeyResult) map[string]any {
	item := map[string]any{
		"id":         keyResult.ID,
		"title":      keyResult.Title,
		"startDate":  keyResult.StartDate.Format(time.RFC3339),
		"endDate":    keyResult.EndDate.Format(time.RFC3339),
		"target":     keyResult.Target,
		"current":    keyResult.Current,
		"unit":       keyResult.Unit,
		"targetType": string(keyResult.TargetType),
		"progress":   progress.CappedPercent(keyResult.Current, keyResult.Target),
	}
	if len(keyResult.MilestoneStages) > 0 {
		stages := make([]map[string]any, 0, len(keyResult.MilestoneStages))
		for _, stage := range keyResult.MilestoneStages {
			stages = append(stages, map[string]any{
				"id":       stage.ID,
				"name":     stage.Name,
				"weight":   stage.Weight,
				"progress": stage.Progress,
			})
		}
		item["milestoneStages"] = stages
	}
	if len(keyResult.ProgressHistory) > 0 {
		history := make([]map[string]any, 0, len(keyResult.ProgressHistory))
		for _, entry := range keyResult.ProgressHistory {
			history = append(history, map[string]any{
				"date":  entry.Date.Format("2006-01-02"),
				"value": entry.Value,
			})
		}
		item["progressHistory"] = history
	}
	return item
}

func initiativeJSON(initiative store.Initiative) map[string]any {
	comments := make([]map[string]any, 0, len(initiative.Comments))
	for _, comment := range initiative.Comments {
		comments = append(comments, commentJSON(comment))
	}
	return map[string]any{
		"id":        initiative.ID,
		"title":     initiative.Title,
		"completed": initiative.Completed,
		"assignee":  initiative.Assignee,
		"comments":  comments,
	}
}

func commentJSON(comment store.Comment) map[string]any {
	item := map[string]any{
		"id":        comment.ID,
		"author":    comment.Author,
		"content":   comment.Content,
		"createdAt": comment.CreatedAt.Format(time.RFC3339),
	}
	if len(comment.Attachments) > 0 {
		attachments := make([]map[string]any, 0, len(comment.Attachments))
		for _, attachment := range comment.Attachments {
			attachments = append(attachments, map[string]any{
				"id":       attachment.ID,
				"fileName": attachment.FileName,
				"fileType": attachment.FileType,
				"fileUrl":  attachment.FileURL,
				"fileSize": attachment.FileSize,
			})
		}
		item["attachments"] = attachments
	}
	return item
}

func checkInJSON(checkIn store.CheckIn) map[string]any {
	updates := make([]map[string]any, 0, len(checkIn.KeyResultUpdates))
	for _, update := range checkIn.KeyResultUpdates {
		updates = append(updates, map[string]any{
			"keyResultId":    update.KeyResultID,
			"keyResultTitle": update.KeyResultTitle,
			"previousValue":  update.PreviousValue,
			"newValue":       update.NewValue,
		})
	}
	return map[string]any{
		"id":               checkIn.ID,
		"okrId":            checkIn.OKRID,
		"okrGoal":          checkIn.OKRGoal,
		"userId":           checkIn.UserID,
		"userName":         checkIn.UserName,
		"department":       string(checkIn.Department),
		"message":          checkIn.Message,
		"keyResultUpdates": updates,
		"createdAt":        checkIn.CreatedAt.Format(time.RFC3339),
	}
}

func notificationJSON(notification store.Notification) map[string]any {
	item := map[string]any{
		"id":         notification.ID,
		"type":       string(notification.Type),
		"title":      notification.Title,
		"message":    notification.Message,
		"okrId":      notification.OKRID,
		"read":       notification.Read,
		"department": string(notification.Department),
		"createdAt":  notification.CreatedAt.Format(time.RFC3339),
	}
	if notification.KeyResultID != "" {
		item["keyResultId"] = notification.KeyResultID
	}
	if notification.Deadline != nil {
		item["deadline"] = notification.Deadline.Format(time.RFC3339)
	}
	return item
}

func statsJSON(stats progress.Stats) map[string]any {
	departmentProgress := make(map[string]int, len(stats.DepartmentProgress))
	for department, value := range stats.DepartmentProgress {
		departmentProgress[string(department)] = value
	}
	departmentCounts := make(map[string]int, len(stats.DepartmentCounts))
	for department, count := range stats.DepartmentCounts {
		departmentCounts[string(department)] = count
	}
	return map[string]any{
		"total":              stats.Total,
		"onTrack":            stats.OnTrack,
		"atRisk":             stats.AtRisk,
		"offTrack":           stats.OffTrack,
		"overallProgress":    stats.OverallProgress,
		"departmentProgress": departmentProgress,
		"departmentCounts":   departmentCounts,
		"uniqueDepartments":  stats.UniqueDepartments,
	}
}
