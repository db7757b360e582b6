package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/exchange-insight/exchange-insight/internal/application/command"
	"github.com/exchange-insight/exchange-insight/internal/application/query"
	"github.com/exchange-insight/exchange-insight/internal/domain/shared"
	"github.com/exchange-insight/exchange-insight/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Exchange Insight API",
		"version":     s.config.Version,
		"description": "Placement estimates for student exchange agreements",
		"endpoints": map[string]string{
			"health":      "/health",
			"agreements":  "/api/v1/agreements?section={section}",
			"students":    "/api/v1/students",
			"walkthrough": "/api/v1/students/{id}/walkthrough",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().Round(time.Second).String(),
		"version": s.config.Version,
	})
}

// handleReady handles the readiness endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// AGREEMENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListAgreements handles GET /api/v1/agreements?section=IN
func (s *Server) handleListAgreements(w http.ResponseWriter, r *http.Request) {
	if s.deps.ListAgreementsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Agreements handler not configured")
		return
	}

	q := query.ListAgreementsQuery{Section: r.URL.Query().Get("section")}

	result, err := s.deps.ListAgreementsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, r, "failed to list agreements", err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{TotalCount: len(result.Agreements)})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// RegisterStudentRequest is the body of POST /api/v1/students.
type RegisterStudentRequest struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Image   string  `json:"image"`
	Section string  `json:"section"`
	Year    int     `json:"year"`
	GPA     float64 `json:"gpa"`
	Fail    bool    `json:"fail"`
}

// handleRegisterStudent handles POST /api/v1/students
func (s *Server) handleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.RegisterStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Registration handler not configured")
		return
	}

	var req RegisterStudentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := s.deps.RegisterStudentHandler.Handle(r.Context(), command.RegisterStudentCommand{
		Name:          req.Name,
		Email:         req.Email,
		Image:         req.Image,
		Section:       req.Section,
		Year:          req.Year,
		GPA:           req.GPA,
		Fail:          req.Fail,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, "failed to register student", err)
		return
	}

	w.Header().Set("Location", "/api/v1/students/"+st.ID)
	writeJSON(w, http.StatusCreated, query.ToStudentDTO(st))
}

// handleGetStudent handles GET /api/v1/students/{id}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student handler not configured")
		return
	}

	result, err := s.deps.GetStudentHandler.Handle(r.Context(), query.GetStudentQuery{StudentID: r.PathValue("id")})
	if err != nil {
		s.writeDomainError(w, r, "failed to get student", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// UpdatePreferencesRequest is the body of PUT /api/v1/students/{id}/agreements.
type UpdatePreferencesRequest struct {
	AgreementIDs []string `json:"agreement_ids"`
}

// handleUpdatePreferences handles PUT /api/v1/students/{id}/agreements
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdatePreferencesHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Preferences handler not configured")
		return
	}

	var req UpdatePreferencesRequest
	if !decodeBody(w, r, &req) {
		return
	}

	st, err := s.deps.UpdatePreferencesHandler.Handle(r.Context(), command.UpdatePreferencesCommand{
		StudentID:     r.PathValue("id"),
		AgreementIDs:  req.AgreementIDs,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, "failed to update preferences", err)
		return
	}

	writeJSON(w, http.StatusOK, query.ToStudentDTO(st))
}

// handleDeleteStudent handles DELETE /api/v1/students/{id}
func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if s.deps.DeleteStudentHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Delete handler not configured")
		return
	}

	err := s.deps.DeleteStudentHandler.Handle(r.Context(), command.DeleteStudentCommand{
		StudentID:     r.PathValue("id"),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, r, "failed to delete student", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ══════════════════════════════════════════════════════════════════════════════
// WALKTHROUGH HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// handleGetWalkthrough handles GET /api/v1/students/{id}/walkthrough[?refresh=true]
func (s *Server) handleGetWalkthrough(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetWalkthroughHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Walkthrough handler not configured")
		return
	}

	result, err := s.deps.GetWalkthroughHandler.Handle(r.Context(), query.GetWalkthroughQuery{
		StudentID: r.PathValue("id"),
		Refresh:   getQueryParamBool(r, "refresh"),
	})
	if err != nil {
		s.writeDomainError(w, r, "failed to compute walkthrough", err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, PresentWalkthrough(result), &ResponseMeta{
		TotalCount: len(result.Estimates),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST / ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// decodeBody decodes a JSON body and writes a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
		case errors.Is(err, io.EOF):
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Request body is required")
		default:
			writeJSONErrorWithDetails(w, http.StatusBadRequest, "invalid_request", "Invalid JSON payload", err.Error())
		}
		return false
	}
	return true
}

// writeDomainError maps domain error kinds onto HTTP statuses.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status, code := statusFor(err)

	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(msg, logger.Err(err))
		writeJSONError(w, status, code, "Internal server error")
		return
	}
	log.Debug(msg, logger.Err(err), logger.Int("status", status))

	message := err.Error()
	var de *shared.DomainError
	if errors.As(err, &de) {
		message = de.Message
	}
	writeJSONError(w, status, code, message)
}

// statusFor is ordered: an unknown agreement in a preference list is a
// validation failure even though it also unwraps to not found.
func statusFor(err error) (int, string) {
	switch {
	case shared.IsAlreadyExists(err):
		return http.StatusConflict, "already_exists"
	case shared.IsForbidden(err):
		return http.StatusForbidden, "forbidden"
	case shared.IsValidation(err):
		return http.StatusBadRequest, "invalid_request"
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case shared.IsRetryable(err):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
