package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/codewithmorais/quiz-session-service/internal/errors"
	"github.com/codewithmorais/quiz-session-service/internal/hints"
	"github.com/codewithmorais/quiz-session-service/internal/services"
	"github.com/codewithmorais/quiz-session-service/internal/session"
	"github.com/codewithmorais/quiz-session-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

// StartSession creates a new quiz session for the authenticated user
// @Summary Start quiz session
// @Tags sessions
// @Accept json
// @Produce json
// @Param session body services.StartSessionRequest true "Session data"
// @Success 201 {object} services.SessionView
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Starting quiz session", "quiz_id", req.QuizID)

	view, err := h.sessionService.Start(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession retrieves the current state of a session
// @Summary Get session state
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	view, err := h.sessionService.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SubmitAnswer grades an answer for the current question
// @Summary Submit answer
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param answer body services.SubmitAnswerRequest true "Answer data"
// @Success 200 {object} services.SubmitAnswerResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/answers [post]
func (h *SessionHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	response, err := h.sessionService.Submit(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// AdvanceSession moves past the current question without a correct answer
// @Summary Skip to next question
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.AdvanceResponse
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/advance [post]
func (h *SessionHandler) AdvanceSession(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Advancing session", "session_id", c.Param("id"))

	response, err := h.sessionService.Advance(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ResetSession restarts a session from the first question
// @Summary Reset session
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} services.SessionView
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/reset [post]
func (h *SessionHandler) ResetSession(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Resetting session", "session_id", c.Param("id"))

	view, err := h.sessionService.Reset(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// AbandonSession discards a session
// @Summary Abandon session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id} [delete]
func (h *SessionHandler) AbandonSession(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.sessionService.Abandon(c.Request.Context(), c.Param("id"), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetSummary returns the final summary of a completed session
// @Summary Get session summary
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} models.SessionSummary
// @Failure 409 {object} ErrorResponse
// @Router /sessions/{id}/summary [get]
func (h *SessionHandler) GetSummary(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	summary, err := h.sessionService.Summary(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ReviewAnswer returns an already-recorded answer for read-only review
// @Summary Review recorded answer
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param question_id path string true "Question ID"
// @Success 200 {object} services.ReviewAnswerResponse
// @Failure 404 {object} ErrorResponse
// @Router /sessions/{id}/answers/{question_id} [get]
func (h *SessionHandler) ReviewAnswer(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	review, err := h.sessionService.Review(c.Request.Context(), c.Param("id"), c.Param("question_id"), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// PurchaseHint buys the next hint for a question in the session
// @Summary Purchase hint
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param hint body services.PurchaseHintRequest true "Hint purchase data"
// @Success 200 {object} hints.PurchaseResponse
// @Failure 402 {object} ErrorResponse
// @Router /sessions/{id}/hints [post]
func (h *SessionHandler) PurchaseHint(c *gin.Context) {
	var req services.PurchaseHintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	purchase, err := h.sessionService.PurchaseHint(c.Request.Context(), c.Param("id"), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, purchase)
}

// Helper methods

func (h *SessionHandler) requireUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return "", false
	}
	return id, true
}

func (h *SessionHandler) handleServiceError(c *gin.Context, err error) {
	// Handle custom error types first
	var validationErrors apperrors.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var configurationError *apperrors.ConfigurationError
	if errors.As(err, &configurationError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: "Question configuration invalid",
			Details: map[string]interface{}{
				"question_id": configurationError.QuestionID,
				"field":       configurationError.Field,
				"reason":      configurationError.Message,
			},
		})
		return
	}

	var sequenceViolation *session.SequenceViolationError
	if errors.As(err, &sequenceViolation) {
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Submission out of sequence",
			Details: map[string]interface{}{
				"submitted_question_id": sequenceViolation.QuestionID,
				"current_question_id":   sequenceViolation.CurrentID,
				"current_index":         sequenceViolation.Index,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrSessionNotFound), errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Session or resource not found",
		})
	case errors.Is(err, services.ErrSessionNotOwned):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Session belongs to another user",
		})
	case errors.Is(err, services.ErrQuizNotFound), errors.Is(err, services.ErrQuizHasNoQuestion):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Quiz not found or has no questions",
		})
	case errors.Is(err, services.ErrAnswerValueMissing):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Answer value missing or malformed for question kind",
		})
	case errors.Is(err, session.ErrSubmissionInFlight):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Another submission is being processed",
		})
	case errors.Is(err, session.ErrNotInProgress):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session is not in progress",
		})
	case errors.Is(err, session.ErrNotCompleted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session is not completed",
		})
	case errors.Is(err, session.ErrNotResettable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Session cannot be reset before it starts",
		})
	case errors.Is(err, hints.ErrInsufficientCurrency):
		c.JSON(http.StatusPaymentRequired, ErrorResponse{
			Message: "Insufficient currency for hint",
		})
	case errors.Is(err, hints.ErrNoMoreHints):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "No more hints available for this question",
		})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
