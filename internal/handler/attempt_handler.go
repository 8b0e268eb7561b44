package handler

import (
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/middleware"
	"quizhub/internal/service"

	"github.com/gofiber/fiber/v2"
)

// AttemptHandler handles quiz submission and attempt results.
type AttemptHandler struct {
	service service.AttemptService
}

func NewAttemptHandler(service service.AttemptService) *AttemptHandler {
	return &AttemptHandler{service: service}
}

// Submit godoc
// @Summary Submit quiz answers
// @Description Scores the answers and records an attempt for the signed-in user. answers is either an object keyed by question id or an array of {questionId, choiceId}.
// @Tags attempt
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param submission body dto.SubmitRequest true "Submission"
// @Success 200 {object} dto.SubmitResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /submit [post]
// @Router /quizzes/{quizId}/submit [post]
func (h *AttemptHandler) Submit(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}

	var req dto.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewInvalidInputError("invalid submission: " + err.Error())
	}

	quizID := req.ResolvedQuizID()
	if c.Params("quizId") != "" {
		if quizID, err = quizIDParam(c); err != nil {
			return err
		}
	}
	if quizID == 0 {
		return domain.ValidationErrors{domain.NewMissingFieldError("quiz_id")}
	}
	if req.Answers == nil {
		return domain.ValidationErrors{domain.NewMissingFieldError("answers")}
	}

	resp, err := h.service.Submit(c.UserContext(), identity, quizID, req.Answers)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetAttempt godoc
// @Summary Get an attempt result
// @Description Returns the attempt with per-question correctness. Only the owner may view it.
// @Tags attempt
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "Attempt ID (ULID)"
// @Success 200 {object} dto.AttemptDetailResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /attempts/{id} [get]
func (h *AttemptHandler) GetAttempt(c *fiber.Ctx) error {
	identity, err := requireIdentity(c)
	if err != nil {
		return err
	}
	attemptID, ok := c.Locals(middleware.ValidatedAttemptIDKey).(string)
	if !ok {
		attemptID = c.Params("id")
	}

	resp, err := h.service.GetAttemptDetail(c.UserContext(), identity, attemptID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}
