package handler

import (
	"quizhub/internal/dto"
	"quizhub/internal/service"
	"quizhub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService, validator *validation.Validator) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validator,
	}
}

// ListQuizzes godoc
// @Summary List quizzes
// @Description Returns every quiz with its question count
// @Tags quiz
// @Produce json
// @Success 200 {object} dto.QuizListResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes [get]
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	resp, err := h.service.ListQuizzes(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuiz godoc
// @Summary Get a quiz for editing
// @Description Returns the quiz with questions and choices, including which choices are correct
// @Tags quiz
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quizID, err := quizIDParam(c)
	if err != nil {
		return err
	}
	resp, err := h.service.GetQuiz(c.UserContext(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// GetQuizQuestions godoc
// @Summary Get quiz questions for playing
// @Description Returns the questions and choices without correctness flags
// @Tags quiz
// @Produce json
// @Param quizId path int true "Quiz ID"
// @Success 200 {object} dto.QuizQuestionsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId}/questions [get]
func (h *QuizHandler) GetQuizQuestions(c *fiber.Ctx) error {
	quizID, err := quizIDParam(c)
	if err != nil {
		return err
	}
	resp, err := h.service.GetQuizQuestions(c.UserContext(), quizID)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// CreateQuiz godoc
// @Summary Create a quiz
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quiz body dto.QuizRequest true "Quiz"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.QuizRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.service.CreateQuiz(c.UserContext(), &req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// ReplaceQuiz godoc
// @Summary Replace a quiz
// @Description Rewrites title and description and replaces all questions in one transaction
// @Tags quiz
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param quizId path int true "Quiz ID"
// @Param quiz body dto.QuizRequest true "Quiz"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId} [put]
func (h *QuizHandler) ReplaceQuiz(c *fiber.Ctx) error {
	quizID, err := quizIDParam(c)
	if err != nil {
		return err
	}
	var req dto.QuizRequest
	if err := bindAndValidate(c, h.validator, &req); err != nil {
		return err
	}
	resp, err := h.service.ReplaceQuiz(c.UserContext(), quizID, &req)
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

// DeleteQuiz godoc
// @Summary Delete a quiz
// @Description Deletes the quiz with its questions, choices and attempts
// @Tags quiz
// @Security ApiKeyAuth
// @Param quizId path int true "Quiz ID"
// @Success 204
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	quizID, err := quizIDParam(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteQuiz(c.UserContext(), quizID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
