package middleware

import (
	"quizhub/internal/domain"
	"quizhub/internal/dto"
	"quizhub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const (
	ValidatedPaginationKey = "validated_pagination"
	ValidatedQuizIDKey     = "validated_quiz_id"
	ValidatedAttemptIDKey  = "validated_attempt_id"
)

// ValidationMiddleware provides request validation middleware
type ValidationMiddleware struct {
	validator *validation.Validator
}

// NewValidationMiddleware creates a new validation middleware instance
func NewValidationMiddleware(v *validation.Validator) *ValidationMiddleware {
	return &ValidationMiddleware{validator: v}
}

// ValidatePagination parses limit and page from the query string.
func (vm *ValidationMiddleware) ValidatePagination() fiber.Handler {
	return func(c *fiber.Ctx) error {
		pagination, errs := vm.validator.ValidatePagination(c.Query("limit"), c.Query("page"))
		if len(errs) > 0 {
			return errs // This will be handled by ErrorHandler middleware
		}
		c.Locals(ValidatedPaginationKey, pagination)
		return c.Next()
	}
}

// ValidateQuizID parses the :quizId path parameter.
func (vm *ValidationMiddleware) ValidateQuizID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		quizID, err := domain.ParseQuizID(c.Params("quizId"))
		if err != nil {
			return err
		}
		c.Locals(ValidatedQuizIDKey, quizID)
		return c.Next()
	}
}

// ValidateAttemptID checks the :id path parameter is a ULID.
func (vm *ValidationMiddleware) ValidateAttemptID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		attemptID := c.Params("id")
		if errs := vm.validator.ValidateAttemptID(attemptID); len(errs) > 0 {
			return errs
		}
		c.Locals(ValidatedAttemptIDKey, attemptID)
		return c.Next()
	}
}

// PaginationFrom returns the pagination stored by ValidatePagination.
func PaginationFrom(c *fiber.Ctx) dto.Pagination {
	if p, ok := c.Locals(ValidatedPaginationKey).(dto.Pagination); ok {
		return p
	}
	return dto.Pagination{Limit: validation.DefaultPageLimit, Page: 1}
}

// QuizIDFrom returns the quiz id stored by ValidateQuizID.
func QuizIDFrom(c *fiber.Ctx) (int64, bool) {
	id, ok := c.Locals(ValidatedQuizIDKey).(int64)
	return id, ok
}
