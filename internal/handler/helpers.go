package handler

import (
	"quizhub/internal/auth"
	"quizhub/internal/domain"
	"quizhub/internal/middleware"
	"quizhub/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// bindAndValidate parses the JSON body into dst and checks its tags.
func bindAndValidate(c *fiber.Ctx, v *validation.Validator, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.NewInvalidInputError("invalid request body: " + err.Error())
	}
	return v.Struct(dst)
}

func requireIdentity(c *fiber.Ctx) (auth.Identity, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return auth.Identity{}, domain.NewUnauthorizedError("authentication required")
	}
	return identity, nil
}

// quizIDParam prefers the value validated by middleware and parses :quizId otherwise.
func quizIDParam(c *fiber.Ctx) (int64, error) {
	if id, ok := middleware.QuizIDFrom(c); ok {
		return id, nil
	}
	return domain.ParseQuizID(c.Params("quizId"))
}
