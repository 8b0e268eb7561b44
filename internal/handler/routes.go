package handler

import (
	"quizhub/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Quiz          *QuizHandler
	Attempt       *AttemptHandler
	Auth          *AuthHandler
	User          *UserHandler
	Authenticator middleware.Authenticator
	Validation    *middleware.ValidationMiddleware
}

// RegisterRoutes mounts the API under /api.
func RegisterRoutes(app *fiber.App, h Handlers) {
	protected := middleware.Protected(h.Authenticator)
	optional := middleware.OptionalAuth(h.Authenticator)
	quizID := h.Validation.ValidateQuizID()

	api := app.Group("/api")

	quizzes := api.Group("/quizzes")
	quizzes.Get("/", h.Quiz.ListQuizzes)
	quizzes.Post("/", protected, h.Quiz.CreateQuiz)
	quizzes.Get("/:quizId", protected, quizID, h.Quiz.GetQuiz)
	quizzes.Put("/:quizId", protected, quizID, h.Quiz.ReplaceQuiz)
	quizzes.Delete("/:quizId", protected, quizID, h.Quiz.DeleteQuiz)
	quizzes.Get("/:quizId/questions", quizID, h.Quiz.GetQuizQuestions)
	quizzes.Post("/:quizId/submit", protected, quizID, h.Attempt.Submit)

	api.Post("/submit", protected, h.Attempt.Submit)
	api.Get("/attempts/:id", protected, h.Validation.ValidateAttemptID(), h.Attempt.GetAttempt)

	authGroup := api.Group("/auth")
	authGroup.Post("/register", h.Auth.Register)
	authGroup.Post("/login", h.Auth.Login)
	authGroup.Get("/check", h.Auth.Check)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/logout", optional, h.Auth.Logout)
	authGroup.Get("/oauth/login", h.Auth.OAuthLogin)
	authGroup.Get("/oauth/callback", h.Auth.OAuthCallback)

	users := api.Group("/users/me", protected)
	users.Get("/", h.User.GetMyProfile)
	users.Put("/", h.User.UpdateMyProfile)
	users.Get("/attempts", h.Validation.ValidatePagination(), h.User.GetMyAttempts)
}
