package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"quizhub/cmd/seed_initial_data/internal/seedmodels"
	"quizhub/internal/adapter"
	"quizhub/internal/config"
	"quizhub/internal/database"
	"quizhub/internal/logger"
	"quizhub/internal/repository"
	"quizhub/internal/service"
	"quizhub/internal/validation"

	"go.uber.org/zap"
)

//go:embed seed_data/quizzes.json
var defaultSeed []byte

func loadSeed(path string) ([]seedmodels.SeedQuiz, error) {
	raw := defaultSeed
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read seed file %s: %w", path, err)
		}
		raw = b
	}
	var quizzes []seedmodels.SeedQuiz
	if err := json.Unmarshal(raw, &quizzes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal seed data: %w", err)
	}
	return quizzes, nil
}

// seedQuizzes creates every seed quiz whose title is not taken yet, so running
// it twice leaves the data unchanged.
func seedQuizzes(ctx context.Context, quizService service.QuizService, v *validation.Validator, log *zap.Logger, quizzes []seedmodels.SeedQuiz) (created, skipped int, err error) {
	existing, err := quizService.ListQuizzes(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list quizzes: %w", err)
	}
	titles := make(map[string]struct{}, len(existing.Quizzes))
	for _, q := range existing.Quizzes {
		titles[strings.TrimSpace(q.Title)] = struct{}{}
	}

	for _, sq := range quizzes {
		title := strings.TrimSpace(sq.Title)
		if _, ok := titles[title]; ok {
			log.Info("Quiz exists, skipping", zap.String("title", title))
			skipped++
			continue
		}
		req := sq.ToRequest()
		if err := v.Struct(req); err != nil {
			return created, skipped, fmt.Errorf("invalid seed quiz %q: %w", title, err)
		}
		resp, err := quizService.CreateQuiz(ctx, req)
		if err != nil {
			return created, skipped, fmt.Errorf("failed to create quiz %q: %w", title, err)
		}
		titles[title] = struct{}{}
		created++
		log.Info("Created quiz", zap.Int64("id", resp.ID), zap.String("title", resp.Title), zap.Int("questions", resp.QuestionCount))
	}
	return created, skipped, nil
}

func main() {
	seedFile := flag.String("file", "", "seed file path; the bundled quizzes are used when empty")
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	quizzes, err := loadSeed(*seedFile)
	if err != nil {
		log.Fatal("Failed to load seed data", zap.Error(err))
	}

	db, err := database.Connect(ctx, cfg.DB)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	quizRepo := repository.NewSQLXQuizRepository(db)
	loader := service.NewAnswerKeyLoader(quizRepo, adapter.NewNoopCache(), cfg.Cache.AnswerKeyTTL)
	quizService := service.NewQuizService(quizRepo, repository.NewTransactionManagerAdapter(db), loader, cfg.DB.TxTimeout)

	created, skipped, err := seedQuizzes(ctx, quizService, validation.NewValidator(), log, quizzes)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err))
	}
	log.Info("Initial data seeding process completed.", zap.Int("created", created), zap.Int("skipped", skipped))
}
