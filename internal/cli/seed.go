package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/leeveo/quizz/internal/config"
	"github.com/leeveo/quizz/internal/domain"
	pginfra "github.com/leeveo/quizz/internal/infra/postgres"
)

// NewSeedCmd loads a small demo theme and quiz into Postgres.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert demo theme and quiz data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), *configPath)
		},
	}
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if cfg.Postgres.URL == "" {
		return fmt.Errorf("postgres url not configured")
	}
	if err := runMigrationsWithConfig(ctx, cfg); err != nil {
		return err
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()
	repo := pginfra.NewRepository(db)

	theme := domain.Theme{
		ID:          uuid.NewString(),
		Name:        "Culture générale",
		Description: "Questions de démonstration",
	}
	if err := repo.CreateTheme(ctx, &theme); err != nil {
		return err
	}

	bank := []domain.ThemeQuestion{
		{
			Content:       "Quelle est la capitale de la France ?",
			Options:       []string{"Lyon", "Paris", "Marseille", "Lille"},
			CorrectOption: "Paris",
		},
		{
			Content:       "Combien font 7 x 8 ?",
			Options:       []string{"54", "56", "58", "64"},
			CorrectOption: "56",
		},
		{
			Content:       "Quel océan borde la Bretagne ?",
			Options:       []string{"Atlantique", "Pacifique", "Indien", "Arctique"},
			CorrectOption: "Atlantique",
		},
	}
	for i := range bank {
		bank[i].ID = uuid.NewString()
		bank[i].ThemeID = theme.ID
		if err := repo.AddThemeQuestion(ctx, &bank[i]); err != nil {
			return err
		}
	}

	quiz := domain.Quiz{
		ID:    uuid.NewString(),
		Title: "Quiz de démonstration",
		Theme: theme.Name,
	}
	if err := repo.CreateQuiz(ctx, &quiz); err != nil {
		return err
	}

	questions := make([]domain.Question, 0, len(bank))
	for i, tq := range bank {
		correct := 0
		for j, opt := range tq.Options {
			if opt == tq.CorrectOption {
				correct = j
				break
			}
		}
		questions = append(questions, domain.Question{
			ID:         uuid.NewString(),
			QuizID:     quiz.ID,
			OrderIndex: i,
			Title:      tq.Content,
			Options:    tq.Options,
			Correct:    correct,
		})
	}
	if err := repo.AddQuestions(ctx, questions); err != nil {
		return err
	}

	slog.Info("seed data inserted", "quiz", quiz.ID, "theme", theme.ID)
	return nil
}
