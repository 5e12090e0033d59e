package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/lmittmann/tint"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/leeveo/quizz/internal/app"
	"github.com/leeveo/quizz/internal/config"
	"github.com/leeveo/quizz/internal/infra/memory"
	pginfra "github.com/leeveo/quizz/internal/infra/postgres"
	redisinfra "github.com/leeveo/quizz/internal/infra/redis"
	"github.com/leeveo/quizz/internal/infra/storage"
	transport "github.com/leeveo/quizz/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	log := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelDebug,
		TimeFormat: time.Kitchen,
	}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	baseURL := cfg.Server.BaseURL
	if baseURL == "" {
		baseURL = "http://localhost:" + finalPort
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.DurationOr(cfg.Redis.TTL, 10*time.Minute)
	quizTTL := config.DurationOr(cfg.Quiz.TTL, 10*time.Minute)

	mem := memory.NewStore()

	var (
		quizzes      app.QuizRepository           = mem
		questions    app.QuestionRepository       = mem
		themes       app.ThemeRepository          = mem
		participants app.ParticipantRepository    = mem
		answers      app.AnswerRepository         = mem
		active       app.ActiveQuestionRepository = mem
	)
	var loader memory.QuestionLoader = mem

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL)))
		db := bun.NewDB(sqldb, pgdialect.New())
		repo := pginfra.NewRepository(db)
		quizzes, questions, themes = repo, repo, repo
		participants, answers, active = repo, repo, repo

		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		loader = pginfra.NewQuestionLoader(pool)
	}

	var reader app.QuestionReader
	var invalidator app.QuestionInvalidator
	var liveness app.Liveness
	if redisClient != nil {
		cache := redisinfra.NewQuestionCache(redisClient, loader, quizTTL)
		reader, invalidator = cache, cache
		liveness = redisinfra.NewLiveness(redisClient, redisTTL)
	} else {
		cache := memory.NewQuestionCache(loader, quizTTL)
		reader, invalidator = cache, cache
		liveness = memory.NewLiveness()
	}

	durations := app.DefaultStageDurations()
	durations.Question = config.DurationOr(cfg.Stages.Question, durations.Question)
	durations.Answer = config.DurationOr(cfg.Stages.Answer, durations.Answer)
	durations.Results = config.DurationOr(cfg.Stages.Results, durations.Results)
	durations.Next = config.DurationOr(cfg.Stages.Next, durations.Next)

	storageRoot := cfg.Storage.Root
	if storageRoot == "" {
		storageRoot = "storage"
	}
	uploads, err := storage.NewStore(storageRoot, cfg.Storage.Bucket)
	if err != nil {
		return err
	}

	runner := app.NewSessionRunner(quizzes, reader, active, liveness, durations, log)
	quizService := app.NewQuizService(quizzes, questions, themes, active, invalidator, log)
	joinService := app.NewJoinService(quizzes, participants, log)
	answerService := app.NewAnswerService(reader, participants, answers, active, log)
	responseService := app.NewResponseService(reader, participants, answers, log)
	statsService := app.NewStatsService(questions, participants, answers)

	handlers := transport.NewHandlers(log, quizService, joinService, answerService, responseService, statsService, runner, uploads, baseURL)
	wsHandler := transport.NewWSHandler(log, runner, answerService, responseService)
	router := transport.NewRouter(handlers, wsHandler, uploads.Root())

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("starting quiz server", "port", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "err", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Info("shutting down server")
	case <-ctx.Done():
		log.Info("context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
