package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leeveo/quizz/internal/domain"
)

// QuizService covers authoring: quiz CRUD, question management, the theme
// bank, and the launch/relaunch lifecycle step.
type QuizService struct {
	quizzes   QuizRepository
	questions QuestionRepository
	themes    ThemeRepository
	active    ActiveQuestionRepository
	cache     QuestionInvalidator
	clock     func() time.Time
	log       *slog.Logger
}

func NewQuizService(quizzes QuizRepository, questions QuestionRepository, themes ThemeRepository, active ActiveQuestionRepository, cache QuestionInvalidator, log *slog.Logger) *QuizService {
	return &QuizService{
		quizzes:   quizzes,
		questions: questions,
		themes:    themes,
		active:    active,
		cache:     cache,
		clock:     time.Now,
		log:       log,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(quizzes QuizRepository, questions QuestionRepository, themes ThemeRepository, active ActiveQuestionRepository, cache QuestionInvalidator, log *slog.Logger, now func() time.Time) *QuizService {
	s := NewQuizService(quizzes, questions, themes, active, cache, log)
	s.clock = now
	return s
}

// CreateQuizInput carries the organizer-supplied quiz metadata.
type CreateQuizInput struct {
	Title        string `json:"title"`
	Theme        string `json:"theme"`
	EventName    string `json:"eventName"`
	EventDate    string `json:"eventDate"`
	PrimaryColor string `json:"primaryColor"`
	CreatedBy    string `json:"createdBy"`
}

func (s *QuizService) CreateQuiz(ctx context.Context, input CreateQuizInput) (domain.Quiz, error) {
	quiz := domain.Quiz{
		ID:           uuid.NewString(),
		Title:        input.Title,
		Theme:        input.Theme,
		EventName:    input.EventName,
		EventDate:    input.EventDate,
		PrimaryColor: input.PrimaryColor,
		CreatedBy:    input.CreatedBy,
		CreatedAt:    s.clock(),
	}
	if err := s.quizzes.CreateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("create quiz: %w", err)
	}
	s.log.Info("quiz created", "quiz", quiz.ID, "title", quiz.Title)
	return quiz, nil
}

func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.quizzes.GetQuiz(ctx, quizID)
}

func (s *QuizService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.quizzes.ListQuizzes(ctx)
}

// UpdateQuizInput carries editable quiz metadata; empty fields keep their
// current value.
type UpdateQuizInput struct {
	Title        string `json:"title"`
	Theme        string `json:"theme"`
	EventName    string `json:"eventName"`
	EventDate    string `json:"eventDate"`
	PrimaryColor string `json:"primaryColor"`
}

func (s *QuizService) UpdateQuiz(ctx context.Context, quizID string, input UpdateQuizInput) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	if input.Title != "" {
		quiz.Title = input.Title
	}
	if input.Theme != "" {
		quiz.Theme = input.Theme
	}
	if input.EventName != "" {
		quiz.EventName = input.EventName
	}
	if input.EventDate != "" {
		quiz.EventDate = input.EventDate
	}
	if input.PrimaryColor != "" {
		quiz.PrimaryColor = input.PrimaryColor
	}
	if err := s.quizzes.UpdateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("update quiz: %w", err)
	}
	return quiz, nil
}

// AddQuestionInput carries a hand-entered question.
type AddQuestionInput struct {
	Title    string   `json:"title"`
	Options  []string `json:"options"`
	Correct  int      `json:"correct"`
	ImageURL string   `json:"imageUrl"`
	Duration int      `json:"duration"`
}

func (s *QuizService) AddQuestion(ctx context.Context, quizID string, input AddQuestionInput) (domain.Question, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return domain.Question{}, err
	}
	if input.Correct < 0 || input.Correct >= len(input.Options) {
		return domain.Question{}, domain.ErrOptionOutOfRange
	}
	existing, err := s.questions.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.Question{}, err
	}
	question := domain.Question{
		ID:         uuid.NewString(),
		QuizID:     quizID,
		OrderIndex: len(existing),
		Title:      input.Title,
		Options:    input.Options,
		Correct:    input.Correct,
		ImageURL:   input.ImageURL,
		Duration:   input.Duration,
	}
	if err := s.questions.AddQuestion(ctx, &question); err != nil {
		return domain.Question{}, fmt.Errorf("add question: %w", err)
	}
	s.invalidateQuestions(ctx, quizID)
	return question, nil
}

func (s *QuizService) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	return s.questions.ListQuestions(ctx, quizID)
}

func (s *QuizService) DeleteQuestion(ctx context.Context, questionID string) error {
	question, err := s.questions.GetQuestion(ctx, questionID)
	if err != nil {
		return err
	}
	if err := s.questions.DeleteQuestion(ctx, questionID); err != nil {
		return err
	}
	s.invalidateQuestions(ctx, question.QuizID)
	return nil
}

// invalidateQuestions is best-effort: the store already holds the new
// question set, so a failed cache drop is logged and retried implicitly by
// the TTL.
func (s *QuizService) invalidateQuestions(ctx context.Context, quizID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, quizID); err != nil {
		s.log.Warn("question cache invalidation failed", "quiz", quizID, "err", err)
	}
}

// CreateTheme adds a reusable bank theme.
func (s *QuizService) CreateTheme(ctx context.Context, name, description string) (domain.Theme, error) {
	theme := domain.Theme{ID: uuid.NewString(), Name: name, Description: description}
	if err := s.themes.CreateTheme(ctx, &theme); err != nil {
		return domain.Theme{}, fmt.Errorf("create theme: %w", err)
	}
	return theme, nil
}

func (s *QuizService) ListThemes(ctx context.Context) ([]domain.Theme, error) {
	return s.themes.ListThemes(ctx)
}

// AddThemeQuestionInput carries a bank question; the correct answer is the
// option string itself, resolved to an index at import time.
type AddThemeQuestionInput struct {
	Content       string   `json:"content"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correctOption"`
	Duration      int      `json:"duration"`
	ImageURL      string   `json:"imageUrl"`
}

func (s *QuizService) AddThemeQuestion(ctx context.Context, themeID string, input AddThemeQuestionInput) (domain.ThemeQuestion, error) {
	question := domain.ThemeQuestion{
		ID:            uuid.NewString(),
		ThemeID:       themeID,
		Content:       input.Content,
		Options:       input.Options,
		CorrectOption: input.CorrectOption,
		Duration:      input.Duration,
		ImageURL:      input.ImageURL,
	}
	if err := s.themes.AddThemeQuestion(ctx, &question); err != nil {
		return domain.ThemeQuestion{}, fmt.Errorf("add theme question: %w", err)
	}
	return question, nil
}

func (s *QuizService) ListThemeQuestions(ctx context.Context, themeID string) ([]domain.ThemeQuestion, error) {
	return s.themes.ListThemeQuestions(ctx, themeID)
}

// ImportThemeQuestions copies bank questions into a quiz's own questions.
// The correct index is the position of the option equal to the bank
// question's correct-option string; when no option matches, the import
// falls back to index 0, matching the historical importer.
func (s *QuizService) ImportThemeQuestions(ctx context.Context, quizID string, themeQuestionIDs []string) ([]domain.Question, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	bank, err := s.themes.GetThemeQuestions(ctx, themeQuestionIDs)
	if err != nil {
		return nil, err
	}
	existing, err := s.questions.ListQuestions(ctx, quizID)
	if err != nil {
		return nil, err
	}

	imported := make([]domain.Question, 0, len(bank))
	for i, bq := range bank {
		correct := 0
		for idx, opt := range bq.Options {
			if opt == bq.CorrectOption {
				correct = idx
				break
			}
		}
		imported = append(imported, domain.Question{
			ID:         uuid.NewString(),
			QuizID:     quizID,
			OrderIndex: len(existing) + i,
			Title:      bq.Content,
			Options:    append([]string(nil), bq.Options...),
			Correct:    correct,
			ImageURL:   bq.ImageURL,
			Duration:   bq.Duration,
		})
	}
	if len(imported) == 0 {
		return imported, nil
	}
	if err := s.questions.AddQuestions(ctx, imported); err != nil {
		return nil, fmt.Errorf("import theme questions: %w", err)
	}
	s.invalidateQuestions(ctx, quizID)
	s.log.Info("theme questions imported", "quiz", quizID, "count", len(imported))
	return imported, nil
}

// Launch makes a quiz joinable. Relaunching a quiz bumps launched_at,
// which invalidates identities issued before the relaunch.
func (s *QuizService) Launch(ctx context.Context, quizID string) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}
	now := s.clock()
	quiz.Active = true
	quiz.QuizStarted = false
	quiz.Finished = false
	quiz.ActiveQuestionID = ""
	quiz.LaunchedAt = &now
	quiz.StartedAt = nil
	quiz.EndedAt = nil
	if err := s.quizzes.UpdateQuiz(ctx, &quiz); err != nil {
		return domain.Quiz{}, fmt.Errorf("launch quiz: %w", err)
	}
	if err := s.active.ClearActiveQuestion(ctx, quizID); err != nil {
		return domain.Quiz{}, fmt.Errorf("clear active question: %w", err)
	}
	s.invalidateQuestions(ctx, quizID)
	s.log.Info("quiz launched", "quiz", quizID)
	return quiz, nil
}
