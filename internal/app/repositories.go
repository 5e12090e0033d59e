package app

import (
	"context"

	"github.com/leeveo/quizz/internal/domain"
)

// QuizRepository persists quiz rows and lifecycle flags.
type QuizRepository interface {
	CreateQuiz(ctx context.Context, quiz *domain.Quiz) error
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	UpdateQuiz(ctx context.Context, quiz *domain.Quiz) error
	SetActiveQuestion(ctx context.Context, quizID, questionID string) error
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
}

// QuestionRepository persists the questions attached to quizzes.
type QuestionRepository interface {
	AddQuestion(ctx context.Context, question *domain.Question) error
	AddQuestions(ctx context.Context, questions []domain.Question) error
	GetQuestion(ctx context.Context, questionID string) (domain.Question, error)
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	DeleteQuestion(ctx context.Context, questionID string) error
}

// QuestionReader is the read path used by the live session and answer
// checking. Implementations cache question content in front of the store.
type QuestionReader interface {
	ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	GetQuestion(ctx context.Context, quizID, questionID string) (domain.Question, error)
}

// QuestionInvalidator drops cached question content for a quiz. Authoring
// mutations call it so a cache never outlives the question set it was
// filled from.
type QuestionInvalidator interface {
	Invalidate(ctx context.Context, quizID string) error
}

// ThemeRepository persists the reusable question bank.
type ThemeRepository interface {
	CreateTheme(ctx context.Context, theme *domain.Theme) error
	ListThemes(ctx context.Context) ([]domain.Theme, error)
	AddThemeQuestion(ctx context.Context, question *domain.ThemeQuestion) error
	ListThemeQuestions(ctx context.Context, themeID string) ([]domain.ThemeQuestion, error)
	GetThemeQuestions(ctx context.Context, ids []string) ([]domain.ThemeQuestion, error)
}

// ParticipantRepository persists quiz participants.
type ParticipantRepository interface {
	AddParticipant(ctx context.Context, participant *domain.Participant) error
	GetParticipant(ctx context.Context, participantID string) (domain.Participant, error)
	ListParticipants(ctx context.Context, quizID string) ([]domain.Participant, error)
}

// AnswerRepository persists participant answers. InsertAnswer must return
// domain.ErrAlreadyAnswered when a row already exists for the same
// (participant, question) pair; that uniqueness lives in the store, not in
// transient UI state.
type AnswerRepository interface {
	InsertAnswer(ctx context.Context, answer *domain.ParticipantAnswer) error
	GetAnswer(ctx context.Context, participantID, questionID string) (domain.ParticipantAnswer, error)
	ListAnswersByQuestion(ctx context.Context, questionID string) ([]domain.ParticipantAnswer, error)
	ListAnswersByQuiz(ctx context.Context, quizID string) ([]domain.ParticipantAnswer, error)
}

// ActiveQuestionRepository persists the single active-question record per
// quiz, mirrored from the session runner on every stage transition.
type ActiveQuestionRepository interface {
	UpsertActiveQuestion(ctx context.Context, active domain.ActiveQuestion) error
	GetActiveQuestion(ctx context.Context, quizID string) (domain.ActiveQuestion, error)
	ClearActiveQuestion(ctx context.Context, quizID string) error
}

// Liveness marks quizzes with a running session, best-effort.
type Liveness interface {
	MarkLive(ctx context.Context, quizID string) error
	ClearLive(ctx context.Context, quizID string) error
}
