package memory

import (
	"context"
	"testing"
	"time"

	"github.com/leeveo/quizz/internal/domain"
)

func TestInsertAnswerEnforcesUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	first := domain.ParticipantAnswer{ID: "a1", ParticipantID: "p1", QuestionID: "q1", SelectedOption: 0, AnsweredAt: time.Now()}
	if err := store.InsertAnswer(ctx, &first); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := domain.ParticipantAnswer{ID: "a2", ParticipantID: "p1", QuestionID: "q1", SelectedOption: 2, AnsweredAt: time.Now()}
	if err := store.InsertAnswer(ctx, &dup); err != domain.ErrAlreadyAnswered {
		t.Fatalf("expected already answered, got %v", err)
	}

	// Same participant, different question is fine.
	other := domain.ParticipantAnswer{ID: "a3", ParticipantID: "p1", QuestionID: "q2", SelectedOption: 1, AnsweredAt: time.Now()}
	if err := store.InsertAnswer(ctx, &other); err != nil {
		t.Fatalf("insert other question: %v", err)
	}

	got, err := store.GetAnswer(ctx, "p1", "q1")
	if err != nil {
		t.Fatalf("get answer: %v", err)
	}
	if got.ID != "a1" || got.SelectedOption != 0 {
		t.Fatalf("expected first answer kept, got %+v", got)
	}
	if _, err := store.GetAnswer(ctx, "p1", "q3"); err != domain.ErrAnswerNotFound {
		t.Fatalf("expected answer not found, got %v", err)
	}
}

func TestListQuestionsSortedByOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	_ = store.AddQuestion(ctx, &domain.Question{ID: "q2", QuizID: "quiz", OrderIndex: 1, Title: "second"})
	_ = store.AddQuestion(ctx, &domain.Question{ID: "q1", QuizID: "quiz", OrderIndex: 0, Title: "first"})
	_ = store.AddQuestion(ctx, &domain.Question{ID: "other", QuizID: "another-quiz", OrderIndex: 0})

	questions, err := store.ListQuestions(ctx, "quiz")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(questions) != 2 || questions[0].ID != "q1" || questions[1].ID != "q2" {
		t.Fatalf("expected ordered q1,q2, got %+v", questions)
	}
}

func TestGetThemeQuestionsPreservesRequestedOrder(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	theme := domain.Theme{ID: "t1", Name: "Theme"}
	_ = store.CreateTheme(ctx, &theme)
	_ = store.AddThemeQuestion(ctx, &domain.ThemeQuestion{ID: "tq1", ThemeID: "t1", Content: "one"})
	_ = store.AddThemeQuestion(ctx, &domain.ThemeQuestion{ID: "tq2", ThemeID: "t1", Content: "two"})

	got, err := store.GetThemeQuestions(ctx, []string{"tq2", "tq1"})
	if err != nil {
		t.Fatalf("get theme questions: %v", err)
	}
	if got[0].ID != "tq2" || got[1].ID != "tq1" {
		t.Fatalf("expected requested order kept, got %+v", got)
	}

	if _, err := store.GetThemeQuestions(ctx, []string{"tq1", "missing"}); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected not found for missing id, got %v", err)
	}
}

func TestAddThemeQuestionRequiresTheme(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	err := store.AddThemeQuestion(ctx, &domain.ThemeQuestion{ID: "tq1", ThemeID: "missing"})
	if err != domain.ErrThemeNotFound {
		t.Fatalf("expected theme not found, got %v", err)
	}
}

func TestActiveQuestionLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	if _, err := store.GetActiveQuestion(ctx, "quiz"); err != domain.ErrQuizNotStarted {
		t.Fatalf("expected not started, got %v", err)
	}

	first := domain.ActiveQuestion{QuizID: "quiz", QuestionID: "q1", Stage: domain.StageQuestion}
	if err := store.UpsertActiveQuestion(ctx, first); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	update := domain.ActiveQuestion{QuizID: "quiz", QuestionID: "q1", Stage: domain.StageAnswer, ShowResults: true, CorrectOption: 2}
	if err := store.UpsertActiveQuestion(ctx, update); err != nil {
		t.Fatalf("upsert update: %v", err)
	}

	got, err := store.GetActiveQuestion(ctx, "quiz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Stage != domain.StageAnswer || !got.ShowResults || got.CorrectOption != 2 {
		t.Fatalf("expected updated record, got %+v", got)
	}

	if err := store.ClearActiveQuestion(ctx, "quiz"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := store.GetActiveQuestion(ctx, "quiz"); err != domain.ErrQuizNotStarted {
		t.Fatalf("expected cleared, got %v", err)
	}
}
