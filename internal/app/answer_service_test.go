package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leeveo/quizz/internal/app"
	"github.com/leeveo/quizz/internal/domain"
	"github.com/leeveo/quizz/internal/infra/memory"
)

type answerFixture struct {
	store   *memory.Store
	answers *app.AnswerService
	quiz    domain.Quiz
	q       domain.Question
	alice   domain.Participant
}

func newAnswerFixture(t *testing.T) *answerFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	quizzes := newQuizService(store)
	join := app.NewJoinService(store, store, testLogger())
	reader := memory.NewQuestionCache(store, time.Minute)
	answers := app.NewAnswerService(reader, store, store, store, testLogger())

	quiz, _ := quizzes.CreateQuiz(ctx, app.CreateQuizInput{Title: "Quiz"})
	q, err := quizzes.AddQuestion(ctx, quiz.ID, app.AddQuestionInput{
		Title:   "Pick the second",
		Options: []string{"a", "b", "c"},
		Correct: 1,
	})
	if err != nil {
		t.Fatalf("add question: %v", err)
	}
	if _, err := quizzes.Launch(ctx, quiz.ID); err != nil {
		t.Fatalf("launch: %v", err)
	}
	joined, err := join.Join(ctx, quiz.ID, "Alice", "🦊")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	return &answerFixture{store: store, answers: answers, quiz: quiz, q: q, alice: joined.Participant}
}

func (f *answerFixture) openQuestion(t *testing.T) {
	t.Helper()
	err := f.store.UpsertActiveQuestion(context.Background(), domain.ActiveQuestion{
		QuizID:        f.quiz.ID,
		QuestionID:    f.q.ID,
		Stage:         domain.StageQuestion,
		CorrectOption: f.q.Correct,
	})
	if err != nil {
		t.Fatalf("upsert active: %v", err)
	}
}

func TestSubmitRecordsAnswer(t *testing.T) {
	ctx := context.Background()
	f := newAnswerFixture(t)
	f.openQuestion(t)

	result, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !result.Correct || result.CorrectOption != 1 {
		t.Fatalf("expected correct answer result, got %+v", result)
	}

	prior, err := f.answers.AnswerFor(ctx, f.quiz.ID, f.alice.ID, f.q.ID)
	if err != nil {
		t.Fatalf("answer for: %v", err)
	}
	if prior.SelectedOption != 1 || !prior.Correct {
		t.Fatalf("expected stored answer back, got %+v", prior)
	}
}

func TestSubmitTwiceRejected(t *testing.T) {
	ctx := context.Background()
	f := newAnswerFixture(t)
	f.openQuestion(t)

	if _, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, 0); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, 2); err != domain.ErrAlreadyAnswered {
		t.Fatalf("expected already answered, got %v", err)
	}

	// The first answer is the one that sticks.
	stored, err := f.store.GetAnswer(ctx, f.alice.ID, f.q.ID)
	if err != nil {
		t.Fatalf("get answer: %v", err)
	}
	if stored.SelectedOption != 0 {
		t.Fatalf("expected first submission kept, got option %d", stored.SelectedOption)
	}
}

func TestSubmitBeforeStartFails(t *testing.T) {
	ctx := context.Background()
	f := newAnswerFixture(t)

	if _, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, 1); err != domain.ErrQuizNotStarted {
		t.Fatalf("expected not started, got %v", err)
	}
}

func TestSubmitOutsideQuestionStageFails(t *testing.T) {
	ctx := context.Background()
	f := newAnswerFixture(t)
	if err := f.store.UpsertActiveQuestion(ctx, domain.ActiveQuestion{
		QuizID:      f.quiz.ID,
		QuestionID:  f.q.ID,
		Stage:       domain.StageAnswer,
		ShowResults: true,
	}); err != nil {
		t.Fatalf("upsert active: %v", err)
	}

	if _, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, 1); err != domain.ErrSubmissionsClosed {
		t.Fatalf("expected submissions closed, got %v", err)
	}
}

func TestSubmitForStaleQuestionFails(t *testing.T) {
	ctx := context.Background()
	f := newAnswerFixture(t)
	if err := f.store.UpsertActiveQuestion(ctx, domain.ActiveQuestion{
		QuizID:     f.quiz.ID,
		QuestionID: "some-other-question",
		Stage:      domain.StageQuestion,
	}); err != nil {
		t.Fatalf("upsert active: %v", err)
	}

	if _, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, 1); err != domain.ErrSubmissionsClosed {
		t.Fatalf("expected submissions closed, got %v", err)
	}
}

func TestSubmitValidatesOptionAndParticipant(t *testing.T) {
	ctx := context.Background()
	f := newAnswerFixture(t)
	f.openQuestion(t)

	if _, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, 3); err != domain.ErrOptionOutOfRange {
		t.Fatalf("expected option out of range, got %v", err)
	}
	if _, err := f.answers.Submit(ctx, f.quiz.ID, f.alice.ID, f.q.ID, -1); err != domain.ErrOptionOutOfRange {
		t.Fatalf("expected option out of range, got %v", err)
	}
	if _, err := f.answers.Submit(ctx, f.quiz.ID, "ghost", f.q.ID, 1); err != domain.ErrParticipantNotFound {
		t.Fatalf("expected participant not found, got %v", err)
	}
}

func TestSubmitSurfacesActiveLookupFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	active := &flakyActiveStore{Store: store, failGets: true}
	reader := memory.NewQuestionCache(store, time.Minute)
	answers := app.NewAnswerService(reader, store, store, active, testLogger())

	_, err := answers.Submit(ctx, "quiz", "alice", "q1", 0)
	if err == nil {
		t.Fatalf("expected error")
	}
	if errors.Is(err, domain.ErrQuizNotStarted) {
		t.Fatalf("store failure should not read as quiz-not-started: %v", err)
	}
}
