package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/leeveo/quizz/internal/app"
	"github.com/leeveo/quizz/internal/domain"
	"github.com/leeveo/quizz/internal/infra/memory"
)

func TestQuizStatsAggregates(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	quizzes := newQuizService(store)
	stats := app.NewStatsService(store, store, store)

	quiz, _ := quizzes.CreateQuiz(ctx, app.CreateQuizInput{Title: "Quiz"})
	q1, _ := quizzes.AddQuestion(ctx, quiz.ID, app.AddQuestionInput{Title: "Q1", Options: []string{"a", "b"}, Correct: 0})
	q2, _ := quizzes.AddQuestion(ctx, quiz.ID, app.AddQuestionInput{Title: "Q2", Options: []string{"a", "b"}, Correct: 1})

	alice := addParticipant(t, store, quiz.ID, "Alice")
	bob := addParticipant(t, store, quiz.ID, "Bob")
	addParticipant(t, store, quiz.ID, "Carol") // never answers

	insertQuizAnswer(t, store, quiz.ID, alice.ID, q1.ID, 0) // correct
	insertQuizAnswer(t, store, quiz.ID, alice.ID, q2.ID, 1) // correct
	insertQuizAnswer(t, store, quiz.ID, bob.ID, q1.ID, 1)   // wrong
	insertQuizAnswer(t, store, quiz.ID, bob.ID, q2.ID, 1)   // correct

	got, err := stats.QuizStats(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("quiz stats: %v", err)
	}
	if got.TotalParticipants != 3 || got.TotalAnswers != 4 {
		t.Fatalf("expected 3 participants and 4 answers, got %+v", got)
	}

	if len(got.Participants) != 3 {
		t.Fatalf("expected 3 participant rows, got %d", len(got.Participants))
	}
	if got.Participants[0].Name != "Alice" || got.Participants[0].Correct != 2 || got.Participants[0].Percent != 100 {
		t.Fatalf("expected Alice ranked first at 100%%, got %+v", got.Participants[0])
	}
	if got.Participants[1].Name != "Bob" || got.Participants[1].Correct != 1 || got.Participants[1].Percent != 50 {
		t.Fatalf("expected Bob second at 50%%, got %+v", got.Participants[1])
	}
	if got.Participants[2].Name != "Carol" || got.Participants[2].Answered != 0 || got.Participants[2].Percent != 0 {
		t.Fatalf("expected Carol last with no answers, got %+v", got.Participants[2])
	}

	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 question rows, got %d", len(got.Questions))
	}
	if got.Questions[0].QuestionID != q1.ID || got.Questions[0].Responses != 2 || got.Questions[0].Correct != 1 {
		t.Fatalf("unexpected q1 stats %+v", got.Questions[0])
	}
	if got.Questions[1].QuestionID != q2.ID || got.Questions[1].Responses != 2 || got.Questions[1].Correct != 2 {
		t.Fatalf("unexpected q2 stats %+v", got.Questions[1])
	}
}

func addParticipant(t *testing.T, store *memory.Store, quizID, name string) domain.Participant {
	t.Helper()
	p := domain.Participant{ID: uuid.NewString(), QuizID: quizID, Name: name, ConnectedAt: time.Now()}
	if err := store.AddParticipant(context.Background(), &p); err != nil {
		t.Fatalf("add participant: %v", err)
	}
	return p
}

func insertQuizAnswer(t *testing.T, store *memory.Store, quizID, participantID, questionID string, option int) {
	t.Helper()
	err := store.InsertAnswer(context.Background(), &domain.ParticipantAnswer{
		ID:             uuid.NewString(),
		ParticipantID:  participantID,
		QuestionID:     questionID,
		QuizID:         quizID,
		SelectedOption: option,
		AnsweredAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("insert answer: %v", err)
	}
}
