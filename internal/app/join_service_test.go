package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/leeveo/quizz/internal/app"
	"github.com/leeveo/quizz/internal/domain"
	"github.com/leeveo/quizz/internal/infra/memory"
)

func TestJoinRoutesByLifecycle(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	quizzes := newQuizService(store)
	join := app.NewJoinService(store, store, testLogger())

	quiz, _ := quizzes.CreateQuiz(ctx, app.CreateQuizInput{Title: "Quiz"})

	// Not launched yet: nothing is written.
	if _, err := join.Join(ctx, quiz.ID, "Alice", "🦊"); err != domain.ErrQuizNotJoinable {
		t.Fatalf("expected not joinable, got %v", err)
	}
	roster, _ := store.ListParticipants(ctx, quiz.ID)
	if len(roster) != 0 {
		t.Fatalf("expected no participants after blocked join, got %d", len(roster))
	}

	if _, err := quizzes.Launch(ctx, quiz.ID); err != nil {
		t.Fatalf("launch: %v", err)
	}
	result, err := join.Join(ctx, quiz.ID, "Alice", "🦊")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if result.Route != app.RouteWaiting {
		t.Fatalf("expected waiting route, got %s", result.Route)
	}
	if result.Participant.ID == "" || result.Participant.QuizID != quiz.ID {
		t.Fatalf("unexpected participant %+v", result.Participant)
	}

	// Once the stream starts, late joiners go straight to play.
	stored, _ := store.GetQuiz(ctx, quiz.ID)
	stored.QuizStarted = true
	_ = store.UpdateQuiz(ctx, &stored)

	late, err := join.Join(ctx, quiz.ID, "Bob", "🐻")
	if err != nil {
		t.Fatalf("late join: %v", err)
	}
	if late.Route != app.RoutePlay {
		t.Fatalf("expected play route, got %s", late.Route)
	}
}

func TestJoinFinishedQuizFails(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	quizzes := newQuizService(store)
	join := app.NewJoinService(store, store, testLogger())

	quiz, _ := quizzes.CreateQuiz(ctx, app.CreateQuizInput{Title: "Quiz"})
	stored, _ := store.GetQuiz(ctx, quiz.ID)
	stored.Finished = true
	_ = store.UpdateQuiz(ctx, &stored)

	if _, err := join.Join(ctx, quiz.ID, "Alice", ""); err != domain.ErrQuizFinished {
		t.Fatalf("expected finished error, got %v", err)
	}
}

func TestResumeExpiresAfterRelaunch(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	quizzes := newQuizService(store)
	join := app.NewJoinService(store, store, testLogger())

	quiz, _ := quizzes.CreateQuiz(ctx, app.CreateQuizInput{Title: "Quiz"})
	if _, err := quizzes.Launch(ctx, quiz.ID); err != nil {
		t.Fatalf("launch: %v", err)
	}
	joined, err := join.Join(ctx, quiz.ID, "Alice", "🦊")
	if err != nil {
		t.Fatalf("join: %v", err)
	}

	resumed, err := join.Resume(ctx, quiz.ID, joined.Participant.ID, joined.LaunchedAt)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if resumed.Participant.ID != joined.Participant.ID {
		t.Fatalf("expected same participant back")
	}

	// Relaunch with a strictly later launched_at invalidates the identity.
	stored, _ := store.GetQuiz(ctx, quiz.ID)
	bumped := stored.LaunchedAt.Add(time.Second)
	stored.LaunchedAt = &bumped
	_ = store.UpdateQuiz(ctx, &stored)

	if _, err := join.Resume(ctx, quiz.ID, joined.Participant.ID, joined.LaunchedAt); err != domain.ErrIdentityExpired {
		t.Fatalf("expected identity expired, got %v", err)
	}
}

func TestResumeRejectsWrongQuiz(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	quizzes := newQuizService(store)
	join := app.NewJoinService(store, store, testLogger())

	first, _ := quizzes.CreateQuiz(ctx, app.CreateQuizInput{Title: "First"})
	second, _ := quizzes.CreateQuiz(ctx, app.CreateQuizInput{Title: "Second"})
	_, _ = quizzes.Launch(ctx, first.ID)
	launchedSecond, _ := quizzes.Launch(ctx, second.ID)

	joined, err := join.Join(ctx, first.ID, "Alice", "")
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if _, err := join.Resume(ctx, second.ID, joined.Participant.ID, launchedSecond.LaunchedAt); err != domain.ErrParticipantNotFound {
		t.Fatalf("expected participant mismatch, got %v", err)
	}
}
