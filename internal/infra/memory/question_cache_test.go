package memory

import (
	"context"
	"testing"
	"time"

	"github.com/leeveo/quizz/internal/domain"
)

type countingLoader struct {
	store *Store
	calls int
}

func (l *countingLoader) ListQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	l.calls++
	return l.store.ListQuestions(ctx, quizID)
}

func TestQuestionCacheHitsSkipLoader(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.AddQuestion(ctx, &domain.Question{ID: "q1", QuizID: "quiz", Title: "one", Options: []string{"a", "b"}})

	loader := &countingLoader{store: store}
	cache := NewQuestionCache(loader, time.Minute)

	if _, err := cache.ListQuestions(ctx, "quiz"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	if _, err := cache.ListQuestions(ctx, "quiz"); err != nil {
		t.Fatalf("list again: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}

	q, err := cache.GetQuestion(ctx, "quiz", "q1")
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if q.Title != "one" {
		t.Fatalf("unexpected question %+v", q)
	}
	if loader.calls != 1 {
		t.Fatalf("expected get served from cache, loader calls=%d", loader.calls)
	}

	if _, err := cache.GetQuestion(ctx, "quiz", "missing"); err != domain.ErrQuestionNotFound {
		t.Fatalf("expected question not found, got %v", err)
	}
}

func TestQuestionCacheInvalidate(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	_ = store.AddQuestion(ctx, &domain.Question{ID: "q1", QuizID: "quiz", Title: "one"})

	loader := &countingLoader{store: store}
	cache := NewQuestionCache(loader, time.Minute)

	_, _ = cache.ListQuestions(ctx, "quiz")
	if err := cache.Invalidate(ctx, "quiz"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.ListQuestions(ctx, "quiz")
	if loader.calls != 2 {
		t.Fatalf("expected reload after invalidate, loader calls=%d", loader.calls)
	}
}
