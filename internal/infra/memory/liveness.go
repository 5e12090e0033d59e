package memory

import (
	"context"
	"sync"
)

// Liveness tracks running sessions in process memory.
type Liveness struct {
	mu   sync.Mutex
	live map[string]struct{}
}

func NewLiveness() *Liveness {
	return &Liveness{live: make(map[string]struct{})}
}

func (l *Liveness) MarkLive(_ context.Context, quizID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.live[quizID] = struct{}{}
	return nil
}

func (l *Liveness) ClearLive(_ context.Context, quizID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.live, quizID)
	return nil
}

func (l *Liveness) IsLive(_ context.Context, quizID string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.live[quizID]
	return ok, nil
}
