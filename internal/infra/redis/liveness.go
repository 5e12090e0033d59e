package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Liveness marks quizzes with a running session in Redis, so multiple
// service instances (or an external dashboard) can see which quizzes are
// live without asking the database.
type Liveness struct {
	client *redis.Client
	ttl    time.Duration
}

func NewLiveness(client *redis.Client, ttl time.Duration) *Liveness {
	return &Liveness{client: client, ttl: ttl}
}

func (l *Liveness) MarkLive(ctx context.Context, quizID string) error {
	return l.client.Set(ctx, l.key(quizID), "1", l.ttl).Err()
}

func (l *Liveness) ClearLive(ctx context.Context, quizID string) error {
	return l.client.Del(ctx, l.key(quizID)).Err()
}

// IsLive reports whether a session marker exists for the quiz.
func (l *Liveness) IsLive(ctx context.Context, quizID string) (bool, error) {
	n, err := l.client.Exists(ctx, l.key(quizID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (l *Liveness) key(quizID string) string {
	return "quiz:session:" + quizID
}
