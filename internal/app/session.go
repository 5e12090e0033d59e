package app

import (
	"sync"
	"time"

	"github.com/leeveo/quizz/internal/domain"
)

// StageEvent is the broadcast unit for a live quiz: which question is up,
// what stage everyone should render, and how many seconds remain in it.
type StageEvent struct {
	QuizID        string       `json:"quizId"`
	QuestionID    string       `json:"questionId"`
	QuestionIndex int          `json:"questionIndex"`
	QuestionCount int          `json:"questionCount"`
	Stage         domain.Stage `json:"stage"`
	Remaining     int          `json:"remaining"`
	ShowResults   bool         `json:"showResults"`
	AutoPlay      bool         `json:"autoPlay"`
	FullAuto      bool         `json:"fullAuto"`
	Finished      bool         `json:"finished"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// session holds the live state of one started quiz. All mutation goes
// through the SessionRunner, which owns the stage transitions; clients only
// observe through subscribe.
type session struct {
	quizID    string
	questions []domain.Question
	now       func() time.Time

	mu          sync.RWMutex
	index       int
	stage       domain.Stage
	remaining   int
	autoPlay    bool
	fullAuto    bool
	finished    bool
	subscribers map[chan StageEvent]struct{}
	done        chan struct{}
}

func newSession(quizID string, questions []domain.Question, remaining int, now func() time.Time) *session {
	return &session{
		quizID:      quizID,
		questions:   questions,
		now:         now,
		stage:       domain.StageQuestion,
		remaining:   remaining,
		subscribers: make(map[chan StageEvent]struct{}),
		done:        make(chan struct{}),
	}
}

func (s *session) currentQuestionLocked() domain.Question {
	if s.index < 0 || s.index >= len(s.questions) {
		return domain.Question{}
	}
	return s.questions[s.index]
}

func (s *session) snapshotLocked() StageEvent {
	q := s.currentQuestionLocked()
	return StageEvent{
		QuizID:        s.quizID,
		QuestionID:    q.ID,
		QuestionIndex: s.index,
		QuestionCount: len(s.questions),
		Stage:         s.stage,
		Remaining:     s.remaining,
		ShowResults:   s.stage.ShowsResults(),
		AutoPlay:      s.autoPlay,
		FullAuto:      s.fullAuto,
		Finished:      s.finished,
		UpdatedAt:     s.now(),
	}
}

func (s *session) snapshot() StageEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// broadcastLocked fans the current snapshot out to every subscriber.
// Slow subscribers lose the stale event rather than blocking the rest.
func (s *session) broadcastLocked() StageEvent {
	ev := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- ev
		}
	}
	return ev
}

// subscribe registers a listener. The channel first receives the current
// snapshot so late joiners land on the right stage immediately. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *session) subscribe() (<-chan StageEvent, func()) {
	ch := make(chan StageEvent, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	// Sent under the lock so a concurrent broadcast cannot land before
	// the snapshot. The fresh buffered channel cannot block here.
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}
