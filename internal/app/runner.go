package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/leeveo/quizz/internal/domain"
)

// StageDurations configures how long each stage of the cycle lasts.
type StageDurations struct {
	Question time.Duration
	Answer   time.Duration
	Results  time.Duration
	Next     time.Duration
}

// DefaultStageDurations matches the presenter cadence: 8s to answer, 5s on
// the revealed answer, 5s on per-participant results, then a short hop to
// the next question.
func DefaultStageDurations() StageDurations {
	return StageDurations{
		Question: 8 * time.Second,
		Answer:   5 * time.Second,
		Results:  5 * time.Second,
		Next:     500 * time.Millisecond,
	}
}

// SessionRunner owns the quiz progression state machine. One runner serves
// all quizzes; each started quiz gets a session and a countdown goroutine.
// Every transition is persisted to the active-question record before anyone
// hears about it, so a restarted client reads back the same stage it would
// have received over the wire.
type SessionRunner struct {
	quizzes   QuizRepository
	questions QuestionReader
	active    ActiveQuestionRepository
	liveness  Liveness
	durations StageDurations
	tick      time.Duration
	clock     func() time.Time
	log       *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*session
}

func NewSessionRunner(quizzes QuizRepository, questions QuestionReader, active ActiveQuestionRepository, liveness Liveness, durations StageDurations, log *slog.Logger) *SessionRunner {
	return &SessionRunner{
		quizzes:   quizzes,
		questions: questions,
		active:    active,
		liveness:  liveness,
		durations: durations,
		tick:      time.Second,
		clock:     time.Now,
		log:       log,
		sessions:  make(map[string]*session),
	}
}

// Start begins the question stream for a launched quiz: flips quiz_started,
// points the quiz at its first question and spins up the session.
func (r *SessionRunner) Start(ctx context.Context, quizID string) (StageEvent, error) {
	quiz, err := r.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return StageEvent{}, err
	}
	if quiz.Finished {
		return StageEvent{}, domain.ErrQuizFinished
	}
	if !quiz.Active {
		return StageEvent{}, domain.ErrQuizNotJoinable
	}

	questions, err := r.questions.ListQuestions(ctx, quizID)
	if err != nil {
		return StageEvent{}, err
	}
	if len(questions) == 0 {
		return StageEvent{}, domain.ErrNoQuestions
	}

	r.mu.Lock()
	if existing, ok := r.sessions[quizID]; ok {
		r.mu.Unlock()
		return existing.snapshot(), nil
	}
	s := newSession(quizID, questions, r.stageSeconds(domain.StageQuestion), r.clock)
	r.sessions[quizID] = s
	r.mu.Unlock()

	now := r.clock()
	quiz.QuizStarted = true
	quiz.StartedAt = &now
	quiz.ActiveQuestionID = questions[0].ID
	if err := r.quizzes.UpdateQuiz(ctx, &quiz); err != nil {
		r.drop(quizID)
		return StageEvent{}, fmt.Errorf("start quiz: %w", err)
	}
	if err := r.persistStage(ctx, s.snapshot(), questions[0].Correct); err != nil {
		r.drop(quizID)
		return StageEvent{}, err
	}

	if r.liveness != nil {
		if err := r.liveness.MarkLive(ctx, quizID); err != nil {
			r.log.Warn("liveness mark failed", "quiz", quizID, "err", err)
		}
	}

	go r.run(s)
	r.log.Info("quiz started", "quiz", quizID, "questions", len(questions))
	return s.snapshot(), nil
}

// Advance moves the quiz to the next stage of the cycle. From results it
// enters the transient next stage and, after the configured pause, lands on
// the following question or finishes the quiz.
func (r *SessionRunner) Advance(ctx context.Context, quizID string) (StageEvent, error) {
	s, err := r.session(quizID)
	if err != nil {
		return StageEvent{}, err
	}
	return r.advance(ctx, s)
}

// SetAutoPlay turns the countdown-driven advancement on or off for the
// current question cycle.
func (r *SessionRunner) SetAutoPlay(quizID string, on bool) (StageEvent, error) {
	s, err := r.session(quizID)
	if err != nil {
		return StageEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.autoPlay = on
	if !on {
		s.fullAuto = false
	} else if s.remaining <= 0 {
		s.remaining = r.stageSeconds(s.stage)
	}
	return s.broadcastLocked(), nil
}

// SetFullAuto keeps auto-advancing across every subsequent question until
// the quiz ends. Turning it on implies auto-play.
func (r *SessionRunner) SetFullAuto(quizID string, on bool) (StageEvent, error) {
	s, err := r.session(quizID)
	if err != nil {
		return StageEvent{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fullAuto = on
	if on {
		s.autoPlay = true
		if s.remaining <= 0 {
			s.remaining = r.stageSeconds(s.stage)
		}
	}
	return s.broadcastLocked(), nil
}

// Subscribe returns a channel of stage events for a running quiz. The
// caller must invoke the cancel function.
func (r *SessionRunner) Subscribe(quizID string) (<-chan StageEvent, func(), error) {
	s, err := r.session(quizID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.subscribe()
	return ch, cancel, nil
}

// Snapshot returns the current stage event without subscribing.
func (r *SessionRunner) Snapshot(quizID string) (StageEvent, error) {
	s, err := r.session(quizID)
	if err != nil {
		return StageEvent{}, err
	}
	return s.snapshot(), nil
}

// Finish ends a quiz. Works with or without a running session so an
// organizer can close an abandoned quiz.
func (r *SessionRunner) Finish(ctx context.Context, quizID string) error {
	r.mu.Lock()
	s, ok := r.sessions[quizID]
	r.mu.Unlock()
	if ok {
		_, err := r.finish(ctx, s)
		return err
	}
	return r.finishQuizRow(ctx, quizID)
}

func (r *SessionRunner) session(quizID string) (*session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[quizID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

func (r *SessionRunner) drop(quizID string) {
	r.mu.Lock()
	delete(r.sessions, quizID)
	r.mu.Unlock()
}

func (r *SessionRunner) stageSeconds(stage domain.Stage) int {
	var d time.Duration
	switch stage {
	case domain.StageQuestion:
		d = r.durations.Question
	case domain.StageAnswer:
		d = r.durations.Answer
	case domain.StageResults:
		d = r.durations.Results
	case domain.StageNext:
		d = r.durations.Next
	}
	return int(d / time.Second)
}

func (r *SessionRunner) advance(ctx context.Context, s *session) (StageEvent, error) {
	s.mu.Lock()
	if s.finished {
		ev := s.snapshotLocked()
		s.mu.Unlock()
		return ev, domain.ErrQuizFinished
	}
	if s.stage == domain.StageNext {
		s.mu.Unlock()
		return r.completeNext(ctx, s)
	}
	s.stage = s.stage.Next()
	if s.stage == domain.StageNext {
		s.remaining = 0
	} else {
		s.remaining = r.stageSeconds(s.stage)
	}
	correct := s.currentQuestionLocked().Correct
	ev := s.snapshotLocked()
	s.mu.Unlock()

	if err := r.persistStage(ctx, ev, correct); err != nil {
		return ev, err
	}

	s.mu.Lock()
	ev = s.broadcastLocked()
	s.mu.Unlock()

	if ev.Stage == domain.StageNext {
		if r.durations.Next > 0 {
			time.AfterFunc(r.durations.Next, func() {
				if _, err := r.completeNext(context.Background(), s); err != nil {
					r.log.Error("next-question hop failed", "quiz", s.quizID, "err", err)
				}
			})
			return ev, nil
		}
		return r.completeNext(ctx, s)
	}
	return ev, nil
}

// completeNext leaves the transient next stage: either loops back to
// question on the following index or finishes the quiz after the last one.
func (r *SessionRunner) completeNext(ctx context.Context, s *session) (StageEvent, error) {
	s.mu.Lock()
	if s.finished || s.stage != domain.StageNext {
		ev := s.snapshotLocked()
		s.mu.Unlock()
		return ev, nil
	}
	if s.index+1 >= len(s.questions) {
		s.mu.Unlock()
		return r.finish(ctx, s)
	}
	s.index++
	s.stage = domain.StageQuestion
	s.remaining = r.stageSeconds(domain.StageQuestion)
	if !s.fullAuto {
		s.autoPlay = false
	}
	q := s.currentQuestionLocked()
	ev := s.snapshotLocked()
	s.mu.Unlock()

	if err := r.quizzes.SetActiveQuestion(ctx, s.quizID, q.ID); err != nil {
		return ev, fmt.Errorf("point quiz at question: %w", err)
	}
	if err := r.persistStage(ctx, ev, q.Correct); err != nil {
		return ev, err
	}

	s.mu.Lock()
	ev = s.broadcastLocked()
	s.mu.Unlock()
	return ev, nil
}

func (r *SessionRunner) finish(ctx context.Context, s *session) (StageEvent, error) {
	s.mu.Lock()
	if s.finished {
		ev := s.snapshotLocked()
		s.mu.Unlock()
		return ev, nil
	}
	s.finished = true
	s.autoPlay = false
	s.fullAuto = false
	ev := s.broadcastLocked()
	close(s.done)
	s.mu.Unlock()

	r.drop(s.quizID)
	if r.liveness != nil {
		if err := r.liveness.ClearLive(ctx, s.quizID); err != nil {
			r.log.Warn("liveness clear failed", "quiz", s.quizID, "err", err)
		}
	}
	if err := r.finishQuizRow(ctx, s.quizID); err != nil {
		return ev, err
	}
	r.log.Info("quiz finished", "quiz", s.quizID)
	return ev, nil
}

func (r *SessionRunner) finishQuizRow(ctx context.Context, quizID string) error {
	quiz, err := r.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return err
	}
	now := r.clock()
	quiz.Finished = true
	quiz.Active = false
	quiz.EndedAt = &now
	if err := r.quizzes.UpdateQuiz(ctx, &quiz); err != nil {
		return fmt.Errorf("finish quiz: %w", err)
	}
	return nil
}

func (r *SessionRunner) persistStage(ctx context.Context, ev StageEvent, correct int) error {
	err := r.active.UpsertActiveQuestion(ctx, domain.ActiveQuestion{
		QuizID:        ev.QuizID,
		QuestionID:    ev.QuestionID,
		Stage:         ev.Stage,
		ShowResults:   ev.Stage.ShowsResults(),
		CorrectOption: correct,
	})
	if err != nil {
		return fmt.Errorf("persist stage: %w", err)
	}
	return nil
}

// run drives the per-second countdown for one session. Only the runner
// ticks; presenter tabs never own a timer, so reloads and extra tabs all
// observe the same stage.
func (r *SessionRunner) run(s *session) {
	ticker := time.NewTicker(r.tick)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			fire := false
			s.mu.Lock()
			if s.autoPlay && !s.finished && s.stage != domain.StageNext {
				s.remaining--
				if s.remaining <= 0 {
					fire = true
				} else {
					s.broadcastLocked()
				}
			}
			s.mu.Unlock()
			if fire {
				if _, err := r.advance(context.Background(), s); err != nil {
					r.log.Error("auto advance failed", "quiz", s.quizID, "err", err)
				}
			}
		}
	}
}
