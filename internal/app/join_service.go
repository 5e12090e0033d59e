package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leeveo/quizz/internal/domain"
)

// Route tells a joining participant which view to land on.
type Route string

const (
	// RouteWaiting sends the participant to the waiting room: the quiz is
	// joinable but the question stream has not begun.
	RouteWaiting Route = "waiting"
	// RoutePlay sends the participant straight into live play.
	RoutePlay Route = "play"
)

// JoinResult is what a successful join or resume hands back to the client,
// including the launch timestamp the client must present on resume.
type JoinResult struct {
	Participant domain.Participant `json:"participant"`
	Route       Route              `json:"route"`
	LaunchedAt  *time.Time         `json:"launchedAt,omitempty"`
}

// JoinService handles the participant join flow: self-asserted identity,
// routing by quiz stage, and relaunch invalidation.
type JoinService struct {
	quizzes      QuizRepository
	participants ParticipantRepository
	clock        func() time.Time
	log          *slog.Logger
}

func NewJoinService(quizzes QuizRepository, participants ParticipantRepository, log *slog.Logger) *JoinService {
	return &JoinService{
		quizzes:      quizzes,
		participants: participants,
		clock:        time.Now,
		log:          log,
	}
}

// Join registers a participant in a quiz. Joining a quiz that is not
// active writes nothing and fails; a joinable quiz routes to the waiting
// room until the question stream starts.
func (s *JoinService) Join(ctx context.Context, quizID, name, avatarEmoji string) (JoinResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return JoinResult{}, err
	}
	if quiz.Finished {
		return JoinResult{}, domain.ErrQuizFinished
	}
	if !quiz.Active {
		return JoinResult{}, domain.ErrQuizNotJoinable
	}

	participant := domain.Participant{
		ID:          uuid.NewString(),
		QuizID:      quizID,
		Name:        name,
		AvatarEmoji: avatarEmoji,
		ConnectedAt: s.clock(),
	}
	if err := s.participants.AddParticipant(ctx, &participant); err != nil {
		return JoinResult{}, fmt.Errorf("add participant: %w", err)
	}

	route := RouteWaiting
	if quiz.QuizStarted {
		route = RoutePlay
	}
	s.log.Info("participant joined", "quiz", quizID, "participant", participant.ID, "route", route)
	return JoinResult{Participant: participant, Route: route, LaunchedAt: quiz.LaunchedAt}, nil
}

// Resume re-validates a stored identity after a page reload. A quiz
// relaunched since the identity was issued expires it and forces a rejoin.
func (s *JoinService) Resume(ctx context.Context, quizID, participantID string, launchedAt *time.Time) (JoinResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return JoinResult{}, err
	}
	if quiz.Finished {
		return JoinResult{}, domain.ErrQuizFinished
	}
	if !quiz.Active {
		return JoinResult{}, domain.ErrQuizNotJoinable
	}
	if !launchEqual(quiz.LaunchedAt, launchedAt) {
		return JoinResult{}, domain.ErrIdentityExpired
	}

	participant, err := s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		return JoinResult{}, err
	}
	if participant.QuizID != quizID {
		return JoinResult{}, domain.ErrParticipantNotFound
	}

	route := RouteWaiting
	if quiz.QuizStarted {
		route = RoutePlay
	}
	return JoinResult{Participant: participant, Route: route, LaunchedAt: quiz.LaunchedAt}, nil
}

// Roster lists the participants of a quiz for the waiting room and the
// presenter view.
func (s *JoinService) Roster(ctx context.Context, quizID string) ([]domain.Participant, error) {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return nil, err
	}
	return s.participants.ListParticipants(ctx, quizID)
}

func launchEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
