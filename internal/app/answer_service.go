package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/leeveo/quizz/internal/domain"
)

// AnswerService accepts participant submissions. One answer per
// (participant, question), enforced by the answer store, and only while
// the question is both active and in its question stage.
type AnswerService struct {
	questions    QuestionReader
	participants ParticipantRepository
	answers      AnswerRepository
	active       ActiveQuestionRepository
	clock        func() time.Time
	log          *slog.Logger
}

func NewAnswerService(questions QuestionReader, participants ParticipantRepository, answers AnswerRepository, active ActiveQuestionRepository, log *slog.Logger) *AnswerService {
	return &AnswerService{
		questions:    questions,
		participants: participants,
		answers:      answers,
		active:       active,
		clock:        time.Now,
		log:          log,
	}
}

// Submit records a participant's option choice for the active question.
func (s *AnswerService) Submit(ctx context.Context, quizID, participantID, questionID string, optionIndex int) (domain.AnswerResult, error) {
	active, err := s.active.GetActiveQuestion(ctx, quizID)
	if err != nil {
		if errors.Is(err, domain.ErrQuizNotStarted) {
			return domain.AnswerResult{}, domain.ErrQuizNotStarted
		}
		return domain.AnswerResult{}, fmt.Errorf("load active question: %w", err)
	}
	if active.QuestionID != questionID || active.Stage != domain.StageQuestion {
		return domain.AnswerResult{}, domain.ErrSubmissionsClosed
	}

	question, err := s.questions.GetQuestion(ctx, quizID, questionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if optionIndex < 0 || optionIndex >= len(question.Options) {
		return domain.AnswerResult{}, domain.ErrOptionOutOfRange
	}

	participant, err := s.participants.GetParticipant(ctx, participantID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	if participant.QuizID != quizID {
		return domain.AnswerResult{}, domain.ErrParticipantNotFound
	}

	answer := domain.ParticipantAnswer{
		ID:             uuid.NewString(),
		ParticipantID:  participantID,
		QuestionID:     questionID,
		QuizID:         quizID,
		SelectedOption: optionIndex,
		AnsweredAt:     s.clock(),
	}
	if err := s.answers.InsertAnswer(ctx, &answer); err != nil {
		if err == domain.ErrAlreadyAnswered {
			return domain.AnswerResult{}, err
		}
		return domain.AnswerResult{}, fmt.Errorf("insert answer: %w", err)
	}

	return domain.AnswerResult{
		QuestionID:     questionID,
		SelectedOption: optionIndex,
		Correct:        optionIndex == question.Correct,
		CorrectOption:  question.Correct,
	}, nil
}

// AnswerFor returns the participant's prior answer with correctness, used
// by the play view after a reload to restore its "already answered" state.
func (s *AnswerService) AnswerFor(ctx context.Context, quizID, participantID, questionID string) (domain.AnswerResult, error) {
	answer, err := s.answers.GetAnswer(ctx, participantID, questionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	question, err := s.questions.GetQuestion(ctx, quizID, questionID)
	if err != nil {
		return domain.AnswerResult{}, err
	}
	return domain.AnswerResult{
		QuestionID:     questionID,
		SelectedOption: answer.SelectedOption,
		Correct:        answer.SelectedOption == question.Correct,
		CorrectOption:  question.Correct,
	}, nil
}
