package app

import (
	"context"
	"log/slog"
	"sort"

	"github.com/leeveo/quizz/internal/domain"
)

// The identity shown when an answer's participant row cannot be found.
const (
	anonymousName   = "Anonyme"
	anonymousAvatar = "👤"
)

// ResponseService aggregates answers for the presenter view.
type ResponseService struct {
	questions    QuestionReader
	participants ParticipantRepository
	answers      AnswerRepository
	log          *slog.Logger
}

func NewResponseService(questions QuestionReader, participants ParticipantRepository, answers AnswerRepository, log *slog.Logger) *ResponseService {
	return &ResponseService{
		questions:    questions,
		participants: participants,
		answers:      answers,
		log:          log,
	}
}

// FetchResponses counts recorded answers per option index. A question with
// zero answers yields an empty slice, never an error.
func (s *ResponseService) FetchResponses(ctx context.Context, questionID string) ([]domain.OptionCount, error) {
	answers, err := s.answers.ListAnswersByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int)
	for _, a := range answers {
		counts[a.SelectedOption]++
	}
	result := make([]domain.OptionCount, 0, len(counts))
	for option, count := range counts {
		result = append(result, domain.OptionCount{OptionIndex: option, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].OptionIndex < result[j].OptionIndex
	})
	return result, nil
}

// FetchParticipantResponses joins each answer to its participant's display
// identity. An answer whose participant row is gone still shows up, under
// an anonymous identity.
func (s *ResponseService) FetchParticipantResponses(ctx context.Context, quizID, questionID string) ([]domain.ParticipantResponse, error) {
	answers, err := s.answers.ListAnswersByQuestion(ctx, questionID)
	if err != nil {
		return nil, err
	}
	question, err := s.questions.GetQuestion(ctx, quizID, questionID)
	if err != nil {
		return nil, err
	}

	responses := make([]domain.ParticipantResponse, 0, len(answers))
	for _, a := range answers {
		name, avatar := anonymousName, anonymousAvatar
		participant, err := s.participants.GetParticipant(ctx, a.ParticipantID)
		if err == nil {
			name = participant.Name
			if participant.AvatarEmoji != "" {
				avatar = participant.AvatarEmoji
			}
		} else {
			s.log.Warn("participant missing for answer", "participant", a.ParticipantID, "question", questionID)
		}
		responses = append(responses, domain.ParticipantResponse{
			ParticipantID:  a.ParticipantID,
			Name:           name,
			AvatarEmoji:    avatar,
			SelectedOption: a.SelectedOption,
			Correct:        a.SelectedOption == question.Correct,
			AnsweredAt:     a.AnsweredAt,
		})
	}
	sort.Slice(responses, func(i, j int) bool {
		return responses[i].AnsweredAt.Before(responses[j].AnsweredAt)
	})
	return responses, nil
}
