package app

import (
	"context"
	"sort"

	"github.com/leeveo/quizz/internal/domain"
)

// StatsService computes the read-only aggregation for a quiz: who answered
// how much, and how each question fared. Nothing is persisted; every call
// recomputes from the three tables.
type StatsService struct {
	questions    QuestionRepository
	participants ParticipantRepository
	answers      AnswerRepository
}

func NewStatsService(questions QuestionRepository, participants ParticipantRepository, answers AnswerRepository) *StatsService {
	return &StatsService{
		questions:    questions,
		participants: participants,
		answers:      answers,
	}
}

func (s *StatsService) QuizStats(ctx context.Context, quizID string) (domain.QuizStats, error) {
	participants, err := s.participants.ListParticipants(ctx, quizID)
	if err != nil {
		return domain.QuizStats{}, err
	}
	answers, err := s.answers.ListAnswersByQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizStats{}, err
	}
	questions, err := s.questions.ListQuestions(ctx, quizID)
	if err != nil {
		return domain.QuizStats{}, err
	}

	correctByQuestion := make(map[string]int, len(questions))
	for _, q := range questions {
		correctByQuestion[q.ID] = q.Correct
	}

	perParticipant := make(map[string]*domain.ParticipantStats, len(participants))
	for _, p := range participants {
		perParticipant[p.ID] = &domain.ParticipantStats{
			ParticipantID: p.ID,
			Name:          p.Name,
			AvatarEmoji:   p.AvatarEmoji,
		}
	}
	perQuestion := make(map[string]*domain.QuestionStats, len(questions))
	for _, q := range questions {
		perQuestion[q.ID] = &domain.QuestionStats{QuestionID: q.ID, Title: q.Title}
	}

	for _, a := range answers {
		correct, known := correctByQuestion[a.QuestionID]
		isCorrect := known && a.SelectedOption == correct

		if ps, ok := perParticipant[a.ParticipantID]; ok {
			ps.Answered++
			if isCorrect {
				ps.Correct++
			}
		}
		if qs, ok := perQuestion[a.QuestionID]; ok {
			qs.Responses++
			if isCorrect {
				qs.Correct++
			}
		}
	}

	stats := domain.QuizStats{
		QuizID:            quizID,
		TotalParticipants: len(participants),
		TotalAnswers:      len(answers),
		Participants:      make([]domain.ParticipantStats, 0, len(participants)),
		Questions:         make([]domain.QuestionStats, 0, len(questions)),
	}
	for _, p := range participants {
		ps := perParticipant[p.ID]
		if ps.Answered > 0 {
			ps.Percent = 100 * float64(ps.Correct) / float64(ps.Answered)
		}
		stats.Participants = append(stats.Participants, *ps)
	}
	for _, q := range questions {
		qs := perQuestion[q.ID]
		if qs.Responses > 0 {
			qs.Percent = 100 * float64(qs.Correct) / float64(qs.Responses)
		}
		stats.Questions = append(stats.Questions, *qs)
	}

	// Best participants first, as the stats page ranks them.
	sort.SliceStable(stats.Participants, func(i, j int) bool {
		if stats.Participants[i].Correct != stats.Participants[j].Correct {
			return stats.Participants[i].Correct > stats.Participants[j].Correct
		}
		return stats.Participants[i].Name < stats.Participants[j].Name
	})
	return stats, nil
}
