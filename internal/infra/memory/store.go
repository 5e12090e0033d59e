package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/leeveo/quizz/internal/domain"
)

// Store implements every app repository in memory, for tests and for
// running the service without Postgres.
type Store struct {
	mu      sync.RWMutex
	quizzes map[string]domain.Quiz

	questionsMu sync.RWMutex
	questions   map[string]domain.Question

	themesMu       sync.RWMutex
	themes         map[string]domain.Theme
	themeQuestions map[string]domain.ThemeQuestion

	participantsMu sync.RWMutex
	participants   map[string]domain.Participant

	answersMu sync.RWMutex
	answers   map[string]domain.ParticipantAnswer
	answered  map[string]string

	activeMu sync.RWMutex
	active   map[string]domain.ActiveQuestion
}

func NewStore() *Store {
	return &Store{
		quizzes:        make(map[string]domain.Quiz),
		questions:      make(map[string]domain.Question),
		themes:         make(map[string]domain.Theme),
		themeQuestions: make(map[string]domain.ThemeQuestion),
		participants:   make(map[string]domain.Participant),
		answers:        make(map[string]domain.ParticipantAnswer),
		answered:       make(map[string]string),
		active:         make(map[string]domain.ActiveQuestion),
	}
}

func (s *Store) CreateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.quizzes[quiz.ID] = *quiz
	return nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) UpdateQuiz(_ context.Context, quiz *domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.quizzes[quiz.ID]; !ok {
		return domain.ErrQuizNotFound
	}
	s.quizzes[quiz.ID] = *quiz
	return nil
}

func (s *Store) SetActiveQuestion(_ context.Context, quizID, questionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	quiz.ActiveQuestionID = questionID
	s.quizzes[quizID] = quiz
	return nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		quizzes = append(quizzes, quiz)
	}
	sort.Slice(quizzes, func(i, j int) bool {
		return quizzes[i].CreatedAt.Before(quizzes[j].CreatedAt)
	})
	return quizzes, nil
}

func (s *Store) AddQuestion(_ context.Context, question *domain.Question) error {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	s.questions[question.ID] = *question
	return nil
}

func (s *Store) AddQuestions(ctx context.Context, questions []domain.Question) error {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	for _, q := range questions {
		s.questions[q.ID] = q
	}
	return nil
}

func (s *Store) GetQuestion(_ context.Context, questionID string) (domain.Question, error) {
	s.questionsMu.RLock()
	defer s.questionsMu.RUnlock()
	question, ok := s.questions[questionID]
	if !ok {
		return domain.Question{}, domain.ErrQuestionNotFound
	}
	return question, nil
}

func (s *Store) ListQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.questionsMu.RLock()
	defer s.questionsMu.RUnlock()
	questions := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.QuizID == quizID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].OrderIndex < questions[j].OrderIndex
	})
	return questions, nil
}

func (s *Store) DeleteQuestion(_ context.Context, questionID string) error {
	s.questionsMu.Lock()
	defer s.questionsMu.Unlock()
	if _, ok := s.questions[questionID]; !ok {
		return domain.ErrQuestionNotFound
	}
	delete(s.questions, questionID)
	return nil
}

func (s *Store) CreateTheme(_ context.Context, theme *domain.Theme) error {
	s.themesMu.Lock()
	defer s.themesMu.Unlock()
	s.themes[theme.ID] = *theme
	return nil
}

func (s *Store) ListThemes(_ context.Context) ([]domain.Theme, error) {
	s.themesMu.RLock()
	defer s.themesMu.RUnlock()
	themes := make([]domain.Theme, 0, len(s.themes))
	for _, theme := range s.themes {
		themes = append(themes, theme)
	}
	sort.Slice(themes, func(i, j int) bool { return themes[i].Name < themes[j].Name })
	return themes, nil
}

func (s *Store) AddThemeQuestion(_ context.Context, question *domain.ThemeQuestion) error {
	s.themesMu.Lock()
	defer s.themesMu.Unlock()
	if _, ok := s.themes[question.ThemeID]; !ok {
		return domain.ErrThemeNotFound
	}
	s.themeQuestions[question.ID] = *question
	return nil
}

func (s *Store) ListThemeQuestions(_ context.Context, themeID string) ([]domain.ThemeQuestion, error) {
	s.themesMu.RLock()
	defer s.themesMu.RUnlock()
	questions := make([]domain.ThemeQuestion, 0)
	for _, q := range s.themeQuestions {
		if q.ThemeID == themeID {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].Content < questions[j].Content })
	return questions, nil
}

func (s *Store) GetThemeQuestions(_ context.Context, ids []string) ([]domain.ThemeQuestion, error) {
	s.themesMu.RLock()
	defer s.themesMu.RUnlock()
	questions := make([]domain.ThemeQuestion, 0, len(ids))
	for _, id := range ids {
		q, ok := s.themeQuestions[id]
		if !ok {
			return nil, domain.ErrQuestionNotFound
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func (s *Store) AddParticipant(_ context.Context, participant *domain.Participant) error {
	s.participantsMu.Lock()
	defer s.participantsMu.Unlock()
	s.participants[participant.ID] = *participant
	return nil
}

func (s *Store) GetParticipant(_ context.Context, participantID string) (domain.Participant, error) {
	s.participantsMu.RLock()
	defer s.participantsMu.RUnlock()
	participant, ok := s.participants[participantID]
	if !ok {
		return domain.Participant{}, domain.ErrParticipantNotFound
	}
	return participant, nil
}

func (s *Store) ListParticipants(_ context.Context, quizID string) ([]domain.Participant, error) {
	s.participantsMu.RLock()
	defer s.participantsMu.RUnlock()
	participants := make([]domain.Participant, 0)
	for _, p := range s.participants {
		if p.QuizID == quizID {
			participants = append(participants, p)
		}
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].ConnectedAt.Before(participants[j].ConnectedAt)
	})
	return participants, nil
}

func (s *Store) InsertAnswer(_ context.Context, answer *domain.ParticipantAnswer) error {
	s.answersMu.Lock()
	defer s.answersMu.Unlock()
	key := answer.ParticipantID + "|" + answer.QuestionID
	if _, exists := s.answered[key]; exists {
		return domain.ErrAlreadyAnswered
	}
	s.answered[key] = answer.ID
	s.answers[answer.ID] = *answer
	return nil
}

func (s *Store) GetAnswer(_ context.Context, participantID, questionID string) (domain.ParticipantAnswer, error) {
	s.answersMu.RLock()
	defer s.answersMu.RUnlock()
	id, ok := s.answered[participantID+"|"+questionID]
	if !ok {
		return domain.ParticipantAnswer{}, domain.ErrAnswerNotFound
	}
	return s.answers[id], nil
}

func (s *Store) ListAnswersByQuestion(_ context.Context, questionID string) ([]domain.ParticipantAnswer, error) {
	s.answersMu.RLock()
	defer s.answersMu.RUnlock()
	answers := make([]domain.ParticipantAnswer, 0)
	for _, a := range s.answers {
		if a.QuestionID == questionID {
			answers = append(answers, a)
		}
	}
	return answers, nil
}

func (s *Store) ListAnswersByQuiz(_ context.Context, quizID string) ([]domain.ParticipantAnswer, error) {
	s.answersMu.RLock()
	defer s.answersMu.RUnlock()
	answers := make([]domain.ParticipantAnswer, 0)
	for _, a := range s.answers {
		if a.QuizID == quizID {
			answers = append(answers, a)
		}
	}
	return answers, nil
}

func (s *Store) UpsertActiveQuestion(_ context.Context, active domain.ActiveQuestion) error {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	s.active[active.QuizID] = active
	return nil
}

func (s *Store) GetActiveQuestion(_ context.Context, quizID string) (domain.ActiveQuestion, error) {
	s.activeMu.RLock()
	defer s.activeMu.RUnlock()
	active, ok := s.active[quizID]
	if !ok {
		return domain.ActiveQuestion{}, domain.ErrQuizNotStarted
	}
	return active, nil
}

func (s *Store) ClearActiveQuestion(_ context.Context, quizID string) error {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	delete(s.active, quizID)
	return nil
}
