package postgres

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/leeveo/quizz/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID               string     `bun:"id,pk"`
	Title            string     `bun:"title"`
	Theme            string     `bun:"theme"`
	EventName        string     `bun:"event_name"`
	EventDate        string     `bun:"event_date"`
	PrimaryColor     string     `bun:"primary_color"`
	CreatedBy        string     `bun:"created_by"`
	Active           bool       `bun:"active"`
	QuizStarted      bool       `bun:"quiz_started"`
	Finished         bool       `bun:"finished"`
	ActiveQuestionID string     `bun:"active_question_id,nullzero"`
	LaunchedAt       *time.Time `bun:"launched_at"`
	StartedAt        *time.Time `bun:"started_at"`
	EndedAt          *time.Time `bun:"ended_at"`
	CreatedAt        time.Time  `bun:"created_at,nullzero,default:now()"`
}

func (r *quizRow) toDomain() domain.Quiz {
	return domain.Quiz{
		ID:               r.ID,
		Title:            r.Title,
		Theme:            r.Theme,
		EventName:        r.EventName,
		EventDate:        r.EventDate,
		PrimaryColor:     r.PrimaryColor,
		CreatedBy:        r.CreatedBy,
		Active:           r.Active,
		QuizStarted:      r.QuizStarted,
		Finished:         r.Finished,
		ActiveQuestionID: r.ActiveQuestionID,
		LaunchedAt:       r.LaunchedAt,
		StartedAt:        r.StartedAt,
		EndedAt:          r.EndedAt,
		CreatedAt:        r.CreatedAt,
	}
}

func quizFromDomain(q *domain.Quiz) *quizRow {
	return &quizRow{
		ID:               q.ID,
		Title:            q.Title,
		Theme:            q.Theme,
		EventName:        q.EventName,
		EventDate:        q.EventDate,
		PrimaryColor:     q.PrimaryColor,
		CreatedBy:        q.CreatedBy,
		Active:           q.Active,
		QuizStarted:      q.QuizStarted,
		Finished:         q.Finished,
		ActiveQuestionID: q.ActiveQuestionID,
		LaunchedAt:       q.LaunchedAt,
		StartedAt:        q.StartedAt,
		EndedAt:          q.EndedAt,
		CreatedAt:        q.CreatedAt,
	}
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:qq"`

	ID         string   `bun:"id,pk"`
	QuizID     string   `bun:"quiz_id"`
	OrderIndex int      `bun:"order_index"`
	Title      string   `bun:"title"`
	Options    []string `bun:"options,type:jsonb"`
	Correct    int      `bun:"correct"`
	ImageURL   string   `bun:"image_url"`
	Duration   int      `bun:"duration"`
}

func (r *questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:         r.ID,
		QuizID:     r.QuizID,
		OrderIndex: r.OrderIndex,
		Title:      r.Title,
		Options:    r.Options,
		Correct:    r.Correct,
		ImageURL:   r.ImageURL,
		Duration:   r.Duration,
	}
}

func questionFromDomain(q *domain.Question) *questionRow {
	return &questionRow{
		ID:         q.ID,
		QuizID:     q.QuizID,
		OrderIndex: q.OrderIndex,
		Title:      q.Title,
		Options:    q.Options,
		Correct:    q.Correct,
		ImageURL:   q.ImageURL,
		Duration:   q.Duration,
	}
}

type themeRow struct {
	bun.BaseModel `bun:"table:themes,alias:t"`

	ID          string `bun:"id,pk"`
	Name        string `bun:"name"`
	Description string `bun:"description"`
}

type themeQuestionRow struct {
	bun.BaseModel `bun:"table:theme_questions,alias:tq"`

	ID            string   `bun:"id,pk"`
	ThemeID       string   `bun:"theme_id"`
	Content       string   `bun:"content"`
	Options       []string `bun:"options,type:jsonb"`
	CorrectOption string   `bun:"correct_option"`
	Duration      int      `bun:"duration"`
	ImageURL      string   `bun:"image_url"`
}

func (r *themeQuestionRow) toDomain() domain.ThemeQuestion {
	return domain.ThemeQuestion{
		ID:            r.ID,
		ThemeID:       r.ThemeID,
		Content:       r.Content,
		Options:       r.Options,
		CorrectOption: r.CorrectOption,
		Duration:      r.Duration,
		ImageURL:      r.ImageURL,
	}
}

type participantRow struct {
	bun.BaseModel `bun:"table:participants,alias:p"`

	ID          string    `bun:"id,pk"`
	QuizID      string    `bun:"quiz_id"`
	Name        string    `bun:"name"`
	AvatarEmoji string    `bun:"avatar_emoji"`
	ConnectedAt time.Time `bun:"connected_at,nullzero,default:now()"`
}

func (r *participantRow) toDomain() domain.Participant {
	return domain.Participant{
		ID:          r.ID,
		QuizID:      r.QuizID,
		Name:        r.Name,
		AvatarEmoji: r.AvatarEmoji,
		ConnectedAt: r.ConnectedAt,
	}
}

type answerRow struct {
	bun.BaseModel `bun:"table:participant_answers,alias:pa"`

	ID             string    `bun:"id,pk"`
	ParticipantID  string    `bun:"participant_id"`
	QuestionID     string    `bun:"question_id"`
	QuizID         string    `bun:"quiz_id"`
	SelectedOption int       `bun:"selected_option"`
	AnsweredAt     time.Time `bun:"answered_at,nullzero,default:now()"`
}

func (r *answerRow) toDomain() domain.ParticipantAnswer {
	return domain.ParticipantAnswer{
		ID:             r.ID,
		ParticipantID:  r.ParticipantID,
		QuestionID:     r.QuestionID,
		QuizID:         r.QuizID,
		SelectedOption: r.SelectedOption,
		AnsweredAt:     r.AnsweredAt,
	}
}

type activeQuestionRow struct {
	bun.BaseModel `bun:"table:active_question,alias:aq"`

	QuizID        string `bun:"quiz_id,pk"`
	QuestionID    string `bun:"question_id"`
	Stage         string `bun:"stage"`
	ShowResults   bool   `bun:"show_results"`
	CorrectOption int    `bun:"correct_option"`
}

func (r *activeQuestionRow) toDomain() domain.ActiveQuestion {
	return domain.ActiveQuestion{
		QuizID:        r.QuizID,
		QuestionID:    r.QuestionID,
		Stage:         domain.Stage(r.Stage),
		ShowResults:   r.ShowResults,
		CorrectOption: r.CorrectOption,
	}
}
