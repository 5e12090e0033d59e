package domain

import "time"

// Quiz is one organized event: ordered questions, a join link, and
// lifecycle flags. Active means joinable; QuizStarted means the question
// stream began; Finished closes the quiz for good.
type Quiz struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Theme            string     `json:"theme"`
	EventName        string     `json:"eventName,omitempty"`
	EventDate        string     `json:"eventDate,omitempty"`
	PrimaryColor     string     `json:"primaryColor,omitempty"`
	CreatedBy        string     `json:"createdBy,omitempty"`
	Active           bool       `json:"active"`
	QuizStarted      bool       `json:"quizStarted"`
	Finished         bool       `json:"finished"`
	ActiveQuestionID string     `json:"activeQuestionId,omitempty"`
	LaunchedAt       *time.Time `json:"launchedAt,omitempty"`
	StartedAt        *time.Time `json:"startedAt,omitempty"`
	EndedAt          *time.Time `json:"endedAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Question belongs to exactly one quiz. Correct is the index into Options.
type Question struct {
	ID         string   `json:"id"`
	QuizID     string   `json:"quizId"`
	OrderIndex int      `json:"orderIndex"`
	Title      string   `json:"title"`
	Options    []string `json:"options"`
	Correct    int      `json:"correct"`
	ImageURL   string   `json:"imageUrl,omitempty"`
	Duration   int      `json:"duration,omitempty"`
}

// Theme groups reusable bank questions independent of any quiz.
type Theme struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// ThemeQuestion is a bank question. CorrectOption holds the correct answer
// as a string; importing into a quiz resolves it to an option index.
type ThemeQuestion struct {
	ID            string   `json:"id"`
	ThemeID       string   `json:"themeId"`
	Content       string   `json:"content"`
	Options       []string `json:"options"`
	CorrectOption string   `json:"correctOption"`
	Duration      int      `json:"duration,omitempty"`
	ImageURL      string   `json:"imageUrl,omitempty"`
}

// Participant is a self-identified attendee scoped to one quiz.
type Participant struct {
	ID          string    `json:"id"`
	QuizID      string    `json:"quizId"`
	Name        string    `json:"name"`
	AvatarEmoji string    `json:"avatarEmoji,omitempty"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// ParticipantAnswer ties one participant to one question. At most one
// answer per (participant, question); repositories enforce it.
type ParticipantAnswer struct {
	ID             string    `json:"id"`
	ParticipantID  string    `json:"participantId"`
	QuestionID     string    `json:"questionId"`
	QuizID         string    `json:"quizId"`
	SelectedOption int       `json:"selectedOption"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// ActiveQuestion is the single question currently presented for a quiz,
// with the stage everyone should be seeing. One record per quiz.
type ActiveQuestion struct {
	QuizID        string `json:"quizId"`
	QuestionID    string `json:"questionId"`
	Stage         Stage  `json:"stage"`
	ShowResults   bool   `json:"showResults"`
	CorrectOption int    `json:"correctOption"`
}

// OptionCount is the aggregated response count for one option index.
type OptionCount struct {
	OptionIndex int `json:"optionIndex"`
	Count       int `json:"count"`
}

// ParticipantResponse is one answer joined to its participant's identity.
type ParticipantResponse struct {
	ParticipantID  string    `json:"participantId"`
	Name           string    `json:"name"`
	AvatarEmoji    string    `json:"avatarEmoji"`
	SelectedOption int       `json:"selectedOption"`
	Correct        bool      `json:"correct"`
	AnsweredAt     time.Time `json:"answeredAt"`
}

// AnswerResult summarizes a submission outcome for the answering participant.
type AnswerResult struct {
	QuestionID     string `json:"questionId"`
	SelectedOption int    `json:"selectedOption"`
	Correct        bool   `json:"correct"`
	CorrectOption  int    `json:"correctOption"`
}

// ParticipantStats aggregates one participant's answers for a quiz.
type ParticipantStats struct {
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	AvatarEmoji   string  `json:"avatarEmoji"`
	Answered      int     `json:"answered"`
	Correct       int     `json:"correct"`
	Percent       float64 `json:"percent"`
}

// QuestionStats aggregates responses for one question.
type QuestionStats struct {
	QuestionID string  `json:"questionId"`
	Title      string  `json:"title"`
	Responses  int     `json:"responses"`
	Correct    int     `json:"correct"`
	Percent    float64 `json:"percent"`
}

// QuizStats is the read-only aggregation served by the stats view.
type QuizStats struct {
	QuizID            string             `json:"quizId"`
	TotalParticipants int                `json:"totalParticipants"`
	TotalAnswers      int                `json:"totalAnswers"`
	Participants      []ParticipantStats `json:"participants"`
	Questions         []QuestionStats    `json:"questions"`
}
