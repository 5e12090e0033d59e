package domain

import "errors"

var (
	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question ID is unknown.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrThemeNotFound indicates a theme ID is unknown.
	ErrThemeNotFound = errors.New("theme not found")
	// ErrParticipantNotFound is returned when a user acts before joining.
	ErrParticipantNotFound = errors.New("participant not found in quiz")
	// ErrQuizNotJoinable is returned when joining a quiz that is not active.
	ErrQuizNotJoinable = errors.New("quiz is not open for joining")
	// ErrQuizNotStarted is returned when the question stream has not begun.
	ErrQuizNotStarted = errors.New("quiz has not started")
	// ErrQuizFinished is returned for operations on a finished quiz.
	ErrQuizFinished = errors.New("quiz already finished")
	// ErrAnswerNotFound indicates no answer row exists for the pair.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrAlreadyAnswered is returned on a second answer for the same question.
	ErrAlreadyAnswered = errors.New("participant already answered this question")
	// ErrSubmissionsClosed is returned when answering outside the question stage.
	ErrSubmissionsClosed = errors.New("submissions are closed for this question")
	// ErrOptionOutOfRange is returned for an option index past the options list.
	ErrOptionOutOfRange = errors.New("selected option out of range")
	// ErrIdentityExpired is returned when a quiz was relaunched and a stored
	// participant identity is no longer valid.
	ErrIdentityExpired = errors.New("participant identity expired by relaunch")
	// ErrSessionNotFound is returned when no live session runs for a quiz.
	ErrSessionNotFound = errors.New("quiz session not found")
	// ErrNoQuestions is returned when starting a quiz without questions.
	ErrNoQuestions = errors.New("quiz has no questions")
)
