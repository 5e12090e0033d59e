package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/leeveo/quizz/internal/app"
	"github.com/leeveo/quizz/internal/domain"
	"github.com/leeveo/quizz/internal/infra/storage"
)

const maxUploadBytes = 10 << 20

// Handlers bundles the REST surface over the application services.
type Handlers struct {
	log       *slog.Logger
	quizzes   *app.QuizService
	join      *app.JoinService
	answers   *app.AnswerService
	responses *app.ResponseService
	stats     *app.StatsService
	runner    *app.SessionRunner
	uploads   *storage.Store
	baseURL   string
}

func NewHandlers(log *slog.Logger, quizzes *app.QuizService, join *app.JoinService, answers *app.AnswerService, responses *app.ResponseService, stats *app.StatsService, runner *app.SessionRunner, uploads *storage.Store, baseURL string) *Handlers {
	return &Handlers{
		log:       log,
		quizzes:   quizzes,
		join:      join,
		answers:   answers,
		responses: responses,
		stats:     stats,
		runner:    runner,
		uploads:   uploads,
		baseURL:   baseURL,
	}
}

func (h *Handlers) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var input app.CreateQuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	if input.Title == "" {
		h.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	quiz, err := h.quizzes.CreateQuiz(r.Context(), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, quiz)
}

func (h *Handlers) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := h.quizzes.ListQuizzes(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quizzes)
}

func (h *Handlers) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	quiz, err := h.quizzes.GetQuiz(r.Context(), quizID)
	if err != nil {
		h.fail(w, err)
		return
	}
	questions, err := h.quizzes.ListQuestions(r.Context(), quizID)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"quiz":      quiz,
		"questions": questions,
	})
}

func (h *Handlers) UpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var input app.UpdateQuizInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid quiz payload")
		return
	}
	quiz, err := h.quizzes.UpdateQuiz(r.Context(), chi.URLParam(r, "quizID"), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quiz)
}

func (h *Handlers) AddQuestion(w http.ResponseWriter, r *http.Request) {
	var input app.AddQuestionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid question payload")
		return
	}
	question, err := h.quizzes.AddQuestion(r.Context(), chi.URLParam(r, "quizID"), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, question)
}

func (h *Handlers) DeleteQuestion(w http.ResponseWriter, r *http.Request) {
	if err := h.quizzes.DeleteQuestion(r.Context(), chi.URLParam(r, "questionID")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Name == "" {
		h.writeError(w, http.StatusBadRequest, "theme name is required")
		return
	}
	theme, err := h.quizzes.CreateTheme(r.Context(), input.Name, input.Description)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, theme)
}

func (h *Handlers) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.quizzes.ListThemes(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, themes)
}

func (h *Handlers) AddThemeQuestion(w http.ResponseWriter, r *http.Request) {
	var input app.AddThemeQuestionInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid theme question payload")
		return
	}
	question, err := h.quizzes.AddThemeQuestion(r.Context(), chi.URLParam(r, "themeID"), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, question)
}

func (h *Handlers) ListThemeQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := h.quizzes.ListThemeQuestions(r.Context(), chi.URLParam(r, "themeID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, questions)
}

func (h *Handlers) ImportThemeQuestions(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ThemeQuestionIDs []string `json:"themeQuestionIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || len(input.ThemeQuestionIDs) == 0 {
		h.writeError(w, http.StatusBadRequest, "themeQuestionIds is required")
		return
	}
	imported, err := h.quizzes.ImportThemeQuestions(r.Context(), chi.URLParam(r, "quizID"), input.ThemeQuestionIDs)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, imported)
}

func (h *Handlers) LaunchQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.quizzes.Launch(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, quiz)
}

func (h *Handlers) StartQuiz(w http.ResponseWriter, r *http.Request) {
	event, err := h.runner.Start(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handlers) FinishQuiz(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Finish(r.Context(), chi.URLParam(r, "quizID")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) AdvanceStage(w http.ResponseWriter, r *http.Request) {
	event, err := h.runner.Advance(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handlers) SetAutoPlay(w http.ResponseWriter, r *http.Request) {
	var input struct {
		On       bool `json:"on"`
		FullAuto bool `json:"fullAuto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid autoplay payload")
		return
	}
	quizID := chi.URLParam(r, "quizID")
	var (
		event app.StageEvent
		err   error
	)
	if input.FullAuto {
		event, err = h.runner.SetFullAuto(quizID, input.On)
	} else {
		event, err = h.runner.SetAutoPlay(quizID, input.On)
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, event)
}

func (h *Handlers) JoinQuiz(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name        string `json:"name"`
		AvatarEmoji string `json:"avatarEmoji"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Name == "" {
		h.writeError(w, http.StatusBadRequest, "participant name is required")
		return
	}
	result, err := h.join.Join(r.Context(), chi.URLParam(r, "quizID"), input.Name, input.AvatarEmoji)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, result)
}

func (h *Handlers) ResumeQuiz(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ParticipantID string     `json:"participantId"`
		LaunchedAt    *time.Time `json:"launchedAt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.ParticipantID == "" {
		h.writeError(w, http.StatusBadRequest, "participantId is required")
		return
	}
	result, err := h.join.Resume(r.Context(), chi.URLParam(r, "quizID"), input.ParticipantID, input.LaunchedAt)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handlers) Roster(w http.ResponseWriter, r *http.Request) {
	participants, err := h.join.Roster(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, participants)
}

func (h *Handlers) QuestionResponses(w http.ResponseWriter, r *http.Request) {
	counts, err := h.responses.FetchResponses(r.Context(), chi.URLParam(r, "questionID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, counts)
}

func (h *Handlers) ParticipantResponses(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		h.writeError(w, http.StatusBadRequest, "quizId query parameter is required")
		return
	}
	responses, err := h.responses.FetchParticipantResponses(r.Context(), quizID, chi.URLParam(r, "questionID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, responses)
}

func (h *Handlers) QuizStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.QuizStats(r.Context(), chi.URLParam(r, "quizID"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, stats)
}

// JoinQR renders the quiz's join URL as a PNG QR code for the presenter
// screen.
func (h *Handlers) JoinQR(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizID")
	if _, err := h.quizzes.GetQuiz(r.Context(), quizID); err != nil {
		h.fail(w, err)
		return
	}
	png, err := qrcode.Encode(h.baseURL+"/join/"+quizID, qrcode.Medium, 256)
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

func (h *Handlers) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	url, err := h.uploads.Upload(header.Filename, file)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, map[string]string{"url": url})
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.log.Error("write response failed", "err", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("request failed", "err", err)
		h.writeError(w, status, "internal error")
		return
	}
	h.writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrThemeNotFound),
		errors.Is(err, domain.ErrParticipantNotFound),
		errors.Is(err, domain.ErrAnswerNotFound),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyAnswered):
		return http.StatusConflict
	case errors.Is(err, domain.ErrQuizNotJoinable),
		errors.Is(err, domain.ErrSubmissionsClosed),
		errors.Is(err, domain.ErrQuizFinished):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrIdentityExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrOptionOutOfRange),
		errors.Is(err, domain.ErrNoQuestions):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuizNotStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
