package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/leeveo/quizz/internal/app"
	"github.com/leeveo/quizz/internal/domain"
	"github.com/leeveo/quizz/internal/infra/memory"
	"github.com/leeveo/quizz/internal/infra/storage"
)

type testEnv struct {
	server *httptest.Server
	store  *memory.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	reader := memory.NewQuestionCache(store, time.Minute)

	durations := app.DefaultStageDurations()
	durations.Next = 0

	runner := app.NewSessionRunner(store, reader, store, memory.NewLiveness(), durations, log)
	quizzes := app.NewQuizService(store, store, store, store, reader, log)
	join := app.NewJoinService(store, store, log)
	answers := app.NewAnswerService(reader, store, store, store, log)
	responses := app.NewResponseService(reader, store, store, log)
	stats := app.NewStatsService(store, store, store)

	uploads, err := storage.NewStore(t.TempDir(), "")
	if err != nil {
		t.Fatalf("storage: %v", err)
	}

	handlers := NewHandlers(log, quizzes, join, answers, responses, stats, runner, uploads, "http://quiz.test")
	ws := NewWSHandler(log, runner, answers, responses)
	server := httptest.NewServer(NewRouter(handlers, ws, uploads.Root()))
	t.Cleanup(server.Close)
	return &testEnv{server: server, store: store}
}

func (e *testEnv) post(t *testing.T, path string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	resp, err := http.Post(e.server.URL+path, "application/json", &buf)
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return resp
}

func (e *testEnv) get(t *testing.T, path string, out any) *http.Response {
	t.Helper()
	resp, err := http.Get(e.server.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s response: %v", path, err)
		}
	}
	return resp
}

func TestQuizAuthoringAndLifecycleFlow(t *testing.T) {
	env := newTestEnv(t)

	var quiz domain.Quiz
	resp := env.post(t, "/api/quizzes", map[string]string{"title": "Soirée", "theme": "général"}, &quiz)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create quiz: status %d", resp.StatusCode)
	}
	if quiz.ID == "" || quiz.Active {
		t.Fatalf("unexpected new quiz %+v", quiz)
	}

	var question domain.Question
	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/questions", app.AddQuestionInput{
		Title:   "Pick b",
		Options: []string{"a", "b"},
		Correct: 1,
	}, &question)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add question: status %d", resp.StatusCode)
	}

	// Joining before launch is blocked.
	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/join", map[string]string{"name": "Alice"}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 before launch, got %d", resp.StatusCode)
	}

	var launched domain.Quiz
	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/launch", nil, &launched)
	if resp.StatusCode != http.StatusOK || !launched.Active {
		t.Fatalf("launch failed: status %d quiz %+v", resp.StatusCode, launched)
	}

	var joined app.JoinResult
	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/join", map[string]string{"name": "Alice", "avatarEmoji": "🦊"}, &joined)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("join: status %d", resp.StatusCode)
	}
	if joined.Route != app.RouteWaiting {
		t.Fatalf("expected waiting route, got %s", joined.Route)
	}

	var event app.StageEvent
	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/start", nil, &event)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: status %d", resp.StatusCode)
	}
	if event.Stage != domain.StageQuestion || event.QuestionID != question.ID {
		t.Fatalf("unexpected start event %+v", event)
	}

	// Late joiners now go straight to play.
	var late app.JoinResult
	env.post(t, "/api/quizzes/"+quiz.ID+"/join", map[string]string{"name": "Bob"}, &late)
	if late.Route != app.RoutePlay {
		t.Fatalf("expected play route, got %s", late.Route)
	}

	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/advance", nil, &event)
	if resp.StatusCode != http.StatusOK || event.Stage != domain.StageAnswer {
		t.Fatalf("advance: status %d event %+v", resp.StatusCode, event)
	}

	var participants []domain.Participant
	env.get(t, "/api/quizzes/"+quiz.ID+"/participants", &participants)
	if len(participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(participants))
	}

	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/finish", nil, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("finish: status %d", resp.StatusCode)
	}
	var closed map[string]json.RawMessage
	env.get(t, "/api/quizzes/"+quiz.ID, &closed)
	var finished domain.Quiz
	_ = json.Unmarshal(closed["quiz"], &finished)
	if !finished.Finished || finished.Active {
		t.Fatalf("expected finished quiz, got %+v", finished)
	}
}

func TestResumeExpiredIdentityReturnsGone(t *testing.T) {
	env := newTestEnv(t)

	var quiz domain.Quiz
	env.post(t, "/api/quizzes", map[string]string{"title": "Quiz"}, &quiz)
	env.post(t, "/api/quizzes/"+quiz.ID+"/launch", nil, nil)

	var joined app.JoinResult
	env.post(t, "/api/quizzes/"+quiz.ID+"/join", map[string]string{"name": "Alice"}, &joined)

	stale := joined.LaunchedAt.Add(-time.Minute)
	resp := env.post(t, "/api/quizzes/"+quiz.ID+"/resume", map[string]any{
		"participantId": joined.Participant.ID,
		"launchedAt":    stale,
	}, nil)
	if resp.StatusCode != http.StatusGone {
		t.Fatalf("expected 410, got %d", resp.StatusCode)
	}

	resp = env.post(t, "/api/quizzes/"+quiz.ID+"/resume", map[string]any{
		"participantId": joined.Participant.ID,
		"launchedAt":    joined.LaunchedAt,
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for matching launch, got %d", resp.StatusCode)
	}
}

func TestResponsesEndpointsAggregate(t *testing.T) {
	env := newTestEnv(t)

	var quiz domain.Quiz
	env.post(t, "/api/quizzes", map[string]string{"title": "Quiz"}, &quiz)
	var question domain.Question
	env.post(t, "/api/quizzes/"+quiz.ID+"/questions", app.AddQuestionInput{
		Title:   "Q",
		Options: []string{"a", "b", "c"},
		Correct: 2,
	}, &question)

	// Empty is a 200 with an empty list, not an error.
	var counts []domain.OptionCount
	resp := env.get(t, "/api/questions/"+question.ID+"/responses", &counts)
	if resp.StatusCode != http.StatusOK || len(counts) != 0 {
		t.Fatalf("expected empty 200, got %d %+v", resp.StatusCode, counts)
	}
}

func TestJoinQRServesPNG(t *testing.T) {
	env := newTestEnv(t)

	var quiz domain.Quiz
	env.post(t, "/api/quizzes", map[string]string{"title": "Quiz"}, &quiz)

	resp := env.get(t, "/api/quizzes/"+quiz.ID+"/qr", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("qr: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Fatalf("expected image/png, got %s", ct)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		t.Fatalf("expected png bytes, err=%v len=%d", err, len(data))
	}

	resp = env.get(t, "/api/quizzes/missing/qr", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown quiz, got %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	var quiz domain.Quiz
	env.post(t, "/api/quizzes", map[string]string{"title": "Quiz"}, &quiz)
	var question domain.Question
	env.post(t, "/api/quizzes/"+quiz.ID+"/questions", app.AddQuestionInput{
		Title:   "Q",
		Options: []string{"a", "b"},
		Correct: 0,
	}, &question)

	var stats domain.QuizStats
	resp := env.get(t, "/api/quizzes/"+quiz.ID+"/stats", &stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: status %d", resp.StatusCode)
	}
	if stats.QuizID != quiz.ID || len(stats.Questions) != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}
