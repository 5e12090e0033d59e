package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/leeveo/quizz/internal/app"
	"github.com/leeveo/quizz/internal/domain"
)

// WSHandler carries the realtime side: participants observe stage events
// and submit answers; presenters observe the same stream and drive the
// state machine.
type WSHandler struct {
	log       *slog.Logger
	runner    *app.SessionRunner
	answers   *app.AnswerService
	responses *app.ResponseService
	upgrader  websocket.Upgrader
}

func NewWSHandler(log *slog.Logger, runner *app.SessionRunner, answers *app.AnswerService, responses *app.ResponseService) *WSHandler {
	return &WSHandler{
		log:       log,
		runner:    runner,
		answers:   answers,
		responses: responses,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type answerPayload struct {
	QuestionID  string `json:"questionId"`
	OptionIndex int    `json:"optionIndex"`
}

type togglePayload struct {
	On bool `json:"on"`
}

type responsesPayload struct {
	QuestionID string               `json:"questionId"`
	Counts     []domain.OptionCount `json:"counts"`
}

// ServePlay is the participant connection: stage events in, answers out.
func (h *WSHandler) ServePlay(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	participantID := r.URL.Query().Get("participantId")
	if quizID == "" || participantID == "" {
		http.Error(w, "missing quizId or participantId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.runner.Subscribe(quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send, closeSignals, wait := h.startPumps(conn, updates)
	defer wait()

	snapshot, _ := h.runner.Snapshot(quizID)
	send <- outboundMessage[any]{Type: "joined", Payload: snapshot}

	// Restore the already-answered state after a reload.
	if snapshot.QuestionID != "" {
		if prior, err := h.answers.AnswerFor(r.Context(), quizID, participantID, snapshot.QuestionID); err == nil {
			send <- outboundMessage[any]{Type: "answerResult", Payload: prior}
		}
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, err := h.answers.Submit(r.Context(), quizID, participantID, payload.QuestionID, payload.OptionIndex)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "answerResult", Payload: result}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
}

// ServePresent is the presenter connection: the same stage stream plus
// control messages and per-option counts after each reveal.
func (h *WSHandler) ServePresent(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.runner.Subscribe(quizID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "stage", Payload: update}:
				case <-closeSignals:
					return
				}
				if update.ShowResults && update.QuestionID != "" {
					counts, err := h.responses.FetchResponses(context.Background(), update.QuestionID)
					if err != nil {
						h.log.Warn("fetch responses failed", "question", update.QuestionID, "err", err)
						continue
					}
					select {
					case send <- outboundMessage[any]{Type: "responses", Payload: responsesPayload{QuestionID: update.QuestionID, Counts: counts}}:
					case <-closeSignals:
						return
					}
				}
			case <-closeSignals:
				return
			}
		}
	}()

	snapshot, _ := h.runner.Snapshot(quizID)
	send <- outboundMessage[any]{Type: "stage", Payload: snapshot}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "advance":
			if _, err := h.runner.Advance(r.Context(), quizID); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "play":
			var payload togglePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid play payload"}}
				continue
			}
			if _, err := h.runner.SetAutoPlay(quizID, payload.On); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "fullauto":
			var payload togglePayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid fullauto payload"}}
				continue
			}
			if _, err := h.runner.SetFullAuto(quizID, payload.On); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
			}
		case "responses":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.QuestionID == "" {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid responses payload"}}
				continue
			}
			counts, err := h.responses.FetchResponses(r.Context(), payload.QuestionID)
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "responses", Payload: responsesPayload{QuestionID: payload.QuestionID, Counts: counts}}
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// startPumps runs the writer goroutine and the update-forwarding goroutine
// for a participant connection. The returned wait func tears both down.
func (h *WSHandler) startPumps(conn *websocket.Conn, updates <-chan app.StageEvent) (chan outboundMessage[any], chan struct{}, func()) {
	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "stage", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	wait := func() {
		<-updatesDone
		close(send)
		<-writerDone
	}
	return send, closeSignals, wait
}
