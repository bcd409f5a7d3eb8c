package http

import (
	"encoding/json"
	"net/http"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type WSHandler struct {
	service  *app.QuizService
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		service: service,
		logger:  logger,
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

type quizPayload struct {
	Category string `json:"category"`
}

type answerPayload struct {
	Handle string `json:"handle"`
	Key    string `json:"key"`
}

type questionView struct {
	ID      int             `json:"id"`
	Text    string          `json:"text"`
	Options []domain.Option `json:"options"`
}

type questionMessage struct {
	Handle   string       `json:"handle"`
	Category string       `json:"category"`
	Question questionView `json:"question"`
}

type answerResult struct {
	Handle string `json:"handle"`
	domain.Outcome
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the quiz use cases.
// The correct key is never sent with a question, only with an answer result.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("ws write error", zap.Error(err))
				return
			}
		}
	}()

	emit := func(msg outboundMessage[any]) {
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	handles := make(map[string]struct{})
	defer func() {
		for handle := range handles {
			h.service.Discard(handle)
		}
	}()

	sendError := func(err error, category string) {
		payload, expected := describeError(err, category)
		if !expected {
			h.logger.Error("quiz request failed", zap.String("user_id", userID), zap.Error(err))
		}
		emit(outboundMessage[any]{Type: "error", Payload: payload})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		ctx := r.Context()
		switch inbound.Type {
		case "quiz":
			var payload quizPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Category == "" {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid quiz payload"}})
				continue
			}
			delivery, err := h.service.GetQuiz(ctx, payload.Category, userID)
			if err != nil {
				sendError(err, payload.Category)
				continue
			}
			handles[delivery.Handle] = struct{}{}
			emit(outboundMessage[any]{Type: "question", Payload: questionMessage{
				Handle:   delivery.Handle,
				Category: delivery.Category,
				Question: questionView{
					ID:      delivery.Question.ID,
					Text:    delivery.Question.Text,
					Options: delivery.Question.SortedOptions(),
				},
			}})
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.Handle == "" {
				emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "invalid answer payload"}})
				continue
			}
			outcome, err := h.service.SubmitAnswer(ctx, payload.Handle, userID, payload.Key)
			if err != nil {
				sendError(err, "")
				continue
			}
			emit(outboundMessage[any]{Type: "answerResult", Payload: answerResult{Handle: payload.Handle, Outcome: outcome}})
		case "states":
			states, err := h.service.GetStates(ctx)
			if err != nil {
				sendError(err, "")
				continue
			}
			emit(outboundMessage[any]{Type: "states", Payload: states})
		default:
			emit(outboundMessage[any]{Type: "error", Payload: errorPayload{Code: "bad_request", Message: "unsupported message type"}})
		}
	}

	close(send)
	<-writerDone
}
