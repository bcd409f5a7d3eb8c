package http

import (
	"encoding/json"
	"net/http"

	"daily-quiz-service/internal/app"
	"go.uber.org/zap"
)

// AdminHandler exposes the administrative quiz operations over plain HTTP.
type AdminHandler struct {
	service *app.QuizService
	logger  *zap.Logger
}

func NewAdminHandler(service *app.QuizService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{service: service, logger: logger}
}

// Register mounts the admin routes on mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/states", h.states)
	mux.HandleFunc("/states/reset", h.resetStates)
	mux.HandleFunc("/answers/reset", h.resetAnswers)
}

func (h *AdminHandler) states(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	states, err := h.service.GetStates(r.Context())
	if err != nil {
		h.fail(w, "get states", err)
		return
	}
	writeJSON(w, http.StatusOK, states)
}

func (h *AdminHandler) resetStates(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	count, err := h.service.ResetStates(r.Context())
	if err != nil {
		h.fail(w, "reset states", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reset": count})
}

func (h *AdminHandler) resetAnswers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := h.service.ResetAnswerLedger(r.Context()); err != nil {
		h.fail(w, "reset answers", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error("admin operation failed", zap.String("op", op), zap.Error(err))
	payload, _ := describeError(err, "")
	writeJSON(w, http.StatusInternalServerError, payload)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
