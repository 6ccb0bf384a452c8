package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/thrivebrands/beaconiq/internal/application"
)

type chatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	Degraded  bool   `json:"degraded"`
}

type aiChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

func (h *Handler) chat(w http.ResponseWriter, r *http.Request) {
	var req application.ChatInput
	if err := decodeLooseBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "chat", err)
		return
	}
	result, err := h.service.Chat(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeMappedError(r.Context(), w, "chat", err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: result.Reply.Content, SessionID: result.SessionID, Degraded: result.Degraded})
}

func (h *Handler) aiChat(w http.ResponseWriter, r *http.Request) {
	var req aiChatRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "ai_chat", err)
		return
	}
	result, err := h.service.Chat(r.Context(), actorFromRequest(r), application.ChatInput{SessionID: req.SessionID, Message: req.Message})
	if err != nil {
		writeMappedError(r.Context(), w, "ai_chat", err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Response: result.Reply.Content, SessionID: result.SessionID, Degraded: result.Degraded})
}

// chatStream records the exchange first, then reveals the reply word by word.
// The full turn is already in the transcript when the first delta is sent.
func (h *Handler) chatStream(w http.ResponseWriter, r *http.Request) {
	var req application.ChatInput
	if err := decodeLooseBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "chat_stream", err)
		return
	}
	result, err := h.service.Chat(r.Context(), actorFromRequest(r), req)
	if err != nil {
		writeMappedError(r.Context(), w, "chat_stream", err)
		return
	}

	stream := newEventStream(w)
	if err := stream.send("message", result); err != nil {
		return
	}
	for prefix := range application.Reveal(r.Context(), result.Reply.Content, h.service.RevealInterval()) {
		if prefix == "" {
			_ = stream.send("done", map[string]string{"session_id": result.SessionID})
			return
		}
		if err := stream.send("delta", map[string]string{"text": prefix}); err != nil {
			return
		}
	}
}

func (h *Handler) transcript(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.service.Transcript(r.Context(), actorFromRequest(r), chi.URLParam(r, "session_id"))
	if err != nil {
		writeMappedError(r.Context(), w, "transcript", err)
		return
	}
	writeSuccess(w, http.StatusOK, transcript)
}
