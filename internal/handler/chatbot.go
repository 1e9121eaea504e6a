package handler

import (
	"net/http"

	"github.com/ducnv-dev/shoestore-backend/internal/chatbot"
)

type ChatbotHandler struct {
	errorWriter
	svc chatbot.Service
}

func NewChatbotHandler(svc chatbot.Service, dev bool) *ChatbotHandler {
	return &ChatbotHandler{errorWriter: errorWriter{dev: dev}, svc: svc}
}

func (h *ChatbotHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Message      string   `json:"message"`
		Conversation []string `json:"conversation"`
	}
	if !decodeBody(w, r, &input) {
		return
	}
	if input.Message == "" {
		respondWithJSON(w, http.StatusBadRequest, errorResponse{
			StatusCode: http.StatusBadRequest,
			Message:    "message is required",
		})
		return
	}

	reply, err := h.svc.Chat(r.Context(), input.Message, input.Conversation)
	if err != nil {
		h.respondError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"reply": reply})
}
