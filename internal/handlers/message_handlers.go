package handlers

import (
	"encoding/json"
	"net/http"

	"murmur/internal/models"
	"murmur/internal/services"
	"murmur/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type MessageHandlers struct {
	messageService *services.MessageService
}

func NewMessageHandlers(messageService *services.MessageService) *MessageHandlers {
	return &MessageHandlers{
		messageService: messageService,
	}
}

// Send handles POST /api/messages/send/{id}
func (h *MessageHandlers) Send(w http.ResponseWriter, r *http.Request) {
	receiverID := chi.URLParam(r, "id")
	senderID := IdentityFromContext(r.Context())

	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message text is required", http.StatusBadRequest)
		return
	}

	msg, err := h.messageService.SendMessage(r.Context(), senderID, receiverID, req.Message)
	if err != nil {
		logger.Error("Error sending message: %v", err)
		http.Error(w, "failed to send message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// Share handles POST /api/messages/share
func (h *MessageHandlers) Share(w http.ResponseWriter, r *http.Request) {
	senderID := IdentityFromContext(r.Context())

	var req models.SharePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.PostID == "" || len(req.Recipients) == 0 {
		http.Error(w, "post ID and at least one recipient are required", http.StatusBadRequest)
		return
	}

	if err := h.messageService.SharePost(r.Context(), senderID, req.PostID, req.Recipients); err != nil {
		logger.Error("Error sharing post: %v", err)
		http.Error(w, "failed to share post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"msg": "post shared"})
}

// Conversations handles GET /api/messages
func (h *MessageHandlers) Conversations(w http.ResponseWriter, r *http.Request) {
	userID := IdentityFromContext(r.Context())

	previews, err := h.messageService.Conversations(r.Context(), userID)
	if err != nil {
		logger.Error("Error listing conversations: %v", err)
		http.Error(w, "failed to list conversations", http.StatusInternalServerError)
		return
	}
	if previews == nil {
		previews = []*models.ConversationPreview{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(previews)
}

// Messages handles GET /api/messages/{id}
func (h *MessageHandlers) Messages(w http.ResponseWriter, r *http.Request) {
	otherID := chi.URLParam(r, "id")
	userID := IdentityFromContext(r.Context())

	messages, err := h.messageService.Messages(r.Context(), userID, otherID)
	if err != nil {
		logger.Error("Error listing messages: %v", err)
		http.Error(w, "failed to list messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(messages)
}
