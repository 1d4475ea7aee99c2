package handlers

import (
	"encoding/json"
	"net/http"

	"murmur/internal/models"
	"murmur/internal/services"
	"murmur/pkg/logger"
)

type NotificationHandlers struct {
	interactionService *services.InteractionService
}

func NewNotificationHandlers(interactionService *services.InteractionService) *NotificationHandlers {
	return &NotificationHandlers{
		interactionService: interactionService,
	}
}

// List handles GET /api/notifications
func (h *NotificationHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := IdentityFromContext(r.Context())

	notifications, err := h.interactionService.Notifications(r.Context(), userID)
	if err != nil {
		logger.Error("Error listing notifications: %v", err)
		http.Error(w, "failed to list notifications", http.StatusInternalServerError)
		return
	}
	if notifications == nil {
		notifications = []*models.Notification{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(notifications)
}

// MarkRead handles PUT /api/notifications/read
func (h *NotificationHandlers) MarkRead(w http.ResponseWriter, r *http.Request) {
	userID := IdentityFromContext(r.Context())

	if err := h.interactionService.MarkNotificationsRead(r.Context(), userID); err != nil {
		logger.Error("Error marking notifications read: %v", err)
		http.Error(w, "failed to mark notifications read", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"msg": "notifications marked as read"})
}
