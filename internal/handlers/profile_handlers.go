package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"murmur/internal/database"
	"murmur/internal/services"
	"murmur/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type ProfileHandlers struct {
	interactionService *services.InteractionService
}

func NewProfileHandlers(interactionService *services.InteractionService) *ProfileHandlers {
	return &ProfileHandlers{
		interactionService: interactionService,
	}
}

// Follow handles PUT /api/profile/follow/{id}
func (h *ProfileHandlers) Follow(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	actorID := IdentityFromContext(r.Context())

	err := h.interactionService.FollowUser(r.Context(), actorID, targetID)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		case errors.Is(err, database.ErrAlreadyFollowing):
			http.Error(w, "already following this user", http.StatusBadRequest)
		default:
			logger.Error("Error following user: %v", err)
			http.Error(w, "failed to follow user", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"msg": "user followed"})
}

// Unfollow handles PUT /api/profile/unfollow/{id}
func (h *ProfileHandlers) Unfollow(w http.ResponseWriter, r *http.Request) {
	targetID := chi.URLParam(r, "id")
	actorID := IdentityFromContext(r.Context())

	if err := h.interactionService.UnfollowUser(r.Context(), actorID, targetID); err != nil {
		logger.Error("Error unfollowing user: %v", err)
		http.Error(w, "failed to unfollow user", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"msg": "user unfollowed"})
}
