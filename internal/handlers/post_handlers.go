package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"murmur/internal/database"
	"murmur/internal/models"
	"murmur/internal/services"
	"murmur/pkg/logger"

	"github.com/go-chi/chi/v5"
)

type PostHandlers struct {
	db                 database.Database
	interactionService *services.InteractionService
}

func NewPostHandlers(db database.Database, interactionService *services.InteractionService) *PostHandlers {
	return &PostHandlers{
		db:                 db,
		interactionService: interactionService,
	}
}

// Create handles POST /api/posts
func (h *PostHandlers) Create(w http.ResponseWriter, r *http.Request) {
	userID := IdentityFromContext(r.Context())

	var req models.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	post, err := h.db.CreatePost(r.Context(), userID, &req)
	if err != nil {
		logger.Error("Error creating post: %v", err)
		http.Error(w, "failed to create post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(post)
}

// Like handles PUT /api/posts/like/{id}
func (h *PostHandlers) Like(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	actorID := IdentityFromContext(r.Context())

	post, err := h.interactionService.LikePost(r.Context(), actorID, postID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return
		}
		logger.Error("Error liking post: %v", err)
		http.Error(w, "failed to like post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

// Unlike handles PUT /api/posts/unlike/{id}
func (h *PostHandlers) Unlike(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	actorID := IdentityFromContext(r.Context())

	post, err := h.interactionService.UnlikePost(r.Context(), actorID, postID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return
		}
		logger.Error("Error unliking post: %v", err)
		http.Error(w, "failed to unlike post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(post)
}

// Comment handles POST /api/posts/comment/{id}
func (h *PostHandlers) Comment(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "id")
	actorID := IdentityFromContext(r.Context())

	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	comments, err := h.interactionService.CommentOnPost(r.Context(), actorID, postID, req.Text)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			http.Error(w, "post not found", http.StatusNotFound)
			return
		}
		logger.Error("Error commenting on post: %v", err)
		http.Error(w, "failed to comment on post", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(comments)
}
