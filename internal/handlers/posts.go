package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rjosephs/daybook-backend/internal/apperr"
	"github.com/rjosephs/daybook-backend/internal/middleware"
	"github.com/rjosephs/daybook-backend/internal/models"
	"github.com/rjosephs/daybook-backend/internal/services"
)

// PostStore is the entry service surface the post endpoints need.
type PostStore interface {
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error)
	Get(ctx context.Context, id, suppliedPassword string) (*models.Post, error)
	Create(ctx context.Context, userID primitive.ObjectID, in services.CreatePostInput) (*models.Post, error)
	Update(ctx context.Context, userID primitive.ObjectID, id string, in services.UpdatePostInput) (*models.Post, error)
	Delete(ctx context.Context, userID primitive.ObjectID, id string) (*models.Post, error)
	VerifyPassword(ctx context.Context, id, password string) (*models.Post, error)
	Share(ctx context.Context, ownerID primitive.ObjectID, id string, collaboratorIDs []string) ([]primitive.ObjectID, error)
}

type PostHandler struct {
	posts PostStore
}

func NewPostHandler(posts PostStore) *PostHandler {
	return &PostHandler{posts: posts}
}

type verifyPasswordRequest struct {
	Password string `json:"password"`
}

type sharePostRequest struct {
	CollaboratorIDs []string `json:"collaboratorIds"`
}

type sharePostResponse struct {
	Message    string               `json:"message"`
	SharedWith []primitive.ObjectID `json:"sharedWith"`
}

// List handles GET /api/posts: entries owned by or shared with the requester,
// newest first.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	posts, err := h.posts.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get handles GET /api/posts/{id}?password=. A protected entry needs the
// password in the query; the response carries isPasswordProtected so the
// client knows to prompt.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	password := r.URL.Query().Get("password")

	post, err := h.posts.Get(r.Context(), id, password)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Create handles POST /api/posts.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var in services.CreatePostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.posts.Create(r.Context(), user.ID, in)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Update handles PATCH /api/posts/{id}. Only the owner can update.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var in services.UpdatePostInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.posts.Update(r.Context(), user.ID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/posts/{id}. Only the owner can delete; the
// response is the deleted entry's prior state.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	post, err := h.posts.Delete(r.Context(), user.ID, chi.URLParam(r, "id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Verify handles POST /api/posts/{id}/verify, the standalone unlock endpoint
// the client calls before allowing edits on a protected entry.
func (h *PostHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	post, err := h.posts.VerifyPassword(r.Context(), chi.URLParam(r, "id"), req.Password)
	if err != nil {
		if isKnownError(err) {
			writeAppError(w, err)
		} else {
			writeErrorMsg(w, http.StatusInternalServerError, "Error verifying password")
		}
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Share handles POST /api/posts/{id}/share.
func (h *PostHandler) Share(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var req sharePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	sharedWith, err := h.posts.Share(r.Context(), user.ID, chi.URLParam(r, "id"), req.CollaboratorIDs)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sharePostResponse{
		Message:    "Post shared successfully",
		SharedWith: sharedWith,
	})
}

// isKnownError reports whether err belongs to the service error taxonomy,
// as opposed to an unexpected store failure.
func isKnownError(err error) bool {
	var (
		validation *apperr.ValidationError
		conflict   *apperr.ConflictError
		notFound   *apperr.NotFoundError
		auth       *apperr.AuthError
		denied     *apperr.AccessDeniedError
	)
	return errors.As(err, &validation) || errors.As(err, &conflict) ||
		errors.As(err, &notFound) || errors.As(err, &auth) || errors.As(err, &denied)
}
