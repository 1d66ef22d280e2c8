package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rjosephs/daybook-backend/internal/middleware"
	"github.com/rjosephs/daybook-backend/internal/models"
)

// UserDirectory is the account service surface the user endpoints need.
type UserDirectory interface {
	Signup(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	AddCollaborator(ctx context.Context, selfID primitive.ObjectID, code string) (*models.CollaboratorRef, error)
	GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	GetCollaborators(ctx context.Context, id primitive.ObjectID) ([]models.CollaboratorRef, error)
}

// TokenSigner issues a bearer token for a user id.
type TokenSigner interface {
	Issue(userID string) (string, error)
}

type UserHandler struct {
	users  UserDirectory
	tokens TokenSigner
}

func NewUserHandler(users UserDirectory, tokens TokenSigner) *UserHandler {
	return &UserHandler{users: users, tokens: tokens}
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Email             string `json:"email"`
	Token             string `json:"token"`
	CollaborationCode string `json:"collaborationCode"`
}

type addCollaboratorRequest struct {
	CollaborationCode string `json:"collaborationCode"`
}

type addCollaboratorResponse struct {
	Collaborator *models.CollaboratorRef `json:"collaborator"`
}

// Signup handles POST /api/user/signup.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Signup(r.Context(), req.Email, req.Password)
	if err != nil {
		// Every signup failure, validation or conflict, reports as 400.
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondWithToken(w, user)
}

// Login handles POST /api/user/login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		// Account-lookup misses included: login flattens everything to 400.
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}

	h.respondWithToken(w, user)
}

func (h *UserHandler) respondWithToken(w http.ResponseWriter, user *models.User) {
	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, authResponse{
		Email:             user.Email,
		Token:             token,
		CollaborationCode: user.CollaborationCode,
	})
}

// Profile handles GET /api/user/profile.
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	profile, err := h.users.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Collaborators handles GET /api/user/collaborators.
func (h *UserHandler) Collaborators(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	collaborators, err := h.users.GetCollaborators(r.Context(), user.ID)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, collaborators)
}

// AddCollaborator handles POST /api/user/add-collaborator.
func (h *UserHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		writeErrorMsg(w, http.StatusUnauthorized, "not authorized")
		return
	}

	var req addCollaboratorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	collaborator, err := h.users.AddCollaborator(r.Context(), user.ID, req.CollaborationCode)
	if err != nil {
		writeErrorMsg(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, addCollaboratorResponse{Collaborator: collaborator})
}
