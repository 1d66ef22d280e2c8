package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/rjosephs/daybook-backend/internal/apperr"
	"github.com/rjosephs/daybook-backend/internal/middleware"
	"github.com/rjosephs/daybook-backend/internal/models"
)

type fakeDirectory struct {
	signupFn           func(ctx context.Context, email, password string) (*models.User, error)
	loginFn            func(ctx context.Context, email, password string) (*models.User, error)
	addCollaboratorFn  func(ctx context.Context, selfID primitive.ObjectID, code string) (*models.CollaboratorRef, error)
	getProfileFn       func(ctx context.Context, id primitive.ObjectID) (*models.Profile, error)
	getCollaboratorsFn func(ctx context.Context, id primitive.ObjectID) ([]models.CollaboratorRef, error)
}

func (f *fakeDirectory) Signup(ctx context.Context, email, password string) (*models.User, error) {
	return f.signupFn(ctx, email, password)
}

func (f *fakeDirectory) Login(ctx context.Context, email, password string) (*models.User, error) {
	return f.loginFn(ctx, email, password)
}

func (f *fakeDirectory) AddCollaborator(ctx context.Context, selfID primitive.ObjectID, code string) (*models.CollaboratorRef, error) {
	return f.addCollaboratorFn(ctx, selfID, code)
}

func (f *fakeDirectory) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	return f.getProfileFn(ctx, id)
}

func (f *fakeDirectory) GetCollaborators(ctx context.Context, id primitive.ObjectID) ([]models.CollaboratorRef, error) {
	return f.getCollaboratorsFn(ctx, id)
}

type fakeSigner struct{}

func (fakeSigner) Issue(userID string) (string, error) { return "token-for-" + userID, nil }

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	buf, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(buf))
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestSignupSuccess(t *testing.T) {
	userID := primitive.NewObjectID()
	dir := &fakeDirectory{
		signupFn: func(_ context.Context, email, password string) (*models.User, error) {
			assert.Equal(t, "alice@example.com", email)
			assert.Equal(t, "Str0ng!Pass", password)
			return &models.User{ID: userID, Email: email, CollaborationCode: "ABC123"}, nil
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.Signup, "/api/user/signup", map[string]string{
		"email": "alice@example.com", "password": "Str0ng!Pass",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "alice@example.com", resp["email"])
	assert.Equal(t, "token-for-"+userID.Hex(), resp["token"])
	assert.Len(t, resp["collaborationCode"], 6)
}

func TestSignupConflict(t *testing.T) {
	dir := &fakeDirectory{
		signupFn: func(_ context.Context, _, _ string) (*models.User, error) {
			return nil, apperr.Conflict("Email already registered")
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.Signup, "/api/user/signup", map[string]string{
		"email": "alice@example.com", "password": "Str0ng!Pass",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Email already registered"}`, rec.Body.String())
}

func TestSignupInvalidBody(t *testing.T) {
	h := NewUserHandler(&fakeDirectory{}, fakeSigner{})

	req := httptest.NewRequest(http.MethodPost, "/api/user/signup", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	h.Signup(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	dir := &fakeDirectory{
		loginFn: func(_ context.Context, _, _ string) (*models.User, error) {
			return nil, apperr.Auth("Incorrect password")
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.Login, "/api/user/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Incorrect password"}`, rec.Body.String())
}

func TestLoginUnregisteredEmailIs400(t *testing.T) {
	// Account-lookup misses during login report as 400, not 404.
	dir := &fakeDirectory{
		loginFn: func(_ context.Context, _, _ string) (*models.User, error) {
			return nil, apperr.NotFound("Email not registered")
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.Login, "/api/user/login", map[string]string{
		"email": "ghost@example.com", "password": "Str0ng!Pass",
	}, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Email not registered"}`, rec.Body.String())
}

func TestLoginSuccess(t *testing.T) {
	userID := primitive.NewObjectID()
	dir := &fakeDirectory{
		loginFn: func(_ context.Context, _, _ string) (*models.User, error) {
			return &models.User{ID: userID, Email: "alice@example.com", CollaborationCode: "XYZ789"}, nil
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.Login, "/api/user/login", map[string]string{
		"email": "alice@example.com", "password": "Str0ng!Pass",
	}, nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "XYZ789", resp["collaborationCode"])
	assert.NotEmpty(t, resp["token"])
}

func TestProfile(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID(), Email: "alice@example.com"}
	collabID := primitive.NewObjectID()
	dir := &fakeDirectory{
		getProfileFn: func(_ context.Context, id primitive.ObjectID) (*models.Profile, error) {
			assert.Equal(t, user.ID, id)
			return &models.Profile{
				ID:                user.ID,
				Email:             user.Email,
				CollaborationCode: "ABC123",
				Collaborators:     []models.CollaboratorRef{{ID: collabID, Email: "bob@example.com"}},
			}, nil
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.Profile(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var profile models.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	assert.Equal(t, "alice@example.com", profile.Email)
	require.Len(t, profile.Collaborators, 1)
	assert.Equal(t, "bob@example.com", profile.Collaborators[0].Email)
	// The password hash never appears in the response.
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestCollaborators(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	dir := &fakeDirectory{
		getCollaboratorsFn: func(_ context.Context, _ primitive.ObjectID) ([]models.CollaboratorRef, error) {
			return []models.CollaboratorRef{
				{ID: primitive.NewObjectID(), Email: "bob@example.com"},
				{ID: primitive.NewObjectID(), Email: "carol@example.com"},
			}, nil
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/collaborators", nil)
	req = req.WithContext(middleware.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.Collaborators(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var refs []models.CollaboratorRef
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refs))
	require.Len(t, refs, 2)
	assert.Equal(t, "bob@example.com", refs[0].Email)
}

func TestAddCollaborator(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	collabID := primitive.NewObjectID()
	dir := &fakeDirectory{
		addCollaboratorFn: func(_ context.Context, selfID primitive.ObjectID, code string) (*models.CollaboratorRef, error) {
			assert.Equal(t, user.ID, selfID)
			assert.Equal(t, "XYZ789", code)
			return &models.CollaboratorRef{ID: collabID, Email: "bob@example.com"}, nil
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.AddCollaborator, "/api/user/add-collaborator", map[string]string{
		"collaborationCode": "XYZ789",
	}, user)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp addCollaboratorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Collaborator)
	assert.Equal(t, "bob@example.com", resp.Collaborator.Email)
}

func TestAddCollaboratorAlreadyAdded(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	dir := &fakeDirectory{
		addCollaboratorFn: func(_ context.Context, _ primitive.ObjectID, _ string) (*models.CollaboratorRef, error) {
			return nil, apperr.Conflict("Already a collaborator")
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.AddCollaborator, "/api/user/add-collaborator", map[string]string{
		"collaborationCode": "XYZ789",
	}, user)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Already a collaborator"}`, rec.Body.String())
}

func TestAddCollaboratorSelfCode(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}
	dir := &fakeDirectory{
		addCollaboratorFn: func(_ context.Context, _ primitive.ObjectID, _ string) (*models.CollaboratorRef, error) {
			return nil, apperr.Validation("Cannot add yourself as a collaborator")
		},
	}
	h := NewUserHandler(dir, fakeSigner{})

	rec := postJSON(t, h.AddCollaborator, "/api/user/add-collaborator", map[string]string{
		"collaborationCode": "MYCODE",
	}, user)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"Cannot add yourself as a collaborator"}`, rec.Body.String())
}

func TestProfileRequiresAuthContext(t *testing.T) {
	h := NewUserHandler(&fakeDirectory{}, fakeSigner{})

	req := httptest.NewRequest(http.MethodGet, "/api/user/profile", nil)
	rec := httptest.NewRecorder()
	h.Profile(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
