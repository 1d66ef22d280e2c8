package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rjosephs/daybook-backend/internal/apperr"
	"github.com/rjosephs/daybook-backend/internal/models"
	"github.com/rjosephs/daybook-backend/pkg/utils"
)

// collabCodeMaxRetries bounds collision retries on code generation.
const collabCodeMaxRetries = 5

// UserService is the account directory: signup, login, and the
// collaboration graph.
type UserService struct {
	users *mongo.Collection
}

func NewUserService(db *mongo.Database) *UserService {
	return &UserService{users: db.Collection("users")}
}

// Signup validates the email and password policy, hashes the password, and
// creates the account with a fresh unique collaboration code.
func (s *UserService) Signup(ctx context.Context, email, password string) (*models.User, error) {
	email, err := validateSignupInput(email, password)
	if err != nil {
		return nil, err
	}

	count, err := s.users.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperr.Conflict("Email already registered")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:            primitive.NewObjectID(),
		CreatedAt:     now,
		UpdatedAt:     now,
		Email:         email,
		Password:      hash,
		Collaborators: []primitive.ObjectID{},
	}

	// The collaboration code carries a unique index; regenerate on collision.
	for attempt := 0; attempt < collabCodeMaxRetries; attempt++ {
		code, err := utils.GenerateCollabCode()
		if err != nil {
			return nil, err
		}
		user.CollaborationCode = code

		_, err = s.users.InsertOne(ctx, user)
		if err == nil {
			return user, nil
		}
		if mongo.IsDuplicateKeyError(err) {
			// Could be the email (lost race with a concurrent signup) or the
			// code. Re-check the email so a code collision retries cleanly.
			count, countErr := s.users.CountDocuments(ctx, bson.M{"email": email})
			if countErr == nil && count > 0 {
				return nil, apperr.Conflict("Email already registered")
			}
			continue
		}
		return nil, err
	}
	return nil, fmt.Errorf("could not generate a unique collaboration code")
}

// validateSignupInput enforces the signup contract in order: presence first,
// then email shape, then password strength. Returns the normalized email.
func validateSignupInput(email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperr.Validation("All fields required")
	}
	email = utils.NormalizeEmail(email)
	if !utils.ValidEmail(email) {
		return "", apperr.Validation("Invalid email")
	}
	if !utils.StrongPassword(password) {
		return "", apperr.Validation("Password not strong enough")
	}
	return email, nil
}

// Login verifies the credentials and returns the matching account.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("All fields required")
	}
	email = utils.NormalizeEmail(email)

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Email not registered")
	}
	if err != nil {
		return nil, err
	}

	if err := verifyCredentials(&user, password); err != nil {
		return nil, err
	}
	return &user, nil
}

// verifyCredentials compares the supplied password against the account's
// stored hash.
func verifyCredentials(user *models.User, password string) error {
	match, err := utils.CheckPassword(password, user.Password)
	if err != nil {
		return err
	}
	if !match {
		return apperr.Auth("Incorrect password")
	}
	return nil
}

// FindByID resolves a user by ID with the password hash projected out.
// Used by the auth middleware to attach the requester to the context.
func (s *UserService) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	opts := options.FindOne().SetProjection(bson.M{"password": 0})

	var user models.User
	err := s.users.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddCollaborator resolves a collaboration code and appends that user to the
// requester's collaborator list.
func (s *UserService) AddCollaborator(ctx context.Context, selfID primitive.ObjectID, code string) (*models.CollaboratorRef, error) {
	if code == "" {
		return nil, apperr.Validation("Collaboration code required")
	}

	var other models.User
	err := s.users.FindOne(ctx, bson.M{"collaboration_code": code}).Decode(&other)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Invalid collaboration code")
	}
	if err != nil {
		return nil, err
	}

	self, err := s.FindByID(ctx, selfID)
	if err != nil {
		return nil, err
	}
	if err := validateNewCollaborator(self, &other); err != nil {
		return nil, err
	}

	_, err = s.users.UpdateOne(ctx, bson.M{"_id": selfID}, bson.M{
		"$push": bson.M{"collaborators": other.ID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
	if err != nil {
		return nil, err
	}

	return &models.CollaboratorRef{ID: other.ID, Email: other.Email}, nil
}

// validateNewCollaborator applies the self and duplicate guards before other
// is appended to self's collaborator list.
func validateNewCollaborator(self, other *models.User) error {
	if other.ID == self.ID {
		return apperr.Validation("Cannot add yourself as a collaborator")
	}
	for _, c := range self.Collaborators {
		if c == other.ID {
			return apperr.Conflict("Already a collaborator")
		}
	}
	return nil
}

// GetProfile returns the user's record without the password hash, with the
// collaborator list resolved to {_id, email} pairs in stored order.
func (s *UserService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Profile, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	collaborators, err := s.resolveCollaborators(ctx, user.Collaborators)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		ID:                user.ID,
		Email:             user.Email,
		CollaborationCode: user.CollaborationCode,
		Collaborators:     collaborators,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}, nil
}

// GetCollaborators returns just the resolved collaborator list.
func (s *UserService) GetCollaborators(ctx context.Context, id primitive.ObjectID) ([]models.CollaboratorRef, error) {
	user, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolveCollaborators(ctx, user.Collaborators)
}

// resolveCollaborators fetches {_id, email} for each ID, preserving the order
// stored on the user document ($in returns documents in collection order).
func (s *UserService) resolveCollaborators(ctx context.Context, ids []primitive.ObjectID) ([]models.CollaboratorRef, error) {
	refs := make([]models.CollaboratorRef, 0, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1, "email": 1})
	cursor, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var found []models.CollaboratorRef
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}

	byID := make(map[primitive.ObjectID]models.CollaboratorRef, len(found))
	for _, ref := range found {
		byID[ref.ID] = ref
	}
	for _, id := range ids {
		if ref, ok := byID[id]; ok {
			refs = append(refs, ref)
		}
	}
	return refs, nil
}
