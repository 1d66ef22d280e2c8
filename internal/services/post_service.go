package services

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/rjosephs/daybook-backend/internal/apperr"
	"github.com/rjosephs/daybook-backend/internal/models"
	"github.com/rjosephs/daybook-backend/pkg/utils"
)

// PostService owns CRUD over diary entries, the entry-password gate, and
// the sharing list.
type PostService struct {
	posts *mongo.Collection
}

func NewPostService(db *mongo.Database) *PostService {
	return &PostService{posts: db.Collection("posts")}
}

// CreatePostInput carries the client-supplied fields for a new entry.
// The owner always comes from the authenticated user, never the body.
type CreatePostInput struct {
	Date     *time.Time       `json:"date,omitempty"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Mood     string           `json:"mood,omitempty"`
	Password string           `json:"password,omitempty"`
	Tags     []string         `json:"tags,omitempty"`
	Location *models.Location `json:"location,omitempty"`
}

// UpdatePostInput is a partial patch; only non-nil fields are written.
type UpdatePostInput struct {
	Date     *time.Time       `json:"date,omitempty"`
	Title    *string          `json:"title,omitempty"`
	Content  *string          `json:"content,omitempty"`
	Mood     *string          `json:"mood,omitempty"`
	Password *string          `json:"password,omitempty"`
	Tags     *[]string        `json:"tags,omitempty"`
	Location *models.Location `json:"location,omitempty"`
}

// ListForUser returns every entry the user owns or is shared on,
// newest first.
func (s *PostService) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Post, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"user_id": userID},
			{"sharedWith": userID},
		},
	}
	opts := options.Find().SetSort(bson.M{"created_at": -1})

	cursor, err := s.posts.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// Get fetches a single entry, enforcing the entry-password gate when one is
// set. There is deliberately no ownership scoping here: a valid id plus the
// entry password is enough to read (link-shareable entries). An empty
// suppliedPassword means none was supplied.
func (s *PostService) Get(ctx context.Context, id, suppliedPassword string) (*models.Post, error) {
	post, err := s.findByHexID(ctx, id, "Post does not exist")
	if err != nil {
		return nil, err
	}
	if err := checkEntryPassword(post, suppliedPassword); err != nil {
		return nil, err
	}
	return post, nil
}

// checkEntryPassword enforces the read gate: an unprotected entry passes, a
// protected one needs the matching password. Failures carry the
// password-protected flag so the client knows to prompt.
func checkEntryPassword(post *models.Post, supplied string) error {
	if !post.Protected() {
		return nil
	}
	if supplied == "" {
		return apperr.AccessDenied("Password required", true)
	}
	match, err := comparePostPassword(supplied, *post.Password)
	if err != nil {
		return err
	}
	if !match {
		return apperr.AccessDenied("Incorrect password", true)
	}
	return nil
}

// Create validates and stores a new entry owned by userID.
func (s *PostService) Create(ctx context.Context, userID primitive.ObjectID, in CreatePostInput) (*models.Post, error) {
	post, err := newPostFromInput(userID, in, time.Now())
	if err != nil {
		return nil, err
	}
	if _, err := s.posts.InsertOne(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// newPostFromInput validates the input and builds the entry document,
// applying the defaults: date = now, mood = Neutral, tags = [], no password.
func newPostFromInput(userID primitive.ObjectID, in CreatePostInput, now time.Time) (*models.Post, error) {
	if in.Title == "" || in.Content == "" {
		return nil, apperr.Validation("Title and content are required")
	}

	mood := models.MoodNeutral
	if in.Mood != "" {
		if !models.ValidMood(in.Mood) {
			return nil, apperr.Validation("Invalid mood value")
		}
		mood = models.Mood(in.Mood)
	}

	date := now
	if in.Date != nil {
		date = *in.Date
	}

	var passwordHash *string
	if in.Password != "" {
		hash, err := utils.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
		passwordHash = &hash
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}

	return &models.Post{
		ID:         primitive.NewObjectID(),
		CreatedAt:  now,
		UpdatedAt:  now,
		Date:       date,
		Title:      in.Title,
		Content:    in.Content,
		UserID:     userID,
		Mood:       mood,
		Password:   passwordHash,
		SharedWith: []primitive.ObjectID{},
		Tags:       tags,
		Location:   in.Location,
	}, nil
}

// Update overwrites the supplied fields on an entry the requester owns.
// A non-owner gets the same not-found error as a missing entry so the id
// space is not probeable.
func (s *PostService) Update(ctx context.Context, userID primitive.ObjectID, id string, in UpdatePostInput) (*models.Post, error) {
	postID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("post does not exist")
	}

	set := bson.M{"updated_at": time.Now()}
	if in.Date != nil {
		set["date"] = *in.Date
	}
	if in.Title != nil {
		set["title"] = *in.Title
	}
	if in.Content != nil {
		set["content"] = *in.Content
	}
	if in.Mood != nil {
		if !models.ValidMood(*in.Mood) {
			return nil, apperr.Validation("Invalid mood value")
		}
		set["mood"] = *in.Mood
	}
	if in.Password != nil {
		if *in.Password == "" {
			// Empty password clears the protection.
			set["password"] = nil
		} else {
			hash, err := utils.HashPassword(*in.Password)
			if err != nil {
				return nil, err
			}
			set["password"] = hash
		}
	}
	if in.Tags != nil {
		set["tags"] = *in.Tags
	}
	if in.Location != nil {
		set["location"] = *in.Location
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var post models.Post
	err = s.posts.FindOneAndUpdate(ctx,
		bson.M{"_id": postID, "user_id": userID},
		bson.M{"$set": set},
		opts,
	).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("post does not exist")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes an entry the requester owns and returns its prior state.
func (s *PostService) Delete(ctx context.Context, userID primitive.ObjectID, id string) (*models.Post, error) {
	postID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("post does not exist")
	}

	var post models.Post
	err = s.posts.FindOneAndDelete(ctx, bson.M{"_id": postID, "user_id": userID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("post does not exist")
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// VerifyPassword is the standalone unlock check the client calls before
// allowing edits on a protected entry.
func (s *PostService) VerifyPassword(ctx context.Context, id, password string) (*models.Post, error) {
	if password == "" {
		return nil, apperr.Validation("Password is required")
	}

	post, err := s.findByHexID(ctx, id, "Post does not exist")
	if err != nil {
		return nil, err
	}

	if !post.Protected() {
		return nil, apperr.Validation("Post is not password protected")
	}

	match, err := comparePostPassword(password, *post.Password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, apperr.AccessDenied("Incorrect password", false)
	}
	return post, nil
}

// Share appends collaborators to an entry's sharedWith list. Only the owner
// may share. Already-shared ids are skipped, and the owner's own id is never
// added, so the call is idempotent. Returns the full updated list.
func (s *PostService) Share(ctx context.Context, ownerID primitive.ObjectID, id string, collaboratorIDs []string) ([]primitive.ObjectID, error) {
	postID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound("Post not found")
	}

	var post models.Post
	err = s.posts.FindOne(ctx, bson.M{"_id": postID, "user_id": ownerID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("Post not found")
	}
	if err != nil {
		return nil, err
	}

	added, err := newShareTargets(&post, ownerID, collaboratorIDs)
	if err != nil {
		return nil, err
	}

	sharedWith := append(post.SharedWith, added...)
	if len(added) > 0 {
		_, err = s.posts.UpdateOne(ctx, bson.M{"_id": postID}, bson.M{
			"$push": bson.M{"sharedWith": bson.M{"$each": added}},
			"$set":  bson.M{"updated_at": time.Now()},
		})
		if err != nil {
			return nil, err
		}
	}
	return sharedWith, nil
}

// newShareTargets computes the collaborators to append: supplied order kept,
// already-shared ids and the owner skipped, in-request duplicates collapsed.
func newShareTargets(post *models.Post, ownerID primitive.ObjectID, collaboratorIDs []string) ([]primitive.ObjectID, error) {
	var added []primitive.ObjectID
	for _, raw := range collaboratorIDs {
		collabID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return nil, apperr.Validation("Invalid collaborator id")
		}
		if collabID == ownerID || post.SharedWithUser(collabID) {
			continue
		}
		dup := false
		for _, a := range added {
			if a == collabID {
				dup = true
				break
			}
		}
		if !dup {
			added = append(added, collabID)
		}
	}
	return added, nil
}

// findByHexID parses a client-supplied id and loads the entry, mapping both a
// malformed id and a missing document to the same not-found message.
func (s *PostService) findByHexID(ctx context.Context, id, notFoundMsg string) (*models.Post, error) {
	postID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperr.NotFound(notFoundMsg)
	}

	var post models.Post
	err = s.posts.FindOne(ctx, bson.M{"_id": postID}).Decode(&post)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound(notFoundMsg)
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// comparePostPassword checks the supplied entry password against the stored
// hash, accepting either the raw input or its whitespace-trimmed form (some
// clients submit the password with a trailing newline).
func comparePostPassword(supplied, hash string) (bool, error) {
	match, err := utils.CheckPassword(supplied, hash)
	if err != nil {
		return false, err
	}
	if match {
		return true, nil
	}
	trimmed := strings.TrimSpace(supplied)
	if trimmed == supplied {
		return false, nil
	}
	return utils.CheckPassword(trimmed, hash)
}
