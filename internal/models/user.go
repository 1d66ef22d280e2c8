package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account record in the users collection.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"` // Don't return password hash in JSON

	// CollaborationCode is a short public code other users enter to add this
	// account as a collaborator. Unique across users.
	CollaborationCode string `bson:"collaboration_code" json:"collaborationCode"`

	// Collaborators are the accounts this user has added, in insertion order.
	// The relationship is directional: A adding B does not give B A.
	Collaborators []primitive.ObjectID `bson:"collaborators" json:"collaborators"`
}

// CollaboratorRef is the public view of a collaborator.
type CollaboratorRef struct {
	ID    primitive.ObjectID `bson:"_id" json:"_id"`
	Email string             `bson:"email" json:"email"`
}

// Profile is a user record with the password hash excluded and
// collaborators resolved for display.
type Profile struct {
	ID                primitive.ObjectID `json:"_id"`
	Email             string             `json:"email"`
	CollaborationCode string             `json:"collaborationCode"`
	Collaborators     []CollaboratorRef  `json:"collaborators"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}
