package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mood is the fixed set of mood tags a diary entry can carry.
type Mood string

const (
	MoodHappy   Mood = "Happy"
	MoodSad     Mood = "Sad"
	MoodExcited Mood = "Excited"
	MoodAnxious Mood = "Anxious"
	MoodNeutral Mood = "Neutral"
)

// Moods lists every valid mood value.
var Moods = []Mood{MoodHappy, MoodSad, MoodExcited, MoodAnxious, MoodNeutral}

// ValidMood reports whether s is one of the fixed mood values.
func ValidMood(s string) bool {
	for _, m := range Moods {
		if s == string(m) {
			return true
		}
	}
	return false
}

// Location is an optional geotag on a post.
type Location struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Post is a single diary entry in the posts collection.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`

	// Date is the entry's own timestamp; defaults to creation time.
	Date    time.Time `bson:"date" json:"date"`
	Title   string    `bson:"title" json:"title"`
	Content string    `bson:"content" json:"content"`

	// UserID is the owning account. Immutable after creation.
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	Mood Mood `bson:"mood" json:"mood"`

	// Password holds the bcrypt hash gating read access; nil means the entry
	// is not password protected.
	Password *string `bson:"password" json:"password"`

	// SharedWith are accounts granted read access in addition to the owner.
	SharedWith []primitive.ObjectID `bson:"sharedWith" json:"sharedWith"`

	Tags []string `bson:"tags" json:"tags"`

	Location *Location `bson:"location,omitempty" json:"location,omitempty"`
}

// Protected reports whether the post has an entry password set.
func (p *Post) Protected() bool {
	return p.Password != nil && *p.Password != ""
}

// SharedWithUser reports whether id appears in the post's sharedWith set.
func (p *Post) SharedWithUser(id primitive.ObjectID) bool {
	for _, s := range p.SharedWith {
		if s == id {
			return true
		}
	}
	return false
}
