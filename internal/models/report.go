package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Report is a citizen-filed issue record.
type Report struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AuthorID    primitive.ObjectID `bson:"author_id" json:"author_id"`
	Title       string             `bson:"title" json:"title" validate:"required,max=120"`
	Description string             `bson:"description" json:"description" validate:"required,max=2000"`
	Category    string             `bson:"category" json:"category" validate:"required,max=50"`
	District    string             `bson:"district" json:"district" validate:"max=50"`
	ImageURL    string             `bson:"image_url" json:"image_url"`
	Location    *Location          `bson:"location,omitempty" json:"location,omitempty"`
	Status      string             `bson:"status" json:"status"`

	// UpvoteCount mirrors len(UpvotedBy). The two are only ever written
	// together, inside a single conditional update.
	UpvoteCount int64                `bson:"upvote_count" json:"upvote_count"`
	UpvotedBy   []primitive.ObjectID `bson:"upvoted_by" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Populated fields (not stored in DB)
	HasUpvoted bool `bson:"-" json:"has_upvoted"`
}

// Location is a point on the map attached to a report.
type Location struct {
	Latitude  float64 `bson:"latitude" json:"latitude"`
	Longitude float64 `bson:"longitude" json:"longitude"`
}

// HasUpvoteFrom reports whether userID is in the upvote set.
func (r *Report) HasUpvoteFrom(userID primitive.ObjectID) bool {
	for _, id := range r.UpvotedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// FilterCriteria narrows a report query. An empty slice in any field means
// no restriction on that field.
type FilterCriteria struct {
	Districts  []string `json:"districts"`
	Categories []string `json:"categories"`
	Statuses   []string `json:"statuses"`
}

// IsEmpty reports whether the criteria restricts nothing.
func (c *FilterCriteria) IsEmpty() bool {
	return c == nil || (len(c.Districts) == 0 && len(c.Categories) == 0 && len(c.Statuses) == 0)
}
