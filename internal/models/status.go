package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StatusUpdate is one entry in a report's append-only audit trail. Entries
// are never mutated or deleted; per post they form a total order by CreatedAt.
type StatusUpdate struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID         primitive.ObjectID `bson:"post_id" json:"post_id"`
	Status         string             `bson:"status" json:"status"`
	Note           string             `bson:"note" json:"note" validate:"required,max=500"`
	AuthorID       primitive.ObjectID `bson:"author_id" json:"author_id"`
	AuthorFullName string             `bson:"author_full_name" json:"author_full_name"`
	AuthorUsername string             `bson:"author_username" json:"author_username"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
}

// Actor identifies who performed a lifecycle operation. The calling layer
// resolves it from the authenticated user; the core only stamps it.
type Actor struct {
	ID       primitive.ObjectID `json:"id"`
	FullName string             `json:"full_name"`
	Username string             `json:"username"`
	Role     string             `json:"role"`
}

// IsAdmin reports whether the actor carries the admin role.
func (a *Actor) IsAdmin() bool {
	return a.Role == "admin"
}
