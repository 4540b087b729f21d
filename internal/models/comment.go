package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Comment is a flat comment record. Replies carry a parent pointer plus a
// denormalized copy of the target author's identity so the thread renders
// without a join.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PostID     primitive.ObjectID `bson:"post_id" json:"post_id"`
	AuthorID   primitive.ObjectID `bson:"author_id" json:"author_id"`
	AuthorName string             `bson:"author_name" json:"author_name"`
	Text       string             `bson:"text" json:"text" validate:"required,max=1000"`

	ParentCommentID   *primitive.ObjectID `bson:"parent_comment_id,omitempty" json:"parent_comment_id,omitempty"`
	ReplyToAuthorID   *primitive.ObjectID `bson:"reply_to_author_id,omitempty" json:"reply_to_author_id,omitempty"`
	ReplyToAuthorName string              `bson:"reply_to_author_name,omitempty" json:"reply_to_author_name,omitempty"`

	// Soft delete. DeletedBy is "self" or "admin" and is always set
	// together with IsDeleted.
	IsDeleted bool   `bson:"is_deleted" json:"is_deleted"`
	DeletedBy string `bson:"deleted_by,omitempty" json:"deleted_by,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`

	// Populated fields (not stored in DB)
	Replies []*Comment `bson:"-" json:"replies,omitempty"`
}

// IsRoot reports whether the comment has no parent.
func (c *Comment) IsRoot() bool {
	return c.ParentCommentID == nil
}

// DisplayText masks the stored text of soft-deleted comments for
// presentation. Storage keeps the original text.
func (c *Comment) DisplayText() string {
	if c.IsDeleted {
		return ""
	}
	return c.Text
}
