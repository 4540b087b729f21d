package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User mirrors the externally-managed users collection. The core reads it
// only to stamp actor identity onto audit records; account lifecycle and
// credentials live elsewhere.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username  string             `bson:"username" json:"username"`
	FullName  string             `bson:"full_name" json:"full_name"`
	Email     string             `bson:"email" json:"email"`
	City      string             `bson:"city" json:"city"`
	District  string             `bson:"district" json:"district"`
	Role      string             `bson:"role" json:"role"` // "citizen", "official", "admin"
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// ToActor converts the user into the actor identity stamped on audit records.
func (u *User) ToActor() *Actor {
	return &Actor{
		ID:       u.ID,
		FullName: u.FullName,
		Username: u.Username,
		Role:     u.Role,
	}
}
