package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a registered account in the item adoption marketplace.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Zipcode        string             `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Email          string             `bson:"email,omitempty" json:"email,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"-"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"-"`
}

// PublicUser is the outward form of an account: identity only, no credentials
// and no contact data.
type PublicUser struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
}

// Profile is the contact portion of an account returned by the profile
// endpoint.
type Profile struct {
	Zipcode string `json:"zipcode"`
	Email   string `json:"email"`
}

// Serialize strips a user down to its public identity.
func (u *User) Serialize() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username}
}

// ProfileView returns the mutable contact fields of the account.
func (u *User) ProfileView() Profile {
	return Profile{Zipcode: u.Zipcode, Email: u.Email}
}
