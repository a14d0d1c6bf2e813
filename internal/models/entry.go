package models

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Entry is a single marketplace record. Listings and wishlist items share one
// collection and are told apart by IsWishlist, which never changes after
// creation. The owner reference is set from the authenticated caller, never
// from the request body.
type Entry struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Title          string             `bson:"title"`
	Description    string             `bson:"description,omitempty"`
	Price          float64            `bson:"price,omitempty"`
	IsWishlist     bool               `bson:"is_wishlist"`
	UserID         primitive.ObjectID `bson:"user"`
	Zipcode        string             `bson:"zipcode,omitempty"`
	ExpirationDate time.Time          `bson:"expiration_date,omitempty"`
	Editing        bool               `bson:"editing"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

// SerializedEntry is the wire form of an entry. The raw expiration date is
// never exposed; listings carry the derived ExpiresIn day count instead.
// Wishlist items carry no price, description or expiry at all.
type SerializedEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	User        string   `json:"user"`
	Zipcode     string   `json:"zipcode,omitempty"`
	Editing     bool     `json:"editing"`
	ExpiresIn   *int     `json:"expiresIn,omitempty"`
}

// WishGroup is one owner's bucket in a wishlist area search, keyed by the
// owner's username in the response map.
type WishGroup struct {
	UserID   string    `json:"userId"`
	Zipcode  string    `json:"zipcode"`
	Wishlist []WishRef `json:"wishlist"`
}

// WishRef is the minimal reference to a wishlist item inside a WishGroup.
type WishRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Serialize converts an entry to its wire form. ExpiresIn is computed against
// the supplied clock value, in whole days, and is only present for listings.
func (e *Entry) Serialize(now time.Time) SerializedEntry {
	out := SerializedEntry{
		ID:      e.ID.Hex(),
		Title:   e.Title,
		User:    e.UserID.Hex(),
		Zipcode: e.Zipcode,
		Editing: e.Editing,
	}
	if !e.IsWishlist {
		out.Description = e.Description
		price := e.Price
		out.Price = &price
		days := int(math.Round(math.Abs(e.ExpirationDate.Sub(now).Hours() / 24)))
		out.ExpiresIn = &days
	}
	return out
}
