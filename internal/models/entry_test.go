package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSerialize_Listing(t *testing.T) {
	now := time.Now()
	entry := Entry{
		ID:             primitive.NewObjectID(),
		Title:          "Old couch",
		Description:    "Slightly worn",
		Price:          0,
		UserID:         primitive.NewObjectID(),
		Zipcode:        "10101",
		ExpirationDate: now.Add(14 * 24 * time.Hour),
	}

	serialized := entry.Serialize(now)

	require.NotNil(t, serialized.Price)
	assert.Equal(t, float64(0), *serialized.Price)
	require.NotNil(t, serialized.ExpiresIn)
	assert.Equal(t, 14, *serialized.ExpiresIn)

	raw, err := json.Marshal(serialized)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	// The raw expiration date never crosses the wire; a zero price still does.
	assert.NotContains(t, fields, "expirationDate")
	assert.NotContains(t, fields, "expiration_date")
	assert.Contains(t, fields, "expiresIn")
	assert.Contains(t, fields, "price")
	assert.Equal(t, "10101", fields["zipcode"])
}

func TestSerialize_ExpiresInRounding(t *testing.T) {
	now := time.Now()
	entry := Entry{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID()}

	entry.ExpirationDate = now.Add(13*24*time.Hour + 15*time.Hour)
	assert.Equal(t, 14, *entry.Serialize(now).ExpiresIn)

	entry.ExpirationDate = now.Add(13*24*time.Hour + 3*time.Hour)
	assert.Equal(t, 13, *entry.Serialize(now).ExpiresIn)

	// Already-expired listings report whole days too, never negatives.
	entry.ExpirationDate = now.Add(-2 * 24 * time.Hour)
	assert.Equal(t, 2, *entry.Serialize(now).ExpiresIn)
}

func TestSerialize_WishItem(t *testing.T) {
	entry := Entry{
		ID:         primitive.NewObjectID(),
		Title:      "Bookshelf",
		IsWishlist: true,
		UserID:     primitive.NewObjectID(),
		Zipcode:    "10101",
	}

	raw, err := json.Marshal(entry.Serialize(time.Now()))
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))

	assert.NotContains(t, fields, "price")
	assert.NotContains(t, fields, "description")
	assert.NotContains(t, fields, "expiresIn")
	assert.Equal(t, "Bookshelf", fields["title"])
	assert.Equal(t, "10101", fields["zipcode"])
	assert.Contains(t, fields, "editing")
}
