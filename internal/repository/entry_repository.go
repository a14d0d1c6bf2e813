package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"item-adoption-api/internal/models"
)

// EntryRepository handles database operations on the unified listing/wishlist
// collection.
type EntryRepository struct {
	collection *mongo.Collection
}

// NewEntryRepository creates a new instance of EntryRepository.
func NewEntryRepository(db *mongo.Database) *EntryRepository {
	return &EntryRepository{
		collection: db.Collection("lists"),
	}
}

// CreateEntry inserts a new entry into the collection.
func (r *EntryRepository) CreateEntry(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, entry)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert entry into database")
		return nil, fmt.Errorf("failed to insert entry: %w", err)
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		logrus.Error("Failed to cast inserted ID to ObjectID")
		return nil, fmt.Errorf("failed to cast inserted ID")
	}

	entry.ID = insertedID

	logrus.WithFields(logrus.Fields{
		"entryID":    entry.ID.Hex(),
		"isWishlist": entry.IsWishlist,
	}).Info("Entry inserted successfully")
	return entry, nil
}

// GetEntryByID retrieves a single entry by its ID.
func (r *EntryRepository) GetEntryByID(ctx context.Context, id primitive.ObjectID) (*models.Entry, error) {
	var entry models.Entry
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		logrus.WithFields(logrus.Fields{
			"entryID": id.Hex(),
			"error":   err,
		}).Warn("Failed to find entry by ID")
		return nil, fmt.Errorf("failed to find entry by id: %w", err)
	}
	return &entry, nil
}

// GetEntriesByOwner returns all listings or all wishlist items owned by a
// single user, newest first.
func (r *EntryRepository) GetEntriesByOwner(ctx context.Context, owner primitive.ObjectID, isWishlist bool) ([]models.Entry, error) {
	filter := bson.M{"user": owner, "is_wishlist": isWishlist}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

// SearchByZipcode returns entries in the given postal code, excluding those
// owned by the requesting user.
func (r *EntryRepository) SearchByZipcode(ctx context.Context, zipcode string, isWishlist bool, requester primitive.ObjectID) ([]models.Entry, error) {
	filter := bson.M{
		"is_wishlist": isWishlist,
		"zipcode":     zipcode,
		"user":        bson.M{"$ne": requester},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search entries by zipcode: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

// FindExpiringBetween returns listings whose expiration date falls inside the
// window. Wishlist items never expire and are excluded by the filter.
func (r *EntryRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Entry, error) {
	filter := bson.M{
		"is_wishlist":     false,
		"expiration_date": bson.M{"$gt": from, "$lte": to},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expiring listings: %w", err)
	}
	defer cursor.Close(ctx)

	var entries []models.Entry
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode entries: %w", err)
	}
	return entries, nil
}

// UpdateEntry applies a partial update scoped to the owner, so a caller can
// never touch another user's entry. Returns the number of matched documents.
func (r *EntryRepository) UpdateEntry(ctx context.Context, id, owner primitive.ObjectID, isWishlist bool, update bson.M) (int64, error) {
	filter := bson.M{"_id": id, "user": owner, "is_wishlist": isWishlist}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": update})
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"entryID": id.Hex(),
			"error":   err,
		}).Error("Failed to update entry")
		return 0, fmt.Errorf("failed to update entry: %w", err)
	}

	return result.MatchedCount, nil
}

// DeleteEntry removes an entry, scoped to the owner the same way as updates.
// Returns the number of deleted documents.
func (r *EntryRepository) DeleteEntry(ctx context.Context, id, owner primitive.ObjectID, isWishlist bool) (int64, error) {
	filter := bson.M{"_id": id, "user": owner, "is_wishlist": isWishlist}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"entryID": id.Hex(),
			"error":   err,
		}).Error("Failed to delete entry")
		return 0, fmt.Errorf("failed to delete entry: %w", err)
	}

	return result.DeletedCount, nil
}
