package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"item-adoption-api/internal/models"
	"item-adoption-api/internal/repository"
	"item-adoption-api/pkg/email"
)

// DefaultDescription is stored on listings created without one.
const DefaultDescription = "No Description Available"

// listingTTL is how long a new listing stays active before it expires.
const listingTTL = 14 * 24 * time.Hour

// EntryStore is the slice of the entry repository the listing service
// depends on.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	GetEntryByID(ctx context.Context, id primitive.ObjectID) (*models.Entry, error)
	GetEntriesByOwner(ctx context.Context, owner primitive.ObjectID, isWishlist bool) ([]models.Entry, error)
	SearchByZipcode(ctx context.Context, zipcode string, isWishlist bool, requester primitive.ObjectID) ([]models.Entry, error)
	FindExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Entry, error)
	UpdateEntry(ctx context.Context, id, owner primitive.ObjectID, isWishlist bool, update bson.M) (int64, error)
	DeleteEntry(ctx context.Context, id, owner primitive.ObjectID, isWishlist bool) (int64, error)
}

// ListingService encapsulates the business logic for listings and wishlist
// items, including the contact-email flow between interested parties.
type ListingService struct {
	repo   EntryStore
	users  UserStore
	mailer email.Sender
}

// NewListingService creates a new instance of ListingService.
func NewListingService(repo EntryStore, users UserStore, mailer email.Sender) *ListingService {
	return &ListingService{
		repo:   repo,
		users:  users,
		mailer: mailer,
	}
}

// CreateListingInput is the request payload for a new listing. Zipcode is
// optional; when absent the owner's stored zipcode is snapshotted onto the
// entry.
type CreateListingInput struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Zipcode     string  `json:"zipcode"`
}

// CreateWishInput is the request payload for a new wishlist item.
type CreateWishInput struct {
	Title   string `json:"title"`
	Zipcode string `json:"zipcode"`
}

// CreateListing creates a marketplace listing owned by the given user.
// Missing optional fields get their defaults: zero price, placeholder
// description, a 14-day expiration window and the owner's zipcode.
func (s *ListingService) CreateListing(ctx context.Context, ownerID string, input CreateListingInput) (*models.Entry, error) {
	if input.Title == "" {
		return nil, newValidationError(http.StatusBadRequest, "Missing field", "title")
	}

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}

	zipcode := input.Zipcode
	if zipcode == "" {
		ownerUser, err := s.users.GetUserByID(ctx, owner)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrOwnerZipMissing
			}
			return nil, fmt.Errorf("failed to fetch listing owner: %w", err)
		}
		if ownerUser.Zipcode == "" {
			return nil, ErrOwnerZipMissing
		}
		zipcode = ownerUser.Zipcode
	}

	description := input.Description
	if description == "" {
		description = DefaultDescription
	}

	entry := &models.Entry{
		Title:          input.Title,
		Description:    description,
		Price:          input.Price,
		IsWishlist:     false,
		UserID:         owner,
		Zipcode:        zipcode,
		ExpirationDate: time.Now().Add(listingTTL),
		Editing:        false,
	}

	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"entryID": created.ID.Hex(),
		"ownerID": ownerID,
	}).Info("Listing created")
	return created, nil
}

// CreateWishItem creates a wishlist item owned by the given user. Wishlist
// items carry no price, description or expiration; the zipcode is inherited
// from the owner when available but its absence is not an error.
func (s *ListingService) CreateWishItem(ctx context.Context, ownerID string, input CreateWishInput) (*models.Entry, error) {
	if input.Title == "" {
		return nil, newValidationError(http.StatusBadRequest, "Missing field", "title")
	}

	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}

	zipcode := input.Zipcode
	if zipcode == "" {
		if ownerUser, err := s.users.GetUserByID(ctx, owner); err == nil {
			zipcode = ownerUser.Zipcode
		}
	}

	entry := &models.Entry{
		Title:      input.Title,
		IsWishlist: true,
		UserID:     owner,
		Zipcode:    zipcode,
		Editing:    false,
	}

	created, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create wishlist item: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"entryID": created.ID.Hex(),
		"ownerID": ownerID,
	}).Info("Wishlist item created")
	return created, nil
}

// GetOwnedEntries returns all of a user's listings or wishlist items in
// serialized form.
func (s *ListingService) GetOwnedEntries(ctx context.Context, ownerID string, isWishlist bool) ([]models.SerializedEntry, error) {
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, ErrNotFound
	}

	entries, err := s.repo.GetEntriesByOwner(ctx, owner, isWishlist)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}

	return serializeEntries(entries), nil
}

// SearchListings returns serialized listings in the given zipcode, excluding
// the requester's own.
func (s *ListingService) SearchListings(ctx context.Context, requesterID, zipcode string) ([]models.SerializedEntry, error) {
	requester, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return nil, ErrNotFound
	}

	entries, err := s.repo.SearchByZipcode(ctx, zipcode, false, requester)
	if err != nil {
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}

	return serializeEntries(entries), nil
}

// SearchWishlists returns wishlist items in the given zipcode grouped by
// their owners, keyed by username. The requester's own items never appear.
func (s *ListingService) SearchWishlists(ctx context.Context, requesterID, zipcode string) (map[string]models.WishGroup, error) {
	requester, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return nil, ErrNotFound
	}

	entries, err := s.repo.SearchByZipcode(ctx, zipcode, true, requester)
	if err != nil {
		return nil, fmt.Errorf("failed to search wishlists: %w", err)
	}

	ownerIDs := make([]primitive.ObjectID, 0, len(entries))
	seen := make(map[primitive.ObjectID]bool)
	for _, entry := range entries {
		if !seen[entry.UserID] {
			seen[entry.UserID] = true
			ownerIDs = append(ownerIDs, entry.UserID)
		}
	}

	grouped := make(map[string]models.WishGroup)
	if len(ownerIDs) == 0 {
		return grouped, nil
	}

	owners, err := s.users.GetUsersByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch wishlist owners: %w", err)
	}

	ownersByID := make(map[primitive.ObjectID]models.User, len(owners))
	for _, owner := range owners {
		ownersByID[owner.ID] = owner
	}

	for _, entry := range entries {
		owner, ok := ownersByID[entry.UserID]
		if !ok {
			continue
		}
		group, ok := grouped[owner.Username]
		if !ok {
			group = models.WishGroup{
				UserID:  owner.ID.Hex(),
				Zipcode: entry.Zipcode,
			}
		}
		group.Wishlist = append(group.Wishlist, models.WishRef{
			ID:    entry.ID.Hex(),
			Title: entry.Title,
		})
		grouped[owner.Username] = group
	}

	return grouped, nil
}

// listingUpdatableFields maps request field names to their stored form for
// listings; wishlist items only allow a title change.
var listingUpdatableFields = map[string]string{
	"title":          "title",
	"description":    "description",
	"price":          "price",
	"expirationDate": "expiration_date",
	"zipcode":        "zipcode",
}

var wishUpdatableFields = map[string]string{
	"title": "title",
}

// UpdateEntry applies the allowed fields of a raw update body to an entry.
// Only present, truthy values overwrite, and the editing flag is always
// cleared. The store filter is scoped to the owner, so updating someone
// else's entry reads as NotFound.
func (s *ListingService) UpdateEntry(ctx context.Context, entryID, ownerID string, isWishlist bool, updates map[string]interface{}) error {
	id, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return ErrNotFound
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return ErrNotFound
	}

	allowed := listingUpdatableFields
	if isWishlist {
		allowed = wishUpdatableFields
	}

	set := bson.M{}
	for field, column := range allowed {
		value, ok := updates[field]
		if !ok || !truthy(value) {
			continue
		}
		if field == "expirationDate" {
			raw, ok := value.(string)
			if !ok {
				return newValidationError(http.StatusBadRequest, "Incorrect field type: expected RFC 3339 date", "expirationDate")
			}
			parsed, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return newValidationError(http.StatusBadRequest, "Invalid date format", "expirationDate")
			}
			set[column] = parsed
			continue
		}
		set[column] = value
	}

	set["editing"] = false
	set["updated_at"] = time.Now()

	matched, err := s.repo.UpdateEntry(ctx, id, owner, isWishlist, set)
	if err != nil {
		return fmt.Errorf("failed to update entry: %w", err)
	}
	if matched == 0 {
		return ErrNotFound
	}

	logrus.WithField("entryID", entryID).Info("Entry updated")
	return nil
}

// DeleteEntry removes an entry, scoped to its owner.
func (s *ListingService) DeleteEntry(ctx context.Context, entryID, ownerID string, isWishlist bool) error {
	id, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return ErrNotFound
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return ErrNotFound
	}

	deleted, err := s.repo.DeleteEntry(ctx, id, owner, isWishlist)
	if err != nil {
		return fmt.Errorf("failed to delete entry: %w", err)
	}
	if deleted == 0 {
		return ErrNotFound
	}

	logrus.WithField("entryID", entryID).Info("Entry deleted")
	return nil
}

// RequestContact emails the owner of an entry on behalf of the requester.
// Delivery failures are logged but never surfaced: once dispatch has been
// attempted the operation counts as done.
func (s *ListingService) RequestContact(ctx context.Context, requesterID, entryID string, isWishlist bool) error {
	id, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return ErrNotFound
	}
	requesterObjID, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return ErrNotFound
	}

	entry, err := s.repo.GetEntryByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch entry: %w", err)
	}
	if entry.IsWishlist != isWishlist {
		return ErrNotFound
	}

	owner, err := s.users.GetUserByID(ctx, entry.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch entry owner: %w", err)
	}
	if owner.Email == "" {
		return ErrNotFound
	}

	requester, err := s.users.GetUserByID(ctx, requesterObjID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to fetch requester: %w", err)
	}

	msg := buildContactMessage(entry, owner, requester)
	if err := s.mailer.Send(msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"entryID": entryID,
			"error":   err,
		}).Error("Contact email dispatch failed")
	}
	return nil
}

func buildContactMessage(entry *models.Entry, owner, requester *models.User) email.Message {
	subject := fmt.Sprintf("%s is interested in \"%s\"", requester.Username, entry.Title)

	pricePhrase := "free"
	if entry.Price > 0 {
		pricePhrase = fmt.Sprintf("$%.2f", entry.Price)
	}

	text := fmt.Sprintf("Hi %s,\n\n%s would like to get in touch about \"%s\" (%s).\n",
		owner.Username, requester.Username, entry.Title, pricePhrase)
	if !entry.IsWishlist && entry.Description != "" {
		text += fmt.Sprintf("\nDescription: %s\n", entry.Description)
	}
	if entry.Zipcode != "" {
		text += fmt.Sprintf("\nArea: zipcode %s\n", entry.Zipcode)
	}
	if requester.Email != "" {
		text += fmt.Sprintf("\nReply to %s to arrange a handoff.\n", requester.Email)
	}

	return email.Message{
		To:      owner.Email,
		From:    requester.Email,
		Subject: subject,
		Text:    text,
	}
}

// GetExpiringListings returns listings whose expiration date falls within the
// given window from now. Used by the daily reminder scan.
func (s *ListingService) GetExpiringListings(ctx context.Context, within time.Duration) ([]models.Entry, error) {
	now := time.Now()
	entries, err := s.repo.FindExpiringBetween(ctx, now, now.Add(within))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expiring listings: %w", err)
	}
	return entries, nil
}

func serializeEntries(entries []models.Entry) []models.SerializedEntry {
	now := time.Now()
	out := make([]models.SerializedEntry, 0, len(entries))
	for i := range entries {
		out = append(out, entries[i].Serialize(now))
	}
	return out
}

// truthy mirrors the update semantics: only present, non-zero values
// overwrite a stored field.
func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}
