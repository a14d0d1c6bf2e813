package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"item-adoption-api/internal/models"
	"item-adoption-api/internal/repository"
	"item-adoption-api/pkg/email"
)

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	users       map[primitive.ObjectID]*models.User
	createErr   error
	updateCalls []map[string]interface{}
	updateErr   error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *fakeUserStore) add(user models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	stored := user
	f.users[stored.ID] = &stored
	return &stored
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	stored := *user
	f.users[stored.ID] = &stored
	return user, nil
}

func (f *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	var out []models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updateCalls = append(f.updateCalls, update)
	user, ok := f.users[id]
	if !ok {
		return nil
	}
	if zip, ok := update["zipcode"].(string); ok {
		user.Zipcode = zip
	}
	if mail, ok := update["email"].(string); ok {
		user.Email = mail
	}
	return nil
}

// fakeEntryStore is an in-memory EntryStore that honors the same filters as
// the Mongo repository: ownership scoping, the wishlist discriminator and
// zipcode matching.
type fakeEntryStore struct {
	entries   map[primitive.ObjectID]*models.Entry
	createErr error
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[primitive.ObjectID]*models.Entry)}
}

func (f *fakeEntryStore) add(entry models.Entry) *models.Entry {
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	stored := entry
	f.entries[stored.ID] = &stored
	return &stored
}

func (f *fakeEntryStore) CreateEntry(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = time.Now()
	stored := *entry
	f.entries[stored.ID] = &stored
	return entry, nil
}

func (f *fakeEntryStore) GetEntryByID(ctx context.Context, id primitive.ObjectID) (*models.Entry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (f *fakeEntryStore) GetEntriesByOwner(ctx context.Context, owner primitive.ObjectID, isWishlist bool) ([]models.Entry, error) {
	var out []models.Entry
	for _, entry := range f.entries {
		if entry.UserID == owner && entry.IsWishlist == isWishlist {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) SearchByZipcode(ctx context.Context, zipcode string, isWishlist bool, requester primitive.ObjectID) ([]models.Entry, error) {
	var out []models.Entry
	for _, entry := range f.entries {
		if entry.IsWishlist == isWishlist && entry.Zipcode == zipcode && entry.UserID != requester {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]models.Entry, error) {
	var out []models.Entry
	for _, entry := range f.entries {
		if entry.IsWishlist {
			continue
		}
		if entry.ExpirationDate.After(from) && !entry.ExpirationDate.After(to) {
			out = append(out, *entry)
		}
	}
	return out, nil
}

func (f *fakeEntryStore) UpdateEntry(ctx context.Context, id, owner primitive.ObjectID, isWishlist bool, update bson.M) (int64, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != owner || entry.IsWishlist != isWishlist {
		return 0, nil
	}
	for key, value := range update {
		switch key {
		case "title":
			entry.Title = value.(string)
		case "description":
			entry.Description = value.(string)
		case "price":
			entry.Price = value.(float64)
		case "zipcode":
			entry.Zipcode = value.(string)
		case "expiration_date":
			entry.ExpirationDate = value.(time.Time)
		case "editing":
			entry.Editing = value.(bool)
		case "updated_at":
			entry.UpdatedAt = value.(time.Time)
		}
	}
	return 1, nil
}

func (f *fakeEntryStore) DeleteEntry(ctx context.Context, id, owner primitive.ObjectID, isWishlist bool) (int64, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != owner || entry.IsWishlist != isWishlist {
		return 0, nil
	}
	delete(f.entries, id)
	return 1, nil
}

// fakeSender records outbound mail instead of delivering it.
type fakeSender struct {
	msgs    []email.Message
	sendErr error
}

func (f *fakeSender) Send(msg email.Message) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.msgs = append(f.msgs, msg)
	return nil
}
