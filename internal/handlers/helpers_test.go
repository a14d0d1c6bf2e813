package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"item-adoption-api/internal/config"
	"item-adoption-api/internal/models"
	"item-adoption-api/internal/repository"
	"item-adoption-api/internal/services"
	"item-adoption-api/pkg/email"
	"item-adoption-api/pkg/middleware"
)

const testSecret = "handler-test-secret"

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   testSecret,
		TokenExpiry: time.Hour,
	}
}

// newTestRouter builds the same route table as cmd/server/main.go on top of
// in-memory stores.
func newTestRouter(users *fakeUserStore, entries *fakeEntryStore, sender *fakeSender) *mux.Router {
	cfg := testConfig()
	userService := services.NewUserService(users)
	listingService := services.NewListingService(entries, users, sender)

	userHandler := NewUserHandler(userService, cfg)
	listingHandler := NewListingHandler(listingService)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(NotFoundHandler)

	router.HandleFunc("/api/users", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/api/auth/login", userHandler.LoginUserHandler).Methods("POST")

	authRoutes := router.PathPrefix("/api/auth").Subrouter()
	authRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	authRoutes.HandleFunc("/refresh", userHandler.RefreshTokenHandler).Methods("POST")

	userRoutes := router.PathPrefix("/api/users").Subrouter()
	userRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	userRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	userRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PUT")

	listRoutes := router.PathPrefix("/api/lists").Subrouter()
	listRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	listRoutes.HandleFunc("/listings", listingHandler.GetListingsHandler).Methods("GET")
	listRoutes.HandleFunc("/listings", listingHandler.CreateListingHandler).Methods("POST")
	listRoutes.HandleFunc("/listings/search/{zipcode}", listingHandler.SearchListingsHandler).Methods("GET")
	listRoutes.HandleFunc("/listings/contact/{id}", listingHandler.ContactListingOwnerHandler).Methods("POST")
	listRoutes.HandleFunc("/listings/{id}", listingHandler.UpdateListingHandler).Methods("PUT")
	listRoutes.HandleFunc("/listings/{id}", listingHandler.DeleteListingHandler).Methods("DELETE")
	listRoutes.HandleFunc("/wishlist", listingHandler.GetWishlistHandler).Methods("GET")
	listRoutes.HandleFunc("/wishlist", listingHandler.CreateWishItemHandler).Methods("POST")
	listRoutes.HandleFunc("/wishlist/search/{zipcode}", listingHandler.SearchWishlistsHandler).Methods("GET")
	listRoutes.HandleFunc("/wishlist/contact/{id}", listingHandler.ContactWishItemOwnerHandler).Methods("POST")
	listRoutes.HandleFunc("/wishlist/{id}", listingHandler.UpdateWishItemHandler).Methods("PUT")
	listRoutes.HandleFunc("/wishlist/{id}", listingHandler.DeleteWishItemHandler).Methods("DELETE")

	return router
}

// --- in-memory stores ---

type fakeUserStore struct {
	users       map[primitive.ObjectID]*models.User
	updateCalls []map[string]interface{}
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
	user.ID = primitive.NewObjectID()
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

type fakeEntryStore struct {
	entries map[primitive.ObjectID]*models.Entry
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
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
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
	return nil, nil
}

func (f *fakeEntryStore) UpdateEntry(ctx context.Context, id, owner primitive.ObjectID, isWishlist bool, update bson.M) (int64, error) {
	entry, ok := f.entries[id]
	if !ok || entry.UserID != owner || entry.IsWishlist != isWishlist {
		return 0, nil
	}
	if title, ok := update["title"].(string); ok {
		entry.Title = title
	}
	if editing, ok := update["editing"].(bool); ok {
		entry.Editing = editing
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

type fakeSender struct {
	msgs []email.Message
}

func (f *fakeSender) Send(msg email.Message) error {
	f.msgs = append(f.msgs, msg)
	return nil
}
