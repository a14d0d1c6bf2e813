package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"item-adoption-api/internal/services"
	"item-adoption-api/pkg/middleware"
)

// ListingHandler handles HTTP requests for listings and wishlist items.
type ListingHandler struct {
	Service *services.ListingService
}

// NewListingHandler creates a new instance of ListingHandler.
func NewListingHandler(service *services.ListingService) *ListingHandler {
	return &ListingHandler{
		Service: service,
	}
}

// GetListingsHandler returns the caller's own listings.
func (h *ListingHandler) GetListingsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	listings, err := h.Service.GetOwnedEntries(r.Context(), claims.UserID, false)
	if err != nil {
		log.WithError(err).Error("Failed to fetch listings")
		http.Error(w, "Could not retrieve active listings", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"listings": listings})
}

// GetWishlistHandler returns the caller's own wishlist items.
func (h *ListingHandler) GetWishlistHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	wishlist, err := h.Service.GetOwnedEntries(r.Context(), claims.UserID, true)
	if err != nil {
		log.WithError(err).Error("Failed to fetch wishlist")
		http.Error(w, "Could not retrieve wishlist", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"wishlist": wishlist})
}

// CreateListingHandler creates a listing owned by the caller.
func (h *ListingHandler) CreateListingHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input services.CreateListingInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	entry, err := h.Service.CreateListing(r.Context(), claims.UserID, input)
	if err != nil {
		log.WithError(err).Warn("Failed to create listing")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry.Serialize(time.Now()))
}

// CreateWishItemHandler creates a wishlist item owned by the caller.
func (h *ListingHandler) CreateWishItemHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var input services.CreateWishInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	entry, err := h.Service.CreateWishItem(r.Context(), claims.UserID, input)
	if err != nil {
		log.WithError(err).Warn("Failed to create wishlist item")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, entry.Serialize(time.Now()))
}

// SearchListingsHandler returns listings in the given zipcode, excluding the
// caller's own entries.
func (h *ListingHandler) SearchListingsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	zipcode := mux.Vars(r)["zipcode"]

	listings, err := h.Service.SearchListings(r.Context(), claims.UserID, zipcode)
	if err != nil {
		log.WithError(err).Error("Listing search failed")
		http.Error(w, "Could not retrieve active listings", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"listings": listings})
}

// SearchWishlistsHandler returns wishlist items in the given zipcode grouped
// by owner, excluding the caller's own entries.
func (h *ListingHandler) SearchWishlistsHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	zipcode := mux.Vars(r)["zipcode"]

	grouped, err := h.Service.SearchWishlists(r.Context(), claims.UserID, zipcode)
	if err != nil {
		log.WithError(err).Error("Wishlist search failed")
		http.Error(w, "Could not retrieve wishlists", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, grouped)
}

// UpdateListingHandler applies an edit to one of the caller's listings.
func (h *ListingHandler) UpdateListingHandler(w http.ResponseWriter, r *http.Request) {
	h.updateEntry(w, r, false)
}

// UpdateWishItemHandler applies an edit to one of the caller's wishlist items.
func (h *ListingHandler) UpdateWishItemHandler(w http.ResponseWriter, r *http.Request) {
	h.updateEntry(w, r, true)
}

func (h *ListingHandler) updateEntry(w http.ResponseWriter, r *http.Request, isWishlist bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID := mux.Vars(r)["id"]

	var updates map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		http.Error(w, "Invalid update payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	bodyID, _ := updates["id"].(string)
	if entryID == "" || bodyID == "" || entryID != bodyID {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Request path id and request body id must match",
		})
		return
	}

	if err := h.Service.UpdateEntry(r.Context(), entryID, claims.UserID, isWishlist, updates); err != nil {
		log.WithField("entryID", entryID).WithError(err).Warn("Failed to update entry")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteListingHandler removes one of the caller's listings.
func (h *ListingHandler) DeleteListingHandler(w http.ResponseWriter, r *http.Request) {
	h.deleteEntry(w, r, false)
}

// DeleteWishItemHandler removes one of the caller's wishlist items.
func (h *ListingHandler) DeleteWishItemHandler(w http.ResponseWriter, r *http.Request) {
	h.deleteEntry(w, r, true)
}

func (h *ListingHandler) deleteEntry(w http.ResponseWriter, r *http.Request, isWishlist bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID := mux.Vars(r)["id"]

	if err := h.Service.DeleteEntry(r.Context(), entryID, claims.UserID, isWishlist); err != nil {
		log.WithField("entryID", entryID).WithError(err).Warn("Failed to delete entry")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ContactListingOwnerHandler emails the owner of a listing on behalf of the
// caller.
func (h *ListingHandler) ContactListingOwnerHandler(w http.ResponseWriter, r *http.Request) {
	h.contactOwner(w, r, false)
}

// ContactWishItemOwnerHandler emails the owner of a wishlist item on behalf
// of the caller.
func (h *ListingHandler) ContactWishItemOwnerHandler(w http.ResponseWriter, r *http.Request) {
	h.contactOwner(w, r, true)
}

func (h *ListingHandler) contactOwner(w http.ResponseWriter, r *http.Request, isWishlist bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	entryID := mux.Vars(r)["id"]

	if err := h.Service.RequestContact(r.Context(), claims.UserID, entryID, isWishlist); err != nil {
		log.WithField("entryID", entryID).WithError(err).Warn("Contact request failed")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
