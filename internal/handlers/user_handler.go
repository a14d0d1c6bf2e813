package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"item-adoption-api/internal/config"
	"item-adoption-api/internal/services"
	jwtutil "item-adoption-api/pkg/jwt"
	"item-adoption-api/pkg/middleware"
)

// UserHandler handles HTTP requests related to accounts and sessions.
type UserHandler struct {
	Service *services.UserService
	Config  *config.Config
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service *services.UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service: service,
		Config:  cfg,
	}
}

// RegisterUserHandler handles user registration. The raw body is validated
// field by field so the response can name what was missing or mistyped.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var body map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode registration request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	input, validationErr := services.ValidateRegisterBody(body)
	if validationErr != nil {
		respondJSON(w, validationErr.Code, validationErr)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), *input)
	if err != nil {
		log.WithError(err).Warn("Failed to register user")
		respondServiceError(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate token for new user")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"id":        user.ID.Hex(),
		"username":  user.Username,
		"authToken": token,
	})
}

// LoginUserHandler verifies credentials and issues a session token.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		log.WithError(err).Warn("Failed to decode login request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	user, err := h.Service.AuthenticateUser(r.Context(), credentials.Username, credentials.Password)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrInvalidCredentials) {
			http.Error(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		log.WithError(err).Error("Login failed")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Username, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authToken": token,
		"username":  user.Username,
		"id":        user.ID.Hex(),
	})
}

// RefreshTokenHandler issues a fresh token from a still-valid one.
func (h *UserHandler) RefreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	token, err := jwtutil.GenerateToken(claims.UserID, claims.Username, h.Config.JWTSecret, h.Config.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to refresh token")
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"authToken": token,
		"username":  claims.Username,
		"id":        claims.UserID,
	})
}

// GetUserHandler returns the zipcode and email of an account.
func (h *UserHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedUserID := mux.Vars(r)["id"]

	profile, err := h.Service.GetProfile(r.Context(), requestedUserID)
	if err != nil {
		log.WithField("userID", requestedUserID).WithError(err).Warn("User not found")
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}

// UpdateUserHandler assigns or updates the zipcode and/or email of an
// account. The body must echo the path id, guarding against a mismatched
// route/body pair.
func (h *UserHandler) UpdateUserHandler(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requestedUserID := mux.Vars(r)["id"]

	var body struct {
		ID string `json:"id"`
		services.ProfileUpdateInput
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		log.WithError(err).Warn("Failed to decode profile update request")
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if requestedUserID == "" || body.ID == "" || requestedUserID != body.ID {
		respondJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Request path id and request body id must match",
		})
		return
	}

	if err := h.Service.UpdateProfile(r.Context(), requestedUserID, body.ProfileUpdateInput); err != nil {
		log.WithField("userID", requestedUserID).WithError(err).Error("Failed to update profile")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
