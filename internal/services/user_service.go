package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"item-adoption-api/internal/models"
	"item-adoption-api/internal/repository"
)

// UserStore is the slice of the user repository the services depend on.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, update map[string]interface{}) error
}

// UserService encapsulates the business logic for account operations.
type UserService struct {
	repo     UserStore
	validate *validator.Validate
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore) *UserService {
	return &UserService{
		repo:     repo,
		validate: validator.New(),
	}
}

// RegisterInput is the validated registration payload.
type RegisterInput struct {
	Username string
	Password string
}

// ProfileUpdateInput carries the optional profile fields; empty values are
// left untouched on the stored record.
type ProfileUpdateInput struct {
	Zipcode string `json:"zipcode" validate:"omitempty,len=5,numeric"`
	Email   string `json:"email" validate:"omitempty,email"`
}

var registerRequiredFields = []string{"username", "password"}

// ValidateRegisterBody checks a raw registration body. All required fields
// are checked for presence before any of them is checked for type, so a
// request missing one field and mistyping another reports the missing one.
func ValidateRegisterBody(body map[string]interface{}) (*RegisterInput, *ValidationError) {
	for _, field := range registerRequiredFields {
		if _, ok := body[field]; !ok {
			return nil, newValidationError(http.StatusUnprocessableEntity, "Missing field", field)
		}
	}

	values := make(map[string]string, len(registerRequiredFields))
	for _, field := range registerRequiredFields {
		value, ok := body[field].(string)
		if !ok {
			return nil, newValidationError(http.StatusUnprocessableEntity, "Incorrect field type: expected string", field)
		}
		values[field] = value
	}

	return &RegisterInput{
		Username: values["username"],
		Password: values["password"],
	}, nil
}

// RegisterUser creates a new account after hashing the password. The username
// must not already be taken; the unique index on the collection backstops the
// check against concurrent registrations.
func (s *UserService) RegisterUser(ctx context.Context, input RegisterInput) (*models.User, error) {
	logrus.WithField("username", input.Username).Info("Registering new user")

	existing, err := s.repo.GetUserByUsername(ctx, input.Username)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		logrus.WithField("username", input.Username).Warn("Username already taken")
		return nil, newValidationError(http.StatusUnprocessableEntity, "Username already taken", "username")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.WithError(err).Error("Password hashing failed")
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       input.Username,
		HashedPassword: string(hashed),
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		logrus.WithError(err).Error("User registration failed")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	logrus.WithField("userID", created.ID.Hex()).Info("User registered successfully")
	return created, nil
}

// AuthenticateUser verifies a username/password pair and returns the account
// when the credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (*models.User, error) {
	logrus.WithField("username", username).Info("Authenticating user")

	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("username", username).Warn("User not found")
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("username", username).Warn("Invalid credentials")
		return nil, ErrInvalidCredentials
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a full user record by its hex ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	user, err := s.repo.GetUserByID(ctx, objID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetProfile returns the contact fields of an account.
func (s *UserService) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	profile := user.ProfileView()
	return &profile, nil
}

// UpdateProfile applies the provided zipcode/email to an account, leaving
// absent fields untouched.
func (s *UserService) UpdateProfile(ctx context.Context, id string, input ProfileUpdateInput) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	if err := s.validate.Struct(input); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			location := "zipcode"
			if fieldErrs[0].Field() == "Email" {
				location = "email"
			}
			return newValidationError(http.StatusUnprocessableEntity, "Invalid field value", location)
		}
		return fmt.Errorf("failed to validate profile update: %w", err)
	}

	update := map[string]interface{}{}
	if input.Zipcode != "" {
		update["zipcode"] = input.Zipcode
	}
	if input.Email != "" {
		update["email"] = input.Email
	}
	if len(update) == 0 {
		return nil
	}

	if err := s.repo.UpdateUser(ctx, objID, update); err != nil {
		logrus.WithError(err).Error("Failed to update user profile")
		return fmt.Errorf("failed to update profile: %w", err)
	}

	logrus.WithField("userID", id).Info("Profile updated successfully")
	return nil
}
