package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"photo-rating-backend/internal/config"
	"photo-rating-backend/internal/models"
	"photo-rating-backend/internal/repository"
	"photo-rating-backend/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// token kinds carried in the "typ" claim
const (
	tokenAccess = "access"
	tokenReset  = "reset"
)

// UserService handles accounts and token issuance
type UserService struct {
	users       repository.UserStore
	jwtSecret   []byte
	expiry      time.Duration
	resetExpiry time.Duration
	hashCost    int
}

// NewUserService creates a new user service
func NewUserService(users repository.UserStore, cfg config.JWTConfig) *UserService {
	return &UserService{
		users:       users,
		jwtSecret:   []byte(cfg.Secret),
		expiry:      cfg.Expiry,
		resetExpiry: cfg.ResetExpiry,
		hashCost:    bcrypt.DefaultCost,
	}
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// ProfileUpdate holds optional profile fields; nil fields are left unchanged
type ProfileUpdate struct {
	Gender *string
	Age    *int
}

// Register creates a user with zero points and returns an access token
func (s *UserService) Register(ctx context.Context, email, password string) (*AuthResult, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
		Points:       0,
		Gender:       models.GenderOther,
		Age:          0,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	return &AuthResult{Token: token, User: user}, nil
}

// Login checks credentials and returns an access token
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.GenerateJWT(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

// ForgotPassword issues a short-lived reset token and stores it on the user
func (s *UserService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", ledgerError(err)
	}

	token, err := s.sign(user.ID, tokenReset, s.resetExpiry)
	if err != nil {
		return "", err
	}
	if err := s.users.SetResetToken(ctx, user.ID, &token); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msg("Password reset requested")
	return token, nil
}

// ResetPassword sets a new password if token is the last one issued for the user
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if token == "" || newPassword == "" {
		return fmt.Errorf("%w: reset token and new password are required", ErrInvalidInput)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, minPasswordLength)
	}

	userID, err := s.parse(token, tokenReset)
	if err != nil {
		return ErrInvalidResetToken
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	if user.ResetToken == nil || *user.ResetToken != token {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	log.Info().Str("user_id", user.ID).Msg("Password reset")
	return nil
}

// GetUser returns a user by ID
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, ledgerError(err)
	}
	return user, nil
}

// UpdateProfile changes gender and/or age
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (*models.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if update.Gender != nil {
		if !models.ValidGender(*update.Gender) {
			return nil, fmt.Errorf("%w: gender must be male, female or other", ErrInvalidInput)
		}
		user.Gender = *update.Gender
	}
	if update.Age != nil {
		if *update.Age < 0 || *update.Age > 150 {
			return nil, fmt.Errorf("%w: age must be between 0 and 150", ErrInvalidInput)
		}
		user.Age = *update.Age
	}

	if err := s.users.UpdateProfile(ctx, user.ID, user.Gender, user.Age); err != nil {
		return nil, ledgerError(err)
	}
	return user, nil
}

// GenerateJWT generates an access token for a user
func (s *UserService) GenerateJWT(userID string) (string, error) {
	return s.sign(userID, tokenAccess, s.expiry)
}

// ValidateJWT validates an access token and returns the user ID
func (s *UserService) ValidateJWT(tokenString string) (string, error) {
	return s.parse(tokenString, tokenAccess)
}

func (s *UserService) sign(userID, typ string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": userID,
		"typ":     typ,
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
		"jti":     uuid.New().String(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *UserService) parse(tokenString, typ string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("%w: invalid token claims", ErrUnauthenticated)
	}
	if claims["typ"] != typ {
		return "", fmt.Errorf("%w: unexpected token type", ErrUnauthenticated)
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("%w: user_id not found in token", ErrUnauthenticated)
	}

	return userID, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validation.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return email, nil
}
