package service

import (
	"context"
	"fmt"

	"storefront-service/internal/models"
	"storefront-service/internal/store"
	"storefront-service/internal/util"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles user registration.
type AuthService struct {
	store  *store.Store
	logger *zap.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(store *store.Store) *AuthService {
	return &AuthService{
		store:  store,
		logger: util.GetLogger(),
	}
}

// RegisterRequest carries the registration fields.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// Register creates a user with a bcrypt-hashed password. Duplicate
// emails are a conflict; the returned user never carries the hash.
func (s *AuthService) Register(ctx context.Context, req *RegisterRequest) (*models.User, error) {
	if req.Email == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrValidation)
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("%w: password must be at least 6 characters", ErrValidation)
	}

	existing, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: a user with this email already exists", ErrConflict)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Name:         req.Name,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, fromStore(err)
	}

	util.UsersRegisteredTotal.Inc()
	s.logger.Info("User registered", zap.String("user_id", user.ID))
	return user, nil
}
