package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// authService implements AuthService.
type authService struct {
	userRepo repository.UserRepository
	hasher   *auth.PasswordHasher
	issuer   *auth.TokenIssuer
	logger   zerolog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(
	userRepo repository.UserRepository,
	hasher *auth.PasswordHasher,
	issuer *auth.TokenIssuer,
	logger zerolog.Logger,
) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
		issuer:   issuer,
		logger:   logger.With().Str("service", "auth").Logger(),
	}
}

// Register creates an account and returns it with a signed token.
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if err := validateRegisterRequest(req); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		s.logger.Warn().Msg("registration attempted with taken email")
		return nil, model.ErrEmailTaken
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("account registered")

	return &model.AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	}, nil
}

// Login checks credentials and returns the account with a signed token.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if req == nil || req.Email == "" || req.Password == "" {
		return nil, model.NewDomainError(model.ErrCodeValidation, "Email and password are required")
	}

	user, err := s.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	// The same error covers unknown email and wrong password; login never
	// reveals which one failed.
	if user == nil || !s.hasher.Verify(user.PasswordHash, req.Password) {
		s.logger.Warn().Msg("failed login attempt")
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.issuer.Issue(user.ID, user.Role, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.logger.Info().Str("user_id", user.ID.String()).Msg("login succeeded")

	return &model.AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	}, nil
}

// validateRegisterRequest validates the registration payload.
func validateRegisterRequest(req *model.RegisterRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeValidation, "Request body is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return model.NewDomainError(model.ErrCodeValidation, "Name is required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return model.NewDomainError(model.ErrCodeValidation, "A valid email is required")
	}
	if len(req.Password) < 8 {
		return model.NewDomainError(model.ErrCodeValidation, "Password must be at least 8 characters")
	}
	return nil
}
