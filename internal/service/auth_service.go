package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"
	"go-resto-ops/pkg/jwt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResponse, error)
	// Authenticate resolves a bearer token to its active profile.
	Authenticate(ctx context.Context, token string) (*model.Profile, error)
	ValidateToken(ctx context.Context, token string) (*model.ProfileResponse, error)
	ChangePassword(ctx context.Context, actor model.Actor, req ChangePasswordRequest) (*LoginResponse, error)
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

type LoginResponse struct {
	Token   string                `json:"token"`
	Profile model.ProfileResponse `json:"profile"`
}

type authService struct {
	profileRepo repository.ProfileRepository
	tokens      *jwt.Manager
	log         *zap.Logger
	now         func() time.Time
}

func NewAuthService(profileRepo repository.ProfileRepository, tokens *jwt.Manager, log *zap.Logger) AuthService {
	return &authService{
		profileRepo: profileRepo,
		tokens:      tokens,
		log:         log.Named("auth"),
		now:         time.Now,
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validate(&LoginRequest{Email: email, Password: password}); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, backend("find profile", err)
	}
	if !profile.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	if !profile.IsActive {
		return nil, ErrProfileInactive
	}

	resp, err := s.startSession(ctx, profile)
	if err != nil {
		return nil, err
	}
	s.log.Info("profile signed in", zap.String("profile_id", profile.ID.String()), zap.String("role", string(profile.Role)))
	return resp, nil
}

// startSession rotates the token version so only the newest token stays valid.
func (s *authService) startSession(ctx context.Context, profile *model.Profile) (*LoginResponse, error) {
	version := uuid.New().String()
	now := s.now()
	if err := s.profileRepo.RecordLogin(ctx, profile.ID, version, now); err != nil {
		return nil, backend("record login", err)
	}
	profile.TokenVersion = version
	profile.LastLoginAt = &now

	token, err := s.tokens.GenerateToken(profile.ID, profile.Email, profile.FullName(), string(profile.Role), version)
	if err != nil {
		return nil, &BackendError{Op: "generate token", Err: err}
	}
	return &LoginResponse{Token: token, Profile: profile.ToResponse()}, nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*model.Profile, error) {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.FindByID(ctx, claims.ProfileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, jwt.ErrInvalidToken
	}
	if err != nil {
		return nil, backend("find profile", err)
	}
	if !profile.IsActive {
		return nil, ErrProfileInactive
	}
	if profile.TokenVersion != claims.TokenVersion {
		return nil, ErrSessionExpired
	}
	return profile, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*model.ProfileResponse, error) {
	profile, err := s.Authenticate(ctx, token)
	if err != nil {
		return nil, err
	}
	resp := profile.ToResponse()
	return &resp, nil
}

// ChangePassword sets a new password and issues a fresh token; older tokens
// stop working.
func (s *authService) ChangePassword(ctx context.Context, actor model.Actor, req ChangePasswordRequest) (*LoginResponse, error) {
	if actor.ID == uuid.Nil {
		return nil, ErrForbidden
	}
	if err := validate(&req); err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, backend("find profile", err)
	}
	if !profile.CheckPassword(req.CurrentPassword) {
		return nil, ErrWrongPassword
	}
	if err := profile.SetPassword(req.NewPassword); err != nil {
		return nil, &BackendError{Op: "hash password", Err: err}
	}
	if err := s.profileRepo.UpdatePassword(ctx, profile.ID, profile.Password); err != nil {
		return nil, backend("update password", err)
	}
	s.log.Info("password changed", zap.String("profile_id", profile.ID.String()))
	return s.startSession(ctx, profile)
}
