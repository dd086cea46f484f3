package service

import (
	"context"
	"strings"

	"go-resto-ops/internal/model"
	"go-resto-ops/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CreateProfileRequest struct {
	Email     string     `json:"email" validate:"required,email"`
	Password  string     `json:"password" validate:"required,min=8"`
	FirstName string     `json:"first_name" validate:"notblank,max=100"`
	LastName  string     `json:"last_name" validate:"max=100"`
	Role      model.Role `json:"role" validate:"required,oneof=admin staff supplier"`
}

// TeamService manages the profiles allowed to sign in.
type TeamService interface {
	Create(ctx context.Context, actor model.Actor, req CreateProfileRequest) (*model.ProfileResponse, error)
	SetActive(ctx context.Context, actor model.Actor, id uuid.UUID, active bool) (*model.ProfileResponse, error)
	List(ctx context.Context, actor model.Actor) ([]model.ProfileResponse, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.ProfileResponse, error)
}

type teamService struct {
	profileRepo repository.ProfileRepository
	log         *zap.Logger
}

func NewTeamService(profileRepo repository.ProfileRepository, log *zap.Logger) TeamService {
	return &teamService{profileRepo: profileRepo, log: log.Named("team")}
}

func (s *teamService) Create(ctx context.Context, actor model.Actor, req CreateProfileRequest) (*model.ProfileResponse, error) {
	if !actor.Can(model.ActionTeamManage) {
		return nil, ErrForbidden
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	if err := validate(&req); err != nil {
		return nil, err
	}

	exists, err := s.profileRepo.EmailExists(ctx, req.Email)
	if err != nil {
		return nil, backend("check email", err)
	}
	if exists {
		return nil, ErrEmailExists
	}

	profile := &model.Profile{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		IsActive:  true,
	}
	profile.CreatedBy = actor.ID.String()
	profile.UpdatedBy = actor.ID.String()
	if err := profile.SetPassword(req.Password); err != nil {
		return nil, &BackendError{Op: "hash password", Err: err}
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, backend("create profile", err)
	}

	s.log.Info("profile created",
		zap.String("profile_id", profile.ID.String()),
		zap.String("role", string(profile.Role)),
		zap.String("actor", actor.ID.String()))
	resp := profile.ToResponse()
	return &resp, nil
}

func (s *teamService) SetActive(ctx context.Context, actor model.Actor, id uuid.UUID, active bool) (*model.ProfileResponse, error) {
	if !actor.Can(model.ActionTeamManage) {
		return nil, ErrForbidden
	}
	if !active && id == actor.ID {
		return nil, invalid("id", "you cannot deactivate your own profile")
	}
	if _, err := s.profileRepo.FindByID(ctx, id); err != nil {
		return nil, backend("get profile", err)
	}
	if err := s.profileRepo.SetActive(ctx, id, active, actor.ID.String()); err != nil {
		return nil, backend("set profile active", err)
	}
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, backend("get profile", err)
	}
	s.log.Info("profile status changed", zap.String("profile_id", id.String()), zap.Bool("active", active))
	resp := profile.ToResponse()
	return &resp, nil
}

func (s *teamService) List(ctx context.Context, actor model.Actor) ([]model.ProfileResponse, error) {
	if !actor.Can(model.ActionTeamView) {
		return nil, ErrForbidden
	}
	profiles, err := s.profileRepo.FindAll(ctx)
	if err != nil {
		return nil, backend("list profiles", err)
	}
	responses := make([]model.ProfileResponse, len(profiles))
	for i := range profiles {
		responses[i] = profiles[i].ToResponse()
	}
	return responses, nil
}

func (s *teamService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.ProfileResponse, error) {
	if !actor.Can(model.ActionTeamView) && actor.ID != id {
		return nil, ErrForbidden
	}
	profile, err := s.profileRepo.FindByID(ctx, id)
	if err != nil {
		return nil, backend("get profile", err)
	}
	resp := profile.ToResponse()
	return &resp, nil
}
