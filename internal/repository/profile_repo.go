package repository

import (
	"context"
	"time"

	"go-resto-ops/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *model.Profile) error
	FindAll(ctx context.Context) ([]model.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	FindByEmail(ctx context.Context, email string) (*model.Profile, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	RecordLogin(ctx context.Context, id uuid.UUID, tokenVersion string, at time.Time) error
	Count(ctx context.Context) (int64, error)
}

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db}
}

func (r *profileRepo) Create(ctx context.Context, profile *model.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *profileRepo) FindAll(ctx context.Context) ([]model.Profile, error) {
	var profiles []model.Profile
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&profiles).Error
	return profiles, err
}

func (r *profileRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) FindByEmail(ctx context.Context, email string) (*model.Profile, error) {
	var profile model.Profile
	if err := r.db.WithContext(ctx).First(&profile, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Profile{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *profileRepo) SetActive(ctx context.Context, id uuid.UUID, active bool, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  active,
			"updated_by": updatedBy,
		}).Error
}

func (r *profileRepo) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	return r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Update("password", hash).Error
}

// RecordLogin rotates the token version, which invalidates older sessions.
func (r *profileRepo) RecordLogin(ctx context.Context, id uuid.UUID, tokenVersion string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Profile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"token_version": tokenVersion,
			"last_login_at": at,
		}).Error
}

func (r *profileRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Profile{}).Count(&count).Error
	return count, err
}
