package model

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Profile is a team member able to sign in to the dashboard.
type Profile struct {
	BaseModel
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string     `gorm:"type:varchar(100)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(100)" json:"last_name"`
	Role         Role       `gorm:"type:varchar(20);not null;default:'staff'" json:"role"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	TokenVersion string     `gorm:"type:varchar(64);default:''" json:"-"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// SetPassword hashes and sets the profile's password
func (p *Profile) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	p.Password = string(hashed)
	return nil
}

// CheckPassword verifies if the provided password matches the stored hash
func (p *Profile) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)) == nil
}

func (p *Profile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfileResponse is used for API responses (without sensitive data)
type ProfileResponse struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	Capabilities []Action   `json:"capabilities"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func (p *Profile) ToResponse() ProfileResponse {
	return ProfileResponse{
		ID:           p.ID.String(),
		Email:        p.Email,
		FirstName:    p.FirstName,
		LastName:     p.LastName,
		Role:         p.Role,
		IsActive:     p.IsActive,
		Capabilities: CapabilitiesOf(p.Role),
		LastLoginAt:  p.LastLoginAt,
		CreatedAt:    p.CreatedAt,
	}
}
