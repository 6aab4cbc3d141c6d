package model

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const bcryptCost = 10

// Roles assignable to a user.
const (
	RoleUser    = "user"
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin || role == RoleManager
}

// ResetTokenTTL is how long a password reset token stays valid.
const ResetTokenTTL = 20 * time.Minute

// Photo references an image hosted on the external image store.
type Photo struct {
	ID  string `json:"id" gorm:"column:photo_id;size:255"`
	URL string `json:"secure_url" gorm:"column:photo_url;size:512"`
}

// User represents a store customer or staff member.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	Name         string    `json:"name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role         string    `json:"role" gorm:"size:50;default:'user'"`
	Photo        Photo     `json:"photo" gorm:"embedded"`

	// Password reset state. Token holds the SHA-256 hex of the raw
	// secret; token and expiry are always set or cleared together.
	ForgotPasswordToken  *string    `json:"-" gorm:"size:64;index"`
	ForgotPasswordExpiry *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// SetPassword replaces the stored hash with a bcrypt hash of password.
// Every password write goes through here so the plaintext is never
// persisted.
func (u *User) SetPassword(password string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hashed)
	return nil
}

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// NewResetToken generates a random reset secret, stores its hash and an
// expiry on the user, and returns the raw secret for mailing. The caller
// still has to persist the user.
func (u *User) NewResetToken(now time.Time) (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	raw := hex.EncodeToString(buf)
	hashed := HashResetToken(raw)
	expiry := now.Add(ResetTokenTTL)
	u.ForgotPasswordToken = &hashed
	u.ForgotPasswordExpiry = &expiry
	return raw, nil
}

// ClearResetToken drops the token and expiry together.
func (u *User) ClearResetToken() {
	u.ForgotPasswordToken = nil
	u.ForgotPasswordExpiry = nil
}

// HashResetToken returns the stored form of a raw reset secret.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
