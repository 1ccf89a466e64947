package models

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrEmptyPassword is returned when hashing an empty password
var ErrEmptyPassword = errors.New("password must not be empty")

// User represents an account that can log in
type User struct {
	ID           string `gorm:"primaryKey;column:id" json:"id"`
	Email        string `gorm:"column:email;size:254;not null;unique;index:idx_users_email" json:"email"`
	PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
	Active       bool   `gorm:"column:active;default:true" json:"active"`
	CreatedAt    int64  `gorm:"column:created_at;autoCreateTime:false;not null" json:"createdAt"`
	ModifiedAt   int64  `gorm:"column:modified_at;autoCreateTime:false;not null" json:"modifiedAt"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// NormalizeEmail lowercases and trims an email for storage and lookup
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// BeforeSave hook for User, runs on both create and update
func (u *User) BeforeSave(tx *gorm.DB) error {
	u.Email = NormalizeEmail(u.Email)
	return nil
}

// BeforeCreate hook for User
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now().Unix()
	if u.ID == "" {
		u.ID = "user-" + uuid.NewString()
	}
	if u.CreatedAt == 0 {
		u.CreatedAt = now
	}
	if u.ModifiedAt == 0 {
		u.ModifiedAt = now
	}
	return nil
}

// BeforeUpdate hook for User
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.ModifiedAt = time.Now().Unix()
	return nil
}

// SetPassword replaces the stored hash with a bcrypt hash of plaintext
func (u *User) SetPassword(plaintext string) error {
	if plaintext == "" {
		return ErrEmptyPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword reports whether plaintext matches the stored hash
func (u *User) CheckPassword(plaintext string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plaintext)) == nil
}
