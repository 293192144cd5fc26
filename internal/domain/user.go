package domain

import (
	"strings"
	"time"
)

type User struct {
	ID                  UserID     `gorm:"type:uuid;primaryKey" db:"id" json:"id"`
	Email               string     `gorm:"type:text;not null;uniqueIndex:ux_users_email" db:"email" json:"email"`
	Password            *string    `gorm:"type:text" db:"password" json:"-"`
	Name                *string    `gorm:"type:text" db:"name" json:"name"`
	Avatar              *string    `gorm:"type:text" db:"avatar" json:"avatar"`
	GoogleID            *string    `gorm:"type:text;uniqueIndex:ux_users_google_id" db:"google_id" json:"-"`
	IsVerified          bool       `gorm:"not null;default:false" db:"is_verified" json:"isVerified"`
	ResetPasswordOTP    *string    `gorm:"type:text" db:"reset_password_otp" json:"-"`
	ResetPasswordExpiry *time.Time `db:"reset_password_expiry" json:"-"`
	CreatedAt           time.Time  `gorm:"not null" db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `gorm:"not null" db:"updated_at" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// HasPassword reports whether the account can log in with a local password.
// OAuth-only accounts have none until they go through a password reset.
func (u *User) HasPassword() bool { return u.Password != nil && *u.Password != "" }

func (u *User) HasGoogle() bool { return u.GoogleID != nil && *u.GoogleID != "" }

// HasPendingOTP reports whether a reset code and its expiry are both attached.
func (u *User) HasPendingOTP() bool {
	return u.ResetPasswordOTP != nil && u.ResetPasswordExpiry != nil
}

// DisplayName returns the stored name or an empty string.
func (u *User) DisplayName() string {
	if u.Name == nil {
		return ""
	}
	return *u.Name
}

// NormalizeEmail trims and lower-cases an address so lookups and the unique
// index agree on one spelling per mailbox.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
