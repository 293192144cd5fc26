package events

import "time"

type UserRegistered struct {
	UserID string    `json:"userId"`
	Email  string    `json:"email"`
	Method string    `json:"method"` // "password" or a provider name
	At     time.Time `json:"at"`
}

func (UserRegistered) EventName() string { return "user.registered" }

type AccountLinked struct {
	UserID   string    `json:"userId"`
	Provider string    `json:"provider"`
	At       time.Time `json:"at"`
}

func (AccountLinked) EventName() string { return "user.account_linked" }

type PasswordReset struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

func (PasswordReset) EventName() string { return "user.password_reset" }
