package dto

import (
	"time"

	"userauth/internal/domain"
)

// UserView is the public projection of a user. It never carries the password
// hash or reset state.
type UserView struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         *string   `json:"name"`
	Avatar       *string   `json:"avatar"`
	IsVerified   bool      `json:"isVerified"`
	GoogleLinked bool      `json:"googleLinked"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewUserView(u *domain.User) UserView {
	return UserView{
		ID:           u.ID.String(),
		Email:        u.Email,
		Name:         u.Name,
		Avatar:       u.Avatar,
		IsVerified:   u.IsVerified,
		GoogleLinked: u.HasGoogle(),
		CreatedAt:    u.CreatedAt,
	}
}
