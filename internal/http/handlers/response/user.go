package response

import (
	"verifyme/internal/core/domain/user"
)

const (
	UserStatusCreated   = "created"
	UserStatusActivated = "activated"
)

type User struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}

func (u *User) FromDomainUser(du user.User, status string) {
	u.Email = string(du.Email)
	u.Status = status
}
