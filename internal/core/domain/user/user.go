package user

import (
	"errors"
	"fmt"
	"time"
	c "verifyme/internal/core/domain/common"
	e "verifyme/internal/core/domain/errors"
)

type PasswordHash string

func (p PasswordHash) String() string {
	return "***"
}

type RawPassword string

func (p RawPassword) String() string {
	return "***"
}

// ActivationCode is a zero-padded 4-digit string, "0000" to "9999".
type ActivationCode string

const ActivationCodeLength = 4

func (code ActivationCode) IsWellFormed() bool {
	if len(code) != ActivationCodeLength {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

var ErrParseStatus = errors.New("invalid user status")

type Status struct {
	v string
}

func (s Status) String() string {
	return s.v
}

func ParseStatus(value string) (Status, error) {
	switch value {
	case "pending":
		return StatusPending, nil
	case "active":
		return StatusActive, nil
	default:
		return StatusUnknown, ErrParseStatus
	}
}

var (
	StatusUnknown = Status{}
	StatusPending = Status{v: "pending"}
	StatusActive  = Status{v: "active"}
)

type User struct {
	Email               c.Email
	PasswordHash        PasswordHash
	Status              Status
	ActivationCode      c.Optional[ActivationCode]
	ActivationExpiresAt c.Optional[time.Time]
	CreatedAt           time.Time
	ActivatedAt         c.Optional[time.Time]
}

func (u *User) Validate() error {
	if u.Email == "" {
		return e.NewInvalidStateError("email is not set for user")
	}
	if u.PasswordHash == "" {
		return e.NewInvalidStateError(fmt.Sprintf("password hash is not set for user %s", u.Email))
	}
	switch u.Status {
	case StatusPending:
		if !u.ActivationCode.IsPresent {
			return e.NewInvalidStateError(fmt.Sprintf("activation code is not set for pending user %s", u.Email))
		}
	case StatusActive:
		if u.ActivationCode.IsPresent {
			return e.NewInvalidStateError(fmt.Sprintf("activation code is still set for active user %s", u.Email))
		}
	default:
		return e.NewInvalidStateError(fmt.Sprintf("unknown status of user %s", u.Email))
	}
	return nil
}

func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// IsActivationCodeExpired reports whether the code can no longer be used at the moment.
// A pending user without an expiration time never expires.
func (u *User) IsActivationCodeExpired(at time.Time) bool {
	if !u.ActivationExpiresAt.IsPresent {
		return false
	}
	return at.After(u.ActivationExpiresAt.Value)
}
