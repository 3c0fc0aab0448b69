package user

import (
	"context"
	"crypto/md5"
	"fmt"
	"io"
	"sync"
	"time"
	c "verifyme/internal/core/domain/common"
)

type SentActivationCode struct {
	Email c.Email
	Code  ActivationCode
}

type FakeActivationCodeSender struct {
	Sent        []SentActivationCode
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeActivationCodeSender() *FakeActivationCodeSender {
	return &FakeActivationCodeSender{}
}

func (s *FakeActivationCodeSender) SendActivationCode(ctx context.Context, email c.Email, code ActivationCode) error {
	if s.ReturnError {
		return fmt.Errorf("could not send activation code to %s", email)
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.Sent = append(s.Sent, SentActivationCode{Email: email, Code: code})
	return nil
}

func (s *FakeActivationCodeSender) SentCount() int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return len(s.Sent)
}

func (s *FakeActivationCodeSender) LastSent() SentActivationCode {
	s.lock.Lock()
	defer s.lock.Unlock()
	l := len(s.Sent)
	if l == 0 {
		panic("Sent count is 0.")
	}
	return s.Sent[l-1]
}

type FakeActivationCodeGenerator struct {
	Code        ActivationCode
	ReturnError bool
}

func NewFakeActivationCodeGenerator(code string) *FakeActivationCodeGenerator {
	return &FakeActivationCodeGenerator{Code: ActivationCode(code)}
}

func (g *FakeActivationCodeGenerator) GenerateActivationCode() (ActivationCode, error) {
	if g.ReturnError {
		return "", fmt.Errorf("could not generate activation code")
	}
	return g.Code, nil
}

type FakePasswordHasher struct {
	HashCount int
	lock      sync.Mutex
}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	h.lock.Lock()
	h.HashCount++
	h.lock.Unlock()
	return h.hash(password), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	return h.hash(password) == hash
}

func (h *FakePasswordHasher) hash(password RawPassword) PasswordHash {
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil)))
}

type FakeUserRepository struct {
	Users             map[c.Email]User
	ReturnError       bool
	ActivateCallCount int
	lock              sync.Mutex
}

func NewFakeUserRepository() *FakeUserRepository {
	return &FakeUserRepository{Users: make(map[c.Email]User)}
}

func (r *FakeUserRepository) Create(ctx context.Context, input CreateUserInput) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not create user %s", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, ok := r.Users[input.Email]; ok {
		return u, ErrEmailAlreadyExists
	}
	u = User{
		Email:               input.Email,
		PasswordHash:        input.PasswordHash,
		Status:              StatusPending,
		ActivationCode:      c.NewOptional(input.ActivationCode, true),
		ActivationExpiresAt: c.NewOptional(input.ActivationExpiresAt, true),
		CreatedAt:           input.CreatedAt,
	}
	r.Users[u.Email] = u
	return u, nil
}

func (r *FakeUserRepository) GetByEmail(ctx context.Context, email c.Email) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not get user %s", email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	u, ok := r.Users[email]
	if !ok {
		return u, ErrUserDoesNotExist
	}
	return u, nil
}

func (r *FakeUserRepository) Activate(ctx context.Context, input ActivateUserInput) (u User, err error) {
	if r.ReturnError {
		return u, fmt.Errorf("could not activate user %s", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	r.ActivateCallCount++
	u, ok := r.Users[input.Email]
	if !ok {
		return u, ErrUserDoesNotExist
	}
	if u.IsActive() {
		return u, ErrUserAlreadyActive
	}
	if !u.ActivationCode.IsPresent || u.ActivationCode.Value != input.ActivationCode {
		return u, ErrInvalidActivationCode
	}
	u.Status = StatusActive
	u.ActivatedAt = c.NewOptional(input.At, true)
	u.ActivationCode = c.None[ActivationCode]()
	u.ActivationExpiresAt = c.None[time.Time]()
	r.Users[u.Email] = u
	return u, nil
}
