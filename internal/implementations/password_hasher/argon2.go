package passwordhasher

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"verifyme/internal/core/domain/user"

	"golang.org/x/crypto/argon2"
)

var errInvalidArgon2Hash = errors.New("invalid argon2id hash")

type Argon2Params struct {
	Time      uint32
	MemoryKiB uint32
	Threads   uint8
	SaltLen   uint32
	KeyLen    uint32
}

var DefaultArgon2Params = Argon2Params{
	Time:      1,
	MemoryKiB: 64 * 1024,
	Threads:   4,
	SaltLen:   16,
	KeyLen:    32,
}

// Argon2 produces PHC formatted hashes:
// $argon2id$v=19$m=65536,t=1,p=4$<salt>$<key>
type Argon2 struct {
	secret string
	params Argon2Params
}

func NewArgon2(secret string, params Argon2Params) *Argon2 {
	return &Argon2{secret: secret, params: params}
}

func (h *Argon2) HashPassword(password user.RawPassword) (hash user.PasswordHash, err error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return hash, err
	}
	key := argon2.IDKey(
		[]byte(string(password)+h.secret),
		salt,
		h.params.Time,
		h.params.MemoryKiB,
		h.params.Threads,
		h.params.KeyLen,
	)
	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.MemoryKiB,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return user.PasswordHash(encoded), nil
}

// ValidatePassword uses the parameters stored in the hash, so hashes created
// with older parameters stay valid.
func (h *Argon2) ValidatePassword(password user.RawPassword, hash user.PasswordHash) bool {
	params, salt, key, err := decodeArgon2Hash(string(hash))
	if err != nil {
		return false
	}
	actual := argon2.IDKey(
		[]byte(string(password)+h.secret),
		salt,
		params.Time,
		params.MemoryKiB,
		params.Threads,
		params.KeyLen,
	)
	return subtle.ConstantTimeCompare(key, actual) == 1
}

func decodeArgon2Hash(encoded string) (params Argon2Params, salt []byte, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return params, nil, nil, errInvalidArgon2Hash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return params, nil, nil, errInvalidArgon2Hash
	}
	if version != argon2.Version {
		return params, nil, nil, errInvalidArgon2Hash
	}
	if _, err := fmt.Sscanf(
		parts[3],
		"m=%d,t=%d,p=%d",
		&params.MemoryKiB,
		&params.Time,
		&params.Threads,
	); err != nil {
		return params, nil, nil, errInvalidArgon2Hash
	}
	// argon2.IDKey panics on zero rounds or threads.
	if params.Time == 0 || params.Threads == 0 || params.MemoryKiB == 0 {
		return params, nil, nil, errInvalidArgon2Hash
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return params, nil, nil, errInvalidArgon2Hash
	}
	key, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 {
		return params, nil, nil, errInvalidArgon2Hash
	}
	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(key))
	return params, salt, key, nil
}
