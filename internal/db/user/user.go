package user

import (
	"context"
	"errors"
	"time"
	c "verifyme/internal/core/domain/common"
	"verifyme/internal/core/domain/user"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"
const EMAIL_CONSTRAINT_NAME = "user_pkey"

const userColumns = `email, password_hash, status, activation_code, activation_expires_at, created_at, activated_at`

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgxUserRepository struct {
	db DBTX
}

func NewPgxRepository(db DBTX) *PgxUserRepository {
	if db == nil {
		panic("Argument db must not be nil.")
	}
	return &PgxUserRepository{db: db}
}

func (r *PgxUserRepository) Create(ctx context.Context, input user.CreateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`INSERT INTO "user" (email, password_hash, status, activation_code, activation_expires_at, created_at)
		VALUES ($1, $2, 'pending', $3, $4, $5)
		RETURNING `+userColumns,
		string(input.Email),
		string(input.PasswordHash),
		string(input.ActivationCode),
		input.ActivationExpiresAt,
		input.CreatedAt,
	)
	u, err = scanUser(row)

	var errEmailUniqueConstraint *pgconn.PgError
	if errors.As(err, &errEmailUniqueConstraint) {
		if errEmailUniqueConstraint.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE &&
			errEmailUniqueConstraint.ConstraintName == EMAIL_CONSTRAINT_NAME {
			return u, user.ErrEmailAlreadyExists
		}
	}
	if err != nil {
		return u, err
	}
	err = u.Validate()
	if err != nil {
		return u, err
	}
	return u, nil
}

func (r *PgxUserRepository) GetByEmail(ctx context.Context, email c.Email) (u user.User, err error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM "user" WHERE email = $1`, string(email))
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return u, user.ErrUserDoesNotExist
	}
	if err != nil {
		return u, err
	}
	err = u.Validate()
	if err != nil {
		return u, err
	}
	return u, nil
}

// Activate is a single conditional update, so concurrent calls for the same
// user have exactly one winner.
func (r *PgxUserRepository) Activate(ctx context.Context, input user.ActivateUserInput) (u user.User, err error) {
	row := r.db.QueryRow(
		ctx,
		`UPDATE "user"
		SET status = 'active', activation_code = NULL, activation_expires_at = NULL, activated_at = $3
		WHERE email = $1 AND status = 'pending' AND activation_code = $2
		RETURNING `+userColumns,
		string(input.Email),
		string(input.ActivationCode),
		input.At,
	)
	u, err = scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.explainActivationFailure(ctx, input.Email)
	}
	if err != nil {
		return u, err
	}
	err = u.Validate()
	if err != nil {
		return u, err
	}
	return u, nil
}

func (r *PgxUserRepository) explainActivationFailure(ctx context.Context, email c.Email) (u user.User, err error) {
	u, err = r.GetByEmail(ctx, email)
	if err != nil {
		return u, err
	}
	if u.IsActive() {
		return u, user.ErrUserAlreadyActive
	}
	return u, user.ErrInvalidActivationCode
}

func scanUser(row pgx.Row) (u user.User, err error) {
	var (
		email               string
		passwordHash        string
		status              string
		activationCode      pgtype.BPChar
		activationExpiresAt pgtype.Timestamptz
		createdAt           time.Time
		activatedAt         pgtype.Timestamptz
	)
	err = row.Scan(
		&email,
		&passwordHash,
		&status,
		&activationCode,
		&activationExpiresAt,
		&createdAt,
		&activatedAt,
	)
	if err != nil {
		return u, err
	}
	parsedStatus, err := user.ParseStatus(status)
	if err != nil {
		return u, err
	}
	return user.User{
		Email:               c.Email(email),
		PasswordHash:        user.PasswordHash(passwordHash),
		Status:              parsedStatus,
		ActivationCode:      decodeActivationCode(activationCode),
		ActivationExpiresAt: decodeOptionalTime(activationExpiresAt),
		CreatedAt:           createdAt.UTC(),
		ActivatedAt:         decodeOptionalTime(activatedAt),
	}, nil
}

func decodeActivationCode(code pgtype.BPChar) c.Optional[user.ActivationCode] {
	return c.NewOptional(user.ActivationCode(code.String), code.Status == pgtype.Present)
}

func decodeOptionalTime(at pgtype.Timestamptz) c.Optional[time.Time] {
	return c.NewOptional(at.Time.UTC(), at.Status == pgtype.Present)
}
