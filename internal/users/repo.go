package users

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

var (
	ErrUserNotFound = apperr.New(apperr.ErrNotFound, "user not found")
	ErrEmailTaken   = apperr.New(apperr.ErrInvalidInput, "email already registered")
)

const userColumns = `id, name, email, password_hash, COALESCE(age, 0), COALESCE(gender, ''),
	COALESCE(height, 0), COALESCE(weight, 0), created_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, params NewUserParams) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	params.Email = NormalizeEmail(params.Email)
	if err := params.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO users (name, email, password_hash, age, gender, height, weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING `+userColumns+`;`,
		params.Name, params.Email, params.PasswordHash, params.Age, params.Gender, params.HeightCm, params.WeightKg,
	)
	if err != nil {
		return nil, apperr.Store("insert user", err)
	}
	defer rows.Close()

	users, err := rows2users(rows)
	if err != nil {
		if pkg.IsUniqueViolationError(err) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Store("insert user", err)
	}
	if len(users) != 1 {
		return nil, apperr.Store("insert user", errors.New("unexpected error [no rows returned]"))
	}

	span.SetAttributes(attribute.Int("user.id", users[0].ID))
	return &users[0], nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
}

func (r *Repo) GetByEmail(ctx context.Context, email string) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.get-by-email")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, NormalizeEmail(email))
}

func (r *Repo) UpdateProfile(ctx context.Context, id int, profile Profile) (_ *User, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.users.update-profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", id))

	if err := profile.Validate(); err != nil {
		return nil, err
	}

	return r.getOne(
		ctx,
		`UPDATE users SET name = $1, age = $2, gender = $3, height = $4, weight = $5
			WHERE id = $6
			RETURNING `+userColumns+`;`,
		profile.Name, profile.Age, profile.Gender, profile.HeightCm, profile.WeightKg, id,
	)
}

func (r *Repo) getOne(ctx context.Context, sql string, args ...any) (*User, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Store("query user", err)
	}
	defer rows.Close()

	users, err := rows2users(rows)
	if err != nil {
		return nil, apperr.Store("scan user", err)
	}
	if len(users) != 1 {
		return nil, ErrUserNotFound
	}

	return &users[0], nil
}

func rows2users(rows pgx.Rows) ([]User, error) {
	users := []User{}
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Age, &u.Gender,
			&u.HeightCm, &u.WeightKg, &u.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
