package workouts

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

const MaxListLimit = 100

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, workout Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	workout.Exercise = strings.TrimSpace(workout.Exercise)
	if err := workout.Validate(); err != nil {
		return nil, err
	}
	if workout.Date.IsZero() {
		workout.Date = time.Now()
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO workouts (user_id, date, exercise, duration, calories_burned)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, date;`,
		workout.UserID, workout.Date, workout.Exercise, workout.DurationMin, workout.CaloriesBurned,
	)
	if err != nil {
		return nil, apperr.Store("insert workout", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return nil, apperr.NotFound("user %d", workout.UserID)
			}
			if pkg.IsCheckViolationError(err) {
				return nil, apperr.InvalidInput("workout rejected: %s", err)
			}
			return nil, apperr.Store("insert workout", err)
		}
		return nil, apperr.Store("insert workout", errors.New("unexpected error [no rows next]"))
	}

	if err := rows.Scan(&workout.ID, &workout.Date); err != nil {
		return nil, apperr.Store("insert workout, rows scan", err)
	}

	span.SetAttributes(attribute.Int("workout.id", workout.ID))
	return &workout, nil
}

// ListRecent returns the latest workouts of a user, newest first.
func (r *Repo) ListRecent(ctx context.Context, userID, limit int) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list-recent")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.Int("limit", limit))

	if limit <= 0 || limit > MaxListLimit {
		return nil, apperr.InvalidInput("limit must be in [1, %d], got %d", MaxListLimit, limit)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, date, exercise, duration, COALESCE(calories_burned, 0)
			FROM workouts
			WHERE user_id = $1
			ORDER BY date DESC, id DESC
			LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, apperr.Store("list recent workouts", err)
	}
	defer rows.Close()

	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, apperr.Store("list recent workouts", err)
	}

	return workouts, nil
}

// ListSince returns the workouts dated on or after since, oldest first.
func (r *Repo) ListSince(ctx context.Context, userID int, since time.Time) (_ []Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list-since")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("since", since.Format(time.DateOnly)))

	// compare on the caller's calendar date, whatever zone since is in
	y, m, d := since.Date()
	sinceDate := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, date, exercise, duration, COALESCE(calories_burned, 0)
			FROM workouts
			WHERE user_id = $1 AND date >= $2::date
			ORDER BY date ASC, id ASC;`,
		userID, sinceDate,
	)
	if err != nil {
		return nil, apperr.Store("list workouts since", err)
	}
	defer rows.Close()

	workouts, err := rows2workouts(rows)
	if err != nil {
		return nil, apperr.Store("list workouts since", err)
	}

	return workouts, nil
}

func rows2workouts(rows pgx.Rows) ([]Workout, error) {
	workouts := []Workout{}
	for rows.Next() {
		var w Workout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Date, &w.Exercise, &w.DurationMin, &w.CaloriesBurned); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return workouts, nil
}
