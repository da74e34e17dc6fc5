package goals

import (
	"context"
	"errors"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/fitassist/internal/apperr"
	"github.com/2beens/fitassist/internal/telemetry/tracing"
	"github.com/2beens/fitassist/pkg"
)

var ErrGoalNotFound = apperr.New(apperr.ErrNotFound, "goal not found")

const goalColumns = `id, user_id, goal_type, target_value, current_value, start_date, end_date, status`

// Repo is the goal store. Every call is a single statement on a pooled connection,
// so a progress update followed by a status update are two separate commits.
type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Create stores a new goal with current value 0 and status active.
func (r *Repo) Create(ctx context.Context, params NewGoalParams) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", params.UserID))

	if err := params.Validate(); err != nil {
		return nil, err
	}

	goal, err := r.queryOne(
		ctx,
		"insert goal",
		`INSERT INTO goals (user_id, goal_type, target_value, current_value, start_date, end_date, status)
			VALUES ($1, $2, $3, 0, $4, $5, $6)
			RETURNING `+goalColumns+`;`,
		params.UserID, NormalizeGoalType(params.GoalType), params.TargetValue,
		DateOnly(params.StartDate), DateOnly(params.EndDate), string(StatusActive),
	)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return nil, apperr.NotFound("user %d", params.UserID)
		}
		if pkg.IsCheckViolationError(err) {
			return nil, apperr.InvalidInput("goal rejected: %s", err)
		}
		return nil, err
	}

	span.SetAttributes(attribute.Int("goal.id", goal.ID))
	return goal, nil
}

func (r *Repo) Get(ctx context.Context, goalID int) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("goal.id", goalID))

	return r.queryOne(ctx, "get goal", `SELECT `+goalColumns+` FROM goals WHERE id = $1;`, goalID)
}

func (r *Repo) UpdateProgress(ctx context.Context, goalID int, current float64) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.update-progress")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("goal.id", goalID))
	span.SetAttributes(attribute.Float64("goal.current", current))

	if current < 0 || math.IsNaN(current) {
		return nil, apperr.InvalidInput("current value must not be negative, got %v", current)
	}

	return r.queryOne(
		ctx,
		"update goal progress",
		`UPDATE goals SET current_value = $1 WHERE id = $2 RETURNING `+goalColumns+`;`,
		current, goalID,
	)
}

// UpdateStatus sets any of the four statuses, there is no transition graph.
func (r *Repo) UpdateStatus(ctx context.Context, goalID int, status Status) (_ *Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.update-status")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("goal.id", goalID))
	span.SetAttributes(attribute.String("goal.status", string(status)))

	if !status.IsValid() {
		return nil, apperr.InvalidInput("unknown goal status: %q", status)
	}

	return r.queryOne(
		ctx,
		"update goal status",
		`UPDATE goals SET status = $1 WHERE id = $2 RETURNING `+goalColumns+`;`,
		string(status), goalID,
	)
}

// List returns the goals of a user, latest start date first.
func (r *Repo) List(ctx context.Context, userID int, filter Filter) (_ []Goal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.goals.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))
	span.SetAttributes(attribute.String("filter", string(filter)))

	var onlyActive bool
	switch filter {
	case FilterAll:
	case FilterActive:
		onlyActive = true
	default:
		return nil, apperr.InvalidInput("unknown goals filter: %q", filter)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+goalColumns+`
			FROM goals
			WHERE user_id = $1
				AND ($2::boolean IS FALSE OR status = 'active')
			ORDER BY start_date DESC, id DESC;`,
		userID, onlyActive,
	)
	if err != nil {
		return nil, apperr.Store("list goals", err)
	}
	defer rows.Close()

	goals, err := rows2goals(rows)
	if err != nil {
		return nil, apperr.Store("list goals", err)
	}

	span.SetAttributes(attribute.Int("goals.count", len(goals)))
	return goals, nil
}

func (r *Repo) queryOne(ctx context.Context, op, sql string, args ...any) (*Goal, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Store(op, err)
	}
	defer rows.Close()

	goals, err := rows2goals(rows)
	if err != nil {
		return nil, apperr.Store(op, err)
	}

	switch len(goals) {
	case 0:
		return nil, ErrGoalNotFound
	case 1:
		return &goals[0], nil
	default:
		return nil, apperr.Store(op, errors.New("unexpected error [more than one row]"))
	}
}

func rows2goals(rows pgx.Rows) ([]Goal, error) {
	goals := []Goal{}
	for rows.Next() {
		var g Goal
		var status string
		if err := rows.Scan(
			&g.ID, &g.UserID, &g.GoalType, &g.TargetValue, &g.CurrentValue,
			&g.StartDate, &g.EndDate, &status,
		); err != nil {
			return nil, err
		}
		g.Status = Status(status)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return goals, nil
}
