package chat

import (
	"context"
	"errors"
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

func (r *Repo) Add(ctx context.Context, chatLog Log) (_ *Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if err := chatLog.Validate(); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(
		ctx,
		`INSERT INTO chat_logs (user_id, topic, user_message, bot_reply)
			VALUES ($1, $2, $3, $4)
			RETURNING id, timestamp;`,
		chatLog.UserID, chatLog.Topic, chatLog.UserMessage, chatLog.BotReply,
	)
	if err != nil {
		return nil, apperr.Store("insert chat log", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			if pkg.IsForeignKeyViolationError(err) {
				return nil, apperr.NotFound("user %d", chatLog.UserID)
			}
			return nil, apperr.Store("insert chat log", err)
		}
		return nil, apperr.Store("insert chat log", errors.New("unexpected error [no rows next]"))
	}

	if err := rows.Scan(&chatLog.ID, &chatLog.Timestamp); err != nil {
		return nil, apperr.Store("insert chat log, rows scan", err)
	}

	span.SetAttributes(attribute.Int("chat_log.id", chatLog.ID))
	return &chatLog, nil
}

// ListRecent returns the latest chat turns of a user, newest first.
func (r *Repo) ListRecent(ctx context.Context, userID, limit int) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.list-recent")
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
		`SELECT id, user_id, topic, user_message, bot_reply, timestamp
			FROM chat_logs
			WHERE user_id = $1
			ORDER BY timestamp DESC, id DESC
			LIMIT $2;`,
		userID, limit,
	)
	if err != nil {
		return nil, apperr.Store("list recent chat logs", err)
	}
	defer rows.Close()

	logs, err := rows2logs(rows)
	if err != nil {
		return nil, apperr.Store("list recent chat logs", err)
	}

	return logs, nil
}

// ListSince returns the chat turns at or after since, oldest first.
func (r *Repo) ListSince(ctx context.Context, userID int, since time.Time) (_ []Log, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.list-since")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user.id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, user_id, topic, user_message, bot_reply, timestamp
			FROM chat_logs
			WHERE user_id = $1 AND timestamp >= $2
			ORDER BY timestamp ASC, id ASC;`,
		userID, since,
	)
	if err != nil {
		return nil, apperr.Store("list chat logs since", err)
	}
	defer rows.Close()

	logs, err := rows2logs(rows)
	if err != nil {
		return nil, apperr.Store("list chat logs since", err)
	}

	return logs, nil
}

func (r *Repo) Count(ctx context.Context, userID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.chat.count")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var count int
	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM chat_logs WHERE user_id = $1;`,
		userID,
	).Scan(&count); err != nil {
		return 0, apperr.Store("count chat logs", err)
	}

	return count, nil
}

func rows2logs(rows pgx.Rows) ([]Log, error) {
	logs := []Log{}
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.UserID, &l.Topic, &l.UserMessage, &l.BotReply, &l.Timestamp); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}
