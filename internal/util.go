package internal

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
)

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func logAction(db execer, actorID *int, action, details string) {
	_, _ = db.Exec(context.Background(),
		"INSERT INTO logs(actor_id, action, details) VALUES ($1,$2,$3)",
		actorID, action, details,
	)
}
