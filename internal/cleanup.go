package internal

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// StartCleaner schedules the daily orphan sweep: inscriptions older than a
// day with no game association and no recorded attendance are leftovers from
// interrupted submissions and get deleted. With transactional registration
// these should not appear; the sweep is the backstop.
func StartCleaner(db *pgxpool.Pool, logger *zap.Logger) {
	c := cron.New()

	_, _ = c.AddFunc("@daily", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		tag, err := db.Exec(ctx,
			`DELETE FROM inscripciones i
			 WHERE i.created_at <= now() - interval '24 hours'
			   AND i.asistencia = false
			   AND NOT EXISTS (SELECT 1 FROM juegos_inscripciones ji WHERE ji.inscripcion_id = i.id)`)
		if err != nil {
			logger.Error("orphan inscription sweep failed", zap.Error(err))
			return
		}
		if n := tag.RowsAffected(); n > 0 {
			logger.Info("orphan inscriptions deleted", zap.Int64("rows", n))
		}
	})

	c.Start()
}
