package maintenance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// StartTokenPurge runs a background loop that deletes consumed and expired
// password reset tokens. It stops when ctx is cancelled.
func StartTokenPurge(ctx context.Context, db *pgxpool.Pool, interval time.Duration, log zerolog.Logger) {
	logger := log.With().Str("component", "token_purge").Logger()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logger.Info().Msg("token purge stopped")
				return
			case <-ticker.C:
				purgeOnce(ctx, db, logger)
			}
		}
	}()
}

func purgeOnce(ctx context.Context, db *pgxpool.Pool, logger zerolog.Logger) {
	tag, err := db.Exec(ctx, `
		DELETE FROM password_reset_tokens
		WHERE used = true OR expires_at < NOW()
	`)
	if err != nil {
		logger.Error().Err(err).Msg("failed to purge reset tokens")
		return
	}
	if tag.RowsAffected() > 0 {
		logger.Info().Int64("purged", tag.RowsAffected()).Msg("purged stale reset tokens")
	}
}
