package db

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"contribgraph/logger"
)

// logDebug logs at debug level when the logger is initialized
func logDebug(msg string, fields ...zap.Field) {
	if logger.GetLogger() != nil {
		logger.Debug(msg, fields...)
	}
}

// StartJanitor starts a goroutine that purges expired cache entries every
// interval until ctx is done. Close waits for it to exit.
func (db *DB) StartJanitor(ctx context.Context, interval time.Duration) {
	db.janitor.Add(1)
	go func() {
		defer db.janitor.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				db.purgeOnce(ctx)
			}
		}
	}()
}

func (db *DB) purgeOnce(ctx context.Context) {
	purged, err := db.PurgeExpired(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if logger.GetLogger() != nil {
			logger.Error("Error purging expired cache entries", zap.Error(err))
		} else {
			log.Printf("Error purging expired cache entries: %v", err)
		}
		return
	}
	if purged > 0 {
		safeLogInfo("Purged expired cache entries", zap.Int64("count", purged))
	}
}
