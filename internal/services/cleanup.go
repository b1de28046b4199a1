package services

import (
	"context"
	"log"
	"time"

	"github.com/therapease/therapease-backend/internal/store"
)

// StartBlocklistCleanup periodically deletes blocklist rows older than maxAge.
// A revoked token older than the token lifetime is already rejected by the
// expiry check, so pruning it does not re-admit anything.
func StartBlocklistCleanup(blocklist store.BlocklistStore, interval, maxAge time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		pruneBlocklist(blocklist, maxAge)

		// Then run periodically
		for range ticker.C {
			pruneBlocklist(blocklist, maxAge)
		}
	}()
}

func pruneBlocklist(blocklist store.BlocklistStore, maxAge time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pruned, err := blocklist.PruneBefore(ctx, time.Now().Add(-maxAge))
	if err != nil {
		log.Printf("⚠️  Blocklist cleanup failed: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Blocklist cleanup removed %d expired token(s)", pruned)
	}
}
