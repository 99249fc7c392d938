// Package snapshot keeps the last food status the watcher observed and acted
// on for each (user, food) pair. Snapshots are device-local and never synced.
package snapshot

import (
	"context"

	"github.com/bradykim7/menza/internal/models"
)

// Key identifies a snapshot entry
type Key struct {
	UserID string
	FoodID string
}

// Store reads and writes status snapshots by exact key. Writes to different
// keys are independent; there are no multi-key transactions.
type Store interface {
	// Get returns the last status stored for key. found is false when no entry
	// exists or the stored value is not a known status.
	Get(ctx context.Context, key Key) (status models.FoodStatus, found bool, err error)

	// Set stores status as the new baseline for key
	Set(ctx context.Context, key Key, status models.FoodStatus) error

	// Prune deletes every entry of userID whose food is not in keep and
	// returns how many entries were removed
	Prune(ctx context.Context, userID string, keep []string) (int, error)
}

// decode turns a stored string back into a status
func decode(raw string) (models.FoodStatus, bool) {
	status := models.FoodStatus(raw)
	if !status.Valid() {
		return "", false
	}
	return status, true
}
