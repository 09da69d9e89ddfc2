// Package world is the read-only boundary to the location graph. The turn
// core consumes location summaries; it never writes world state.
package world

import (
	"context"
	"sync"

	apperrors "github.com/sablewood/chronicle/internal/platform/errors"
	"github.com/sablewood/chronicle/internal/storage"
	"github.com/sablewood/chronicle/internal/turn/domain"
)

// Directory supplies the current location summary for a character.
type Directory interface {
	LocationSummary(ctx context.Context, characterID string) (domain.Location, error)
}

// StaticDirectory is an in-memory Directory for tests and deployments
// without a world service.
type StaticDirectory struct {
	mu        sync.RWMutex
	locations map[string]domain.Location
}

// NewStaticDirectory creates an empty static directory.
func NewStaticDirectory() *StaticDirectory {
	return &StaticDirectory{locations: make(map[string]domain.Location)}
}

// Place records the location for a character.
func (d *StaticDirectory) Place(characterID string, location domain.Location) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.locations[characterID] = location
}

// LocationSummary returns the character's location. A character without a
// recorded location yields a coded error matching storage.ErrNotFound.
func (d *StaticDirectory) LocationSummary(ctx context.Context, characterID string) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, err
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	location, ok := d.locations[characterID]
	if !ok {
		return domain.Location{}, apperrors.Wrap(apperrors.CodeNotFound, "no location recorded for character", storage.ErrNotFound)
	}
	return location, nil
}
