package shipment

import (
	"sync"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

// SessionCache holds the currently selected shipment. Many request handlers
// read it, only Select and Reset write it, so it behaves as a single-writer
// broadcast value rather than a contended resource.
//
// It also remembers which shipments were touched since the last scheduled
// sweep, so the reconciliation cron only re-scans shipments someone actually
// worked on.
type SessionCache struct {
	mu      sync.RWMutex
	current *models.Shipment
	touched map[string]struct{}
}

// NewSessionCache creates an empty cache.
func NewSessionCache() *SessionCache {
	return &SessionCache{touched: make(map[string]struct{})}
}

// Select makes the given shipment current and returns the ID of the
// shipment being left, or "" when nothing was selected. Switching shipments
// must go through here; there is no other write path.
func (c *SessionCache) Select(shipment models.Shipment) (previousID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		previousID = c.current.ID
	}
	copied := shipment
	c.current = &copied
	c.touched[shipment.ID] = struct{}{}
	return previousID
}

// Current returns the selected shipment, if any.
func (c *SessionCache) Current() (models.Shipment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.current == nil {
		return models.Shipment{}, false
	}
	return *c.current, true
}

// MarkTouched records activity against a shipment without changing the
// selection, e.g. a save addressed to a shipment by ID.
func (c *SessionCache) MarkTouched(shipmentID string) {
	if shipmentID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.touched[shipmentID] = struct{}{}
}

// DrainTouched returns the shipments touched since the previous drain and
// clears the set. The scheduled sweep is the only caller.
func (c *SessionCache) DrainTouched() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	ids := make([]string, 0, len(c.touched))
	for id := range c.touched {
		ids = append(ids, id)
	}
	c.touched = make(map[string]struct{})
	return ids
}

// Reset clears the selection, e.g. at logout. Touched history survives so
// the sweep still covers the abandoned shipment.
func (c *SessionCache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = nil
}
