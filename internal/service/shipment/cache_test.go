package shipment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquaexport/seatrace/internal/domain/models"
)

func TestSessionCacheSelectReturnsPrevious(t *testing.T) {
	cache := NewSessionCache()

	previous := cache.Select(models.Shipment{ID: "ship-1"})
	assert.Equal(t, "", previous)

	previous = cache.Select(models.Shipment{ID: "ship-2"})
	assert.Equal(t, "ship-1", previous)

	current, ok := cache.Current()
	require.True(t, ok)
	assert.Equal(t, "ship-2", current.ID)
}

func TestSessionCacheReset(t *testing.T) {
	cache := NewSessionCache()
	cache.Select(models.Shipment{ID: "ship-1"})
	cache.Reset()

	_, ok := cache.Current()
	assert.False(t, ok)
}

func TestSessionCacheDrainTouched(t *testing.T) {
	cache := NewSessionCache()
	cache.Select(models.Shipment{ID: "ship-1"})
	cache.Select(models.Shipment{ID: "ship-2"})
	cache.MarkTouched("ship-3")
	cache.MarkTouched("")

	touched := cache.DrainTouched()
	assert.ElementsMatch(t, []string{"ship-1", "ship-2", "ship-3"}, touched)

	// Drained means drained.
	assert.Empty(t, cache.DrainTouched())
}

func TestSessionCacheResetKeepsTouchedHistory(t *testing.T) {
	cache := NewSessionCache()
	cache.Select(models.Shipment{ID: "ship-1"})
	cache.Reset()

	assert.ElementsMatch(t, []string{"ship-1"}, cache.DrainTouched())
}
