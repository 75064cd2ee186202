package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/garciaurbina83/Rental-Properties-New-sub000/internal/infrastructure/clock"
)

func TestSystem_ReturnsUTC(t *testing.T) {
	before := time.Now()
	now := clock.System{}.Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.False(t, now.Before(before.Add(-time.Second)))
}

func TestFixed(t *testing.T) {
	at := time.Date(2024, 3, 31, 23, 0, 0, 0, time.FixedZone("X", 3600))
	c := clock.Fixed(at)
	assert.True(t, c.Now().Equal(at))
	assert.Equal(t, time.UTC, c.Now().Location())
}
