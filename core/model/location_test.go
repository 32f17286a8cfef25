package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocationConfig_SetDefaults(t *testing.T) {
	c := LocationConfig{ID: "loc", CancelTime: 5, QueueTimeLimit: -1}
	c.SetDefaults()
	assert.Equal(t, 5, c.CancelTime)
	assert.Equal(t, DefaultQueueTimeLimit, c.QueueTimeLimit)
	assert.Equal(t, DefaultInversionRangeFeet, c.InversionRangeFeet)
	assert.Equal(t, DefaultETAIncreaseLimit, c.ETAIncreaseLimit)
	assert.Equal(t, DefaultConcurrentRideLimit, c.ConcurrentRideLimit)
	assert.False(t, c.FleetEnabled)
}

func TestSettings_Defaults(t *testing.T) {
	s := Settings{DriverLimitSort: "random", InitialDriverLimit: -1}
	s.SetDefaults()
	assert.Equal(t, SortClosest, s.DriverLimitSort)
	assert.Equal(t, -1, s.InitialDriverLimit)
	assert.Equal(t, 10, s.FinalDriverLimit)
	assert.False(t, s.SkipDistanceTSP)
}

func TestLimit(t *testing.T) {
	assert.Equal(t, 3, Limit(3, 10))
	assert.Equal(t, 2, Limit(3, 2))
	assert.Equal(t, 3, Limit(3, -1))
	assert.Equal(t, 0, Limit(3, 0))
}
