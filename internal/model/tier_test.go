package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierNormalize(t *testing.T) {
	assert.Equal(t, TierStandard, Tier("").Normalize())
	assert.Equal(t, TierJustice, TierJustice.Normalize())
	assert.Equal(t, "standard", Tier("").String())
}

func TestTierValid(t *testing.T) {
	for _, tier := range Tiers {
		assert.True(t, tier.Valid(), tier)
	}
	assert.False(t, Tier("").Valid())
	assert.False(t, Tier("Justice").Valid())
}
