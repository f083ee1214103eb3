package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"toorak_vpn/internal/model"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		source         string
		tier           model.Tier
		classification model.Classification
	}{
		{
			name:           "legal_advisory",
			source:         "Toorak Village - Legal Advisory Group",
			tier:           model.TierJustice,
			classification: model.ClassificationConfidential,
		},
		{
			name:           "corporate_trust",
			source:         "ANZ Toorak Branch - Corporate Trust Services",
			tier:           model.TierJustice,
			classification: model.ClassificationConfidential,
		},
		{
			name:           "private_security",
			source:         "Capital Grand Toorak - Private Security Division",
			tier:           model.TierLawEnforcement,
			classification: model.ClassificationRestricted,
		},
		{
			name:           "executive_management",
			source:         "Toorak Corporate Center - Executive Management",
			tier:           model.TierLawEnforcement,
			classification: model.ClassificationRestricted,
		},
		{
			name:           "legal_beats_security",
			source:         "Legal Security Desk",
			tier:           model.TierJustice,
			classification: model.ClassificationConfidential,
		},
		{
			name:           "trust_beats_management",
			source:         "Asset Management Trust",
			tier:           model.TierJustice,
			classification: model.ClassificationConfidential,
		},
		{
			name:           "private_banking_is_standard",
			source:         "NAB Private Wealth Toorak - Private Banking Division",
			tier:           model.TierStandard,
			classification: model.ClassificationPublic,
		},
		{
			name:           "case_sensitive",
			source:         "toorak village - legal advisory group",
			tier:           model.TierStandard,
			classification: model.ClassificationPublic,
		},
		{
			name:           "empty",
			source:         "",
			tier:           model.TierStandard,
			classification: model.ClassificationPublic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, classification := Classify(tt.source)
			assert.Equal(t, tt.tier, tier)
			assert.Equal(t, tt.classification, classification)
		})
	}
}

func TestClassificationFor(t *testing.T) {
	assert.Equal(t, model.ClassificationRestricted, ClassificationFor(model.TierLawEnforcement))
	assert.Equal(t, model.ClassificationConfidential, ClassificationFor(model.TierJustice))
	assert.Equal(t, model.ClassificationPublic, ClassificationFor(model.TierStandard))
	assert.Equal(t, model.ClassificationPublic, ClassificationFor(""))
}

// Classification never disagrees with the tier it was derived from.
func TestClassifyAgreesWithTier(t *testing.T) {
	sources := []string{
		"Private Security Division",
		"Private Medical Practice",
		"Corporate Trust Services",
		"Executive Management",
		"Real Estate Development",
	}
	for _, s := range sources {
		tier, classification := Classify(s)
		assert.Equal(t, ClassificationFor(tier), classification, s)
	}
}
