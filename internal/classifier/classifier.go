// Package classifier assigns a priority tier and a confidentiality
// classification to a message from its source identity.
package classifier

import (
	"strings"

	"toorak_vpn/internal/model"
)

// Marker words are matched case-sensitively as substrings of the source.
var (
	justiceMarkers        = []string{"Legal", "Trust"}
	lawEnforcementMarkers = []string{"Security", "Management"}
)

// Classify derives the tier from sourceIdentity and the classification from
// that tier. Justice markers take precedence over law enforcement markers.
func Classify(sourceIdentity string) (model.Tier, model.Classification) {
	tier := TierFor(sourceIdentity)
	return tier, ClassificationFor(tier)
}

func TierFor(sourceIdentity string) model.Tier {
	switch {
	case containsAny(sourceIdentity, justiceMarkers):
		return model.TierJustice
	case containsAny(sourceIdentity, lawEnforcementMarkers):
		return model.TierLawEnforcement
	default:
		return model.TierStandard
	}
}

// ClassificationFor is the only tier to classification mapping.
func ClassificationFor(tier model.Tier) model.Classification {
	switch tier.Normalize() {
	case model.TierLawEnforcement:
		return model.ClassificationRestricted
	case model.TierJustice:
		return model.ClassificationConfidential
	default:
		return model.ClassificationPublic
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
