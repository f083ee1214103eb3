package model

type (
	// Tier is the priority class of a message. It selects the encryption key
	// and the pseudonym salt.
	Tier string

	// Classification is the confidentiality label derived from a Tier.
	Classification string
)

const (
	TierStandard       Tier = "standard"
	TierJustice        Tier = "justice"
	TierLawEnforcement Tier = "law-enforcement"
)

const (
	ClassificationPublic       Classification = "public"
	ClassificationConfidential Classification = "confidential"
	ClassificationRestricted   Classification = "restricted"
)

// Tiers lists every tier in precedence order.
var Tiers = []Tier{TierJustice, TierLawEnforcement, TierStandard}

// Normalize maps the empty tier to standard. Other values pass through.
func (t Tier) Normalize() Tier {
	if t == "" {
		return TierStandard
	}
	return t
}

func (t Tier) Valid() bool {
	switch t {
	case TierStandard, TierJustice, TierLawEnforcement:
		return true
	}
	return false
}

func (t Tier) String() string { return string(t.Normalize()) }
