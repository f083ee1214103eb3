// Package simulator produces synthetic Toorak packets for demos and load.
package simulator

import (
	"math/rand/v2"
	"time"

	"toorak_vpn/internal/model"

	"github.com/google/uuid"
)

const Jurisdiction = "Toorak, Victoria"

var (
	locations = []string{
		"Toorak Village",
		"Hawksburn Village",
		"St Georges Road",
		"Toorak Road Business District",
		"Kooyong Road Precinct",
		"Toorak Private Hospital",
		"Capital Grand Toorak",
		"Como Centre South Yarra",
		"ANZ Toorak Branch",
		"NAB Private Wealth Toorak",
		"Toorak Corporate Center",
		"Toorak Medical Precinct",
	}

	entities = []string{
		"Private Banking Division",
		"Wealth Management Services",
		"Legal Advisory Group",
		"Investment Banking Unit",
		"Corporate Trust Services",
		"Private Medical Practice",
		"Real Estate Development",
		"Asset Management Firm",
		"Family Office Services",
		"Professional Services Firm",
		"Private Security Division",
		"Executive Management",
	}

	payloads = []string{
		"Secure transaction authorization required",
		"Confidential portfolio update",
		"Private wealth advisory notification",
		"Corporate restructuring brief",
		"Executive board meeting schedule",
		"Investment strategy update",
		"Legal documentation request",
		"Trust management alert",
		"Asset allocation modification",
		"Risk assessment notification",
	}
)

type Generator struct {
	rng *rand.Rand
	now func() time.Time
}

// NewGenerator seeds from seed so runs are reproducible.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: time.Now,
	}
}

func (g *Generator) pick(list []string) string {
	return list[g.rng.IntN(len(list))]
}

func (g *Generator) identity() string {
	return g.pick(locations) + " - " + g.pick(entities)
}

// Next returns a packet whose destination always differs from its source.
func (g *Generator) Next() *model.Message {
	source := g.identity()
	destination := g.identity()
	for destination == source {
		destination = g.identity()
	}

	return &model.Message{
		ID:                  uuid.NewString(),
		CreatedAt:           g.now(),
		Payload:             g.pick(payloads),
		SourceIdentity:      source,
		DestinationIdentity: destination,
		Jurisdiction:        Jurisdiction,
	}
}
