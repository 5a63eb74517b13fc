// Package ses implements the stochastic event-set generator: for every
// rupture a source can produce, it samples how many times the rupture
// occurs in each stochastic event set by drawing from a Poisson
// distribution with mean rate * investigation time.
//
// Sampling is seeded per (realization, source), never per worker, so
// the generated catalogs are identical regardless of how the work is
// scheduled.
package ses

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/google/uuid"

	"github.com/specialistvlad/hazgridgo/internal/ctxlog"
	"github.com/specialistvlad/hazgridgo/internal/logictree"
	"github.com/specialistvlad/hazgridgo/internal/source"
)

// eventNamespace scopes the deterministic event UUIDs of this engine.
var eventNamespace = uuid.MustParse("8b122cbb-74d1-4511-bb9c-75c32ccafaaf")

// Event is one sampled earthquake occurrence.
type Event struct {
	ID          uuid.UUID
	Realization int
	SES         int // 1-based ordinal of the stochastic event set
	Rupture     *source.Rupture
	SiteIndices []int // sites within the integration distance of the source
	Seed        int64 // drives the event's ground-motion sampling
}

// Generator samples event sets for one calculation.
type Generator struct {
	InvestigationTime float64
	SESPerPath        int
}

// NewGenerator validates the sampling parameters.
func NewGenerator(investigationTime float64, sesPerPath int) (*Generator, error) {
	if investigationTime <= 0 {
		return nil, fmt.Errorf("investigation time must be positive, got %v", investigationTime)
	}
	if sesPerPath < 1 {
		return nil, fmt.Errorf("ses_per_logic_tree_path must be at least 1, got %d", sesPerPath)
	}
	return &Generator{InvestigationTime: investigationTime, SESPerPath: sesPerPath}, nil
}

// Generate samples all event sets for one realization over the filtered
// sources. Ruptures that never occur produce no events.
func (g *Generator) Generate(ctx context.Context, rlz logictree.Realization, filtered []source.FilteredSource) ([]*Event, error) {
	logger := ctxlog.FromContext(ctx)

	var events []*Event
	for _, fs := range filtered {
		rng := rand.New(rand.NewSource(sourceSeed(rlz.Seed, fs.Source.ID())))
		ruptures, err := fs.Source.Ruptures()
		if err != nil {
			return nil, fmt.Errorf("enumerating ruptures of source %s: %w", fs.Source.ID(), err)
		}
		for rupIdx, rup := range ruptures {
			mean := rup.Rate * g.InvestigationTime
			for sesOrd := 1; sesOrd <= g.SESPerPath; sesOrd++ {
				n := poisson(rng, mean)
				for occ := 0; occ < n; occ++ {
					id := eventID(rlz.Ordinal, fs.Source.ID(), rupIdx, sesOrd, occ)
					events = append(events, &Event{
						ID:          id,
						Realization: rlz.Ordinal,
						SES:         sesOrd,
						Rupture:     rup,
						SiteIndices: fs.SiteIndices,
						Seed:        seedFromUUID(id),
					})
				}
			}
		}
	}
	logger.Debug("Event sets generated.", "realization", rlz.Ordinal, "events", len(events))
	return events, nil
}

// eventID derives a stable UUID from the event coordinates, keeping
// event identity independent of scheduling.
func eventID(rlz int, sourceID string, rupIdx, sesOrd, occ int) uuid.UUID {
	name := fmt.Sprintf("%d/%s/%d/%d/%d", rlz, sourceID, rupIdx, sesOrd, occ)
	return uuid.NewSHA1(eventNamespace, []byte(name))
}

// seedFromUUID hashes an event UUID into the RNG seed for its
// ground-motion fields.
func seedFromUUID(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])
	return int64(h.Sum64() & math.MaxInt64)
}

// sourceSeed derives the per-source sampling seed.
func sourceSeed(rlzSeed int64, sourceID string) int64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d/%s", rlzSeed, sourceID)
	return int64(h.Sum64() & math.MaxInt64)
}

// poisson draws from a Poisson distribution by Knuth's product method.
// Occurrence means in hazard calculations are well below one, where the
// method is both exact and fast.
func poisson(rng *rand.Rand, mean float64) int {
	if mean <= 0 {
		return 0
	}
	limit := math.Exp(-mean)
	k := 0
	p := 1.0
	for {
		p *= rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}
