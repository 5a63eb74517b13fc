// Package logictree implements the weighted branching structures that
// capture epistemic uncertainty: the source-model tree (alternative
// source groups and Gutenberg-Richter adjustments) and the ground-motion
// tree (alternative GMPEs per tectonic region type). Trees are resolved
// into realizations either by full enumeration or by seeded Monte Carlo
// sampling.
package logictree

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Uncertainty types supported by source-model branch sets.
const (
	UncSourceModel = "sourceModel"
	UncBGRRelative = "bGRRelative"
	UncMaxMagAbs   = "maxMagGRAbsolute"
)

// SMBranch is one branch of a source-model branch set. Which payload
// field is meaningful depends on the branch set's uncertainty type.
type SMBranch struct {
	ID     string
	Weight float64
	Group  string  // sourceModel: the source group to use
	BDelta float64 // bGRRelative: shift applied to the b value
	MaxMag float64 // maxMagGRAbsolute: replacement maximum magnitude
}

// SMBranchSet is one level of the source-model tree.
type SMBranchSet struct {
	ID              string
	UncertaintyType string
	Branches        []SMBranch
}

// SourceModelTree is the full source-model logic tree. An empty tree is
// valid and means a single implicit path using all sources unmodified.
type SourceModelTree struct {
	BranchSets []SMBranchSet
}

// GMPEBranch is one weighted GMPE choice.
type GMPEBranch struct {
	ID     string
	GMPE   string
	Weight float64
}

// GMPEBranchSet holds the GMPE alternatives for one tectonic region type.
type GMPEBranchSet struct {
	TRT      string
	Branches []GMPEBranch
}

// GMPETree is the ground-motion logic tree.
type GMPETree struct {
	BranchSets []GMPEBranchSet
}

// Realization is one resolved logic-tree path: the chosen source-model
// branches, the GMPE per tectonic region type, the path weight, and the
// seed that makes the realization's sampling reproducible.
type Realization struct {
	Ordinal   int
	SMPath    []SMBranch
	GMPEByTRT map[string]string
	Weight    float64
	Seed      int64
}

// PathKey identifies the source-model path; realizations sharing a key
// share the same effective source model.
func (r Realization) PathKey() string {
	key := ""
	for _, b := range r.SMPath {
		key += b.ID + "|"
	}
	return key
}

// GMPENames returns the sorted set of GMPE names a tree references.
func (t *GMPETree) GMPENames() []string {
	seen := map[string]bool{}
	for _, bs := range t.BranchSets {
		for _, b := range bs.Branches {
			seen[b.GMPE] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func checkBranchWeights(what string, weights []float64) error {
	if len(weights) == 0 {
		return fmt.Errorf("%s has no branches", what)
	}
	sum := 0.0
	for _, w := range weights {
		if w <= 0 {
			return fmt.Errorf("%s: branch weights must be positive", what)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%s: branch weights must sum to 1, got %v", what, sum)
	}
	return nil
}

// Validate checks weights and uncertainty types of both trees.
func Validate(sm *SourceModelTree, gt *GMPETree) error {
	for _, bs := range sm.BranchSets {
		switch bs.UncertaintyType {
		case UncSourceModel, UncBGRRelative, UncMaxMagAbs:
		default:
			return fmt.Errorf("branch set %s: unknown uncertainty type %q", bs.ID, bs.UncertaintyType)
		}
		weights := make([]float64, len(bs.Branches))
		for i, b := range bs.Branches {
			weights[i] = b.Weight
		}
		if err := checkBranchWeights(fmt.Sprintf("source model branch set %s", bs.ID), weights); err != nil {
			return err
		}
	}
	if len(gt.BranchSets) == 0 {
		return fmt.Errorf("ground motion logic tree has no branch sets")
	}
	seenTRT := map[string]bool{}
	for _, bs := range gt.BranchSets {
		if seenTRT[bs.TRT] {
			return fmt.Errorf("ground motion logic tree: duplicate branch set for tectonic region type %q", bs.TRT)
		}
		seenTRT[bs.TRT] = true
		weights := make([]float64, len(bs.Branches))
		for i, b := range bs.Branches {
			weights[i] = b.Weight
		}
		if err := checkBranchWeights(fmt.Sprintf("gmpe branch set for %q", bs.TRT), weights); err != nil {
			return err
		}
	}
	return nil
}

// realizationSeed derives a stable per-realization seed. The multiplier
// just spreads ordinals apart in seed space.
func realizationSeed(baseSeed int64, ordinal int) int64 {
	return baseSeed + int64(ordinal)*1000003
}

// Enumerate produces every logic-tree path with its exact weight: the
// cartesian product of all source-model branch sets and all per-TRT
// GMPE branch sets.
func Enumerate(sm *SourceModelTree, gt *GMPETree, baseSeed int64) []Realization {
	smPaths := [][]SMBranch{nil}
	for _, bs := range sm.BranchSets {
		var next [][]SMBranch
		for _, path := range smPaths {
			for _, b := range bs.Branches {
				extended := make([]SMBranch, len(path), len(path)+1)
				copy(extended, path)
				next = append(next, append(extended, b))
			}
		}
		smPaths = next
	}

	gmpeChoices := []map[string]string{{}}
	gmpeWeights := []float64{1}
	for _, bs := range gt.BranchSets {
		var nextChoices []map[string]string
		var nextWeights []float64
		for i, choice := range gmpeChoices {
			for _, b := range bs.Branches {
				extended := make(map[string]string, len(choice)+1)
				for k, v := range choice {
					extended[k] = v
				}
				extended[bs.TRT] = b.GMPE
				nextChoices = append(nextChoices, extended)
				nextWeights = append(nextWeights, gmpeWeights[i]*b.Weight)
			}
		}
		gmpeChoices = nextChoices
		gmpeWeights = nextWeights
	}

	var out []Realization
	ordinal := 0
	for _, path := range smPaths {
		pathWeight := 1.0
		for _, b := range path {
			pathWeight *= b.Weight
		}
		for i, choice := range gmpeChoices {
			out = append(out, Realization{
				Ordinal:   ordinal,
				SMPath:    path,
				GMPEByTRT: choice,
				Weight:    pathWeight * gmpeWeights[i],
				Seed:      realizationSeed(baseSeed, ordinal),
			})
			ordinal++
		}
	}
	return out
}

// Sample draws n logic-tree paths by seeded Monte Carlo, using branch
// weights as sampling probabilities. Every sample carries weight 1/n.
func Sample(sm *SourceModelTree, gt *GMPETree, n int, baseSeed int64) []Realization {
	out := make([]Realization, 0, n)
	for ordinal := 0; ordinal < n; ordinal++ {
		seed := realizationSeed(baseSeed, ordinal)
		rng := rand.New(rand.NewSource(seed))

		path := make([]SMBranch, 0, len(sm.BranchSets))
		for _, bs := range sm.BranchSets {
			path = append(path, bs.Branches[pick(rng, smWeights(bs.Branches))])
		}
		choice := make(map[string]string, len(gt.BranchSets))
		for _, bs := range gt.BranchSets {
			choice[bs.TRT] = bs.Branches[pick(rng, gmpeWeightsOf(bs.Branches))].GMPE
		}
		out = append(out, Realization{
			Ordinal:   ordinal,
			SMPath:    path,
			GMPEByTRT: choice,
			Weight:    1 / float64(n),
			Seed:      seed,
		})
	}
	return out
}

func smWeights(branches []SMBranch) []float64 {
	w := make([]float64, len(branches))
	for i, b := range branches {
		w[i] = b.Weight
	}
	return w
}

func gmpeWeightsOf(branches []GMPEBranch) []float64 {
	w := make([]float64, len(branches))
	for i, b := range branches {
		w[i] = b.Weight
	}
	return w
}

// pick draws an index from a discrete distribution by inverse transform.
func pick(rng *rand.Rand, weights []float64) int {
	u := rng.Float64()
	acc := 0.0
	for i, w := range weights {
		acc += w
		if u < acc {
			return i
		}
	}
	return len(weights) - 1
}
