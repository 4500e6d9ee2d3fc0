package tier

import (
	"errors"
	"fmt"
	"sort"
)

var ErrUnknownTier = errors.New("unknown ladder tier")

// Tier is one ordered rank bucket in ladder mode. SortOrder defines a total
// order; the tier with the lowest SortOrder is the floor.
type Tier struct {
	ID            string
	Name          string
	WinsRequired  int
	CanDemoteFrom bool
	SortOrder     int
}

type ProgressionType string

const (
	ProgressionNone      ProgressionType = "none"
	ProgressionPromotion ProgressionType = "promotion"
	ProgressionDemotion  ProgressionType = "demotion"
)

// Progression is the outcome of one evaluation step.
type Progression struct {
	Type    ProgressionType
	NewTier *Tier
	NetWins int
}

// Evaluate runs the promotion/demotion state machine once for a player sitting
// in currentTierID with netWins net wins. Promotion is checked first; at most
// one tier step is applied per call, never a multi-tier cascade.
//
// On promotion the old tier's WinsRequired is carried over, not reset:
// netWins' = netWins - old.WinsRequired. On demotion the deficit is taken out
// of the previous tier's full requirement: netWins' = prev.WinsRequired + netWins.
func Evaluate(tiers []Tier, currentTierID string, netWins int) (Progression, error) {
	return evaluate(tiers, currentTierID, netWins, false)
}

// EvaluateRevert is Evaluate with demotion protection lifted. Deleting a duel
// must restore the exact pre-submission tier, so reverting the win that
// promoted a player into a protected tier still demotes them back out of it.
// The floor tier itself never demotes.
func EvaluateRevert(tiers []Tier, currentTierID string, netWins int) (Progression, error) {
	return evaluate(tiers, currentTierID, netWins, true)
}

func evaluate(tiers []Tier, currentTierID string, netWins int, forceDemote bool) (Progression, error) {
	ordered := append([]Tier(nil), tiers...)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	idx := -1
	for i, t := range ordered {
		if t.ID == currentTierID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Progression{}, fmt.Errorf("%w: %q", ErrUnknownTier, currentTierID)
	}
	current := ordered[idx]

	if netWins >= current.WinsRequired && idx+1 < len(ordered) {
		next := ordered[idx+1]
		return Progression{
			Type:    ProgressionPromotion,
			NewTier: &next,
			NetWins: netWins - current.WinsRequired,
		}, nil
	}

	if netWins < 0 && (current.CanDemoteFrom || forceDemote) && idx > 0 {
		prev := ordered[idx-1]
		return Progression{
			Type:    ProgressionDemotion,
			NewTier: &prev,
			NetWins: prev.WinsRequired + netWins,
		}, nil
	}

	return Progression{Type: ProgressionNone, NetWins: netWins}, nil
}
