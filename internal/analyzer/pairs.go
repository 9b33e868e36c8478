package analyzer

import (
	"fmt"
	"math"
	"sort"

	"PairSentinel/internal/model"
)

// FindBestPairs searches the top and bottom ends of an already ranked
// list for long/short candidates. The input must be sorted by score
// descending. Combinations without a clear edge are dropped; the rest
// are ordered by pair score descending and truncated to the configured
// count. A symbol is never paired with itself.
func (a *Analyzer) FindBestPairs(ranked []*model.AssetAnalysis) []*model.PairCandidate {
	if len(ranked) < 2 {
		return nil
	}

	top := ranked
	if len(ranked) > a.topPairs {
		top = ranked[:a.topPairs]
	}
	bottom := ranked
	if len(ranked) > a.topPairs {
		bottom = ranked[len(ranked)-a.topPairs:]
	}

	var pairs []*model.PairCandidate
	for _, strong := range top {
		for _, weak := range bottom {
			if strong.Symbol == weak.Symbol {
				continue
			}
			if p := analyzePair(strong, weak); p != nil {
				pairs = append(pairs, p)
			}
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].PairScore > pairs[j].PairScore
	})
	if len(pairs) > a.topPairs {
		pairs = pairs[:a.topPairs]
	}
	return pairs
}

// analyzePair classifies one (strong, weak) combination. It returns
// nil when neither the momentum nor the mean-reversion thresholds are
// met.
func analyzePair(strong, weak *model.AssetAnalysis) *model.PairCandidate {
	scoreDiff := strong.Score - weak.Score
	perfDiff := strong.Returns[model.Horizon4h] - weak.Returns[model.Horizon4h]

	p := &model.PairCandidate{
		Strong:     strong.Symbol,
		Weak:       weak.Symbol,
		ScoreDiff:  scoreDiff,
		PerfDiff4h: perfDiff,
		PairScore:  math.Abs(scoreDiff),
	}

	switch {
	case scoreDiff > 20 && perfDiff > 3:
		p.Recommendation = fmt.Sprintf("LONG_%s_SHORT_%s", strong.Symbol, weak.Symbol)
		p.Rationale = model.RationaleMomentum
	case scoreDiff < -20 && perfDiff < -3:
		p.Recommendation = fmt.Sprintf("LONG_%s_SHORT_%s", weak.Symbol, strong.Symbol)
		p.Rationale = model.RationaleMeanReversion
	default:
		return nil
	}
	return p
}
