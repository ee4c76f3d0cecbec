package trimming

import "log/slog"

// FindSetCovering greedily picks at most maxNumSubsets candidates so that
// their covered sets approximate maximum coverage of the universe (the union
// of all candidates' covered sets).
//
// At each step the candidate with the largest marginal coverage (the covered
// elements not yet included) wins, scaled by its weight when weights are
// given; ties go to the lexicographically smallest label. A new pick
// supersedes any previously selected candidate on the same root path: a
// previously selected strict ancestor of the pick is dropped, and so is a
// previously selected strict descendant (a specific high-weight term chosen
// early, later joined by its ancestor for the remaining coverage). The result
// never contains two candidates where one is a strict ancestor of the other.
//
// weights, when non-nil, must parallel candidates; otherwise nil is returned.
// maxNumSubsets <= 0 means no cap. The result may under-cover the universe.
func FindSetCovering(ont Ontology, candidates []Candidate, weights []float64, maxNumSubsets int, logger *slog.Logger) []Selection {
	if logger == nil {
		logger = slog.Default()
	}
	if weights != nil && len(weights) != len(candidates) {
		logger.Warn("set covering called with mismatched weights", slog.Int("candidates", len(candidates)), slog.Int("weights", len(weights)))
		return nil
	}
	logger.Debug("starting set covering optimization", slog.Int("candidates", len(candidates)))

	universeSize := 0
	universe := make(map[string]struct{})
	for _, c := range candidates {
		for e := range c.Covered {
			universe[e] = struct{}{}
		}
	}
	universeSize = len(universe)

	remaining := make(map[int]struct{}, len(candidates))
	for i := range candidates {
		remaining[i] = struct{}{}
	}

	included := make(map[string]struct{})
	var result []Selection

	for len(remaining) > 0 && len(included) < universeSize && (maxNumSubsets <= 0 || len(result) < maxNumSubsets) {
		best := -1
		bestScore := 0.0
		for i := range remaining {
			marginal := 0
			for e := range candidates[i].Covered {
				if _, done := included[e]; !done {
					marginal++
				}
			}
			score := float64(marginal)
			if weights != nil {
				score *= weights[i]
			}
			if best < 0 || score > bestScore ||
				(score == bestScore && candidates[i].Label < candidates[best].Label) {
				best = i
				bestScore = score
			}
		}
		delete(remaining, best)

		// Redundancy elimination: drop any previously selected strict
		// ancestor or strict descendant of the new pick.
		ancestors := ont.Ancestors(candidates[best].NodeID, false)
		kept := result[:0]
		for _, prev := range result {
			if _, isAncestor := ancestors[prev.NodeID]; isAncestor {
				continue
			}
			if _, isDescendant := ont.Ancestors(prev.NodeID, false)[candidates[best].NodeID]; isDescendant {
				continue
			}
			kept = append(kept, prev)
		}
		result = kept

		for e := range candidates[best].Covered {
			included[e] = struct{}{}
		}
		result = append(result, Selection{NodeID: candidates[best].NodeID, Covered: cloneSet(candidates[best].Covered)})
	}

	logger.Debug("finished set covering optimization", slog.Int("selected", len(result)))
	return result
}
