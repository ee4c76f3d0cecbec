package trimming

import "log/slog"

// icTrimmer selects covering ancestors by greedy set covering weighted with
// information content. Slim-set members get a configurable percentage bonus.
type icTrimmer struct {
	base
	slimSet       map[string]struct{}
	slimBonusPerc int
}

// candidateICValue scores a candidate. Candidates shallower than the minimum
// root distance that are not themselves input terms are zeroed out, which
// removes them from the pool.
func (t *icTrimmer) candidateICValue(c Candidate, inputSet map[string]struct{}) float64 {
	if _, isInput := inputSet[c.NodeID]; !isInput && t.ont.Depth(c.NodeID) < t.minDistance {
		return 0
	}
	ic := t.ont.IC(c.NodeID)
	if _, slim := t.slimSet[c.NodeID]; slim {
		return ic * (1 + float64(t.slimBonusPerc)/100)
	}
	return ic
}

func (t *icTrimmer) Trim(nodeIDs []string, maxNum int) (bool, []Selection, error) {
	cands, err := t.candidates(nodeIDs, 0)
	if err != nil {
		return false, nil, err
	}
	inputSet := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		inputSet[id] = struct{}{}
	}

	kept := cands[:0]
	var weights []float64
	slimHits := 0
	for _, c := range cands {
		v := t.candidateICValue(c, inputSet)
		if v <= 0 {
			continue
		}
		if _, slim := t.slimSet[c.NodeID]; slim {
			slimHits++
		}
		kept = append(kept, c)
		weights = append(weights, v)
	}
	if slimHits > 0 {
		t.logger.Debug("some candidates are present in the slim set", slog.Int("count", slimHits))
	}

	sel := FindSetCovering(t.ont, kept, weights, maxNum, t.logger)
	return underCovers(nodeIDs, sel), sel, nil
}
