package trimming

import "sort"

// lcaTrimmer keeps the candidates that are not dominated by any other
// candidate. A candidate is dominated when another candidate covers a
// superset of its input terms; among dominators with maximal coverage the
// deepest wins, and equal-depth ties are all retained. If the surviving set
// still exceeds the cap, unweighted set covering finishes the job.
type lcaTrimmer struct {
	base
}

func (t *lcaTrimmer) Trim(nodeIDs []string, maxNum int) (bool, []Selection, error) {
	cands, err := t.candidates(nodeIDs, t.minDistance)
	if err != nil {
		return false, nil, err
	}
	byID := make(map[string]Candidate, len(cands))
	ids := make([]string, 0, len(cands))
	for _, c := range cands {
		byID[c.NodeID] = c
		ids = append(ids, c.NodeID)
	}
	sort.Strings(ids)

	toProcess := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		toProcess[id] = struct{}{}
	}
	nodeToCands := make(map[string][]string)
	for _, id := range ids {
		for node := range byID[id].Covered {
			nodeToCands[node] = append(nodeToCands[node], id)
		}
	}

	var selected []string
	inSelected := make(map[string]struct{})
	pick := func(id string) {
		if _, dup := inSelected[id]; dup {
			return
		}
		inSelected[id] = struct{}{}
		selected = append(selected, id)
	}

	for _, candID := range ids {
		if _, pending := toProcess[candID]; !pending {
			continue
		}
		delete(toProcess, candID)

		// Dominators: candidates covering a superset of this one.
		var dominators []string
		for _, otherID := range ids {
			if otherID == candID {
				continue
			}
			if containsAll(byID[otherID].Covered, byID[candID].Covered) {
				dominators = append(dominators, otherID)
			}
		}

		if len(dominators) == 0 {
			pick(candID)
			continue
		}

		maxCoverage := 0
		for _, d := range dominators {
			if n := len(byID[d].Covered); n > maxCoverage {
				maxCoverage = n
			}
		}
		best := dominators[:0]
		for _, d := range dominators {
			if len(byID[d].Covered) == maxCoverage {
				best = append(best, d)
			}
		}
		if len(best) > 1 {
			maxDepth := -1
			for _, d := range best {
				if depth := t.ont.Depth(d); depth > maxDepth {
					maxDepth = depth
				}
			}
			deepest := best[:0]
			for _, d := range best {
				if t.ont.Depth(d) == maxDepth {
					deepest = append(deepest, d)
				}
			}
			best = deepest
		}

		for _, d := range best {
			pick(d)
			for node := range byID[d].Covered {
				for _, touched := range nodeToCands[node] {
					delete(toProcess, touched)
				}
			}
		}
	}

	if maxNum <= 0 || len(selected) <= maxNum {
		sel := make([]Selection, 0, len(selected))
		for _, id := range selected {
			sel = append(sel, Selection{NodeID: id, Covered: cloneSet(byID[id].Covered)})
		}
		return false, sel, nil
	}

	pool := make([]Candidate, 0, len(selected))
	for _, id := range selected {
		pool = append(pool, byID[id])
	}
	sel := FindSetCovering(t.ont, pool, nil, maxNum, t.logger)
	return underCovers(nodeIDs, sel), sel, nil
}

// containsAll reports whether super contains every element of sub.
func containsAll(super, sub map[string]struct{}) bool {
	if len(super) < len(sub) {
		return false
	}
	for e := range sub {
		if _, ok := super[e]; !ok {
			return false
		}
	}
	return true
}
