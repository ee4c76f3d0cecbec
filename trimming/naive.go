package trimming

import (
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultPathCacheSize = 8192

// naiveTrimmer enumerates every path from each input term to its root and
// merges terms whose paths agree on a common ancestor: for each term, the
// shortest remaining path is walked and the deepest ancestor on which all
// paths through the path's terminal agree becomes the representative for the
// terms those paths start from. If more representatives than the cap remain,
// unweighted set covering reduces them.
type naiveTrimmer struct {
	base
	// pathCache memoizes enumerated paths per (node, namespace); path
	// enumeration is exponential in the worst case and subpaths are shared
	// heavily between sibling terms.
	pathCache *lru.Cache[string, [][]string]
}

func newNaiveTrimmer(b base, cacheSize int) (*naiveTrimmer, error) {
	if cacheSize <= 0 {
		cacheSize = defaultPathCacheSize
	}
	cache, err := lru.New[string, [][]string](cacheSize)
	if err != nil {
		return nil, err
	}
	return &naiveTrimmer{base: b, pathCache: cache}, nil
}

const pathSep = "\x1f"

func pathKey(path []string) string { return strings.Join(path, pathSep) }

func (t *naiveTrimmer) Trim(nodeIDs []string, maxNum int) (bool, []Selection, error) {
	if _, err := t.commonRoot(nodeIDs); err != nil {
		return false, nil, err
	}
	t.logger.Debug("applying trimming through naive algorithm")

	sorted := append([]string(nil), nodeIDs...)
	sort.Strings(sorted)

	// Step 1: enumerate all paths per term, and index them by their
	// terminal ancestor.
	termPaths := make(map[string]map[string][]string, len(sorted))
	ancestorPaths := make(map[string][][]string)
	for _, node := range sorted {
		root := t.ont.Namespace(node)
		paths := t.pathsToRoot(node, root)
		bucket := make(map[string][]string, len(paths))
		for _, p := range paths {
			bucket[pathKey(p)] = p
			last := p[len(p)-1]
			ancestorPaths[last] = append(ancestorPaths[last], p)
		}
		termPaths[node] = bucket
	}

	// Step 2: merge terms onto common ancestors.
	finalCovered := make(map[string]map[string]struct{})
	var finalOrder []string
	record := func(id string, covered map[string]struct{}) {
		if _, seen := finalCovered[id]; !seen {
			finalOrder = append(finalOrder, id)
		}
		finalCovered[id] = covered
	}
	dropPath := func(p []string) {
		delete(termPaths[p[0]], pathKey(p))
	}

	for _, node := range sorted {
		queue := sortedPaths(termPaths[node])
		for len(queue) > 0 {
			curr := queue[0]
			queue = queue[1:]

			selected := curr[len(curr)-1]
			walk := append([]string(nil), curr[:len(curr)-1]...)

			related := ancestorPaths[selected]
			if len(related) == 0 {
				break
			}
			covered := make(map[string]struct{}, len(related))
			for _, rp := range related {
				covered[rp[0]] = struct{}{}
			}
			delete(ancestorPaths, selected)

			if len(walk) > 0 {
				sameLeaf := true
				for _, rp := range related {
					if rp[0] != walk[0] {
						sameLeaf = false
						break
					}
				}
				if sameLeaf {
					selected = walk[0]
				} else {
					// Walk inward from the terminal; keep the deepest
					// ancestor every related path agrees on.
					offset := 1
					for len(walk) > 1 {
						offset++
						currHighest := walk[len(walk)-1]
						walk = walk[:len(walk)-1]
						longEnough := true
						for _, rp := range related {
							if len(rp) < offset {
								longEnough = false
								break
							}
						}
						if !longEnough {
							break
						}
						agree := true
						for _, rp := range related {
							if rp[len(rp)-offset] != currHighest {
								agree = false
								break
							}
						}
						if agree {
							selected = currHighest
							delete(ancestorPaths, selected)
							for _, rp := range related {
								dropPath(rp)
							}
						}
					}
				}
			}

			record(selected, covered)
			for _, rp := range related {
				dropPath(rp)
			}
			if len(termPaths[node]) == 0 {
				break
			}
			queue = sortedPaths(termPaths[node])
		}
	}

	if maxNum <= 0 || len(finalOrder) <= maxNum {
		sel := make([]Selection, 0, len(finalOrder))
		for _, id := range finalOrder {
			sel = append(sel, Selection{NodeID: id, Covered: finalCovered[id]})
		}
		return false, sel, nil
	}

	pool := make([]Candidate, 0, len(finalOrder))
	for _, id := range finalOrder {
		pool = append(pool, Candidate{NodeID: id, Label: t.ont.Label(id, true), Covered: finalCovered[id]})
	}
	sel := FindSetCovering(t.ont, pool, nil, maxNum, t.logger)
	return underCovers(nodeIDs, sel), sel, nil
}

// sortedPaths returns the paths shortest-first, with a stable lexicographic
// order among equal lengths.
func sortedPaths(bucket map[string][]string) [][]string {
	keys := make([]string, 0, len(bucket))
	for k := range bucket {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		li, lj := len(bucket[keys[i]]), len(bucket[keys[j]])
		if li != lj {
			return li < lj
		}
		return keys[i] < keys[j]
	})
	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, bucket[k])
	}
	return out
}

// pathsToRoot enumerates every path from node to a root, skipping blacklisted
// ids and parents that are shallower than the minimum distance or outside the
// node's namespace. Results are memoized in the LRU cache.
func (t *naiveTrimmer) pathsToRoot(node, rootNS string) [][]string {
	key := node + pathSep + rootNS
	if cached, ok := t.pathCache.Get(key); ok {
		return cached
	}

	var prefix []string
	if !t.blacklisted(node) {
		prefix = []string{node}
	}

	var parents []string
	for _, p := range t.ont.Parents(node) {
		if t.ont.Depth(p) < t.minDistance {
			continue
		}
		if rootNS != "" && t.ont.Namespace(p) != rootNS {
			continue
		}
		parents = append(parents, p)
	}
	sort.Strings(parents)

	var out [][]string
	if len(parents) == 0 {
		if len(prefix) == 0 {
			out = [][]string{{node}}
		} else {
			out = [][]string{prefix}
		}
	} else {
		seen := make(map[string]struct{})
		for _, p := range parents {
			for _, sub := range t.pathsToRoot(p, rootNS) {
				path := make([]string, 0, len(prefix)+len(sub))
				path = append(path, prefix...)
				path = append(path, sub...)
				k := pathKey(path)
				if _, dup := seen[k]; dup {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, path)
			}
		}
	}

	t.pathCache.Add(key, out)
	return out
}
