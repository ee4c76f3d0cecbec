package ontology

import (
	"log/slog"
	"math"
	"sync"
)

// nodeIndex is an integer identifier for an interned term, used for the
// graph's inner loops instead of string ids.
type nodeIndex int32

// DefaultRelations are the edge types used to build the graph when the caller
// does not choose its own set.
var DefaultRelations = []string{"is_a", "part_of"}

// Graph is an immutable DAG view over a parsed ontology. All traversal needed
// by term trimming goes through it: parent/ancestor/descendant queries, depth
// from the namespace root, information content, labels and namespaces.
//
// A Graph is safe for any number of concurrent readers once built.
type Graph struct {
	logger *slog.Logger

	idToIndex map[string]nodeIndex
	altToID   map[string]string
	ids       []string
	labels    []string
	namespace []string

	parents  [][]nodeIndex
	children [][]nodeIndex
	depth    []int32

	subsets map[string]map[string]struct{}

	// Information content is computed on demand; icMu guards the memo only,
	// the rest of the struct is never written after NewGraph returns.
	icMu    sync.Mutex
	ic      []float64
	icDone  []bool
	nsCount map[string]int
}

// NewGraph builds a Graph from a parsed ontology using the given relation
// types as edges. Obsolete terms are dropped. A nil relations slice means
// DefaultRelations; a nil logger means slog.Default().
func NewGraph(ont *Ontology, relations []string, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	if relations == nil {
		relations = DefaultRelations
	}
	relSet := make(map[string]struct{}, len(relations))
	for _, r := range relations {
		relSet[r] = struct{}{}
	}

	g := &Graph{
		logger:    logger,
		idToIndex: make(map[string]nodeIndex, len(ont.Terms)),
		altToID:   make(map[string]string),
		subsets:   make(map[string]map[string]struct{}),
		nsCount:   make(map[string]int),
	}

	// First pass: intern every non-obsolete term.
	for i := range ont.Terms {
		t := &ont.Terms[i]
		if t.IsObsolete || t.ID == "" {
			continue
		}
		if _, ok := g.idToIndex[t.ID]; ok {
			continue
		}
		idx := nodeIndex(len(g.ids))
		g.idToIndex[t.ID] = idx
		g.ids = append(g.ids, t.ID)
		g.labels = append(g.labels, t.Name)
		ns := t.Namespace
		if ns == "" {
			ns = ont.DefaultNS
		}
		g.namespace = append(g.namespace, ns)
		g.nsCount[ns]++
		for _, alt := range t.AltIDs {
			g.altToID[alt] = t.ID
		}
		for _, sub := range t.Subsets {
			set, ok := g.subsets[sub]
			if !ok {
				set = make(map[string]struct{})
				g.subsets[sub] = set
			}
			set[t.ID] = struct{}{}
		}
	}

	n := len(g.ids)
	g.parents = make([][]nodeIndex, n)
	g.children = make([][]nodeIndex, n)
	g.depth = make([]int32, n)
	g.ic = make([]float64, n)
	g.icDone = make([]bool, n)

	// Second pass: adjacency over the chosen relations.
	for i := range ont.Terms {
		t := &ont.Terms[i]
		if t.IsObsolete {
			continue
		}
		child, ok := g.idToIndex[t.ID]
		if !ok {
			continue
		}
		for _, rel := range t.Relationships {
			if _, want := relSet[rel.Type]; !want {
				continue
			}
			parent, ok := g.idToIndex[rel.TargetID]
			if !ok {
				g.logger.Debug("relationship to unknown term skipped",
					slog.String("term", t.ID), slog.String("target", rel.TargetID))
				continue
			}
			g.addEdge(child, parent)
		}
	}

	g.computeDepths()
	return g
}

// addEdge records child -> parent, deduplicating repeated links.
func (g *Graph) addEdge(child, parent nodeIndex) {
	for _, existing := range g.parents[child] {
		if existing == parent {
			return
		}
	}
	g.parents[child] = append(g.parents[child], parent)
	g.children[parent] = append(g.children[parent], child)
}

// computeDepths sets each node's depth to the length of the longest path to a
// root, walking the DAG with an explicit memo.
func (g *Graph) computeDepths() {
	const unset = int32(-1)
	for i := range g.depth {
		g.depth[i] = unset
	}
	var visit func(n nodeIndex) int32
	visit = func(n nodeIndex) int32 {
		if g.depth[n] != unset {
			return g.depth[n]
		}
		g.depth[n] = 0 // breaks cycles in malformed input
		best := int32(0)
		for _, p := range g.parents[n] {
			if d := visit(p) + 1; d > best {
				best = d
			}
		}
		g.depth[n] = best
		return best
	}
	for i := range g.depth {
		visit(nodeIndex(i))
	}
}

// resolve maps an id (possibly an alt_id) to its interned index.
func (g *Graph) resolve(id string) (nodeIndex, bool) {
	if idx, ok := g.idToIndex[id]; ok {
		return idx, true
	}
	if canonical, ok := g.altToID[id]; ok {
		idx, ok := g.idToIndex[canonical]
		return idx, ok
	}
	return 0, false
}

// HasTerm reports whether the id (or one of its alt_ids) is a known,
// non-obsolete term.
func (g *Graph) HasTerm(id string) bool {
	_, ok := g.resolve(id)
	return ok
}

// Label returns the term's name. If the term is unknown or unnamed and
// fallbackToID is set, the id itself is returned.
func (g *Graph) Label(id string, fallbackToID bool) string {
	if idx, ok := g.resolve(id); ok && g.labels[idx] != "" {
		return g.labels[idx]
	}
	if fallbackToID {
		return id
	}
	return ""
}

// Namespace returns the OBO namespace of the term, or "" if unknown.
func (g *Graph) Namespace(id string) string {
	if idx, ok := g.resolve(id); ok {
		return g.namespace[idx]
	}
	return ""
}

// Depth returns the length of the longest path from the term to its root, or
// -1 for unknown terms.
func (g *Graph) Depth(id string) int {
	if idx, ok := g.resolve(id); ok {
		return int(g.depth[idx])
	}
	return -1
}

// Parents returns the direct parents of the term over the graph's relations.
func (g *Graph) Parents(id string) []string {
	idx, ok := g.resolve(id)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.parents[idx]))
	for _, p := range g.parents[idx] {
		out = append(out, g.ids[p])
	}
	return out
}

// Ancestors returns every term reachable by walking parent edges. With
// reflexive set, the term itself is included.
func (g *Graph) Ancestors(id string, reflexive bool) map[string]struct{} {
	idx, ok := g.resolve(id)
	if !ok {
		return nil
	}
	out := make(map[string]struct{})
	seen := make(map[nodeIndex]struct{})
	stack := make([]nodeIndex, 0, 8)
	if reflexive {
		out[g.ids[idx]] = struct{}{}
	}
	stack = append(stack, idx)
	seen[idx] = struct{}{}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range g.parents[n] {
			if _, dup := seen[p]; dup {
				continue
			}
			seen[p] = struct{}{}
			out[g.ids[p]] = struct{}{}
			stack = append(stack, p)
		}
	}
	return out
}

// Descendants returns every term reachable by walking child edges, excluding
// the term itself.
func (g *Graph) Descendants(id string) map[string]struct{} {
	idx, ok := g.resolve(id)
	if !ok {
		return nil
	}
	out := make(map[string]struct{})
	seen := map[nodeIndex]struct{}{idx: {}}
	stack := []nodeIndex{idx}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range g.children[n] {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out[g.ids[c]] = struct{}{}
			stack = append(stack, c)
		}
	}
	return out
}

// Roots returns the ids of all terms without parents.
func (g *Graph) Roots() []string {
	var roots []string
	for i, ps := range g.parents {
		if len(ps) == 0 {
			roots = append(roots, g.ids[i])
		}
	}
	return roots
}

// Subset returns the ids of the terms tagged with the given OBO subset
// (e.g. "goslim_generic"), usable as a slim set for trimming.
func (g *Graph) Subset(name string) map[string]struct{} {
	set := g.subsets[name]
	out := make(map[string]struct{}, len(set))
	for id := range set {
		out[id] = struct{}{}
	}
	return out
}

// IC returns the information content of the term:
//
//	-ln((descendants+1) / termsInNamespace)
//
// Higher values mean rarer, more specific terms. Unknown terms score 0.
// Values are computed on first use and memoized.
func (g *Graph) IC(id string) float64 {
	idx, ok := g.resolve(id)
	if !ok {
		return 0
	}
	g.icMu.Lock()
	defer g.icMu.Unlock()
	if g.icDone[idx] {
		return g.ic[idx]
	}
	total := g.nsCount[g.namespace[idx]]
	if total == 0 {
		total = len(g.ids)
	}
	desc := len(g.Descendants(g.ids[idx]))
	v := -math.Log(float64(desc+1) / float64(total))
	if v < 0 {
		v = 0
	}
	g.ic[idx] = v
	g.icDone[idx] = true
	return v
}

// TermCount returns the number of non-obsolete terms in the graph.
func (g *Graph) TermCount() int { return len(g.ids) }
