// Package trimming generalizes large ontology term sets to a bounded number
// of covering ancestors. Three interchangeable strategies are provided
// (information-content greedy, lowest-common-ancestor, and naive path merge),
// all built on a shared greedy set-covering solver.
package trimming

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
)

// Algorithm selects one of the trimming strategies.
type Algorithm string

const (
	AlgorithmIC    Algorithm = "ic"
	AlgorithmLCA   Algorithm = "lca"
	AlgorithmNaive Algorithm = "naive"
)

// ErrMixedRoots is returned when the input terms do not share a single root
// namespace. Submitting a cross-namespace term set is a caller bug.
var ErrMixedRoots = errors.New("trimming: terms are connected to different root namespaces")

// Ontology is the read-only view of the term DAG the algorithms traverse.
// *ontology.Graph satisfies it.
type Ontology interface {
	Ancestors(id string, reflexive bool) map[string]struct{}
	Parents(id string) []string
	Depth(id string) int
	IC(id string) float64
	Namespace(id string) string
	Label(id string, fallbackToID bool) string
}

// Candidate is a prospective generalized term: an ancestor (or an input term
// itself) together with the input terms it covers.
type Candidate struct {
	NodeID  string
	Label   string
	Covered map[string]struct{}
}

// Selection is one chosen term with the original input terms it covers.
type Selection struct {
	NodeID  string
	Covered map[string]struct{}
}

// Trimmer reduces a term set to at most maxNum generalized terms.
// underCovered reports that some input term is not covered by any selection;
// callers render an "and others" placeholder in that case.
type Trimmer interface {
	Trim(nodeIDs []string, maxNum int) (underCovered bool, sel []Selection, err error)
}

// Options configures a Trimmer.
type Options struct {
	// MinDistanceFromRoot is the minimum depth a candidate ancestor must
	// have to be considered.
	MinDistanceFromRoot int
	// Blacklist lists term ids excluded from candidate pools and paths.
	Blacklist []string
	// SlimSet and SlimBonusPerc boost the information-content weight of
	// preferred terms by the given percentage (IC algorithm only).
	SlimSet       map[string]struct{}
	SlimBonusPerc int
	// PathCacheSize bounds the memoized path cache of the naive algorithm.
	// Zero means a default size.
	PathCacheSize int
	Logger        *slog.Logger
}

// New returns the Trimmer for the given algorithm.
func New(algo Algorithm, ont Ontology, opts Options) (Trimmer, error) {
	b := newBase(ont, opts)
	switch algo {
	case AlgorithmIC:
		return &icTrimmer{base: b, slimSet: opts.SlimSet, slimBonusPerc: opts.SlimBonusPerc}, nil
	case AlgorithmLCA:
		return &lcaTrimmer{base: b}, nil
	case AlgorithmNaive:
		return newNaiveTrimmer(b, opts.PathCacheSize)
	default:
		return nil, fmt.Errorf("trimming: unknown algorithm %q", algo)
	}
}

type base struct {
	ont         Ontology
	minDistance int
	blacklist   map[string]struct{}
	logger      *slog.Logger
}

func newBase(ont Ontology, opts Options) base {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	bl := make(map[string]struct{}, len(opts.Blacklist))
	for _, id := range opts.Blacklist {
		bl[id] = struct{}{}
	}
	return base{ont: ont, minDistance: opts.MinDistanceFromRoot, blacklist: bl, logger: logger}
}

func (b *base) blacklisted(id string) bool {
	_, ok := b.blacklist[id]
	return ok
}

// commonRoot verifies that every input term belongs to one root namespace and
// returns it. Terms without a namespace are ignored for the check.
func (b *base) commonRoot(nodeIDs []string) (string, error) {
	common := ""
	for _, id := range nodeIDs {
		ns := b.ont.Namespace(id)
		if ns == "" {
			continue
		}
		if common != "" && common != ns {
			return "", fmt.Errorf("%w: %q vs %q", ErrMixedRoots, common, ns)
		}
		common = ns
	}
	if common == "" {
		return "", fmt.Errorf("%w: no root namespace found", ErrMixedRoots)
	}
	return common, nil
}

// candidates builds the candidate pool for the input terms: every reflexive
// ancestor at or beyond minDistance, in the common namespace, and not
// blacklisted. A candidate survives if it covers more than one input term, or
// is itself a single input term with no other coverage.
func (b *base) candidates(nodeIDs []string, minDistance int) ([]Candidate, error) {
	common, err := b.commonRoot(nodeIDs)
	if err != nil {
		return nil, err
	}
	covered := make(map[string]map[string]struct{})
	for _, id := range nodeIDs {
		for anc := range b.ont.Ancestors(id, true) {
			ns := b.ont.Namespace(anc)
			if ns != "" && ns != common {
				continue
			}
			if b.ont.Depth(anc) < minDistance {
				continue
			}
			if b.blacklisted(anc) {
				continue
			}
			set, ok := covered[anc]
			if !ok {
				set = make(map[string]struct{}, 2)
				covered[anc] = set
			}
			set[id] = struct{}{}
		}
	}
	cands := make([]Candidate, 0, len(covered))
	for anc, set := range covered {
		if len(set) > 1 {
			cands = append(cands, Candidate{NodeID: anc, Label: b.ont.Label(anc, true), Covered: set})
			continue
		}
		if _, self := set[anc]; self {
			cands = append(cands, Candidate{NodeID: anc, Label: b.ont.Label(anc, true), Covered: set})
		}
	}
	sort.Slice(cands, func(i, j int) bool { return cands[i].NodeID < cands[j].NodeID })
	return cands, nil
}

// underCovers reports whether the union of the selections' covered sets falls
// short of the original input terms.
func underCovers(nodeIDs []string, sel []Selection) bool {
	covered := make(map[string]struct{})
	for _, s := range sel {
		for id := range s.Covered {
			covered[id] = struct{}{}
		}
	}
	for _, id := range nodeIDs {
		if _, ok := covered[id]; !ok {
			return true
		}
	}
	return false
}

func cloneSet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
