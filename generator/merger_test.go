package generator

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOntology is a minimal term DAG for generator tests.
type fakeNode struct {
	label   string
	parents []string
	depth   int
	ic      float64
	ns      string
}

type fakeOntology map[string]fakeNode

func (f fakeOntology) HasTerm(id string) bool {
	_, ok := f[id]
	return ok
}

func (f fakeOntology) Ancestors(id string, reflexive bool) map[string]struct{} {
	out := make(map[string]struct{})
	if _, ok := f[id]; !ok {
		return out
	}
	if reflexive {
		out[id] = struct{}{}
	}
	stack := []string{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range f[n].parents {
			if _, dup := out[p]; dup {
				continue
			}
			out[p] = struct{}{}
			stack = append(stack, p)
		}
	}
	return out
}

func (f fakeOntology) Parents(id string) []string { return f[id].parents }

func (f fakeOntology) Depth(id string) int {
	if n, ok := f[id]; ok {
		return n.depth
	}
	return -1
}

func (f fakeOntology) IC(id string) float64       { return f[id].ic }
func (f fakeOntology) Namespace(id string) string { return f[id].ns }

func (f fakeOntology) Label(id string, fallbackToID bool) string {
	if n, ok := f[id]; ok && n.label != "" {
		return n.label
	}
	if fallbackToID {
		return id
	}
	return ""
}

func TestPluralizeSuffix(t *testing.T) {
	assert.Equal(t, "s", pluralizeSuffix(""))
	assert.Equal(t, " cells", pluralizeSuffix(" cell"))
	assert.Equal(t, "processes", pluralizeSuffix("process"))
	// Multi-word suffixes pass through untouched.
	assert.Equal(t, " nerve cord", pluralizeSuffix(" nerve cord"))
}

func TestMergePostfixPhrases(t *testing.T) {
	assert.Equal(t, "", mergePostfixPhrases(nil))
	assert.Equal(t, "", mergePostfixPhrases([]string{"", ""}))
	assert.Equal(t, "activity", mergePostfixPhrases([]string{"activity"}))

	// Merging a phrase with itself is a no-op.
	assert.Equal(t, "activity", mergePostfixPhrases([]string{"activity", "activity", ""}))

	// Common suffix is factored out once and pluralized.
	assert.Equal(t, "muscle and neuron cells",
		mergePostfixPhrases([]string{"muscle cell", "neuron cell"}))
	assert.Equal(t, "dorsal, lateral, and ventral cells",
		mergePostfixPhrases([]string{"dorsal cell", "lateral cell", "ventral cell"}))
}

func TestMergePostfixPhrasesCommonPrefix(t *testing.T) {
	assert.Equal(t, "in the embryo and adults",
		mergePostfixPhrases([]string{"in the embryo", "in the adult"}))

	// Phrases sharing only a prefix: the plural lands on the last fragment.
	assert.Equal(t, "located in the X, Y, and Zs",
		mergePostfixPhrases([]string{"located in the X", "located in the Y", "located in the Z"}))
}

func newTestGenerator(ont fakeOntology) *Generator {
	return &Generator{
		ont:    ont,
		logger: slog.Default(),
	}
}

func TestMergeSentencesWithSamePrefixUnionsTerms(t *testing.T) {
	ont := fakeOntology{
		"GO:0007568": {label: "aging"},
		"GO:0040011": {label: "locomotion"},
	}
	g := newTestGenerator(ont)
	in := []Sentence{
		{Prefix: "is involved in", TermIDs: []string{"GO:0007568"}, Aspect: "P", EvidenceGroup: "EXPERIMENTAL"},
		{Prefix: "is involved in", TermIDs: []string{"GO:0040011"}, Aspect: "P", EvidenceGroup: "PHYLOGENETIC_ANALYSIS"},
	}
	out := g.mergeSentencesWithSamePrefix(in, false, false, nil, false)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"GO:0007568", "GO:0040011"}, out[0].TermIDs)
	assert.Equal(t, "is involved in aging and locomotion", out[0].Text)
	assert.Equal(t, "EXPERIMENTAL, PHYLOGENETIC_ANALYSIS", out[0].EvidenceGroup)
}

func TestMergeSentencesWithSamePrefixKeepsDistinctPrefixes(t *testing.T) {
	ont := fakeOntology{
		"GO:0007568": {label: "aging"},
		"GO:0040011": {label: "locomotion"},
	}
	g := newTestGenerator(ont)
	in := []Sentence{
		{Prefix: "is involved in", TermIDs: []string{"GO:0007568"}},
		{Prefix: "is predicted to be involved in", TermIDs: []string{"GO:0040011"}},
	}
	out := g.mergeSentencesWithSamePrefix(in, false, false, nil, false)
	assert.Len(t, out, 2)
}

func TestMergeSentencesWithSamePrefixRemovesParents(t *testing.T) {
	ont := fakeOntology{
		"GO:0008150": {label: "biological_process"},
		"GO:0009987": {label: "cellular process", parents: []string{"GO:0008150"}},
		"GO:0007049": {label: "cell cycle", parents: []string{"GO:0009987"}},
	}
	g := newTestGenerator(ont)
	in := []Sentence{
		{Prefix: "is involved in", TermIDs: []string{"GO:0009987"}},
		{Prefix: "is involved in", TermIDs: []string{"GO:0007049"}},
	}
	out := g.mergeSentencesWithSamePrefix(in, true, false, nil, false)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"GO:0007049"}, out[0].TermIDs)
}

func TestMergeSentencesWithSamePrefixKeepsHighPriorityParents(t *testing.T) {
	ont := fakeOntology{
		"GO:0009987": {label: "cellular process"},
		"GO:0007049": {label: "cell cycle", parents: []string{"GO:0009987"}},
	}
	g := newTestGenerator(ont)
	in := []Sentence{
		{Prefix: "is involved in", TermIDs: []string{"GO:0009987"}},
		{Prefix: "is involved in", TermIDs: []string{"GO:0007049"}},
	}
	high := map[string]struct{}{"GO:0009987": {}}
	out := g.mergeSentencesWithSamePrefix(in, true, false, high, false)
	require.Len(t, out, 1)
	assert.Equal(t, []string{"GO:0007049", "GO:0009987"}, out[0].TermIDs)
}

func TestMergeSentencesWithSamePrefixMergesPostfixes(t *testing.T) {
	ont := fakeOntology{
		"GO:0004672": {label: "protein kinase"},
		"GO:0004860": {label: "kinase inhibitor"},
	}
	g := newTestGenerator(ont)
	in := []Sentence{
		{Prefix: "exhibits", TermIDs: []string{"GO:0004672"}, Postfix: "activity"},
		{Prefix: "exhibits", TermIDs: []string{"GO:0004860"}, Postfix: "activity"},
	}
	out := g.mergeSentencesWithSamePrefix(in, false, false, nil, false)
	require.Len(t, out, 1)
	assert.Equal(t, "activity", out[0].Postfix)
	assert.Equal(t, "exhibits kinase inhibitor and protein kinase activity", out[0].Text)
}

func TestWithoutParents(t *testing.T) {
	ont := fakeOntology{
		"root":  {},
		"mid":   {parents: []string{"root"}},
		"leaf":  {parents: []string{"mid"}},
		"other": {parents: []string{"root"}},
	}
	in := map[string]struct{}{"mid": {}, "leaf": {}, "other": {}}
	out := withoutParents(in, ont, nil)
	assert.Equal(t, map[string]struct{}{"leaf": {}, "other": {}}, out)
}
