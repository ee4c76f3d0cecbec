package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodeadmin/genedesc/annotations"
	"github.com/nodeadmin/genedesc/config"
	"github.com/nodeadmin/genedesc/ontology"
)

const processOBO = `format-version: 1.2
default-namespace: biological_process

[Term]
id: GO:0008150
name: biological_process

[Term]
id: GO:0007568
name: aging
is_a: GO:0008150 ! biological_process

[Term]
id: GO:0050896
name: response to stimulus
is_a: GO:0008150 ! biological_process

[Term]
id: GO:0006950
name: response to stress
is_a: GO:0050896 ! response to stimulus

[Term]
id: GO:0042742
name: defense response to bacterium
is_a: GO:0006950 ! response to stress

[Term]
id: GO:1900426
name: positive regulation of defense response to bacterium
is_a: GO:0042742 ! defense response to bacterium

[Term]
id: GO:0009987
name: cellular process
is_a: GO:0008150 ! biological_process

[Term]
id: GO:0031323
name: regulation of cellular metabolic process
is_a: GO:0009987 ! cellular process

[Term]
id: GO:0031326
name: regulation of cellular biosynthetic process
is_a: GO:0031323 ! regulation of cellular metabolic process

[Term]
id: GO:0010557
name: positive regulation of macromolecule biosynthetic process
is_a: GO:0031326 ! regulation of cellular biosynthetic process

[Term]
id: GO:0031328
name: positive regulation of cellular biosynthetic process
is_a: GO:0031326 ! regulation of cellular biosynthetic process

[Term]
id: GO:0045893
name: positive regulation of transcription, DNA-templated
is_a: GO:0031326 ! regulation of cellular biosynthetic process

[Term]
id: GO:0040011
name: locomotion
is_a: GO:0008150 ! biological_process
`

const processGAF = `!gaf-version: 2.2
WB	WBGene00000912	daf-16		GO:0007568	PMID:12447374	IMP		P
WB	WBGene00000912	daf-16		GO:1900426	PMID:19234107	IMP		P
WB	WBGene00000912	daf-16		GO:0010557	PMID:12447374	IMP		P
WB	WBGene00000912	daf-16		GO:0031328	PMID:12447374	IMP		P
WB	WBGene00000912	daf-16		GO:0045893	PMID:12447374	IMP		P
WB	WBGene00000912	daf-16		GO:0040011	GO_REF:0000041	IEA		P
WB	WBGene00000001	aap-1		GO:0040011	PMID:11613322	IMP		P
`

func loadProcessFixture(t *testing.T) (*ontology.Graph, []annotations.Annotation) {
	t.Helper()
	ont, err := ontology.ParseOBO(strings.NewReader(processOBO))
	require.NoError(t, err)
	graph := ontology.NewGraph(ont, nil, nil)
	annots, err := annotations.ParseGAF(strings.NewReader(processGAF))
	require.NoError(t, err)
	return graph, annots
}

func TestNormalizeQualifiers(t *testing.T) {
	assert.Equal(t, "", normalizeQualifiers(nil))
	assert.Equal(t, "", normalizeQualifiers([]string{"involved_in"}))
	assert.Equal(t, "", normalizeQualifiers([]string{"enables", "located_in"}))
	assert.Equal(t, "NOT", normalizeQualifiers([]string{"NOT", "involved_in"}))
	assert.Equal(t, "NOT_contributes_to", normalizeQualifiers([]string{"contributes_to", "NOT"}))
}

func TestInsertGroupAfter(t *testing.T) {
	g := &Generator{evidenceGroupPriority: []string{"EXPERIMENTAL", "ELECTRONIC_ANALYSIS"}}
	g.insertGroupAfter("EXPERIMENTAL5", "EXPERIMENTAL")
	assert.Equal(t, []string{"EXPERIMENTAL", "EXPERIMENTAL5", "ELECTRONIC_ANALYSIS"}, g.evidenceGroupPriority)

	// Inserting again is a no-op.
	g.insertGroupAfter("EXPERIMENTAL5", "EXPERIMENTAL")
	assert.Equal(t, []string{"EXPERIMENTAL", "EXPERIMENTAL5", "ELECTRONIC_ANALYSIS"}, g.evidenceGroupPriority)

	// Unknown base groups append at the end.
	g.insertGroupAfter("CURATED1", "CURATED")
	assert.Equal(t, "CURATED1", g.evidenceGroupPriority[len(g.evidenceGroupPriority)-1])
}

func TestModuleSentencesTrimsWithHighPriorityTerms(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	gen := New("WB:WBGene00000912", graph, annots, config.DefaultGOModule(), Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{
		KeepOnlyBestGroup:         true,
		MergeGroupsWithSamePrefix: true,
		HighPriorityTermIDs:       []string{"GO:0007568", "GO:1900426"},
	})
	require.NoError(t, err)
	require.True(t, sentences.ContainsSentences())

	desc := sentences.Description()
	assert.Equal(t, "is involved in several processes, including aging, "+
		"positive regulation of defense response to bacterium, "+
		"and regulation of cellular biosynthetic process", desc)
	assert.ElementsMatch(t, []string{"GO:0007568", "GO:1900426", "GO:0031326"}, sentences.TermIDs(false))
}

func TestModuleSentencesWalksGroupsInPriorityOrder(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	gen := New("WB:WBGene00000912", graph, annots, config.DefaultGOModule(), Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{
		HighPriorityTermIDs: []string{"GO:0007568", "GO:1900426"},
	})
	require.NoError(t, err)
	require.Len(t, sentences.Sentences, 2)
	assert.Equal(t, "EXPERIMENTAL", sentences.Sentences[0].EvidenceGroup)
	assert.Equal(t, "ELECTRONIC_ANALYSIS", sentences.Sentences[1].EvidenceGroup)
	assert.Equal(t, "is predicted to be involved in locomotion", sentences.Sentences[1].Text)
}

func TestModuleSentencesIgnoresOtherGenes(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	gen := New("WB:WBGene00000001", graph, annots, config.DefaultGOModule(), Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{})
	require.NoError(t, err)
	require.Len(t, sentences.Sentences, 1)
	assert.Equal(t, []string{"GO:0040011"}, sentences.Sentences[0].TermIDs)
}

func TestModuleSentencesRemovesOverlapAcrossGroups(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	// The same term annotated with both IMP and IEA must only surface in the
	// higher-priority sentence.
	annots = append(annots, annotations.Annotation{
		GeneID: "WB:WBGene00000001", TermID: "GO:0040011", EvidenceCode: "IEA", Aspect: "P",
	})
	gen := New("WB:WBGene00000001", graph, annots, config.DefaultGOModule(), Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{})
	require.NoError(t, err)
	require.Len(t, sentences.Sentences, 1)
	assert.Equal(t, "EXPERIMENTAL", sentences.Sentences[0].EvidenceGroup)
}

func TestModuleSentencesSkipsUnknownTerms(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	annots = append(annots, annotations.Annotation{
		GeneID: "WB:WBGene00000001", TermID: "GO:9999999", EvidenceCode: "IMP", Aspect: "P",
	})
	gen := New("WB:WBGene00000001", graph, annots, config.DefaultGOModule(), Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{})
	require.NoError(t, err)
	assert.NotContains(t, sentences.TermIDs(false), "GO:9999999")
}

func TestModuleSentencesAppliesSpecialCaseTemplates(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	mod := config.DefaultGOModule()
	mod.SpecialCaseTemplates = []config.SpecialCase{{
		ID: 1, Aspect: "P", Group: "EXPERIMENTAL", Qualifier: "",
		Match:  "aging",
		Prefix: "is an aging-associated gene acting in", Postfix: "",
	}}
	gen := New("WB:WBGene00000912", graph, annots, mod, Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, sentences.Sentences)

	var special *Sentence
	for i := range sentences.Sentences {
		if sentences.Sentences[i].EvidenceGroup == "EXPERIMENTAL1" {
			special = &sentences.Sentences[i]
		}
	}
	require.NotNil(t, special, "matching annotation must move to the synthesized group")
	assert.Equal(t, []string{"GO:0007568"}, special.TermIDs)
	assert.Equal(t, "is an aging-associated gene acting in aging", special.Text)
}

func TestModuleSentencesDelChildrenIfParent(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	mod := config.DefaultGOModule()
	mod.DelParentsIfChild = false
	mod.DelChildrenIfParent = true
	mod.MaxNumTermsInSentence = 10
	annots = append(annots,
		annotations.Annotation{GeneID: "WB:WBGene00000001", TermID: "GO:0031326", EvidenceCode: "IMP", Aspect: "P"},
		annotations.Annotation{GeneID: "WB:WBGene00000001", TermID: "GO:0031328", EvidenceCode: "IMP", Aspect: "P"},
	)
	gen := New("WB:WBGene00000001", graph, annots, mod, Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{})
	require.NoError(t, err)
	require.Len(t, sentences.Sentences, 1)
	// The child falls away, the parent and the unrelated term stay.
	assert.Equal(t, []string{"GO:0031326", "GO:0040011"}, sentences.Sentences[0].TermIDs)
}

func TestModuleSentencesAddsOthersWhenBudgetExhausted(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	mod := config.DefaultGOModule()
	mod.MaxNumTermsInSentence = 2
	gen := New("WB:WBGene00000912", graph, annots, mod, Options{})

	// Two high-priority terms fill the whole budget; the remaining terms can
	// only be acknowledged as "others".
	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{
		KeepOnlyBestGroup:   true,
		HighPriorityTermIDs: []string{"GO:0007568", "GO:1900426"},
	})
	require.NoError(t, err)
	require.Len(t, sentences.Sentences, 1)
	s := sentences.Sentences[0]
	assert.True(t, s.AddOthers)
	assert.True(t, strings.HasSuffix(s.Text, "and others"), "got %q", s.Text)
}

func TestModuleSentencesTermIDsExperimentalOnly(t *testing.T) {
	graph, annots := loadProcessFixture(t)
	gen := New("WB:WBGene00000912", graph, annots, config.DefaultGOModule(), Options{})

	sentences, err := gen.ModuleSentences("P", "", SentenceOptions{
		HighPriorityTermIDs: []string{"GO:0007568", "GO:1900426"},
	})
	require.NoError(t, err)
	assert.NotContains(t, sentences.TermIDs(true), "GO:0040011")
	assert.Contains(t, sentences.TermIDs(false), "GO:0040011")
}
