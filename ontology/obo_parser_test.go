package ontology

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOBO = `format-version: 1.2
data-version: releases/2024-01-17
ontology: go
default-namespace: gene_ontology

[Term]
id: GO:0007568
name: aging
namespace: biological_process
def: "A developmental process that is a deterioration and loss of function over time." [GOC:PO_curators]
comment: Note that this term was reorganized.
subset: goslim_agr
synonym: "ageing" EXACT []
xref: Wikipedia:Ageing
alt_id: GO:0016280
is_a: GO:0008150 ! biological_process
relationship: part_of GO:0032502 ! developmental process
property_value: term_tracker_item "https://github.com/geneontology/go-ontology/issues/1" xsd:anyURI

[Term]
id: GO:0000001
name: obsolete mitochondrion inheritance
is_obsolete: true

[Typedef]
id: part_of
name: part of
is_transitive: true
`

func TestParseOBOHeader(t *testing.T) {
	ont, err := ParseOBO(strings.NewReader(sampleOBO))
	require.NoError(t, err)
	assert.Equal(t, "1.2", ont.FormatVersion)
	assert.Equal(t, "releases/2024-01-17", ont.DataVersion)
	assert.Equal(t, "go", ont.Ontology)
	assert.Equal(t, "gene_ontology", ont.DefaultNS)
}

func TestParseOBOTerm(t *testing.T) {
	ont, err := ParseOBO(strings.NewReader(sampleOBO))
	require.NoError(t, err)
	require.Len(t, ont.Terms, 2)

	term := ont.Terms[0]
	assert.Equal(t, "GO:0007568", term.ID)
	assert.Equal(t, "aging", term.Name)
	assert.Equal(t, "biological_process", term.Namespace)
	assert.Equal(t, "A developmental process that is a deterioration and loss of function over time.", term.Definition)
	assert.Equal(t, "Note that this term was reorganized.", term.Comment)
	assert.Equal(t, []string{"goslim_agr"}, term.Subsets)
	assert.Equal(t, []string{"Wikipedia:Ageing"}, term.Xrefs)
	assert.Equal(t, []string{"GO:0016280"}, term.AltIDs)
	assert.False(t, term.IsObsolete)

	require.Len(t, term.Synonyms, 1)
	assert.Equal(t, "ageing", term.Synonyms[0].Text)
	assert.Equal(t, "EXACT", term.Synonyms[0].Scope)

	require.Len(t, term.Relationships, 2)
	assert.Equal(t, Relationship{Type: "is_a", TargetID: "GO:0008150", Name: "biological_process"}, term.Relationships[0])
	assert.Equal(t, Relationship{Type: "part_of", TargetID: "GO:0032502", Name: "developmental process"}, term.Relationships[1])

	assert.Equal(t, "https://github.com/geneontology/go-ontology/issues/1", term.Properties["term_tracker_item"])
}

func TestParseOBOObsoleteFlag(t *testing.T) {
	ont, err := ParseOBO(strings.NewReader(sampleOBO))
	require.NoError(t, err)
	assert.True(t, ont.Terms[1].IsObsolete)
}

func TestParseOBOTypedef(t *testing.T) {
	ont, err := ParseOBO(strings.NewReader(sampleOBO))
	require.NoError(t, err)
	require.Len(t, ont.TypeDefs, 1)
	assert.Equal(t, "part_of", ont.TypeDefs[0].ID)
	assert.Equal(t, "part of", ont.TypeDefs[0].Name)
	assert.True(t, ont.TypeDefs[0].IsTransitive)
}

func TestParseOBOEmptyInput(t *testing.T) {
	ont, err := ParseOBO(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, ont.Terms)
}

func TestParseSynonymWithXrefs(t *testing.T) {
	syn := parseSynonym(`"cell ageing" NARROW [GOC:dph]`)
	assert.Equal(t, "cell ageing", syn.Text)
	assert.Equal(t, "NARROW", syn.Scope)
	assert.Equal(t, []string{"GOC:dph"}, syn.Xrefs)
}
