// Package generator turns grouped ontology annotations into natural-language
// description sentences, trimming oversized term sets through the trimming
// package and merging sentences that share a prefix.
package generator

import "strings"

// Sentence is one generated phrase for an (aspect, evidence group, qualifier)
// combination. It is immutable once built.
type Sentence struct {
	Prefix           string
	TermIDs          []string
	Postfix          string
	Text             string
	Aspect           string
	EvidenceGroup    string
	Qualifier        string
	AdditionalPrefix string
	Trimmed          bool
	AddOthers        bool
	// AncestorsCoveringMultipleTerms holds the labels of ancestors that
	// replaced several original terms, for "(multiple)" rendering.
	AncestorsCoveringMultipleTerms map[string]struct{}
}

// ModuleSentences is the ordered sentence list generated for one module.
type ModuleSentences struct {
	Sentences []Sentence
}

// Description returns the concatenated description text.
func (m *ModuleSentences) Description() string {
	parts := make([]string, 0, len(m.Sentences))
	for _, s := range m.Sentences {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, " and ")
}

// TermIDs returns the ids contributing to the description. With
// experimentalOnly set, only sentences from experimental evidence groups
// count.
func (m *ModuleSentences) TermIDs(experimentalOnly bool) []string {
	var ids []string
	for _, s := range m.Sentences {
		if experimentalOnly && !strings.HasPrefix(s.EvidenceGroup, "EXPERIMENTAL") {
			continue
		}
		ids = append(ids, s.TermIDs...)
	}
	return ids
}

// ContainsSentences reports whether any sentence was generated.
func (m *ModuleSentences) ContainsSentences() bool {
	return len(m.Sentences) > 0
}
