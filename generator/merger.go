package generator

import (
	"sort"
	"strings"

	"github.com/go-openapi/inflect"
)

// sentenceMerger accumulates the sentences sharing one textual prefix. It is
// a builder only; it produces a merged Sentence and is then discarded.
type sentenceMerger struct {
	postfixes         []string
	termIDs           map[string]struct{}
	evidenceGroups    []string
	additionalPrefix  string
	aspect            string
	qualifier         string
	ancestorsMultiple map[string]struct{}
	anyTrimmed        bool
	anyOthers         bool
}

// mergeSentencesWithSamePrefix merges sentences that share a prefix into one
// sentence each: term ids and evidence groups are unioned, parent terms are
// optionally pruned from the union, and the postfixes are merged into a
// single phrase.
func (g *Generator) mergeSentencesWithSamePrefix(sentences []Sentence, removeParentTerms, renameCell bool, highPriority map[string]struct{}, putMaleAtEnd bool) []Sentence {
	mergers := make(map[string]*sentenceMerger)
	var order []string
	for _, s := range sentences {
		m, ok := mergers[s.Prefix]
		if !ok {
			m = &sentenceMerger{
				termIDs:           make(map[string]struct{}),
				ancestorsMultiple: make(map[string]struct{}),
			}
			mergers[s.Prefix] = m
			order = append(order, s.Prefix)
		}
		m.postfixes = append(m.postfixes, s.Postfix)
		m.aspect = s.Aspect
		m.qualifier = s.Qualifier
		for _, id := range s.TermIDs {
			m.termIDs[id] = struct{}{}
		}
		m.evidenceGroups = append(m.evidenceGroups, s.EvidenceGroup)
		if s.AdditionalPrefix != "" {
			m.additionalPrefix = s.AdditionalPrefix
		}
		for label := range s.AncestorsCoveringMultipleTerms {
			m.ancestorsMultiple[label] = struct{}{}
		}
		m.anyTrimmed = m.anyTrimmed || s.Trimmed
		m.anyOthers = m.anyOthers || s.AddOthers
	}

	if removeParentTerms {
		for _, prefix := range order {
			m := mergers[prefix]
			pruned := withoutParents(m.termIDs, g.ont, highPriority)
			if len(pruned) < len(m.termIDs) {
				g.logger.Debug("removed parents from merged terms",
					"count", len(m.termIDs)-len(pruned))
				m.termIDs = pruned
			}
		}
	}

	merged := make([]Sentence, 0, len(order))
	for _, prefix := range order {
		m := mergers[prefix]
		if len(m.termIDs) == 0 {
			continue
		}
		ids := make([]string, 0, len(m.termIDs))
		for id := range m.termIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		names := make([]string, 0, len(ids))
		for _, id := range ids {
			names = append(names, g.ont.Label(id, true))
		}
		postfix := mergePostfixPhrases(m.postfixes)
		merged = append(merged, Sentence{
			Prefix:  prefix,
			TermIDs: ids,
			Postfix: postfix,
			Text: composeSentence(composeInput{
				prefix:            prefix,
				additionalPrefix:  m.additionalPrefix,
				termNames:         names,
				postfix:           postfix,
				addOthers:         m.anyOthers,
				ancestorsMultiple: m.ancestorsMultiple,
				renameCell:        renameCell,
				putMaleAtEnd:      putMaleAtEnd,
			}),
			Aspect:                         m.aspect,
			EvidenceGroup:                  strings.Join(m.evidenceGroups, ", "),
			Qualifier:                      m.qualifier,
			AdditionalPrefix:               m.additionalPrefix,
			Trimmed:                        m.anyTrimmed,
			AddOthers:                      m.anyOthers,
			AncestorsCoveringMultipleTerms: m.ancestorsMultiple,
		})
	}
	return merged
}

// withoutParents returns the ids that are not ancestors of other ids in the
// set; high-priority ancestors are kept.
func withoutParents(ids map[string]struct{}, ont Ontology, highPriority map[string]struct{}) map[string]struct{} {
	ancestors := make(map[string]struct{})
	for id := range ids {
		for anc := range ont.Ancestors(id, false) {
			if _, high := highPriority[anc]; high {
				continue
			}
			ancestors[anc] = struct{}{}
		}
	}
	out := make(map[string]struct{}, len(ids))
	for id := range ids {
		if _, isParent := ancestors[id]; !isParent {
			out[id] = struct{}{}
		}
	}
	return out
}

// mergePostfixPhrases merges postfix phrases by factoring out the longest
// common prefix and suffix, pluralizing a single-word common suffix, and
// joining the distinguishing fragments with commas and a final "and".
func mergePostfixPhrases(phrases []string) string {
	// Drop empties and duplicates; a group's sentences usually repeat the
	// same postfix and merging a phrase with itself must be a no-op.
	uniq := make([]string, 0, len(phrases))
	seen := make(map[string]struct{}, len(phrases))
	for _, p := range phrases {
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		uniq = append(uniq, p)
	}
	switch len(uniq) {
	case 0:
		return ""
	case 1:
		return uniq[0]
	}

	shortest := uniq[0]
	for _, p := range uniq[1:] {
		if len(p) < len(shortest) {
			shortest = p
		}
	}

	firstPart := ""
	for i := 0; i < len(shortest); i++ {
		agree := true
		for _, p := range uniq {
			if p[i] != shortest[i] {
				agree = false
				break
			}
		}
		if !agree {
			break
		}
		firstPart += string(shortest[i])
	}
	lastPart := ""
	for i := 0; i < len(shortest); i++ {
		agree := true
		for _, p := range uniq {
			if p[len(p)-i-1] != shortest[len(shortest)-i-1] {
				agree = false
				break
			}
		}
		if !agree {
			break
		}
		lastPart = string(shortest[len(shortest)-i-1]) + lastPart
	}

	fragments := make([]string, 0, len(uniq))
	for _, p := range uniq {
		f := strings.TrimPrefix(p, firstPart)
		f = strings.TrimSuffix(f, lastPart)
		fragments = append(fragments, f)
	}

	lastPart = pluralizeSuffix(lastPart)

	switch len(fragments) {
	case 1:
		return firstPart + fragments[0] + lastPart
	case 2:
		return firstPart + fragments[0] + " and " + fragments[1] + lastPart
	default:
		return firstPart + strings.Join(fragments[:len(fragments)-1], ", ") + ", and " + fragments[len(fragments)-1] + lastPart
	}
}

// pluralizeSuffix pluralizes a single-word common suffix; multi-word suffixes
// pass through unchanged. An empty suffix pluralizes to a bare "s" so the
// final distinguishing fragment carries the plural.
func pluralizeSuffix(suffix string) string {
	word := strings.TrimSpace(suffix)
	if strings.Contains(word, " ") {
		return suffix
	}
	if word == "" {
		return suffix + "s"
	}
	return strings.Replace(suffix, word, inflect.Pluralize(word), 1)
}
