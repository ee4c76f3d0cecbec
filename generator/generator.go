package generator

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/nodeadmin/genedesc/annotations"
	"github.com/nodeadmin/genedesc/config"
	"github.com/nodeadmin/genedesc/trimming"
)

// Ontology is the read-only term DAG the generator traverses.
// *ontology.Graph satisfies it.
type Ontology interface {
	trimming.Ontology
	HasTerm(id string) bool
}

type groupKey struct {
	aspect    string
	qualifier string
}

type templateKey struct {
	aspect    string
	group     string
	qualifier string
}

// Options configures a Generator.
type Options struct {
	// LimitToGroup restricts annotations to evidence groups containing the
	// given substring.
	LimitToGroup string
	// SlimSet holds the preferred terms given an information-content bonus
	// during trimming.
	SlimSet map[string]struct{}
	Logger  *slog.Logger
}

// SentenceOptions controls one ModuleSentences call.
type SentenceOptions struct {
	// KeepOnlyBestGroup stops after the highest-priority evidence group
	// that produced a sentence.
	KeepOnlyBestGroup bool
	// MergeGroupsWithSamePrefix merges sentences sharing a textual prefix.
	MergeGroupsWithSamePrefix bool
	// HighPriorityTermIDs always appear in the output and are never
	// trimmed away in favor of other terms.
	HighPriorityTermIDs []string
}

// Generator builds description sentences for one gene. It owns the
// terms-already-covered state for the whole generation, so a Generator must
// not be shared between concurrent generations; use one per gene.
type Generator struct {
	geneID string
	ont    Ontology
	module *config.Module
	logger *slog.Logger

	termsGroups           map[groupKey]map[string]map[string]struct{}
	evidenceGroupPriority []string
	templates             map[templateKey]config.Template
	slimSet               map[string]struct{}
	termsAlreadyCovered   map[string]struct{}
	trimmers              map[string]trimming.Trimmer
}

// defaultRelationQualifiers are the GAF 2.2 relation qualifiers that carry no
// template-selecting meaning; they map to the empty qualifier.
var defaultRelationQualifiers = map[string]struct{}{
	"involved_in": {}, "enables": {}, "located_in": {}, "part_of": {},
	"is_active_in": {}, "acts_upstream_of": {}, "acts_upstream_of_or_within": {},
	"acts_upstream_of_positive_effect": {}, "acts_upstream_of_negative_effect": {},
	"acts_upstream_of_or_within_positive_effect": {},
	"acts_upstream_of_or_within_negative_effect": {},
}

// New groups the gene's annotations by (aspect, qualifier, evidence group),
// applying any special-case template overrides, and returns a generator
// ready to produce sentences.
func New(geneID string, ont Ontology, annots []annotations.Annotation, mod *config.Module, opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	g := &Generator{
		geneID:                geneID,
		ont:                   ont,
		module:                mod,
		logger:                logger,
		termsGroups:           make(map[groupKey]map[string]map[string]struct{}),
		evidenceGroupPriority: append([]string(nil), mod.EvidenceGroupPriority...),
		templates:             make(map[templateKey]config.Template),
		slimSet:               opts.SlimSet,
		termsAlreadyCovered:   make(map[string]struct{}),
		trimmers:              make(map[string]trimming.Trimmer),
	}
	for _, t := range mod.SentenceTemplates {
		g.templates[templateKey{t.Aspect, t.Group, t.Qualifier}] = t
	}

	type compiledSpecialCase struct {
		config.SpecialCase
		re *regexp.Regexp
	}
	specialCases := make(map[templateKey][]compiledSpecialCase)
	for _, sc := range mod.SpecialCaseTemplates {
		re, err := regexp.Compile("^(?:" + sc.Match + ")")
		if err != nil {
			logger.Warn("invalid special case pattern skipped",
				slog.String("pattern", sc.Match), slog.String("error", err.Error()))
			continue
		}
		key := templateKey{sc.Aspect, sc.Group, sc.Qualifier}
		specialCases[key] = append(specialCases[key], compiledSpecialCase{sc, re})
	}

	for _, a := range annots {
		if a.GeneID != geneID {
			continue
		}
		group, known := mod.EvidenceCodes[a.EvidenceCode]
		if !known {
			continue
		}
		if opts.LimitToGroup != "" && !strings.Contains(group, opts.LimitToGroup) {
			continue
		}
		if !ont.HasTerm(a.TermID) {
			logger.Debug("annotation to unknown term skipped",
				slog.String("gene", geneID), slog.String("term", a.TermID))
			continue
		}
		qualifier := normalizeQualifiers(a.Qualifiers)

		for _, sc := range specialCases[templateKey{a.Aspect, group, qualifier}] {
			if !sc.re.MatchString(ont.Label(a.TermID, true)) {
				continue
			}
			special := group + strconv.Itoa(sc.ID)
			g.insertGroupAfter(special, group)
			g.templates[templateKey{a.Aspect, special, qualifier}] = config.Template{
				Aspect: a.Aspect, Group: special, Qualifier: qualifier,
				Prefix: sc.Prefix, Postfix: sc.Postfix,
			}
			group = special
			break
		}

		key := groupKey{a.Aspect, qualifier}
		byGroup, ok := g.termsGroups[key]
		if !ok {
			byGroup = make(map[string]map[string]struct{})
			g.termsGroups[key] = byGroup
		}
		terms, ok := byGroup[group]
		if !ok {
			terms = make(map[string]struct{})
			byGroup[group] = terms
		}
		terms[a.TermID] = struct{}{}
	}
	return g
}

func normalizeQualifiers(quals []string) string {
	var kept []string
	for _, q := range quals {
		if _, relation := defaultRelationQualifiers[q]; relation {
			continue
		}
		kept = append(kept, q)
	}
	sort.Strings(kept)
	return strings.Join(kept, "_")
}

// insertGroupAfter places a synthesized evidence group right after its base
// group in the priority order, once.
func (g *Generator) insertGroupAfter(group, base string) {
	for _, existing := range g.evidenceGroupPriority {
		if existing == group {
			return
		}
	}
	for i, existing := range g.evidenceGroupPriority {
		if existing == base {
			g.evidenceGroupPriority = append(g.evidenceGroupPriority[:i+1],
				append([]string{group}, g.evidenceGroupPriority[i+1:]...)...)
			return
		}
	}
	g.evidenceGroupPriority = append(g.evidenceGroupPriority, group)
}

// ModuleSentences generates the sentences for one aspect and qualifier,
// walking evidence groups in priority order.
func (g *Generator) ModuleSentences(aspect, qualifier string, opts SentenceOptions) (*ModuleSentences, error) {
	highPriority := make(map[string]struct{}, len(opts.HighPriorityTermIDs))
	for _, id := range opts.HighPriorityTermIDs {
		highPriority[id] = struct{}{}
	}
	priority := make(map[string]int, len(g.evidenceGroupPriority))
	for i, group := range g.evidenceGroupPriority {
		priority[group] = i
	}

	type entry struct {
		group string
		prio  int
		terms map[string]struct{}
	}
	var entries []entry
	for group, terms := range g.termsGroups[groupKey{aspect, qualifier}] {
		p, ok := priority[group]
		if !ok {
			g.logger.Debug("evidence group without priority skipped", slog.String("group", group))
			continue
		}
		entries = append(entries, entry{group, p, terms})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].prio < entries[j].prio })

	var sentences []Sentence
	for _, e := range entries {
		ids, trimmed, addOthers, ancestors, err := g.reduceTerms(e.terms, aspect, highPriority)
		if err != nil {
			return nil, fmt.Errorf("generator: gene %s aspect %s group %s: %w", g.geneID, aspect, e.group, err)
		}
		tmpl, ok := g.templates[templateKey{aspect, e.group, qualifier}]
		if !ok || len(ids) == 0 {
			continue
		}
		sentences = append(sentences, g.singleSentence(ids, aspect, e.group, qualifier, tmpl, trimmed, addOthers, ancestors))
		if opts.KeepOnlyBestGroup {
			return &ModuleSentences{Sentences: sentences}, nil
		}
	}
	if opts.MergeGroupsWithSamePrefix {
		sentences = g.mergeSentencesWithSamePrefix(sentences, g.module.DelParentsIfChild,
			g.module.RenameCell, highPriority, aspect == "A")
	}
	return &ModuleSentences{Sentences: sentences}, nil
}

// singleSentence builds one sentence from a reduced term set.
func (g *Generator) singleSentence(ids []string, aspect, group, qualifier string, tmpl config.Template, trimmed, addOthers bool, ancestors map[string]struct{}) Sentence {
	additionalPrefix := ""
	if trimmed {
		categoryWord, ok := g.module.CategoryWords()[aspect]
		if !ok {
			categoryWord = "entities"
		}
		additionalPrefix = " " + g.module.SeveralWord() + " " + categoryWord + ", including"
	}
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, g.ont.Label(id, true))
	}
	return Sentence{
		Prefix:  tmpl.Prefix,
		TermIDs: ids,
		Postfix: tmpl.Postfix,
		Text: composeSentence(composeInput{
			prefix:            tmpl.Prefix,
			additionalPrefix:  additionalPrefix,
			termNames:         names,
			postfix:           tmpl.Postfix,
			addOthers:         addOthers,
			ancestorsMultiple: ancestors,
			renameCell:        g.module.RenameCell,
			putMaleAtEnd:      aspect == "A",
		}),
		Aspect:                         aspect,
		EvidenceGroup:                  group,
		Qualifier:                      qualifier,
		AdditionalPrefix:               additionalPrefix,
		Trimmed:                        trimmed,
		AddOthers:                      addOthers,
		AncestorsCoveringMultipleTerms: ancestors,
	}
}

// reduceTerms applies, in order: overlap removal, exclusion list, parent
// pruning, trimming when the cap is exceeded, and child pruning. Every
// removal feeds the terms-already-covered state.
func (g *Generator) reduceTerms(terms map[string]struct{}, aspect string, highPriority map[string]struct{}) (ids []string, trimmed, addOthers bool, ancestors map[string]struct{}, err error) {
	working := make(map[string]struct{}, len(terms))
	for id := range terms {
		working[id] = struct{}{}
	}
	if g.module.RemoveOverlap {
		for id := range g.termsAlreadyCovered {
			delete(working, id)
		}
	}
	for _, id := range g.module.ExcludeTerms {
		delete(working, id)
	}
	if g.module.DelParentsIfChild {
		working = g.removeParentsIfChildPresent(working, highPriority)
	}

	ancestors = make(map[string]struct{})
	maxTerms := g.module.MaxNumTermsInSentence
	if maxTerms > 0 && len(working) > maxTerms {
		trimmed = true
		ids, addOthers, err = g.trimByCommonAncestor(working, aspect, highPriority, ancestors)
		if err != nil {
			return nil, false, false, nil, err
		}
	} else {
		for id := range working {
			g.termsAlreadyCovered[id] = struct{}{}
		}
		ids = sortedIDs(working)
	}

	if g.module.DelChildrenIfParent {
		var multi map[string]struct{}
		if g.module.AddMultipleToCommonAncestor {
			multi = ancestors
		}
		ids = g.removeChildrenIfParentsPresent(ids, highPriority, multi)
	}
	return ids, trimmed, addOthers, ancestors, nil
}

// trimByCommonAncestor splits the terms into high- and low-priority pools and
// trims each: high-priority terms get the full cap to themselves first, and
// low-priority terms fill whatever budget remains.
func (g *Generator) trimByCommonAncestor(terms map[string]struct{}, aspect string, highPriority map[string]struct{}, ancestors map[string]struct{}) ([]string, bool, error) {
	maxTerms := g.module.MaxNumTermsInSentence
	var high, low []string
	for id := range terms {
		if _, isHigh := highPriority[id]; isHigh {
			high = append(high, id)
		} else {
			low = append(low, id)
		}
	}
	sort.Strings(high)
	sort.Strings(low)

	var multi map[string]struct{}
	if g.module.AddMultipleToCommonAncestor {
		multi = ancestors
	}

	addOthersHigh := false
	if len(high) > maxTerms {
		high = g.removeChildrenIfParentsPresent(high, nil, multi)
	}
	if len(high) > maxTerms {
		g.logger.Debug("reached maximum number of terms, trimming high priority terms",
			slog.Int("count", len(high)))
		var err error
		high, addOthersHigh, err = g.bestNodes(high, maxTerms, aspect, multi)
		if err != nil {
			return nil, false, err
		}
	} else {
		for _, id := range high {
			g.termsAlreadyCovered[id] = struct{}{}
		}
	}

	addOthersLow := false
	budget := maxTerms - len(high)
	switch {
	case budget > 0 && len(low) > budget:
		var err error
		low, addOthersLow, err = g.bestNodes(low, budget, aspect, multi)
		if err != nil {
			return nil, false, err
		}
	case budget <= 0 && len(low) > 0:
		addOthersLow = true
	}

	result := append([]string(nil), high...)
	inHigh := make(map[string]struct{}, len(high))
	for _, id := range high {
		inHigh[id] = struct{}{}
	}
	for _, id := range low {
		if _, dup := inHigh[id]; !dup {
			result = append(result, id)
		}
	}
	if len(result) > maxTerms {
		result = result[:maxTerms]
	}
	return result, addOthersHigh || addOthersLow, nil
}

// bestNodes runs the configured trimming algorithm over the ids, records
// coverage in the terms-already-covered state, and collects the labels of
// ancestors that replaced several terms.
func (g *Generator) bestNodes(ids []string, limit int, aspect string, multi map[string]struct{}) ([]string, bool, error) {
	trimmer, err := g.trimmerFor(aspect)
	if err != nil {
		return nil, false, err
	}
	underCovered, selections, err := trimmer.Trim(ids, limit)
	if err != nil {
		return nil, false, err
	}
	kept := make([]string, 0, len(selections))
	for _, sel := range selections {
		kept = append(kept, sel.NodeID)
		for covered := range sel.Covered {
			g.termsAlreadyCovered[covered] = struct{}{}
		}
		if multi != nil && len(sel.Covered) > 1 {
			multi[g.ont.Label(sel.NodeID, true)] = struct{}{}
		}
	}
	return kept, underCovered, nil
}

func (g *Generator) trimmerFor(aspect string) (trimming.Trimmer, error) {
	if t, ok := g.trimmers[aspect]; ok {
		return t, nil
	}
	algo := trimming.Algorithm(g.module.TrimmingAlgorithm)
	if algo == "" {
		algo = trimming.AlgorithmIC
	}
	t, err := trimming.New(algo, g.ont, trimming.Options{
		MinDistanceFromRoot: g.module.RootDistance(aspect),
		Blacklist:           g.module.ExcludeTerms,
		SlimSet:             g.slimSet,
		SlimBonusPerc:       g.module.SlimBonusPerc,
		Logger:              g.logger,
	})
	if err != nil {
		return nil, err
	}
	g.trimmers[aspect] = t
	return t, nil
}

// removeParentsIfChildPresent drops terms that have a descendant in the set,
// keeping high-priority terms.
func (g *Generator) removeParentsIfChildPresent(terms map[string]struct{}, highPriority map[string]struct{}) map[string]struct{} {
	pruned := withoutParents(terms, g.ont, highPriority)
	if len(pruned) < len(terms) {
		for id := range terms {
			if _, kept := pruned[id]; !kept {
				g.termsAlreadyCovered[id] = struct{}{}
			}
		}
		g.logger.Debug("removed parents from terms", slog.Int("count", len(terms)-len(pruned)))
	}
	return pruned
}

// removeChildrenIfParentsPresent drops terms whose ancestor is also in the
// set, keeping high-priority terms. Removed ancestors' labels are recorded in
// multi when requested, for "(multiple)" rendering after merging.
func (g *Generator) removeChildrenIfParentsPresent(ids []string, highPriority map[string]struct{}, multi map[string]struct{}) []string {
	inSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		inSet[id] = struct{}{}
	}
	kept := make([]string, 0, len(ids))
	for _, id := range ids {
		var parentsPresent []string
		for anc := range g.ont.Ancestors(id, false) {
			if _, present := inSet[anc]; present {
				parentsPresent = append(parentsPresent, anc)
			}
		}
		if _, isHigh := highPriority[id]; len(parentsPresent) == 0 || isHigh {
			kept = append(kept, id)
			continue
		}
		if multi != nil {
			for _, anc := range parentsPresent {
				multi[g.ont.Label(anc, true)] = struct{}{}
			}
		}
	}
	if len(kept) < len(ids) {
		for _, id := range ids {
			found := false
			for _, k := range kept {
				if k == id {
					found = true
					break
				}
			}
			if !found {
				g.termsAlreadyCovered[id] = struct{}{}
			}
		}
		g.logger.Debug("removed children from terms", slog.Int("count", len(ids)-len(kept)))
	}
	return kept
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
