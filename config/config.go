// Package config holds the YAML-backed description-generation settings:
// per-module options, evidence code grouping, and sentence templates.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration document.
type Config struct {
	Modules map[string]*Module `yaml:"modules"`
}

// Module collects every option for one description module (e.g. "go").
type Module struct {
	TrimmingAlgorithm           string            `yaml:"trimming_algorithm"`
	MaxNumTermsInSentence       int               `yaml:"max_num_terms_in_sentence"`
	RemoveOverlap               bool              `yaml:"remove_overlap"`
	DelParentsIfChild           bool              `yaml:"del_parents_if_child"`
	DelChildrenIfParent         bool              `yaml:"del_children_if_parent"`
	ExcludeTerms                []string          `yaml:"exclude_terms"`
	RenameCell                  bool              `yaml:"rename_cell"`
	CutoffSeveralWord           string            `yaml:"cutoff_several_word"`
	CutoffSeveralCategoryWords  map[string]string `yaml:"cutoff_several_category_words"`
	DistanceFromRoot            map[string]int    `yaml:"distance_from_root"`
	AddMultipleToCommonAncestor bool              `yaml:"add_multiple_to_common_ancestor"`
	SlimSubset                  string            `yaml:"slim_subset"`
	SlimBonusPerc               int               `yaml:"slim_bonus_perc"`

	EvidenceCodes         map[string]string `yaml:"evidence_codes"` // code -> evidence group
	EvidenceGroupPriority []string          `yaml:"evidence_group_priority"`

	SentenceTemplates    []Template    `yaml:"sentence_templates"`
	SpecialCaseTemplates []SpecialCase `yaml:"special_case_templates"`
}

// Template is the (prefix, postfix) pair applied to one
// (aspect, evidence group, qualifier) combination.
type Template struct {
	Aspect    string `yaml:"aspect"`
	Group     string `yaml:"group"`
	Qualifier string `yaml:"qualifier"`
	Prefix    string `yaml:"prefix"`
	Postfix   string `yaml:"postfix"`
}

// SpecialCase overrides a template when the annotated term's label matches a
// pattern. Matching annotations move to a synthesized evidence group named
// Group + ID, slotted right after the base group in the priority order.
type SpecialCase struct {
	ID        int    `yaml:"id"`
	Aspect    string `yaml:"aspect"`
	Group     string `yaml:"group"`
	Qualifier string `yaml:"qualifier"`
	Match     string `yaml:"match"` // anchored regular expression on the term label
	Prefix    string `yaml:"prefix"`
	Postfix   string `yaml:"postfix"`
}

// Load reads and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks internal consistency of the configuration.
func (c *Config) Validate() error {
	for name, m := range c.Modules {
		if m == nil {
			return fmt.Errorf("config: module %q is empty", name)
		}
		if m.MaxNumTermsInSentence < 0 {
			return fmt.Errorf("config: module %q: max_num_terms_in_sentence must be >= 0", name)
		}
		switch m.TrimmingAlgorithm {
		case "", "ic", "lca", "naive":
		default:
			return fmt.Errorf("config: module %q: unknown trimming_algorithm %q", name, m.TrimmingAlgorithm)
		}
		groups := make(map[string]struct{}, len(m.EvidenceGroupPriority))
		for _, g := range m.EvidenceGroupPriority {
			groups[g] = struct{}{}
		}
		for code, g := range m.EvidenceCodes {
			if _, ok := groups[g]; !ok {
				return fmt.Errorf("config: module %q: evidence code %s maps to group %q not in evidence_group_priority", name, code, g)
			}
		}
	}
	return nil
}

// Module returns the named module section, or nil if absent.
func (c *Config) Module(name string) *Module {
	if c == nil {
		return nil
	}
	return c.Modules[name]
}

// CategoryWords returns the per-aspect word used in the "several <word>,
// including" construction, falling back to the stock vocabulary.
func (m *Module) CategoryWords() map[string]string {
	if len(m.CutoffSeveralCategoryWords) > 0 {
		return m.CutoffSeveralCategoryWords
	}
	return map[string]string{
		"F": "functions",
		"P": "processes",
		"C": "components",
		"D": "diseases",
		"A": "tissues",
	}
}

// SeveralWord returns the quantifier used before the category word.
func (m *Module) SeveralWord() string {
	if m.CutoffSeveralWord != "" {
		return m.CutoffSeveralWord
	}
	return "several"
}

// RootDistance returns the per-aspect minimum distance from the root used
// when collecting trimming candidates.
func (m *Module) RootDistance(aspect string) int {
	dist := m.DistanceFromRoot
	if len(dist) == 0 {
		dist = map[string]int{"F": 1, "P": 1, "C": 2, "D": 3, "A": 3}
	}
	return dist[aspect]
}

// TemplateFor returns the sentence template for the given key.
func (m *Module) TemplateFor(aspect, group, qualifier string) (Template, bool) {
	for _, t := range m.SentenceTemplates {
		if t.Aspect == aspect && t.Group == group && t.Qualifier == qualifier {
			return t, true
		}
	}
	return Template{}, false
}

// SpecialCasesFor returns the special-case overrides registered for the key.
func (m *Module) SpecialCasesFor(aspect, group, qualifier string) []SpecialCase {
	var out []SpecialCase
	for _, sc := range m.SpecialCaseTemplates {
		if sc.Aspect == aspect && sc.Group == group && sc.Qualifier == qualifier {
			out = append(out, sc)
		}
	}
	return out
}

// DefaultGOModule returns a GO module section with the stock evidence
// grouping and templates, usable without a configuration file.
func DefaultGOModule() *Module {
	return &Module{
		TrimmingAlgorithm:     "ic",
		MaxNumTermsInSentence: 3,
		RemoveOverlap:         true,
		DelParentsIfChild:     true,
		DelChildrenIfParent:   false,
		RenameCell:            true,
		SlimSubset:            "goslim_generic",
		SlimBonusPerc:         50,
		EvidenceCodes: map[string]string{
			"EXP": "EXPERIMENTAL", "IDA": "EXPERIMENTAL", "IPI": "EXPERIMENTAL",
			"IMP": "EXPERIMENTAL", "IGI": "EXPERIMENTAL", "IEP": "EXPERIMENTAL",
			"HTP": "HIGH_THROUGHPUT_EXPERIMENTAL", "HDA": "HIGH_THROUGHPUT_EXPERIMENTAL",
			"HMP": "HIGH_THROUGHPUT_EXPERIMENTAL", "HGI": "HIGH_THROUGHPUT_EXPERIMENTAL",
			"HEP": "HIGH_THROUGHPUT_EXPERIMENTAL",
			"IBA": "PHYLOGENETIC_ANALYSIS", "IBD": "PHYLOGENETIC_ANALYSIS",
			"ISS": "SEQUENCE_BASED_ANALYSIS", "ISO": "SEQUENCE_BASED_ANALYSIS",
			"ISA": "SEQUENCE_BASED_ANALYSIS", "ISM": "SEQUENCE_BASED_ANALYSIS",
			"IEA": "ELECTRONIC_ANALYSIS",
		},
		EvidenceGroupPriority: []string{
			"EXPERIMENTAL",
			"HIGH_THROUGHPUT_EXPERIMENTAL",
			"PHYLOGENETIC_ANALYSIS",
			"SEQUENCE_BASED_ANALYSIS",
			"ELECTRONIC_ANALYSIS",
		},
		SentenceTemplates: []Template{
			{Aspect: "F", Group: "EXPERIMENTAL", Prefix: "exhibits", Postfix: "activity"},
			{Aspect: "P", Group: "EXPERIMENTAL", Prefix: "is involved in", Postfix: ""},
			{Aspect: "C", Group: "EXPERIMENTAL", Prefix: "is located in the", Postfix: ""},
			{Aspect: "F", Group: "HIGH_THROUGHPUT_EXPERIMENTAL", Prefix: "is predicted to exhibit", Postfix: "activity"},
			{Aspect: "P", Group: "HIGH_THROUGHPUT_EXPERIMENTAL", Prefix: "is predicted to be involved in", Postfix: ""},
			{Aspect: "C", Group: "HIGH_THROUGHPUT_EXPERIMENTAL", Prefix: "is predicted to be located in the", Postfix: ""},
			{Aspect: "P", Group: "PHYLOGENETIC_ANALYSIS", Prefix: "is predicted to be involved in", Postfix: ""},
			{Aspect: "P", Group: "ELECTRONIC_ANALYSIS", Prefix: "is predicted to be involved in", Postfix: ""},
		},
	}
}
