package ontology

// Ontology represents a parsed OBO-style ontology (e.g. the Gene Ontology).
type Ontology struct {
	FormatVersion string    `json:"format_version,omitempty"`
	DataVersion   string    `json:"data_version,omitempty"`
	Ontology      string    `json:"ontology,omitempty"`
	DefaultNS     string    `json:"default_namespace,omitempty"`
	Terms         []Term    `json:"terms"`
	TypeDefs      []TypeDef `json:"typedefs,omitempty"`
}

// TypeDef represents an OBO Typedef stanza (object property).
type TypeDef struct {
	ID           string `json:"id"`
	Name         string `json:"name,omitempty"`
	IsTransitive bool   `json:"is_transitive,omitempty"`
	IsReflexive  bool   `json:"is_reflexive,omitempty"`
}

// Term represents a single ontology term.
type Term struct {
	ID            string            `json:"id"`
	Name          string            `json:"name,omitempty"`
	Namespace     string            `json:"namespace,omitempty"`
	Definition    string            `json:"definition,omitempty"`
	IsObsolete    bool              `json:"is_obsolete,omitempty"`
	Comment       string            `json:"comment,omitempty"`
	Subsets       []string          `json:"subsets,omitempty"`
	Synonyms      []Synonym         `json:"synonyms,omitempty"`
	Xrefs         []string          `json:"xrefs,omitempty"`
	AltIDs        []string          `json:"alt_ids,omitempty"`
	Relationships []Relationship    `json:"relationships,omitempty"`
	Properties    map[string]string `json:"properties,omitempty"`
}

// Synonym represents a term synonym with its scope type.
type Synonym struct {
	Text  string   `json:"text"`
	Scope string   `json:"scope"` // EXACT, BROAD, NARROW, RELATED
	Type  string   `json:"type,omitempty"`
	Xrefs []string `json:"xrefs,omitempty"`
}

// Relationship represents a typed relationship to another term.
type Relationship struct {
	Type     string `json:"type"` // is_a, part_of, regulates, etc.
	TargetID string `json:"target_id"`
	Name     string `json:"name,omitempty"`
}
