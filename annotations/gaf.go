// Package annotations parses GO annotation files (GAF 2.x) into the flat
// records the sentence generator consumes.
package annotations

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const (
	initialAnnotationCapacity = 4096
	scannerBufferSize         = 1 << 20 // 1 MB
)

// Annotation is one (entity, term, evidence, aspect, qualifiers) tuple from a
// GAF file.
type Annotation struct {
	GeneID       string // DB:DB_Object_ID, e.g. WB:WBGene00000912
	GeneSymbol   string
	TermID       string   // e.g. GO:0007568
	EvidenceCode string   // e.g. IMP, IDA, IEA
	Aspect       string   // P, F or C
	Qualifiers   []string // e.g. involved_in, NOT
}

// internPool avoids duplicate string allocations for the handful of evidence
// codes and aspects repeated across every line.
type internPool struct {
	m map[string]string
}

func newInternPool() *internPool {
	return &internPool{m: make(map[string]string, 32)}
}

func (p *internPool) get(s string) string {
	if v, ok := p.m[s]; ok {
		return v
	}
	p.m[s] = s
	return s
}

// ParseGAF parses a GAF 2.x annotation file. Comment lines (starting with
// "!") are skipped; rows with fewer than 9 columns are rejected.
func ParseGAF(r io.Reader) ([]Annotation, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, scannerBufferSize), scannerBufferSize)

	annots := make([]Annotation, 0, initialAnnotationCapacity)
	pool := newInternPool()
	lineNo := 0

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" || line[0] == '!' {
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 9 {
			return nil, fmt.Errorf("gaf: line %d: expected at least 9 columns, got %d", lineNo, len(cols))
		}
		a := Annotation{
			GeneID:       pool.get(cols[0] + ":" + cols[1]),
			GeneSymbol:   cols[2],
			TermID:       cols[4],
			EvidenceCode: pool.get(cols[6]),
			Aspect:       pool.get(cols[8]),
		}
		if cols[3] != "" {
			for _, q := range strings.Split(cols[3], "|") {
				a.Qualifiers = append(a.Qualifiers, pool.get(q))
			}
		}
		annots = append(annots, a)
	}
	return annots, scanner.Err()
}

// ParseGAFFile parses a GAF file from disk.
func ParseGAFFile(path string) ([]Annotation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseGAF(f)
}

// ForGene returns the annotations belonging to the given gene id.
func ForGene(annots []Annotation, geneID string) []Annotation {
	var out []Annotation
	for _, a := range annots {
		if a.GeneID == geneID {
			out = append(out, a)
		}
	}
	return out
}
