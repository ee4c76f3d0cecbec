package ontology

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
)

const writerBufferSize = 256 * 1024 // 256 KB

// WriteJSON writes the parsed term set as a single JSON document: header
// fields, every non-obsolete and obsolete term with its relationships,
// subsets and alt ids, and the typedefs. The output round-trips through
// encoding/json back into an Ontology.
func WriteJSON(ont *Ontology, w io.Writer) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ont); err != nil {
		return err
	}
	return bw.Flush()
}

// WriteJSONFile writes the ontology as JSON to the given file path. This is
// the fast path of the convert command for full-size GO dumps.
func WriteJSONFile(ont *Ontology, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return WriteJSON(ont, f)
}

// WriteJSONPretty writes indented JSON, for inspecting small ontologies by
// eye. Indentation roughly doubles the output size of a full GO dump.
func WriteJSONPretty(ont *Ontology, w io.Writer) error {
	bw := bufio.NewWriterSize(w, writerBufferSize)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(ont); err != nil {
		return err
	}
	return bw.Flush()
}
