package generator

import (
	"sort"
	"strings"
)

// composeInput carries everything needed to render one sentence's text.
type composeInput struct {
	prefix           string
	additionalPrefix string
	termNames        []string
	postfix          string
	addOthers        bool
	// labels of ancestors that replaced several original terms
	ancestorsMultiple map[string]struct{}
	renameCell        bool
	putMaleAtEnd      bool
}

// composeSentence renders prefix + term labels + postfix. Labels are sorted,
// the literal label "cell" is renamed when configured, male-specific anatomy
// labels move to the end when configured, and ancestors that replaced several
// terms get a "(multiple)" marker.
func composeSentence(in composeInput) string {
	names := append([]string(nil), in.termNames...)
	sort.Strings(names)

	for i, name := range names {
		if in.renameCell && (name == "cell" || name == "Cell") {
			name = "the cell"
		}
		if _, multi := in.ancestorsMultiple[names[i]]; multi {
			name += " (multiple)"
		}
		names[i] = name
	}

	if in.putMaleAtEnd {
		names = maleLast(names)
	}
	if in.addOthers {
		names = append(names, "others")
	}

	text := in.prefix + in.additionalPrefix + " " + joinWithOxfordComma(names)
	if in.postfix != "" {
		text += " " + in.postfix
	}
	return strings.Join(strings.Fields(text), " ")
}

// maleLast moves male-specific labels to the end, preserving relative order.
func maleLast(names []string) []string {
	out := make([]string, 0, len(names))
	var male []string
	for _, n := range names {
		if containsWord(n, "male") {
			male = append(male, n)
			continue
		}
		out = append(out, n)
	}
	return append(out, male...)
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if f == word {
			return true
		}
	}
	return false
}

// joinWithOxfordComma joins labels as "a", "a and b", or "a, b, and c".
func joinWithOxfordComma(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}
