// Package glossary loads the terminology glossary used to pin the
// translation of domain-specific terms.
//
// The file format is a JSON array of {"term", "translation"} objects; the
// rendered form is one "- term > translation" line per entry, ready for
// inclusion in a prompt.
package glossary

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

type Entry struct {
	Term        string `json:"term"`
	Translation string `json:"translation"`
}

type Glossary struct {
	Entries []Entry
}

// Load reads a glossary JSON file. A missing or malformed file is an
// error; callers that treat the glossary as optional should check the
// path before calling.
func Load(path string) (*Glossary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read glossary file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse glossary file %s: %w", path, err)
	}

	for i, e := range entries {
		if strings.TrimSpace(e.Term) == "" {
			return nil, fmt.Errorf("glossary entry %d has an empty term", i)
		}
	}

	return &Glossary{Entries: entries}, nil
}

// Format renders the glossary as prompt-ready lines. An empty glossary
// renders as the empty string.
func (g *Glossary) Format() string {
	if g == nil || len(g.Entries) == 0 {
		return ""
	}
	var b strings.Builder
	for _, e := range g.Entries {
		fmt.Fprintf(&b, "- %s > %s\n", e.Term, e.Translation)
	}
	return strings.TrimSpace(b.String())
}

func (g *Glossary) Len() int {
	if g == nil {
		return 0
	}
	return len(g.Entries)
}
