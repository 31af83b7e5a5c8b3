package data

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Vocabulary is the ordered list of category codes; position i maps to
// column i of the label matrix.
type Vocabulary struct {
	codes []string
	index map[string]int
}

// NewVocabulary creates a vocabulary. Codes must be unique and non-empty.
func NewVocabulary(codes []string) (*Vocabulary, error) {
	v := &Vocabulary{
		codes: make([]string, 0, len(codes)),
		index: make(map[string]int, len(codes)),
	}
	for i, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, errors.Errorf("empty category code at position %d", i)
		}
		if _, ok := v.index[c]; ok {
			return nil, errors.Errorf("duplicate category code: %s", c)
		}
		v.index[c] = i
		v.codes = append(v.codes, c)
	}
	return v, nil
}

// Len returns the number of categories.
func (v *Vocabulary) Len() int { return len(v.codes) }

// Index returns the matrix column of the category code.
func (v *Vocabulary) Index(code string) (int, bool) {
	i, ok := v.index[code]
	return i, ok
}

type graphMetadata struct {
	Categories []string `json:"categories"`
}

// LoadVocabulary reads the categories list from the graph metadata document.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return nil, loadErr("metadata", errors.New("path not specified"))
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, loadErr(path, errors.Wrap(err, "error reading metadata file"))
	}

	var meta graphMetadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, loadErr(path, errors.Wrap(err, "error decoding metadata"))
	}

	if len(meta.Categories) == 0 {
		return nil, loadErr(path, errors.New("metadata has no categories"))
	}

	v, err := NewVocabulary(meta.Categories)
	if err != nil {
		return nil, loadErr(path, err)
	}
	return v, nil
}
