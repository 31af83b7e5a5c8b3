package lexicon

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

// Topic is a named set of keyword phrases characteristic of one domain.
type Topic struct {
	Name     string   `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// Lexicon is an ordered, read-only collection of topics.
// Topic order is significant: it decides which topic is blamed when
// several of them qualify for the same record.
type Lexicon struct {
	topics []Topic
	folded [][]string
}

// Fold normalizes text for matching: NFKC, then lower case.
// A Caser is not safe for concurrent use, so one is created per call.
func Fold(s string) string {
	return cases.Lower(language.Und).String(norm.NFKC.String(s))
}

// FoldKeywords trims keywords and drops empty ones and the ones that fold
// to an already seen form. It returns the kept spellings and their folded
// forms, index aligned.
func FoldKeywords(keywords []string) (kept, folded []string) {
	seen := make(map[string]bool, len(keywords))
	kept = make([]string, 0, len(keywords))
	folded = make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		f := Fold(kw)
		if seen[f] {
			continue
		}
		seen[f] = true
		kept = append(kept, kw)
		folded = append(folded, f)
	}
	return kept, folded
}

// New creates a lexicon from the given topics, preserving their order.
// Topic names must be unique and non-empty. Keywords are trimmed, empty
// ones are dropped and, within a topic, only the first spelling of each
// case-insensitive form is kept.
func New(topics []Topic) (*Lexicon, error) {
	if len(topics) == 0 {
		return nil, errors.New("lexicon requires at least one topic")
	}

	seen := make(map[string]bool, len(topics))
	l := &Lexicon{
		topics: make([]Topic, 0, len(topics)),
		folded: make([][]string, 0, len(topics)),
	}
	for _, t := range topics {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			return nil, errors.New("topic name is required")
		}
		if seen[name] {
			return nil, errors.Errorf("duplicate topic: %s", name)
		}
		seen[name] = true

		kws, folded := FoldKeywords(t.Keywords)
		l.topics = append(l.topics, Topic{Name: name, Keywords: kws})
		l.folded = append(l.folded, folded)
	}

	return l, nil
}

// Must is like New but panics on error. Used for built-in data.
func Must(topics []Topic) *Lexicon {
	l, err := New(topics)
	if err != nil {
		panic(err)
	}
	return l
}

// Len returns the number of topics.
func (l *Lexicon) Len() int {
	if l == nil {
		return 0
	}
	return len(l.topics)
}

// Names returns topic names in declared order.
func (l *Lexicon) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, len(l.topics))
	for i, t := range l.topics {
		names[i] = t.Name
	}
	return names
}

// Topics returns a deep copy of the topics in declared order.
func (l *Lexicon) Topics() []Topic {
	if l == nil {
		return nil
	}
	list := make([]Topic, len(l.topics))
	for i, t := range l.topics {
		list[i] = Topic{Name: t.Name, Keywords: append([]string(nil), t.Keywords...)}
	}
	return list
}

// Each calls fn for every topic in declared order with the keyword
// spellings and their folded forms, index aligned. The slices must not
// be modified.
func (l *Lexicon) Each(fn func(name string, keywords, folded []string)) {
	if l == nil {
		return
	}
	for i, t := range l.topics {
		fn(t.Name, t.Keywords, l.folded[i])
	}
}

// Load reads a lexicon from a YAML file containing a list of topics:
//
//   - name: medicine
//     keywords: [cancer, tumor]
func Load(path string) (*Lexicon, error) {
	if path == "" {
		return nil, errors.New("lexicon path required")
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading lexicon file: %s", path)
	}

	return Parse(b)
}

// Parse decodes YAML (or JSON) lexicon content.
func Parse(b []byte) (*Lexicon, error) {
	var topics []Topic
	if err := yaml.Unmarshal(b, &topics); err != nil {
		return nil, errors.Wrap(err, "error decoding lexicon")
	}
	return New(topics)
}

// LoadOrDefault returns the lexicon at path, or the built-in lexicon
// when path is empty.
func LoadOrDefault(path string) (*Lexicon, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	return Load(path)
}
