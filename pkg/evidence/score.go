package evidence

import (
	"strings"

	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/lexicon"
)

// TopicScore is the keyword evidence for a single topic.
type TopicScore struct {
	Topic   string   `json:"topic" yaml:"topic"`
	Count   int      `json:"count" yaml:"count"`
	Matches []string `json:"matches,omitempty" yaml:"matches,omitempty"`
}

// Scores holds one TopicScore per lexicon topic, in lexicon order.
type Scores []TopicScore

// Total returns the number of matches across all topics.
func (s Scores) Total() int {
	n := 0
	for _, ts := range s {
		n += ts.Count
	}
	return n
}

// Fold normalizes text for matching: NFKC, then lower case.
func Fold(s string) string {
	return lexicon.Fold(s)
}

// RecordText returns the folded title and abstract of the record,
// separated by a single space.
func RecordText(r data.Record) string {
	return Fold(r.Title + " " + r.Abstract)
}

// Score counts, for every topic, how many distinct keyword phrases
// appear in text. Matching is case-insensitive.
func Score(text string, lex *lexicon.Lexicon) Scores {
	return score(Fold(text), lex)
}

// ScoreRecord scores the title and abstract of the record.
func ScoreRecord(r data.Record, lex *lexicon.Lexicon) Scores {
	return score(RecordText(r), lex)
}

// score expects folded text; the lexicon carries folded keywords.
func score(text string, lex *lexicon.Lexicon) Scores {
	list := make(Scores, 0, lex.Len())
	lex.Each(func(name string, keywords, folded []string) {
		ts := TopicScore{Topic: name}
		if text != "" {
			for i, f := range folded {
				if strings.Contains(text, f) {
					ts.Matches = append(ts.Matches, keywords[i])
				}
			}
		}
		ts.Count = len(ts.Matches)
		list = append(list, ts)
	})
	return list
}
