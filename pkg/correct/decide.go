package correct

import (
	"fmt"

	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/evidence"
)

// ThresholdDefault is the minimum number of keywords from one topic
// needed to remove a label.
const ThresholdDefault = 3

// Verdict names the topic blamed for a mislabel.
type Verdict struct {
	Topic   string   `json:"topic" yaml:"topic"`
	Count   int      `json:"count" yaml:"count"`
	Matches []string `json:"matches" yaml:"matches"`
}

// Reason renders the verdict the way it appears in the audit trail.
func (v Verdict) Reason() string {
	return fmt.Sprintf("%s (%d keywords)", v.Topic, v.Count)
}

// Decide returns the first topic, in lexicon order, whose match count
// reaches threshold. The first qualifying topic wins even when a later
// one has more matches. Topics without any match never qualify, so a
// threshold <= 0 flags every record with at least one match.
func Decide(scores evidence.Scores, threshold int) (Verdict, bool) {
	for _, s := range scores {
		if s.Count == 0 || s.Count < threshold {
			continue
		}
		return Verdict{
			Topic:   s.Topic,
			Count:   s.Count,
			Matches: append([]string(nil), s.Matches...),
		}, true
	}
	return Verdict{}, false
}

// RemovalEvent records a single label removal.
type RemovalEvent struct {
	Index      int      `json:"idx" yaml:"idx"`
	RecordID   string   `json:"arxiv_id,omitempty" yaml:"arxiv_id,omitempty"`
	Title      string   `json:"title" yaml:"title"`
	Categories []string `json:"categories" yaml:"categories"`
	Reason     string   `json:"reason" yaml:"reason"`
	Topic      string   `json:"-" yaml:"-"`
	Count      int      `json:"-" yaml:"-"`
}

// Apply zeroes the (row, col) strength of the working matrix and returns
// the removal event. No other cell is touched.
func Apply(m *data.LabelMatrix, row, col int, rec data.Record, v Verdict) RemovalEvent {
	m.Set(row, col, 0.0)

	cats := make([]string, len(rec.Categories))
	copy(cats, rec.Categories)

	return RemovalEvent{
		Index:      row,
		RecordID:   rec.ID,
		Title:      rec.Title,
		Categories: cats,
		Reason:     v.Reason(),
		Topic:      v.Topic,
		Count:      v.Count,
	}
}
