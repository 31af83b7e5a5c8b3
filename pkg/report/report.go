package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/mchmarny/catclean/pkg/correct"
	"github.com/mchmarny/catclean/pkg/lexicon"
)

const (
	EvidenceLimit       = 5
	SnippetLength       = 200
	RemovedSampleLimit  = 20
	DetectionMethod     = "Keyword-based topic identification"
	CleaningMethod      = "targeted_topic_filtering"
	unknownCategory     = "unknown"
	snippetEllipsis     = "..."
	dateLayout          = "2006-01-02"
	recordIDPlaceholder = "paper_%d"
)

// Meta describes the run that produced a result.
type Meta struct {
	Date    time.Time
	Lexicon *lexicon.Lexicon
}

// Statistics are the label counts of the target category.
type Statistics struct {
	OriginalCount int `json:"original_count" yaml:"original_count"`
	RemovedCount  int `json:"removed_count" yaml:"removed_count"`
	FinalCount    int `json:"final_count" yaml:"final_count"`
}

// Methodology documents how records were flagged.
type Methodology struct {
	DetectionMethod string   `json:"detection_method" yaml:"detection_method"`
	Threshold       string   `json:"threshold" yaml:"threshold"`
	TopicsChecked   []string `json:"topics_checked" yaml:"topics_checked"`
}

// Evidence is the report entry of a single flagged record.
type Evidence struct {
	RecordID           string   `json:"arxiv_id" yaml:"arxiv_id"`
	Title              string   `json:"title" yaml:"title"`
	CategoriesListed   []string `json:"categories_listed" yaml:"categories_listed"`
	PrimaryCategory    string   `json:"primary_category" yaml:"primary_category"`
	ActualTopic        string   `json:"actual_topic" yaml:"actual_topic"`
	EvidenceKeywords   []string `json:"evidence_keywords" yaml:"evidence_keywords"`
	KeywordCount       int      `json:"keyword_count" yaml:"keyword_count"`
	SupportingKeywords int      `json:"supporting_keywords" yaml:"supporting_keywords"`
	AbstractSnippet    string   `json:"abstract_snippet" yaml:"abstract_snippet"`
}

// Report combines the cleaning metadata with the mislabel evidence.
type Report struct {
	Category         string                 `json:"category" yaml:"category"`
	Date             string                 `json:"cleaning_date" yaml:"cleaning_date"`
	Method           string                 `json:"method" yaml:"method"`
	Threshold        int                    `json:"threshold" yaml:"threshold"`
	Topics           []lexicon.Topic        `json:"non_cs_topics" yaml:"non_cs_topics"`
	Statistics       Statistics             `json:"statistics" yaml:"statistics"`
	RemovedSample    []correct.RemovalEvent `json:"removed_papers_sample" yaml:"removed_papers_sample"`
	TotalCount       int                    `json:"total_category_papers" yaml:"total_category_papers"`
	MislabeledCount  int                    `json:"mislabeled_count" yaml:"mislabeled_count"`
	MislabelRate     string                 `json:"mislabel_rate" yaml:"mislabel_rate"`
	Methodology      Methodology            `json:"methodology" yaml:"methodology"`
	MislabeledPapers []Evidence             `json:"mislabeled_papers" yaml:"mislabeled_papers"`
	ByTopic          map[string]int         `json:"by_topic_summary" yaml:"by_topic_summary"`
	topicOrder       []string
}

// TopicCount is one row of the per-topic breakdown.
type TopicCount struct {
	Topic string
	Count int
}

// Build assembles the report from a correction result.
func Build(res *correct.Result, meta Meta) *Report {
	date := meta.Date
	if date.IsZero() {
		date = time.Now()
	}

	r := &Report{
		Category:  res.Category,
		Date:      date.Format(dateLayout),
		Method:    CleaningMethod,
		Threshold: res.Threshold,
		Topics:    meta.Lexicon.Topics(),
		Statistics: Statistics{
			OriginalCount: res.OriginalCount,
			RemovedCount:  res.RemovedCount,
			FinalCount:    res.FinalCount,
		},
		RemovedSample:   sample(res.Removed),
		TotalCount:      res.OriginalCount,
		MislabeledCount: len(res.Flags),
		MislabelRate:    Rate(len(res.Flags), res.OriginalCount),
		Methodology: Methodology{
			DetectionMethod: DetectionMethod,
			Threshold:       fmt.Sprintf("%d+ keywords from same non-CS topic", res.Threshold),
			TopicsChecked:   res.Topics,
		},
		MislabeledPapers: make([]Evidence, 0, len(res.Flags)),
		ByTopic:          make(map[string]int),
		topicOrder:       res.Topics,
	}

	for _, f := range res.Flags {
		r.MislabeledPapers = append(r.MislabeledPapers, toEvidence(f))
		r.ByTopic[f.Verdict.Topic]++
	}

	SortByStrength(r.MislabeledPapers)

	return r
}

func sample(list []correct.RemovalEvent) []correct.RemovalEvent {
	n := len(list)
	if n > RemovedSampleLimit {
		n = RemovedSampleLimit
	}
	out := make([]correct.RemovalEvent, n)
	copy(out, list[:n])
	return out
}

func toEvidence(f correct.Flag) Evidence {
	id := f.Record.ID
	if id == "" {
		id = fmt.Sprintf(recordIDPlaceholder, f.Index)
	}

	primary := f.Record.Primary()
	if primary == "" {
		primary = unknownCategory
	}

	cats := make([]string, len(f.Record.Categories))
	copy(cats, f.Record.Categories)

	return Evidence{
		RecordID:           id,
		Title:              f.Record.Title,
		CategoriesListed:   cats,
		PrimaryCategory:    primary,
		ActualTopic:        f.Verdict.Topic,
		EvidenceKeywords:   Truncate(f.Verdict.Matches, EvidenceLimit),
		KeywordCount:       f.Verdict.Count,
		SupportingKeywords: f.Support,
		AbstractSnippet:    Snippet(f.Record.Abstract, SnippetLength),
	}
}

// SortByStrength orders entries by descending keyword count. Entries with
// equal counts keep their discovery order.
func SortByStrength(list []Evidence) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].KeywordCount > list[j].KeywordCount
	})
}

// Rate formats part/total as a one decimal percentage. An empty total
// yields 0.0%.
func Rate(part, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

// Truncate returns a copy of the first n items.
func Truncate(list []string, n int) []string {
	if len(list) < n {
		n = len(list)
	}
	out := make([]string, n)
	copy(out, list[:n])
	return out
}

// Snippet returns the first n runes of s followed by an ellipsis.
func Snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		runes = runes[:n]
	}
	return string(runes) + snippetEllipsis
}

// TopicBreakdown returns per-topic counts, largest first. Ties follow
// lexicon order.
func (r *Report) TopicBreakdown() []TopicCount {
	list := make([]TopicCount, 0, len(r.ByTopic))
	seen := make(map[string]bool, len(r.ByTopic))
	for _, t := range r.topicOrder {
		if n, ok := r.ByTopic[t]; ok {
			list = append(list, TopicCount{Topic: t, Count: n})
			seen[t] = true
		}
	}

	// topics not in the lexicon order (e.g. a decoded report) go last, by name
	rest := make([]string, 0)
	for t := range r.ByTopic {
		if !seen[t] {
			rest = append(rest, t)
		}
	}
	sort.Strings(rest)
	for _, t := range rest {
		list = append(list, TopicCount{Topic: t, Count: r.ByTopic[t]})
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Count > list[j].Count
	})
	return list
}
