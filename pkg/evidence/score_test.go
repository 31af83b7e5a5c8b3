package evidence

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/lexicon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLexicon(t *testing.T) *lexicon.Lexicon {
	t.Helper()
	l, err := lexicon.New([]lexicon.Topic{
		{Name: "medicine", Keywords: []string{"patient", "cancer", "therapy", "surgery", "tumor", "diagnosis"}},
		{Name: "chemistry", Keywords: []string{"catalyst", "molecule", "synthesis"}},
	})
	require.NoError(t, err)
	return l
}

func topic(t *testing.T, s Scores, name string) TopicScore {
	t.Helper()
	for _, ts := range s {
		if ts.Topic == name {
			return ts
		}
	}
	t.Fatalf("topic %s not scored", name)
	return TopicScore{}
}

func TestScore_MedicineScenario(t *testing.T) {
	text := "a patient received cancer therapy and underwent surgery for a tumor diagnosis"
	got := Score(text, testLexicon(t))

	want := Scores{
		{Topic: "medicine", Count: 6, Matches: []string{"patient", "cancer", "therapy", "surgery", "tumor", "diagnosis"}},
		{Topic: "chemistry", Count: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Score() mismatch (-want +got):\n%s", diff)
	}
}

func TestScore_Deterministic(t *testing.T) {
	lex := lexicon.Default()
	text := RecordText(data.Record{
		Title:    "Catalyst design for CO2 reduction",
		Abstract: "We study a molecule and its synthesis in a cancer patient cohort.",
	})

	first := Score(text, lex)
	second := Score(text, lex)
	assert.Empty(t, cmp.Diff(first, second))
}

func TestScore_CountsDistinctKeywordsOnce(t *testing.T) {
	got := Score("cancer cancer cancer patient", testLexicon(t))
	med := topic(t, got, "medicine")
	assert.Equal(t, 2, med.Count)
	assert.Equal(t, []string{"patient", "cancer"}, med.Matches)
}

func TestScore_EmptyText(t *testing.T) {
	got := Score("", lexicon.Default())
	require.Len(t, got, lexicon.Default().Len())
	for _, ts := range got {
		assert.Zero(t, ts.Count, ts.Topic)
		assert.Empty(t, ts.Matches)
	}
	assert.Zero(t, got.Total())
}

func TestScore_PhraseMustBeContiguous(t *testing.T) {
	lex := lexicon.Default()
	got := Score("a clinical study of a trial design", lex)
	med := topic(t, got, "medicine")
	assert.NotContains(t, med.Matches, "clinical trial")

	got = Score("a clinical trial design", lex)
	med = topic(t, got, "medicine")
	assert.Contains(t, med.Matches, "clinical trial")
}

func TestScore_SubstringMatch(t *testing.T) {
	// no tokenization: "genetic" matches inside "epigenetics"
	got := Score("epigenetics of yeast", lexicon.Default())
	bio := topic(t, got, "biology")
	assert.Equal(t, []string{"genetic"}, bio.Matches)
}

func TestRecordText(t *testing.T) {
	tests := []struct {
		name string
		rec  data.Record
		want string
	}{
		{"both", data.Record{Title: "Black Hole", Abstract: "Dark MATTER"}, "black hole dark matter"},
		{"missing abstract", data.Record{Title: "Tumor"}, "tumor "},
		{"missing all", data.Record{}, " "},
		{"width folding", data.Record{Title: "ＣＡＮＣＥＲ"}, "cancer "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RecordText(tt.rec))
		})
	}
}

func TestScore_CaseInsensitiveKeywords(t *testing.T) {
	l, err := lexicon.New([]lexicon.Topic{{Name: "x", Keywords: []string{"CO2 Reduction"}}})
	require.NoError(t, err)

	got := Score(RecordText(data.Record{Title: "Electrochemical co2 REDUCTION"}), l)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, []string{"CO2 Reduction"}, got[0].Matches)
}

func TestScore_FoldsRawText(t *testing.T) {
	got := Score("A Patient with CANCER underwent Surgery", lexicon.Default())
	med := topic(t, got, "medicine")
	assert.Equal(t, 3, med.Count)
	assert.Equal(t, []string{"cancer", "patient", "surgery"}, med.Matches)
	assert.Equal(t, 3, got.Total())
}

func TestScore_CaseVariantKeywordsCountOnce(t *testing.T) {
	l, err := lexicon.New([]lexicon.Topic{{Name: "medicine", Keywords: []string{"cancer", "Cancer", "CANCER"}}})
	require.NoError(t, err)

	got := Score("a cancer study", l)
	assert.Equal(t, 1, got[0].Count)
	assert.Equal(t, []string{"cancer"}, got[0].Matches)
}

func TestScoreRecord(t *testing.T) {
	rec := data.Record{Title: "Tumor Growth", Abstract: "In each PATIENT"}
	want := Score(rec.Title+" "+rec.Abstract, testLexicon(t))
	assert.Empty(t, cmp.Diff(want, ScoreRecord(rec, testLexicon(t))))
	assert.Equal(t, 2, want.Total())
}
