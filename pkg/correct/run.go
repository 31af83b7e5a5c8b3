package correct

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/evidence"
	"github.com/mchmarny/catclean/pkg/lexicon"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Input is everything a correction pass needs. Nothing in it is mutated.
type Input struct {
	Records    []data.Record
	Matrix     *data.LabelMatrix
	Vocabulary *data.Vocabulary
	Lexicon    *lexicon.Lexicon
	Category   string
	Threshold  int

	// Workers bounds the number of records scored concurrently.
	// Zero selects runtime.NumCPU().
	Workers int

	// Positive are keywords expected in legitimate members of the category.
	// They are counted for the report only.
	Positive []string
}

// Flag is the evidence collected for a record whose label was removed.
type Flag struct {
	Index   int         `json:"idx" yaml:"idx"`
	Record  data.Record `json:"record" yaml:"record"`
	Verdict Verdict     `json:"verdict" yaml:"verdict"`
	Support int         `json:"support" yaml:"support"`
}

// Result is the outcome of a correction pass.
type Result struct {
	Category      string
	CategoryIndex int
	Threshold     int
	Topics        []string

	// Matrix is the corrected copy; the input matrix is left untouched.
	Matrix *data.LabelMatrix

	// Removed and Flags are in record index order.
	Removed []RemovalEvent
	Flags   []Flag

	OriginalCount int
	RemovedCount  int
	FinalCount    int
}

type scored struct {
	verdict Verdict
	flagged bool
	support int
	total   int
}

const indicatorTopic = "indicators"

func validate(in *Input) (int, error) {
	if in.Lexicon == nil || in.Lexicon.Len() == 0 {
		return 0, data.NewConfigError("lexicon", "at least one topic is required")
	}
	if in.Workers < 0 {
		return 0, data.NewConfigError("workers", "must be >= 0, got %d", in.Workers)
	}
	if in.Vocabulary == nil {
		return 0, &data.LoadError{Source: "metadata", Err: errors.New("category vocabulary not loaded")}
	}

	col, ok := in.Vocabulary.Index(in.Category)
	if !ok {
		return 0, data.NewConfigError("category", "%q not found in category vocabulary", in.Category)
	}

	if in.Matrix == nil {
		return 0, &data.LoadError{Source: "labels", Err: errors.New("label matrix not loaded")}
	}
	if in.Matrix.Rows() != len(in.Records) {
		return 0, &data.LoadError{Source: "labels", Err: errors.Errorf(
			"matrix has %d rows but there are %d records", in.Matrix.Rows(), len(in.Records))}
	}
	if in.Matrix.Cols() != in.Vocabulary.Len() {
		return 0, &data.LoadError{Source: "labels", Err: errors.Errorf(
			"matrix has %d columns but there are %d categories", in.Matrix.Cols(), in.Vocabulary.Len())}
	}

	return col, nil
}

// Run removes the target category label from every record whose text
// carries enough evidence of an unrelated topic. Only records currently
// carrying the label are scored. Scoring runs on a bounded worker pool;
// results are merged by record index so the outcome does not depend on
// the number of workers.
func Run(ctx context.Context, in Input) (*Result, error) {
	col, err := validate(&in)
	if err != nil {
		return nil, err
	}

	workers := in.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	var positive *lexicon.Lexicon
	if len(in.Positive) > 0 {
		positive, err = lexicon.New([]lexicon.Topic{{Name: indicatorTopic, Keywords: in.Positive}})
		if err != nil {
			return nil, data.NewConfigError("positive", "%v", err)
		}
	}

	candidates := make([]int, 0)
	for i := range in.Records {
		if in.Matrix.Has(i, col) {
			candidates = append(candidates, i)
		}
	}

	slog.Info("cleaning category",
		"category", in.Category,
		"records", len(in.Records),
		"candidates", len(candidates),
		"threshold", in.Threshold,
		"workers", workers,
	)

	results := make([]scored, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, row := range candidates {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = scoreRecord(in.Records[row], in.Lexicon, in.Threshold, positive)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "scoring pass interrupted")
	}

	res := &Result{
		Category:      in.Category,
		CategoryIndex: col,
		Threshold:     in.Threshold,
		Topics:        in.Lexicon.Names(),
		Matrix:        in.Matrix.Clone(),
		Removed:       make([]RemovalEvent, 0),
		Flags:         make([]Flag, 0),
		OriginalCount: len(candidates),
	}

	for i, row := range candidates {
		s := results[i]
		if !s.flagged {
			continue
		}

		rec := in.Records[row]
		ev := Apply(res.Matrix, row, col, rec, s.verdict)
		res.Removed = append(res.Removed, ev)
		res.Flags = append(res.Flags, Flag{
			Index:   row,
			Record:  rec,
			Verdict: s.verdict,
			Support: s.support,
		})

		slog.Debug("removed label", "idx", row, "title", rec.Title, "reason", ev.Reason, "total_matches", s.total)
	}

	res.RemovedCount = len(res.Removed)
	res.FinalCount = res.Matrix.Count(col)

	return res, nil
}

func scoreRecord(rec data.Record, lex *lexicon.Lexicon, threshold int, positive *lexicon.Lexicon) scored {
	scores := evidence.ScoreRecord(rec, lex)
	v, ok := Decide(scores, threshold)
	if !ok {
		return scored{}
	}

	s := scored{verdict: v, flagged: true, total: scores.Total()}
	if positive != nil {
		s.support = evidence.ScoreRecord(rec, positive).Total()
	}
	return s
}
