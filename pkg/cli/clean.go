package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mchmarny/catclean/pkg/auth"
	"github.com/mchmarny/catclean/pkg/config"
	"github.com/mchmarny/catclean/pkg/correct"
	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/lexicon"
	"github.com/mchmarny/catclean/pkg/net"
	"github.com/mchmarny/catclean/pkg/report"
	urfave "github.com/urfave/cli/v3"
)

const (
	categoryFlag  = "category"
	papersFlag    = "papers"
	labelsFlag    = "labels"
	metadataFlag  = "metadata"
	outputFlag    = "output"
	thresholdFlag = "threshold"
	workersFlag   = "workers"
	lexiconFlag   = "lexicon"
	sampleFlag    = "sample"
	noAuditFlag   = "no-audit"
)

func newCategoryFlag(required bool, usage string) urfave.Flag {
	return &urfave.StringFlag{
		Name:     categoryFlag,
		Aliases:  []string{"c"},
		Usage:    usage,
		Required: required,
	}
}

func newLexiconFlag() urfave.Flag {
	return &urfave.StringFlag{
		Name:  lexiconFlag,
		Usage: "YAML file replacing the built-in non-target lexicon",
	}
}

func newAnalysisFlags() []urfave.Flag {
	return []urfave.Flag{
		newCategoryFlag(true, "Category code to clean (e.g. cs.DC)"),
		&urfave.StringFlag{
			Name:  papersFlag,
			Usage: "Papers export (JSON file or http(s) URL)",
		},
		&urfave.StringFlag{
			Name:  labelsFlag,
			Usage: "Label matrix (.json rows or .db sqlite, file or URL)",
		},
		&urfave.StringFlag{
			Name:  metadataFlag,
			Usage: "Graph metadata with the categories list (file or URL)",
		},
		&urfave.StringFlag{
			Name:  outputFlag,
			Usage: "Output directory",
		},
		&urfave.IntFlag{
			Name:  thresholdFlag,
			Usage: fmt.Sprintf("Min keywords from one non-target topic to remove a label (default: %d, <= 0 flags any match)", config.ThresholdDefault),
		},
		&urfave.IntFlag{
			Name:  workersFlag,
			Usage: "Number of records scored concurrently (default: number of CPUs)",
		},
		newLexiconFlag(),
		&urfave.IntFlag{
			Name:  sampleFlag,
			Usage: fmt.Sprintf("Number of records printed in the summary (default: %d)", config.SampleDefault),
		},
	}
}

func newCleanCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "clean",
		Usage: "Remove mislabeled records from a category and save the cleaned label matrix",
		UsageText: `catclean clean --category cs.DC                      # use config defaults
   catclean clean -c cs.AI --threshold 4 --output out   # stricter threshold
   catclean clean -c cs.DC --labels labels.db           # sqlite label store`,
		Action: cmdClean,
		Flags: append(newAnalysisFlags(), &urfave.BoolFlag{
			Name:  noAuditFlag,
			Usage: "Do not record the run in the audit store",
		}),
	}
}

// options are the effective inputs of one analysis.
type options struct {
	Category  string
	Papers    string
	Labels    string
	Metadata  string
	Output    string
	Lexicon   string
	Threshold int
	Workers   int
	Sample    int
	Format    string
}

func resolveOptions(cmd *urfave.Command, cfg *config.Config) (*options, error) {
	pick := func(name, def string) string {
		if cmd.IsSet(name) {
			return cmd.String(name)
		}
		return def
	}
	pickInt := func(name string, def int) int {
		if cmd.IsSet(name) {
			return cmd.Int(name)
		}
		return def
	}

	o := &options{
		Category:  strings.TrimSpace(cmd.String(categoryFlag)),
		Papers:    pick(papersFlag, cfg.Papers),
		Labels:    pick(labelsFlag, cfg.Labels),
		Metadata:  pick(metadataFlag, cfg.Metadata),
		Output:    pick(outputFlag, cfg.Output),
		Lexicon:   pick(lexiconFlag, cfg.Lexicon),
		Threshold: pickInt(thresholdFlag, cfg.Threshold),
		Workers:   pickInt(workersFlag, cfg.Workers),
		Sample:    pickInt(sampleFlag, cfg.Sample),
		Format:    cfg.Format,
	}

	if o.Category == "" {
		return nil, data.NewConfigError("category", "category code is required")
	}
	if o.Workers < 0 {
		return nil, data.NewConfigError("workers", "must be >= 0, got %d", o.Workers)
	}
	for _, in := range [][2]string{{"papers", o.Papers}, {"labels", o.Labels}, {"metadata", o.Metadata}} {
		if in[1] == "" {
			return nil, data.NewConfigError(in[0], "input path is required")
		}
	}

	return o, nil
}

// analysis is the outcome of loading the inputs and running the pass.
type analysis struct {
	opts    *options
	lexicon *lexicon.Lexicon
	result  *correct.Result
	report  *report.Report
}

func needsClient(o *options) bool {
	for _, s := range []string{o.Papers, o.Labels, o.Metadata} {
		if strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") {
			return true
		}
	}
	return false
}

func datasetClient(ctx context.Context, app *appConfig, o *options) (*http.Client, error) {
	if !needsClient(o) {
		return nil, nil
	}

	store := &auth.Store{Dir: app.Home}
	token, err := store.Get()
	if err != nil && !errors.Is(err, auth.ErrNoToken) {
		slog.Warn("failed to read dataset token, continuing without it", "error", err)
	}

	return net.ClientFor(ctx, token)
}

// analyze loads every input before scoring, so a load failure never
// leaves partial output behind.
func analyze(ctx context.Context, app *appConfig, o *options) (*analysis, error) {
	lex, err := lexicon.LoadOrDefault(o.Lexicon)
	if err != nil {
		return nil, &data.LoadError{Source: o.Lexicon, Err: err}
	}

	client, err := datasetClient(ctx, app, o)
	if err != nil {
		return nil, fmt.Errorf("creating dataset client: %w", err)
	}

	tmp, err := os.MkdirTemp("", appName)
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	vocabPath, err := data.Resolve(ctx, client, o.Metadata, tmp)
	if err != nil {
		return nil, err
	}
	vocab, err := data.LoadVocabulary(vocabPath)
	if err != nil {
		return nil, err
	}
	if _, ok := vocab.Index(o.Category); !ok {
		return nil, data.NewConfigError("category", "%q not found in %s", o.Category, o.Metadata)
	}

	records, err := data.LoadRecords(ctx, o.Papers, client)
	if err != nil {
		return nil, err
	}

	labelsPath, err := data.Resolve(ctx, client, o.Labels, tmp)
	if err != nil {
		return nil, err
	}
	matrix, err := data.LoadMatrix(labelsPath)
	if err != nil {
		return nil, err
	}

	slog.Info("loaded", "papers", len(records), "categories", vocab.Len(), "category", o.Category)

	res, err := correct.Run(ctx, correct.Input{
		Records:    records,
		Matrix:     matrix,
		Vocabulary: vocab,
		Lexicon:    lex,
		Category:   o.Category,
		Threshold:  o.Threshold,
		Workers:    o.Workers,
		Positive:   lexicon.Indicators(o.Category),
	})
	if err != nil {
		return nil, err
	}

	return &analysis{
		opts:    o,
		lexicon: lex,
		result:  res,
		report:  report.Build(res, report.Meta{Date: time.Now(), Lexicon: lex}),
	}, nil
}

func documentPath(o *options, prefix string) string {
	ext := ".json"
	if o.Format == data.FormatYAML {
		ext = ".yaml"
	}
	return filepath.Join(o.Output, fmt.Sprintf("%s_%s%s", prefix, data.ArtifactStem(o.Category), ext))
}

func cleanedMatrixPath(o *options) string {
	return filepath.Join(o.Output, fmt.Sprintf("labels_%s_cleaned%s", data.ArtifactStem(o.Category), data.MatrixExt(o.Labels)))
}

func cmdClean(ctx context.Context, cmd *urfave.Command) error {
	app, err := applyFlags(cmd)
	if err != nil {
		return err
	}

	o, err := resolveOptions(cmd, app.Config)
	if err != nil {
		return err
	}

	a, err := analyze(ctx, app, o)
	if err != nil {
		return err
	}

	labelsOut := cleanedMatrixPath(o)
	if err := data.SaveMatrix(a.result.Matrix, labelsOut); err != nil {
		return fmt.Errorf("saving cleaned labels: %w", err)
	}
	slog.Info("saved labels", "path", labelsOut)

	reportOut := documentPath(o, "cleaning_report")
	if err := data.WriteDocument(a.report, reportOut); err != nil {
		// labels without their report are not a usable run
		if rmErr := os.Remove(labelsOut); rmErr != nil {
			slog.Warn("failed to remove labels", "path", labelsOut, "error", rmErr)
		}
		return fmt.Errorf("saving report: %w", err)
	}
	slog.Info("saved report", "path", reportOut)

	if !cmd.Bool(noAuditFlag) {
		if err := recordRun(app, a); err != nil {
			// the artifacts are already written; history is best effort
			slog.Warn("failed to record run", "error", err)
		}
	}

	w := output(cmd)
	if err := report.Render(w, a.report, o.Sample); err != nil {
		return fmt.Errorf("rendering summary: %w", err)
	}
	return report.RenderRemoved(w, a.result.Removed, o.Sample)
}

func recordRun(app *appConfig, a *analysis) error {
	db, err := data.OpenAudit(app.AuditDB)
	if err != nil {
		return err
	}
	defer db.Close()

	run := &data.AuditRun{
		Category:      a.result.Category,
		Threshold:     a.result.Threshold,
		CreatedAt:     time.Now(),
		OriginalCount: a.result.OriginalCount,
		RemovedCount:  a.result.RemovedCount,
		FinalCount:    a.result.FinalCount,
		MislabelRate:  a.report.MislabelRate,
		Removals:      make([]data.AuditRemoval, 0, len(a.result.Removed)),
	}
	for _, ev := range a.result.Removed {
		run.Removals = append(run.Removals, data.AuditRemoval{
			Index:        ev.Index,
			RecordID:     ev.RecordID,
			Title:        ev.Title,
			Categories:   ev.Categories,
			Topic:        ev.Topic,
			KeywordCount: ev.Count,
			Reason:       ev.Reason,
		})
	}

	id, err := db.SaveRun(run)
	if err != nil {
		return err
	}
	slog.Debug("recorded run", "id", id, "store", db.Driver())
	return nil
}
