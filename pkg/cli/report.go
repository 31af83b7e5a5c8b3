package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/report"
	urfave "github.com/urfave/cli/v3"
)

func newReportCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "report",
		Usage: "Detect mislabeled records in a category without modifying labels",
		UsageText: `catclean report --category cs.DC
   catclean report -c cs.CV --format yaml --sample 5`,
		Action: cmdReport,
		Flags:  newAnalysisFlags(),
	}
}

func cmdReport(ctx context.Context, cmd *urfave.Command) error {
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

	path := documentPath(o, "arxiv_mislabel_report")
	if err := data.WriteDocument(a.report, path); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	slog.Info("saved report", "path", path, "flagged", a.report.MislabeledCount)

	return report.Render(output(cmd), a.report, o.Sample)
}
