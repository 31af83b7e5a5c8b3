package cli

import (
	"context"
	"fmt"

	"github.com/mchmarny/catclean/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const (
	runFlag   = "run"
	limitFlag = "limit"
)

func newHistoryCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "history",
		Usage: "List recorded cleaning runs",
		UsageText: `catclean history                   # latest runs
   catclean history -c cs.DC --limit 5
   catclean history --run 12          # removals of run 12`,
		Action: cmdHistory,
		Flags: []urfave.Flag{
			newCategoryFlag(false, "Only list runs for this category"),
			&urfave.IntFlag{
				Name:  limitFlag,
				Usage: "Max number of runs to list",
				Value: 20,
			},
			&urfave.IntFlag{
				Name:  runFlag,
				Usage: "Print the removals of this run ID",
			},
		},
	}
}

func cmdHistory(_ context.Context, cmd *urfave.Command) error {
	app, err := applyFlags(cmd)
	if err != nil {
		return err
	}

	db, err := data.OpenAudit(app.AuditDB)
	if err != nil {
		return fmt.Errorf("opening audit store: %w", err)
	}
	defer db.Close()

	if cmd.IsSet(runFlag) {
		id := int64(cmd.Int(runFlag))
		list, err := db.GetRemovals(id)
		if err != nil {
			return fmt.Errorf("getting removals for run %d: %w", id, err)
		}
		return encode(output(cmd), app.Format, list)
	}

	list, err := db.ListRuns(cmd.String(categoryFlag), cmd.Int(limitFlag))
	if err != nil {
		return fmt.Errorf("listing runs: %w", err)
	}
	return encode(output(cmd), app.Format, list)
}
