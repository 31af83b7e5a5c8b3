package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/mchmarny/catclean/pkg/data"
	urfave "github.com/urfave/cli/v3"
)

const yesFlag = "yes"

func newResetCmd() *urfave.Command {
	return &urfave.Command{
		Name:   "reset",
		Usage:  "Delete the recorded run history and start fresh",
		Action: cmdReset,
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:    yesFlag,
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt",
			},
		},
	}
}

func cmdReset(_ context.Context, cmd *urfave.Command) error {
	app, err := applyFlags(cmd)
	if err != nil {
		return err
	}

	out := output(cmd)
	if strings.Contains(app.AuditDB, "://") {
		return fmt.Errorf("reset only supports file based audit stores, drop the tables of %s manually", app.AuditDB)
	}

	if !cmd.Bool(yesFlag) {
		fmt.Fprintf(out, "This will permanently delete all run history in %s\n", app.AuditDB)
		fmt.Fprint(out, "Are you sure? [y/N]: ")

		answer, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	if err := os.Remove(app.AuditDB); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting audit store: %w", err)
	}
	slog.Info("audit store deleted", "path", app.AuditDB)

	// re-initialize empty store
	db, err := data.OpenAudit(app.AuditDB)
	if err != nil {
		return fmt.Errorf("re-initializing audit store: %w", err)
	}
	defer db.Close()

	slog.Info("audit store re-initialized", "path", app.AuditDB)
	fmt.Fprintln(out, "Reset complete.")
	return nil
}
