package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mchmarny/catclean/pkg/auth"
	urfave "github.com/urfave/cli/v3"
)

const (
	tokenFlag       = "token"
	deleteTokenFlag = "delete"
)

// stdin is swapped in tests
var stdin io.Reader = os.Stdin

func newAuthCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "auth",
		Usage: "Save the bearer token used to download remote datasets",
		UsageText: `catclean auth                 # prompt for the token
   catclean auth --delete        # forget the token`,
		Action: cmdAuth,
		Flags: []urfave.Flag{
			&urfave.StringFlag{
				Name:    tokenFlag,
				Usage:   "Bearer token for remote dataset URLs (prompted when not set)",
				Sources: urfave.EnvVars(envPfx + "TOKEN"),
			},
			&urfave.BoolFlag{
				Name:  deleteTokenFlag,
				Usage: "Remove the saved token",
			},
		},
	}
}

func cmdAuth(_ context.Context, cmd *urfave.Command) error {
	app, err := applyFlags(cmd)
	if err != nil {
		return err
	}

	out := output(cmd)
	store := &auth.Store{Dir: app.Home}

	if cmd.Bool(deleteTokenFlag) {
		if err := store.Delete(); err != nil {
			return fmt.Errorf("deleting token: %w", err)
		}
		fmt.Fprintln(out, "Token deleted")
		return nil
	}

	token := cmd.String(tokenFlag)
	if token == "" {
		fmt.Fprint(out, "Paste the dataset token and hit enter:\n>")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("reading user input: %w", err)
		}
		token = strings.TrimSpace(line)
	}

	if err := store.Save(token); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}

	fmt.Fprintln(out, "Token saved")
	return nil
}
