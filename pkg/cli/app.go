package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/mchmarny/catclean/pkg/config"
	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/logging"
	urfave "github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	appName = "catclean"
	envPfx  = "CATCLEAN_"

	debugFlag    = "debug"
	logLevelFlag = "log-level"
	configFlag   = "config"
	formatFlag   = "format"
	auditDBFlag  = "audit-db"
)

var (
	version = "v0.0.1-default"
	commit  = ""
	date    = ""

	logLevel = &slog.LevelVar{}
)

// Execute creates and runs the CLI application.
func Execute() {
	initLogging(os.Stderr)

	app := newApp()
	if err := app.Run(context.Background(), os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// newApp builds the command tree. Flags keep parse state, so every app
// gets its own instances.
func newApp() *urfave.Command {
	return &urfave.Command{
		Name:                  appName,
		Version:               fmt.Sprintf("%s (%s - %s)", version, commit, date),
		EnableShellCompletion: true,
		HideHelpCommand:       true,
		Usage:                 "Audit category labels and remove the ones contradicted by the paper text",
		Flags: []urfave.Flag{
			&urfave.BoolFlag{
				Name:    debugFlag,
				Usage:   "Prints verbose logs (optional, default: false)",
				Sources: urfave.EnvVars(envPfx + "DEBUG"),
			},
			&urfave.StringFlag{
				Name:    logLevelFlag,
				Usage:   "Log level [debug, info, warn, error]",
				Value:   "info",
				Sources: urfave.EnvVars(envPfx + "LOG_LEVEL"),
			},
			&urfave.StringFlag{
				Name:    configFlag,
				Usage:   fmt.Sprintf("Path to the config file (optional, defaults to $HOME/.%s/%s)", appName, config.FileName),
				Sources: urfave.EnvVars(envPfx + "CONFIG"),
			},
			&urfave.StringFlag{
				Name:  formatFlag,
				Usage: "Output format [json, yaml]",
			},
			&urfave.StringFlag{
				Name:    auditDBFlag,
				Usage:   fmt.Sprintf("Audit store: sqlite file or postgres:// URL (optional, defaults to $HOME/.%s/%s)", appName, data.AuditFileName),
				Sources: urfave.EnvVars(envPfx + "AUDIT_DB"),
			},
		},
		Commands: []*urfave.Command{
			newCleanCmd(),
			newReportCmd(),
			newLexiconCmd(),
			newHistoryCmd(),
			newAuthCmd(),
			newResetCmd(),
		},
	}
}

// appConfig is the effective configuration of a single command run.
type appConfig struct {
	*config.Config
	Home string
}

// initLogging installs the CLI handler as the slog default. Colors are
// only emitted when w is a terminal.
func initLogging(w io.Writer) {
	h := logging.NewCLIHandler(w, logLevel)
	if !isTerminal(w) {
		h = h.WithoutColor()
	}
	slog.SetDefault(slog.New(h))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// applyFlags sets the log level and resolves the config file. Values set
// on the command line override the file.
func applyFlags(cmd *urfave.Command) (*appConfig, error) {
	logLevel.Set(logging.ParseLogLevel(cmd.String(logLevelFlag)))
	if cmd.Bool(debugFlag) {
		logLevel.Set(slog.LevelDebug)
	}

	home, err := getHomeDir()
	if err != nil {
		return nil, err
	}

	cfgPath := cmd.String(configFlag)
	var cfg *config.Config
	if cfgPath == "" {
		cfgPath = filepath.Join(home, config.FileName)
		cfg, err = config.ReadOrCreate(home)
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		return nil, &data.LoadError{Source: cfgPath, Err: err}
	}

	if f := cmd.String(formatFlag); f != "" {
		cfg.Format = f
	}
	if cfg.Format == "yml" {
		cfg.Format = data.FormatYAML
	}
	cfg.Format = strings.ToLower(cfg.Format)

	if a := cmd.String(auditDBFlag); a != "" {
		cfg.AuditDB = a
	}
	if cfg.AuditDB == "" {
		cfg.AuditDB = filepath.Join(home, data.AuditFileName)
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	slog.Debug("config resolved", "path", cfgPath, "format", cfg.Format)

	return &appConfig{
		Config: cfg,
		Home:   home,
	}, nil
}

func getHomeDir() (string, error) {
	dir, created, err := config.GetOrCreateHomeDir(appName)
	if err != nil {
		return "", fmt.Errorf("resolving app directory: %w", err)
	}
	if created {
		slog.Debug("created app dir", "path", dir)
	}
	return dir, nil
}

func output(cmd *urfave.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func encode(w io.Writer, format string, v any) error {
	if format == data.FormatYAML {
		e := yaml.NewEncoder(w)
		defer e.Close()
		return e.Encode(v)
	}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	return e.Encode(v)
}
