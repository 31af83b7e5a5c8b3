package cli

import (
	"context"

	"github.com/mchmarny/catclean/pkg/data"
	"github.com/mchmarny/catclean/pkg/lexicon"
	urfave "github.com/urfave/cli/v3"
)

func newLexiconCmd() *urfave.Command {
	return &urfave.Command{
		Name:  "lexicon",
		Usage: "Print the effective non-target lexicon",
		UsageText: `catclean lexicon                              # built-in lexicon
   catclean lexicon --lexicon topics.yaml        # validate an override
   catclean lexicon -c cs.DC --format yaml       # include category indicators`,
		Action: cmdLexicon,
		Flags: []urfave.Flag{
			newLexiconFlag(),
			newCategoryFlag(false, "Include the positive indicators of this category"),
		},
	}
}

type lexiconView struct {
	Topics     []lexicon.Topic `json:"topics" yaml:"topics"`
	Category   string          `json:"category,omitempty" yaml:"category,omitempty"`
	Indicators []string        `json:"indicators,omitempty" yaml:"indicators,omitempty"`
}

func cmdLexicon(_ context.Context, cmd *urfave.Command) error {
	app, err := applyFlags(cmd)
	if err != nil {
		return err
	}

	path := app.Lexicon
	if cmd.IsSet(lexiconFlag) {
		path = cmd.String(lexiconFlag)
	}

	lex, err := lexicon.LoadOrDefault(path)
	if err != nil {
		return &data.LoadError{Source: path, Err: err}
	}

	v := lexiconView{Topics: lex.Topics()}
	if c := cmd.String(categoryFlag); c != "" {
		v.Category = c
		v.Indicators = lexicon.Indicators(c)
	}

	return encode(output(cmd), app.Format, v)
}
