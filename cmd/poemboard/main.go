// cmd/poemboard
//
// Offline tool for inspecting poem boards.
//
//	poemboard arrange --level elementary --stage 1 --poem 0 --seed 7
//	poemboard stages --level middle
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/poemlink/internal/poem"
)

type rootOptions struct {
	poemsDir string
	verbose  bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "poemboard",
		Short: "Arrange classical poems into link boards",
		Long: `poemboard loads the poem corpus and prints boards the way the
server would arrange them, which is handy for checking a new corpus file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
			if opts.verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.poemsDir, "poems-dir", os.Getenv("POEMS_DIR"), "Directory of <level>.json corpus files (default: embedded)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log arrangement attempts")

	root.AddCommand(newArrangeCmd(opts))
	root.AddCommand(newStagesCmd(opts))
	return root
}

func (o *rootOptions) corpus() (*poem.Corpus, error) {
	c, err := poem.Load(o.poemsDir)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return c, nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
