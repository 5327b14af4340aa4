package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/robalobadob/poemlink/internal/board"
	"github.com/robalobadob/poemlink/internal/poem"
)

type arrangeOptions struct {
	level       string
	stage       int
	poemIndex   int
	mobile      bool
	seed        uint64
	maxAttempts int
	solve       bool
}

func newArrangeCmd(root *rootOptions) *cobra.Command {
	o := &arrangeOptions{}
	cmd := &cobra.Command{
		Use:   "arrange",
		Short: "Print an arranged board for one poem",
		Long: `Arrange a poem onto a board and print it.

Stage 0 picks a random poem from the level.

Examples:
  poemboard arrange --stage 1 --poem 1
  poemboard arrange --level high --mobile --seed 42
  poemboard arrange --stage 2 --solve`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runArrange(cmd, root, o)
		},
	}
	cmd.Flags().StringVarP(&o.level, "level", "l", string(poem.Elementary), "Level: elementary, middle or high")
	cmd.Flags().IntVarP(&o.stage, "stage", "s", 0, "1-based stage (0 for a random poem)")
	cmd.Flags().IntVarP(&o.poemIndex, "poem", "p", 0, "Poem index within the stage")
	cmd.Flags().BoolVar(&o.mobile, "mobile", false, "Use the narrow column cap")
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "Random seed (0 for a fresh board each run)")
	cmd.Flags().IntVar(&o.maxAttempts, "max-attempts", board.DefaultOptions().MaxAttempts, "Placement attempts before falling back to packing")
	cmd.Flags().BoolVar(&o.solve, "solve", false, "Also print each clause's tile path")
	return cmd
}

func runArrange(cmd *cobra.Command, root *rootOptions, o *arrangeOptions) error {
	level, err := poem.ParseLevel(o.level)
	if err != nil {
		return err
	}
	corpus, err := root.corpus()
	if err != nil {
		return err
	}

	var rng *rand.Rand
	if o.seed != 0 {
		rng = rand.New(rand.NewPCG(o.seed, o.seed))
	}

	var p poem.Poem
	if o.stage == 0 {
		if p, err = poem.RandomPoem(corpus.Poems(level), rng); err != nil {
			return err
		}
	} else {
		poems, err := corpus.Stage(level, o.stage)
		if err != nil {
			return err
		}
		if o.poemIndex < 0 || o.poemIndex >= len(poems) {
			return fmt.Errorf("stage %d has %d poems, no index %d", o.stage, len(poems), o.poemIndex)
		}
		p = poems[o.poemIndex]
	}

	clauses, err := poem.Segment(p.Text)
	if err != nil {
		return fmt.Errorf("segment %q: %w", p.Title, err)
	}
	opts := board.DefaultOptions()
	opts.MaxAttempts = o.maxAttempts
	opts.Rand = rng
	grid, err := board.NewArranger(opts).Arrange(poem.Groups(clauses), o.mobile)
	if err != nil {
		return fmt.Errorf("arrange %q: %w", p.Title, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s · %s (%dx%d)\n", p.Title, p.Author, grid.Rows(), grid.Cols())
	fmt.Fprintln(out, poem.Joined(clauses))
	fmt.Fprintln(out)
	fmt.Fprint(out, grid.String())
	if o.solve {
		fmt.Fprintln(out)
		for _, c := range clauses {
			fmt.Fprintf(out, "%d %s %v\n", c.ID, c.Text, board.Solve(grid, c.ID))
		}
	}
	return nil
}
