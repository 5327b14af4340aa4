package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/robalobadob/poemlink/internal/poem"
)

func newStagesCmd(root *rootOptions) *cobra.Command {
	var level string
	cmd := &cobra.Command{
		Use:   "stages",
		Short: "List the stages of a level",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := poem.ParseLevel(level)
			if err != nil {
				return err
			}
			corpus, err := root.corpus()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s): %d poems, %d stages\n", l, l.Label(), len(corpus.Poems(l)), corpus.StageCount(l))
			for id := 1; id <= corpus.StageCount(l); id++ {
				poems, err := corpus.Stage(l, id)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "  stage %d\n", id)
				for i, p := range poems {
					fmt.Fprintf(out, "    %d. %s · %s\n", i, p.Title, p.Author)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&level, "level", "l", string(poem.Elementary), "Level: elementary, middle or high")
	return cmd
}
