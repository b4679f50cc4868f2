package main

import (
	"fmt"

	"github.com/4thel00z/journalsync/internal"
	"github.com/spf13/cobra"
)

func NewDiffCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Preview what the next sync would write",
		Long:  `Compare the normalized vault journal with the site content folder without writing anything.`,
		Args:  cobra.NoArgs,
		RunE:  makeDiffRunner(a),
	}

	cmd.Flags().Bool("stat", false, "Only list affected files")
	return cmd
}

func makeDiffRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		stat, _ := cmd.Flags().GetBool("stat")

		s, err := a.open(cmd)
		if err != nil {
			return err
		}

		out, err := internal.NewPlanUseCase(s.ws, s.fs).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if len(out.Changes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Destination is up to date")
			return nil
		}

		for _, c := range out.Changes {
			line := fmt.Sprintf("%s %s", c.Action, c.Name)
			if c.Normalized {
				line += " (adds frontmatter)"
			}
			fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render(line))

			if stat || c.Diff == "" {
				continue
			}
			fmt.Fprint(cmd.OutOrStdout(), c.Diff)
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	}
}
