package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/journalsync/internal"
	"github.com/spf13/cobra"
)

func NewLogCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show journal commit history",
		Long:  `Show commits that touched the vault journal or the site content folder.`,
		Args:  cobra.NoArgs,
		RunE:  makeLogRunner(a),
	}

	cmd.Flags().IntP("number", "n", 10, "Limit number of commits")
	cmd.Flags().Bool("oneline", false, "Show each commit on one line")
	return cmd
}

func makeLogRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		limit, _ := cmd.Flags().GetInt("number")
		oneline, _ := cmd.Flags().GetBool("oneline")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := a.open(cmd)
		if err != nil {
			return err
		}
		vc, err := s.vcs()
		if err != nil {
			return err
		}

		out, err := internal.NewLogUseCase(s.ws, vc).Execute(cmd.Context(), internal.LogInput{
			Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("get log: %w", err)
		}

		if asJSON {
			return outputCommitsJSON(cmd, out.Commits)
		}

		for _, c := range out.Commits {
			if oneline {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", shortHash(c.Hash), c.Message)
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "commit %s\n", c.Hash)
			fmt.Fprintf(cmd.OutOrStdout(), "Author: %s\n", c.Author)
			fmt.Fprintf(cmd.OutOrStdout(), "Date:   %s\n\n", c.Timestamp.Format("Mon Jan 2 15:04:05 2006 -0700"))
			fmt.Fprintf(cmd.OutOrStdout(), "    %s\n\n", c.Message)
		}
		return nil
	}
}

func outputCommitsJSON(cmd *cobra.Command, commits []internal.CommitOutput) error {
	out := make([]map[string]any, 0, len(commits))
	for _, c := range commits {
		out = append(out, map[string]any{
			"hash":      c.Hash,
			"message":   c.Message,
			"author":    c.Author,
			"timestamp": c.Timestamp,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
