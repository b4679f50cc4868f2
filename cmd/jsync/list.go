package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/journalsync/internal"
	"github.com/spf13/cobra"
)

func NewListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List journal entries",
		Long:    `List published journal entries, newest first. With --from-source, list the vault instead.`,
		Args:    cobra.NoArgs,
		RunE:    makeListRunner(a),
	}

	cmd.Flags().Bool("from-source", false, "List entries in the vault journal")
	return cmd
}

func makeListRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		fromSource, _ := cmd.Flags().GetBool("from-source")
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := a.open(cmd)
		if err != nil {
			return err
		}

		out, err := internal.NewListEntriesUseCase(s.ws, s.fs).Execute(cmd.Context(), internal.ListEntriesInput{
			FromSource: fromSource,
		})
		if err != nil {
			return fmt.Errorf("list entries: %w", err)
		}

		if asJSON {
			return outputListJSON(cmd, out)
		}

		for _, e := range out.Entries {
			title := e.Title
			if !e.HasFrontmatter {
				title = "(no frontmatter)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.Date, title)
		}
		return nil
	}
}

func outputListJSON(cmd *cobra.Command, out *internal.ListEntriesOutput) error {
	data := make([]map[string]any, 0, len(out.Entries))
	for _, e := range out.Entries {
		data = append(data, map[string]any{
			"name":            e.Name,
			"date":            e.Date,
			"title":           e.Title,
			"description":     e.Description,
			"has_frontmatter": e.HasFrontmatter,
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
