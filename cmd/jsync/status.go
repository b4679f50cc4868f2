package main

import (
	"encoding/json"
	"fmt"

	"github.com/4thel00z/journalsync/internal"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	addedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	deletedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	modifiedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	headerStyle   = lipgloss.NewStyle().Bold(true)
)

func NewStatusCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show uncommitted changes in the journal directories",
		Long:  `Show what the next sync would commit, as reported by git for the source and destination directories.`,
		Args:  cobra.NoArgs,
		RunE:  makeStatusRunner(a),
	}

	return cmd
}

func makeStatusRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		s, err := a.open(cmd)
		if err != nil {
			return err
		}
		vc, err := s.vcs()
		if err != nil {
			return err
		}

		out, err := internal.NewStatusUseCase(s.ws, vc).Execute(cmd.Context())
		if err != nil {
			return err
		}

		if asJSON {
			return outputStatusJSON(cmd, out.Changes)
		}

		if len(out.Changes) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to commit, journal is clean")
			return nil
		}

		fmt.Fprintln(cmd.OutOrStdout(), headerStyle.Render("Changes to be published:"))
		for _, c := range out.Changes {
			fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", kindStyle(c.Kind()).Render(fmt.Sprintf("%-9s", c.Kind())), c.Path)
		}
		return nil
	}
}

func kindStyle(kind string) lipgloss.Style {
	switch kind {
	case "added":
		return addedStyle
	case "deleted":
		return deletedStyle
	default:
		return modifiedStyle
	}
}

func outputStatusJSON(cmd *cobra.Command, changes []internal.FileChange) error {
	data := make([]map[string]any, 0, len(changes))
	for _, c := range changes {
		data = append(data, map[string]any{
			"path": c.Path,
			"kind": c.Kind(),
		})
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
