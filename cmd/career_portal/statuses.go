package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/jonathan/career-services/internal/types"
	"github.com/spf13/cobra"
)

var statusesJSON bool

var statusesCmd = &cobra.Command{
	Use:   "statuses",
	Short: "Print the application status display table",
	RunE:  runStatuses,
}

func init() {
	statusesCmd.Flags().BoolVar(&statusesJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(statusesCmd)
}

type statusRow struct {
	Status types.ApplicationStatus `json:"status"`
	types.StatusProjection
}

func runStatuses(cmd *cobra.Command, _ []string) error {
	rows := make([]statusRow, 0, len(types.ApplicationStatuses))
	for _, status := range types.ApplicationStatuses {
		rows = append(rows, statusRow{Status: status, StatusProjection: status.Project()})
	}

	if statusesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tLABEL\tDESCRIPTION")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\n", row.Status, row.Label, row.Description)
	}
	return w.Flush()
}
