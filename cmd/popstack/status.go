package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/dbus"
)

var statusOpts struct {
	json bool
}

// ViewStatus is one line of status output.
type ViewStatus struct {
	View  string `json:"view"`
	Depth uint32 `json:"depth"`
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the views of a running popstack",
	Long: `List the views of a running popstack and how many popups each holds.

With --json the output is a JSON array of {"view", "depth"} objects,
suitable for status bars.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVar(&statusOpts.json, "json", false,
		"Output as JSON")
}

func runStatus(cmd *cobra.Command, args []string) error {
	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	views, err := client.Views()
	if err != nil {
		return err
	}

	statuses := make([]ViewStatus, 0, len(views))
	for _, v := range views {
		depth, err := client.Depth(v)
		if err != nil {
			return err
		}
		statuses = append(statuses, ViewStatus{View: v, Depth: depth})
	}

	out := cmd.OutOrStdout()
	if statusOpts.json {
		encoder := json.NewEncoder(out)
		return encoder.Encode(statuses)
	}
	for _, s := range statuses {
		fmt.Fprintf(out, "%-12s %d\n", s.View, s.Depth)
	}
	return nil
}
