package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/dbus"
	"github.com/jmylchreest/popstack/internal/pop"
)

var popOpts struct {
	view string
	all  bool
}

var popCmd = &cobra.Command{
	Use:   "pop",
	Short: "Pop the top popup of a view on a running popstack",
	Long: `Remove the topmost popup of a view on a running popstack. The popup
beneath it, if any, resumes its auto-dismiss countdown.

Prints the depth of the view afterwards.

Examples:
  popstack pop                 # pop the default view
  popstack pop --view notif    # dismiss the newest notification
  popstack pop --view notif --all`,
	Args: cobra.NoArgs,
	RunE: runPop,
}

func init() {
	rootCmd.AddCommand(popCmd)

	popCmd.Flags().StringVar(&popOpts.view, "view", pop.DefaultView,
		"View to pop")
	popCmd.Flags().BoolVar(&popOpts.all, "all", false,
		"Clear the whole view instead of popping one popup")
}

func runPop(cmd *cobra.Command, args []string) error {
	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	if popOpts.all {
		err = client.Clear(popOpts.view)
	} else {
		err = client.Pop(popOpts.view)
	}
	if err != nil {
		return err
	}

	depth, err := client.Depth(popOpts.view)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), depth)
	return nil
}
