package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/dbus"
	"github.com/jmylchreest/popstack/internal/notif"
)

var sendOpts struct {
	level   string
	timeout time.Duration
	quiet   bool
}

var sendCmd = &cobra.Command{
	Use:   "send MESSAGE...",
	Short: "Push a notification onto a running popstack",
	Long: `Push a notification onto the notification view of a running popstack
(started with "popstack tui --dbus" or dbus.enabled = true).

The descriptor ID of the new notification is printed on success.

Examples:
  popstack send "Build finished" --level done
  popstack send "Disk almost full" --level warn --timeout 10s
  popstack send "Read me" --timeout 0   # stays until popped`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)

	sendCmd.Flags().StringVarP(&sendOpts.level, "level", "l", string(notif.LevelLog),
		fmt.Sprintf("Notification level %v", notif.Levels()))
	sendCmd.Flags().DurationVarP(&sendOpts.timeout, "timeout", "t", -1,
		"Time before the notification auto-dismisses (0 = never, default: server setting)")
	sendCmd.Flags().BoolVarP(&sendOpts.quiet, "quiet", "q", false,
		"Do not print the notification ID")
}

func runSend(cmd *cobra.Command, args []string) error {
	level, err := notif.ParseLevel(sendOpts.level)
	if err != nil {
		return err
	}

	client, err := dbus.NewClient()
	if err != nil {
		return err
	}

	id, err := client.Notify(strings.Join(args, " "), string(level), sendOpts.timeout)
	if err != nil {
		return err
	}

	logger.Debug("sent notification", "id", id, "level", level, "timeout", sendOpts.timeout)
	if !sendOpts.quiet {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}
