package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/config"
	"github.com/jmylchreest/popstack/internal/dbus"
	"github.com/jmylchreest/popstack/internal/notif"
	"github.com/jmylchreest/popstack/internal/pop"
	"github.com/jmylchreest/popstack/internal/tui"
)

var tuiOpts struct {
	dbus   bool
	mirror bool
	watch  bool
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive demo",
	Long: `Launch the interactive demo: a modal view centred on screen and a
notification view in a corner.

With --dbus the session bus bridge is exported so "popstack send" and
"popstack pop" can drive the running TUI. With --mirror desktop
notifications are mirrored into the notification view.

Key bindings:
  n           Push a notification (levels cycle)
  N           Pop the top notification
  m           Push a modal
  r           Replace the top modal
  R           Replace every modal with a new one
  p           Pop the top modal
  enter       Confirm the top modal
  esc         Close the top modal
  c           Clear both views
  ?           Show help
  q           Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	tuiCmd.Flags().BoolVar(&tuiOpts.dbus, "dbus", false,
		"Export the D-Bus bridge (also enabled by dbus.enabled)")
	tuiCmd.Flags().BoolVar(&tuiOpts.mirror, "mirror", false,
		"Mirror desktop notifications (also enabled by dbus.mirror)")
	tuiCmd.Flags().BoolVar(&tuiOpts.watch, "watch-config", true,
		"Reload the config file when it changes")
}

func runTUI(cmd *cobra.Command, args []string) error {
	c := getConfig()

	// The TUI owns the terminal, so only log when a file was given.
	log := logger
	if !hasLogFile() {
		log = slog.New(slog.DiscardHandler)
	}

	p := pop.New(pop.WithLogger(log), pop.WithViews(c.Notifications.View))
	defer p.Close()

	n := notif.New(p,
		notif.WithView(c.Notifications.View),
		notif.WithTimeout(c.Notifications.Timeout.Duration()),
		notif.WithMinInterval(c.Notifications.MinInterval.Duration()),
		notif.WithComponent(tui.Notification{Width: c.Notifications.Width}),
		notif.WithLogger(log),
	)

	if tuiOpts.watch {
		if w := startConfigWatcher(n, log); w != nil {
			defer w.Stop()
		}
	}

	if tuiOpts.dbus || c.DBus.Enabled {
		server := dbus.NewServer(p, n, log)
		if err := server.Start(); err != nil {
			n.PushError(err)
		} else {
			defer server.Stop()
		}
	}

	if tuiOpts.mirror || c.DBus.Mirror {
		monitor := dbus.NewMonitor(n, log)
		if err := monitor.Start(); err != nil {
			n.PushError(err)
		} else {
			defer monitor.Stop()
		}
	}

	return tui.Run(tui.RunOptions{
		Config:   c,
		Pop:      p,
		Notifier: n,
		Logger:   log,
	})
}

// startConfigWatcher reloads notification defaults when the config file
// changes and reports the outcome as a notification.
func startConfigWatcher(n *notif.Notifier, log *slog.Logger) *config.Watcher {
	w, err := config.NewWatcher(globalOpts.configPath, log)
	if err != nil {
		log.Warn("failed to create config watcher", "error", err)
		return nil
	}

	w.SetReloadCallback(func(c *config.Config) {
		n.SetTimeout(c.Notifications.Timeout.Duration())
		n.SetMinInterval(c.Notifications.MinInterval.Duration())
		n.NotifyConfigReloaded()
	})
	w.SetErrorCallback(n.NotifyConfigError)

	if err := w.Start(); err != nil {
		log.Warn("failed to start config watcher", "error", err)
		w.Stop()
		return nil
	}
	return w
}
