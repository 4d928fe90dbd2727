package main

import (
	"fmt"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/popstack/internal/scenario"
)

var replayOpts struct {
	output   string
	template string
	events   bool
}

var replayCmd = &cobra.Command{
	Use:   "replay FILE",
	Short: "Replay a scripted scenario on a simulated clock",
	Long: `Replay a YAML scenario against a fresh engine driven by a simulated clock
and print the state of the touched view after every step.

Example scenario:

  name: covered toast
  steps:
    - action: push
      id: a
      timeout: 2s
    - action: advance
      by: 500ms
    - action: push
      id: b
      timeout: 1s
    - action: advance
      by: 1s
    - action: expect
      top: a
      remaining: 1500ms

Steps: push, replace, replace_all, pop, clear, release, advance, expect.
The command fails when any expect step does not match.

Custom templates (--template) are executed once per step with the step
result as data, for example:
  {{.Index}} {{.Action}} {{ms .At}} {{describe .Snapshot}}`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayOpts.output, "output", "o", "plain",
		"Output format (plain, json, yaml)")
	replayCmd.Flags().StringVar(&replayOpts.template, "template", "",
		"Go template for each step in plain output")
	replayCmd.Flags().BoolVar(&replayOpts.events, "events", false,
		"List change events under each step in plain output")
}

func runReplay(cmd *cobra.Command, args []string) error {
	format, err := scenario.ParseFormat(replayOpts.output)
	if err != nil {
		return err
	}

	script, err := scenario.Load(args[0])
	if err != nil {
		return err
	}

	report, runErr := scenario.Run(cmd.Context(), script, logger)
	if report == nil {
		return runErr
	}

	formatter := scenario.NewFormatter(format, scenario.FormatterOptions{
		Template:   replayOpts.template,
		ShowEvents: replayOpts.events,
	})
	if err := formatter.Format(cmd.OutOrStdout(), report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if report.Failures > 0 {
		logger.Debug("replay failed", "error", runErr)
		return fmt.Errorf("%s did not match", english.Plural(report.Failures, "expectation", ""))
	}
	return runErr
}
