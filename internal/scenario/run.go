package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmylchreest/popstack/internal/clock"
	"github.com/jmylchreest/popstack/internal/pop"
)

// DefaultStart is the clock start time used when a script does not set one.
var DefaultStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// ExpectationError reports an expect step whose view did not match.
type ExpectationError struct {
	Step  int
	View  string
	Field string
	Want  string
	Got   string
}

func (e *ExpectationError) Error() string {
	return fmt.Sprintf("step %d: expected %s of view %q to be %s, got %s", e.Step, e.Field, e.View, e.Want, e.Got)
}

// Event is a change the engine reported while a step ran.
type Event struct {
	Type  string `json:"type" yaml:"type"`
	View  string `json:"view" yaml:"view"`
	Depth int    `json:"depth" yaml:"depth"`
	Top   string `json:"top,omitempty" yaml:"top,omitempty"`
}

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int               `json:"index" yaml:"index"`
	Action   Action            `json:"action" yaml:"action"`
	View     string            `json:"view" yaml:"view"`
	At       time.Duration     `json:"at" yaml:"at"`
	Events   []Event           `json:"events,omitempty" yaml:"events,omitempty"`
	Snapshot *pop.ViewSnapshot `json:"snapshot,omitempty" yaml:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// Report is the result of running a script.
type Report struct {
	Name     string             `json:"name,omitempty" yaml:"name,omitempty"`
	Start    time.Time          `json:"start" yaml:"start"`
	Elapsed  time.Duration      `json:"elapsed" yaml:"elapsed"`
	Steps    []StepResult       `json:"steps" yaml:"steps"`
	Views    []pop.ViewSnapshot `json:"views" yaml:"views"`
	Failures int                `json:"failures" yaml:"failures"`
}

// Run executes a script against a fresh engine driven by a manual clock.
// Failed expectations do not stop the run; they are returned joined as
// *ExpectationError values alongside the complete report.
func Run(ctx context.Context, s *Script, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	start := DefaultStart
	if s.Start != "" {
		start, _ = time.Parse(time.RFC3339, s.Start)
	}

	clk := clock.NewManual(start)
	p := pop.New(
		pop.WithClock(clk),
		pop.WithLogger(logger),
		pop.WithViews(s.Views...),
		pop.WithSubscriberBuffer(eventCapacity(s)),
	)
	defer p.Close()
	events := p.Subscribe()

	report := &Report{Name: s.Name, Start: start, Steps: make([]StepResult, 0, len(s.Steps))}
	var errs []error

	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("replay interrupted at step %d: %w", i+1, err)
		}

		view := step.View
		if view == "" {
			view = pop.DefaultView
		}
		res := StepResult{Index: i + 1, Action: step.Action, View: view}

		if step.Action == ActionExpect {
			if err := check(p, res.Index, view, step); err != nil {
				res.Error = err.Error()
				report.Failures++
				errs = append(errs, err)
				logger.Debug("expectation failed", "step", res.Index, "error", err)
			}
		} else {
			apply(p, clk, view, step)
		}

		res.At = clk.Now().Sub(start)
		res.Events = drain(events)
		if step.Action != ActionRelease {
			snap := p.Snapshot(view)
			res.Snapshot = &snap
		}
		report.Steps = append(report.Steps, res)
	}

	for _, name := range p.Views() {
		report.Views = append(report.Views, p.Snapshot(name))
	}
	report.Elapsed = clk.Now().Sub(start)

	logger.Info("scenario finished", "name", s.Name, "steps", len(s.Steps), "failures", report.Failures)
	return report, errors.Join(errs...)
}

// eventCapacity bounds the change events a single step can produce: every
// step emits at most one event, except an advance, which can expire at most
// one descriptor per earlier push.
func eventCapacity(s *Script) int {
	pushes := 0
	for _, step := range s.Steps {
		switch step.Action {
		case ActionPush, ActionReplace, ActionReplaceAll:
			pushes++
		}
	}
	return pushes + 1
}

func apply(p *pop.Pop, clk *clock.Manual, view string, step Step) {
	switch step.Action {
	case ActionPush:
		p.Push(descriptor(step), view)
	case ActionReplace:
		p.Replace(descriptor(step), view)
	case ActionReplaceAll:
		p.ReplaceAll(descriptor(step), view)
	case ActionPop:
		p.Pop(view)
	case ActionClear:
		p.Clear(view)
	case ActionRelease:
		p.ReleaseView(view)
	case ActionAdvance:
		clk.Advance(time.Duration(step.By))
	}
}

func descriptor(step Step) *pop.Descriptor {
	return &pop.Descriptor{
		ID:      step.ID,
		Props:   step.Props,
		Timeout: time.Duration(step.Timeout),
	}
}

// check compares the expected fields of step with the view. Only the first
// mismatch is reported.
func check(p *pop.Pop, index int, view string, step Step) error {
	snap := p.Snapshot(view)
	top, hasTop := snap.Top()

	fail := func(field, want, got string) error {
		return &ExpectationError{Step: index, View: view, Field: field, Want: want, Got: got}
	}

	if step.Depth != nil && *step.Depth != snap.Depth {
		return fail("depth", fmt.Sprint(*step.Depth), fmt.Sprint(snap.Depth))
	}
	if step.Top != nil {
		got := "<empty>"
		if hasTop {
			got = top.ID
		}
		want := *step.Top
		if want == "" {
			want = "<empty>"
		}
		if want != got {
			return fail("top", want, got)
		}
	}
	if step.Remaining != nil {
		want := time.Duration(*step.Remaining)
		if want != top.Remaining {
			return fail("remaining", want.String(), top.Remaining.String())
		}
	}
	if step.Timer != "" {
		got := pop.TimerAbsent.String()
		if hasTop {
			got = top.Timer
		}
		if step.Timer != got {
			return fail("timer", step.Timer, got)
		}
	}
	return nil
}

func drain(ch <-chan pop.ChangeEvent) []Event {
	var out []Event
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return out
			}
			out = append(out, Event{Type: ev.Type.String(), View: ev.View, Depth: ev.Depth, Top: ev.TopID})
		default:
			return out
		}
	}
}
