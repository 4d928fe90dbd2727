package scenario

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/popstack/internal/pop"
)

// Formatter writes a report.
type Formatter interface {
	Format(w io.Writer, r *Report) error
}

// FormatType represents an output format type.
type FormatType string

const (
	FormatJSON  FormatType = "json"
	FormatYAML  FormatType = "yaml"
	FormatPlain FormatType = "plain"
)

// FormatTypes returns all valid format types.
func FormatTypes() []FormatType {
	return []FormatType{FormatPlain, FormatJSON, FormatYAML}
}

// ParseFormat converts a format name.
func ParseFormat(s string) (FormatType, error) {
	for _, f := range FormatTypes() {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid output format %q, must be one of: %v", s, FormatTypes())
}

// FormatterOptions configures formatter behavior.
type FormatterOptions struct {
	Template   string // Custom per-step template for plain format
	ShowEvents bool   // List change events under each step in plain format
}

// NewFormatter creates a formatter for the specified format type.
func NewFormatter(format FormatType, opts FormatterOptions) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return NewPlainFormatter(opts)
	}
}

// JSONFormatter writes the report as indented JSON.
type JSONFormatter struct{}

// Format implements Formatter.
func (f *JSONFormatter) Format(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

// YAMLFormatter writes the report as YAML.
type YAMLFormatter struct{}

// Format implements Formatter.
func (f *YAMLFormatter) Format(w io.Writer, r *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(r); err != nil {
		return err
	}
	return encoder.Close()
}

// PlainFormatter writes one line per step followed by a summary.
type PlainFormatter struct {
	opts     FormatterOptions
	template *template.Template
	err      error
}

// NewPlainFormatter creates a new plain text formatter.
// An invalid template is reported by Format.
func NewPlainFormatter(opts FormatterOptions) *PlainFormatter {
	f := &PlainFormatter{opts: opts}
	if opts.Template != "" {
		f.template, f.err = template.New("step").Funcs(templateFuncs()).Parse(opts.Template)
	}
	return f
}

// Format implements Formatter.
func (f *PlainFormatter) Format(w io.Writer, r *Report) error {
	if f.err != nil {
		return fmt.Errorf("invalid template: %w", f.err)
	}

	for _, step := range r.Steps {
		if f.template != nil {
			if err := f.template.Execute(w, step); err != nil {
				return err
			}
			continue
		}
		if _, err := io.WriteString(w, f.formatStep(step)); err != nil {
			return err
		}
	}

	name := r.Name
	if name == "" {
		name = "scenario"
	}
	_, err := fmt.Fprintf(w, "%s: %s, %s, %s simulated\n",
		name,
		english.Plural(len(r.Steps), "step", ""),
		english.Plural(r.Failures, "failure", ""),
		r.Elapsed)
	return err
}

func (f *PlainFormatter) formatStep(s StepResult) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[%d] %-11s %-10s +%-8s", s.Index, s.Action, s.View, s.At))

	if s.Snapshot != nil {
		sb.WriteString(" " + describe(*s.Snapshot))
	} else {
		sb.WriteString(" released")
	}
	if s.Error != "" {
		sb.WriteString("  FAIL: " + s.Error)
	}
	sb.WriteString("\n")

	if f.opts.ShowEvents {
		for _, ev := range s.Events {
			sb.WriteString(fmt.Sprintf("    %s %s depth=%d", ev.Type, ev.View, ev.Depth))
			if ev.Top != "" {
				sb.WriteString(" top=" + ev.Top)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// describe summarises a view as "depth N top ID (timer, time left)".
func describe(snap pop.ViewSnapshot) string {
	top, ok := snap.Top()
	if !ok {
		return "empty"
	}
	s := fmt.Sprintf("depth %d top %s", snap.Depth, top.ID)
	if top.Timer != pop.TimerAbsent.String() {
		s += fmt.Sprintf(" (%s, %s)", top.Timer, remaining(top.Remaining))
	}
	return s
}

// remaining renders a countdown like "2 seconds left".
func remaining(d time.Duration) string {
	if d < time.Second {
		return d.String() + " left"
	}
	var zero time.Time
	return humanize.RelTime(zero, zero.Add(d), "left", "ago")
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"describe":  describe,
		"remaining": remaining,
		"ms": func(d time.Duration) int64 {
			return d.Milliseconds()
		},
	}
}
