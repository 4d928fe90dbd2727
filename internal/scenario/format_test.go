package scenario

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func testReport(t *testing.T) *Report {
	t.Helper()
	r, err := Run(context.Background(), mustParse(t, abScript), nil)
	require.NoError(t, err)
	return r
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatJSON, FormatterOptions{}).Format(&buf, testReport(t)))

	var decoded struct {
		Name  string `json:"name"`
		Steps []struct {
			Action string `json:"action"`
		} `json:"steps"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "covered toast", decoded.Name)
	require.Len(t, decoded.Steps, 8)
	assert.Equal(t, "push", decoded.Steps[0].Action)
}

func TestYAMLFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewFormatter(FormatYAML, FormatterOptions{}).Format(&buf, testReport(t)))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "covered toast", decoded["name"])
	assert.Equal(t, 0, decoded["failures"])
}

func TestPlainFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatPlain, FormatterOptions{ShowEvents: true})
	require.NoError(t, f.Format(&buf, testReport(t)))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "[1] push"))
	assert.Contains(t, lines[0], "depth 1 top a (running, 2 seconds left)")
	assert.Contains(t, buf.String(), "    expire default depth=1 top=a")
	assert.Contains(t, buf.String(), "(running, 1 second left)")
	assert.Equal(t, "covered toast: 8 steps, 0 failures, 3s simulated", lines[len(lines)-1])
}

func TestPlainFormatter_Template(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(FormatPlain, FormatterOptions{Template: "{{.Index}} {{.Action}} {{ms .At}}\n"})
	require.NoError(t, f.Format(&buf, testReport(t)))

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "1 push 0", lines[0])
	assert.Equal(t, "2 advance 500", lines[1])
}

func TestPlainFormatter_InvalidTemplate(t *testing.T) {
	f := NewFormatter(FormatPlain, FormatterOptions{Template: "{{.Index"})
	assert.ErrorContains(t, f.Format(&bytes.Buffer{}, &Report{}), "invalid template")
}
