package scenario

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const abScript = `
name: covered toast
views: [notif]
steps:
  - action: push
    id: a
    timeout: 2s
  - action: advance
    by: 500
  - action: push
    id: b
    timeout: 1s
  - action: expect
    top: b
    depth: 2
  - action: advance
    by: 1s
  - action: expect
    top: a
    remaining: 1500ms
    timer: running
  - action: advance
    by: 1500ms
  - action: expect
    depth: 0
    top: ""
`

func TestParse(t *testing.T) {
	s, err := Parse([]byte(abScript))
	require.NoError(t, err)

	assert.Equal(t, "covered toast", s.Name)
	assert.Equal(t, []string{"notif"}, s.Views)
	require.Len(t, s.Steps, 8)

	assert.Equal(t, ActionPush, s.Steps[0].Action)
	assert.Equal(t, "a", s.Steps[0].ID)
	assert.Equal(t, 2*time.Second, time.Duration(s.Steps[0].Timeout))
	assert.Equal(t, 500*time.Millisecond, time.Duration(s.Steps[1].By))

	require.NotNil(t, s.Steps[5].Remaining)
	assert.Equal(t, 1500*time.Millisecond, time.Duration(*s.Steps[5].Remaining))
	require.NotNil(t, s.Steps[7].Top)
	assert.Equal(t, "", *s.Steps[7].Top)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		script string
		errMsg string
	}{
		{"bad yaml", "steps: [", "failed to parse script"},
		{"missing action", "steps:\n  - view: x\n", "missing action"},
		{"unknown action", "steps:\n  - action: shove\n", "unknown action"},
		{"bad duration", "steps:\n  - action: advance\n    by: soon\n", "invalid duration"},
		{"negative advance", "steps:\n  - action: advance\n    by: -1s\n", "backwards"},
		{"advance without by", "steps:\n  - action: advance\n", "advance needs by"},
		{"zero advance", "steps:\n  - action: advance\n    by: 0\n", "advance needs by"},
		{"empty expect", "steps:\n  - action: expect\n", "at least one"},
		{"bad start", "start: yesterday\nsteps: []\n", "invalid start time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.script))
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(abScript), 0644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, s.Steps, 8)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read script")
}
