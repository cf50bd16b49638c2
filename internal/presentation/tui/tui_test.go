package tui

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_PlainWhenNotATerminal(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinter(&out, &errOut)

	p.Success("Created environment %s!", "python")
	p.Error("Environment %s not found!", "julia")
	p.Log("Activating %s environment...", "python")

	assert.Equal(t, "Created environment python!\n", out.String())
	assert.Equal(t, "Environment julia not found!\nActivating python environment...\n", errOut.String())
	assert.Equal(t, "python", p.Highlight("python"))
}

func TestTable(t *testing.T) {
	out := Table([]string{"Name", "CMD", "Env"}, [][]string{
		{"python", "wf env activate python", "1a2b3c4d"},
		{"r", "wf env create r", ""},
	})
	for _, want := range []string{"Name", "CMD", "Env", "python", "wf env activate python", "1a2b3c4d", "wf env create r"} {
		assert.Contains(t, out, want)
	}
	assert.Greater(t, strings.Count(out, "\n"), 4)
}

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func TestRenderCode_KeepsContent(t *testing.T) {
	rendered, err := RenderCode("yaml", "channels:\n  - conda-forge\n")
	require.NoError(t, err)
	out := ansi.ReplaceAllString(rendered, "")
	assert.Contains(t, out, "channels")
	assert.Contains(t, out, "conda-forge")
}

func TestHighlight(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Highlight(&buf, "print('hello world')\n", "hello.py"))
	assert.Contains(t, buf.String(), "hello world")
}
