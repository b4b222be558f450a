package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const algaeYAML = `id: algae
axiom: A
generations: 5
symbols:
  - glyph: A
  - glyph: B
rules:
  - subject: A
    produce: AB
  - subject: B
    produce: A
`

const turtleYAML = `id: turtle
axiom: F(1)+F(2)
symbols:
  - glyph: F
    params: ["len:float"]
    command: forward
  - glyph: "+"
    command: turn
rules:
  - subject: F
    produce: F(len)F(len)
`

// syncBuffer is a bytes.Buffer safe for the watch goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestGrow(t *testing.T) {
	path := writeFile(t, t.TempDir(), "algae.yaml", algaeYAML)

	out, _, err := run(t, "grow", path, "-n", "4")
	require.NoError(t, err)
	assert.Equal(t, "ABAABABA\n", out)

	out, _, err = run(t, "grow", path)
	require.NoError(t, err)
	assert.Equal(t, "ABAABABAABAAB\n", out, "defaults to the grammar's generations")

	out, _, err = run(t, "grow", path, "-n", "5", "--workers", "4")
	require.NoError(t, err)
	assert.Equal(t, "ABAABABAABAAB\n", out)
}

func TestGrow_Tick(t *testing.T) {
	path := writeFile(t, t.TempDir(), "algae.yaml", algaeYAML)
	out, _, err := run(t, "grow", path, "-n", "3", "--tick", "1ms")
	require.NoError(t, err)
	assert.Equal(t, "0: A\n1: AB\n2: ABA\n3: ABAAB\n", out)
}

func TestGrow_Execute(t *testing.T) {
	path := writeFile(t, t.TempDir(), "turtle.yaml", turtleYAML)
	out, _, err := run(t, "grow", path, "-n", "1", "--execute")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"F(1)F(1)+F(2)F(2)",
		"forward len=1",
		"forward len=1",
		"turn",
		"forward len=2",
		"forward len=2",
	}, "\n")+"\n", out)
}

func TestGrow_PersistAndMetrics(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "algae.yaml", algaeYAML)
	snapshots := filepath.Join(dir, "snapshots")

	_, errOut, err := run(t, "grow", path, "-n", "4", "--persist-dir", snapshots, "--persist-format", "json", "--metrics")
	require.NoError(t, err)

	files, err := filepath.Glob(filepath.Join(snapshots, "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sequence": "ABAABABA"`)
	assert.Contains(t, string(data), `"generation": 4`)

	assert.Contains(t, errOut, `lsystem_generations_total{grammar="algae"} 4`)
	assert.Contains(t, errOut, `lsystem_sequence_length{grammar="algae"} 8`)
	assert.Contains(t, errOut, `lsystem_pass_duration_seconds_count{grammar="algae"} 4`)
}

func TestGrow_ConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "algae.yaml", algaeYAML)
	conf := writeFile(t, dir, "lsys.yaml", "generations: 2\n")

	out, _, err := run(t, "--config", conf, "grow", path)
	require.NoError(t, err)
	assert.Equal(t, "ABA\n", out)

	out, _, err = run(t, "--config", conf, "grow", path, "-n", "1")
	require.NoError(t, err)
	assert.Equal(t, "AB\n", out, "flags win over the config file")

	t.Setenv("LSYS_GENERATIONS", "3")
	out, _, err = run(t, "grow", path)
	require.NoError(t, err)
	assert.Equal(t, "ABAAB\n", out)
}

func TestGrow_Errors(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "algae.yaml", algaeYAML)

	_, _, err := run(t, "grow", filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	_, _, err = run(t, "grow", path, "--workers", "0")
	assert.ErrorContains(t, err, "workers")

	_, _, err = run(t, "grow", path, "--log-level", "loud")
	assert.Error(t, err)

	_, _, err = run(t, "--config", filepath.Join(dir, "nope.yaml"), "grow", path)
	assert.ErrorContains(t, err, "reading config")

	_, _, err = run(t, "grow")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "algae.yaml", algaeYAML)
	bad := writeFile(t, dir, "bad.yaml", "id: bad\naxiom: Q\nsymbols:\n  - glyph: A\n")

	out, _, err := run(t, "validate", good)
	require.NoError(t, err)
	assert.Regexp(t, `^ok   `+regexp.QuoteMeta(good)+`: algae@[0-9a-f]{12} \(2 symbols, 2 rules\)\n$`, out)

	pinned := writeFile(t, dir, "pinned.yaml", "version: v3\n"+algaeYAML)
	out, _, err = run(t, "validate", pinned)
	require.NoError(t, err)
	assert.Contains(t, out, ": algae@v3 (")

	out, _, err = run(t, "validate", good, bad)
	assert.ErrorContains(t, err, "1 of 2 grammars invalid")
	assert.Contains(t, out, "FAIL "+bad)
}

func TestGraph(t *testing.T) {
	path := writeFile(t, t.TempDir(), "algae.yaml", algaeYAML)

	out, _, err := run(t, "graph", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, `digraph "algae" {`))
	assert.Contains(t, out, `"A" -> "B"`)

	out, _, err = run(t, "graph", path, "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "algae"`)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "algae.yaml", algaeYAML)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var out syncBuffer
	cmd := newRootCmd()
	cmd.SetArgs([]string{"watch", path, "-n", "2", "--debounce", "20ms"})
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "== algae\nABA\n")
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte(strings.Replace(algaeYAML, "axiom: A", "axiom: B", 1)), 0o644))
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "== algae\nAB\n")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not exit on cancel")
	}
}
