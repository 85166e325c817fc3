package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/sketchpipe/sketchpipe/pkg/errors"
	"github.com/sketchpipe/sketchpipe/pkg/pipeline"
)

const testStream = `{"e": [
  {"t": "rectangle", "i": "a", "l": "Alpha"},
  {"t": "rectangle", "i": "b", "l": "Beta"},
  {"t": "arrow", "i": "e1", "si": "a", "ei": "b"}
]}`

func writeTestConfig(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func TestRunLayout_JSONOutput(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	input := filepath.Join(dir, "stream.txt")
	if err := os.WriteFile(input, []byte(testStream), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	c := New(io.Discard, LogInfo)
	if err := c.runLayout(context.Background(), input, layoutParams{format: pipeline.FormatJSON}); err != nil {
		t.Fatalf("runLayout: %v", err)
	}

	out := filepath.Join(dir, "stream.json")
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("default output not written: %v", err)
	}

	var scene struct {
		Elements []json.RawMessage `json:"elements"`
		Complete bool              `json:"complete"`
	}
	if err := json.Unmarshal(data, &scene); err != nil {
		t.Fatalf("output is not a scene document: %v", err)
	}
	if len(scene.Elements) != 3 || !scene.Complete {
		t.Errorf("scene = %d elements complete=%v, want 3/true", len(scene.Elements), scene.Complete)
	}
}

func TestRunLayout_ExplicitOutputAndDirection(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	input := filepath.Join(dir, "stream.txt")
	out := filepath.Join(dir, "scene.dot")
	if err := os.WriteFile(input, []byte(testStream), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	c := New(io.Discard, LogInfo)
	err := c.runLayout(context.Background(), input, layoutParams{
		output:    out,
		format:    pipeline.FormatDOT,
		direction: "lr",
		noCache:   true,
	})
	if err != nil {
		t.Fatalf("runLayout: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output not written: %v", err)
	}
	if !strings.Contains(string(data), `"a" -> "b";`) {
		t.Errorf("DOT output missing edge:\n%s", data)
	}
}

func TestRunLayout_MissingInput(t *testing.T) {
	c := New(io.Discard, LogInfo)
	err := c.runLayout(context.Background(), filepath.Join(t.TempDir(), "absent.txt"), layoutParams{
		format:  pipeline.FormatJSON,
		noCache: true,
	})
	if err == nil {
		t.Fatal("expected error for missing input file")
	}
	if got := errors.GetCode(err); got != errors.ErrCodeInvalidInput {
		t.Errorf("error code = %q, want %q", got, errors.ErrCodeInvalidInput)
	}
}

func TestRunLayout_UsesContextLogger(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	dir := t.TempDir()
	input := filepath.Join(dir, "stream.txt")
	if err := os.WriteFile(input, []byte(testStream), 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}

	var buf bytes.Buffer
	ctx := withLogger(context.Background(), newLogger(&buf, log.DebugLevel))

	// The CLI's own logger is silent; only the context logger may produce
	// the pipeline's debug output.
	c := New(io.Discard, LogInfo)
	if err := c.runLayout(ctx, input, layoutParams{format: pipeline.FormatJSON, noCache: true}); err != nil {
		t.Fatalf("runLayout: %v", err)
	}

	if !bytes.Contains(buf.Bytes(), []byte("parsed chunk")) {
		t.Errorf("pipeline debug output did not reach the context logger:\n%s", buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte("laid out 3 elements")) {
		t.Errorf("progress line did not reach the context logger:\n%s", buf.String())
	}
}

func TestSerializeScene_UnknownFormat(t *testing.T) {
	res := &pipeline.Result{}
	if _, err := serializeScene(context.Background(), res, "pdf"); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
