package cli

import (
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sketchpipe/sketchpipe/pkg/errors"
	"github.com/sketchpipe/sketchpipe/pkg/layout"
	"github.com/sketchpipe/sketchpipe/pkg/pipeline"
)

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, appName) {
		t.Errorf("cacheDir() = %q, should end with %q", dir, appName)
	}
	if !strings.Contains(dir, ".cache") {
		t.Errorf("cacheDir() = %q, should contain '.cache'", dir)
	}
}

func TestCacheDirXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != filepath.Join(base, appName) {
		t.Errorf("cacheDir() = %q, want %q", dir, filepath.Join(base, appName))
	}
}

func TestRootCommand(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != appName {
		t.Errorf("root.Use = %q, want %q", root.Use, appName)
	}

	want := map[string]bool{"layout": false, "watch": false, "cache": false}
	for _, sub := range root.Commands() {
		name := strings.Fields(sub.Use)[0]
		if _, ok := want[name]; ok {
			want[name] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestPipelineOptions(t *testing.T) {
	c := New(io.Discard, LogInfo)

	opts, err := c.pipelineOptions("", "lr", pipeline.FormatDOT, true)
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if opts.Layout.Direction != layout.DirectionLeftToRight {
		t.Errorf("direction = %q, want lr", opts.Layout.Direction)
	}
	if opts.Format != pipeline.FormatDOT || !opts.Refresh {
		t.Errorf("flags not carried: %+v", opts)
	}
	if opts.Logger == nil {
		t.Error("logger not attached")
	}
}

func TestPipelineOptions_ConfigAndOverride(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := filepath.Join(t.TempDir(), "layout.toml")
	writeTestConfig(t, path, "direction = \"tb\"\nrank_sep = 99\n")

	opts, err := c.pipelineOptions(path, "lr", pipeline.FormatJSON, false)
	if err != nil {
		t.Fatalf("pipelineOptions: %v", err)
	}
	if opts.Layout.RankSep != 99 {
		t.Errorf("config rank_sep not loaded: %v", opts.Layout.RankSep)
	}
	// Flag wins over file.
	if opts.Layout.Direction != layout.DirectionLeftToRight {
		t.Errorf("flag did not override config direction: %q", opts.Layout.Direction)
	}
}

func TestPipelineOptions_BadConfig(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := filepath.Join(t.TempDir(), "layout.toml")
	writeTestConfig(t, path, "direction = \"sideways\"\n")

	_, err := c.pipelineOptions(path, "", pipeline.FormatJSON, false)
	if errors.GetCode(err) != errors.ErrCodeInvalidDirection {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidDirection)
	}
}
