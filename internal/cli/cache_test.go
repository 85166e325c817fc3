package cli

import (
	"context"
	"io"
	"testing"

	"github.com/sketchpipe/sketchpipe/pkg/cache"
)

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	dir, err := cacheDir()
	if err != nil {
		t.Fatalf("cacheDir: %v", err)
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if err := store.Set(ctx, "layout:v1:k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	c := New(io.Discard, LogInfo)
	cmd := c.cacheClearCommand()
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	if _, hit, _ := store.Get(ctx, "layout:v1:k"); hit {
		t.Error("entry survived cache clear")
	}
}
