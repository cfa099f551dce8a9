package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/sbhasm/pkg/cache"
)

func TestRootCommandSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()

	want := []string{"assemble", "overlap", "diagram", "serve", "history", "cache", "config", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered (err = %v)", name, err)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag not registered")
	}
}

func TestAssembleRequiresMaxLen(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	input := writeFragments(t, "AAAB", "AABC")

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"assemble", input})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	if err := root.ExecuteContext(context.Background()); err == nil {
		t.Error("assemble without --max-len should fail")
	}
}

func TestCacheClearCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	dir, err := cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(context.Background(), "matrix:abc", []byte("{}"), 0); err != nil {
		t.Fatal(err)
	}

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"cache", "clear"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("cache clear: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("cache dir should survive clear: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear", len(entries))
	}
}

func TestResolveCacheDirFromConfig(t *testing.T) {
	cfgDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", cfgDir)
	if err := os.MkdirAll(filepath.Join(cfgDir, appName), 0755); err != nil {
		t.Fatal(err)
	}
	body := "[cache]\ndir = \"/srv/sbhasm-cache\"\n"
	if err := os.WriteFile(filepath.Join(cfgDir, appName, "config.toml"), []byte(body), 0644); err != nil {
		t.Fatal(err)
	}

	c := New(io.Discard, LogInfo)
	dir, err := c.resolveCacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/sbhasm-cache" {
		t.Errorf("resolveCacheDir() = %q, want config value", dir)
	}
}

func TestNewCache(t *testing.T) {
	c := New(io.Discard, LogInfo)
	ctx := context.Background()

	cc, err := c.newCache(ctx, cacheOpts{noCache: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(*cache.NullCache); !ok {
		t.Errorf("noCache gave %T, want *cache.NullCache", cc)
	}

	dir := t.TempDir()
	cc, err = c.newCache(ctx, cacheOpts{dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	fc, ok := cc.(*cache.FileCache)
	if !ok || fc.Dir() != dir {
		t.Errorf("dir option gave %T, want *cache.FileCache in %s", cc, dir)
	}

	// An unreachable Redis degrades to no caching.
	cc, err = c.newCache(ctx, cacheOpts{redisURL: "ftp://not-redis"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := cc.(*cache.NullCache); !ok {
		t.Errorf("bad redis URL gave %T, want *cache.NullCache", cc)
	}
}
