package planner_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tailored-agentic-units/planner/completion"
	"github.com/tailored-agentic-units/planner/kvstore"
	"github.com/tailored-agentic-units/planner/planner"
)

func TestDefaultConfig(t *testing.T) {
	cfg := planner.DefaultConfig()

	if cfg.QueueSize != 32 {
		t.Errorf("got QueueSize %d, want 32", cfg.QueueSize)
	}
	if cfg.Completion.Provider != completion.ProviderMock {
		t.Errorf("got Completion.Provider %q, want mock", cfg.Completion.Provider)
	}
	if cfg.Store.Driver != kvstore.DriverMemory {
		t.Errorf("got Store.Driver %q, want memory", cfg.Store.Driver)
	}
	if cfg.Server.Addr != ":3001" {
		t.Errorf("got Server.Addr %q, want :3001", cfg.Server.Addr)
	}
}

func TestConfig_Merge_ZeroValuesPreserveDefaults(t *testing.T) {
	cfg := planner.DefaultConfig()
	original := cfg

	cfg.Merge(&planner.Config{})

	if cfg.QueueSize != original.QueueSize || cfg.Observer != original.Observer {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
	if cfg.Local.MemoTTL != original.Local.MemoTTL {
		t.Errorf("got Local.MemoTTL %v, want %v", cfg.Local.MemoTTL, original.Local.MemoTTL)
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "planner.json")

	content := `{
		"queue_size": 8,
		"session": {"system_prompt": "Plan trips to %s."},
		"local": {"path": "/tmp/planner"},
		"store": {"driver": "sqlite", "dsn": "/tmp/planner.db"},
		"completion": {"provider": "openai", "model": "gpt-4o"}
	}`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := planner.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.QueueSize != 8 {
		t.Errorf("got QueueSize %d, want 8", cfg.QueueSize)
	}
	if cfg.Session.SystemPrompt != "Plan trips to %s." {
		t.Errorf("got SystemPrompt %q", cfg.Session.SystemPrompt)
	}
	if cfg.Local.Path != "/tmp/planner" {
		t.Errorf("got Local.Path %q", cfg.Local.Path)
	}
	if cfg.Store.Driver != kvstore.DriverSQLite || cfg.Store.DSN != "/tmp/planner.db" {
		t.Errorf("got Store %+v", cfg.Store)
	}
	if cfg.Completion.Provider != completion.ProviderOpenAI || cfg.Completion.Model != "gpt-4o" {
		t.Errorf("got Completion %+v", cfg.Completion)
	}
	if cfg.Completion.Timeout != 60*time.Second {
		t.Errorf("default Completion.Timeout lost: %v", cfg.Completion.Timeout)
	}
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "planner.yaml")

	content := `
remote:
  url: http://localhost:3001
  timeout: 5s
local:
  memo_ttl: 1m
server:
  addr: ":8080"
  metrics: true
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := planner.LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Remote.URL != "http://localhost:3001" || cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("got Remote %+v", cfg.Remote)
	}
	if cfg.Local.MemoTTL != time.Minute {
		t.Errorf("got Local.MemoTTL %v, want 1m", cfg.Local.MemoTTL)
	}
	if cfg.Server.Addr != ":8080" || !cfg.Server.Metrics {
		t.Errorf("got Server %+v", cfg.Server)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	if _, err := planner.LoadConfig("/nonexistent/path/planner.json"); err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"bad.json": "{invalid}",
		"bad.yaml": "remote: [unterminated",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("WriteFile failed: %v", err)
			}
			if _, err := planner.LoadConfig(path); err == nil {
				t.Fatal("expected parse error, got nil")
			}
		})
	}
}

func TestConfig_ApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PLANNER_COMPLETION_PROVIDER", "openai")
	t.Setenv("PLANNER_REMOTE_URL", "http://planner.internal")
	t.Setenv("PLANNER_STORE_DRIVER", "redis")
	t.Setenv("PLANNER_STORE_DSN", "redis://localhost:6379/0")
	t.Setenv("PLANNER_LOCAL_PATH", "/var/lib/planner")
	t.Setenv("PORT", "4000")

	cfg := planner.DefaultConfig()
	cfg.ApplyEnv()

	if cfg.Completion.APIKey != "sk-test" || cfg.Completion.Provider != "openai" {
		t.Errorf("got Completion %+v", cfg.Completion)
	}
	if cfg.Remote.URL != "http://planner.internal" {
		t.Errorf("got Remote.URL %q", cfg.Remote.URL)
	}
	if cfg.Store.Driver != "redis" || cfg.Store.DSN != "redis://localhost:6379/0" {
		t.Errorf("got Store %+v", cfg.Store)
	}
	if cfg.Local.Path != "/var/lib/planner" {
		t.Errorf("got Local.Path %q", cfg.Local.Path)
	}
	if cfg.Server.Addr != ":4000" {
		t.Errorf("got Server.Addr %q, want :4000", cfg.Server.Addr)
	}
}
