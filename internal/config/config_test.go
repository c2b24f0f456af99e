package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config", "test.yaml"), []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("chdir back: %v", err)
		}
	})
}

const validConfig = `
http:
  port: 8080
database:
  addrs:
    - "127.0.0.1:6379"
embedding:
  model: "text-embedding-3-small"
  dimensions: 1536
`

func TestLoad(t *testing.T) {
	writeConfig(t, validConfig)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.HTTP.Port != 8080 {
		t.Errorf("HTTP.Port = %d", cfg.HTTP.Port)
	}
	if len(cfg.Database.Addrs) != 1 || cfg.Database.Addrs[0] != "127.0.0.1:6379" {
		t.Errorf("Database.Addrs = %v", cfg.Database.Addrs)
	}

	// Defaults applied
	if cfg.Storage.KeyPrefix != "datrieval:" {
		t.Errorf("Storage.KeyPrefix = %q", cfg.Storage.KeyPrefix)
	}
	if cfg.Retrieval.Strategy != "dat" {
		t.Errorf("Retrieval.Strategy = %q", cfg.Retrieval.Strategy)
	}
	if cfg.Retrieval.DAT.DenseWeightDefault != 0.5 {
		t.Errorf("DenseWeightDefault = %g", cfg.Retrieval.DAT.DenseWeightDefault)
	}
	if cfg.Retrieval.DAT.TopKDense != 20 || cfg.Retrieval.DAT.TopKSparse != 20 {
		t.Errorf("TopK = (%d, %d)", cfg.Retrieval.DAT.TopKDense, cfg.Retrieval.DAT.TopKSparse)
	}
	if !cfg.Retrieval.DAT.UseDynamicTuningEnabled() {
		t.Error("UseDynamicTuningEnabled() = false, want true by default")
	}
	if cfg.Judge.Model != "gpt-4o-mini" {
		t.Errorf("Judge.Model = %q", cfg.Judge.Model)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatalf("chdir back: %v", err)
		}
	})

	if _, err := Load("nonexistent"); err == nil {
		t.Fatal("Load() expected error for missing file")
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "redis.internal:6379")
	writeConfig(t, `
http:
  port: 8080
database:
  addrs:
    - "${TEST_REDIS_ADDR}"
  password: "${TEST_UNSET_PASSWORD:-fallback}"
embedding:
  model: "text-embedding-3-small"
`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Addrs[0] != "redis.internal:6379" {
		t.Errorf("Addrs[0] = %q", cfg.Database.Addrs[0])
	}
	if cfg.Database.Password != "fallback" {
		t.Errorf("Password = %q, want default fallback", cfg.Database.Password)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name: "missing port",
			content: `
database:
  addrs: ["127.0.0.1:6379"]
embedding:
  model: "m"
`,
			wantErr: "http.port",
		},
		{
			name: "missing addrs",
			content: `
http:
  port: 8080
embedding:
  model: "m"
`,
			wantErr: "database.addrs",
		},
		{
			name: "unknown strategy",
			content: `
http:
  port: 8080
database:
  addrs: ["127.0.0.1:6379"]
embedding:
  model: "m"
retrieval:
  strategy: "rrf"
`,
			wantErr: "retrieval.strategy",
		},
		{
			name: "missing embedding model",
			content: `
http:
  port: 8080
database:
  addrs: ["127.0.0.1:6379"]
`,
			wantErr: "embedding.model",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writeConfig(t, tt.content)
			_, err := Load("test")
			if err == nil {
				t.Fatal("Load() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if env := GetEnv(); env != "local" {
		t.Errorf("GetEnv() = %q, want local", env)
	}

	t.Setenv("ENV", "prod")
	if env := GetEnv(); env != "prod" {
		t.Errorf("GetEnv() = %q, want prod", env)
	}
}

func TestDATConfig_DynamicTuningDisabled(t *testing.T) {
	writeConfig(t, `
http:
  port: 8080
database:
  addrs: ["127.0.0.1:6379"]
embedding:
  model: "m"
retrieval:
  strategy: "dat"
  dat:
    use_dynamic_tuning: false
`)

	cfg, err := Load("test")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Retrieval.DAT.UseDynamicTuningEnabled() {
		t.Error("UseDynamicTuningEnabled() = true, want false")
	}
}
