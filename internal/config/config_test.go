package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testYAML = `port: "8080"
env: dev
logLevel: debug
databaseURL: postgres://localhost/sermonbot
tokenSecret: file-secret
tokenAlgorithm: HS256
tokenTTL: 24h
geminiAPIKey: file-key
embeddingModel: embedding-001
embeddingDim: 768
rerankURL: http://localhost:8081
chatModel: gemini-pro
chunkSize: 100
chunkOverlap: 10
fetchK: 50
mmrK: 5
topN: 3
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.TokenSecret != "file-secret" || cfg.ChunkSize != 100 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("GEMINI_API_KEY", "env-key")
	cfg, err := Load(writeConfig(t, testYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.TokenSecret != "env-secret" {
		t.Fatalf("tokenSecret = %q, want env override", cfg.TokenSecret)
	}
	if cfg.GeminiAPIKey != "env-key" {
		t.Fatalf("geminiAPIKey = %q, want env override", cfg.GeminiAPIKey)
	}
}

func TestValidateConfigMissingSecret(t *testing.T) {
	yaml := `port: "8080"
databaseURL: postgres://localhost/sermonbot
tokenAlgorithm: HS256
geminiAPIKey: key
embeddingModel: embedding-001
rerankURL: http://localhost:8081
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatal("missing tokenSecret accepted")
	}
}

func TestValidateConfigRequiresEmbeddingDim(t *testing.T) {
	yaml := `port: "8080"
databaseURL: postgres://localhost/sermonbot
tokenSecret: secret
tokenAlgorithm: HS256
geminiAPIKey: key
embeddingModel: embedding-001
rerankURL: http://localhost:8081
`
	if _, err := Load(writeConfig(t, yaml)); err == nil {
		t.Fatal("missing embeddingDim accepted without a qdrant backend")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing file accepted")
	}
}

func TestParseTokenTTL(t *testing.T) {
	ttl, err := ParseTokenTTL("")
	if err != nil || ttl != 24*time.Hour {
		t.Fatalf("default TTL = %v err=%v", ttl, err)
	}
	ttl, err = ParseTokenTTL("30m")
	if err != nil || ttl != 30*time.Minute {
		t.Fatalf("parsed TTL = %v err=%v", ttl, err)
	}
	if _, err := ParseTokenTTL("soon"); err == nil {
		t.Fatal("junk TTL accepted")
	}
	if _, err := ParseTokenTTL("-1h"); err == nil {
		t.Fatal("negative TTL accepted")
	}
}
