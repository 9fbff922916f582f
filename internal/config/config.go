package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default configuration file location.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	Env      string `yaml:"env"`
	LogLevel string `yaml:"logLevel"`

	DatabaseURL   string `yaml:"databaseURL"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	TokenSecret    string `yaml:"tokenSecret"`
	TokenAlgorithm string `yaml:"tokenAlgorithm"`
	TokenTTL       string `yaml:"tokenTTL"`

	GeminiAPIKey   string `yaml:"geminiAPIKey"`
	EmbeddingModel string `yaml:"embeddingModel"`
	EmbeddingDim   int    `yaml:"embeddingDim"`
	RerankURL      string `yaml:"rerankURL"`
	ChatModel      string `yaml:"chatModel"`

	QdrantURL    string `yaml:"qdrantURL"`
	QdrantAPIKey string `yaml:"qdrantAPIKey"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`

	CaptionLanguage string `yaml:"captionLanguage"`
	ChunkSize       int    `yaml:"chunkSize"`
	ChunkOverlap    int    `yaml:"chunkOverlap"`
	FetchK          int    `yaml:"fetchK"`
	MMRK            int    `yaml:"mmrK"`
	TopN            int    `yaml:"topN"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnvOverrides(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *FileConfig) {
	overrides := []struct {
		env    string
		target *string
	}{
		{"ENV", &cfg.Env},
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"REDIS_ADDR", &cfg.RedisAddr},
		{"REDIS_PASSWORD", &cfg.RedisPassword},
		{"JWT_SECRET", &cfg.TokenSecret},
		{"JWT_ALGORITHM", &cfg.TokenAlgorithm},
		{"GEMINI_API_KEY", &cfg.GeminiAPIKey},
		{"GEMINI_EMBEDDING_MODEL", &cfg.EmbeddingModel},
		{"GEMINI_CHAT_MODEL", &cfg.ChatModel},
		{"RERANK_URL", &cfg.RerankURL},
		{"QDRANT_URL", &cfg.QdrantURL},
		{"QDRANT_API_KEY", &cfg.QdrantAPIKey},
		{"MINIO_ENDPOINT", &cfg.MinioEndpoint},
		{"MINIO_ACCESS_KEY", &cfg.MinioAccessKey},
		{"MINIO_SECRET_KEY", &cfg.MinioSecretKey},
		{"MINIO_BUCKET", &cfg.MinioBucket},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.target = v
		}
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.DatabaseURL == "" {
		return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
	}
	if cfg.TokenSecret == "" {
		return errors.New("config: tokenSecret is required (set in config.yaml or JWT_SECRET)")
	}
	if cfg.TokenAlgorithm == "" {
		return errors.New("config: tokenAlgorithm is required (set in config.yaml or JWT_ALGORITHM)")
	}
	if cfg.GeminiAPIKey == "" {
		return errors.New("config: geminiAPIKey is required (set in config.yaml or GEMINI_API_KEY)")
	}
	if cfg.EmbeddingModel == "" {
		return errors.New("config: embeddingModel is required (set in config.yaml)")
	}
	if cfg.RerankURL == "" {
		return errors.New("config: rerankURL is required (set in config.yaml or RERANK_URL)")
	}
	if cfg.QdrantURL == "" && cfg.EmbeddingDim <= 0 {
		return errors.New("config: embeddingDim is required when qdrantURL is not set")
	}
	return nil
}

// ParseTokenTTL parses the configured token lifetime, defaulting to 24h.
func ParseTokenTTL(raw string) (time.Duration, error) {
	if raw == "" {
		return 24 * time.Hour, nil
	}
	ttl, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse token TTL: %w", err)
	}
	if ttl <= 0 {
		return 0, errors.New("token TTL must be positive")
	}
	return ttl, nil
}
