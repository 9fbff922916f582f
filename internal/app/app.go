package app

import (
	"fmt"
	"strings"
	"time"

	"sermonbot/pkg/ai"
	"sermonbot/pkg/storage"
	"sermonbot/pkg/store"
	"sermonbot/pkg/vector"
	"sermonbot/pkg/youtube"
)

// Config holds runtime configuration for the core application.
type Config struct {
	Env         string
	DatabaseURL string

	Store      store.Store
	TokenStore store.TokenStore
	Index      vector.Index
	Transcript youtube.TranscriptAPI
	Embedder   ai.Embedder
	Reranker   ai.Reranker
	Gemini     *ai.GeminiClient
	Objects    storage.ObjectStore

	RedisAddr     string
	RedisPassword string

	TokenSecret    string
	TokenAlgorithm string
	TokenTTL       time.Duration

	GeminiAPIKey   string
	EmbeddingModel string
	EmbeddingDim   int
	RerankURL      string
	ChatModel      string

	QdrantURL    string
	QdrantAPIKey string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	CaptionLanguage string
	ChunkSize       int
	ChunkOverlap    int
	FetchK          int
	MMRK            int
	TopN            int
}

// App wires storage, token handling, transcript fetching, and retrieval into
// one service. All store handles are constructed once here and passed by
// reference; there is no ambient global state.
type App struct {
	store      store.Store
	tokens     store.TokenStore
	codec      *store.TokenCodec
	tokenTTL   time.Duration
	transcript youtube.TranscriptAPI
	embedder   ai.Embedder
	reranker   ai.Reranker
	gemini     *ai.GeminiClient
	index      vector.Index
	objects    storage.ObjectStore

	chatModel    string
	chunkSize    int
	chunkOverlap int
	fetchK       int
	mmrK         int
	topN         int
}

// New constructs the application. The prod deployment mode has no
// configuration yet and is rejected outright. Components whose configuration
// is absent (token signing, the retrieval pipeline, object storage) are left
// unwired; operations that depend on them report ErrUpstream.
func New(cfg Config) (*App, error) {
	if strings.EqualFold(strings.TrimSpace(cfg.Env), "prod") {
		return nil, fmt.Errorf("prod configuration not implemented")
	}

	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	tokenStore := cfg.TokenStore
	if tokenStore == nil {
		if cfg.RedisAddr != "" {
			tokenStore = store.NewRedisTokenStore(cfg.RedisAddr, cfg.RedisPassword)
		} else if ts, ok := dataStore.(store.TokenStore); ok {
			tokenStore = ts
		} else {
			return nil, fmt.Errorf("token store required")
		}
	}

	var codec *store.TokenCodec
	if cfg.TokenSecret != "" {
		c, err := store.NewTokenCodec(cfg.TokenSecret, cfg.TokenAlgorithm)
		if err != nil {
			return nil, err
		}
		codec = c
	}
	tokenTTL := cfg.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}

	transcript := cfg.Transcript
	if transcript == nil {
		transcript = youtube.NewClient(cfg.CaptionLanguage)
	}

	gemini := cfg.Gemini
	if gemini == nil && cfg.GeminiAPIKey != "" {
		g, err := ai.NewGeminiClient(cfg.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		gemini = g
	}
	embedder := cfg.Embedder
	if embedder == nil && gemini != nil && cfg.EmbeddingModel != "" {
		embedder = ai.NewGeminiEmbedder(gemini, cfg.EmbeddingModel)
	}

	reranker := cfg.Reranker
	if reranker == nil && cfg.RerankURL != "" {
		r, err := ai.NewCrossEncoderClient(cfg.RerankURL)
		if err != nil {
			return nil, err
		}
		reranker = r
	}

	index := cfg.Index
	if index == nil {
		if cfg.QdrantURL != "" {
			index = vector.NewQdrantIndex(vector.QdrantConfig{
				URL:    cfg.QdrantURL,
				APIKey: cfg.QdrantAPIKey,
				Dim:    cfg.EmbeddingDim,
			})
		} else if cfg.DatabaseURL != "" && cfg.EmbeddingDim > 0 {
			idx, err := vector.NewPgvectorIndex(cfg.DatabaseURL, cfg.EmbeddingDim)
			if err != nil {
				return nil, fmt.Errorf("init pgvector index: %w", err)
			}
			index = idx
		}
	}

	objects := cfg.Objects
	if objects == nil && cfg.MinioEndpoint != "" {
		minioStore, err := storage.NewMinioStore(
			cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey,
			cfg.MinioBucket, cfg.MinioUseSSL,
		)
		if err != nil {
			return nil, fmt.Errorf("init object store: %w", err)
		}
		objects = minioStore
	}

	chunkSize := cfg.ChunkSize
	if chunkSize <= 0 {
		chunkSize = 100
	}
	chunkOverlap := cfg.ChunkOverlap
	if chunkOverlap < 0 {
		chunkOverlap = 10
	}
	fetchK := cfg.FetchK
	if fetchK <= 0 {
		fetchK = 50
	}
	mmrK := cfg.MMRK
	if mmrK <= 0 {
		mmrK = 5
	}
	topN := cfg.TopN
	if topN <= 0 {
		topN = 3
	}

	return &App{
		store:        dataStore,
		tokens:       tokenStore,
		codec:        codec,
		tokenTTL:     tokenTTL,
		transcript:   transcript,
		embedder:     embedder,
		reranker:     reranker,
		gemini:       gemini,
		index:        index,
		objects:      objects,
		chatModel:    cfg.ChatModel,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		fetchK:       fetchK,
		mmrK:         mmrK,
		topN:         topN,
	}, nil
}
