package main

import (
	"log"
	"log/slog"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"sermonbot/internal/app"
	"sermonbot/internal/config"
	"sermonbot/internal/server"
	"sermonbot/internal/util"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	tokenTTL, err := config.ParseTokenTTL(cfg.TokenTTL)
	if err != nil {
		log.Fatalf("failed to parse token TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		Env:             cfg.Env,
		DatabaseURL:     cfg.DatabaseURL,
		RedisAddr:       cfg.RedisAddr,
		RedisPassword:   cfg.RedisPassword,
		TokenSecret:     cfg.TokenSecret,
		TokenAlgorithm:  cfg.TokenAlgorithm,
		TokenTTL:        tokenTTL,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		EmbeddingModel:  cfg.EmbeddingModel,
		EmbeddingDim:    cfg.EmbeddingDim,
		RerankURL:       cfg.RerankURL,
		ChatModel:       cfg.ChatModel,
		QdrantURL:       cfg.QdrantURL,
		QdrantAPIKey:    cfg.QdrantAPIKey,
		MinioEndpoint:   cfg.MinioEndpoint,
		MinioAccessKey:  cfg.MinioAccessKey,
		MinioSecretKey:  cfg.MinioSecretKey,
		MinioBucket:     cfg.MinioBucket,
		MinioUseSSL:     cfg.MinioUseSSL,
		CaptionLanguage: cfg.CaptionLanguage,
		ChunkSize:       cfg.ChunkSize,
		ChunkOverlap:    cfg.ChunkOverlap,
		FetchK:          cfg.FetchK,
		MMRK:            cfg.MMRK,
		TopN:            cfg.TopN,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	httpServer := server.New(server.Config{
		App: appCore,
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("sermon chatbot server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
