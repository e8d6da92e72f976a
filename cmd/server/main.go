package main

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/devinsight/devinsight/internal/config"
	"github.com/devinsight/devinsight/internal/database"
	"github.com/devinsight/devinsight/internal/handler"
	"github.com/devinsight/devinsight/internal/index"
	"github.com/devinsight/devinsight/internal/logger"
	"github.com/devinsight/devinsight/internal/middleware"
	"github.com/devinsight/devinsight/internal/repository"
	"github.com/devinsight/devinsight/internal/service"
	"github.com/devinsight/devinsight/internal/warehouse"
)

// main is the single entry-point for the REST API.
func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	ctx := context.Background()

	log.Info().
		Str("index", cfg.ElasticIndex).
		Str("llm_provider", cfg.LLMProvider).
		Msg("configuration loaded")

	// Mongo is optional; without it the answer cache is skipped.
	var cache service.AnswerCache
	mongoClient, mongoCtx, mongoCancel, err := mongoOptional(cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	if mongoClient != nil {
		defer mongoCancel()
		defer mongoClient.Disconnect(mongoCtx)
		cache = repository.NewAnswerRepository(mongoClient.Database(cfg.DBName), log)
		log.Info().Msg("answer cache enabled")
	} else {
		log.Warn().Msg("MONGODB_URI not set, answer cache disabled")
	}

	idx, err := index.NewClient(index.Config{
		CloudID:   cfg.ElasticCloudID,
		Addresses: cfg.ElasticAddresses,
		Username:  cfg.ElasticUsername,
		Password:  cfg.ElasticPassword,
		Index:     cfg.ElasticIndex,
		Dims:      cfg.EmbeddingDims,
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Elasticsearch")
	}

	embedder, err := service.NewVertexEmbedder(ctx, cfg.ProjectID, cfg.Location, cfg.EmbeddingModel, cfg.CredentialsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize embedder")
	}
	defer embedder.Close()

	llm, closeLLM, err := newLLM(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize LLM")
	}
	defer closeLLM()

	wh, err := warehouse.NewClient(ctx, cfg.ProjectID, cfg.BQDataset, cfg.BQTable, cfg.CredentialsFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to BigQuery")
	}
	defer wh.Close()

	searchSvc := service.NewSearchService(embedder, idx, service.SearchOptions{
		TopK:           cfg.TopK,
		RelaxMinShould: cfg.RelaxMinShould,
	}, log)
	askSvc := service.NewAskService(searchSvc, llm, cache, cfg.AnswerCacheTTL, cfg.PreviewLen, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})
	app.Use(middleware.Logging(log))

	handler.RegisterRoutes(app, askSvc, searchSvc, wh, mongoClient, idx, log)

	log.Info().Str("port", cfg.Port).Msg("server starting")
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server failed to start")
	}
}

func mongoOptional(uri string) (*mongo.Client, context.Context, context.CancelFunc, error) {
	if uri == "" {
		return nil, nil, nil, nil
	}
	return database.NewMongo(uri)
}

func newLLM(ctx context.Context, cfg config.Config) (service.LLM, func(), error) {
	if cfg.LLMProvider == "openai" {
		return service.NewOpenAILLM(cfg.OpenAIKey, cfg.OpenAIModel), func() {}, nil
	}
	llm, err := service.NewVertexLLM(ctx, cfg.ProjectID, cfg.Location, cfg.LLMModel, cfg.CredentialsFile)
	if err != nil {
		return nil, nil, err
	}
	return llm, func() { _ = llm.Close() }, nil
}
