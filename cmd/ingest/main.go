package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/devinsight/devinsight/internal/config"
	"github.com/devinsight/devinsight/internal/github"
	"github.com/devinsight/devinsight/internal/index"
	"github.com/devinsight/devinsight/internal/ingest"
	"github.com/devinsight/devinsight/internal/logger"
	"github.com/devinsight/devinsight/internal/service"
	"github.com/devinsight/devinsight/internal/warehouse"
)

// main runs the ingestion pipeline once, or on a cron schedule in daemon
// mode.
func main() {
	recreate := flag.Bool("recreate", false, "drop and re-provision the search index before loading")
	daemon := flag.Bool("daemon", false, "keep running and ingest on the configured cron schedule")
	flag.Parse()

	cfg := config.Load()
	log := logger.New(cfg.Env)
	ctx := context.Background()

	if len(cfg.IngestRepos) == 0 {
		log.Fatal().Msg("INGEST_REPOS is required, e.g. owner/repo,owner/other")
	}

	source := github.NewClient(cfg.GitHubToken, log)

	wh, err := warehouse.NewClient(ctx, cfg.ProjectID, cfg.BQDataset, cfg.BQTable, cfg.CredentialsFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to BigQuery")
	}
	defer wh.Close()

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

	pipeline := ingest.NewPipeline(source, wh, idx, embedder, cfg.IngestWorkers, log)

	run := func() {
		if err := pipeline.Run(ctx, cfg.IngestRepos, *recreate); err != nil {
			log.Error().Err(err).Msg("ingestion failed")
			return
		}
		log.Info().Strs("repos", cfg.IngestRepos).Msg("ingestion complete")
	}

	if !*daemon {
		if err := pipeline.Run(ctx, cfg.IngestRepos, *recreate); err != nil {
			log.Fatal().Err(err).Msg("ingestion failed")
		}
		log.Info().Strs("repos", cfg.IngestRepos).Msg("ingestion complete")
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(cfg.CronSpec, run); err != nil {
		log.Fatal().Err(err).Str("spec", cfg.CronSpec).Msg("invalid cron spec")
	}
	c.Start()
	log.Info().Str("spec", cfg.CronSpec).Msg("ingest daemon started")

	// Run once at startup so a fresh deployment has data before the first
	// scheduled tick.
	run()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	<-c.Stop().Done()
}
