// Package config centralises all environment / flag configuration for the
// server and the ingest job. It should be imported only by the cmd packages
// (and test code). Business-logic layers receive an already-built Config
// instance via dependency-injection.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime option the binaries need.
// Keep it flat and simple: prefer primitive types over embedding structs.
type Config struct {
	// Network
	Env  string
	Port string

	// Data stores
	MongoURI string // optional; empty disables the answer cache
	DBName   string

	ElasticCloudID   string
	ElasticAddresses []string
	ElasticUsername  string
	ElasticPassword  string
	ElasticIndex     string
	EmbeddingDims    int

	BQDataset string
	BQTable   string

	// External services
	GitHubToken     string
	ProjectID       string
	Location        string
	CredentialsFile string

	// Models
	EmbeddingModel string
	LLMProvider    string // "vertex" or "openai"
	LLMModel       string
	OpenAIKey      string
	OpenAIModel    string

	// Retrieval tuning
	TopK           int
	PreviewLen     int
	RelaxMinShould bool
	AnswerCacheTTL time.Duration

	// Ingestion
	IngestRepos   []string
	IngestWorkers int
	CronSpec      string

	// Server tuning
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Load parses the environment (and an optional .env file) into Config.
// It panics on missing critical variables so mis-configurations fail fast.
func Load() Config {
	// godotenv.Load() is a no-op if .env doesn't exist, safe in production.
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnv("PORT", "8000"),

		MongoURI: os.Getenv("MONGODB_URI"),
		DBName:   getEnv("MONGODB_DB", "devinsight"),

		ElasticCloudID:   os.Getenv("ELASTIC_CLOUD_ID"),
		ElasticAddresses: getList("ELASTIC_ADDRESSES"),
		ElasticUsername:  getEnv("ELASTIC_USERNAME", "elastic"),
		ElasticPassword:  must("ELASTIC_PASSWORD"),
		ElasticIndex:     getEnv("ELASTIC_INDEX", "github_issues"),
		EmbeddingDims:    getInt("EMBEDDING_DIMS", 3072),

		BQDataset: getEnv("BQ_DATASET", "github_analytics"),
		BQTable:   getEnv("BQ_TABLE", "github_issues"),

		GitHubToken:     os.Getenv("GITHUB_TOKEN"),
		ProjectID:       must("GCP_PROJECT_ID"),
		Location:        getEnv("GCP_LOCATION", "us-central1"),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),

		EmbeddingModel: getEnv("EMBEDDING_MODEL", "gemini-embedding-001"),
		LLMProvider:    getEnv("LLM_PROVIDER", "vertex"),
		LLMModel:       getEnv("LLM_MODEL", "gemini-2.5-flash"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		TopK:           getInt("SEARCH_TOP_K", 10),
		PreviewLen:     getInt("CONTEXT_PREVIEW_LEN", 200),
		RelaxMinShould: getBool("SEARCH_RELAX_MIN_SHOULD", false),
		AnswerCacheTTL: getDuration("ANSWER_CACHE_TTL_SEC", 3600),

		IngestRepos:   getList("INGEST_REPOS"),
		IngestWorkers: getInt("INGEST_WORKERS", 4),
		CronSpec:      getEnv("INGEST_CRON", "0 2 * * *"),

		ReadTimeout:  getDuration("READ_TIMEOUT_SEC", 5),
		WriteTimeout: getDuration("WRITE_TIMEOUT_SEC", 60),
	}
}

// must fetches a required env var or terminates the program.
func must(key string) string {
	val := os.Getenv(key)
	if val == "" {
		log.Fatalf("env var %s is required", key)
	}
	return val
}

// getEnv returns env[key] if set, otherwise defaultVal.
func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// getList reads a comma-separated env var into a trimmed slice.
func getList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getInt reads an integer from env, falling back to defaultVal.
func getInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("invalid %s=%q; using default %d", key, v, defaultVal)
	}
	return defaultVal
}

// getBool reads a boolean from env, falling back to defaultVal.
func getBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid %s=%q; using default %t", key, v, defaultVal)
	}
	return defaultVal
}

// getDuration reads an integer (seconds) from env, falling back to defaultSec.
func getDuration(key string, defaultSec int) time.Duration {
	if v := os.Getenv(key); v != "" {
		if sec, err := strconv.Atoi(v); err == nil {
			return time.Duration(sec) * time.Second
		}
		log.Printf("invalid %s=%q; using default %ds", key, v, defaultSec)
	}
	return time.Duration(defaultSec) * time.Second
}
