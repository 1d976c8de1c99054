package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// ArchiveBackend selects the vector index behind the archive tier.
type ArchiveBackend string

const (
	// ArchiveSurreal stores archive vectors in the SurrealDB HNSW index.
	ArchiveSurreal ArchiveBackend = "surreal"

	// ArchiveChromem keeps archive vectors in the embedded chromem index.
	ArchiveChromem ArchiveBackend = "chromem"

	// ArchiveOff disables archival; stores degrade to a logged no-op.
	ArchiveOff ArchiveBackend = "off"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection (fact store, optional archive index)
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// Archive tier
	ArchiveBackend ArchiveBackend

	// Embedding
	EmbeddingProvider string
	OllamaHost        string
	EmbeddingModel    string
	EmbedDimension    int
	VoyageAPIKey      string

	// LLM (summarization + fact extraction)
	LLMProvider     Provider
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string

	// Memory tuning
	BufferCapacity       int
	EpisodeGap           time.Duration
	ContextWindow        int
	RetrievalLimit       int
	CapabilityTimeout    time.Duration
	ConsolidateInterval  time.Duration
	ConsolidateThreshold int

	// Identity
	IdentityPath string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "recall"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "memory"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		ArchiveBackend: ArchiveBackend(getEnv("RECALL_ARCHIVE_BACKEND", string(ArchiveSurreal))),

		EmbeddingProvider: getEnv("RECALL_EMBEDDING_PROVIDER", "ollama"),
		OllamaHost:        getEnv("OLLAMA_HOST", "http://localhost:11434"),
		EmbeddingModel:    getEnv("RECALL_EMBEDDING_MODEL", "all-minilm:l6-v2"),
		EmbedDimension:    getEnvInt("RECALL_EMBEDDING_DIMENSION", 384),
		VoyageAPIKey:      getEnv("VOYAGE_API_KEY", ""),

		LLMProvider:     Provider(getEnv("RECALL_LLM_PROVIDER", string(ProviderOllama))),
		LLMModel:        getEnv("RECALL_LLM_MODEL", "llama3.2"),
		OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
		AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),

		BufferCapacity:       getEnvInt("RECALL_BUFFER_CAPACITY", 20),
		EpisodeGap:           getEnvDuration("RECALL_EPISODE_GAP", 30*time.Minute),
		ContextWindow:        getEnvInt("RECALL_CONTEXT_WINDOW", 10),
		RetrievalLimit:       getEnvInt("RECALL_RETRIEVAL_LIMIT", 5),
		CapabilityTimeout:    getEnvDuration("RECALL_CAPABILITY_TIMEOUT", 60*time.Second),
		ConsolidateInterval:  getEnvDuration("RECALL_CONSOLIDATE_INTERVAL", 0),
		ConsolidateThreshold: getEnvInt("RECALL_CONSOLIDATE_THRESHOLD", 20),

		IdentityPath: getEnv("RECALL_IDENTITY_PATH", "data/identity.yaml"),

		LogFile:  getEnv("RECALL_LOG_FILE", "/tmp/recalld.log"),
		LogLevel: parseLogLevel(getEnv("RECALL_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
