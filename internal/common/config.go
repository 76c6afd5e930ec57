package common

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Server      ServerConfig    `toml:"server"`
	Logging     LoggingConfig   `toml:"logging"`
	Chunking    ChunkingConfig  `toml:"chunking"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	Storage     StorageConfig   `toml:"storage"`
	Search      SearchConfig    `toml:"search"`
}

type ServerConfig struct {
	Port int    `toml:"port"`
	Host string `toml:"host"`
}

type LoggingConfig struct {
	Level      string   `toml:"level"`       // "debug", "info", "warn", "error"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05.000")
}

// ChunkingConfig controls how content is split before embedding
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size"` // Target chunk size in bytes
	Overlap   int `toml:"overlap"`    // Overlapping bytes between consecutive chunks
}

// EmbeddingConfig selects and configures the embedding provider
type EmbeddingConfig struct {
	Provider   string `toml:"provider"`   // "openai", "gemini", or "offline"
	Model      string `toml:"model"`      // Embedding model name (default depends on provider)
	Dimensions int    `toml:"dimensions"` // Embedding vector dimensionality
	APIKey     string `toml:"api_key"`    // Provider API key (env fallback: OPENAI_API_KEY / GEMINI_API_KEY)
	RateLimit  string `toml:"rate_limit"` // Minimum interval between embedding API calls (default: "100ms")
	Timeout    string `toml:"timeout"`    // Embedding request timeout as duration string (default: "30s")
}

type StorageConfig struct {
	Type    string        `toml:"type"` // "qdrant" (default) or "chromem"
	Qdrant  QdrantConfig  `toml:"qdrant"`
	Chromem ChromemConfig `toml:"chromem"`
}

// QdrantConfig represents Qdrant-specific configuration
type QdrantConfig struct {
	URL        string `toml:"url"`        // Qdrant server URL
	Collection string `toml:"collection"` // Collection name
	APIKey     string `toml:"api_key"`    // Optional API key for Qdrant Cloud
	Timeout    string `toml:"timeout"`    // HTTP request timeout as duration string (default: "30s")
}

// ChromemConfig represents the embedded chromem-go store configuration
type ChromemConfig struct {
	Path string `toml:"path"` // Persistence directory; empty = in-memory only
}

// SearchConfig contains defaults applied when a search request omits them
type SearchConfig struct {
	TopK           int     `toml:"top_k"`           // Default number of results (default: 10)
	ScoreThreshold float64 `toml:"score_threshold"` // Default minimum similarity score; 0 = no threshold
}

// NewDefaultConfig returns a config populated with defaults matching a local
// development setup.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Output:     []string{"stdout"},
			TimeFormat: "15:04:05.000",
		},
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   200,
		},
		Embedding: EmbeddingConfig{
			Provider:   "openai",
			Model:      "text-embedding-3-small",
			Dimensions: 1536,
			RateLimit:  "100ms",
			Timeout:    "30s",
		},
		Storage: StorageConfig{
			Type: "qdrant",
			Qdrant: QdrantConfig{
				URL:        "http://localhost:6333",
				Collection: "kagent-memories",
				Timeout:    "30s",
			},
		},
		Search: SearchConfig{
			TopK:           10,
			ScoreThreshold: 0.7,
		},
	}
}

// LoadFromFile loads configuration from a single TOML file
func LoadFromFile(path string) (*Config, error) {
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration by merging defaults, then each TOML file
// in order (later files override earlier ones), then environment variables.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies KAGENT_MEMORY_* environment variables on top of
// file configuration. Environment values always win over files.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("KAGENT_MEMORY_ENV"); env != "" {
		config.Environment = env
	}

	if port := os.Getenv("KAGENT_MEMORY_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("KAGENT_MEMORY_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	if level := os.Getenv("KAGENT_MEMORY_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if url := os.Getenv("KAGENT_MEMORY_QDRANT_URL"); url != "" {
		config.Storage.Qdrant.URL = url
	}
	if collection := os.Getenv("KAGENT_MEMORY_QDRANT_COLLECTION"); collection != "" {
		config.Storage.Qdrant.Collection = collection
	}
	if key := os.Getenv("KAGENT_MEMORY_QDRANT_API_KEY"); key != "" {
		config.Storage.Qdrant.APIKey = key
	}
	if storageType := os.Getenv("KAGENT_MEMORY_STORAGE_TYPE"); storageType != "" {
		config.Storage.Type = storageType
	}

	if provider := os.Getenv("KAGENT_MEMORY_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
	if model := os.Getenv("KAGENT_MEMORY_EMBEDDING_MODEL"); model != "" {
		config.Embedding.Model = model
	}
	if dims := os.Getenv("KAGENT_MEMORY_EMBEDDING_DIMENSIONS"); dims != "" {
		if d, err := strconv.Atoi(dims); err == nil {
			config.Embedding.Dimensions = d
		}
	}

	if size := os.Getenv("KAGENT_MEMORY_CHUNK_SIZE"); size != "" {
		if s, err := strconv.Atoi(size); err == nil {
			config.Chunking.ChunkSize = s
		}
	}
	if overlap := os.Getenv("KAGENT_MEMORY_CHUNK_OVERLAP"); overlap != "" {
		if o, err := strconv.Atoi(overlap); err == nil {
			config.Chunking.Overlap = o
		}
	}

	// Provider API keys fall back to the conventional env variables so the
	// service runs without a config file entry holding a secret.
	if config.Embedding.APIKey == "" {
		switch config.Embedding.Provider {
		case "gemini":
			config.Embedding.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			config.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// ApplyFlagOverrides applies command-line flag values on top of the loaded
// configuration. Flags have the highest priority.
func ApplyFlagOverrides(config *Config, port int, host string) {
	if port != 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}
