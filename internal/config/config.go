package config

import (
	"errors"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var (
	ErrMissingRequired = errors.New("missing required configuration")
	ErrInvalidValue    = errors.New("invalid configuration value")
)

type Config struct {
	// Server
	ServerPort      int   `envconfig:"SERVER_PORT" default:"8000"`
	MaxUploadSizeMB int64 `envconfig:"MAX_UPLOAD_SIZE_MB" default:"50"`

	// Chunking
	ChunkSize    int `envconfig:"CHUNK_SIZE" default:"500"`
	ChunkOverlap int `envconfig:"CHUNK_OVERLAP" default:"100"`
	TopKResults  int `envconfig:"TOP_K_RESULTS" default:"3"`

	// Embeddings
	EmbeddingProvider string `envconfig:"EMBEDDING_PROVIDER" default:"openai"`
	EmbeddingModel    string `envconfig:"EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingBaseURL  string `envconfig:"EMBEDDING_BASE_URL" default:"https://api.openai.com/v1"`
	EmbeddingAPIKey   string `envconfig:"EMBEDDING_API_KEY"`
	GeminiAPIKey      string `envconfig:"GEMINI_API_KEY"`

	// Generation (Groq speaks the OpenAI wire format)
	GroqAPIKey  string `envconfig:"GROQ_API_KEY"`
	GroqBaseURL string `envconfig:"GROQ_BASE_URL" default:"https://api.groq.com/openai/v1"`
	GroqModel   string `envconfig:"GROQ_MODEL" default:"llama-3.1-8b-instant"`

	// Storage
	StoreBackend    string `envconfig:"STORE_BACKEND" default:"sqlite"`
	VectorStorePath string `envconfig:"VECTOR_STORE_PATH" default:"./data/vec_store"`
	CollectionName  string `envconfig:"COLLECTION_NAME" default:"pdf_documents"`
	WeaviateHost    string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme  string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Uploads & logs
	UploadDir    string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	QueryLogPath string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell instead; a missing .env is fine.
	_ = godotenv.Load(".env")

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.GroqAPIKey == "" {
		return fmt.Errorf("%w: GROQ_API_KEY", ErrMissingRequired)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: CHUNK_SIZE must be positive", ErrInvalidValue)
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: CHUNK_OVERLAP must be non-negative and smaller than CHUNK_SIZE", ErrInvalidValue)
	}
	if c.TopKResults <= 0 {
		return fmt.Errorf("%w: TOP_K_RESULTS must be positive", ErrInvalidValue)
	}
	switch c.EmbeddingProvider {
	case "openai", "gemini":
	default:
		return fmt.Errorf("%w: EMBEDDING_PROVIDER must be one of openai, gemini", ErrInvalidValue)
	}
	switch c.StoreBackend {
	case "sqlite", "weaviate":
	default:
		return fmt.Errorf("%w: STORE_BACKEND must be one of sqlite, weaviate", ErrInvalidValue)
	}
	if c.CollectionName == "" {
		return fmt.Errorf("%w: COLLECTION_NAME", ErrMissingRequired)
	}
	return nil
}
