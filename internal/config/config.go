package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var ErrMissingRequired = errors.New("missing required configuration")

type Config struct {
	DBHost string `envconfig:"DB_HOST" default:"postgres"`
	DBPort int    `envconfig:"DB_PORT" default:"5432"`
	DBUser string `envconfig:"DB_USER" default:"caselens"`
	DBPass string `envconfig:"DB_PASS" default:"password"`
	DBName string `envconfig:"DB_NAME" default:"caselens"`

	WeaviateHost   string `envconfig:"WEAVIATE_HOST" default:"localhost:8080"`
	WeaviateScheme string `envconfig:"WEAVIATE_SCHEME" default:"http"`

	// Object store (MinIO or any S3-compatible endpoint)
	ObjectStoreEndpoint  string `envconfig:"OBJECT_STORE_ENDPOINT" default:"http://minio:9000"`
	ObjectStoreRegion    string `envconfig:"OBJECT_STORE_REGION" default:"us-east-1"`
	ObjectStoreAccessKey string `envconfig:"OBJECT_STORE_ACCESS_KEY"`
	ObjectStoreSecretKey string `envconfig:"OBJECT_STORE_SECRET_KEY"`

	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	EmbedModel   string `envconfig:"EMBED_MODEL" default:"gemini-embedding-001"`
	LLMModel     string `envconfig:"LLM_MODEL" default:"gemini-2.0-flash"`
	SearchTopK   int    `envconfig:"SEARCH_TOP_K" default:"10"`

	// Extraction tooling
	OCRLanguage     string `envconfig:"OCR_LANGUAGE" default:"por"`
	SpeechModelPath string `envconfig:"SPEECH_MODEL_PATH" default:"models/vosk-model-small-pt"`
	FFmpegPath      string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	PdftoppmPath    string `envconfig:"PDFTOPPM_PATH" default:"pdftoppm"`
	TempDir         string `envconfig:"TEMP_DIR" default:"/tmp"`

	// Queue drain
	DrainInterval time.Duration `envconfig:"DRAIN_INTERVAL" default:"5m"`
	BatchSize     int           `envconfig:"BATCH_SIZE" default:"10"`
	MaxChunkWords int           `envconfig:"MAX_CHUNK_WORDS" default:"500"`
	ChunkLanguage string        `envconfig:"CHUNK_LANGUAGE" default:"portuguese"`
	ItemTimeout   time.Duration `envconfig:"ITEM_TIMEOUT" default:"10m"`

	MigrationPath string `envconfig:"MIGRATION_PATH" default:"file://migrations"`
	ServerPort    int    `envconfig:"SERVER_PORT" default:"8081"`
	QueryLogPath  string `envconfig:"QUERY_LOG_PATH" default:"data/logs/query.log"`

	// Resilience
	BootstrapRetryAttempts     int `envconfig:"BOOTSTRAP_RETRY_ATTEMPTS" default:"10"`
	BootstrapRetryDelaySeconds int `envconfig:"BOOTSTRAP_RETRY_DELAY_SECONDS" default:"2"`
}

func Load() (*Config, error) {
	// Env vars may be set in the shell, so a missing .env is fine
	_ = godotenv.Load(".env")

	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.DBHost == "" {
		return fmt.Errorf("%w: DB_HOST", ErrMissingRequired)
	}
	if c.DBUser == "" {
		return fmt.Errorf("%w: DB_USER", ErrMissingRequired)
	}
	if c.DBName == "" {
		return fmt.Errorf("%w: DB_NAME", ErrMissingRequired)
	}
	if c.DrainInterval <= 0 {
		return fmt.Errorf("%w: DRAIN_INTERVAL must be positive", ErrMissingRequired)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: BATCH_SIZE must be positive", ErrMissingRequired)
	}
	return nil
}
