package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Services ServicesConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
	VectorSize uint64
}

type GeminiConfig struct {
	APIKey     string
	Model      string
	EmbedModel string
	// RequestsPerMinute caps outbound Gemini calls; 0 disables the limiter.
	RequestsPerMinute int
}

type StorageConfig struct {
	MaxFileSize       int64
	AllowedExtensions []string
}

type WorkerConfig struct {
	Concurrency       int
	QueueSize         int
	RetryMaxAttempts  int
	RetryInitialDelay time.Duration
	RetryMaxDelay     time.Duration
	RunRetention      time.Duration
}

// ServicesConfig points the pipeline at its external collaborators.
type ServicesConfig struct {
	CVAnalysisProvider string
	CVAnalysisURL      string
	CVAnalysisTimeout  time.Duration
	PaperTrendProvider string
	PaperTrendURL      string
	PaperTrendTimeout  time.Duration
	ExtractionTimeout  time.Duration
}

const (
	ProviderHTTP   = "http"
	ProviderGemini = "gemini"
	ProviderQdrant = "qdrant"
)

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
			Env:  getEnv("ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "research_advisor"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", "http://localhost:6334"),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "papers"),
			VectorSize: uint64(getEnvAsInt64("QDRANT_VECTOR_SIZE", 768)),
		},
		Gemini: GeminiConfig{
			APIKey:            getEnv("GEMINI_API_KEY", ""),
			Model:             getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			EmbedModel:        getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			RequestsPerMinute: getEnvAsInt("GEMINI_RPM", 60),
		},
		Storage: StorageConfig{
			MaxFileSize:       getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			AllowedExtensions: getEnvAsList("ALLOWED_EXTENSIONS", ".pdf,.docx,.txt"),
		},
		Worker: WorkerConfig{
			Concurrency:       getEnvAsInt("WORKER_CONCURRENCY", 3),
			QueueSize:         getEnvAsInt("WORKER_QUEUE_SIZE", 100),
			RetryMaxAttempts:  getEnvAsInt("RETRY_MAX_ATTEMPTS", 3),
			RetryInitialDelay: getEnvAsDuration("RETRY_INITIAL_DELAY", "2s"),
			RetryMaxDelay:     getEnvAsDuration("RETRY_MAX_DELAY", "15s"),
			RunRetention:      getEnvAsDuration("RUN_RETENTION", "30m"),
		},
		Services: ServicesConfig{
			CVAnalysisProvider: strings.ToLower(getEnv("CV_ANALYSIS_PROVIDER", ProviderHTTP)),
			CVAnalysisURL:      getEnv("CV_ANALYSIS_URL", "http://localhost:8000"),
			CVAnalysisTimeout:  getEnvAsDuration("CV_ANALYSIS_TIMEOUT", "60s"),
			PaperTrendProvider: strings.ToLower(getEnv("PAPER_TREND_PROVIDER", ProviderHTTP)),
			PaperTrendURL:      getEnv("PAPER_TREND_URL", "http://localhost:8000"),
			PaperTrendTimeout:  getEnvAsDuration("PAPER_TREND_TIMEOUT", "30s"),
			ExtractionTimeout:  getEnvAsDuration("EXTRACTION_TIMEOUT", "20s"),
		},
	}
}

// Validate rejects provider combinations the server cannot wire.
func (c *Config) Validate() error {
	switch c.Services.CVAnalysisProvider {
	case ProviderHTTP:
		if c.Services.CVAnalysisURL == "" {
			return fmt.Errorf("CV_ANALYSIS_URL is required for the http provider")
		}
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown CV_ANALYSIS_PROVIDER: %s", c.Services.CVAnalysisProvider)
	}

	switch c.Services.PaperTrendProvider {
	case ProviderHTTP:
		if c.Services.PaperTrendURL == "" {
			return fmt.Errorf("PAPER_TREND_URL is required for the http provider")
		}
	case ProviderQdrant:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required for the qdrant provider")
		}
	default:
		return fmt.Errorf("unknown PAPER_TREND_PROVIDER: %s", c.Services.PaperTrendProvider)
	}

	if c.Worker.Concurrency <= 0 {
		return fmt.Errorf("WORKER_CONCURRENCY must be positive")
	}

	return nil
}

// NeedsGemini reports whether any configured provider talks to Gemini.
func (c *Config) NeedsGemini() bool {
	return c.Services.CVAnalysisProvider == ProviderGemini ||
		c.Services.PaperTrendProvider == ProviderQdrant
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}

func getEnvAsList(key string, defaultValue string) []string {
	var items []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
