package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"

	EmbeddingAuto   = "auto"
	EmbeddingGemini = "gemini"
	EmbeddingLocal  = "local"

	SessionStoreMemory   = "memory"
	SessionStorePostgres = "postgres"
)

var ErrMissingAPIKey = errors.New("missing API key")

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Qdrant    QdrantConfig
	LLM       LLMConfig
	Embedding EmbeddingConfig
	Storage   StorageConfig
	Session   SessionConfig
}

type ServerConfig struct {
	Port    string
	Env     string
	LogJSON bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// QdrantConfig configures the optional embedding cache. An empty URL disables it.
type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type LLMConfig struct {
	Provider        string
	Model           string
	BaseURL         string
	MaxTokens       int
	Timeout         time.Duration
	GroqAPIKey      string
	OpenAIAPIKey    string
	GeminiAPIKey    string
	AnthropicAPIKey string
}

// EmbeddingConfig selects the embedder. Dimensions applies to the Gemini
// embedder; the local embedder always produces LocalEmbeddingDims values.
type EmbeddingConfig struct {
	Provider   string
	Model      string
	Dimensions int
}

type StorageConfig struct {
	MaxFileSize int64
}

type SessionConfig struct {
	Store string
	TTL   time.Duration
}

var defaultModels = map[string]string{
	ProviderGroq:      "llama-3.3-70b-versatile",
	ProviderOpenAI:    "gpt-4o-mini",
	ProviderGemini:    "gemini-2.5-flash",
	ProviderAnthropic: "claude-3-5-haiku-latest",
}

var apiKeyEnv = map[string]string{
	ProviderGroq:      "GROQ_API_KEY",
	ProviderOpenAI:    "OPENAI_API_KEY",
	ProviderGemini:    "GEMINI_API_KEY",
	ProviderAnthropic: "ANTHROPIC_API_KEY",
}

var providerTitles = map[string]string{
	ProviderGroq:      "Groq",
	ProviderOpenAI:    "OpenAI",
	ProviderGemini:    "Gemini",
	ProviderAnthropic: "Anthropic",
}

func Load() *Config {
	// A missing .env file is fine, the process environment still applies.
	_ = godotenv.Load()

	provider := strings.ToLower(getEnv("LLM_PROVIDER", ProviderGroq))

	return &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "3000"),
			Env:     getEnv("ENV", "development"),
			LogJSON: getEnvAsBool("LOG_JSON", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "resume_analyzer"),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "resume_analyzer_embeddings"),
		},
		LLM: LLMConfig{
			Provider:        provider,
			Model:           getEnv("LLM_MODEL", defaultModels[provider]),
			BaseURL:         getEnv("LLM_BASE_URL", ""),
			MaxTokens:       getEnvAsInt("LLM_MAX_TOKENS", 4096),
			Timeout:         getEnvAsDuration("LLM_TIMEOUT", "2m"),
			GroqAPIKey:      getEnv("GROQ_API_KEY", ""),
			OpenAIAPIKey:    getEnv("OPENAI_API_KEY", ""),
			GeminiAPIKey:    getEnv("GEMINI_API_KEY", ""),
			AnthropicAPIKey: getEnv("ANTHROPIC_API_KEY", ""),
		},
		Embedding: EmbeddingConfig{
			Provider:   strings.ToLower(getEnv("EMBEDDING_PROVIDER", EmbeddingAuto)),
			Model:      getEnv("EMBEDDING_MODEL", "text-embedding-004"),
			Dimensions: getEnvAsInt("EMBEDDING_DIMS", 768),
		},
		Storage: StorageConfig{
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
		},
		Session: SessionConfig{
			Store: strings.ToLower(getEnv("SESSION_STORE", SessionStoreMemory)),
			TTL:   getEnvAsDuration("SESSION_TTL", "30m"),
		},
	}
}

// Validate reports configuration that must stop the process before it serves
// anything, most importantly a missing key for the selected LLM provider.
func (c *Config) Validate() error {
	envName, ok := apiKeyEnv[c.LLM.Provider]
	if !ok {
		return fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider)
	}

	if c.LLM.APIKey() == "" {
		return fmt.Errorf("%w: %s API Key not found! Please add %s in your .env file.",
			ErrMissingAPIKey, providerTitles[c.LLM.Provider], envName)
	}

	if c.LLM.Model == "" {
		return fmt.Errorf("LLM_MODEL is required for provider %q", c.LLM.Provider)
	}

	switch c.Embedding.Provider {
	case EmbeddingAuto, EmbeddingLocal:
	case EmbeddingGemini:
		if c.LLM.GeminiAPIKey == "" {
			return fmt.Errorf("%w: Gemini API Key not found! EMBEDDING_PROVIDER=gemini needs GEMINI_API_KEY.", ErrMissingAPIKey)
		}
	default:
		return fmt.Errorf("unsupported EMBEDDING_PROVIDER %q", c.Embedding.Provider)
	}

	if c.Embedding.Dimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMS must be positive, got %d", c.Embedding.Dimensions)
	}

	switch c.Session.Store {
	case SessionStoreMemory, SessionStorePostgres:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}

	return nil
}

// APIKey returns the key of the selected provider.
func (l LLMConfig) APIKey() string {
	switch l.Provider {
	case ProviderGroq:
		return l.GroqAPIKey
	case ProviderOpenAI:
		return l.OpenAIAPIKey
	case ProviderGemini:
		return l.GeminiAPIKey
	case ProviderAnthropic:
		return l.AnthropicAPIKey
	}
	return ""
}

// EmbeddingProvider resolves "auto" to the hosted embedder when a Gemini key
// is available and to the local embedder otherwise.
func (c *Config) EmbeddingProvider() string {
	if c.Embedding.Provider != EmbeddingAuto {
		return c.Embedding.Provider
	}
	if c.LLM.GeminiAPIKey != "" {
		return EmbeddingGemini
	}
	return EmbeddingLocal
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

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
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
