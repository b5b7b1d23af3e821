package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName             string
	AppEnv              string
	AppPort             string
	DatabaseURL         string
	DBMaxOpenConns      int
	DBMaxIdleConns      int
	DBConnMaxLifetime   time.Duration
	RedisURL            string
	NATSURL             string
	EventsChannel       string
	JWTSecret           string
	JWTIssuer           string
	AllowedOrigins      string
	AccessLog           bool
	AIProvider          string
	AIModel             string
	AIMaxTokens         int
	AITemperature       float32
	AITimeout           time.Duration
	OpenAIAPIKey        string
	GeminiAPIKey        string
	FeedbackTimeout     time.Duration
	TopicsCacheTTL      time.Duration
	ProgressCacheTTL    time.Duration
	GenerationRateLimit int
	GenerationWindow    time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIAPIKey returns the credential of the configured model provider.
func (c Config) AIAPIKey() string {
	switch c.AIProvider {
	case "gemini":
		return c.GeminiAPIKey
	default:
		return c.OpenAIAPIKey
	}
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA Assignment Hub")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("http.access_log", true)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("events.channel", "gema")
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.max_tokens", 2048)
	v.SetDefault("ai.temperature", 0.7)
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("feedback.timeout", "20s")
	v.SetDefault("topics.cache_ttl", "24h")
	v.SetDefault("progress.cache_ttl", "10m")
	v.SetDefault("generation.rate_limit", 5)
	v.SetDefault("generation.rate_window", "1m")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (Config, error) {
	aiTimeout, err := parseDuration(v, "ai.timeout", time.Minute)
	if err != nil {
		return Config{}, err
	}

	feedbackTimeout, err := parseDuration(v, "feedback.timeout", 20*time.Second)
	if err != nil {
		return Config{}, err
	}

	topicsTTL, err := parseDuration(v, "topics.cache_ttl", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	progressTTL, err := parseDuration(v, "progress.cache_ttl", 10*time.Minute)
	if err != nil {
		return Config{}, err
	}

	window, err := parseDuration(v, "generation.rate_window", time.Minute)
	if err != nil {
		return Config{}, err
	}

	connLifetime, err := parseDuration(v, "database.conn_max_lifetime", 30*time.Minute)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		AppName:             v.GetString("app.name"),
		AppEnv:              v.GetString("app.env"),
		AppPort:             v.GetString("app.port"),
		DatabaseURL:         v.GetString("database.url"),
		DBMaxOpenConns:      v.GetInt("database.max_open_conns"),
		DBMaxIdleConns:      v.GetInt("database.max_idle_conns"),
		DBConnMaxLifetime:   connLifetime,
		RedisURL:            v.GetString("redis.url"),
		NATSURL:             v.GetString("nats.url"),
		EventsChannel:       v.GetString("events.channel"),
		JWTSecret:           v.GetString("jwt.secret"),
		JWTIssuer:           strings.TrimSpace(v.GetString("jwt.issuer")),
		AllowedOrigins:      v.GetString("http.allowed_origins"),
		AccessLog:           v.GetBool("http.access_log"),
		AIProvider:          strings.ToLower(strings.TrimSpace(v.GetString("ai.provider"))),
		AIModel:             v.GetString("ai.model"),
		AIMaxTokens:         v.GetInt("ai.max_tokens"),
		AITemperature:       float32(v.GetFloat64("ai.temperature")),
		AITimeout:           aiTimeout,
		OpenAIAPIKey:        v.GetString("openai_api_key"),
		GeminiAPIKey:        v.GetString("gemini_api_key"),
		FeedbackTimeout:     feedbackTimeout,
		TopicsCacheTTL:      topicsTTL,
		ProgressCacheTTL:    progressTTL,
		GenerationRateLimit: v.GetInt("generation.rate_limit"),
		GenerationWindow:    window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	switch cfg.AIProvider {
	case "openai", "gemini":
	default:
		return Config{}, fmt.Errorf("unsupported ai provider %q", cfg.AIProvider)
	}

	if cfg.AIAPIKey() == "" {
		return Config{}, fmt.Errorf("api key for ai provider %q must be provided", cfg.AIProvider)
	}

	if cfg.AIMaxTokens <= 0 {
		cfg.AIMaxTokens = 2048
	}

	if cfg.GenerationRateLimit <= 0 {
		cfg.GenerationRateLimit = 5
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(v.GetString(key))
	if raw == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return fallback, nil
	}
	return d, nil
}
