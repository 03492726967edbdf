package config

import (
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	LogLevel              string `mapstructure:"log_level"`
	Site                  struct {
		Origin         string `mapstructure:"origin"`
		Username       string `mapstructure:"username"`
		Password       string `mapstructure:"password"`
		SearchParam    string `mapstructure:"search_param"`
		IndirectPath   string `mapstructure:"indirect_path"`
		AcceptLanguage string `mapstructure:"accept_language"`
	} `mapstructure:"site"`
	Session struct {
		TTL          string `mapstructure:"ttl"`
		WarmSchedule string `mapstructure:"warm_schedule"` // cron spec, empty disables warm-up
	} `mapstructure:"session"`
	Countdown struct {
		Delays         []string `mapstructure:"delays"`
		SecondaryDelay string   `mapstructure:"secondary_delay"`
	} `mapstructure:"countdown"`
	Matcher struct {
		TopK          int `mapstructure:"top_k"`
		MaxTextLength int `mapstructure:"max_text_length"`
		ExactMatch    int `mapstructure:"exact_match"`
		ContainsTitle int `mapstructure:"contains_title"`
		TitleContains int `mapstructure:"title_contains"`
		WordMatch     int `mapstructure:"word_match"`
		YearBonus     int `mapstructure:"year_bonus"`
		ResultsBonus  int `mapstructure:"results_bonus"`
	} `mapstructure:"matcher"`
	Resolver struct {
		MaxAttempts     int  `mapstructure:"max_attempts"`
		MinPayloadBytes int  `mapstructure:"min_payload_bytes"`
		ConvertUTF8     bool `mapstructure:"convert_utf8"`
	} `mapstructure:"resolver"`
	Pipeline struct {
		MaxCandidates int `mapstructure:"max_candidates"`
	} `mapstructure:"pipeline"`
	Subtitles struct {
		Dir      string `mapstructure:"dir"`
		BaseURL  string `mapstructure:"base_url"`
		Route    string `mapstructure:"route"`
		Language string `mapstructure:"language"`
	} `mapstructure:"subtitles"`
	Metadata struct {
		OMDbURL    string `mapstructure:"omdb_url"`
		OMDbAPIKey string `mapstructure:"omdb_api_key"`
	} `mapstructure:"metadata"`
	Server struct {
		Port     int    `mapstructure:"port"`
		Address  string `mapstructure:"address"`
		GRPCPort int    `mapstructure:"grpc_port"`
	} `mapstructure:"server"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Cache struct {
		Provider string `mapstructure:"provider"` // "memory" or "redis"
		Size     int    `mapstructure:"size"`     // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Retry struct {
		MaxRetries int    `mapstructure:"max_retries"`
		Backoff    string `mapstructure:"backoff"`
		MaxBackoff string `mapstructure:"max_backoff"`
	} `mapstructure:"retry"`
	RateLimit struct {
		RequestsPerSecond float64 `mapstructure:"requests_per_second"` // 0 disables the limiter
		Burst             int     `mapstructure:"burst"`
	} `mapstructure:"rate_limit"`
	Browser struct {
		Enabled  bool   `mapstructure:"enabled"`
		ExecPath string `mapstructure:"exec_path"`
		Headless bool   `mapstructure:"headless"`
		Timeout  string `mapstructure:"timeout"`
	} `mapstructure:"browser"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	logger = newBaseLogger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

// newBaseLogger writes human-readable output on a terminal and JSON lines otherwise.
func newBaseLogger() zerolog.Logger {
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stdout).With().Timestamp().Logger()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("user_agent", DefaultUserAgent)

	v.SetDefault("site.origin", "https://www.titulky.com")
	v.SetDefault("site.search_param", "Fulltext")
	v.SetDefault("site.indirect_path", "/idown.php")
	v.SetDefault("site.accept_language", "cs,en-US;q=0.7,en;q=0.3")

	v.SetDefault("session.ttl", "2h")
	v.SetDefault("session.warm_schedule", "@every 90m")

	v.SetDefault("countdown.delays", []string{"0s", "8s", "13s", "18s"})
	v.SetDefault("countdown.secondary_delay", "12s")

	v.SetDefault("matcher.top_k", 5)
	v.SetDefault("matcher.max_text_length", 200)
	v.SetDefault("matcher.exact_match", 1000)
	v.SetDefault("matcher.contains_title", 800)
	v.SetDefault("matcher.title_contains", 600)
	v.SetDefault("matcher.word_match", 100)
	v.SetDefault("matcher.year_bonus", 200)
	v.SetDefault("matcher.results_bonus", 50)

	v.SetDefault("resolver.max_attempts", 3)
	v.SetDefault("resolver.min_payload_bytes", 1000)
	v.SetDefault("resolver.convert_utf8", true)

	v.SetDefault("pipeline.max_candidates", 2)

	v.SetDefault("subtitles.dir", "subs")
	v.SetDefault("subtitles.route", "/subtitles")
	v.SetDefault("subtitles.language", "cze")

	v.SetDefault("metadata.omdb_url", "http://www.omdbapi.com/")

	v.SetDefault("server.port", 7000)
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.grpc_port", 7001)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 2000)
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("retry.max_retries", 2)
	v.SetDefault("retry.backoff", "500ms")
	v.SetDefault("retry.max_backoff", "5s")

	v.SetDefault("rate_limit.requests_per_second", 2.0)
	v.SetDefault("rate_limit.burst", 4)

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout", "45s")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("site.username", "TITULKY_USERNAME")
	_ = v.BindEnv("site.password", "TITULKY_PASSWORD")
	_ = v.BindEnv("metadata.omdb_api_key", "OMDB_API_KEY")
	_ = v.BindEnv("subtitles.base_url", "BASE_URL")
	_ = v.BindEnv("server.port", "PORT")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	return &config, nil
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}

// ParseDuration parses a Go duration string, logging and returning fallback
// when the value is empty or invalid.
func ParseDuration(field, value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("field", field).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return parsed
}

// ParseDurations parses every entry of values. Invalid entries are skipped;
// an empty result yields fallback.
func ParseDurations(field string, values []string, fallback []time.Duration) []time.Duration {
	parsed := make([]time.Duration, 0, len(values))
	for _, value := range values {
		d, err := time.ParseDuration(strings.TrimSpace(value))
		if err != nil || d < 0 {
			logger.Warn().Str("field", field).Str("value", value).Msg("Ignoring invalid duration entry")
			continue
		}
		parsed = append(parsed, d)
	}
	if len(parsed) == 0 {
		return fallback
	}
	return parsed
}
