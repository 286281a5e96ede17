package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Oracle   OracleConfig   `yaml:"oracle" mapstructure:"oracle"`
	News     NewsConfig     `yaml:"news" mapstructure:"news"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Evidence EvidenceConfig `yaml:"evidence" mapstructure:"evidence"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-persistence backend.
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// OracleConfig holds Anthropic API settings and the gate limits every
// model call passes through.
type OracleConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	Model       string `yaml:"model" mapstructure:"model"`
	MaxTokens   int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	RPM         int    `yaml:"rpm" mapstructure:"rpm"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// NewsConfig configures the news-search validation tool.
type NewsConfig struct {
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	MaxArticles int    `yaml:"max_articles" mapstructure:"max_articles"`
}

// RegistryConfig holds WikiRate API settings.
type RegistryConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// EvidenceConfig configures document retrieval. The memory backend
// chunks and searches in-process; pgvector needs a database URL.
type EvidenceConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	ChunkMaxLen int    `yaml:"chunk_max_len" mapstructure:"chunk_max_len"`
}

// PipelineConfig configures the analysis pipeline.
type PipelineConfig struct {
	MaxIterations     int      `yaml:"max_iterations" mapstructure:"max_iterations"`
	Workers           int      `yaml:"workers" mapstructure:"workers"`
	RulesMode         string   `yaml:"rules_mode" mapstructure:"rules_mode"`
	Language          string   `yaml:"language" mapstructure:"language"`
	SearchTimeoutSecs int      `yaml:"search_timeout_secs" mapstructure:"search_timeout_secs"`
	Whitelist         []string `yaml:"whitelist" mapstructure:"whitelist"`
}

// WhitelistSet lowercases the configured whitelist into the lookup form
// the pipeline uses. An empty whitelist disables the check.
func (p PipelineConfig) WhitelistSet() map[string]bool {
	if len(p.Whitelist) == 0 {
		return nil
	}
	set := make(map[string]bool, len(p.Whitelist))
	for _, name := range p.Whitelist {
		if name = strings.ToLower(strings.TrimSpace(name)); name != "" {
			set[name] = true
		}
	}
	return set
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the fields the given mode actually needs. Modes:
// "analyze" for one-shot CLI runs, "serve" for the HTTP server.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func() {
		if c.Oracle.Key == "" {
			problems = append(problems, "oracle.key is required")
		}
		if c.Evidence.Backend != "memory" && c.Evidence.Backend != "pgvector" {
			problems = append(problems, "evidence.backend must be memory or pgvector")
		}
		if c.Evidence.Backend == "pgvector" && c.Evidence.DatabaseURL == "" {
			problems = append(problems, "evidence.database_url is required for the pgvector backend")
		}
		if c.Pipeline.MaxIterations < 1 || c.Pipeline.MaxIterations > 10 {
			problems = append(problems, "pipeline.max_iterations must be between 1 and 10")
		}
		if c.Pipeline.Workers < 1 || c.Pipeline.Workers > 10 {
			problems = append(problems, "pipeline.workers must be between 1 and 10")
		}
	}

	switch mode {
	case "analyze":
		check()
	case "serve":
		check()
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GREENWASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "greenwash.db")
	v.SetDefault("oracle.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("oracle.max_tokens", 4096)
	v.SetDefault("oracle.rpm", 30)
	v.SetDefault("oracle.timeout_secs", 30)
	v.SetDefault("news.base_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("news.max_articles", 5)
	v.SetDefault("registry.base_url", "https://wikirate.org")
	v.SetDefault("evidence.backend", "memory")
	v.SetDefault("evidence.chunk_max_len", 1200)
	v.SetDefault("pipeline.max_iterations", 3)
	v.SetDefault("pipeline.workers", 3)
	v.SetDefault("pipeline.rules_mode", "rules_llm")
	v.SetDefault("pipeline.language", "en")
	v.SetDefault("pipeline.search_timeout_secs", 6)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
