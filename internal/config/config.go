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
	Engine   EngineConfig   `yaml:"engine" mapstructure:"engine"`
	Registry RegistryConfig `yaml:"registry" mapstructure:"registry"`
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Fetcher  FetcherConfig  `yaml:"fetcher" mapstructure:"fetcher"`
	Notion   NotionConfig   `yaml:"notion" mapstructure:"notion"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// EngineConfig holds the mapping and derivation thresholds. The defaults are
// tuned against Capitaline exports; override with care, the mapper's veto and
// floor behavior assumes exact_score sits above every inexact score.
type EngineConfig struct {
	ExactScore             float64 `yaml:"exact_score" mapstructure:"exact_score" json:"exact_score"`
	MinConfidence          float64 `yaml:"min_confidence" mapstructure:"min_confidence" json:"min_confidence"`
	SingleTokenFloor       float64 `yaml:"single_token_floor" mapstructure:"single_token_floor" json:"single_token_floor"`
	CandidateFloor         float64 `yaml:"candidate_floor" mapstructure:"candidate_floor" json:"candidate_floor"`
	TokenOverlapFloor      float64 `yaml:"token_overlap_floor" mapstructure:"token_overlap_floor" json:"token_overlap_floor"`
	FallbackMagnitudeRatio float64 `yaml:"fallback_magnitude_ratio" mapstructure:"fallback_magnitude_ratio" json:"fallback_magnitude_ratio"`
	MaxFormulaDepth        int     `yaml:"max_formula_depth" mapstructure:"max_formula_depth" json:"max_formula_depth"`
}

// RegistryConfig points at an optional YAML overlay merged over the builtin
// target table.
type RegistryConfig struct {
	OverlayPath string `yaml:"overlay_path" mapstructure:"overlay_path"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// FetcherConfig configures remote statement retrieval.
type FetcherConfig struct {
	BaseURL     string    `yaml:"base_url" mapstructure:"base_url"`
	UserAgent   string    `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs int       `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64   `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	Burst       int       `yaml:"burst" mapstructure:"burst"`
	MaxRetries  int       `yaml:"max_retries" mapstructure:"max_retries"`
	FTP         FTPConfig `yaml:"ftp" mapstructure:"ftp"`
}

// FTPConfig holds credentials for vendor FTP drops.
type FTPConfig struct {
	Host     string `yaml:"host" mapstructure:"host"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	Dir      string `yaml:"dir" mapstructure:"dir"`
}

// NotionConfig holds Notion API credentials and the run-summary database ID.
type NotionConfig struct {
	Token string `yaml:"token" mapstructure:"token"`
	RunDB string `yaml:"run_db" mapstructure:"run_db"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentCompanies int `yaml:"max_concurrent_companies" mapstructure:"max_concurrent_companies"`
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

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FINMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("engine.exact_score", 0.980)
	v.SetDefault("engine.min_confidence", 0.75)
	v.SetDefault("engine.single_token_floor", 0.95)
	v.SetDefault("engine.candidate_floor", 0.55)
	v.SetDefault("engine.token_overlap_floor", 0.60)
	v.SetDefault("engine.fallback_magnitude_ratio", 0.01)
	v.SetDefault("engine.max_formula_depth", 5)
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "finmap.db")
	v.SetDefault("fetcher.user_agent", "finmap/1.0 (research use)")
	v.SetDefault("fetcher.timeout_secs", 45)
	v.SetDefault("fetcher.rate_per_sec", 2)
	v.SetDefault("fetcher.burst", 1)
	v.SetDefault("fetcher.max_retries", 3)
	v.SetDefault("batch.max_concurrent_companies", 4)
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

// Validate checks the configuration for the given run mode. Engine thresholds
// are checked in every mode; store, server, and Notion settings only in the
// modes that reach them.
func (c *Config) Validate(mode string) error {
	var problems []string

	e := c.Engine
	if e.ExactScore <= 0.9 || e.ExactScore > 1.0 {
		problems = append(problems, "engine.exact_score must be in (0.9, 1.0]")
	}
	if e.MinConfidence <= 0 || e.MinConfidence >= 1 {
		problems = append(problems, "engine.min_confidence must be in (0, 1)")
	}
	if e.SingleTokenFloor < e.MinConfidence || e.SingleTokenFloor > 1 {
		problems = append(problems, "engine.single_token_floor must be in [min_confidence, 1]")
	}
	if e.CandidateFloor < 0 || e.CandidateFloor >= e.MinConfidence {
		problems = append(problems, "engine.candidate_floor must be in [0, min_confidence)")
	}
	if e.TokenOverlapFloor <= 0 || e.TokenOverlapFloor >= 1 {
		problems = append(problems, "engine.token_overlap_floor must be in (0, 1)")
	}
	if e.FallbackMagnitudeRatio < 0 || e.FallbackMagnitudeRatio >= 1 {
		problems = append(problems, "engine.fallback_magnitude_ratio must be in [0, 1)")
	}
	if e.MaxFormulaDepth < 1 || e.MaxFormulaDepth > 10 {
		problems = append(problems, "engine.max_formula_depth must be between 1 and 10")
	}

	needsStore := false
	switch mode {
	case "analyze":
		// Standalone analysis runs without a store unless persistence is requested.
	case "batch":
		needsStore = true
		if c.Batch.MaxConcurrentCompanies < 1 || c.Batch.MaxConcurrentCompanies > 50 {
			problems = append(problems, "batch.max_concurrent_companies must be between 1 and 50")
		}
	case "serve":
		needsStore = true
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
		if c.Batch.MaxConcurrentCompanies < 1 || c.Batch.MaxConcurrentCompanies > 50 {
			problems = append(problems, "batch.max_concurrent_companies must be between 1 and 50")
		}
	case "publish":
		needsStore = true
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.RunDB == "" {
			problems = append(problems, "notion.run_db is required")
		}
	case "fetch":
		if c.Fetcher.BaseURL == "" && c.Fetcher.FTP.Host == "" {
			problems = append(problems, "fetcher.base_url or fetcher.ftp.host is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if needsStore {
		switch c.Store.Driver {
		case "sqlite":
			if c.Store.Path == "" {
				problems = append(problems, "store.path is required for the sqlite driver")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				problems = append(problems, "store.database_url is required for the postgres driver")
			}
		default:
			problems = append(problems, "store.driver must be sqlite or postgres")
		}
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
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
