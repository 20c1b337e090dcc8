// Package config loads configuration for the auditctl client and the
// engined stub server from a YAML file with environment overrides.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Engine   EngineConfig   `mapstructure:"engine"`
	Export   ExportConfig   `mapstructure:"export"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Runner   RunnerConfig   `mapstructure:"runner"`
}

// EngineConfig points the client at the remote audit engine.
type EngineConfig struct {
	BaseURL      string        `mapstructure:"base_url"`
	Timeout      time.Duration `mapstructure:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// ExportConfig controls where export artifacts land.
type ExportConfig struct {
	Dir     string          `mapstructure:"dir"`
	Archive ArchiveS3Config `mapstructure:"archive"`
}

// ArchiveS3Config is the optional object-storage archive for exports.
type ArchiveS3Config struct {
	Enabled   bool   `mapstructure:"enabled"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Prefix    string `mapstructure:"prefix"`
	PublicURL string `mapstructure:"public_url"`
}

// ServerConfig configures the engined HTTP server.
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// DatabaseConfig configures engined's audit store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`   // sqlite file path
	DSN             string        `mapstructure:"dsn"`    // postgres connection string
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// RunnerConfig paces engined's simulated audit runs.
type RunnerConfig struct {
	StepInterval time.Duration `mapstructure:"step_interval"`
}

// Load reads configuration from the given path (or the default search
// locations) with environment variable overrides.
// Parameters:
//   - configPath: explicit config file path; empty uses ./configs and cwd.
// Returns:
//   - *Config: populated configuration.
//   - error: non-nil on read or unmarshal failure.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("engine.base_url", "http://localhost:8000")
	v.SetDefault("engine.timeout", 30*time.Second)
	v.SetDefault("engine.poll_interval", 2*time.Second)
	v.SetDefault("export.dir", "./exports")
	v.SetDefault("export.archive.enabled", false)
	v.SetDefault("export.archive.use_ssl", true)
	v.SetDefault("export.archive.bucket", "audit-exports")
	v.SetDefault("export.archive.prefix", "exports")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/audits.db")
	v.SetDefault("database.max_idle_conns", 2)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("runner.step_interval", 500*time.Millisecond)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("engine.base_url", "ENGINE_BASE_URL")
	v.BindEnv("export.archive.endpoint", "ARCHIVE_S3_ENDPOINT")
	v.BindEnv("export.archive.access_key", "ARCHIVE_S3_ACCESS_KEY")
	v.BindEnv("export.archive.secret_key", "ARCHIVE_S3_SECRET_KEY")
	v.BindEnv("export.archive.bucket", "ARCHIVE_S3_BUCKET")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
