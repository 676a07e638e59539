package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yungbote/dwitter-backend/internal/data/db"
	"github.com/yungbote/dwitter-backend/internal/observability"
	"github.com/yungbote/dwitter-backend/internal/pkg/logger"
	"github.com/yungbote/dwitter-backend/internal/platform/memcached"
	"github.com/yungbote/dwitter-backend/internal/platform/neo4jdb"
	"github.com/yungbote/dwitter-backend/internal/realtime/bus"
	"github.com/yungbote/dwitter-backend/internal/utils"
)

const ConfigPathEnv = "DWITTER_CONFIG"

type Config struct {
	LogMode     string                   `yaml:"log_mode"`
	AutoMigrate bool                     `yaml:"auto_migrate"`
	DB          db.Config                `yaml:"database"`
	Redis       bus.RedisConfig          `yaml:"redis"`
	Memcached   memcached.Config         `yaml:"memcached"`
	Neo4j       neo4jdb.Config           `yaml:"neo4j"`
	Otel        observability.OtelConfig `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		LogMode:     "development",
		AutoMigrate: true,
		DB: db.Config{
			Driver: db.DriverPostgres,
			Host:   "localhost",
			Port:   "5432",
			User:   "postgres",
			Name:   "dwitter",
		},
		Redis:     bus.RedisConfig{Channel: "dwitter.social"},
		Memcached: memcached.Config{TTLSeconds: 300},
		Neo4j:     neo4jdb.Config{User: "neo4j", Database: "neo4j", TimeoutSeconds: 10},
		Otel:      observability.OtelConfig{ServiceName: "dwitter", Environment: "development", SampleRatio: 0.1},
	}
}

// LoadConfig layers defaults, the optional YAML file at path (or $DWITTER_CONFIG), and
// the environment, in that order. A .env file in the working directory is loaded first
// when present; variables already set in the process win over it.
func LoadConfig(path string, log *logger.Logger) (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path == "" {
		path = strings.TrimSpace(os.Getenv(ConfigPathEnv))
	}
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg, log)
	return cfg, nil
}

func applyEnv(cfg *Config, log *logger.Logger) {
	cfg.LogMode = utils.GetEnv("LOG_MODE", cfg.LogMode, log)
	cfg.AutoMigrate = utils.GetEnvAsBool("AUTO_MIGRATE", cfg.AutoMigrate, log)

	cfg.DB.Driver = utils.GetEnv("DB_DRIVER", cfg.DB.Driver, log)
	cfg.DB.DSN = utils.GetEnv("DATABASE_URL", cfg.DB.DSN, log)
	cfg.DB.Host = utils.GetEnv("POSTGRES_HOST", cfg.DB.Host, log)
	cfg.DB.Port = utils.GetEnv("POSTGRES_PORT", cfg.DB.Port, log)
	cfg.DB.User = utils.GetEnv("POSTGRES_USER", cfg.DB.User, log)
	cfg.DB.Password = utils.GetEnv("POSTGRES_PASSWORD", cfg.DB.Password, log)
	cfg.DB.Name = utils.GetEnv("POSTGRES_NAME", cfg.DB.Name, log)
	cfg.DB.SQLitePath = utils.GetEnv("SQLITE_PATH", cfg.DB.SQLitePath, log)

	cfg.Redis.Addr = utils.GetEnv("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.Channel = utils.GetEnv("REDIS_CHANNEL", cfg.Redis.Channel, log)

	cfg.Memcached.Servers = utils.GetEnvAsList("MEMCACHED_SERVERS", cfg.Memcached.Servers, log)
	cfg.Memcached.TTLSeconds = utils.GetEnvAsInt("STATS_CACHE_TTL_SECONDS", cfg.Memcached.TTLSeconds, log)

	cfg.Neo4j.URI = utils.GetEnv("NEO4J_URI", cfg.Neo4j.URI, log)
	cfg.Neo4j.User = utils.GetEnv("NEO4J_USER", cfg.Neo4j.User, log)
	cfg.Neo4j.Password = utils.GetEnv("NEO4J_PASSWORD", cfg.Neo4j.Password, log)
	cfg.Neo4j.Database = utils.GetEnv("NEO4J_DATABASE", cfg.Neo4j.Database, log)
	cfg.Neo4j.TimeoutSeconds = utils.GetEnvAsInt("NEO4J_TIMEOUT_SECONDS", cfg.Neo4j.TimeoutSeconds, log)
	cfg.Neo4j.MaxPoolSize = utils.GetEnvAsInt("NEO4J_MAX_POOL_SIZE", cfg.Neo4j.MaxPoolSize, log)

	cfg.Otel.Enabled = utils.GetEnvAsBool("OTEL_ENABLED", cfg.Otel.Enabled, log)
	cfg.Otel.ServiceName = utils.GetEnv("OTEL_SERVICE_NAME", cfg.Otel.ServiceName, log)
	cfg.Otel.Environment = utils.GetEnv("OTEL_ENVIRONMENT", cfg.Otel.Environment, log)
	cfg.Otel.Version = utils.GetEnv("OTEL_SERVICE_VERSION", cfg.Otel.Version, log)
	cfg.Otel.Endpoint = utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Insecure = utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure, log)
	if h := observability.ParseHeaders(utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", "", log)); h != nil {
		cfg.Otel.Headers = h
	}
	if ratio := utils.GetEnv("OTEL_TRACES_SAMPLER_RATIO", "", log); ratio != "" {
		var v float64
		if _, err := fmt.Sscanf(ratio, "%g", &v); err == nil {
			cfg.Otel.SampleRatio = v
		}
	}
}
