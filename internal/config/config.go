package config

import (
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Upstream UpstreamConfig
	Cache    CacheConfig
	Registry RegistryConfig
	Archive  ArchiveConfig
	Stats    StatsConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

// UpstreamConfig points at the Alef backend every tenant-scoped request
// is proxied to.
type UpstreamConfig struct {
	BaseURL        string
	Token          string
	TimeoutSeconds int
}

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	StatsTTLSeconds   int
	SessionTTLSeconds int
}

// RegistryConfig configures the local tenant directory. The gateway runs
// without it when Enabled is false; slug resolution then always goes
// upstream.
type RegistryConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ArchiveConfig configures the S3-compatible bucket exports are copied to.
type ArchiveConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type StatsConfig struct {
	// PropagateErrors switches the aggregator from best-effort (empty
	// stats on upstream failure) to failing the request.
	PropagateErrors bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 30)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("UPSTREAM_BASE_URL", "http://localhost:3001")
		viper.SetDefault("UPSTREAM_TOKEN", "")
		viper.SetDefault("UPSTREAM_TIMEOUT_SECONDS", 10)
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_STATS_TTL_SECONDS", 60)
		viper.SetDefault("CACHE_SESSION_TTL_SECONDS", 43200)
		viper.SetDefault("REGISTRY_ENABLED", false)
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "alef_gateway")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("ARCHIVE_ENABLED", false)
		viper.SetDefault("ARCHIVE_ENDPOINT", "")
		viper.SetDefault("ARCHIVE_ACCESS_KEY", "")
		viper.SetDefault("ARCHIVE_SECRET_KEY", "")
		viper.SetDefault("ARCHIVE_BUCKET", "alef-exports")
		viper.SetDefault("ARCHIVE_USE_SSL", true)
		viper.SetDefault("STATS_PROPAGATE_ERRORS", false)

		viper.AutomaticEnv()

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Upstream: UpstreamConfig{
				BaseURL:        viper.GetString("UPSTREAM_BASE_URL"),
				Token:          viper.GetString("UPSTREAM_TOKEN"),
				TimeoutSeconds: viper.GetInt("UPSTREAM_TIMEOUT_SECONDS"),
			},
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				StatsTTLSeconds:   viper.GetInt("CACHE_STATS_TTL_SECONDS"),
				SessionTTLSeconds: viper.GetInt("CACHE_SESSION_TTL_SECONDS"),
			},
			Registry: RegistryConfig{
				Enabled:  viper.GetBool("REGISTRY_ENABLED"),
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			Archive: ArchiveConfig{
				Enabled:   viper.GetBool("ARCHIVE_ENABLED"),
				Endpoint:  viper.GetString("ARCHIVE_ENDPOINT"),
				AccessKey: viper.GetString("ARCHIVE_ACCESS_KEY"),
				SecretKey: viper.GetString("ARCHIVE_SECRET_KEY"),
				Bucket:    viper.GetString("ARCHIVE_BUCKET"),
				UseSSL:    viper.GetBool("ARCHIVE_USE_SSL"),
			},
			Stats: StatsConfig{
				PropagateErrors: viper.GetBool("STATS_PROPAGATE_ERRORS"),
			},
		}
	})

	return instance
}
