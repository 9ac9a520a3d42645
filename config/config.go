package config

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server     Server
	Log        Log
	Database   Database
	Redis      Redis
	Generation Generation
}

type Server struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
}

type Log struct {
	Level  string
	Pretty bool
}

type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Redis is optional. An empty Addr disables the shared job guard.
type Redis struct {
	Addr     string
	Password string
	DB       int
	GuardTTL time.Duration
}

type Generation struct {
	GeminiApiKey string
	Model        string
	Timeout      time.Duration
	MaxRetries   int
}

func NewConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("GIN_MODE", "debug")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("DATABASE_PORT", "5432")
	viper.SetDefault("DATABASE_SSLMODE", "disable")
	viper.SetDefault("JOB_GUARD_TTL", "10m")
	viper.SetDefault("GEMINI_MODEL", "gemini-1.5-flash")
	viper.SetDefault("GENERATION_TIMEOUT", "120s")
	viper.SetDefault("GENERATION_MAX_RETRIES", 2)

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg("Error reading config file")
	}

	var config Config

	config.Server.Port = viper.GetString("SERVER_PORT")
	config.Server.GinMode = viper.GetString("GIN_MODE")
	config.Server.AllowedOrigins = splitList(viper.GetString("CORS_ALLOWED_ORIGINS"))

	config.Log.Level = viper.GetString("LOG_LEVEL")
	config.Log.Pretty = viper.GetBool("LOG_PRETTY")

	config.Database.Host = viper.GetString("DATABASE_HOST")
	config.Database.Port = viper.GetString("DATABASE_PORT")
	config.Database.User = viper.GetString("DATABASE_USER")
	config.Database.Password = viper.GetString("DATABASE_PASSWORD")
	config.Database.Name = viper.GetString("DATABASE_NAME")
	config.Database.SSLMode = viper.GetString("DATABASE_SSLMODE")

	config.Redis.Addr = viper.GetString("REDIS_ADDR")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.GuardTTL = viper.GetDuration("JOB_GUARD_TTL")

	config.Generation.GeminiApiKey = viper.GetString("GEMINI_API_KEY")
	config.Generation.Model = viper.GetString("GEMINI_MODEL")
	config.Generation.Timeout = viper.GetDuration("GENERATION_TIMEOUT")
	config.Generation.MaxRetries = viper.GetInt("GENERATION_MAX_RETRIES")

	log.Info().
		Str("port", config.Server.Port).
		Str("dbHost", config.Database.Host).
		Str("dbName", config.Database.Name).
		Str("redisAddr", config.Redis.Addr).
		Str("model", config.Generation.Model).
		Bool("geminiConfigured", config.Generation.GeminiApiKey != "").
		Msg("Config loaded")
	return &config, nil
}

// DSN builds the postgres connection string for gorm.
func (d Database) DSN() string {
	return "host=" + d.Host +
		" user=" + d.User +
		" password=" + d.Password +
		" dbname=" + d.Name +
		" port=" + d.Port +
		" sslmode=" + d.SSLMode
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
