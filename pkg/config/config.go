package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	App struct {
		Host      string
		Port      string
		BuildMode string
	}
	Mongo struct {
		URI      string
		Database string
	}
	Gemini struct {
		APIKey string
		Model  string
	}
	Order struct {
		PruneZeroQuantity bool
	}
}

// Load reads configuration from the environment, optionally seeded from a
// .env file at path. Missing required variables are fatal.
func Load(path string) (*Config, error) {
	if path != "" {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			log.Warn().Err(err).Str("path", path).Msg("failed to load .env file")
		}
	}

	cfg := &Config{}

	cfg.App.Host = os.Getenv("APP_HOST")
	if cfg.App.Host == "" {
		cfg.App.Host = "0.0.0.0"
	}
	cfg.App.Port = os.Getenv("APP_PORT")
	if cfg.App.Port == "" {
		cfg.App.Port = "8017"
	}
	cfg.App.BuildMode = os.Getenv("BUILD_MODE")
	if cfg.App.BuildMode == "" {
		cfg.App.BuildMode = "production"
	}

	cfg.Mongo.URI = os.Getenv("MONGODB_URI")
	if cfg.Mongo.URI == "" {
		log.Fatal().Msg("MONGODB_URI is required")
	}
	cfg.Mongo.Database = os.Getenv("DATABASE_NAME")
	if cfg.Mongo.Database == "" {
		log.Fatal().Msg("DATABASE_NAME is required")
	}

	cfg.Gemini.APIKey = os.Getenv("GEMINI_KEY")
	cfg.Gemini.Model = os.Getenv("GEMINI_MODEL")
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.0-flash"
	}

	cfg.Order.PruneZeroQuantity = os.Getenv("ORDER_PRUNE_ZERO_QTY") == "true"

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.App.BuildMode == "dev"
}
