package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v9"
	"github.com/joho/godotenv"
	"hermannm.dev/wrap"
)

type Config struct {
	IsProduction  bool `env:"PRODUCTION" envDefault:"false"`
	API           API
	Elasticsearch Elasticsearch
	Query         Query
}

type API struct {
	Port string `env:"API_PORT" envDefault:"8000"`
}

type Elasticsearch struct {
	Address  string `env:"ELASTICSEARCH_ADDRESS"`
	Index    string `env:"ELASTICSEARCH_INDEX"`
	Username string `env:"ELASTICSEARCH_USERNAME" envDefault:""`
	Password string `env:"ELASTICSEARCH_PASSWORD" envDefault:""`
	Debug    bool   `env:"ELASTICSEARCH_DEBUG_ENABLED" envDefault:"false"`
}

type Query struct {
	// Path to the JSON or YAML field model of the served data source.
	FieldsFile            string `env:"FIELDS_FILE"`
	MissingBooleanAsFalse bool   `env:"MISSING_BOOLEAN_AS_FALSE" envDefault:"false"`
}

// ReadFromEnv reads config from environment variables, loading a .env file first if there is one.
func ReadFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, wrap.Error(err, "failed to load .env file")
	}

	var config Config
	if err := env.ParseWithOptions(&config, env.Options{RequiredIfNoDef: true}); err != nil {
		return Config{}, wrap.Error(err, "invalid environment variables")
	}

	return config, nil
}
