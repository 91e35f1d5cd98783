package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Store     Store     `yaml:"store"`
	Generator Generator `yaml:"generator"`
	Server    Server    `yaml:"server"`
	Logging   Logging   `yaml:"logging"`
}

type Store struct {
	MongoURL  string `yaml:"mongo_url"`
	Database  string `yaml:"database"`
	BatchSize int    `yaml:"batch_size"`
}

type Generator struct {
	Movies   int   `yaml:"movies"`
	Users    int   `yaml:"users"`
	Sessions int   `yaml:"sessions"`
	Ratings  int   `yaml:"ratings"`
	Seed     int64 `yaml:"seed"`
}

type Server struct {
	Addr        string `yaml:"addr"`
	CORSOrigins string `yaml:"cors_origins"`
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Default() *Config {
	return &Config{
		Store: Store{
			MongoURL:  "mongodb://localhost:27017",
			Database:  "streaming_analytics",
			BatchSize: 5000,
		},
		Generator: Generator{
			Movies:   200,
			Users:    5000,
			Sessions: 50000,
			Ratings:  20000,
		},
		Server: Server{
			Addr:        ":8000",
			CORSOrigins: "*",
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads path (if it exists), fills unset fields from Default,
// then applies MONGO_URL and DB_NAME environment overrides.
func LoadConfig(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if url := os.Getenv("MONGO_URL"); url != "" {
		config.Store.MongoURL = url
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		config.Store.Database = name
	}

	if config.Store.BatchSize <= 0 {
		config.Store.BatchSize = 5000
	}

	return config, nil
}
