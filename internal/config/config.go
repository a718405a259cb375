package config

import (
	"errors"
	"os"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Env       string
	LogLevel  string
	Addr      string
	DBType    string
	DBDSN     string
	StoreFile string
	Timezone  string
}

var (
	cfg  *Config
	once sync.Once
)

func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		cfg = &Config{
			Env:       getEnv("APP_ENV", "development"),
			LogLevel:  getEnv("LOG_LEVEL", "info"),
			Addr:      getEnv("LISTEN_ADDR", ":8088"),
			DBType:    getEnv("STORAGE_BACKEND", "file"),
			DBDSN:     getEnv("POSTGRES_DSN", ""),
			StoreFile: getEnv("STORE_FILE", "data/sleepcoach.json"),
			Timezone:  getEnv("TZ_OVERRIDE", ""),
		}
		if err := cfg.Validate(); err != nil {
			panic("Invalid config: " + err.Error())
		}
	})
	return cfg
}

func (c *Config) Validate() error {
	if c.DBType == "postgres" && c.DBDSN == "" {
		return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
	}
	if c.DBType == "file" && c.StoreFile == "" {
		return errors.New("file storage requires STORE_FILE to be set")
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
