package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"user-service/internal/shared"
)

// Config holds application configuration values.
type Config struct {
	Env  string `validate:"required,oneof=dev prod"`
	HTTP struct {
		Addr            string        `validate:"required"`
		ShutdownTimeout time.Duration `validate:"gt=0"`
	}
	Log struct {
		ConsoleLevel string `validate:"required,oneof=debug info warn error"`
		FileLevel    string `validate:"required,oneof=debug info warn error"`
		File         string
	}
	Errors struct {
		GlobalFile  string `validate:"required"`
		ServiceFile string `validate:"required"`
	}
	DB struct {
		Driver      string `validate:"omitempty,oneof=postgres sqlite"`
		DSN         string `validate:"required_with=Driver"`
		WaitTimeout time.Duration
	}
}

var validate = validator.New()

// Load reads configuration from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	var c Config
	var err error
	c.Env = getenv("ENV", "prod")
	c.HTTP.Addr = getenv("HTTP_ADDR", ":8080")
	if c.HTTP.ShutdownTimeout, err = getduration("HTTP_SHUTDOWN_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	c.Log.ConsoleLevel = strings.ToLower(getenv("LOG_CONSOLE_LEVEL", "info"))
	c.Log.FileLevel = strings.ToLower(getenv("LOG_FILE_LEVEL", "debug"))
	c.Log.File = getenv("LOG_FILE", "data/logs/user-service.log")
	c.Errors.GlobalFile = shared.PathFromEnv(shared.GlobalCatalog)
	c.Errors.ServiceFile = shared.PathFromEnv(shared.ServiceCatalog)
	c.DB.Driver = strings.ToLower(os.Getenv("DB_DRIVER"))
	c.DB.DSN = os.Getenv("DB_DSN")
	if c.DB.WaitTimeout, err = getduration("DB_WAIT_TIMEOUT", 30*time.Second); err != nil {
		return Config{}, err
	}

	if err := validate.Struct(c); err != nil {
		return Config{}, err
	}
	return c, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getduration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	return d, nil
}
