package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/medify/internal/logger"
	"github.com/nkiryanov/medify/internal/service/auth/tokenmanager"
)

const (
	defaultListenAddr   = "localhost:8000"
	defaultLoggingLevel = logger.LevelInfo
	defaultEnvironment  = logger.EnvProduction
)

type Config struct {
	// Default logging level
	LogLevel string

	// Address on which the API server will be run
	ListenAddr string

	// Database to connect to
	DatabaseDSN string

	// Key and algorithm access tokens are signed with
	JWTSecret string
	JWTAlg    string

	// Access token lifetime
	AccessTTL time.Duration

	// Environment
	Environment string
}

func NewConfig() *Config {
	return &Config{
		LogLevel:    defaultLoggingLevel,
		ListenAddr:  defaultListenAddr,
		JWTAlg:      tokenmanager.DefaultAlg,
		AccessTTL:   tokenmanager.DefaultAccessTTL,
		Environment: defaultEnvironment,
	}
}

// Load variable from '.env' file (should be located at working directory)
func (c *Config) LoadDotEnv(getwd func() (string, error)) error {
	wd, err := getwd()
	if err != nil {
		return err
	}

	envMap, err := godotenv.Read(filepath.Join(wd, ".env"))

	switch {
	case err == nil:
		return c.LoadEnv(func(key string) string {
			return envMap[key]
		})
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

func (c *Config) LoadEnv(getenv func(string) string) error {
	// Set option to value if it not empty
	setString := func(o *string) func(value string) error {
		return func(value string) error {
			if value != "" {
				*o = value
			}
			return nil
		}
	}

	// Token lifetime is set in whole minutes
	setMinutes := func(o *time.Duration) func(value string) error {
		return func(value string) error {
			if value == "" {
				return nil
			}
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("expected positive number of minutes, got %q", value)
			}
			*o = time.Duration(n) * time.Minute
			return nil
		}
	}

	envMap := map[string]func(string) error{
		"RUN_ADDRESS":                 setString(&c.ListenAddr),
		"DATABASE_URL":                setString(&c.DatabaseDSN),
		"JWT_SECRET":                  setString(&c.JWTSecret),
		"JWT_ALG":                     setString(&c.JWTAlg),
		"ACCESS_TOKEN_EXPIRE_MINUTES": setMinutes(&c.AccessTTL),
		"LOG_LEVEL":                   setString(&c.LogLevel),
		"ENVIRONMENT":                 setString(&c.Environment),
	}

	for key, parseFn := range envMap {
		if err := parseFn(getenv(key)); err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
	}

	return nil
}

func (c *Config) ParseFlags(args []string) error {
	fs := pflag.NewFlagSet("medify", pflag.ContinueOnError)

	fs.StringVarP(&c.ListenAddr, "address", "a", c.ListenAddr, "Server listen address")
	fs.StringVarP(&c.DatabaseDSN, "database", "d", c.DatabaseDSN, "Database connection string")
	fs.StringVarP(&c.JWTSecret, "secret-key", "s", c.JWTSecret, "Access tokens signing key")
	fs.StringVar(&c.JWTAlg, "jwt-alg", c.JWTAlg, "Access tokens signing algorithm (HS256, HS384, HS512)")
	fs.DurationVar(&c.AccessTTL, "access-ttl", c.AccessTTL, "Access token lifetime")
	fs.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, "Logging level (debug, info, warn, error)")
	fs.StringVarP(&c.Environment, "environment", "e", c.Environment, "Environment (dev, prod)")

	return fs.Parse(args)
}
