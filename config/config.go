// Package config loads runtime settings.
//
// Sources, lowest to highest precedence: built-in defaults, a YAML file,
// a .env file, and MARKETDASH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"marketdash/prefs"
)

const envPrefix = "MARKETDASH_"

// Config holds application configuration.
type Config struct {
	API struct {
		BaseURL string        `yaml:"base_url" validate:"required,http_url"`
		Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
	} `yaml:"api"`

	Dashboard struct {
		RefreshInterval time.Duration `yaml:"refresh_interval" validate:"min=1s"`
		CryptoLimit     int           `yaml:"crypto_limit" validate:"min=1,max=250"`
		TickerLimit     int           `yaml:"ticker_limit" validate:"min=1,max=250"`
		NewsLimit       int           `yaml:"news_limit" validate:"min=1,max=100"`
	} `yaml:"dashboard"`

	Crypto struct {
		ListLimit   int `yaml:"list_limit" validate:"min=1,max=250"`
		HistoryDays int `yaml:"history_days" validate:"min=1,max=365"`
	} `yaml:"crypto"`

	Stocks struct {
		DefaultSymbol string `yaml:"default_symbol" validate:"required,ticker"`
	} `yaml:"stocks"`

	Forex struct {
		DefaultFrom   string  `yaml:"default_from" validate:"iso4217"`
		DefaultTo     string  `yaml:"default_to" validate:"iso4217"`
		DefaultAmount float64 `yaml:"default_amount" validate:"gte=0"`
	} `yaml:"forex"`

	Log struct {
		Level string `yaml:"level" validate:"oneof=debug info warn error"`
		File  string `yaml:"file" validate:"required"`
	} `yaml:"log"`

	Favorites struct {
		Persist bool   `yaml:"persist"`
		DBPath  string `yaml:"db_path" validate:"required_if=Persist true"`
	} `yaml:"favorites"`
}

// Options says where to look. Zero values pick the defaults.
type Options struct {
	// Path is an explicit YAML file. It must exist when set.
	Path string
	// EnvFile is a dotenv file; ".env" when empty. A missing file is fine.
	EnvFile string
	// Dir is the config directory used for default file locations.
	Dir string
}

// Default returns the built-in settings with files placed under dir.
func Default(dir string) *Config {
	cfg := &Config{}
	cfg.API.BaseURL = "http://localhost:5000/api"
	cfg.API.Timeout = 10 * time.Second
	cfg.Dashboard.RefreshInterval = 30 * time.Second
	cfg.Dashboard.CryptoLimit = 6
	cfg.Dashboard.TickerLimit = 20
	cfg.Dashboard.NewsLimit = 4
	cfg.Crypto.ListLimit = 100
	cfg.Crypto.HistoryDays = 7
	cfg.Stocks.DefaultSymbol = "AAPL"
	cfg.Forex.DefaultFrom = "USD"
	cfg.Forex.DefaultTo = "EUR"
	cfg.Forex.DefaultAmount = 1
	cfg.Log.Level = "info"
	cfg.Log.File = filepath.Join(dir, "marketdash.log")
	cfg.Favorites.DBPath = filepath.Join(dir, "favorites.db")
	return cfg
}

// Load builds the configuration from every source and validates it.
func Load(opts Options) (*Config, error) {
	dir := opts.Dir
	if dir == "" {
		d, err := prefs.ConfigDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	cfg := Default(dir)

	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		path = filepath.Join(dir, "config.yaml")
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	dotenv, err := godotenv.Read(envFile)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(envPrefix + key); ok {
			return v, true
		}
		v, ok := dotenv[envPrefix+key]
		return v, ok
	}
	if err := overrideWithEnv(cfg, lookup); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.API.BaseURL = strings.TrimRight(strings.TrimSpace(c.API.BaseURL), "/")
	c.Stocks.DefaultSymbol = strings.ToUpper(strings.TrimSpace(c.Stocks.DefaultSymbol))
	c.Forex.DefaultFrom = strings.ToUpper(strings.TrimSpace(c.Forex.DefaultFrom))
	c.Forex.DefaultTo = strings.ToUpper(strings.TrimSpace(c.Forex.DefaultTo))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

var (
	validate     = newValidator()
	tickerRegexp = regexp.MustCompile(`^[A-Z0-9][A-Z0-9.\-^=]{0,14}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("ticker", func(fl validator.FieldLevel) bool {
		return tickerRegexp.MatchString(fl.Field().String())
	})
	return v
}

// Validate checks every field and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s (got %v)", field, fe.Tag(), fe.Value()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

// overrideWithEnv applies MARKETDASH_* values on top of cfg.
func overrideWithEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s value %q: %w", envPrefix, key, v, err)
		}
		*dst = d
		return nil
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s value %q: %w", envPrefix, key, v, err)
		}
		*dst = n
		return nil
	}

	str("API_BASE_URL", &cfg.API.BaseURL)
	str("STOCKS_DEFAULT_SYMBOL", &cfg.Stocks.DefaultSymbol)
	str("FOREX_DEFAULT_FROM", &cfg.Forex.DefaultFrom)
	str("FOREX_DEFAULT_TO", &cfg.Forex.DefaultTo)
	str("LOG_LEVEL", &cfg.Log.Level)
	str("LOG_FILE", &cfg.Log.File)
	str("FAVORITES_DB_PATH", &cfg.Favorites.DBPath)

	for _, f := range []func() error{
		func() error { return dur("API_TIMEOUT", &cfg.API.Timeout) },
		func() error { return dur("DASHBOARD_REFRESH_INTERVAL", &cfg.Dashboard.RefreshInterval) },
		func() error { return num("DASHBOARD_CRYPTO_LIMIT", &cfg.Dashboard.CryptoLimit) },
		func() error { return num("DASHBOARD_TICKER_LIMIT", &cfg.Dashboard.TickerLimit) },
		func() error { return num("DASHBOARD_NEWS_LIMIT", &cfg.Dashboard.NewsLimit) },
		func() error { return num("CRYPTO_LIST_LIMIT", &cfg.Crypto.ListLimit) },
		func() error { return num("CRYPTO_HISTORY_DAYS", &cfg.Crypto.HistoryDays) },
	} {
		if err := f(); err != nil {
			return err
		}
	}

	if v, ok := lookup("FOREX_DEFAULT_AMOUNT"); ok && v != "" {
		amount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sFOREX_DEFAULT_AMOUNT value %q: %w", envPrefix, v, err)
		}
		cfg.Forex.DefaultAmount = amount
	}
	if v, ok := lookup("FAVORITES_PERSIST"); ok && v != "" {
		persist, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sFAVORITES_PERSIST value %q: %w", envPrefix, v, err)
		}
		cfg.Favorites.Persist = persist
	}
	return nil
}
