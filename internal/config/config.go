package config

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
	"github.com/annedoesstuff/budgetBenzin/internal/fuel/sources"
)

type AppConfig struct {
	Port string

	// Where the price documents are published. SourceBaseURL wins over SourceDir.
	SourceLayout     string
	SourceBaseURL    string
	SourceDir        string
	PricesDocument   string
	StationsDocument string

	HTTPTimeout     time.Duration
	FetchMaxRetries int

	// RefreshInterval controls how often the documents are reloaded (0 = never).
	RefreshInterval time.Duration

	// Session history retention.
	HistoryMaxAge       time.Duration // relative to the latest snapshot (0 = unlimited)
	HistoryMaxSnapshots int           // 0 = unlimited

	DefaultFuel fuel.Kind
	Location    *time.Location
	PriceFormat fuel.PriceFormat

	LogLevel  slog.Level
	LogFormat string
}

// Load reads configuration from .env, an optional config file and the
// environment, in increasing order of precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	if path := os.Getenv("BUDGETBENZIN_CONFIG"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	v.AutomaticEnv()

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("source_layout", sources.LayoutCombined)
	v.SetDefault("source_base_url", "")
	v.SetDefault("source_dir", "data")
	v.SetDefault("prices_document", "prices.json")
	v.SetDefault("stations_document", "stations.json")
	v.SetDefault("http_timeout", "10s")
	v.SetDefault("fetch_max_retries", 0)
	v.SetDefault("refresh_interval", "15m")
	v.SetDefault("history_max_age", "336h") // 14 days, as kept by the collection job
	v.SetDefault("history_max_snapshots", 0)
	v.SetDefault("default_fuel", string(fuel.KindDiesel))
	v.SetDefault("timezone", "Europe/Berlin")
	v.SetDefault("price_decimal_separator", ",")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		Port:                v.GetString("port"),
		SourceLayout:        strings.ToLower(strings.TrimSpace(v.GetString("source_layout"))),
		SourceBaseURL:       strings.TrimSpace(v.GetString("source_base_url")),
		SourceDir:           strings.TrimSpace(v.GetString("source_dir")),
		PricesDocument:      v.GetString("prices_document"),
		StationsDocument:    v.GetString("stations_document"),
		FetchMaxRetries:     v.GetInt("fetch_max_retries"),
		HistoryMaxSnapshots: v.GetInt("history_max_snapshots"),
		PriceFormat:         fuel.PriceFormat{DecimalSeparator: v.GetString("price_decimal_separator")},
		LogFormat:           strings.ToLower(v.GetString("log_format")),
	}

	switch cfg.SourceLayout {
	case sources.LayoutCombined, sources.LayoutSplit:
	default:
		return nil, fmt.Errorf("invalid SOURCE_LAYOUT %q (allowed: combined, split)", cfg.SourceLayout)
	}
	if cfg.SourceBaseURL == "" && cfg.SourceDir == "" {
		return nil, errors.New("either SOURCE_BASE_URL or SOURCE_DIR must be set")
	}
	if cfg.FetchMaxRetries < 0 {
		return nil, fmt.Errorf("invalid FETCH_MAX_RETRIES %d", cfg.FetchMaxRetries)
	}

	var err error
	if cfg.HTTPTimeout, err = duration(v, "http_timeout"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = duration(v, "refresh_interval"); err != nil {
		return nil, err
	}
	if cfg.HistoryMaxAge, err = duration(v, "history_max_age"); err != nil {
		return nil, err
	}

	kind, ok := fuel.ParseKind(strings.ToLower(v.GetString("default_fuel")))
	if !ok {
		return nil, fmt.Errorf("invalid DEFAULT_FUEL %q", v.GetString("default_fuel"))
	}
	cfg.DefaultFuel = kind

	if cfg.Location, err = time.LoadLocation(v.GetString("timezone")); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE: %w", err)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(v.GetString("log_level"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q (allowed: text, json)", cfg.LogFormat)
	}

	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", strings.ToUpper(key), err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s: must not be negative", strings.ToUpper(key))
	}
	return d, nil
}
