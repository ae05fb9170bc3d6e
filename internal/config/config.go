package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"dutchie-backend/internal/application/deals"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                 string
	Port                string
	SessionSecret       string
	DatabaseURL         string
	RedisURL            string
	FrontendURLEndsWith string
	DevPassword         string
	AllowCrossSiteDev   bool
	CookieDomain        string
	HealthAdminKey      string

	Deals DealsConfig
}

// DealsConfig tunes the deal listing engine.
type DealsConfig struct {
	Location     *time.Location
	DefaultLimit int
	MaxLimit     int
	FetchTimeout time.Duration
	BrowsePolicy deals.OpenPolicy
	SearchPolicy deals.OpenPolicy
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEALS_TIMEZONE", "Asia/Seoul")
	viper.SetDefault("DEALS_DEFAULT_LIMIT", 16)
	viper.SetDefault("DEALS_MAX_LIMIT", 100)
	viper.SetDefault("DEALS_FETCH_TIMEOUT", "5s")

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL_DEV")
	}

	dc, err := loadDeals()
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:                 env,
		Port:                viper.GetString("PORT"),
		SessionSecret:       viper.GetString("SESSION_SECRET"),
		DatabaseURL:         dbURL,
		RedisURL:            viper.GetString("REDIS_URL"),
		FrontendURLEndsWith: viper.GetString("FRONTEND_URL_ENDS_WITH"),
		DevPassword:         viper.GetString("DEV_PASSWORD"),
		AllowCrossSiteDev:   strings.EqualFold(viper.GetString("ALLOW_CROSS_SITE_DEV"), "true"),
		CookieDomain:        viper.GetString("SESSION_COOKIE_DOMAIN"),
		HealthAdminKey:      viper.GetString("HEALTH_ADMIN_KEY"),
		Deals:               dc,
	}, nil
}

func loadDeals() (DealsConfig, error) {
	loc, err := time.LoadLocation(viper.GetString("DEALS_TIMEZONE"))
	if err != nil {
		return DealsConfig{}, fmt.Errorf("DEALS_TIMEZONE: %w", err)
	}
	timeout, err := time.ParseDuration(viper.GetString("DEALS_FETCH_TIMEOUT"))
	if err != nil {
		return DealsConfig{}, fmt.Errorf("DEALS_FETCH_TIMEOUT: %w", err)
	}
	browse, err := deals.ParseOpenPolicy(viper.GetString("DEALS_BROWSE_OPEN_POLICY"))
	if err != nil {
		return DealsConfig{}, fmt.Errorf("DEALS_BROWSE_OPEN_POLICY: %w", err)
	}
	search, err := deals.ParseOpenPolicy(viper.GetString("DEALS_SEARCH_OPEN_POLICY"))
	if err != nil {
		return DealsConfig{}, fmt.Errorf("DEALS_SEARCH_OPEN_POLICY: %w", err)
	}

	def := viper.GetInt("DEALS_DEFAULT_LIMIT")
	max := viper.GetInt("DEALS_MAX_LIMIT")
	if def < 1 || max < 1 {
		return DealsConfig{}, fmt.Errorf("DEALS_DEFAULT_LIMIT and DEALS_MAX_LIMIT must be positive")
	}
	if def > max {
		def = max
	}
	return DealsConfig{
		Location:     loc,
		DefaultLimit: def,
		MaxLimit:     max,
		FetchTimeout: timeout,
		BrowsePolicy: browse,
		SearchPolicy: search,
	}, nil
}
