package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type QuickpayConfig struct {
	BaseURL    string `yaml:"base_url"`
	APIKey     string `yaml:"api_key"`
	PrivateKey string `yaml:"private_key"`
}

type ScanpayConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

type PaymentConfig struct {
	// Gateway selects the processor for card/MobilePay donations.
	// Bank transfers never touch a gateway.
	Gateway  string         `yaml:"gateway"`
	Currency string         `yaml:"currency"`
	Quickpay QuickpayConfig `yaml:"quickpay"`
	Scanpay  ScanpayConfig  `yaml:"scanpay"`
}

type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type Config struct {
	BaseURL  string         `yaml:"base_url"`
	Port     int            `yaml:"port"`
	AppEnv   string         `yaml:"app_env"`
	Database DatabaseConfig `yaml:"database"`
	Payment  PaymentConfig  `yaml:"payment"`
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getStringEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		if value, err := strconv.Atoi(valueStr); err == nil {
			return value
		}
		slog.Warn("Environment variable is not a number, using default", "key", key, "value", valueStr)
	}
	return defaultValue
}

func LoadConfig(filename string) (*Config, error) {
	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load("configs/.env"); err != nil {
			slog.Info("configs/.env not loaded; expected in production or when variables are set system-wide", "error", err)
		}
	}

	file, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", filename)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open config file '%s': %w", filename, err)
	}
	defer file.Close()

	var cfg Config
	if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode YAML from '%s': %w", filename, err)
	}

	cfg.AppEnv = getStringEnvOrDefault("APP_ENV", cfg.AppEnv)
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	isProduction := cfg.AppEnv == "production"

	cfg.BaseURL = strings.TrimSuffix(getStringEnvOrDefault("BASE_URL", cfg.BaseURL), "/")
	cfg.Port = getIntEnvOrDefault("PORT", cfg.Port)
	if cfg.Port == 0 {
		cfg.Port = 8080
	}

	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
		cfg.Database.Host = ""
		cfg.Database.Port = 0
		cfg.Database.User = ""
		cfg.Database.DBName = ""
	} else {
		cfg.Database.Host = getStringEnvOrDefault("DB_HOST", cfg.Database.Host)
		cfg.Database.Port = getIntEnvOrDefault("DB_PORT", cfg.Database.Port)
		cfg.Database.User = getStringEnvOrDefault("DB_USER", cfg.Database.User)
		cfg.Database.Password = getStringEnvOrDefault("DB_PASSWORD", "")
		cfg.Database.DBName = getStringEnvOrDefault("DB_NAME", cfg.Database.DBName)
	}

	cfg.Payment.Gateway = getStringEnvOrDefault("PAYMENT_GATEWAY", cfg.Payment.Gateway)
	cfg.Payment.Quickpay.APIKey = getStringEnvOrDefault("QUICKPAY_API_KEY", cfg.Payment.Quickpay.APIKey)
	cfg.Payment.Quickpay.PrivateKey = getStringEnvOrDefault("QUICKPAY_PRIVATE_KEY", cfg.Payment.Quickpay.PrivateKey)
	cfg.Payment.Scanpay.APIKey = getStringEnvOrDefault("SCANPAY_API_KEY", cfg.Payment.Scanpay.APIKey)

	if cfg.Payment.Currency == "" {
		cfg.Payment.Currency = "DKK"
	}
	if cfg.Payment.Quickpay.BaseURL == "" {
		cfg.Payment.Quickpay.BaseURL = "https://api.quickpay.net"
	}
	if cfg.Payment.Scanpay.BaseURL == "" {
		cfg.Payment.Scanpay.BaseURL = "https://api.scanpay.dk"
	}

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("BASE_URL is not set")
	}
	if isProduction && !strings.HasPrefix(cfg.BaseURL, "https://") {
		return nil, fmt.Errorf("BASE_URL must start with https:// in production")
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database connection parameters (DATABASE_DSN or DB_HOST etc.) are not set")
	}
	if cfg.Database.Host != "" {
		if cfg.Database.User == "" {
			return nil, fmt.Errorf("DB_USER is not set")
		}
		if cfg.Database.DBName == "" {
			return nil, fmt.Errorf("DB_NAME is not set")
		}
	}
	if isProduction {
		switch cfg.Payment.Gateway {
		case "quickpay":
			if cfg.Payment.Quickpay.APIKey == "" {
				return nil, fmt.Errorf("QUICKPAY_API_KEY must be set in production when the quickpay gateway is selected")
			}
			if cfg.Payment.Quickpay.PrivateKey == "" {
				slog.Warn("QUICKPAY_PRIVATE_KEY is not set; webhook checksum verification is disabled")
			}
		case "scanpay":
			if cfg.Payment.Scanpay.APIKey == "" {
				return nil, fmt.Errorf("SCANPAY_API_KEY must be set in production when the scanpay gateway is selected")
			}
		}
	}

	slog.Info("Configuration loaded", "app_env", cfg.AppEnv, "base_url", cfg.BaseURL, "port", cfg.Port, "gateway", cfg.Payment.Gateway)
	return &cfg, nil
}

func InitLogger(appEnv string) {
	var logger *slog.Logger
	logLevel := slog.LevelInfo

	if appEnv == "development" {
		logLevel = slog.LevelDebug
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}))
	} else {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: false,
		}))
	}
	slog.SetDefault(logger)
}
