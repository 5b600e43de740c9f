package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"http_server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Security    SecurityConfig `mapstructure:"security"`
	Payment     PaymentConfig  `mapstructure:"payment"`
	Mailer      MailerConfig   `mapstructure:"mailer"`
	Campaign    CampaignConfig `mapstructure:"campaign"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

// SecurityConfig covers verification of access tokens issued by the
// external auth provider. This service never mints tokens itself.
type SecurityConfig struct {
	JWTSigningSecret string `mapstructure:"jwt_signing_secret"`
	AdminRole        string `mapstructure:"admin_role"`
}

type PaymentConfig struct {
	GatewayBaseURL string        `mapstructure:"gateway_base_url"`
	SecretKey      string        `mapstructure:"secret_key"`
	CallbackURL    string        `mapstructure:"callback_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type MailerConfig struct {
	APIKey      string `mapstructure:"api_key"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

type CampaignConfig struct {
	BatchSize       int           `mapstructure:"batch_size"`
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	InterBatchDelay time.Duration `mapstructure:"inter_batch_delay"`
}

// ----------------- ENV LOADING -----------------

// LoadConfigFromEnv builds the config from environment variables for
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Environment: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("SERVER_PORT", 8080),
			BaseURL:           getEnv("SERVER_BASE_URL", ""),
			AllowedOrigins:    getEnv("SERVER_ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: getEnvAsDuration("SERVER_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DB_SOURCE", ""),
		},
		Security: SecurityConfig{
			JWTSigningSecret: getEnv("JWT_SIGNING_SECRET", ""),
			AdminRole:        getEnv("ADMIN_ROLE", "admin"),
		},
		Payment: PaymentConfig{
			GatewayBaseURL: getEnv("PAYMENT_GATEWAY_BASE_URL", ""),
			SecretKey:      getEnv("PAYMENT_SECRET_KEY", ""),
			CallbackURL:    getEnv("PAYMENT_CALLBACK_URL", ""),
			RequestTimeout: getEnvAsDuration("PAYMENT_REQUEST_TIMEOUT", 30*time.Second),
		},
		Mailer: MailerConfig{
			APIKey:      getEnv("MAILER_API_KEY", ""),
			FromAddress: getEnv("MAILER_FROM_ADDRESS", ""),
			FromName:    getEnv("MAILER_FROM_NAME", "HopeBridge Foundation"),
		},
		Campaign: CampaignConfig{
			BatchSize:       getEnvAsInt("CAMPAIGN_BATCH_SIZE", 50),
			MaxConcurrency:  getEnvAsInt("CAMPAIGN_MAX_CONCURRENCY", 10),
			InterBatchDelay: getEnvAsDuration("CAMPAIGN_INTER_BATCH_DELAY", time.Second),
		},
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Payment.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payment config: %v", err))
	}

	if err := c.Mailer.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("mailer config: %v", err))
	}

	if err := c.Campaign.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("campaign config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *PaymentConfig) Validate() error {
	if c.GatewayBaseURL == "" {
		return errors.New("gateway_base_url is required")
	}
	if c.SecretKey == "" {
		return errors.New("secret_key is required")
	}
	return nil
}

func (c *MailerConfig) Validate() error {
	if c.FromAddress == "" {
		return errors.New("from_address is required")
	}
	return nil
}

func (c *CampaignConfig) Validate() error {
	if c.BatchSize < 0 || c.MaxConcurrency < 0 {
		return errors.New("batch_size and max_concurrency must not be negative")
	}
	return nil
}
