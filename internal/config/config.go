package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DateLayout is the calendar-day layout used for the cutoff and for date query parameters.
const DateLayout = "2006-01-02"

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Sources     SourcesConfig   `mapstructure:"sources"`
	Dashboard   DashboardConfig `mapstructure:"dashboard"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`
	Security    SecurityConfig  `mapstructure:"security"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	DatabaseURL string `mapstructure:"database_url"`
	MaxConns    int    `mapstructure:"max_conns"`
}

// RedisConfig configures the optional shared snapshot cache.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	KeyName  string `mapstructure:"key_name"`
}

// SourcesConfig names the four data sources the loader reads.
type SourcesConfig struct {
	NewsTable    string `mapstructure:"news_table"`
	StockTable   string `mapstructure:"stock_table"`
	TweetsCSV    string `mapstructure:"tweets_csv"`
	SentimentCSV string `mapstructure:"sentiment_csv"`
}

type DashboardConfig struct {
	CutoffDate string `mapstructure:"cutoff_date"`
	TopN       int    `mapstructure:"top_n"`
	SMAPeriod  int    `mapstructure:"sma_period"`
}

type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Exporter       string `mapstructure:"exporter"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
	ExportLogs     bool   `mapstructure:"export_logs"`
}

type SecurityConfig struct {
	AdminAPIKey string `mapstructure:"admin_api_key" json:"-" yaml:"-"`
}

// Cutoff returns the parsed earliest date below which all data is excluded.
func (d DashboardConfig) Cutoff() (time.Time, error) {
	return time.Parse(DateLayout, d.CutoffDate)
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("security.admin_api_key", "ADMIN_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind ADMIN_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("database.database_url", "DATABASE_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind DATABASE_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks the settings the dashboard cannot run without.
func (c *Config) Validate() error {
	if _, err := c.Dashboard.Cutoff(); err != nil {
		return fmt.Errorf("invalid dashboard cutoff date %q: %w", c.Dashboard.CutoffDate, err)
	}
	if c.Dashboard.TopN <= 0 {
		return fmt.Errorf("dashboard top_n must be positive, got %d", c.Dashboard.TopN)
	}
	if c.Dashboard.SMAPeriod < 0 {
		return fmt.Errorf("dashboard sma_period must not be negative, got %d", c.Dashboard.SMAPeriod)
	}
	if c.Sources.NewsTable == "" || c.Sources.StockTable == "" {
		return errors.New("sources.news_table and sources.stock_table are required")
	}
	if c.Sources.TweetsCSV == "" || c.Sources.SentimentCSV == "" {
		return errors.New("sources.tweets_csv and sources.sentiment_csv are required")
	}
	if c.Environment != "development" && c.Security.AdminAPIKey == "" {
		return errors.New("ADMIN_API_KEY environment variable is required in non-development environments")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "ManagingDataProject")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.database_url", "")
	v.SetDefault("database.max_conns", 4)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_name", "dashboard:snapshot")

	v.SetDefault("sources.news_table", "classified_news")
	v.SetDefault("sources.stock_table", "stock_data")
	v.SetDefault("sources.tweets_csv", "tweets_with_sentiment.csv")
	v.SetDefault("sources.sentiment_csv", "streamlit_df.csv")

	v.SetDefault("dashboard.cutoff_date", "2020-01-01")
	v.SetDefault("dashboard.top_n", 10)
	v.SetDefault("dashboard.sma_period", 20)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.exporter", "otlp")
	v.SetDefault("telemetry.otlp_endpoint", "http://localhost:4318")
	v.SetDefault("telemetry.service_name", "mag7-sentiment-dashboard")
	v.SetDefault("telemetry.service_version", "1.0.0")
	v.SetDefault("telemetry.export_logs", false)

	v.SetDefault("security.admin_api_key", "")
}
