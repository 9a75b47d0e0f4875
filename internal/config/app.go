package config

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var currencyCodePattern = regexp.MustCompile(`^[A-Z]{3,4}$`)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverSQLite   = "sqlite"
)

type HTTPServer struct {
	Port              string `mapstructure:"port"`
	ReadHeaderTimeout int    `mapstructure:"read_header_timeout_seconds"`
}

type DbServer struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Pass     string `mapstructure:"pass"`
	Name     string `mapstructure:"name"`
	MaxConns int32  `mapstructure:"max_conns"`
	// ConnectTimeout bounds dialing each new connection and the startup ping.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

func (config *DbServer) GetConnectionStr() string {
	return fmt.Sprintf(
		"user=%s password=%s host=%s port=%s dbname=%s sslmode=disable pool_max_conns=10",
		config.User, config.Pass, config.Host, config.Port, config.Name,
	)
}

type HTTPClient struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

type ExchangeRateAPI struct {
	BaseURL string `mapstructure:"base_url"`
}

type Storage struct {
	Driver string `mapstructure:"driver"`
}

type SQLite struct {
	Path string `mapstructure:"path"`
}

type Rates struct {
	CacheTTL            time.Duration `mapstructure:"cache_ttl"`
	FetchTimeout        time.Duration `mapstructure:"fetch_timeout"`
	WarmupInterval      time.Duration `mapstructure:"warmup_interval"`
	SupportedCurrencies []string      `mapstructure:"supported_currencies"`
}

type Quota struct {
	WeekdayLimit int    `mapstructure:"weekday_limit"`
	WeekendLimit int    `mapstructure:"weekend_limit"`
	Location     string `mapstructure:"location"`
}

type Auth struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	CacheMaxItems int64         `mapstructure:"cache_max_items"`
}

type Kafka struct {
	Brokers      []string      `mapstructure:"brokers"`
	Topic        string        `mapstructure:"topic"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

type AppConfig struct {
	HTTPServer      HTTPServer      `mapstructure:"http_server"`
	DbServer        DbServer        `mapstructure:"db_server"`
	HTTPClient      HTTPClient      `mapstructure:"http_client"`
	ExchangeRateAPI ExchangeRateAPI `mapstructure:"exchange_rate_api"`
	Storage         Storage         `mapstructure:"storage"`
	SQLite          SQLite          `mapstructure:"sqlite"`
	Rates           Rates           `mapstructure:"rates"`
	Quota           Quota           `mapstructure:"quota"`
	Auth            Auth            `mapstructure:"auth"`
	Kafka           Kafka           `mapstructure:"kafka"`
	Logging         Logging         `mapstructure:"logging"`
}

// Init reads config.yaml from the working directory.
func Init() (*AppConfig, error) {
	return Load("config.yaml")
}

// Load reads the yaml file at path, then applies .env and environment overrides.
// Both the yaml file and .env are optional.
func Load(path string) (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	bindEnv(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_server.port", "8080")
	v.SetDefault("http_server.read_header_timeout_seconds", 5)
	v.SetDefault("db_server.max_conns", 10)
	v.SetDefault("db_server.connect_timeout", 5*time.Second)
	v.SetDefault("http_client.timeout_seconds", 10)
	v.SetDefault("exchange_rate_api.base_url", "https://api.coinbase.com/v2/exchange-rates")
	v.SetDefault("storage.driver", StorageDriverPostgres)
	v.SetDefault("sqlite.path", "fxconvert.db")
	v.SetDefault("rates.cache_ttl", 5*time.Minute)
	v.SetDefault("rates.fetch_timeout", 10*time.Second)
	v.SetDefault("rates.warmup_interval", 4*time.Minute)
	v.SetDefault("quota.weekday_limit", 100)
	v.SetDefault("quota.weekend_limit", 200)
	v.SetDefault("quota.location", "UTC")
	v.SetDefault("auth.cache_ttl", 5*time.Minute)
	v.SetDefault("auth.cache_max_items", 10000)
	v.SetDefault("kafka.topic", "conversions")
	v.SetDefault("kafka.write_timeout", 5*time.Second)
	v.SetDefault("logging.level", "info")
}

func bindEnv(v *viper.Viper) {
	// http server env vars
	_ = v.BindEnv("http_server.port", "HTTP_PORT")

	// db server env vars
	_ = v.BindEnv("db_server.host", "DB_HOST")
	_ = v.BindEnv("db_server.port", "DB_PORT")
	_ = v.BindEnv("db_server.user", "DB_USER")
	_ = v.BindEnv("db_server.pass", "DB_PASS")
	_ = v.BindEnv("db_server.name", "DB_NAME")
	_ = v.BindEnv("db_server.max_conns", "DB_MAX_CONNS")
	_ = v.BindEnv("db_server.connect_timeout", "DB_CONNECT_TIMEOUT")

	// http client env vars
	_ = v.BindEnv("http_client.timeout_seconds", "HTTP_CLIENT_TIMEOUT_SECONDS")
	_ = v.BindEnv("exchange_rate_api.base_url", "EXCHANGE_RATE_API_BASE_URL")

	_ = v.BindEnv("storage.driver", "STORAGE_DRIVER")
	_ = v.BindEnv("sqlite.path", "SQLITE_PATH")

	_ = v.BindEnv("rates.warmup_interval", "RATES_WARMUP_INTERVAL")
	_ = v.BindEnv("quota.location", "QUOTA_LOCATION")

	_ = v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	_ = v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
}

func (cfg *AppConfig) validate() error {
	switch cfg.Storage.Driver {
	case StorageDriverPostgres, StorageDriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
	if strings.TrimSpace(cfg.Auth.JWTSecret) == "" {
		return errors.New("auth.jwt_secret must be set")
	}
	if cfg.Quota.WeekdayLimit <= 0 || cfg.Quota.WeekendLimit <= 0 {
		return fmt.Errorf("quota limits must be positive, got %d/%d", cfg.Quota.WeekdayLimit, cfg.Quota.WeekendLimit)
	}
	if _, err := time.LoadLocation(cfg.Quota.Location); err != nil {
		return fmt.Errorf("invalid quota.location %q: %w", cfg.Quota.Location, err)
	}
	for _, code := range cfg.Rates.SupportedCurrencies {
		if !currencyCodePattern.MatchString(code) {
			return fmt.Errorf("invalid code %q in rates.supported_currencies: want 3-4 uppercase letters", code)
		}
	}
	return nil
}

// KafkaBrokers splits comma separated broker lists coming from the environment.
func (cfg *AppConfig) KafkaBrokers() []string {
	var brokers []string
	for _, entry := range cfg.Kafka.Brokers {
		for _, b := range strings.Split(entry, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
	}
	return brokers
}
