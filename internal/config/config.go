package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"paystack-bridge/internal/paystack"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	API       APIConfig
	Paystack  PaystackConfig
	Order     OrderConfig
	Telegram  TelegramConfig
	Reconcile ReconcileConfig
}

type ServerConfig struct {
	Port    int
	Env     string // "development", "production"
	BaseURL string
}

type DatabaseConfig struct {
	Driver  string // "mysql", "sqlite"
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
	Path    string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

type APIConfig struct {
	Key string
}

type PaystackConfig struct {
	Mode            paystack.Mode
	TestKey         string
	LiveKey         string
	BaseURL         string
	Timeout         time.Duration
	Retries         int
	RedirectURL     string
	CallbackURL     string
	StrictReconcile bool
}

// Credentials returns the key set for the gateway client.
func (p PaystackConfig) Credentials() paystack.Credentials {
	return paystack.Credentials{Mode: p.Mode, TestKey: p.TestKey, LiveKey: p.LiveKey}
}

type OrderConfig struct {
	VerifiedStatus string
	InvalidStatus  string
}

type TelegramConfig struct {
	Token      string
	ReportChat string
	APIURL     string
}

type ReconcileConfig struct {
	Spec   string
	Grace  time.Duration
	Expiry time.Duration
	Batch  int
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", 8080)
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("APP_BASE_URL", "http://localhost:8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "3306")
	v.SetDefault("DB_CHARSET", "utf8mb4")
	v.SetDefault("DB_PATH", "paystack.db")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("PAYSTACK_MODE", "test")
	v.SetDefault("PAYSTACK_BASE_URL", paystack.DefaultBaseURL)
	v.SetDefault("PAYSTACK_TIMEOUT", "15s")
	v.SetDefault("PAYSTACK_RETRIES", 2)
	v.SetDefault("PAYSTACK_STRICT_RECONCILE", false)
	v.SetDefault("ORDER_VERIFIED_STATUS", "confirmed")
	v.SetDefault("ORDER_INVALID_STATUS", "cancelled")
	v.SetDefault("RECONCILE_SPEC", "0 */10 * * * *")
	v.SetDefault("RECONCILE_GRACE", "15m")
	v.SetDefault("RECONCILE_EXPIRY", "24h")
	v.SetDefault("RECONCILE_BATCH", 100)
}

func fromViper(v *viper.Viper) *Config {
	mode, ok := paystack.ParseMode(v.GetString("PAYSTACK_MODE"))
	if !ok {
		log.Printf("WARNING: unknown PAYSTACK_MODE %q, using test mode", v.GetString("PAYSTACK_MODE"))
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:    v.GetInt("APP_PORT"),
			Env:     v.GetString("APP_ENV"),
			BaseURL: strings.TrimRight(v.GetString("APP_BASE_URL"), "/"),
		},
		Database: DatabaseConfig{
			Driver:  strings.ToLower(v.GetString("DB_DRIVER")),
			Host:    v.GetString("DB_HOST"),
			Port:    v.GetString("DB_PORT"),
			Name:    v.GetString("DB_NAME"),
			User:    v.GetString("DB_USER"),
			Pass:    v.GetString("DB_PASS"),
			Charset: v.GetString("DB_CHARSET"),
			Path:    v.GetString("DB_PATH"),
		},
		Redis: RedisConfig{
			Addr: v.GetString("REDIS_ADDR"),
			Pass: v.GetString("REDIS_PASS"),
			DB:   v.GetInt("REDIS_DB"),
		},
		API: APIConfig{
			Key: v.GetString("API_KEY"),
		},
		Paystack: PaystackConfig{
			Mode:            mode,
			TestKey:         v.GetString("PAYSTACK_TEST_KEY"),
			LiveKey:         v.GetString("PAYSTACK_LIVE_KEY"),
			BaseURL:         v.GetString("PAYSTACK_BASE_URL"),
			Timeout:         duration(v, "PAYSTACK_TIMEOUT", 15*time.Second),
			Retries:         v.GetInt("PAYSTACK_RETRIES"),
			RedirectURL:     v.GetString("PAYSTACK_REDIRECT_URL"),
			CallbackURL:     v.GetString("PAYSTACK_CALLBACK_URL"),
			StrictReconcile: v.GetBool("PAYSTACK_STRICT_RECONCILE"),
		},
		Order: OrderConfig{
			VerifiedStatus: v.GetString("ORDER_VERIFIED_STATUS"),
			InvalidStatus:  v.GetString("ORDER_INVALID_STATUS"),
		},
		Telegram: TelegramConfig{
			Token:      v.GetString("TELEGRAM_BOT_TOKEN"),
			ReportChat: v.GetString("TELEGRAM_REPORT_CHAT"),
			APIURL:     v.GetString("TELEGRAM_API_URL"),
		},
		Reconcile: ReconcileConfig{
			Spec:   v.GetString("RECONCILE_SPEC"),
			Grace:  duration(v, "RECONCILE_GRACE", 15*time.Minute),
			Expiry: duration(v, "RECONCILE_EXPIRY", 24*time.Hour),
			Batch:  v.GetInt("RECONCILE_BATCH"),
		},
	}

	if !cfg.Paystack.Credentials().Complete() {
		log.Printf("WARNING: Paystack %s key is not set", mode)
	}
	if cfg.API.Key == "" {
		log.Println("WARNING: API_KEY is not set, admin API is disabled")
	}

	return cfg
}

// LoadDatabaseOnly reads just the database section, for --bootstrap-db.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	return &cfg.Database, nil
}

func duration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
