package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AppEnv string
	Port   string

	DB DBConfig

	RedisAddr   string
	KafkaBroker string

	JWTSecret      string
	RBACModelPath  string
	RBACPolicyPath string

	OutboxPollInterval time.Duration
	LeaveTypeCacheTTL  time.Duration

	RateLimitRPS   float64
	RateLimitBurst int
}

type DBConfig struct {
	Host       string
	User       string
	Password   string
	Name       string
	Port       string
	SSLMode    string
	MaxRetries int
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

// fileConfig mirrors configs/default.yaml.
type fileConfig struct {
	App struct {
		Env  string `yaml:"env"`
		Port string `yaml:"port"`
	} `yaml:"app"`
	Database struct {
		Host    string `yaml:"host"`
		User    string `yaml:"user"`
		Name    string `yaml:"name"`
		Port    string `yaml:"port"`
		SSLMode string `yaml:"sslmode"`
	} `yaml:"database"`
	Redis struct {
		Addr string `yaml:"addr"`
	} `yaml:"redis"`
	Kafka struct {
		Broker string `yaml:"broker"`
	} `yaml:"kafka"`
	RBAC struct {
		ModelPath  string `yaml:"model_path"`
		PolicyPath string `yaml:"policy_path"`
	} `yaml:"rbac"`
	Outbox struct {
		PollInterval string `yaml:"poll_interval"`
	} `yaml:"outbox"`
	LeaveTypes struct {
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"leave_types"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

func defaults() Config {
	return Config{
		AppEnv: "development",
		Port:   "3000",
		DB: DBConfig{
			Host:       "localhost",
			User:       "postgres",
			Name:       "go_hrms",
			Port:       "5432",
			SSLMode:    "disable",
			MaxRetries: 5,
		},
		RedisAddr:          "localhost:6379",
		RBACModelPath:      "configs/rbac/model.conf",
		RBACPolicyPath:     "configs/rbac/policy.csv",
		OutboxPollInterval: 3 * time.Second,
		LeaveTypeCacheTTL:  10 * time.Minute,
		RateLimitRPS:       10,
		RateLimitBurst:     20,
	}
}

// Load resolves configuration as defaults, then the YAML file named by
// CONFIG_FILE, then the environment (including a local .env).
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.AppEnv, f.App.Env)
	setString(&cfg.Port, f.App.Port)
	setString(&cfg.DB.Host, f.Database.Host)
	setString(&cfg.DB.User, f.Database.User)
	setString(&cfg.DB.Name, f.Database.Name)
	setString(&cfg.DB.Port, f.Database.Port)
	setString(&cfg.DB.SSLMode, f.Database.SSLMode)
	setString(&cfg.RedisAddr, f.Redis.Addr)
	setString(&cfg.KafkaBroker, f.Kafka.Broker)
	setString(&cfg.RBACModelPath, f.RBAC.ModelPath)
	setString(&cfg.RBACPolicyPath, f.RBAC.PolicyPath)

	if d, err := time.ParseDuration(f.Outbox.PollInterval); err == nil && d > 0 {
		cfg.OutboxPollInterval = d
	}
	if d, err := time.ParseDuration(f.LeaveTypes.CacheTTL); err == nil && d > 0 {
		cfg.LeaveTypeCacheTTL = d
	}
	if f.RateLimit.RPS > 0 {
		cfg.RateLimitRPS = f.RateLimit.RPS
	}
	if f.RateLimit.Burst > 0 {
		cfg.RateLimitBurst = f.RateLimit.Burst
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.AppEnv = envOrDefault("APP_ENV", cfg.AppEnv)
	cfg.Port = envOrDefault("PORT", cfg.Port)

	cfg.DB.Host = envOrDefault("DB_HOST", cfg.DB.Host)
	cfg.DB.User = envOrDefault("DB_USER", cfg.DB.User)
	cfg.DB.Password = envOrDefault("DB_PASSWORD", cfg.DB.Password)
	cfg.DB.Name = envOrDefault("DB_NAME", cfg.DB.Name)
	cfg.DB.Port = envOrDefault("DB_PORT", cfg.DB.Port)
	cfg.DB.SSLMode = envOrDefault("DB_SSLMODE", cfg.DB.SSLMode)

	cfg.RedisAddr = envOrDefault("REDIS_ADDR", cfg.RedisAddr)
	cfg.KafkaBroker = envOrDefault("KAFKA_BROKER", cfg.KafkaBroker)

	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.RBACModelPath = envOrDefault("RBAC_MODEL_PATH", cfg.RBACModelPath)
	cfg.RBACPolicyPath = envOrDefault("RBAC_POLICY_PATH", cfg.RBACPolicyPath)

	cfg.OutboxPollInterval = envDuration("OUTBOX_POLL_INTERVAL", cfg.OutboxPollInterval)
	cfg.LeaveTypeCacheTTL = envDuration("LEAVE_TYPE_CACHE_TTL", cfg.LeaveTypeCacheTTL)
	cfg.RateLimitRPS = envFloat("RATE_LIMIT_RPS", cfg.RateLimitRPS)
	cfg.RateLimitBurst = envInt("RATE_LIMIT_BURST", cfg.RateLimitBurst)
}

func (c Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func envOrDefault(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

// envDuration accepts Go durations ("5s") or a bare number of seconds.
func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return fallback
}
