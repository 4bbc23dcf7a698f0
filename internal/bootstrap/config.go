package bootstrap

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// 白板记录的存储后端
const (
	StoreBackendRedis  = "redis"
	StoreBackendMySQL  = "mysql"
	StoreBackendMemory = "memory"
)

// Config 结构体用于存储从环境变量或 .env 文件加载的配置
type Config struct {
	ServerPort   string `env:"SERVER_PORT" envDefault:"8080"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv       string `env:"APP_ENV" envDefault:"development"` // development/production
	StoreBackend string `env:"STORE_BACKEND" envDefault:"redis"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	KeyPrefix     string `env:"REDIS_KEY_PREFIX" envDefault:"db:"` // Redis Key 前缀

	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBHost     string `env:"DB_HOST" envDefault:"127.0.0.1"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`
	DBName     string `env:"DB_NAME"`

	JWTSecret      string `env:"JWT_SECRET,required,notEmpty"`
	JWTExpiryHours int    `env:"JWT_EXPIRY_HOURS" envDefault:"24"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1s"`

	CORSAllowedOrigin string  `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
	ExportPageWidthMM float64 `env:"EXPORT_PAGE_WIDTH_MM" envDefault:"210"`
	WorkerConcurrency int     `env:"WORKER_CONCURRENCY" envDefault:"5"`
}

// LoadConfig 先加载 .env (文件不存在时忽略)，再从环境变量解析配置
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return ParseConfig()
}

// ParseConfig 只从当前环境变量解析并校验配置
func ParseConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	switch cfg.StoreBackend {
	case StoreBackendRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("environment variable REDIS_ADDR must be set when STORE_BACKEND=redis")
		}
	case StoreBackendMySQL, StoreBackendMemory:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q (want redis, mysql or memory)", cfg.StoreBackend)
	}
	if cfg.RateLimitMax <= 0 || cfg.RateLimitWindow <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_MAX and RATE_LIMIT_WINDOW must be positive")
	}

	// 验证日志级别
	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

// UseRedis 报告是否配置了 Redis (限流、任务队列以及 redis 存储后端都依赖它)
func (c *Config) UseRedis() bool {
	return c.RedisAddr != ""
}
