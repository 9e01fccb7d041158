package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	GRPCAddr  string
	DBDriver  string
	DBDSN     string
	DBSeed    bool
	LogFile   string
	LogLevel  string
	BodyLimit int
	RateLimit int

	RedisAddr      string
	IdempotencyTTL time.Duration

	RabbitURL  string
	AlertQueue string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getint(key string, def int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

// Load reads an optional .env file and then the process environment.
func Load() Config {
	if err := godotenv.Load(); err == nil {
		log.Printf("[config] loaded .env")
	}

	ttl, err := time.ParseDuration(getenv("IDEMPOTENCY_TTL", "24h"))
	if err != nil || ttl <= 0 {
		ttl = 24 * time.Hour
	}

	cfg := Config{
		Port:      getenv("PORT", "8080"),
		GRPCAddr:  os.Getenv("GRPC_ADDR"),
		DBDriver:  getenv("DB_DRIVER", "sqlite"),
		DBDSN:     getenv("DB_DSN", "stockhub.db"), // sqlite file in project root
		DBSeed:    getenv("DB_SEED", "false") == "true",
		LogFile:   os.Getenv("LOG_FILE"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		BodyLimit: getint("BODY_LIMIT", 1<<20),
		RateLimit: getint("RATE_LIMIT", 120),

		RedisAddr:      os.Getenv("REDIS_ADDR"),
		IdempotencyTTL: ttl,

		RabbitURL:  os.Getenv("RABBITMQ_URL"),
		AlertQueue: getenv("ALERT_QUEUE", "inventory.stock.low"),
	}
	if _, set := os.LookupEnv("GRPC_ADDR"); !set {
		cfg.GRPCAddr = ":9090"
	}
	if _, set := os.LookupEnv("LOG_FILE"); !set {
		cfg.LogFile = "./stockhub.log"
	}

	log.Printf("[config] PORT=%s GRPC_ADDR=%s DB_DRIVER=%s DB_DSN=%s LOG_FILE=%s REDIS_ADDR=%s RABBITMQ=%t",
		cfg.Port, cfg.GRPCAddr, cfg.DBDriver, cfg.SafeDSN(), cfg.LogFile, cfg.RedisAddr, cfg.RabbitURL != "")
	return cfg
}

// SafeDSN is DBDSN with the mysql password masked, for logging.
func (c Config) SafeDSN() string {
	if c.DBDriver != "mysql" {
		return c.DBDSN
	}
	dc, err := mysql.ParseDSN(c.DBDSN)
	if err != nil {
		return "<unparsable>"
	}
	if dc.Passwd != "" {
		dc.Passwd = "xxxxx"
	}
	return dc.FormatDSN()
}
