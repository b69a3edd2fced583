package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 应用配置
type Config struct {
	Port      string
	DBPath    string
	JWTSecret string

	// 高德逆地理编码
	AmapKey         string
	GeocodeTimeout  time.Duration
	GeocodeCacheCap int
	GeocodeCacheTTL time.Duration
	RedisAddr       string

	// 单次上报的端到端超时预算
	IngestTimeout time.Duration

	RateLimit  int
	RateWindow time.Duration
}

// Load 加载配置（优先 .env 文件，其次进程环境变量，最后默认值）
func Load() *Config {
	// .env 不存在时忽略
	_ = godotenv.Load()

	return &Config{
		Port:      envString("PORT", ":8080"),
		DBPath:    envString("DB_PATH", "./data/citylight.db"),
		JWTSecret: envString("JWT_SECRET", "your-secret-key-change-in-production"),

		AmapKey:         os.Getenv("AMAP_KEY"),
		GeocodeTimeout:  time.Duration(envInt("GEOCODE_TIMEOUT_MS", 3000)) * time.Millisecond,
		GeocodeCacheCap: envInt("GEOCODE_CACHE_SIZE", 10000),
		GeocodeCacheTTL: time.Duration(envInt("GEOCODE_CACHE_TTL_SECONDS", 86400)) * time.Second,
		RedisAddr:       os.Getenv("REDIS_ADDR"),

		IngestTimeout: time.Duration(envInt("INGEST_TIMEOUT_MS", 10000)) * time.Millisecond,

		RateLimit:  envInt("RATE_LIMIT", 120),
		RateWindow: time.Duration(envInt("RATE_WINDOW_SECONDS", 60)) * time.Second,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
