package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	LogLevel    string
	HTTPAddr    string
	MetricsAddr string

	// MenuSource is remote, file or mysql.
	MenuSource    string
	MenuDataPath  string
	MenuDataShape string

	MasterDataURL string
	MasterDataKey string
	RemoteRPS     int
	RemoteTimeout time.Duration

	MySQLDSN  string
	RedisAddr string
	RedisDB   int
	RedisPass string
	CacheTTL  time.Duration

	CatalogPath string
	DefaultLang string
	WarmWorkers int
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer; using default")
		}
		return def
	}
	c := Config{
		AppEnv:        env("APP_ENV", "prod"),
		LogLevel:      env("LOG_LEVEL", "info"),
		HTTPAddr:      env("HTTP_ADDR", ":8080"),
		MetricsAddr:   env("METRICS_ADDR", ""),
		MenuDataPath:  env("MENU_DATA_PATH", "data/guest_beer.json"),
		MenuDataShape: env("MENU_DATA_SHAPE", "auto"),
		MasterDataURL: env("MASTER_DATA_URL", ""),
		MasterDataKey: env("MASTER_DATA_KEY", ""),
		RemoteRPS:     atoi("REMOTE_RPS", 5),
		RemoteTimeout: time.Duration(atoi("REMOTE_TIMEOUT_SECONDS", 10)) * time.Second,
		MySQLDSN:      env("MYSQL_DSN", "root:root@tcp(localhost:3306)/guestbeer?parseTime=true&charset=utf8mb4,utf8&loc=UTC"),
		RedisAddr:     env("REDIS_ADDR", ""),
		RedisPass:     env("REDIS_PASSWORD", ""),
		RedisDB:       atoi("REDIS_DB", 0),
		CacheTTL:      time.Duration(atoi("CACHE_TTL_SECONDS", 300)) * time.Second,
		CatalogPath:   env("CATALOG_PATH", ""),
		DefaultLang:   env("DEFAULT_LANG", "ja"),
		WarmWorkers:   atoi("WARM_WORKERS", 2),
	}
	c.MenuSource = env("MENU_SOURCE", defaultSource(c.MasterDataURL))
	if c.MenuSource == "remote" && c.MasterDataURL == "" {
		log.Warn().Msg("MENU_SOURCE=remote but MASTER_DATA_URL is empty")
	}
	return c
}

// defaultSource picks remote when a master data URL is configured.
func defaultSource(url string) string {
	if url != "" {
		return "remote"
	}
	return "file"
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
