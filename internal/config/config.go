package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"farmmarket/internal/domain/model"
)

// 保存先
const (
	StoreMemory   = "memory"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

const devJWTSecret = "dev-secret-change-me"

// Configはアプリ全体の設定
type Config struct {
	Port  string // サーバーポート（8080）
	GoEnv string // dev/prod/test

	JWTSecret  string        // セッショントークンの署名シークレット
	SessionTTL time.Duration // セッションの有効期限（24h）
	BcryptCost int

	StoreDriver string // memory/sqlite/postgres/redis
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	RequeueOnEdit bool             // 承認済み商品を編集したらpendingに戻す
	Categories    []model.Category // 出品できるカテゴリ

	AdminEmail    string // 起動時に作る管理者（任意）
	AdminPassword string
	AdminName     string

	LogLevel string
}

func (c Config) IsProd() bool { return c.GoEnv == "prod" }

// Loadは環境変数
func Load() (Config, error) {
	ttl, err := durationOr("SESSION_TTL", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cost, err := atoiOr("BCRYPT_COST", 0)
	if err != nil {
		return Config{}, err
	}
	redisDB, err := atoiOr("REDIS_DB", 0)
	if err != nil {
		return Config{}, err
	}
	requeue, err := boolOr("PRODUCT_REQUEUE_ON_EDIT", false)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:  getenv("PORT", "8080"),
		GoEnv: getenv("GO_ENV", "dev"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		SessionTTL: ttl,
		BcryptCost: cost,

		StoreDriver: strings.ToLower(getenv("STORE_DRIVER", StoreMemory)),
		SQLitePath:  getenv("SQLITE_PATH", "farmmarket.db"),

		RedisAddr:     getenv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,
		RedisPrefix:   getenv("REDIS_PREFIX", "farmmarket:"),

		RequeueOnEdit: requeue,
		Categories:    parseCategories(os.Getenv("PRODUCT_CATEGORIES")),

		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		AdminName:     getenv("ADMIN_NAME", "Admin"),

		LogLevel: getenv("LOG_LEVEL", "info"),
	}

	//必須チェック
	switch cfg.GoEnv {
	case "dev", "prod", "test":
	default:
		return Config{}, fmt.Errorf("GO_ENV must be dev, prod or test")
	}
	if cfg.JWTSecret == "" {
		if cfg.IsProd() {
			return Config{}, fmt.Errorf("JWT_SECRET is required")
		}
		cfg.JWTSecret = devJWTSecret
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("SESSION_TTL must be positive")
	}
	switch cfg.StoreDriver {
	case StoreMemory, StoreSQLite, StorePostgres, StoreRedis:
	default:
		return Config{}, fmt.Errorf("STORE_DRIVER must be memory, sqlite, postgres or redis")
	}
	if (cfg.AdminEmail == "") != (cfg.AdminPassword == "") {
		return Config{}, fmt.Errorf("ADMIN_EMAIL and ADMIN_PASSWORD must be set together")
	}

	return cfg, nil
}

// カンマ区切り。空ならデフォルト。
func parseCategories(v string) []model.Category {
	var out []model.Category
	seen := map[model.Category]bool{}
	for _, s := range strings.Split(v, ",") {
		c := model.Category(strings.TrimSpace(s))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		return append([]model.Category(nil), model.DefaultCategories...)
	}
	return out
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func atoiOr(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func boolOr(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false: %w", key, err)
	}
	return b, nil
}

func durationOr(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be duration: %w", key, err)
	}
	return d, nil
}
