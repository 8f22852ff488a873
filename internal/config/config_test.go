package config

import (
	"testing"
	"time"

	"farmmarket/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 他のテストの環境変数を引きずらないように全部空にする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"PORT", "GO_ENV", "JWT_SECRET", "SESSION_TTL", "BCRYPT_COST",
		"STORE_DRIVER", "SQLITE_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX",
		"PRODUCT_REQUEUE_ON_EDIT", "PRODUCT_CATEGORIES",
		"ADMIN_EMAIL", "ADMIN_PASSWORD", "ADMIN_NAME", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.GoEnv)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "farmmarket.db", cfg.SQLitePath)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "farmmarket:", cfg.RedisPrefix)
	assert.False(t, cfg.RequeueOnEdit)
	assert.Equal(t, model.DefaultCategories, cfg.Categories)
	assert.Equal(t, "Admin", cfg.AdminName)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.IsProd())
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("GO_ENV", "prod")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("STORE_DRIVER", "Redis")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("PRODUCT_REQUEUE_ON_EDIT", "true")
	t.Setenv("PRODUCT_CATEGORIES", " Seeds , Organic Goods,Seeds,")
	t.Setenv("ADMIN_EMAIL", "root@example.com")
	t.Setenv("ADMIN_PASSWORD", "password123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProd())
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, StoreRedis, cfg.StoreDriver)
	assert.Equal(t, 2, cfg.RedisDB)
	assert.True(t, cfg.RequeueOnEdit)
	assert.Equal(t, []model.Category{"Seeds", model.CategoryOrganicGoods}, cfg.Categories)
	assert.Equal(t, "root@example.com", cfg.AdminEmail)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"prod without secret": {"GO_ENV": "prod"},
		"unknown env":         {"GO_ENV": "staging"},
		"bad ttl":             {"SESSION_TTL": "soon"},
		"negative ttl":        {"SESSION_TTL": "-1h"},
		"bad bcrypt cost":     {"BCRYPT_COST": "high"},
		"bad redis db":        {"REDIS_DB": "x"},
		"bad requeue flag":    {"PRODUCT_REQUEUE_ON_EDIT": "maybe"},
		"unknown store":       {"STORE_DRIVER": "mongo"},
		"admin without pass":  {"ADMIN_EMAIL": "root@example.com"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
