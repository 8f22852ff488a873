package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"farmmarket/internal/config"
	"farmmarket/internal/handler"
	"farmmarket/internal/infra/db"
	"farmmarket/internal/infra/kv"
	infraRepo "farmmarket/internal/infra/repository"
	"farmmarket/internal/logger"
	"farmmarket/internal/repository"
	"farmmarket/internal/server"
	"farmmarket/internal/usecase"
	auth "farmmarket/internal/usecase/auth_usecase"
	"farmmarket/internal/validator"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	//.envは無くてもよい
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.GoEnv, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//保存先
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()
	log.Info("store opened", zap.String("driver", cfg.StoreDriver))

	txm, err := infraRepo.NewTxManagerKV(ctx, store, log.Named("tx"))
	if err != nil {
		return fmt.Errorf("load registries: %w", err)
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	verifier := auth.NewBcryptPasswordVerifier()
	issuer := auth.NewJWTSessionIssuer(cfg.JWTSecret, clock.Now)

	//Usecase生成
	sessionUC := auth.NewSessionUsecase(txm, validator.NewAuthValidator(), hasher, verifier, issuer, idGen, clock, cfg.SessionTTL, log)
	catalogUC := usecase.NewCatalogUsecase(txm, validator.NewProductValidator(cfg.Categories), idGen, clock, usecase.CatalogPolicy{
		RequeueOnEdit: cfg.RequeueOnEdit,
		Categories:    cfg.Categories,
	}, log)
	cartUC := usecase.NewCartUsecase(txm, clock, log)
	wishlistUC := usecase.NewWishlistUsecase(txm, clock, log)
	orderUC := usecase.NewOrderUsecase(txm, clock, log)
	fulfillmentUC := usecase.NewFulfillmentUsecase(txm, clock, log)
	auditUC := usecase.NewAuditLogUsecase(txm, log)
	statsUC := usecase.NewStatsUsecase(txm, log)

	//管理者の初期作成
	if cfg.AdminEmail != "" {
		if err := sessionUC.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	//Handler生成
	h := server.Handlers{
		Auth:          handler.NewAuthHandler(sessionUC),
		Product:       handler.NewProductHandler(catalogUC),
		FarmerProduct: handler.NewFarmerProductHandler(catalogUC),
		AdminProduct:  handler.NewAdminProductHandler(catalogUC),
		Cart:          handler.NewCartHandler(cartUC),
		Wishlist:      handler.NewWishlistHandler(wishlistUC),
		Order:         handler.NewOrderHandler(orderUC, fulfillmentUC, statsUC),
		FarmerOrder:   handler.NewFarmerOrderHandler(fulfillmentUC, statsUC),
		AdminOrder:    handler.NewAdminOrderHandler(fulfillmentUC, auditUC),
		AdminUser:     handler.NewAdminUserHandler(statsUC),
	}
	e := server.New(log, h, server.NewGuards(sessionUC))

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}
	return server.Start(ctx, e, addr, log)
}

// STORE_DRIVERに応じたKVを開く
func openStore(ctx context.Context, cfg config.Config) (repository.KVStore, func(), error) {
	noop := func() {}

	switch cfg.StoreDriver {
	case config.StoreSQLite:
		gormDB, err := db.ConnectSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, noop, fmt.Errorf("open sqlite: %w", err)
		}
		s, err := kv.NewGormStore(gormDB)
		return s, closeGorm(gormDB), err

	case config.StorePostgres:
		gormDB, err := db.Connect()
		if err != nil {
			return nil, noop, fmt.Errorf("connect postgres: %w", err)
		}
		s, err := kv.NewGormStore(gormDB)
		return s, closeGorm(gormDB), err

	case config.StoreRedis:
		s, err := kv.NewRedisStore(ctx, kv.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, noop, err
		}
		return s, func() { _ = s.Close() }, nil

	default:
		return kv.NewMemoryStore(), noop, nil
	}
}

func closeGorm(gormDB *gorm.DB) func() {
	return func() {
		if sqlDB, err := gormDB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}
