package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"banmaytinh/common/database"
	"banmaytinh/common/logger"
	commonredis "banmaytinh/common/redis"
	"banmaytinh/internal/config"
	httpapi "banmaytinh/internal/http"
	"banmaytinh/internal/metrics"
	"banmaytinh/internal/repository"
	"banmaytinh/internal/service"
	"banmaytinh/internal/store"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "banmaytinh")
	if err != nil {
		log, _ = zap.NewProduction()
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis 不可用时会话/缓存退回内存（仅单实例有效）
	var kv store.KV = store.NewMemoryKV()
	var redisClient *redis.Client
	if cfg.RedisEnabled {
		if c, err := commonredis.Connect(ctx, &cfg.Redis); err == nil {
			redisClient = c
			kv = store.NewRedisKV(c)
			log.Info("Redis enabled", zap.String("addr", cfg.Redis.Addr))
		} else {
			log.Warn("Redis connection failed, falling back to in-memory KV", zap.Error(err))
		}
	}

	// DB 未就绪：使用内存 repo 支持联调
	var db *sql.DB
	var repos *repository.Repositories
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			repos = repository.NewPostgresRepositories(db)
			log.Info("DB enabled", zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repositories", zap.Error(err))
		}
	}
	if repos == nil {
		repos = repository.NewMemoryRepositories(repository.NewMemoryStore())
	}

	var notifier service.OrderNotifier = service.NopNotifier{}
	if cfg.Order.WebhookURL != "" {
		notifier = service.NewWebhookNotifier(cfg.Order.WebhookURL, log)
	}

	tagService := service.NewTagService(repos.Tags, repos.Products, kv, cfg.Advisor.TopicCacheTTL, log)
	advisorService := service.NewAdvisorService(repos.Products, repos.Tags, log)
	buildService := service.NewBuildPCService(repos.OptionGroups, repos.Products, repos.Tags, log)
	cartService := service.NewCartService(repos.Carts, repos.Products, buildService, log)
	orderService := service.NewOrderService(repos.Orders, notifier, log)
	authService := service.NewAuthService(repos.Users, kv, cfg.Session.TTL, log)
	catalogService := service.NewCatalogService(repos.Products, log)
	accountService := service.NewAccountService(repos.Users, repos.Orders, log)

	switch {
	case cfg.Seed.Usable():
		if err := authService.EnsureAdmin(ctx, cfg.Seed.AdminName, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			log.Warn("Failed to seed admin user", zap.Error(err))
		}
	case cfg.Seed.Enabled:
		log.Warn("SEED_ADMIN is set but ADMIN_PASSWORD is empty, skipping admin seed")
	}

	guard := httpapi.NewGuard(authService, log)
	catalog := httpapi.NewCatalogHandler(catalogService, log)
	build := httpapi.NewBuildPCHandler(buildService, log)
	orders := httpapi.NewOrderHandler(orderService, authService, log)

	router := httpapi.NewRouter(log)
	router.RegisterPublicRoutes(
		catalog,
		build,
		httpapi.NewAdvisorHandler(advisorService, tagService, log),
		httpapi.NewAuthHandler(authService, log),
		httpapi.NewRateLimiter(cfg.Session.LoginRatePerSecond, cfg.Session.LoginRateBurst, log),
	)
	router.RegisterUserRoutes(guard, httpapi.NewCartHandler(cartService, log), orders)
	router.RegisterAdminRoutes(guard, httpapi.NewTagsHandler(tagService, log), build, catalog, orders, httpapi.NewAccountsHandler(accountService, log))
	router.HandleHandler("/metrics", metrics.Handler())
	router.Handle("/healthz", httpapi.HealthHandler(db))

	handler := httpapi.RequestLogger(log, metrics.InstrumentHandler(router))
	srv := service.NewServer(cfg.HTTP.Addr, handler, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case err := <-errCh:
		log.Error("HTTP server stopped", zap.Error(err))
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	if redisClient != nil {
		_ = commonredis.Close(redisClient)
	}
	if db != nil {
		_ = database.Close(db)
	}
}
