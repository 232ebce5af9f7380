// Точка входа DMS Admin Gateway — веб-шлюз к внешнему API документов.
// Загружает конфигурацию, создаёт клиенты API, хранилище сессий и
// сервисный слой, запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/bigkaa/goartstore/dms-admin/internal/api/handlers"
	"github.com/bigkaa/goartstore/dms-admin/internal/api/middleware"
	"github.com/bigkaa/goartstore/dms-admin/internal/config"
	"github.com/bigkaa/goartstore/dms-admin/internal/directclient"
	"github.com/bigkaa/goartstore/dms-admin/internal/dmsapi"
	"github.com/bigkaa/goartstore/dms-admin/internal/export"
	"github.com/bigkaa/goartstore/dms-admin/internal/server"
	"github.com/bigkaa/goartstore/dms-admin/internal/service"
	"github.com/bigkaa/goartstore/dms-admin/internal/session"
)

const previewBaseURL = "/dashboard/previews/"

//nolint:funlen // последовательная сборка зависимостей
func main() {
	// 0. .env для локального запуска (отсутствие файла не ошибка)
	_ = godotenv.Load()

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("DMS Admin Gateway запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	ctx := context.Background()

	// 3. Клиенты API документов и прямого скачивания
	api, err := dmsapi.New(cfg.APIBaseURL, cfg.APICACertPath, cfg.APITimeout, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента API", slog.String("error", err.Error()))
		os.Exit(1)
	}
	direct, err := directclient.New(cfg.APICACertPath, cfg.DirectTimeout, logger)
	if err != nil {
		logger.Error("Ошибка создания клиента прямого скачивания", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Сессии: cookie с шифрованием, credential в cookie или в Redis
	if cfg.SessionKey == "" {
		logger.Warn("DMS_SESSION_KEY не задан, сессии не сохраняются между рестартами")
	}
	codec, err := session.NewCodec(cfg.SessionKey)
	if err != nil {
		logger.Error("Ошибка создания ключа сессий", slog.String("error", err.Error()))
		os.Exit(1)
	}

	checkers := map[string]handlers.ReadinessChecker{}

	var store session.Store
	if cfg.SessionBackend == config.SessionBackendRedis {
		redisStore, redisErr := session.NewRedisStore(ctx, session.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if redisErr != nil {
			logger.Error("Ошибка подключения к Redis", slog.String("error", redisErr.Error()))
			os.Exit(1)
		}
		defer func() { _ = redisStore.Close() }()
		store = redisStore
		checkers["redis"] = handlers.NewPingChecker(redisStore)
		logger.Info("Credential хранятся в Redis", slog.String("addr", cfg.RedisAddr))
	}
	sessions := session.NewManager(codec, store, cfg.SessionSecure, cfg.SessionTTL, logger)

	// 5. Services
	search := service.NewSearchService(api, service.NewStateStore(cfg.StateCacheSize, cfg.StateTTL), logger)
	proxy := service.NewProxyStrategy(api)
	previews := service.NewPreviewRegistry(cfg.PreviewCacheSize, cfg.PreviewTTL, previewBaseURL)
	// bulk-режим: сначала pre-signed URL, затем proxy
	chain := service.NewChain(logger, service.NewDirectStrategy(direct), proxy)

	svc := handlers.Services{
		Auth:      service.NewAuthService(api, logger),
		Users:     service.NewUserService(api, logger),
		Search:    search,
		Downloads: service.NewDownloadService(search, proxy, previews, logger),
		Archives:  service.NewArchiveService(search, chain, logger),
		Tags:      service.NewTagService(api, service.NewTagCache(cfg.TagCacheSize, cfg.TagCacheTTL), logger),
		Uploads:   service.NewUploadService(api, cfg.UploadMaxBytes, logger),
	}

	// 6. Экспорт архивов в S3 (опционально)
	var exporter handlers.ArchiveExporter
	if cfg.ArchiveExportEnabled() {
		s3Exporter, exportErr := export.New(ctx, export.Config{
			Bucket:    cfg.ArchiveS3Bucket,
			Prefix:    cfg.ArchiveS3Prefix,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			URLTTL:    cfg.ArchiveURLTTL,
		}, logger)
		if exportErr != nil {
			logger.Error("Ошибка создания S3-экспорта", slog.String("error", exportErr.Error()))
			os.Exit(1)
		}
		exporter = s3Exporter
		logger.Info("Экспорт архивов в S3 включён", slog.String("bucket", cfg.ArchiveS3Bucket))
	}

	// 7. topologymetrics — мониторинг API документов
	var dephealthSvc *service.DephealthService
	if cfg.DephealthEnabled {
		var dephealthErr error
		dephealthSvc, dephealthErr = service.NewDephealthService(service.DephealthConfig{
			ServiceID:     "dms-admin",
			Group:         cfg.DephealthGroup,
			APIBaseURL:    cfg.APIBaseURL,
			HealthPath:    cfg.DephealthHealthPath,
			CheckInterval: cfg.DephealthCheckInterval,
		}, logger)
		if dephealthErr != nil {
			logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
				slog.String("error", dephealthErr.Error()),
			)
			dephealthSvc = nil
		} else if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics", slog.String("error", startErr.Error()))
			dephealthSvc = nil
		} else {
			checkers["document_api"] = handlers.NewDephealthChecker(dephealthSvc, service.DocumentAPIDependency)
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 8. HTTP-слой
	healthHandler := handlers.NewHealthHandler(checkers)
	apiHandler := handlers.NewAPIHandler(svc, sessions, exporter, cfg.UploadMaxBytes, healthHandler, logger)
	sessionAuth := middleware.NewSessionAuth(sessions, logger)

	srv := server.New(cfg, logger, apiHandler, sessionAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 9. Остановка фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}
	logger.Info("DMS Admin Gateway остановлен")
}
