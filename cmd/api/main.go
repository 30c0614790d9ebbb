package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/realhub/condo-api/internal/config"
	"github.com/realhub/condo-api/internal/handlers"
	"github.com/realhub/condo-api/internal/queue"
	"github.com/realhub/condo-api/internal/repository"
	"github.com/realhub/condo-api/internal/services"
	xhttp "github.com/realhub/condo-api/pkg/http"
	"github.com/realhub/condo-api/pkg/logger"
	"github.com/realhub/condo-api/pkg/pg"
	"github.com/realhub/condo-api/pkg/prom"
	"github.com/realhub/condo-api/pkg/redis"
)

func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

	s := xhttp.NewServer(xhttp.DefaultServerOption)
	s.Use(xhttp.CompressMiddleware(6))
	s.Use(xhttp.TimeoutMiddleware(time.Second * 5))
	s.Use(xhttp.CORSMiddleware(config.Get().CorsAllowOrigin))
	s.Use(xhttp.RequestLoggerMiddleware)
	s.Use(xhttp.RecoverMiddleware)
	s.Router = xhttp.CreateDefaultRouter()

	readConf := pg.Config{
		User:     config.Get().PostgresReadUser,
		Host:     config.Get().PostgresReadHost,
		Port:     config.Get().PostgresReadPort,
		Password: config.Get().PostgresReadPassword,
		Database: config.Get().PostgresReadDatabase,
	}
	writeConf := pg.Config{
		User:     config.Get().PostgresWriteUser,
		Host:     config.Get().PostgresWriteHost,
		Port:     config.Get().PostgresWritePort,
		Password: config.Get().PostgresWritePassword,
		Database: config.Get().PostgresWriteDatabase,
	}

	pgDebug := config.Get().AppEnv == "dev"
	db, err := pg.CreateReadWrite(readConf, writeConf, pgDebug)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("default", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "default",
		DB:         config.Get().RedisDatabase,
		Username:   config.Get().RedisUsername,
		Password:   config.Get().RedisPassword,
	})
	if err != nil {
		logger.Error("failed connecting to redis", "error", err)
		return
	}

	notificationQueue, err := queue.New(redisAdap, queue.Config{
		Name:              config.Get().QueueName,
		Group:             config.Get().QueueConsumerGroup,
		Consumer:          config.Get().QueueConsumerName,
		MaxRetries:        config.Get().QueueMaxRetries,
		VisibilityTimeout: config.Get().QueueVisibilityTimeout,
		PollInterval:      config.Get().QueuePollInterval,
		BatchSize:         config.Get().QueueBatchSize,
		MaxLen:            config.Get().QueueMaxLen,
		EnableDLQ:         config.Get().QueueEnableDLQ,
	})
	if err != nil {
		logger.Error("failed creating notification queue", "error", err)
		return
	}

	if config.Get().MetricsAddr != "" {
		if err := prom.Create("", config.Get().AppEnv, config.Get().PromNamespace); err != nil {
			logger.Error("failed registering metrics", "error", err)
		} else {
			prom.ListenAndServe(config.Get().MetricsAddr, config.Get().MetricsURI)
		}
	}

	paymentRepo := repository.NewPaymentRepository(db)
	costCenterRepo := repository.NewCostCenterRepository(db)
	unitRepo := repository.NewUnitRepository(db)
	userRepo := repository.NewUserRepository(db)
	activityLogRepo := repository.NewActivityLogRepository(db)
	subscriptionRepo := repository.NewPushSubscriptionRepository(db)

	auditService := services.NewAuditService(activityLogRepo)
	notificationService := services.NewNotificationService(notificationQueue, subscriptionRepo)
	paymentService := services.NewPaymentService(paymentRepo, costCenterRepo, unitRepo, auditService, notificationService)
	costCenterService := services.NewCostCenterService(costCenterRepo, auditService)
	unitService := services.NewUnitService(unitRepo, auditService)
	authService := services.NewAuthService(userRepo, auditService, config.Get().JWTSecret, config.Get().JWTExpiry)
	healthService := services.NewHealthService(db)

	paymentHandler := handlers.NewPaymentHandler(paymentService)
	costCenterHandler := handlers.NewCostCenterHandler(costCenterService)
	unitHandler := handlers.NewUnitHandler(unitService)
	activityLogHandler := handlers.NewActivityLogHandler(auditService)
	authHandler := handlers.NewAuthHandler(authService, userRepo)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	healthHandler := handlers.NewHealthHandler(healthService)

	g := s.Router.Group("/api/v1")
	handlers.RegisterPaymentRoutes(g, paymentHandler, authService)
	handlers.RegisterCostCenterRoutes(g, costCenterHandler, authService)
	handlers.RegisterUnitRoutes(g, unitHandler, authService)
	handlers.RegisterActivityLogRoutes(g, activityLogHandler, authService)
	handlers.RegisterAuthRoutes(g, authHandler, authService)
	handlers.RegisterNotificationRoutes(g, notificationHandler, authService)
	handlers.RegisterHealthRoutes(g, healthHandler)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := s.ListenAndServe(config.Get().HttpListenAddr); err != nil {
			logger.Error("error in running http-server", "error", err)
		}
	}()

	<-c
	s.Shutdown()
}

func argContainsEnvPath() string {
	for _, v := range os.Args {
		if strings.Contains(v, "--env=") {
			s := strings.Split(v, "=")
			if _, err := os.Open(s[1]); err != nil {
				logger.Error("failed to open the passed env file, got error" + err.Error())
				return ""
			}
			return s[1]
		}
	}
	return ""
}
