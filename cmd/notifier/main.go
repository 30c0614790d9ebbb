package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/realhub/condo-api/internal/config"
	"github.com/realhub/condo-api/internal/notifier"
	"github.com/realhub/condo-api/internal/queue"
	"github.com/realhub/condo-api/internal/repository"
	"github.com/realhub/condo-api/pkg/logger"
	"github.com/realhub/condo-api/pkg/mailer"
	"github.com/realhub/condo-api/pkg/pg"
	"github.com/realhub/condo-api/pkg/prom"
	"github.com/realhub/condo-api/pkg/redis"
)

// The notifier is the delivery half of the notification pipeline: it consumes
// events the API publishes and fans them out to email and web push.
func main() {
	err := config.Load(argContainsEnvPath())
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return
	}

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
	db, err := pg.CreateReadWrite(readConf, writeConf, false)
	if err != nil {
		logger.Error("failed connecting to pg", "error", err)
		return
	}

	redisAdap, err := redis.NewRedisAdapter("notifier", config.Get().RedisUniversalKeyPrefix, &redis.Options{
		Addrs:      []string{config.Get().RedisAddr},
		ClientName: "notifier",
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

	smtp := mailer.New(mailer.Config{
		Host:     config.Get().SMTPHost,
		Port:     config.Get().SMTPPort,
		Username: config.Get().SMTPUsername,
		Password: config.Get().SMTPPassword,
		From:     config.Get().SMTPFrom,
	})

	userRepo := repository.NewUserRepository(db)
	subscriptionRepo := repository.NewPushSubscriptionRepository(db)

	svc := notifier.New(notificationQueue, config.Get().NotifierWorkers, userRepo, subscriptionRepo, smtp)

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		svc.Stop()
	}()

	logger.Info("notifier started", "workers", config.Get().NotifierWorkers, "queue", config.Get().QueueName)
	if err := svc.Start(); err != nil {
		logger.Info("notifier stopped", "reason", err)
	}
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
