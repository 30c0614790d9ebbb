package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PushPayload is the body the notifier posts to each subscription endpoint.
type PushPayload struct {
	Title string            `json:"title" binding:"required"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

type PushResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	ProcessedAt time.Time `json:"processed_at"`
}

// MockPushService simulates a web-push provider for local development: most
// deliveries succeed after a random delay, a configurable share answers 410
// so the notifier's dead-endpoint cleanup can be exercised.
type MockPushService struct {
	deliveryRate float64
	goneRate     float64
	minDelay     time.Duration
	maxDelay     time.Duration
	rng          *rand.Rand

	delivered int64
	failed    int64
	gone      int64
}

func NewMockPushService(deliveryRate, goneRate float64, minDelay, maxDelay time.Duration) *MockPushService {
	return &MockPushService{
		deliveryRate: deliveryRate,
		goneRate:     goneRate,
		minDelay:     minDelay,
		maxDelay:     maxDelay,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockPushService) randomDelay() time.Duration {
	if m.maxDelay <= m.minDelay {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(m.maxDelay-m.minDelay)))
}

func (m *MockPushService) handlePush(c *gin.Context) {
	var payload PushPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	time.Sleep(m.randomDelay())

	roll := m.rng.Float64()
	switch {
	case roll < m.goneRate:
		m.gone++
		log.Info().
			Str("endpoint", c.Param("endpoint")).
			Str("title", payload.Title).
			Msg("subscription gone")
		c.JSON(http.StatusGone, gin.H{"error": "subscription expired"})

	case roll < m.goneRate+(1-m.deliveryRate):
		m.failed++
		log.Warn().
			Str("endpoint", c.Param("endpoint")).
			Str("title", payload.Title).
			Msg("delivery failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporary failure"})

	default:
		m.delivered++
		log.Info().
			Str("endpoint", c.Param("endpoint")).
			Str("title", payload.Title).
			Msg("push delivered")
		c.JSON(http.StatusCreated, PushResponse{
			ID:          uuid.New().String(),
			Status:      "delivered",
			ProcessedAt: time.Now(),
		})
	}
}

func (m *MockPushService) handleStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"delivered": m.delivered,
		"failed":    m.failed,
		"gone":      m.gone,
	})
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	addr := os.Getenv("PUSHMOCK_ADDR")
	if addr == "" {
		addr = ":9100"
	}

	svc := NewMockPushService(0.9, 0.05, 10*time.Millisecond, 200*time.Millisecond)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/push/:endpoint", svc.handlePush)
	r.POST("/push", svc.handlePush)
	r.GET("/stats", svc.handleStats)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now()})
	})

	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		log.Info().Str("addr", addr).Msg("mock push provider listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	fmt.Println("bye")
}
