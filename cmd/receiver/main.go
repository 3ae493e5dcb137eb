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

// DonationNotification is the payload the dispatcher posts for every
// recorded donation.
type DonationNotification struct {
	DonationID string  `json:"donation_id" binding:"required"`
	Email      string  `json:"email" binding:"required"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	CampaignID string  `json:"campaign_id"`
}

// NotificationResponse is what the receiver answers with.
type NotificationResponse struct {
	DonationID string    `json:"donation_id"`
	Accepted   bool      `json:"accepted"`
	ReceiverID string    `json:"receiver_id"`
	ReceivedAt time.Time `json:"received_at"`
	ErrorMsg   string    `json:"error,omitempty"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status     string    `json:"status"`
	ReceiverID string    `json:"receiver_id"`
	Timestamp  time.Time `json:"timestamp"`
	AcceptRate float64   `json:"accept_rate"`
}

// MockReceiver simulates a downstream notification consumer. It accepts
// a configurable fraction of requests and adds artificial latency so
// retry and failover paths can be exercised locally.
type MockReceiver struct {
	acceptRate float64
	minDelay   time.Duration
	maxDelay   time.Duration
	receiverID string
	rng        *rand.Rand
}

func NewMockReceiver(acceptRate float64, minDelay, maxDelay time.Duration) *MockReceiver {
	return &MockReceiver{
		acceptRate: acceptRate,
		minDelay:   minDelay,
		maxDelay:   maxDelay,
		receiverID: "MOCK_RECEIVER_" + uuid.New().String()[:8],
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockReceiver) process(req *DonationNotification) *NotificationResponse {
	time.Sleep(m.randomDelay())

	response := &NotificationResponse{
		DonationID: req.DonationID,
		ReceiverID: m.receiverID,
		ReceivedAt: time.Now(),
	}

	if m.shouldAccept() {
		response.Accepted = true

		log.Info().
			Str("donation_id", req.DonationID).
			Str("email", req.Email).
			Float64("amount", req.Amount).
			Msg("notification accepted")
	} else {
		response.Accepted = false
		response.ErrorMsg = "receiver temporarily unavailable"

		log.Warn().
			Str("donation_id", req.DonationID).
			Str("email", req.Email).
			Msg("notification rejected")
	}

	return response
}

func (m *MockReceiver) randomDelay() time.Duration {
	delta := m.maxDelay - m.minDelay
	if delta <= 0 {
		return m.minDelay
	}
	return m.minDelay + time.Duration(m.rng.Int63n(int64(delta)))
}

func (m *MockReceiver) shouldAccept() bool {
	return m.rng.Float64() < m.acceptRate
}

type Handler struct {
	receiver *MockReceiver
}

func NewHandler(receiver *MockReceiver) *Handler {
	return &Handler{receiver: receiver}
}

// Notify handles a single donation notification.
func (h *Handler) Notify(c *gin.Context) {
	var req DonationNotification

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	response := h.receiver.process(&req)

	statusCode := http.StatusOK
	if !response.Accepted {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, response)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	// Simulate 5% downtime
	if h.receiver.rng.Float64() < 0.05 {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"error":  "receiver temporarily unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:     "healthy",
		ReceiverID: h.receiver.receiverID,
		Timestamp:  time.Now(),
		AcceptRate: h.receiver.acceptRate,
	})
}

// UpdateConfig allows changing the accept rate at runtime.
func (h *Handler) UpdateConfig(c *gin.Context) {
	var config struct {
		AcceptRate *float64 `json:"accept_rate"`
	}

	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request",
			"details": err.Error(),
		})
		return
	}

	if config.AcceptRate != nil {
		if *config.AcceptRate >= 0 && *config.AcceptRate <= 1.0 {
			h.receiver.acceptRate = *config.AcceptRate
			log.Info().Float64("rate", *config.AcceptRate).Msg("updated accept rate")
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "configuration updated",
		"accept_rate": h.receiver.acceptRate,
	})
}

func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.Default()

	router.Use(func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", duration).
			Msg("request processed")
	})

	v1 := router.Group("/api/v1")
	{
		v1.POST("/notifications", handler.Notify)
		v1.GET("/health", handler.HealthCheck)
		v1.PUT("/config", handler.UpdateConfig)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	port := getEnv("PORT", "8081")
	acceptRate := getEnvFloat("ACCEPT_RATE", 1)
	minDelay := getEnvDuration("MIN_DELAY", 50*time.Millisecond)
	maxDelay := getEnvDuration("MAX_DELAY", 500*time.Millisecond)

	log.Info().
		Str("port", port).
		Float64("accept_rate", acceptRate).
		Dur("min_delay", minDelay).
		Dur("max_delay", maxDelay).
		Msg("starting mock notification receiver")

	receiver := NewMockReceiver(acceptRate, minDelay, maxDelay)
	handler := NewHandler(receiver)
	router := SetupRouter(handler)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		var f float64
		if _, err := fmt.Sscanf(value, "%f", &f); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
