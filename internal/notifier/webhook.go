package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/nimasrn/donation-gateway/pkg/logger"
	"github.com/nimasrn/donation-gateway/pkg/prom"
	"github.com/valyala/fasthttp"
)

var ErrNoAvailableEndpoints = errors.New("no available webhook endpoints")

// Endpoint is one webhook target with its own circuit breaker state.
type Endpoint struct {
	name             string
	url              string
	client           *fasthttp.Client
	consecutiveFails atomic.Int32
	circuitOpenUntil atomic.Int64
}

func (e *Endpoint) available() bool {
	openUntil := e.circuitOpenUntil.Load()
	return openUntil == 0 || time.Now().Unix() > openUntil
}

type WebhookConfig struct {
	Endpoints               []EndpointConfig
	Timeout                 time.Duration
	MaxConns                int
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
}

type EndpointConfig struct {
	Name string
	URL  string
}

// WebhookClient delivers donation events over HTTP POST, failing over
// to the next endpoint when one is down or its circuit is open.
type WebhookClient struct {
	config    *WebhookConfig
	endpoints []*Endpoint
}

func NewWebhookClient(config *WebhookConfig) (*WebhookClient, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}
	if len(config.Endpoints) == 0 {
		return nil, errors.New("at least one endpoint is required")
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	if config.CircuitBreakerThreshold == 0 {
		config.CircuitBreakerThreshold = 5
	}
	if config.CircuitBreakerTimeout == 0 {
		config.CircuitBreakerTimeout = 30 * time.Second
	}

	c := &WebhookClient{
		config:    config,
		endpoints: make([]*Endpoint, 0, len(config.Endpoints)),
	}

	for _, ec := range config.Endpoints {
		c.endpoints = append(c.endpoints, &Endpoint{
			name: ec.Name,
			url:  ec.URL,
			client: &fasthttp.Client{
				MaxConnsPerHost:     config.MaxConns,
				ReadTimeout:         config.Timeout,
				WriteTimeout:        config.Timeout,
				MaxIdleConnDuration: 60 * time.Second,
			},
		})
		logger.Info("webhook endpoint initialized", "name", ec.Name, "url", ec.URL)
	}

	return c, nil
}

// Deliver posts the event to the first available endpoint, in
// configuration order. Primary first, then failover targets.
func (c *WebhookClient) Deliver(ctx context.Context, event *DonationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	var lastErr error
	for _, endpoint := range c.endpoints {
		if !endpoint.available() {
			continue
		}

		start := time.Now()
		err := c.post(ctx, endpoint, body)
		elapsed := time.Since(start)

		prom.AddNotificationDeliveryDuration(elapsed.Seconds(), endpoint.name)

		if err != nil {
			c.recordFailure(endpoint)
			logger.Warn("webhook delivery failed, trying next endpoint",
				"endpoint", endpoint.name, "donation_id", event.DonationID, "error", err)
			lastErr = err
			continue
		}

		endpoint.consecutiveFails.Store(0)
		endpoint.circuitOpenUntil.Store(0)
		logger.Info("notification delivered",
			"endpoint", endpoint.name, "donation_id", event.DonationID, "latency_ms", elapsed.Milliseconds())
		return nil
	}

	if lastErr == nil {
		return ErrNoAvailableEndpoints
	}
	return lastErr
}

func (c *WebhookClient) post(ctx context.Context, endpoint *Endpoint, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(endpoint.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.config.Timeout)
	}

	if err := endpoint.client.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	status := resp.StatusCode()
	if status != fasthttp.StatusOK && status != fasthttp.StatusAccepted {
		return fmt.Errorf("unexpected status code: %d, body: %s", status, resp.Body())
	}

	return nil
}

func (c *WebhookClient) recordFailure(endpoint *Endpoint) {
	fails := endpoint.consecutiveFails.Add(1)
	if fails >= int32(c.config.CircuitBreakerThreshold) {
		openUntil := time.Now().Add(c.config.CircuitBreakerTimeout).Unix()
		endpoint.circuitOpenUntil.Store(openUntil)
		logger.Warn("webhook circuit breaker opened",
			"endpoint", endpoint.name, "consecutive_fails", fails, "timeout", c.config.CircuitBreakerTimeout)
	}
}
