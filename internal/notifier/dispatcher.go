package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nimasrn/donation-gateway/internal/config"
	"github.com/nimasrn/donation-gateway/internal/queue"
	"github.com/nimasrn/donation-gateway/pkg/logger"
	"github.com/nimasrn/donation-gateway/pkg/prom"
	"github.com/nimasrn/donation-gateway/pkg/redis"
	"github.com/nimasrn/donation-gateway/pkg/worker"
)

const DeliveryTimeout = time.Second * 5
const HealthInterval = time.Second * 30
const ShutdownTimeout = time.Minute

const consumerInstances = 4
const workerPoolSize = 32

// Dispatcher consumes donation events from the stream and fans them
// out to a worker pool for webhook delivery with dedup by donation id.
type Dispatcher struct {
	adapter redis.RedisAdapter
	queues  []*queue.Queue
	client  *WebhookClient
	dedup   *Dedup
	metrics *DispatchMetrics
	worker  *worker.WorkerManager
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewDispatcher(adapter redis.RedisAdapter, client *WebhookClient, dedup *Dedup) *Dispatcher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		adapter: adapter,
		queues:  make([]*queue.Queue, 0),
		client:  client,
		dedup:   dedup,
		metrics: NewDispatchMetrics(),
		worker:  worker.NewWorkerManager(10_000, workerPoolSize, nil),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (d *Dispatcher) Start() error {
	logger.Info("starting notification dispatcher...")

	d.worker.SetWorker(d.workerHandler)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.worker.Start(); err != nil {
			logger.Error("worker manager stopped", "error", err)
		}
	}()

	for i := 0; i < consumerInstances; i++ {
		cfg := queue.Config{
			Name:              config.Get().QueueName,
			ConsumerGroup:     config.Get().QueueConsumerGroup,
			ConsumerName:      fmt.Sprintf("%s-instance-%d", config.Get().QueueConsumerName, i),
			MaxRetries:        config.Get().QueueMaxRetries,
			VisibilityTimeout: config.Get().QueueVisibilityTimeout,
			PollInterval:      config.Get().QueuePollInterval,
			BatchSize:         config.Get().QueueBatchSize,
			MaxLen:            config.Get().QueueMaxLen,
			EnableDLQ:         config.Get().QueueEnableDLQ,
		}

		q, err := queue.New(d.adapter, cfg)
		if err != nil {
			return fmt.Errorf("failed to create queue %d: %w", i, err)
		}

		if err := q.Consume(d.messageHandler); err != nil {
			return fmt.Errorf("failed to start consumer %d: %w", i, err)
		}

		d.queues = append(d.queues, q)
	}

	d.wg.Add(2)
	go d.metricsReporter()
	go d.healthChecker()

	logger.Info("notification dispatcher started", "consumers", len(d.queues), "workers", workerPoolSize)
	return nil
}

type deliveryJob struct {
	msg        *queue.Message
	resultChan chan error
	ctx        context.Context
}

// messageHandler hands queue deliveries to the worker pool and blocks
// until the worker reports back, so ack/nack reflects the outcome.
func (d *Dispatcher) messageHandler(ctx context.Context, msg *queue.Message) error {
	resultChan := make(chan error, 1)

	msgCtx, cancel := context.WithTimeout(ctx, DeliveryTimeout+time.Second)
	defer cancel()

	d.worker.Enqueue(&deliveryJob{
		msg:        msg,
		resultChan: resultChan,
		ctx:        msgCtx,
	})

	select {
	case err := <-resultChan:
		return err
	case <-msgCtx.Done():
		return fmt.Errorf("timeout waiting for delivery worker: %w", msgCtx.Err())
	}
}

func (d *Dispatcher) workerHandler(workerIndex int, job interface{}) {
	dj, ok := job.(*deliveryJob)
	if !ok {
		logger.Error("invalid job type in worker", "worker", workerIndex)
		return
	}

	select {
	case <-dj.ctx.Done():
		logger.Warn("job context cancelled before delivery started", "worker", workerIndex)
		return
	default:
	}

	start := time.Now()
	resultErr := d.deliver(dj.ctx, dj.msg)
	if resultErr == nil {
		d.metrics.RecordDelivered(time.Since(start))
	}

	select {
	case dj.resultChan <- resultErr:
	case <-dj.ctx.Done():
		logger.Warn("context cancelled while sending result", "worker", workerIndex)
	}
}

// deliver runs one webhook delivery. Returning nil acks the queue
// message, an error leaves it pending for redelivery.
func (d *Dispatcher) deliver(ctx context.Context, msg *queue.Message) error {
	var event DonationEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		logger.Error("failed to unmarshal donation event", "error", err)
		prom.IncNotificationOutcome("invalid")
		return err // triggers DLQ after retries
	}

	dv, err := d.dedup.Acquire(event.DonationID)
	if err != nil {
		if errors.Is(err, ErrAlreadyDelivered) {
			d.metrics.RecordDuplicate()
			prom.IncNotificationOutcome("duplicate")
			return nil // ack, nothing to do
		}
		if errors.Is(err, ErrRetriesExhausted) {
			logger.Error("notification retries exhausted", "donation_id", event.DonationID)
			d.metrics.RecordFailure()
			prom.IncNotificationOutcome("exhausted")
			return nil // ack, DLQ semantics handled by retry counter
		}
		if errors.Is(err, ErrLockAcquireFailed) {
			return errors.New("delivery lock held by another consumer")
		}
		return err
	}
	defer d.dedup.Release(dv)

	if err := d.client.Deliver(ctx, &event); err != nil {
		d.metrics.RecordFailure()
		prom.IncNotificationOutcome("failed")
		d.dedup.MarkFailed(dv, err)
		return err // nack, queue redelivers
	}

	prom.IncNotificationOutcome("delivered")
	if err := d.dedup.MarkDelivered(dv); err != nil {
		// Delivery happened; a marker failure only risks a duplicate
		logger.Error("failed to mark delivered", "donation_id", event.DonationID, "error", err)
	}

	return nil
}

func (d *Dispatcher) metricsReporter() {
	defer d.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.reportMetrics()
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) reportMetrics() {
	stats := d.metrics.GetStats()
	logger.Info("dispatcher metrics",
		"total_delivered", stats["total_delivered"],
		"total_failed", stats["total_failed"],
		"total_duplicates", stats["total_duplicates"],
		"rate_per_second", stats["rate_per_second"],
		"avg_duration_ms", stats["avg_duration_ms"])

	for i, q := range d.queues {
		if qStats, err := q.GetStats(); err == nil {
			logger.Info("queue stats", "queue", i, "total", qStats.TotalMessages, "pending", qStats.PendingMessages)
		}
	}
}

func (d *Dispatcher) healthChecker() {
	defer d.wg.Done()

	ticker := time.NewTicker(HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			d.performHealthCheck()
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) performHealthCheck() {
	if err := d.adapter.Client().Ping(context.Background()).Err(); err != nil {
		logger.Error("health check failed: redis connection error", "error", err)
		return
	}

	for i, q := range d.queues {
		stats, err := q.GetStats()
		if err != nil {
			logger.Warn("health check: queue stats unavailable", "queue", i, "error", err)
			continue
		}
		if stats.PendingMessages > 10000 {
			logger.Warn("health check: queue has high lag", "queue", i, "pending_messages", stats.PendingMessages)
		}
	}
}

func (d *Dispatcher) Stop() {
	logger.Info("shutting down notification dispatcher...")

	d.cancel()

	stopChan := make(chan bool, len(d.queues))
	for i, q := range d.queues {
		go func(index int, q *queue.Queue) {
			if err := q.Stop(ShutdownTimeout); err != nil {
				logger.Error("error stopping queue", "queue", index, "error", err)
			}
			stopChan <- true
		}(i, q)
	}

	for range d.queues {
		select {
		case <-stopChan:
		case <-time.After(ShutdownTimeout + 5*time.Second):
			logger.Warn("timeout waiting for queues to stop")
		}
	}

	d.worker.Exit()
	d.wg.Wait()
	d.reportMetrics()

	logger.Info("notification dispatcher stopped")
}
