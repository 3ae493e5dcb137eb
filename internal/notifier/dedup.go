package notifier

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/nimasrn/donation-gateway/pkg/logger"
	"github.com/nimasrn/donation-gateway/pkg/redis"
)

var (
	ErrAlreadyDelivered  = errors.New("notification already delivered")
	ErrLockAcquireFailed = errors.New("failed to acquire delivery lock")
	ErrRetriesExhausted  = errors.New("delivery retries exhausted")
)

type DedupConfig struct {
	LockTTL      time.Duration
	DeliveredTTL time.Duration
	MaxRetries   int
}

func DefaultDedupConfig() DedupConfig {
	return DedupConfig{
		LockTTL:      30 * time.Second,
		DeliveredTTL: 24 * time.Hour,
		MaxRetries:   3,
	}
}

// Dedup guarantees each donation id is delivered at most once even
// though the queue redelivers. A SETNX lock serializes concurrent
// consumers and a delivered marker suppresses redeliveries.
type Dedup struct {
	redis  redis.RedisAdapter
	config DedupConfig
}

func NewDedup(adapter redis.RedisAdapter, config DedupConfig) *Dedup {
	return &Dedup{
		redis:  adapter,
		config: config,
	}
}

// Delivery tracks one in-flight delivery attempt for a donation id.
type Delivery struct {
	DonationID string
	RetryCount int
	locked     bool
	dedup      *Dedup
}

func (d *Dedup) Acquire(donationID string) (*Delivery, error) {
	exists, err := d.redis.Exist("delivered:" + donationID)
	if err != nil {
		// Risk a duplicate rather than stall the pipeline
		logger.Warn("delivered check failed", "donation_id", donationID, "error", err)
	} else if exists > 0 {
		return nil, ErrAlreadyDelivered
	}

	retryCount := 0
	if b, err := d.redis.Get("retry:" + donationID); err == nil && len(b) > 0 {
		retryCount, _ = strconv.Atoi(string(b))
	}
	if retryCount >= d.config.MaxRetries {
		return nil, fmt.Errorf("%w: donation_id=%s retries=%d", ErrRetriesExhausted, donationID, retryCount)
	}

	lockValue := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	acquired, err := d.redis.SetNX("lock:"+donationID, lockValue, d.config.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLockAcquireFailed, err)
	}
	if !acquired {
		return nil, ErrLockAcquireFailed
	}

	return &Delivery{
		DonationID: donationID,
		RetryCount: retryCount,
		locked:     true,
		dedup:      d,
	}, nil
}

func (d *Dedup) MarkDelivered(dv *Delivery) error {
	if err := d.redis.Set("delivered:"+dv.DonationID, []byte("1"), d.config.DeliveredTTL); err != nil {
		return fmt.Errorf("mark delivered: %w", err)
	}
	if err := d.redis.Del("lock:" + dv.DonationID); err != nil {
		logger.Warn("lock cleanup failed", "donation_id", dv.DonationID, "error", err)
	}
	if err := d.redis.Del("retry:" + dv.DonationID); err != nil {
		logger.Warn("retry counter cleanup failed", "donation_id", dv.DonationID, "error", err)
	}
	dv.locked = false
	return nil
}

// MarkFailed bumps the retry counter and releases the lock so a
// redelivery can try again.
func (d *Dedup) MarkFailed(dv *Delivery, reason error) {
	retryValue := []byte(strconv.Itoa(dv.RetryCount + 1))
	if err := d.redis.Set("retry:"+dv.DonationID, retryValue, d.config.DeliveredTTL); err != nil {
		logger.Error("retry counter update failed", "donation_id", dv.DonationID, "error", err)
	}
	d.release(dv)

	logger.Warn("notification delivery failed, will retry",
		"donation_id", dv.DonationID,
		"retry_count", dv.RetryCount+1,
		"max_retries", d.config.MaxRetries,
		"reason", reason)
}

func (d *Dedup) Release(dv *Delivery) {
	if dv == nil || !dv.locked {
		return
	}
	d.release(dv)
}

func (d *Dedup) release(dv *Delivery) {
	if err := d.redis.Del("lock:" + dv.DonationID); err != nil {
		logger.Warn("lock release failed", "donation_id", dv.DonationID, "error", err)
	}
	dv.locked = false
}

func (d *Dedup) IsDelivered(donationID string) (bool, error) {
	exists, err := d.redis.Exist("delivered:" + donationID)
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}
