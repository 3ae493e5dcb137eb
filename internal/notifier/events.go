package notifier

import (
	"context"

	"github.com/nimasrn/donation-gateway/internal/model"
	"github.com/nimasrn/donation-gateway/internal/queue"
)

const EventTypeDonationRecorded = "donation.recorded"

// DonationEvent is the queue payload for a recorded donation.
type DonationEvent struct {
	DonationID string  `json:"donation_id"`
	Email      string  `json:"email"`
	Amount     float64 `json:"amount"`
	Type       string  `json:"type"`
	CampaignID string  `json:"campaign_id,omitempty"`
}

// Publisher pushes donation events onto the notification stream.
// At-least-once; the dispatcher deduplicates by donation id.
type Publisher struct {
	queue *queue.Queue
}

func NewPublisher(q *queue.Queue) *Publisher {
	return &Publisher{queue: q}
}

func (p *Publisher) DonationRecorded(ctx context.Context, d *model.Donation) error {
	event := DonationEvent{
		DonationID: d.ID,
		Email:      d.Email,
		Amount:     d.Amount,
		Type:       d.Type,
		CampaignID: d.CampaignID,
	}
	_, err := p.queue.PublishJSON(ctx, event, map[string]string{"type": EventTypeDonationRecorded})
	return err
}
