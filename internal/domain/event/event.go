package event

import (
	"context"
	"time"
)

// Event names
const (
	UserRegistered    = "user.registered"
	RechargeSucceeded = "recharge.succeeded"
	RechargeFailed    = "recharge.failed"
	TopupSucceeded    = "topup.succeeded"
	TopupFailed       = "topup.failed"
)

// Event is a domain fact published for downstream consumers.
type Event struct {
	Name       string         `json:"name"`
	Key        string         `json:"key"`
	UserID     int64          `json:"user_id"`
	Payload    map[string]any `json:"payload,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}
