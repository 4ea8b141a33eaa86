package domain

import (
	"encoding/json"
	"time"
)

// Webhook event names handled explicitly; anything else is logged as unhandled.
const (
	EventOrderCreated          = "order_created"
	EventOrderRefunded         = "order_refunded"
	EventSubscriptionCancelled = "subscription_cancelled"
	EventSubscriptionExpired   = "subscription_expired"
)

// WebhookEvent is the subset of a provider event this server records.
type WebhookEvent struct {
	ID         string    `json:"id"`
	Name       string    `json:"event_name"`
	OrderID    string    `json:"order_id,omitempty"`
	CustomerID string    `json:"customer_id,omitempty"`
	Email      string    `json:"email,omitempty"`
	Status     string    `json:"status,omitempty"`
	StoreID    string    `json:"store_id,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// ProviderID is an identifier the provider sends either as a JSON number or a string.
type ProviderID string

func (p *ProviderID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = ProviderID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = ProviderID(n.String())
	return nil
}
