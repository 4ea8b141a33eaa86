package repository

import (
	"context"
	"fmt"

	"scentwise-server/internal/domain"
)

const subscriptionEventsTable = "subscription_events"

// SupabaseEventRepository implements domain.EventRepository on the subscription_events table.
type SupabaseEventRepository struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

func NewSupabaseEventRepository(supabaseClient domain.SupabaseClient, logger domain.Logger) *SupabaseEventRepository {
	return &SupabaseEventRepository{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// Store upserts on id, so a redelivered event leaves a single row.
func (r *SupabaseEventRepository) Store(ctx context.Context, event *domain.WebhookEvent) error {
	client := r.supabaseClient.DB()
	if client == nil {
		return fmt.Errorf("supabase client not initialized")
	}

	data := map[string]interface{}{
		"id":          event.ID,
		"event_name":  event.Name,
		"order_id":    event.OrderID,
		"customer_id": event.CustomerID,
		"email":       event.Email,
		"status":      event.Status,
		"store_id":    event.StoreID,
		"received_at": event.ReceivedAt,
	}

	if _, _, err := client.From(subscriptionEventsTable).Insert(data, true, "id", "minimal", "").Execute(); err != nil {
		return fmt.Errorf("failed to store webhook event: %w", err)
	}
	return nil
}
