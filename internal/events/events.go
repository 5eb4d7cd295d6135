package events

import (
	"context"
	"time"
)

// Type names a domain event.
type Type string

const (
	ListingCreated       Type = "listing.created"
	ListingUpdated       Type = "listing.updated"
	ListingStatusChanged Type = "listing.status_changed"
	ListingDeleted       Type = "listing.deleted"
	FavoriteAdded        Type = "favorite.added"
	FavoriteRemoved      Type = "favorite.removed"
)

// Event is published as JSON, keyed by ListingID.
type Event struct {
	Type       Type                   `json:"type"`
	ListingID  string                 `json:"listing_id"`
	UserID     uint                   `json:"user_id"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

func New(t Type, listingID string, userID uint, data map[string]interface{}) Event {
	return Event{
		Type:       t,
		ListingID:  listingID,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event. It is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                        { return nil }
