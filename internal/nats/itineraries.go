package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/vietvoyage/trip-agent/internal/model"
)

// ItineraryBucket is the KV bucket holding saved itineraries.
const ItineraryBucket = "ITINERARIES"

// ItineraryStore is the JetStream KV-backed store.ItineraryStore
// implementation.
type ItineraryStore struct {
	kv jetstream.KeyValue
}

// NewItineraryStore ensures the itinerary bucket exists and returns the store.
func NewItineraryStore(ctx context.Context, client *Client) (*ItineraryStore, error) {
	kv, err := client.JetStream().CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      ItineraryBucket,
		Description: "Saved trip itineraries",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create itinerary bucket: %w", err)
	}
	return &ItineraryStore{kv: kv}, nil
}

// Insert stores the itinerary under the owning user's key space.
func (s *ItineraryStore) Insert(ctx context.Context, it *model.Itinerary) error {
	data, err := json.Marshal(it)
	if err != nil {
		return fmt.Errorf("failed to marshal itinerary: %w", err)
	}
	if _, err := s.kv.Put(ctx, it.UserID+"."+it.ID, data); err != nil {
		return fmt.Errorf("failed to store itinerary: %w", err)
	}
	return nil
}

// ListByUser returns the user's itineraries, oldest first.
func (s *ItineraryStore) ListByUser(ctx context.Context, userID string) ([]model.Itinerary, error) {
	lister, err := s.kv.ListKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list itinerary keys: %w", err)
	}

	var out []model.Itinerary
	for key := range lister.Keys() {
		if !strings.HasPrefix(key, userID+".") {
			continue
		}
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			continue
		}
		var it model.Itinerary
		if err := json.Unmarshal(entry.Value(), &it); err != nil {
			continue
		}
		out = append(out, it)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
