// Package events publishes relationship changes for downstream consumers such as search indexers.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

const (
	TypeRelationshipSet     = "relationship.set"
	TypeRelationshipRemoved = "relationship.removed"
)

// RelationshipEvent describes one change to a product's curated relationships.
type RelationshipEvent struct {
	Type       string             `json:"type"`
	ProductID  models.ProductID   `json:"id_product"`
	RelatedIDs []models.ProductID `json:"related_ids,omitempty"`
	RequestID  string             `json:"request_id,omitempty"`
	TraceID    string             `json:"trace_id,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

func (e RelationshipEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

type Publisher interface {
	Publish(ctx context.Context, event RelationshipEvent) error
}

// NopPublisher drops every event. It is used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, RelationshipEvent) error {
	return nil
}
