package order

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sellerhub/backend/internal/domain/marketplace"
)

// OutcomeKind classifies what happened to one raw order during allocation
type OutcomeKind string

const (
	// OutcomeCreated means the order was fully allocated and staged for insert
	OutcomeCreated OutcomeKind = "CREATED"
	// OutcomeSkipped means the external order id already exists; the order
	// was intentionally not re-processed
	OutcomeSkipped OutcomeKind = "SKIPPED"
	// OutcomeFailed means the order failed for a reason other than stock
	// shortage (missing SKU, transform error, persistence failure)
	OutcomeFailed OutcomeKind = "FAILED"
	// OutcomeStockAlert means a line could not be fully allocated; this is a
	// business signal requiring restock, not an error
	OutcomeStockAlert OutcomeKind = "STOCK_ALERT"
)

// Outcome is the tagged per-order classification produced by the allocation
// engine. Exactly one kind applies to each raw order.
type Outcome struct {
	Kind            OutcomeKind
	StoreID         uuid.UUID
	ExternalOrderID string
	Channel         marketplace.ChannelType
	// Reason is set for Skipped and Failed outcomes
	Reason string
	// SKU, Needed and Available are set for StockAlert outcomes
	SKU       string
	Needed    int64
	Available int64
}

// Created builds a Created outcome for a raw order
func Created(raw *marketplace.RawOrder) Outcome {
	return Outcome{
		Kind:            OutcomeCreated,
		StoreID:         raw.StoreID,
		ExternalOrderID: raw.ExternalOrderID,
		Channel:         raw.Channel,
	}
}

// Skipped builds a Skipped outcome for a raw order
func Skipped(raw *marketplace.RawOrder, reason string) Outcome {
	return Outcome{
		Kind:            OutcomeSkipped,
		StoreID:         raw.StoreID,
		ExternalOrderID: raw.ExternalOrderID,
		Channel:         raw.Channel,
		Reason:          reason,
	}
}

// Failed builds a Failed outcome for a raw order
func Failed(raw *marketplace.RawOrder, reason string) Outcome {
	return Outcome{
		Kind:            OutcomeFailed,
		StoreID:         raw.StoreID,
		ExternalOrderID: raw.ExternalOrderID,
		Channel:         raw.Channel,
		Reason:          reason,
	}
}

// StockAlert builds a StockAlert outcome for a raw order
func StockAlert(raw *marketplace.RawOrder, sku string, needed, available int64) Outcome {
	return Outcome{
		Kind:            OutcomeStockAlert,
		StoreID:         raw.StoreID,
		ExternalOrderID: raw.ExternalOrderID,
		Channel:         raw.Channel,
		SKU:             sku,
		Needed:          needed,
		Available:       available,
	}
}

// BatchResult aggregates the classification of one allocation batch
type BatchResult struct {
	CreatedOrders []Order
	Outcomes      []Outcome
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Count returns how many outcomes carry the given kind
func (r *BatchResult) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// OutcomeRepository persists the secondary classification records
// (stock alerts, failed orders, skipped orders). Created outcomes are
// persisted through the order Repository instead.
type OutcomeRepository interface {
	SaveOutcomes(ctx context.Context, outcomes []Outcome) error
}
