package marketplace

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// defaultOrderStatus is used when a line carries no status history
const defaultOrderStatus = "Unknown"

// RawOrder is the marketplace's representation of one order. It exists only
// in memory during a sync pass and is tagged with the store and channel it
// was fetched for.
type RawOrder struct {
	// ExternalOrderID is the marketplace order identifier
	ExternalOrderID string
	// StoreID is the seller store this order was fetched for
	StoreID uuid.UUID
	// Channel is the fulfillment channel the order came from
	Channel ChannelType
	// Shipping carries the buyer and delivery information
	Shipping ShippingInfo
	// Lines contains the order lines
	Lines []RawOrderLine
	// PurchasedAt is when the buyer placed the order
	PurchasedAt time.Time
}

// RawOrderLine is one line of a marketplace order
type RawOrderLine struct {
	// SKU is the seller SKU of the ordered product
	SKU string
	// Quantity is the number of units requested
	Quantity int64
	// Charges carries the per-line charge breakdown
	Charges ChargeBreakdown
	// StatusHistory is the line's status history, most recent last
	StatusHistory []StatusEntry
}

// ChargeBreakdown carries the monetary amounts reported by the marketplace
// for one order line.
type ChargeBreakdown struct {
	// SellPrice is the principal charged to the buyer
	SellPrice decimal.Decimal
	// Tax is the tax collected on the line
	Tax decimal.Decimal
	// Shipping is the shipping charge, if any
	Shipping decimal.Decimal
}

// StatusEntry is one entry of a line's status history
type StatusEntry struct {
	Status    string
	ChangedAt time.Time
}

// ShippingInfo carries buyer and delivery details. Any field may be empty;
// derivations below tolerate missing data.
type ShippingInfo struct {
	BuyerName    string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
	Country      string
}

// CustomerName returns the buyer name, empty when the marketplace omitted it
func (s ShippingInfo) CustomerName() string {
	return strings.TrimSpace(s.BuyerName)
}

// AddressText returns a multi-line address string. Missing parts are simply
// skipped, never an error.
func (s ShippingInfo) AddressText() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.AddressLine1, s.AddressLine2} {
		if v := strings.TrimSpace(p); v != "" {
			parts = append(parts, v)
		}
	}
	locality := make([]string, 0, 3)
	for _, p := range []string{s.City, s.State, s.PostalCode} {
		if v := strings.TrimSpace(p); v != "" {
			locality = append(locality, v)
		}
	}
	if len(locality) > 0 {
		parts = append(parts, strings.Join(locality, ", "))
	}
	if v := strings.TrimSpace(s.Country); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, "\n")
}

// latestEntry returns the most recent non-blank status entry of the line
func (l RawOrderLine) latestEntry() (StatusEntry, bool) {
	var best StatusEntry
	found := false
	for _, e := range l.StatusHistory {
		if e.Status == "" {
			continue
		}
		if !found || e.ChangedAt.After(best.ChangedAt) {
			best = e
			found = true
		}
	}
	return best, found
}

// LatestStatus returns the most recent status of the line, defaulting to
// "Unknown" when the history is empty.
func (l RawOrderLine) LatestStatus() string {
	entry, ok := l.latestEntry()
	if !ok {
		return defaultOrderStatus
	}
	return entry.Status
}

// LatestStatus returns the most recent status across all lines of the
// order, defaulting to "Unknown" when no line carries a usable history.
func (o *RawOrder) LatestStatus() string {
	var best StatusEntry
	found := false
	for _, line := range o.Lines {
		entry, ok := line.latestEntry()
		if !ok {
			continue
		}
		if !found || entry.ChangedAt.After(best.ChangedAt) {
			best = entry
			found = true
		}
	}
	if !found {
		return defaultOrderStatus
	}
	return best.Status
}
