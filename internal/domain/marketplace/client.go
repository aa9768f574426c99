package marketplace

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// TokenProvider exchanges store credentials for a short-lived marketplace
// access token. Callers are responsible for decrypting stored credentials
// before calling.
type TokenProvider interface {
	// GetAccessToken returns an access token for the given credentials.
	// Fails with ErrAuthFailed when the exchange is rejected.
	GetAccessToken(ctx context.Context, clientID, clientSecret string) (string, error)
}

// OrderFeed fetches orders from the marketplace for a single channel type.
// One call issues one bounded-page request; any non-2xx is returned as a
// FetchError and must be treated as recoverable per channel, not fatal per
// store.
type OrderFeed interface {
	ListOrders(ctx context.Context, token string, channel ChannelType, since time.Time, limit int) ([]RawOrder, error)
}

// Listing is one product listing returned by the catalog feed
type Listing struct {
	SKU       string
	Title     string
	SellPrice decimal.Decimal
}

// CatalogFeed fetches the store's product listings for catalog refresh
type CatalogFeed interface {
	ListCatalog(ctx context.Context, token string, limit int) ([]Listing, error)
}
