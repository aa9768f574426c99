package marketplace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/sellerhub/backend/internal/domain/marketplace"
	"github.com/sellerhub/backend/internal/infrastructure/logger"
)

const (
	// headerCorrelationID tags every outbound request with the sync pass id
	headerCorrelationID = "X-Correlation-ID"

	// maxErrorBodyBytes bounds how much of an error body is retained
	maxErrorBodyBytes = 2048
)

// Client is the HTTP client for the marketplace seller API. It implements
// the domain TokenProvider, OrderFeed and CatalogFeed ports.
type Client struct {
	cfg        *Config
	httpClient *http.Client
	logger     *zap.Logger
}

var (
	_ domain.TokenProvider = (*Client)(nil)
	_ domain.OrderFeed     = (*Client)(nil)
	_ domain.CatalogFeed   = (*Client)(nil)
)

// NewClient creates a new marketplace API client
func NewClient(cfg *Config, log *zap.Logger) (*Client, error) {
	if cfg == nil {
		return nil, domain.ErrNotConfigured
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: log,
	}, nil
}

// GetAccessToken exchanges store credentials for an access token. Any
// failure here is fatal for the store's sync pass.
func (c *Client) GetAccessToken(ctx context.Context, clientID, clientSecret string) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.AuthURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.setCommonHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body := readLimitedBody(resp.Body)
		c.logger.Warn("token exchange rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("body", body),
		)
		return "", fmt.Errorf("%w: status %d", domain.ErrAuthFailed, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", domain.ErrAuthFailed)
	}
	return token.AccessToken, nil
}

// ListOrders fetches one bounded page of orders for a single channel.
// Non-2xx responses come back as a FetchError so callers can skip the
// channel and keep going.
func (c *Client) ListOrders(ctx context.Context, token string, channel domain.ChannelType, since time.Time, limit int) ([]domain.RawOrder, error) {
	q := url.Values{}
	q.Set("channel", channel.String())
	q.Set("createdAfter", since.UTC().Format(time.RFC3339))
	q.Set("limit", strconv.Itoa(limit))

	var payload apiOrdersResponse
	if err := c.getJSON(ctx, token, "/orders", q, &payload); err != nil {
		return nil, err
	}

	orders := make([]domain.RawOrder, 0, len(payload.Orders))
	for _, o := range payload.Orders {
		orders = append(orders, toRawOrder(o, channel))
	}
	return orders, nil
}

// ListCatalog fetches the store's product listings
func (c *Client) ListCatalog(ctx context.Context, token string, limit int) ([]domain.Listing, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var payload apiListingsResponse
	if err := c.getJSON(ctx, token, "/listings", q, &payload); err != nil {
		return nil, err
	}

	listings := make([]domain.Listing, 0, len(payload.Listings))
	for _, l := range payload.Listings {
		listings = append(listings, domain.Listing{
			SKU:       l.SellerSKU,
			Title:     l.Title,
			SellPrice: l.Price.decimalValue(),
		})
	}
	return listings, nil
}

// ---------------------------------------------------------------------------
// Internals
// ---------------------------------------------------------------------------

func (c *Client) getJSON(ctx context.Context, token, path string, query url.Values, out any) error {
	endpoint := strings.TrimRight(c.cfg.APIBaseURL, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("marketplace: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(ctx, req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.FetchError{
			Status: resp.StatusCode,
			Body:   readLimitedBody(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidResponse, err)
	}
	return nil
}

// setCommonHeaders propagates the sync pass correlation id onto the request
func (c *Client) setCommonHeaders(ctx context.Context, req *http.Request) {
	if id := logger.GetCorrelationID(ctx); id != "" {
		req.Header.Set(headerCorrelationID, id)
	}
}

func readLimitedBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBodyBytes))
	if err != nil {
		return ""
	}
	return string(body)
}

func toRawOrder(o apiOrder, channel domain.ChannelType) domain.RawOrder {
	lines := make([]domain.RawOrderLine, 0, len(o.Lines))
	for _, l := range o.Lines {
		history := make([]domain.StatusEntry, 0, len(l.StatusHistory))
		for _, s := range l.StatusHistory {
			history = append(history, domain.StatusEntry{
				Status:    s.Status,
				ChangedAt: s.ChangedAt,
			})
		}
		lines = append(lines, domain.RawOrderLine{
			SKU:      l.SellerSKU,
			Quantity: l.QuantityOrdered,
			Charges: domain.ChargeBreakdown{
				SellPrice: l.ItemPrice.decimalValue(),
				Tax:       l.ItemTax.decimalValue(),
				Shipping:  l.ShippingPrice.decimalValue(),
			},
			StatusHistory: history,
		})
	}

	return domain.RawOrder{
		ExternalOrderID: o.OrderID,
		Channel:         channel,
		Shipping: domain.ShippingInfo{
			BuyerName:    o.ShippingAddress.Name,
			AddressLine1: o.ShippingAddress.AddressLine1,
			AddressLine2: o.ShippingAddress.AddressLine2,
			City:         o.ShippingAddress.City,
			State:        o.ShippingAddress.StateOrRegion,
			PostalCode:   o.ShippingAddress.PostalCode,
			Country:      o.ShippingAddress.CountryCode,
		},
		Lines:       lines,
		PurchasedAt: o.PurchaseDate,
	}
}
