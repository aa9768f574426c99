package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// tokenResponse is the wire format of the token exchange endpoint
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// apiMoney is a marketplace money amount, transported as a string
type apiMoney struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// decimalValue parses the amount, treating empty or malformed values as zero
func (m apiMoney) decimalValue() decimal.Decimal {
	if m.Amount == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// apiStatusEntry is one status history entry of an order line
type apiStatusEntry struct {
	Status    string    `json:"status"`
	ChangedAt time.Time `json:"changedAt"`
}

// apiOrderLine is the wire format of one order line
type apiOrderLine struct {
	SellerSKU       string           `json:"sellerSku"`
	QuantityOrdered int64            `json:"quantityOrdered"`
	ItemPrice       apiMoney         `json:"itemPrice"`
	ItemTax         apiMoney         `json:"itemTax"`
	ShippingPrice   apiMoney         `json:"shippingPrice"`
	StatusHistory   []apiStatusEntry `json:"statusHistory"`
}

// apiAddress is the wire format of the shipping address
type apiAddress struct {
	Name          string `json:"name"`
	AddressLine1  string `json:"addressLine1"`
	AddressLine2  string `json:"addressLine2"`
	City          string `json:"city"`
	StateOrRegion string `json:"stateOrRegion"`
	PostalCode    string `json:"postalCode"`
	CountryCode   string `json:"countryCode"`
}

// apiOrder is the wire format of one marketplace order
type apiOrder struct {
	OrderID         string         `json:"orderId"`
	PurchaseDate    time.Time      `json:"purchaseDate"`
	ShippingAddress apiAddress     `json:"shippingAddress"`
	Lines           []apiOrderLine `json:"orderLines"`
}

// apiOrdersResponse is the wire format of the orders listing endpoint
type apiOrdersResponse struct {
	Orders []apiOrder `json:"orders"`
}

// apiListing is the wire format of one catalog listing
type apiListing struct {
	SellerSKU string   `json:"sellerSku"`
	Title     string   `json:"title"`
	Price     apiMoney `json:"price"`
}

// apiListingsResponse is the wire format of the catalog endpoint
type apiListingsResponse struct {
	Listings []apiListing `json:"listings"`
}

// apiErrorResponse is the wire format of marketplace error bodies
type apiErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
