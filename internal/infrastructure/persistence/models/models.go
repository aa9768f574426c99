// Package models holds the GORM persistence models. Domain types never
// carry persistence tags; conversion happens here.
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sellerhub/backend/internal/domain/inventory"
	"github.com/sellerhub/backend/internal/domain/marketplace"
	"github.com/sellerhub/backend/internal/domain/order"
	"github.com/sellerhub/backend/internal/domain/store"
)

// BaseModel provides common persistence fields for all models
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ---------------------------------------------------------------------------
// Stores
// ---------------------------------------------------------------------------

// StoreModel is the persistence model for a seller store
type StoreModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
	// ClientID and ClientSecret hold AES-GCM ciphertexts, never plaintext
	ClientID     string       `gorm:"type:text;not null"`
	ClientSecret string       `gorm:"type:text;not null"`
	Status       store.Status `gorm:"type:varchar(20);not null;default:'active';index"`
}

// TableName returns the table name for GORM
func (StoreModel) TableName() string {
	return "stores"
}

// ToDomain converts the persistence model to a domain Store
func (m *StoreModel) ToDomain() *store.Store {
	return &store.Store{
		ID:           m.ID,
		Name:         m.Name,
		ClientID:     m.ClientID,
		ClientSecret: m.ClientSecret,
		Status:       m.Status,
	}
}

// ---------------------------------------------------------------------------
// Products and purchase lots
// ---------------------------------------------------------------------------

// ProductModel is the persistence model for a product
type ProductModel struct {
	BaseModel
	SKU       string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	Title     string          `gorm:"type:varchar(500)"`
	SellPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	// Available mirrors the sum of positive lot quantities; it is updated
	// in the same statement pair that changes a lot
	Available int64              `gorm:"not null;default:0"`
	Lots      []PurchaseLotModel `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *inventory.Product {
	lots := make([]inventory.PurchaseLot, 0, len(m.Lots))
	for i := range m.Lots {
		lots = append(lots, m.Lots[i].ToDomain())
	}
	return &inventory.Product{
		ID:        m.ID,
		SKU:       m.SKU,
		Title:     m.Title,
		SellPrice: m.SellPrice,
		Available: m.Available,
		Lots:      lots,
	}
}

// PurchaseLotModel is the persistence model for a purchase lot
type PurchaseLotModel struct {
	BaseModel
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    int64           `gorm:"not null;default:0"`
	CostOfPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AcquiredAt  time.Time       `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (PurchaseLotModel) TableName() string {
	return "purchase_lots"
}

// ToDomain converts the persistence model to a domain PurchaseLot
func (m *PurchaseLotModel) ToDomain() inventory.PurchaseLot {
	return inventory.PurchaseLot{
		ID:          m.ID,
		ProductID:   m.ProductID,
		Quantity:    m.Quantity,
		CostOfPrice: m.CostOfPrice,
		SellPrice:   m.SellPrice,
		AcquiredAt:  m.AcquiredAt,
	}
}

// ---------------------------------------------------------------------------
// Orders
// ---------------------------------------------------------------------------

// OrderModel is the persistence model for an internal order
type OrderModel struct {
	BaseModel
	StoreID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	ExternalOrderID string                  `gorm:"type:varchar(100);not null;uniqueIndex"`
	Channel         marketplace.ChannelType `gorm:"type:varchar(30);not null"`
	CustomerName    string                  `gorm:"type:varchar(200)"`
	Address         string                  `gorm:"type:text"`
	Status          string                  `gorm:"type:varchar(50);not null"`
	PurchasedAt     time.Time               `gorm:"not null;index"`
	Lines           []OrderLineModel        `gorm:"foreignKey:OrderID"`
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order
func (m *OrderModel) ToDomain() order.Order {
	lines := make([]order.Line, 0, len(m.Lines))
	for i := range m.Lines {
		l := &m.Lines[i]
		lines = append(lines, order.Line{
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
			SellPrice:     l.SellPrice,
			Tax:           l.Tax,
		})
	}
	return order.Order{
		ID:              m.ID,
		StoreID:         m.StoreID,
		ExternalOrderID: m.ExternalOrderID,
		Channel:         m.Channel,
		CustomerName:    m.CustomerName,
		Address:         m.Address,
		Status:          m.Status,
		Lines:           lines,
		PurchasedAt:     m.PurchasedAt,
		CreatedAt:       m.CreatedAt,
	}
}

// OrderModelFromDomain creates a persistence model from a domain Order
func OrderModelFromDomain(o *order.Order) *OrderModel {
	id := o.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	m := &OrderModel{
		BaseModel:       BaseModel{ID: id},
		StoreID:         o.StoreID,
		ExternalOrderID: o.ExternalOrderID,
		Channel:         o.Channel,
		CustomerName:    o.CustomerName,
		Address:         o.Address,
		Status:          o.Status,
		PurchasedAt:     o.PurchasedAt,
	}
	for _, l := range o.Lines {
		m.Lines = append(m.Lines, OrderLineModel{
			BaseModel:     BaseModel{ID: uuid.New()},
			OrderID:       id,
			ProductID:     l.ProductID,
			SKU:           l.SKU,
			Quantity:      l.Quantity,
			PurchasePrice: l.PurchasePrice,
			SellPrice:     l.SellPrice,
			Tax:           l.Tax,
		})
	}
	return m
}

// OrderLineModel is the persistence model for one order line
type OrderLineModel struct {
	BaseModel
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU           string          `gorm:"type:varchar(100);not null"`
	Quantity      int64           `gorm:"not null"`
	PurchasePrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SellPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Tax           decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
}

// TableName returns the table name for GORM
func (OrderLineModel) TableName() string {
	return "order_lines"
}

// ---------------------------------------------------------------------------
// Allocation outcome records
// ---------------------------------------------------------------------------

// StockAlertModel records a shortfall detected during allocation
type StockAlertModel struct {
	BaseModel
	StoreID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	ExternalOrderID string                  `gorm:"type:varchar(100);not null;index"`
	Channel         marketplace.ChannelType `gorm:"type:varchar(30);not null"`
	SKU             string                  `gorm:"type:varchar(100);not null;index"`
	Needed          int64                   `gorm:"not null"`
	Available       int64                   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockAlertModel) TableName() string {
	return "stock_alerts"
}

// FailedOrderModel records an order that failed allocation for a
// non-stock reason
type FailedOrderModel struct {
	BaseModel
	StoreID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	ExternalOrderID string                  `gorm:"type:varchar(100);not null;index"`
	Channel         marketplace.ChannelType `gorm:"type:varchar(30);not null"`
	Reason          string                  `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (FailedOrderModel) TableName() string {
	return "failed_orders"
}

// SkippedOrderModel records an order deduplicated against an existing
// external order id
type SkippedOrderModel struct {
	BaseModel
	StoreID         uuid.UUID               `gorm:"type:uuid;not null;index"`
	ExternalOrderID string                  `gorm:"type:varchar(100);not null;index"`
	Channel         marketplace.ChannelType `gorm:"type:varchar(30);not null"`
	Reason          string                  `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (SkippedOrderModel) TableName() string {
	return "skipped_orders"
}

// AllModels lists every model for migration in tests
func AllModels() []any {
	return []any{
		&StoreModel{},
		&ProductModel{},
		&PurchaseLotModel{},
		&OrderModel{},
		&OrderLineModel{},
		&StockAlertModel{},
		&FailedOrderModel{},
		&SkippedOrderModel{},
	}
}
