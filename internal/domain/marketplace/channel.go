package marketplace

// ChannelType represents a fulfillment-network category used to partition
// marketplace order queries.
type ChannelType string

const (
	// ChannelSellerFulfilled represents orders the seller ships themselves (MFN)
	ChannelSellerFulfilled ChannelType = "SELLER_FULFILLED"
	// ChannelWarehouseFulfilled represents orders shipped from marketplace warehouses (AFN)
	ChannelWarehouseFulfilled ChannelType = "WAREHOUSE_FULFILLED"
	// ChannelThirdPartyLogistics represents orders fulfilled by a 3PL provider
	ChannelThirdPartyLogistics ChannelType = "TPL_FULFILLED"
)

// OrderedChannelTypes is the fixed order in which channels are queried
// during a sync pass.
var OrderedChannelTypes = []ChannelType{
	ChannelSellerFulfilled,
	ChannelWarehouseFulfilled,
	ChannelThirdPartyLogistics,
}

// IsValid returns true if the channel type is valid
func (c ChannelType) IsValid() bool {
	switch c {
	case ChannelSellerFulfilled, ChannelWarehouseFulfilled, ChannelThirdPartyLogistics:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChannelType
func (c ChannelType) String() string {
	return string(c)
}
