package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
)

// ItemType is the enumerated domain of supplies tracked by the ledger.
type ItemType string

const (
	ItemMedical        ItemType = "medical"
	ItemWater          ItemType = "water"
	ItemFood           ItemType = "food"
	ItemShelter        ItemType = "shelter"
	ItemTools          ItemType = "tools"
	ItemPower          ItemType = "power"
	ItemCommunication  ItemType = "communication"
	ItemSanitation     ItemType = "sanitation"
	ItemClothing       ItemType = "clothing"
	ItemTransportation ItemType = "transportation"
	ItemSpecialNeeds   ItemType = "special_needs"
	ItemNone           ItemType = "none"
)

// AllItemTypes lists every item type in a stable order. Ledger rollups emit
// a row for each of these even when current stock is zero.
var AllItemTypes = []ItemType{
	ItemMedical, ItemWater, ItemFood, ItemShelter, ItemTools, ItemPower,
	ItemCommunication, ItemSanitation, ItemClothing, ItemTransportation,
	ItemSpecialNeeds, ItemNone,
}

// Valid reports whether t is a known item type.
func (t ItemType) Valid() bool {
	for _, known := range AllItemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// InventoryItem is a stock line belonging to at most one resource. A nil
// ResourceID means the item is unassigned or in transit.
type InventoryItem struct {
	ID         uuid.UUID  `json:"id"`
	ResourceID *uuid.UUID `json:"resource_id,omitempty"`
	SupplierID *uuid.UUID `json:"supplier_id,omitempty"`
	Name       string     `json:"name"`
	ItemType   ItemType   `json:"item_type"`
	Quantity   int        `json:"quantity"`
	Capacity   int        `json:"capacity"`
	Unit       string     `json:"unit"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// StockStatus classifies a quantity/capacity ratio.
type StockStatus string

const (
	StockLow        StockStatus = "Low"
	StockModerate   StockStatus = "Moderate"
	StockSufficient StockStatus = "Sufficient"
)

// ClassifyStock maps a fill percentage to its status band. Boundaries are
// inclusive on the low end: 25% is Low, 75% is Moderate.
func ClassifyStock(percentage float64) StockStatus {
	switch {
	case percentage <= 25:
		return StockLow
	case percentage <= 75:
		return StockModerate
	default:
		return StockSufficient
	}
}

// StockLevel is the per-item-type rollup for one resource. OverCapacity
// flags the tolerated-but-suspect case of quantity exceeding capacity.
type StockLevel struct {
	ItemType     ItemType    `json:"item_type"`
	Quantity     int         `json:"quantity"`
	Capacity     int         `json:"capacity"`
	Percentage   float64     `json:"percentage"`
	Status       StockStatus `json:"status"`
	OverCapacity bool        `json:"over_capacity,omitempty"`
}

// LocationStock is one resource's contribution to a global item-type total.
type LocationStock struct {
	ResourceID   uuid.UUID   `json:"resource_id"`
	ResourceName string      `json:"resource_name"`
	Quantity     int         `json:"quantity"`
	Capacity     int         `json:"capacity"`
	Percentage   float64     `json:"percentage"`
	Status       StockStatus `json:"status"`
}

// AggregateLevel is the system-wide rollup for one item type with its
// per-location drill-down.
type AggregateLevel struct {
	ItemType      ItemType        `json:"item_type"`
	TotalQuantity int             `json:"total_quantity"`
	TotalCapacity int             `json:"total_capacity"`
	Percentage    float64         `json:"percentage"`
	Status        StockStatus     `json:"status"`
	Locations     []LocationStock `json:"locations"`
}

// ResourceStock pairs a resource with its full per-type stock map, shaped
// for map rendering.
type ResourceStock struct {
	ResourceID uuid.UUID               `json:"resource_id"`
	Name       string                  `json:"name"`
	Location   geo.Point               `json:"location"`
	Levels     map[ItemType]StockLevel `json:"stock_levels"`
}

// TransferStatus tracks the lifecycle of a stock move.
type TransferStatus string

const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// Transfer is a directed move of quantity of one inventory item from a
// source resource to a destination resource.
type Transfer struct {
	ID            uuid.UUID      `json:"id"`
	ItemID        uuid.UUID      `json:"item_id"`
	SourceID      uuid.UUID      `json:"source_id"`
	DestinationID uuid.UUID      `json:"destination_id"`
	Quantity      int            `json:"quantity"`
	Status        TransferStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	CompletedAt   *time.Time     `json:"completed_at,omitempty"`
}

// ResourceRef is the slice of a resource the ledger needs for rollups.
type ResourceRef struct {
	ID       uuid.UUID `json:"id"`
	Name     string    `json:"name"`
	Location geo.Point `json:"location"`
}

// CreateItemRequest is the payload for onboarding a stock line.
type CreateItemRequest struct {
	ResourceID string `json:"resource_id,omitempty"`
	SupplierID string `json:"supplier_id,omitempty"`
	Name       string `json:"name"`
	ItemType   string `json:"item_type"`
	Quantity   int    `json:"quantity"`
	Capacity   int    `json:"capacity"`
	Unit       string `json:"unit"`
}

// CreateTransferRequest is the payload for opening a stock move.
type CreateTransferRequest struct {
	ItemID        string `json:"item_id"`
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	Quantity      int    `json:"quantity"`
}
