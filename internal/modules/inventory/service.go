package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
)

// Service defines the stock-ledger read side and the transfer engine.
type Service interface {
	CreateItem(ctx context.Context, req CreateItemRequest) (*InventoryItem, error)
	ListItems(ctx context.Context) ([]*InventoryItem, error)

	// ResourceStockLevels sums quantity/capacity per item type across one
	// resource's items. Every enumerated type gets a row, zero-stock ones
	// included.
	ResourceStockLevels(ctx context.Context, resourceID string) (map[ItemType]StockLevel, error)
	// AggregatedStockLevels sums across all resources and lists each
	// contributing resource per item type for drill-down.
	AggregatedStockLevels(ctx context.Context) (map[ItemType]AggregateLevel, error)
	// AllLocationsStockLevels returns every resource with its stock map,
	// shaped for map rendering. Resources with zero inventory emit
	// all-zero rows, they are never omitted.
	AllLocationsStockLevels(ctx context.Context) ([]*ResourceStock, error)

	CreateTransfer(ctx context.Context, req CreateTransferRequest) (*Transfer, error)
	CompleteTransfer(ctx context.Context, id string) (*Transfer, error)
	CancelTransfer(ctx context.Context, id string) (*Transfer, error)
	ListTransfers(ctx context.Context) ([]*Transfer, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service { return &service{repo: repo} }

// ── Items ─────────────────────────────────────────────────────────────────────

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*InventoryItem, error) {
	if req.Name == "" {
		return nil, apperr.Validation("name", "is required")
	}
	itemType := ItemType(req.ItemType)
	if !itemType.Valid() {
		return nil, apperr.Validation("item_type", fmt.Sprintf("unknown item type %q", req.ItemType))
	}
	if req.Quantity < 0 {
		return nil, apperr.Validation("quantity", "must be non-negative")
	}
	if req.Capacity < 0 {
		return nil, apperr.Validation("capacity", "must be non-negative")
	}

	item := &InventoryItem{
		ID:       uuid.New(),
		Name:     req.Name,
		ItemType: itemType,
		Quantity: req.Quantity,
		Capacity: req.Capacity,
		Unit:     req.Unit,
	}
	if req.ResourceID != "" {
		rid, err := uuid.Parse(req.ResourceID)
		if err != nil {
			return nil, apperr.Validation("resource_id", "invalid resource id")
		}
		item.ResourceID = &rid
	}
	if req.SupplierID != "" {
		sid, err := uuid.Parse(req.SupplierID)
		if err != nil {
			return nil, apperr.Validation("supplier_id", "invalid supplier id")
		}
		item.SupplierID = &sid
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

func (s *service) ListItems(ctx context.Context) ([]*InventoryItem, error) {
	return s.repo.ListItems(ctx)
}

// ── Stock ledger ──────────────────────────────────────────────────────────────

func (s *service) ResourceStockLevels(ctx context.Context, resourceID string) (map[ItemType]StockLevel, error) {
	rid, err := uuid.Parse(resourceID)
	if err != nil {
		return nil, apperr.Validation("resource_id", "invalid resource id")
	}
	if _, err := s.repo.GetResourceRef(ctx, rid); err != nil {
		return nil, err
	}
	items, err := s.repo.ItemsByResource(ctx, rid)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	return levelsFromItems(items), nil
}

func (s *service) AggregatedStockLevels(ctx context.Context) (map[ItemType]AggregateLevel, error) {
	refs, err := s.repo.ListResourceRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}

	byResource := make(map[uuid.UUID][]*InventoryItem)
	for _, item := range items {
		if item.ResourceID == nil {
			continue // in transit, not at any location
		}
		byResource[*item.ResourceID] = append(byResource[*item.ResourceID], item)
	}

	out := make(map[ItemType]AggregateLevel, len(AllItemTypes))
	for _, t := range AllItemTypes {
		agg := AggregateLevel{ItemType: t, Locations: []LocationStock{}}
		for _, ref := range refs {
			level := levelsFromItems(byResource[ref.ID])[t]
			agg.TotalQuantity += level.Quantity
			agg.TotalCapacity += level.Capacity
			if level.Quantity > 0 || level.Capacity > 0 {
				agg.Locations = append(agg.Locations, LocationStock{
					ResourceID:   ref.ID,
					ResourceName: ref.Name,
					Quantity:     level.Quantity,
					Capacity:     level.Capacity,
					Percentage:   level.Percentage,
					Status:       level.Status,
				})
			}
		}
		agg.Percentage = percent(agg.TotalQuantity, agg.TotalCapacity)
		agg.Status = ClassifyStock(agg.Percentage)
		out[t] = agg
	}
	return out, nil
}

func (s *service) AllLocationsStockLevels(ctx context.Context) ([]*ResourceStock, error) {
	refs, err := s.repo.ListResourceRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load resources: %w", err)
	}
	out := make([]*ResourceStock, 0, len(refs))
	for _, ref := range refs {
		items, err := s.repo.ItemsByResource(ctx, ref.ID)
		if err != nil {
			return nil, fmt.Errorf("load items for %s: %w", ref.ID, err)
		}
		out = append(out, &ResourceStock{
			ResourceID: ref.ID,
			Name:       ref.Name,
			Location:   ref.Location,
			Levels:     levelsFromItems(items),
		})
	}
	return out, nil
}

// levelsFromItems builds the full per-type stock map for one resource's
// items. Item types with no stock still get an all-zero row.
func levelsFromItems(items []*InventoryItem) map[ItemType]StockLevel {
	levels := make(map[ItemType]StockLevel, len(AllItemTypes))
	for _, t := range AllItemTypes {
		levels[t] = StockLevel{ItemType: t, Percentage: 0, Status: ClassifyStock(0)}
	}
	for _, item := range items {
		level := levels[item.ItemType]
		level.Quantity += item.Quantity
		level.Capacity += item.Capacity
		levels[item.ItemType] = level
	}
	for t, level := range levels {
		level.Percentage = percent(level.Quantity, level.Capacity)
		level.Status = ClassifyStock(level.Percentage)
		level.OverCapacity = level.Quantity > level.Capacity && level.Capacity > 0
		levels[t] = level
	}
	return levels
}

// percent returns 100*quantity/capacity, and 0 for zero capacity.
func percent(quantity, capacity int) float64 {
	if capacity <= 0 {
		return 0
	}
	return 100 * float64(quantity) / float64(capacity)
}

// ── Transfer engine ───────────────────────────────────────────────────────────

func (s *service) CreateTransfer(ctx context.Context, req CreateTransferRequest) (*Transfer, error) {
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, apperr.Validation("item_id", "invalid item id")
	}
	sourceID, err := uuid.Parse(req.SourceID)
	if err != nil {
		return nil, apperr.Validation("source_id", "invalid resource id")
	}
	destID, err := uuid.Parse(req.DestinationID)
	if err != nil {
		return nil, apperr.Validation("destination_id", "invalid resource id")
	}
	if req.Quantity <= 0 {
		return nil, apperr.Validation("quantity", "must be positive")
	}
	if sourceID == destID {
		return nil, apperr.Validation("destination_id", "source and destination are the same resource")
	}

	item, err := s.repo.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item.ResourceID == nil || *item.ResourceID != sourceID {
		return nil, apperr.Validation("item_id", "item does not belong to the source resource")
	}
	if _, err := s.repo.GetResourceRef(ctx, destID); err != nil {
		return nil, err
	}
	// Pre-check at creation time; completion re-validates because
	// concurrent transfers may drain the item in between.
	if item.Quantity < req.Quantity {
		return nil, fmt.Errorf("item %s holds %d, need %d: %w",
			item.ID, item.Quantity, req.Quantity, apperr.ErrInsufficientQuantity)
	}

	t := &Transfer{
		ID:            uuid.New(),
		ItemID:        itemID,
		SourceID:      sourceID,
		DestinationID: destID,
		Quantity:      req.Quantity,
		Status:        TransferPending,
	}
	if err := s.repo.CreateTransfer(ctx, t); err != nil {
		return nil, fmt.Errorf("create transfer: %w", err)
	}
	return t, nil
}

func (s *service) CompleteTransfer(ctx context.Context, id string) (*Transfer, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid transfer id")
	}
	return s.repo.ApplyTransferCompletion(ctx, tid)
}

func (s *service) CancelTransfer(ctx context.Context, id string) (*Transfer, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("id", "invalid transfer id")
	}
	return s.repo.CancelTransfer(ctx, tid)
}

func (s *service) ListTransfers(ctx context.Context) ([]*Transfer, error) {
	return s.repo.ListTransfers(ctx)
}
