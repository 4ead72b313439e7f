package inventory

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines data access for inventory items and transfers.
type Repository interface {
	// Items
	CreateItem(ctx context.Context, item *InventoryItem) error
	GetItem(ctx context.Context, id uuid.UUID) (*InventoryItem, error)
	ListItems(ctx context.Context) ([]*InventoryItem, error)
	ItemsByResource(ctx context.Context, resourceID uuid.UUID) ([]*InventoryItem, error)

	// ListResourceRefs returns the id/name/location slice of every
	// resource, including those without any inventory.
	ListResourceRefs(ctx context.Context) ([]*ResourceRef, error)
	GetResourceRef(ctx context.Context, id uuid.UUID) (*ResourceRef, error)

	// Transfers
	CreateTransfer(ctx context.Context, t *Transfer) error
	GetTransfer(ctx context.Context, id uuid.UUID) (*Transfer, error)
	ListTransfers(ctx context.Context) ([]*Transfer, error)
	// ApplyTransferCompletion atomically flips the transfer from pending to
	// completed, re-validates the source quantity, decrements the source
	// item and increments (or creates) the matching destination item. It
	// fails with ErrInvalidState if the transfer is no longer pending and
	// with ErrInsufficientQuantity if stock ran out since creation; in both
	// cases no stock is mutated.
	ApplyTransferCompletion(ctx context.Context, id uuid.UUID) (*Transfer, error)
	// CancelTransfer flips pending to cancelled with no stock mutation,
	// failing with ErrInvalidState from any other state.
	CancelTransfer(ctx context.Context, id uuid.UUID) (*Transfer, error)
}
