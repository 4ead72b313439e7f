package inventory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// ── Items ─────────────────────────────────────────────────────────────────────

const itemColumns = `id,resource_id,supplier_id,name,item_type,quantity,capacity,unit,created_at,updated_at`

func (r *postgresRepo) CreateItem(ctx context.Context, item *InventoryItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO inventory_items (id,resource_id,supplier_id,name,item_type,quantity,capacity,unit)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		item.ID, item.ResourceID, item.SupplierID, item.Name,
		item.ItemType, item.Quantity, item.Capacity, item.Unit)
	return err
}

func (r *postgresRepo) GetItem(ctx context.Context, id uuid.UUID) (*InventoryItem, error) {
	return scanItem(r.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM inventory_items WHERE id=$1`, id))
}

func (r *postgresRepo) ListItems(ctx context.Context) ([]*InventoryItem, error) {
	return r.queryItems(ctx, `SELECT `+itemColumns+` FROM inventory_items ORDER BY created_at`)
}

func (r *postgresRepo) ItemsByResource(ctx context.Context, resourceID uuid.UUID) ([]*InventoryItem, error) {
	return r.queryItems(ctx, `
		SELECT `+itemColumns+` FROM inventory_items WHERE resource_id=$1 ORDER BY created_at`, resourceID)
}

func (r *postgresRepo) queryItems(ctx context.Context, query string, args ...interface{}) ([]*InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*InventoryItem, error) {
	var item InventoryItem
	err := row.Scan(&item.ID, &item.ResourceID, &item.SupplierID, &item.Name,
		&item.ItemType, &item.Quantity, &item.Capacity, &item.Unit,
		&item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ── Resource refs ─────────────────────────────────────────────────────────────

func (r *postgresRepo) ListResourceRefs(ctx context.Context) ([]*ResourceRef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id,name,lon,lat FROM resources ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ResourceRef
	for rows.Next() {
		var ref ResourceRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Location.Lon, &ref.Location.Lat); err != nil {
			return nil, err
		}
		out = append(out, &ref)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetResourceRef(ctx context.Context, id uuid.UUID) (*ResourceRef, error) {
	var ref ResourceRef
	err := r.db.QueryRowContext(ctx, `SELECT id,name,lon,lat FROM resources WHERE id=$1`, id).
		Scan(&ref.ID, &ref.Name, &ref.Location.Lon, &ref.Location.Lat)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resource: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

// ── Transfers ─────────────────────────────────────────────────────────────────

const transferColumns = `id,item_id,source_id,destination_id,quantity,status,created_at,completed_at`

func (r *postgresRepo) CreateTransfer(ctx context.Context, t *Transfer) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transfers (id,item_id,source_id,destination_id,quantity,status)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.ItemID, t.SourceID, t.DestinationID, t.Quantity, t.Status)
	return err
}

func (r *postgresRepo) GetTransfer(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	return scanTransfer(r.db.QueryRowContext(ctx, `
		SELECT `+transferColumns+` FROM transfers WHERE id=$1`, id))
}

func (r *postgresRepo) ListTransfers(ctx context.Context) ([]*Transfer, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+transferColumns+` FROM transfers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Transfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ApplyTransferCompletion(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	t, err := scanTransfer(tx.QueryRowContext(ctx, `
		SELECT `+transferColumns+` FROM transfers WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	if t.Status != TransferPending {
		return nil, fmt.Errorf("transfer %s is %s: %w", id, t.Status, apperr.ErrInvalidState)
	}

	item, err := scanItem(tx.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM inventory_items WHERE id=$1 FOR UPDATE`, t.ItemID))
	if err != nil {
		return nil, err
	}
	// Stock may have been drained by a concurrent transfer since creation.
	if item.Quantity < t.Quantity {
		return nil, fmt.Errorf("item %s holds %d, need %d: %w",
			item.ID, item.Quantity, t.Quantity, apperr.ErrInsufficientQuantity)
	}

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE inventory_items SET quantity=quantity-$1,updated_at=$2 WHERE id=$3`,
		t.Quantity, now, item.ID); err != nil {
		return nil, err
	}

	// Increment a matching item at the destination, or create one.
	var destItemID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM inventory_items
		WHERE resource_id=$1 AND item_type=$2 AND name=$3 FOR UPDATE`,
		t.DestinationID, item.ItemType, item.Name).Scan(&destItemID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO inventory_items (id,resource_id,supplier_id,name,item_type,quantity,capacity,unit)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			uuid.New(), t.DestinationID, item.SupplierID, item.Name,
			item.ItemType, t.Quantity, item.Capacity, item.Unit); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if _, err := tx.ExecContext(ctx, `
			UPDATE inventory_items SET quantity=quantity+$1,updated_at=$2 WHERE id=$3`,
			t.Quantity, now, destItemID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE transfers SET status=$1,completed_at=$2 WHERE id=$3`,
		TransferCompleted, now, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	t.Status = TransferCompleted
	t.CompletedAt = &now
	return t, nil
}

func (r *postgresRepo) CancelTransfer(ctx context.Context, id uuid.UUID) (*Transfer, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE transfers SET status=$1 WHERE id=$2 AND status=$3`,
		TransferCancelled, id, TransferPending)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		t, err := r.GetTransfer(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("transfer %s is %s: %w", id, t.Status, apperr.ErrInvalidState)
	}
	return r.GetTransfer(ctx, id)
}

func scanTransfer(row rowScanner) (*Transfer, error) {
	var t Transfer
	err := row.Scan(&t.ID, &t.ItemID, &t.SourceID, &t.DestinationID,
		&t.Quantity, &t.Status, &t.CreatedAt, &t.CompletedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("transfer: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}
