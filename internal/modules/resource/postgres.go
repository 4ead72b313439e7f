package resource

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
	"github.com/reliefgrid/reliefgrid-backend/internal/geo"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

// ── Resources ─────────────────────────────────────────────────────────────────

const resourceColumns = `id,name,category,description,status,capacity,current_count,current_workload,
	lon,lat,address,assigned_request,assigned_incident,last_assignment_cost,created_at,updated_at`

func (r *postgresRepo) CreateResource(ctx context.Context, res *Resource) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO resources (id,name,category,description,status,capacity,current_count,current_workload,lon,lat,address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		res.ID, res.Name, res.Category, res.Description, res.Status,
		res.Capacity, res.CurrentCount, res.CurrentWorkload,
		res.Location.Lon, res.Location.Lat, res.Address)
	return err
}

func (r *postgresRepo) GetResource(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return scanResource(r.db.QueryRowContext(ctx, `
		SELECT `+resourceColumns+` FROM resources WHERE id=$1`, id))
}

func (r *postgresRepo) ListResources(ctx context.Context) ([]*Resource, error) {
	return r.queryResources(ctx, `SELECT `+resourceColumns+` FROM resources ORDER BY created_at`)
}

func (r *postgresRepo) ListByCategoryAndStatus(ctx context.Context, category Category, status Status) ([]*Resource, error) {
	return r.queryResources(ctx, `
		SELECT `+resourceColumns+` FROM resources
		WHERE category=$1 AND status=$2 ORDER BY created_at`, category, status)
}

func (r *postgresRepo) UpdateResourceCounts(ctx context.Context, id uuid.UUID, currentCount, currentWorkload int) (*Resource, error) {
	if currentCount < 0 || currentWorkload < 0 {
		return nil, apperr.Validation("counts", "must be non-negative")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	res, err := scanResource(tx.QueryRowContext(ctx, `
		SELECT `+resourceColumns+` FROM resources WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, err
	}
	res.CurrentCount = currentCount
	res.CurrentWorkload = currentWorkload
	res.Status = DeriveStatus(currentCount, currentWorkload, res.Capacity)
	if _, err := tx.ExecContext(ctx, `
		UPDATE resources SET current_count=$1,current_workload=$2,status=$3,updated_at=$4 WHERE id=$5`,
		currentCount, currentWorkload, res.Status, time.Now(), id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *postgresRepo) queryResources(ctx context.Context, query string, args ...interface{}) ([]*Resource, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Resource
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanResource(row rowScanner) (*Resource, error) {
	var res Resource
	err := row.Scan(&res.ID, &res.Name, &res.Category, &res.Description, &res.Status,
		&res.Capacity, &res.CurrentCount, &res.CurrentWorkload,
		&res.Location.Lon, &res.Location.Lat, &res.Address,
		&res.AssignedRequest, &res.AssignedIncident, &res.LastAssignmentCost,
		&res.CreatedAt, &res.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("resource: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// ── Requests ──────────────────────────────────────────────────────────────────

const requestColumns = `id,resource_id,item_id,item_type,quantity,requester_id,lon,lat,status,priority,created_at,updated_at`

func (r *postgresRepo) CreateRequest(ctx context.Context, req *ResourceRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO resource_requests (id,resource_id,item_id,item_type,quantity,requester_id,lon,lat,status,priority)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		req.ID, req.ResourceID, req.ItemID, req.ItemType, req.Quantity, req.RequesterID,
		req.Location.Lon, req.Location.Lat, req.Status, req.Priority)
	return err
}

func (r *postgresRepo) GetRequest(ctx context.Context, id uuid.UUID) (*ResourceRequest, error) {
	return scanRequest(r.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM resource_requests WHERE id=$1`, id))
}

func (r *postgresRepo) ListRequests(ctx context.Context) ([]*ResourceRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM resource_requests ORDER BY priority DESC, created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ResourceRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UpdateRequestStatus(ctx context.Context, id uuid.UUID, expected, target RequestStatus) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE resource_requests SET status=$1,updated_at=$2 WHERE id=$3 AND status=$4`,
		target, time.Now(), id, expected)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the row vanished or the status moved under us.
		var current RequestStatus
		err := r.db.QueryRowContext(ctx, `SELECT status FROM resource_requests WHERE id=$1`, id).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("request %s: %w", id, apperr.ErrNotFound)
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("request %s is %s, expected %s: %w", id, current, expected, apperr.ErrInvalidState)
	}
	return nil
}

func scanRequest(row rowScanner) (*ResourceRequest, error) {
	var req ResourceRequest
	err := row.Scan(&req.ID, &req.ResourceID, &req.ItemID, &req.ItemType, &req.Quantity,
		&req.RequesterID, &req.Location.Lon, &req.Location.Lat,
		&req.Status, &req.Priority, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("request: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ── Distributions ─────────────────────────────────────────────────────────────

func (r *postgresRepo) ListDistributions(ctx context.Context) ([]*Distribution, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,resource_id,lon,lat,total_requests,fulfilled_requests,created_at,updated_at
		FROM distributions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Distribution
	for rows.Next() {
		d, err := scanDistribution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *postgresRepo) GetDistribution(ctx context.Context, id uuid.UUID) (*Distribution, error) {
	return scanDistribution(r.db.QueryRowContext(ctx, `
		SELECT id,resource_id,lon,lat,total_requests,fulfilled_requests,created_at,updated_at
		FROM distributions WHERE id=$1`, id))
}

func (r *postgresRepo) IncrementFulfilled(ctx context.Context, id uuid.UUID) (*Distribution, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE distributions SET fulfilled_requests=fulfilled_requests+1,updated_at=$1
		WHERE id=$2 AND fulfilled_requests < total_requests`, time.Now(), id)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		d, err := r.GetDistribution(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("distribution %s already fully fulfilled (%d/%d): %w",
			id, d.FulfilledRequests, d.TotalRequests, apperr.ErrInvalidState)
	}
	return r.GetDistribution(ctx, id)
}

func scanDistribution(row rowScanner) (*Distribution, error) {
	var d Distribution
	err := row.Scan(&d.ID, &d.ResourceID, &d.Location.Lon, &d.Location.Lat,
		&d.TotalRequests, &d.FulfilledRequests, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("distribution: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ── Suppliers ─────────────────────────────────────────────────────────────────

func (r *postgresRepo) CreateSupplier(ctx context.Context, s *Supplier) error {
	var lon, lat *float64
	if s.Location != nil {
		lon, lat = &s.Location.Lon, &s.Location.Lat
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO suppliers (id,name,category,status,lon,lat,contact_name,email,phone,address)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.Name, s.Category, s.Status, lon, lat,
		s.ContactName, s.Email, s.Phone, s.Address)
	return err
}

func (r *postgresRepo) ListSuppliers(ctx context.Context) ([]*Supplier, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,name,category,status,lon,lat,contact_name,email,phone,address,created_at,updated_at
		FROM suppliers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Supplier
	for rows.Next() {
		var s Supplier
		var lon, lat sql.NullFloat64
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Status, &lon, &lat,
			&s.ContactName, &s.Email, &s.Phone, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		if lon.Valid && lat.Valid {
			s.Location = &geo.Point{Lon: lon.Float64, Lat: lat.Float64}
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
