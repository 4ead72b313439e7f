package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reliefgrid/reliefgrid-backend/internal/apperr"
	"github.com/reliefgrid/reliefgrid-backend/internal/modules/resource"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) PendingRequests(ctx context.Context) ([]RequestCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,lon,lat,priority,quantity FROM resource_requests
		WHERE status=$1 ORDER BY priority DESC, created_at`, resource.RequestPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RequestCandidate
	for rows.Next() {
		var c RequestCandidate
		if err := rows.Scan(&c.ID, &c.Location.Lon, &c.Location.Lat, &c.Priority, &c.Quantity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) AvailableResources(ctx context.Context) ([]ResourceCandidate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id,lon,lat,capacity FROM resources
		WHERE status=$1 AND assigned_request IS NULL ORDER BY created_at`, resource.StatusAvailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ResourceCandidate
	for rows.Next() {
		var c ResourceCandidate
		if err := rows.Scan(&c.ID, &c.Location.Lon, &c.Location.Lat, &c.Capacity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ApplyAssignment(ctx context.Context, requestID, resourceID uuid.UUID, cost float64, markInProgress bool) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var reqStatus resource.RequestStatus
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM resource_requests WHERE id=$1 FOR UPDATE`, requestID).Scan(&reqStatus)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("request %s: %w", requestID, apperr.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if reqStatus != resource.RequestPending {
		return fmt.Errorf("request %s is %s: %w", requestID, reqStatus, apperr.ErrInvalidState)
	}

	var resStatus resource.Status
	var assigned *uuid.UUID
	var capacity, count, workload int
	err = tx.QueryRowContext(ctx, `
		SELECT status,assigned_request,capacity,current_count,current_workload
		FROM resources WHERE id=$1 FOR UPDATE`, resourceID).
		Scan(&resStatus, &assigned, &capacity, &count, &workload)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("resource %s: %w", resourceID, apperr.ErrNotFound)
	}
	if err != nil {
		return err
	}
	if resStatus != resource.StatusAvailable || assigned != nil {
		return fmt.Errorf("resource %s is %s: %w", resourceID, resStatus, apperr.ErrInvalidState)
	}

	target := resource.RequestApproved
	if markInProgress {
		target = resource.RequestInProgress
	}
	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		UPDATE resource_requests SET status=$1,resource_id=$2,updated_at=$3 WHERE id=$4`,
		target, resourceID, now, requestID); err != nil {
		return err
	}

	workload++
	status := resource.DeriveStatus(count, workload, capacity)
	if _, err := tx.ExecContext(ctx, `
		UPDATE resources SET assigned_request=$1,last_assignment_cost=$2,
		current_workload=$3,status=$4,updated_at=$5 WHERE id=$6`,
		requestID, cost, workload, status, now, resourceID); err != nil {
		return err
	}
	return tx.Commit()
}
