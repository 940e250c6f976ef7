package tenants

import (
	"context"

	"github.com/pkg/errors"

	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/internal/utils"
)

// BatchItem is the outcome of one item in a bulk operation.
type BatchItem struct {
	TenantID string
	Err      *client.Error
}

// BatchResult holds one outcome per submitted tenant, in input order
// regardless of completion order.
type BatchResult []BatchItem

// Failed returns the items that did not complete.
func (r BatchResult) Failed() []BatchItem {
	var failed []BatchItem
	for _, item := range r {
		if item.Err != nil {
			failed = append(failed, item)
		}
	}
	return failed
}

// Err returns a summary error when any item failed, nil otherwise.
func (r BatchResult) Err() error {
	failed := r.Failed()
	if len(failed) == 0 {
		return nil
	}
	return errors.Errorf("%d of %d batch items failed, first: %s (%s)",
		len(failed), len(r), failed[0].TenantID, utils.Value(failed[0].Err).Message)
}

// BatchDelete removes the given tenants concurrently, one independent call
// per ID. Every item runs to completion: one failure neither aborts the
// others nor hides their outcomes.
func (s *Service) BatchDelete(ctx context.Context, tenantIDs []string) (BatchResult, error) {
	return s.settle(ctx, tenantIDs, func(ctx context.Context, tenantID string) error {
		return s.Delete(ctx, tenantID)
	})
}

// BatchUpdateStatus sets the status of the given tenants concurrently with
// per-item outcomes.
func (s *Service) BatchUpdateStatus(ctx context.Context, tenantIDs []string, status string) (BatchResult, error) {
	return s.settle(ctx, tenantIDs, func(ctx context.Context, tenantID string) error {
		_, err := s.Update(ctx, tenantID, UpdateRequest{Status: utils.Ptr(status)})
		return err
	})
}

func (s *Service) settle(ctx context.Context, tenantIDs []string, op func(context.Context, string) error) (BatchResult, error) {
	fns := make([]func(context.Context) (struct{}, error), len(tenantIDs))
	for i, tenantID := range tenantIDs {
		tenantID := tenantID
		fns[i] = func(ctx context.Context) (struct{}, error) {
			return struct{}{}, op(ctx, tenantID)
		}
	}

	outcomes := client.SettleAll(ctx, fns)
	result := make(BatchResult, len(outcomes))
	for i, outcome := range outcomes {
		result[i] = BatchItem{TenantID: tenantIDs[i], Err: outcome.Err}
	}
	return result, result.Err()
}
