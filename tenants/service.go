// Package tenants is the facade over the backend's tenant management
// endpoints, plus the batch orchestrator used by bulk admin actions.
package tenants

import (
	"context"
	"fmt"
	"time"

	"github.com/jrsteele09/go-admin-client/client"
)

const basePath = "/api/v1/tenants"

// Service exposes the tenant endpoints over the request pipeline.
type Service struct {
	client  *client.Client
	nowTime func() time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithNowTime sets the now time function (primarily for testing).
func WithNowTime(nowFunc func() time.Time) ServiceOption {
	return func(s *Service) { s.nowTime = nowFunc }
}

// New creates a tenant facade.
func New(c *client.Client, opts ...ServiceOption) *Service {
	s := &Service{client: c, nowTime: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Current fetches the tenant the caller belongs to.
func (s *Service) Current(ctx context.Context) (*Tenant, error) {
	var tenant Tenant
	if err := s.client.Get(ctx, basePath+"/me", nil, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// List fetches one page of tenants. Only present, non-empty parameters are
// sent.
func (s *Service) List(ctx context.Context, params ListParams) (*ListData, error) {
	var data ListData
	if err := s.client.Get(ctx, basePath+"/", params.Values(), &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Search lists tenants matching a keyword; otherwise identical to List.
func (s *Service) Search(ctx context.Context, keyword string, params ListParams) (*ListData, error) {
	params.Search = keyword
	return s.List(ctx, params)
}

// Get fetches one tenant by its external ID.
func (s *Service) Get(ctx context.Context, tenantID string) (*Tenant, error) {
	var tenant Tenant
	if err := s.client.Get(ctx, basePath+"/"+tenantID, nil, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Create provisions a new tenant with its seed admin account.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*CreateData, error) {
	if err := client.ValidateStruct(req); err != nil {
		return nil, err
	}
	var data CreateData
	if err := s.client.Post(ctx, basePath+"/register", req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Update modifies a tenant; nil fields are left untouched.
func (s *Service) Update(ctx context.Context, tenantID string, req UpdateRequest) (*Tenant, error) {
	if err := client.ValidateStruct(req); err != nil {
		return nil, err
	}
	var tenant Tenant
	if err := s.client.Put(ctx, basePath+"/"+tenantID, req, &tenant); err != nil {
		return nil, err
	}
	return &tenant, nil
}

// Delete removes a tenant.
func (s *Service) Delete(ctx context.Context, tenantID string) error {
	return s.client.Delete(ctx, basePath+"/"+tenantID)
}

// Stats fetches usage and billing statistics for a tenant.
func (s *Service) Stats(ctx context.Context, tenantID string) (*StatsData, error) {
	var data StatsData
	if err := s.client.Get(ctx, basePath+"/"+tenantID+"/stats", nil, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Export downloads the tenant listing as an opaque file and returns the
// path it was saved under. The default filename is date stamped.
func (s *Service) Export(ctx context.Context, params ListParams) (string, error) {
	filename := fmt.Sprintf("tenants-%s.csv", s.nowTime().Format("20060102"))
	return s.client.Download(ctx, basePath+"/export", params.Values(), filename)
}
