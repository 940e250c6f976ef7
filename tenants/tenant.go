package tenants

import (
	"net/url"
	"strconv"
	"time"
)

// Tenant status values as reported by the backend.
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusPending   = "pending"
)

// Plan tiers.
const (
	PlanFree       = "free"
	PlanBasic      = "basic"
	PlanPro        = "pro"
	PlanEnterprise = "enterprise"
)

// Tenant is a multi-tenant organization record.
type Tenant struct {
	ID         int64          `json:"id"`
	TenantID   string         `json:"tenant_id"`
	Name       string         `json:"name"`
	Domain     string         `json:"domain,omitempty"`
	AvatarURL  string         `json:"avatar_url,omitempty"`
	Status     string         `json:"status"`
	PlanType   string         `json:"plan_type"`
	MaxUsers   int64          `json:"max_users"`
	MaxStorage int64          `json:"max_storage"`
	SchemaName string         `json:"schema_name,omitempty"`
	Settings   map[string]any `json:"settings,omitempty"`
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int `json:"page"`
	Size  int `json:"size"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// ListData is the payload of the tenant listing endpoint.
type ListData struct {
	Tenants    []Tenant   `json:"tenants"`
	Pagination Pagination `json:"pagination"`
}

// ListParams filters and pages the tenant listing. Zero values are omitted
// from the query string entirely rather than sent as empty parameters.
type ListParams struct {
	Page     int
	Size     int
	Status   string
	PlanType string
	Search   string
	Sort     string
	Order    string
}

// Values renders the present, non-empty parameters as a query string.
func (p ListParams) Values() url.Values {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.PlanType != "" {
		q.Set("plan_type", p.PlanType)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	if p.Order != "" {
		q.Set("order", p.Order)
	}
	return q
}

// AdminUserRequest seeds the first administrator of a new tenant.
type AdminUserRequest struct {
	FullName string `json:"full_name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone,omitempty"`
	Password string `json:"password" validate:"required,min=8"`
}

// CreateRequest provisions a new tenant with its admin account.
type CreateRequest struct {
	Name       string           `json:"name" validate:"required"`
	Domain     string           `json:"domain,omitempty" validate:"omitempty,fqdn"`
	AdminUser  AdminUserRequest `json:"admin_user" validate:"required"`
	PlanType   string           `json:"plan_type,omitempty"`
	MaxUsers   int64            `json:"max_users,omitempty"`
	MaxStorage int64            `json:"max_storage,omitempty"`
	AvatarURL  string           `json:"avatar_url,omitempty" validate:"omitempty,url"`
	Settings   map[string]any   `json:"settings,omitempty"`
}

// SetupInstructions reports which provisioning steps completed.
type SetupInstructions struct {
	SchemaCreated         bool `json:"schema_created"`
	TablesCreated         bool `json:"tables_created"`
	AdminAccountActivated bool `json:"admin_account_activated"`
}

// CreateData is the payload of a successful tenant creation.
type CreateData struct {
	Tenant            Tenant            `json:"tenant"`
	SetupInstructions SetupInstructions `json:"setup_instructions"`
}

// UpdateRequest carries the optional fields of a tenant update. Nil fields
// are left untouched server-side.
type UpdateRequest struct {
	Name       *string        `json:"name,omitempty"`
	Domain     *string        `json:"domain,omitempty" validate:"omitempty,fqdn"`
	AvatarURL  *string        `json:"avatar_url,omitempty" validate:"omitempty,url"`
	MaxUsers   *int64         `json:"max_users,omitempty"`
	MaxStorage *int64         `json:"max_storage,omitempty"`
	Status     *string        `json:"status,omitempty"`
	Settings   map[string]any `json:"settings,omitempty"`
}

// UserStats summarizes a tenant's user population.
type UserStats struct {
	TotalUsers        int64 `json:"total_users"`
	ActiveUsers       int64 `json:"active_users"`
	InactiveUsers     int64 `json:"inactive_users"`
	NewUsersThisMonth int64 `json:"new_users_this_month"`
}

// StorageStats summarizes a tenant's storage consumption.
type StorageStats struct {
	TotalStorage      int64   `json:"total_storage"`
	UsedStorage       int64   `json:"used_storage"`
	StoragePercentage float64 `json:"storage_percentage"`
}

// APIStats summarizes a tenant's API usage.
type APIStats struct {
	TotalRequests     int64 `json:"total_requests"`
	RequestsThisMonth int64 `json:"requests_this_month"`
	RateLimit         int64 `json:"rate_limit"`
}

// BillingStats summarizes a tenant's billing position.
type BillingStats struct {
	CurrentPlan     string     `json:"current_plan"`
	MonthlyCost     float64    `json:"monthly_cost"`
	NextBillingDate *time.Time `json:"next_billing_date,omitempty"`
}

// StatsData is the payload of the tenant stats endpoint.
type StatsData struct {
	TenantID     string       `json:"tenant_id"`
	UserStats    UserStats    `json:"user_stats"`
	StorageStats StorageStats `json:"storage_stats"`
	APIStats     APIStats     `json:"api_stats"`
	BillingStats BillingStats `json:"billing_stats"`
}
