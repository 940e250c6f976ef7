package users

import (
	"fmt"
	"time"

	"unicode"
)

// RoleType represents an administrator role either at system or tenant level
type RoleType string

const (
	// System-level roles
	RoleSuperAdmin    RoleType = "super_admin"    // Can manage all tenants and system configuration
	RoleSystemAuditor RoleType = "system_auditor" // Can view all tenant data for auditing

	// Tenant-level roles
	RoleTenantAdmin RoleType = "tenant_admin" // Can manage users and settings within a tenant
	RoleTenantUser  RoleType = "tenant_user"  // Regular user within a tenant
)

// Account status values as reported by the backend.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusBlocked  = "blocked"
)

// Identity is the authenticated user snapshot held by the session store.
// It is immutable by convention: profile updates replace the whole value,
// never individual fields.
type Identity struct {
	ID        int64      `json:"id,omitempty"`         // Numeric database identifier
	UserID    string     `json:"user_id,omitempty"`    // External identifier
	Username  string     `json:"username,omitempty"`   // Unique username
	Email     string     `json:"email,omitempty"`      // User's email address
	FullName  string     `json:"full_name,omitempty"`  // Display name
	Phone     string     `json:"phone,omitempty"`      // Contact number
	AvatarURL string     `json:"avatar_url,omitempty"` // Profile picture URL
	Role      RoleType   `json:"role,omitempty"`       // Effective role
	Status    string     `json:"status,omitempty"`     // Account status
	TenantID  string     `json:"tenant_id,omitempty"`  // Owning tenant, empty for system accounts
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// IsSuperAdmin returns true if the identity has super admin privileges
func (u Identity) IsSuperAdmin() bool {
	return u.Role == RoleSuperAdmin
}

// IsActive reports whether the account may operate.
func (u Identity) IsActive() bool {
	return u.Status == StatusActive
}

// HasTenant checks whether the identity belongs to the given tenant. An
// empty tenant ID matches any identity.
func (u Identity) HasTenant(tenantID string) bool {
	if tenantID == "" {
		return true
	}
	return u.TenantID == tenantID
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}
