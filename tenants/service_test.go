package tenants_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/tenants"
)

func okEnvelope(data any) []byte {
	raw, _ := json.Marshal(data)
	env, _ := json.Marshal(map[string]any{"code": 200, "message": "ok", "data": json.RawMessage(raw)})
	return env
}

func TestListParams_Values(t *testing.T) {
	t.Run("zero params yield an empty query", func(t *testing.T) {
		require.Empty(t, tenants.ListParams{}.Values())
	})

	t.Run("only present params are sent", func(t *testing.T) {
		q := tenants.ListParams{Page: 2, Size: 50, Status: tenants.StatusActive}.Values()
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "50", q.Get("size"))
		require.Equal(t, "active", q.Get("status"))
		require.False(t, q.Has("plan_type"))
		require.False(t, q.Has("search"))
		require.False(t, q.Has("sort"))
	})

	t.Run("full params", func(t *testing.T) {
		q := tenants.ListParams{
			Page: 1, Size: 10,
			Status:   tenants.StatusSuspended,
			PlanType: tenants.PlanPro,
			Search:   "acme",
			Sort:     "created_at",
			Order:    "desc",
		}.Values()
		require.Len(t, q, 7)
		require.Equal(t, "acme", q.Get("search"))
		require.Equal(t, "pro", q.Get("plan_type"))
	})
}

func TestService_Endpoints(t *testing.T) {
	sample := tenants.Tenant{ID: 1, TenantID: "ten-001", Name: "Acme", Status: tenants.StatusActive, PlanType: tenants.PlanBasic}

	var gotMethod, gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.RawQuery
		switch {
		case r.URL.Path == "/api/v1/tenants/" && r.Method == http.MethodGet:
			_, _ = w.Write(okEnvelope(tenants.ListData{
				Tenants:    []tenants.Tenant{sample},
				Pagination: tenants.Pagination{Page: 1, Size: 20, Total: 1, Pages: 1},
			}))
		case r.URL.Path == "/api/v1/tenants/register":
			_, _ = w.Write(okEnvelope(tenants.CreateData{
				Tenant:            sample,
				SetupInstructions: tenants.SetupInstructions{SchemaCreated: true, TablesCreated: true},
			}))
		case r.URL.Path == "/api/v1/tenants/ten-001/stats":
			_, _ = w.Write(okEnvelope(tenants.StatsData{
				TenantID:  "ten-001",
				UserStats: tenants.UserStats{TotalUsers: 12, ActiveUsers: 9},
			}))
		default:
			_, _ = w.Write(okEnvelope(sample))
		}
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	svc := tenants.New(c)
	ctx := context.Background()

	t.Run("current", func(t *testing.T) {
		tenant, err := svc.Current(ctx)
		require.NoError(t, err)
		require.Equal(t, http.MethodGet, gotMethod)
		require.Equal(t, "/api/v1/tenants/me", gotPath)
		require.Equal(t, "ten-001", tenant.TenantID)
	})

	t.Run("list with params", func(t *testing.T) {
		data, err := svc.List(ctx, tenants.ListParams{Page: 3, Status: tenants.StatusActive})
		require.NoError(t, err)
		require.Equal(t, "/api/v1/tenants/", gotPath)
		require.Equal(t, "page=3&status=active", gotQuery)
		require.Len(t, data.Tenants, 1)
		require.Equal(t, 1, data.Pagination.Total)
	})

	t.Run("search sets the keyword", func(t *testing.T) {
		_, err := svc.Search(ctx, "acme", tenants.ListParams{Size: 5})
		require.NoError(t, err)
		require.Equal(t, "search=acme&size=5", gotQuery)
	})

	t.Run("get by id", func(t *testing.T) {
		tenant, err := svc.Get(ctx, "ten-001")
		require.NoError(t, err)
		require.Equal(t, "/api/v1/tenants/ten-001", gotPath)
		require.Equal(t, "Acme", tenant.Name)
	})

	t.Run("create posts to register", func(t *testing.T) {
		data, err := svc.Create(ctx, tenants.CreateRequest{
			Name: "Acme",
			AdminUser: tenants.AdminUserRequest{
				FullName: "Ada Admin",
				Email:    "ada@acme.test",
				Password: "Passw0rd1",
			},
		})
		require.NoError(t, err)
		require.Equal(t, http.MethodPost, gotMethod)
		require.Equal(t, "/api/v1/tenants/register", gotPath)
		require.True(t, data.SetupInstructions.SchemaCreated)
	})

	t.Run("update puts to the tenant path", func(t *testing.T) {
		name := "Acme Corp"
		_, err := svc.Update(ctx, "ten-001", tenants.UpdateRequest{Name: &name})
		require.NoError(t, err)
		require.Equal(t, http.MethodPut, gotMethod)
		require.Equal(t, "/api/v1/tenants/ten-001", gotPath)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, "ten-001"))
		require.Equal(t, http.MethodDelete, gotMethod)
		require.Equal(t, "/api/v1/tenants/ten-001", gotPath)
	})

	t.Run("stats", func(t *testing.T) {
		data, err := svc.Stats(ctx, "ten-001")
		require.NoError(t, err)
		require.Equal(t, "/api/v1/tenants/ten-001/stats", gotPath)
		require.Equal(t, int64(12), data.UserStats.TotalUsers)
	})
}

func TestService_CreateValidatesLocally(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("invalid request must not reach the network")
	}))
	defer srv.Close()

	svc := tenants.New(client.New(srv.URL))
	_, err := svc.Create(context.Background(), tenants.CreateRequest{
		Name: "Acme",
		AdminUser: tenants.AdminUserRequest{
			FullName: "Ada Admin",
			Email:    "not-an-email",
			Password: "Passw0rd1",
		},
	})

	var cerr *client.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, client.KindValidation, cerr.Kind)
	require.NotEmpty(t, cerr.FieldErrors)
}

func TestService_Export(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/tenants/export", r.URL.Path)
		require.Equal(t, "active", r.URL.Query().Get("status"))
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("tenant_id,name\nten-001,Acme\n"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	fixedNow := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	c := client.New(srv.URL, client.WithDownloadDir(dir))
	svc := tenants.New(c, tenants.WithNowTime(func() time.Time { return fixedNow }))

	path, err := svc.Export(context.Background(), tenants.ListParams{Status: tenants.StatusActive})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "tenants-20260314.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "ten-001")
}
