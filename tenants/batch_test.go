package tenants_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-admin-client/client"
	"github.com/jrsteele09/go-admin-client/tenants"
)

func batchServer(t *testing.T) (*httptest.Server, *sync.Map) {
	t.Helper()
	var hits sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID := strings.TrimPrefix(r.URL.Path, "/api/v1/tenants/")
		hits.Store(tenantID, true)
		if strings.HasPrefix(tenantID, "bad") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"code":404,"message":"tenant not found"}`))
			return
		}
		_, _ = w.Write(okEnvelope(tenants.Tenant{TenantID: tenantID, Status: tenants.StatusSuspended}))
	}))
	return srv, &hits
}

func TestBatchDelete(t *testing.T) {
	t.Run("all items succeed", func(t *testing.T) {
		srv, _ := batchServer(t)
		defer srv.Close()
		svc := tenants.New(client.New(srv.URL))

		result, err := svc.BatchDelete(context.Background(), []string{"ten-001", "ten-002"})
		require.NoError(t, err)
		require.Len(t, result, 2)
		require.Empty(t, result.Failed())
	})

	t.Run("partial failure keeps per-item outcomes in input order", func(t *testing.T) {
		srv, hits := batchServer(t)
		defer srv.Close()
		svc := tenants.New(client.New(srv.URL))

		ids := []string{"ten-001", "bad-001", "ten-002", "bad-002"}
		result, err := svc.BatchDelete(context.Background(), ids)
		require.Error(t, err, "summary error reports the failures")
		require.Len(t, result, len(ids))

		for i, item := range result {
			require.Equal(t, ids[i], item.TenantID, "outcomes follow input order")
		}
		require.Nil(t, result[0].Err)
		require.NotNil(t, result[1].Err)
		require.Equal(t, client.KindNotFound, result[1].Err.Kind)
		require.Nil(t, result[2].Err)
		require.NotNil(t, result[3].Err)

		failed := result.Failed()
		require.Len(t, failed, 2)
		require.Equal(t, "bad-001", failed[0].TenantID)

		// Every item must have been attempted despite the failures.
		for _, id := range ids {
			_, attempted := hits.Load(id)
			require.True(t, attempted, "item %s was skipped", id)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		srv, _ := batchServer(t)
		defer srv.Close()
		svc := tenants.New(client.New(srv.URL))

		result, err := svc.BatchDelete(context.Background(), nil)
		require.NoError(t, err)
		require.Empty(t, result)
	})
}

func TestBatchUpdateStatus(t *testing.T) {
	srv, _ := batchServer(t)
	defer srv.Close()

	var gotBody struct {
		Status *string `json:"status"`
	}
	bodySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write(okEnvelope(tenants.Tenant{Status: tenants.StatusSuspended}))
	}))
	defer bodySrv.Close()

	svc := tenants.New(client.New(bodySrv.URL))
	result, err := svc.BatchUpdateStatus(context.Background(), []string{"ten-001"}, tenants.StatusSuspended)
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Nil(t, result[0].Err)
	require.NotNil(t, gotBody.Status)
	require.Equal(t, tenants.StatusSuspended, *gotBody.Status)
}
