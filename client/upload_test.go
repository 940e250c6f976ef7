package client_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-admin-client/client"
)

func TestUpload(t *testing.T) {
	received := make(chan []byte, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		require.Equal(t, "report.bin", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		received <- data
		_, _ = w.Write(okEnvelope(map[string]string{"status": "stored"}))
	}))
	defer srv.Close()

	payload := bytes.Repeat([]byte("abcdefgh"), 32*1024) // large enough for several reads

	t.Run("progress is monotonic with 0 and 100 exactly once", func(t *testing.T) {
		var progress []int
		c := client.New(srv.URL)

		var out struct {
			Status string `json:"status"`
		}
		err := c.Upload(context.Background(), "/files", bytes.NewReader(payload), "report.bin", func(pct int) {
			progress = append(progress, pct)
		}, &out)
		require.NoError(t, err)
		require.Equal(t, "stored", out.Status)
		require.Equal(t, payload, <-received)

		require.NotEmpty(t, progress)
		require.Equal(t, 0, progress[0])
		require.Equal(t, 100, progress[len(progress)-1])

		zeros, hundreds := 0, 0
		for i, pct := range progress {
			require.GreaterOrEqual(t, pct, 0)
			require.LessOrEqual(t, pct, 100)
			if i > 0 {
				require.GreaterOrEqual(t, pct, progress[i-1], "progress must not decrease")
			}
			if pct == 0 {
				zeros++
			}
			if pct == 100 {
				hundreds++
			}
		}
		require.Equal(t, 1, zeros)
		require.Equal(t, 1, hundreds)
	})

	t.Run("nil progress callback is allowed", func(t *testing.T) {
		c := client.New(srv.URL)
		err := c.Upload(context.Background(), "/files", bytes.NewReader(payload), "report.bin", nil, nil)
		require.NoError(t, err)
		<-received
	})
}

func TestUpload_FailureIsClassified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	c := client.New(srv.URL)
	err := c.Upload(context.Background(), "/files", bytes.NewReader([]byte("x")), "x.bin", nil, nil)

	var cerr *client.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, client.KindUnknown, cerr.Kind)
	require.Equal(t, http.StatusRequestEntityTooLarge, cerr.HTTPStatus)
}
