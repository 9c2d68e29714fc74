package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fwojciec/linkmeta"
	lmhttp "github.com/fwojciec/linkmeta/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ linkmeta.ImageValidator = (*lmhttp.ImageValidator)(nil)

func TestImageValidator_ValidateImage(t *testing.T) {
	t.Parallel()

	t.Run("accepts image content type on HEAD", func(t *testing.T) {
		t.Parallel()

		var gets atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				gets.Add(1)
			}
			w.Header().Set("Content-Type", "image/jpeg")
		}))
		defer server.Close()

		err := lmhttp.NewImageValidator().ValidateImage(context.Background(), server.URL+"/a.jpg")

		require.NoError(t, err)
		assert.Zero(t, gets.Load(), "GET fallback should not run")
	})

	t.Run("accepts HEAD without content type", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header()["Content-Type"] = nil
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := lmhttp.NewImageValidator().ValidateImage(context.Background(), server.URL+"/a")

		require.NoError(t, err)
	})

	t.Run("rejects non-image content type without GET retry", func(t *testing.T) {
		t.Parallel()

		var gets atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				gets.Add(1)
			}
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html></html>"))
		}))
		defer server.Close()

		err := lmhttp.NewImageValidator().ValidateImage(context.Background(), server.URL+"/page")

		require.Error(t, err)
		assert.Zero(t, gets.Load())
	})

	t.Run("falls back to GET when HEAD is refused", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.Header().Set("Content-Type", "application/octet-stream")
			_, _ = w.Write([]byte{0xff, 0xd8, 0xff})
		}))
		defer server.Close()

		err := lmhttp.NewImageValidator().ValidateImage(context.Background(), server.URL+"/a.jpg")

		require.NoError(t, err)
	})

	t.Run("rejects when GET fallback returns empty body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		err := lmhttp.NewImageValidator().ValidateImage(context.Background(), server.URL+"/a.jpg")

		assert.ErrorIs(t, err, linkmeta.ErrEmptyPayload)
	})

	t.Run("rejects missing image", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		err := lmhttp.NewImageValidator().ValidateImage(context.Background(), server.URL+"/missing.jpg")

		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, linkmeta.StatusCode(err))
	})

	t.Run("times out slow checks", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
			w.Header().Set("Content-Type", "image/png")
		}))
		defer server.Close()

		v := lmhttp.NewImageValidator(lmhttp.WithValidateTimeout(20 * time.Millisecond))
		err := v.ValidateImage(context.Background(), server.URL+"/slow.png")

		require.Error(t, err)
	})
}
