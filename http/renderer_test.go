package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fwojciec/mdcrawl"
	mdhttp "github.com/fwojciec/mdcrawl/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("returns page with title text and links", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte(`<html><head><title>Docs</title></head>
<body><h1>Hello World</h1><a href="/guide">Guide</a></body></html>`))
		}))
		defer server.Close()

		renderer := mdhttp.NewRenderer()
		defer renderer.Close()

		page, err := renderer.Render(context.Background(), server.URL+"/")

		require.NoError(t, err)
		assert.Equal(t, "Docs", page.Title)
		assert.Equal(t, "Hello World\nGuide", page.Text)
		assert.Equal(t, []string{server.URL + "/guide"}, page.Links)
		assert.Contains(t, page.HTML, "<h1>Hello World</h1>")
	})

	t.Run("sends user agent", func(t *testing.T) {
		t.Parallel()

		got := make(chan string, 1)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got <- r.UserAgent()
			_, _ = w.Write([]byte("<html><body>ok</body></html>"))
		}))
		defer server.Close()

		renderer := mdhttp.NewRenderer(mdhttp.WithUserAgent("test-agent"))

		_, err := renderer.Render(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "test-agent", <-got)
	})

	t.Run("resolves links against redirect target", func(t *testing.T) {
		t.Parallel()

		mux := http.NewServeMux()
		mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/new/", http.StatusFound)
		})
		mux.HandleFunc("/new/", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><body><a href="child">c</a></body></html>`))
		})
		server := httptest.NewServer(mux)
		defer server.Close()

		renderer := mdhttp.NewRenderer()

		page, err := renderer.Render(context.Background(), server.URL+"/old")

		require.NoError(t, err)
		assert.Equal(t, []string{server.URL + "/new/child"}, page.Links)
	})

	t.Run("returns plain text pages", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("  just text \n"))
		}))
		defer server.Close()

		page, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "just text", page.Text)
		assert.Empty(t, page.Links)
	})

	t.Run("rejects binary content", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = w.Write([]byte("%PDF-1.4"))
		}))
		defer server.Close()

		_, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)

		assert.Equal(t, mdcrawl.EINVALID, mdcrawl.ErrorCode(err))
	})

	t.Run("maps throttling statuses to blocked", func(t *testing.T) {
		t.Parallel()

		for _, status := range []int{http.StatusTooManyRequests, http.StatusForbidden, http.StatusServiceUnavailable} {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))

			_, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)
			server.Close()

			assert.Equal(t, mdcrawl.EBLOCKED, mdcrawl.ErrorCode(err), "status %d", status)
		}
	})

	t.Run("maps 404 to not found", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte("404 Not Found"))
		}))
		defer server.Close()

		_, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)

		require.Error(t, err)
		assert.Equal(t, mdcrawl.ENOTFOUND, mdcrawl.ErrorCode(err))
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("maps server errors to internal", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		_, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)

		assert.Equal(t, mdcrawl.EINTERNAL, mdcrawl.ErrorCode(err))
	})

	t.Run("detects challenge pages", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Just a moment...</title></head><body>Checking</body></html>`))
		}))
		defer server.Close()

		_, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)

		assert.Equal(t, mdcrawl.EBLOCKED, mdcrawl.ErrorCode(err))
	})

	t.Run("detects challenge markup", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>example.com</title></head><body><div id="cf-challenge-running"></div></body></html>`))
		}))
		defer server.Close()

		_, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)

		assert.Equal(t, mdcrawl.EBLOCKED, mdcrawl.ErrorCode(err))
	})

	t.Run("keeps documentation pages about access errors", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte(`<html><head><title>Handling access denied errors | AWS IAM</title></head><body><p>If login fails, please enable cookies.</p></body></html>`))
		}))
		defer server.Close()

		page, err := mdhttp.NewRenderer().Render(context.Background(), server.URL)

		require.NoError(t, err)
		assert.Equal(t, "Handling access denied errors | AWS IAM", page.Title)
	})

	t.Run("respects custom timeout option", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		renderer := mdhttp.NewRenderer(mdhttp.WithTimeout(10 * time.Millisecond))

		_, err := renderer.Render(context.Background(), server.URL)

		assert.Equal(t, mdcrawl.ETIMEOUT, mdcrawl.ErrorCode(err))
	})

	t.Run("maps context deadline to timeout", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(100 * time.Millisecond)
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		_, err := mdhttp.NewRenderer().Render(ctx, server.URL)

		assert.Equal(t, mdcrawl.ETIMEOUT, mdcrawl.ErrorCode(err))
	})

	t.Run("respects context cancellation", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("response"))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := mdhttp.NewRenderer().Render(ctx, server.URL)

		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("returns error for non-existent host", func(t *testing.T) {
		t.Parallel()

		renderer := mdhttp.NewRenderer(mdhttp.WithTimeout(100 * time.Millisecond))

		_, err := renderer.Render(context.Background(), "http://non-existent-host.invalid/page")
		require.Error(t, err)
	})
}
