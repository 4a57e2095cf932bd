package acquire

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nsecli/internal/config"
	"nsecli/internal/errors"
)

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := config.SourceConfig{
		BaseURL:               baseURL,
		ReportsPath:           "/api/reports",
		Referer:               baseURL + "/all-reports",
		UserAgent:             "test-agent",
		RequestTimeout:        5 * time.Second,
		ArchiveTimeout:        5 * time.Second,
		CookieRefreshInterval: 300 * time.Second,
	}
	c, err := NewClient(cfg, testLogger())
	require.NoError(t, err)
	c.settle = 0
	c.lastCookie = time.Now()
	return c
}

func zipBytes(t *testing.T, name, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(name)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestClient_FetchArchive_DirectZip(t *testing.T) {
	archive := zipBytes(t, "sec_bhavdata_full_23082019.csv", "SYMBOL\nRELIANCE\n")

	var gotDate, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotDate = r.URL.Query().Get("date")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/zip")
		w.Write(archive)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	body, err := c.FetchArchive(context.Background(), time.Date(2019, 8, 23, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, archive, body)
	assert.Equal(t, "23-Aug-2019", gotDate)
	assert.Equal(t, "test-agent", gotAgent)
}

func TestClient_FetchArchive_ZipByMagicNumber(t *testing.T) {
	archive := zipBytes(t, "sec_bhavdata_full_23082019.csv", "SYMBOL\n")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Wrong content type; the PK magic should still win.
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(archive)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	body, err := c.FetchArchive(context.Background(), time.Date(2019, 8, 23, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, archive, body)
}

func TestClient_FetchArchive_JSONPointer(t *testing.T) {
	archive := zipBytes(t, "sec_bhavdata_full_23082019.csv", "SYMBOL\n")

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/api/reports", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode([]map[string]string{
			{"file": "/archives/sec_bhavdata_full_23082019.zip"},
		})
	})
	mux.HandleFunc("/archives/sec_bhavdata_full_23082019.zip", func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	})

	c := testClient(t, srv.URL)
	body, err := c.FetchArchive(context.Background(), time.Date(2019, 8, 23, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, archive, body)
}

func TestClient_FetchArchive_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchArchive(context.Background(), time.Now())
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, "No data available (404)", errors.ReasonOf(err))
}

func TestClient_FetchArchive_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	_, err := c.FetchArchive(context.Background(), time.Now())
	assert.Equal(t, errors.CodeTransport, errors.CodeOf(err))
	assert.Equal(t, "HTTP 500", errors.ReasonOf(err))
}

func TestClient_FetchArchive_MalformedResponses(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantReason string
	}{
		{"not json", "<html>rate limited</html>", "Invalid response format (not JSON or ZIP)"},
		{"empty list", "[]", "No data in response"},
		{"no zip entry", `[{"file":"report.pdf"}]`, "No zip file in response"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := testClient(t, srv.URL)
			_, err := c.FetchArchive(context.Background(), time.Now())
			assert.Equal(t, errors.CodeMalformedResponse, errors.CodeOf(err))
			assert.Equal(t, tt.wantReason, errors.ReasonOf(err))
		})
	}
}

func TestClient_RefreshSession(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.SetCookie(w, &http.Cookie{Name: "nsit", Value: "session"})
	}))
	defer srv.Close()

	c := testClient(t, srv.URL)
	c.lastCookie = time.Time{}

	require.NoError(t, c.RefreshSession(context.Background()))
	assert.Equal(t, 1, hits)
	assert.False(t, c.lastCookie.IsZero())

	// Within the refresh interval nothing should be re-fetched.
	c.refreshSessionIfNeeded(context.Background())
	assert.Equal(t, 1, hits)
}
