package acquire

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"nsecli/internal/config"
	"nsecli/internal/errors"
)

// archivesDescriptor is the report selector the NSE API expects in the
// archives query parameter.
const archivesDescriptor = `[{"name":"Full Bhavcopy and Security Deliverable data",` +
	`"type":"daily-reports",` +
	`"category":"capital-market",` +
	`"section":"equities"}]`

// apiDateFormat is the DD-Mon-YYYY date parameter format.
const apiDateFormat = "02-Jan-2006"

// Client fetches daily bhavcopy archives from the NSE reports API. It keeps
// a cookie session alive: the session is refreshed at most once per
// configured interval, and only when a report request is about to be made.
type Client struct {
	cfg        config.SourceConfig
	http       *http.Client
	logger     *slog.Logger
	lastCookie time.Time
	settle     time.Duration
}

// NewClient creates a client with a fresh cookie jar.
func NewClient(cfg config.SourceConfig, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Jar: jar},
		logger: logger,
		settle: time.Second,
	}, nil
}

// RefreshSession fetches the site homepage to obtain session cookies. NSE
// rejects report requests without them.
func (c *Client) RefreshSession(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.get(ctx, c.cfg.BaseURL)
	if err != nil {
		return fmt.Errorf("failed to fetch session cookie: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session cookie request returned HTTP %d", resp.StatusCode)
	}

	c.lastCookie = time.Now()
	c.logger.Debug("session cookie refreshed")
	return nil
}

// refreshSessionIfNeeded refreshes the session when more than the configured
// interval has elapsed. Called only on the fetch path, never for skips.
func (c *Client) refreshSessionIfNeeded(ctx context.Context) {
	if time.Since(c.lastCookie) <= c.cfg.CookieRefreshInterval {
		return
	}
	if err := c.RefreshSession(ctx); err != nil {
		c.logger.Warn("could not refresh session cookie",
			slog.String("error", err.Error()))
		c.lastCookie = time.Now()
	}
	// Give the site a moment before the report request follows.
	select {
	case <-time.After(c.settle):
	case <-ctx.Done():
	}
}

// reportURL builds the reports API URL for the given date.
func (c *Client) reportURL(date time.Time) string {
	return fmt.Sprintf("%s%s?archives=%s&date=%s&type=Archives",
		c.cfg.BaseURL, c.cfg.ReportsPath,
		url.QueryEscape(archivesDescriptor),
		date.Format(apiDateFormat))
}

// archiveEntry is one candidate file in a JSON pointer response.
type archiveEntry struct {
	File string `json:"file"`
}

// FetchArchive retrieves the bhavcopy zip bytes for date. The response may
// be the archive itself or a JSON array pointing at it; either way the
// returned bytes are the raw archive. Failures are classified into the
// per-unit error taxonomy.
func (c *Client) FetchArchive(ctx context.Context, date time.Time) ([]byte, error) {
	c.refreshSessionIfNeeded(ctx)

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.RequestTimeout)
	defer cancel()

	resp, err := c.get(reqCtx, c.reportURL(date))
	if err != nil {
		return nil, errors.Transport(fmt.Sprintf("Network error: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errors.NotFound()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Transport(fmt.Sprintf("HTTP %d", resp.StatusCode), nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transport(fmt.Sprintf("Network error: %v", err), err)
	}

	if isZipContent(resp.Header.Get("Content-Type"), body) {
		return body, nil
	}

	return c.fetchFromPointer(ctx, body)
}

// fetchFromPointer interprets a JSON candidate-list response and fetches the
// first entry with a zip extension as a second request.
func (c *Client) fetchFromPointer(ctx context.Context, body []byte) ([]byte, error) {
	var entries []archiveEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, errors.MalformedResponse("Invalid response format (not JSON or ZIP)")
	}
	if len(entries) == 0 {
		return nil, errors.MalformedResponse("No data in response")
	}

	var fileURL string
	for _, e := range entries {
		if strings.HasSuffix(e.File, ".zip") {
			fileURL = e.File
			break
		}
	}
	if fileURL == "" {
		return nil, errors.MalformedResponse("No zip file in response")
	}
	if !strings.HasPrefix(fileURL, "http") {
		fileURL = c.cfg.BaseURL + fileURL
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.ArchiveTimeout)
	defer cancel()

	resp, err := c.get(reqCtx, fileURL)
	if err != nil {
		return nil, errors.Transport(fmt.Sprintf("Network error: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Transport(fmt.Sprintf("Zip download HTTP %d", resp.StatusCode), nil)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Transport(fmt.Sprintf("Network error: %v", err), err)
	}
	return content, nil
}

// get issues a GET request with the headers NSE requires to avoid 403s.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", c.cfg.Referer)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return c.http.Do(req)
}

// isZipContent reports whether a response body is a zip archive, by declared
// content type or by the PK magic number.
func isZipContent(contentType string, body []byte) bool {
	if strings.Contains(contentType, "application/zip") {
		return true
	}
	return bytes.HasPrefix(body, []byte("PK"))
}
