package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	appLog "rangecal/internal/log"
)

// maxBodyBytes caps a fetched payload; a single-event calendar is tiny.
const maxBodyBytes = 1 << 20

// Loader reads an iCalendar payload from a local path or an http(s) URL.
type Loader struct {
	client *http.Client
}

// NewLoader returns a Loader with a 15s HTTP timeout.
func NewLoader() *Loader {
	return &Loader{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Load returns the raw payload for src.
func (l *Loader) Load(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, errors.New("ics: source is empty")
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		return os.ReadFile(src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}

	appLog.Info("ics fetch start", "url", redactURL(src))

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ics: fetch %s: %s", redactURL(src), resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	appLog.Info("ics fetch success", "url", redactURL(src), "bytes", len(body))
	return body, nil
}

// LoadRange is Load followed by ParseRange.
func (l *Loader) LoadRange(ctx context.Context, src string, loc *time.Location) (Range, error) {
	body, err := l.Load(ctx, src)
	if err != nil {
		return Range{}, err
	}
	return ParseRange(body, loc)
}

// redactURL keeps only scheme and host of a URL for logging; subscription
// URLs often carry tokens in the path or query.
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j != -1 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + redactedSuffix
}
