package fritz

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const dataPath = "/data.lua"

// DefaultUsagePage is the data endpoint page key for the
// parental-control usage view.
const DefaultUsagePage = "kidPro"

// UsageStateFetcher retrieves the raw parental-control markup for an
// authenticated session.
type UsageStateFetcher struct {
	baseURL string
	page    string
	client  *http.Client
}

// NewUsageStateFetcher creates a fetcher for the router at baseURL.
// An empty page selects DefaultUsagePage.
func NewUsageStateFetcher(baseURL, page string) *UsageStateFetcher {
	if page == "" {
		page = DefaultUsagePage
	}
	return &UsageStateFetcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		page:    page,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// Fetch posts the usage query for sid and returns the response markup.
// A session the router no longer accepts yields ErrSessionExpired;
// every other failure yields a *FetchError.
func (f *UsageStateFetcher) Fetch(ctx context.Context, sid string) (string, error) {
	form := url.Values{
		"xhr":  {"1"},
		"sid":  {sid},
		"page": {f.page},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.baseURL+dataPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &FetchError{Reason: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", &FetchError{Reason: "call data endpoint", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", ErrSessionExpired
	}
	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{Reason: fmt.Sprintf("data endpoint returned status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Reason: "read response", Err: err}
	}

	markup := string(body)
	if sessionRejected(markup) {
		return "", ErrSessionExpired
	}
	return markup, nil
}

// sessionRejected reports whether the data endpoint answered with the
// login page instead of usage markup, which happens when the sid has
// been invalidated router-side.
func sessionRejected(markup string) bool {
	return strings.Contains(markup, `"sid":"0000000000000000"`) ||
		strings.Contains(markup, "<Challenge>")
}
