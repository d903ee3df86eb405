// SPDX-License-Identifier: MPL-2.0

package selfupdate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/mod/semver"
)

const (
	// DefaultAPIURL is the GitHub REST API endpoint.
	DefaultAPIURL = "https://api.github.com"

	releasesPerPage = 30
	maxReleasePages = 3
	maxJSONBytes    = 10 << 20
)

// ErrReleaseNotFound is returned when a requested release tag does not exist.
var ErrReleaseNotFound = errors.New("release not found")

type (
	// Release is a published GitHub release.
	Release struct {
		TagName    string  `json:"tag_name"`
		Name       string  `json:"name"`
		Prerelease bool    `json:"prerelease"`
		Draft      bool    `json:"draft"`
		HTMLURL    string  `json:"html_url"`
		Assets     []Asset `json:"assets"`
	}

	// Asset is a downloadable file attached to a release.
	Asset struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
		Size               int64  `json:"size"`
	}

	// RateLimitError is returned when the API quota is exhausted.
	RateLimitError struct {
		Limit   int
		ResetAt time.Time
	}

	// Client queries the GitHub Releases API of one repository.
	Client struct {
		httpClient *http.Client
		baseURL    string
		owner      string
		repo       string
		token      string
		userAgent  string
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)
)

// Error implements error.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("GitHub API rate limit of %d requests exceeded, resets at %s",
		e.Limit, e.ResetAt.UTC().Format("15:04 UTC"))
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(g *Client) { g.httpClient = c }
}

// WithBaseURL overrides the API endpoint.
func WithBaseURL(base string) ClientOption {
	return func(g *Client) { g.baseURL = strings.TrimRight(base, "/") }
}

// WithToken authenticates requests to GitHub hosts, raising the rate limit.
func WithToken(token string) ClientOption {
	return func(g *Client) { g.token = token }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) ClientOption {
	return func(g *Client) { g.userAgent = ua }
}

// NewClient creates a Client for owner/repo.
func NewClient(owner, repo string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultAPIURL,
		owner:      owner,
		repo:       repo,
		userAgent:  "qakit",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Repo returns "owner/repo".
func (c *Client) Repo() string {
	return c.owner + "/" + c.repo
}

// ListReleases returns the stable releases, newest semantic version first.
// It follows Link pagination for a bounded number of pages.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	next := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, c.owner, c.repo, releasesPerPage)

	var stable []Release
	for page := 0; page < maxReleasePages && next != ""; page++ {
		var batch []Release
		header, err := c.getJSON(ctx, next, &batch)
		if err != nil {
			return nil, fmt.Errorf("listing releases: %w", err)
		}
		for _, r := range batch {
			if !r.Draft && !r.Prerelease {
				stable = append(stable, r)
			}
		}
		next = nextPageURL(header.Get("Link"))
	}

	slices.SortStableFunc(stable, func(a, b Release) int {
		return semver.Compare(canonical(b.TagName), canonical(a.TagName))
	})
	return stable, nil
}

// ReleaseByTag returns the release tagged tag, or ErrReleaseNotFound.
func (c *Client) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	var r Release
	u := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s", c.baseURL, c.owner, c.repo, url.PathEscape(tag))
	if _, err := c.getJSON(ctx, u, &r); err != nil {
		return nil, fmt.Errorf("getting release %s: %w", tag, err)
	}
	return &r, nil
}

// Download streams the asset at assetURL. The caller closes the body.
func (c *Client) Download(ctx context.Context, assetURL string) (io.ReadCloser, error) {
	resp, err := c.do(ctx, assetURL, "application/octet-stream")
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", redactURL(assetURL), err)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("downloading %s: unexpected status %d", redactURL(assetURL), resp.StatusCode)
	}
	return resp.Body, nil
}

// getJSON fetches u and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, u string, v any) (http.Header, error) {
	resp, err := c.do(ctx, u, "application/vnd.github+json")
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if err := rateLimited(resp); err != nil {
		return nil, err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrReleaseNotFound
	default:
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONBytes)).Decode(v); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return resp.Header, nil
}

func (c *Client) do(ctx context.Context, u, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", c.userAgent)
	// Tokens only go to the API host or github.com, never to CDN redirects.
	if c.token != "" && c.trusts(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

func (c *Client) trusts(u *url.URL) bool {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(u.Host, "github.com")
}

// rateLimited returns a RateLimitError when X-RateLimit-Remaining is 0.
func rateLimited(resp *http.Response) error {
	remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining"))
	if err != nil || remaining > 0 {
		return nil //nolint:nilerr // missing or malformed headers are not a limit
	}
	limit, _ := strconv.Atoi(resp.Header.Get("X-RateLimit-Limit"))                //nolint:errcheck // diagnostic only
	reset, _ := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64) //nolint:errcheck // diagnostic only
	return &RateLimitError{Limit: limit, ResetAt: time.Unix(reset, 0)}
}

// nextPageURL extracts the rel="next" target of a Link header.
func nextPageURL(link string) string {
	for part := range strings.SplitSeq(link, ",") {
		target, params, ok := strings.Cut(strings.TrimSpace(part), ";")
		if !ok || !strings.Contains(params, `rel="next"`) {
			continue
		}
		return strings.Trim(strings.TrimSpace(target), "<>")
	}
	return ""
}

// redactURL drops the query and fragment, which may carry signed tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
