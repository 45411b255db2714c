// Package version reports build information and checks GitHub for newer releases.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Build metadata, set with -ldflags "-X github.com/mrz1836/payreq/internal/version.Version=...".
//
//nolint:gochecknoglobals // Populated by the linker
var (
	Version = "dev"
	Commit  = ""
	Date    = ""
)

const (
	// DefaultBaseURL is the GitHub API root.
	DefaultBaseURL = "https://api.github.com"
	// DefaultTimeout bounds a release lookup.
	DefaultTimeout = 10 * time.Second

	// Owner and Repo identify the payreq release feed.
	Owner = "mrz1836"
	Repo  = "payreq"

	maxErrorBodySize    = 1024
	maxResponseBodySize = 64 * 1024
)

// ErrReleaseCheck indicates the release feed could not be read.
//
//nolint:gochecknoglobals // Sentinel error
var ErrReleaseCheck = &payerr.PayError{
	Code:     "RELEASE_CHECK_FAILED",
	Message:  "could not check for a newer release",
	ExitCode: payerr.ExitGeneral,
}

//nolint:gochecknoglobals // Compiled once
var ownerRepoPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the linker-provided build info, filling gaps from the
// module build info embedded by the Go toolchain.
func Current() BuildInfo {
	b := BuildInfo{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return b
	}
	if (b.Version == "" || b.Version == "dev") && info.Main.Version != "" && info.Main.Version != "(devel)" {
		b.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if b.Commit == "" {
				b.Commit = s.Value
			}
		case "vcs.time":
			if b.Date == "" {
				b.Date = s.Value
			}
		}
	}
	return b
}

// String formats the build info as "v1.2.3 (commit: abc1234, built: 2025-01-15)".
func (b BuildInfo) String() string {
	v := b.Version
	if v == "" {
		v = "dev"
	}
	commit := b.Commit
	if commit == "" {
		commit = "unknown"
	} else if len(commit) > 12 {
		commit = commit[:12]
	}
	date := b.Date
	if date == "" {
		date = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, commit, date)
}

// Release is the subset of a GitHub release payreq reads.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Draft       bool      `json:"draft"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	HTMLURL     string    `json:"html_url"`
}

// Check is the outcome of comparing the running version with the latest release.
type Check struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
	URL     string `json:"url,omitempty"`
	Newer   bool   `json:"update_available"`
}

// Client reads releases from the GitHub API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API root.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// NewClient creates a release client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  fmt.Sprintf("payreq/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LatestRelease fetches the latest published release of owner/repo.
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (*Release, error) {
	if !ownerRepoPattern.MatchString(owner) || !ownerRepoPattern.MatchString(repo) {
		return nil, payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{
			"owner": owner,
			"repo":  repo,
		})
	}

	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, owner, repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL built from the fixed API root and validated owner/repo
	if err != nil {
		return nil, &payerr.PayError{
			Code:     ErrReleaseCheck.Code,
			Message:  ErrReleaseCheck.Message,
			Cause:    err,
			ExitCode: ErrReleaseCheck.ExitCode,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, payerr.WithDetails(ErrReleaseCheck, map[string]string{
			"status": fmt.Sprint(resp.StatusCode),
			"body":   strings.TrimSpace(string(body)),
		})
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&release); err != nil {
		return nil, payerr.WithDetails(ErrReleaseCheck, map[string]string{"reason": "decoding response: " + err.Error()})
	}
	return &release, nil
}

// CheckLatest compares current with the latest payreq release.
func (c *Client) CheckLatest(ctx context.Context, current string) (Check, error) {
	release, err := c.LatestRelease(ctx, Owner, Repo)
	if err != nil {
		return Check{}, err
	}
	return Check{
		Current: current,
		Latest:  release.TagName,
		URL:     release.HTMLURL,
		Newer:   IsNewer(current, release.TagName),
	}, nil
}

// Canonical returns v in "vMAJOR.MINOR.PATCH" form, or "" when v is not a
// release version (dev builds, commit hashes, garbage).
func Canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return semver.Canonical(v)
}

// Compare orders two versions like strings.Compare. Anything that is not a
// release version sorts before every release.
func Compare(a, b string) int {
	ca, cb := Canonical(a), Canonical(b)
	switch {
	case ca == "" && cb == "":
		return 0
	case ca == "":
		return -1
	case cb == "":
		return 1
	default:
		return semver.Compare(ca, cb)
	}
}

// IsNewer reports whether latest is a newer release than current.
func IsNewer(current, latest string) bool {
	return Compare(latest, current) > 0
}
