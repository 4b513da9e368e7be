// Package updater checks GitHub for a newer av release.
package updater

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/smantzavinos/activity_viewer/pkg/version"
)

// LatestReleaseURL is the GitHub API endpoint for the newest release.
const LatestReleaseURL = "https://api.github.com/repos/smantzavinos/activity_viewer/releases/latest"

const checkTimeout = 2 * time.Second

// Release is the part of the GitHub release payload we read.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// Result describes the outcome of a check.
type Result struct {
	Current   string
	Latest    string
	URL       string
	Available bool
}

// Checker queries a release endpoint.
type Checker struct {
	Client  *http.Client
	URL     string
	Current string
}

// NewChecker returns a checker for the public release feed and the running
// binary's version.
func NewChecker() *Checker {
	return &Checker{
		Client:  &http.Client{Timeout: checkTimeout},
		URL:     LatestReleaseURL,
		Current: version.Version,
	}
}

// Check fetches the latest release. Rate limiting (403/429) is not an
// error; the result simply reports no update.
func (c *Checker) Check(ctx context.Context) (Result, error) {
	res := Result{Current: c.Current}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return res, err
	}
	req.Header.Set("User-Agent", "activity-viewer-update-check")
	req.Header.Set("Accept", "application/vnd.github+json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return res, fmt.Errorf("query releases: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusTooManyRequests:
		return res, nil
	default:
		return res, fmt.Errorf("github api returned status: %s", resp.Status)
	}

	var rel Release
	if err := json.NewDecoder(resp.Body).Decode(&rel); err != nil {
		return res, fmt.Errorf("decode release: %w", err)
	}
	res.Latest = rel.TagName
	res.URL = rel.HTMLURL
	res.Available = IsNewer(rel.TagName, c.Current)
	return res, nil
}

// IsNewer reports whether candidate is a strictly greater semantic version
// than current. Tags without a leading "v" are accepted; anything that is
// not valid semver is never newer.
func IsNewer(candidate, current string) bool {
	cand, ok := normalize(candidate)
	if !ok {
		return false
	}
	cur, ok := normalize(current)
	if !ok {
		return true
	}
	return semver.Compare(cand, cur) > 0
}

func normalize(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", false
	}
	return v, true
}
