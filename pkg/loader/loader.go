// Package loader finds and reads the issue page the tool operates on.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/smantzavinos/activity_viewer/pkg/page"
)

// ErrNoPage is returned when a directory holds no usable HTML page.
var ErrNoPage = errors.New("no HTML page found")

// StdinSource is the source name that reads the page from standard input.
const StdinSource = "-"

// DefaultFetchTimeout bounds an http(s) fetch when ctx has no deadline.
const DefaultFetchTimeout = 30 * time.Second

// preferredPages are tried in order before any other HTML file.
var preferredPages = []string{"activity.html", "issue.html"}

// FindPagePath returns the page to load from dir: activity.html, then
// issue.html, then the first other .html/.htm file in name order. Backup,
// temporary and empty files are skipped unless nothing else is left.
func FindPagePath(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read page directory: %w", err)
	}

	var candidates []string
	var empty []string
	for _, entry := range entries {
		name := entry.Name()
		if !isHTMLName(name) || isScratchFile(name) {
			continue
		}
		path := filepath.Join(dir, name)
		// Stat follows symlinks, so a link to a page counts.
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if info.Size() == 0 {
			empty = append(empty, name)
			continue
		}
		candidates = append(candidates, name)
	}

	if pick := pickPage(candidates); pick != "" {
		return filepath.Join(dir, pick), nil
	}
	if pick := pickPage(empty); pick != "" {
		return filepath.Join(dir, pick), nil
	}
	return "", fmt.Errorf("%w in %s", ErrNoPage, dir)
}

func pickPage(names []string) string {
	if len(names) == 0 {
		return ""
	}
	for _, preferred := range preferredPages {
		for _, name := range names {
			if strings.EqualFold(name, preferred) {
				return name
			}
		}
	}
	sort.Strings(names)
	return names[0]
}

func isHTMLName(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}

func isScratchFile(name string) bool {
	lower := strings.ToLower(name)
	if strings.HasPrefix(lower, ".") || strings.HasPrefix(lower, "~") || strings.HasSuffix(lower, "~") {
		return true
	}
	for _, marker := range []string{".backup", ".bak", ".tmp", ".orig", ".swp"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// IsURL reports whether src is an http(s) URL.
func IsURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// ResolveSource turns a user-supplied source into something LoadDocument
// accepts. Directories are resolved with FindPagePath.
func ResolveSource(src string) (string, error) {
	if src == "" {
		return "", fmt.Errorf("source path is empty")
	}
	if src == StdinSource || IsURL(src) {
		return src, nil
	}
	info, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("failed to open page: %w", err)
	}
	if info.IsDir() {
		return FindPagePath(src)
	}
	return src, nil
}

// LoadDocument reads and parses the page at src: a file or directory path,
// "-" for stdin, or an http(s) URL.
func LoadDocument(ctx context.Context, src string, selectors page.Selectors) (*page.HTMLDocument, error) {
	resolved, err := ResolveSource(src)
	if err != nil {
		return nil, err
	}

	r, err := open(ctx, resolved)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	doc, err := page.ParseHTML(r, selectors)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", resolved, err)
	}
	return doc, nil
}

func open(ctx context.Context, src string) (io.ReadCloser, error) {
	switch {
	case src == StdinSource:
		return io.NopCloser(os.Stdin), nil
	case IsURL(src):
		return fetch(ctx, src)
	default:
		f, err := os.Open(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open page file: %w", err)
		}
		return f, nil
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}

func fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok {
		ctx, cancel = context.WithTimeout(ctx, DefaultFetchTimeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}
	return cancelOnClose{ReadCloser: resp.Body, cancel: cancel}, nil
}
