package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultRelay forwards requests to sites that do not allow direct
	// cross-origin fetches.
	DefaultRelay = "https://api.allorigins.win/raw?url="

	DefaultFetchTimeout = 10 * time.Second
	DefaultTextLimit    = 10000
)

// ErrFetchTimeout matches any *TimeoutError.
var ErrFetchTimeout = errors.New("URL fetch timed out")

// TimeoutError is returned when a URL takes longer than the fetch timeout
// to load.
type TimeoutError struct {
	URL   string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return "URL fetch timed out after " + humanDuration(e.After)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrFetchTimeout }

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Second:
		return "1 second"
	case d > 0 && d%time.Second == 0:
		return fmt.Sprintf("%d seconds", d/time.Second)
	default:
		return d.String()
	}
}

// FetchError describes a URL that could not be loaded.
type FetchError struct {
	URL        string
	Status     int
	StatusText string
	Err        error
}

func (e *FetchError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("Failed to load URL: %v", e.Err)
	case e.Status == 0:
		return "Received empty content from URL"
	default:
		return fmt.Sprintf("Failed to fetch URL (%d): %s", e.Status, e.StatusText)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Fetcher loads web pages as plain text.
type Fetcher struct {
	Client  *http.Client
	Relay   string
	Timeout time.Duration
	Limit   int
}

// NewFetcher returns a Fetcher with the default relay, timeout and limit.
func NewFetcher() *Fetcher {
	return &Fetcher{
		Client:  http.DefaultClient,
		Relay:   DefaultRelay,
		Timeout: DefaultFetchTimeout,
		Limit:   DefaultTextLimit,
	}
}

func (f *Fetcher) endpoint(target string) string {
	if f.Relay == "" {
		return target
	}
	return f.Relay + url.QueryEscape(target)
}

// Fetch returns the raw body of target.
func (f *Fetcher) Fetch(ctx context.Context, target string) (string, error) {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFetchTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.endpoint(target), nil)
	if err != nil {
		return "", &FetchError{URL: target, Err: err}
	}
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{URL: target, After: timeout}
		}
		return "", &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &FetchError{
			URL:        target,
			Status:     resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &TimeoutError{URL: target, After: timeout}
		}
		return "", &FetchError{URL: target, Err: err}
	}
	if strings.TrimSpace(string(body)) == "" {
		return "", &FetchError{URL: target}
	}
	return string(body), nil
}

// FetchText loads target and returns its visible text, truncated to the
// fetcher's limit.
func (f *Fetcher) FetchText(ctx context.Context, target string) (string, error) {
	body, err := f.Fetch(ctx, target)
	if err != nil {
		return "", err
	}
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultTextLimit
	}
	return truncate(VisibleText(body), limit), nil
}

// Resolve fills PageText for every URL attachment concurrently. The first
// failure cancels the remaining fetches.
func (f *Fetcher) Resolve(ctx context.Context, atts []Attachment) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range atts {
		if atts[i].Kind != KindURL || atts[i].PageText != "" {
			continue
		}
		g.Go(func() error {
			text, err := f.FetchText(ctx, atts[i].Content)
			if err != nil {
				return err
			}
			atts[i].PageText = text
			return nil
		})
	}
	return g.Wait()
}

// VisibleText strips markup from an HTML document, dropping script and
// style contents and collapsing whitespace.
func VisibleText(doc string) string {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken:
			if hidden(z) {
				skip++
			}
		case html.EndTagToken:
			if hidden(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
				b.WriteByte(' ')
			}
		}
	}
}

func hidden(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch string(name) {
	case "script", "style":
		return true
	}
	return false
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
