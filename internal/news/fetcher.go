package news

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/net/html"

	"cryptoSignalWatch/internal/ports"
)

const defaultTimeout = 10 * time.Second

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 14_4) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
}

// Fetcher scrapes headlines from the known news sources.
type Fetcher struct {
	client *http.Client
	logger ports.Logger
	// urls overrides Source.URL, used to point sources at test servers.
	urls map[Source]string
}

// NewFetcher creates a headline fetcher. A nil client gets a 10s timeout client.
func NewFetcher(client *http.Client, logger ports.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Fetcher{client: client, logger: logger, urls: make(map[Source]string)}
}

// WithURL overrides the page fetched for source.
func (f *Fetcher) WithURL(source Source, url string) *Fetcher {
	f.urls[source] = url
	return f
}

// FetchHeadlines fetches every source concurrently and returns the headlines
// in source order. A failing source is logged and contributes nothing.
func (f *Fetcher) FetchHeadlines(ctx context.Context, sources ...Source) []string {
	results := make([][]string, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func(i int, src Source) {
			defer wg.Done()
			headlines, err := f.fetchSource(ctx, src)
			if err != nil {
				f.logger.Error(ctx, err, "Error fetching news", map[string]interface{}{"source": src.String()})
				return
			}
			results[i] = headlines
		}(i, src)
	}
	wg.Wait()

	var all []string
	for _, r := range results {
		all = append(all, r...)
	}
	f.logger.Debug(ctx, "Headlines fetched", map[string]interface{}{"count": len(all)})
	return all
}

func (f *Fetcher) fetchSource(ctx context.Context, src Source) ([]string, error) {
	url, ok := f.urls[src]
	if !ok {
		url = src.URL()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s failed: %w: %w", src, ports.ErrInvalidRequest, err)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s failed: %w: %w", src, ports.ErrConnectionFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s failed: %w: status %d", src, ports.ErrExchangeUnavailable, resp.StatusCode)
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s page failed: %w: %w", src, ports.ErrInvalidRequest, err)
	}
	return src.Extract(doc), nil
}
