package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

const defaultFetchTimeout = 10 * time.Second

// RSS 从单个 RSS/Atom 订阅源采集条目
type RSS struct {
	url    string
	client *http.Client
	parser *gofeed.Parser
}

func NewRSS(url string, timeout time.Duration) *RSS {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &RSS{
		url:    url,
		client: &http.Client{Timeout: timeout},
		parser: gofeed.NewParser(),
	}
}

func (r *RSS) Name() string {
	return r.url
}

func (r *RSS) Fetch(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("rss: build request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("rss: fetch %s: %w", r.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rss: fetch %s: unexpected status %d", r.url, resp.StatusCode)
	}

	feed, err := r.parser.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("rss: parse %s: %w", r.url, err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, it := range feed.Items {
		e := Entry{
			Title:       it.Title,
			Link:        it.Link,
			Summary:     it.Description,
			Description: it.Content,
			SourceTitle: feed.Title,
			Published:   it.PublishedParsed,
			Updated:     it.UpdatedParsed,
		}
		if it.Author != nil {
			e.Author = it.Author.Name
		}
		entries = append(entries, e)
	}
	return entries, nil
}
