package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	otxDefaultBaseURL   = "https://otx.alienvault.com"
	otxMaxResponseBytes = 1 << 20 // 1MB
	otxPageSize         = 30
)

// OTX 通过 AlienVault OTX 的 pulse 搜索接口采集威胁情报
type OTX struct {
	baseURL string
	apiKey  string
	query   string
	client  *http.Client
}

func NewOTX(apiKey, query string, timeout time.Duration) *OTX {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &OTX{
		baseURL: otxDefaultBaseURL,
		apiKey:  apiKey,
		query:   query,
		client:  &http.Client{Timeout: timeout},
	}
}

func (o *OTX) Name() string {
	return "otx:" + o.query
}

type otxPulse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	AuthorName  string `json:"author_name"`
	Created     string `json:"created"`
	Modified    string `json:"modified"`
}

type otxSearchResponse struct {
	Results []otxPulse `json:"results"`
}

func (o *OTX) Fetch(ctx context.Context) ([]Entry, error) {
	endpoint := fmt.Sprintf("%s/api/v1/search/pulses?q=%s&limit=%d",
		o.baseURL, url.QueryEscape(o.query), otxPageSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("otx: build request: %w", err)
	}
	req.Header.Set("X-OTX-API-KEY", o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("otx: search pulses: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("otx: unexpected status %d", resp.StatusCode)
	}

	var sr otxSearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, otxMaxResponseBytes)).Decode(&sr); err != nil {
		return nil, fmt.Errorf("otx: decode response: %w", err)
	}

	entries := make([]Entry, 0, len(sr.Results))
	for _, p := range sr.Results {
		e := Entry{
			Title:       p.Name,
			Link:        o.baseURL + "/pulse/" + p.ID,
			Summary:     p.Description,
			SourceTitle: "AlienVault OTX",
			Author:      p.AuthorName,
		}
		if t := parseOTXTime(p.Created); t != nil {
			e.Published = t
		}
		if t := parseOTXTime(p.Modified); t != nil {
			e.Updated = t
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// parseOTXTime 兼容 OTX 返回的几种时间格式；解析失败返回 nil，由上游兜底
func parseOTXTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05.000000",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
