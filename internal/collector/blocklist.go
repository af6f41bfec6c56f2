package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const blocklistMaxBytes = 1 << 20 // 1MB

// Blocklist 采集按行分隔的 IP 指标清单（例如 Feodo Tracker 的 C2 封禁列表），
// 每个指标转成一条 Entry，链接统一指向清单本身
type Blocklist struct {
	name   string
	url    string
	client *http.Client
}

func NewBlocklist(name, url string, timeout time.Duration) *Blocklist {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Blocklist{
		name:   name,
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

func (b *Blocklist) Name() string {
	return "blocklist:" + b.name
}

func (b *Blocklist) Fetch(ctx context.Context) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url, nil)
	if err != nil {
		return nil, fmt.Errorf("blocklist: build request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("blocklist: fetch %s: %w", b.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("blocklist: unexpected status %d", resp.StatusCode)
	}

	var entries []Entry
	scanner := bufio.NewScanner(io.LimitReader(resp.Body, blocklistMaxBytes))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		// 跳过空行和 # 开头的注释行
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, Entry{
			Title:       "Active C2 indicator: " + line,
			Link:        b.url,
			Summary:     fmt.Sprintf("%s lists %s as an active botnet command-and-control address.", b.name, line),
			SourceTitle: b.name,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("blocklist: read %s: %w", b.url, err)
	}
	return entries, nil
}
