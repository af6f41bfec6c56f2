package processor

import (
	"strings"
	"time"

	"cyberintel/internal/collector"
)

// PlaceholderLink 表示不可跳转的占位条目
const PlaceholderLink = "#"

// Item 是归一化后的统一新闻/情报结构，直接用于缓存与 JSON 输出。
// Published 固定为 UTC RFC3339 字符串：定宽格式下字典序即时间序
type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Summary   string `json:"summary"`
	Source    string `json:"source"`
	Published string `json:"published"`
}

// Key 返回 (title, link) 去重键，用于单次抓取去重与通知判重
func Key(title, link string) string {
	return title + "\x00" + link
}

// Normalizer 把采集层的原始记录清洗成统一结构
type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize 对缺失字段逐个降级为空值，任何一个字段异常都不影响整条记录。
// 标题留空由展示层兜底，这里不做占位替换
func (n *Normalizer) Normalize(e collector.Entry, now time.Time) Item {
	summary := strings.TrimSpace(e.Summary)
	if summary == "" {
		summary = strings.TrimSpace(e.Description)
	}

	source := e.SourceTitle
	if source == "" {
		source = e.Author
	}

	// 优先发布时间，其次更新时间，都没有就用当前抓取时间
	published := now
	if e.Published != nil {
		published = *e.Published
	} else if e.Updated != nil {
		published = *e.Updated
	}

	return Item{
		Title:     strings.TrimSpace(e.Title),
		Link:      e.Link,
		Summary:   summary,
		Source:    source,
		Published: published.UTC().Format(time.RFC3339),
	}
}
