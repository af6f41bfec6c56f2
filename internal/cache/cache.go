package cache

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"cyberintel/internal/processor"
)

// DefaultTTL 是分类缓存的默认过期时间
const DefaultTTL = 10 * time.Minute

// FetchFunc 拉取某个分类的最新条目（已归一化、去重、排序）
type FetchFunc func(ctx context.Context, category string) []processor.Item

// FallbackFunc 在在线源全部为空时提供精选兜底内容
type FallbackFunc func(category string) []processor.Item

// Notifier 接收首次观察到的新条目
type Notifier interface {
	Notify(ctx context.Context, category string, items []processor.Item) error
}

// Bucket 是一个分类的缓存单元：整体替换，从不原地修改
type Bucket struct {
	FetchedAt time.Time
	Items     []processor.Item
}

// Store 持有全部分类桶和通知判重集合。读-判-写整段在同一把锁内完成，
// 保证同一个过期分类至多只有一个调用方在执行网络抓取
type Store struct {
	mu        sync.Mutex
	buckets   map[string]Bucket
	seen      map[string]struct{}
	lastBuild time.Time

	categories []string
	known      map[string]struct{}
	fetch      FetchFunc
	fallback   FallbackFunc
	notifier   Notifier
	ttl        time.Duration
	now        func() time.Time
}

func NewStore(categories []string, fetch FetchFunc, fallback FallbackFunc, notifier Notifier, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	known := make(map[string]struct{}, len(categories))
	for _, c := range categories {
		known[c] = struct{}{}
	}
	return &Store{
		buckets:    make(map[string]Bucket),
		seen:       make(map[string]struct{}),
		lastBuild:  time.Now(),
		categories: append([]string(nil), categories...),
		known:      known,
		fetch:      fetch,
		fallback:   fallback,
		notifier:   notifier,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Categories 返回分类名（配置顺序）
func (s *Store) Categories() []string {
	return append([]string(nil), s.categories...)
}

// LastBuild 返回最近一次成功刷新的时间
func (s *Store) LastBuild() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBuild
}

// EnsureFresh 返回分类桶，过期才重新抓取；返回的桶保证至少有一条内容。
// 命中新鲜缓存时没有任何副作用，也不做通知扫描
func (s *Store) EnsureFresh(ctx context.Context, category string) Bucket {
	s.mu.Lock()

	now := s.now()
	if b, ok := s.buckets[category]; ok && now.Sub(b.FetchedAt) <= s.ttl {
		s.mu.Unlock()
		return b
	}

	items := s.fetch(ctx, category)
	if len(items) == 0 && s.fallback != nil {
		items = s.fallback(category)
	}
	if len(items) == 0 {
		items = []processor.Item{placeholder(category, now)}
	}

	fresh := s.markSeen(items)
	b := Bucket{FetchedAt: now, Items: items}
	s.buckets[category] = b
	s.lastBuild = now
	s.mu.Unlock()

	// 通知在锁外发送，SMTP 之类的慢收端不能拖住缓存
	if len(fresh) > 0 && s.notifier != nil {
		if err := s.notifier.Notify(ctx, category, fresh); err != nil {
			log.Printf("cache: notify %s error: %v", category, err)
		}
	}
	return b
}

// markSeen 过滤出首次出现且带真实链接的条目并登记到判重集合，调用方必须持锁
func (s *Store) markSeen(items []processor.Item) []processor.Item {
	var fresh []processor.Item
	for _, it := range items {
		if it.Link == "" || it.Link == processor.PlaceholderLink {
			continue
		}
		k := processor.Key(it.Title, it.Link)
		if _, ok := s.seen[k]; ok {
			continue
		}
		s.seen[k] = struct{}{}
		fresh = append(fresh, it)
	}
	return fresh
}

// All 合并全部分类的条目，按发布时间倒序截断到 limit
func (s *Store) All(ctx context.Context, limit int) ([]processor.Item, time.Time) {
	var merged []processor.Item
	for _, c := range s.categories {
		b := s.EnsureFresh(ctx, c)
		merged = append(merged, b.Items...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Published > merged[j].Published
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, s.LastBuild()
}

// Category 返回单个分类截断到 limit 的条目及其总数；未知分类返回空结果而非错误
func (s *Store) Category(ctx context.Context, category string, limit int) ([]processor.Item, int, time.Time) {
	if _, ok := s.known[category]; !ok {
		return nil, 0, s.LastBuild()
	}
	b := s.EnsureFresh(ctx, category)
	items := b.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, len(b.Items), s.LastBuild()
}

// ForceRefresh 清空全部分类桶（判重集合保留）并立即回暖，返回新的构建时间。
// 回暖在返回前完成，读方不会跟后台刷新赛跑
func (s *Store) ForceRefresh(ctx context.Context) time.Time {
	s.mu.Lock()
	s.buckets = make(map[string]Bucket)
	s.mu.Unlock()

	for _, c := range s.categories {
		s.EnsureFresh(ctx, c)
	}
	return s.LastBuild()
}

// RefreshAll 并发刷新全部分类，单个分类失败不影响其它分类；供后台任务与预热使用
func (s *Store) RefreshAll(ctx context.Context) {
	var wg sync.WaitGroup
	for _, c := range s.categories {
		cat := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.EnsureFresh(ctx, cat)
		}()
	}
	wg.Wait()
}

// Stats 返回各分类当前缓存条数及 __all 总数；只读快照，不触发抓取
func (s *Store) Stats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]int, len(s.categories)+1)
	total := 0
	for _, c := range s.categories {
		n := len(s.buckets[c].Items)
		stats[c] = n
		total += n
	}
	stats["__all"] = total
	return stats
}

func placeholder(category string, now time.Time) processor.Item {
	return processor.Item{
		Title:     fmt.Sprintf("%s: no live headlines available", category),
		Link:      processor.PlaceholderLink,
		Summary:   "All configured sources returned nothing for this category. It will retry on the next refresh.",
		Source:    "CyberIntel",
		Published: now.UTC().Format(time.RFC3339),
	}
}
