package fetcher

import (
	"context"
	"log"
	"sort"
	"time"

	"cyberintel/internal/collector"
	"cyberintel/internal/processor"
)

const (
	// 单个源最多取 30 条原始记录，限制最坏情况下的归一化开销
	perProviderCap = 30
	// 单个分类缓存上限 60 条
	categoryCap = 60
)

// Fetcher 按分类聚合多个 Provider：采集、归一化、去重、排序、截断。
// 任意一个源失败只跳过该源，分类级别永不报错
type Fetcher struct {
	providers  map[string][]collector.Provider
	normalizer *processor.Normalizer
	timeout    time.Duration
	now        func() time.Time
}

func New(providers map[string][]collector.Provider, timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Fetcher{
		providers:  providers,
		normalizer: processor.NewNormalizer(),
		timeout:    timeout,
		now:        time.Now,
	}
}

// Categories 返回已配置的分类名（字典序）
func (f *Fetcher) Categories() []string {
	cats := make([]string, 0, len(f.providers))
	for c := range f.providers {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats
}

// FetchCategory 返回某个分类下最多 60 条去重后的条目，最新的在前。
// 所有源都失败或为空时返回空切片，兜底内容由缓存层负责
func (f *Fetcher) FetchCategory(ctx context.Context, category string) []processor.Item {
	now := f.now()

	items := make([]processor.Item, 0, perProviderCap)
	for _, p := range f.providers[category] {
		entries, err := f.fetchOne(ctx, p)
		if err != nil {
			// 单源失败明确跳过，下个 TTL 周期自然重试
			log.Printf("fetch %s from %s error: %v", category, p.Name(), err)
			continue
		}
		if len(entries) > perProviderCap {
			entries = entries[:perProviderCap]
		}
		for _, e := range entries {
			items = append(items, f.normalizer.Normalize(e, now))
		}
	}

	// 按 (title, link) 去重，保留源声明顺序中的首次出现
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, it := range items {
		k := processor.Key(it.Title, it.Link)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Published > out[j].Published
	})

	if len(out) > categoryCap {
		out = out[:categoryCap]
	}
	return out
}

// fetchOne 给每次外呼单独加超时，防止个别源挂起拖垮整轮刷新
func (f *Fetcher) fetchOne(ctx context.Context, p collector.Provider) ([]collector.Entry, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()
	return p.Fetch(ctx)
}
