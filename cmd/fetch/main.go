package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"time"

	"cyberintel/internal/collector"
	"cyberintel/internal/config"
	"cyberintel/internal/fetcher"
	"cyberintel/internal/processor"
)

// 一个只执行一轮抓取并把结果打到标准输出的命令行入口：适合调试订阅源配置
func main() {
	cfg := config.Load()

	providers := make(map[string][]collector.Provider, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		list := make([]collector.Provider, 0, len(cfg.Feeds[cat]))
		for _, url := range cfg.Feeds[cat] {
			list = append(list, collector.NewRSS(url, cfg.FetchTimeout))
		}
		providers[cat] = list
	}

	f := fetcher.New(providers, cfg.FetchTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	out := make(map[string][]processor.Item, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		items := f.FetchCategory(ctx, cat)
		log.Printf("%s: fetched %d items", cat, len(items))
		out[cat] = items
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("encode result failed: %v", err)
	}
}
