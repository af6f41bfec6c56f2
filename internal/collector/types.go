package collector

import (
	"context"
	"time"
)

// Entry 是采集到的原始记录；字段按来源可能缺失，由 processor 统一兜底
type Entry struct {
	Title       string
	Link        string
	Summary     string
	Description string
	SourceTitle string
	Author      string
	Published   *time.Time
	Updated     *time.Time
}

// Provider 抽象每一个数据源
type Provider interface {
	Name() string
	Fetch(ctx context.Context) ([]Entry, error)
}
