package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Refresher 回暖全部分类缓存
type Refresher interface {
	RefreshAll(ctx context.Context)
}

// Scheduler 驱动后台周期刷新：独立于请求路径，一个分类的故障不阻塞其它分类
type Scheduler struct {
	cron      *cron.Cron
	refresher Refresher
	timeout   time.Duration
}

func New(spec string, refresher Refresher, timeout time.Duration) (*Scheduler, error) {
	c := cron.New()

	s := &Scheduler{
		cron:      c,
		refresher: refresher,
		timeout:   timeout,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	// 延迟首轮刷新，避免与用户首次打开页面的请求争抢资源
	const startupDelay = 15 * time.Second
	time.AfterFunc(startupDelay, func() {
		go s.runOnce()
	})
}

// Stop 停止定时任务并等待在跑的刷新结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// RunOnce 对外暴露的单次执行入口，方便手动触发刷新
func (s *Scheduler) RunOnce() {
	s.runOnce()
}

func (s *Scheduler) runOnce() {
	log.Println("start refresh job...")

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.refresher.RefreshAll(ctx)

	log.Println("refresh job done (all categories)")
}
