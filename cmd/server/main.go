package main

import (
	"context"
	"crypto/subtle"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cyberintel/internal/api"
	"cyberintel/internal/cache"
	"cyberintel/internal/collector"
	"cyberintel/internal/config"
	"cyberintel/internal/fallback"
	"cyberintel/internal/fetcher"
	"cyberintel/internal/notify"
	"cyberintel/internal/scheduler"
	"cyberintel/internal/user"
)

// 后台一轮全量刷新的总超时
const refreshJobTimeout = 2 * time.Minute

func main() {
	cfg := config.Load()

	users, err := user.NewStore(cfg.UserDBPath)
	if err != nil {
		log.Fatalf("init user store failed: %v", err)
	}

	// 配了 SMTP 才真正发信，否则只在日志里记一笔
	var notifier cache.Notifier = notify.Noop{}
	if cfg.SMTPHost != "" {
		notifier = notify.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, users)
	}

	f := fetcher.New(buildProviders(cfg), cfg.FetchTimeout)
	store := cache.NewStore(cfg.Categories, f.FetchCategory, fallback.Items, notifier, cfg.CacheTTL)

	// 启动时在后台预热缓存，不阻塞主流程；首屏请求若未命中会现场抓取
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshJobTimeout)
		defer cancel()
		store.RefreshAll(ctx)
		log.Println("prewarm done")
	}()

	sched, err := scheduler.New(cfg.RefreshSpec(), store, refreshJobTimeout)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	sched.Start()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Printf("received %s, stopping refresh job...", sig)
		sched.Stop()
		os.Exit(0)
	}()

	// API
	r := gin.Default()
	// 若配置了全局访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(store, users, api.Dashboard{
		Categories:         cfg.Categories,
		IOCSource:          cfg.IOCBlocklistURL,
		AutoRefreshSeconds: 60,
	})
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}

// buildProviders 按分类注册数据源：RSS 来自配置，OTX 与 IOC 清单按需追加
func buildProviders(cfg *config.Config) map[string][]collector.Provider {
	providers := make(map[string][]collector.Provider, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		list := make([]collector.Provider, 0, len(cfg.Feeds[cat]))
		for _, url := range cfg.Feeds[cat] {
			list = append(list, collector.NewRSS(url, cfg.FetchTimeout))
		}
		providers[cat] = list
	}

	if cfg.OTXAPIKey != "" {
		if _, ok := providers["APT"]; ok {
			providers["APT"] = append(providers["APT"], collector.NewOTX(cfg.OTXAPIKey, "apt", cfg.FetchTimeout))
		}
	}
	if cfg.IOCBlocklistURL != "" {
		if _, ok := providers["Malware/Tools"]; ok {
			providers["Malware/Tools"] = append(providers["Malware/Tools"],
				collector.NewBlocklist("Feodo Tracker", cfg.IOCBlocklistURL, cfg.FetchTimeout))
		}
	}
	return providers
}

// basicAuthMiddleware 为整个站点增加一个简单的 Basic Auth 访问密码。
// 仅当配置了 APP_BASIC_USER / APP_BASIC_PASS 时启用。
// /health 不做认证，便于健康检查。
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, ok := c.Request.BasicAuth()
		if !ok ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
