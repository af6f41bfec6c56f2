package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Categories 是默认的分类清单（展示顺序）
var Categories = []string{
	"Ransomware",
	"Vulnerabilities",
	"Data Breaches",
	"APT",
	"Phishing",
	"Cloud/SaaS",
	"Malware/Tools",
}

// DefaultFeeds 是各分类默认的 RSS 源
var DefaultFeeds = map[string][]string{
	"Ransomware": {
		"https://www.bleepingcomputer.com/tag/ransomware/feed/",
	},
	"Vulnerabilities": {
		"https://thehackernews.com/feeds/posts/default/-/Vulnerability",
		"https://packetstormsecurity.com/files/tags/vulnerabilities/feed",
	},
	"Data Breaches": {
		"https://www.bleepingcomputer.com/tag/data-breach/feed/",
		"https://www.databreaches.net/feed/",
	},
	"APT": {
		"https://thehackernews.com/feeds/posts/default/-/APT",
	},
	"Phishing": {
		"https://www.bleepingcomputer.com/tag/phishing/feed/",
		"https://thehackernews.com/feeds/posts/default/-/Phishing",
	},
	"Cloud/SaaS": {
		"https://cloud.google.com/blog/topics/security/rss/",
	},
	"Malware/Tools": {
		"https://www.bleepingcomputer.com/tag/malware/feed/",
	},
}

type Config struct {
	AppPort string

	CacheTTL        time.Duration
	RefreshInterval time.Duration
	FetchTimeout    time.Duration

	// 分类与订阅源，可被 FEEDS_FILE 指向的 YAML 整体覆盖
	Categories []string
	Feeds      map[string][]string
	FeedsFile  string

	OTXAPIKey       string
	IOCBlocklistURL string

	UserDBPath string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	BasicAuthUser string
	BasicAuthPass string
}

func Load() *Config {
	// .env 仅本地开发用，缺失不报错
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		CacheTTL:        getDuration("CACHE_TTL", 10*time.Minute),
		RefreshInterval: getDuration("REFRESH_INTERVAL", 10*time.Minute),
		FetchTimeout:    getDuration("FETCH_TIMEOUT", 10*time.Second),
		FeedsFile:       getEnv("FEEDS_FILE", ""),
		OTXAPIKey:       getEnv("OTX_API_KEY", ""),
		IOCBlocklistURL: getEnv("IOC_BLOCKLIST_URL", "https://feodotracker.abuse.ch/downloads/ipblocklist.txt"),
		UserDBPath:      getEnv("USER_DB_PATH", "cyberintel.db"),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getInt("SMTP_PORT", 587),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPass:        getEnv("SMTP_PASS", ""),
		SMTPFrom:        getEnv("SMTP_FROM", "cyberintel@localhost"),
		BasicAuthUser:   getEnv("APP_BASIC_USER", ""),
		BasicAuthPass:   getEnv("APP_BASIC_PASS", ""),
	}

	cfg.Categories = append([]string(nil), Categories...)
	cfg.Feeds = copyFeeds(DefaultFeeds)

	if cfg.FeedsFile != "" {
		if err := cfg.loadFeedsFile(); err != nil {
			log.Printf("config: feeds file %s: %v (falling back to defaults)", cfg.FeedsFile, err)
		}
	}

	log.Printf("config loaded: port=%s ttl=%s refresh=%s categories=%d",
		cfg.AppPort, cfg.CacheTTL, cfg.RefreshInterval, len(cfg.Categories))
	return cfg
}

// RefreshSpec 返回后台刷新的 cron 表达式
func (c *Config) RefreshSpec() string {
	return fmt.Sprintf("@every %s", c.RefreshInterval)
}

// feedsFile 用列表保序：YAML map 不保证分类顺序
type feedsFile struct {
	Categories []struct {
		Name  string   `yaml:"name"`
		Feeds []string `yaml:"feeds"`
	} `yaml:"categories"`
}

func (c *Config) loadFeedsFile() error {
	data, err := os.ReadFile(c.FeedsFile)
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}

	var ff feedsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if len(ff.Categories) == 0 {
		return fmt.Errorf("no categories defined")
	}

	cats := make([]string, 0, len(ff.Categories))
	feeds := make(map[string][]string, len(ff.Categories))
	for _, fc := range ff.Categories {
		if fc.Name == "" {
			continue
		}
		cats = append(cats, fc.Name)
		feeds[fc.Name] = append([]string(nil), fc.Feeds...)
	}
	if len(cats) == 0 {
		return fmt.Errorf("no named categories")
	}

	c.Categories = cats
	c.Feeds = feeds
	return nil
}

func copyFeeds(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("config: invalid %s=%q, using %s", key, v, def)
		return def
	}
	return d
}
