package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"cyberintel/internal/cache"
	"cyberintel/internal/processor"
	"cyberintel/internal/user"
)

const (
	defaultLimit = 60
	maxLimit     = 200

	// Home 是聚合视图的虚拟分类名
	mergedCategory = "Home"

	noTitle = "(no title)"
)

// Dashboard 是渲染首页所需的配置
type Dashboard struct {
	Categories         []string
	IOCSource          string
	AutoRefreshSeconds int
}

type Server struct {
	store *cache.Store
	users *user.Store
	page  []byte
}

func NewServer(store *cache.Store, users *user.Store, dash Dashboard) *Server {
	return &Server{
		store: store,
		users: users,
		page:  renderDashboard(dash),
	}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)
	r.GET("/", s.index)

	api := r.Group("/api")
	{
		api.GET("/news", s.news)
		api.GET("/stats", s.stats)
		api.POST("/refresh", s.refresh)
		api.POST("/register", s.register)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", s.page)
}

func (s *Server) news(c *gin.Context) {
	category := c.DefaultQuery("category", mergedCategory)
	limit := parseLimit(c.DefaultQuery("limit", ""))

	if category == mergedCategory {
		items, updated := s.store.All(c.Request.Context(), limit)
		c.JSON(http.StatusOK, gin.H{
			"items":     display(items),
			"total_all": len(items),
			"updated":   updated.UTC().Format(time.RFC3339),
		})
		return
	}

	items, total, updated := s.store.Category(c.Request.Context(), category, limit)
	c.JSON(http.StatusOK, gin.H{
		"items":     display(items),
		"total_all": total,
		"updated":   updated.UTC().Format(time.RFC3339),
	})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.Stats())
}

func (s *Server) refresh(c *gin.Context) {
	updated := s.store.ForceRefresh(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"updated": updated.UTC().Format(time.RFC3339),
	})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "invalid request body",
		})
		return
	}

	u, err := s.users.Register(req.Email, req.Password)
	switch {
	case errors.Is(err, user.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{
			"code":    "bad_request",
			"message": "email and password are required",
		})
	case errors.Is(err, user.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{
			"code":    "duplicate_email",
			"message": "email already registered",
		})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{
			"code":    "internal_error",
			"message": "internal server error",
		})
	default:
		c.JSON(http.StatusCreated, gin.H{
			"status": "ok",
			"email":  u.Email,
		})
	}
}

func parseLimit(raw string) int {
	if raw == "" {
		return defaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultLimit
	}
	if n > maxLimit {
		return maxLimit
	}
	return n
}

// display 输出前套一层标题兜底；缓存内保留空标题以便判别
func display(items []processor.Item) []processor.Item {
	out := make([]processor.Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Title == "" {
			out[i].Title = noTitle
		}
	}
	return out
}
