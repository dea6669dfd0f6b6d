package server

import (
	"log"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	v1 "sparehub/internal/api/v1"
	"sparehub/internal/config"
	"sparehub/internal/store"
)

// Server HTTP服务器
type Server struct {
	router *gin.Engine
	store  *store.Store
	v1     *v1.Handler
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) *Server {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化 SQLite Store
	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "sparehub.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	v1Handler := v1.NewHandler(sqliteStore, cfg)

	s := &Server{
		router: gin.Default(),
		store:  sqliteStore,
		v1:     v1Handler,
	}

	s.setupRoutes()

	return s
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// V1 API 路由
	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	// 健康检查
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭底层存储
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
