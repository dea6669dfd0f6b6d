package v1

import (
	"github.com/gin-gonic/gin"

	"sparehub/internal/config"
	"sparehub/internal/store"
)

// Handler V1 API 处理器
type Handler struct {
	store *store.Store
	cfg   *config.AppConfig
}

// NewHandler 创建 V1 API 处理器
func NewHandler(store *store.Store, cfg *config.AppConfig) *Handler {
	return &Handler{
		store: store,
		cfg:   cfg,
	}
}

// RegisterRoutes 注册 V1 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 配置管理
	router.GET("/config", h.GetConfig)
	router.PATCH("/config", h.UpdateConfig)

	// 数据导入
	router.POST("/import", h.Import)

	// 数据查询
	router.GET("/items", h.ListItems)
	router.GET("/machines", h.ListMachines)
	router.GET("/locations", h.ListLocations)
	router.GET("/requests", h.ListIssueRequests)
	router.GET("/breakdowns", h.ListBreakdowns)
	router.GET("/bom", h.ListBOM)
	router.GET("/users", h.ListUsers)

	// 数据导出
	router.POST("/export", h.Export)
}
