package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ConfigResponse 配置响应
type ConfigResponse struct {
	ImportBatchSize   int    `json:"importBatchSize"`   // 每批写入行数
	ImportMaxRetries  int    `json:"importMaxRetries"`  // 单批最大尝试次数
	DefaultCategory   string `json:"defaultCategory"`   // 备件默认分类
	LastImportFile    string `json:"lastImportFile"`    // 最后导入文件
	AutoBackupEnabled bool   `json:"autoBackupEnabled"` // 是否自动备份
}

// UpdateConfigRequest 更新配置请求
type UpdateConfigRequest struct {
	// 使用 map 允许部分更新
	Updates map[string]interface{} `json:"updates"`
}

// GetConfig 获取所有配置
// GET /api/config
func (h *Handler) GetConfig(c *gin.Context) {
	allConfig, err := h.store.GetAllConfig()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "获取配置失败"})
		return
	}

	// 辅助函数：安全转换为整数，无值时取启动配置
	getInt := func(key string, fallback int) int {
		if val, ok := allConfig[key]; ok {
			if i, err := strconv.Atoi(val); err == nil {
				return i
			}
		}
		return fallback
	}

	getString := func(key, fallback string) string {
		if val, ok := allConfig[key]; ok && val != "" {
			return val
		}
		return fallback
	}

	c.JSON(http.StatusOK, ConfigResponse{
		ImportBatchSize:   getInt("import_batch_size", h.cfg.Import.BatchSize),
		ImportMaxRetries:  getInt("import_max_retries", h.cfg.Import.MaxRetries),
		DefaultCategory:   getString("default_category", "General"),
		LastImportFile:    getString("last_import_file", ""),
		AutoBackupEnabled: getString("auto_backup", "1") == "1",
	})
}

// UpdateConfig 更新配置
// PATCH /api/config
func (h *Handler) UpdateConfig(c *gin.Context) {
	var req UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误"})
		return
	}

	for key, value := range req.Updates {
		var strValue string

		switch v := value.(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case int:
			strValue = strconv.Itoa(v)
		case bool:
			if v {
				strValue = "1"
			} else {
				strValue = "0"
			}
		default:
			continue // 跳过不支持的类型
		}

		if err := h.store.SetConfig(key, strValue); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "更新配置失败: " + key,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "配置更新成功"})
}
