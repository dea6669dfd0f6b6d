package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Initialized    bool   `json:"initialized"`    // 是否已初始化（有数据）
	ItemCount      int    `json:"itemCount"`      // 备件总数
	MachineCount   int    `json:"machineCount"`   // 设备总数
	LocationCount  int    `json:"locationCount"`  // 仓库/位置总数
	RequestCount   int    `json:"requestCount"`   // 领用申请总数
	BreakdownCount int    `json:"breakdownCount"` // 故障记录总数
	BOMCount       int    `json:"bomCount"`       // BOM 记录总数
	LastImportFile string `json:"lastImportFile"` // 最后导入文件
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	count := func(table string) int {
		n, err := h.store.CountTable(table)
		if err != nil {
			return 0
		}
		return n
	}

	itemCount := count("master_items")
	machineCount := count("machines")

	lastImport, err := h.store.GetConfig("last_import_file")
	if err != nil {
		lastImport = ""
	}

	c.JSON(http.StatusOK, StatusResponse{
		Initialized:    itemCount+machineCount > 0,
		ItemCount:      itemCount,
		MachineCount:   machineCount,
		LocationCount:  count("locations"),
		RequestCount:   count("issue_requests"),
		BreakdownCount: count("breakdowns"),
		BOMCount:       count("bom_records"),
		LastImportFile: lastImport,
	})
}
