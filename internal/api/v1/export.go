package v1

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"sparehub/internal/exporter"
)

// ExportRequest 导出请求
type ExportRequest struct {
	IncludeItems    *bool `json:"includeItems"`
	IncludeMachines *bool `json:"includeMachines"`
	IncludeRequests *bool `json:"includeRequests"`
}

// Export 导出备件台账 Excel，直接以附件返回
// POST /api/export
func (h *Handler) Export(c *gin.Context) {
	opts := exporter.DefaultExportOptions()

	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err == nil {
		if req.IncludeItems != nil {
			opts.IncludeItems = *req.IncludeItems
		}
		if req.IncludeMachines != nil {
			opts.IncludeMachines = *req.IncludeMachines
		}
		if req.IncludeRequests != nil {
			opts.IncludeRequests = *req.IncludeRequests
		}
	}

	exp := exporter.NewExporter(h.store)
	file, err := exp.Export(opts)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "导出失败: " + err.Error()})
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "写入导出文件失败"})
		return
	}

	filename := fmt.Sprintf("备件台账_%s.xlsx", time.Now().Format("20060102_150405"))
	c.Header("Content-Disposition",
		fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
	c.Data(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
