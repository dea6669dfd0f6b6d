package v1

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sparehub/internal/model"
)

// ListItems 查询备件清单，支持按名称/编号模糊过滤
// GET /api/items?q=xxx
func (h *Handler) ListItems(c *gin.Context) {
	items, err := h.store.GetAllItems()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取备件数据失败"})
		return
	}

	if q := strings.ToLower(strings.TrimSpace(c.Query("q"))); q != "" {
		filtered := make([]*model.MasterItem, 0, len(items))
		for _, it := range items {
			if strings.Contains(strings.ToLower(it.ID), q) ||
				strings.Contains(strings.ToLower(it.Name), q) ||
				strings.Contains(strings.ToLower(it.PartNumber), q) {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}

	c.JSON(http.StatusOK, gin.H{"total": len(items), "items": items})
}

// ListMachines 查询设备台账
// GET /api/machines?status=xxx
func (h *Handler) ListMachines(c *gin.Context) {
	machines, err := h.store.GetAllMachines()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取设备数据失败"})
		return
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filtered := make([]*model.Machine, 0, len(machines))
		for _, m := range machines {
			if string(m.Status) == status {
				filtered = append(filtered, m)
			}
		}
		machines = filtered
	}

	c.JSON(http.StatusOK, gin.H{"total": len(machines), "items": machines})
}

// ListLocations 查询仓库/位置
// GET /api/locations
func (h *Handler) ListLocations(c *gin.Context) {
	locations, err := h.store.GetAllLocations()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取位置数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(locations), "items": locations})
}

// ListIssueRequests 查询领用申请
// GET /api/requests?status=xxx
func (h *Handler) ListIssueRequests(c *gin.Context) {
	requests, err := h.store.GetAllIssueRequests()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取领用申请失败"})
		return
	}

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		filtered := make([]*model.IssueRequest, 0, len(requests))
		for _, r := range requests {
			if string(r.Status) == status {
				filtered = append(filtered, r)
			}
		}
		requests = filtered
	}

	c.JSON(http.StatusOK, gin.H{"total": len(requests), "items": requests})
}

// ListBreakdowns 查询故障记录
// GET /api/breakdowns?machineId=xxx
func (h *Handler) ListBreakdowns(c *gin.Context) {
	breakdowns, err := h.store.GetAllBreakdowns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取故障记录失败"})
		return
	}

	if machineID := strings.TrimSpace(c.Query("machineId")); machineID != "" {
		filtered := make([]*model.Breakdown, 0, len(breakdowns))
		for _, b := range breakdowns {
			if b.MachineID == machineID {
				filtered = append(filtered, b)
			}
		}
		breakdowns = filtered
	}

	c.JSON(http.StatusOK, gin.H{"total": len(breakdowns), "items": breakdowns})
}

// ListBOM 查询 BOM 记录
// GET /api/bom?category=xxx&modelNo=xxx
func (h *Handler) ListBOM(c *gin.Context) {
	records, err := h.store.GetAllBOM()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取 BOM 数据失败"})
		return
	}

	category := strings.TrimSpace(c.Query("category"))
	modelNo := strings.TrimSpace(c.Query("modelNo"))
	if category != "" || modelNo != "" {
		filtered := make([]*model.BOMRecord, 0, len(records))
		for _, r := range records {
			if category != "" && r.MachineCategory != category {
				continue
			}
			if modelNo != "" && r.ModelNo != modelNo {
				continue
			}
			filtered = append(filtered, r)
		}
		records = filtered
	}

	c.JSON(http.StatusOK, gin.H{"total": len(records), "items": records})
}

// ListUsers 查询用户
// GET /api/users
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.store.GetAllUsers()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "读取用户数据失败"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"total": len(users), "items": users})
}
