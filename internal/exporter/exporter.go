package exporter

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"sparehub/internal/gateway"
	"sparehub/internal/store"
)

// Exporter 备件台账导出器
//
// 从零生成工作簿：备件、设备、领用申请各占一个 Sheet，表头为中文列名并加粗冻结。
type Exporter struct {
	store *store.Store
}

// NewExporter 创建导出器
func NewExporter(st *store.Store) *Exporter {
	return &Exporter{store: st}
}

// ExportOptions 导出选项
type ExportOptions struct {
	IncludeItems    bool
	IncludeMachines bool
	IncludeRequests bool
}

// DefaultExportOptions 默认导出全部 Sheet
func DefaultExportOptions() ExportOptions {
	return ExportOptions{
		IncludeItems:    true,
		IncludeMachines: true,
		IncludeRequests: true,
	}
}

// Export 导出 Excel
func (e *Exporter) Export(opts ExportOptions) (*excelize.File, error) {
	f := excelize.NewFile()

	wrote := false
	if opts.IncludeItems {
		if err := e.fillItemsSheet(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		wrote = true
	}
	if opts.IncludeMachines {
		if err := e.fillMachinesSheet(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		wrote = true
	}
	if opts.IncludeRequests {
		if err := e.fillRequestsSheet(f); err != nil {
			_ = f.Close()
			return nil, err
		}
		wrote = true
	}

	if !wrote {
		_ = f.Close()
		return nil, fmt.Errorf("导出失败: 未选择任何 Sheet")
	}

	// excelize 默认创建 Sheet1，全部填充完成后删除
	_ = f.DeleteSheet("Sheet1")
	f.SetActiveSheet(0)
	return f, nil
}

func (e *Exporter) fillItemsSheet(f *excelize.File) error {
	items, err := e.store.GetAllItems()
	if err != nil {
		return fmt.Errorf("读取备件数据失败: %w", err)
	}

	headers := []string{"备件编号", "名称", "全称", "零件号", "第二编号", "第三编号", "单位", "库存数量", "分类"}
	if err := e.newSheet(f, "备件清单", headers); err != nil {
		return err
	}

	for i, it := range items {
		row := i + 2
		cells := []interface{}{
			it.ID, it.Name, it.FullName, it.PartNumber,
			it.SecondID, it.ThirdID, it.Unit, it.StockQuantity, it.Category,
		}
		if err := e.writeRow(f, "备件清单", row, cells); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) fillMachinesSheet(f *excelize.File) error {
	machines, err := e.store.GetAllMachines()
	if err != nil {
		return fmt.Errorf("读取设备数据失败: %w", err)
	}

	headers := []string{"设备编号", "设备类别", "底盘号", "自编号", "位置", "状态", "标签"}
	if err := e.newSheet(f, "设备台账", headers); err != nil {
		return err
	}

	for i, m := range machines {
		row := i + 2
		cells := []interface{}{
			m.ID, m.Category, m.ChassisNo, m.MachineLocalNo,
			m.LocationID, string(m.Status), gateway.JoinList(m.Tags),
		}
		if err := e.writeRow(f, "设备台账", row, cells); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exporter) fillRequestsSheet(f *excelize.File) error {
	requests, err := e.store.GetAllIssueRequests()
	if err != nil {
		return fmt.Errorf("读取领用申请数据失败: %w", err)
	}

	headers := []string{"申请编号", "备件编号", "数量", "仓库", "设备编号", "申请人", "状态", "申请日期"}
	if err := e.newSheet(f, "领用申请", headers); err != nil {
		return err
	}

	for i, r := range requests {
		row := i + 2
		cells := []interface{}{
			r.ID, r.ItemID, r.Quantity, r.LocationID,
			r.MachineID, r.RequestedBy, string(r.Status), r.RequestDate,
		}
		if err := e.writeRow(f, "领用申请", row, cells); err != nil {
			return err
		}
	}
	return nil
}

// newSheet 创建 Sheet 并写入表头
func (e *Exporter) newSheet(f *excelize.File, name string, headers []string) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("创建 Sheet 失败: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}

	styleID, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return err
	}

	lastCell, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(name, "A1", lastCell, styleID); err != nil {
		return err
	}

	// 冻结首行
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	// 列宽按表头字符数粗调
	for i, h := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(len([]rune(h))*2 + 8)
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}

	return nil
}

// writeRow 写入一行数据
func (e *Exporter) writeRow(f *excelize.File, sheet string, row int, cells []interface{}) error {
	for i, v := range cells {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}
