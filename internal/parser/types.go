package parser

import "time"

// Target 导入目标类型
type Target string

const (
	TargetStockItems    Target = "master_items"
	TargetMachines      Target = "machines"
	TargetIssueRequests Target = "issue_requests"
	TargetBreakdowns    Target = "breakdowns"
	TargetBOM           Target = "bom_records"
	TargetUnknown       Target = "unknown"
)

// ImportRow 规范化后的行数据：规范字段名 -> 单元格值（string 或 float64）。
// 未识别的列在规范化阶段已被丢弃。
type ImportRow map[string]any

// String 取字符串字段，缺失返回空串
func (r ImportRow) String(field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

// Float 取数值字段，缺失返回 0
func (r ImportRow) Float(field string) float64 {
	switch v := r[field].(type) {
	case float64:
		return v
	case string:
		return parseFloat(v)
	}
	return 0
}

// Has 判断字段是否存在
func (r ImportRow) Has(field string) bool {
	_, ok := r[field]
	return ok
}

// FieldMapping 列映射结果
type FieldMapping struct {
	ColumnIndex int    `json:"columnIndex"` // Excel 列索引
	ColumnName  string `json:"columnName"`  // 原始列名
	Field       string `json:"field"`       // 规范字段名
}

// RecognitionResult Sheet 识别结果
type RecognitionResult struct {
	SheetName  string  `json:"sheetName"`
	Target     Target  `json:"target"`
	Confidence float64 `json:"confidence"` // 置信度 0-1
}

// ParseResult 单个 Sheet 的处理结果
type ParseResult struct {
	SheetName     string        `json:"sheetName"`
	Target        Target        `json:"target"`
	Status        string        `json:"status"` // imported/partial/skipped/error
	AddedRows     int           `json:"addedRows"`
	UpdatedRows   int           `json:"updatedRows"`
	SkippedRows   int           `json:"skippedRows"`
	FailedMatches []string      `json:"failedMatches,omitempty"`
	Errors        []string      `json:"errors,omitempty"`
	Duration      time.Duration `json:"duration"`
}

// ImportReport 整次导入的汇总报告
type ImportReport struct {
	Filename       string        `json:"filename"`
	TotalSheets    int           `json:"totalSheets"`
	ImportedSheets int           `json:"importedSheets"`
	SkippedSheets  int           `json:"skippedSheets"`
	AddedRows      int           `json:"addedRows"`
	UpdatedRows    int           `json:"updatedRows"`
	SkippedRows    int           `json:"skippedRows"`
	FailedMatches  []string      `json:"failedMatches,omitempty"`
	Duration       time.Duration `json:"duration"`
	Sheets         []ParseResult `json:"sheets"`
}
