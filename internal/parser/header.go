package parser

import (
	"errors"
	"strings"
)

// ErrEmptyInput 表格中没有任何数据行
var ErrEmptyInput = errors.New("no data rows found")

// headerScanLimit 表头探测只扫描前 10 行
const headerScanLimit = 10

// headerKeywords 表头关键词，命中 ≥2 个即认定为表头行。
// 中英文并存：源表格来自不同系统，列名语言不统一。
var headerKeywords = []string{
	"id", "date", "qty", "item", "machine", "unit", "status",
	"name", "part", "serial", "brand", "model",
	"编号", "代码", "日期", "数量", "名称", "单位", "状态",
	"型号", "底盘", "品牌", "位置", "仓库", "设备", "备件", "物料",
}

// DetectHeaderRow 在原始单元格网格的前 10 行内定位表头行。
// 自上而下扫描，第一个命中 ≥2 个关键词的行即为表头；
// 全部未命中时回退到第 0 行。空网格返回 ErrEmptyInput。
func DetectHeaderRow(rows [][]string) (int, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyInput
	}

	limit := len(rows)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}

	for i := 0; i < limit; i++ {
		hits := 0
		for _, cell := range rows[i] {
			cell = strings.ToLower(strings.TrimSpace(cell))
			if cell == "" {
				continue
			}
			if ContainsAny(cell, headerKeywords) {
				hits++
			}
		}
		if hits >= 2 {
			return i, nil
		}
	}

	return 0, nil
}
