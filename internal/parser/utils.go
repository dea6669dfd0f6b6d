package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DateLayout 规范时间戳格式，所有日期字段统一转换为该格式
const DateLayout = "2006-01-02 15:04:05"

var (
	headerStripRe = regexp.MustCompile(`[\s\-_.·、]+`)
	nonDigitRe    = regexp.MustCompile(`\D+`)
)

// NormalizeHeaderKey 规范化列名：去除空白/连字符/下划线/点号后转小写。
// 不同源系统导出的列名只在这些字符和大小写上有差异。
func NormalizeHeaderKey(name string) string {
	name = strings.ReplaceAll(name, "\n", "")
	name = strings.ReplaceAll(name, "\r", "")
	name = headerStripRe.ReplaceAllString(name, "")
	return strings.ToLower(strings.TrimSpace(name))
}

// trimCell 清理单元格值的首尾空白
func trimCell(s string) string {
	return strings.TrimSpace(s)
}

// DigitsOnly 去除所有非数字字符
func DigitsOnly(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// ContainsAny 检查字符串是否包含任意一个关键词
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// parseFloat 安全转换为浮点数，无法解析时返回 0
func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "") // 移除千分位
	s = strings.ReplaceAll(s, "％", "%")
	s = strings.ReplaceAll(s, "%", "")
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

// parseInt 安全转换为整数，无法解析时返回 0
func parseInt(s string) int {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	i, _ := strconv.Atoi(s)
	return i
}

// dateLayouts 常见的日期输入格式，按出现频率排序
var dateLayouts = []string{
	DateLayout,
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"2006.01.02",
	"01-02-06",
	"1/2/06 15:04",
	"2006年1月2日",
	time.RFC3339,
}

// parseDate 将日期单元格转换为规范时间戳；无法解析时软性回退到当前时间
func parseDate(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return now.Format(DateLayout)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(DateLayout)
		}
	}
	// Excel 序列日期
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial > 25569 && serial < 80000 {
		t := time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC).Add(time.Duration(serial * 24 * float64(time.Hour)))
		return t.Format(DateLayout)
	}
	return now.Format(DateLayout)
}
