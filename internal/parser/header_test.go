package parser

import (
	"errors"
	"testing"
)

func TestDetectHeaderRow_EmptyGrid(t *testing.T) {
	t.Parallel()

	if _, err := DetectHeaderRow(nil); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if _, err := DetectHeaderRow([][]string{}); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
}

func TestDetectHeaderRow_SkipsPreamble(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"某厂备件领用记录"},
		{"制表人: 张三", "2024年3月"},
		{"申请编号", "物料编码", "数量", "仓库"},
		{"REQ-1", "PN-55", "3", "Warehouse A"},
	}

	idx, err := DetectHeaderRow(rows)
	if err != nil {
		t.Fatalf("detect header: %v", err)
	}
	if idx != 2 {
		t.Fatalf("header row index = %d, want 2", idx)
	}
}

func TestDetectHeaderRow_FallbackToFirstRow(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"col_a", "col_b"},
		{"1", "2"},
	}

	idx, err := DetectHeaderRow(rows)
	if err != nil {
		t.Fatalf("detect header: %v", err)
	}
	if idx != 0 {
		t.Fatalf("header row index = %d, want 0", idx)
	}
}

func TestDetectHeaderRow_ScanLimit(t *testing.T) {
	t.Parallel()

	// 表头在第 12 行，超出扫描上限，应回退到第 0 行
	rows := make([][]string, 0, 13)
	for i := 0; i < 12; i++ {
		rows = append(rows, []string{"填充"})
	}
	rows = append(rows, []string{"设备编号", "状态", "日期"})

	idx, err := DetectHeaderRow(rows)
	if err != nil {
		t.Fatalf("detect header: %v", err)
	}
	if idx != 0 {
		t.Fatalf("header row index = %d, want 0", idx)
	}
}

func TestDetectHeaderRow_SingleKeywordNotEnough(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"设备维修记录表"}, // 只命中 1 个关键词
		{"设备编号", "故障描述", "报修日期", "状态"},
	}

	idx, err := DetectHeaderRow(rows)
	if err != nil {
		t.Fatalf("detect header: %v", err)
	}
	if idx != 1 {
		t.Fatalf("header row index = %d, want 1", idx)
	}
}
