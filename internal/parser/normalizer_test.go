package parser

import (
	"testing"
	"time"
)

func TestMapColumns_IssueRequests(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	headers := []string{"Item Code", "Qty", "Warehouse", "备注说明"}

	mappings := n.MapColumns(headers, TargetIssueRequests)

	want := map[int]string{
		0: "itemId",
		1: "quantity",
		2: "locationId",
	}
	if len(mappings) != len(want) {
		t.Fatalf("mapped %d columns, want %d", len(mappings), len(want))
	}
	for idx, field := range want {
		m, ok := mappings[idx]
		if !ok {
			t.Fatalf("column %d not mapped", idx)
		}
		if m.Field != field {
			t.Fatalf("column %d mapped to %q, want %q", idx, m.Field, field)
		}
	}
}

func TestMapColumns_FirstColumnWins(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	// "数量" 和 "Qty" 都指向 quantity，保留靠前的列
	headers := []string{"数量", "Qty", "物料编码"}

	mappings := n.MapColumns(headers, TargetIssueRequests)

	if m, ok := mappings[0]; !ok || m.Field != "quantity" {
		t.Fatalf("column 0 mapping = %+v, want quantity", mappings[0])
	}
	if _, ok := mappings[1]; ok {
		t.Fatalf("column 1 should not claim quantity twice")
	}
}

func TestNormalizeRow(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	headers := []string{"Item Code", "Qty", "Warehouse", "申请日期"}
	mappings := n.MapColumns(headers, TargetIssueRequests)

	row := n.NormalizeRow([]string{" PN-55 ", "3", "Warehouse A", "2024-03-01"}, mappings, TargetIssueRequests)
	if row == nil {
		t.Fatalf("row should not be nil")
	}

	if got := row.String("itemId"); got != "PN-55" {
		t.Fatalf("itemId = %q, want PN-55", got)
	}
	if got := row.Float("quantity"); got != 3 {
		t.Fatalf("quantity = %v, want 3", got)
	}
	if got := row.String("locationId"); got != "Warehouse A" {
		t.Fatalf("locationId = %q, want Warehouse A", got)
	}
	if got := row.String("requestDate"); got != "2024-03-01 00:00:00" {
		t.Fatalf("requestDate = %q", got)
	}
}

func TestNormalizeRow_EmptyCellsSkipped(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	headers := []string{"物料编码", "数量", "仓库"}
	mappings := n.MapColumns(headers, TargetIssueRequests)

	row := n.NormalizeRow([]string{"PN-1", "", "  "}, mappings, TargetIssueRequests)
	if row == nil {
		t.Fatalf("row should not be nil")
	}
	if row.Has("quantity") {
		t.Fatalf("empty quantity cell should not produce a field")
	}
	if row.Has("locationId") {
		t.Fatalf("blank locationId cell should not produce a field")
	}
}

func TestNormalizeRow_AllEmptyReturnsNil(t *testing.T) {
	t.Parallel()

	n := NewNormalizer()
	headers := []string{"物料编码", "数量"}
	mappings := n.MapColumns(headers, TargetIssueRequests)

	if row := n.NormalizeRow([]string{"", ""}, mappings, TargetIssueRequests); row != nil {
		t.Fatalf("all-empty row = %v, want nil", row)
	}
	// 行比表头短也不越界
	if row := n.NormalizeRow([]string{}, mappings, TargetIssueRequests); row != nil {
		t.Fatalf("short row = %v, want nil", row)
	}
}

func TestNormalizeRow_GarbageNumericBecomesZero(t *testing.T) {
	t.Parallel()

	n := &Normalizer{now: func() time.Time {
		return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	}}
	headers := []string{"物料编码", "数量"}
	mappings := n.MapColumns(headers, TargetStockItems)

	row := n.NormalizeRow([]string{"PN-1", "若干"}, mappings, TargetStockItems)
	if row == nil {
		t.Fatalf("row should not be nil")
	}
	if got := row.Float("stockQuantity"); got != 0 {
		t.Fatalf("stockQuantity = %v, want 0", got)
	}
}
