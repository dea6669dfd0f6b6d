package exporter

import (
	"context"
	"path/filepath"
	"testing"

	"sparehub/internal/gateway"
	"sparehub/internal/model"
	"sparehub/internal/store"
)

func seedStore(t *testing.T) *store.Store {
	t.Helper()

	st, err := store.New(filepath.Join(t.TempDir(), "sparehub.db"))
	if err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	ctx := context.Background()
	entities := []struct {
		table string
		e     model.Entity
	}{
		{"master_items", &model.MasterItem{ID: "IT-100", Name: "液压滤芯", PartNumber: "PN-55", Unit: "个", StockQuantity: 5, Category: "滤芯"}},
		{"machines", &model.Machine{ID: "MC-1", Category: "挖掘机", ChassisNo: "CH-9001", LocationID: "LOC-1", Status: model.MachineStatusWorking, Tags: []string{"主力"}}},
		{"issue_requests", &model.IssueRequest{ID: "REQ-1", ItemID: "IT-100", Quantity: 2, LocationID: "LOC-1", RequestedBy: "张三", Status: model.RequestStatusPending, RequestDate: "2024-03-15 10:00:00"}},
	}
	for _, ent := range entities {
		record, err := gateway.EncodeRecord(ent.table, ent.e)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		pk := "id"
		if err := st.UpsertBatch(ctx, ent.table, pk, []map[string]any{record}); err != nil {
			t.Fatalf("seed %s: %v", ent.table, err)
		}
	}
	return st
}

func TestExport_AllSheets(t *testing.T) {
	t.Parallel()

	st := seedStore(t)
	exp := NewExporter(st)

	f, err := exp.Export(DefaultExportOptions())
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	sheets := f.GetSheetList()
	want := map[string]bool{"备件清单": true, "设备台账": true, "领用申请": true}
	for _, s := range sheets {
		delete(want, s)
	}
	if len(want) != 0 {
		t.Fatalf("missing sheets: %v (got %v)", want, sheets)
	}

	// 表头
	if v, _ := f.GetCellValue("备件清单", "A1"); v != "备件编号" {
		t.Fatalf("items header A1 = %q", v)
	}
	// 数据行
	if v, _ := f.GetCellValue("备件清单", "B2"); v != "液压滤芯" {
		t.Fatalf("items B2 = %q", v)
	}
	if v, _ := f.GetCellValue("设备台账", "C2"); v != "CH-9001" {
		t.Fatalf("machines C2 = %q", v)
	}
	if v, _ := f.GetCellValue("设备台账", "G2"); v != "主力" {
		t.Fatalf("machines tags G2 = %q", v)
	}
	if v, _ := f.GetCellValue("领用申请", "F2"); v != "张三" {
		t.Fatalf("requests F2 = %q", v)
	}
}

func TestExport_SelectedSheetsOnly(t *testing.T) {
	t.Parallel()

	st := seedStore(t)
	exp := NewExporter(st)

	f, err := exp.Export(ExportOptions{IncludeItems: true})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	t.Cleanup(func() { _ = f.Close() })

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != "备件清单" {
		t.Fatalf("sheets = %v, want only 备件清单", sheets)
	}
}

func TestExport_NoSheetsSelected(t *testing.T) {
	t.Parallel()

	st := seedStore(t)
	exp := NewExporter(st)

	if _, err := exp.Export(ExportOptions{}); err == nil {
		t.Fatalf("expected error when no sheet selected")
	}
}
