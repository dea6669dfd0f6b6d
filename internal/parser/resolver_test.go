package parser

import (
	"testing"

	"sparehub/internal/model"
)

func testMasterData() MasterData {
	return MasterData{
		Items: []*model.MasterItem{
			{ID: "IT-100", Name: "液压滤芯", FullName: "液压回油滤芯总成", PartNumber: "PN-55", SecondID: "ALT-7"},
			{ID: "IT-200", Name: "空气滤芯", PartNumber: "PN-66"},
		},
		Machines: []*model.Machine{
			{ID: "MC-1", Category: "挖掘机", ChassisNo: "CH-9001", MachineLocalNo: "T-01"},
		},
		Locations: []*model.Location{
			{ID: "LOC-1", Name: "Warehouse A"},
		},
	}
}

func TestResolveItem(t *testing.T) {
	t.Parallel()

	r := NewResolver(testMasterData())

	cases := []struct {
		ref  string
		want string
	}{
		{"IT-100", "IT-100"},   // 主键直达
		{"PN-55", "IT-100"},    // 零件号
		{"ALT-7", "IT-100"},    // 别名编码
		{"液压滤芯", "IT-100"},     // 名称
		{"液压回油滤芯总成", "IT-100"}, // 全称
		{"100", "IT-100"},      // 纯数字比对
		{" PN-66 ", "IT-200"},  // 首尾空白剥离
		{"不存在的备件", ""},
		{"", ""},
	}

	for _, c := range cases {
		if got := r.ResolveItem(c.ref); got != c.want {
			t.Fatalf("ResolveItem(%q) = %q, want %q", c.ref, got, c.want)
		}
	}
}

func TestResolveItem_NameCaseInsensitive(t *testing.T) {
	t.Parallel()

	r := NewResolver(MasterData{
		Items: []*model.MasterItem{{ID: "IT-1", Name: "Oil Filter"}},
	})

	if got := r.ResolveItem("OIL FILTER"); got != "IT-1" {
		t.Fatalf("ResolveItem(OIL FILTER) = %q, want IT-1", got)
	}
}

func TestResolveMachine(t *testing.T) {
	t.Parallel()

	r := NewResolver(testMasterData())

	cases := []struct {
		ref  string
		want string
	}{
		{"MC-1", "MC-1"},
		{"CH-9001", "MC-1"}, // 底盘号
		{"T-01", "MC-1"},    // 自编号
		{"挖掘机", "MC-1"},     // 类别名
		{"1", "MC-1"},       // 纯数字比对
		{"装载机", ""},
	}

	for _, c := range cases {
		if got := r.ResolveMachine(c.ref); got != c.want {
			t.Fatalf("ResolveMachine(%q) = %q, want %q", c.ref, got, c.want)
		}
	}
}

func TestResolveLocation(t *testing.T) {
	t.Parallel()

	r := NewResolver(testMasterData())

	if got := r.ResolveLocation("warehouse a"); got != "LOC-1" {
		t.Fatalf("ResolveLocation(warehouse a) = %q, want LOC-1", got)
	}
	if got := r.ResolveLocation("Warehouse B"); got != "" {
		t.Fatalf("ResolveLocation(Warehouse B) = %q, want empty", got)
	}
}

func TestResolve_FirstRegisteredKeyWins(t *testing.T) {
	t.Parallel()

	// 两个备件零件号冲突时保留先注册的
	r := NewResolver(MasterData{
		Items: []*model.MasterItem{
			{ID: "IT-1", Name: "A", PartNumber: "DUP"},
			{ID: "IT-2", Name: "B", PartNumber: "DUP"},
		},
	})

	if got := r.ResolveItem("DUP"); got != "IT-1" {
		t.Fatalf("ResolveItem(DUP) = %q, want IT-1", got)
	}
}

func TestResolve_TextRefNeverMatchesDigits(t *testing.T) {
	t.Parallel()

	r := NewResolver(MasterData{
		Items: []*model.MasterItem{{ID: "IT-77", Name: "某备件"}},
	})

	// 纯文本引用剥离后为空，不应误配到数字键
	if got := r.ResolveItem("型号七七"); got != "" {
		t.Fatalf("ResolveItem(型号七七) = %q, want empty", got)
	}
}
