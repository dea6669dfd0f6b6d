package parser

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"sparehub/internal/model"
)

// newTestReconciler 固定时钟与随机后缀，保证合成 ID 可断言
func newTestReconciler(md MasterData) *Reconciler {
	rc := NewReconciler(NewResolver(md))
	rc.now = func() time.Time {
		return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	}
	seq := 0
	rc.suffix = func() string {
		seq++
		return fmt.Sprintf("%06d", seq)
	}
	return rc
}

// assertDisjoint 同一主键不得同时出现在两份列表，ToAdd 内也不得重复
func assertDisjoint(t *testing.T, cs model.ChangeSet) {
	t.Helper()
	seen := make(map[string]string)
	for _, e := range cs.ToAdd {
		if where, ok := seen[e.EntityID()]; ok {
			t.Fatalf("id %s appears twice (%s and toAdd)", e.EntityID(), where)
		}
		seen[e.EntityID()] = "toAdd"
	}
	for _, e := range cs.ToUpdate {
		if where, ok := seen[e.EntityID()]; ok {
			t.Fatalf("id %s appears twice (%s and toUpdate)", e.EntityID(), where)
		}
		seen[e.EntityID()] = "toUpdate"
	}
}

func TestReconcileItems_NewAndExisting(t *testing.T) {
	t.Parallel()

	existing := []*model.MasterItem{
		{ID: "IT-100", Name: "液压滤芯", PartNumber: "PN-55", Unit: "个", StockQuantity: 5, Category: "滤芯"},
	}
	rc := newTestReconciler(MasterData{Items: existing})

	rows := []ImportRow{
		{"id": "PN-55", "stockQuantity": float64(8)},              // 零件号指回既有备件
		{"name": "新备件", "unit": "件", "stockQuantity": float64(2)}, // 无 ID，新增
	}

	cs, summary := rc.ReconcileItems(rows, existing)
	assertDisjoint(t, cs)

	if summary.Added != 1 || summary.Updated != 1 {
		t.Fatalf("summary = %+v, want 1 added 1 updated", summary)
	}

	updated := cs.ToUpdate[0].(*model.MasterItem)
	if updated.ID != "IT-100" {
		t.Fatalf("updated id = %s, want IT-100", updated.ID)
	}
	if updated.StockQuantity != 8 {
		t.Fatalf("stockQuantity = %v, want 8", updated.StockQuantity)
	}
	// 行里没有的字段保持原值
	if updated.Name != "液压滤芯" || updated.Unit != "个" {
		t.Fatalf("merge lost fields: %+v", updated)
	}
	// 现有集合不被就地修改
	if existing[0].StockQuantity != 5 {
		t.Fatalf("existing record mutated: %+v", existing[0])
	}

	added := cs.ToAdd[0].(*model.MasterItem)
	if !strings.HasPrefix(added.ID, "IT-") {
		t.Fatalf("synthesized id = %s", added.ID)
	}
	if added.Category != "General" {
		t.Fatalf("default category = %q, want General", added.Category)
	}
}

func TestReconcileItems_RepeatedRowOverlaysPending(t *testing.T) {
	t.Parallel()

	rc := newTestReconciler(MasterData{})

	rows := []ImportRow{
		{"id": "IT-1", "name": "第一次"},
		{"id": "IT-1", "name": "第二次", "unit": "个"},
	}

	cs, summary := rc.ReconcileItems(rows, nil)
	assertDisjoint(t, cs)

	if summary.Added != 1 {
		t.Fatalf("added = %d, want 1", summary.Added)
	}
	it := cs.ToAdd[0].(*model.MasterItem)
	if it.Name != "第二次" || it.Unit != "个" {
		t.Fatalf("pending overlay failed: %+v", it)
	}
}

func TestReconcileMachines_ChassisNaturalKey(t *testing.T) {
	t.Parallel()

	existing := []*model.Machine{
		{ID: "MC-1", Category: "挖掘机", ChassisNo: "CH-9001", Status: model.MachineStatusWorking, Tags: []string{"主力"}},
	}
	rc := newTestReconciler(MasterData{Machines: existing})

	rows := []ImportRow{
		{"chassisNo": "CH-9001", "status": "Breakdown"}, // 底盘号找回既有设备
		{"category": "装载机", "chassisNo": "CH-9002"},     // 新设备，状态取默认值
	}

	cs, summary := rc.ReconcileMachines(rows, existing)
	assertDisjoint(t, cs)

	if summary.Added != 1 || summary.Updated != 1 {
		t.Fatalf("summary = %+v", summary)
	}

	updated := cs.ToUpdate[0].(*model.Machine)
	if updated.ID != "MC-1" || updated.Status != model.MachineStatusBreakdown {
		t.Fatalf("updated = %+v", updated)
	}
	if existing[0].Status != model.MachineStatusWorking {
		t.Fatalf("existing machine mutated: %+v", existing[0])
	}

	added := cs.ToAdd[0].(*model.Machine)
	if added.Status != model.MachineStatusWorking {
		t.Fatalf("default status = %s, want Working", added.Status)
	}
	if !strings.HasPrefix(added.ID, "MC-") {
		t.Fatalf("synthesized id = %s", added.ID)
	}
}

func TestReconcileMachines_TagsNotShared(t *testing.T) {
	t.Parallel()

	existing := []*model.Machine{
		{ID: "MC-1", ChassisNo: "CH-1", Tags: []string{"主力", "一号线"}},
	}
	rc := newTestReconciler(MasterData{Machines: existing})

	rows := []ImportRow{
		{"id": "MC-1", "tags": "备用"},
	}

	cs, _ := rc.ReconcileMachines(rows, existing)
	updated := cs.ToUpdate[0].(*model.Machine)
	if len(updated.Tags) != 1 || updated.Tags[0] != "备用" {
		t.Fatalf("tags = %v", updated.Tags)
	}
	if len(existing[0].Tags) != 2 {
		t.Fatalf("existing tags mutated: %v", existing[0].Tags)
	}
}

func TestReconcileIssueRequests_ItemRefPolicy(t *testing.T) {
	t.Parallel()

	md := MasterData{
		Items: []*model.MasterItem{
			{ID: "IT-100", Name: "液压滤芯", PartNumber: "PN-55"},
		},
		Locations: []*model.Location{{ID: "LOC-1", Name: "Warehouse A"}},
	}
	rc := newTestReconciler(md)

	rows := []ImportRow{
		{"itemId": "PN-55", "quantity": float64(3), "locationId": "Warehouse A"},
		{"itemId": "没有这个备件", "quantity": float64(1)}, // 解析失败，跳过并记录
		{"itemId": "没有这个备件", "quantity": float64(2)}, // 重复失败引用只记一次
		{"quantity": float64(4)}, // 缺备件引用，跳过但不记录
	}

	cs, summary := rc.ReconcileIssueRequests(rows, nil)
	assertDisjoint(t, cs)

	if summary.Added != 1 || summary.Skipped != 3 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.FailedMatches) != 1 || summary.FailedMatches[0] != "没有这个备件" {
		t.Fatalf("failedMatches = %v", summary.FailedMatches)
	}

	req := cs.ToAdd[0].(*model.IssueRequest)
	if req.ItemID != "IT-100" {
		t.Fatalf("itemId = %s, want IT-100", req.ItemID)
	}
	if req.LocationID != "LOC-1" {
		t.Fatalf("locationId = %s, want LOC-1", req.LocationID)
	}
	if req.Status != model.RequestStatusPending {
		t.Fatalf("status = %s, want Pending", req.Status)
	}
	if req.RequestDate != "2024-03-15 10:00:00" {
		t.Fatalf("requestDate = %s", req.RequestDate)
	}
	if !strings.HasPrefix(req.ID, "REQ-") {
		t.Fatalf("synthesized id = %s", req.ID)
	}
}

func TestReconcileIssueRequests_MachineRefOptional(t *testing.T) {
	t.Parallel()

	md := MasterData{
		Items:    []*model.MasterItem{{ID: "IT-1", Name: "备件"}},
		Machines: []*model.Machine{{ID: "MC-1", ChassisNo: "CH-1"}},
	}
	rc := newTestReconciler(md)

	rows := []ImportRow{
		{"itemId": "IT-1", "machineId": "CH-1"},  // 可解析
		{"itemId": "IT-1", "machineId": "不存在设备"}, // 解析失败，落占位值
		{"itemId": "IT-1"},                       // 未给出，不强求
	}

	cs, _ := rc.ReconcileIssueRequests(rows, nil)

	reqs := make([]*model.IssueRequest, len(cs.ToAdd))
	for i, e := range cs.ToAdd {
		reqs[i] = e.(*model.IssueRequest)
	}
	if reqs[0].MachineID != "MC-1" {
		t.Fatalf("machineId = %s, want MC-1", reqs[0].MachineID)
	}
	if reqs[1].MachineID != model.UnknownMachineRef {
		t.Fatalf("machineId = %s, want %s", reqs[1].MachineID, model.UnknownMachineRef)
	}
	if reqs[2].MachineID != "" {
		t.Fatalf("machineId = %s, want empty", reqs[2].MachineID)
	}
}

func TestReconcileBreakdowns_MachineRefMandatory(t *testing.T) {
	t.Parallel()

	md := MasterData{Machines: []*model.Machine{{ID: "MC-1", ChassisNo: "CH-1"}}}
	rc := newTestReconciler(md)

	rows := []ImportRow{
		{"machineId": "CH-1", "description": "液压油渗漏", "partsUsed": "密封圈,液压油"},
		{"description": "不明故障"}, // 设备引用缺失，落占位值
	}

	cs, summary := rc.ReconcileBreakdowns(rows, nil)
	assertDisjoint(t, cs)

	if summary.Added != 2 || summary.Skipped != 0 {
		t.Fatalf("summary = %+v", summary)
	}

	first := cs.ToAdd[0].(*model.Breakdown)
	if first.MachineID != "MC-1" {
		t.Fatalf("machineId = %s, want MC-1", first.MachineID)
	}
	if len(first.PartsUsed) != 2 || first.PartsUsed[0] != "密封圈" {
		t.Fatalf("partsUsed = %v", first.PartsUsed)
	}
	if first.Status != "Open" || first.ReportedAt != "2024-03-15 10:00:00" {
		t.Fatalf("defaults = %+v", first)
	}

	second := cs.ToAdd[1].(*model.Breakdown)
	if second.MachineID != model.UnknownMachineRef {
		t.Fatalf("machineId = %s, want %s", second.MachineID, model.UnknownMachineRef)
	}
}

func TestReconcileBOM_NaturalKey(t *testing.T) {
	t.Parallel()

	md := MasterData{Items: []*model.MasterItem{
		{ID: "IT-100", Name: "液压滤芯", PartNumber: "PN-55"},
	}}
	rc := newTestReconciler(md)

	rows := []ImportRow{
		{"machineCategory": "挖掘机", "modelNo": "EX200", "itemId": "PN-55", "quantity": float64(2)},
		{"machineCategory": "挖掘机", "modelNo": "EX200"},                  // 缺备件引用，跳过
		{"machineCategory": "挖掘机", "modelNo": "EX200", "itemId": "未知件"}, // 解析失败
	}

	cs, summary := rc.ReconcileBOM(rows, nil)
	assertDisjoint(t, cs)

	if summary.Added != 1 || summary.Skipped != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.FailedMatches) != 1 || summary.FailedMatches[0] != "未知件" {
		t.Fatalf("failedMatches = %v", summary.FailedMatches)
	}

	added := cs.ToAdd[0].(*model.BOMRecord)
	if added.ID != BOMRecordID("挖掘机", "EX200", "IT-100") {
		t.Fatalf("id = %s", added.ID)
	}
	if added.ItemID != "IT-100" || added.Quantity != 2 {
		t.Fatalf("added = %+v", added)
	}
}

func TestReconcileBOM_ReimportIsIdempotent(t *testing.T) {
	t.Parallel()

	md := MasterData{Items: []*model.MasterItem{
		{ID: "IT-100", Name: "液压滤芯", PartNumber: "PN-55"},
	}}
	rc := newTestReconciler(md)

	rows := []ImportRow{
		{"machineCategory": "挖掘机", "modelNo": "EX200", "itemId": "PN-55", "quantity": float64(2)},
	}

	cs1, _ := rc.ReconcileBOM(rows, nil)
	first := cs1.ToAdd[0].(*model.BOMRecord)

	// 第二次导入同一张表：命中第一次落库的记录，只更新不新增
	cs2, summary := rc.ReconcileBOM(rows, []*model.BOMRecord{first})
	assertDisjoint(t, cs2)

	if summary.Added != 0 || summary.Updated != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if cs2.ToUpdate[0].EntityID() != first.ID {
		t.Fatalf("update id = %s, want %s", cs2.ToUpdate[0].EntityID(), first.ID)
	}
}

func TestReconcileBOM_NaturalKeyBeatsExplicitID(t *testing.T) {
	t.Parallel()

	md := MasterData{Items: []*model.MasterItem{{ID: "IT-100", Name: "滤芯"}}}
	rc := newTestReconciler(md)

	existing := []*model.BOMRecord{
		{ID: "BOM-LEGACY", MachineCategory: "挖掘机", ModelNo: "EX200", ItemID: "IT-100", Quantity: 1},
	}
	rows := []ImportRow{
		{"id": "BOM-OTHER", "machineCategory": "挖掘机", "modelNo": "EX200", "itemId": "IT-100", "quantity": float64(3)},
	}

	cs, summary := rc.ReconcileBOM(rows, existing)
	if summary.Updated != 1 || summary.Added != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	updated := cs.ToUpdate[0].(*model.BOMRecord)
	if updated.ID != "BOM-LEGACY" {
		t.Fatalf("id = %s, want BOM-LEGACY", updated.ID)
	}
	if updated.Quantity != 3 {
		t.Fatalf("quantity = %v, want 3", updated.Quantity)
	}
}

func TestBOMRecordID_Deterministic(t *testing.T) {
	t.Parallel()

	a := BOMRecordID("挖掘机", "EX200", "IT-100")
	b := BOMRecordID(" 挖掘机 ", "ex200", "it-100") // 空白与大小写归一
	if a != b {
		t.Fatalf("ids differ: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "BOM-") || len(a) != len("BOM-")+16 {
		t.Fatalf("unexpected id format: %s", a)
	}

	if a == BOMRecordID("挖掘机", "EX300", "IT-100") {
		t.Fatalf("different keys should not collide")
	}
}

func TestSplitList(t *testing.T) {
	t.Parallel()

	got := splitList("密封圈, 液压油；滤芯、垫片/螺栓")
	want := []string{"密封圈", "液压油", "滤芯", "垫片", "螺栓"}
	if len(got) != len(want) {
		t.Fatalf("splitList = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("splitList[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
