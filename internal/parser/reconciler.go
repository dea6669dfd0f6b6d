package parser

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"sparehub/internal/model"
)

// 合成 ID 前缀，按实体类型区分
const (
	itemIDPrefix      = "IT"
	machineIDPrefix   = "MC"
	requestIDPrefix   = "REQ"
	breakdownIDPrefix = "BD"
)

// Reconciler 数据核对器
//
// 将规范化后的行与现有集合比对，逐行决定新增或合并，产出两份干净的
// 变更集。除合成 ID 的随机后缀外，相同输入必然产出相同结果；
// 现有集合只读，不会被就地修改。
type Reconciler struct {
	resolver *Resolver
	now      func() time.Time
	suffix   func() string
}

// NewReconciler 创建核对器
func NewReconciler(resolver *Resolver) *Reconciler {
	return &Reconciler{
		resolver: resolver,
		now:      time.Now,
		suffix: func() string {
			return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
		},
	}
}

// newID 合成实体 ID：{前缀}-{毫秒时间戳}-{随机后缀}。
// 碰撞概率极低但非零，低频导入路径下可接受。
func (rc *Reconciler) newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, rc.now().UnixMilli(), rc.suffix())
}

// BOMRecordID 由自然键 (机型, 型号, 备件) 确定性合成 BOM 行 ID，
// 同一张表重复导入时命中同一条记录。
func BOMRecordID(machineCategory, modelNo, itemID string) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s", bomKeyPart(machineCategory), bomKeyPart(modelNo), bomKeyPart(itemID))
	return fmt.Sprintf("BOM-%016x", h.Sum64())
}

func bomKeyPart(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// changeBuilder 变更集构造器，保证同一主键不会同时进入两份列表、
// 也不会在 ToAdd 内重复：同一趟内重复出现的主键直接覆盖到挂起实体上。
type changeBuilder struct {
	cs     model.ChangeSet
	addIdx map[string]int
	updIdx map[string]int
}

func newChangeBuilder() *changeBuilder {
	return &changeBuilder{
		addIdx: make(map[string]int),
		updIdx: make(map[string]int),
	}
}

// pending 返回同一趟内已挂起的同主键实体
func (b *changeBuilder) pending(id string) (model.Entity, bool) {
	if i, ok := b.addIdx[id]; ok {
		return b.cs.ToAdd[i], true
	}
	if i, ok := b.updIdx[id]; ok {
		return b.cs.ToUpdate[i], true
	}
	return nil, false
}

func (b *changeBuilder) add(e model.Entity) {
	b.addIdx[e.EntityID()] = len(b.cs.ToAdd)
	b.cs.ToAdd = append(b.cs.ToAdd, e)
}

func (b *changeBuilder) update(e model.Entity) {
	b.updIdx[e.EntityID()] = len(b.cs.ToUpdate)
	b.cs.ToUpdate = append(b.cs.ToUpdate, e)
}

// failedMatchSet 未解析引用收集器，去重后按首次出现顺序输出
type failedMatchSet struct {
	seen map[string]bool
	refs []string
}

func newFailedMatchSet() *failedMatchSet {
	return &failedMatchSet{seen: make(map[string]bool)}
}

func (f *failedMatchSet) record(ref string) {
	ref = strings.TrimSpace(ref)
	if ref == "" || f.seen[ref] {
		return
	}
	f.seen[ref] = true
	f.refs = append(f.refs, ref)
}

// ReconcileItems 核对备件主数据行
func (rc *Reconciler) ReconcileItems(rows []ImportRow, existing []*model.MasterItem) (model.ChangeSet, model.ReconcileSummary) {
	byID := make(map[string]*model.MasterItem, len(existing))
	for _, it := range existing {
		byID[it.ID] = it
	}

	builder := newChangeBuilder()
	failed := newFailedMatchSet()
	skipped := 0

	for _, row := range rows {
		// 必填默认值在分类之前补齐
		if row.String("category") == "" {
			row = withDefault(row, "category", "General")
		}

		// 行身份：显式 ID 经解析链归一（别名编码也能指回既有备件），
		// 缺省时用零件号反查既有记录
		id := row.String("id")
		resolved := ""
		if id != "" {
			resolved = rc.resolver.ResolveItem(id)
		} else if pn := row.String("partNumber"); pn != "" {
			resolved = rc.resolver.ResolveItem(pn)
		}
		if resolved != "" {
			id = resolved
		}

		if pending, ok := builder.pending(id); ok && id != "" {
			applyItemRow(pending.(*model.MasterItem), row)
			continue
		}

		if prev, ok := byID[id]; ok {
			merged := *prev
			applyItemRow(&merged, row)
			builder.update(&merged)
			continue
		}

		if id == "" {
			id = rc.newID(itemIDPrefix)
		}
		added := &model.MasterItem{ID: id}
		applyItemRow(added, row)
		builder.add(added)
	}

	return builder.cs, rc.summary(builder, skipped, failed)
}

// ReconcileMachines 核对设备行，自然键为底盘号
func (rc *Reconciler) ReconcileMachines(rows []ImportRow, existing []*model.Machine) (model.ChangeSet, model.ReconcileSummary) {
	byID := make(map[string]*model.Machine, len(existing))
	byChassis := make(map[string]*model.Machine)
	for _, m := range existing {
		byID[m.ID] = m
		if m.ChassisNo != "" {
			byChassis[m.ChassisNo] = m
		}
	}

	builder := newChangeBuilder()
	failed := newFailedMatchSet()
	skipped := 0

	for _, row := range rows {
		if row.String("status") == "" {
			row = withDefault(row, "status", string(model.MachineStatusWorking))
		}
		row = rc.resolveLocationField(row)

		id := row.String("id")
		var prev *model.Machine
		if id != "" {
			prev = byID[id]
		}
		if prev == nil {
			// 无显式 ID 或 ID 未命中时，用底盘号找回既有设备
			if chassis := row.String("chassisNo"); chassis != "" {
				prev = byChassis[chassis]
			}
		}

		matchID := id
		if prev != nil {
			matchID = prev.ID
		}
		if pending, ok := builder.pending(matchID); ok && matchID != "" {
			applyMachineRow(pending.(*model.Machine), row)
			continue
		}

		if prev != nil {
			merged := *prev
			merged.Tags = append([]string(nil), prev.Tags...)
			applyMachineRow(&merged, row)
			builder.update(&merged)
			continue
		}

		if id == "" {
			id = rc.newID(machineIDPrefix)
		}
		added := &model.Machine{ID: id}
		applyMachineRow(added, row)
		builder.add(added)
	}

	return builder.cs, rc.summary(builder, skipped, failed)
}

// ReconcileIssueRequests 核对领用申请行。
// 备件引用解析失败的行整行跳过：无法识别的备件没有核对意义。
func (rc *Reconciler) ReconcileIssueRequests(rows []ImportRow, existing []*model.IssueRequest) (model.ChangeSet, model.ReconcileSummary) {
	byID := make(map[string]*model.IssueRequest, len(existing))
	for _, r := range existing {
		byID[r.ID] = r
	}

	builder := newChangeBuilder()
	failed := newFailedMatchSet()
	skipped := 0

	for _, row := range rows {
		itemRef := row.String("itemId")
		if itemRef == "" {
			skipped++
			continue
		}
		itemID := rc.resolver.ResolveItem(itemRef)
		if itemID == "" {
			failed.record(itemRef)
			skipped++
			continue
		}
		row = withField(row, "itemId", itemID)

		if row.String("status") == "" {
			row = withDefault(row, "status", string(model.RequestStatusPending))
		}
		if row.String("requestDate") == "" {
			row = withDefault(row, "requestDate", rc.now().Format(DateLayout))
		}
		row = rc.resolveLocationField(row)
		// 设备引用可选；给了但解析不了时落回占位值
		if ref := row.String("machineId"); ref != "" {
			machineID := rc.resolver.ResolveMachine(ref)
			if machineID == "" {
				machineID = model.UnknownMachineRef
			}
			row = withField(row, "machineId", machineID)
		}

		id := row.String("id")
		if pending, ok := builder.pending(id); ok && id != "" {
			applyRequestRow(pending.(*model.IssueRequest), row)
			continue
		}

		if prev, ok := byID[id]; ok {
			merged := *prev
			applyRequestRow(&merged, row)
			builder.update(&merged)
			continue
		}

		if id == "" {
			id = rc.newID(requestIDPrefix)
		}
		added := &model.IssueRequest{ID: id}
		applyRequestRow(added, row)
		builder.add(added)
	}

	return builder.cs, rc.summary(builder, skipped, failed)
}

// ReconcileBreakdowns 核对故障记录行。
// 设备引用是必填字段，解析失败落回占位值而非丢行。
func (rc *Reconciler) ReconcileBreakdowns(rows []ImportRow, existing []*model.Breakdown) (model.ChangeSet, model.ReconcileSummary) {
	byID := make(map[string]*model.Breakdown, len(existing))
	for _, b := range existing {
		byID[b.ID] = b
	}

	builder := newChangeBuilder()
	failed := newFailedMatchSet()
	skipped := 0

	for _, row := range rows {
		machineID := model.UnknownMachineRef
		if ref := row.String("machineId"); ref != "" {
			if resolved := rc.resolver.ResolveMachine(ref); resolved != "" {
				machineID = resolved
			}
		}
		row = withField(row, "machineId", machineID)

		if row.String("status") == "" {
			row = withDefault(row, "status", "Open")
		}
		if row.String("reportedAt") == "" {
			row = withDefault(row, "reportedAt", rc.now().Format(DateLayout))
		}

		id := row.String("id")
		if pending, ok := builder.pending(id); ok && id != "" {
			applyBreakdownRow(pending.(*model.Breakdown), row)
			continue
		}

		if prev, ok := byID[id]; ok {
			merged := *prev
			merged.PartsUsed = append([]string(nil), prev.PartsUsed...)
			applyBreakdownRow(&merged, row)
			builder.update(&merged)
			continue
		}

		if id == "" {
			id = rc.newID(breakdownIDPrefix)
		}
		added := &model.Breakdown{ID: id}
		applyBreakdownRow(added, row)
		builder.add(added)
	}

	return builder.cs, rc.summary(builder, skipped, failed)
}

// ReconcileBOM 核对备件清单行，自然键为 (机型, 型号, 备件) 三元组。
// 自然键匹配优先于行内显式 ID：两次导入即使 ID 不同也只会产生一条记录。
func (rc *Reconciler) ReconcileBOM(rows []ImportRow, existing []*model.BOMRecord) (model.ChangeSet, model.ReconcileSummary) {
	byKey := make(map[string]*model.BOMRecord, len(existing))
	for _, b := range existing {
		byKey[bomKey(b.MachineCategory, b.ModelNo, b.ItemID)] = b
	}

	builder := newChangeBuilder()
	failed := newFailedMatchSet()
	skipped := 0

	for _, row := range rows {
		category := row.String("machineCategory")
		modelNo := row.String("modelNo")
		itemRef := row.String("itemId")
		if category == "" || modelNo == "" || itemRef == "" {
			skipped++
			continue
		}

		itemID := rc.resolver.ResolveItem(itemRef)
		if itemID == "" {
			failed.record(itemRef)
			skipped++
			continue
		}

		key := bomKey(category, modelNo, itemID)
		prev := byKey[key]

		id := BOMRecordID(category, modelNo, itemID)
		if prev != nil {
			id = prev.ID
		}

		if pending, ok := builder.pending(id); ok {
			applyBOMRow(pending.(*model.BOMRecord), row, itemID)
			continue
		}

		if prev != nil {
			merged := *prev
			applyBOMRow(&merged, row, itemID)
			builder.update(&merged)
			continue
		}

		added := &model.BOMRecord{ID: id}
		applyBOMRow(added, row, itemID)
		builder.add(added)
	}

	return builder.cs, rc.summary(builder, skipped, failed)
}

func (rc *Reconciler) summary(b *changeBuilder, skipped int, failed *failedMatchSet) model.ReconcileSummary {
	return model.ReconcileSummary{
		Added:         len(b.cs.ToAdd),
		Updated:       len(b.cs.ToUpdate),
		Skipped:       skipped,
		FailedMatches: failed.refs,
	}
}

// resolveLocationField 站点引用归一；解析失败时保留原始文本供人工处理
func (rc *Reconciler) resolveLocationField(row ImportRow) ImportRow {
	ref := row.String("locationId")
	if ref == "" {
		return row
	}
	if id := rc.resolver.ResolveLocation(ref); id != "" {
		row = withField(row, "locationId", id)
	}
	return row
}

// withField 复制行并写入字段，调用方传入的行保持只读
func withField(row ImportRow, field string, value any) ImportRow {
	out := make(ImportRow, len(row)+1)
	for k, v := range row {
		out[k] = v
	}
	out[field] = value
	return out
}

// withDefault 字段缺失时复制行并补默认值
func withDefault(row ImportRow, field string, value any) ImportRow {
	if _, ok := row[field]; ok {
		return row
	}
	return withField(row, field, value)
}

func bomKey(machineCategory, modelNo, itemID string) string {
	return bomKeyPart(machineCategory) + "|" + bomKeyPart(modelNo) + "|" + bomKeyPart(itemID)
}

var listSepRe = regexp.MustCompile(`[,，;；、/]+`)

// splitList 将单元格内的列表值拆分为字符串切片
func splitList(s string) []string {
	parts := listSepRe.Split(s, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// applyItemRow 将行字段浅覆盖到备件记录
func applyItemRow(it *model.MasterItem, row ImportRow) {
	if v := row.String("name"); v != "" {
		it.Name = v
	}
	if v := row.String("fullName"); v != "" {
		it.FullName = v
	}
	if v := row.String("partNumber"); v != "" {
		it.PartNumber = v
	}
	if v := row.String("secondId"); v != "" {
		it.SecondID = v
	}
	if v := row.String("thirdId"); v != "" {
		it.ThirdID = v
	}
	if v := row.String("unit"); v != "" {
		it.Unit = v
	}
	if v := row.String("category"); v != "" {
		it.Category = v
	}
	if row.Has("stockQuantity") {
		it.StockQuantity = row.Float("stockQuantity")
	}
}

// applyMachineRow 将行字段浅覆盖到设备记录
func applyMachineRow(m *model.Machine, row ImportRow) {
	if v := row.String("category"); v != "" {
		m.Category = v
	}
	if v := row.String("chassisNo"); v != "" {
		m.ChassisNo = v
	}
	if v := row.String("machineLocalNo"); v != "" {
		m.MachineLocalNo = v
	}
	if v := row.String("locationId"); v != "" {
		m.LocationID = v
	}
	if v := row.String("status"); v != "" {
		m.Status = model.MachineStatus(v)
	}
	if v := row.String("tags"); v != "" {
		m.Tags = splitList(v)
	}
}

// applyRequestRow 将行字段浅覆盖到领用申请记录
func applyRequestRow(r *model.IssueRequest, row ImportRow) {
	if v := row.String("itemId"); v != "" {
		r.ItemID = v
	}
	if row.Has("quantity") {
		r.Quantity = row.Float("quantity")
	}
	if v := row.String("locationId"); v != "" {
		r.LocationID = v
	}
	if v := row.String("machineId"); v != "" {
		r.MachineID = v
	}
	if v := row.String("requestedBy"); v != "" {
		r.RequestedBy = v
	}
	if v := row.String("status"); v != "" {
		r.Status = model.RequestStatus(v)
	}
	if v := row.String("requestDate"); v != "" {
		r.RequestDate = v
	}
}

// applyBreakdownRow 将行字段浅覆盖到故障记录
func applyBreakdownRow(b *model.Breakdown, row ImportRow) {
	if v := row.String("machineId"); v != "" {
		b.MachineID = v
	}
	if v := row.String("description"); v != "" {
		b.Description = v
	}
	if v := row.String("partsUsed"); v != "" {
		b.PartsUsed = splitList(v)
	}
	if v := row.String("status"); v != "" {
		b.Status = v
	}
	if v := row.String("reportedAt"); v != "" {
		b.ReportedAt = v
	}
	if v := row.String("resolvedAt"); v != "" {
		b.ResolvedAt = v
	}
}

// applyBOMRow 将行字段浅覆盖到清单记录，备件引用已在核对阶段归一
func applyBOMRow(b *model.BOMRecord, row ImportRow, itemID string) {
	if v := row.String("machineCategory"); v != "" {
		b.MachineCategory = v
	}
	if v := row.String("modelNo"); v != "" {
		b.ModelNo = v
	}
	b.ItemID = itemID
	if row.Has("quantity") {
		b.Quantity = row.Float("quantity")
	}
	if v := row.String("remark"); v != "" {
		b.Remark = v
	}
}
