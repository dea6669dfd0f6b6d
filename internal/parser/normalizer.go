package parser

import "time"

// targetSchema 单个导入目标的规范化表：别名 -> 规范字段名。
// 别名在比较前均经过 NormalizeHeaderKey 处理，
// 表中未出现的列名直接丢弃，以兼容源表格的多余列。
type targetSchema struct {
	aliases map[string]string
	numeric map[string]bool // 数值字段，强制数值转换
	dates   map[string]bool // 日期字段，统一为规范时间戳
}

var schemas = map[Target]*targetSchema{
	TargetIssueRequests: {
		aliases: map[string]string{
			"id": "id", "requestid": "id", "申请编号": "id", "单号": "id", "领用单号": "id",
			"item": "itemId", "itemid": "itemId", "itemcode": "itemId", "itemno": "itemId",
			"partno": "itemId", "partnumber": "itemId", "物料": "itemId", "物料编码": "itemId",
			"备件": "itemId", "备件编码": "itemId", "配件编号": "itemId",
			"qty": "quantity", "quantity": "quantity", "count": "quantity", "数量": "quantity", "领用数量": "quantity",
			"location": "locationId", "locationid": "locationId", "warehouse": "locationId",
			"仓库": "locationId", "位置": "locationId", "站点": "locationId",
			"machine": "machineId", "machineid": "machineId", "machineno": "machineId",
			"设备": "machineId", "设备编号": "machineId", "机台": "machineId",
			"requestedby": "requestedBy", "requester": "requestedBy", "申请人": "requestedBy", "领用人": "requestedBy",
			"status": "status", "状态": "status",
			"date": "requestDate", "requestdate": "requestDate", "日期": "requestDate", "申请日期": "requestDate",
		},
		numeric: map[string]bool{"quantity": true},
		dates:   map[string]bool{"requestDate": true},
	},
	TargetStockItems: {
		aliases: map[string]string{
			"id": "id", "itemid": "id", "itemcode": "id", "itemno": "id", "code": "id",
			"物料编码": "id", "备件编码": "id", "编号": "id",
			"name": "name", "itemname": "name", "名称": "name", "备件名称": "name", "物料名称": "name",
			"fullname": "fullName", "全称": "fullName", "规格名称": "fullName",
			"partno": "partNumber", "partnumber": "partNumber", "pn": "partNumber",
			"零件号": "partNumber", "图号": "partNumber",
			"secondid": "secondId", "altcode": "secondId", "旧编码": "secondId",
			"thirdid": "thirdId", "厂家编码": "thirdId",
			"unit": "unit", "uom": "unit", "单位": "unit", "计量单位": "unit",
			"qty": "stockQuantity", "stock": "stockQuantity", "stockqty": "stockQuantity",
			"quantity": "stockQuantity", "数量": "stockQuantity", "库存": "stockQuantity", "库存数量": "stockQuantity",
			"category": "category", "type": "category", "类别": "category", "分类": "category",
		},
		numeric: map[string]bool{"stockQuantity": true},
		dates:   map[string]bool{},
	},
	TargetMachines: {
		aliases: map[string]string{
			"id": "id", "machineid": "id", "machineno": "id", "设备编号": "id", "编号": "id",
			"category": "category", "machinetype": "category", "type": "category",
			"类别": "category", "设备类别": "category", "机型": "category", "name": "category", "设备名称": "category",
			"chassis": "chassisNo", "chassisno": "chassisNo", "serial": "chassisNo", "serialno": "chassisNo",
			"底盘号": "chassisNo", "序列号": "chassisNo", "车架号": "chassisNo",
			"localno": "machineLocalNo", "machinelocalno": "machineLocalNo",
			"自编号": "machineLocalNo", "台号": "machineLocalNo",
			"location": "locationId", "locationid": "locationId", "仓库": "locationId",
			"位置": "locationId", "站点": "locationId", "所在位置": "locationId",
			"status": "status", "状态": "status", "设备状态": "status",
			"tags": "tags", "标签": "tags", "备注标签": "tags",
		},
		numeric: map[string]bool{},
		dates:   map[string]bool{},
	},
	TargetBreakdowns: {
		aliases: map[string]string{
			"id": "id", "breakdownid": "id", "故障编号": "id", "单号": "id",
			"machine": "machineId", "machineid": "machineId", "machineno": "machineId",
			"设备": "machineId", "设备编号": "machineId", "机台": "machineId",
			"description": "description", "fault": "description", "故障描述": "description", "描述": "description",
			"partsused": "partsUsed", "parts": "partsUsed", "更换备件": "partsUsed", "用件": "partsUsed",
			"status": "status", "状态": "status",
			"date": "reportedAt", "reported": "reportedAt", "reportedat": "reportedAt",
			"报修日期": "reportedAt", "日期": "reportedAt",
			"resolved": "resolvedAt", "resolvedat": "resolvedAt", "修复日期": "resolvedAt", "完成日期": "resolvedAt",
		},
		numeric: map[string]bool{},
		dates:   map[string]bool{"reportedAt": true, "resolvedAt": true},
	},
	TargetBOM: {
		aliases: map[string]string{
			"id": "id", "bomid": "id",
			"machinecategory": "machineCategory", "machinetype": "machineCategory",
			"机型": "machineCategory", "设备类别": "machineCategory", "设备": "machineCategory",
			"modelno": "modelNo", "model": "modelNo", "型号": "modelNo", "规格型号": "modelNo",
			"item": "itemId", "itemid": "itemId", "itemcode": "itemId", "partno": "itemId",
			"partnumber": "itemId", "物料": "itemId", "物料编码": "itemId", "备件": "itemId", "备件编码": "itemId",
			"qty": "quantity", "quantity": "quantity", "数量": "quantity", "用量": "quantity", "单机用量": "quantity",
			"remark": "remark", "备注": "remark", "说明": "remark",
		},
		numeric: map[string]bool{"quantity": true},
		dates:   map[string]bool{},
	},
}

// Normalizer 行规范化器
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer 创建规范化器
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// MapColumns 将原始列名映射到目标的规范字段。
// 同一规范字段被多列命中时保留靠前的列。
func (n *Normalizer) MapColumns(headers []string, target Target) map[int]FieldMapping {
	schema, ok := schemas[target]
	if !ok {
		return nil
	}

	mappings := make(map[int]FieldMapping)
	claimed := make(map[string]bool)

	for idx, h := range headers {
		key := NormalizeHeaderKey(h)
		if key == "" {
			continue
		}
		field, ok := schema.aliases[key]
		if !ok || claimed[field] {
			continue
		}
		claimed[field] = true
		mappings[idx] = FieldMapping{
			ColumnIndex: idx,
			ColumnName:  h,
			Field:       field,
		}
	}

	return mappings
}

// NormalizeRow 按列映射规范化单行。
// 空单元格不产生字段；全部识别字段均为空的行返回 nil（尾部空行防护）。
// 数值字段强制转换，垃圾输入得 0；日期字段统一为规范时间戳，无法解析时取当前时间。
func (n *Normalizer) NormalizeRow(row []string, mappings map[int]FieldMapping, target Target) ImportRow {
	schema, ok := schemas[target]
	if !ok {
		return nil
	}

	out := make(ImportRow)
	for colIdx, mapping := range mappings {
		if colIdx >= len(row) {
			continue
		}
		value := trimCell(row[colIdx])
		if value == "" {
			continue
		}

		switch {
		case schema.numeric[mapping.Field]:
			out[mapping.Field] = parseFloat(value)
		case schema.dates[mapping.Field]:
			out[mapping.Field] = parseDate(value, n.now())
		default:
			out[mapping.Field] = value
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
