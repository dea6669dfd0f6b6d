package parser

import "strings"

// targetRule 单个导入目标的识别规则
type targetRule struct {
	target    Target
	keyFields [][]string // 每组是一个字段的别名列表，命中任意别名算该组命中
	nameHints []string   // sheet 名称关键词，命中加 0.2 置信度
}

// targetRules 识别规则表，按特异性排序：
// 规则越靠前特征越明确，先命中先返回。
var targetRules = []targetRule{
	{
		target: TargetBOM,
		keyFields: [][]string{
			{"machinecategory", "机型", "设备类别", "machinetype"},
			{"modelno", "model", "型号"},
			{"item", "itemcode", "partno", "partnumber", "物料", "备件", "配件"},
			{"qty", "quantity", "数量", "用量"},
		},
		nameHints: []string{"bom", "清单", "备件表"},
	},
	{
		target: TargetBreakdowns,
		keyFields: [][]string{
			{"machine", "设备", "机台"},
			{"description", "fault", "故障", "描述"},
			{"reported", "报修", "日期", "date"},
			{"partsused", "更换备件", "用件"},
		},
		nameHints: []string{"故障", "报修", "breakdown", "维修"},
	},
	{
		target: TargetIssueRequests,
		keyFields: [][]string{
			{"requestid", "申请编号", "单号"},
			{"item", "itemcode", "partno", "物料", "备件"},
			{"qty", "quantity", "count", "数量"},
			{"location", "warehouse", "仓库", "位置"},
			{"requestedby", "申请人", "领用人"},
		},
		nameHints: []string{"领用", "申请", "issue", "request", "出库"},
	},
	{
		target: TargetMachines,
		keyFields: [][]string{
			{"chassis", "serial", "底盘", "序列号"},
			{"category", "类别", "机型"},
			{"location", "位置", "站点", "仓库"},
			{"status", "状态"},
			{"localno", "自编号", "台号"},
		},
		nameHints: []string{"设备", "台账", "asset", "machine"},
	},
	{
		target: TargetStockItems,
		keyFields: [][]string{
			{"item", "itemcode", "partno", "partnumber", "物料", "备件", "配件"},
			{"name", "名称"},
			{"unit", "单位"},
			{"stock", "qty", "库存", "数量"},
			{"category", "类别", "分类"},
		},
		nameHints: []string{"库存", "备件", "物料", "stock", "item"},
	},
}

// Recognizer 导入目标识别器
type Recognizer struct{}

// NewRecognizer 创建识别器
func NewRecognizer() *Recognizer {
	return &Recognizer{}
}

// Recognize 根据表头与 sheet 名识别导入目标。
// 逐条规则评分：命中字段组数 / 字段组总数，sheet 名关键词加成 0.2；
// 置信度 ≥0.5 即采用，全部不足则返回 unknown。
func (r *Recognizer) Recognize(sheetName string, headers []string) RecognitionResult {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeHeaderKey(h)
	}
	lowerName := strings.ToLower(sheetName)

	best := RecognitionResult{SheetName: sheetName, Target: TargetUnknown}

	for _, rule := range targetRules {
		matched := 0
		for _, aliases := range rule.keyFields {
			for _, col := range normalized {
				if col != "" && ContainsAny(col, aliases) {
					matched++
					break
				}
			}
		}

		confidence := float64(matched) / float64(len(rule.keyFields))
		if ContainsAny(lowerName, rule.nameHints) {
			confidence += 0.2
		}

		if confidence >= 0.5 && confidence > best.Confidence {
			best = RecognitionResult{
				SheetName:  sheetName,
				Target:     rule.target,
				Confidence: confidence,
			}
		}
	}

	return best
}
