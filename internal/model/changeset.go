package model

// ChangeSet 一次核对的输出：待新增与待更新两份干净的变更集。
// 同一个主键不会同时出现在两份列表中，也不会在 ToAdd 内重复。
type ChangeSet struct {
	ToAdd    []Entity `json:"toAdd"`
	ToUpdate []Entity `json:"toUpdate"`
}

// Len 变更集内记录总数
func (c *ChangeSet) Len() int {
	return len(c.ToAdd) + len(c.ToUpdate)
}

// All 返回合并后的记录列表，新增在前
func (c *ChangeSet) All() []Entity {
	out := make([]Entity, 0, c.Len())
	out = append(out, c.ToAdd...)
	out = append(out, c.ToUpdate...)
	return out
}

// ReconcileSummary 核对过程的诊断汇总
type ReconcileSummary struct {
	Added         int      `json:"added"`
	Updated       int      `json:"updated"`
	Skipped       int      `json:"skipped"`
	FailedMatches []string `json:"failedMatches,omitempty"` // 未能解析的原始引用，已去重
}
