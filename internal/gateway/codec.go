package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"sparehub/internal/model"
)

// tableSpec 单张表的持久化契约：主键列与需要逗号拼接的列表列
type tableSpec struct {
	primaryKey  string
	listColumns map[string]bool
}

// tableSpecs 远端表注册表。内存实体用 camelCase，存储层用 snake_case，
// 转换发生在本边界；列表值字段在此序列化为逗号拼接串。
var tableSpecs = map[string]tableSpec{
	"master_items":   {primaryKey: "id"},
	"machines":       {primaryKey: "id", listColumns: map[string]bool{"tags": true}},
	"locations":      {primaryKey: "id"},
	"bom_records":    {primaryKey: "id"},
	"issue_requests": {primaryKey: "id"},
	"breakdowns":     {primaryKey: "id", listColumns: map[string]bool{"parts_used": true}},
	"users":          {primaryKey: "username"},
}

// EncodeRecord 将实体编码为存储层记录：字段名转 snake_case，
// 列表字段拼接为逗号分隔串。
func EncodeRecord(table string, e model.Entity) (map[string]any, error) {
	spec, ok := tableSpecs[table]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, table)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entity: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode entity fields: %w", err)
	}

	record := make(map[string]any, len(fields))
	for key, value := range fields {
		col := ToSnakeCase(key)
		if spec.listColumns[col] {
			value = JoinList(value)
		}
		record[col] = value
	}
	return record, nil
}

// ToSnakeCase camelCase -> snake_case
func ToSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// JoinList 列表值 -> 逗号拼接串
func JoinList(v any) string {
	switch list := v.(type) {
	case []string:
		return strings.Join(list, ",")
	case []any:
		parts := make([]string, 0, len(list))
		for _, item := range list {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	case string:
		return list
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

// SplitJoined 逗号拼接串 -> 列表值，读取方向的逆转换
func SplitJoined(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
