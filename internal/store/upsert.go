package store

import (
	"context"
	"fmt"
	"strings"
)

// tableColumns 各表允许写入的列白名单，动态记录只会落到这些列上。
// 顺序即 SQL 语句中的列顺序。
var tableColumns = map[string][]string{
	"master_items": {
		"id", "name", "full_name", "part_number", "second_id", "third_id",
		"unit", "stock_quantity", "category",
	},
	"machines": {
		"id", "category", "chassis_no", "machine_local_no",
		"location_id", "status", "tags",
	},
	"locations": {"id", "name"},
	"bom_records": {
		"id", "machine_category", "model_no", "item_id", "quantity", "remark",
	},
	"issue_requests": {
		"id", "item_id", "quantity", "location_id", "machine_id",
		"requested_by", "status", "request_date",
	},
	"breakdowns": {
		"id", "machine_id", "description", "parts_used",
		"status", "reported_at", "resolved_at",
	},
	"users": {"username", "display_name", "role"},
}

// UpsertBatch 单事务内按主键幂等写入一批记录。
// 记录中缺失的列写 NULL；主键冲突时用新值覆盖并刷新 updated_at。
func (s *Store) UpsertBatch(ctx context.Context, table, primaryKey string, records []map[string]any) error {
	if len(records) == 0 {
		return nil
	}

	columns, ok := tableColumns[table]
	if !ok {
		return fmt.Errorf("unknown table: %s", table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, buildUpsertSQL(table, primaryKey, columns))
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, record := range records {
		args := make([]any, 0, len(columns))
		for _, col := range columns {
			args = append(args, record[col])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("failed to upsert record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// buildUpsertSQL 拼接 INSERT ... ON CONFLICT 语句
func buildUpsertSQL(table, primaryKey string, columns []string) string {
	placeholders := make([]string, len(columns))
	setClauses := make([]string, 0, len(columns))
	for i, col := range columns {
		placeholders[i] = "?"
		if col != primaryKey {
			setClauses = append(setClauses, fmt.Sprintf("%s = excluded.%s", col, col))
		}
	}
	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		primaryKey,
		strings.Join(setClauses, ", "),
	)
}
