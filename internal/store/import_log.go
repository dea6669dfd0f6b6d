package store

import "fmt"

// CreateImportLog 创建导入日志，返回 import_log_id
func (s *Store) CreateImportLog(filename, filePath string, fileSize int64) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (filename, file_path, file_size, status)
		VALUES (?, ?, ?, 'processing')
	`, filename, filePath, fileSize)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成导入日志更新
func (s *Store) UpdateImportLog(id int64, totalSheets, addedRows, updatedRows, skippedRows int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_sheets = ?,
			added_rows = ?,
			updated_rows = ?,
			skipped_rows = ?,
			status = ?,
			error_message = ?,
			completed_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, totalSheets, addedRows, updatedRows, skippedRows, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}
