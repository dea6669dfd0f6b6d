package store

import (
	"database/sql"
	"fmt"

	"sparehub/internal/gateway"
	"sparehub/internal/model"
)

// GetAllIssueRequests 获取全部领用申请
func (s *Store) GetAllIssueRequests() ([]*model.IssueRequest, error) {
	rows, err := s.db.Query(`
		SELECT id, item_id, quantity, location_id, machine_id,
		       requested_by, status, request_date
		FROM issue_requests ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query issue_requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.IssueRequest
	for rows.Next() {
		r := &model.IssueRequest{}
		var machineID, requestedBy sql.NullString
		var status string
		if err := rows.Scan(
			&r.ID, &r.ItemID, &r.Quantity, &r.LocationID, &machineID,
			&requestedBy, &status, &r.RequestDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan issue request: %w", err)
		}
		r.MachineID = machineID.String
		r.RequestedBy = requestedBy.String
		r.Status = model.RequestStatus(status)
		requests = append(requests, r)
	}

	return requests, rows.Err()
}

// GetAllBreakdowns 获取全部故障记录
func (s *Store) GetAllBreakdowns() ([]*model.Breakdown, error) {
	rows, err := s.db.Query(`
		SELECT id, machine_id, description, parts_used, status, reported_at, resolved_at
		FROM breakdowns ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query breakdowns: %w", err)
	}
	defer rows.Close()

	var breakdowns []*model.Breakdown
	for rows.Next() {
		b := &model.Breakdown{}
		var description, partsUsed, resolvedAt sql.NullString
		if err := rows.Scan(
			&b.ID, &b.MachineID, &description, &partsUsed, &b.Status, &b.ReportedAt, &resolvedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan breakdown: %w", err)
		}
		b.Description = description.String
		b.PartsUsed = gateway.SplitJoined(partsUsed.String)
		b.ResolvedAt = resolvedAt.String
		breakdowns = append(breakdowns, b)
	}

	return breakdowns, rows.Err()
}

// GetAllBOM 获取全部备件清单行
func (s *Store) GetAllBOM() ([]*model.BOMRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, machine_category, model_no, item_id, quantity, remark
		FROM bom_records ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query bom_records: %w", err)
	}
	defer rows.Close()

	var records []*model.BOMRecord
	for rows.Next() {
		b := &model.BOMRecord{}
		var remark sql.NullString
		if err := rows.Scan(
			&b.ID, &b.MachineCategory, &b.ModelNo, &b.ItemID, &b.Quantity, &remark,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bom record: %w", err)
		}
		b.Remark = remark.String
		records = append(records, b)
	}

	return records, rows.Err()
}
