package store

import (
	"database/sql"
	"fmt"

	"sparehub/internal/gateway"
	"sparehub/internal/model"
)

// GetAllItems 获取全部备件主数据
func (s *Store) GetAllItems() ([]*model.MasterItem, error) {
	rows, err := s.db.Query(`
		SELECT id, name, full_name, part_number, second_id, third_id,
		       unit, stock_quantity, category
		FROM master_items ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query master_items: %w", err)
	}
	defer rows.Close()

	var items []*model.MasterItem
	for rows.Next() {
		it := &model.MasterItem{}
		var fullName, partNumber, secondID, thirdID sql.NullString
		if err := rows.Scan(
			&it.ID, &it.Name, &fullName, &partNumber, &secondID, &thirdID,
			&it.Unit, &it.StockQuantity, &it.Category,
		); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		it.FullName = fullName.String
		it.PartNumber = partNumber.String
		it.SecondID = secondID.String
		it.ThirdID = thirdID.String
		items = append(items, it)
	}

	return items, rows.Err()
}

// GetAllMachines 获取全部设备档案
func (s *Store) GetAllMachines() ([]*model.Machine, error) {
	rows, err := s.db.Query(`
		SELECT id, category, chassis_no, machine_local_no, location_id, status, tags
		FROM machines ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query machines: %w", err)
	}
	defer rows.Close()

	var machines []*model.Machine
	for rows.Next() {
		m := &model.Machine{}
		var chassisNo, localNo, tags sql.NullString
		var status string
		if err := rows.Scan(
			&m.ID, &m.Category, &chassisNo, &localNo, &m.LocationID, &status, &tags,
		); err != nil {
			return nil, fmt.Errorf("failed to scan machine: %w", err)
		}
		m.ChassisNo = chassisNo.String
		m.MachineLocalNo = localNo.String
		m.Status = model.MachineStatus(status)
		m.Tags = gateway.SplitJoined(tags.String)
		machines = append(machines, m)
	}

	return machines, rows.Err()
}

// GetAllLocations 获取全部站点
func (s *Store) GetAllLocations() ([]*model.Location, error) {
	rows, err := s.db.Query("SELECT id, name FROM locations ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []*model.Location
	for rows.Next() {
		l := &model.Location{}
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, l)
	}

	return locations, rows.Err()
}

// GetAllUsers 获取全部操作员账号
func (s *Store) GetAllUsers() ([]*model.User, error) {
	rows, err := s.db.Query("SELECT username, display_name, role FROM users ORDER BY username")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		u := &model.User{}
		var displayName sql.NullString
		if err := rows.Scan(&u.Username, &displayName, &u.Role); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.DisplayName = displayName.String
		users = append(users, u)
	}

	return users, rows.Err()
}

// CountTable 统计指定表的记录数
func (s *Store) CountTable(table string) (int, error) {
	if _, ok := tableColumns[table]; !ok {
		return 0, fmt.Errorf("unknown table: %s", table)
	}
	var count int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}
