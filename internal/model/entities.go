package model

// Entity 可持久化实体，所有主数据记录都以字符串主键标识
type Entity interface {
	EntityID() string
}

// MachineStatus 设备状态
type MachineStatus string

const (
	MachineStatusWorking   MachineStatus = "Working"   // 正常运行
	MachineStatusBreakdown MachineStatus = "Breakdown" // 故障停机
	MachineStatusIdle      MachineStatus = "Idle"      // 闲置
	MachineStatusScrapped  MachineStatus = "Scrapped"  // 报废
)

// RequestStatus 领用申请状态
type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "Pending"  // 待审批
	RequestStatusApproved RequestStatus = "Approved" // 已批准
	RequestStatusIssued   RequestStatus = "Issued"   // 已发料
	RequestStatusRejected RequestStatus = "Rejected" // 已驳回
)

// UnknownMachineRef 设备引用无法解析时的占位值
const UnknownMachineRef = "Unknown"

// MasterItem 备件主数据
//
// ID 为唯一主键；PartNumber/SecondID/ThirdID 是来自不同源系统的
// 别名编码，仅用于查找，不参与主键比较。
type MasterItem struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	FullName      string  `json:"fullName,omitempty"`
	PartNumber    string  `json:"partNumber,omitempty"`
	SecondID      string  `json:"secondId,omitempty"`
	ThirdID       string  `json:"thirdId,omitempty"`
	Unit          string  `json:"unit"`
	StockQuantity float64 `json:"stockQuantity"`
	Category      string  `json:"category"`
}

// EntityID 返回主键
func (m *MasterItem) EntityID() string { return m.ID }

// Machine 设备档案
//
// ChassisNo 是导入数据缺少显式 ID 时的自然键。
type Machine struct {
	ID             string        `json:"id"`
	Category       string        `json:"category"` // 设备类别显示名
	ChassisNo      string        `json:"chassisNo,omitempty"`
	MachineLocalNo string        `json:"machineLocalNo,omitempty"`
	LocationID     string        `json:"locationId"`
	Status         MachineStatus `json:"status"`
	Tags           []string      `json:"tags,omitempty"`
}

// EntityID 返回主键
func (m *Machine) EntityID() string { return m.ID }

// Location 站点/仓库
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// EntityID 返回主键
func (l *Location) EntityID() string { return l.ID }

// BOMRecord 设备备件清单行
//
// 自然键为 (MachineCategory, ModelNo, ItemID) 三元组；导入数据缺少
// 显式 ID 时由该三元组确定性合成，保证同一张表重复导入只更新不重复。
type BOMRecord struct {
	ID              string  `json:"id"`
	MachineCategory string  `json:"machineCategory"`
	ModelNo         string  `json:"modelNo"`
	ItemID          string  `json:"itemId"`
	Quantity        float64 `json:"quantity"`
	Remark          string  `json:"remark,omitempty"`
}

// EntityID 返回主键
func (b *BOMRecord) EntityID() string { return b.ID }

// IssueRequest 备件领用申请
type IssueRequest struct {
	ID          string        `json:"id"`
	ItemID      string        `json:"itemId"`
	Quantity    float64       `json:"quantity"`
	LocationID  string        `json:"locationId"`
	MachineID   string        `json:"machineId,omitempty"`
	RequestedBy string        `json:"requestedBy,omitempty"`
	Status      RequestStatus `json:"status"`
	RequestDate string        `json:"requestDate"`
}

// EntityID 返回主键
func (r *IssueRequest) EntityID() string { return r.ID }

// User 操作员账号，主键为用户名
type User struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName,omitempty"`
	Role        string `json:"role"`
}

// EntityID 返回主键
func (u *User) EntityID() string { return u.Username }

// Breakdown 故障记录
type Breakdown struct {
	ID          string   `json:"id"`
	MachineID   string   `json:"machineId"`
	Description string   `json:"description,omitempty"`
	PartsUsed   []string `json:"partsUsed,omitempty"` // 存储层以逗号拼接串保存
	Status      string   `json:"status"`
	ReportedAt  string   `json:"reportedAt"`
	ResolvedAt  string   `json:"resolvedAt,omitempty"`
}

// EntityID 返回主键
func (b *Breakdown) EntityID() string { return b.ID }
