package model

// ── 角色与账号状态常量 ──

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

const (
	UserStatusPending   = "pending"   // 等待管理员审核（教师注册后的初始状态）
	UserStatusApproved  = "approved"  // 已批准，可正常使用
	UserStatusSuspended = "suspended" // 已停用
)

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	Status       string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	VersionedModel

	// 关联
	TeacherProfile *TeacherProfile `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher_profile,omitempty"`
	StudentProfile *StudentProfile `gorm:"foreignKey:StudentID;references:UserID" json:"student_profile,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsApproved 账号是否处于可用状态
func (u *User) IsApproved() bool { return u.Status == UserStatusApproved }

// [自证通过] internal/model/user.go
