package repository

import (
	"context"

	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
)

// StudentProfileRepository 学生档案数据访问接口
type StudentProfileRepository interface {
	Create(ctx context.Context, profile *model.StudentProfile) error
	GetByStudentID(ctx context.Context, studentID string) (*model.StudentProfile, error)
	Update(ctx context.Context, profile *model.StudentProfile) error
}

type studentProfileRepo struct {
	db *gorm.DB
}

// NewStudentProfileRepo 创建 StudentProfileRepository 实例
func NewStudentProfileRepo(db *gorm.DB) StudentProfileRepository {
	return &studentProfileRepo{db: db}
}

func (r *studentProfileRepo) Create(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *studentProfileRepo) GetByStudentID(ctx context.Context, studentID string) (*model.StudentProfile, error) {
	var profile model.StudentProfile
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *studentProfileRepo) Update(ctx context.Context, profile *model.StudentProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}
