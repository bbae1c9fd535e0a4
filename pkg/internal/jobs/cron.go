// Package jobs 负责注册与实现业务定时任务（基于 scheduler）。
package jobs

import (
	"context"
	"fmt"

	"github.com/yeisme/slacksweep/pkg/configs"
	ctxPkg "github.com/yeisme/slacksweep/pkg/context"
	"github.com/yeisme/slacksweep/pkg/internal/model"
	"github.com/yeisme/slacksweep/pkg/internal/service"
	"github.com/yeisme/slacksweep/pkg/internal/storage"
	"github.com/yeisme/slacksweep/pkg/internal/types"
	"github.com/yeisme/slacksweep/pkg/log"
	"github.com/yeisme/slacksweep/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务：
//   - 按 sweep.schedule（默认每天 04:30）执行一次清理，参数取配置默认值，
//     dry_run 由 sweep.schedule_dry_run 单独控制
func RegisterCronJobs(sched *scheduler.Scheduler, mgr *storage.Manager) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}

	if mgr == nil {
		return fmt.Errorf("storage manager is nil")
	}

	cfg := configs.GetConfig().Sweep
	if !cfg.ScheduleEnabled {
		return nil
	}

	// 将 storage manager 注入到 context，便于 service 使用
	baseCtx := ctxPkg.WithStorageManager(context.Background(), mgr)

	return sched.AddCron(JobScheduledSweep, cfg.Schedule, func(ctx context.Context) {
		runScheduledSweep(ctx)
	}, baseCtx)
}

// runScheduledSweep 执行一次定时清理.
func runScheduledSweep(ctx context.Context) {
	l := log.Logger().With().Str("job", JobScheduledSweep).Logger()

	cfg := configs.GetConfig().Sweep
	params := types.SweepParams{
		Days:   cfg.Days,
		Count:  cfg.Count,
		DryRun: cfg.ScheduleDryRun,
	}

	svc, err := service.NewSweepService(ctx)
	if err != nil {
		l.Error().Err(err).Msg("sweep service init failed")
		return
	}

	result, err := svc.Run(ctx, params, model.SweepModeScheduled)
	if err != nil {
		l.Error().Err(err).Msg("scheduled sweep failed")
		return
	}

	l.Info().
		Str("run_id", result.RunID).
		Int("matched", result.Matched).
		Int("deleted", result.Deleted).
		Msg("scheduled sweep done")
}
