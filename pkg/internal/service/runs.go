package service

import (
	"context"
	"fmt"

	ctxPkg "github.com/yeisme/slacksweep/pkg/context"
	"github.com/yeisme/slacksweep/pkg/internal/model"
	"github.com/yeisme/slacksweep/pkg/internal/storage/db"
)

// RunsService 查询清理历史记录.
type RunsService struct {
	dbClient *db.Client
}

func NewRunsService(c context.Context) *RunsService {
	return &RunsService{dbClient: ctxPkg.GetDBClient(c)}
}

// Recent 返回最近的清理运行，按开始时间倒序.
func (s *RunsService) Recent(ctx context.Context, limit int) ([]model.SweepRun, error) {
	if s.dbClient == nil {
		return nil, fmt.Errorf("db client not initialized")
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var rows []model.SweepRun
	if err := s.dbClient.GetDB().WithContext(ctx).
		Order("started_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}

	return rows, nil
}

// Get 按 run_id 查询单次运行.
func (s *RunsService) Get(ctx context.Context, runID string) (*model.SweepRun, error) {
	if s.dbClient == nil {
		return nil, fmt.Errorf("db client not initialized")
	}

	var row model.SweepRun
	if err := s.dbClient.GetDB().WithContext(ctx).
		Where("run_id = ?", runID).First(&row).Error; err != nil {
		return nil, err
	}

	return &row, nil
}
