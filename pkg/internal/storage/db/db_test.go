package db_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/internal/model"
	"github.com/yeisme/slacksweep/pkg/internal/storage/db"
)

// newSQLiteClient 基于临时目录的 SQLite 建库，自动迁移清理历史表.
func newSQLiteClient(t *testing.T) *db.Client {
	t.Helper()

	cfg := &configs.DBConfig{
		Type:         configs.SQLite,
		Database:     filepath.Join(t.TempDir(), "history"),
		MaxIdleConns: 1,
	}

	cli, err := db.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	return cli
}

// TestNewSQLiteMigratesSweepRuns 测试建库时迁移表结构并可写入/读回运行记录.
func TestNewSQLiteMigratesSweepRuns(t *testing.T) {
	cli := newSQLiteClient(t)
	ctx := context.Background()

	run := &model.SweepRun{
		RunID:     "run-db-001",
		Mode:      model.SweepModeManual,
		Days:      30,
		Count:     1000,
		Cutoff:    1600000000,
		Matched:   4,
		Status:    model.SweepStatusRunning,
		StartedAt: time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC),
	}

	if err := cli.GetDB().WithContext(ctx).Create(run).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	var got model.SweepRun
	if err := cli.GetDB().WithContext(ctx).Where("run_id = ?", "run-db-001").First(&got).Error; err != nil {
		t.Fatalf("First returned error: %v", err)
	}

	if got.Mode != model.SweepModeManual || got.Matched != 4 || got.Status != model.SweepStatusRunning {
		t.Errorf("unexpected row: %+v", got)
	}
}

// TestUpdateSweepRunCounters 测试对 running 记录补全计数与状态.
func TestUpdateSweepRunCounters(t *testing.T) {
	cli := newSQLiteClient(t)
	ctx := context.Background()

	run := &model.SweepRun{
		RunID:     "run-db-002",
		Mode:      model.SweepModeScheduled,
		Days:      7,
		Count:     100,
		Matched:   3,
		Status:    model.SweepStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	if err := cli.GetDB().WithContext(ctx).Create(run).Error; err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	updates := map[string]any{
		"deleted":       2,
		"failed":        1,
		"bytes_deleted": int64(2097152),
		"status":        model.SweepStatusCompleted,
		"ended_at":      time.Now().UTC(),
	}

	if err := cli.GetDB().WithContext(ctx).Model(run).Updates(updates).Error; err != nil {
		t.Fatalf("Updates returned error: %v", err)
	}

	var got model.SweepRun
	if err := cli.GetDB().WithContext(ctx).Where("run_id = ?", "run-db-002").First(&got).Error; err != nil {
		t.Fatalf("First returned error: %v", err)
	}

	if got.Status != model.SweepStatusCompleted || got.Deleted != 2 || got.Failed != 1 {
		t.Errorf("counters not updated: %+v", got)
	}

	if got.BytesDeleted != 2097152 {
		t.Errorf("expected 2 MB recorded, got %d bytes", got.BytesDeleted)
	}

	if got.EndedAt.IsZero() {
		t.Error("expected ended_at to be set")
	}
}

// TestNewUnsupportedType 测试未注册的数据库类型.
func TestNewUnsupportedType(t *testing.T) {
	cfg := &configs.DBConfig{Type: "oracle", Database: "history"}

	if _, err := db.New(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unsupported database type")
	}
}

// TestGetRegisteredDBTypes 测试 SQLite dialector 随包加载注册.
func TestGetRegisteredDBTypes(t *testing.T) {
	found := false
	for _, dbType := range db.GetRegisteredDBTypes() {
		if dbType == configs.SQLite {
			found = true
		}
	}

	if !found {
		t.Error("expected sqlite in registered database types")
	}
}
