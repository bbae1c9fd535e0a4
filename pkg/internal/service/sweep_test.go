package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/internal/model"
	"github.com/yeisme/slacksweep/pkg/internal/slack"
	"github.com/yeisme/slacksweep/pkg/internal/storage/db"
	"github.com/yeisme/slacksweep/pkg/internal/types"
)

// fakeSlackClient 模拟 Slack 客户端，记录删除调用并按预设返回错误.
type fakeSlackClient struct {
	files      []slack.File
	listErr    error
	deleteErrs map[string]error
	deleted    []string
}

func (f *fakeSlackClient) ListFiles(_ context.Context, _ string, _ int, _ int64) ([]slack.File, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.files, nil
}

func (f *fakeSlackClient) DeleteFile(_ context.Context, _ string, fileID string) error {
	if err, ok := f.deleteErrs[fileID]; ok {
		return err
	}

	f.deleted = append(f.deleted, fileID)

	return nil
}

func (f *fakeSlackClient) DownloadFile(_ context.Context, _ string, _ slack.File) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("content")), nil
}

func (f *fakeSlackClient) Ping(_ context.Context) error { return nil }

// fakeSecretProvider 返回固定令牌.
type fakeSecretProvider struct {
	token string
	err   error
}

func (p *fakeSecretProvider) Token(_ context.Context) (string, error) {
	return p.token, p.err
}

func (p *fakeSecretProvider) Close() error { return nil }

// newTestService 构造不依赖存储与 MQ 的测试服务，时间固定以保证报告行可断言.
func newTestService(cli slack.Client) *SweepService {
	return &SweepService{
		slackClient: cli,
		secrets:     &fakeSecretProvider{token: "xoxb-test"},
		cfg: &configs.AppConfig{
			Sweep: configs.SweepConfig{Mimetypes: []string{"document"}},
		},
		now: func() time.Time {
			return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
		},
	}
}

func docFile(id string, size int64) slack.File {
	return slack.File{
		ID:        id,
		Name:      id + ".pdf",
		Timestamp: 1600000000,
		Mimetype:  "application/document",
		Size:      size,
	}
}

func containsLine(lines []string, substr string) bool {
	for _, l := range lines {
		if strings.Contains(l, substr) {
			return true
		}
	}

	return false
}

// TestRunDryRun 测试演练模式：列举、产出报告，但不发出任何删除调用.
func TestRunDryRun(t *testing.T) {
	cli := &fakeSlackClient{files: []slack.File{docFile("F001", 1048576), docFile("F002", 524288)}}
	svc := newTestService(cli)

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 30, Count: 1000, DryRun: true}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(cli.deleted) != 0 {
		t.Errorf("expected no delete calls in dry run, got %d", len(cli.deleted))
	}

	if result.Matched != 2 || result.Deleted != 0 {
		t.Errorf("expected matched=2 deleted=0, got matched=%d deleted=%d", result.Matched, result.Deleted)
	}

	if !containsLine(result.Lines, "[i] DRY RUN, NO FILES DELETED") {
		t.Errorf("expected dry run notice in report, got %v", result.Lines)
	}

	// 演练模式同样产出汇总行
	if !containsLine(result.Lines, "Attempted to delete 1.50 MB in 2 files, actually deleted 0 files sized 0.00 MB") {
		t.Errorf("expected summary line in dry run report, got %v", result.Lines)
	}
}

// TestRunDeletesAll 测试全部删除成功时的计数与报告.
func TestRunDeletesAll(t *testing.T) {
	cli := &fakeSlackClient{files: []slack.File{docFile("F101", 1048576), docFile("F102", 1048576), docFile("F103", 1048576)}}
	svc := newTestService(cli)

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 14, Count: 1000, DryRun: false}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(cli.deleted) != 3 || result.Deleted != 3 || result.Failed != 0 {
		t.Errorf("expected 3 deletions, got calls=%d deleted=%d failed=%d", len(cli.deleted), result.Deleted, result.Failed)
	}

	if result.DeletedBytes != 3*1048576 {
		t.Errorf("expected 3 MB deleted, got %d bytes", result.DeletedBytes)
	}

	if !containsLine(result.Lines, "[i] 2024-06-15 12:00:00 Deleting files older than 14 days") {
		t.Errorf("expected title line, got %v", result.Lines)
	}

	if !containsLine(result.Lines, "Found 3 files in 3.00 MB") {
		t.Errorf("expected found line, got %v", result.Lines)
	}

	if !containsLine(result.Lines, "Attempted to delete 3.00 MB in 3 files, actually deleted 3 files sized 3.00 MB") {
		t.Errorf("expected summary line, got %v", result.Lines)
	}
}

// TestRunZeroFiles 测试没有候选文件时的报告.
func TestRunZeroFiles(t *testing.T) {
	svc := newTestService(&fakeSlackClient{})

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 7, Count: 100, DryRun: false}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Matched != 0 {
		t.Errorf("expected matched=0, got %d", result.Matched)
	}

	if !containsLine(result.Lines, "Found 0 files in 0.00 MB") {
		t.Errorf("expected zero found line, got %v", result.Lines)
	}
}

// TestRunSkipsAPIError 测试业务失败（ok=false）只跳过该文件并继续.
func TestRunSkipsAPIError(t *testing.T) {
	cli := &fakeSlackClient{
		files: []slack.File{docFile("F201", 1048576), docFile("F202", 1048576)},
		deleteErrs: map[string]error{
			"F201": &slack.APIError{Method: "files.delete", Code: "file_not_found"},
		},
	}
	svc := newTestService(cli)

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 60, Count: 1000, DryRun: false}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Failed != 1 || result.Deleted != 1 {
		t.Errorf("expected failed=1 deleted=1, got failed=%d deleted=%d", result.Failed, result.Deleted)
	}

	if !containsLine(result.Lines, "[!] Unable to delete: [F201] F201.pdf, reason: file_not_found") {
		t.Errorf("expected failure line, got %v", result.Lines)
	}

	// 失败的文件不计入删除体积
	if result.DeletedBytes != 1048576 {
		t.Errorf("expected 1 MB deleted, got %d bytes", result.DeletedBytes)
	}
}

// TestRunAbortsOnTransportError 测试传输错误中断批次：保留已完成的计数并仍然产出汇总行.
func TestRunAbortsOnTransportError(t *testing.T) {
	cli := &fakeSlackClient{
		files: []slack.File{docFile("F301", 1048576), docFile("F302", 1048576), docFile("F303", 1048576)},
		deleteErrs: map[string]error{
			"F302": fmt.Errorf("dial tcp: connection refused"),
		},
	}
	svc := newTestService(cli)

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 90, Count: 1000, DryRun: false}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	// F301 成功后在 F302 处中断，F303 不再尝试
	if result.Deleted != 1 {
		t.Errorf("expected deleted=1 before abort, got %d", result.Deleted)
	}

	if len(cli.deleted) != 1 || cli.deleted[0] != "F301" {
		t.Errorf("expected only F301 deleted, got %v", cli.deleted)
	}

	if !containsLine(result.Lines, "connection refused") {
		t.Errorf("expected transport error in report, got %v", result.Lines)
	}

	if !containsLine(result.Lines, "actually deleted 1 files sized 1.00 MB") {
		t.Errorf("expected summary with partial counts, got %v", result.Lines)
	}
}

// TestRunFiltersMimetypes 测试 MIME 类别白名单过滤.
func TestRunFiltersMimetypes(t *testing.T) {
	image := slack.File{ID: "F401", Name: "pic.png", Timestamp: 1600000000, Mimetype: "image/png", Size: 2048}
	cli := &fakeSlackClient{files: []slack.File{docFile("F402", 1024), image}}
	svc := newTestService(cli)

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 45, Count: 1000, DryRun: false}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if result.Matched != 1 {
		t.Errorf("expected only document matched, got %d", result.Matched)
	}

	if len(cli.deleted) != 1 || cli.deleted[0] != "F402" {
		t.Errorf("expected only F402 deleted, got %v", cli.deleted)
	}
}

// TestRunTokenError 测试令牌获取失败时整次运行失败.
func TestRunTokenError(t *testing.T) {
	svc := newTestService(&fakeSlackClient{})
	svc.secrets = &fakeSecretProvider{err: errors.New("secret access denied")}

	_, err := svc.Run(context.Background(), types.SweepParams{Days: 3, Count: 10, DryRun: true}, model.SweepModeManual)
	if err == nil {
		t.Fatal("expected error when token resolution fails")
	}
}

// TestRunListError 测试列举失败时整次运行失败.
func TestRunListError(t *testing.T) {
	svc := newTestService(&fakeSlackClient{listErr: errors.New("invalid_auth")})

	_, err := svc.Run(context.Background(), types.SweepParams{Days: 5, Count: 10, DryRun: true}, model.SweepModeManual)
	if err == nil {
		t.Fatal("expected error when listing fails")
	}
}

// newHistoryDB 建立临时 SQLite 历史库.
func newHistoryDB(t *testing.T) *db.Client {
	t.Helper()

	cli, err := db.New(context.Background(), &configs.DBConfig{
		Type:         configs.SQLite,
		Database:     filepath.Join(t.TempDir(), "history"),
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("init history db: %v", err)
	}

	return cli
}

// TestRunPersistsHistory 测试运行结束后历史库中有一条补全了计数与状态的记录.
func TestRunPersistsHistory(t *testing.T) {
	cli := &fakeSlackClient{files: []slack.File{docFile("F501", 1048576), docFile("F502", 1048576)}}
	svc := newTestService(cli)
	svc.dbClient = newHistoryDB(t)

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 21, Count: 1000, DryRun: false}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var row model.SweepRun
	if err := svc.dbClient.GetDB().Where("run_id = ?", result.RunID).First(&row).Error; err != nil {
		t.Fatalf("expected persisted run, got error: %v", err)
	}

	if row.Status != model.SweepStatusCompleted {
		t.Errorf("expected status completed, got %s", row.Status)
	}

	if row.Mode != model.SweepModeManual || row.Days != 21 || row.Count != 1000 {
		t.Errorf("unexpected persisted params: %+v", row)
	}

	if row.Matched != 2 || row.Deleted != 2 || row.Failed != 0 {
		t.Errorf("unexpected persisted counters: %+v", row)
	}

	if row.BytesDeleted != 2*1048576 {
		t.Errorf("expected 2 MB persisted, got %d bytes", row.BytesDeleted)
	}

	if row.EndedAt.IsZero() {
		t.Error("expected ended_at to be set")
	}
}

// TestRunPersistsFailureStatus 测试中断的运行落库为 failed 并记录错误文本.
func TestRunPersistsFailureStatus(t *testing.T) {
	cli := &fakeSlackClient{
		files: []slack.File{docFile("F601", 1048576), docFile("F602", 1048576)},
		deleteErrs: map[string]error{
			"F602": fmt.Errorf("dial tcp: connection refused"),
		},
	}
	svc := newTestService(cli)
	svc.dbClient = newHistoryDB(t)

	result, err := svc.Run(context.Background(), types.SweepParams{Days: 42, Count: 1000, DryRun: false}, model.SweepModeManual)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	var row model.SweepRun
	if err := svc.dbClient.GetDB().Where("run_id = ?", result.RunID).First(&row).Error; err != nil {
		t.Fatalf("expected persisted run, got error: %v", err)
	}

	if row.Status != model.SweepStatusFailed {
		t.Errorf("expected status failed, got %s", row.Status)
	}

	if !strings.Contains(row.Error, "connection refused") {
		t.Errorf("expected error text persisted, got %q", row.Error)
	}

	// 中断前完成的删除保留在计数中
	if row.Deleted != 1 {
		t.Errorf("expected deleted=1, got %d", row.Deleted)
	}
}

// TestMimetypeAllowed 测试包含匹配规则.
func TestMimetypeAllowed(t *testing.T) {
	categories := []string{"document", "pdf"}

	cases := []struct {
		mimetype string
		want     bool
	}{
		{"application/document", true},
		{"application/pdf", true},
		{"image/png", false},
		{"", false},
	}

	for _, c := range cases {
		if got := mimetypeAllowed(c.mimetype, categories); got != c.want {
			t.Errorf("mimetypeAllowed(%q) = %v, want %v", c.mimetype, got, c.want)
		}
	}
}
