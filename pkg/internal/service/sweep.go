package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/yeisme/slacksweep/pkg/configs"
	ctxPkg "github.com/yeisme/slacksweep/pkg/context"
	"github.com/yeisme/slacksweep/pkg/internal/model"
	"github.com/yeisme/slacksweep/pkg/internal/secret"
	"github.com/yeisme/slacksweep/pkg/internal/slack"
	"github.com/yeisme/slacksweep/pkg/internal/storage/db"
	"github.com/yeisme/slacksweep/pkg/internal/storage/mq"
	"github.com/yeisme/slacksweep/pkg/internal/storage/s3"
	"github.com/yeisme/slacksweep/pkg/internal/types"
	nlog "github.com/yeisme/slacksweep/pkg/log"
	"github.com/yeisme/slacksweep/pkg/metrics"
	"github.com/yeisme/slacksweep/pkg/queue"
	"github.com/yeisme/slacksweep/pkg/tracing"
)

// producerName 事件头中的生产者标识.
const producerName = "slacksweep"

var (
	// sweepGroup 合并参数相同的并发清理请求，共享一次执行.
	sweepGroup singleflight.Group

	slackOnce  sync.Once
	slackCli   slack.Client
	slackErr   error
	secretOnce sync.Once
	secretProv secret.Provider
	secretErr  error
)

// defaultSlackClient 进程级 Slack 客户端（熔断器与限流器需要跨请求共享状态）.
func defaultSlackClient() (slack.Client, error) {
	slackOnce.Do(func() {
		cfg := configs.GetConfig()
		slackCli, slackErr = slack.NewClient(slack.NewOptions(cfg.Slack, cfg.Breaker))
	})

	return slackCli, slackErr
}

// defaultSecretProvider 进程级密钥源客户端.令牌本身每次运行都重新拉取，不缓存.
func defaultSecretProvider(ctx context.Context) (secret.Provider, error) {
	secretOnce.Do(func() {
		secretProv, secretErr = secret.New(ctx, &configs.GetConfig().Secret)
	})

	return secretProv, secretErr
}

// SlackClient 返回进程级 Slack 客户端，供健康检查等处复用.
func SlackClient() (slack.Client, error) {
	return defaultSlackClient()
}

// SweepService 执行一次清理运行：取令牌、列举、过滤、删除（或预览）、产出报告.
type SweepService struct {
	dbClient      *db.Client
	archiveClient *s3.Client
	mqClient      *mq.Client
	slackClient   slack.Client
	secrets       secret.Provider
	cfg           *configs.AppConfig
	now           func() time.Time
}

// NewSweepService 从 context 获取存储资源并绑定进程级 Slack / 密钥客户端.
func NewSweepService(c context.Context) (*SweepService, error) {
	cli, err := defaultSlackClient()
	if err != nil {
		return nil, fmt.Errorf("init slack client: %w", err)
	}

	prov, err := defaultSecretProvider(c)
	if err != nil {
		return nil, fmt.Errorf("init secret provider: %w", err)
	}

	return &SweepService{
		dbClient:      ctxPkg.GetDBClient(c),
		archiveClient: ctxPkg.GetArchiveClient(c),
		mqClient:      ctxPkg.GetMQClient(c),
		slackClient:   cli,
		secrets:       prov,
		cfg:           configs.GetConfig(),
		now:           time.Now,
	}, nil
}

// Run 执行清理.参数相同的并发调用通过 singleflight 合并为一次执行.
func (s *SweepService) Run(ctx context.Context, params types.SweepParams, mode string) (*types.SweepResult, error) {
	key := fmt.Sprintf("%d|%d|%t", params.Days, params.Count, params.DryRun)

	v, err, _ := sweepGroup.Do(key, func() (any, error) {
		return s.run(ctx, params, mode)
	})
	if err != nil {
		return nil, err
	}

	return v.(*types.SweepResult), nil
}

// run 单次清理的完整流程.
func (s *SweepService) run(ctx context.Context, params types.SweepParams, mode string) (*types.SweepResult, error) {
	startedAt := s.now()
	result := &types.SweepResult{
		RunID:  uuid.NewString(),
		Mode:   mode,
		Params: params,
	}

	logger := nlog.Component("sweep").With().Str("run_id", result.RunID).Logger()

	result.Lines = append(result.Lines,
		fmt.Sprintf("[i] %s Deleting files older than %d days", types.FormatTimestamp(startedAt), params.Days))

	token, err := s.secrets.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve slack token: %w", err)
	}

	logger.Info().Int("days", params.Days).Int("count", params.Count).Bool("dry_run", params.DryRun).
		Msg("fetching file list")

	records, err := s.listCandidates(ctx, token, params, startedAt)
	if err != nil {
		return nil, err
	}

	result.Matched = len(records)
	for _, r := range records {
		result.AttemptedBytes += r.Size
	}

	result.Lines = append(result.Lines,
		fmt.Sprintf("[i] %s Found %d files in %s MB",
			types.FormatTimestamp(s.now()), result.Matched, types.FormatMB(result.AttemptedBytes)))

	run := s.recordStart(ctx, result, startedAt)
	s.publishStarted(result)

	loopErr := s.deleteFiles(ctx, token, records, result, &logger)

	// 批内错误不吞掉汇总行，计数保留到中断处
	if loopErr != nil {
		result.Lines = append(result.Lines, loopErr.Error())
		logger.Error().Err(loopErr).Msg("sweep aborted mid-batch")
	}

	result.Lines = append(result.Lines,
		fmt.Sprintf("[i] %s Attempted to delete %s MB in %d files, actually deleted %d files sized %s MB",
			types.FormatTimestamp(s.now()), types.FormatMB(result.AttemptedBytes), result.Matched,
			result.Deleted, types.FormatMB(result.DeletedBytes)))

	status := model.SweepStatusCompleted
	if loopErr != nil {
		status = model.SweepStatusFailed
	}

	s.recordEnd(ctx, run, result, status, loopErr)
	s.publishCompleted(result, startedAt, loopErr)

	metricMode := "delete"
	if params.DryRun {
		metricMode = "dry_run"
	}

	metrics.SweepRuns.WithLabelValues(metricMode, status).Inc()

	logger.Info().
		Int("matched", result.Matched).
		Int("deleted", result.Deleted).
		Int("failed", result.Failed).
		Str("status", status).
		Msg("sweep finished")

	return result, nil
}

// listCandidates 调 files.list 并按 MIME 类别白名单过滤.
func (s *SweepService) listCandidates(ctx context.Context, token string, params types.SweepParams, now time.Time) ([]types.FileRecord, error) {
	ctx, span := tracing.StartSpan(ctx, "sweep.list")
	defer span.End()

	files, err := s.slackClient.ListFiles(ctx, token, params.Count, params.Cutoff(now))
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}

	records := make([]types.FileRecord, 0, len(files))

	for _, f := range files {
		if !mimetypeAllowed(f.Mimetype, s.cfg.Sweep.Mimetypes) {
			continue
		}

		records = append(records, types.FileRecord{
			ID:         f.ID,
			Name:       f.Name,
			When:       types.FormatTimestamp(time.Unix(f.Timestamp, 0)),
			Mimetype:   f.Mimetype,
			Size:       f.Size,
			Uploaded:   f.Timestamp,
			URLPrivate: f.URLPrivate,
		})
	}

	return records, nil
}

// mimetypeAllowed 包含匹配：mimetype 含任一类别子串即视为候选.
// Slack 的 types 过滤参数偶尔漏掉条目，因此在本地过滤.
func mimetypeAllowed(mimetype string, categories []string) bool {
	for _, c := range categories {
		if strings.Contains(mimetype, c) {
			return true
		}
	}

	return false
}

// deleteFiles 顺序删除候选文件.干跑模式不发出任何删除调用.
// 业务失败（ok=false）与归档失败跳过该文件；传输错误中断批次并返回.
func (s *SweepService) deleteFiles(ctx context.Context, token string, records []types.FileRecord, result *types.SweepResult, logger *zerolog.Logger) error {
	if result.Params.DryRun {
		result.Lines = append(result.Lines, "[i] DRY RUN, NO FILES DELETED")
		logger.Info().Int("matched", result.Matched).Msg("dry run, no files deleted")

		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "sweep.delete")
	defer span.End()

	for _, f := range records {
		archiveKey, archiveErr := s.archiveFile(ctx, token, f)
		if archiveErr != nil {
			result.Failed++
			result.Lines = append(result.Lines,
				fmt.Sprintf("[!] Unable to archive: [%s] %s, reason: %s", f.ID, f.Name, archiveErr))
			logger.Warn().Str("file", f.ID).Err(archiveErr).Msg("archive failed, skipping delete")
			s.publishFileSkipped(result.RunID, f, "archive_failed")

			continue
		}

		if err := s.slackClient.DeleteFile(ctx, token, f.ID); err != nil {
			var apiErr *slack.APIError
			if !errors.As(err, &apiErr) {
				// 传输层错误，中断批次
				return err
			}

			result.Failed++
			result.Lines = append(result.Lines,
				fmt.Sprintf("[!] Unable to delete: [%s] %s, reason: %s", f.ID, f.Name, apiErr.Code))
			logger.Warn().Str("file", f.ID).Str("reason", apiErr.Code).Msg("unable to delete")
			metrics.SweepDeleteFailures.Inc()
			s.publishFileSkipped(result.RunID, f, apiErr.Code)

			continue
		}

		result.Deleted++
		result.DeletedBytes += f.Size

		if archiveKey != "" {
			result.Archived++
		}

		metrics.SweepFilesDeleted.Inc()
		metrics.SweepBytesDeleted.Add(float64(f.Size))
		logger.Info().Str("file", f.ID).Str("name", f.Name).Str("uploaded", f.When).Msg("deleted")
		s.publishFileDeleted(result.RunID, f, archiveKey)
	}

	return nil
}

// archiveFile 启用归档时，把文件内容先写入对象存储.未启用时直接放行.
func (s *SweepService) archiveFile(ctx context.Context, token string, f types.FileRecord) (string, error) {
	if s.archiveClient == nil {
		return "", nil
	}

	body, err := s.slackClient.DownloadFile(ctx, token, slack.File{
		ID:         f.ID,
		Name:       f.Name,
		URLPrivate: f.URLPrivate,
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	key := fmt.Sprintf("%s/%s_%s", s.now().Format("2006-01-02"), f.ID, f.Name)

	return s.archiveClient.Archive(ctx, key, body, f.Size, f.Mimetype)
}

// recordStart 在历史库中落一条 running 记录.DB 未初始化时（如单测）跳过.
func (s *SweepService) recordStart(ctx context.Context, result *types.SweepResult, startedAt time.Time) *model.SweepRun {
	if s.dbClient == nil {
		return nil
	}

	run := &model.SweepRun{
		RunID:     result.RunID,
		Mode:      result.Mode,
		Days:      result.Params.Days,
		Count:     result.Params.Count,
		DryRun:    result.Params.DryRun,
		Cutoff:    result.Params.Cutoff(startedAt),
		Matched:   result.Matched,
		Status:    model.SweepStatusRunning,
		StartedAt: startedAt,
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Create(run).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("run_id", result.RunID).Msg("record sweep start failed")

		return nil
	}

	return run
}

// recordEnd 补全计数与状态.
func (s *SweepService) recordEnd(ctx context.Context, run *model.SweepRun, result *types.SweepResult, status string, loopErr error) {
	if s.dbClient == nil || run == nil {
		return
	}

	updates := map[string]any{
		"deleted":       result.Deleted,
		"failed":        result.Failed,
		"archived":      result.Archived,
		"bytes_deleted": result.DeletedBytes,
		"status":        status,
		"ended_at":      s.now(),
	}
	if loopErr != nil {
		updates["error"] = loopErr.Error()
	}

	if err := s.dbClient.GetDB().WithContext(ctx).Model(run).Updates(updates).Error; err != nil {
		nlog.Logger().Warn().Err(err).Str("run_id", result.RunID).Msg("record sweep end failed")
	}
}

// eventParams 构造事件负载中的参数块.
func eventParams(result *types.SweepResult, startedAt time.Time) queue.SweepParams {
	return queue.SweepParams{
		Days:   result.Params.Days,
		Count:  result.Params.Count,
		DryRun: result.Params.DryRun,
		Cutoff: result.Params.Cutoff(startedAt),
	}
}

// publishStarted 发布运行开始事件.
func (s *SweepService) publishStarted(result *types.SweepResult) {
	if s.mqClient == nil || !s.cfg.Events.Enabled {
		return
	}

	err := queue.PublishSweepStarted(s.mqClient.Publisher(), queue.SweepStartedPayload{
		RunID:  result.RunID,
		Mode:   result.Mode,
		Params: eventParams(result, s.now()),
	}, queue.WithProducer(producerName), queue.WithTraceID(result.RunID))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish sweep started failed")
	}
}

// publishCompleted 发布运行结束事件；中断时改发 failed 事件.
func (s *SweepService) publishCompleted(result *types.SweepResult, startedAt time.Time, loopErr error) {
	if s.mqClient == nil || !s.cfg.Events.Enabled {
		return
	}

	if loopErr != nil {
		err := queue.PublishSweepFailed(s.mqClient.Publisher(), queue.SweepFailedPayload{
			RunID:   result.RunID,
			Mode:    result.Mode,
			Error:   loopErr.Error(),
			Partial: result.Deleted,
		}, queue.WithProducer(producerName), queue.WithTraceID(result.RunID))
		if err != nil {
			nlog.Logger().Warn().Err(err).Msg("publish sweep failed event failed")
		}

		return
	}

	if !s.cfg.Events.Sweep.Completed {
		return
	}

	err := queue.PublishSweepCompleted(s.mqClient.Publisher(), queue.SweepCompletedPayload{
		RunID:        result.RunID,
		Mode:         result.Mode,
		Params:       eventParams(result, startedAt),
		Matched:      result.Matched,
		Deleted:      result.Deleted,
		Failed:       result.Failed,
		Archived:     result.Archived,
		BytesDeleted: result.DeletedBytes,
		DurationMS:   s.now().Sub(startedAt).Milliseconds(),
	}, queue.WithProducer(producerName), queue.WithTraceID(result.RunID))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish sweep completed failed")
	}
}

// publishFileDeleted 发布单文件删除事件.
func (s *SweepService) publishFileDeleted(runID string, f types.FileRecord, archiveKey string) {
	if s.mqClient == nil || !s.cfg.Events.Enabled || !s.cfg.Events.Sweep.FileDeleted {
		return
	}

	err := queue.PublishFileDeleted(s.mqClient.Publisher(), queue.FileDeletedPayload{
		RunID:      runID,
		File:       fileRef(f),
		ArchiveKey: archiveKey,
	}, queue.WithProducer(producerName), queue.WithTraceID(runID))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish file deleted failed")
	}
}

// publishFileSkipped 发布单文件跳过事件.
func (s *SweepService) publishFileSkipped(runID string, f types.FileRecord, reason string) {
	if s.mqClient == nil || !s.cfg.Events.Enabled || !s.cfg.Events.Sweep.FileSkipped {
		return
	}

	err := queue.PublishFileSkipped(s.mqClient.Publisher(), queue.FileSkippedPayload{
		RunID:  runID,
		File:   fileRef(f),
		Reason: reason,
	}, queue.WithProducer(producerName), queue.WithTraceID(runID))
	if err != nil {
		nlog.Logger().Warn().Err(err).Msg("publish file skipped failed")
	}
}

func fileRef(f types.FileRecord) queue.FileRef {
	return queue.FileRef{
		ID:        f.ID,
		Name:      f.Name,
		Mimetype:  f.Mimetype,
		Size:      f.Size,
		Timestamp: f.Uploaded,
	}
}
