package cmd

import (
	contextPkg "context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yeisme/slacksweep/pkg/configs"
	"github.com/yeisme/slacksweep/pkg/context"
	"github.com/yeisme/slacksweep/pkg/internal/model"
	"github.com/yeisme/slacksweep/pkg/internal/service"
	"github.com/yeisme/slacksweep/pkg/internal/storage"
	"github.com/yeisme/slacksweep/pkg/internal/types"
)

var (
	sweepDays     int
	sweepCount    int
	sweepJustTest int

	// 一次性执行清理，不启动 HTTP 服务。未显式给出的参数沿用配置默认值.
	sweepCmd = &cobra.Command{
		Use:   "sweep",
		Short: "run a single sweep and print the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return fmt.Errorf("init config: %w", err)
			}

			ctx := contextPkg.Background()

			manager, err := storage.Init(ctx)
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}
			defer func() { _ = manager.Close() }()

			ctx = context.WithStorageManager(ctx, manager)

			query := url.Values{}
			if cmd.Flags().Changed("days") {
				query.Set("days", strconv.Itoa(sweepDays))
			}
			if cmd.Flags().Changed("count") {
				query.Set("count", strconv.Itoa(sweepCount))
			}
			if cmd.Flags().Changed("just-a-test") {
				query.Set("just_a_test", strconv.Itoa(sweepJustTest))
			}

			cfg := configs.GetConfig()
			params, err := types.ResolveSweepParams(query, nil, &cfg.Sweep)
			if err != nil {
				return err
			}

			svc, err := service.NewSweepService(ctx)
			if err != nil {
				return fmt.Errorf("init sweep service: %w", err)
			}

			result, err := svc.Run(ctx, params, model.SweepModeManual)
			if err != nil {
				return err
			}

			for _, line := range result.Lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			return nil
		},
	}
)

// registerSweepCommand 注册一次性清理命令.
func registerSweepCommand() {
	sweepCmd.Flags().IntVar(&sweepDays, "days", 0, "delete files older than this many days")
	sweepCmd.Flags().IntVar(&sweepCount, "count", 0, "maximum number of files to list")
	sweepCmd.Flags().IntVar(&sweepJustTest, "just-a-test", 1, "non-zero means dry run, 0 actually deletes")

	rootCmd.AddCommand(sweepCmd)
}
