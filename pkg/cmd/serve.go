package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/slacksweep/pkg/app"
	"github.com/yeisme/slacksweep/pkg/log"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := app.NewApp(configPath)
		defer a.Shutdown()

		errCh := make(chan error, 1)
		go func() {
			errCh <- a.Run()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return err
		case sig := <-sigCh:
			log.Logger().Info().Str("signal", sig.String()).Msg("收到退出信号，开始关闭")
			return nil
		}
	},
}

// registerServeCommand 注册 serve 子命令.
func registerServeCommand() {
	rootCmd.AddCommand(serveCmd)
}
