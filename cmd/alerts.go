package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"wise-investing/internal/model"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkAlertsCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one alert pass for every user with a linked Telegram chat",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		appDep, err := NewAppDependency(ctx)
		if err != nil {
			log.Fatalf("Failed to create app dependency: %v", err)
		}
		defer appDep.Close()

		if appDep.cfg.Scheduler.TimeoutDuration > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, appDep.cfg.Scheduler.TimeoutDuration)
			defer cancel()
		}

		result, err := appDep.Services().AlertService.RunAlertPass(ctx, model.AlertRunTriggerCLI)
		if err != nil {
			appDep.log.Error("Alert pass failed", zap.Error(err))
			return
		}
		appDep.log.Info("Alert pass finished",
			zap.Uint("run_id", result.RunID),
			zap.Int("users_processed", result.UsersProcessed),
			zap.Int("alerts_sent", result.AlertsSent),
		)
	},
}

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Alert maintenance commands",
}

func init() {
	alertsCmd.AddCommand(checkAlertsCmd)
}
