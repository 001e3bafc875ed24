package service

import (
	"context"
	"fmt"
	"wise-investing/config"
	"wise-investing/internal/model"
	"wise-investing/pkg/logger"

	"github.com/robfig/cron/v3"
)

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
}

type schedulerService struct {
	cfg          *config.Scheduler
	log          *logger.Logger
	alertService AlertService
	cron         *cron.Cron
}

func NewSchedulerService(cfg *config.Scheduler, log *logger.Logger, alertService AlertService) SchedulerService {
	cronLog := cronLogger{log: log}
	return &schedulerService{
		cfg:          cfg,
		log:          log,
		alertService: alertService,
		cron: cron.New(cron.WithChain(
			cron.Recover(cronLog),
			cron.SkipIfStillRunning(cronLog),
		)),
	}
}

// Start registers the alert pass on the configured cron expression. It does
// nothing when no expression is configured.
func (s *schedulerService) Start(ctx context.Context) error {
	if s.cfg.AlertCron == "" {
		s.log.Info("Alert scheduler disabled")
		return nil
	}

	_, err := s.cron.AddFunc(s.cfg.AlertCron, func() {
		s.runAlertPass(ctx)
	})
	if err != nil {
		return fmt.Errorf("invalid alert cron %q: %w", s.cfg.AlertCron, err)
	}

	s.cron.Start()
	s.log.Info("Alert scheduler started", logger.StringField("cron", s.cfg.AlertCron))
	return nil
}

func (s *schedulerService) runAlertPass(parent context.Context) {
	if parent.Err() != nil {
		return
	}
	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if s.cfg.TimeoutDuration > 0 {
		ctx, cancel = context.WithTimeout(parent, s.cfg.TimeoutDuration)
	} else {
		ctx, cancel = context.WithCancel(parent)
	}
	defer cancel()

	if _, err := s.alertService.RunAlertPass(ctx, model.AlertRunTriggerScheduler); err != nil {
		s.log.ErrorContextWithAlert(ctx, "Scheduled alert pass failed", logger.ErrorField(err))
	}
}

// Stop waits for a running pass to finish.
func (s *schedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Alert scheduler stopped")
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	log *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.log.Logger.Sugar().Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.log.Logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
