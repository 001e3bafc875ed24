package service

import (
	"context"
	"encoding/json"
	"fmt"
	"wise-investing/config"
	"wise-investing/internal/contract"
	"wise-investing/internal/dto"
	"wise-investing/internal/helper"
	"wise-investing/internal/model"
	"wise-investing/internal/repository"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/telegram"
	"wise-investing/pkg/utils"

	"gorm.io/datatypes"
)

type AlertService interface {
	Evaluate(stocks []dto.EnrichedStock) []dto.AlertCandidate
	RunAlertPass(ctx context.Context, trigger string) (*dto.AlertRunResult, error)
}

type alertService struct {
	cfg           *config.Alert
	log           *logger.Logger
	userRepo      repository.UserRepository
	watchlistRepo repository.WatchlistRepository
	stockRepo     repository.StockRepository
	alertRunRepo  repository.AlertRunRepository
	enrichment    EnrichmentService
	notifier      contract.Notifier
}

func NewAlertService(
	cfg *config.Alert,
	log *logger.Logger,
	userRepo repository.UserRepository,
	watchlistRepo repository.WatchlistRepository,
	stockRepo repository.StockRepository,
	alertRunRepo repository.AlertRunRepository,
	enrichment EnrichmentService,
	notifier contract.Notifier,
) AlertService {
	return &alertService{
		cfg:           cfg,
		log:           log,
		userRepo:      userRepo,
		watchlistRepo: watchlistRepo,
		stockRepo:     stockRepo,
		alertRunRepo:  alertRunRepo,
		enrichment:    enrichment,
		notifier:      notifier,
	}
}

// Evaluate selects the stocks whose move from purchase price crossed the
// threshold into a bucket that has not been notified yet.
func (s *alertService) Evaluate(stocks []dto.EnrichedStock) []dto.AlertCandidate {
	return EvaluateAlerts(stocks, s.cfg.ThresholdPercent)
}

func EvaluateAlerts(stocks []dto.EnrichedStock, threshold float64) []dto.AlertCandidate {
	var candidates []dto.AlertCandidate
	for _, stock := range stocks {
		if !stock.HasCostBasis() || stock.CurrentPrice == nil || stock.ChangePercent == nil {
			continue
		}
		pct := *stock.ChangePercent
		if !helper.CrossesThreshold(pct, threshold) {
			continue
		}
		if helper.SameAlertBucket(pct, stock.LastNotifiedPercent) {
			continue
		}
		candidates = append(candidates, dto.AlertCandidate{
			Stock:         stock,
			ChangePercent: pct,
			Message:       telegram.FormatPriceChangeAlert(stock.Symbol, stock.Name, *stock.PurchasePrice, *stock.CurrentPrice, pct),
		})
	}
	return candidates
}

func (s *alertService) RunAlertPass(ctx context.Context, trigger string) (*dto.AlertRunResult, error) {
	run := &model.AlertRun{
		Trigger:   trigger,
		Status:    model.AlertRunStatusRunning,
		StartedAt: utils.TimeNow(),
	}
	if err := s.alertRunRepo.Create(ctx, run); err != nil {
		s.log.ErrorContextWithAlert(ctx, "Failed to create alert run", logger.ErrorField(err))
		return nil, fmt.Errorf("failed to create alert run: %w", err)
	}

	result := &dto.AlertRunResult{RunID: run.ID, Users: []dto.UserAlertResult{}}

	users, err := s.userRepo.GetUsersWithTelegram(ctx)
	if err != nil {
		s.log.ErrorContextWithAlert(ctx, "Failed to list users for alert pass", logger.ErrorField(err), logger.IntField("run_id", int(run.ID)))
		s.finishRun(ctx, run, result, err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	s.log.InfoContext(ctx, "Starting alert pass",
		logger.IntField("run_id", int(run.ID)),
		logger.StringField("trigger", trigger),
		logger.IntField("user_count", len(users)),
	)

	for _, user := range users {
		if !utils.ShouldContinue(ctx, s.log) {
			break
		}
		userResult := s.processUser(ctx, user)
		result.Users = append(result.Users, userResult)
		result.UsersProcessed++
		if userResult.Delivered {
			result.AlertsSent += userResult.AlertsTriggered
		}
	}

	s.finishRun(ctx, run, result, nil)

	s.log.InfoContext(ctx, "Alert pass completed",
		logger.IntField("run_id", int(run.ID)),
		logger.IntField("users_processed", result.UsersProcessed),
		logger.IntField("alerts_sent", result.AlertsSent),
	)
	return result, nil
}

// processUser never fails the pass; problems are logged and recorded in the result.
func (s *alertService) processUser(ctx context.Context, user model.User) dto.UserAlertResult {
	res := dto.UserAlertResult{UserID: user.ID}
	if !user.HasTelegram() {
		return res
	}

	watchlists, err := s.watchlistRepo.Get(ctx, model.GetWatchlistParam{
		UserID:        utils.ToPointer(user.ID),
		Names:         s.cfg.WatchlistNames,
		PreloadStocks: true,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to load watchlists", logger.ErrorField(err), logger.IntField("user_id", int(user.ID)))
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	var stocks []model.Stock
	for _, w := range watchlists {
		stocks = append(stocks, w.Stocks...)
	}
	res.StocksEvaluated = len(stocks)
	if len(stocks) == 0 {
		return res
	}

	enriched := make([]dto.EnrichedStock, 0, len(stocks))
	for _, r := range s.enrichment.Enrich(ctx, stocks) {
		if r.Err != nil {
			res.QuoteFailures++
			continue
		}
		enriched = append(enriched, r.Stock)
	}

	var messages []string
	for _, candidate := range s.Evaluate(enriched) {
		updated, err := s.stockRepo.UpdateLastNotifiedPercent(ctx, candidate.Stock.ID, candidate.Stock.LastNotifiedPercent, candidate.ChangePercent)
		if err != nil {
			s.log.ErrorContext(ctx, "Failed to persist alert marker",
				logger.ErrorField(err),
				logger.IntField("stock_id", int(candidate.Stock.ID)),
				logger.StringField("symbol", candidate.Stock.Symbol))
			res.Errors = append(res.Errors, err.Error())
			continue
		}
		if !updated {
			s.log.DebugContext(ctx, "Alert marker changed concurrently, skipping",
				logger.IntField("stock_id", int(candidate.Stock.ID)),
				logger.StringField("symbol", candidate.Stock.Symbol))
			continue
		}
		messages = append(messages, candidate.Message)
		res.Symbols = append(res.Symbols, candidate.Stock.Symbol)
	}

	res.AlertsTriggered = len(messages)
	if len(messages) == 0 {
		return res
	}

	if err := s.notifier.Notify(ctx, *user.TelegramChatID, telegram.JoinAlerts(messages)); err != nil {
		s.log.ErrorContext(ctx, "Failed to deliver alerts",
			logger.ErrorField(err),
			logger.IntField("user_id", int(user.ID)),
			logger.IntField("alert_count", len(messages)))
		res.Errors = append(res.Errors, err.Error())
		return res
	}
	res.Delivered = true
	return res
}

func (s *alertService) finishRun(ctx context.Context, run *model.AlertRun, result *dto.AlertRunResult, runErr error) {
	run.CompletedAt = utils.ToPointer(utils.TimeNow())
	run.UsersProcessed = result.UsersProcessed
	run.AlertsSent = result.AlertsSent
	run.Status = model.AlertRunStatusCompleted
	if runErr != nil {
		run.Status = model.AlertRunStatusFailed
		run.ErrorMessage = runErr.Error()
	}

	if payload, err := json.Marshal(result); err == nil {
		run.Result = datatypes.JSON(payload)
	} else {
		s.log.WarnContext(ctx, "Failed to marshal alert run result", logger.ErrorField(err))
	}

	// the pass may have been cancelled, history is still written
	if err := s.alertRunRepo.Update(context.WithoutCancel(ctx), run); err != nil {
		s.log.ErrorContext(ctx, "Failed to update alert run", logger.ErrorField(err), logger.IntField("run_id", int(run.ID)))
	}
}
