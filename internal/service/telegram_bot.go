package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"wise-investing/internal/dto"
	"wise-investing/internal/repository"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/telegram"
	"wise-investing/pkg/utils"
)

type TelegramBotService interface {
	RegisterChat(ctx context.Context, email string, chatID int64) (*dto.RegisterChatResult, error)
	LookupQuote(ctx context.Context, ticker string) (string, error)
}

type telegramBotService struct {
	log        *logger.Logger
	userRepo   repository.UserRepository
	enrichment EnrichmentService
}

func NewTelegramBotService(log *logger.Logger, userRepo repository.UserRepository, enrichment EnrichmentService) TelegramBotService {
	return &telegramBotService{
		log:        log,
		userRepo:   userRepo,
		enrichment: enrichment,
	}
}

// RegisterChat links chatID to the user with the given email. A user that is
// already linked keeps its existing chat.
func (s *telegramBotService) RegisterChat(ctx context.Context, email string, chatID int64) (*dto.RegisterChatResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", dto.ErrValidation)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dto.ErrNotFound) {
			return &dto.RegisterChatResult{Status: dto.RegistrationUnknownEmail}, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.HasTelegram() {
		return &dto.RegisterChatResult{Status: dto.RegistrationAlreadyLinked, UserName: user.Name}, nil
	}

	linked, err := s.userRepo.LinkTelegramChat(ctx, user.ID, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to link telegram chat: %w", err)
	}
	if !linked {
		return &dto.RegisterChatResult{Status: dto.RegistrationAlreadyLinked, UserName: user.Name}, nil
	}

	s.log.InfoContext(ctx, "Linked telegram chat", logger.IntField("user_id", int(user.ID)))
	return &dto.RegisterChatResult{Status: dto.RegistrationLinked, UserName: user.Name}, nil
}

func (s *telegramBotService) LookupQuote(ctx context.Context, ticker string) (string, error) {
	ticker = utils.NormalizeSymbol(ticker)
	if len(ticker) < 2 {
		return "", fmt.Errorf("%w: ticker must have at least 2 characters", dto.ErrValidation)
	}

	quote, err := s.enrichment.GetQuote(ctx, ticker)
	if err != nil {
		return "", err
	}
	return telegram.FormatStockQuote(ticker, *quote.RegularMarketPrice, quote.RegularMarketChangePercent, quote.MarketCap), nil
}
