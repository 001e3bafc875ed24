package telegram

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"wise-investing/internal/dto"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/middleware"

	"github.com/labstack/echo/v4"
	"gopkg.in/telebot.v3"
)

const (
	msgWelcome         = "Welcome to Wise Investing Guru! Please register by using /register <your-email>"
	msgRegisterUsage   = "Invalid command format. Please use /register <your-email>"
	msgLinked          = "Hi %s, your Telegram is now linked!"
	msgAlreadyLinked   = "Hi %s, your Telegram is already linked."
	msgUnknownEmail    = "This email is not registered with us. Please register on our website first."
	msgStockUsage      = "Usage: /stock <TICKER>"
	msgNoPrice         = "Could not fetch price for %s. Please try again."
	msgFetchError      = "Error fetching data for %s. Please try again later."
	msgGenericError    = "An error occurred. Please try again later."
	msgUnknownCommand  = "I don't recognize that command. Use /start to see how to register or /stock <TICKER> for a quote."
	webhookWelcomeText = "Welcome to Wise Investing Telegram Webhook"

	webhookSecretHeader = "X-Telegram-Bot-Api-Secret-Token"
)

func (t *TelegramBotHandler) WithContext(handler func(ctx context.Context, c telebot.Context) error) func(c telebot.Context) error {
	return middleware.WithContext(t.ctx, t.cfg.Telegram.TimeoutDuration, handler)
}

func (t *TelegramBotHandler) RegisterHandlers() {
	t.echo.GET("/api/v1/telegram/webhook", func(c echo.Context) error {
		return c.String(http.StatusOK, webhookWelcomeText)
	})
	t.echo.POST("/api/v1/telegram/webhook", func(c echo.Context) error {
		if !t.validWebhookSecret(c.Request().Header.Get(webhookSecretHeader)) {
			t.log.WarnContext(t.ctx, "Rejected webhook request with invalid secret token", logger.StringField("ip", c.RealIP()))
			return c.JSON(http.StatusUnauthorized, dto.NewBaseResponse(http.StatusUnauthorized, "Unauthorized", nil))
		}
		var update telebot.Update
		if err := c.Bind(&update); err != nil {
			t.log.ErrorContext(t.ctx, "Cannot bind JSON", logger.ErrorField(err))
			badRequest := dto.NewBadRequestResponse(err.Error())
			return c.JSON(http.StatusBadRequest, badRequest)
		}
		t.bot.ProcessUpdate(update)
		return c.JSON(http.StatusOK, dto.NewBaseResponse(http.StatusOK, "ok", nil))
	})

	t.bot.Handle("/start", t.WithContext(t.handleStart))
	t.bot.Handle("/register", t.WithContext(t.handleRegister))
	t.bot.Handle("/stock", t.WithContext(t.handleStock))
	t.bot.Handle(telebot.OnText, t.WithContext(t.handleText))
}

// validWebhookSecret checks the token Telegram echoes on every webhook call.
// Without a configured secret every request is accepted.
func (t *TelegramBotHandler) validWebhookSecret(token string) bool {
	secret := t.cfg.Telegram.WebhookSecret
	if secret == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(secret)) == 1
}

func (t *TelegramBotHandler) reply(ctx context.Context, c telebot.Context, message string) error {
	_, err := t.telegram.Send(ctx, c, message)
	return err
}

func (t *TelegramBotHandler) handleStart(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, msgWelcome)
}

func (t *TelegramBotHandler) handleRegister(ctx context.Context, c telebot.Context) error {
	email := strings.TrimSpace(c.Message().Payload)
	if email == "" {
		return t.reply(ctx, c, msgRegisterUsage)
	}

	result, err := t.service.TelegramBotService.RegisterChat(ctx, email, c.Chat().ID)
	if err != nil {
		t.log.ErrorContext(ctx, "Failed to register telegram chat", logger.ErrorField(err), logger.Field("chat_id", c.Chat().ID))
		return t.reply(ctx, c, msgGenericError)
	}

	switch result.Status {
	case dto.RegistrationLinked:
		return t.reply(ctx, c, fmt.Sprintf(msgLinked, result.UserName))
	case dto.RegistrationAlreadyLinked:
		return t.reply(ctx, c, fmt.Sprintf(msgAlreadyLinked, result.UserName))
	default:
		return t.reply(ctx, c, msgUnknownEmail)
	}
}

func (t *TelegramBotHandler) handleStock(ctx context.Context, c telebot.Context) error {
	args := c.Args()
	if len(args) == 0 {
		return t.reply(ctx, c, msgStockUsage)
	}
	ticker := strings.ToUpper(args[0])

	message, err := t.service.TelegramBotService.LookupQuote(ctx, ticker)
	switch {
	case err == nil:
		return t.reply(ctx, c, message)
	case errors.Is(err, dto.ErrValidation):
		return t.reply(ctx, c, msgStockUsage)
	case errors.Is(err, dto.ErrNoMarketPrice):
		return t.reply(ctx, c, fmt.Sprintf(msgNoPrice, ticker))
	default:
		t.log.ErrorContext(ctx, "Failed to look up quote", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return t.reply(ctx, c, fmt.Sprintf(msgFetchError, ticker))
	}
}

func (t *TelegramBotHandler) handleText(ctx context.Context, c telebot.Context) error {
	return t.reply(ctx, c, msgUnknownCommand)
}
