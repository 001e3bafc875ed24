package telegram

import (
	"context"
	"strconv"
	"sync"
	"time"
	"wise-investing/config"
	"wise-investing/pkg/logger"
	"wise-investing/pkg/utils"

	"golang.org/x/time/rate"
	"gopkg.in/telebot.v3"
)

// Sender is the subset of *telebot.Bot used to deliver messages
type Sender interface {
	Send(to telebot.Recipient, what interface{}, opts ...interface{}) (*telebot.Message, error)
}

type userLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// chatRecipient addresses a chat by id without needing a full telebot.Chat
type chatRecipient int64

func (c chatRecipient) Recipient() string {
	return strconv.FormatInt(int64(c), 10)
}

type TelegramRateLimiter struct {
	cfg           *config.TelegramConfig
	log           *logger.Logger
	globalLimiter *rate.Limiter
	userLimiters  map[int64]*userLimiterEntry
	bot           Sender
	mu            sync.Mutex
	wg            sync.WaitGroup
}

func NewTelegramRateLimiter(cfg *config.TelegramConfig, log *logger.Logger, bot Sender) *TelegramRateLimiter {
	return &TelegramRateLimiter{
		cfg:           cfg,
		log:           log,
		bot:           bot,
		globalLimiter: rate.NewLimiter(rate.Limit(cfg.MaxGlobalRequestPerSecond), max(cfg.MaxGlobalRequestPerSecond, 1)),
		userLimiters:  make(map[int64]*userLimiterEntry),
	}
}

// Send replies in the chat of an incoming update
func (t *TelegramRateLimiter) Send(ctx context.Context, c telebot.Context, what interface{}, opts ...interface{}) (*telebot.Message, error) {
	if err := t.checkRateLimit(ctx, c.Chat().ID); err != nil {
		return nil, err
	}
	return t.bot.Send(c.Chat(), what, opts...)
}

// Notify delivers a plain text message to a chat id
func (t *TelegramRateLimiter) Notify(ctx context.Context, chatID int64, message string) error {
	if err := t.checkRateLimit(ctx, chatID); err != nil {
		return err
	}
	if _, err := t.bot.Send(chatRecipient(chatID), message); err != nil {
		t.log.ErrorContext(ctx, "Failed to send message", logger.ErrorField(err), logger.Field("chat_id", chatID))
		return err
	}
	return nil
}

func (r *TelegramRateLimiter) getUserLimiter(chatID int64) *userLimiterEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limiter, exists := r.userLimiters[chatID]; exists {
		limiter.lastAccess = time.Now()
		return limiter
	}

	limiter := rate.NewLimiter(rate.Limit(r.cfg.MaxUserRequestPerSecond), max(r.cfg.MaxUserRequestPerSecond, 1))
	r.userLimiters[chatID] = &userLimiterEntry{
		limiter:    limiter,
		lastAccess: time.Now(),
	}
	return r.userLimiters[chatID]
}

func (r *TelegramRateLimiter) checkRateLimit(ctx context.Context, chatID int64) error {
	userLimiter := r.getUserLimiter(chatID)

	if err := r.globalLimiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for global rate limit", logger.ErrorField(err))
		return err
	}
	if err := userLimiter.limiter.Wait(ctx); err != nil {
		r.log.ErrorContext(ctx, "Failed to wait for user rate limit", logger.ErrorField(err))
		return err
	}
	return nil
}

func (r *TelegramRateLimiter) StartCleanupExpired(ctx context.Context) {
	if r.cfg.RateLimitCleanupDuration <= 0 {
		return
	}
	r.wg.Add(1)
	utils.GoSafe(func() {
		defer r.wg.Done()
		ticker := time.NewTicker(r.cfg.RateLimitCleanupDuration)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.log.Info("Received signal to stop Telegram rate limiter cleanup expired")
				return
			case <-ticker.C:
				r.cleanupExpired(time.Now())
			}
		}
	})
}

func (r *TelegramRateLimiter) cleanupExpired(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for chatID, entry := range r.userLimiters {
		if now.Sub(entry.lastAccess) > r.cfg.RatelimitExpireDuration {
			delete(r.userLimiters, chatID)
		}
	}
}

func (r *TelegramRateLimiter) StopCleanupExpired() {
	r.wg.Wait()
	r.log.Info("Telegram rate limiter stopped")
}
