package logger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"wise-investing/pkg/common"
	"wise-investing/pkg/httpclient"

	"go.uber.org/zap/zapcore"
)

// AlertSender delivers a formatted log alert to an operator
type AlertSender interface {
	SendAlert(ctx context.Context, message string) error
}

type AlertCore struct {
	core     zapcore.Core
	minLevel zapcore.Level
	sender   AlertSender
}

func NewAlertCore(core zapcore.Core, minLevel zapcore.Level, sender AlertSender) *AlertCore {
	return &AlertCore{
		core:     core,
		minLevel: minLevel,
		sender:   sender,
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:     a.core.With(fields),
		minLevel: a.minLevel,
		sender:   a.sender,
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= a.minLevel && shouldSendAlert(fields) {
		message := FormatAlertMessage(entry, fields)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.sender.SendAlert(ctx, message)
		}()
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func shouldSendAlert(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

// FormatAlertMessage renders a log entry and its fields as a Markdown message
func FormatAlertMessage(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == common.KEY_LOG_HOOK_SEND_ALERT {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fieldStr strings.Builder
	for _, k := range keys {
		fieldStr.WriteString(fmt.Sprintf("• %s: %v\n", k, enc.Fields[k]))
	}

	return fmt.Sprintf(
		"🚨 *%s Alert*\n\n*Message:* %s\n\n*Fields:*\n%s\n*Time:* %s",
		entry.Level.CapitalString(),
		entry.Message,
		fieldStr.String(),
		entry.Time.Format("2006-01-02 15:04:05"),
	)
}

type telegramAlertSender struct {
	client httpclient.HTTPClient
	token  string
	chatID string
}

// NewTelegramAlertSender posts alerts through the Bot API sendMessage method
func NewTelegramAlertSender(botToken, chatID string) AlertSender {
	return &telegramAlertSender{
		client: httpclient.New("https://api.telegram.org", 10*time.Second, ""),
		token:  botToken,
		chatID: chatID,
	}
}

func (s *telegramAlertSender) SendAlert(ctx context.Context, message string) error {
	payload := map[string]interface{}{
		"chat_id":    s.chatID,
		"text":       message,
		"parse_mode": "Markdown",
	}
	resp, err := s.client.Post(ctx, fmt.Sprintf("/bot%s/sendMessage", s.token), payload, nil, nil)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("telegram alert returned status: %d", resp.StatusCode)
	}
	return nil
}
