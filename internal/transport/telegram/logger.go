package telegram

import (
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// logBridge routes the library's printf-style logging into slog
type logBridge struct {
	logger *slog.Logger
}

func (b logBridge) Println(v ...any) {
	b.logger.Debug(strings.TrimSuffix(fmt.Sprintln(v...), "\n"), slog.String("component", "tgbotapi"))
}

func (b logBridge) Printf(format string, v ...any) {
	b.logger.Debug(fmt.Sprintf(format, v...), slog.String("component", "tgbotapi"))
}

// UseLogger sends the Bot API library's own log lines to logger at debug level
func UseLogger(logger *slog.Logger) error {
	return tgbotapi.SetLogger(logBridge{logger: logger})
}
