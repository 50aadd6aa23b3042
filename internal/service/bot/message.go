package bot

import (
	"fmt"
	"strings"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/KNICEX/oi-screener/pkg/decimalx"
)

func helpMessage() notification.Message {
	return notification.Message{
		Text: "👋 Open interest screener.\n\n" +
			"I watch futures open interest and send a signal when it grows faster than your threshold.\n\n" +
			"/run - start the scanner\n" +
			"/stop - stop the scanner\n" +
			"/settings - show settings\n" +
			"/period 15 - window in minutes (5-30)\n" +
			"/threshold 5 - open interest growth in percent\n" +
			"/exchanges binance,bybit,okx - exchanges to scan\n" +
			"/timezone Europe/Kyiv - time zone of signal messages",
		Buttons: [][]notification.Button{
			{{Text: "▶️ Start scanner", Data: ActionStart}, {Text: "⏹ Stop scanner", Data: ActionStop}},
			{{Text: "⚙️ Settings", Data: ActionSettings}},
		},
	}
}

func formatSettings(s entity.UserSettings) string {
	return fmt.Sprintf("⚙️ Settings:\nPeriod: %d min\nThreshold: %s\nExchanges: %s\nTime zone: %s",
		s.Period, decimalx.FormatPercent(s.Threshold), strings.Join(s.ActiveExchanges, ", "), s.TimeZone)
}
