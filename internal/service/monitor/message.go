package monitor

import (
	"fmt"
	"html"
	"strconv"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/exchange"
	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/KNICEX/oi-screener/internal/service/signal"
)

func FormatSignal(sig signal.Signal, loc *time.Location) notification.Message {
	if loc == nil {
		loc = time.UTC
	}
	return notification.Message{
		Text: fmt.Sprintf("🚨 <code>%s</code>\n<a href=\"%s\">[%s]</a>  %s in %s min:\nOI %s,  price %s,  volume %s\nNumber of signals per day: %d",
			html.EscapeString(sig.Symbol),
			exchange.Link(sig.Exchange, sig.Symbol),
			html.EscapeString(sig.Exchange),
			sig.Datetime.In(loc).Format(time.TimeOnly),
			strconv.FormatFloat(sig.DeltaTimeMinutes, 'f', -1, 64),
			sig.DeltaOIPercent,
			sig.DeltaPricePercent,
			sig.DeltaVolumePercent,
			sig.CountSignal24h,
		),
	}
}
