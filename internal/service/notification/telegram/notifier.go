package telegram

import (
	"context"
	"time"

	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/samber/lo"
	"golang.org/x/time/rate"
)

var _ notification.Notifier = (*Notifier)(nil)

const defaultSendInterval = 200 * time.Millisecond

// Notifier 通过 telegram 推送, 按固定间隔限速
type Notifier struct {
	client  *Client
	limiter *rate.Limiter
}

func NewNotifier(client *Client, sendInterval time.Duration) *Notifier {
	if sendInterval <= 0 {
		sendInterval = defaultSendInterval
	}
	return &Notifier{
		client:  client,
		limiter: rate.NewLimiter(rate.Every(sendInterval), 1),
	}
}

func (n *Notifier) Notify(ctx context.Context, userId int64, msg notification.Message) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return err
	}
	return n.client.SendMessage(ctx, userId, msg.Text, toMarkup(msg.Buttons))
}

func toMarkup(buttons [][]notification.Button) *InlineKeyboardMarkup {
	if len(buttons) == 0 {
		return nil
	}
	return &InlineKeyboardMarkup{
		InlineKeyboard: lo.Map(buttons, func(row []notification.Button, _ int) []InlineKeyboardButton {
			return lo.Map(row, func(btn notification.Button, _ int) InlineKeyboardButton {
				return InlineKeyboardButton{Text: btn.Text, CallbackData: btn.Data}
			})
		}),
	}
}
