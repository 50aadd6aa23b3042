package notification

import "context"

type Button struct {
	Text string
	// Data 回调数据, 如 "confirm:42"
	Data string
}

type Message struct {
	// Text HTML 格式
	Text    string
	Buttons [][]Button
}

// Notifier 向用户推送消息
type Notifier interface {
	Notify(ctx context.Context, userId int64, msg Message) error
}

// NotifierFunc 适配普通函数
type NotifierFunc func(ctx context.Context, userId int64, msg Message) error

func (f NotifierFunc) Notify(ctx context.Context, userId int64, msg Message) error {
	return f(ctx, userId, msg)
}
