package notification

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// ConsoleNotifier 直接打印, 本地调试用
type ConsoleNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsoleNotifier(out io.Writer) *ConsoleNotifier {
	if out == nil {
		out = os.Stdout
	}
	return &ConsoleNotifier{out: out}
}

func (c *ConsoleNotifier) Notify(ctx context.Context, userId int64, msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.out, "[user %d]\n%s\n", userId, msg.Text); err != nil {
		return err
	}
	for _, row := range msg.Buttons {
		for _, btn := range row {
			if _, err := fmt.Fprintf(c.out, "  [%s] -> %s\n", btn.Text, btn.Data); err != nil {
				return err
			}
		}
	}
	return nil
}
