package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/KNICEX/oi-screener/internal/entity"
	"github.com/KNICEX/oi-screener/internal/repo"
	"github.com/KNICEX/oi-screener/internal/schedule"
	"github.com/KNICEX/oi-screener/internal/service/monitor"
	"github.com/KNICEX/oi-screener/internal/service/notification"
	"github.com/KNICEX/oi-screener/internal/service/notification/telegram"
	"github.com/samber/lo"
)

var _ schedule.Task = (*Bot)(nil)

const (
	ActionStart    = "start_scanner"
	ActionStop     = "stop_scanner"
	ActionSettings = "settings"

	MinPeriod = 5
	MaxPeriod = 30

	defaultPollTimeout = 30 * time.Second
	retryDelay         = 3 * time.Second
)

// Updates telegram 长轮询接口
type Updates interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegram.Update, error)
	AnswerCallbackQuery(ctx context.Context, callbackId, text string) error
}

type Lifecycle interface {
	StartOrRestart(ctx context.Context, userId int64, settings monitor.Settings) (monitor.StartStatus, error)
	Stop(ctx context.Context, userId int64) (monitor.StopStatus, error)
	IsRunning(userId int64) bool
}

type ActivityTracker interface {
	MarkActive(userId int64)
}

// Defaults 新用户或缺失字段使用的配置
type Defaults struct {
	Period    int      `mapstructure:"period"`
	Threshold float64  `mapstructure:"threshold"`
	Exchanges []string `mapstructure:"exchanges"`
	TimeZone  string   `mapstructure:"time_zone"`
}

type Bot struct {
	updates   Updates
	replier   notification.Notifier
	users     repo.UserRepo
	lifecycle Lifecycle
	activity  ActivityTracker

	defaults    Defaults
	exchanges   []string
	pollTimeout time.Duration
}

type Option func(b *Bot)

func WithPollTimeout(d time.Duration) Option {
	return func(b *Bot) {
		if d > 0 {
			b.pollTimeout = d
		}
	}
}

// NewBot exchanges 为可选的交易所名称
func NewBot(updates Updates, replier notification.Notifier, users repo.UserRepo, lifecycle Lifecycle,
	activity ActivityTracker, defaults Defaults, exchanges []string, opts ...Option) *Bot {
	b := &Bot{
		updates:     updates,
		replier:     replier,
		users:       users,
		lifecycle:   lifecycle,
		activity:    activity,
		defaults:    defaults,
		exchanges:   exchanges,
		pollTimeout: defaultPollTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bot) Name() string {
	return "telegram bot poller"
}

func (b *Bot) Run(ctx context.Context) error {
	var offset int64
	for {
		updates, err := b.updates.GetUpdates(ctx, offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("failed to get telegram updates", "error", err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(retryDelay):
			}
			continue
		}
		for _, u := range updates {
			offset = u.UpdateId + 1
			b.HandleUpdate(ctx, u)
		}
	}
}

// HandleUpdate 处理单条消息或按钮回调
func (b *Bot) HandleUpdate(ctx context.Context, u telegram.Update) {
	switch {
	case u.CallbackQuery != nil:
		cb := u.CallbackQuery
		if err := b.updates.AnswerCallbackQuery(ctx, cb.Id, ""); err != nil {
			slog.Warn("failed to answer callback", "user", cb.From.Id, "error", err)
		}
		b.handle(ctx, cb.From.Id, cb.Data)
	case u.Message != nil && u.Message.Text != "":
		userId := u.Message.Chat.Id
		if u.Message.From != nil {
			userId = u.Message.From.Id
		}
		b.handle(ctx, userId, u.Message.Text)
	}
}

func (b *Bot) handle(ctx context.Context, userId int64, text string) {
	b.activity.MarkActive(userId)

	cmd, arg, _ := strings.Cut(strings.TrimSpace(text), " ")
	// "/period@my_bot 15"
	cmd, _, _ = strings.Cut(cmd, "@")
	arg = strings.TrimSpace(arg)

	var (
		msg notification.Message
		err error
	)
	switch {
	case cmd == "/start" || cmd == "/help":
		msg = helpMessage()
	case cmd == "/run" || cmd == ActionStart:
		msg, err = b.start(ctx, userId)
	case cmd == "/stop" || cmd == ActionStop:
		msg, err = b.stop(ctx, userId)
	case cmd == "/settings" || cmd == ActionSettings:
		msg, err = b.showSettings(ctx, userId)
	case cmd == "/period":
		msg, err = b.update(ctx, userId, func(s *entity.UserSettings) error {
			n, err := strconv.Atoi(arg)
			if err != nil || n < MinPeriod || n > MaxPeriod {
				return fmt.Errorf("period must be a whole number of minutes from %d to %d", MinPeriod, MaxPeriod)
			}
			s.Period = n
			return nil
		})
	case cmd == "/threshold":
		msg, err = b.update(ctx, userId, func(s *entity.UserSettings) error {
			p, err := strconv.ParseFloat(strings.TrimSuffix(arg, "%"), 64)
			if err != nil || !(p > 0 && p <= 100) {
				return errors.New("threshold must be a percent greater than 0 and at most 100")
			}
			s.Threshold = p / 100
			return nil
		})
	case cmd == "/exchanges":
		msg, err = b.update(ctx, userId, func(s *entity.UserSettings) error {
			names, err := b.parseExchanges(arg)
			if err != nil {
				return err
			}
			s.ActiveExchanges = names
			return nil
		})
	case cmd == "/timezone":
		msg, err = b.update(ctx, userId, func(s *entity.UserSettings) error {
			if arg == "" {
				return errors.New("usage: /timezone Europe/Kyiv")
			}
			if _, err := time.LoadLocation(arg); err != nil {
				return fmt.Errorf("unknown time zone %q", arg)
			}
			s.TimeZone = arg
			return nil
		})
	case strings.HasPrefix(cmd, monitor.ConfirmPrefix):
		msg = notification.Message{Text: "✅ Activity confirmed. The scanner will continue running."}
	default:
		msg = notification.Message{Text: "Unknown command. Send /start to see what I can do."}
	}

	if err != nil {
		var invalid invalidInputError
		if errors.As(err, &invalid) {
			msg = notification.Message{Text: "⚠️ " + invalid.Error()}
		} else {
			slog.Error("failed to handle command", "user", userId, "command", cmd, "error", err)
			msg = notification.Message{Text: "Something went wrong, please try again later."}
		}
	}
	if err = b.replier.Notify(ctx, userId, msg); err != nil {
		slog.Error("failed to reply", "user", userId, "error", err)
	}
}

func (b *Bot) start(ctx context.Context, userId int64) (notification.Message, error) {
	settings, err := b.loadSettings(ctx, userId)
	if err != nil {
		return notification.Message{}, err
	}
	status, err := b.lifecycle.StartOrRestart(ctx, userId, monitor.SettingsFromEntity(settings))
	if err != nil {
		return notification.Message{}, err
	}
	if status == monitor.StatusAlreadyRunning {
		return notification.Message{Text: "ℹ️ Scanner is already running."}, nil
	}
	return notification.Message{Text: "✅ Scanner started.\n\n" + formatSettings(settings)}, nil
}

func (b *Bot) stop(ctx context.Context, userId int64) (notification.Message, error) {
	status, err := b.lifecycle.Stop(ctx, userId)
	if err != nil {
		return notification.Message{}, err
	}
	if status == monitor.StatusNotRunning {
		return notification.Message{Text: "ℹ️ Scanner is not running."}, nil
	}
	return notification.Message{Text: "🛑 Scanner stopped."}, nil
}

func (b *Bot) showSettings(ctx context.Context, userId int64) (notification.Message, error) {
	settings, err := b.loadSettings(ctx, userId)
	if err != nil {
		return notification.Message{}, err
	}
	return notification.Message{Text: formatSettings(settings)}, nil
}

// update 修改并保存配置, 扫描运行中时按新配置重启
func (b *Bot) update(ctx context.Context, userId int64, apply func(s *entity.UserSettings) error) (notification.Message, error) {
	settings, err := b.loadSettings(ctx, userId)
	if err != nil {
		return notification.Message{}, err
	}
	if err = apply(&settings); err != nil {
		return notification.Message{}, invalidInputError{err}
	}
	if err = b.users.Save(ctx, settings); err != nil {
		return notification.Message{}, err
	}

	text := "✅ Settings saved.\n\n" + formatSettings(settings)
	if b.lifecycle.IsRunning(userId) {
		if _, err = b.lifecycle.StartOrRestart(ctx, userId, monitor.SettingsFromEntity(settings)); err != nil {
			return notification.Message{}, err
		}
		text += "\n\n🔄 Scanner restarted with the new settings."
	}
	return notification.Message{Text: text}, nil
}

// loadSettings 不存在时使用默认配置并保存, 缺失字段用默认值补齐
func (b *Bot) loadSettings(ctx context.Context, userId int64) (entity.UserSettings, error) {
	settings, err := b.users.Find(ctx, userId)
	switch {
	case errors.Is(err, repo.ErrUserNotFound):
		settings = entity.UserSettings{UserId: userId}
	case err != nil:
		return entity.UserSettings{}, err
	}

	changed := settings.CreatedAt.IsZero()
	if settings.Period == 0 {
		settings.Period, changed = b.defaults.Period, true
	}
	if settings.Threshold == 0 {
		settings.Threshold, changed = b.defaults.Threshold, true
	}
	if len(settings.ActiveExchanges) == 0 {
		settings.ActiveExchanges, changed = append([]string(nil), b.defaults.Exchanges...), true
	}
	if settings.TimeZone == "" {
		settings.TimeZone, changed = b.defaults.TimeZone, true
	}
	if changed {
		if err = b.users.Save(ctx, settings); err != nil {
			return entity.UserSettings{}, err
		}
	}
	return settings, nil
}

func (b *Bot) parseExchanges(arg string) ([]string, error) {
	var names []string
	for _, part := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
		name := strings.ToLower(part)
		if !lo.Contains(b.exchanges, name) {
			return nil, fmt.Errorf("unknown exchange %q, available: %s", part, strings.Join(b.exchanges, ", "))
		}
		if !lo.Contains(names, name) {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("usage: /exchanges %s", strings.Join(b.exchanges, ","))
	}
	return names, nil
}

type invalidInputError struct {
	err error
}

func (e invalidInputError) Error() string {
	return e.err.Error()
}
