package delivery

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tele "gopkg.in/telebot.v4"

	"solace/internal/alerts"
	"solace/internal/eventbus"
)

// TelegramConfig configures the Telegram delivery channel.
type TelegramConfig struct {
	Token       string
	ChatID      int64
	PollTimeout time.Duration
}

// Telegram delivers alerts as Telegram messages with an "Open" button. A tap
// on the button publishes an Activation for the owning entity, which is how
// the navigation collaborator learns about it.
type Telegram struct {
	cfg TelegramConfig
	log *slog.Logger
	bus eventbus.Bus

	bot     *tele.Bot
	openBtn tele.Btn
}

func NewTelegram(cfg TelegramConfig, bus eventbus.Bus, log *slog.Logger) (*Telegram, error) {
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, errors.New("telegram token is empty")
	}
	if cfg.ChatID == 0 {
		return nil, errors.New("telegram chat_id is empty")
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	timeout := cfg.PollTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: timeout},
	})
	if err != nil {
		return nil, err
	}

	t := &Telegram{cfg: cfg, log: log, bus: bus, bot: b}
	markup := &tele.ReplyMarkup{}
	t.openBtn = markup.Data("Open", "alert_open")
	b.Handle(&t.openBtn, t.onOpen)
	return t, nil
}

// Start runs the callback poller until ctx is canceled. Delivery itself does
// not require Start; only button taps do.
func (t *Telegram) Start(ctx context.Context) {
	go func() {
		<-ctx.Done()
		t.bot.Stop()
	}()
	t.bot.Start()
}

func (t *Telegram) Deliver(_ context.Context, alert alerts.PendingAlert) error {
	markup := &tele.ReplyMarkup{}
	btn := markup.Data("Open", "alert_open", activationData(alert.Content))
	markup.Inline(markup.Row(btn))

	text := alert.Content.Title
	if alert.Content.Body != "" {
		text = fmt.Sprintf("%s\n\n%s", alert.Content.Title, alert.Content.Body)
	}
	_, err := t.bot.Send(tele.ChatID(t.cfg.ChatID), text, markup)
	return err
}

// onOpen handles a tap on a delivered alert's button.
func (t *Telegram) onOpen(c tele.Context) error {
	entityID, kind, ok := parseActivationData(c.Data())
	if ok && t.bus != nil {
		t.bus.Publish(eventbus.Activation{EntityID: entityID, Kind: kind})
		t.log.Debug("alert activated", slog.String("entity", entityID), slog.String("kind", kind))
	}
	return c.Respond(&tele.CallbackResponse{})
}

func activationData(content alerts.Content) string {
	return content.Payload["entity_id"] + "|" + content.Payload["kind"]
}

func parseActivationData(data string) (entityID, kind string, ok bool) {
	entityID, kind, found := strings.Cut(data, "|")
	if !found || entityID == "" {
		return "", "", false
	}
	return entityID, kind, true
}
