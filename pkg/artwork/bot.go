package artwork

import (
	"context"
	"fmt"
	"image"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/inhies/go-bytesize"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/srsgit/EzGraver/pkg/device/neje"
)

// NewBot wires a Telegram bot to an engraver: send a photo to upload it,
// /engrave to burn it. Handlers run one at a time around the session.
func NewBot(token string, ctl neje.Control, logger *zap.Logger) (*Bot, error) {
	pref := tele.Settings{
		Token: token,
		Poller: &tele.LongPoller{
			Timeout: 30 * time.Second,
		},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return nil, err
	}

	return &Bot{
		b:    b,
		ctl:  ctl,
		log:  logger,
		burn: neje.DefaultBurnTime,
	}, nil
}

type Bot struct {
	b   *tele.Bot
	ctl neje.Control
	log *zap.Logger

	mu   sync.Mutex
	burn byte
}

func (b *Bot) handleBase() {
	b.b.Handle("/start", func(context tele.Context) error {
		return context.Reply("Send a photo to upload it, then /engrave to burn. /help lists commands.")
	})

	b.b.Handle("/help", func(context tele.Context) error {
		lines := []string{
			"photo - erase, convert and upload it",
			"/engrave - burn the uploaded image",
			"/pause - halt the laser",
			"/resume - continue after a pause",
			"/burn [0-255] - show or set the burn time",
			"/status - session state",
			"/home /center /preview - position the carriage",
			"/move up|down|left|right - nudge the carriage",
			"/reset - abort and return to idle",
		}
		return context.Reply(strings.Join(lines, "\n"))
	})

	b.b.Handle("/status", func(context tele.Context) error {
		b.mu.Lock()
		defer b.mu.Unlock()
		return context.Reply(fmt.Sprintf("state: %s, burn time: %d", b.ctl.State(), b.burn))
	})

	b.b.Handle("/burn", func(context tele.Context) error {
		in := context.Message().Payload

		b.mu.Lock()
		defer b.mu.Unlock()

		if in == "" {
			return context.Reply(strconv.Itoa(int(b.burn)))
		}

		parsed, err := strconv.ParseUint(in, 10, 8)
		if err != nil {
			return context.Reply(fmt.Sprintf("change failed: %s", err))
		}

		b.burn = byte(parsed)
		return context.Reply("OK")
	})
}

func (b *Bot) handleControl() {
	run := func(op func() error) func(tele.Context) error {
		return func(context tele.Context) error {
			b.mu.Lock()
			err := op()
			b.mu.Unlock()

			if err != nil {
				return context.Reply(fmt.Sprintf("failed: %s", err))
			}
			return context.Reply("OK")
		}
	}

	b.b.Handle("/engrave", run(func() error { return b.ctl.Start(b.burn) }))
	b.b.Handle("/resume", run(func() error { return b.ctl.Start(b.burn) }))
	b.b.Handle("/pause", run(b.ctl.Pause))
	b.b.Handle("/home", run(b.ctl.Home))
	b.b.Handle("/center", run(b.ctl.Center))
	b.b.Handle("/preview", run(b.ctl.Preview))
	b.b.Handle("/reset", run(b.ctl.Reset))

	b.b.Handle("/move", func(context tele.Context) error {
		var op func() error
		switch context.Message().Payload {
		case "up":
			op = b.ctl.Up
		case "down":
			op = b.ctl.Down
		case "left":
			op = b.ctl.Left
		case "right":
			op = b.ctl.Right
		default:
			return context.Reply("usage: /move up|down|left|right")
		}
		return run(op)(context)
	})
}

func (b *Bot) handlePhoto() {
	bg := context.Background()

	b.b.Handle(tele.OnPhoto, func(context tele.Context) error {
		photo := context.Message().Photo
		if photo == nil {
			return context.Reply("no photo attached")
		}

		rc, err := b.b.File(&photo.File)
		if err != nil {
			return context.Reply(fmt.Sprintf("fetch failed: %s", err))
		}
		defer func() {
			_ = rc.Close()
		}()

		img, _, err := image.Decode(rc)
		if err != nil {
			return context.Reply(fmt.Sprintf("decode failed: %s", err))
		}

		b.mu.Lock()
		defer b.mu.Unlock()

		if st := b.ctl.State(); st != neje.Idle {
			if err := b.ctl.Reset(); err != nil {
				return context.Reply(fmt.Sprintf("reset failed: %s", err))
			}
		}

		if err := b.ctl.Erase(); err != nil {
			return context.Reply(fmt.Sprintf("erase failed: %s", err))
		}

		_ = context.Reply(fmt.Sprintf("Erasing, upload starts in %s", neje.EraseTime))
		if err := b.ctl.WaitErased(bg); err != nil {
			return context.Reply(fmt.Sprintf("erase wait failed: %s", err))
		}

		sent, err := b.ctl.UploadImage(img)
		if err != nil {
			return context.Reply(fmt.Sprintf("upload failed: %s", err))
		}

		b.log.With(zap.Int("sent", sent)).Info("photo uploaded")
		return context.Reply(fmt.Sprintf("Uploaded %s, /engrave to burn", bytesize.New(float64(sent))))
	})
}

func (b *Bot) Start() {
	b.handleBase()
	b.handleControl()
	b.handlePhoto()
	go b.b.Start()
}

func (b *Bot) Stop() {
	// TODO telebot stop will freezes for next response
	go b.b.Stop()
}
