package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/inhies/go-bytesize"
	"github.com/schollz/progressbar/v3"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/srsgit/EzGraver/pkg/artwork"
	"github.com/srsgit/EzGraver/pkg/bitmap"
	"github.com/srsgit/EzGraver/pkg/device/neje"
	"github.com/srsgit/EzGraver/pkg/device/remote"
	"github.com/srsgit/EzGraver/pkg/device/virtual"
	"github.com/srsgit/EzGraver/pkg/proto"
)

var serial = flag.String("serial", "ttyUSB", "serial name or remote addr")
var list = flag.Bool("list", false, "list serial ports and exit")
var dryRun = flag.Bool("dry-run", false, "drive a virtual engraver instead of hardware")
var image = flag.String("image", "", "image to engrave, local path or http(s) url")
var raw = flag.String("raw", "", "packed bitmap to upload, skips conversion")
var out = flag.String("out", "", "save the packed bitmap here")
var previewOut = flag.String("preview-out", "", "save an engraving preview png here")
var convertOnly = flag.Bool("convert-only", false, "convert and save without touching the device")
var threshold = flag.Uint8("threshold", bitmap.DefaultThreshold, "white cutoff for monochromize")
var dither = flag.Bool("dither", false, "floyd-steinberg dithering instead of the threshold")
var burn = flag.Uint8("burn", neje.DefaultBurnTime, "burn time")
var start = flag.Bool("start", false, "start engraving after the upload")
var noErase = flag.Bool("no-erase", false, "skip the eeprom erase before the upload")
var chunk = flag.Int("chunk", neje.UploadChunkSize, "upload chunk size")
var action = flag.String("action", "", "single action: state|home|center|preview|up|down|left|right|pause|resume|reset")
var tgToken = flag.String("tg-token", "", "telegram bot token")
var debug = flag.Bool("debug", false, "set debug")

func main() {
	flag.Parse()

	if *list {
		ports, err := proto.NewSerial("").Ports()
		if err != nil {
			log.Fatal(err)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	logger, _ := zap.NewDevelopment()
	if !*debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.InfoLevel))
	}

	loader := artwork.NewLoader(logger)

	var mono *bitmap.Mono
	switch {
	case *image != "" && *raw != "":
		log.Fatal("--image and --raw are mutually exclusive")
	case *image != "":
		img, err := loader.Load(*image)
		if err != nil {
			log.Fatal(err)
		}

		opts := []bitmap.Option{bitmap.WithThreshold(*threshold)}
		if *dither {
			opts = append(opts, bitmap.WithDithering())
		}

		if mono, err = bitmap.Convert(img, opts...); err != nil {
			log.Fatal(err)
		}
	case *raw != "":
		var err error
		if mono, err = loader.ReadBitmap(*raw); err != nil {
			log.Fatal(err)
		}
	}

	if mono != nil {
		if *out != "" {
			if err := loader.WriteBitmap(*out, mono); err != nil {
				log.Fatal(err)
			}
		}
		if *previewOut != "" {
			if err := loader.WritePreview(*previewOut, mono); err != nil {
				log.Fatal(err)
			}
		}
	}

	if *convertOnly {
		return
	}

	if mono == nil && *action == "" && *tgToken == "" {
		log.Fatal("nothing to do: pass --image, --raw, --action, --tg-token or --list")
	}

	var bar *progressbar.ProgressBar
	sessOpts := []neje.Option{
		neje.WithChunkSize(*chunk),
		neje.WithProgress(func(sent, total int) {
			if bar == nil {
				bar = progressbar.DefaultBytes(int64(total), "uploading")
			}
			_ = bar.Set(sent)
		}),
	}

	var ctl neje.Control
	var ctlErr error

	switch {
	case *dryRun:
		ctl = neje.New(virtual.NewTransport(logger), logger, sessOpts...)
	case strings.Contains(*serial, ":"):
		ctl, ctlErr = remote.New(*serial)
	default:
		ctl, ctlErr = neje.Connect(proto.NewSerial(*serial), logger, sessOpts...)
	}

	if ctlErr != nil {
		log.Fatal(ctlErr)
	}
	defer func() {
		_ = ctl.Close()
	}()

	if *tgToken != "" {
		bot, err := artwork.NewBot(*tgToken, ctl, logger)
		if err != nil {
			log.Fatal(err)
		}
		bot.Start()

		signals := make(chan os.Signal, 1)
		signal.Notify(signals, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)

		<-signals
		logger.Info("shutting down")
		bot.Stop()
		return
	}

	if *action != "" {
		if err := runAction(ctl, *action, *burn); err != nil {
			log.Fatal(err)
		}
		return
	}

	if !*noErase {
		if err := ctl.Erase(); err != nil {
			log.Fatal(err)
		}
		if err := settle(ctl); err != nil {
			log.Fatal(err)
		}
	}

	sent, err := ctl.UploadBitmap(mono.Packed())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("uploaded %s\n", bytesize.New(float64(sent)))

	if *start {
		if err := ctl.Start(*burn); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("engraving started, burn time %d\n", *burn)
	}
}

// runAction performs one device action. Pause and resume only make sense
// against a long-lived session, so in practice they target a remote addr.
func runAction(ctl neje.Control, name string, burn byte) error {
	switch name {
	case "state":
		fmt.Println(ctl.State())
		return nil
	case "home":
		return ctl.Home()
	case "center":
		return ctl.Center()
	case "preview":
		return ctl.Preview()
	case "up":
		return ctl.Up()
	case "down":
		return ctl.Down()
	case "left":
		return ctl.Left()
	case "right":
		return ctl.Right()
	case "pause":
		return ctl.Pause()
	case "resume":
		return ctl.Start(burn)
	case "reset":
		return ctl.Reset()
	}
	return fmt.Errorf("unknown action %q", name)
}

// settle waits out the EEPROM wipe with a visible countdown.
func settle(ctl neje.Control) error {
	bar := progressbar.Default(int64(neje.EraseTime/time.Second), "erasing")
	defer func() {
		_ = bar.Finish()
	}()

	done := make(chan error, 1)
	go func() {
		done <- ctl.WaitErased(context.Background())
	}()

	tick := time.NewTicker(time.Second)
	defer tick.Stop()

	for {
		select {
		case err := <-done:
			return err
		case <-tick.C:
			_ = bar.Add(1)
		}
	}
}
