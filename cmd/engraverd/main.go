package main

import (
	"net/http"

	flag "github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/srsgit/EzGraver/pkg/device/neje"
	"github.com/srsgit/EzGraver/pkg/device/remote"
	"github.com/srsgit/EzGraver/pkg/device/virtual"
	"github.com/srsgit/EzGraver/pkg/proto"
)

var serial = flag.String("serial", "ttyUSB", "serial name")
var listen = flag.String("listen", ":9123", "listen addr")
var dryRun = flag.Bool("dry-run", false, "serve a virtual engraver")

func main() {
	flag.Parse()

	fx.New(
		fx.Provide(
			func() (*proto.Serial, *http.Server) {
				return proto.NewSerial(*serial),
					&http.Server{Addr: *listen}
			},
			zap.NewDevelopment,
			connect,
		),
		fx.Invoke(
			remote.Proxy,
		),
	).Run()
}

func connect(serial *proto.Serial, logger *zap.Logger) (neje.Control, error) {
	if *dryRun {
		return neje.New(virtual.NewTransport(logger), logger), nil
	}
	return neje.Connect(serial, logger)
}
