package cli

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tapir/pkg/server"
	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("TAPIR_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, ingestFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the agent over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			rt, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			shell := server.New(server.NewInput{
				Session:     rt.session,
				Pipeline:    rt.pipeline,
				Folders:     rt.folders,
				TurnTimeout: cfg.turnTimeout,
			})

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           shell.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			logging.From(ctx).Info("starting HTTP server", "addr", addr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return goerr.Wrap(err, "failed to serve HTTP")
			}

			return nil
		},
	}
}
