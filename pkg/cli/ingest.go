package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func ingestCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)
	flags = append(flags, ingestFlags(&cfg)...)

	return &cli.Command{
		Name:  "ingest",
		Usage: "Convert source files (PDF, audio/video, images) into memory records",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			rt, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.pipeline.Run(ctx, rt.folders)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Ingested %d file(s), skipped %d, failed %d\n",
				result.Ingested, result.Skipped, result.Failed)
			return nil
		},
	}
}
