package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/tapir/pkg/utils/logging"
)

// exitPhrases end the interactive session
var exitPhrases = []string{"exit", "q", "выход"}

func chatCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive conversation with the agent",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			rt, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer rt.Close()

			rl, err := readline.New("You: ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Avatar is ready. Type 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					break
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				query := strings.TrimSpace(line)
				if query == "" {
					continue
				}
				if isExitPhrase(query) {
					break
				}

				answer := runTurn(ctx, &cfg, rt, query)
				fmt.Fprintf(c.Root().Writer, "\nAvatar: %s\n\n", answer)
			}

			fmt.Fprintf(c.Root().Writer, "Avatar is off.\n")
			return nil
		},
	}
}

// runTurn executes one turn under the configured timeout. A failing turn is
// reported as the answer text so the loop keeps accepting queries.
func runTurn(ctx context.Context, cfg *config, rt *runtime, query string) string {
	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	sp.Suffix = " thinking..."
	sp.Start()
	defer sp.Stop()

	turnCtx, cancel := context.WithTimeout(ctx, cfg.turnTimeout)
	defer cancel()

	turn, err := rt.session.Ask(turnCtx, query)
	if err != nil {
		logging.From(ctx).Error("turn failed", "error", err)
		return fmt.Sprintf("(error: %v)", err)
	}

	return turn.FinalAnswer
}

func isExitPhrase(query string) bool {
	for _, phrase := range exitPhrases {
		if strings.EqualFold(query, phrase) {
			return true
		}
	}
	return false
}
