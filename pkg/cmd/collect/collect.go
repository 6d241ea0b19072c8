// Package collect runs a local collector and prints what it receives
package collect

import (
	"context"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/brevdev/mixpanel-cli/pkg/collector"
	"github.com/brevdev/mixpanel-cli/pkg/config"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

func NewCmdCollect(t *terminal.Terminal, getLog func() *zap.Logger) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run a local collector that prints every payload it receives",
		Long:  "Serve GET /track and GET /engage, decode each data parameter and print it. Stops on interrupt.",
		Example: `
  mixpanel collect --addr localhost:3000
  mixpanel send --url http://localhost:3000 -t what -c engage --example
		`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			err := runCollect(ctx, t, collector.New(getLog().Named("collector"), 0), addr)
			if err != nil {
				return breverrors.WrapAndTrace(err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.GlobalConfig.GetCollectorAddr(), "address to listen on")

	return cmd
}

func runCollect(ctx context.Context, t *terminal.Terminal, c *collector.Collector, addr string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.ListenAndServe(ctx, addr)
	})
	g.Go(func() error {
		printReceived(ctx, t, c)
		return nil
	})
	t.Vprint(t.Yellow("collecting on http://%s (ctrl-c to stop)", addr))

	err := g.Wait()
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	return nil
}

func printReceived(ctx context.Context, t *terminal.Terminal, c *collector.Collector) {
	for {
		rec, err := c.Next(ctx)
		if err != nil {
			return
		}
		t.Vprint(t.Green("%s %s %s", rec.ReceivedAt.Format("15:04:05"), rec.Endpoint, rec.ID))
		t.Vprint(strings.TrimRight(rec.Payload.Get("@pretty").String(), "\n"))
	}
}
