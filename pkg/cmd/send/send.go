// Package send dispatches track and engage requests to the collector
package send

import (
	"context"
	"fmt"
	"strings"

	"github.com/briandowns/spinner"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/brevdev/mixpanel-cli/pkg/cmd/util"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/featureflag"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

type sendOptions struct {
	util.RequestFlags
	fromFile string
	quiet    bool
}

// NewCmdSend reads --from-file through fs.
func NewCmdSend(t *terminal.Terminal, newClient func() *mixpanel.Client, fs afero.Fs) *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a track event or engage operation",
		Long:  "Encode the payload for a command and send it to the collector with a single GET request.",
		Example: `
  mixpanel send --url http://localhost:3000 --token what --command track --event game
  mixpanel send -t what -c engage -d 12345 -p "Address=123 Fake Street"
  mixpanel send -t what -c engage_add -d 12345 -p "Coins Gathered=12"
  mixpanel send -t what -c engage_unset -d 12345 --value "Days Overdue"
  mixpanel send --from-file requests.json
		`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.fromFile != "" {
				return nil
			}
			return opts.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()
			if opts.fromFile != "" {
				err := runBatch(cmd.Context(), t, client, fs, opts)
				if err != nil {
					return breverrors.WrapAndTrace(err)
				}
				return nil
			}
			err := runSend(cmd.Context(), t, client, opts)
			if err != nil {
				return breverrors.WrapAndTrace(err)
			}
			return nil
		},
	}

	opts.Register(cmd)
	cmd.Flags().StringVar(&opts.fromFile, "from-file", "", "json array of requests to send concurrently")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "print nothing on success")

	return cmd
}

func runSend(ctx context.Context, t *terminal.Terminal, client *mixpanel.Client, opts sendOptions) error {
	req, err := opts.RequestConfig()
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}

	future := client.Dispatch(ctx, req)

	sp := startSpinner(t, opts.quiet, fmt.Sprintf(" sending %s...", req.Command))
	ack, err := future.Collect()
	stopSpinner(sp)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}

	if !opts.quiet {
		t.Vprint(t.Green("%s accepted by %s (%d %s)", ack.Command, ack.URL, ack.StatusCode, strings.TrimSpace(ack.Body)))
	}
	return nil
}

func runBatch(ctx context.Context, t *terminal.Terminal, client *mixpanel.Client, fs afero.Fs, opts sendOptions) error {
	raw, err := afero.ReadFile(fs, opts.fromFile)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	reqs, err := ParseBatch(raw)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}

	sp := startSpinner(t, opts.quiet, fmt.Sprintf(" sending %d requests...", len(reqs)))
	acks, err := client.DispatchAll(ctx, reqs)
	stopSpinner(sp)

	if !opts.quiet {
		for i, ack := range acks {
			if ack.StatusCode == 0 {
				t.Vprint(t.Red("%d: %s failed", i, reqs[i].Command))
				continue
			}
			t.Vprint(t.Green("%d: %s accepted (%d)", i, ack.Command, ack.StatusCode))
		}
	}
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	return nil
}

func startSpinner(t *terminal.Terminal, quiet bool, suffix string) *spinner.Spinner {
	if quiet || featureflag.SpinnerDisabled() {
		return nil
	}
	sp := t.NewSpinner()
	sp.Suffix = suffix
	sp.Start()
	return sp
}

func stopSpinner(sp *spinner.Spinner) {
	if sp != nil {
		sp.Stop()
	}
}
