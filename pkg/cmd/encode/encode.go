// Package encode prints the data parameter a send would carry
package encode

import (
	"github.com/spf13/cobra"

	"github.com/brevdev/mixpanel-cli/pkg/cmd/util"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

func NewCmdEncode(t *terminal.Terminal, newClient func() *mixpanel.Client) *cobra.Command {
	var flags util.RequestFlags
	var full bool

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Print the encoded payload without sending it",
		Example: `
  mixpanel encode -t what -c track -e game
  mixpanel encode -t what -c engage_delete -d 12345 --full
		`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return flags.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runEncode(t, newClient(), flags, full)
			if err != nil {
				return breverrors.WrapAndTrace(err)
			}
			return nil
		},
	}

	flags.Register(cmd)
	cmd.Flags().BoolVar(&full, "full", false, "print the whole request url instead of the data parameter")

	return cmd
}

func runEncode(t *terminal.Terminal, client *mixpanel.Client, flags util.RequestFlags, full bool) error {
	req, err := flags.RequestConfig()
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	prepared, err := client.Prepare(req)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}

	if full {
		t.Vprint(prepared.FullURL())
		return nil
	}
	t.Vprint(prepared.Data())
	return nil
}
