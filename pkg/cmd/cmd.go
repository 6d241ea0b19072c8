// Package cmd is the entrypoint to cli
package cmd

import (
	"io"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/brevdev/mixpanel-cli/pkg/cmd/collect"
	"github.com/brevdev/mixpanel-cli/pkg/cmd/commands"
	"github.com/brevdev/mixpanel-cli/pkg/cmd/decode"
	"github.com/brevdev/mixpanel-cli/pkg/cmd/encode"
	"github.com/brevdev/mixpanel-cli/pkg/cmd/send"
	"github.com/brevdev/mixpanel-cli/pkg/cmd/util"
	"github.com/brevdev/mixpanel-cli/pkg/cmd/version"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/featureflag"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

func NewMixpanelCommand(in io.Reader, t *terminal.Terminal) *cobra.Command {
	var verbose bool
	log := zap.NewNop()

	getLog := func() *zap.Logger { return log }
	newClient := func() *mixpanel.Client {
		return util.NewClient(mixpanel.WithLogger(log.Named("mixpanel")))
	}

	cmds := &cobra.Command{
		Use:   "mixpanel",
		Short: "mixpanel tracking client",
		Long: `
      mixpanel tracking client

      Sends track events and engage profile operations as base64 encoded
      json in the data query parameter of a GET request.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				home = "."
			}
			err = featureflag.LoadFeatureFlags(home + "/.mixpanel")
			if err != nil {
				return breverrors.WrapAndTrace(err)
			}

			if verbose || featureflag.Debug() {
				devLog, err := zap.NewDevelopment()
				if err != nil {
					return breverrors.WrapAndTrace(err)
				}
				log = devLog
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
		Run: runHelp,
	}
	cmds.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests and collector activity to stderr")

	cmds.AddCommand(send.NewCmdSend(t, newClient, afero.NewOsFs()))
	cmds.AddCommand(encode.NewCmdEncode(t, newClient))
	cmds.AddCommand(decode.NewCmdDecode(t, in))
	cmds.AddCommand(commands.NewCmdCommands(t))
	cmds.AddCommand(collect.NewCmdCollect(t, getLog))
	cmds.AddCommand(newCmdVersion(t))

	return cmds
}

func newCmdVersion(t *terminal.Terminal) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			t.Vprint(version.BuildVersionString())
		},
	}
}

func runHelp(cmd *cobra.Command, _ []string) {
	_ = cmd.Help()
}
