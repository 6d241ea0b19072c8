package main

import (
	"os"

	"github.com/brevdev/mixpanel-cli/pkg/cmd"
	"github.com/brevdev/mixpanel-cli/pkg/cmd/cmderrors"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

func main() {
	done := breverrors.GetDefaultErrorReporter().Setup()
	defer done()

	t := terminal.New()
	command := cmd.NewMixpanelCommand(os.Stdin, t)
	if err := command.Execute(); err != nil {
		cmderrors.DisplayAndHandleError(t, err)
		done()
		os.Exit(1) //nolint:gocritic // reporter flushed above
	}
}
