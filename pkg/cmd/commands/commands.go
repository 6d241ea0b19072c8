// Package commands lists the supported commands
package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/brevdev/mixpanel-cli/pkg/command"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

func NewCmdCommands(t *terminal.Terminal) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "commands",
		Aliases: []string{"cmds"},
		Short:   "List supported commands with their endpoint and operator",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			displayCommandsTable(t)
		},
	}
	return cmd
}

func displayCommandsTable(t *terminal.Terminal) {
	ta := table.NewWriter()
	ta.SetOutputMirror(t.Out())
	ta.Style().Options = getMixpanelTableOptions()

	ta.AppendHeader(table.Row{"Command", "Endpoint", "Operator"})
	for _, c := range command.All() {
		operator := c.Operator()
		if operator == "" {
			operator = "-"
		}
		ta.AppendRow(table.Row{c.String(), c.Endpoint(), operator})
	}
	ta.Render()
}

func getMixpanelTableOptions() table.Options {
	options := table.OptionsDefault
	options.DrawBorder = false
	options.SeparateColumns = false
	options.SeparateRows = false
	options.SeparateHeader = false
	return options
}
