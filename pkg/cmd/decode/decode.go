// Package decode turns a data parameter back into readable json
package decode

import (
	"io"
	"os"
	"strings"

	"github.com/sanity-io/litter"
	"github.com/spf13/cobra"

	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

func NewCmdDecode(t *terminal.Terminal, in io.Reader) *cobra.Command {
	var dump bool

	cmd := &cobra.Command{
		Use:   "decode [data]",
		Short: "Decode a base64 payload",
		Long:  "Decode the data parameter of a track or engage request. Reads stdin when no argument is given.",
		Example: `
  mixpanel decode eyJldmVudCI6ImdhbWUiLCJwcm9wZXJ0aWVzIjp7InRva2VuIjoid2hhdCJ9fQ==
  mixpanel encode -t what -c track -e game | mixpanel decode --dump
		`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readData(args, in)
			if err != nil {
				return breverrors.WrapAndTrace(err)
			}
			err = runDecode(t, data, dump)
			if err != nil {
				return breverrors.WrapAndTrace(err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dump, "dump", false, "print the decoded value as a go literal")

	return cmd
}

func readData(args []string, in io.Reader) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	if in == nil {
		in = os.Stdin
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return "", breverrors.WrapAndTrace(err)
	}
	data := strings.TrimSpace(string(raw))
	if data == "" {
		return "", breverrors.NewValidationError("nothing to decode: pass the data parameter or pipe it on stdin")
	}
	return data, nil
}

func runDecode(t *terminal.Terminal, data string, dump bool) error {
	decoded, err := payload.Decode(data)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}

	if dump {
		sq := litter.Options{Compact: false, StripPackageNames: true}
		t.Vprint(sq.Sdump(decoded.Value()))
		return nil
	}
	t.Vprint(strings.TrimRight(decoded.Get("@pretty").String(), "\n"))
	return nil
}
