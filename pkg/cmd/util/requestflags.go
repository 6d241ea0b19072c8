package util

import (
	"github.com/samber/mo"
	"github.com/spf13/cobra"

	"github.com/brevdev/mixpanel-cli/pkg/command"
	"github.com/brevdev/mixpanel-cli/pkg/config"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
)

// RequestFlags are the flags shared by send and encode. They mirror the
// {url, token, command} invocation descriptor plus the payload fields.
type RequestFlags struct {
	URL        string
	Token      string
	Command    string
	DistinctID string
	Event      string
	Props      []string
	Values     []string
	Example    bool
}

func (f *RequestFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.URL, "url", "", "collector base url (default $MIXPANEL_API_URL)")
	cmd.Flags().StringVarP(&f.Token, "token", "t", "", "project token (default $MIXPANEL_TOKEN)")
	cmd.Flags().StringVarP(&f.Command, "command", "c", "", "one of: track, engage, engage_set_once, engage_add, engage_append, engage_union, engage_remove, engage_unset, engage_delete")
	cmd.Flags().StringVarP(&f.DistinctID, "distinct-id", "d", "", "profile distinct id (engage)")
	cmd.Flags().StringVarP(&f.Event, "event", "e", "", "event name (track)")
	cmd.Flags().StringArrayVarP(&f.Props, "prop", "p", nil, "property as key=value, value parsed as json when valid (repeatable)")
	cmd.Flags().StringArrayVar(&f.Values, "value", nil, "property name to remove (engage_unset, repeatable)")
	cmd.Flags().BoolVar(&f.Example, "example", false, "fill unset fields with the demo fixture for the command")
}

// Validate reports a missing --command before anything is built.
func (f RequestFlags) Validate() error {
	if f.Command == "" {
		return breverrors.NewValidationError("--command is required")
	}
	return nil
}

func (f RequestFlags) RequestConfig() (mixpanel.RequestConfig, error) {
	req := mixpanel.RequestConfig{
		URL:        f.URL,
		Command:    f.Command,
		DistinctID: f.DistinctID,
		Event:      f.Event,
		Values:     f.Values,
	}
	if f.Token != "" {
		req.Token = mo.Some(f.Token)
	}

	if len(f.Props) > 0 {
		req.Properties = payload.NewProperties()
		for _, kv := range f.Props {
			key, value, err := payload.ParseProperty(kv)
			if err != nil {
				return mixpanel.RequestConfig{}, breverrors.WrapAndTrace(err)
			}
			req.Properties.Set(key, value)
		}
	}

	if f.Example {
		// unknown commands fall through and fail in Prepare
		if cmd, err := command.Parse(f.Command); err == nil {
			applyExample(&req, payload.Example(cmd, f.Token))
		}
	}
	return req, nil
}

func applyExample(req *mixpanel.RequestConfig, ex payload.Params) {
	if req.DistinctID == "" {
		req.DistinctID = ex.DistinctID
	}
	if req.Event == "" {
		req.Event = ex.Event
	}
	if req.Properties.Len() == 0 {
		req.Properties = ex.Properties
	}
	if len(req.Values) == 0 {
		req.Values = ex.Values
	}
}

// NewClient builds a client from the environment, logging through log.
func NewClient(opts ...mixpanel.Option) *mixpanel.Client {
	return mixpanel.NewClient(mixpanel.ConfigFromEnv(config.GlobalConfig), opts...)
}
