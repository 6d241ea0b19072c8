package mixpanel

import (
	"net/url"
	"strings"

	"github.com/samber/lo"
	"github.com/samber/mo"

	"github.com/brevdev/mixpanel-cli/pkg/command"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
)

// RequestConfig describes one invocation. It is consumed by a single call and
// never retained by the client.
type RequestConfig struct {
	URL     string
	Token   mo.Option[string]
	Command string

	DistinctID string
	Event      string
	Properties *payload.Properties
	Values     []string
}

// Prepared is a request that passed every pre-flight check and only needs
// to be sent.
type Prepared struct {
	Command command.Command
	URL     string
	Query   url.Values
	Payload any
}

// Data is the encoded payload as it appears in the query string.
func (p Prepared) Data() string {
	return p.Query.Get("data")
}

// FullURL includes the encoded query.
func (p Prepared) FullURL() string {
	return p.URL + "?" + p.Query.Encode()
}

// Prepare runs every check that can fail before the network: command
// lookup, token resolution, payload building and encoding.
func (c *Client) Prepare(req RequestConfig) (Prepared, error) {
	cmd, err := command.Parse(req.Command)
	if err != nil {
		return Prepared{}, breverrors.WrapAndTrace(err)
	}

	token, _ := lo.Coalesce(req.Token.OrEmpty(), c.token.OrEmpty())
	baseURL, ok := lo.Coalesce(strings.TrimSpace(req.URL), c.baseURL)
	if !ok {
		return Prepared{}, breverrors.WrapAndTrace(breverrors.NewValidationError("collector url is required"))
	}

	body, err := payload.Build(cmd, payload.Params{
		Token:      token,
		DistinctID: req.DistinctID,
		Event:      req.Event,
		Properties: req.Properties,
		Values:     req.Values,
	})
	if err != nil {
		return Prepared{}, breverrors.WrapAndTrace(err)
	}

	data, err := payload.Encode(body)
	if err != nil {
		return Prepared{}, breverrors.WrapAndTrace(err)
	}

	query := url.Values{}
	query.Set("data", data)
	if cmd == command.Track {
		// The collector reads the token from properties; the query copy is
		// kept for wire compatibility.
		query.Set("token", token)
	}

	return Prepared{
		Command: cmd,
		URL:     strings.TrimRight(baseURL, "/") + cmd.Endpoint(),
		Query:   query,
		Payload: body,
	}, nil
}
