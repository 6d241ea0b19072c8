package send

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/brevdev/mixpanel-cli/pkg/collector"
	"github.com/brevdev/mixpanel-cli/pkg/command"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
	"github.com/brevdev/mixpanel-cli/pkg/terminal"
)

func setup(t *testing.T) (*collector.Collector, func() *mixpanel.Client) {
	t.Helper()
	viper.Set("feature.no_spinner", true)
	t.Cleanup(func() { viper.Set("feature.no_spinner", false) })

	c := collector.New(zaptest.NewLogger(t), 16)
	srv := httptest.NewServer(c.Handler())
	t.Cleanup(srv.Close)

	newClient := func() *mixpanel.Client {
		return mixpanel.NewClient(mixpanel.Config{BaseURL: srv.URL}, mixpanel.WithLogger(zaptest.NewLogger(t)))
	}
	return c, newClient
}

func execute(t *testing.T, newClient func() *mixpanel.Client, args ...string) (string, error) {
	t.Helper()
	return executeWithFs(t, newClient, afero.NewMemMapFs(), args...)
}

func executeWithFs(t *testing.T, newClient func() *mixpanel.Client, fs afero.Fs, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewCmdSend(terminal.NewWithWriters(&out, &errOut), newClient, fs)
	cmd.SetArgs(append([]string{}, args...))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func next(t *testing.T, c *collector.Collector) collector.Received {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rec, err := c.Next(ctx)
	require.NoError(t, err)
	return rec
}

func TestSendEngageExample(t *testing.T) {
	c, newClient := setup(t)

	out, err := execute(t, newClient, "--token", "what", "--command", "engage", "--example")
	require.NoError(t, err)
	assert.Contains(t, out, "engage accepted")

	rec := next(t, c)
	assert.Equal(t, "/engage", rec.Endpoint)
	assert.Equal(t, `{"$token":"what","$distinct_id":"12345","$set":{"Address":"123 Fake Street"}}`, rec.Payload.Raw)
}

func TestSendTrackWithProps(t *testing.T) {
	c, newClient := setup(t)

	_, err := execute(t, newClient, "-t", "what", "-c", "track", "-e", "game", "-p", "level=3", "-p", "mode=hard", "-q")
	require.NoError(t, err)

	rec := next(t, c)
	assert.Equal(t, "/track", rec.Endpoint)
	assert.Equal(t, "what", rec.Query.Get("token"))
	assert.Equal(t, `{"event":"game","properties":{"token":"what","level":3,"mode":"hard"}}`, rec.Payload.Raw)
}

func TestSendUnsetValues(t *testing.T) {
	c, newClient := setup(t)

	_, err := execute(t, newClient, "-t", "what", "-c", "engage_unset", "-d", "12345", "--value", "Days Overdue", "-q")
	require.NoError(t, err)

	rec := next(t, c)
	assert.Equal(t, `["Days Overdue"]`, rec.Payload.Get("$unset").Raw)
}

func TestSendQuietPrintsNothing(t *testing.T) {
	_, newClient := setup(t)

	out, err := execute(t, newClient, "-t", "what", "-c", "engage_delete", "-d", "12345", "-q")
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSendUnknownCommand(t *testing.T) {
	c, newClient := setup(t)

	_, err := execute(t, newClient, "-t", "what", "-c", "thing", "-q")
	var unsupported *breverrors.UnsupportedCommandError
	require.True(t, breverrors.As(err, &unsupported))
	assert.Equal(t, "thing", unsupported.Command)
	assert.Empty(t, c.Received())
}

func TestSendRequiresCommand(t *testing.T) {
	_, newClient := setup(t)

	_, err := execute(t, newClient, "-t", "what")
	var validation breverrors.ValidationError
	assert.True(t, breverrors.As(err, &validation))
}

func TestSendMissingToken(t *testing.T) {
	c, newClient := setup(t)

	_, err := execute(t, newClient, "-c", "track", "-e", "game", "-q")
	var missing *breverrors.MissingTokenError
	assert.True(t, breverrors.As(err, &missing))
	assert.Empty(t, c.Received())
}

func TestSendFromFile(t *testing.T) {
	c, newClient := setup(t)

	fs := afero.NewMemMapFs()
	file := "/tmp/requests.json"
	require.NoError(t, afero.WriteFile(fs, file, []byte(`[
		{"token": "what", "command": "track", "event": "game"},
		{"token": "what", "command": "engage_add", "distinct_id": "12345", "properties": {"Coins Gathered": 12}}
	]`), 0o600))

	out, err := executeWithFs(t, newClient, fs, "--from-file", file)
	require.NoError(t, err)
	assert.Contains(t, out, "0: track accepted (200)")
	assert.Contains(t, out, "1: engage_add accepted (200)")

	endpoints := map[string]string{}
	for i := 0; i < 2; i++ {
		rec := next(t, c)
		endpoints[rec.Endpoint] = rec.Payload.Raw
	}
	assert.Equal(t, `{"event":"game","properties":{"token":"what"}}`, endpoints["/track"])
	assert.Equal(t, `{"$token":"what","$distinct_id":"12345","$add":{"Coins Gathered":12}}`, endpoints["/engage"])
}

func TestSendFromFileReportsFailures(t *testing.T) {
	_, newClient := setup(t)

	fs := afero.NewMemMapFs()
	file := "/tmp/requests.json"
	require.NoError(t, afero.WriteFile(fs, file, []byte(`[
		{"token": "what", "command": "engage_delete", "distinct_id": "12345"},
		{"token": "what", "command": "thing"}
	]`), 0o600))

	out, err := executeWithFs(t, newClient, fs, "--from-file", file)
	require.Error(t, err)
	assert.Contains(t, out, "0: engage_delete accepted (200)")
	assert.Contains(t, out, "1: thing failed")
}

func TestSendFromMissingFile(t *testing.T) {
	_, newClient := setup(t)

	_, err := execute(t, newClient, "--from-file", "/nope.json")
	assert.Error(t, err)
}

func TestParseBatch(t *testing.T) {
	reqs, err := ParseBatch([]byte(`[{"url": "http://localhost:3000", "token": "what", "command": "engage_unset",
		"distinct_id": "12345", "properties": {"b": 1, "a": [1, 2]}, "values": ["Days Overdue"]}]`))
	require.NoError(t, err)
	require.Len(t, reqs, 1)

	req := reqs[0]
	assert.Equal(t, "http://localhost:3000", req.URL)
	assert.Equal(t, "what", req.Token.OrEmpty())
	assert.Equal(t, "engage_unset", req.Command)
	assert.Equal(t, "12345", req.DistinctID)
	assert.Equal(t, []string{"b", "a"}, req.Properties.Keys())
	assert.Equal(t, []string{"Days Overdue"}, req.Values)
}

func TestParseBatchKeepsNestedOrderAndLargeNumbers(t *testing.T) {
	reqs, err := ParseBatch([]byte(`[{"token": "what", "command": "engage", "distinct_id": "12345",
		"properties": {"z": {"z": 1, "a": 2}, "b": 9007199254740993}}]`))
	require.NoError(t, err)

	body, err := payload.Build(command.EngageSet, payload.Params{
		Token:      reqs[0].Token.OrEmpty(),
		DistinctID: reqs[0].DistinctID,
		Properties: reqs[0].Properties,
	})
	require.NoError(t, err)
	raw, err := payload.Marshal(body)
	require.NoError(t, err)
	assert.Equal(t, `{"$token":"what","$distinct_id":"12345","$set":{"z":{"z":1,"a":2},"b":9007199254740993}}`, string(raw))
}

func TestParseBatchEmptyTokenIsNone(t *testing.T) {
	reqs, err := ParseBatch([]byte(`[{"token": "", "command": "track"}]`))
	require.NoError(t, err)
	assert.True(t, reqs[0].Token.IsAbsent())
}

func TestParseBatchRejects(t *testing.T) {
	for name, raw := range map[string]string{
		"invalid json": `[{`,
		"not an array": `{"command": "track"}`,
		"empty":        `[]`,
		"scalar entry": `["track"]`,
		"bad utf-8":    "[{\"command\": \"track\", \"event\": \"\xff\"}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseBatch([]byte(raw))
			var validation breverrors.ValidationError
			assert.True(t, breverrors.As(err, &validation))
		})
	}
}
