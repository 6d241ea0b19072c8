package analytics

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/brevdev/mixpanel-cli/pkg/command"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
)

type Analytics interface {
	TrackUserEvent(ctx context.Context, eventName EventName, userID string, properties Properties) error
	TrackUserObjectEvent(ctx context.Context, eventName EventName, userID string, obj interface{}, extraProps Properties) error
	SetUserProperties(ctx context.Context, userID string, properties Properties) error
	DeleteUser(ctx context.Context, userID string) error
}

type (
	Properties map[string]interface{}
	EventName  string
)

// fields never forwarded from TrackUserObjectEvent
var redactedFields = []string{"password", "token", "secret"}

type MixpanelClient struct {
	Client *mixpanel.Client
}

func NewMixpanelClient(client *mixpanel.Client) MixpanelClient {
	return MixpanelClient{Client: client}
}

var _ Analytics = MixpanelClient{}

func (m MixpanelClient) TrackUserObjectEvent(ctx context.Context, eventName EventName, userID string, obj interface{}, extraProps Properties) error {
	objProps, err := StructToMap(obj)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	if id, ok := objProps["id"]; ok {
		delete(objProps, "id")
		objProps["objectId"] = id
	}
	for _, f := range redactedFields {
		delete(objProps, f)
	}

	if extraProps == nil {
		extraProps = Properties{}
	}
	for k, v := range objProps {
		extraProps[k] = v
	}
	err = m.TrackUserEvent(ctx, eventName, userID, extraProps)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	return nil
}

func (m MixpanelClient) TrackUserEvent(ctx context.Context, eventName EventName, userID string, properties Properties) error {
	props := toProperties(properties)
	if userID != "" {
		props.Set("distinct_id", userID)
	}
	_, err := m.Client.Track(ctx, string(eventName), props)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	return nil
}

func (m MixpanelClient) SetUserProperties(ctx context.Context, userID string, properties Properties) error {
	_, err := m.Client.Engage(ctx, command.EngageSet, userID, toProperties(properties))
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	return nil
}

func (m MixpanelClient) DeleteUser(ctx context.Context, userID string) error {
	_, err := m.Client.Engage(ctx, command.EngageDelete, userID, nil)
	if err != nil {
		return breverrors.WrapAndTrace(err)
	}
	return nil
}

// toProperties orders keys alphabetically so the encoded payload is stable.
func toProperties(in Properties) *payload.Properties {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := payload.NewProperties()
	for _, k := range keys {
		out.Set(k, in[k])
	}
	return out
}

func StructToMap(obj interface{}) (map[string]interface{}, error) {
	data, err := json.Marshal(obj) // Convert to a json string
	if err != nil {
		return nil, breverrors.WrapAndTrace(err)
	}

	newMap := new(map[string]interface{})
	err = json.Unmarshal(data, newMap) // Convert to a map
	if err != nil {
		return nil, breverrors.WrapAndTrace(err)
	}
	return *newMap, nil
}
