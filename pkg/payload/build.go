package payload

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"github.com/brevdev/mixpanel-cli/pkg/command"
	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
)

// Params carries every field any command may need. Each command reads only
// the fields it uses.
type Params struct {
	Token      string
	DistinctID string
	Event      string
	Properties *Properties
	// Values lists property names for engage_unset.
	Values []string
}

// Build maps a command and its parameters to a TrackEvent or an
// EngageOperation. It has no side effects.
func Build(cmd command.Command, p Params) (any, error) {
	if !cmd.Valid() {
		return nil, breverrors.WrapAndTrace(&breverrors.UnsupportedCommandError{Command: cmd.String()})
	}
	if cmd.RequiresToken() && p.Token == "" {
		return nil, breverrors.WrapAndTrace(&breverrors.MissingTokenError{Command: cmd.String()})
	}
	if cmd == command.Track {
		return buildTrack(p)
	}

	if strings.TrimSpace(p.DistinctID) == "" {
		return nil, breverrors.WrapAndTrace(breverrors.NewValidationError("distinct id is required for " + cmd.String()))
	}
	op, err := buildOperation(cmd, p)
	if err != nil {
		return nil, breverrors.WrapAndTrace(err)
	}
	return EngageOperation{
		Token:      p.Token,
		DistinctID: p.DistinctID,
		Operation:  op,
	}, nil
}

func buildTrack(p Params) (TrackEvent, error) {
	if strings.TrimSpace(p.Event) == "" {
		return TrackEvent{}, breverrors.WrapAndTrace(breverrors.NewValidationError("event name is required for track"))
	}
	props := NewProperties().Set("token", p.Token)
	p.Properties.Each(func(key string, value any) {
		if key == "token" {
			return
		}
		props.Set(key, value)
	})
	return TrackEvent{Event: p.Event, Properties: props}, nil
}

func buildOperation(cmd command.Command, p Params) (Operation, error) {
	switch cmd {
	case command.EngageUnset:
		names := lo.Uniq(append(append([]string{}, p.Values...), p.Properties.Keys()...))
		if len(names) == 0 {
			return nil, breverrors.NewValidationError("engage_unset needs at least one property name")
		}
		return Unset{Names: names}, nil
	case command.EngageDelete:
		return Delete{}, nil
	}

	if p.Properties.Len() == 0 {
		return nil, breverrors.NewValidationError(cmd.String() + " needs at least one property")
	}
	props := p.Properties.Copy()

	switch cmd {
	case command.EngageSet:
		return Set{Properties: props}, nil
	case command.EngageSetOnce:
		return SetOnce{Properties: props}, nil
	case command.EngageAppend:
		return Append{Properties: props}, nil
	case command.EngageRemove:
		return Remove{Properties: props}, nil
	case command.EngageAdd:
		var bad []string
		props.Each(func(key string, value any) {
			if !isNumber(value) {
				bad = append(bad, key)
			}
		})
		if len(bad) > 0 {
			return nil, breverrors.NewValidationError("engage_add values must be numeric: " + strings.Join(bad, ", "))
		}
		return Add{Deltas: props}, nil
	case command.EngageUnion:
		lists := NewProperties()
		props.Each(func(key string, value any) {
			lists.Set(key, asList(value))
		})
		return Union{Lists: lists}, nil
	default:
		return nil, &breverrors.UnsupportedCommandError{Command: cmd.String()}
	}
}

func isNumber(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64, json.Number:
		return true
	default:
		return false
	}
}

// asList wraps a scalar into a one-element list.
func asList(v any) []any {
	switch l := v.(type) {
	case []any:
		return l
	case []string:
		return lo.Map(l, func(s string, _ int) any { return s })
	default:
		return []any{v}
	}
}

// ParseProperty splits a "key=value" pair. The value is decoded as JSON when
// it is valid JSON (numbers, booleans, lists, objects, quoted strings) and
// kept as a plain string otherwise.
func ParseProperty(kv string) (string, any, error) {
	if !utf8.ValidString(kv) {
		return "", nil, breverrors.NewValidationError("property is not valid utf-8: " + strings.ToValidUTF8(kv, "?"))
	}
	key, raw, found := strings.Cut(kv, "=")
	key = strings.TrimSpace(key)
	if !found || key == "" {
		return "", nil, breverrors.NewValidationError("property must look like key=value, got " + kv)
	}
	if gjson.Valid(raw) {
		return key, FromJSON(gjson.Parse(raw)), nil
	}
	return key, raw, nil
}

// FromJSON converts a parsed value for use in a payload. Objects become
// Properties in document order and numbers keep their exact text.
func FromJSON(res gjson.Result) any {
	switch {
	case res.IsObject():
		props := NewProperties()
		res.ForEach(func(key, value gjson.Result) bool {
			props.Set(key.String(), FromJSON(value))
			return true
		})
		return props
	case res.IsArray():
		list := []any{}
		res.ForEach(func(_, value gjson.Result) bool {
			list = append(list, FromJSON(value))
			return true
		})
		return list
	case res.Type == gjson.Number:
		return json.Number(strings.TrimSpace(res.Raw))
	default:
		return res.Value()
	}
}

// Example returns the demo parameters used by the reference collector
// fixtures for cmd: distinct id 12345, event "game", and one property per
// operator.
func Example(cmd command.Command, token string) Params {
	p := Params{Token: token, DistinctID: "12345"}
	switch cmd {
	case command.Track:
		p.DistinctID = ""
		p.Event = "game"
	case command.EngageSet, command.EngageSetOnce:
		p.Properties = NewProperties().Set("Address", "123 Fake Street")
	case command.EngageAdd:
		p.Properties = NewProperties().Set("Coins Gathered", 12)
	case command.EngageAppend:
		p.Properties = NewProperties().Set("Power Ups", "Bubble Lead")
	case command.EngageUnion:
		p.Properties = NewProperties().Set("Items Purchased", []any{"socks", "shirts"})
	case command.EngageRemove:
		p.Properties = NewProperties().Set("Items Purchased", "socks")
	case command.EngageUnset:
		p.Values = []string{"Days Overdue"}
	}
	return p
}
