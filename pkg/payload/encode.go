package payload

import (
	"bytes"
	"encoding/base64"
	"encoding/json"

	"github.com/tidwall/gjson"

	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
)

// Marshal renders v as compact JSON without HTML escaping. Ordered
// properties keep insertion order and plain maps are key-sorted, so the
// output is stable for a given input.
func Marshal(v any) ([]byte, error) {
	raw, err := marshalCompact(v)
	if err != nil {
		return nil, breverrors.WrapAndTrace(&breverrors.EncodingError{Err: err})
	}
	return raw, nil
}

// Encode is the value of the data query parameter: base64 of Marshal(v).
func Encode(v any) (string, error) {
	raw, err := Marshal(v)
	if err != nil {
		return "", breverrors.WrapAndTrace(err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode and checks the result is JSON.
func Decode(data string) (gjson.Result, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return gjson.Result{}, breverrors.WrapAndTrace(&breverrors.EncodingError{Err: err})
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, breverrors.WrapAndTrace(&breverrors.EncodingError{Err: breverrors.New("decoded data is not valid json")})
	}
	return gjson.ParseBytes(raw), nil
}

func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err //nolint:wrapcheck // wrapped by Marshal
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
