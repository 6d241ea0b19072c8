package send

import (
	"fmt"
	"unicode/utf8"

	"github.com/samber/mo"
	"github.com/tidwall/gjson"

	breverrors "github.com/brevdev/mixpanel-cli/pkg/errors"
	"github.com/brevdev/mixpanel-cli/pkg/mixpanel"
	"github.com/brevdev/mixpanel-cli/pkg/payload"
)

// ParseBatch reads a json array of request objects:
//
//	[{"url": "...", "token": "...", "command": "engage_add",
//	  "distinct_id": "12345", "event": "", "properties": {"Coins Gathered": 12},
//	  "values": ["Days Overdue"]}]
//
// Property order in the file is kept at every depth and numbers keep their
// exact text.
func ParseBatch(raw []byte) ([]mixpanel.RequestConfig, error) {
	if !utf8.Valid(raw) {
		return nil, breverrors.NewValidationError("batch file is not valid utf-8")
	}
	if !gjson.ValidBytes(raw) {
		return nil, breverrors.NewValidationError("batch file is not valid json")
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		return nil, breverrors.NewValidationError("batch file must hold a json array")
	}

	var reqs []mixpanel.RequestConfig
	var parseErr error
	root.ForEach(func(idx, item gjson.Result) bool {
		if !item.IsObject() {
			parseErr = breverrors.NewValidationError(fmt.Sprintf("batch entry %d is not an object", idx.Int()))
			return false
		}
		reqs = append(reqs, requestFromJSON(item))
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	if len(reqs) == 0 {
		return nil, breverrors.NewValidationError("batch file is empty")
	}
	return reqs, nil
}

func requestFromJSON(item gjson.Result) mixpanel.RequestConfig {
	req := mixpanel.RequestConfig{
		URL:        item.Get("url").String(),
		Command:    item.Get("command").String(),
		DistinctID: item.Get("distinct_id").String(),
		Event:      item.Get("event").String(),
	}
	if token := item.Get("token"); token.Exists() && token.String() != "" {
		req.Token = mo.Some(token.String())
	}

	if props := item.Get("properties"); props.IsObject() {
		req.Properties = payload.NewProperties()
		props.ForEach(func(key, value gjson.Result) bool {
			req.Properties.Set(key.String(), payload.FromJSON(value))
			return true
		})
	}
	for _, v := range item.Get("values").Array() {
		req.Values = append(req.Values, v.String())
	}
	return req
}
